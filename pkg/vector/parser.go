package vector

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/OpenTraceLab/OpenTraceUART/pkg/uart"
)

type vectorFile struct {
	Lines []*vectorLine `@@*`
}

type vectorLine struct {
	Pos lexer.Position

	Cycle string   `"@" @Number`
	Kind  string   `@Ident`
	Args  []string `@(Number | Ident)*`
}

// Parser reads the text vector format.
type Parser struct {
	parser *participle.Parser[vectorFile]
}

// NewParser creates a new vector parser instance.
func NewParser() (*Parser, error) {
	parser, err := participle.Build[vectorFile](
		participle.Lexer(VectorLexer),
		participle.Elide("Comment", "Whitespace"),
	)
	if err != nil {
		return nil, fmt.Errorf("vector: failed to build parser: %w", err)
	}
	return &Parser{parser: parser}, nil
}

// Parse parses vectors from a reader.
func (p *Parser) Parse(r io.Reader) ([]Record, error) {
	f, err := p.parser.Parse("", r)
	if err != nil {
		return nil, fmt.Errorf("vector: parse error: %w", err)
	}
	return f.records()
}

// ParseString parses vectors from a string.
func (p *Parser) ParseString(input string) ([]Record, error) {
	f, err := p.parser.ParseString("", input)
	if err != nil {
		return nil, fmt.Errorf("vector: parse error: %w", err)
	}
	return f.records()
}

// ParseFile parses a vector file from a path.
func (p *Parser) ParseFile(filename string) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("vector: failed to open file: %w", err)
	}
	defer file.Close()
	return p.Parse(file)
}

// Load reads a vector file, choosing the S-expression reader for .sexp files.
func Load(filename string) ([]Record, error) {
	if strings.EqualFold(filepath.Ext(filename), ".sexp") {
		return ParseSexpFile(filename)
	}
	p, err := NewParser()
	if err != nil {
		return nil, err
	}
	return p.ParseFile(filename)
}

func (f *vectorFile) records() ([]Record, error) {
	out := make([]Record, 0, len(f.Lines))
	for _, l := range f.Lines {
		r, err := buildRecord(l.Cycle, l.Kind, l.Args)
		if err != nil {
			return nil, fmt.Errorf("vector: %s: %w", l.Pos, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// buildRecord validates the arguments of one record. The text and
// S-expression readers share it.
func buildRecord(cycle, kind string, args []string) (Record, error) {
	c, err := strconv.ParseUint(cycle, 0, 64)
	if err != nil {
		return Record{}, fmt.Errorf("bad cycle %q", cycle)
	}
	r := Record{Cycle: c, Kind: Kind(strings.ToLower(kind))}

	switch r.Kind {
	case KindWrite:
		if err := wantArgs(r.Kind, args, 2, 2); err != nil {
			return Record{}, err
		}
		if r.Reg, err = uart.ParseRegister(args[0]); err != nil {
			return Record{}, err
		}
		if r.Value, err = parseValue(args[1], 32); err != nil {
			return Record{}, err
		}
	case KindRead:
		if err := wantArgs(r.Kind, args, 1, 2); err != nil {
			return Record{}, err
		}
		if r.Reg, err = uart.ParseRegister(args[0]); err != nil {
			return Record{}, err
		}
		if len(args) == 2 {
			r.HasValue = true
			if r.Value, err = parseValue(args[1], 32); err != nil {
				return Record{}, err
			}
		}
	case KindNak:
		if err := wantArgs(r.Kind, args, 1, 1); err != nil {
			return Record{}, err
		}
		if r.Reg, err = uart.ParseRegister(args[0]); err != nil {
			return Record{}, err
		}
	case KindLine, KindTX, KindIRQ:
		if err := wantArgs(r.Kind, args, 1, 1); err != nil {
			return Record{}, err
		}
		if r.Value, err = parseValue(args[0], 1); err != nil {
			return Record{}, err
		}
	case KindFrame:
		if err := wantArgs(r.Kind, args, 1, 3); err != nil {
			return Record{}, err
		}
		if r.Value, err = parseValue(args[0], 9); err != nil {
			return Record{}, err
		}
		for _, opt := range args[1:] {
			switch strings.ToLower(opt) {
			case "badstop":
				r.BadStop = true
			case "badparity":
				r.BadParity = true
			default:
				return Record{}, fmt.Errorf("unknown frame option %q", opt)
			}
		}
	case KindEnd:
		if err := wantArgs(r.Kind, args, 0, 0); err != nil {
			return Record{}, err
		}
	default:
		return Record{}, fmt.Errorf("unknown record kind %q", kind)
	}
	return r, nil
}

func wantArgs(kind Kind, args []string, min, max int) error {
	if len(args) < min || len(args) > max {
		if min == max {
			return fmt.Errorf("%s takes %d argument(s), got %d", kind, min, len(args))
		}
		return fmt.Errorf("%s takes %d to %d arguments, got %d", kind, min, max, len(args))
	}
	return nil
}

func parseValue(s string, bits int) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, bits)
	if err != nil {
		return 0, fmt.Errorf("bad %d-bit value %q", bits, s)
	}
	return uint32(v), nil
}
