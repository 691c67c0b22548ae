package vector

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chewxy/sexp"
)

// ParseSexp reads vectors in S-expression form, one list per record with the
// kind first and the cycle second:
//
//	(write 0 CONTROL 0x07)
//	(frame 20 0x41 badstop)
func ParseSexp(r io.Reader) ([]Record, error) {
	exprs, err := sexp.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("vector: sexp parse error: %w", err)
	}
	return sexpRecords(exprs)
}

// ParseSexpString is ParseSexp on a string.
func ParseSexpString(input string) ([]Record, error) {
	exprs, err := sexp.ParseString(input)
	if err != nil {
		return nil, fmt.Errorf("vector: sexp parse error: %w", err)
	}
	return sexpRecords(exprs)
}

// ParseSexpFile reads an S-expression vector file.
func ParseSexpFile(filename string) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("vector: failed to open file: %w", err)
	}
	defer file.Close()
	return ParseSexp(file)
}

func sexpRecords(exprs []sexp.Sexp) ([]Record, error) {
	out := make([]Record, 0, len(exprs))
	for i, e := range exprs {
		atoms, err := flatten(e)
		if err != nil {
			return nil, fmt.Errorf("vector: record %d: %w", i+1, err)
		}
		if len(atoms) < 2 {
			return nil, fmt.Errorf("vector: record %d: want (kind cycle args...), got %s", i+1, e)
		}
		r, err := buildRecord(atoms[1], atoms[0], atoms[2:])
		if err != nil {
			return nil, fmt.Errorf("vector: record %d: %w", i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

// flatten returns the atoms of a flat list. Nested lists are rejected.
func flatten(e sexp.Sexp) ([]string, error) {
	if e == nil {
		return nil, fmt.Errorf("empty expression")
	}
	if e.IsLeaf() {
		return nil, fmt.Errorf("bare atom %s outside a list", e)
	}
	n := e.LeafCount()
	atoms := make([]string, 0, n)
	cur := e
	for i := 0; i < n; i++ {
		head := cur.Head()
		if head == nil {
			break
		}
		if !head.IsLeaf() {
			return nil, fmt.Errorf("nested list %s", head)
		}
		atoms = append(atoms, head.String())
		if i < n-1 {
			if cur = cur.Tail(); cur == nil {
				break
			}
		}
	}
	return atoms, nil
}

// WriteSexp renders records as S-expressions.
func WriteSexp(w io.Writer, records []Record) error {
	for _, r := range records {
		if _, err := fmt.Fprintln(w, sexpString(r)); err != nil {
			return err
		}
	}
	return nil
}

func sexpString(r Record) string {
	// fields[0] is "@<cycle>", fields[1] the kind.
	fields := strings.Fields(r.String())
	parts := append([]string{fields[1], strings.TrimPrefix(fields[0], "@")}, fields[2:]...)
	return "(" + strings.Join(parts, " ") + ")"
}
