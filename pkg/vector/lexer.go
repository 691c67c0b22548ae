package vector

import (
	"github.com/alecthomas/participle/v2/lexer"
)

// VectorLexer tokenizes text vector files.
var VectorLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `#[^\n]*`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "At", Pattern: `@`},

	// Hex, binary or decimal
	{Name: "Number", Pattern: `0[xX][0-9a-fA-F]+|0[bB][01]+|[0-9]+`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
})
