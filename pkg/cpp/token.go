// Package cpp implements a streaming, C-preprocessor-compatible macro
// processor: lexer, include stack, macro table, conditional engine,
// macro expander and a pull-based token pump.
package cpp

import "fmt"

// TokenKind is the closed set of preprocessing token tags.
type TokenKind int

const (
	EOI TokenKind = iota
	PreprocessingError

	Identifier
	IntLiteral
	FloatLiteral
	StringLiteral
	CharLiteral

	Newline
	Whitespace

	Punct      // any single- or multi-char punctuator, distinguished by Lexeme
	Hash       // '#' stringify operator / directive marker
	HashHash   // '##' token-paste operator
	HeaderName

	IncompleteComment
	BadChars

	PPInclude
	PPLine
	PPDefine
	PPUndef
	PPIf
	PPIfdef
	PPIfndef
	PPElif
	PPElse
	PPEndif
	PPError
	PPPragma
)

var tokenKindNames = [...]string{
	EOI:                "EOI",
	PreprocessingError: "PREPROCESSING_ERROR",
	Identifier:         "IDENTIFIER",
	IntLiteral:         "INT_LITERAL",
	FloatLiteral:       "FLOAT_LITERAL",
	StringLiteral:      "STRING_LITERAL",
	CharLiteral:        "CHAR_LITERAL",
	Newline:            "NEWLINE",
	Whitespace:         "WHITESPACE",
	Punct:              "PUNCT",
	Hash:               "HASH",
	HashHash:           "HASHHASH",
	HeaderName:         "HEADER_NAME",
	IncompleteComment:  "INCOMPLETE_COMMENT",
	BadChars:           "BAD_CHARS",
	PPInclude:          "PP_INCLUDE",
	PPLine:             "PP_LINE",
	PPDefine:           "PP_DEFINE",
	PPUndef:            "PP_UNDEF",
	PPIf:               "PP_IF",
	PPIfdef:            "PP_IFDEF",
	PPIfndef:           "PP_IFNDEF",
	PPElif:             "PP_ELIF",
	PPElse:             "PP_ELSE",
	PPEndif:            "PP_ENDIF",
	PPError:            "PP_ERROR",
	PPPragma:           "PP_PRAGMA",
}

func (k TokenKind) String() string {
	if int(k) >= 0 && int(k) < len(tokenKindNames) && tokenKindNames[k] != "" {
		return tokenKindNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// directiveKeywords maps the identifier following a line-leading '#' to
// its promoted PP_* kind (spec.md §4.1).
var directiveKeywords = map[string]TokenKind{
	"include": PPInclude,
	"line":    PPLine,
	"define":  PPDefine,
	"undef":   PPUndef,
	"if":      PPIf,
	"ifdef":   PPIfdef,
	"ifndef":  PPIfndef,
	"elif":    PPElif,
	"else":    PPElse,
	"endif":   PPEndif,
	"error":   PPError,
	"pragma":  PPPragma,
}

// Token is a lexeme view plus its kind and starting line.
type Token struct {
	Kind   TokenKind
	Lexeme string
	Line   int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d", t.Kind, t.Lexeme, t.Line)
}

// IsDirective reports whether a kind is one of the PP_* directive tags.
func (k TokenKind) IsDirective() bool {
	return k >= PPInclude && k <= PPPragma
}
