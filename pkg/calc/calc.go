package calc

import (
	"fmt"

	"github.com/shc-lang/shc/pkg/cpp"
)

// Evaluate preprocesses expr through pkg/cpp (so -D definitions and
// macro invocations work inside calculator expressions) and evaluates
// the resulting constant expression.
func Evaluate(expr string, defines map[string]string) (float64, error) {
	tokens, err := tokenize(expr, defines)
	if err != nil {
		return 0, err
	}
	ast, err := NewParser(tokens).Parse()
	if err != nil {
		return 0, err
	}
	return Eval(ast)
}

// tokenize runs expr through the macro processor with no include
// support (calculator expressions never #include), collecting the
// flat token stream consumed by the parser.
func tokenize(expr string, defines map[string]string) ([]cpp.Token, error) {
	p := cpp.NewPreprocessor("<expr>", expr, nil)
	for name, body := range defines {
		if err := p.Define(name, body); err != nil {
			return nil, err
		}
	}
	var toks []cpp.Token
	for {
		tok, err := p.NextToken()
		if err != nil {
			return nil, fmt.Errorf("preprocessing expression: %w", err)
		}
		if tok.Kind == cpp.EOI {
			return toks, nil
		}
		toks = append(toks, tok)
	}
}
