package cpp

import "testing"

func evalExprString(t *testing.T, expr string) int64 {
	t.Helper()
	toks := stripWhitespaceTokens(relexFlat(expr, 1))
	v, err := evalConstExpr(toks)
	if err != nil {
		t.Fatalf("evalConstExpr(%q): %v", expr, err)
	}
	return v
}

func TestConstExprArithmeticPrecedence(t *testing.T) {
	cases := map[string]int64{
		"1 + 2 * 3":     7,
		"(1 + 2) * 3":   9,
		"2 * 3 + 4 * 5": 26,
		"10 - 3 - 2":    5, // left-associative
		"2 * (3 + 4)":   14,
	}
	for expr, want := range cases {
		if got := evalExprString(t, expr); got != want {
			t.Errorf("%q = %d, want %d", expr, got, want)
		}
	}
}

func TestConstExprComparisonAndLogic(t *testing.T) {
	cases := map[string]int64{
		"1 == 1":          1,
		"1 != 1":          0,
		"1 < 2 && 3 > 2":  1,
		"1 > 2 || 0":      0,
		"!(0)":            1,
		"!1":              0,
		"1 && 0 || 1":     1,
	}
	for expr, want := range cases {
		if got := evalExprString(t, expr); got != want {
			t.Errorf("%q = %d, want %d", expr, got, want)
		}
	}
}

func TestConstExprBitwiseAndShift(t *testing.T) {
	cases := map[string]int64{
		"6 & 3":    2,
		"6 | 1":    7,
		"6 ^ 3":    5,
		"1 << 4":   16,
		"256 >> 4": 16,
		"~0":       -1,
	}
	for expr, want := range cases {
		if got := evalExprString(t, expr); got != want {
			t.Errorf("%q = %d, want %d", expr, got, want)
		}
	}
}

func TestConstExprUnaryMinusAndPlus(t *testing.T) {
	if got := evalExprString(t, "-5 + 3"); got != -2 {
		t.Fatalf("-5 + 3 = %d, want -2", got)
	}
	if got := evalExprString(t, "-(2 + 3)"); got != -5 {
		t.Fatalf("-(2+3) = %d, want -5", got)
	}
	if got := evalExprString(t, "+5"); got != 5 {
		t.Fatalf("+5 = %d, want 5", got)
	}
}

func TestConstExprDivModByZeroErrors(t *testing.T) {
	toks := stripWhitespaceTokens(relexFlat("1 / 0", 1))
	if _, err := evalConstExpr(toks); err == nil {
		t.Fatal("division by zero should error")
	}
	toks = stripWhitespaceTokens(relexFlat("1 % 0", 1))
	if _, err := evalConstExpr(toks); err == nil {
		t.Fatal("modulo by zero should error")
	}
}

func TestConstExprUnmatchedParensError(t *testing.T) {
	toks := stripWhitespaceTokens(relexFlat("(1 + 2", 1))
	if _, err := evalConstExpr(toks); err == nil {
		t.Fatal("unmatched '(' should error")
	}
	toks = stripWhitespaceTokens(relexFlat("1 + 2)", 1))
	if _, err := evalConstExpr(toks); err == nil {
		t.Fatal("unmatched ')' should error")
	}
}

func TestConstExprUndefinedIdentifierEvaluatesToZero(t *testing.T) {
	if got := evalExprString(t, "UNDEFINED_NAME + 1"); got != 1 {
		t.Fatalf("an undefined identifier should evaluate as 0, got %d", got)
	}
}

func TestConstExprCharConstant(t *testing.T) {
	if got := evalExprString(t, "'A'"); got != 65 {
		t.Fatalf("'A' = %d, want 65", got)
	}
	if got := evalExprString(t, "'\\n'"); got != 10 {
		t.Fatalf("'\\n' = %d, want 10", got)
	}
}

func TestConstExprHexOctalBinaryLiterals(t *testing.T) {
	cases := map[string]int64{
		"0x1F":  31,
		"010":   8,
		"0b101": 5,
		"0":     0,
	}
	for expr, want := range cases {
		if got := evalExprString(t, expr); got != want {
			t.Errorf("%q = %d, want %d", expr, got, want)
		}
	}
}
