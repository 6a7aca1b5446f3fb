// preprocess.go implements the directive dispatch and the pull-based
// token pump: NextToken drains pending macro-expansion output first,
// then lexes from the top include frame, handling directives and
// macro invocations as it goes (spec.md §4.5/§4.8).
package cpp

import "fmt"

// maxIncludeDepth bounds nested #include chains (spec.md §8).
const maxIncludeDepth = 200

// Preprocessor is a streaming macro processor over one root source.
// NextToken pulls preprocessed tokens one at a time; #include,
// #define/#undef, and the conditional directives are handled
// internally and never surface as pump output.
type Preprocessor struct {
	macros    *MacroTable
	fnames    *StringCache
	includes  includeStack
	condPool  pool[Conditional]
	framePool pool[IncludeState]
	callback  IncludeCallback
	pending   []Token

	asmComments bool
}

// NewPreprocessor creates a pump over root (named filename) ready to
// tokenize from line 1. callback may be nil if the source never
// #includes anything.
func NewPreprocessor(filename, root string, callback IncludeCallback) *Preprocessor {
	p := &Preprocessor{
		macros:   NewMacroTable(),
		fnames:   NewStringCache(),
		callback: callback,
	}
	p.includes.pushSource(&p.framePool, p.fnames, filename, root, 1, nil)
	return p
}

// Define pre-seeds a macro, as if by a command-line -D flag. An empty
// body defines the macro as 1, matching common -DFOO shorthand.
func (p *Preprocessor) Define(name, body string) error {
	if body == "" {
		body = "1"
	}
	return p.macros.Add(&Define{Name: name, Body: body})
}

// Undef removes a pre-seeded or source-defined macro, as if by -U.
func (p *Preprocessor) Undef(name string) {
	p.macros.Remove(name)
}

// SetAsmComments enables ';'-to-end-of-line comment swallowing on the
// root frame (spec.md §4.1, assembler dialect support).
func (p *Preprocessor) SetAsmComments(on bool) {
	p.asmComments = on
	if p.includes.top != nil {
		p.includes.top.asmComments = on
	}
}

// End reports whether the pump has been fully drained.
func (p *Preprocessor) End() bool {
	return len(p.pending) == 0 && p.includes.empty()
}

// SourcePos reports the current file/line, for diagnostics raised by
// a caller after NextToken returns.
func (p *Preprocessor) SourcePos() (file string, line int) {
	if p.includes.top == nil {
		return "", 0
	}
	return p.includes.top.filename, p.includes.top.line
}

func (p *Preprocessor) currentFilename() string {
	if p.includes.top == nil {
		return ""
	}
	return p.includes.top.filename
}

// NextToken returns the next preprocessed token, or an EOI token (with
// a nil error) once every open source has been exhausted.
func (p *Preprocessor) NextToken() (Token, error) {
	for {
		if len(p.pending) > 0 {
			t := p.pending[0]
			p.pending = p.pending[1:]
			return t, nil
		}
		if p.includes.empty() {
			return Token{Kind: EOI}, nil
		}
		frame := p.includes.top
		tok := frame.lex()

		switch {
		case tok.Kind == EOI:
			if err := p.includes.popSource(&p.condPool, &p.framePool); err != nil {
				return Token{}, err
			}
			continue

		case tok.Kind == Newline || tok.Kind == Whitespace:
			continue

		case tok.Kind == IncompleteComment:
			return Token{}, fmt.Errorf("%s:%d: unterminated comment", frame.filename, tok.Line)

		case tok.Kind.IsDirective():
			if err := p.handleDirective(frame, tok); err != nil {
				return Token{}, err
			}
			continue

		case tok.Kind == Hash:
			if frame.awaitingDirective {
				// A recognized directive keyword arrives pre-promoted
				// to its PP_* kind by the very next lex() call; an
				// unrecognized word or a bare "#" at end of line is an
				// unknown/null directive, discarded through the EOL.
				nxt := frame.lex()
				if nxt.Kind.IsDirective() {
					if err := p.handleDirective(frame, nxt); err != nil {
						return Token{}, err
					}
					continue
				}
				if nxt.Kind == EOI {
					frame.pushBack(nxt)
				} else if nxt.Kind != Newline {
					readDirectiveLine(frame)
				}
				continue
			}
			if frame.cond.isSkipping() {
				continue
			}
			return tok, nil

		case frame.cond.isSkipping():
			continue

		case tok.Kind == Identifier:
			handled, err := p.maybeExpand(frame, tok)
			if err != nil {
				return Token{}, err
			}
			if handled {
				continue
			}
			return tok, nil

		default:
			return tok, nil
		}
	}
}

// maybeExpand attempts to expand tok as a macro invocation. On success
// the replacement tokens are queued in p.pending and handled is true.
func (p *Preprocessor) maybeExpand(frame *IncludeState, tok Token) (handled bool, err error) {
	macro := p.macros.Find(tok.Lexeme, frame.filename, tok.Line)
	if macro == nil {
		return false, nil
	}
	var rawArgs [][]Token
	if macro.IsFunctionLike() {
		save := frame.reportWhitespace
		frame.reportWhitespace = true
		next := frame.lex()
		for next.Kind == Whitespace {
			next = frame.lex()
		}
		frame.reportWhitespace = save
		if next.Kind != Punct || next.Lexeme != "(" {
			frame.pushBack(next)
			return false, nil
		}
		rawArgs, err = p.collectArgsLive(frame, macro)
		if err != nil {
			return false, err
		}
	}
	depth := 0
	expanded, err := p.expandOneMacro(macro, rawArgs, tok.Line, &depth)
	if err != nil {
		return false, err
	}
	p.pending = append(stripWhitespaceTokens(expanded), p.pending...)
	return true, nil
}

// collectArgsLive gathers a function-like macro's actual arguments
// directly from the live frame, tracking parenthesis depth. frame's
// cursor must be positioned just past the invocation's opening '('.
func (p *Preprocessor) collectArgsLive(frame *IncludeState, macro *Define) ([][]Token, error) {
	save := frame.reportWhitespace
	frame.reportWhitespace = true
	defer func() { frame.reportWhitespace = save }()

	depth := 1
	var args [][]Token
	var current []Token
	for {
		tok := frame.lex()
		switch {
		case tok.Kind == EOI:
			return nil, fmt.Errorf("%s: unterminated invocation of macro %q", frame.filename, macro.Name)
		case tok.Kind == Punct && tok.Lexeme == "(":
			depth++
			current = append(current, tok)
		case tok.Kind == Punct && tok.Lexeme == ")":
			depth--
			if depth == 0 {
				trimmed := trimWhitespace(current)
				if len(trimmed) > 0 || len(args) > 0 {
					args = append(args, trimmed)
				}
				return args, nil
			}
			current = append(current, tok)
		case tok.Kind == Punct && tok.Lexeme == "," && depth == 1:
			args = append(args, trimWhitespace(current))
			current = nil
		default:
			current = append(current, tok)
		}
	}
}

// readDirectiveLine collects every token through (but not including)
// the closing Newline/EOI, reporting internal whitespace as Whitespace
// tokens. EOI is pushed back so the pump's own EOI handling still
// fires on the next pull.
func readDirectiveLine(frame *IncludeState) []Token {
	save := frame.reportWhitespace
	frame.reportWhitespace = true
	defer func() { frame.reportWhitespace = save }()

	var out []Token
	for {
		tok := frame.lex()
		if tok.Kind == Newline {
			return out
		}
		if tok.Kind == EOI {
			frame.pushBack(tok)
			return out
		}
		out = append(out, tok)
	}
}

func stripWhitespaceTokens(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if t.Kind != Whitespace && t.Kind != Newline {
			out = append(out, t)
		}
	}
	return out
}

// flattenTokens renders a token slice back to text, collapsing any
// run of Whitespace tokens to a single space (this is how a macro's
// replacement list is stored: spec.md §3's "owned replacement text").
func flattenTokens(toks []Token) string {
	var b []byte
	needSpace := false
	for _, t := range toks {
		if t.Kind == Whitespace {
			needSpace = true
			continue
		}
		if needSpace && len(b) > 0 {
			b = append(b, ' ')
		}
		needSpace = false
		b = append(b, t.Lexeme...)
	}
	return string(b)
}

func unquote(s string) string {
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		return s[1 : len(s)-1]
	}
	return s
}

func condKindFor(negate bool) CondKind {
	if negate {
		return CondIfndef
	}
	return CondIfdef
}

func (p *Preprocessor) handleDirective(frame *IncludeState, tok Token) error {
	switch tok.Kind {
	case PPInclude:
		return p.handleInclude(frame, tok.Line)
	case PPLine:
		return p.handleLine(frame, tok.Line)
	case PPDefine:
		return p.handleDefine(frame, tok.Line)
	case PPUndef:
		return p.handleUndef(frame, tok.Line)
	case PPIf:
		return p.handleIf(frame, tok.Line)
	case PPIfdef:
		return p.handleIfdef(frame, tok.Line, false)
	case PPIfndef:
		return p.handleIfdef(frame, tok.Line, true)
	case PPElif:
		return p.handleElif(frame, tok.Line)
	case PPElse:
		return p.handleElse(frame, tok.Line)
	case PPEndif:
		return p.handleEndif(frame, tok.Line)
	case PPError:
		return p.handleError(frame, tok.Line)
	case PPPragma:
		return p.handlePragma(frame, tok.Line)
	}
	return fmt.Errorf("%s:%d: unhandled directive %s", frame.filename, tok.Line, tok.Kind)
}

func (p *Preprocessor) handleInclude(frame *IncludeState, lineNo int) error {
	if frame.cond.isSkipping() {
		readDirectiveLine(frame)
		return nil
	}
	hdr, ok := frame.scanAngledOrQuotedHeader()
	readDirectiveLine(frame)
	if !ok {
		return fmt.Errorf("%s:%d: malformed #include directive", frame.filename, lineNo)
	}
	kind := IncludeLocal
	name := hdr.Lexeme
	switch {
	case len(name) >= 2 && name[0] == '<':
		kind = IncludeSystem
		name = name[1 : len(name)-1]
	case len(name) >= 2 && name[0] == '"':
		name = name[1 : len(name)-1]
	}
	if p.callback == nil {
		return fmt.Errorf("%s:%d: #include %q: no include callback installed", frame.filename, lineNo, name)
	}
	depth := 0
	for st := p.includes.top; st != nil; st = st.parent {
		depth++
	}
	if depth >= maxIncludeDepth {
		return &CircularIncludeError{File: frame.filename, Line: lineNo, Target: name}
	}
	data, closer, ok := p.callback.Open(kind, name, frame.filename)
	if !ok {
		return &IncludeError{File: frame.filename, Line: lineNo, Target: name}
	}
	st := p.includes.pushSource(&p.framePool, p.fnames, name, data, 1, closer)
	st.asmComments = p.asmComments
	return nil
}

func (p *Preprocessor) handleLine(frame *IncludeState, lineNo int) error {
	if frame.cond.isSkipping() {
		readDirectiveLine(frame)
		return nil
	}
	toks := trimWhitespace(readDirectiveLine(frame))
	if len(toks) == 0 || toks[0].Kind != IntLiteral {
		return fmt.Errorf("%s:%d: #line requires a line number", frame.filename, lineNo)
	}
	n, err := parseConstValue(toks[0])
	if err != nil {
		return fmt.Errorf("%s:%d: invalid #line number: %v", frame.filename, lineNo, err)
	}
	rest := trimWhitespace(toks[1:])
	if len(rest) > 0 {
		if rest[0].Kind != StringLiteral {
			return fmt.Errorf("%s:%d: #line filename must be a string literal", frame.filename, lineNo)
		}
		frame.filename = p.fnames.Intern(unquote(rest[0].Lexeme))
	}
	frame.line = int(n)
	return nil
}

func (p *Preprocessor) handleDefine(frame *IncludeState, lineNo int) error {
	if frame.cond.isSkipping() {
		readDirectiveLine(frame)
		return nil
	}
	toks := trimWhitespace(readDirectiveLine(frame))
	if len(toks) == 0 || toks[0].Kind != Identifier {
		return fmt.Errorf("%s:%d: #define requires an identifier", frame.filename, lineNo)
	}
	name := toks[0].Lexeme
	rest := toks[1:]

	var params []string
	paramCount := 0
	if len(rest) > 0 && rest[0].Kind == Punct && rest[0].Lexeme == "(" {
		paramCount = -1
		j := 1
		for {
			if j >= len(rest) {
				return fmt.Errorf("%s:%d: malformed #define parameter list for %q", frame.filename, lineNo, name)
			}
			if rest[j].Kind == Whitespace {
				j++
				continue
			}
			if rest[j].Kind == Punct && rest[j].Lexeme == ")" {
				j++
				break
			}
			if rest[j].Kind != Identifier {
				return fmt.Errorf("%s:%d: malformed #define parameter list for %q", frame.filename, lineNo, name)
			}
			params = append(params, rest[j].Lexeme)
			paramCount = len(params)
			j++
			for j < len(rest) && rest[j].Kind == Whitespace {
				j++
			}
			if j < len(rest) && rest[j].Kind == Punct && rest[j].Lexeme == "," {
				j++
				continue
			}
			if j < len(rest) && rest[j].Kind == Punct && rest[j].Lexeme == ")" {
				j++
				break
			}
			return fmt.Errorf("%s:%d: malformed #define parameter list for %q", frame.filename, lineNo, name)
		}
		rest = rest[j:]
	}

	body := trimWhitespace(rest)
	if len(body) > 0 {
		if body[0].Kind == HashHash {
			return fmt.Errorf("%s:%d: '##' cannot appear at start of macro %q replacement", frame.filename, lineNo, name)
		}
		if body[len(body)-1].Kind == HashHash {
			return fmt.Errorf("%s:%d: '##' cannot appear at end of macro %q replacement", frame.filename, lineNo, name)
		}
	}

	d := &Define{Name: name, Body: flattenTokens(body), Parameters: params, ParamCount: paramCount}
	return p.macros.Add(d)
}

func (p *Preprocessor) handleUndef(frame *IncludeState, lineNo int) error {
	if frame.cond.isSkipping() {
		readDirectiveLine(frame)
		return nil
	}
	toks := trimWhitespace(readDirectiveLine(frame))
	if len(toks) == 0 || toks[0].Kind != Identifier {
		return fmt.Errorf("%s:%d: #undef requires an identifier", frame.filename, lineNo)
	}
	p.macros.Remove(toks[0].Lexeme)
	return nil
}

func (p *Preprocessor) handleIf(frame *IncludeState, lineNo int) error {
	toks := readDirectiveLine(frame)
	if frame.cond.isSkipping() {
		frame.cond.push(&p.condPool, CondIf, lineNo, false)
		return nil
	}
	result, err := p.evalIfExpr(frame, toks)
	if err != nil {
		return err
	}
	frame.cond.push(&p.condPool, CondIf, lineNo, result != 0)
	return nil
}

func (p *Preprocessor) handleIfdef(frame *IncludeState, lineNo int, negate bool) error {
	toks := trimWhitespace(readDirectiveLine(frame))
	if frame.cond.isSkipping() {
		frame.cond.push(&p.condPool, condKindFor(negate), lineNo, false)
		return nil
	}
	if len(toks) == 0 || toks[0].Kind != Identifier {
		dirName := "#ifdef"
		if negate {
			dirName = "#ifndef"
		}
		return fmt.Errorf("%s:%d: %s requires an identifier", frame.filename, lineNo, dirName)
	}
	defined := p.macros.IsDefined(toks[0].Lexeme, frame.filename, lineNo)
	result := defined
	if negate {
		result = !defined
	}
	frame.cond.push(&p.condPool, condKindFor(negate), lineNo, result)
	return nil
}

func (p *Preprocessor) handleElif(frame *IncludeState, lineNo int) error {
	toks := readDirectiveLine(frame)
	top := frame.cond.top
	if top == nil {
		return fmt.Errorf("%s:%d: #elif without matching #if", frame.filename, lineNo)
	}
	ancestorSkipping := top.Parent != nil && top.Parent.Skipping
	if ancestorSkipping || top.anyChosen {
		return frame.cond.elif(lineNo, false)
	}
	result, err := p.evalIfExpr(frame, toks)
	if err != nil {
		return err
	}
	return frame.cond.elif(lineNo, result != 0)
}

func (p *Preprocessor) handleElse(frame *IncludeState, lineNo int) error {
	readDirectiveLine(frame)
	return frame.cond.els(lineNo)
}

func (p *Preprocessor) handleEndif(frame *IncludeState, lineNo int) error {
	readDirectiveLine(frame)
	return frame.cond.endif(&p.condPool)
}

func (p *Preprocessor) handleError(frame *IncludeState, lineNo int) error {
	toks := readDirectiveLine(frame)
	if frame.cond.isSkipping() {
		return nil
	}
	return &PreprocessorError{File: frame.filename, Line: lineNo, Message: flattenTokens(toks)}
}

// onceMarker is implemented by an IncludeCallback (FileResolver) that
// supports #pragma once short-circuiting.
type onceMarker interface {
	MarkOnce(filename string)
}

func (p *Preprocessor) handlePragma(frame *IncludeState, lineNo int) error {
	toks := trimWhitespace(readDirectiveLine(frame))
	if frame.cond.isSkipping() {
		return nil
	}
	if len(toks) == 1 && toks[0].Kind == Identifier && toks[0].Lexeme == "once" {
		if marker, ok := p.callback.(onceMarker); ok {
			marker.MarkOnce(frame.filename)
		}
	}
	// Opaque passthrough: the directive tag and its tokens escape the
	// normal directive-swallowing, independent of any #pragma once
	// bookkeeping above.
	tag := []Token{
		{Kind: Hash, Lexeme: "#", Line: lineNo},
		{Kind: PPPragma, Lexeme: "pragma", Line: lineNo},
	}
	p.pending = append(p.pending, append(tag, stripWhitespaceTokens(toks)...)...)
	return nil
}

// evalIfExpr resolves `defined`, macro-expands what remains, and
// interprets the result as a constant expression (spec.md §4.7).
func (p *Preprocessor) evalIfExpr(frame *IncludeState, toks []Token) (int64, error) {
	toks = stripWhitespaceTokens(toks)
	resolved, err := resolveDefined(p.macros, frame, toks)
	if err != nil {
		return 0, err
	}
	depth := 0
	expanded, err := p.expandTokenList(resolved, &depth)
	if err != nil {
		return 0, err
	}
	return evalConstExpr(stripWhitespaceTokens(expanded))
}

// resolveDefined replaces every `defined IDENT` / `defined(IDENT)`
// with an IntLiteral 1/0, without macro-expanding IDENT (spec.md §4.7).
func resolveDefined(macros *MacroTable, frame *IncludeState, toks []Token) ([]Token, error) {
	var out []Token
	for i := 0; i < len(toks); i++ {
		t := toks[i]
		if t.Kind != Identifier || t.Lexeme != "defined" {
			out = append(out, t)
			continue
		}
		i++
		if i >= len(toks) {
			return nil, fmt.Errorf("%s: 'defined' requires an identifier", frame.filename)
		}
		paren := false
		if toks[i].Kind == Punct && toks[i].Lexeme == "(" {
			paren = true
			i++
		}
		if i >= len(toks) || toks[i].Kind != Identifier {
			return nil, fmt.Errorf("%s: 'defined' requires an identifier", frame.filename)
		}
		name := toks[i].Lexeme
		if paren {
			i++
			if i >= len(toks) || toks[i].Kind != Punct || toks[i].Lexeme != ")" {
				return nil, fmt.Errorf("%s: missing ')' after 'defined(%s'", frame.filename, name)
			}
		}
		v := int64(0)
		if macros.IsDefined(name, frame.filename, t.Line) {
			v = 1
		}
		out = append(out, Token{Kind: IntLiteral, Lexeme: fmt.Sprintf("%d", v), Line: t.Line})
	}
	return out, nil
}

// Preprocess drains the pump to completion, flattening the resulting
// tokens into text: one space between consecutive tokens on the same
// line, one newline per NEWLINE token the pump would otherwise
// swallow silently is reconstructed from the source's own line
// advances so output line numbers track input line numbers.
func Preprocess(filename, root string, callback IncludeCallback, defines map[string]string, undefines []string) (string, error) {
	p := NewPreprocessor(filename, root, callback)
	for name, body := range defines {
		if err := p.Define(name, body); err != nil {
			return "", err
		}
	}
	for _, name := range undefines {
		p.Undef(name)
	}
	var out []byte
	lastLine := 1
	atLineStart := true
	for {
		tok, err := p.NextToken()
		if err != nil {
			return string(out), err
		}
		if tok.Kind == EOI {
			break
		}
		for tok.Line > lastLine {
			out = append(out, '\n')
			lastLine++
			atLineStart = true
		}
		if !atLineStart {
			out = append(out, ' ')
		}
		out = append(out, tok.Lexeme...)
		atLineStart = false
	}
	return string(out), nil
}
