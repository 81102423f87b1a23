package solver

import (
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

// SyntaxError reports a malformed expression. Pos is a rune offset into the
// input.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s at position %d", e.Msg, e.Pos)
}

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokNum
	tokIdent
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

var functions = map[string]string{
	"sin": "sin", "cos": "cos", "tan": "tan",
	"sec": "sec", "csc": "csc", "cot": "cot",
	"exp": "exp", "log": "log", "ln": "log",
	"sinh": "sinh", "cosh": "cosh", "tanh": "tanh",
	"asin": "asin", "acos": "acos", "atan": "atan",
	"arcsin": "asin", "arccos": "acos", "arctan": "atan",
	"sqrt": "sqrt",
}

// operator spellings beyond plain ASCII, as produced by symbol insertion.
var opAliases = map[rune]string{
	'·': "*",
	'×': "*",
	'÷': "/",
	'−': "-",
}

func tokenize(input string) ([]token, error) {
	rs := []rune(input)
	var toks []token
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case unicode.IsDigit(r) || (r == '.' && i+1 < len(rs) && unicode.IsDigit(rs[i+1])):
			start := i
			dot := false
			for i < len(rs) && (unicode.IsDigit(rs[i]) || (rs[i] == '.' && !dot)) {
				if rs[i] == '.' {
					dot = true
				}
				i++
			}
			toks = append(toks, token{kind: tokNum, text: string(rs[start:i]), pos: start})
		case r == 'π':
			toks = append(toks, token{kind: tokIdent, text: "pi", pos: i})
			i++
		case unicode.IsLetter(r) || r == '_':
			start := i
			for i < len(rs) && (unicode.IsLetter(rs[i]) || unicode.IsDigit(rs[i]) || rs[i] == '_') {
				i++
			}
			toks = append(toks, token{kind: tokIdent, text: string(rs[start:i]), pos: start})
		case r == '*' && i+1 < len(rs) && rs[i+1] == '*':
			toks = append(toks, token{kind: tokOp, text: "^", pos: i})
			i += 2
		case strings.ContainsRune("+-*/^", r):
			toks = append(toks, token{kind: tokOp, text: string(r), pos: i})
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		default:
			if op, ok := opAliases[r]; ok {
				toks = append(toks, token{kind: tokOp, text: op, pos: i})
				i++
				continue
			}
			return nil, &SyntaxError{Pos: i, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	toks = append(toks, token{kind: tokEOF, pos: len(rs)})
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse reads an expression in calculator notation. Powers are written with
// ^ or **, ln and log both denote the natural logarithm, e^u is exp(u) and
// a number or closing parenthesis followed by a name or an opening
// parenthesis multiplies implicitly.
func Parse(input string) (Expr, error) {
	toks, err := tokenize(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return nil, &SyntaxError{Pos: 0, Msg: "empty expression"}
	}
	e, err := p.expr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
	}
	return e, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) isOp(text string) bool {
	t := p.peek()
	return t.kind == tokOp && t.text == text
}

func (p *parser) expr() (Expr, error) {
	left, err := p.term()
	if err != nil {
		return nil, err
	}
	for p.isOp("+") || p.isOp("-") {
		op := p.next()
		right, err := p.term()
		if err != nil {
			return nil, err
		}
		if op.text == "-" {
			right = Neg(right)
		}
		left = AddOf(left, right)
	}
	return left, nil
}

func (p *parser) term() (Expr, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for {
		switch t := p.peek(); {
		case p.isOp("*"), p.isOp("/"):
			op := p.next()
			right, err := p.unary()
			if err != nil {
				return nil, err
			}
			if op.text == "/" {
				right = PowOf(right, N(-1))
			}
			left = MulOf(left, right)
		case t.kind == tokIdent || t.kind == tokLParen || t.kind == tokNum:
			if t.kind == tokNum && p.toks[p.pos-1].kind != tokRParen {
				return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected number %q", t.text)}
			}
			right, err := p.power()
			if err != nil {
				return nil, err
			}
			left = MulOf(left, right)
		default:
			return left, nil
		}
	}
}

func (p *parser) unary() (Expr, error) {
	if p.isOp("-") {
		p.next()
		e, err := p.unary()
		if err != nil {
			return nil, err
		}
		return Neg(e), nil
	}
	if p.isOp("+") {
		p.next()
		return p.unary()
	}
	return p.power()
}

func (p *parser) power() (Expr, error) {
	base, err := p.primary()
	if err != nil {
		return nil, err
	}
	if p.isOp("^") {
		p.next()
		exp, err := p.unary()
		if err != nil {
			return nil, err
		}
		return PowOf(base, exp), nil
	}
	return base, nil
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNum:
		r, ok := new(big.Rat).SetString(t.text)
		if !ok {
			return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("invalid number %q", t.text)}
		}
		return &Num{val: r}, nil
	case tokIdent:
		name, isFunc := functions[strings.ToLower(t.text)]
		if !isFunc {
			return S(t.text), nil
		}
		if p.peek().kind != tokLParen {
			return nil, &SyntaxError{Pos: p.peek().pos, Msg: fmt.Sprintf("expected '(' after %s", t.text)}
		}
		p.next()
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		if name == "sqrt" {
			return PowOf(arg, F(1, 2)), nil
		}
		return FuncOf(name, arg), nil
	case tokLParen:
		e, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.closeParen(); err != nil {
			return nil, err
		}
		return e, nil
	case tokEOF:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected end of expression"}
	}
	return nil, &SyntaxError{Pos: t.pos, Msg: fmt.Sprintf("unexpected %q", t.text)}
}

func (p *parser) closeParen() error {
	t := p.next()
	if t.kind != tokRParen {
		return &SyntaxError{Pos: t.pos, Msg: "missing ')'"}
	}
	return nil
}
