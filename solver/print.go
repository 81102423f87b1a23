package solver

import (
	"math/big"
	"strings"
)

func (n *Num) String() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	return n.val.RatString()
}

func (n *Num) LaTeX() string {
	if n.val.IsInt() {
		return n.val.Num().String()
	}
	p := new(big.Int).Abs(n.val.Num())
	s := "\\frac{" + p.String() + "}{" + n.val.Denom().String() + "}"
	if n.Sign() < 0 {
		return "-" + s
	}
	return s
}

func (s *Sym) String() string { return s.name }

func (s *Sym) LaTeX() string {
	if s.name == "pi" {
		return "\\pi"
	}
	return s.name
}

// negated returns -e when e prints with a leading minus sign.
func negated(e Expr) (Expr, bool) {
	c, _ := splitCoeff(e)
	if n, ok := e.(*Num); ok {
		c = n
	}
	if c.Sign() >= 0 {
		return nil, false
	}
	return Neg(e), true
}

func (a *Add) String() string {
	var b strings.Builder
	for i, t := range a.terms {
		if i > 0 {
			if neg, ok := negated(t); ok {
				b.WriteString(" - ")
				b.WriteString(neg.String())
				continue
			}
			b.WriteString(" + ")
		}
		b.WriteString(t.String())
	}
	return b.String()
}

func (a *Add) LaTeX() string {
	var b strings.Builder
	for i, t := range a.terms {
		if i > 0 {
			if neg, ok := negated(t); ok {
				b.WriteString(" - ")
				b.WriteString(neg.LaTeX())
				continue
			}
			b.WriteString(" + ")
		}
		b.WriteString(t.LaTeX())
	}
	return b.String()
}

// fraction splits a product into its coefficient and the factors that go
// above and below the fraction bar.
func (m *Mul) fraction() (coeff *Num, num, den []Expr) {
	coeff = N(1)
	for _, f := range m.factors {
		if n, ok := f.(*Num); ok {
			coeff = n
			continue
		}
		if p, ok := f.(*Pow); ok {
			if en, ok := p.exp.(*Num); ok && en.Sign() < 0 {
				den = append(den, PowOf(p.base, numNeg(en)))
				continue
			}
		}
		num = append(num, f)
	}
	return coeff, num, den
}

func factorString(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "(" + e.String() + ")"
	}
	return e.String()
}

func factorLaTeX(e Expr) string {
	if _, ok := e.(*Add); ok {
		return "\\left(" + e.LaTeX() + "\\right)"
	}
	return e.LaTeX()
}

func (m *Mul) String() string {
	coeff, num, den := m.fraction()
	p := new(big.Int).Abs(coeff.val.Num())
	q := coeff.val.Denom()

	var top []string
	if p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
		top = append(top, p.String())
	}
	for _, f := range num {
		top = append(top, factorString(f))
	}
	s := strings.Join(top, "*")
	if coeff.Sign() < 0 {
		s = "-" + s
	}

	var bottom []string
	if q.Cmp(big.NewInt(1)) != 0 {
		bottom = append(bottom, q.String())
	}
	for _, f := range den {
		bottom = append(bottom, factorString(f))
	}
	if len(bottom) == 0 {
		return s
	}
	d := strings.Join(bottom, "*")
	if len(bottom) > 1 {
		d = "(" + d + ")"
	}
	return s + "/" + d
}

func (m *Mul) LaTeX() string {
	coeff, num, den := m.fraction()
	p := new(big.Int).Abs(coeff.val.Num())
	q := coeff.val.Denom()

	var top []string
	if p.Cmp(big.NewInt(1)) != 0 || len(num) == 0 {
		top = append(top, p.String())
	}
	for _, f := range num {
		top = append(top, factorLaTeX(f))
	}
	sign := ""
	if coeff.Sign() < 0 {
		sign = "-"
	}

	var bottom []string
	if q.Cmp(big.NewInt(1)) != 0 {
		bottom = append(bottom, q.String())
	}
	for _, f := range den {
		bottom = append(bottom, factorLaTeX(f))
	}
	if len(bottom) == 0 {
		return sign + strings.Join(top, " \\cdot ")
	}
	return sign + "\\frac{" + strings.Join(top, " \\cdot ") + "}{" + strings.Join(bottom, " \\cdot ") + "}"
}

func baseNeedsParens(e Expr) bool {
	switch t := e.(type) {
	case *Add, *Mul, *Pow:
		return true
	case *Num:
		return t.Sign() < 0 || !t.IsInteger()
	}
	return false
}

func (p *Pow) String() string {
	if en, ok := p.exp.(*Num); ok && en.Sign() < 0 {
		return "1/" + factorString(PowOf(p.base, numNeg(en)))
	}
	base := p.base.String()
	if baseNeedsParens(p.base) {
		base = "(" + base + ")"
	}
	exp := p.exp.String()
	switch t := p.exp.(type) {
	case *Sym:
	case *Num:
		if !t.IsInteger() {
			exp = "(" + exp + ")"
		}
	default:
		exp = "(" + exp + ")"
	}
	return base + "^" + exp
}

func (p *Pow) LaTeX() string {
	if en, ok := p.exp.(*Num); ok {
		if en.Sign() < 0 {
			return "\\frac{1}{" + PowOf(p.base, numNeg(en)).LaTeX() + "}"
		}
		if en.val.Cmp(big.NewRat(1, 2)) == 0 {
			return "\\sqrt{" + p.base.LaTeX() + "}"
		}
	}
	base := p.base.LaTeX()
	if baseNeedsParens(p.base) {
		base = "\\left(" + base + "\\right)"
	}
	return base + "^{" + p.exp.LaTeX() + "}"
}

func (f *Func) String() string { return f.name + "(" + f.arg.String() + ")" }

var latexFuncNames = map[string]string{
	"sin":  "\\sin",
	"cos":  "\\cos",
	"tan":  "\\tan",
	"sec":  "\\sec",
	"csc":  "\\csc",
	"cot":  "\\cot",
	"log":  "\\ln",
	"sinh": "\\sinh",
	"cosh": "\\cosh",
	"tanh": "\\tanh",
	"asin": "\\arcsin",
	"acos": "\\arccos",
	"atan": "\\arctan",
}

func (f *Func) LaTeX() string {
	if f.name == "exp" {
		return "e^{" + f.arg.LaTeX() + "}"
	}
	name, ok := latexFuncNames[f.name]
	if !ok {
		name = "\\operatorname{" + f.name + "}"
	}
	return name + "\\left(" + f.arg.LaTeX() + "\\right)"
}
