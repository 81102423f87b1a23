// Package solver implements the rule-based symbolic integrator behind the
// /solve endpoint: a small expression tree over exact rationals, a parser for
// the calculator-style input language, differentiation and a table of
// integration rules that records a human readable step for every rule it
// applies.
package solver

import (
	"math/big"
	"sort"
)

// Expr is a node of the expression tree. Expressions are immutable and are
// always built through the *Of constructors, which keep them canonical.
type Expr interface {
	String() string
	LaTeX() string
}

// Num is an exact rational number.
type Num struct{ val *big.Rat }

// Sym is a named symbol. The names "pi" and "e" denote the constants.
type Sym struct{ name string }

// Add is a sum of at least two terms.
type Add struct{ terms []Expr }

// Mul is a product of at least two factors; a numeric coefficient, if any,
// is always the first factor.
type Mul struct{ factors []Expr }

// Pow is base raised to exp.
type Pow struct{ base, exp Expr }

// Func is an elementary function applied to a single argument.
type Func struct {
	name string
	arg  Expr
}

func N(n int64) *Num { return &Num{val: new(big.Rat).SetInt64(n)} }

func F(p, q int64) *Num { return &Num{val: big.NewRat(p, q)} }

func S(name string) *Sym { return &Sym{name: name} }

func (n *Num) IsZero() bool    { return n.val.Sign() == 0 }
func (n *Num) IsOne() bool     { return n.val.Cmp(big.NewRat(1, 1)) == 0 }
func (n *Num) IsNegOne() bool  { return n.val.Cmp(big.NewRat(-1, 1)) == 0 }
func (n *Num) IsInteger() bool { return n.val.IsInt() }
func (n *Num) Sign() int       { return n.val.Sign() }

func (s *Sym) Name() string { return s.name }

func numAdd(a, b *Num) *Num { return &Num{val: new(big.Rat).Add(a.val, b.val)} }
func numMul(a, b *Num) *Num { return &Num{val: new(big.Rat).Mul(a.val, b.val)} }
func numNeg(a *Num) *Num    { return &Num{val: new(big.Rat).Neg(a.val)} }

// numPow raises a to an integer power; ok is false for 0^-n and for
// exponents too large to fold.
func numPow(a *Num, e int64) (*Num, bool) {
	if e < -64 || e > 64 {
		return nil, false
	}
	if e < 0 && a.IsZero() {
		return nil, false
	}
	neg := e < 0
	if neg {
		e = -e
	}
	acc := new(big.Rat).SetInt64(1)
	for i := int64(0); i < e; i++ {
		acc.Mul(acc, a.val)
	}
	if neg {
		acc.Inv(acc)
	}
	return &Num{val: acc}, true
}

// Equal compares two expressions structurally through their canonical form.
func Equal(a, b Expr) bool { return a.String() == b.String() }

// Contains reports whether the symbol name occurs anywhere in e.
func Contains(e Expr, name string) bool {
	switch t := e.(type) {
	case *Sym:
		return t.name == name
	case *Add:
		for _, term := range t.terms {
			if Contains(term, name) {
				return true
			}
		}
	case *Mul:
		for _, f := range t.factors {
			if Contains(f, name) {
				return true
			}
		}
	case *Pow:
		return Contains(t.base, name) || Contains(t.exp, name)
	case *Func:
		return Contains(t.arg, name)
	}
	return false
}

// AddOf builds a canonical sum: nested sums are flattened, numbers folded
// and like terms collected in first-seen order with the constant last.
func AddOf(terms ...Expr) Expr {
	type group struct {
		coeff *Num
		rest  Expr
	}
	sum := N(0)
	var groups []*group
	index := map[string]*group{}

	var visit func(e Expr)
	visit = func(e Expr) {
		switch t := e.(type) {
		case *Add:
			for _, inner := range t.terms {
				visit(inner)
			}
		case *Num:
			sum = numAdd(sum, t)
		default:
			c, rest := splitCoeff(e)
			key := rest.String()
			if g, ok := index[key]; ok {
				g.coeff = numAdd(g.coeff, c)
				return
			}
			g := &group{coeff: c, rest: rest}
			index[key] = g
			groups = append(groups, g)
		}
	}
	for _, t := range terms {
		visit(t)
	}

	out := make([]Expr, 0, len(groups)+1)
	for _, g := range groups {
		if g.coeff.IsZero() {
			continue
		}
		out = append(out, MulOf(g.coeff, g.rest))
	}
	if !sum.IsZero() {
		out = append(out, sum)
	}
	switch len(out) {
	case 0:
		return N(0)
	case 1:
		return out[0]
	}
	return &Add{terms: out}
}

// splitCoeff separates the numeric coefficient of a canonical term.
func splitCoeff(e Expr) (*Num, Expr) {
	m, ok := e.(*Mul)
	if !ok {
		return N(1), e
	}
	c, ok := m.factors[0].(*Num)
	if !ok {
		return N(1), e
	}
	if len(m.factors) == 2 {
		return c, m.factors[1]
	}
	return c, &Mul{factors: m.factors[1:]}
}

// MulOf builds a canonical product: nested products are flattened, numbers
// folded into one leading coefficient and powers of the same base combined.
func MulOf(factors ...Expr) Expr {
	type power struct {
		base, exp Expr
	}
	coeff := N(1)
	var powers []*power
	index := map[string]*power{}

	var visit func(e Expr)
	visit = func(e Expr) {
		switch t := e.(type) {
		case *Mul:
			for _, inner := range t.factors {
				visit(inner)
			}
		case *Num:
			coeff = numMul(coeff, t)
		default:
			base, exp := e, Expr(N(1))
			if p, ok := e.(*Pow); ok {
				base, exp = p.base, p.exp
			}
			key := base.String()
			if p, ok := index[key]; ok {
				p.exp = AddOf(p.exp, exp)
				return
			}
			p := &power{base: base, exp: exp}
			index[key] = p
			powers = append(powers, p)
		}
	}
	for _, f := range factors {
		visit(f)
	}
	if coeff.IsZero() {
		return N(0)
	}

	out := make([]Expr, 0, len(powers))
	regroup := false
	for _, p := range powers {
		e := PowOf(p.base, p.exp)
		switch t := e.(type) {
		case *Num:
			coeff = numMul(coeff, t)
			continue
		case *Mul:
			regroup = true
		}
		out = append(out, e)
	}
	if regroup {
		return MulOf(append([]Expr{coeff}, out...)...)
	}
	if coeff.IsZero() {
		return N(0)
	}
	sort.SliceStable(out, func(i, j int) bool { return factorRank(out[i]) < factorRank(out[j]) })

	switch {
	case len(out) == 0:
		return coeff
	case coeff.IsOne() && len(out) == 1:
		return out[0]
	case coeff.IsOne():
		return &Mul{factors: out}
	}
	return &Mul{factors: append([]Expr{coeff}, out...)}
}

// factorRank orders product factors: powers of symbols, then functions and
// other powers, then sums.
func factorRank(e Expr) int {
	switch t := e.(type) {
	case *Sym:
		return 0
	case *Pow:
		switch t.base.(type) {
		case *Sym:
			return 0
		case *Add:
			return 2
		}
		return 1
	case *Add:
		return 2
	}
	return 1
}

// PowOf builds a canonical power.
func PowOf(base, exp Expr) Expr {
	if en, ok := exp.(*Num); ok {
		if en.IsZero() {
			return N(1)
		}
		if en.IsOne() {
			return base
		}
	}
	switch b := base.(type) {
	case *Num:
		if b.IsOne() {
			return N(1)
		}
		if en, ok := exp.(*Num); ok {
			if b.IsZero() && en.Sign() > 0 {
				return N(0)
			}
			if en.IsInteger() {
				if r, ok := numPow(b, en.val.Num().Int64()); ok {
					return r
				}
			}
		}
	case *Sym:
		if b.name == "e" {
			return FuncOf("exp", exp)
		}
	case *Pow:
		if en, ok := exp.(*Num); ok && en.IsInteger() {
			return PowOf(b.base, MulOf(b.exp, en))
		}
	case *Mul:
		if en, ok := exp.(*Num); ok && en.IsInteger() {
			parts := make([]Expr, len(b.factors))
			for i, f := range b.factors {
				parts[i] = PowOf(f, en)
			}
			return MulOf(parts...)
		}
	case *Func:
		if b.name == "exp" {
			if en, ok := exp.(*Num); ok {
				return FuncOf("exp", MulOf(en, b.arg))
			}
		}
	}
	return &Pow{base: base, exp: exp}
}

// FuncOf applies a named function, folding the trivial values.
func FuncOf(name string, arg Expr) Expr {
	if name == "ln" {
		name = "log"
	}
	if n, ok := arg.(*Num); ok {
		switch {
		case n.IsZero():
			switch name {
			case "sin", "tan", "sinh", "tanh", "asin", "atan":
				return N(0)
			case "cos", "cosh", "exp", "sec":
				return N(1)
			}
		case n.IsOne() && name == "log":
			return N(0)
		}
	}
	switch name {
	case "exp":
		if inner, ok := arg.(*Func); ok && inner.name == "log" {
			return inner.arg
		}
	case "log":
		if inner, ok := arg.(*Func); ok && inner.name == "exp" {
			return inner.arg
		}
		if s, ok := arg.(*Sym); ok && s.name == "e" {
			return N(1)
		}
	}
	return &Func{name: name, arg: arg}
}

// Neg returns -e.
func Neg(e Expr) Expr { return MulOf(N(-1), e) }

// MaxExpandTerms bounds the number of collected terms Expand may produce.
const MaxExpandTerms = 256

const maxCrossProducts = 16 * MaxExpandTerms

// Expand distributes products and small integer powers over sums. ok is
// false when the result would exceed MaxExpandTerms terms.
func Expand(e Expr) (Expr, bool) {
	switch t := e.(type) {
	case *Add:
		terms := make([]Expr, 0, len(t.terms))
		for _, term := range t.terms {
			x, ok := Expand(term)
			if !ok {
				return nil, false
			}
			terms = append(terms, termsOf(x)...)
		}
		if len(terms) > MaxExpandTerms {
			return nil, false
		}
		return AddOf(terms...), true
	case *Mul:
		acc := []Expr{N(1)}
		for _, f := range t.factors {
			x, ok := Expand(f)
			if !ok {
				return nil, false
			}
			if acc, ok = crossTerms(acc, termsOf(x)); !ok {
				return nil, false
			}
		}
		return AddOf(acc...), true
	case *Pow:
		en, ok := t.exp.(*Num)
		if _, isAdd := t.base.(*Add); !isAdd || !ok || !en.IsInteger() || en.Sign() <= 0 {
			return e, true
		}
		n := en.val.Num().Int64()
		if n > 8 {
			return e, true
		}
		x, ok := Expand(t.base)
		if !ok {
			return nil, false
		}
		base := termsOf(x)
		acc := []Expr{N(1)}
		for i := int64(0); i < n; i++ {
			if acc, ok = crossTerms(acc, base); !ok {
				return nil, false
			}
		}
		return AddOf(acc...), true
	}
	return e, true
}

func termsOf(e Expr) []Expr {
	if a, ok := e.(*Add); ok {
		return a.terms
	}
	return []Expr{e}
}

// crossTerms multiplies two sums term by term and collects like terms after
// every product so intermediate results stay as small as the final one.
func crossTerms(a, b []Expr) ([]Expr, bool) {
	if len(a)*len(b) > maxCrossProducts {
		return nil, false
	}
	out := make([]Expr, 0, len(a)*len(b))
	for _, x := range a {
		for _, y := range b {
			out = append(out, MulOf(x, y))
		}
	}
	collected := termsOf(AddOf(out...))
	if len(collected) > MaxExpandTerms {
		return nil, false
	}
	return collected, true
}
