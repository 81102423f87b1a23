package solver

import "math/big"

const maxPolyDegree = 32

func numInv(a *Num) *Num { return &Num{val: new(big.Rat).Inv(a.val)} }

// numSqrt returns the exact square root of a when it is rational.
func numSqrt(a *Num) (*Num, bool) {
	if a.Sign() < 0 {
		return nil, false
	}
	p, q := a.val.Num(), a.val.Denom()
	sp, sq := new(big.Int).Sqrt(p), new(big.Int).Sqrt(q)
	if new(big.Int).Mul(sp, sp).Cmp(p) != 0 || new(big.Int).Mul(sq, sq).Cmp(q) != 0 {
		return nil, false
	}
	return &Num{val: new(big.Rat).SetFrac(sp, sq)}, true
}

func isZero(e Expr) bool {
	n, ok := e.(*Num)
	return ok && n.IsZero()
}

func isVar(e Expr, v string) bool {
	s, ok := e.(*Sym)
	return ok && s.name == v
}

// polyCoeffs returns the coefficients of e as a polynomial in v, lowest
// degree first and without trailing zeros. ok is false when e is not a
// polynomial in v.
func polyCoeffs(e Expr, v string) ([]Expr, bool) {
	x, ok := Expand(e)
	if !ok {
		return nil, false
	}
	byDegree := map[int][]Expr{}
	top := 0
	for _, term := range termsOf(x) {
		n, c, ok := monomial(term, v)
		if !ok {
			return nil, false
		}
		byDegree[n] = append(byDegree[n], c)
		top = max(top, n)
	}
	out := make([]Expr, top+1)
	for i := range out {
		out[i] = AddOf(byDegree[i]...)
	}
	for len(out) > 1 && isZero(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out, true
}

// monomial splits term into c*v^n with c free of v.
func monomial(term Expr, v string) (int, Expr, bool) {
	factors := []Expr{term}
	if m, ok := term.(*Mul); ok {
		factors = m.factors
	}
	degree := 0
	var rest []Expr
	for _, f := range factors {
		switch {
		case !Contains(f, v):
			rest = append(rest, f)
		case isVar(f, v):
			degree++
		default:
			p, ok := f.(*Pow)
			if !ok || !isVar(p.base, v) {
				return 0, nil, false
			}
			n, ok := p.exp.(*Num)
			if !ok || !n.IsInteger() || n.Sign() < 0 || !n.val.Num().IsInt64() {
				return 0, nil, false
			}
			degree += int(n.val.Num().Int64())
		}
	}
	if degree > maxPolyDegree {
		return 0, nil, false
	}
	return degree, MulOf(rest...), true
}

// polyDiv divides p by q, whose leading coefficient must be a nonzero
// number, and returns the quotient and a remainder of lower degree than q.
func polyDiv(p, q []Expr) (quot, rem []Expr) {
	rem = append([]Expr(nil), p...)
	m := len(q) - 1
	lead := PowOf(q[m], N(-1))
	if len(rem) > m {
		quot = make([]Expr, len(rem)-m)
	}
	for n := len(rem) - 1; n >= m; n-- {
		c := MulOf(rem[n], lead)
		quot[n-m] = c
		for i := 0; i <= m; i++ {
			rem[n-m+i] = AddOf(rem[n-m+i], Neg(MulOf(c, q[i])))
		}
	}
	if len(rem) > m {
		rem = rem[:m]
	}
	return quot, rem
}

// polyExpr rebuilds a polynomial from its coefficients, highest degree first.
func polyExpr(c []Expr, v string) Expr {
	terms := make([]Expr, 0, len(c))
	for i := len(c) - 1; i >= 0; i-- {
		if isZero(c[i]) {
			continue
		}
		terms = append(terms, MulOf(c[i], PowOf(S(v), N(int64(i)))))
	}
	return AddOf(terms...)
}

func coeffAt(c []Expr, i int) Expr {
	if i < len(c) {
		return c[i]
	}
	return N(0)
}
