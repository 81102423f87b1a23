package solver

// Diff differentiates e with respect to the symbol v.
func Diff(e Expr, v string) Expr {
	switch t := e.(type) {
	case *Num:
		return N(0)
	case *Sym:
		if t.name == v {
			return N(1)
		}
		return N(0)
	case *Add:
		terms := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			terms[i] = Diff(term, v)
		}
		return AddOf(terms...)
	case *Mul:
		terms := make([]Expr, 0, len(t.factors))
		for i, fi := range t.factors {
			d := Diff(fi, v)
			if n, ok := d.(*Num); ok && n.IsZero() {
				continue
			}
			parts := make([]Expr, 0, len(t.factors))
			parts = append(parts, d)
			for j, fj := range t.factors {
				if j != i {
					parts = append(parts, fj)
				}
			}
			terms = append(terms, MulOf(parts...))
		}
		return AddOf(terms...)
	case *Pow:
		switch {
		case !Contains(t.exp, v):
			return MulOf(t.exp, PowOf(t.base, AddOf(t.exp, N(-1))), Diff(t.base, v))
		case !Contains(t.base, v):
			return MulOf(t, FuncOf("log", t.base), Diff(t.exp, v))
		}
		return MulOf(t, AddOf(
			MulOf(Diff(t.exp, v), FuncOf("log", t.base)),
			MulOf(t.exp, Diff(t.base, v), PowOf(t.base, N(-1))),
		))
	case *Func:
		return MulOf(derivativeOf(t.name, t.arg), Diff(t.arg, v))
	}
	return N(0)
}

// derivativeOf returns f'(u) for the elementary function f.
func derivativeOf(name string, u Expr) Expr {
	switch name {
	case "sin":
		return FuncOf("cos", u)
	case "cos":
		return Neg(FuncOf("sin", u))
	case "tan":
		return PowOf(FuncOf("cos", u), N(-2))
	case "sec":
		return MulOf(FuncOf("sec", u), FuncOf("tan", u))
	case "csc":
		return Neg(MulOf(FuncOf("csc", u), FuncOf("cot", u)))
	case "cot":
		return Neg(PowOf(FuncOf("sin", u), N(-2)))
	case "exp":
		return FuncOf("exp", u)
	case "log":
		return PowOf(u, N(-1))
	case "sinh":
		return FuncOf("cosh", u)
	case "cosh":
		return FuncOf("sinh", u)
	case "tanh":
		return AddOf(N(1), Neg(PowOf(FuncOf("tanh", u), N(2))))
	case "asin":
		return PowOf(AddOf(N(1), Neg(PowOf(u, N(2)))), F(-1, 2))
	case "acos":
		return Neg(PowOf(AddOf(N(1), Neg(PowOf(u, N(2)))), F(-1, 2)))
	case "atan":
		return PowOf(AddOf(N(1), PowOf(u, N(2))), N(-1))
	}
	return N(0)
}
