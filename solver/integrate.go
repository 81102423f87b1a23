package solver

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnsupported is returned when no rule applies to an integrand.
var ErrUnsupported = errors.New("no integration rule applies")

var errTooLarge = fmt.Errorf("%w: expansion exceeds %d terms", ErrUnsupported, MaxExpandTerms)

// Technique labels the integration method that dominated a derivation.
// Later constants outrank earlier ones.
type Technique int

const (
	TechniqueBasic Technique = iota
	TechniquePower
	TechniqueLogarithmic
	TechniqueExponential
	TechniqueTrigonometric
	TechniqueSubstitution
	TechniqueParts
)

func (t Technique) String() string {
	switch t {
	case TechniquePower:
		return "Power Rule"
	case TechniqueLogarithmic:
		return "Logarithmic Integration"
	case TechniqueExponential:
		return "Exponential Integration"
	case TechniqueTrigonometric:
		return "Trigonometric Integration"
	case TechniqueSubstitution:
		return "Substitution"
	case TechniqueParts:
		return "Integration by Parts"
	}
	return "Basic Integration"
}

type integrator struct {
	ctx      context.Context
	v        string
	maxDepth int
	steps    []string
	top      Technique
}

type checkpoint struct {
	steps int
	top   Technique
}

func (in *integrator) save() checkpoint { return checkpoint{steps: len(in.steps), top: in.top} }

func (in *integrator) restore(c checkpoint) {
	in.steps = in.steps[:c.steps]
	in.top = c.top
}

func (in *integrator) note(t Technique, format string, args ...any) {
	if t > in.top {
		in.top = t
	}
	in.steps = append(in.steps, fmt.Sprintf(format, args...))
}

func (in *integrator) dx() string { return "d" + in.v }

func (in *integrator) integrate(e Expr, depth int) (Expr, error) {
	if err := in.ctx.Err(); err != nil {
		return nil, err
	}
	if depth > in.maxDepth {
		return nil, ErrUnsupported
	}
	if !Contains(e, in.v) {
		r := MulOf(e, S(in.v))
		in.note(TechniqueBasic, "Constant rule: ∫ %s %s = %s", e, in.dx(), r)
		return r, nil
	}
	switch t := e.(type) {
	case *Sym:
		r := MulOf(F(1, 2), PowOf(t, N(2)))
		in.note(TechniquePower, "Power rule: ∫ %s %s = %s", t, in.dx(), r)
		return r, nil
	case *Add:
		in.note(TechniqueBasic, "Sum rule: integrate each of the %d terms separately", len(t.terms))
		parts := make([]Expr, len(t.terms))
		for i, term := range t.terms {
			r, err := in.integrate(term, depth)
			if err != nil {
				return nil, err
			}
			parts[i] = r
		}
		return AddOf(parts...), nil
	case *Mul:
		return in.product(t, depth)
	case *Pow:
		r, err := in.power(t, depth)
		if _, isFunc := t.base.(*Func); isFunc && errors.Is(err, ErrUnsupported) {
			return in.whole(t, depth)
		}
		return r, err
	case *Func:
		r, err := in.function(t, depth)
		if errors.Is(err, ErrUnsupported) {
			return in.whole(t, depth)
		}
		return r, err
	}
	return nil, ErrUnsupported
}

// whole integrates e by parts with u = e and dv = dx.
func (in *integrator) whole(e Expr, depth int) (Expr, error) {
	if r, ok := in.byParts([]Expr{e}, depth); ok {
		return r, nil
	}
	if err := in.ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrUnsupported
}

// linearCoeff returns du/dx when u is linear in the integration variable.
func (in *integrator) linearCoeff(u Expr) (Expr, bool) {
	if !Contains(u, in.v) {
		return nil, false
	}
	d := Diff(u, in.v)
	if Contains(d, in.v) {
		return nil, false
	}
	if n, ok := d.(*Num); ok && n.IsZero() {
		return nil, false
	}
	return d, true
}

func (in *integrator) noteLinear(u, a Expr) {
	if s, ok := u.(*Sym); ok && s.name == in.v {
		return
	}
	in.note(TechniqueBasic, "Linear substitution: u = %s, du = %s %s", u, a, in.dx())
}

func (in *integrator) product(m *Mul, depth int) (Expr, error) {
	var consts, vars []Expr
	for _, f := range m.factors {
		if Contains(f, in.v) {
			vars = append(vars, f)
		} else {
			consts = append(consts, f)
		}
	}
	if len(consts) > 0 {
		k := MulOf(consts...)
		in.note(TechniqueBasic, "Constant multiple rule: move %s outside the integral", k)
		r, err := in.integrate(MulOf(vars...), depth)
		if err != nil {
			return nil, err
		}
		return MulOf(k, r), nil
	}

	for _, f := range vars {
		if _, ok := f.(*Add); ok {
			expanded, ok := Expand(m)
			if !ok {
				return nil, errTooLarge
			}
			if Equal(expanded, m) {
				break
			}
			in.note(TechniqueBasic, "Expand the product: %s", expanded)
			return in.integrate(expanded, depth+1)
		}
	}
	if r, ok := in.substitute(vars, depth); ok {
		return r, nil
	}
	if r, ok := in.expTrig(vars); ok {
		return r, nil
	}
	if r, ok := in.quotient(vars, depth); ok {
		return r, nil
	}
	if r, ok := in.byParts(vars, depth); ok {
		return r, nil
	}
	return nil, ErrUnsupported
}

func (in *integrator) power(p *Pow, depth int) (Expr, error) {
	if !Contains(p.exp, in.v) {
		if a, ok := in.linearCoeff(p.base); ok {
			if en, ok := p.exp.(*Num); ok && en.IsNegOne() {
				r := MulOf(PowOf(a, N(-1)), FuncOf("log", p.base))
				in.noteLinear(p.base, a)
				in.note(TechniqueLogarithmic, "Reciprocal rule: ∫ 1/u du = log(u)")
				return r, nil
			}
			n1 := AddOf(p.exp, N(1))
			r := MulOf(PowOf(p.base, n1), PowOf(n1, N(-1)), PowOf(a, N(-1)))
			in.noteLinear(p.base, a)
			in.note(TechniquePower, "Power rule: ∫ u^n du = u^(n+1)/(n+1) with n = %s", p.exp)
			return r, nil
		}
		if f, ok := p.base.(*Func); ok {
			if r, ok := in.trigPower(f, p.exp); ok {
				return r, nil
			}
		}
		if en, ok := p.exp.(*Num); ok && en.IsNegOne() {
			if _, ok := p.base.(*Add); ok {
				if r, ok := in.rational(N(1), p.base, depth); ok {
					return r, nil
				}
			}
		}
		if _, ok := p.base.(*Add); ok {
			expanded, ok := Expand(p)
			if !ok {
				return nil, errTooLarge
			}
			if !Equal(expanded, p) {
				in.note(TechniqueBasic, "Expand the power: %s", expanded)
				return in.integrate(expanded, depth+1)
			}
		}
		return nil, ErrUnsupported
	}
	if !Contains(p.base, in.v) {
		if a, ok := in.linearCoeff(p.exp); ok {
			r := MulOf(p, PowOf(FuncOf("log", p.base), N(-1)), PowOf(a, N(-1)))
			in.noteLinear(p.exp, a)
			in.note(TechniqueExponential, "Exponential rule: ∫ a^u du = a^u/log(a) with a = %s", p.base)
			return r, nil
		}
	}
	return nil, ErrUnsupported
}

// trigPower integrates squares and inverse squares of trigonometric
// functions of a linear argument.
func (in *integrator) trigPower(f *Func, exp Expr) (Expr, bool) {
	a, ok := in.linearCoeff(f.arg)
	if !ok {
		return nil, false
	}
	en, ok := exp.(*Num)
	if !ok || !en.IsInteger() {
		return nil, false
	}
	u := f.arg
	twoU := MulOf(N(2), u)
	var anti Expr
	var rule string
	switch n := en.val.Num().Int64(); {
	case f.name == "sin" && n == 2:
		anti = AddOf(MulOf(F(1, 2), u), MulOf(F(-1, 4), FuncOf("sin", twoU)))
		rule = "Half-angle identity: sin(u)^2 = (1 - cos(2u))/2"
	case f.name == "cos" && n == 2:
		anti = AddOf(MulOf(F(1, 2), u), MulOf(F(1, 4), FuncOf("sin", twoU)))
		rule = "Half-angle identity: cos(u)^2 = (1 + cos(2u))/2"
	case f.name == "tan" && n == 2:
		anti = AddOf(FuncOf("tan", u), Neg(u))
		rule = "Pythagorean identity: tan(u)^2 = sec(u)^2 - 1"
	case (f.name == "sec" && n == 2) || (f.name == "cos" && n == -2):
		anti = FuncOf("tan", u)
		rule = "Standard integral: ∫ sec(u)^2 du = tan(u)"
	case (f.name == "csc" && n == 2) || (f.name == "sin" && n == -2):
		anti = Neg(FuncOf("cot", u))
		rule = "Standard integral: ∫ csc(u)^2 du = -cot(u)"
	default:
		return nil, false
	}
	in.noteLinear(u, a)
	in.note(TechniqueTrigonometric, "%s", rule)
	return MulOf(PowOf(a, N(-1)), anti), true
}

type tableEntry struct {
	technique Technique
	rule      string
	anti      func(u Expr) Expr
}

var table = map[string]tableEntry{
	"sin": {TechniqueTrigonometric, "∫ sin(u) du = -cos(u)", func(u Expr) Expr { return Neg(FuncOf("cos", u)) }},
	"cos": {TechniqueTrigonometric, "∫ cos(u) du = sin(u)", func(u Expr) Expr { return FuncOf("sin", u) }},
	"tan": {TechniqueTrigonometric, "∫ tan(u) du = -log(cos(u))", func(u Expr) Expr { return Neg(FuncOf("log", FuncOf("cos", u))) }},
	"sec": {TechniqueTrigonometric, "∫ sec(u) du = log(sec(u) + tan(u))", func(u Expr) Expr {
		return FuncOf("log", AddOf(FuncOf("sec", u), FuncOf("tan", u)))
	}},
	"csc": {TechniqueTrigonometric, "∫ csc(u) du = -log(csc(u) + cot(u))", func(u Expr) Expr {
		return Neg(FuncOf("log", AddOf(FuncOf("csc", u), FuncOf("cot", u))))
	}},
	"cot":  {TechniqueTrigonometric, "∫ cot(u) du = log(sin(u))", func(u Expr) Expr { return FuncOf("log", FuncOf("sin", u)) }},
	"exp":  {TechniqueExponential, "∫ exp(u) du = exp(u)", func(u Expr) Expr { return FuncOf("exp", u) }},
	"sinh": {TechniqueExponential, "∫ sinh(u) du = cosh(u)", func(u Expr) Expr { return FuncOf("cosh", u) }},
	"cosh": {TechniqueExponential, "∫ cosh(u) du = sinh(u)", func(u Expr) Expr { return FuncOf("sinh", u) }},
	"log": {TechniqueLogarithmic, "∫ log(u) du = u*log(u) - u", func(u Expr) Expr {
		return AddOf(MulOf(u, FuncOf("log", u)), Neg(u))
	}},
	"atan": {TechniqueBasic, "∫ atan(u) du = u*atan(u) - log(1 + u^2)/2", func(u Expr) Expr {
		return AddOf(MulOf(u, FuncOf("atan", u)), MulOf(F(-1, 2), FuncOf("log", AddOf(N(1), PowOf(u, N(2))))))
	}},
	"asin": {TechniqueBasic, "∫ asin(u) du = u*asin(u) + sqrt(1 - u^2)", func(u Expr) Expr {
		return AddOf(MulOf(u, FuncOf("asin", u)), PowOf(AddOf(N(1), Neg(PowOf(u, N(2)))), F(1, 2)))
	}},
}

func (in *integrator) function(f *Func, depth int) (Expr, error) {
	entry, ok := table[f.name]
	if !ok {
		return nil, ErrUnsupported
	}
	a, ok := in.linearCoeff(f.arg)
	if !ok {
		return nil, ErrUnsupported
	}
	in.noteLinear(f.arg, a)
	in.note(entry.technique, "Standard integral: %s", entry.rule)
	return MulOf(PowOf(a, N(-1)), entry.anti(f.arg)), nil
}

// substitute looks for a factor g(w) or w^n whose companion factors are a
// constant multiple of w'.
func (in *integrator) substitute(factors []Expr, depth int) (Expr, bool) {
	for i, f := range factors {
		others := make([]Expr, 0, len(factors)-1)
		others = append(others, factors[:i]...)
		others = append(others, factors[i+1:]...)
		rest := MulOf(others...)

		if fn, ok := f.(*Func); ok {
			if entry, ok := table[fn.name]; ok {
				if _, linear := in.linearCoeff(fn.arg); !linear {
					dw := Diff(fn.arg, in.v)
					ratio := MulOf(rest, PowOf(dw, N(-1)))
					if !Contains(ratio, in.v) {
						in.note(TechniqueSubstitution, "Substitute u = %s, du = %s %s", fn.arg, dw, in.dx())
						in.note(TechniqueSubstitution, "Standard integral: %s", entry.rule)
						return MulOf(ratio, entry.anti(fn.arg)), true
					}
				}
			}
		}

		w, n := f, Expr(N(1))
		if p, ok := f.(*Pow); ok && !Contains(p.exp, in.v) {
			w, n = p.base, p.exp
		}
		if s, ok := w.(*Sym); ok && s.name == in.v {
			continue
		}
		dw := Diff(w, in.v)
		ratio := MulOf(rest, PowOf(dw, N(-1)))
		if Contains(ratio, in.v) {
			continue
		}
		var anti Expr
		if en, ok := n.(*Num); ok && en.IsNegOne() {
			anti = FuncOf("log", w)
		} else {
			n1 := AddOf(n, N(1))
			anti = MulOf(PowOf(w, n1), PowOf(n1, N(-1)))
		}
		in.note(TechniqueSubstitution, "Substitute u = %s, du = %s %s", w, dw, in.dx())
		in.note(TechniqueSubstitution, "Integrate in u: %s", anti)
		return MulOf(ratio, anti), true
	}
	return nil, false
}

// liateRank orders candidates for u in integration by parts: logarithms,
// inverse trigonometric, algebraic, trigonometric, exponential.
func (in *integrator) liateRank(e Expr) int {
	switch t := e.(type) {
	case *Func:
		switch t.name {
		case "log":
			return 0
		case "asin", "acos", "atan":
			return 1
		case "exp", "sinh", "cosh":
			return 4
		}
		return 3
	case *Pow:
		if _, ok := t.base.(*Func); ok {
			return 3
		}
		if !Contains(t.base, in.v) {
			return 4
		}
	}
	return 2
}

func (in *integrator) byParts(factors []Expr, depth int) (Expr, bool) {
	if depth >= in.maxDepth {
		return nil, false
	}
	idx := 0
	for i, f := range factors {
		if in.liateRank(f) < in.liateRank(factors[idx]) {
			idx = i
		}
	}
	u := factors[idx]
	others := make([]Expr, 0, len(factors)-1)
	others = append(others, factors[:idx]...)
	others = append(others, factors[idx+1:]...)
	dv := MulOf(others...)

	cp := in.save()
	in.note(TechniqueParts, "Apply integration by parts: ∫u dv = uv - ∫v du")
	in.note(TechniqueParts, "Let u = %s and dv = %s %s", u, dv, in.dx())
	v, err := in.integrate(dv, depth+1)
	if err != nil {
		in.restore(cp)
		return nil, false
	}
	du := Diff(u, in.v)
	in.note(TechniqueParts, "Then du = %s %s and v = %s", du, in.dx(), v)
	w, err := in.integrate(MulOf(v, du), depth+1)
	if err != nil {
		in.restore(cp)
		return nil, false
	}
	return AddOf(MulOf(u, v), Neg(w)), true
}

// expTrig integrates exp(u)*sin(w) and exp(u)*cos(w) for linear u and w.
// Two rounds of integration by parts bring the original integral back, and
// the result is solved for it.
func (in *integrator) expTrig(factors []Expr) (Expr, bool) {
	if len(factors) != 2 {
		return nil, false
	}
	var ex, tr *Func
	for _, f := range factors {
		fn, ok := f.(*Func)
		if !ok {
			return nil, false
		}
		switch fn.name {
		case "exp":
			ex = fn
		case "sin", "cos":
			tr = fn
		}
	}
	if ex == nil || tr == nil {
		return nil, false
	}
	a, ok := in.linearCoeff(ex.arg)
	if !ok {
		return nil, false
	}
	b, ok := in.linearCoeff(tr.arg)
	if !ok {
		return nil, false
	}

	sin, cos := FuncOf("sin", tr.arg), FuncOf("cos", tr.arg)
	var num Expr
	if tr.name == "sin" {
		num = AddOf(MulOf(a, sin), Neg(MulOf(b, cos)))
	} else {
		num = AddOf(MulOf(a, cos), MulOf(b, sin))
	}
	den := AddOf(PowOf(a, N(2)), PowOf(b, N(2)))
	r := MulOf(ex, num, PowOf(den, N(-1)))

	in.note(TechniqueParts, "Apply integration by parts twice with u = %s and dv = %s %s", tr, ex, in.dx())
	in.note(TechniqueParts, "The original integral reappears with coefficient %s; solve for it", MulOf(N(-1), PowOf(b, N(2)), PowOf(a, N(-2))))
	in.note(TechniqueParts, "∫ %s %s = %s", MulOf(ex, tr), in.dx(), r)
	return r, true
}

// quotient looks for a factor 1/q with q a sum and integrates the rest over
// it as a rational function.
func (in *integrator) quotient(factors []Expr, depth int) (Expr, bool) {
	for i, f := range factors {
		p, ok := f.(*Pow)
		if !ok {
			continue
		}
		if en, ok := p.exp.(*Num); !ok || !en.IsNegOne() {
			continue
		}
		if _, ok := p.base.(*Add); !ok {
			continue
		}
		others := make([]Expr, 0, len(factors)-1)
		others = append(others, factors[:i]...)
		others = append(others, factors[i+1:]...)
		return in.rational(MulOf(others...), p.base, depth)
	}
	return nil, false
}

// rational integrates num/den for a polynomial num and a linear or quadratic
// den with numeric coefficients. The polynomial part of the long division is
// integrated term by term; the remainder splits into a multiple of den'/den,
// which gives a logarithm, and a constant over den, which gives an
// arctangent after completing the square.
func (in *integrator) rational(num, den Expr, depth int) (Expr, bool) {
	q, ok := polyCoeffs(den, in.v)
	if !ok || len(q) < 2 || len(q) > 3 {
		return nil, false
	}
	for _, c := range q {
		if _, ok := c.(*Num); !ok {
			return nil, false
		}
	}
	p, ok := polyCoeffs(num, in.v)
	if !ok {
		return nil, false
	}

	cp := in.save()
	quot, rem := polyDiv(p, q)
	var parts []Expr
	if qe := polyExpr(quot, in.v); !isZero(qe) {
		in.note(TechniqueBasic, "Polynomial division: (%s)/(%s) = %s + (%s)/(%s)",
			num, den, qe, polyExpr(rem, in.v), den)
		r, err := in.integrate(qe, depth+1)
		if err != nil {
			in.restore(cp)
			return nil, false
		}
		parts = append(parts, r)
	}

	r0, r1 := coeffAt(rem, 0), coeffAt(rem, 1)
	if len(q) == 2 {
		if !isZero(r0) {
			r, err := in.integrate(MulOf(r0, PowOf(den, N(-1))), depth+1)
			if err != nil {
				in.restore(cp)
				return nil, false
			}
			parts = append(parts, r)
		}
		return AddOf(parts...), true
	}

	q0, q1, q2 := q[0].(*Num), q[1].(*Num), q[2].(*Num)
	if !isZero(r1) {
		k := MulOf(r1, PowOf(MulOf(N(2), q2), N(-1)))
		in.note(TechniqueLogarithmic, "The numerator part %s is %s times (%s)', so it integrates to %s",
			AddOf(MulOf(r1, S(in.v)), MulOf(k, q1)), k, den, MulOf(k, FuncOf("log", den)))
		parts = append(parts, MulOf(k, FuncOf("log", den)))
		r0 = AddOf(r0, Neg(MulOf(k, q1)))
	}
	if !isZero(r0) {
		h := numMul(q1, numInv(numMul(N(2), q2)))
		d := numAdd(q0, numNeg(numMul(numMul(q1, q1), numInv(numMul(N(4), q2)))))
		if q2.Sign() <= 0 || d.Sign() <= 0 {
			in.restore(cp)
			return nil, false
		}
		shifted := AddOf(S(in.v), h)
		var root Expr = PowOf(numMul(q2, d), F(1, 2))
		if r, ok := numSqrt(numMul(q2, d)); ok {
			root = r
		}
		in.note(TechniqueBasic, "Complete the square: %s = %s", den, AddOf(MulOf(q2, PowOf(shifted, N(2))), d))
		in.note(TechniqueBasic, "Standard integral: ∫ 1/(u^2 + a^2) du = atan(u/a)/a")
		parts = append(parts, MulOf(r0, PowOf(root, N(-1)), FuncOf("atan", MulOf(q2, shifted, PowOf(root, N(-1))))))
	}
	return AddOf(parts...), true
}
