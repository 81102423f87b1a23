package solver

// ExampleGroup is one line of the examples panel.
type ExampleGroup struct {
	Category    string   `json:"category"`
	Expressions []string `json:"expressions"`
}

// Examples lists sample inputs per integration category.
var Examples = []ExampleGroup{
	{Category: "Basic", Expressions: []string{"x^2", "2*x + 3"}},
	{Category: "Trigonometric", Expressions: []string{"sin(x)", "cos(x)", "tan(x)"}},
	{Category: "Exponential", Expressions: []string{"exp(x)", "e^x"}},
	{Category: "Integration by Parts", Expressions: []string{"x*sin(x)", "x*exp(x)"}},
	{Category: "Logarithmic", Expressions: []string{"log(x)", "1/x"}},
}

// ExamplesNote explains the input notation.
const ExamplesNote = "Use ^ for powers, * for multiplication"
