package evo

// Quadratic is the objective f(x) = A*x^2 + B*x + C.
type Quadratic struct {
	A float64 `json:"a" yaml:"a"`
	B float64 `json:"b" yaml:"b"`
	C float64 `json:"c" yaml:"c"`
}

func (q Quadratic) Eval(x float64) float64 {
	return x*x*q.A + x*q.B + q.C
}
