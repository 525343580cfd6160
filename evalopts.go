package grover

// EvalOption is an option used when creating an evaluator.
type EvalOption interface {
	evalOption()
}

type (
	varopt struct {
		name string
		val  float64
	}
	varsopt  map[string]float64
	constopt varopt
	precopt  uint
)

func (varopt) evalOption()   {}
func (varsopt) evalOption()  {}
func (constopt) evalOption() {}
func (precopt) evalOption()  {}

// SetVar sets the value of a variable in the evaluator. NewEvaluator panics
// if name is not a valid identifier or is already constant.
func SetVar(name string, val float64) EvalOption {
	return varopt{name, val}
}

// SetVars sets the values of any number of variables in the evaluator.
func SetVars(vars map[string]float64) EvalOption {
	return varsopt(vars)
}

// SetConst defines a constant in the evaluator.
func SetConst(name string, val float64) EvalOption {
	return constopt{name, val}
}

// Prec sets the precision in bits of exponentiation. Precisions up to 53 use
// float64 arithmetic directly.
func Prec(prec uint) EvalOption {
	return precopt(prec)
}
