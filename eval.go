package grover

import (
	"math"
	"math/big"
	"strconv"

	"github.com/zephyrtronium/bigfloat"
)

// Evaluator executes postfix token sequences against a variable environment
// which persists between evaluations. It is not safe to use an Evaluator
// concurrently.
type Evaluator struct {
	vars   map[string]float64
	consts map[string]bool
	stack  Tokens
	prec   uint
}

// NewEvaluator creates an evaluator with an empty environment, then applies
// options in order. If no precision is given, the default is 64.
func NewEvaluator(opts ...EvalOption) *Evaluator {
	ev := Evaluator{
		vars:   make(map[string]float64),
		consts: make(map[string]bool),
		prec:   64,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		switch opt := opt.(type) {
		case varopt:
			ev.mustSet(opt.name, opt.val, false)
		case varsopt:
			for k, v := range opt {
				ev.mustSet(k, v, false)
			}
		case constopt:
			ev.mustSet(opt.name, opt.val, true)
		case precopt:
			ev.prec = uint(opt)
		default:
			panic("grover: unknown option type")
		}
	}
	return &ev
}

func (ev *Evaluator) mustSet(name string, val float64, isConst bool) {
	if !ValidName(name) {
		panic("grover: invalid variable name " + strconv.Quote(name))
	}
	if ev.consts[name] {
		panic("grover: option overwrites constant " + name)
	}
	ev.vars[name] = val
	if isConst {
		ev.consts[name] = true
	}
}

// EvalString is a shortcut to lex, parse, and evaluate a source string.
func (ev *Evaluator) EvalString(src string, radix int) (float64, error) {
	ts, err := Parse(src, radix)
	if err != nil {
		return 0, err
	}
	return ev.Evaluate(ts)
}

// Evaluate executes a postfix token sequence and returns its value.
// Identifiers which have never been seen are defined as 0. Changes to the
// environment made before an error remain in effect.
func (ev *Evaluator) Evaluate(ts Tokens) (float64, error) {
	ev.stack = ev.stack[:0]
	defer func() { ev.stack = ev.stack[:0] }()
	for _, tok := range ts {
		switch tok.Kind {
		case TokenNum:
			ev.stack.Push(tok)
		case TokenIdent:
			if _, ok := ev.vars[tok.Name]; !ok {
				ev.vars[tok.Name] = 0
			}
			// Identifiers stay unresolved until an operator consumes them so
			// that assignments can see the name.
			ev.stack.Push(tok)
		case TokenOp:
			if err := ev.apply(tok); err != nil {
				return 0, err
			}
		default:
			return 0, newError(EvaluatorError, tok.Pos, "Unexpected '"+tok.String()+"' in postfix expression.")
		}
	}
	if len(ev.stack) != 1 {
		return 0, newError(EvaluatorError, 0, "Expression left "+strconv.Itoa(len(ev.stack))+" values.")
	}
	return ev.resolve(ev.stack[0])
}

// apply pops the operands of an operator and pushes its result.
func (ev *Evaluator) apply(tok Token) error {
	rhs, ok := ev.stack.Pop()
	if !ok {
		return newError(EvaluatorError, tok.Pos, "Missing operand for '"+tok.Op.String()+"'.")
	}
	lhs, ok := ev.stack.Pop()
	if !ok {
		return newError(EvaluatorError, tok.Pos, "Missing operand for '"+tok.Op.String()+"'.")
	}
	r, err := ev.resolve(rhs)
	if err != nil {
		return err
	}
	if tok.Op.IsAssign() {
		if lhs.Kind != TokenIdent {
			return newError(EvaluatorError, tok.Pos, "Cannot assign to '"+lhs.String()+"'.")
		}
		if ev.consts[lhs.Name] {
			return newError(ReassignConstant, tok.Pos, "Cannot reassign constant '"+lhs.Name+"'.")
		}
		v := r
		if tok.Op != OpAssign {
			l, err := ev.resolve(lhs)
			if err != nil {
				return err
			}
			v, err = ev.arith(tok.Op.arith(), l, r, tok.Pos)
			if err != nil {
				return err
			}
		}
		ev.vars[lhs.Name] = v
		ev.stack.Push(Num(v).at(tok.Pos))
		return nil
	}
	l, err := ev.resolve(lhs)
	if err != nil {
		return err
	}
	v, err := ev.arith(tok.Op, l, r, tok.Pos)
	if err != nil {
		return err
	}
	ev.stack.Push(Num(v).at(tok.Pos))
	return nil
}

// resolve gets the value of a number or identifier from the value stack.
func (ev *Evaluator) resolve(tok Token) (float64, error) {
	switch tok.Kind {
	case TokenNum:
		return tok.Num, nil
	case TokenIdent:
		v, ok := ev.vars[tok.Name]
		if !ok {
			return 0, newError(EvaluatorError, tok.Pos, "Undefined variable '"+tok.Name+"'.")
		}
		return v, nil
	default:
		return 0, newError(EvaluatorError, tok.Pos, "Found '"+tok.String()+"' where a value was expected.")
	}
}

// arith applies an arithmetic operator.
func (ev *Evaluator) arith(op Op, l, r float64, pos int) (float64, error) {
	switch op {
	case OpAdd:
		return l + r, nil
	case OpSub:
		return l - r, nil
	case OpMul:
		return l * r, nil
	case OpDiv:
		if r == 0 {
			return 0, newError(ArithmeticError, pos, "Division by zero.")
		}
		return l / r, nil
	case OpRem:
		if r == 0 {
			return 0, newError(ArithmeticError, pos, "Remainder by zero.")
		}
		return math.Mod(l, r), nil
	case OpPow:
		return ev.pow(l, r), nil
	default:
		return 0, newError(EvaluatorError, pos, "'"+op.String()+"' is not an arithmetic operator.")
	}
}

// pow computes x^y. When the evaluator's precision exceeds float64's and the
// result is a normal float64, it is computed as exp(y ln x) in extended
// precision and then rounded, which gives the correctly rounded result far
// more often than math.Pow.
func (ev *Evaluator) pow(x, y float64) float64 {
	f := math.Pow(x, y)
	// bigfloat.Pow requires a positive base. The remaining cases are either
	// exact or outside float64's normal range anyway.
	if ev.prec <= 53 || !(x > 0) || x == 1 || y == 0 || math.IsInf(x, 0) {
		return f
	}
	if math.IsInf(f, 0) || math.IsNaN(f) || math.Abs(f) < 0x1p-1022 {
		return f
	}
	// bigfloat.Pow is wrong once exp(y ln x) nears the ends of float64's
	// exponent range.
	if math.Abs(y*math.Log(x)) >= 709 {
		return f
	}
	bx := new(big.Float).SetPrec(ev.prec).SetFloat64(x)
	by := new(big.Float).SetPrec(ev.prec).SetFloat64(y)
	r := new(big.Float).SetPrec(ev.prec)
	bigfloat.Pow(r, bx, by)
	g, _ := r.Float64()
	// math.Pow is accurate to a couple of ulps, so anything farther off means
	// the extended computation failed.
	if math.Abs(g-f) > 4*ulp(f) {
		return f
	}
	return g
}

// ulp returns the distance from f to the next float64 away from zero.
func ulp(f float64) float64 {
	f = math.Abs(f)
	return math.Nextafter(f, math.Inf(1)) - f
}

// Lookup returns the value of a variable and whether it is defined.
func (ev *Evaluator) Lookup(name string) (float64, bool) {
	v, ok := ev.vars[name]
	return v, ok
}

// Set sets the value of a variable. It fails if the name is not a valid
// identifier or if the variable is constant.
func (ev *Evaluator) Set(name string, val float64) error {
	if !ValidName(name) {
		return newError(EvaluatorError, 0, "Invalid variable name "+strconv.Quote(name)+".")
	}
	if ev.consts[name] {
		return newError(ReassignConstant, 0, "Cannot reassign constant '"+name+"'.")
	}
	ev.vars[name] = val
	return nil
}

// Const defines a constant. Assignments to the name fail with
// ReassignConstant from then on. Const fails if the name is already constant.
func (ev *Evaluator) Const(name string, val float64) error {
	if err := ev.Set(name, val); err != nil {
		return err
	}
	ev.consts[name] = true
	return nil
}

// IsConst returns whether a variable is constant.
func (ev *Evaluator) IsConst(name string) bool {
	return ev.consts[name]
}

// Prec returns the precision in bits used for exponentiation.
func (ev *Evaluator) Prec() uint {
	return ev.prec
}

// Vars returns the names of all defined variables, sorted.
func (ev *Evaluator) Vars() []string {
	names := make([]string, 0, len(ev.vars))
	for k := range ev.vars {
		names = append(names, k)
	}
	sortstrs(names)
	return names
}

// sortstrs sorts a string slice without using package sort because that has
// reflection and allocation problems.
func sortstrs(names []string) {
	for i := 1; i < len(names); i++ {
		for j := i; j > 0 && names[j] < names[j-1]; j-- {
			names[j], names[j-1] = names[j-1], names[j]
		}
	}
}
