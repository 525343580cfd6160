package grover_test

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/zephyrtronium/grover"
)

func TestEval(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		radix int
		r     float64
	}{
		{"num", "1", 10, 1},
		{"paren-mul", "(5 + 4) * 2", 10, 18},
		{"nested-pow", "(1 + (1 * 1))^(1 + 1)", 10, 4},
		{"add", "4+5+6", 10, 4 + 5 + 6},
		{"sub", "4-5-6", 10, 4 - 5 - 6},
		{"mul", "4*5*6", 10, 4 * 5 * 6},
		{"div", "4/5/6", 10, 4.0 / 5.0 / 6.0},
		{"rem", "17 % 5 % 3", 10, 2},
		{"rem-neg", "-7 % 3", 10, -1},
		{"rem-frac", "5.5 % 2", 10, 1.5},
		{"pow", "4^3^2", 10, 262144},
		{"pow-frac", "4^0.5", 10, 2},
		{"pow-neg-base", "(0-2)^3", 10, -8},
		{"pow-zero", "0^0", 10, 1},
		{"pow-recip", "2^-2", 10, 0.25},
		{"prec", "2 + 3 * 4", 10, 14},
		{"paren", "(2 + 3) * 4", 10, 20},
		{"neg", "-5", 10, -5},
		{"negneg", "--5", 10, 5},
		{"plus", "+5", 10, 5},
		{"negpow", "-2^2", 10, -4},
		{"mulneg", "2 * -3 + 1", 10, -5},
		{"unread-var", "$nothing", 10, 0},
		{"unread-var-arith", "$nothing + 1", 10, 1},
		{"hex", "ff + 1", 16, 256},
		{"binary", "(101 + 1) * 10", 2, 12},
		{"base36", "z", 36, 35},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := grover.NewEvaluator()
			r, err := ev.EvalString(c.src, c.radix)
			if err != nil {
				t.Fatalf("evaluating %q: %v", c.src, err)
			}
			if r != c.r {
				t.Errorf("wrong result for %q: want %g, got %g", c.src, c.r, r)
			}
		})
	}
}

func TestEvalPowPrecision(t *testing.T) {
	cases := []struct {
		x, y float64
	}{
		{2, 0.5},
		{10, 0.1},
		{1.5, 2.5},
		{7, -1.25},
		{0.3, 17},
		{2, 1023.5},
		{2, 1023.9999},
		{10, 308.25},
		{2, -1021.5},
		{1e-300, 1.01},
	}
	for _, prec := range []uint{53, 64, 128} {
		ev := grover.NewEvaluator(grover.Prec(prec))
		for _, c := range cases {
			ts := grover.Tokens{grover.Num(c.x), grover.Num(c.y), grover.Oper(grover.OpPow)}
			r, err := ev.Evaluate(ts)
			if err != nil {
				t.Errorf("prec %d: %g^%g: %v", prec, c.x, c.y, err)
				continue
			}
			want := math.Pow(c.x, c.y)
			if math.Abs(r-want) > math.Abs(want)*1e-15 {
				t.Errorf("prec %d: %g^%g: want about %g, got %g", prec, c.x, c.y, want, r)
			}
		}
	}
}

func TestEvalErrors(t *testing.T) {
	cases := []struct {
		name string
		src  string
		code grover.ErrorCode
		msg  string
	}{
		{"div-zero", "5 / 0", grover.ArithmeticError, "Division by zero."},
		{"rem-zero", "5 % 0", grover.ArithmeticError, "Remainder by zero."},
		{"div-zero-expr", "5 / (1 - 1)", grover.ArithmeticError, "Division by zero."},
		{"div-zero-var", "1 / $unset", grover.ArithmeticError, "Division by zero."},
		{"div-assign-zero", "$y /= 0", grover.ArithmeticError, "Division by zero."},
		{"rem-assign-zero", "$y %= 0", grover.ArithmeticError, "Remainder by zero."},
		{"div-neg-zero", "1 / -0", grover.ArithmeticError, "Division by zero."},
		{"assign-num", "5 = 3", grover.EvaluatorError, "Cannot assign to '5'."},
		{"assign-expr", "$y + 1 = 3", grover.EvaluatorError, "Cannot assign to '1'."},
		{"assign-const", "$x = 3", grover.ReassignConstant, "Cannot reassign constant '$x'."},
		{"assign-paren", "($x) = 3", grover.ReassignConstant, "Cannot reassign constant '$x'."},
		{"parse", "(5 + 6", grover.MalformedExpression, "Unclosed left parenthesis."},
		{"lex", "5 # 6", grover.LexerError, "Invalid character '#'."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := grover.NewEvaluator(grover.SetConst("$x", 1))
			r, err := ev.EvalString(c.src, 10)
			if err == nil {
				t.Fatalf("evaluating %q gave %g with no error", c.src, r)
			}
			if !errors.Is(err, c.code) {
				t.Errorf("%q: want %v, got %v", c.src, c.code, grover.CodeOf(err))
			}
			var e *grover.Error
			if !errors.As(err, &e) {
				t.Fatalf("%#v is not *grover.Error", err)
			}
			if e.Msg != c.msg {
				t.Errorf("%q: wrong message: want %q, got %q", c.src, c.msg, e.Msg)
			}
		})
	}
}

func TestEvalMalformedSequences(t *testing.T) {
	cases := []struct {
		name string
		ts   grover.Tokens
		msg  string
	}{
		{"empty", nil, "Expression left 0 values."},
		{"two", grover.Tokens{grover.Num(1), grover.Num(2)}, "Expression left 2 values."},
		{"underflow", grover.Tokens{grover.Num(1), grover.Oper(grover.OpAdd)}, "Missing operand for '+'."},
		{"underflow-empty", grover.Tokens{grover.Oper(grover.OpMul)}, "Missing operand for '*'."},
		{"paren", grover.Tokens{grover.Num(1), grover.Open()}, "Unexpected '(' in postfix expression."},
		{"none", grover.Tokens{{}}, "Unexpected '<None>' in postfix expression."},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := grover.NewEvaluator()
			_, err := ev.Evaluate(c.ts)
			var e *grover.Error
			if !errors.As(err, &e) {
				t.Fatalf("%v gave %#v, not *grover.Error", c.ts, err)
			}
			if e.Code != grover.EvaluatorError {
				t.Errorf("%v: wrong code %v", c.ts, e.Code)
			}
			if e.Msg != c.msg {
				t.Errorf("%v: wrong message: want %q, got %q", c.ts, c.msg, e.Msg)
			}
		})
	}
}

func TestEvalAssign(t *testing.T) {
	type step struct {
		src string
		r   float64
	}
	cases := []struct {
		name  string
		steps []step
		vars  map[string]float64
	}{
		{
			name:  "assign",
			steps: []step{{"$age = 5", 5}},
			vars:  map[string]float64{"$age": 5},
		},
		{
			name:  "idempotence",
			steps: []step{{"$x = 5", 5}, {"$x", 5}},
			vars:  map[string]float64{"$x": 5},
		},
		{
			name:  "chain",
			steps: []step{{"$a = $b = 3", 3}, {"$a + $b", 6}},
			vars:  map[string]float64{"$a": 3, "$b": 3},
		},
		{
			name: "compound",
			steps: []step{
				{"$x = 10", 10},
				{"$x += 5", 15},
				{"$x -= 3", 12},
				{"$x *= 2", 24},
				{"$x /= 8", 3},
				{"$x %= 2", 1},
			},
			vars: map[string]float64{"$x": 1},
		},
		{
			name:  "compound-unset",
			steps: []step{{"$n += 2", 2}},
			vars:  map[string]float64{"$n": 2},
		},
		{
			name:  "compound-chain",
			steps: []step{{"$a = 1", 1}, {"$b = 2", 2}, {"$a += $b *= 10", 21}},
			vars:  map[string]float64{"$a": 21, "$b": 20},
		},
		{
			name:  "read-defines",
			steps: []step{{"$x + $y", 0}},
			vars:  map[string]float64{"$x": 0, "$y": 0},
		},
		{
			name:  "nested",
			steps: []step{{"2 * ($r = 3) + $r", 9}},
			vars:  map[string]float64{"$r": 3},
		},
		{
			name:  "neg",
			steps: []step{{"$x = -5", -5}, {"$x = -$x", 5}},
			vars:  map[string]float64{"$x": 5},
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			ev := grover.NewEvaluator()
			for _, s := range c.steps {
				r, err := ev.EvalString(s.src, 10)
				if err != nil {
					t.Fatalf("evaluating %q: %v", s.src, err)
				}
				if r != s.r {
					t.Errorf("wrong result for %q: want %g, got %g", s.src, s.r, r)
				}
			}
			for k, want := range c.vars {
				got, ok := ev.Lookup(k)
				if !ok {
					t.Errorf("%s undefined", k)
					continue
				}
				if got != want {
					t.Errorf("%s: want %g, got %g", k, want, got)
				}
			}
			if got := len(ev.Vars()); got != len(c.vars) {
				t.Errorf("wrong number of variables: want %d, got %q", len(c.vars), ev.Vars())
			}
		})
	}
}

func TestEvalLexerTokens(t *testing.T) {
	// Assignments lex as identifier, operator, value.
	ts := grover.NewLexer("$age = 5", 10).All()
	want := grover.Tokens{grover.Ident("$age"), grover.Oper(grover.OpAssign), grover.Num(5)}
	if !ts.Equal(want) {
		t.Errorf("wrong tokens: want %v, got %v", want, ts)
	}
}

func TestEvalConst(t *testing.T) {
	ev := grover.NewEvaluator(grover.SetConst("$pi", math.Pi), grover.SetVar("$r", 2))
	r, err := ev.EvalString("$pi * $r ^ 2", 10)
	if err != nil {
		t.Fatal(err)
	}
	if r != math.Pi*4 {
		t.Errorf("wrong area: want %g, got %g", math.Pi*4, r)
	}
	for _, src := range []string{"$pi = 3", "$pi += 1", "$pi -= 1", "$pi *= 1", "$pi /= 1", "$pi %= 1", "$r = $pi = 3"} {
		_, err := ev.EvalString(src, 10)
		if !errors.Is(err, grover.ReassignConstant) {
			t.Errorf("%q: want ReassignConstant, got %v", src, err)
		}
	}
	if v, _ := ev.Lookup("$pi"); v != math.Pi {
		t.Errorf("constant changed to %g", v)
	}
	if err := ev.Set("$pi", 3); !errors.Is(err, grover.ReassignConstant) {
		t.Errorf("Set on constant gave %v", err)
	}
	if err := ev.Const("$pi", 3); !errors.Is(err, grover.ReassignConstant) {
		t.Errorf("Const on constant gave %v", err)
	}
	if !ev.IsConst("$pi") || ev.IsConst("$r") {
		t.Errorf("wrong constness: $pi %t, $r %t", ev.IsConst("$pi"), ev.IsConst("$r"))
	}
	if err := ev.Const("$r", 7); err != nil {
		t.Errorf("Const on variable: %v", err)
	}
	if _, err := ev.EvalString("$r = 1", 10); !errors.Is(err, grover.ReassignConstant) {
		t.Errorf("assigning new constant gave %v", err)
	}
}

func TestEvalSet(t *testing.T) {
	ev := grover.NewEvaluator()
	if err := ev.Set("$x", 4); err != nil {
		t.Fatal(err)
	}
	if r, err := ev.EvalString("$x * 2", 10); err != nil || r != 8 {
		t.Errorf("want 8, got %g %v", r, err)
	}
	for _, name := range []string{"x", "$", "$1", "$x y"} {
		if err := ev.Set(name, 1); !errors.Is(err, grover.EvaluatorError) {
			t.Errorf("Set(%q) gave %v", name, err)
		}
	}
}

func TestEvalOptionPanics(t *testing.T) {
	cases := []struct {
		name string
		opts []grover.EvalOption
	}{
		{"bad-name", []grover.EvalOption{grover.SetVar("x", 1)}},
		{"bad-const", []grover.EvalOption{grover.SetConst("$", 1)}},
		{"overwrite-const", []grover.EvalOption{grover.SetConst("$c", 1), grover.SetVars(map[string]float64{"$c": 2})}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("no panic")
				}
			}()
			grover.NewEvaluator(c.opts...)
		})
	}
}

func TestEvalSideEffectsPersist(t *testing.T) {
	ev := grover.NewEvaluator()
	if _, err := ev.EvalString("$a = 2", 10); err != nil {
		t.Fatal(err)
	}
	// $b is defined by being read even though the expression fails.
	if _, err := ev.EvalString("$a / $b", 10); !errors.Is(err, grover.ArithmeticError) {
		t.Fatalf("want ArithmeticError, got %v", err)
	}
	if v, ok := ev.Lookup("$b"); !ok || v != 0 {
		t.Errorf("$b should be 0, got %g %t", v, ok)
	}
	// The failed evaluation leaves nothing behind on the value stack.
	if r, err := ev.EvalString("$a", 10); err != nil || r != 2 {
		t.Errorf("want 2, got %g %v", r, err)
	}
	if got, want := ev.Vars(), []string{"$a", "$b"}; !reflect.DeepEqual(got, want) {
		t.Errorf("wrong variables: want %q, got %q", want, got)
	}
}

func TestVars(t *testing.T) {
	ev := grover.NewEvaluator()
	if _, err := ev.EvalString("$z + $y + $x = $w + $a", 10); err == nil {
		t.Fatal("assignment to sum succeeded")
	}
	want := []string{"$a", "$w", "$x", "$y", "$z"}
	if got := ev.Vars(); !reflect.DeepEqual(got, want) {
		t.Errorf("wrong variables: want %q, got %q", want, got)
	}
}

func BenchmarkEval(b *testing.B) {
	b.Run("nums", func(b *testing.B) {
		b.ReportAllocs()
		ev := grover.NewEvaluator()
		ts, err := grover.Parse("2+3*4-5/6", 10)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ev.Evaluate(ts)
		}
	})
	b.Run("vars", func(b *testing.B) {
		b.ReportAllocs()
		ev := grover.NewEvaluator(grover.SetVars(map[string]float64{"$x": 2, "$y": 3, "$z": 4}))
		ts, err := grover.Parse("$x+$y+$z", 10)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ev.Evaluate(ts)
		}
	})
	b.Run("pow", func(b *testing.B) {
		b.ReportAllocs()
		ev := grover.NewEvaluator()
		ts, err := grover.Parse("1.5^2.5", 10)
		if err != nil {
			b.Fatal(err)
		}
		for i := 0; i < b.N; i++ {
			ev.Evaluate(ts)
		}
	})
}

func Example() {
	ev := grover.NewEvaluator()
	for _, src := range []string{"$price = 40", "$qty = 3", "$total = $price * $qty", "$total -= 15%4", "$total / 0"} {
		r, err := ev.EvalString(src, 10)
		if err != nil {
			fmt.Println(src, "->", err)
			continue
		}
		fmt.Println(src, "->", r)
	}

	// Output:
	// $price = 40 -> 40
	// $qty = 3 -> 3
	// $total = $price * $qty -> 120
	// $total -= 15%4 -> 117
	// $total / 0 -> 8: Division by zero.
}

func ExampleParse() {
	ts, err := grover.Parse("(5 + 4) * 2", 10)
	if err != nil {
		panic(err)
	}
	fmt.Println(ts)
	r, _ := grover.NewEvaluator().Evaluate(ts)
	fmt.Println(r)

	// Output:
	// 5 4 + 2 *
	// 18
}
