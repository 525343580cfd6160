// Package grover implements a small calculator language with variables.
//
// An expression is flat infix arithmetic over numbers and variables, like
// "($x + 4) * 2" or "$total += $price * 1.08". Variables are spelled with a
// leading $ and are 0 until assigned. Operators, from most to least binding:
//
//	^             power, right-associative
//	* / %         multiply, divide, remainder
//	+ -           add, subtract
//	= += -= *= /= %=   assignment, right-associative
//
// Evaluation happens in three stages. A Lexer scans tokens, a Parser reorders
// them into postfix order, and an Evaluator runs the postfix sequence on a
// stack machine. The Evaluator keeps its variables between expressions, so
// one can run a whole session of calculations.
package grover
