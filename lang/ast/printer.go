package ast

import (
	"strconv"
	"strings"
)

// FormatNumber renders f the way the `parse` entry point prints numeric
// literals: integral values as "N.0", everything else via the default
// float formatting.
func FormatNumber(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Print renders e in the canonical prefix-parenthesized form used by the
// `parse` entry point, e.g. "(+ a b)", "(group e)".
func Print(e Expr) string {
	var sb strings.Builder
	printExpr(&sb, e)
	return sb.String()
}

// PrintStmt renders s the same way Print renders an expression, so the
// `parse` entry point can print a whole program one top-level statement per
// line instead of being limited to bare expression statements.
func PrintStmt(s Stmt) string {
	var sb strings.Builder
	printStmt(&sb, s)
	return sb.String()
}

func printStmt(sb *strings.Builder, s Stmt) {
	switch n := s.(type) {
	case *BlankStmt:
		sb.WriteString("(blank)")
	case *ExprStmt:
		printExpr(sb, n.X)
	case *VarStmt:
		sb.WriteByte('(')
		sb.WriteString("var " + n.Name)
		if n.Init != nil {
			sb.WriteByte(' ')
			printExpr(sb, n.Init)
		}
		sb.WriteByte(')')
	case *BlockStmt:
		sb.WriteString("(block")
		for _, st := range n.Stmts {
			sb.WriteByte(' ')
			printStmt(sb, st)
		}
		sb.WriteByte(')')
	case *ReturnStmt:
		if n.Value != nil {
			parenthesize(sb, "return", n.Value)
		} else {
			sb.WriteString("(return)")
		}
	case *FunctionStmt:
		sb.WriteString("(fun " + n.Name + ")")
	case *WhileStmt:
		sb.WriteString("(while ")
		printExpr(sb, n.Cond)
		sb.WriteByte(' ')
		printStmt(sb, n.Body)
		sb.WriteByte(')')
	case *ForStmt:
		sb.WriteString("(for)")
	case *ForInStmt:
		sb.WriteString("(for-in " + n.VarName + ")")
	case *SwitchStmt:
		sb.WriteString("(switch)")
	case *ClassStmt:
		sb.WriteString("(class " + n.Name + ")")
	case *ImportStmt:
		sb.WriteString("(import " + n.Module + ")")
	case *AssertStmt:
		sb.WriteString("(assert)")
	case *AssignStmt:
		sb.WriteByte('(')
		sb.WriteString(n.Op + " ")
		printExpr(sb, n.Target)
		sb.WriteByte(' ')
		printExpr(sb, n.Value)
		sb.WriteByte(')')
	default:
		sb.WriteString("(unknown)")
	}
}

func parenthesize(sb *strings.Builder, name string, exprs ...Expr) {
	sb.WriteByte('(')
	sb.WriteString(name)
	for _, e := range exprs {
		sb.WriteByte(' ')
		printExpr(sb, e)
	}
	sb.WriteByte(')')
}

func printExpr(sb *strings.Builder, e Expr) {
	switch n := e.(type) {
	case *NumberLit:
		sb.WriteString(FormatNumber(n.Value))
	case *StringLit:
		sb.WriteString(n.Value)
	case *BoolLit:
		if n.Value {
			sb.WriteString("true")
		} else {
			sb.WriteString("false")
		}
	case *NilLit:
		sb.WriteString("nil")
	case *IdentExpr:
		sb.WriteString(n.Name)
	case *ThisExpr:
		parenthesize(sb, "this."+n.Field)
	case *GroupingExpr:
		parenthesize(sb, "group", n.X)
	case *PrefixExpr:
		parenthesize(sb, n.Op, n.Right)
	case *InfixExpr:
		parenthesize(sb, n.Op, n.Left, n.Right)
	case *IndexExpr:
		parenthesize(sb, "index", n.Target, n.Index)
	case *PrintExpr:
		parenthesize(sb, "print", n.Args...)
	case *CallExpr:
		args := append([]Expr{n.Callee}, n.Args...)
		parenthesize(sb, "call", args...)
	case *ClassInitExpr:
		parenthesize(sb, "new "+n.ClassName, n.Args...)
	case *ClassGetExpr:
		parenthesize(sb, "get "+n.Field, n.Receiver)
	case *ClassCallExpr:
		args := append([]Expr{n.Receiver}, n.Args...)
		parenthesize(sb, "call "+n.Method, args...)
	case *ThisCallExpr:
		parenthesize(sb, "call this."+n.Method, n.Args...)
	case *ArrayLit:
		parenthesize(sb, "array", n.Elems...)
	case *HashLit:
		sb.WriteString("(hash)")
	case *FunctionExpr:
		sb.WriteString("(fun)")
	case *IfExpr:
		sb.WriteString("(if)")
	default:
		sb.WriteString("(unknown)")
	}
}
