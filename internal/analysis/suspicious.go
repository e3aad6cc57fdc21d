package analysis

import (
	"fmt"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"
)

// DefaultSuspiciousNames is the stock set of dangerous member functions.
func DefaultSuspiciousNames() []string {
	return []string{"eval", "atob", "btoa"}
}

// SuspiciousCall records one flagged member access for diagnostics.
type SuspiciousCall struct {
	Name string
	Line int
}

func (c SuspiciousCall) String() string {
	return fmt.Sprintf("%s (line %d)", c.Name, c.Line)
}

// NameSet converts a list of member names into a lookup set.
func NameSet(names []string) map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

// DetectSuspiciousCalls parses source and returns every member access
// whose property name is in names. When the parser reports recoverable
// errors but still yields a program, traversal proceeds on the partial
// tree; an unrecoverable failure returns an error and the caller excludes
// only this script from the detector's results.
func DetectSuspiciousCalls(source string, names map[string]struct{}) ([]SuspiciousCall, error) {
	program, err := parser.ParseFile(nil, "", source, 0)
	if program == nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}

	var calls []SuspiciousCall
	flag := func(name string, node ast.Node) {
		if _, ok := names[name]; !ok {
			return
		}
		line := program.File.Position(int(node.Idx0())).Line
		calls = append(calls, SuspiciousCall{Name: name, Line: line})
	}

	var walk func(node ast.Node)
	walk = func(node ast.Node) {
		if node == nil {
			return
		}
		switch n := node.(type) {
		case *ast.Program:
			for _, stmt := range n.Body {
				walk(stmt)
			}
		case *ast.BlockStatement:
			for _, stmt := range n.List {
				walk(stmt)
			}
		case *ast.ExpressionStatement:
			walk(n.Expression)
		case *ast.IfStatement:
			walk(n.Test)
			walk(n.Consequent)
			if n.Alternate != nil {
				walk(n.Alternate)
			}
		case *ast.ForStatement:
			walk(n.Initializer)
			walk(n.Test)
			walk(n.Update)
			walk(n.Body)
		case *ast.ForLoopInitializerExpression:
			walk(n.Expression)
		case *ast.ForLoopInitializerVarDeclList:
			for _, binding := range n.List {
				walk(binding)
			}
		case *ast.ForLoopInitializerLexicalDecl:
			for _, binding := range n.LexicalDeclaration.List {
				walk(binding)
			}
		case *ast.ForInStatement:
			walk(n.Into)
			walk(n.Source)
			walk(n.Body)
		case *ast.ForOfStatement:
			walk(n.Into)
			walk(n.Source)
			walk(n.Body)
		case *ast.ForIntoVar:
			walk(n.Binding)
		case *ast.ForIntoExpression:
			walk(n.Expression)
		case *ast.WhileStatement:
			walk(n.Test)
			walk(n.Body)
		case *ast.DoWhileStatement:
			walk(n.Test)
			walk(n.Body)
		case *ast.TryStatement:
			walk(n.Body)
			if n.Catch != nil {
				walk(n.Catch.Body)
			}
			if n.Finally != nil {
				walk(n.Finally)
			}
		case *ast.SwitchStatement:
			walk(n.Discriminant)
			for _, clause := range n.Body {
				walk(clause.Test)
				for _, stmt := range clause.Consequent {
					walk(stmt)
				}
			}
		case *ast.ThrowStatement:
			walk(n.Argument)
		case *ast.LabelledStatement:
			walk(n.Statement)
		case *ast.WithStatement:
			walk(n.Object)
			walk(n.Body)
		case *ast.ReturnStatement:
			walk(n.Argument)
		case *ast.VariableStatement:
			for _, binding := range n.List {
				walk(binding)
			}
		case *ast.LexicalDeclaration:
			for _, binding := range n.List {
				walk(binding)
			}
		case *ast.Binding:
			if n.Initializer != nil {
				walk(n.Initializer)
			}
		case *ast.FunctionDeclaration:
			walk(n.Function.Body)
		case *ast.FunctionLiteral:
			walk(n.Body)
		case *ast.ArrowFunctionLiteral:
			walk(n.Body)
		case *ast.ExpressionBody:
			// arrow concise body, e.g. x => window.eval(x)
			walk(n.Expression)
		case *ast.AssignExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.BinaryExpression:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpression:
			walk(n.Operand)
		case *ast.ConditionalExpression:
			walk(n.Test)
			walk(n.Consequent)
			walk(n.Alternate)
		case *ast.SequenceExpression:
			for _, expr := range n.Sequence {
				walk(expr)
			}
		case *ast.CallExpression:
			if id, ok := n.Callee.(*ast.Identifier); ok {
				flag(string(id.Name), n)
			}
			walk(n.Callee)
			for _, arg := range n.ArgumentList {
				walk(arg)
			}
		case *ast.NewExpression:
			walk(n.Callee)
			for _, arg := range n.ArgumentList {
				walk(arg)
			}
		case *ast.DotExpression:
			walk(n.Left)
			flag(string(n.Identifier.Name), n)
		case *ast.BracketExpression:
			walk(n.Left)
			walk(n.Member)
			// computed access with a constant name is still member access
			if lit, ok := n.Member.(*ast.StringLiteral); ok {
				flag(string(lit.Value), n)
			}
		case *ast.ArrayLiteral:
			for _, expr := range n.Value {
				walk(expr)
			}
		case *ast.TemplateLiteral:
			walk(n.Tag)
			for _, expr := range n.Expressions {
				walk(expr)
			}
		case *ast.ObjectLiteral:
			for _, prop := range n.Value {
				if keyed, ok := prop.(*ast.PropertyKeyed); ok {
					walk(keyed.Value)
				}
			}
		}
	}
	walk(program)

	return calls, nil
}
