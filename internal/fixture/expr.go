package fixture

import (
	"fmt"
	"strings"

	"github.com/funvibe/calltower/internal/ast"
	"github.com/funvibe/calltower/internal/config"
	"github.com/funvibe/calltower/internal/typesystem"
)

// literalText is the default rendering of a literal of each built-in type.
var literalText = map[string]string{
	config.IntTypeName:    "1",
	config.LongTypeName:   "1L",
	config.DoubleTypeName: "1.0",
	config.StringTypeName: `"s"`,
	config.BoolTypeName:   "true",
	config.UnitTypeName:   "Unit",
}

// buildExpr turns an expression description into an unresolved tree.
func buildExpr(e Expr) (ast.Expression, error) {
	out, err := buildBare(e)
	if err != nil {
		return nil, err
	}
	if e.Named != "" {
		return &ast.NamedArgument{Name: e.Named, Value: out}, nil
	}
	return out, nil
}

func buildBare(e Expr) (ast.Expression, error) {
	var recv ast.Expression
	if e.Receiver != nil {
		r, err := buildExpr(*e.Receiver)
		if err != nil {
			return nil, fmt.Errorf("receiver: %w", err)
		}
		recv = r
	}

	switch {
	case e.Call != "":
		call := &ast.CallExpression{Receiver: recv, Name: e.Call, Safe: e.Safe}
		for i, a := range e.Args {
			arg, err := buildExpr(a)
			if err != nil {
				return nil, fmt.Errorf("args[%d]: %w", i, err)
			}
			call.Arguments = append(call.Arguments, arg)
		}
		for _, src := range e.TypeArgs {
			t, err := typesystem.Parse(src, nil)
			if err != nil {
				return nil, err
			}
			call.TypeArguments = append(call.TypeArguments, t)
		}
		return call, nil

	case e.Name != "":
		return &ast.PropertyAccess{Receiver: recv, Name: e.Name, Safe: e.Safe}, nil

	case e.Path != "":
		var chain *ast.PropertyAccess
		for _, part := range strings.Split(e.Path, config.QualifierSeparator) {
			if part == "" {
				return nil, fmt.Errorf("malformed path %q", e.Path)
			}
			if chain == nil {
				chain = &ast.PropertyAccess{Name: part}
				continue
			}
			chain = &ast.PropertyAccess{Receiver: chain, Name: part}
		}
		chain.Safe = e.Safe
		return chain, nil

	case e.Lit != "":
		t, err := typesystem.Parse(e.Lit, nil)
		if err != nil {
			return nil, err
		}
		text := e.Value
		if text == "" {
			text = defaultLiteral(t)
		}
		return &ast.Literal{Value: text, Type: t}, nil

	case e.This:
		return &ast.ThisReceiver{Label: e.Label}, nil
	}
	return nil, fmt.Errorf("empty expression")
}

func defaultLiteral(t typesystem.Type) string {
	if c, ok := t.(typesystem.TCon); ok {
		if c.Nullable {
			return "null"
		}
		if s, ok := literalText[c.Name]; ok {
			return s
		}
	}
	return "<" + t.String() + ">"
}
