package parsed

import (
	"fmt"

	"tern-compiler/internal/pkg/ast"
)

// Expression is the surface term syntax. EqualsTo decides syntactic
// equality: matching tags with equal substructure, differing tags never
// equal.
type Expression interface {
	_expression()
	GetLocation() ast.Location
	EqualsTo(other Expression) bool
	Code() string
}

type Var struct {
	ast.Location
	Name ast.Identifier
}

func (*Var) _expression() {}

func (e *Var) GetLocation() ast.Location {
	return e.Location
}

func (e *Var) EqualsTo(other Expression) bool {
	if y, ok := other.(*Var); ok {
		return e.Name.EqualsTo(y.Name)
	}
	return false
}

func (e *Var) Code() string {
	return string(e.Name)
}

type Const struct {
	ast.Location
	Value ast.ConstValue
}

func (*Const) _expression() {}

func (e *Const) GetLocation() ast.Location {
	return e.Location
}

func (e *Const) EqualsTo(other Expression) bool {
	if y, ok := other.(*Const); ok {
		return e.Value.EqualsTo(y.Value)
	}
	return false
}

func (e *Const) Code() string {
	return e.Value.Code()
}

type Lambda struct {
	ast.Location
	Param ast.Identifier
	Body  Expression
}

func (*Lambda) _expression() {}

func (e *Lambda) GetLocation() ast.Location {
	return e.Location
}

func (e *Lambda) EqualsTo(other Expression) bool {
	if y, ok := other.(*Lambda); ok {
		return e.Param.EqualsTo(y.Param) && e.Body.EqualsTo(y.Body)
	}
	return false
}

func (e *Lambda) Code() string {
	return fmt.Sprintf("(%s => %s)", e.Param, e.Body.Code())
}

type Apply struct {
	ast.Location
	Func Expression
	Arg  Expression
}

func (*Apply) _expression() {}

func (e *Apply) GetLocation() ast.Location {
	return e.Location
}

func (e *Apply) EqualsTo(other Expression) bool {
	if y, ok := other.(*Apply); ok {
		return e.Func.EqualsTo(y.Func) && e.Arg.EqualsTo(y.Arg)
	}
	return false
}

func (e *Apply) Code() string {
	return fmt.Sprintf("(%s %s)", e.Func.Code(), e.Arg.Code())
}

// Rec is a recursive abstraction: the body may refer to the whole
// function through Self.
type Rec struct {
	ast.Location
	Self  ast.Identifier
	Param ast.Identifier
	Body  Expression
}

func (*Rec) _expression() {}

func (e *Rec) GetLocation() ast.Location {
	return e.Location
}

func (e *Rec) EqualsTo(other Expression) bool {
	if y, ok := other.(*Rec); ok {
		return e.Self.EqualsTo(y.Self) && e.Param.EqualsTo(y.Param) && e.Body.EqualsTo(y.Body)
	}
	return false
}

func (e *Rec) Code() string {
	return fmt.Sprintf("(rec %s of %s => %s)", e.Self, e.Param, e.Body.Code())
}
