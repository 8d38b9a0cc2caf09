package typed

import (
	"fmt"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
)

// TypeVar is the unification universe: a superset of the surface types
// where any position may still be an unresolved metavariable.
type TypeVar interface {
	_typeVar()
	// EqualsTo decides syntactic equality. Index expressions of TCons are
	// compared through eq, which the checker binds to semantic equality up
	// to reduction.
	EqualsTo(other TypeVar, eq parsed.ExprEq) bool
	// AppendFreeNames appends every reachable metavariable name to buf, in
	// occurrence order, one entry per occurrence.
	AppendFreeNames(buf []ast.Identifier) []ast.Identifier
	Code() string
}

// TBound is a fully ground type, opaque to further rewriting.
type TBound struct {
	Type parsed.Type
}

func (*TBound) _typeVar() {}

func (t *TBound) EqualsTo(other TypeVar, eq parsed.ExprEq) bool {
	if y, ok := other.(*TBound); ok {
		return t.Type.EqualsTo(y.Type, eq)
	}
	return false
}

func (t *TBound) AppendFreeNames(buf []ast.Identifier) []ast.Identifier {
	return buf
}

func (t *TBound) Code() string {
	return t.Type.Code()
}

// TFree is an unresolved metavariable.
type TFree struct {
	Name ast.Identifier
}

func (*TFree) _typeVar() {}

func (t *TFree) EqualsTo(other TypeVar, eq parsed.ExprEq) bool {
	if y, ok := other.(*TFree); ok {
		return t.Name.EqualsTo(y.Name)
	}
	return false
}

func (t *TFree) AppendFreeNames(buf []ast.Identifier) []ast.Identifier {
	return append(buf, t.Name)
}

func (t *TFree) Code() string {
	return string(t.Name)
}

// TFunc mirrors a function type with possibly unresolved components.
type TFunc struct {
	Param  TypeVar
	Return TypeVar
}

func (*TFunc) _typeVar() {}

func (t *TFunc) EqualsTo(other TypeVar, eq parsed.ExprEq) bool {
	if y, ok := other.(*TFunc); ok {
		return t.Param.EqualsTo(y.Param, eq) && t.Return.EqualsTo(y.Return, eq)
	}
	return false
}

func (t *TFunc) AppendFreeNames(buf []ast.Identifier) []ast.Identifier {
	return t.Return.AppendFreeNames(t.Param.AppendFreeNames(buf))
}

func (t *TFunc) Code() string {
	return fmt.Sprintf("(%s -> %s)", t.Param.Code(), t.Return.Code())
}

// TAppl mirrors a type application with possibly unresolved components.
type TAppl struct {
	Func TypeVar
	Arg  TypeVar
}

func (*TAppl) _typeVar() {}

func (t *TAppl) EqualsTo(other TypeVar, eq parsed.ExprEq) bool {
	if y, ok := other.(*TAppl); ok {
		return t.Func.EqualsTo(y.Func, eq) && t.Arg.EqualsTo(y.Arg, eq)
	}
	return false
}

func (t *TAppl) AppendFreeNames(buf []ast.Identifier) []ast.Identifier {
	return t.Arg.AppendFreeNames(t.Func.AppendFreeNames(buf))
}

func (t *TAppl) Code() string {
	return fmt.Sprintf("(%s %s)", t.Func.Code(), t.Arg.Code())
}

// TProd is a quantifier. The bound name's own type is tracked separately
// through a declaration, so equality and unification never inspect it here.
type TProd struct {
	Bound ast.Identifier
	Body  TypeVar
}

func (*TProd) _typeVar() {}

func (t *TProd) EqualsTo(other TypeVar, eq parsed.ExprEq) bool {
	if y, ok := other.(*TProd); ok {
		return t.Bound.EqualsTo(y.Bound) && t.Body.EqualsTo(y.Body, eq)
	}
	return false
}

func (t *TProd) AppendFreeNames(buf []ast.Identifier) []ast.Identifier {
	return t.Body.AppendFreeNames(buf)
}

func (t *TProd) Code() string {
	return fmt.Sprintf("(forall %s . %s)", t.Bound, t.Body.Code())
}

// TCons is a type indexed by a term. The index compares semantically, via
// reduction, never by raw syntax.
type TCons struct {
	Head  TypeVar
	Index parsed.Expression
}

func (*TCons) _typeVar() {}

func (t *TCons) EqualsTo(other TypeVar, eq parsed.ExprEq) bool {
	if y, ok := other.(*TCons); ok {
		return t.Head.EqualsTo(y.Head, eq) && eq(t.Index, y.Index)
	}
	return false
}

func (t *TCons) AppendFreeNames(buf []ast.Identifier) []ast.Identifier {
	return t.Head.AppendFreeNames(buf)
}

func (t *TCons) Code() string {
	return fmt.Sprintf("%s[%s]", t.Head.Code(), t.Index.Code())
}
