package parsed

import (
	"fmt"

	"tern-compiler/internal/pkg/ast"
)

// ExprEq compares two index expressions. The checker passes a semantic
// predicate here (equality up to reduction); plain syntactic comparison is
// Expression.EqualsTo.
type ExprEq func(a, b Expression) bool

// SyntacticExprEq compares index expressions without reducing them.
func SyntacticExprEq(a, b Expression) bool {
	return a.EqualsTo(b)
}

// Type is the surface type syntax produced by the parser.
type Type interface {
	_type()
	GetLocation() ast.Location
	EqualsTo(other Type, eq ExprEq) bool
	Code() string
}

// TNamed is a base-name type, resolved through signatures and primitive
// declarations.
type TNamed struct {
	ast.Location
	Name ast.Identifier
}

func (*TNamed) _type() {}

func (t *TNamed) GetLocation() ast.Location {
	return t.Location
}

func (t *TNamed) EqualsTo(other Type, eq ExprEq) bool {
	if y, ok := other.(*TNamed); ok {
		return t.Name.EqualsTo(y.Name)
	}
	return false
}

func (t *TNamed) Code() string {
	return string(t.Name)
}

type TFunc struct {
	ast.Location
	Param  Type
	Return Type
}

func (*TFunc) _type() {}

func (t *TFunc) GetLocation() ast.Location {
	return t.Location
}

func (t *TFunc) EqualsTo(other Type, eq ExprEq) bool {
	if y, ok := other.(*TFunc); ok {
		return t.Param.EqualsTo(y.Param, eq) && t.Return.EqualsTo(y.Return, eq)
	}
	return false
}

func (t *TFunc) Code() string {
	return fmt.Sprintf("(%s -> %s)", t.Param.Code(), t.Return.Code())
}

type TAppl struct {
	ast.Location
	Func Type
	Arg  Type
}

func (*TAppl) _type() {}

func (t *TAppl) GetLocation() ast.Location {
	return t.Location
}

func (t *TAppl) EqualsTo(other Type, eq ExprEq) bool {
	if y, ok := other.(*TAppl); ok {
		return t.Func.EqualsTo(y.Func, eq) && t.Arg.EqualsTo(y.Arg, eq)
	}
	return false
}

func (t *TAppl) Code() string {
	return fmt.Sprintf("(%s %s)", t.Func.Code(), t.Arg.Code())
}

type TForall struct {
	ast.Location
	Bound ast.Identifier
	Body  Type
}

func (*TForall) _type() {}

func (t *TForall) GetLocation() ast.Location {
	return t.Location
}

func (t *TForall) EqualsTo(other Type, eq ExprEq) bool {
	if y, ok := other.(*TForall); ok {
		return t.Bound.EqualsTo(y.Bound) && t.Body.EqualsTo(y.Body, eq)
	}
	return false
}

func (t *TForall) Code() string {
	return fmt.Sprintf("(forall %s . %s)", t.Bound, t.Body.Code())
}

// TIndexed is a type applied to a term index. Two indexed types with
// differently written indices are the same type when the indices reduce to
// the same normal form, hence the eq predicate.
type TIndexed struct {
	ast.Location
	Head  Type
	Index Expression
}

func (*TIndexed) _type() {}

func (t *TIndexed) GetLocation() ast.Location {
	return t.Location
}

func (t *TIndexed) EqualsTo(other Type, eq ExprEq) bool {
	if y, ok := other.(*TIndexed); ok {
		return t.Head.EqualsTo(y.Head, eq) && eq(t.Index, y.Index)
	}
	return false
}

func (t *TIndexed) Code() string {
	return fmt.Sprintf("%s[%s]", t.Head.Code(), t.Index.Code())
}

type PrimitiveKind int

const (
	PInt PrimitiveKind = iota
	PFloat
	PString
	PChar
	PUnit
)

var primitiveNames = map[PrimitiveKind]string{
	PInt:    "Int",
	PFloat:  "Float",
	PString: "String",
	PChar:   "Char",
	PUnit:   "Unit",
}

func (k PrimitiveKind) String() string {
	return primitiveNames[k]
}

// TPrimitive is one of the built-in base types literals are typed at.
type TPrimitive struct {
	ast.Location
	Kind PrimitiveKind
}

func (*TPrimitive) _type() {}

func (t *TPrimitive) GetLocation() ast.Location {
	return t.Location
}

func (t *TPrimitive) EqualsTo(other Type, eq ExprEq) bool {
	if y, ok := other.(*TPrimitive); ok {
		return t.Kind == y.Kind
	}
	return false
}

func (t *TPrimitive) Code() string {
	return t.Kind.String()
}
