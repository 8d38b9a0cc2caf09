package parsed

import (
	"fmt"

	"tern-compiler/internal/pkg/ast"
)

// Statement is a top-level program statement. Statements are checked
// strictly in program order.
type Statement interface {
	_statement()
	GetLocation() ast.Location
	Code() string
}

// Definition is a value definition `definition name : Type := Expr`.
type Definition struct {
	ast.Location
	Name         ast.Identifier
	DeclaredType Type
	Body         Expression
}

func (*Definition) _statement() {}

func (s *Definition) GetLocation() ast.Location {
	return s.Location
}

func (s *Definition) Code() string {
	return fmt.Sprintf("definition %s : %s := %s", s.Name, s.DeclaredType.Code(), s.Body.Code())
}

// Fix is a fixed-point definition: the name is visible inside its own body.
type Fix struct {
	ast.Location
	Name         ast.Identifier
	DeclaredType Type
	Body         Expression
}

func (*Fix) _statement() {}

func (s *Fix) GetLocation() ast.Location {
	return s.Location
}

func (s *Fix) Code() string {
	return fmt.Sprintf("fix %s : %s := %s", s.Name, s.DeclaredType.Code(), s.Body.Code())
}

// Assume introduces a name at a type without a body (an axiom).
type Assume struct {
	ast.Location
	Name         ast.Identifier
	DeclaredType Type
}

func (*Assume) _statement() {}

func (s *Assume) GetLocation() ast.Location {
	return s.Location
}

func (s *Assume) Code() string {
	return fmt.Sprintf("assume %s : %s", s.Name, s.DeclaredType.Code())
}

// Signature binds a name directly to a type, a type alias rather than a
// term judgment.
type Signature struct {
	ast.Location
	Name    ast.Identifier
	Aliased Type
}

func (*Signature) _statement() {}

func (s *Signature) GetLocation() ast.Location {
	return s.Location
}

func (s *Signature) Code() string {
	return fmt.Sprintf("signature %s := %s", s.Name, s.Aliased.Code())
}

// Primitive declares a new ground base type.
type Primitive struct {
	ast.Location
	Name ast.Identifier
}

func (*Primitive) _statement() {}

func (s *Primitive) GetLocation() ast.Location {
	return s.Location
}

func (s *Primitive) Code() string {
	return fmt.Sprintf("primitive %s", s.Name)
}

// Module is a namespace grouping. The checker does not support it and
// rejects it instead of flattening.
type Module struct {
	ast.Location
	Name ast.Identifier
}

func (*Module) _statement() {}

func (s *Module) GetLocation() ast.Location {
	return s.Location
}

func (s *Module) Code() string {
	return fmt.Sprintf("module %s", s.Name)
}

// Program is a parsed statement sequence, possibly concatenated from
// several source files.
type Program struct {
	Statements []Statement
}
