package processors

import (
	"errors"
	"fmt"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
	"tern-compiler/internal/pkg/ast/typed"
	"tern-compiler/internal/pkg/common"
)

const Version = "0.1.0"

// CheckProgram runs the checker over the whole statement sequence in
// program order. The first failure aborts the rest; there is no partial
// success. On success the returned context holds the resolved judgments.
func CheckProgram(program *parsed.Program, log *common.LogWriter) (*TypeContext, error) {
	ctx := NewTypeContext(log)
	for _, stmt := range program.Statements {
		if err := CheckStatement(ctx, stmt); err != nil {
			log.Err(err)
			return nil, err
		}
	}
	return ctx, nil
}

// CheckStatement checks one statement against (and extending) an existing
// context. The REPL feeds statements through here one at a time.
func CheckStatement(ctx *TypeContext, stmt parsed.Statement) error {
	ctx.log.Begin("statement", stmt.Code())
	err := at(ctx.checkStatement(stmt), stmt.GetLocation())
	ctx.log.End("statement", stmt.Code())
	return err
}

// CheckExpression checks a bare expression in the given context and
// returns its inferred type.
func CheckExpression(ctx *TypeContext, e parsed.Expression) (typed.TypeVar, error) {
	ctx.log.Begin("expression", e.Code())
	tv, err := ctx.checkExpression(e)
	ctx.log.End("expression", e.Code())
	return tv, at(err, e.GetLocation())
}

// isUnbound tells a missing declaration apart from a store fault
// surfacing through the lookup's dereference.
func isUnbound(err error) bool {
	var ce common.Error
	return errors.As(err, &ce) && ce.Kind == common.KindUnboundReference
}

// at pins the statement location onto checker errors that carry none.
func at(err error, loc ast.Location) error {
	if err == nil {
		return nil
	}
	var ce common.Error
	if errors.As(err, &ce) && ce.Location.IsEmpty() {
		ce.Location = loc
		return ce
	}
	return err
}

func (ctx *TypeContext) checkStatement(stmt parsed.Statement) error {
	switch s := stmt.(type) {
	case *parsed.Definition:
		declared, err := ctx.resolveType(s.DeclaredType)
		if err != nil {
			return err
		}
		inferred, err := ctx.checkBody(fmt.Sprintf("definition %s", s.Name), s.Body)
		if err != nil {
			return err
		}
		if err := ctx.unify(declared, inferred); err != nil {
			return err
		}
		return ctx.declare(&parsed.Var{Location: s.Location, Name: s.Name}, declared)

	case *parsed.Fix:
		declared, err := ctx.resolveType(s.DeclaredType)
		if err != nil {
			return err
		}
		// the name is declared before its body is checked, so
		// self-references inside resolve to the declared type
		if err := ctx.declare(&parsed.Var{Location: s.Location, Name: s.Name}, declared); err != nil {
			return err
		}
		inferred, err := ctx.checkBody(fmt.Sprintf("fix %s", s.Name), s.Body)
		if err != nil {
			return err
		}
		return ctx.unify(declared, inferred)

	case *parsed.Assume:
		declared, err := ctx.resolveType(s.DeclaredType)
		if err != nil {
			return err
		}
		return ctx.declare(&parsed.Var{Location: s.Location, Name: s.Name}, declared)

	case *parsed.Signature:
		aliased, err := ctx.resolveType(s.Aliased)
		if err != nil {
			return err
		}
		return ctx.rewrite(&typed.TFree{Name: s.Name}, aliased)

	case *parsed.Primitive:
		ground := &typed.TBound{Type: &parsed.TNamed{Location: s.Location, Name: s.Name}}
		if err := ctx.rewrite(&typed.TFree{Name: s.Name}, ground); err != nil {
			return err
		}
		ctx.primitives.Insert(s.Name)
		return nil

	case *parsed.Module:
		return common.Error{
			Kind:     common.KindUnsupportedConstruct,
			Location: s.Location,
			Message:  fmt.Sprintf("module statements are not supported (module %s)", s.Name),
		}
	}
	return common.NewCompilerError("invalid case")
}

// checkBody checks a statement body in a nested scope and hands back the
// dereferenced inferred type; everything else the sub-inference recorded
// is discarded.
func (ctx *TypeContext) checkBody(name string, body parsed.Expression) (typed.TypeVar, error) {
	sc := ctx.openScope(name)
	inferred, err := ctx.checkExpression(body)
	if err != nil {
		ctx.dropScope(sc)
		return nil, err
	}
	out, err := ctx.closeScope(sc, inferred)
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// resolveType translates a surface type into the unification universe and
// dereferences it. Base names become metavariables so signatures and
// primitive declarations resolve them through the substitution store; a
// quantifier's bound name and an index term get their own declarations on
// first sight.
func (ctx *TypeContext) resolveType(t parsed.Type) (typed.TypeVar, error) {
	tv, err := ctx.fromType(t)
	if err != nil {
		return nil, err
	}
	return ctx.getRewritten(tv)
}

func (ctx *TypeContext) fromType(t parsed.Type) (typed.TypeVar, error) {
	switch x := t.(type) {
	case *parsed.TNamed:
		if ctx.primitives.Contains(x.Name) {
			return &typed.TBound{Type: x}, nil
		}
		return &typed.TFree{Name: x.Name}, nil

	case *parsed.TPrimitive:
		return &typed.TBound{Type: x}, nil

	case *parsed.TFunc:
		param, err := ctx.fromType(x.Param)
		if err != nil {
			return nil, err
		}
		ret, err := ctx.fromType(x.Return)
		if err != nil {
			return nil, err
		}
		return &typed.TFunc{Param: param, Return: ret}, nil

	case *parsed.TAppl:
		fn, err := ctx.fromType(x.Func)
		if err != nil {
			return nil, err
		}
		arg, err := ctx.fromType(x.Arg)
		if err != nil {
			return nil, err
		}
		return &typed.TAppl{Func: fn, Arg: arg}, nil

	case *parsed.TForall:
		bound := &parsed.Var{Location: x.Location, Name: x.Bound}
		if _, err := ctx.getDeclaration(bound); err != nil {
			if !isUnbound(err) {
				return nil, err
			}
			if err := ctx.declare(bound, ctx.newFreeName()); err != nil {
				return nil, err
			}
		}
		body, err := ctx.fromType(x.Body)
		if err != nil {
			return nil, err
		}
		return &typed.TProd{Bound: x.Bound, Body: body}, nil

	case *parsed.TIndexed:
		head, err := ctx.fromType(x.Head)
		if err != nil {
			return nil, err
		}
		if _, err := ctx.getDeclaration(x.Index); err != nil {
			if !isUnbound(err) {
				return nil, err
			}
			if _, err := ctx.checkExpression(x.Index); err != nil {
				return nil, err
			}
		}
		return &typed.TCons{Head: head, Index: x.Index}, nil
	}
	return nil, common.NewCompilerError("invalid case")
}

// checkExpression infers the type of e, emitting one declaration per
// node.
func (ctx *TypeContext) checkExpression(e parsed.Expression) (typed.TypeVar, error) {
	switch x := e.(type) {
	case *parsed.Var:
		// the actual type arrives later, through unification of this
		// metavariable against other uses and declarations of the name
		fresh := ctx.newFreeName()
		if err := ctx.declare(x, fresh); err != nil {
			return nil, err
		}
		return ctx.getRewritten(fresh)

	case *parsed.Const:
		t := &typed.TBound{Type: &parsed.TPrimitive{Location: x.Location, Kind: kindOfConst(x.Value)}}
		if err := ctx.declare(x, t); err != nil {
			return nil, err
		}
		return t, nil

	case *parsed.Lambda:
		sc := ctx.openScope("lambda")
		bodyT, err := ctx.checkExpression(x.Body)
		if err != nil {
			ctx.dropScope(sc)
			return nil, err
		}
		paramT, err := ctx.checkExpression(&parsed.Var{Location: x.Location, Name: x.Param})
		if err != nil {
			ctx.dropScope(sc)
			return nil, err
		}
		out, err := ctx.closeScope(sc, paramT, bodyT)
		if err != nil {
			return nil, err
		}
		ft := &typed.TFunc{Param: out[0], Return: out[1]}
		if err := ctx.declare(x, ft); err != nil {
			return nil, err
		}
		return ft, nil

	case *parsed.Apply:
		fnT, err := ctx.checkExpression(x.Func)
		if err != nil {
			return nil, err
		}
		argT, err := ctx.checkExpression(x.Arg)
		if err != nil {
			return nil, err
		}
		result := ctx.newFreeName()
		if err := ctx.unify(fnT, &typed.TFunc{Param: argT, Return: result}); err != nil {
			return nil, err
		}
		r, err := ctx.getRewritten(result)
		if err != nil {
			return nil, err
		}
		if err := ctx.declare(x, r); err != nil {
			return nil, err
		}
		return r, nil

	case *parsed.Rec:
		sc := ctx.openScope("rec " + string(x.Self))
		bodyT, err := ctx.checkExpression(x.Body)
		if err != nil {
			ctx.dropScope(sc)
			return nil, err
		}
		paramT, err := ctx.checkExpression(&parsed.Var{Location: x.Location, Name: x.Param})
		if err != nil {
			ctx.dropScope(sc)
			return nil, err
		}
		selfT, err := ctx.checkExpression(&parsed.Var{Location: x.Location, Name: x.Self})
		if err != nil {
			ctx.dropScope(sc)
			return nil, err
		}
		out, err := ctx.closeScope(sc, paramT, bodyT, selfT)
		if err != nil {
			return nil, err
		}
		// the self reference carries the result type of the recursion
		if err := ctx.unify(out[1], out[2]); err != nil {
			return nil, err
		}
		ret, err := ctx.getRewritten(out[1])
		if err != nil {
			return nil, err
		}
		ft := &typed.TFunc{Param: out[0], Return: ret}
		if err := ctx.declare(x, ft); err != nil {
			return nil, err
		}
		return ft, nil
	}
	return nil, common.NewCompilerError("invalid case")
}

func kindOfConst(v ast.ConstValue) parsed.PrimitiveKind {
	switch v.(type) {
	case ast.CInt:
		return parsed.PInt
	case ast.CFloat:
		return parsed.PFloat
	case ast.CString:
		return parsed.PString
	case ast.CChar:
		return parsed.PChar
	}
	return parsed.PUnit
}
