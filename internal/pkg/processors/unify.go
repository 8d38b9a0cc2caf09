package processors

import (
	"fmt"

	"tern-compiler/internal/pkg/ast/parsed"
	"tern-compiler/internal/pkg/ast/typed"
	"tern-compiler/internal/pkg/common"
)

// unify reconciles two type variables. Success leaves the substitution
// store extended with the rewrites that make both sides dereference to the
// same type; failure reports both dereferenced operands. There is no other
// side effect.
func (ctx *TypeContext) unify(a, b typed.TypeVar) error {
	da, err := ctx.getRewritten(a)
	if err != nil {
		return err
	}
	db, err := ctx.getRewritten(b)
	if err != nil {
		return err
	}

	ctx.log.Begin("unify", fmt.Sprintf("%s ~ %s", da.Code(), db.Code()))
	err = ctx.unifyRewritten(da, db)
	ctx.log.End("unify", fmt.Sprintf("%s ~ %s", da.Code(), db.Code()))
	return err
}

// unifyRewritten case-splits over already-dereferenced operands.
//
// Quantifiers and indexed types never compare the bound name or the index
// term itself: what must agree are the types declared for those positions.
func (ctx *TypeContext) unifyRewritten(a, b typed.TypeVar) error {
	if a.EqualsTo(b, ctx.exprEq) {
		return nil
	}

	switch x := a.(type) {
	case *typed.TBound:
		switch y := b.(type) {
		case *typed.TFree:
			return ctx.rewrite(y, x)
		case *typed.TFunc:
			if ft, ok := x.Type.(*parsed.TFunc); ok {
				if err := ctx.unify(&typed.TBound{Type: ft.Param}, y.Param); err != nil {
					return err
				}
				return ctx.unify(&typed.TBound{Type: ft.Return}, y.Return)
			}
		case *typed.TAppl:
			if at, ok := x.Type.(*parsed.TAppl); ok {
				if err := ctx.unify(&typed.TBound{Type: at.Func}, y.Func); err != nil {
					return err
				}
				return ctx.unify(&typed.TBound{Type: at.Arg}, y.Arg)
			}
		case *typed.TProd:
			if ut, ok := x.Type.(*parsed.TForall); ok {
				if err := ctx.unifyDeclaredOf(
					&parsed.Var{Location: ut.Location, Name: ut.Bound},
					&parsed.Var{Name: y.Bound},
				); err != nil {
					return err
				}
				return ctx.unify(&typed.TBound{Type: ut.Body}, y.Body)
			}
		case *typed.TCons:
			if it, ok := x.Type.(*parsed.TIndexed); ok {
				if err := ctx.unify(&typed.TBound{Type: it.Head}, y.Head); err != nil {
					return err
				}
				return ctx.unifyDeclaredOf(it.Index, y.Index)
			}
		}

	case *typed.TFree:
		return ctx.rewrite(x, b)

	case *typed.TFunc:
		if y, ok := b.(*typed.TFunc); ok {
			if err := ctx.unify(x.Param, y.Param); err != nil {
				return err
			}
			return ctx.unify(x.Return, y.Return)
		}
		return ctx.unifySwapped(a, b)

	case *typed.TAppl:
		if y, ok := b.(*typed.TAppl); ok {
			if err := ctx.unify(x.Func, y.Func); err != nil {
				return err
			}
			return ctx.unify(x.Arg, y.Arg)
		}
		return ctx.unifySwapped(a, b)

	case *typed.TCons:
		if y, ok := b.(*typed.TCons); ok {
			if err := ctx.unify(x.Head, y.Head); err != nil {
				return err
			}
			// the indices themselves stay untouched, only their types
			// must agree
			return ctx.unifyDeclaredOf(x.Index, y.Index)
		}
		return ctx.unifySwapped(a, b)
	}

	return ctx.failUnify(a, b)
}

// unifySwapped retries a free composite against the other operand with the
// roles reversed, so the TBound and TFree cases above can pick the pair
// up. A pairing no case recognizes after the swap fails.
func (ctx *TypeContext) unifySwapped(a, b typed.TypeVar) error {
	switch b.(type) {
	case *typed.TBound, *typed.TFree:
		return ctx.unifyRewritten(b, a)
	}
	return ctx.failUnify(a, b)
}

// unifyDeclaredOf unifies the declared types of two terms.
func (ctx *TypeContext) unifyDeclaredOf(e, f parsed.Expression) error {
	de, err := ctx.getDeclaration(e)
	if err != nil {
		return err
	}
	df, err := ctx.getDeclaration(f)
	if err != nil {
		return err
	}
	return ctx.unify(de, df)
}

func (ctx *TypeContext) failUnify(a, b typed.TypeVar) error {
	return common.Error{
		Kind:    common.KindUnificationFailure,
		Message: fmt.Sprintf("unable to unify %s with %s", a.Code(), b.Code()),
	}
}
