package processors

import (
	"fmt"
	"slices"

	set "github.com/hashicorp/go-set/v3"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
	"tern-compiler/internal/pkg/ast/typed"
	"tern-compiler/internal/pkg/common"
)

// Rewrite is one substitution entry: a metavariable and its replacement.
// The left side is never itself bound, and at most one entry may directly
// match a given name.
type Rewrite struct {
	Name ast.Identifier
	To   typed.TypeVar
}

func (r Rewrite) String() string {
	return fmt.Sprintf("%s := %s", r.Name, r.To.Code())
}

// Declaration is a typing judgment: this term has this type.
type Declaration struct {
	Expr parsed.Expression
	Type typed.TypeVar
}

func (d Declaration) String() string {
	return fmt.Sprintf("%s : %s", d.Expr.Code(), d.Type.Code())
}

// TypeContext is the full mutable inference state of one checking session:
// the fresh-name counter, the substitution store, the declaration store and
// the set of declared primitive base types. It is owned exclusively by the
// checking pipeline; there is no concurrent access.
type TypeContext struct {
	nextName     uint64
	rewrites     []Rewrite
	declarations []Declaration
	primitives   *set.Set[ast.Identifier]
	exprEq       parsed.ExprEq
	log          *common.LogWriter
}

func NewTypeContext(log *common.LogWriter) *TypeContext {
	return &TypeContext{
		primitives: set.New[ast.Identifier](8),
		exprEq:     EqualExpressions,
		log:        log,
	}
}

// Rewrites returns the current substitution entries in append order.
func (ctx *TypeContext) Rewrites() []Rewrite {
	return slices.Clone(ctx.rewrites)
}

// Declarations returns the current judgments, most recent first.
func (ctx *TypeContext) Declarations() []Declaration {
	return slices.Clone(ctx.declarations)
}

// DeclaredType looks up the judgment recorded for e, dereferenced through
// the current substitution.
func (ctx *TypeContext) DeclaredType(e parsed.Expression) (typed.TypeVar, error) {
	return ctx.getDeclaration(e)
}

// newFreeName issues a metavariable unique within the session. The counter
// is never decremented, in particular not when a nested scope closes, so a
// discarded inner metavariable can never share its name with a later one.
func (ctx *TypeContext) newFreeName() *typed.TFree {
	name := ast.Identifier(fmt.Sprintf("t%d", ctx.nextName))
	ctx.nextName++
	return &typed.TFree{Name: name}
}

// getRewritten fully dereferences tv through the substitution chain.
// Dereferencing is idempotent: applying it to its own result changes
// nothing.
func (ctx *TypeContext) getRewritten(tv typed.TypeVar) (typed.TypeVar, error) {
	switch t := tv.(type) {
	case *typed.TBound:
		return t, nil
	case *typed.TFree:
		var matched *Rewrite
		for i := range ctx.rewrites {
			if ctx.rewrites[i].Name.EqualsTo(t.Name) {
				if matched != nil {
					return nil, common.Error{
						Kind:    common.KindDuplicateRewrite,
						Message: fmt.Sprintf("multiple rewrites of same free name %s", t.Name),
					}
				}
				matched = &ctx.rewrites[i]
			}
		}
		if matched == nil {
			return t, nil
		}
		return ctx.getRewritten(matched.To)
	case *typed.TFunc:
		param, err := ctx.getRewritten(t.Param)
		if err != nil {
			return nil, err
		}
		ret, err := ctx.getRewritten(t.Return)
		if err != nil {
			return nil, err
		}
		return &typed.TFunc{Param: param, Return: ret}, nil
	case *typed.TAppl:
		fn, err := ctx.getRewritten(t.Func)
		if err != nil {
			return nil, err
		}
		arg, err := ctx.getRewritten(t.Arg)
		if err != nil {
			return nil, err
		}
		return &typed.TAppl{Func: fn, Arg: arg}, nil
	case *typed.TProd:
		body, err := ctx.getRewritten(t.Body)
		if err != nil {
			return nil, err
		}
		return &typed.TProd{Bound: t.Bound, Body: body}, nil
	case *typed.TCons:
		head, err := ctx.getRewritten(t.Head)
		if err != nil {
			return nil, err
		}
		return &typed.TCons{Head: head, Index: t.Index}, nil
	}
	return nil, common.NewCompilerError("invalid case")
}

// rewrite binds the metavariable behind l to the dereferenced r. Binding
// anything already ground or structural is a programming error. A
// replacement whose free-name occurrences consist of more than one entry
// including the target is rejected as self-referential; a replacement that
// is exactly the bare target name is accepted.
func (ctx *TypeContext) rewrite(l, r typed.TypeVar) error {
	dl, err := ctx.getRewritten(l)
	if err != nil {
		return err
	}
	dr, err := ctx.getRewritten(r)
	if err != nil {
		return err
	}

	free, ok := dl.(*typed.TFree)
	if !ok {
		return common.Error{
			Kind:    common.KindInvalidRewriteTarget,
			Message: fmt.Sprintf("cannot rewrite %s, it is not a free name", dl.Code()),
		}
	}

	names := dr.AppendFreeNames(nil)
	if len(names) > 1 && slices.ContainsFunc(names, free.Name.EqualsTo) {
		return common.Error{
			Kind:    common.KindSelfReferentialRewrite,
			Message: fmt.Sprintf("rewriting %s to %s is self-referential", free.Name, dr.Code()),
		}
	}

	ctx.log.Trace("rewrite", fmt.Sprintf("%s := %s", free.Name, dr.Code()))
	ctx.rewrites = append(ctx.rewrites, Rewrite{Name: free.Name, To: dr})
	return nil
}

// declare records the judgment e : t. If a syntactically equal term is
// already declared, its recorded type is unified with t instead of
// inserting a second entry.
func (ctx *TypeContext) declare(e parsed.Expression, t typed.TypeVar) error {
	dt, err := ctx.getRewritten(t)
	if err != nil {
		return err
	}
	if d, ok := common.Find(func(d Declaration) bool { return d.Expr.EqualsTo(e) }, ctx.declarations); ok {
		return ctx.unify(d.Type, dt)
	}
	ctx.log.Trace("declare", fmt.Sprintf("%s : %s", e.Code(), dt.Code()))
	ctx.declarations = append([]Declaration{{Expr: e, Type: dt}}, ctx.declarations...)
	return nil
}

// getDeclaration returns the dereferenced type of the most recent judgment
// about a term syntactically equal to e.
func (ctx *TypeContext) getDeclaration(e parsed.Expression) (typed.TypeVar, error) {
	if d, ok := common.Find(func(d Declaration) bool { return d.Expr.EqualsTo(e) }, ctx.declarations); ok {
		return ctx.getRewritten(d.Type)
	}
	return nil, common.Error{
		Kind:     common.KindUnboundReference,
		Location: e.GetLocation(),
		Message:  fmt.Sprintf("no declaration found for expression %s", e.Code()),
	}
}

// scope marks a point in the context the checker can roll back to. Only the
// rewrites and declarations are rolled back; the fresh-name counter keeps
// running.
type scope struct {
	name     string
	rewrites int
	decls    int
}

func (ctx *TypeContext) openScope(name string) scope {
	ctx.log.Begin("scope", name)
	return scope{name: name, rewrites: len(ctx.rewrites), decls: len(ctx.declarations)}
}

// closeScope dereferences the extracted type variables against the inner
// state, then discards every rewrite and declaration made since openScope.
// The snapshot is restored even when a dereference fails.
func (ctx *TypeContext) closeScope(s scope, extracted ...typed.TypeVar) ([]typed.TypeVar, error) {
	out := make([]typed.TypeVar, len(extracted))
	var err error
	for i, tv := range extracted {
		out[i], err = ctx.getRewritten(tv)
		if err != nil {
			break
		}
	}
	ctx.rewrites = ctx.rewrites[:s.rewrites]
	ctx.declarations = ctx.declarations[len(ctx.declarations)-s.decls:]
	ctx.log.End("scope", s.name)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// dropScope restores the snapshot without extracting anything, used when
// checking inside the scope already failed.
func (ctx *TypeContext) dropScope(s scope) {
	ctx.rewrites = ctx.rewrites[:s.rewrites]
	ctx.declarations = ctx.declarations[len(ctx.declarations)-s.decls:]
	ctx.log.End("scope", s.name)
}
