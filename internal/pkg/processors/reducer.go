package processors

import (
	"fmt"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
)

// reduceFuel bounds how many beta steps one reduction may take. A term
// that still is not normal when the fuel runs out is returned as-is, which
// keeps index comparison total even for diverging recursive terms.
const reduceFuel = 512

var lastRenameId = uint64(0)

// Reduce normalizes a term by fuel-limited call-by-name beta reduction.
func Reduce(e parsed.Expression) parsed.Expression {
	fuel := reduceFuel
	return reduce(e, &fuel)
}

// EqualExpressions decides semantic equality of two terms: both are
// reduced to normal form and compared syntactically. This is the equality
// used for type indices, where differently written indices that reduce to
// the same value name the same type.
func EqualExpressions(a, b parsed.Expression) bool {
	return Reduce(a).EqualsTo(Reduce(b))
}

func reduce(e parsed.Expression, fuel *int) parsed.Expression {
	switch x := e.(type) {
	case *parsed.Var, *parsed.Const:
		return e
	case *parsed.Lambda:
		return &parsed.Lambda{Location: x.Location, Param: x.Param, Body: reduce(x.Body, fuel)}
	case *parsed.Rec:
		// recursive abstractions unfold only when applied
		return e
	case *parsed.Apply:
		fn := reduce(x.Func, fuel)
		if lam, ok := fn.(*parsed.Lambda); ok && *fuel > 0 {
			*fuel--
			return reduce(substitute(lam.Body, lam.Param, x.Arg), fuel)
		}
		if rec, ok := fn.(*parsed.Rec); ok && *fuel > 0 {
			*fuel--
			unfolded := substitute(substitute(rec.Body, rec.Self, rec), rec.Param, x.Arg)
			return reduce(unfolded, fuel)
		}
		return &parsed.Apply{Location: x.Location, Func: fn, Arg: reduce(x.Arg, fuel)}
	}
	return e
}

// substitute replaces free occurrences of name in e by value, renaming
// binders that would capture a free variable of value.
func substitute(e parsed.Expression, name ast.Identifier, value parsed.Expression) parsed.Expression {
	switch x := e.(type) {
	case *parsed.Var:
		if x.Name.EqualsTo(name) {
			return value
		}
		return e
	case *parsed.Const:
		return e
	case *parsed.Lambda:
		if x.Param.EqualsTo(name) {
			return e
		}
		if occursFree(value, x.Param) {
			renamed := freshRename(x.Param)
			body := substitute(x.Body, x.Param, &parsed.Var{Location: x.Location, Name: renamed})
			return &parsed.Lambda{Location: x.Location, Param: renamed, Body: substitute(body, name, value)}
		}
		return &parsed.Lambda{Location: x.Location, Param: x.Param, Body: substitute(x.Body, name, value)}
	case *parsed.Rec:
		if x.Self.EqualsTo(name) || x.Param.EqualsTo(name) {
			return e
		}
		self, param, body := x.Self, x.Param, x.Body
		if occursFree(value, self) {
			renamed := freshRename(self)
			body = substitute(body, self, &parsed.Var{Location: x.Location, Name: renamed})
			self = renamed
		}
		if occursFree(value, param) {
			renamed := freshRename(param)
			body = substitute(body, param, &parsed.Var{Location: x.Location, Name: renamed})
			param = renamed
		}
		return &parsed.Rec{Location: x.Location, Self: self, Param: param, Body: substitute(body, name, value)}
	case *parsed.Apply:
		return &parsed.Apply{
			Location: x.Location,
			Func:     substitute(x.Func, name, value),
			Arg:      substitute(x.Arg, name, value),
		}
	}
	return e
}

func occursFree(e parsed.Expression, name ast.Identifier) bool {
	switch x := e.(type) {
	case *parsed.Var:
		return x.Name.EqualsTo(name)
	case *parsed.Const:
		return false
	case *parsed.Lambda:
		return !x.Param.EqualsTo(name) && occursFree(x.Body, name)
	case *parsed.Rec:
		return !x.Self.EqualsTo(name) && !x.Param.EqualsTo(name) && occursFree(x.Body, name)
	case *parsed.Apply:
		return occursFree(x.Func, name) || occursFree(x.Arg, name)
	}
	return false
}

func freshRename(base ast.Identifier) ast.Identifier {
	lastRenameId++
	return ast.Identifier(fmt.Sprintf("%s#%d", base, lastRenameId))
}
