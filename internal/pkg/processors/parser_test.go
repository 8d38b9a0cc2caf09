package processors

import (
	"testing"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
)

func parseOne(t *testing.T, text string) parsed.Statement {
	t.Helper()
	program, errs := ParseWithContent("test.tn", text)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs[0])
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected one statement, got %d", len(program.Statements))
	}
	return program.Statements[0]
}

func TestParseStatementForms(t *testing.T) {
	program, errs := ParseWithContent("test.tn", `
		module Main.
		primitive Nat.
		assume zero : Nat.
		signature N := Nat.
		definition id : Nat -> Nat := (n => n).
		fix loop : Nat -> Nat := (n => loop n).
	`)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs[0])
	}
	if len(program.Statements) != 6 {
		t.Fatalf("expected 6 statements, got %d", len(program.Statements))
	}
	if _, ok := program.Statements[0].(*parsed.Module); !ok {
		t.Fatalf("statement 0 parsed as %T", program.Statements[0])
	}
	if _, ok := program.Statements[1].(*parsed.Primitive); !ok {
		t.Fatalf("statement 1 parsed as %T", program.Statements[1])
	}
	if _, ok := program.Statements[2].(*parsed.Assume); !ok {
		t.Fatalf("statement 2 parsed as %T", program.Statements[2])
	}
	if _, ok := program.Statements[3].(*parsed.Signature); !ok {
		t.Fatalf("statement 3 parsed as %T", program.Statements[3])
	}
	if _, ok := program.Statements[4].(*parsed.Definition); !ok {
		t.Fatalf("statement 4 parsed as %T", program.Statements[4])
	}
	if _, ok := program.Statements[5].(*parsed.Fix); !ok {
		t.Fatalf("statement 5 parsed as %T", program.Statements[5])
	}
}

func TestParseArrowRightAssociative(t *testing.T) {
	stmt := parseOne(t, `assume f : Nat -> Nat -> Nat.`).(*parsed.Assume)
	outer, ok := stmt.DeclaredType.(*parsed.TFunc)
	if !ok {
		t.Fatalf("expected a function type, got %s", stmt.DeclaredType.Code())
	}
	if _, ok := outer.Return.(*parsed.TFunc); !ok {
		t.Fatalf("arrow must associate right: %s", stmt.DeclaredType.Code())
	}
	if _, ok := outer.Param.(*parsed.TFunc); ok {
		t.Fatalf("arrow must associate right: %s", stmt.DeclaredType.Code())
	}
}

func TestParseTypeApplicationLeftAssociative(t *testing.T) {
	stmt := parseOne(t, `assume p : Pair Nat Bool.`).(*parsed.Assume)
	outer, ok := stmt.DeclaredType.(*parsed.TAppl)
	if !ok {
		t.Fatalf("expected a type application, got %s", stmt.DeclaredType.Code())
	}
	if _, ok := outer.Func.(*parsed.TAppl); !ok {
		t.Fatalf("application must associate left: %s", stmt.DeclaredType.Code())
	}
}

func TestParseForallOwnsItsDot(t *testing.T) {
	stmt := parseOne(t, `assume id : forall a . a -> a.`).(*parsed.Assume)
	fa, ok := stmt.DeclaredType.(*parsed.TForall)
	if !ok {
		t.Fatalf("expected a quantified type, got %s", stmt.DeclaredType.Code())
	}
	if !fa.Bound.EqualsTo(ast.NewIdentifier("a")) {
		t.Fatalf("bound name parsed as %s", fa.Bound)
	}
	if _, ok := fa.Body.(*parsed.TFunc); !ok {
		t.Fatalf("quantifier body parsed as %s", fa.Body.Code())
	}
}

func TestParseIndexedType(t *testing.T) {
	stmt := parseOne(t, `assume v : Vec[three].`).(*parsed.Assume)
	ix, ok := stmt.DeclaredType.(*parsed.TIndexed)
	if !ok {
		t.Fatalf("expected an indexed type, got %s", stmt.DeclaredType.Code())
	}
	if _, ok := ix.Index.(*parsed.Var); !ok {
		t.Fatalf("index parsed as %s", ix.Index.Code())
	}

	// indices chain and may hold arbitrary expressions
	stmt = parseOne(t, `assume m : Matrix[n][(f => f) m].`).(*parsed.Assume)
	outer, ok := stmt.DeclaredType.(*parsed.TIndexed)
	if !ok {
		t.Fatalf("expected an indexed type, got %s", stmt.DeclaredType.Code())
	}
	if _, ok := outer.Head.(*parsed.TIndexed); !ok {
		t.Fatalf("indices must chain on the head: %s", stmt.DeclaredType.Code())
	}
}

func TestParseBuiltinPrimitives(t *testing.T) {
	for text, kind := range map[string]parsed.PrimitiveKind{
		`assume a : Int.`:    parsed.PInt,
		`assume b : Float.`:  parsed.PFloat,
		`assume c : String.`: parsed.PString,
		`assume d : Char.`:   parsed.PChar,
		`assume e : Unit.`:   parsed.PUnit,
	} {
		stmt := parseOne(t, text).(*parsed.Assume)
		p, ok := stmt.DeclaredType.(*parsed.TPrimitive)
		if !ok {
			t.Fatalf("%s: expected a builtin type, got %s", text, stmt.DeclaredType.Code())
		}
		if p.Kind != kind {
			t.Fatalf("%s: parsed kind %v, want %v", text, p.Kind, kind)
		}
	}
}

func TestParseApplicationLeftAssociative(t *testing.T) {
	stmt := parseOne(t, `definition r : Nat := g x y.`).(*parsed.Definition)
	outer, ok := stmt.Body.(*parsed.Apply)
	if !ok {
		t.Fatalf("expected an application, got %s", stmt.Body.Code())
	}
	if _, ok := outer.Func.(*parsed.Apply); !ok {
		t.Fatalf("application must associate left: %s", stmt.Body.Code())
	}
}

func TestParseNestedLambda(t *testing.T) {
	stmt := parseOne(t, `definition k : Nat := a => b => a.`).(*parsed.Definition)
	outer, ok := stmt.Body.(*parsed.Lambda)
	if !ok {
		t.Fatalf("expected an abstraction, got %s", stmt.Body.Code())
	}
	inner, ok := outer.Body.(*parsed.Lambda)
	if !ok {
		t.Fatalf("expected a nested abstraction, got %s", outer.Body.Code())
	}
	v, ok := inner.Body.(*parsed.Var)
	if !ok || !v.Name.EqualsTo(ast.NewIdentifier("a")) {
		t.Fatalf("inner body parsed as %s", inner.Body.Code())
	}
}

func TestParseRecExpression(t *testing.T) {
	stmt := parseOne(t, `definition f : Nat := rec self of n => self.`).(*parsed.Definition)
	rec, ok := stmt.Body.(*parsed.Rec)
	if !ok {
		t.Fatalf("expected a recursive abstraction, got %s", stmt.Body.Code())
	}
	if !rec.Self.EqualsTo(ast.NewIdentifier("self")) || !rec.Param.EqualsTo(ast.NewIdentifier("n")) {
		t.Fatalf("binder names parsed as %s / %s", rec.Self, rec.Param)
	}
}

func TestParseLiterals(t *testing.T) {
	for text, want := range map[string]ast.ConstValue{
		`definition a : Int := 42.`:        ast.CInt{Value: 42},
		`definition b : Float := 3.14.`:    ast.CFloat{Value: 3.14},
		`definition c : String := "a\nb".`: ast.CString{Value: "a\nb"},
		`definition d : Char := '\t'.`:     ast.CChar{Value: '\t'},
		`definition e : Unit := ().`:       ast.CUnit{},
		`definition f : Int := 3.`:         ast.CInt{Value: 3},
	} {
		stmt := parseOne(t, text).(*parsed.Definition)
		c, ok := stmt.Body.(*parsed.Const)
		if !ok {
			t.Fatalf("%s: expected a literal, got %s", text, stmt.Body.Code())
		}
		if !c.Value.EqualsTo(want) {
			t.Fatalf("%s: parsed %s, want %s", text, c.Value.Code(), want.Code())
		}
	}
}

func TestParseComments(t *testing.T) {
	program, errs := ParseWithContent("test.tn", `
		// a line comment
		primitive Nat. /* an inline
		block comment */ assume zero : Nat.
	`)
	if len(errs) > 0 {
		t.Fatalf("parse failed: %v", errs[0])
	}
	if len(program.Statements) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(program.Statements))
	}
}

func TestParseMissingDot(t *testing.T) {
	_, errs := ParseWithContent("test.tn", `primitive Nat`)
	if len(errs) == 0 {
		t.Fatal("expected a parse error for the missing terminator")
	}
}

func TestParseStopsAtFirstError(t *testing.T) {
	program, errs := ParseWithContent("test.tn", `
		primitive Nat.
		assume :
		primitive Bool.
	`)
	if len(errs) != 1 {
		t.Fatalf("expected one error, got %d", len(errs))
	}
	if len(program.Statements) != 1 {
		t.Fatalf("expected the statements before the error, got %d", len(program.Statements))
	}
}

func TestParseExpressionStringRejectsTrailing(t *testing.T) {
	if _, err := ParseExpressionString("test", "f x extra )"); err == nil {
		t.Fatal("expected an error for trailing input")
	}
	e, err := ParseExpressionString("test", "f x")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*parsed.Apply); !ok {
		t.Fatalf("parsed %s, want an application", e.Code())
	}
}
