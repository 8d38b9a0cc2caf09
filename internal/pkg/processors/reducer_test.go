package processors

import (
	"testing"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
)

func expr(t *testing.T, text string) parsed.Expression {
	t.Helper()
	e, err := ParseExpressionString("test", text)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return e
}

func TestReduceBeta(t *testing.T) {
	got := Reduce(expr(t, "(n => n) x"))
	if !got.EqualsTo(expr(t, "x")) {
		t.Fatalf("reduced to %s, want x", got.Code())
	}
}

func TestReduceUnderLambda(t *testing.T) {
	got := Reduce(expr(t, "n => (m => m) n"))
	if !got.EqualsTo(expr(t, "n => n")) {
		t.Fatalf("reduced to %s, want n => n", got.Code())
	}
}

func TestReduceRecUnfoldsOnlyWhenApplied(t *testing.T) {
	bare := expr(t, "rec self of n => 1")
	if !Reduce(bare).EqualsTo(bare) {
		t.Fatalf("unapplied recursive abstraction was rewritten: %s", Reduce(bare).Code())
	}

	got := Reduce(expr(t, "(rec self of n => 1) 2"))
	if !got.EqualsTo(expr(t, "1")) {
		t.Fatalf("reduced to %s, want 1", got.Code())
	}
}

func TestReduceShadowedBinder(t *testing.T) {
	got := Reduce(expr(t, "(x => x => x) y"))
	if !got.EqualsTo(expr(t, "x => x")) {
		t.Fatalf("substitution crossed a shadowing binder: %s", got.Code())
	}
}

func TestReduceAvoidsCapture(t *testing.T) {
	got := Reduce(expr(t, "(f => x => f x) x"))
	lam, ok := got.(*parsed.Lambda)
	if !ok {
		t.Fatalf("expected an abstraction, got %s", got.Code())
	}
	if lam.Param.EqualsTo(ast.NewIdentifier("x")) {
		t.Fatalf("free x was captured: %s", got.Code())
	}
	app, ok := lam.Body.(*parsed.Apply)
	if !ok {
		t.Fatalf("expected an application body, got %s", lam.Body.Code())
	}
	fn, ok := app.Func.(*parsed.Var)
	if !ok || !fn.Name.EqualsTo(ast.NewIdentifier("x")) {
		t.Fatalf("substituted function position is wrong: %s", got.Code())
	}
}

func TestReduceDivergingTermTerminates(t *testing.T) {
	// runs out of fuel instead of hanging
	diverging := expr(t, "(rec self of n => self n) 1")
	_ = Reduce(diverging)
	if !EqualExpressions(diverging, diverging) {
		t.Fatal("a term must stay equal to itself even when it diverges")
	}
}

func TestEqualExpressionsSemantic(t *testing.T) {
	if !EqualExpressions(expr(t, "(n => n) three"), expr(t, "three")) {
		t.Fatal("a redex must equal its normal form")
	}
	if EqualExpressions(expr(t, "three"), expr(t, "four")) {
		t.Fatal("distinct variables compared equal")
	}
	if !EqualExpressions(
		expr(t, "(f => x => f x) succ zero"),
		expr(t, "succ zero"),
	) {
		t.Fatal("nested redex must equal its normal form")
	}
}
