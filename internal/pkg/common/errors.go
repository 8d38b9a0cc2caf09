package common

import (
	"fmt"
	"runtime"
	"slices"
	"strings"

	"tern-compiler/internal/pkg/ast"
)

// ErrorKind classifies a checking failure. Every kind is fatal to the
// current check; the first failure aborts the remaining statements.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	// KindUnificationFailure: two dereferenced type variables cannot be
	// reconciled by any decomposition case.
	KindUnificationFailure
	// KindUnboundReference: no declaration recorded for a term.
	KindUnboundReference
	// KindDuplicateRewrite: more than one rewrite for the same
	// metavariable, an internal consistency fault.
	KindDuplicateRewrite
	// KindSelfReferentialRewrite: occurs check rejection.
	KindSelfReferentialRewrite
	// KindInvalidRewriteTarget: attempted to rewrite an already ground or
	// already structural type variable.
	KindInvalidRewriteTarget
	// KindUnsupportedConstruct: module/namespace statement encountered.
	KindUnsupportedConstruct
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnificationFailure:
		return "unification failure"
	case KindUnboundReference:
		return "unbound reference"
	case KindDuplicateRewrite:
		return "duplicate rewrite"
	case KindSelfReferentialRewrite:
		return "self-referential rewrite"
	case KindInvalidRewriteTarget:
		return "invalid rewrite target"
	case KindUnsupportedConstruct:
		return "unsupported construct"
	}
	return "error"
}

type Error struct {
	Kind     ErrorKind
	Location ast.Location
	Extra    []ast.Location
	Message  string
}

func (e Error) Error() string {
	sb := strings.Builder{}
	cursorString := e.Location.CursorString()
	if cursorString != "" {
		sb.WriteString(fmt.Sprintf("%s %s\n", cursorString, e.Message))
	}

	var uniqueExtra []ast.Location
	for _, x := range e.Extra {
		if !slices.ContainsFunc(uniqueExtra, func(u ast.Location) bool {
			return u.EqualsTo(x)
		}) {
			uniqueExtra = append(uniqueExtra, x)
		}
	}

	for _, extra := range uniqueExtra {
		sb.WriteString(fmt.Sprintf("+ %s\n", extra.CursorString()))
	}

	if e.Location.IsEmpty() {
		sb.WriteString(fmt.Sprintf("%s\n", e.Message))
	}
	return sb.String()
}

func NewSystemError(err error) error {
	return systemError{inner: err}
}

type systemError struct {
	inner error
}

func (e systemError) Error() string {
	return fmt.Sprintf("system error: %v", e.inner)
}

func (e systemError) Unwrap() error {
	return e.inner
}

func NewCompilerError(message string) error {
	_, file, line, _ := runtime.Caller(1)
	return compilerError{message: message, file: file, line: line}
}

type compilerError struct {
	message string
	file    string
	line    int
}

func (e compilerError) Error() string {
	return fmt.Sprintf("%s at %s:%d", e.message, e.file, e.line)
}
