package processors

import (
	"fmt"
	"os"
	"strconv"
	"unicode"

	"tern-compiler/internal/pkg/ast"
	"tern-compiler/internal/pkg/ast/parsed"
	"tern-compiler/internal/pkg/common"
)

const (
	KwModule     = "module"
	KwPrimitive  = "primitive"
	KwAssume     = "assume"
	KwSignature  = "signature"
	KwDefinition = "definition"
	KwFix        = "fix"
	KwForall     = "forall"
	KwRec        = "rec"
	KwOf         = "of"

	SeqComment          = "//"
	SeqCommentStart     = "/*"
	SeqCommentEnd       = "*/"
	SeqParenthesisOpen  = "("
	SeqParenthesisClose = ")"
	SeqBracketsOpen     = "["
	SeqBracketsClose    = "]"
	SeqColon            = ":"
	SeqAssign           = ":="
	SeqArrow            = "->"
	SeqLambdaBind       = "=>"
	SeqDot              = "."
	SeqUnit             = "()"

	SmbNewLine     = '\n'
	SmbQuoteString = '"'
	SmbQuoteChar   = '\''
	SmbEscape      = '\\'
)

var reservedWords = []string{
	KwModule, KwPrimitive, KwAssume, KwSignature, KwDefinition, KwFix,
	KwForall, KwRec, KwOf,
}

// Parse reads and parses one source file.
func Parse(filePath string) (*parsed.Program, []error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, []error{common.NewSystemError(fmt.Errorf("failed to read source `%s`: %w", filePath, err))}
	}
	return ParseWithContent(filePath, string(data))
}

// ParseWithContent parses a statement sequence. Parsing stops at the
// first error.
func ParseWithContent(filePath string, fileContent string) (*parsed.Program, []error) {
	src := &source{
		filePath: filePath,
		text:     []rune(fileContent),
	}
	src.skipWhitespace()

	program := &parsed.Program{}
	for !src.eof() {
		stmt, err := parseStatement(src)
		if err != nil {
			return program, []error{err}
		}
		program.Statements = append(program.Statements, stmt)
	}
	return program, nil
}

// ParseExpressionString parses a single bare expression, used by the
// interactive query command.
func ParseExpressionString(filePath string, text string) (parsed.Expression, error) {
	src := &source{
		filePath: filePath,
		text:     []rune(text),
	}
	src.skipWhitespace()
	e, err := parseExpression(src)
	if err != nil {
		return nil, err
	}
	if !src.eof() {
		return nil, newError(src, "unexpected trailing input after expression")
	}
	return e, nil
}

type source struct {
	filePath string
	cursor   uint32
	text     []rune
}

func (src *source) eof() bool {
	return src.cursor >= uint32(len(src.text))
}

func (src *source) at(offset uint32) (rune, bool) {
	pos := src.cursor + offset
	if pos >= uint32(len(src.text)) {
		return 0, false
	}
	return src.text[pos], true
}

func (src *source) loc(start uint32) ast.Location {
	return ast.NewLocation(src.filePath, src.text, start, src.cursor)
}

func newError(src *source, msg string) error {
	return common.Error{
		Location: ast.NewLocationCursor(src.filePath, src.text, src.cursor),
		Message:  msg,
	}
}

func (src *source) skipWhitespace() {
	for {
		r, ok := src.at(0)
		if !ok {
			return
		}
		if unicode.IsSpace(r) {
			src.cursor++
			continue
		}
		if src.matches(SeqComment) {
			for {
				r, ok := src.at(0)
				if !ok || r == SmbNewLine {
					break
				}
				src.cursor++
			}
			continue
		}
		if src.matches(SeqCommentStart) {
			src.cursor += uint32(len(SeqCommentStart))
			for !src.eof() && !src.matches(SeqCommentEnd) {
				src.cursor++
			}
			src.cursor += uint32(len(SeqCommentEnd))
			if src.cursor > uint32(len(src.text)) {
				src.cursor = uint32(len(src.text))
			}
			continue
		}
		return
	}
}

func (src *source) matches(seq string) bool {
	for i, r := range []rune(seq) {
		x, ok := src.at(uint32(i))
		if !ok || x != r {
			return false
		}
	}
	return true
}

// readExact consumes seq if present, eating trailing whitespace.
func (src *source) readExact(seq string) bool {
	if !src.matches(seq) {
		return false
	}
	src.cursor += uint32(len([]rune(seq)))
	src.skipWhitespace()
	return true
}

// readIdentifier reads an identifier or keyword, NFC-normalized. Eats
// trailing whitespace.
func (src *source) readIdentifier() (ast.Identifier, bool) {
	r, ok := src.at(0)
	if !ok || !(unicode.IsLetter(r) || r == '_') {
		return "", false
	}
	start := src.cursor
	for {
		r, ok := src.at(0)
		if !ok || !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '\'') {
			break
		}
		src.cursor++
	}
	word := string(src.text[start:src.cursor])
	src.skipWhitespace()
	return ast.NewIdentifier(word), true
}

// readWord consumes the given keyword only when the next identifier is
// exactly it.
func (src *source) readWord(kw string) bool {
	mark := src.cursor
	word, ok := src.readIdentifier()
	if !ok || string(word) != kw {
		src.cursor = mark
		return false
	}
	return true
}

func isReserved(word ast.Identifier) bool {
	return common.Any(func(kw string) bool { return string(word) == kw }, reservedWords)
}

func parseStatement(src *source) (parsed.Statement, error) {
	start := src.cursor

	if src.readWord(KwModule) {
		name, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected module name")
		}
		if !src.readExact(SeqDot) {
			return nil, newError(src, "expected `.` closing the statement")
		}
		return &parsed.Module{Location: src.loc(start), Name: name}, nil
	}

	if src.readWord(KwPrimitive) {
		name, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected primitive type name")
		}
		if !src.readExact(SeqDot) {
			return nil, newError(src, "expected `.` closing the statement")
		}
		return &parsed.Primitive{Location: src.loc(start), Name: name}, nil
	}

	if src.readWord(KwAssume) {
		name, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected assumed name")
		}
		if !src.readExact(SeqColon) {
			return nil, newError(src, "expected `:` after assumed name")
		}
		tipe, err := parseType(src)
		if err != nil {
			return nil, err
		}
		if !src.readExact(SeqDot) {
			return nil, newError(src, "expected `.` closing the statement")
		}
		return &parsed.Assume{Location: src.loc(start), Name: name, DeclaredType: tipe}, nil
	}

	if src.readWord(KwSignature) {
		name, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected signature name")
		}
		if !src.readExact(SeqAssign) {
			return nil, newError(src, "expected `:=` after signature name")
		}
		tipe, err := parseType(src)
		if err != nil {
			return nil, err
		}
		if !src.readExact(SeqDot) {
			return nil, newError(src, "expected `.` closing the statement")
		}
		return &parsed.Signature{Location: src.loc(start), Name: name, Aliased: tipe}, nil
	}

	isFix := src.readWord(KwFix)
	if isFix || src.readWord(KwDefinition) {
		name, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected defined name")
		}
		if !src.readExact(SeqColon) {
			return nil, newError(src, "expected `:` after defined name")
		}
		tipe, err := parseType(src)
		if err != nil {
			return nil, err
		}
		if !src.readExact(SeqAssign) {
			return nil, newError(src, "expected `:=` before definition body")
		}
		body, err := parseExpression(src)
		if err != nil {
			return nil, err
		}
		if !src.readExact(SeqDot) {
			return nil, newError(src, "expected `.` closing the statement")
		}
		if isFix {
			return &parsed.Fix{Location: src.loc(start), Name: name, DeclaredType: tipe, Body: body}, nil
		}
		return &parsed.Definition{Location: src.loc(start), Name: name, DeclaredType: tipe, Body: body}, nil
	}

	return nil, newError(src, "expected a statement")
}

func parseType(src *source) (parsed.Type, error) {
	start := src.cursor

	if src.readWord(KwForall) {
		bound, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected bound name after `forall`")
		}
		if !src.readExact(SeqDot) {
			return nil, newError(src, "expected `.` after bound name")
		}
		body, err := parseType(src)
		if err != nil {
			return nil, err
		}
		return &parsed.TForall{Location: src.loc(start), Bound: bound, Body: body}, nil
	}

	left, err := parseApplType(src)
	if err != nil {
		return nil, err
	}
	if src.readExact(SeqArrow) {
		ret, err := parseType(src)
		if err != nil {
			return nil, err
		}
		return &parsed.TFunc{Location: src.loc(start), Param: left, Return: ret}, nil
	}
	return left, nil
}

func parseApplType(src *source) (parsed.Type, error) {
	start := src.cursor
	left, err := parseAtomType(src)
	if err != nil {
		return nil, err
	}
	for {
		arg, ok, err := readAtomType(src)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		left = &parsed.TAppl{Location: src.loc(start), Func: left, Arg: arg}
	}
}

func parseAtomType(src *source) (parsed.Type, error) {
	t, ok, err := readAtomType(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(src, "expected a type")
	}
	return t, nil
}

// readAtomType reads one atomic type if the cursor sits on one, with any
// number of `[index]` suffixes applied.
func readAtomType(src *source) (parsed.Type, bool, error) {
	start := src.cursor
	var t parsed.Type

	if src.readExact(SeqParenthesisOpen) {
		inner, err := parseType(src)
		if err != nil {
			return nil, false, err
		}
		if !src.readExact(SeqParenthesisClose) {
			return nil, false, newError(src, "expected `)`")
		}
		t = inner
	} else {
		mark := src.cursor
		name, ok := src.readIdentifier()
		if !ok {
			return nil, false, nil
		}
		if isReserved(name) {
			src.cursor = mark
			return nil, false, nil
		}
		if kind, ok := builtinPrimitive(name); ok {
			t = &parsed.TPrimitive{Location: src.loc(start), Kind: kind}
		} else {
			t = &parsed.TNamed{Location: src.loc(start), Name: name}
		}
	}

	for src.readExact(SeqBracketsOpen) {
		index, err := parseExpression(src)
		if err != nil {
			return nil, false, err
		}
		if !src.readExact(SeqBracketsClose) {
			return nil, false, newError(src, "expected `]` closing the type index")
		}
		t = &parsed.TIndexed{Location: src.loc(start), Head: t, Index: index}
	}
	return t, true, nil
}

func builtinPrimitive(name ast.Identifier) (parsed.PrimitiveKind, bool) {
	switch string(name) {
	case "Int":
		return parsed.PInt, true
	case "Float":
		return parsed.PFloat, true
	case "String":
		return parsed.PString, true
	case "Char":
		return parsed.PChar, true
	case "Unit":
		return parsed.PUnit, true
	}
	return 0, false
}

func parseExpression(src *source) (parsed.Expression, error) {
	start := src.cursor

	if src.readWord(KwRec) {
		self, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected self name after `rec`")
		}
		if !src.readWord(KwOf) {
			return nil, newError(src, "expected `of` after self name")
		}
		param, ok := src.readIdentifier()
		if !ok {
			return nil, newError(src, "expected parameter name after `of`")
		}
		if !src.readExact(SeqLambdaBind) {
			return nil, newError(src, "expected `=>` before recursive body")
		}
		body, err := parseExpression(src)
		if err != nil {
			return nil, err
		}
		return &parsed.Rec{Location: src.loc(start), Self: self, Param: param, Body: body}, nil
	}

	// an identifier immediately bound by `=>` starts an abstraction
	mark := src.cursor
	if param, ok := src.readIdentifier(); ok && !isReserved(param) {
		if src.readExact(SeqLambdaBind) {
			body, err := parseExpression(src)
			if err != nil {
				return nil, err
			}
			return &parsed.Lambda{Location: src.loc(start), Param: param, Body: body}, nil
		}
	}
	src.cursor = mark

	left, err := parseAtomExpression(src)
	if err != nil {
		return nil, err
	}
	for {
		arg, ok, err := readAtomExpression(src)
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		left = &parsed.Apply{Location: src.loc(start), Func: left, Arg: arg}
	}
}

func parseAtomExpression(src *source) (parsed.Expression, error) {
	e, ok, err := readAtomExpression(src)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, newError(src, "expected an expression")
	}
	return e, nil
}

func readAtomExpression(src *source) (parsed.Expression, bool, error) {
	start := src.cursor

	if src.readExact(SeqUnit) {
		return &parsed.Const{Location: src.loc(start), Value: ast.CUnit{}}, true, nil
	}
	if src.readExact(SeqParenthesisOpen) {
		inner, err := parseExpression(src)
		if err != nil {
			return nil, false, err
		}
		if !src.readExact(SeqParenthesisClose) {
			return nil, false, newError(src, "expected `)`")
		}
		return inner, true, nil
	}
	if c, ok := src.at(0); ok && unicode.IsDigit(c) {
		value, err := readNumber(src, start)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	}
	if c, ok := src.at(0); ok && c == SmbQuoteString {
		value, err := readString(src, start)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	}
	if c, ok := src.at(0); ok && c == SmbQuoteChar {
		value, err := readChar(src, start)
		if err != nil {
			return nil, false, err
		}
		return value, true, nil
	}

	mark := src.cursor
	name, ok := src.readIdentifier()
	if !ok {
		return nil, false, nil
	}
	if isReserved(name) {
		src.cursor = mark
		return nil, false, nil
	}
	return &parsed.Var{Location: src.loc(start), Name: name}, true, nil
}

// readNumber reads an integer or float literal. A trailing dot is never
// consumed: the dot belongs to a float only when a digit follows it, so
// statement terminators after numbers stay intact.
func readNumber(src *source, start uint32) (parsed.Expression, error) {
	for {
		r, ok := src.at(0)
		if !ok || !unicode.IsDigit(r) {
			break
		}
		src.cursor++
	}
	isFloat := false
	if dot, ok := src.at(0); ok && dot == '.' {
		if next, ok := src.at(1); ok && unicode.IsDigit(next) {
			isFloat = true
			src.cursor++
			for {
				r, ok := src.at(0)
				if !ok || !unicode.IsDigit(r) {
					break
				}
				src.cursor++
			}
		}
	}
	text := string(src.text[start:src.cursor])
	src.skipWhitespace()
	if isFloat {
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, newError(src, fmt.Sprintf("invalid float literal `%s`", text))
		}
		return &parsed.Const{Location: src.loc(start), Value: ast.CFloat{Value: v}}, nil
	}
	v, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, newError(src, fmt.Sprintf("invalid integer literal `%s`", text))
	}
	return &parsed.Const{Location: src.loc(start), Value: ast.CInt{Value: v}}, nil
}

func readString(src *source, start uint32) (parsed.Expression, error) {
	src.cursor++
	var value []rune
	for {
		r, ok := src.at(0)
		if !ok {
			return nil, newError(src, "unterminated string literal")
		}
		src.cursor++
		if r == SmbQuoteString {
			break
		}
		if r == SmbEscape {
			e, ok := src.at(0)
			if !ok {
				return nil, newError(src, "unterminated string literal")
			}
			src.cursor++
			value = append(value, unescape(e))
			continue
		}
		value = append(value, r)
	}
	src.skipWhitespace()
	return &parsed.Const{Location: src.loc(start), Value: ast.CString{Value: string(value)}}, nil
}

func readChar(src *source, start uint32) (parsed.Expression, error) {
	src.cursor++
	r, ok := src.at(0)
	if !ok {
		return nil, newError(src, "unterminated character literal")
	}
	src.cursor++
	if r == SmbEscape {
		e, ok := src.at(0)
		if !ok {
			return nil, newError(src, "unterminated character literal")
		}
		src.cursor++
		r = unescape(e)
	}
	if q, ok := src.at(0); !ok || q != SmbQuoteChar {
		return nil, newError(src, "expected `'` closing the character literal")
	}
	src.cursor++
	src.skipWhitespace()
	return &parsed.Const{Location: src.loc(start), Value: ast.CChar{Value: r}}, nil
}

func unescape(r rune) rune {
	switch r {
	case 'n':
		return '\n'
	case 't':
		return '\t'
	case 'r':
		return '\r'
	case '0':
		return 0
	}
	return r
}
