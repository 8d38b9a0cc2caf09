package ast

import "fmt"

// ConstValue is a literal constant embedded in an expression.
type ConstValue interface {
	_constValue()
	EqualsTo(o ConstValue) bool
	Code() string
}

type CInt struct {
	Value int64
}

func (CInt) _constValue() {}

func (c CInt) EqualsTo(o ConstValue) bool {
	if y, ok := o.(CInt); ok {
		return c.Value == y.Value
	}
	return false
}

func (c CInt) Code() string {
	return fmt.Sprintf("%d", c.Value)
}

type CFloat struct {
	Value float64
}

func (CFloat) _constValue() {}

func (c CFloat) EqualsTo(o ConstValue) bool {
	if y, ok := o.(CFloat); ok {
		return c.Value == y.Value
	}
	return false
}

func (c CFloat) Code() string {
	return fmt.Sprintf("%v", c.Value)
}

type CString struct {
	Value string
}

func (CString) _constValue() {}

func (c CString) EqualsTo(o ConstValue) bool {
	if y, ok := o.(CString); ok {
		return c.Value == y.Value
	}
	return false
}

func (c CString) Code() string {
	return fmt.Sprintf("%q", c.Value)
}

type CChar struct {
	Value rune
}

func (CChar) _constValue() {}

func (c CChar) EqualsTo(o ConstValue) bool {
	if y, ok := o.(CChar); ok {
		return c.Value == y.Value
	}
	return false
}

func (c CChar) Code() string {
	return fmt.Sprintf("'%c'", c.Value)
}

type CUnit struct{}

func (CUnit) _constValue() {}

func (c CUnit) EqualsTo(o ConstValue) bool {
	_, ok := o.(CUnit)
	return ok
}

func (CUnit) Code() string {
	return "()"
}
