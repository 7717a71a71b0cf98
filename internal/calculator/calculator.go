// Package calculator provides arithmetic helpers with a guarded division.
package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/samplecodes/testkata/internal/apperr"
)

// ErrDivisionByZero is returned when the divisor is zero.
var ErrDivisionByZero = apperr.New(apperr.KindDivisionByZero, "cannot divide by zero")

// Add returns a + b.
func Add(a, b float64) float64 {
	return a + b
}

// Subtract returns a - b.
func Subtract(a, b float64) float64 {
	return a - b
}

// Multiply returns a * b.
func Multiply(a, b float64) float64 {
	return a * b
}

// Divide returns a / b using IEEE-754 division.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, ErrDivisionByZero
	}
	return a / b, nil
}

// DivideDecimal returns the exact decimal quotient of a and b.
func DivideDecimal(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Zero, ErrDivisionByZero
	}
	return a.Div(b), nil
}

// Multiplier multiplies two numbers.
type Multiplier interface {
	Multiply(a, b float64) float64
}

// MultiplierFunc adapts a function to Multiplier.
type MultiplierFunc func(a, b float64) float64

// Multiply calls f(a, b).
func (f MultiplierFunc) Multiply(a, b float64) float64 {
	return f(a, b)
}

// Calculator composes derived operations on top of a Multiplier.
type Calculator struct {
	mul Multiplier
}

// New creates a Calculator backed by plain multiplication.
func New() *Calculator {
	return &Calculator{mul: MultiplierFunc(Multiply)}
}

// NewWithMultiplier creates a Calculator that delegates multiplication to m.
func NewWithMultiplier(m Multiplier) *Calculator {
	if m == nil {
		return New()
	}
	return &Calculator{mul: m}
}

// Add returns a + b.
func (c *Calculator) Add(a, b float64) float64 {
	return Add(a, b)
}

// Multiply returns a * b via the configured Multiplier.
func (c *Calculator) Multiply(a, b float64) float64 {
	return c.mul.Multiply(a, b)
}

// Divide returns a / b, failing on a zero divisor.
func (c *Calculator) Divide(a, b float64) (float64, error) {
	return Divide(a, b)
}

// Square returns x * x.
func (c *Calculator) Square(x float64) float64 {
	return c.mul.Multiply(x, x)
}

// CalculateArea returns the area of a circle with the given radius.
// It multiplies twice: radius by radius, then the result by pi.
func (c *Calculator) CalculateArea(radius float64) float64 {
	return c.mul.Multiply(c.mul.Multiply(radius, radius), math.Pi)
}
