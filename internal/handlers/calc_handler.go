package handlers

import (
	"math"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/samplecodes/testkata/internal/apperr"
	"github.com/samplecodes/testkata/internal/calculator"
)

// CalcResponse is the result of an arithmetic operation.
type CalcResponse struct {
	Op     string  `json:"op"`
	A      float64 `json:"a"`
	B      float64 `json:"b"`
	Result float64 `json:"result"`
	Exact  string  `json:"exact,omitempty"`
}

// CalcHandler exposes the calculator.
type CalcHandler struct{}

// NewCalcHandler creates a new CalcHandler.
func NewCalcHandler() *CalcHandler {
	return &CalcHandler{}
}

type binaryOp func(a, b float64) (float64, error)

func total(fn func(a, b float64) float64) binaryOp {
	return func(a, b float64) (float64, error) { return fn(a, b), nil }
}

var calcOperations = map[string]binaryOp{
	"add":      total(calculator.Add),
	"subtract": total(calculator.Subtract),
	"multiply": total(calculator.Multiply),
	"divide":   calculator.Divide,
}

// Calculate handles GET /api/v1/calc/{op}?a=&b=. With exact=true, divide
// also returns the decimal quotient computed from the raw operands.
func (h *CalcHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	opName := r.PathValue("op")
	op, ok := calcOperations[opName]
	if !ok {
		writeError(w, apperr.Newf(apperr.KindNotFound, "unknown operation: %s", opName))
		return
	}

	query := r.URL.Query()
	a, err := parseOperand(query.Get("a"), "a")
	if err != nil {
		writeError(w, err)
		return
	}
	b, err := parseOperand(query.Get("b"), "b")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := op(a, b)
	if err != nil {
		writeError(w, err)
		return
	}
	if math.IsInf(result, 0) || math.IsNaN(result) {
		writeError(w, apperr.New(apperr.KindValidation, "result is not a finite number"))
		return
	}

	resp := CalcResponse{Op: opName, A: a, B: b, Result: result}

	if opName == "divide" && query.Get("exact") == "true" {
		exact, err := calculator.DivideDecimal(
			decimal.RequireFromString(query.Get("a")),
			decimal.RequireFromString(query.Get("b")),
		)
		if err != nil {
			writeError(w, err)
			return
		}
		resp.Exact = exact.String()
	}

	writeJSON(w, http.StatusOK, resp)
}

// parseOperand rejects anything decimal.NewFromString cannot read, so the
// float and exact paths agree on what a valid operand is.
func parseOperand(raw, name string) (float64, error) {
	if raw == "" {
		return 0, apperr.Newf(apperr.KindMissingParameter, "missing query parameter: %s", name)
	}
	if _, err := decimal.NewFromString(raw); err != nil {
		return 0, apperr.Newf(apperr.KindValidation, "invalid number for %s: %q", name, raw)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Newf(apperr.KindValidation, "invalid number for %s: %q", name, raw)
	}
	return v, nil
}
