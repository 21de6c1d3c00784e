// Package errors implements the categorized error taxonomy of spec.md §7,
// adapted from the teacher's internal/errors.BotError (category/component/
// operation, Retryable/IsFatal flags, Unwrap for errors.Is/errors.As).
package errors

import "fmt"

// Category is one of the fatal or non-fatal conditions spec.md §7 names.
type Category string

const (
	// Fatal at init or first use.
	CategoryConfig Category = "CONFIG"
	CategoryMarket Category = "MARKET"
	// Fatal; the run halts with the offending (ts, symbol).
	CategoryCandle  Category = "CANDLE"
	CategoryNumeric Category = "NUMERIC"
	// Non-fatal: reported upward through the fill/minute streams.
	CategoryBankruptcy       Category = "BANKRUPTCY"
	CategoryMinCostRejection Category = "MIN_COST_REJECTION"
)

// fatalCategories are the ones that halt the run immediately (spec.md §7).
var fatalCategories = map[Category]bool{
	CategoryConfig:  true,
	CategoryMarket:  true,
	CategoryCandle:  true,
	CategoryNumeric: true,
}

// EngineError is a categorized error carrying the component/operation
// context the driver needs to report the offending (ts, symbol) per §7.
type EngineError struct {
	Category   Category
	Component  string // e.g. "ordermath", "fill", "forager"
	Operation  string // e.g. "grid re-entry", "apply fill"
	Symbol     string
	TsMinute   int64
	Message    string
	Underlying error
}

func (e *EngineError) Error() string {
	loc := e.Component
	if e.Symbol != "" {
		loc = fmt.Sprintf("%s/%s@%d", e.Component, e.Symbol, e.TsMinute)
	}
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, loc, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, loc, e.Operation, e.Message)
}

func (e *EngineError) Unwrap() error {
	return e.Underlying
}

// Fatal reports whether this condition must halt the run immediately.
func (e *EngineError) Fatal() bool {
	return fatalCategories[e.Category]
}

// New creates an EngineError with no underlying cause.
func New(category Category, component, operation, message string) *EngineError {
	return &EngineError{Category: category, Component: component, Operation: operation, Message: message}
}

// Wrap attaches category/component/operation context to an existing error.
func Wrap(err error, category Category, component, operation string) *EngineError {
	if err == nil {
		return nil
	}
	return &EngineError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// At fills in the (symbol, minute) the condition was observed at, for the
// "run halts with the offending (ts, symbol)" requirement.
func (e *EngineError) At(symbol string, tsMinute int64) *EngineError {
	e.Symbol = symbol
	e.TsMinute = tsMinute
	return e
}
