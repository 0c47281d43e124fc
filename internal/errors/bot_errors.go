package errors

import "fmt"

// Category classifies an error by how the engine should react to it.
type Category string

const (
	// Fatal errors stop the process at startup; nothing raises them
	// mid-cycle.
	CategoryFatal         Category = "FATAL"
	CategoryConfiguration Category = "CONFIG"

	// Cycle-local errors: the affected symbol is skipped and the cycle
	// continues.
	CategoryExchange   Category = "EXCHANGE"
	CategoryNetwork    Category = "NETWORK"
	CategoryValidation Category = "VALIDATION"
	CategoryOrder      Category = "ORDER"
	CategoryPosition   Category = "POSITION"
)

// BotError is a categorized error with the component and operation
// that produced it.
type BotError struct {
	Category   Category
	Component  string
	Operation  string
	Message    string
	Underlying error
}

// Error implements the error interface.
func (e *BotError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error.
func (e *BotError) Unwrap() error {
	return e.Underlying
}

// IsFatal reports whether the error should stop the bot.
func (e *BotError) IsFatal() bool {
	return e.Category == CategoryFatal || e.Category == CategoryConfiguration
}

// New creates a categorized error without an underlying cause.
func New(category Category, component, operation, message string) *BotError {
	return &BotError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
	}
}

// Wrap attaches category and context to an existing error. Returns nil
// for a nil error.
func Wrap(err error, category Category, component, operation string) *BotError {
	if err == nil {
		return nil
	}
	return &BotError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
	}
}

// NewExchangeError wraps a failed venue call.
func NewExchangeError(component, operation string, err error) *BotError {
	return Wrap(err, CategoryExchange, component, operation)
}

// NewValidationError reports a rejected input or invariant violation.
func NewValidationError(component, operation, message string) *BotError {
	return New(CategoryValidation, component, operation, message)
}

// NewPositionError wraps a failed position mutation.
func NewPositionError(component, operation string, err error) *BotError {
	return Wrap(err, CategoryPosition, component, operation)
}

// NewConfigurationError reports an unusable configuration.
func NewConfigurationError(component, operation, message string) *BotError {
	return New(CategoryConfiguration, component, operation, message)
}
