package errors

import (
	"fmt"
)

// ErrorCode represents a specific error type for review and reminder operations.
type ErrorCode string

const (
	// ErrCodeInvalidArgument indicates malformed input (bad rating enum, missing field).
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	// ErrCodeNotFound indicates a referenced item, session or reminder does not exist.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	// ErrCodePolicyRejected indicates a reminder was correctly skipped per user policy.
	ErrCodePolicyRejected ErrorCode = "POLICY_REJECTED"
	// ErrCodeDeliveryFailed indicates the push collaborator call failed.
	ErrCodeDeliveryFailed ErrorCode = "DELIVERY_FAILED"
	// ErrCodeTransactionFailed indicates the atomic write set could not commit.
	ErrCodeTransactionFailed ErrorCode = "TRANSACTION_FAILED"
	// ErrCodeUnavailable indicates the store or a collaborator is unreachable.
	ErrCodeUnavailable ErrorCode = "UNAVAILABLE"
)

// ServiceError represents a structured error carried up to the HTTP layer.
type ServiceError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetCode returns the error code.
func (e *ServiceError) GetCode() ErrorCode {
	return e.Code
}

// Convenience constructors for common error types.

// InvalidArgument creates an invalid argument error.
func InvalidArgument(format string, args ...any) *ServiceError {
	return &ServiceError{Code: ErrCodeInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// NotFound creates a not found error.
func NotFound(format string, args ...any) *ServiceError {
	return &ServiceError{Code: ErrCodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// TransactionFailed creates a transaction failed error.
func TransactionFailed(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeTransactionFailed, Message: msg, Cause: cause}
}

// DeliveryFailed creates a delivery failed error.
func DeliveryFailed(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeDeliveryFailed, Message: msg, Cause: cause}
}

// Unavailable creates an unavailable error.
func Unavailable(msg string, cause error) *ServiceError {
	return &ServiceError{Code: ErrCodeUnavailable, Message: msg, Cause: cause}
}

// IsCode checks if an error is of a specific code.
func IsCode(err error, code ErrorCode) bool {
	if svcErr, ok := err.(*ServiceError); ok {
		return svcErr.Code == code
	}
	return false
}

// GetCodeFromError extracts the error code from any error.
// Returns the provided default code if the error is not a ServiceError.
func GetCodeFromError(err error, defaultCode ErrorCode) ErrorCode {
	if svcErr, ok := err.(*ServiceError); ok {
		return svcErr.Code
	}
	return defaultCode
}
