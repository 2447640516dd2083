package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryMetaAPI        ErrorCategory = "meta_api"
	CategoryTrendyolAPI    ErrorCategory = "trendyol_api"
	CategoryAuth           ErrorCategory = "auth"
	CategoryValidation     ErrorCategory = "validation"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryReconciliation ErrorCategory = "reconciliation"
	CategoryNetwork        ErrorCategory = "network"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// Upstream API errors
	CodeUpstreamRejected ErrorCode = "upstream_rejected"
	CodeInvalidToken     ErrorCode = "invalid_token"
	CodeRateLimited      ErrorCode = "rate_limited"
	CodeBadResponse      ErrorCode = "bad_response"

	// Auth errors
	CodeInvalidCredentials ErrorCode = "invalid_credentials"
	CodeTokenExpired       ErrorCode = "token_expired"
	CodeTokenMalformed     ErrorCode = "token_malformed"
	CodeMissingToken       ErrorCode = "missing_token"

	// Validation errors
	CodeInvalidAmount ErrorCode = "invalid_amount"
	CodeInvalidDate   ErrorCode = "invalid_date"
	CodeInvalidFormat ErrorCode = "invalid_format"
	CodeMissingField  ErrorCode = "missing_field"
	CodeOutOfRange    ErrorCode = "out_of_range"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Reconciliation errors
	CodeMatchingFailed   ErrorCode = "matching_failed"
	CodeDataInconsistent ErrorCode = "data_inconsistent"
	CodeProcessingError  ErrorCode = "processing_error"

	// Network errors
	CodeConnectionFailed   ErrorCode = "connection_failed"
	CodeTimeout            ErrorCode = "timeout"
	CodeServiceUnavailable ErrorCode = "service_unavailable"

	// Internal errors
	CodeUnexpectedError ErrorCode = "unexpected_error"
)

// AppError is the base error type for all application errors
type AppError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *AppError) GetExitCode() int {
	switch e.Category {
	case CategoryMetaAPI, CategoryTrendyolAPI:
		return 2
	case CategoryValidation:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryReconciliation, CategoryInternal:
		return 5
	case CategoryNetwork:
		return 6
	case CategoryAuth:
		return 7
	default:
		return 1
	}
}

// HTTPStatus returns the HTTP status code to surface for the error
func (e *AppError) HTTPStatus() int {
	switch e.Category {
	case CategoryAuth:
		return 401
	case CategoryValidation:
		return 400
	case CategoryMetaAPI, CategoryTrendyolAPI, CategoryNetwork:
		return 502
	default:
		return 500
	}
}

// WithContext adds context information to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *AppError) WithSuggestion(suggestion string) *AppError {
	e.Suggestion = suggestion
	return e
}

// New creates a new AppError
func New(category ErrorCategory, code ErrorCode, message string) *AppError {
	return &AppError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with AppError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	return &AppError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// MetaAPIError creates an error for a failed Meta Graph API call. The
// upstream code and message come from Meta's error envelope when present.
func MetaAPIError(code ErrorCode, endpoint string, status int, upstreamCode int, upstreamMessage string, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidToken:
		message = fmt.Sprintf("Meta API rejected the access token for %s", endpoint)
		suggestion = "regenerate the access token in Meta Business Manager and update the configuration"
	case CodeRateLimited:
		message = fmt.Sprintf("Meta API rate limit reached on %s", endpoint)
		suggestion = "wait a few minutes before retrying or reduce the request rate"
	case CodeBadResponse:
		message = fmt.Sprintf("Meta API returned an unreadable response from %s", endpoint)
		suggestion = "check the API version and retry the request"
	default:
		if upstreamMessage != "" {
			message = fmt.Sprintf("Meta API error on %s: %s", endpoint, upstreamMessage)
		} else {
			message = fmt.Sprintf("Meta API error on %s", endpoint)
		}
		suggestion = "verify the account ID and token permissions"
	}

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryMetaAPI, code, message)
	} else {
		result = New(CategoryMetaAPI, code, message)
	}

	result = result.
		WithSuggestion(suggestion).
		WithContext("endpoint", endpoint).
		WithContext("status", status)
	if upstreamCode != 0 {
		result = result.WithContext("upstream_code", upstreamCode)
	}
	if upstreamMessage != "" {
		result = result.WithContext("upstream_message", upstreamMessage)
	}
	return result
}

// TrendyolAPIError creates an error for a failed Trendyol seller API call.
func TrendyolAPIError(code ErrorCode, endpoint string, status int, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidToken:
		message = fmt.Sprintf("Trendyol API rejected the credentials for %s", endpoint)
		suggestion = "check the API key, secret and seller ID in the configuration"
	case CodeRateLimited:
		message = fmt.Sprintf("Trendyol API rate limit reached on %s", endpoint)
		suggestion = "wait before retrying or lower the page fetch rate"
	case CodeBadResponse:
		message = fmt.Sprintf("Trendyol API returned an unreadable response from %s", endpoint)
		suggestion = "check the endpoint path and retry the request"
	default:
		message = fmt.Sprintf("Trendyol API error on %s (status %d)", endpoint, status)
		suggestion = "verify the seller ID and date range"
	}

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryTrendyolAPI, code, message)
	} else {
		result = New(CategoryTrendyolAPI, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("endpoint", endpoint).
		WithContext("status", status)
}

// AuthError creates an authentication-related error
func AuthError(code ErrorCode, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidCredentials:
		message = "invalid username or password"
		suggestion = "check the configured dashboard credentials"
	case CodeTokenExpired:
		message = "session token has expired"
		suggestion = "log in again to obtain a fresh token"
	case CodeTokenMalformed:
		message = "session token is malformed"
		suggestion = "log in again to obtain a valid token"
	case CodeMissingToken:
		message = "no session token provided"
		suggestion = "include a Bearer token in the Authorization header"
	default:
		message = "authentication failed"
		suggestion = "log in again"
	}

	if err != nil {
		return Wrap(err, CategoryAuth, code, message).WithSuggestion(suggestion)
	}
	return New(CategoryAuth, code, message).WithSuggestion(suggestion)
}

// ValidationError creates a validation-related error
func ValidationError(code ErrorCode, field string, value interface{}, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidAmount:
		message = fmt.Sprintf("invalid amount in field '%s': %v", field, value)
		suggestion = "ensure amounts are valid decimal numbers (e.g., '12.34')"
	case CodeInvalidDate:
		message = fmt.Sprintf("invalid date in field '%s': %v", field, value)
		suggestion = "use date format YYYY-MM-DD"
	case CodeMissingField:
		message = fmt.Sprintf("required field '%s' is missing or empty", field)
		suggestion = "provide a value for this required field"
	case CodeOutOfRange:
		message = fmt.Sprintf("value out of range in field '%s': %v", field, value)
		suggestion = "ensure the value is within the acceptable range"
	default:
		message = fmt.Sprintf("validation error in field '%s': %v", field, value)
		suggestion = "check the field value and format"
	}

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryValidation, code, message)
	} else {
		result = New(CategoryValidation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("field", field).
		WithContext("value", value)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this setting via flag, environment variable or config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// ReconciliationError creates a reconciliation-related error
func ReconciliationError(code ErrorCode, operation string, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeMatchingFailed:
		message = fmt.Sprintf("matching failed during %s", operation)
		suggestion = "try adjusting matching thresholds or add a manual mapping"
	case CodeDataInconsistent:
		message = fmt.Sprintf("data inconsistency detected during %s", operation)
		suggestion = "verify the fetched data and resolve inconsistencies"
	case CodeProcessingError:
		message = fmt.Sprintf("processing error during %s", operation)
		suggestion = "check system resources and try again"
	default:
		message = fmt.Sprintf("reconciliation error during %s", operation)
		suggestion = "review the data and configuration"
	}

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryReconciliation, code, message)
	} else {
		result = New(CategoryReconciliation, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// NetworkError creates a network-related error
func NetworkError(code ErrorCode, endpoint string, err error) *AppError {
	var message string
	var suggestion string

	switch code {
	case CodeConnectionFailed:
		message = fmt.Sprintf("connection failed to %s", endpoint)
		suggestion = "check network connectivity and endpoint availability"
	case CodeTimeout:
		message = fmt.Sprintf("timeout connecting to %s", endpoint)
		suggestion = "increase the timeout setting or check network speed"
	case CodeServiceUnavailable:
		message = fmt.Sprintf("service unavailable: %s", endpoint)
		suggestion = "try again later"
	default:
		message = fmt.Sprintf("network error: %s", endpoint)
		suggestion = "check network connection and try again"
	}

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryNetwork, code, message)
	} else {
		result = New(CategoryNetwork, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("endpoint", endpoint)
}

// InternalError creates an internal error
func InternalError(operation string, err error) *AppError {
	message := fmt.Sprintf("unexpected error during %s", operation)

	var result *AppError
	if err != nil {
		result = Wrap(err, CategoryInternal, CodeUnexpectedError, message)
	} else {
		result = New(CategoryInternal, CodeUnexpectedError, message)
	}

	return result.
		WithSuggestion("this is likely a bug - please report it with the error details").
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*AppError           `json:"errors"`
	SampleErrors []*AppError           `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errs []*AppError) *ErrorSummary {
	summary := &ErrorSummary{
		Total:      len(errs),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errs,
	}
	if len(errs) == 0 {
		summary.Errors = []*AppError{}
		return summary
	}

	for _, err := range errs {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	maxSamples := 5
	if len(errs) > maxSamples {
		summary.SampleErrors = errs[:maxSamples]
	} else {
		summary.SampleErrors = errs
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

// AsAppError extracts an AppError from an error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an AppError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := AsAppError(err); ok {
		return appErr
	}

	return Wrap(err, category, code, message)
}
