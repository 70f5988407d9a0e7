package errors

import (
	"net/http"
	"strings"
)

// ErrorCode is a string representation of a specific error condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeInternal           ErrorCode = "COMMON_001"
	CodeInvalidParam       ErrorCode = "COMMON_002"
	CodeNotFound           ErrorCode = "COMMON_003"
	CodeConflict           ErrorCode = "COMMON_004"
	CodeRateLimit          ErrorCode = "COMMON_005"
	CodeServiceUnavailable ErrorCode = "COMMON_006"
	CodeTimeout            ErrorCode = "COMMON_007"
	CodeValidation         ErrorCode = "COMMON_008"
	CodeSerialization      ErrorCode = "COMMON_009"
	CodeCacheError         ErrorCode = "COMMON_010"
	CodeNotImplemented     ErrorCode = "COMMON_011"
	CodeAborted            ErrorCode = "COMMON_012"
	CodeUnknown            ErrorCode = "COMMON_000"
	CodeOK                 ErrorCode = "OK"
)

// Supplier pipeline error codes.
const (
	CodeSupplierUnavailable ErrorCode = "SUP_001"
	CodeSupplierAuthFailed  ErrorCode = "SUP_002"
	CodeBadResponse         ErrorCode = "SUP_003"
	CodeRequestBudget       ErrorCode = "SUP_004"
	CodeSupplierUnknown     ErrorCode = "SUP_005"
)

// Parsing and product-assembly error codes.
const (
	CodeParseFailure   ErrorCode = "PARSE_001"
	CodeInvalidCAS     ErrorCode = "PARSE_002"
	CodeInvalidFormula ErrorCode = "PARSE_003"
	CodeDropped        ErrorCode = "BUILD_001"
	CodeAlreadyBuilt   ErrorCode = "BUILD_002"
)

// codeHTTPStatus maps ErrorCodes to HTTP status codes for the API layer.
var codeHTTPStatus = map[ErrorCode]int{
	CodeInternal:           http.StatusInternalServerError,
	CodeInvalidParam:       http.StatusBadRequest,
	CodeNotFound:           http.StatusNotFound,
	CodeConflict:           http.StatusConflict,
	CodeRateLimit:          http.StatusTooManyRequests,
	CodeServiceUnavailable: http.StatusServiceUnavailable,
	CodeTimeout:            http.StatusGatewayTimeout,
	CodeValidation:         http.StatusUnprocessableEntity,
	CodeSerialization:      http.StatusInternalServerError,
	CodeCacheError:         http.StatusInternalServerError,
	CodeNotImplemented:     http.StatusNotImplemented,
	CodeAborted:            http.StatusRequestTimeout,

	CodeSupplierUnavailable: http.StatusBadGateway,
	CodeSupplierAuthFailed:  http.StatusBadGateway,
	CodeBadResponse:         http.StatusBadGateway,
	CodeRequestBudget:       http.StatusBadGateway,
	CodeSupplierUnknown:     http.StatusBadRequest,

	CodeParseFailure:   http.StatusUnprocessableEntity,
	CodeInvalidCAS:     http.StatusUnprocessableEntity,
	CodeInvalidFormula: http.StatusUnprocessableEntity,
	CodeDropped:        http.StatusUnprocessableEntity,
	CodeAlreadyBuilt:   http.StatusConflict,
}

// codeMessage maps ErrorCodes to default messages.
var codeMessage = map[ErrorCode]string{
	CodeInternal:           "internal error",
	CodeInvalidParam:       "invalid parameter",
	CodeNotFound:           "resource not found",
	CodeConflict:           "resource conflict",
	CodeRateLimit:          "too many requests",
	CodeServiceUnavailable: "service unavailable",
	CodeTimeout:            "operation timed out",
	CodeValidation:         "validation failed",
	CodeSerialization:      "serialization failed",
	CodeCacheError:         "cache error",
	CodeNotImplemented:     "not implemented",
	CodeAborted:            "operation aborted",

	CodeSupplierUnavailable: "supplier unavailable",
	CodeSupplierAuthFailed:  "supplier authentication failed",
	CodeBadResponse:         "unexpected supplier response shape",
	CodeRequestBudget:       "per-query request budget exhausted",
	CodeSupplierUnknown:     "unknown supplier identifier",

	CodeParseFailure:   "failed to parse value",
	CodeInvalidCAS:     "invalid CAS registry number",
	CodeInvalidFormula: "invalid molecular formula",
	CodeDropped:        "product dropped by builder validation",
	CodeAlreadyBuilt:   "builder already finalized",
}

// HTTPStatusForCode returns the HTTP status code for an ErrorCode.
func HTTPStatusForCode(code ErrorCode) int {
	if status, ok := codeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DefaultMessageForCode returns the default message for an ErrorCode.
func DefaultMessageForCode(code ErrorCode) string {
	if msg, ok := codeMessage[code]; ok {
		return msg
	}
	return "unknown error"
}

// IsClientError reports whether the code corresponds to a 4xx HTTP status.
func IsClientError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 400 && status < 500
}

// IsServerError reports whether the code corresponds to a 5xx HTTP status.
func IsServerError(code ErrorCode) bool {
	status := HTTPStatusForCode(code)
	return status >= 500 && status < 600
}

// ModuleForCode returns the module prefix of an ErrorCode.
func ModuleForCode(code ErrorCode) string {
	parts := strings.Split(string(code), "_")
	if len(parts) > 0 && parts[0] != "" {
		return parts[0]
	}
	return "UNKNOWN"
}
