package apperrors

// ErrorCode is a stable, machine-readable error identifier. Codes are part of
// the API contract: clients branch on them, so they never change once shipped.
type ErrorCode string

const (
	// System
	CodeInternalError      ErrorCode = "INTERNAL_ERROR"
	CodeDatabaseError      ErrorCode = "DATABASE_ERROR"
	CodeConfigurationError ErrorCode = "CONFIGURATION_ERROR"
	CodeStorageError       ErrorCode = "STORAGE_ERROR"

	// Generic business logic
	CodeNotFound         ErrorCode = "NOT_FOUND"
	CodeAlreadyExists    ErrorCode = "ALREADY_EXISTS"
	CodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeRateLimited      ErrorCode = "RATE_LIMITED"

	// Authentication
	CodeMissingToken        ErrorCode = "MISSING_TOKEN"
	CodeInvalidToken        ErrorCode = "INVALID_TOKEN"
	CodeTokenExpired        ErrorCode = "TOKEN_EXPIRED"
	CodeMissingRefreshToken ErrorCode = "MISSING_REFRESH_TOKEN"
	CodeInvalidRefreshToken ErrorCode = "INVALID_REFRESH_TOKEN"
	CodeExpiredRefreshToken ErrorCode = "EXPIRED_REFRESH_TOKEN"
	CodeInvalidCredentials  ErrorCode = "INVALID_CREDENTIALS"
	CodeUserNotFound        ErrorCode = "USER_NOT_FOUND"

	// Authorization
	CodeAdminRequired    ErrorCode = "ADMIN_REQUIRED"
	CodeForbidden        ErrorCode = "FORBIDDEN"
	CodeCannotDeleteSelf ErrorCode = "CANNOT_DELETE_SELF"

	// Domain
	CodeUserExists          ErrorCode = "USER_EXISTS"
	CodePropertyNotFound    ErrorCode = "PROPERTY_NOT_FOUND"
	CodePropertyExists      ErrorCode = "PROPERTY_EXISTS"
	CodePropertyHasChildren ErrorCode = "PROPERTY_HAS_CHILDREN"
	CodeCategoryNotFound    ErrorCode = "CATEGORY_NOT_FOUND"
	CodeCategoryExists      ErrorCode = "CATEGORY_EXISTS"
	CodeCategoryHasChildren ErrorCode = "CATEGORY_HAS_DOCUMENTS"
	CodeDocumentNotFound    ErrorCode = "DOCUMENT_NOT_FOUND"
)
