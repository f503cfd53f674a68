package apperrors

import (
	"net/http"
)

// Predeclared errors for the auth lifecycle and the document domain. Factories
// below are for cases that need a wrapped cause or a dynamic message.

// --- Authentication ---

// ErrMissingToken - no token in the Authorization header or the auth cookie.
var ErrMissingToken = New(
	CodeMissingToken,
	"auth",
	"Authentication token is missing",
	http.StatusUnauthorized,
)

// ErrInvalidToken - malformed token or bad signature.
var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid authentication token",
	http.StatusUnauthorized,
)

// ErrTokenExpired - signature is fine, expiry claim is in the past. Distinct
// from ErrInvalidToken so clients know to try a refresh.
var ErrTokenExpired = New(
	CodeTokenExpired,
	"auth",
	"Authentication token has expired",
	http.StatusUnauthorized,
)

// ErrMissingRefreshToken - neither request body nor cookie carried one.
var ErrMissingRefreshToken = New(
	CodeMissingRefreshToken,
	"auth",
	"Refresh token is missing",
	http.StatusUnauthorized,
)

// ErrInvalidRefreshToken - token is unknown to the registry (never issued,
// already rotated, or revoked).
var ErrInvalidRefreshToken = New(
	CodeInvalidRefreshToken,
	"auth",
	"Invalid refresh token",
	http.StatusUnauthorized,
)

// ErrExpiredRefreshToken - token existed but its expiry has passed. Kept
// distinct from invalid for client messaging.
var ErrExpiredRefreshToken = New(
	CodeExpiredRefreshToken,
	"auth",
	"Refresh token has expired, please log in again",
	http.StatusUnauthorized,
)

// ErrInvalidCredentials - wrong email or password.
var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

// ErrUserNotFound - the token is valid but its subject no longer exists.
var ErrUserNotFound = New(
	CodeUserNotFound,
	"auth",
	"User account no longer exists",
	http.StatusUnauthorized,
)

// --- Authorization ---

// ErrAdminRequired - a valid non-admin principal hit an admin-gated endpoint.
var ErrAdminRequired = New(
	CodeAdminRequired,
	"auth",
	"Administrator access required",
	http.StatusForbidden,
)

// ErrCannotDeleteSelf - a user (admin included) may not delete their own account.
var ErrCannotDeleteSelf = New(
	CodeCannotDeleteSelf,
	"users",
	"You cannot delete your own account",
	http.StatusForbidden,
)

// --- Users ---

var ErrUserExists = New(
	CodeUserExists,
	"users",
	"A user with this email already exists",
	http.StatusConflict,
)

var ErrUserRecordNotFound = New(
	CodeNotFound,
	"users",
	"User not found",
	http.StatusNotFound,
)

// --- Properties ---

var ErrPropertyNotFound = New(
	CodePropertyNotFound,
	"properties",
	"Property not found",
	http.StatusNotFound,
)

var ErrPropertyExists = New(
	CodePropertyExists,
	"properties",
	"A property with this name already exists",
	http.StatusConflict,
)

// ErrPropertyHasChildren - deletion is blocked while categories still reference
// the property. There is no cascade.
var ErrPropertyHasChildren = New(
	CodePropertyHasChildren,
	"properties",
	"Property still has categories, delete or move them first",
	http.StatusConflict,
)

// --- Categories ---

var ErrCategoryNotFound = New(
	CodeCategoryNotFound,
	"categories",
	"Category not found",
	http.StatusNotFound,
)

// ErrCategoryExists - another category already holds the (property, slug) pair.
var ErrCategoryExists = New(
	CodeCategoryExists,
	"categories",
	"A category with this name already exists for the property",
	http.StatusConflict,
)

// ErrCategoryHasChildren - deletion is blocked while documents still reference
// the category.
var ErrCategoryHasChildren = New(
	CodeCategoryHasChildren,
	"categories",
	"Category still has documents, delete or move them first",
	http.StatusConflict,
)

// --- Documents ---

var ErrDocumentNotFound = New(
	CodeDocumentNotFound,
	"documents",
	"Document not found",
	http.StatusNotFound,
)

// --- Rate limiting ---

var ErrRateLimited = New(
	CodeRateLimited,
	"ratelimit",
	"Too many requests, try again later",
	http.StatusTooManyRequests,
)

// --- Factories ---

// ErrNotFound wraps a repository not-found error (e.g. gorm.ErrRecordNotFound).
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrConflict wraps a uniqueness violation.
func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}
