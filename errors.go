package adminauth

import (
	errors "github.com/goliatone/go-errors"
)

const (
	textCodeUnauthorized   = "UNAUTHORIZED"
	textCodeForbidden      = "FORBIDDEN"
	textCodeTransport      = "TRANSPORT_FAILURE"
	textCodeRequestFailed  = "REQUEST_FAILED"
	textCodeStaleSession   = "STALE_SESSION_WRITE"
	textCodePartialSession = "PARTIAL_SESSION"
	textCodeWizardClosed   = "WIZARD_DISMISSED"
	textCodeStepInvalid    = "STEP_VALIDATION_FAILED"
)

// ErrUnauthorized signals the server rejected the stored credential. The
// client clears the session before surfacing it.
var ErrUnauthorized = errors.New("authentication credential rejected", errors.CategoryAuth).
	WithTextCode(textCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrForbidden signals the caller is authenticated but lacks permission.
// The session is left untouched.
var ErrForbidden = errors.New("insufficient permissions", errors.CategoryAuthz).
	WithTextCode(textCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrTransport covers network failures and 5xx responses. Retrying is the
// caller's decision, the client never retries on its own.
var ErrTransport = errors.New("upstream request failed", errors.CategoryInternal).
	WithTextCode(textCodeTransport).
	WithCode(errors.CodeInternal)

// ErrStaleSession is returned when a session write carries a version that
// predates the current one, e.g. a login response landing after a logout.
var ErrStaleSession = errors.New("session state changed since request was issued", errors.CategoryConflict).
	WithTextCode(textCodeStaleSession).
	WithCode(errors.CodeConflict)

// ErrPartialSession is returned when Login is called without both a token
// and a user.
var ErrPartialSession = errors.New("login requires both a token and a user", errors.CategoryBadInput).
	WithTextCode(textCodePartialSession).
	WithCode(errors.CodeBadRequest)

// ErrWizardDismissed is returned when a submission resolves after the
// wizard was torn down; the result is discarded.
var ErrWizardDismissed = errors.New("signup wizard was dismissed", errors.CategoryConflict).
	WithTextCode(textCodeWizardClosed).
	WithCode(errors.CodeConflict)

// IsUnauthorized reports whether err is a rejected-credential failure.
func IsUnauthorized(err error) bool {
	return hasTextCode(err, textCodeUnauthorized)
}

// IsForbidden reports whether err is a permission failure.
func IsForbidden(err error) bool {
	return hasTextCode(err, textCodeForbidden)
}

// IsTransportError reports whether err is a network or server failure.
func IsTransportError(err error) bool {
	return hasTextCode(err, textCodeTransport)
}

// IsStaleSession reports whether err is a rejected out-of-order session write.
func IsStaleSession(err error) bool {
	return hasTextCode(err, textCodeStaleSession)
}

// IsValidationError reports whether err came from a wizard step validator.
func IsValidationError(err error) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.Category == errors.CategoryValidation
	}
	return false
}

func hasTextCode(err error, code string) bool {
	var rich *errors.Error
	if errors.As(err, &rich) {
		return rich.TextCode == code
	}
	return false
}

// serverMessage extracts the message the server attached to a failed
// response, empty when the server provided none.
func serverMessage(err error) string {
	var rich *errors.Error
	if errors.As(err, &rich) && rich.Metadata != nil {
		if msg, ok := rich.Metadata["server_message"].(string); ok {
			return msg
		}
	}
	return ""
}

// messageOf extracts the user-facing message from a rich error, falling
// back to the plain error string.
func messageOf(err error) string {
	if err == nil {
		return ""
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.Message != "" {
		return rich.Message
	}
	return err.Error()
}
