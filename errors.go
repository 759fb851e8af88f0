package provenance

import (
	"errors"
	"fmt"

	"github.com/veralith/provenance/chain"
	"github.com/veralith/provenance/network"
	"github.com/veralith/provenance/royalty"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound     = errors.New("provenance: not found")
	ErrInvalidInput = errors.New("provenance: invalid input")
	ErrUnauthorized = errors.New("provenance: unauthorized")

	// Session errors
	ErrNotAuthenticated = errors.New("provenance: no active session")
	ErrSessionClosed    = errors.New("provenance: session closed")
	ErrInvalidSession   = errors.New("provenance: invalid session configuration")

	// Registration errors
	ErrRegistrationIDMissing = errors.New("provenance: registration id missing from receipt")
	ErrContentNotFound       = errors.New("provenance: content not found")
	ErrContentInactive       = errors.New("provenance: content inactive")
	ErrInvalidContentURI     = errors.New("provenance: invalid content uri")

	// License errors
	ErrLicenseNotFound = errors.New("provenance: license not found")
	ErrLicenseExpired  = errors.New("provenance: license expired")
	ErrLicenseRevoked  = errors.New("provenance: license revoked")
	ErrUsageLimit      = errors.New("provenance: license usage limit reached")

	// Reporting errors
	ErrReportBufferFull = errors.New("provenance: report buffer full")
	ErrInvalidQuantity  = errors.New("provenance: invalid usage quantity")
	ErrEmptyBatch       = errors.New("provenance: empty usage batch")

	// Store errors
	ErrStoreNotReady     = errors.New("provenance: store not ready")
	ErrStoreClosed       = errors.New("provenance: store is closed")
	ErrTransactionFailed = errors.New("provenance: transaction failed")
	ErrMigrationFailed   = errors.New("provenance: migration failed")
)

// Sentinels owned by domain packages, re-exported for callers that only
// import the root package.
var (
	ErrChainUnavailable = chain.ErrUnavailable
	ErrChainUnsupported = chain.ErrUnsupported
	ErrTxNotFound       = chain.ErrTxNotFound
	ErrInvalidModel     = royalty.ErrInvalidModel
	ErrSettingNotFound  = royalty.ErrSettingNotFound
	ErrUnknownNetwork   = network.ErrUnknownNetwork
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("provenance: validation failed for %s: %s", e.Field, e.Message)
}

// MultiError represents multiple errors that occurred.
type MultiError struct {
	Errors []error
}

func (e MultiError) Error() string {
	if len(e.Errors) == 0 {
		return "provenance: no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("provenance: %d errors occurred", len(e.Errors))
}

// Add adds an error to the multi-error.
func (e *MultiError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// HasErrors returns true if there are any errors.
func (e MultiError) HasErrors() bool {
	return len(e.Errors) > 0
}

// First returns the first error or nil.
func (e MultiError) First() error {
	if len(e.Errors) > 0 {
		return e.Errors[0]
	}
	return nil
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrContentNotFound) ||
		errors.Is(err, ErrLicenseNotFound) ||
		errors.Is(err, royalty.ErrSettingNotFound) ||
		errors.Is(err, chain.ErrTxNotFound)
}

// IsAuthError returns true if the error is an authentication or
// authorization failure.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrNotAuthenticated) ||
		errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrSessionClosed)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrReportBufferFull) ||
		errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed) ||
		errors.Is(err, chain.ErrUnavailable)
}
