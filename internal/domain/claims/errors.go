package claims

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("claim not found")
	ErrDocumentNotFound    = errors.New("document not found")
	ErrInvalidTransition   = errors.New("transition not allowed for current claim status")
	ErrConcurrencyConflict = errors.New("claim was modified by another request")
	ErrInvalidDecision     = errors.New("decision must be approve or reject")
)

const (
	CodeHoursOutOfRange  = "HoursOutOfRange"
	CodeMissingDocuments = "MissingDocuments"
)

// ValidationError rejects lecturer input. The code is stable for clients;
// the message is advisory.
type ValidationError struct {
	Code    string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
