package app

import "fmt"

// DomainError is a failure the editor client is expected to handle and
// render: an unknown document or session, an invalid body, an issue that
// was already resolved or dismissed. Status and Code map directly onto the
// HTTP error envelope; errors not wrapped in a DomainError surface as a
// generic 500. Detector outages and unappliable corrections are not domain
// errors; the engine reports those inside its snapshots and counters.
type DomainError struct {
	Status  int
	Code    string
	Message string
	Details any
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func domainError(status int, code, message string, details any) *DomainError {
	return &DomainError{
		Status:  status,
		Code:    code,
		Message: message,
		Details: details,
	}
}
