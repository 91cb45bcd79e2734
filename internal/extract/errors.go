package extract

import "fmt"

// OracleError represents a transport-level failure talking to the oracle.
type OracleError struct {
	Message string
	Cause   error
}

func (e *OracleError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("oracle call failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("oracle call failed: %s", e.Message)
}

func (e *OracleError) Unwrap() error {
	return e.Cause
}

// MalformedOutputError means the oracle replied but the reply could not be
// turned into a valid candidate. Not retried; the message is skipped.
type MalformedOutputError struct {
	Message string
	Cause   error
}

func (e *MalformedOutputError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("malformed oracle output: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("malformed oracle output: %s", e.Message)
}

func (e *MalformedOutputError) Unwrap() error {
	return e.Cause
}
