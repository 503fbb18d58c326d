package config

import "errors"

// ErrHelpRequested is returned by Validate when usage should be shown
// instead of starting the server.
var ErrHelpRequested = errors.New("help requested")

// Field names used in ConfigurationError. They match the long flag names.
const (
	FieldDocumentRoot = "document-root"
	FieldStub         = "stub"
	FieldCert         = "cert"
	FieldKey          = "key"
	FieldPort         = "port"
)

// ConfigurationError reports a flag value that failed validation.
type ConfigurationError struct {
	// Field is the long flag name of the offending value.
	Field string
	// Value is the value that was tried, empty when nothing was supplied.
	Value string
	// Message is the operator-facing description.
	Message string
}

func (e *ConfigurationError) Error() string {
	return e.Message
}

// IsConfigurationError reports whether err is (or wraps) a ConfigurationError.
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
