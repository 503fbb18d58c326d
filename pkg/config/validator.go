package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate turns raw flag values into a Configuration.
//
// Rules are checked in a fixed order and the first failure is returned:
// help, document root presence, document root existence, stub, cert, key,
// then the port range. Only existence is checked for files; their contents
// are left to the engine.
func Validate(raw RawFlags) (Configuration, error) {
	if raw.Help {
		return Configuration{}, ErrHelpRequested
	}

	docRoot := strings.TrimSpace(raw.DocumentRoot)
	if docRoot == "" {
		return Configuration{}, &ConfigurationError{
			Field:   FieldDocumentRoot,
			Message: "You must provide document root!",
		}
	}
	if !readableDir(docRoot) {
		return Configuration{}, &ConfigurationError{
			Field:   FieldDocumentRoot,
			Value:   docRoot,
			Message: "Document root does not exist. Tried: " + docRoot,
		}
	}

	optional := []struct {
		field string
		label string
		path  string
	}{
		{FieldStub, "Stub file", raw.Stub},
		{FieldCert, "Cert file", raw.Cert},
		{FieldKey, "Key file", raw.Key},
	}
	for _, o := range optional {
		if o.path == "" {
			continue
		}
		if !exists(o.path) {
			return Configuration{}, &ConfigurationError{
				Field:   o.field,
				Value:   o.path,
				Message: fmt.Sprintf("%s does not exist. Tried: %s", o.label, o.path),
			}
		}
	}

	port := raw.Port
	if port == 0 {
		port = DefaultPort
	}
	if port < 1 || port > 65535 {
		return Configuration{}, &ConfigurationError{
			Field:   FieldPort,
			Value:   fmt.Sprint(raw.Port),
			Message: fmt.Sprintf("Port must be between 1 and 65535. Tried: %d", raw.Port),
		}
	}

	backend := strings.TrimSpace(raw.Backend)
	if backend == "" {
		backend = DefaultBackendHost
	}

	return Configuration{
		BackendHost:    backend,
		Port:           port,
		DocumentRoot:   docRoot,
		Stub:           raw.Stub,
		Cert:           raw.Cert,
		Key:            raw.Key,
		AutoassignPort: raw.AutoassignPort,
	}, nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// readableDir reports whether path exists and can be opened for reading.
func readableDir(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	_ = f.Close()
	return true
}
