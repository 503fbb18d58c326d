package config

import (
	"net"
	"strconv"
)

// Defaults applied when a flag is left unset.
const (
	DefaultBackendHost = "secure.gooddata.com"
	DefaultPort        = 8443
)

// RawFlags holds command-line values exactly as the user supplied them.
type RawFlags struct {
	Help           bool
	Port           int
	Backend        string
	DocumentRoot   string
	Stub           string
	Cert           string
	Key            string
	AutoassignPort bool
}

// Configuration is the validated engine configuration.
//
// It is a value type: callers hold copies, and the only way to change the
// port after validation is WithPort, which returns a new value.
type Configuration struct {
	// BackendHost is the remote host unmatched requests are forwarded to.
	BackendHost string

	// Port is the local port the engine listens on.
	Port int

	// DocumentRoot is the directory static files are served from.
	DocumentRoot string

	// Stub, Cert and Key are optional file paths. Empty means absent.
	Stub string
	Cert string
	Key  string

	// AutoassignPort enables increment-and-retry when Port is taken.
	AutoassignPort bool
}

// WithPort returns a copy of c listening on port.
func (c Configuration) WithPort(port int) Configuration {
	c.Port = port
	return c
}

// Address returns the listen address for all interfaces on c.Port.
func (c Configuration) Address() string {
	return net.JoinHostPort("", strconv.Itoa(c.Port))
}

// HasStub reports whether a stub file was configured.
func (c Configuration) HasStub() bool {
	return c.Stub != ""
}
