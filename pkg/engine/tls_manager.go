package engine

import (
	"crypto/tls"
	"errors"
	"fmt"
	"sync"

	"github.com/gooddata/grizzly/pkg/config"
)

var errHalfKeyPair = errors.New("cert and key must be given together")

// TLSManager builds the TLS configuration for the listener.
//
// With both Cert and Key it loads the pair from disk. With neither it uses a
// self-signed localhost certificate, generated once and reused on every
// retry.
type TLSManager struct {
	certFile string
	keyFile  string

	once      sync.Once
	generated tls.Certificate
	genErr    error
}

// NewTLSManager creates a TLSManager for cfg's cert and key paths.
func NewTLSManager(cfg config.Configuration) *TLSManager {
	return &TLSManager{
		certFile: cfg.Cert,
		keyFile:  cfg.Key,
	}
}

// SelfSigned reports whether the manager falls back to a generated certificate.
func (tm *TLSManager) SelfSigned() bool {
	return tm.certFile == "" && tm.keyFile == ""
}

// BuildConfig returns the server TLS configuration.
func (tm *TLSManager) BuildConfig() (*tls.Config, error) {
	var cert tls.Certificate

	switch {
	case tm.certFile != "" && tm.keyFile != "":
		var err error
		cert, err = tls.LoadX509KeyPair(tm.certFile, tm.keyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load certificate: %w", err)
		}
	case tm.SelfSigned():
		tm.once.Do(func() {
			tm.generated, tm.genErr = selfSignedCertificate()
		})
		if tm.genErr != nil {
			return nil, fmt.Errorf("failed to generate certificate: %w", tm.genErr)
		}
		cert = tm.generated
	default:
		return nil, errHalfKeyPair
	}

	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
