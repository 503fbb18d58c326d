package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates a file under dir and returns its path.
func writeFile(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
	return path
}

func TestValidate_Defaults(t *testing.T) {
	t.Parallel()
	root := t.TempDir()

	cfg, err := Validate(RawFlags{DocumentRoot: root})
	require.NoError(t, err)

	assert.Equal(t, DefaultBackendHost, cfg.BackendHost)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, root, cfg.DocumentRoot)
	assert.False(t, cfg.AutoassignPort)
	assert.False(t, cfg.HasStub())
}

func TestValidate_AllFields(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	stub := writeFile(t, root, "stub.yaml")
	cert := writeFile(t, root, "server.crt")
	key := writeFile(t, root, "server.key")

	cfg, err := Validate(RawFlags{
		Port:           9443,
		Backend:        "staging.example.com",
		DocumentRoot:   root,
		Stub:           stub,
		Cert:           cert,
		Key:            key,
		AutoassignPort: true,
	})
	require.NoError(t, err)

	assert.Equal(t, Configuration{
		BackendHost:    "staging.example.com",
		Port:           9443,
		DocumentRoot:   root,
		Stub:           stub,
		Cert:           cert,
		Key:            key,
		AutoassignPort: true,
	}, cfg)
}

func TestValidate_HelpBypassesRules(t *testing.T) {
	t.Parallel()

	// No document root at all, yet help wins.
	_, err := Validate(RawFlags{Help: true, Stub: "/does/not/exist"})
	assert.ErrorIs(t, err, ErrHelpRequested)
	assert.False(t, IsConfigurationError(err))
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	missing := filepath.Join(root, "missing")
	present := writeFile(t, root, "present")

	tests := []struct {
		name      string
		raw       RawFlags
		wantField string
		wantValue string
		wantMsg   string
	}{
		{
			name:      "document root not supplied",
			raw:       RawFlags{},
			wantField: FieldDocumentRoot,
			wantMsg:   "You must provide document root!",
		},
		{
			name:      "document root blank",
			raw:       RawFlags{DocumentRoot: "   "},
			wantField: FieldDocumentRoot,
			wantMsg:   "You must provide document root!",
		},
		{
			name:      "document root missing on disk",
			raw:       RawFlags{DocumentRoot: missing},
			wantField: FieldDocumentRoot,
			wantValue: missing,
			wantMsg:   "Document root does not exist. Tried: " + missing,
		},
		{
			name:      "stub missing",
			raw:       RawFlags{DocumentRoot: root, Stub: missing},
			wantField: FieldStub,
			wantValue: missing,
			wantMsg:   "Stub file does not exist. Tried: " + missing,
		},
		{
			name:      "cert missing",
			raw:       RawFlags{DocumentRoot: root, Cert: missing},
			wantField: FieldCert,
			wantValue: missing,
			wantMsg:   "Cert file does not exist. Tried: " + missing,
		},
		{
			name:      "key missing",
			raw:       RawFlags{DocumentRoot: root, Key: missing},
			wantField: FieldKey,
			wantValue: missing,
			wantMsg:   "Key file does not exist. Tried: " + missing,
		},
		{
			name:      "stub checked before cert",
			raw:       RawFlags{DocumentRoot: root, Stub: missing, Cert: missing},
			wantField: FieldStub,
			wantValue: missing,
			wantMsg:   "Stub file does not exist. Tried: " + missing,
		},
		{
			name:      "key checked after present cert",
			raw:       RawFlags{DocumentRoot: root, Cert: present, Key: missing},
			wantField: FieldKey,
			wantValue: missing,
			wantMsg:   "Key file does not exist. Tried: " + missing,
		},
		{
			name:      "port out of range",
			raw:       RawFlags{DocumentRoot: root, Port: 70000},
			wantField: FieldPort,
			wantValue: "70000",
			wantMsg:   "Port must be between 1 and 65535. Tried: 70000",
		},
		{
			name:      "negative port",
			raw:       RawFlags{DocumentRoot: root, Port: -1},
			wantField: FieldPort,
			wantValue: "-1",
			wantMsg:   "Port must be between 1 and 65535. Tried: -1",
		},
	}

	for _, tt := range tests {
		tt := tt // per-iteration copy (go < 1.22 loop semantics)
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := Validate(tt.raw)
			require.Error(t, err)
			assert.Equal(t, Configuration{}, cfg)

			var cfgErr *ConfigurationError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.Equal(t, tt.wantValue, cfgErr.Value)
			assert.Equal(t, tt.wantMsg, cfgErr.Error())
		})
	}
}

func TestConfiguration_WithPort(t *testing.T) {
	t.Parallel()

	orig := Configuration{BackendHost: DefaultBackendHost, Port: 8443}
	next := orig.WithPort(8444)

	assert.Equal(t, 8443, orig.Port, "original must not change")
	assert.Equal(t, 8444, next.Port)
	assert.Equal(t, orig.BackendHost, next.BackendHost)
	assert.Equal(t, ":8444", next.Address())
}
