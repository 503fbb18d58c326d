package engine

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Stub is one canned response from the stub file.
//
// Example stub file:
//
//	- path: /gdc/account/profile/*
//	  method: GET
//	  status: 200
//	  headers:
//	    Content-Type: application/json
//	  body: '{"accountSetting": {}}'
//	- path: /gdc/app/**
//	  file: fixtures/app.json
type Stub struct {
	Path    string            `yaml:"path"`
	Method  string            `yaml:"method,omitempty"`
	Status  int               `yaml:"status,omitempty"`
	Headers map[string]string `yaml:"headers,omitempty"`
	Body    string            `yaml:"body,omitempty"`
	// File is read relative to the stub file and served as the body.
	File string `yaml:"file,omitempty"`
}

// StubTable is an ordered list of stubs. The first match wins.
type StubTable struct {
	stubs []Stub
	dir   string
}

// LoadStubs parses the YAML stub file at path.
func LoadStubs(path string) (*StubTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading stub file: %w", err)
	}
	return ParseStubs(data, filepath.Dir(path))
}

// ParseStubs parses stub YAML. File references resolve against dir.
func ParseStubs(data []byte, dir string) (*StubTable, error) {
	var stubs []Stub
	if err := yaml.Unmarshal(data, &stubs); err != nil {
		return nil, fmt.Errorf("parsing stub file: %w", err)
	}

	for i := range stubs {
		s := &stubs[i]
		if s.Path == "" {
			return nil, fmt.Errorf("stub %d: path is required", i)
		}
		if !doublestar.ValidatePattern(s.Path) {
			return nil, fmt.Errorf("stub %d: invalid path pattern %q", i, s.Path)
		}
		if s.Body != "" && s.File != "" {
			return nil, fmt.Errorf("stub %d: body and file are mutually exclusive", i)
		}
		s.Method = strings.ToUpper(s.Method)
		if s.Status == 0 {
			s.Status = http.StatusOK
		}
	}

	return &StubTable{stubs: stubs, dir: dir}, nil
}

// Len returns the number of stubs.
func (t *StubTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.stubs)
}

// Match returns the first stub matching method and path, or nil.
func (t *StubTable) Match(method, path string) *Stub {
	if t == nil {
		return nil
	}
	for i := range t.stubs {
		s := &t.stubs[i]
		if s.Method != "" && s.Method != method {
			continue
		}
		if ok, _ := doublestar.Match(s.Path, path); ok {
			return s
		}
	}
	return nil
}

// Write serves s on w.
func (t *StubTable) Write(w http.ResponseWriter, s *Stub) error {
	body := []byte(s.Body)
	if s.File != "" {
		path := s.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(t.dir, path)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading stub body: %w", err)
		}
		body = data
	}

	for k, v := range s.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(s.Status)
	_, err := w.Write(body)
	return err
}
