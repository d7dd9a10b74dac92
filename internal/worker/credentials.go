package worker

import (
	"fmt"
	"os"

	"github.com/muhammadchandra19/tick-extractor/internal/domain/extraction"
	pkgerrors "github.com/muhammadchandra19/tick-extractor/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Credentials hold the platform login a worker needs to (re)initialize its
// session. They are opaque to the extraction core and passed through to the
// worker's init endpoint.
type Credentials struct {
	Path     string `yaml:"path" json:"path"`
	Server   string `yaml:"server" json:"server"`
	Login    int64  `yaml:"login" json:"login"`
	Password string `yaml:"password" json:"password"`
}

// CredentialsStore maps broker and data mode to platform credentials.
type CredentialsStore struct {
	brokers map[string]map[extraction.DataMode]Credentials
}

type credentialsFile struct {
	Brokers map[string]map[string]Credentials `yaml:"brokers"`
}

// LoadCredentials reads the credentials file:
//
//	brokers:
//	  metaquotes:
//	    demo:
//	      path: /data/platforms/mt5/0/terminal64.exe
//	      server: MetaQuotes-Demo
//	      login: 74538434
//	      password: secret
func LoadCredentials(path string) (*CredentialsStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials file '%s': %w", path, err)
	}

	var f credentialsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse credentials file: %w", err)
	}

	store := &CredentialsStore{brokers: make(map[string]map[extraction.DataMode]Credentials, len(f.Brokers))}
	for broker, modes := range f.Brokers {
		inner := make(map[extraction.DataMode]Credentials, len(modes))
		for mode, creds := range modes {
			inner[extraction.DataMode(mode)] = creds
		}
		store.brokers[broker] = inner
	}
	return store, nil
}

// NewCredentialsStore builds a store from an in-memory mapping.
func NewCredentialsStore(brokers map[string]map[extraction.DataMode]Credentials) *CredentialsStore {
	return &CredentialsStore{brokers: brokers}
}

// Get returns the credentials for a broker and mode.
func (s *CredentialsStore) Get(broker string, mode extraction.DataMode) (Credentials, error) {
	modes, ok := s.brokers[broker]
	if !ok {
		return Credentials{}, pkgerrors.NewErrorDetails(
			fmt.Sprintf("no credentials configured for broker %s", broker),
			string(pkgerrors.CredentialsConfigError),
			"broker",
		)
	}
	creds, ok := modes[mode]
	if !ok {
		return Credentials{}, pkgerrors.NewErrorDetails(
			fmt.Sprintf("no %s credentials configured for broker %s", mode, broker),
			string(pkgerrors.CredentialsConfigError),
			"mode",
		)
	}
	return creds, nil
}
