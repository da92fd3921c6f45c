package types

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// DefaultBaseURL is the S1 endpoint used when a connection leaves the URL blank
const DefaultBaseURL = "https://s1.kognise.dev/"

var (
	// ErrNameRequired is returned when a connection has no name
	ErrNameRequired = errors.New("please input a connection name")
	// ErrCredentialRequired is returned when a connection has no credential
	ErrCredentialRequired = errors.New("please input a database token")
)

// Connection is a saved, named credential set for one key/value store.
// The JSON field names match the blob written by earlier dashboard versions,
// so the credential is persisted under "token".
type Connection struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Credential string `json:"token" yaml:"token"`
	BaseURL    string `json:"baseUrl,omitempty" yaml:"baseUrl,omitempty"`
}

// Endpoint returns the base URL, falling back to the S1 default
func (c Connection) Endpoint() string {
	if strings.TrimSpace(c.BaseURL) == "" {
		return DefaultBaseURL
	}
	return c.BaseURL
}

// Validate checks the fields the connect form requires
func (c Connection) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(c.Credential) == "" {
		return ErrCredentialRequired
	}
	if c.BaseURL != "" {
		u, err := url.Parse(c.BaseURL)
		if err != nil || u.Scheme == "" {
			return fmt.Errorf("this must be a valid URL: %q", c.BaseURL)
		}
	}
	return nil
}

// ConnectionForm is what the connect form submits
type ConnectionForm struct {
	Name       string
	Credential string
	BaseURL    string
	Save       bool // Persist the connection in the registry
}

// Connection converts the form into an unsaved connection with the given ID
func (f ConnectionForm) Connection(id string) Connection {
	return Connection{
		ID:         id,
		Name:       strings.TrimSpace(f.Name),
		Credential: strings.TrimSpace(f.Credential),
		BaseURL:    strings.TrimSpace(f.BaseURL),
	}
}

// KeyValue is a single exported entry
type KeyValue struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}
