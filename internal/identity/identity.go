// Package identity stores SNMP credential profiles in an encrypted vault.
package identity

import (
	"errors"
	"fmt"
	"strings"
)

// Supported SNMP versions.
const (
	Version1  = "1"
	Version2c = "2c"
	Version3  = "3"
)

var (
	AuthProtocols = []string{"MD5", "SHA", "SHA256", "SHA512"}
	PrivProtocols = []string{"DES", "AES128", "AES192", "AES256"}
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid identity")

// Identity represents an SNMP credential profile.
type Identity struct {
	Name      string `json:"name"`
	Version   string `json:"version"`    // "1", "2c", "3"
	Community string `json:"community"`  // v1/v2c
	Username  string `json:"username"`   // v3
	AuthProto string `json:"auth_proto"` // "MD5", "SHA", "SHA256", "SHA512"
	AuthPass  string `json:"auth_pass"`
	PrivProto string `json:"priv_proto"` // "DES", "AES128", "AES192", "AES256"
	PrivPass  string `json:"priv_pass"`
}

// Community returns an unnamed v1/v2c identity, used when credentials are
// given on the command line instead of through the vault.
func Community(version, community string) *Identity {
	return &Identity{Name: "cli", Version: version, Community: community}
}

// Validate checks that the fields required by the SNMP version are present.
func (id *Identity) Validate() error {
	if strings.TrimSpace(id.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalid)
	}
	switch id.Version {
	case Version1, Version2c:
		if id.Community == "" {
			return fmt.Errorf("%w: community string is required for v%s", ErrInvalid, id.Version)
		}
	case Version3:
		if id.Username == "" {
			return fmt.Errorf("%w: username is required for v3", ErrInvalid)
		}
		if id.AuthProto != "" && !contains(AuthProtocols, id.AuthProto) {
			return fmt.Errorf("%w: unknown auth protocol %q", ErrInvalid, id.AuthProto)
		}
		if id.PrivProto != "" && !contains(PrivProtocols, id.PrivProto) {
			return fmt.Errorf("%w: unknown privacy protocol %q", ErrInvalid, id.PrivProto)
		}
		if id.PrivProto != "" && id.AuthProto == "" {
			return fmt.Errorf("%w: privacy requires an auth protocol", ErrInvalid)
		}
	default:
		return fmt.Errorf("%w: version must be 1, 2c, or 3", ErrInvalid)
	}
	return nil
}

// Summary returns a safe representation without secrets.
type Summary struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Username  string `json:"username,omitempty"`
	AuthProto string `json:"auth_proto,omitempty"`
	PrivProto string `json:"priv_proto,omitempty"`
}

// Summarize returns a Summary without sensitive fields.
func (id *Identity) Summarize() Summary {
	return Summary{
		Name:      id.Name,
		Version:   id.Version,
		Username:  id.Username,
		AuthProto: id.AuthProto,
		PrivProto: id.PrivProto,
	}
}

// Provider is the interface for identity storage backends.
type Provider interface {
	List() ([]Summary, error)
	Get(name string) (*Identity, error)
	Add(id Identity) error
	Remove(name string) error
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
