package db2

import (
	"fmt"
	"strings"
)

const (
	// DefaultPort is the conventional DB2 listener port.
	DefaultPort = 50000

	// DefaultProtocol is the network protocol used when none is set.
	DefaultProtocol = "TCPIP"
)

// Settings holds everything needed to reach a database. Either DSN is set
// and passed to the driver verbatim, or the discrete fields are assembled
// into a connection string by ConnectionString.
type Settings struct {
	DSN      string `yaml:"dsn"`
	Database string `yaml:"database"`
	Hostname string `yaml:"hostname"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Protocol string `yaml:"protocol"`

	// Schema overrides the session's current schema. Upper-cased when
	// supplied; the authenticated user's name serves otherwise.
	Schema string `yaml:"schema"`

	// UseLimitOffset makes the builder emit native pagination clauses
	// instead of stripping generic tokens and windowing client-side.
	UseLimitOffset bool `yaml:"use_limit_offset"`
}

// Validate reports every missing required setting at once. A DSN makes the
// discrete fields optional.
func (s *Settings) Validate() error {
	if s.DSN != "" {
		return nil
	}

	var missing []string

	if s.Database == "" {
		missing = append(missing, "database")
	}

	if s.Hostname == "" {
		missing = append(missing, "hostname")
	}

	if s.Username == "" {
		missing = append(missing, "username")
	}

	if s.Password == "" {
		missing = append(missing, "password")
	}

	if len(missing) > 0 {
		return &SettingsError{Missing: missing}
	}

	return nil
}

// ConnectionString renders the driver connection string from the discrete
// settings, or returns the DSN untouched when one is set.
func (s *Settings) ConnectionString() string {
	if s.DSN != "" {
		return s.DSN
	}

	port := s.Port
	if port == 0 {
		port = DefaultPort
	}

	protocol := s.Protocol
	if protocol == "" {
		protocol = DefaultProtocol
	}

	conn := fmt.Sprintf("DATABASE=%s;HOSTNAME=%s;UID=%s;PWD=%s;PORT=%d;PROTOCOL=%s",
		s.Database, s.Hostname, s.Username, s.Password, port, protocol)

	if s.Schema != "" {
		conn += ";CurrentSchema=" + strings.ToUpper(s.Schema)
	}

	return conn
}

// CurrentSchema is the schema qualifying unqualified table names: the
// configured schema when set, the user name otherwise. Always upper-cased.
func (s *Settings) CurrentSchema() string {
	if s.Schema != "" {
		return strings.ToUpper(s.Schema)
	}

	return strings.ToUpper(s.Username)
}
