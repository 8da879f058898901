// Package cassandra runs generated statements against a cluster through
// gocql: sessions built from config.Config, schema changes, and typed
// store/find/update/delete helpers over entity mappers.
package cassandra

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"strings"
	"time"

	gocql "github.com/apache/cassandra-gocql-driver/v2"

	"github.com/axonops/cqltable/config"
	"github.com/axonops/cqltable/internal/logger"
)

// Session is a wrapper around the gocql.Session.
type Session struct {
	*gocql.Session
	cluster          *gocql.ClusterConfig
	consistency      gocql.Consistency
	host             string
	cassandraVersion string
}

// debugLogger forwards driver log lines to the debug log file
type debugLogger struct{}

func (debugLogger) Error(msg string, fields ...gocql.LogField) {
	logger.DebugfToFile("gocql", "ERROR %s %v", msg, fields)
}
func (debugLogger) Warning(msg string, fields ...gocql.LogField) {
	logger.DebugfToFile("gocql", "WARN %s %v", msg, fields)
}
func (debugLogger) Info(msg string, fields ...gocql.LogField) {
	logger.DebugfToFile("gocql", "INFO %s %v", msg, fields)
}
func (debugLogger) Debug(msg string, fields ...gocql.LogField) {
	logger.DebugfToFile("gocql", "DEBUG %s %v", msg, fields)
}

// protocolVersions are tried in order when the configuration does not pin one.
// v5: Cassandra 4.0+, v4: 3.0+, v3: 2.1+
var protocolVersions = []int{5, 4, 3}

// NewSession connects to the cluster described by cfg.
func NewSession(cfg *config.Config) (*Session, error) {
	consistency, err := ParseConsistency(cfg.Consistency)
	if err != nil {
		return nil, err
	}

	cluster := gocql.NewCluster(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port))
	cluster.Logger = debugLogger{}
	cluster.Consistency = consistency
	cluster.Timeout = seconds(cfg.RequestTimeout, 10)
	cluster.ConnectTimeout = seconds(cfg.ConnectTimeout, 10)
	cluster.DisableInitialHostLookup = true
	if cfg.Keyspace != "" {
		cluster.Keyspace = cfg.Keyspace
	}

	if cfg.Username != "" && cfg.Password != "" {
		cluster.Authenticator = gocql.PasswordAuthenticator{
			Username: cfg.Username,
			Password: cfg.Password,
		}
	}

	if cfg.SSL != nil && cfg.SSL.Enabled {
		tlsConfig, err := createTLSConfig(cfg.SSL, cfg.Host)
		if err != nil {
			return nil, fmt.Errorf("failed to create TLS configuration: %w", err)
		}
		cluster.SslOpts = &gocql.SslOptions{Config: tlsConfig}
	}

	versions := protocolVersions
	if cfg.ProtoVersion > 0 {
		versions = []int{cfg.ProtoVersion}
	}

	var session *gocql.Session
	for _, protoVer := range versions {
		cluster.ProtoVersion = protoVer
		session, err = cluster.CreateSession()
		if err == nil {
			logger.DebugfToFile("Session", "Connected to %s:%d with protocol version %d", cfg.Host, cfg.Port, protoVer)
			break
		}
		logger.DebugfToFile("Session", "Failed to connect with protocol version %d: %v", protoVer, err)
	}
	if session == nil {
		return nil, fmt.Errorf("failed to connect to %s:%d: %w", cfg.Host, cfg.Port, err)
	}

	var releaseVersion string
	iter := session.Query("SELECT release_version FROM system.local").Iter()
	iter.Scan(&releaseVersion)
	_ = iter.Close()

	return &Session{
		Session:          session,
		cluster:          cluster,
		consistency:      consistency,
		host:             cfg.Host,
		cassandraVersion: releaseVersion,
	}, nil
}

func seconds(value, fallback int) time.Duration {
	if value > 0 {
		return time.Duration(value) * time.Second
	}
	return time.Duration(fallback) * time.Second
}

var consistencyLevels = map[string]gocql.Consistency{
	"ANY":          gocql.Any,
	"ONE":          gocql.One,
	"TWO":          gocql.Two,
	"THREE":        gocql.Three,
	"QUORUM":       gocql.Quorum,
	"ALL":          gocql.All,
	"LOCAL_QUORUM": gocql.LocalQuorum,
	"EACH_QUORUM":  gocql.EachQuorum,
	"LOCAL_ONE":    gocql.LocalOne,
}

// ParseConsistency maps a consistency level name to the driver constant. An
// empty name selects LOCAL_ONE.
func ParseConsistency(level string) (gocql.Consistency, error) {
	name := strings.ToUpper(strings.TrimSpace(level))
	if name == "" {
		return gocql.LocalOne, nil
	}
	c, ok := consistencyLevels[name]
	if !ok {
		return 0, fmt.Errorf("invalid consistency level: %s", level)
	}
	return c, nil
}

// ConsistencyName is the inverse of ParseConsistency.
func ConsistencyName(c gocql.Consistency) string {
	for name, level := range consistencyLevels {
		if level == c {
			return name
		}
	}
	return "UNKNOWN"
}

// Consistency returns the current consistency level
func (s *Session) Consistency() string {
	return ConsistencyName(s.consistency)
}

// SetConsistency sets the consistency level
func (s *Session) SetConsistency(level string) error {
	c, err := ParseConsistency(level)
	if err != nil {
		return err
	}
	s.consistency = c
	return nil
}

// Host returns the connection host
func (s *Session) Host() string {
	return s.host
}

// Keyspace returns the session keyspace
func (s *Session) Keyspace() string {
	if s.cluster != nil {
		return s.cluster.Keyspace
	}
	return ""
}

// CassandraVersion returns the Cassandra version
func (s *Session) CassandraVersion() string {
	if s.cassandraVersion == "" {
		return "unknown"
	}
	return s.cassandraVersion
}

// Query creates a new query with session defaults applied. Values are
// converted to driver types first, see BindValues.
func (s *Session) Query(stmt string, values ...interface{}) *gocql.Query {
	query := s.Session.Query(stmt, BindValues(values)...)
	query.Consistency(s.consistency)
	return query
}

// createTLSConfig creates a TLS configuration based on the SSL settings
func createTLSConfig(sslConfig *config.SSLConfig, hostname string) (*tls.Config, error) {
	serverName := sslConfig.ServerName
	if serverName == "" {
		serverName = hostname
		if colonIdx := strings.LastIndex(hostname, ":"); colonIdx > 0 {
			serverName = hostname[:colonIdx]
		}
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: sslConfig.InsecureSkipVerify, // #nosec G402 - Configurable TLS verification
		MinVersion:         tls.VersionTLS12,
	}
	if sslConfig.HostVerification && serverName != "" {
		tlsConfig.ServerName = serverName
	}

	if sslConfig.CertPath != "" && sslConfig.KeyPath != "" {
		cert, err := tls.LoadX509KeyPair(sslConfig.CertPath, sslConfig.KeyPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	if sslConfig.CAPath != "" {
		caCert, err := os.ReadFile(sslConfig.CAPath) // #nosec G304 - path from configuration
		if err != nil {
			return nil, fmt.Errorf("failed to read CA certificate: %w", err)
		}
		caCertPool := x509.NewCertPool()
		if !caCertPool.AppendCertsFromPEM(caCert) {
			return nil, fmt.Errorf("failed to parse CA certificate %s", sslConfig.CAPath)
		}
		tlsConfig.RootCAs = caCertPool
	}

	return tlsConfig, nil
}
