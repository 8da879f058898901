package config

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/axonops/cqltable/internal/logger"
)

// Config holds the connection and tool configuration
type Config struct {
	Host           string     `json:"host"`
	Port           int        `json:"port"`
	Keyspace       string     `json:"keyspace"`
	Username       string     `json:"username"`
	Password       string     `json:"password"`
	Consistency    string     `json:"consistency,omitempty"`    // e.g. "LOCAL_QUORUM"
	ConnectTimeout int        `json:"connectTimeout,omitempty"` // seconds
	RequestTimeout int        `json:"requestTimeout,omitempty"` // seconds
	ProtoVersion   int        `json:"protoVersion,omitempty"`   // 0 negotiates
	Debug          bool       `json:"debug,omitempty"`
	SchemaPaths    []string   `json:"schemaPaths,omitempty"` // schema files or directories used when -schema is not given
	SSL            *SSLConfig `json:"ssl,omitempty"`
}

// SSLConfig holds SSL/TLS configuration options
type SSLConfig struct {
	Enabled            bool   `json:"enabled"`
	CertPath           string `json:"certPath,omitempty"`
	KeyPath            string `json:"keyPath,omitempty"`
	CAPath             string `json:"caPath,omitempty"`
	HostVerification   bool   `json:"hostVerification,omitempty"`
	InsecureSkipVerify bool   `json:"insecureSkipVerify,omitempty"`
	ServerName         string `json:"serverName,omitempty"`
}

// Default returns the configuration used when nothing else is found.
func Default() *Config {
	return &Config{
		Host:           "localhost",
		Port:           9042,
		Consistency:    "QUORUM",
		ConnectTimeout: 10,
		RequestTimeout: 30,
	}
}

// LoadConfig loads configuration from cqlshrc, then a JSON file, then the
// environment. If customConfigPath is given it replaces the default JSON
// locations and must exist.
func LoadConfig(customConfigPath ...string) (*Config, error) {
	config := Default()
	home := os.Getenv("HOME")

	for _, path := range []string{
		filepath.Join(home, ".cassandra", "cqlshrc"),
		filepath.Join(home, ".cqlshrc"),
	} {
		if err := loadCQLSHRC(path, config); err != nil {
			logger.DebugfToFile("Config", "No cqlshrc at %s: %v", path, err)
			continue
		}
		logger.DebugfToFile("Config", "Loaded cqlshrc from %s", path)
		break
	}

	custom := len(customConfigPath) > 0 && customConfigPath[0] != ""
	configPaths := []string{
		"cqltable.json",
		filepath.Join(home, ".cqltable.json"),
		filepath.Join(home, ".config", "cqltable", "config.json"),
	}
	if custom {
		configPaths = customConfigPath[:1]
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path) // #nosec G304 - config location chosen by the user
		if err != nil {
			logger.DebugfToFile("Config", "No JSON config at %s: %v", path, err)
			continue
		}
		if err := json.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("error parsing config file %s: %w", path, err)
		}
		logger.DebugfToFile("Config", "Loaded JSON config from %s", path)
		custom = false
		break
	}
	if custom {
		return nil, fmt.Errorf("config file not found: %s", customConfigPath[0])
	}

	OverrideWithEnvVars(config)

	logger.DebugfToFile("Config", "Final config: host=%s, port=%d, username=%s, keyspace=%s, consistency=%s, hasPassword=%v",
		config.Host, config.Port, config.Username, config.Keyspace, config.Consistency, config.Password != "")
	return config, nil
}

// envOverrides lists, per setting, the variables consulted in increasing
// priority.
var envOverrides = []struct {
	names []string
	apply func(c *Config, value string)
}{
	{[]string{"CASSANDRA_HOST", "CQLTABLE_HOST"}, func(c *Config, v string) { c.Host = v }},
	{[]string{"CASSANDRA_PORT", "CQLTABLE_PORT"}, func(c *Config, v string) {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			c.Port = p
		}
	}},
	{[]string{"CASSANDRA_KEYSPACE", "CQLTABLE_KEYSPACE"}, func(c *Config, v string) { c.Keyspace = v }},
	{[]string{"CASSANDRA_USERNAME", "CQLTABLE_USERNAME"}, func(c *Config, v string) { c.Username = v }},
	{[]string{"CASSANDRA_PASSWORD", "CQLTABLE_PASSWORD"}, func(c *Config, v string) { c.Password = v }},
	{[]string{"CQLTABLE_CONSISTENCY"}, func(c *Config, v string) { c.Consistency = v }},
	{[]string{"CQLTABLE_DEBUG"}, func(c *Config, v string) {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Debug = b
		}
	}},
	{[]string{"CQLTABLE_SCHEMA_PATH"}, func(c *Config, v string) {
		c.SchemaPaths = filepath.SplitList(v)
	}},
}

// OverrideWithEnvVars overrides configuration with environment variables
func OverrideWithEnvVars(config *Config) {
	for _, o := range envOverrides {
		for _, name := range o.names {
			if v := os.Getenv(name); v != "" {
				logger.DebugfToFile("Config", "Override from %s", name)
				o.apply(config, v)
			}
		}
	}
}

// iniEntry is one key=value line of an INI style file.
type iniEntry struct {
	section string
	key     string
	value   string
}

// readINI reads cqlshrc style files: [section] headers, key = value lines,
// ';' and '#' comments, optionally quoted values.
func readINI(path string) ([]iniEntry, error) {
	file, err := os.Open(path) // #nosec G304 - config location chosen by the user
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var entries []iniEntry
	section := ""
	scanner := bufio.NewScanner(file)
	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			section = strings.ToLower(strings.Trim(line, "[]"))
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.DebugfToFile("Config", "%s:%d: skipping line without '='", path, lineNum)
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			value = value[1 : len(value)-1]
		}
		entries = append(entries, iniEntry{section: section, key: strings.TrimSpace(key), value: value})
	}
	return entries, scanner.Err()
}

func expandHome(path string) string {
	if strings.HasPrefix(path, "~") {
		return filepath.Join(os.Getenv("HOME"), path[1:])
	}
	return path
}

// loadCQLSHRC applies the [connection], [authentication], [auth_provider]
// and [ssl] sections of a cqlshrc file.
func loadCQLSHRC(path string, config *Config) error {
	entries, err := readINI(path)
	if err != nil {
		return err
	}

	ssl := func() *SSLConfig {
		if config.SSL == nil {
			config.SSL = &SSLConfig{}
		}
		return config.SSL
	}

	var credentialsPath string
	for _, e := range entries {
		switch e.section {
		case "connection":
			switch e.key {
			case "hostname":
				config.Host = e.value
			case "port":
				if port, err := strconv.Atoi(e.value); err == nil {
					config.Port = port
				}
			case "ssl":
				if e.value == "true" || e.value == "1" {
					ssl().Enabled = true
				}
			case "connect_timeout":
				if secs, err := strconv.Atoi(e.value); err == nil {
					config.ConnectTimeout = secs
				}
			case "request_timeout":
				if secs, err := strconv.Atoi(e.value); err == nil {
					config.RequestTimeout = secs
				}
			}
		case "authentication", "auth_provider":
			switch e.key {
			case "credentials":
				credentialsPath = e.value
			case "keyspace":
				config.Keyspace = e.value
			case "username":
				config.Username = e.value
			case "password":
				config.Password = e.value
			}
		case "ssl":
			s := ssl()
			s.Enabled = true
			switch e.key {
			case "certfile":
				s.CAPath = expandHome(e.value)
			case "userkey":
				s.KeyPath = expandHome(e.value)
			case "usercert":
				s.CertPath = expandHome(e.value)
			case "validate":
				verify := e.value != "false" && e.value != "0"
				s.HostVerification = verify
				s.InsecureSkipVerify = !verify
			}
		}
	}

	if credentialsPath != "" {
		if err := loadCredentialsFile(credentialsPath, config); err != nil {
			logger.DebugfToFile("Config", "Failed to load credentials file %s: %v", credentialsPath, err)
		}
	}
	return nil
}

// loadCredentialsFile reads username/password from the auth sections of a
// cqlsh credentials file, e.g.
//
//	[PlainTextAuthProvider]
//	username = user
//	password = pass
func loadCredentialsFile(path string, config *Config) error {
	entries, err := readINI(expandHome(path))
	if err != nil {
		return err
	}
	for _, e := range entries {
		if !strings.Contains(e.section, "auth") {
			continue
		}
		switch e.key {
		case "username":
			config.Username = e.value
		case "password":
			config.Password = e.value
		}
	}
	return nil
}
