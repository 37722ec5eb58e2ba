package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Credentials maps the name a server advertises to the password players need to join it.
type Credentials map[string]string

type credentialRecord struct {
	Name     string `yaml:"name"`
	Password string `yaml:"pwd"`
}

// LoadCredentials reads a list of {"name", "pwd"} records.
// The file is usually JSON, which the YAML decoder reads as well.
func LoadCredentials(path string) (Credentials, error) {

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{Op: "credentials", Path: path, Err: err}
	}

	credentials, err := DecodeCredentials(data)
	if err != nil {
		return nil, &ConfigError{Op: "credentials", Path: path, Err: err}
	}
	return credentials, nil
}

func DecodeCredentials(data []byte) (Credentials, error) {

	var document yaml.Node
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}
	if len(document.Content) == 0 {
		return nil, fmt.Errorf("no records found")
	}

	var records []credentialRecord
	if err := document.Decode(&records); err != nil {
		return nil, fmt.Errorf("decoding records: %w", err)
	}

	// Servers without a password are listed but never show one
	credentials := make(Credentials, len(records))
	seen := make(map[string]bool, len(records))
	for i, record := range records {
		if record.Name == "" {
			return nil, fmt.Errorf("record %d has no name", i)
		}
		if seen[record.Name] {
			return nil, fmt.Errorf("server %s appears more than once", record.Name)
		}
		seen[record.Name] = true
		if record.Password != "" {
			credentials[record.Name] = record.Password
		}
	}
	return credentials, nil
}

// Lookup is an exact match on the server name; there is no default password.
func (c Credentials) Lookup(name string) (string, bool) {
	password, ok := c[name]
	return password, ok
}
