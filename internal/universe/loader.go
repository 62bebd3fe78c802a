// Package universe maps sectors to the tickers screened for them.
package universe

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed sectors.yaml
var defaultYAML []byte

// File is the YAML layout of a universe definition
type File struct {
	Meta    Meta     `yaml:"meta" json:"meta"`
	Sectors []Sector `yaml:"sectors" json:"sectors"`
}

// Meta describes the universe
type Meta struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Sector is one named ticker list
type Sector struct {
	Name    string   `yaml:"name" json:"name"`
	Symbols []string `yaml:"symbols" json:"symbols"`
}

// Default returns the embedded universe
func Default() *Universe {
	u, err := Parse(defaultYAML)
	if err != nil {
		// The embedded file is covered by tests
		panic(fmt.Sprintf("embedded universe is invalid: %v", err))
	}
	return u
}

// Load reads a universe from a YAML file; an empty path yields the default
func Load(path string) (*Universe, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read universe file: %w", err)
	}

	return Parse(data)
}

// Parse decodes and validates YAML.
// Unknown fields fail immediately so typos never pass silently.
func Parse(data []byte) (*Universe, error) {
	var file File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode universe: %w", err)
	}

	if err := Validate(&file); err != nil {
		return nil, err
	}

	hash, err := Hash(&file)
	if err != nil {
		return nil, err
	}

	return newUniverse(&file, hash), nil
}

// Hash returns the SHA256 of the canonical JSON form
func Hash(file *File) (string, error) {
	jsonBytes, err := json.Marshal(file)
	if err != nil {
		return "", fmt.Errorf("failed to hash universe: %w", err)
	}

	sum := sha256.Sum256(jsonBytes)
	return hex.EncodeToString(sum[:]), nil
}
