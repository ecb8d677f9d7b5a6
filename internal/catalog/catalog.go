// Package catalog loads users, topics and recorded attempts from TOML or
// YAML files.
package catalog

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Catalog is the decoded content of a catalog file.
type Catalog struct {
	Users    []User    `toml:"users" yaml:"users"`
	Topics   []Topic   `toml:"topics" yaml:"topics"`
	Sessions []Session `toml:"sessions" yaml:"sessions"`
}

// User is a quiz taker.
type User struct {
	FirstName string `toml:"first-name" yaml:"first-name"`
	LastName  string `toml:"last-name" yaml:"last-name"`
	Login     string `toml:"login" yaml:"login"`
}

// Topic groups tests.
type Topic struct {
	Name  string `toml:"name" yaml:"name"`
	Tests []Test `toml:"tests" yaml:"tests"`
}

// Test is an ordered list of questions.
type Test struct {
	Name      string     `toml:"name" yaml:"name"`
	Questions []Question `toml:"questions" yaml:"questions"`
}

// Question has one or more correct answers.
type Question struct {
	Text    string   `toml:"text" yaml:"text"`
	Answers []Answer `toml:"answers" yaml:"answers"`
}

// Answer is one option of a question.
type Answer struct {
	Text    string `toml:"text" yaml:"text"`
	Correct bool   `toml:"correct" yaml:"correct"`
}

// Session is one recorded attempt of a test. Results holds the correctness
// of each question in test order.
type Session struct {
	Login   string    `toml:"login" yaml:"login"`
	Topic   string    `toml:"topic" yaml:"topic"`
	Test    string    `toml:"test" yaml:"test"`
	Date    time.Time `toml:"date" yaml:"date"`
	Results []bool    `toml:"results" yaml:"results"`
}

// Format is a catalog encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported catalog extension %q (use .toml, .yaml or .yml)", filepath.Ext(path))
	}
}

// Load reads, decodes and validates a catalog file.
func Load(path string) (Catalog, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Catalog{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, fmt.Errorf("failed to read catalog: %w", err)
	}
	return Parse(data, format)
}

// Parse decodes and validates catalog data.
func Parse(data []byte, format Format) (Catalog, error) {
	var cat Catalog
	switch format {
	case FormatTOML:
		meta, err := toml.Decode(string(data), &cat)
		if err != nil {
			return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			return Catalog{}, fmt.Errorf("unknown catalog key %q", undecoded[0].String())
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cat); err != nil {
			return Catalog{}, fmt.Errorf("failed to decode catalog: %w", err)
		}
	default:
		return Catalog{}, fmt.Errorf("unknown catalog format %q", format)
	}
	if err := cat.Validate(); err != nil {
		return Catalog{}, err
	}
	return cat, nil
}
