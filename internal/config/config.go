// Package config loads generator settings from csdlgen.yaml, .env files and
// CSDLGEN_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/nlstn/go-csdlgen/internal/augment"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

const (
	ConfigFileName        = "csdlgen.yaml"
	DefaultOutputFilename = "metadata.csdl"
	EnvPrefix             = "CSDLGEN_"
)

// Settings configures a generator run and the CSDL output.
type Settings struct {
	BaseURL                   string                     `yaml:"base_url"`
	Namespaces                []string                   `yaml:"namespaces,omitempty"`
	ExcludedNamespaces        []string                   `yaml:"excluded_namespaces,omitempty"`
	IncludeDescriptions       bool                       `yaml:"include_descriptions"`
	FlattenActionsToNamespace string                     `yaml:"flatten_actions_to_namespace,omitempty"`
	ConflictPolicy            string                     `yaml:"conflict_policy,omitempty"`
	IncludeXMLDeclaration     *bool                      `yaml:"include_xml_declaration,omitempty"`
	IndentXML                 *bool                      `yaml:"indent_xml,omitempty"`
	OutputFilename            string                     `yaml:"output_filename,omitempty"`
	Store                     string                     `yaml:"store,omitempty"`
	StaticAnnotations         []augment.StaticAnnotation `yaml:"static_annotations,omitempty"`
}

// Default returns the settings used when no file is present.
func Default() *Settings {
	s := &Settings{}
	s.applyDefaults()
	return s
}

func (s *Settings) applyDefaults() {
	if s.IncludeXMLDeclaration == nil {
		v := true
		s.IncludeXMLDeclaration = &v
	}
	if s.IndentXML == nil {
		v := true
		s.IndentXML = &v
	}
	if s.OutputFilename == "" {
		s.OutputFilename = DefaultOutputFilename
	}
}

// Load reads csdlgen.yaml from dir.
func Load(dir string) (*Settings, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads settings from path and fills in defaults.
func LoadFile(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	s.applyDefaults()
	return &s, nil
}

// LoadEnv loads .env files into the process environment. Without arguments
// it reads .env from the working directory and a missing file is not an error.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		_ = godotenv.Load()
		return nil
	}
	return godotenv.Load(files...)
}

// ApplyEnv overrides settings from CSDLGEN_* environment variables.
func (s *Settings) ApplyEnv() error {
	if v, ok := lookup("BASE_URL"); ok {
		s.BaseURL = v
	}
	if v, ok := lookup("NAMESPACES"); ok {
		s.Namespaces = splitList(v)
	}
	if v, ok := lookup("EXCLUDED_NAMESPACES"); ok {
		s.ExcludedNamespaces = splitList(v)
	}
	if v, ok := lookup("INCLUDE_DESCRIPTIONS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %sINCLUDE_DESCRIPTIONS: %w", EnvPrefix, err)
		}
		s.IncludeDescriptions = b
	}
	if v, ok := lookup("FLATTEN_ACTIONS_TO_NAMESPACE"); ok {
		s.FlattenActionsToNamespace = v
	}
	if v, ok := lookup("CONFLICT_POLICY"); ok {
		s.ConflictPolicy = v
	}
	if v, ok := lookup("OUTPUT"); ok {
		s.OutputFilename = v
	}
	if v, ok := lookup("STORE"); ok {
		s.Store = v
	}
	return nil
}

func lookup(name string) (string, bool) {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok || strings.TrimSpace(v) == "" {
		return "", false
	}
	return strings.TrimSpace(v), true
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
