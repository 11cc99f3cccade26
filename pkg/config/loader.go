package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v3"
)

const envPrefix = "OPENCUA_"

// Loader assembles a Config from layered sources.
type Loader struct {
	koanf     *koanf.Koanf
	validator *validator.Validate
}

// LoadOption adds a configuration source to a Load call.
type LoadOption func(*loadState)

type loadState struct {
	yamlFile  string
	overrides map[string]any
}

// WithYAMLFile layers a YAML configuration file over the defaults. An empty
// path is ignored.
func WithYAMLFile(path string) LoadOption {
	return func(s *loadState) {
		s.yamlFile = path
	}
}

// WithOverrides layers explicit values (dotted koanf paths) on top of every
// other source. CLI flags land here.
func WithOverrides(values map[string]any) LoadOption {
	return func(s *loadState) {
		if s.overrides == nil {
			s.overrides = make(map[string]any, len(values))
		}
		for k, v := range values {
			s.overrides[k] = v
		}
	}
}

// NewLoader creates a configuration loader with validation support.
func NewLoader() *Loader {
	return &Loader{
		koanf:     koanf.New("."),
		validator: validator.New(),
	}
}

// Load builds the effective configuration: defaults, then YAML file, then
// environment, then overrides.
func (l *Loader) Load(_ context.Context, opts ...LoadOption) (*Config, error) {
	state := &loadState{}
	for _, opt := range opts {
		opt(state)
	}
	if err := l.koanf.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}
	if state.yamlFile != "" {
		if err := l.loadYAMLFile(state.yamlFile); err != nil {
			return nil, err
		}
	}
	if err := l.loadEnvironment(); err != nil {
		return nil, err
	}
	if len(state.overrides) > 0 {
		if err := l.loadOverrides(state.overrides); err != nil {
			return nil, err
		}
	}
	return l.unmarshalAndValidate()
}

// loadYAMLFile reads a YAML document into a map and merges it. Going through
// a plain map keeps the precedence handling uniform across sources.
func (l *Loader) loadYAMLFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := l.koanf.Load(rawMap(values), nil); err != nil {
		return fmt.Errorf("failed to merge config file %s: %w", path, err)
	}
	return nil
}

// loadEnvironment merges OPENCUA_* environment variables. The first token
// after the prefix selects the section, the rest keeps its underscores:
// OPENCUA_CONVERT_TASK_ID_SENTINEL -> convert.task_id_sentinel.
func (l *Loader) loadEnvironment() error {
	err := l.koanf.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(key, value string) (string, any) {
			return transformEnvKey(strings.TrimPrefix(key, envPrefix)), value
		},
	}), nil)
	if err != nil {
		return fmt.Errorf("failed to load environment variables: %w", err)
	}
	return nil
}

func transformEnvKey(s string) string {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return r == '_'
	})
	if len(parts) == 0 {
		return ""
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + "." + strings.Join(parts[1:], "_")
}

// loadOverrides merges dotted-path values on top of everything else.
func (l *Loader) loadOverrides(values map[string]any) error {
	nested := make(map[string]any)
	for path, value := range values {
		if err := setNested(nested, path, value); err != nil {
			return fmt.Errorf("failed to set override %s: %w", path, err)
		}
	}
	if err := l.koanf.Load(rawMap(nested), nil); err != nil {
		return fmt.Errorf("failed to merge overrides: %w", err)
	}
	return nil
}

func (l *Loader) unmarshalAndValidate() (*Config, error) {
	cfg := &Config{}
	err := l.koanf.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "koanf",
			Result:           cfg,
			WeaklyTypedInput: true,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := l.validator.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setNested sets a value in a nested map structure using dot notation.
// It returns an error if a path conflict is encountered.
func setNested(m map[string]any, path string, value any) error {
	if path == "" {
		return nil
	}
	parts := strings.Split(path, ".")
	current := m
	for i := 0; i < len(parts)-1; i++ {
		part := parts[i]
		if _, exists := current[part]; !exists {
			current[part] = make(map[string]any)
		}
		next, ok := current[part].(map[string]any)
		if !ok {
			return fmt.Errorf("configuration conflict: key %q is not a map", strings.Join(parts[:i+1], "."))
		}
		current = next
	}
	current[parts[len(parts)-1]] = value
	return nil
}

// rawMap is a koanf.Provider adapter for map[string]any data.
type rawMap map[string]any

func (r rawMap) Read() (map[string]any, error) {
	return r, nil
}

func (r rawMap) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("ReadBytes not implemented")
}
