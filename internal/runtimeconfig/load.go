package runtimeconfig

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

//go:embed schema.json
var schemaDocument []byte

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("texmark-config.json", bytes.NewReader(schemaDocument)); err != nil {
		return nil, err
	}
	return compiler.Compile("texmark-config.json")
})

// Load reads a YAML configuration file and overlays it on DefaultConfig.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Config{}, goerrors.Wrap(err, goerrors.CategoryNotFound, "config file not found").
				WithTextCode("CONFIG_NOT_FOUND")
		}
		return Config{}, goerrors.Wrap(err, goerrors.CategoryOperation, "read config file").
			WithTextCode("CONFIG_READ_FAILED")
	}
	return Decode(data)
}

// Decode validates YAML data against the configuration schema, overlays it on
// DefaultConfig and runs Validate. Empty input yields the defaults.
func Decode(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}

	var raw any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "config is not valid YAML").
			WithTextCode("CONFIG_YAML_INVALID")
	}
	if err := validateDocument(raw); err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryBadInput, "decode config").
			WithTextCode("CONFIG_DECODE_FAILED")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, goerrors.Wrap(err, goerrors.CategoryValidation, "config is inconsistent").
			WithTextCode("CONFIG_INVALID")
	}
	return cfg, nil
}

// validateDocument checks a decoded YAML tree against the embedded schema. The
// tree is round-tripped through JSON so numbers and maps take the shapes the
// validator expects.
func validateDocument(raw any) error {
	schema, err := compiledSchema()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "compile config schema").
			WithTextCode("CONFIG_SCHEMA_INVALID")
	}

	encoded, err := json.Marshal(raw)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "config is not representable as JSON").
			WithTextCode("CONFIG_YAML_INVALID")
	}
	var doc any
	if err := json.Unmarshal(encoded, &doc); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "config is not representable as JSON").
			WithTextCode("CONFIG_YAML_INVALID")
	}

	if err := schema.Validate(doc); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "config does not match schema: "+schemaIssues(err)).
			WithTextCode("CONFIG_SCHEMA_MISMATCH")
	}
	return nil
}

func schemaIssues(err error) string {
	var validationErr *jsonschema.ValidationError
	if !errors.As(err, &validationErr) {
		return err.Error()
	}
	var issues []string
	var walk func(*jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if len(node.Causes) == 0 {
			location := node.InstanceLocation
			if location == "" {
				location = "#"
			}
			issues = append(issues, location+": "+strings.TrimSpace(node.Message))
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return strings.Join(issues, "; ")
}
