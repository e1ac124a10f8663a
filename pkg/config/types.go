package config

import (
	"fmt"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration written as a string such as "6h" or "90m".
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Version is a raw gem version in a config file. YAML scalars keep their
// source text, so an unquoted 1.10 stays "1.10". TOML decodes unquoted
// decimals as floats before they reach us, so those must be quoted.
type Version string

// UnmarshalYAML keeps the scalar's source text.
func (v *Version) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: version must be a scalar", node.Line)
	}
	*v = Version(node.Value)
	return nil
}

// UnmarshalTOML accepts strings and integers. Floats are rejected because
// 1.10 and 1.1 decode to the same value.
func (v *Version) UnmarshalTOML(data any) error {
	switch x := data.(type) {
	case string:
		*v = Version(x)
	case int64:
		*v = Version(strconv.FormatInt(x, 10))
	case float64:
		return fmt.Errorf("unquoted version %v is read as a float; write it as a string", x)
	default:
		return fmt.Errorf("version must be a string, got %T", data)
	}
	return nil
}
