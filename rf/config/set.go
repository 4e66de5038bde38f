package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

// Set assigns value to section.key in the YAML file at path, keeping the
// order of the other keys. An empty section addresses a top-level key. The
// value is read as a YAML scalar, so "0.4" is a number and "" is null. The
// file is only rewritten when the result still parses and validates.
func Set(path, section, key, value string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalid, path, err)
	}

	name := key
	if section != "" {
		name = section + "." + key
	}
	var v any
	if err := yaml.Unmarshal([]byte(value), &v); err != nil {
		return invalid(name, "%v", err)
	}

	if section == "" {
		doc = setItem(doc, key, v)
	} else {
		var sec yaml.MapSlice
		for _, it := range doc {
			if k, ok := it.Key.(string); ok && k == section {
				sec, _ = it.Value.(yaml.MapSlice)
			}
		}
		doc = setItem(doc, section, setItem(sec, key, v))
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return err
	}
	if _, err := Parse(out); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return os.WriteFile(path, out, 0o644)
}

func setItem(m yaml.MapSlice, key string, v any) yaml.MapSlice {
	for i := range m {
		if k, ok := m[i].Key.(string); ok && k == key {
			m[i].Value = v
			return m
		}
	}
	return append(m, yaml.MapItem{Key: key, Value: v})
}

// Write stores c as YAML.
func Write(path string, c Config) error {
	out, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0o644)
}
