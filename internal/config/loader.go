package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

const startPathPlaceholder = "{v_start_path}"

// DefaultPathReplacement is applied when the document declares no path_replacement.
var DefaultPathReplacement = OrderedMap{
	{Key: `^/Workspace/Repos/[^/]+/`, Value: "../"},
	{Key: `^/Repos/[^/]+/`, Value: "../"},
	{Key: `^/Workspace/`, Value: "../"},
	{Key: `^/Shared/`, Value: "../"},
	{Key: `^/`, Value: "../"},
}

func defaultInitialVariables() InitialVariables {
	return InitialVariables{
		StartPath:      ".",
		MappingCSVPath: startPathPlaceholder + "/bind_scripts/resource_key_job_id_mapping.csv",
		BackupPath:     startPathPlaceholder + "/backup_jobs_yaml/",
		SummaryPath:    startPathPlaceholder + "/export_summary.yml",
		LogLevel:       "INFO",
	}
}

// LoadFile loads a configuration file. Files ending in .toml are parsed as
// TOML, everything else as YAML.
func LoadFile(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var f *File
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		f, err = ParseTOML(data)
	} else {
		f, err = Parse(data)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return f, nil
}

// Parse parses YAML data into a File with defaults applied.
func Parse(data []byte) (*File, error) {
	var f File

	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}

	if err := applyDefaults(&f); err != nil {
		return nil, err
	}

	return &f, nil
}

// ParseTOML parses TOML data into a File with defaults applied.
func ParseTOML(data []byte) (*File, error) {
	var f File

	md, err := toml.Decode(string(data), &f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config TOML: %w", err)
	}

	f.PathReplacement = f.PathReplacement.reorder(tableKeys(md, "path_replacement"))
	f.ValueReplacements = f.ValueReplacements.reorder(tableKeys(md, "value_replacements"))

	if err := applyDefaults(&f); err != nil {
		return nil, err
	}

	return &f, nil
}

// tableKeys returns the direct child keys of a top-level table in file order.
func tableKeys(md toml.MetaData, table string) []string {
	var keys []string

	for _, k := range md.Keys() {
		if len(k) == 2 && k[0] == table {
			keys = append(keys, k[1])
		}
	}

	return keys
}

// applyDefaults fills unset initial variables, expands {v_start_path},
// and installs the default path rules when none are declared.
func applyDefaults(f *File) error {
	if err := mergo.Merge(&f.InitialVariables, defaultInitialVariables()); err != nil {
		return fmt.Errorf("failed to apply config defaults: %w", err)
	}

	expandStartPath(&f.InitialVariables)

	if f.PathReplacement == nil {
		f.PathReplacement = append(OrderedMap(nil), DefaultPathReplacement...)
	}

	return nil
}

// expandStartPath substitutes {v_start_path} in every string variable.
func expandStartPath(iv *InitialVariables) {
	start := strings.TrimRight(iv.StartPath, "/")
	if start == "" {
		start = iv.StartPath
	}

	v := reflect.ValueOf(iv).Elem()
	for i := range v.NumField() {
		field := v.Field(i)
		if field.Kind() != reflect.String || v.Type().Field(i).Name == "StartPath" {
			continue
		}

		field.SetString(strings.ReplaceAll(field.String(), startPathPlaceholder, start))
	}
}
