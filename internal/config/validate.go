package config

import (
	"fmt"
	"regexp"
	"strings"

	"wf-exporter/internal/diagnostic"
)

// ExistingValuePlaceholder is the only placeholder a spark conf template may use.
const ExistingValuePlaceholder = "{existing_value}"

var placeholderRe = regexp.MustCompile(`\{([A-Za-z_][A-Za-z0-9_.]*)\}`)

// Validate checks the configuration document and returns every problem found.
func Validate(f *File) *diagnostic.Diagnostics {
	res := &diagnostic.Diagnostics{}
	if f == nil {
		res.AddError("config_is_nil", "configuration is nil", "", "")
		return res
	}

	for _, e := range f.PathReplacement {
		if _, err := regexp.Compile(e.Key); err != nil {
			res.AddError("invalid_regex", fmt.Sprintf("invalid path_replacement pattern: %v", err), "", e.Key)
		}
	}

	for _, e := range f.ValueReplacements {
		switch {
		case e.Key == "":
			res.AddError("empty_literal", "value_replacements key must not be empty", "", "value_replacements")
		case IsPatternRule(e.Key):
			res.AddWarning("pattern_value_rule_ignored", "value_replacements are literal; grouped patterns are ignored", "", e.Key)
		}
	}

	for i, r := range f.SparkConfKeyReplacements {
		field := fmt.Sprintf("spark_conf_key_replacements[%d]", i)

		if r.SearchKey == "" || r.TargetKey == "" {
			res.AddError("spark_rule_incomplete", "search_key and target_key are required", "", field)
		}

		for _, name := range UnresolvedPlaceholders(r.TargetValue) {
			res.AddError("unresolved_placeholder",
				fmt.Sprintf("target_value references unknown placeholder {%s}", name), "", field+".target_value")
		}
	}

	validateItems(res, f.Items())

	return res
}

func validateItems(res *diagnostic.Diagnostics, items []ExportJob) {
	seen := map[string]struct{}{}
	index := map[string]int{}

	for _, it := range items {
		field := fmt.Sprintf("%ss[%d]", it.Kind, index[string(it.Kind)])
		index[string(it.Kind)]++

		if strings.TrimSpace(it.ID) == "" {
			res.AddError("missing_id", "item has no id", it.Name, field)
			continue
		}

		key := it.String()
		if _, dup := seen[key]; dup {
			res.AddError("duplicate_id", fmt.Sprintf("%s %s is configured more than once", it.Kind, it.ID), it.Name, field)
			continue
		}

		seen[key] = struct{}{}

		if it.Name == "" {
			res.AddWarning("missing_name", "item has no name; the resource is matched by id only", it.ID, field)
		}
	}
}

// IsPatternRule reports whether a value_replacements key is a grouped regex
// pattern, which literal substitution does not apply.
func IsPatternRule(key string) bool {
	return strings.HasPrefix(key, "(")
}

// UnresolvedPlaceholders returns {name} references in a template other than
// {existing_value}. References written as ${name} belong to the bundle and are ignored.
func UnresolvedPlaceholders(template string) []string {
	var out []string

	for _, m := range placeholderRe.FindAllStringSubmatchIndex(template, -1) {
		if m[0] > 0 && template[m[0]-1] == '$' {
			continue
		}

		name := template[m[2]:m[3]]
		if "{"+name+"}" == ExistingValuePlaceholder {
			continue
		}

		out = append(out, name)
	}

	return out
}
