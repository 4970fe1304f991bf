package config

import (
	"fmt"
	"regexp"
	"strings"

	"wf-exporter/internal/apperrors"
)

// PathRule relocates a workspace path. Rules are tried in declaration order.
type PathRule struct {
	Pattern     string `yaml:"pattern"`
	Replacement string `yaml:"replacement"`

	re       *regexp.Regexp
	template string
}

// Match reports whether the rule applies to p.
func (r PathRule) Match(p string) bool {
	return r.re != nil && r.re.MatchString(p)
}

// Apply replaces every match of the rule in p.
func (r PathRule) Apply(p string) string {
	return r.re.ReplaceAllString(p, r.template)
}

// ValueRule is one literal substitution.
type ValueRule struct {
	Literal     string `yaml:"literal"`
	Replacement string `yaml:"replacement"`
}

// SparkConfRule rewrites a spark_conf block that contains SearchKey.
type SparkConfRule struct {
	SearchKey   string `yaml:"search_key"`
	TargetKey   string `yaml:"target_key"`
	TargetValue string `yaml:"target_value_template"`
}

// Render expands {existing_value} in the template.
func (r SparkConfRule) Render(existing string) string {
	return strings.ReplaceAll(r.TargetValue, ExistingValuePlaceholder, existing)
}

// EffectiveSettings is the resolved configuration for one item.
type EffectiveSettings struct {
	Job             ExportJob       `yaml:"job"`
	ExportLibraries bool            `yaml:"export_libraries"`
	PathRules       []PathRule      `yaml:"path_rules"`
	ValueRules      []ValueRule     `yaml:"value_rules"`
	SparkConfRules  []SparkConfRule `yaml:"spark_conf_rules"`
}

// EffectiveExportLibraries applies the export_libraries precedence:
// an explicit global false wins, then the item value, then the global value,
// then false.
func EffectiveExportLibraries(global, item *bool) bool {
	if global != nil && !*global {
		return false
	}

	if item != nil {
		return *item
	}

	if global != nil {
		return *global
	}

	return false
}

// Resolver turns a validated File into per-item EffectiveSettings.
type Resolver struct {
	file       *File
	pathRules  []PathRule
	valueRules []ValueRule
	sparkRules []SparkConfRule
}

// NewResolver validates f and compiles its rules once.
// Any validation error is returned as a ConfigError.
func NewResolver(f *File) (*Resolver, error) {
	diags := Validate(f)
	if diags.HasErrors() {
		return nil, apperrors.Config("", diags.Error().Error())
	}

	r := &Resolver{file: f}

	for _, e := range f.PathReplacement {
		re, err := regexp.Compile(e.Key)
		if err != nil {
			return nil, apperrors.Config(e.Key, fmt.Sprintf("invalid path_replacement pattern: %v", err))
		}

		r.pathRules = append(r.pathRules, PathRule{
			Pattern:     e.Key,
			Replacement: e.Value,
			re:          re,
			template:    ConvertReplacement(e.Value),
		})
	}

	for _, e := range f.ValueReplacements {
		if IsPatternRule(e.Key) {
			continue
		}

		r.valueRules = append(r.valueRules, ValueRule{Literal: e.Key, Replacement: e.Value})
	}

	for _, s := range f.SparkConfKeyReplacements {
		r.sparkRules = append(r.sparkRules, SparkConfRule{
			SearchKey:   s.SearchKey,
			TargetKey:   s.TargetKey,
			TargetValue: s.TargetValue,
		})
	}

	return r, nil
}

// File returns the underlying configuration.
func (r *Resolver) File() *File {
	return r.file
}

// Resolve returns the effective settings for job. Each call returns fresh
// slices so callers cannot affect one another.
func (r *Resolver) Resolve(job ExportJob) EffectiveSettings {
	return EffectiveSettings{
		Job:             job,
		ExportLibraries: EffectiveExportLibraries(r.file.GlobalSettings.ExportLibraries, job.ExportLibraries),
		PathRules:       append([]PathRule(nil), r.pathRules...),
		ValueRules:      append([]ValueRule(nil), r.valueRules...),
		SparkConfRules:  append([]SparkConfRule(nil), r.sparkRules...),
	}
}

// Jobs returns active items in configuration order, workflows first.
func (r *Resolver) Jobs() []ExportJob {
	var out []ExportJob

	for _, j := range r.file.Items() {
		if j.IsActive {
			out = append(out, j)
		}
	}

	return out
}

// Find returns the configured item with the given id, active or not.
func (r *Resolver) Find(id string) (ExportJob, bool) {
	for _, j := range r.file.Items() {
		if j.ID == id {
			return j, true
		}
	}

	return ExportJob{}, false
}

// ConvertReplacement turns a regex replacement written with backslash group
// references (\1, \g<name>) into a regexp.Expand template. A literal $ is escaped.
func ConvertReplacement(repl string) string {
	var b strings.Builder

	for i := 0; i < len(repl); i++ {
		c := repl[i]

		switch {
		case c == '$':
			b.WriteString("$$")
		case c == '\\' && i+1 < len(repl):
			next := repl[i+1]

			switch {
			case next >= '0' && next <= '9':
				j := i + 1
				for j < len(repl) && repl[j] >= '0' && repl[j] <= '9' {
					j++
				}

				b.WriteString("${" + repl[i+1:j] + "}")
				i = j - 1
			case next == 'g' && i+2 < len(repl) && repl[i+2] == '<':
				end := strings.IndexByte(repl[i+3:], '>')
				if end < 0 {
					b.WriteByte(c)
					continue
				}

				b.WriteString("${" + repl[i+3:i+3+end] + "}")
				i = i + 3 + end
			case next == '\\':
				b.WriteByte('\\')
				i++
			default:
				b.WriteByte(c)
			}
		default:
			b.WriteByte(c)
		}
	}

	return b.String()
}
