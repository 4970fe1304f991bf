package substitute

import (
	"gopkg.in/yaml.v3"

	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
)

// defaultExistingValue stands in for {existing_value} when the target key is unset.
const defaultExistingValue = "auto"

// SparkConfChange records one applied rule.
type SparkConfChange struct {
	Locator   string
	SearchKey string
	TargetKey string
}

// SparkConf applies the rules to every spark_conf block of a resource:
// job_clusters[].new_cluster, tasks[].new_cluster and, for pipelines,
// clusters[]. Within one block only the first rule whose search_key is
// present applies: the search key is removed and the target key is set to
// the rendered template.
func SparkConf(res bundle.Resource, rules []config.SparkConfRule) []SparkConfChange {
	if len(rules) == 0 {
		return nil
	}

	var changes []SparkConfChange

	for _, block := range sparkConfBlocks(res) {
		if c, ok := applyFirst(block, rules); ok {
			changes = append(changes, c)
		}
	}

	return changes
}

var (
	jobConfPaths = []bundle.FieldPath{
		bundle.MustParsePath("job_clusters[].new_cluster.spark_conf"),
		bundle.MustParsePath("tasks[].new_cluster.spark_conf"),
	}
	pipelineConfPaths = []bundle.FieldPath{
		bundle.MustParsePath("clusters[].spark_conf"),
	}
)

func sparkConfBlocks(res bundle.Resource) []bundle.Field {
	paths := jobConfPaths
	if res.Kind == bundle.KindPipeline {
		paths = pipelineConfPaths
	}

	var out []bundle.Field

	for _, p := range paths {
		for _, f := range p.Nodes(res.Node) {
			if f.Node.Kind == yaml.MappingNode {
				out = append(out, f)
			}
		}
	}

	return out
}

func applyFirst(block bundle.Field, rules []config.SparkConfRule) (SparkConfChange, bool) {
	for _, r := range rules {
		if bundle.MappingValue(block.Node, r.SearchKey) == nil {
			continue
		}

		bundle.DeleteMappingKey(block.Node, r.SearchKey)

		existing := defaultExistingValue
		if v := bundle.MappingValue(block.Node, r.TargetKey); v != nil && v.Kind == yaml.ScalarNode {
			existing = v.Value
		}

		bundle.SetMappingValue(block.Node, r.TargetKey, bundle.StringNode(r.Render(existing)))

		return SparkConfChange{Locator: block.Locator, SearchKey: r.SearchKey, TargetKey: r.TargetKey}, true
	}

	return SparkConfChange{}, false
}
