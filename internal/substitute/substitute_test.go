package substitute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wf-exporter/internal/bundle"
	"wf-exporter/internal/config"
)

func TestReplaceLiteral(t *testing.T) {
	tests := []struct {
		name        string
		in          string
		literal     string
		replacement string
		expected    string
	}{
		{"escape var", "${var.x}/y", "${", "$${", "$${var.x}/y"},
		{"already escaped", "$${var.x}/y", "${", "$${", "$${var.x}/y"},
		{"mixed", "${a} $${b} ${c}", "${", "$${", "$${a} $${b} $${c}"},
		{"host", "abfss://c@mystorage.dfs.core.windows.net/p", "mystorage", "${var.sa}", "abfss://c@${var.sa}.dfs.core.windows.net/p"},
		{"replacement prefix of literal", "abfss://raw@prodstorage01.dfs.core.windows.net", "prodstorage01", "prodstorage", "abfss://raw@prodstorage.dfs.core.windows.net"},
		{"shorter mount", "/mnt/data_prod/x", "/mnt/data_prod", "/mnt/data", "/mnt/data/x"},
		{"no match", "plain", "x", "y", "plain"},
		{"empty literal", "plain", "", "y", "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReplaceLiteral(tt.in, tt.literal, tt.replacement)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, got, ReplaceLiteral(got, tt.literal, tt.replacement), "second pass must be a no-op")
		})
	}
}

func TestTextAppliesRulesInOrder(t *testing.T) {
	rules := []config.ValueRule{
		{Literal: "${", Replacement: "$${"},
		{Literal: "mystorage.dfs", Replacement: "${var.v_storage_account}.dfs"},
	}

	got := Text("${secrets/scope/key} mystorage.dfs.core.windows.net", rules)
	assert.Equal(t, "$${secrets/scope/key} ${var.v_storage_account}.dfs.core.windows.net", got)
	assert.Equal(t, got, Text(got, rules), "rules must not rewrite their own output")
}

func TestValuesSkipsKeys(t *testing.T) {
	doc, err := bundle.Parse([]byte(`resources:
  jobs:
    job:
      job_clusters:
        - new_cluster:
            spark_conf:
              fs.azure.account.key.mystorage.dfs.core.windows.net: "{{secrets/scope/mystorage}}"
      tasks:
        - task_key: a
          notebook_task:
            base_parameters:
              path: abfss://raw@mystorage.dfs.core.windows.net/in
      timeout_seconds: 0
      description: ~
`))
	require.NoError(t, err)

	changed := Values(doc.Root(), []config.ValueRule{{Literal: "mystorage", Replacement: "${var.sa}"}})
	assert.Equal(t, 2, changed)

	out, err := doc.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(out), "fs.azure.account.key.mystorage.dfs.core.windows.net")
	assert.Contains(t, string(out), "abfss://raw@${var.sa}.dfs.core.windows.net/in")
	assert.Contains(t, string(out), "{{secrets/scope/${var.sa}}}")
}

const clustersYAML = `resources:
  jobs:
    job:
      job_clusters:
        - job_cluster_key: main
          new_cluster:
            spark_conf:
              spark.hadoop.fs.azure.account.key.storage.dfs.core.windows.net: secret
              spark.sql.shuffle.partitions: "200"
        - job_cluster_key: other
          new_cluster:
            spark_conf:
              spark.databricks.delta.preview.enabled: "true"
      tasks:
        - task_key: t
          new_cluster:
            spark_conf:
              old.key: x
              extra.key: y
  pipelines:
    p:
      clusters:
        - label: default
          spark_conf:
            old.key: z
`

func TestSparkConf(t *testing.T) {
	doc, err := bundle.Parse([]byte(clustersYAML))
	require.NoError(t, err)

	rules := []config.SparkConfRule{
		{
			SearchKey:   "spark.hadoop.fs.azure.account.key.storage.dfs.core.windows.net",
			TargetKey:   "spark.sql.shuffle.partitions",
			TargetValue: "{existing_value}\nspark.hadoop.fs.azure.account.key.${var.sa}.dfs.core.windows.net ${var.secret}",
		},
		{SearchKey: "old.key", TargetKey: "new.key", TargetValue: "{existing_value}"},
		{SearchKey: "extra.key", TargetKey: "never.applied", TargetValue: "x"},
	}

	job, _ := doc.Resource(bundle.KindWorkflow, "job")
	changes := SparkConf(job, rules)
	require.Len(t, changes, 2)
	assert.Equal(t, "job_clusters[0].new_cluster.spark_conf", changes[0].Locator)
	assert.Equal(t, "tasks[0].new_cluster.spark_conf", changes[1].Locator)

	main := bundle.MustParsePath("job_clusters[].new_cluster.spark_conf").Nodes(job.Node)[0].Node
	assert.Equal(t, []string{"spark.sql.shuffle.partitions"}, bundle.MappingKeys(main))
	assert.Equal(t, "200\nspark.hadoop.fs.azure.account.key.${var.sa}.dfs.core.windows.net ${var.secret}",
		bundle.ScalarValue(main, "spark.sql.shuffle.partitions"))

	taskConf := bundle.MustParsePath("tasks[].new_cluster.spark_conf").Nodes(job.Node)[0].Node
	assert.Equal(t, []string{"extra.key", "new.key"}, bundle.MappingKeys(taskConf))
	assert.Equal(t, "auto", bundle.ScalarValue(taskConf, "new.key"))

	pipeline, _ := doc.Resource(bundle.KindPipeline, "p")
	require.Len(t, SparkConf(pipeline, rules), 1)

	assert.Empty(t, SparkConf(job, rules[:2]), "applied rules must not match again")
}
