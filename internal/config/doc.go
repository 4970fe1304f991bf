// Package config provides the export configuration schema, YAML and TOML
// loading, validation, and per-item resolution of effective settings.
//
// # Schema Overview
//
//	initial_variables:
//	  v_start_path: ./export
//	  v_resource_key_job_id_mapping_csv_file_path: '{v_start_path}/bind_scripts/resource_key_job_id_mapping.csv'
//	  v_backup_jobs_yaml_path: '{v_start_path}/backup_jobs_yaml/'
//	  v_log_level: INFO
//	path_replacement:            # ordered, first match wins
//	  ^/Workspace/Repos/[^/]+/: ../
//	  ^/Workspace/: ../
//	value_replacements:          # ordered literal substitutions
//	  ${: $${
//	spark_conf_key_replacements:
//	  - search_key: spark.hadoop.fs.azure.account.key.storage.dfs.core.windows.net
//	    target_key: spark.sql.shuffle.partitions
//	    target_value: '{existing_value}'
//	global_settings:
//	  export_libraries: true
//	workflows:
//	  - job_name: Nightly ETL
//	    job_id: 123456789
//	    is_existing: true
//	    is_active: true
//	    export_libraries: true
//	pipelines:
//	  - pipeline_name: Bronze
//	    pipeline_id: 0b1c-...
//	    is_active: true
//
// # Precedence
//
// export_libraries is resolved per item: an explicit global false always
// wins; otherwise the item value, then the global value, then false.
//
// The same document can be written as TOML; ordered tables keep the
// order in which their keys appear in the file.
package config
