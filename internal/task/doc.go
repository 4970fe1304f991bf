// Package task classifies bundle task entries by variant and extracts the
// path-bearing fields each variant exposes for rewriting.
//
// Variants are a lookup table, not a type hierarchy: every variant differs
// only in which field locators it exposes and which destination directory
// its artifacts belong to.
//
//	variant            fields                                      destination
//	notebook_task      notebook_task.notebook_path, libraries[].whl src/, libs/
//	spark_python_task  spark_python_task.python_file, libraries[].whl src/, libs/
//	python_wheel_task  libraries[].whl                             libs/
//	sql_task           sql_task.file.path                          src/
//	dlt_pipeline_task  libraries[].notebook.path, .file.path, .whl src/, libs/
//
// python_wheel_task.entry_point and package_name are package-internal
// identifiers and are never exposed.
package task
