// Package bundle models Databricks Asset Bundle resource files as ordered YAML
// trees so fields can be rewritten in place without reordering keys.
//
// # Field locators
//
// Field locators address scalars inside a task or resource node:
//   - Simple fields: "task_key"
//   - Nested fields: "notebook_task.notebook_path"
//   - Sequence elements: "libraries[]"
//   - Nested sequence fields: "libraries[].whl"
//
// Resolving a locator yields one Field per matching scalar, each labelled with
// a concrete locator such as "libraries[1].whl".
package bundle
