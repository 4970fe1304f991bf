// Package rewrite computes destination paths for located artifacts and
// rewrites the referencing YAML fields to bundle-relative paths.
//
// The path computation is pure: ApplyRules maps a workspace path through the
// first matching path rule, BundlePath re-roots the result under the bundle
// root, and RelativeTo expresses it from the directory of the YAML file being
// edited. Engine applies those functions to the designated field locators
// only.
package rewrite
