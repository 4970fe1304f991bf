// Package diagnostic provides structured warnings, errors, and informational
// findings collected while validating configuration and exporting jobs.
//
// Key capabilities:
//   - Configuration problems reported all at once, each with a stable code
//   - Per-job warnings (unresolved artifacts, unknown task variants, unmatched path rules)
//   - "Did you mean" suggestions for artifacts that could not be located
package diagnostic
