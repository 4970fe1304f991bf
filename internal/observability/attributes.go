// Package observability records export run metrics through OpenTelemetry and
// writes them as a Prometheus textfile.
package observability

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys
const (
	attrKind    = "kind"
	attrOutcome = "outcome"
)

// Item outcomes.
const (
	OutcomeSaved   = "saved"
	OutcomeFailed  = "failed"
	OutcomeSkipped = "skipped"
)

func kindAttr(kind string) attribute.KeyValue {
	return attribute.String(attrKind, kind)
}

func outcomeAttr(outcome string) attribute.KeyValue {
	return attribute.String(attrOutcome, outcome)
}
