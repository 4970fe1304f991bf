// Package export drives the per-item export pipeline.
//
// One Run is created per configured job or pipeline. A run scans the bundle
// generate output for the item's resource document, locates every artifact
// its tasks reference, rewrites the path fields, applies value and spark conf
// substitutions and saves the document. Runs move through a fixed sequence
// of states:
//
//	Pending -> Scanning -> Rewriting -> Substituting -> Saved
//	    \________\___________\______________\__________> Failed
//
// Failures local to one item are recorded on its Result and never abort the
// batch. Only configuration errors, an unwritable output location and
// cancellation stop the Orchestrator.
package export
