// Package workspace is a minimal client for the workspace REST API.
//
// It implements artifact.Fetcher for notebook, file and volume downloads and
// provides the metadata the exporter needs about an item: the original
// workspace paths of its tasks and its direct permissions. Requests are rate
// limited and authentication failures map to apperrors.ErrPermissionDenied so
// that callers can retry with a fallback credential.
package workspace
