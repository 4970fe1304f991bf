package workspace

import (
	"context"
	"net/url"
	"strings"

	"wf-exporter/internal/artifact"
)

var _ artifact.Fetcher = (*Client)(nil)

// Fetch downloads an artifact's source. Volume paths use the files API,
// everything else the workspace export API in SOURCE format.
func (c *Client) Fetch(ctx context.Context, p string, cred artifact.Credential) ([]byte, error) {
	if vol, ok := volumePath(p); ok {
		return c.get(ctx, "files.download", "/api/2.0/fs/files"+escapePath(vol), nil, cred)
	}

	q := url.Values{}
	q.Set("path", workspacePath(p))
	q.Set("format", "SOURCE")
	q.Set("direct_download", "true")

	return c.get(ctx, "workspace.export", "/api/2.0/workspace/export", q, cred)
}

// volumePath normalizes /Volume/ and /Volumes/ paths.
func volumePath(p string) (string, bool) {
	switch {
	case strings.HasPrefix(p, "/Volumes/"):
		return p, true
	case strings.HasPrefix(p, "/Volume/"):
		return "/Volumes/" + strings.TrimPrefix(p, "/Volume/"), true
	default:
		return "", false
	}
}

// workspacePath strips the /Workspace mount prefix the export API does not need.
func workspacePath(p string) string {
	if rest, ok := strings.CutPrefix(p, "/Workspace/"); ok {
		return "/" + rest
	}

	return p
}

func escapePath(p string) string {
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}

	return strings.Join(segs, "/")
}
