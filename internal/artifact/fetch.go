package artifact

import (
	"context"
	"errors"
	"log/slog"

	"wf-exporter/internal/apperrors"
)

// Credential selects which token a fetch uses.
type Credential int

const (
	PrimaryCredential Credential = iota
	FallbackCredential
)

// String returns the credential name.
func (c Credential) String() string {
	switch c {
	case PrimaryCredential:
		return "primary"
	case FallbackCredential:
		return "fallback"
	default:
		return "unknown"
	}
}

// Fetcher downloads an artifact's source from the workspace.
type Fetcher interface {
	Fetch(ctx context.Context, workspacePath string, cred Credential) ([]byte, error)
}

// StaticFetcher serves artifacts from memory. Paths listed in Denied fail
// with permission denied for the primary credential.
type StaticFetcher struct {
	Files  map[string][]byte
	Denied map[string]bool

	Calls []Credential
}

// Fetch implements Fetcher.
func (s *StaticFetcher) Fetch(_ context.Context, p string, cred Credential) ([]byte, error) {
	s.Calls = append(s.Calls, cred)

	if cred == PrimaryCredential && s.Denied[p] {
		return nil, apperrors.PermissionDenied("workspace.export", p, nil)
	}

	data, ok := s.Files[p]
	if !ok {
		return nil, apperrors.ArtifactNotFound(p, "not in workspace")
	}

	return data, nil
}

// fetchWithRetry fetches p, retrying once with the fallback credential when
// the primary credential is rejected. Any final failure becomes ArtifactNotFound.
func fetchWithRetry(ctx context.Context, f Fetcher, p string, logger *slog.Logger) ([]byte, error) {
	data, err := f.Fetch(ctx, p, PrimaryCredential)
	if errors.Is(err, apperrors.ErrPermissionDenied) {
		logger.Warn("artifact fetch denied, retrying with fallback credential", "path", p)
		data, err = f.Fetch(ctx, p, FallbackCredential)
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrArtifactNotFound) {
			return nil, err
		}

		return nil, apperrors.ArtifactNotFoundCause(p, err)
	}

	return data, nil
}
