package artifact

import (
	"bytes"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"wf-exporter/internal/apperrors"
)

const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// Relocator places located artifacts at their destinations under an export root.
type Relocator struct {
	root   string
	logger *slog.Logger

	// moved maps an original relative path to where it was moved.
	moved map[string]string
}

// NewRelocator creates a Relocator for root.
func NewRelocator(root string, logger *slog.Logger) *Relocator {
	if logger == nil {
		logger = slog.Default()
	}

	return &Relocator{root: root, logger: logger, moved: map[string]string{}}
}

// Place moves or writes rec to rec.Destination and reports whether the
// tree changed. A file already moved by an earlier record is copied from
// its new location instead.
func (r *Relocator) Place(rec *Record) (bool, error) {
	if rec.Destination == "" {
		return false, nil
	}

	dst := r.abs(rec.Destination)

	if rec.Fetched() {
		return r.write(dst, rec.Content)
	}

	src := rec.LocalPath
	if src == "" || src == rec.Destination {
		return false, nil
	}

	if to, ok := r.moved[src]; ok {
		if to == rec.Destination {
			return false, nil
		}

		data, err := os.ReadFile(r.abs(to))
		if err != nil {
			return false, apperrors.OutputUnwritable("read", to, err)
		}

		return r.write(dst, data)
	}

	data, err := os.ReadFile(r.abs(src))
	if err != nil {
		return false, apperrors.OutputUnwritable("read", src, err)
	}

	if same, err := r.identical(dst, data); err != nil {
		return false, err
	} else if same {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return false, apperrors.OutputUnwritable("mkdir", filepath.Dir(dst), err)
	}

	if err := os.Rename(r.abs(src), dst); err != nil {
		return false, apperrors.OutputUnwritable("move", src, err)
	}

	r.moved[src] = rec.Destination
	r.logger.Debug("artifact moved", "from", src, "to", rec.Destination)
	rec.LocalPath = rec.Destination

	return true, nil
}

func (r *Relocator) write(dst string, data []byte) (bool, error) {
	if same, err := r.identical(dst, data); err != nil {
		return false, err
	} else if same {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dst), dirPerm); err != nil {
		return false, apperrors.OutputUnwritable("mkdir", filepath.Dir(dst), err)
	}

	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return false, apperrors.OutputUnwritable("write", dst, err)
	}

	return true, nil
}

func (r *Relocator) identical(dst string, data []byte) (bool, error) {
	existing, err := os.ReadFile(dst)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}

	if err != nil {
		return false, apperrors.OutputUnwritable("read", dst, err)
	}

	return bytes.Equal(existing, data), nil
}

func (r *Relocator) abs(rel string) string {
	return filepath.Join(r.root, filepath.FromSlash(rel))
}
