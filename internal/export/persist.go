package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wf-exporter/internal/apperrors"
)

// File permission constants.
const (
	dirPerm  = 0o755
	filePerm = 0o644
)

// mappingHeader is the header row of the resource key to job id CSV.
var mappingHeader = []string{"job_key", "job_id"}

// backupFile copies src into dir under its base name before it is rewritten.
func backupFile(src, dir string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return apperrors.OutputUnwritable("backup", src, err)
	}

	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return apperrors.OutputUnwritable("mkdir", dir, err)
	}

	dst := filepath.Join(dir, filepath.Base(src))
	if err := os.WriteFile(dst, data, filePerm); err != nil {
		return apperrors.OutputUnwritable("backup", dst, err)
	}

	return nil
}

// writeMapping writes the resource key to job id rows as CSV.
func writeMapping(path string, rows [][2]string) error {
	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return apperrors.OutputUnwritable("mkdir", filepath.Dir(path), err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, filePerm)
	if err != nil {
		return apperrors.OutputUnwritable("create", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)

	if err := w.Write(mappingHeader); err != nil {
		return apperrors.OutputUnwritable("write", path, err)
	}

	for _, row := range rows {
		if err := w.Write(row[:]); err != nil {
			return apperrors.OutputUnwritable("write", path, err)
		}
	}

	w.Flush()

	if err := w.Error(); err != nil {
		return apperrors.OutputUnwritable("write", path, err)
	}

	return f.Close()
}

// ReadMapping reads a mapping CSV written by a previous run.
func ReadMapping(path string) ([][2]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse mapping %s: %w", path, err)
	}

	var rows [][2]string

	for i, rec := range records {
		if i == 0 || len(rec) != 2 {
			continue
		}

		rows = append(rows, [2]string{rec[0], rec[1]})
	}

	return rows, nil
}

// writeSummary writes the run summary as YAML.
func writeSummary(path string, s *Summary) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal run summary: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), dirPerm); err != nil {
		return apperrors.OutputUnwritable("mkdir", filepath.Dir(path), err)
	}

	if err := os.WriteFile(path, data, filePerm); err != nil {
		return apperrors.OutputUnwritable("write", path, err)
	}

	return nil
}
