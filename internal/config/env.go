package config

import (
	"os"
	"strings"
)

// Environment variables consulted by ApplyEnv.
const (
	EnvStartPath     = "WF_EXPORTER_START_PATH"
	EnvLogLevel      = "WF_EXPORTER_LOG_LEVEL"
	EnvHost          = "DATABRICKS_HOST"
	EnvToken         = "DATABRICKS_TOKEN"
	EnvFallbackToken = "DATABRICKS_FALLBACK_TOKEN"
)

// GetEnv returns the environment variable value or a default.
func GetEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}

	return defaultValue
}

// ApplyEnv overlays environment settings onto f. Relocating the start path
// re-derives the locations that were derived from it.
func ApplyEnv(f *File) {
	if start := GetEnv(EnvStartPath, ""); start != "" && start != f.InitialVariables.StartPath {
		old := strings.TrimRight(f.InitialVariables.StartPath, "/")
		iv := &f.InitialVariables
		iv.StartPath = start

		for _, p := range []*string{&iv.MappingCSVPath, &iv.BackupPath, &iv.SummaryPath, &iv.MetricsPath} {
			if old != "" && strings.HasPrefix(*p, old+"/") {
				*p = strings.TrimRight(start, "/") + strings.TrimPrefix(*p, old)
			}
		}
	}

	f.InitialVariables.LogLevel = GetEnv(EnvLogLevel, f.InitialVariables.LogLevel)

	f.Credentials = Credentials{
		Host:          strings.TrimRight(GetEnv(EnvHost, f.InitialVariables.DatabricksHost), "/"),
		Token:         GetEnv(EnvToken, ""),
		FallbackToken: GetEnv(EnvFallbackToken, ""),
	}
}
