package types

import "errors"

// Config selects and parameterizes the document store backend.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// AutoBackupPath, when non-empty, enables the auto-backup scheduler:
	// collection changes are coalesced and exported to this file.
	AutoBackupPath string `json:"auto_backup_path" yaml:"auto_backup_path"`

	// AutoBackupDebounceSeconds is the coalescing window for auto-backup.
	// Zero selects the default.
	AutoBackupDebounceSeconds int `json:"auto_backup_debounce_seconds" yaml:"auto_backup_debounce_seconds"`
}

// Supported backend names.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
	ErrDataDirEmpty   = errors.New("data directory must not be empty")
)

var knownBackends = map[string]bool{
	BackendFile:   true,
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed, returning a sentinel
// error from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	if c.DataDir == "" {
		return ErrDataDirEmpty
	}
	return nil
}
