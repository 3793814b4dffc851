// Package storage persists the working policy between sessions. One JSON
// document at one path, no versioning: anything unreadable is treated as if
// nothing had been saved.
package storage

import (
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"ratecast/internal/domain"
)

// FileStore reads and writes the single persisted policy document.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore builds a FileStore at path. A nil logger is replaced with a
// no-op.
func NewFileStore(path string, logger *zap.Logger) *FileStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStore{path: path, logger: logger}
}

// DefaultPath places the policy document under the user config directory,
// falling back to the working directory when none is known.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "ratecast-policy.json"
	}
	return filepath.Join(dir, "ratecast", "policy.json")
}

// Load returns the persisted policy. ok is false when no usable policy
// exists: missing file, unreadable file, corrupt or empty content. None of
// those are errors to the caller; corruption is logged and forgotten.
func (f *FileStore) Load() (domain.Policy, bool) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("could not read persisted policy",
				zap.String("path", f.path), zap.Error(err))
		}
		return nil, false
	}

	var policy domain.Policy
	if err := json.Unmarshal(data, &policy); err != nil {
		f.logger.Warn("persisted policy is corrupt, starting fresh",
			zap.String("path", f.path), zap.Error(err))
		return nil, false
	}
	if len(policy) == 0 {
		return nil, false
	}
	return policy, true
}

// Save writes the policy via a temp file and rename so a crash mid-write
// cannot corrupt the previous document.
func (f *FileStore) Save(policy domain.Policy) error {
	data, err := json.MarshalIndent(policy, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode policy")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errors.Wrap(err, "create state directory")
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return errors.Wrap(err, "write policy")
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return errors.Wrap(err, "commit policy")
	}
	return nil
}
