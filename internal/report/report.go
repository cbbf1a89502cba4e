// Package report writes a YAML summary of a search run.
package report

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/harrison/grape/internal/filelock"
	"github.com/harrison/grape/internal/history"
)

// Marshal renders run as YAML.
func Marshal(run *history.Run) ([]byte, error) {
	data, err := yaml.Marshal(run)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report: %w", err)
	}
	return data, nil
}

// Write replaces the report at path with run. Concurrent grape processes
// writing the same path are serialised by a lock file next to it.
func Write(ctx context.Context, path string, run *history.Run) error {
	data, err := Marshal(run)
	if err != nil {
		return err
	}
	if err := filelock.LockAndWrite(ctx, path, data); err != nil {
		return fmt.Errorf("failed to write report %s: %w", path, err)
	}
	return nil
}
