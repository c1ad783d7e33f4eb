package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/codr1/themeforge/internal/export"
)

// FileSink writes artifacts into a directory, replacing any file with the
// same name.
type FileSink struct {
	dir string
}

func NewFileSink(dir string) (*FileSink, error) {
	if dir == "" {
		return nil, fmt.Errorf("export directory is required")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}
	return &FileSink{dir: dir}, nil
}

// Path returns where filename would be written. Directory components in
// filename are discarded.
func (s *FileSink) Path(filename string) string {
	return filepath.Join(s.dir, filepath.Base(filepath.Clean("/"+filename)))
}

func (s *FileSink) Deliver(ctx context.Context, artifact export.Artifact) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	target := s.Path(artifact.Filename)

	tmp, err := os.CreateTemp(s.dir, ".artifact-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(artifact.Content); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", artifact.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", artifact.Filename, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("move %s into place: %w", artifact.Filename, err)
	}
	return nil
}
