package materialize

import (
	"errors"
	"fmt"
)

// ErrFilesystem matches every FilesystemError
var ErrFilesystem = errors.New("filesystem error")

// FilesystemError reports a failed directory creation or file write
type FilesystemError struct {
	Op   string
	Path string
	Err  error
}

func (e *FilesystemError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FilesystemError) Unwrap() error { return e.Err }

func (e *FilesystemError) Is(target error) bool {
	return target == ErrFilesystem
}

// EntryError ties a failure to the manifest entry that caused it
type EntryError struct {
	RelPath string
	Err     error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v", e.RelPath, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }
