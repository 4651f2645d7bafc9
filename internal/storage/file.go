package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/mrz1836/evmwallet/internal/fileutil"
)

const filePermissions = 0o600

// File is a Store backed by one JSON document.
type File struct {
	*values
	path string
}

// OpenFile loads path, or starts empty when it does not exist yet.
func OpenFile(path string) (*File, error) {
	data := make(map[string]string)

	raw, err := os.ReadFile(path) //nolint:gosec // path comes from wallet config
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, wrapStorage(err, "reading %s", path)
	case len(raw) > 0:
		if err := json.Unmarshal(raw, &data); err != nil {
			return nil, wrapStorage(err, "decoding %s", path)
		}
	}

	return &File{values: newValues(data), path: path}, nil
}

// Path returns the backing file path.
func (f *File) Path() string {
	return f.path
}

// Save writes all values atomically.
func (f *File) Save(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(f.snapshot(), "", "  ")
	if err != nil {
		return wrapStorage(err, "encoding values")
	}
	if err := fileutil.WriteAtomic(f.path, data, filePermissions); err != nil {
		return wrapStorage(err, "writing %s", f.path)
	}
	return nil
}

func wrapStorage(err error, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %w", ErrStorage, fmt.Sprintf(format, args...), err)
}
