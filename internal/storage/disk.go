// Package storage persists uploaded binaries on local disk.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

var ErrInvalidRef = errors.New("invalid storage reference")

// Disk writes files under Dir and hands out references of the form
// URLPrefix + "/" + name.
type Disk struct {
	Dir       string
	URLPrefix string
}

func NewDisk(dir, urlPrefix string) (*Disk, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &Disk{Dir: dir, URLPrefix: strings.TrimRight(urlPrefix, "/")}, nil
}

// Store copies r into a new file named uuid+ext. The file is removed if the
// copy does not complete, including when ctx is cancelled mid-stream.
func (d *Disk) Store(ctx context.Context, r io.Reader, ext string) (string, error) {
	name := uuid.NewString() + strings.ToLower(ext)
	path := filepath.Join(d.Dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", name, err)
	}

	_, copyErr := io.Copy(f, ctxReader{ctx: ctx, r: r})
	closeErr := f.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("write %s: %w", name, err)
	}

	return d.URLPrefix + "/" + name, nil
}

// Delete removes the file behind ref. A missing file is not an error.
func (d *Disk) Delete(_ context.Context, ref string) error {
	path, err := d.Path(ref)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete %s: %w", ref, err)
	}
	return nil
}

// Path resolves ref to a file inside Dir.
func (d *Disk) Path(ref string) (string, error) {
	name, ok := strings.CutPrefix(ref, d.URLPrefix+"/")
	if !ok || name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", ErrInvalidRef
	}
	return filepath.Join(d.Dir, name), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
