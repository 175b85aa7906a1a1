package iox

import (
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

type writeNopCloser struct {
	io.Writer
}

func (writeNopCloser) Close() error { return nil }

// WriteNopCloser returns a WriteCloser with a no-op Close method wrapping
// the provided Writer w.
func WriteNopCloser(w io.Writer) io.WriteCloser {
	return writeNopCloser{Writer: w}
}

// WriteFile writes the contents of the reader to path, creating parent directories as needed.
func WriteFile(path string, r io.Reader, perm os.FileMode) (err error) {
	var (
		dst *os.File
	)

	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WithStack(err)
	}

	if dst, err = os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, perm); err != nil {
		return errors.WithStack(err)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(dst.Close())
}
