// Package archive packs directories into gzipped tarballs, the format the fleet
// extracts with tar -xzf.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/james-lawrence/rbcbench/internal/x/logx"
)

// PackTree packs each directory including the directory itself, entries are relative
// to the directory's parent. extracting the archive recreates the directories.
func PackTree(dst io.Writer, dirs ...string) (err error) {
	var (
		gw *gzip.Writer
		tw *tar.Writer
	)

	gw = gzip.NewWriter(dst)
	tw = tar.NewWriter(gw)

	for _, dir := range dirs {
		dir = filepath.Clean(dir)
		root := filepath.Dir(dir)

		walker := func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			return write(root, path, tw, info)
		}

		if err = filepath.Walk(dir, walker); err != nil {
			return err
		}
	}

	if err = tw.Close(); err != nil {
		return logx.MaybeLog(errors.Wrap(err, "failed to flush archive"))
	}

	return logx.MaybeLog(errors.Wrap(gw.Close(), "failed to flush compression"))
}

// Bundle packs the directories into a tarball written to path.
func Bundle(path string, dirs ...string) (err error) {
	var (
		dst *os.File
	)

	if dst, err = os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644); err != nil {
		return errors.Wrapf(err, "failed to create bundle: %s", path)
	}
	defer dst.Close()

	if err = PackTree(dst, dirs...); err != nil {
		return errors.Wrapf(err, "failed to pack bundle: %s", path)
	}

	return errors.Wrapf(dst.Close(), "failed to close bundle: %s", path)
}

// Extract unpacks the tarball at path into the root directory.
func Extract(path, root string) (err error) {
	var (
		src *os.File
	)

	if src, err = os.Open(path); err != nil {
		return errors.Wrapf(err, "failed to open bundle: %s", path)
	}
	defer src.Close()

	return errors.Wrapf(Unpack(root, src), "failed to extract bundle: %s", path)
}

// Unpack unpacks the archive from the reader into the root directory.
func Unpack(root string, r io.Reader) (err error) {
	var (
		gzr *gzip.Reader
		tr  *tar.Reader
	)

	if root, err = filepath.Abs(root); err != nil {
		return errors.WithStack(err)
	}

	if gzr, err = gzip.NewReader(r); err != nil {
		return errors.Wrap(err, "failed to create gzip reader")
	}
	defer gzr.Close()

	tr = tar.NewReader(gzr)

	for {
		header, err := tr.Next()
		switch {
		case err == io.EOF:
			return nil
		case err != nil:
			return errors.WithStack(err)
		case header == nil:
			continue
		}

		target := filepath.Join(root, header.Name)
		if !strings.HasPrefix(target, filepath.Clean(root)+string(os.PathSeparator)) {
			return errors.Errorf("illegal path within archive: %s", header.Name)
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err = os.MkdirAll(target, os.FileMode(header.Mode)); err != nil {
				return errors.Wrapf(err, "failed to create directory: %s", target)
			}
		case tar.TypeReg:
			if err = extract(target, os.FileMode(header.Mode), tr); err != nil {
				return err
			}
		}
	}
}

func extract(target string, mode os.FileMode, r io.Reader) (err error) {
	var (
		dst *os.File
	)

	if err = os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, "failed to create directory: %s", filepath.Dir(target))
	}

	if dst, err = os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, mode); err != nil {
		return errors.Wrapf(err, "failed to open file: %s", target)
	}
	defer dst.Close()

	if _, err = io.Copy(dst, r); err != nil {
		return errors.Wrapf(err, "failed to copy contents: %s", target)
	}

	return errors.Wrapf(dst.Close(), "failed to close file: %s", target)
}

func write(root, path string, tw *tar.Writer, info os.FileInfo) (err error) {
	var (
		src    *os.File
		header *tar.Header
		target string
	)

	if target, err = filepath.Rel(root, path); err != nil {
		return errors.Wrapf(err, "failed to compute path: %s", path)
	}

	if header, err = tar.FileInfoHeader(info, path); err != nil {
		return errors.Wrap(err, "failed to created header")
	}
	header.Name = filepath.ToSlash(target)

	if err = tw.WriteHeader(header); err != nil {
		return errors.Wrapf(err, "failed to write header to tar archive: %s", path)
	}

	// directories have no content.
	if info.Mode().IsDir() {
		return nil
	}

	if src, err = os.Open(path); err != nil {
		return errors.Wrap(err, "failed to open path")
	}
	defer src.Close()

	if _, err = io.Copy(tw, src); err != nil {
		return errors.Wrapf(err, "failed to write contexts to tar archive: %s", path)
	}

	return nil
}
