// Package storage holds the video blob backends. Local disk is the default
// target for assembled uploads and range streaming; S3 carries the presigned
// multipart variant for clients that upload parts directly.
package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"nazca360/internal/pkg/errs"
)

// LocalStore serves assembled video files from a single directory.
type LocalStore struct {
	dir string
}

func NewLocalStore(dir string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errs.Wrap(err, "failed to create video directory")
	}
	return &LocalStore{dir: dir}, nil
}

// Open returns a seekable handle and the byte size for a stored object.
// The key is confined to the store directory.
func (s *LocalStore) Open(key string) (io.ReadSeekCloser, int64, error) {
	path, err := s.resolve(key)
	if err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, 0, errs.Mark(err, errs.ErrNotFound)
		}
		return nil, 0, errs.Wrap(err, "failed to open video file")
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, errs.Wrap(err, "failed to stat video file")
	}
	return f, info.Size(), nil
}

// Put moves an assembled file into the store under key. Rename first, copy
// across filesystems as the fallback.
func (s *LocalStore) Put(key, srcPath string) error {
	dst, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errs.Wrap(err, "failed to create destination directory")
	}

	if err := os.Rename(srcPath, dst); err == nil {
		return nil
	}

	src, err := os.Open(srcPath)
	if err != nil {
		return errs.Wrap(err, "failed to open assembled file")
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errs.Wrap(err, "failed to create destination file")
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		os.Remove(dst)
		return errs.Wrap(err, "failed to copy assembled file")
	}
	if err := out.Close(); err != nil {
		return errs.Wrap(err, "failed to flush destination file")
	}
	os.Remove(srcPath)
	return nil
}

func (s *LocalStore) Delete(key string) error {
	path, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errs.Wrap(err, "failed to delete video file")
	}
	return nil
}

func (s *LocalStore) resolve(key string) (string, error) {
	clean := filepath.Clean("/" + key)
	if clean == "/" || strings.Contains(key, "..") {
		return "", errs.Newf("invalid storage key: %q", key)
	}
	return filepath.Join(s.dir, clean), nil
}
