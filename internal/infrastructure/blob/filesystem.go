package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"time"
)

// Filesystem stores blobs as files under a root directory.
// The content type is derived from the key extension on read.
type Filesystem struct {
	root string
}

// NewFilesystem creates the root directory when missing.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

func (s *Filesystem) pathFor(key string) (string, string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", "", err
	}
	return k, filepath.Join(s.root, filepath.FromSlash(k)), nil
}

func (s *Filesystem) Put(ctx context.Context, key string, r io.Reader, contentType string) (Info, error) {
	k, dataPath, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(dataPath); err == nil {
		return Info{}, fmt.Errorf("blob %s already exists", k)
	}
	if err := os.MkdirAll(filepath.Dir(dataPath), 0o755); err != nil {
		return Info{}, err
	}

	// 先写临时文件再原子重命名
	tmp, err := os.CreateTemp(filepath.Dir(dataPath), ".tmp-*")
	if err != nil {
		return Info{}, err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	size, err := io.Copy(tmp, r)
	if err != nil {
		_ = tmp.Close()
		return Info{}, err
	}
	if err := tmp.Close(); err != nil {
		return Info{}, err
	}
	if err := os.Rename(tmp.Name(), dataPath); err != nil {
		return Info{}, err
	}

	return Info{
		Key:          k,
		Size:         size,
		ContentType:  contentType,
		LastModified: time.Now().UTC(),
		URL:          "/uploads/" + k,
	}, nil
}

func (s *Filesystem) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	k, dataPath, err := s.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}
	file, err := os.Open(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Info{}, nil, ErrNotFound
	}
	if err != nil {
		return Info{}, nil, err
	}
	st, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return Info{}, nil, err
	}
	info := Info{
		Key:          k,
		Size:         st.Size(),
		ContentType:  mime.TypeByExtension(filepath.Ext(k)),
		LastModified: st.ModTime().UTC(),
		URL:          "/uploads/" + k,
	}
	return info, file, nil
}

func (s *Filesystem) Delete(ctx context.Context, key string) error {
	_, dataPath, err := s.pathFor(key)
	if err != nil {
		return err
	}
	err = os.Remove(dataPath)
	if errors.Is(err, fs.ErrNotExist) {
		return ErrNotFound
	}
	return err
}
