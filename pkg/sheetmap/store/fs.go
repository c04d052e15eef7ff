package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Filesystem stores documents as files under a root directory. Size and
// modification time come from the file itself; content type, metadata and
// the ETag live in a `<name>.meta` JSON file beside it.
type Filesystem struct {
	root string
}

// NewFilesystem returns a store rooted at root, creating it if needed.
func NewFilesystem(root string) (*Filesystem, error) {
	if root == "" {
		root = "./sheetmap-data"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Filesystem{root: root}, nil
}

func (s *Filesystem) Driver() Driver { return DriverFilesystem }

// sidecar is the JSON form of what the file system cannot record.
type sidecar struct {
	ContentType string            `json:"content_type,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
	ETag        string            `json:"etag"`
}

// path maps key to a file under the root. Keys are slash separated and must
// stay inside the root.
func (s *Filesystem) path(key string) (string, error) {
	local := filepath.FromSlash(key)
	if strings.TrimSpace(key) == "" || !filepath.IsLocal(local) {
		return "", fmt.Errorf("invalid document key %q", key)
	}
	return filepath.Join(s.root, local), nil
}

// Put writes the document through a temporary file so readers never see a
// partial document.
func (s *Filesystem) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	path, err := s.path(key)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return Info{}, err
	}

	etag, err := writeFile(path, r)
	if err != nil {
		return Info{}, err
	}
	meta, err := json.Marshal(sidecar{
		ContentType: opts.ContentType,
		Metadata:    opts.Metadata,
		ETag:        etag,
	})
	if err != nil {
		return Info{}, err
	}
	if err := os.WriteFile(path+".meta", meta, 0o644); err != nil {
		return Info{}, err
	}
	return s.Head(context.Background(), key)
}

func writeFile(path string, r io.Reader) (etag string, err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".put-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	h := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, h), r); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func (s *Filesystem) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return Info{}, nil, err
	}
	path, _ := s.path(key)
	f, err := os.Open(path)
	if err != nil {
		return Info{}, nil, s.missing(key, err)
	}
	return info, f, nil
}

func (s *Filesystem) Head(_ context.Context, key string) (Info, error) {
	path, err := s.path(key)
	if err != nil {
		return Info{}, err
	}
	st, err := os.Stat(path)
	if err != nil {
		return Info{}, s.missing(key, err)
	}

	var meta sidecar
	raw, err := os.ReadFile(path + ".meta")
	switch {
	case errors.Is(err, fs.ErrNotExist):
		// a document copied in by hand has no sidecar
	case err != nil:
		return Info{}, err
	default:
		if err := json.Unmarshal(raw, &meta); err != nil {
			return Info{}, fmt.Errorf("document %s: corrupt sidecar: %w", key, err)
		}
	}
	return Info{
		Key:          key,
		Size:         st.Size(),
		ContentType:  meta.ContentType,
		ETag:         meta.ETag,
		Metadata:     meta.Metadata,
		LastModified: st.ModTime().UTC(),
	}, nil
}

func (s *Filesystem) missing(key string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("document %s: %w", key, ErrNotFound)
	}
	return err
}
