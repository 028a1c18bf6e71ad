package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/dmorgan81/headshots/internal/log"
)

type UploadParams struct {
	Name        string
	Data        []byte
	ContentType string
	Metadata    map[string]string
}

type Uploader interface {
	Upload(context.Context, UploadParams) error
	URL(name string) string
}

// FileUploader writes objects below Dir, creating intermediate directories.
type FileUploader struct {
	Dir string
}

func (u *FileUploader) Upload(ctx context.Context, params UploadParams) error {
	path := u.URL(params.Name)
	log.FromContextOrDiscard(ctx).WithGroup("file").Info("writing", "file", path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, params.Data, 0o600)
}

func (u *FileUploader) URL(name string) string {
	return filepath.Join(u.Dir, filepath.FromSlash(name))
}
