package infra

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/Vovarama1992/voxstudio/internal/ports"
)

// FileAssetStore writes generated media under the public directory that
// the HTTP server exposes as static files.
type FileAssetStore struct {
	root string
}

func NewFileAssetStore(publicDir string) ports.AssetStore {
	return &FileAssetStore{root: publicDir}
}

func (s *FileAssetStore) Save(ctx context.Context, dir, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name {
		return "", fmt.Errorf("bad asset name %q", name)
	}

	full := filepath.Join(s.root, filepath.FromSlash(dir))
	if err := os.MkdirAll(full, 0o755); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", full, err)
	}
	if err := os.WriteFile(filepath.Join(full, name), data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}
	return "/" + path.Join(dir, name), nil
}
