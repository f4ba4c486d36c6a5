package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const productImageDir = "products"

var extensionsByType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

// LocalImageStore writes product images under root and serves them from
// baseURL, which the HTTP server maps onto the same directory.
type LocalImageStore struct {
	root    string
	baseURL string
}

func NewLocalImageStore(root, baseURL string) *LocalImageStore {
	return &LocalImageStore{
		root:    filepath.Clean(root),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *LocalImageStore) Save(_ context.Context, filename, contentType string, r io.Reader) (string, error) {
	extension := strings.ToLower(filepath.Ext(filename))
	if extension == "" || extension == ".jpeg" {
		if fromType, ok := extensionsByType[strings.ToLower(contentType)]; ok {
			extension = fromType
		}
	}
	if extension == "" {
		return "", fmt.Errorf("image file extension is required")
	}

	name := uuid.NewString() + extension

	dir := filepath.Join(s.root, productImageDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[UPLOAD] failed to create directory %s: %v", dir, err)
		return "", err
	}

	fullPath := filepath.Join(dir, name)
	out, err := os.Create(fullPath)
	if err != nil {
		log.Printf("[UPLOAD] failed to create file %s: %v", fullPath, err)
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, r); err != nil {
		log.Printf("[UPLOAD] failed to save file %s: %v", fullPath, err)
		_ = os.Remove(fullPath)
		return "", err
	}

	return s.baseURL + "/" + productImageDir + "/" + name, nil
}

// Delete removes a previously saved image. Unknown or already removed files
// are not an error; anything outside the image directory is refused.
func (s *LocalImageStore) Delete(_ context.Context, url string) error {
	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		return nil
	}
	if !strings.HasPrefix(trimmed, s.baseURL+"/") {
		return fmt.Errorf("refusing to delete foreign url: %s", url)
	}

	cleanRel := path.Clean("/" + strings.TrimPrefix(trimmed, s.baseURL+"/"))
	cleanRel = strings.TrimPrefix(cleanRel, "/")
	if !strings.HasPrefix(cleanRel, productImageDir+"/") {
		return fmt.Errorf("refusing to delete non-upload path: %s", url)
	}

	target := filepath.Clean(filepath.Join(s.root, filepath.FromSlash(cleanRel)))
	if !strings.HasPrefix(target, s.root+string(os.PathSeparator)) {
		return fmt.Errorf("refusing to delete path outside upload root: %s", url)
	}

	if err := os.Remove(target); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return nil
}
