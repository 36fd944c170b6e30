package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// LocalStore writes profile pictures under Dir and returns paths under PublicPath,
// which the router serves statically.
type LocalStore struct {
	Dir        string
	PublicPath string
}

func NewLocalStore(dir, publicPath string) (*LocalStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Dir: dir, PublicPath: publicPath}, nil
}

func (s *LocalStore) Save(ctx context.Context, userID string, r io.Reader, ext, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	name := fmt.Sprintf("profilePicture-%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	f, err := os.OpenFile(filepath.Join(s.Dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path.Join(s.PublicPath, name), nil
}

// Remove deletes a picture saved by this store. Paths outside PublicPath or
// naming a nested entry are not ours and are left alone.
func (s *LocalStore) Remove(ctx context.Context, ref string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	name, ok := strings.CutPrefix(ref, strings.TrimSuffix(s.PublicPath, "/")+"/")
	if !ok || name == "" || name != path.Base(name) || name == ".." {
		return nil
	}
	if err := os.Remove(filepath.Join(s.Dir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
