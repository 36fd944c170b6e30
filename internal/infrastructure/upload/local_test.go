package upload_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/oksasatya/user-management-api/internal/infrastructure/upload"
)

func TestLocalStoreSave(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s, err := upload.NewLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	p, err := s.Save(context.Background(), "user-1", strings.NewReader("img-bytes"), ".png", "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if !strings.HasPrefix(p, "/uploads/profilePicture-") || !strings.HasSuffix(p, ".png") {
		t.Fatalf("unexpected public path %q", p)
	}

	b, err := os.ReadFile(filepath.Join(dir, filepath.Base(p)))
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(b) != "img-bytes" {
		t.Fatalf("content mismatch: %q", b)
	}

	other, _ := s.Save(context.Background(), "user-1", strings.NewReader("x"), ".png", "image/png")
	if other == p {
		t.Fatalf("names must be unique")
	}
}

func TestLocalStoreRemove(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "uploads")
	s, err := upload.NewLocalStore(dir, "/uploads")
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	p, err := s.Save(ctx, "user-1", strings.NewReader("img"), ".png", "image/png")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := s.Remove(ctx, p); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, filepath.Base(p))); !os.IsNotExist(err) {
		t.Fatalf("file still present: %v", err)
	}
	if err := s.Remove(ctx, p); err != nil {
		t.Fatalf("removing twice should be a no-op: %v", err)
	}

	outside := filepath.Join(root, "keep.txt")
	if err := os.WriteFile(outside, []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	for _, ref := range []string{"", "/uploads/../keep.txt", "/other/keep.txt", "https://storage.googleapis.com/b/keep.txt"} {
		if err := s.Remove(ctx, ref); err != nil {
			t.Fatalf("remove %q: %v", ref, err)
		}
	}
	if _, err := os.Stat(outside); err != nil {
		t.Fatalf("file outside the store was touched: %v", err)
	}
}
