package helpers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty, ADC is used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

// ObjectAttrs are the attributes written with an uploaded object.
type ObjectAttrs struct {
	ContentType  string
	CacheControl string
	Metadata     map[string]string
}

// UploadObject streams r into bucket/objectPath and returns the object's public URL.
// A failed copy aborts the write so no partial object is left behind.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath string, attrs ObjectAttrs, r io.Reader) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = attrs.ContentType
	wc.CacheControl = attrs.CacheControl
	wc.Metadata = attrs.Metadata
	wc.ChunkSize = 0 // single request; pictures are small
	if _, err := io.Copy(wc, r); err != nil {
		cancel()
		_ = wc.Close()
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("upload %s: %w", objectPath, err)
	}
	return objectURL(bucket, objectPath), nil
}

func objectURL(bucket, objectPath string) string {
	u := url.URL{Scheme: "https", Host: "storage.googleapis.com", Path: "/" + bucket + "/" + objectPath}
	return u.String()
}

// ObjectPathFromURL extracts the object path from a URL built by UploadObject for bucket.
func ObjectPathFromURL(bucket, rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host != "storage.googleapis.com" {
		return "", false
	}
	objectPath, ok := strings.CutPrefix(u.Path, "/"+bucket+"/")
	if !ok || objectPath == "" {
		return "", false
	}
	return objectPath, true
}

// DeleteObject removes bucket/objectPath. A missing object is not an error.
func DeleteObject(ctx context.Context, client *storage.Client, bucket, objectPath string) error {
	err := client.Bucket(bucket).Object(objectPath).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("delete %s: %w", objectPath, err)
	}
	return nil
}
