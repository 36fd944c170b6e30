package upload

import (
	"context"
	"errors"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/oksasatya/user-management-api/pkg/helpers"
)

// GCSStore uploads profile pictures to a bucket and returns their public URL.
type GCSStore struct {
	Client *storage.Client
	Bucket string
}

func NewGCSStore(client *storage.Client, bucket string) (*GCSStore, error) {
	if client == nil || bucket == "" {
		return nil, errors.New("gcs not configured")
	}
	return &GCSStore{Client: client, Bucket: bucket}, nil
}

func (s *GCSStore) Save(ctx context.Context, userID string, r io.Reader, ext, contentType string) (string, error) {
	objectPath := path.Join("avatars", userID, uuid.NewString()+ext)
	return helpers.UploadObject(ctx, s.Client, s.Bucket, objectPath, helpers.ObjectAttrs{
		ContentType:  contentType,
		CacheControl: "public, max-age=86400",
		Metadata:     map[string]string{"user_id": userID},
	}, r)
}

// Remove deletes an object previously returned by Save. URLs for other buckets are ignored.
func (s *GCSStore) Remove(ctx context.Context, ref string) error {
	objectPath, ok := helpers.ObjectPathFromURL(s.Bucket, ref)
	if !ok {
		return nil
	}
	return helpers.DeleteObject(ctx, s.Client, s.Bucket, objectPath)
}
