package artifact

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// GCSStore keeps artifacts in a Cloud Storage bucket. The DoesNotExist
// precondition gives the same write-once guarantee as the S3 conditional
// put; encryption at rest is the bucket default.
type GCSStore struct {
	client *storage.Client
	bucket string
}

var _ interfaces.ArtifactStore = (*GCSStore)(nil)

func NewGCS(ctx context.Context, bucket string, options ...option.ClientOption) (*GCSStore, error) {
	if bucket == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "bucket is empty")
	}

	client, err := storage.NewClient(ctx, options...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create GCS client")
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
	}, nil
}

func (x *GCSStore) Put(ctx context.Context, runID types.RunID, name types.ArtifactName, r io.Reader) (*model.ArtifactRef, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read artifact data")
	}

	digest := sha256.Sum256(raw)
	key := model.ArtifactKey(runID, name)

	obj := x.client.Bucket(x.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.Metadata = map[string]string{
		"sha256": hex.EncodeToString(digest[:]),
	}

	if _, err := w.Write(raw); err != nil {
		_ = w.Close()
		return nil, goerr.Wrap(err, "failed to write artifact",
			goerr.V("bucket", x.bucket),
			goerr.V("key", key),
		)
	}
	if err := w.Close(); err != nil {
		var gErr *googleapi.Error
		if errors.As(err, &gErr) && gErr.Code == http.StatusPreconditionFailed {
			return nil, goerr.Wrap(types.ErrArtifactConflict, "artifact key already exists",
				goerr.V("runID", runID),
				goerr.V("name", name),
			)
		}
		return nil, goerr.Wrap(err, "failed to finalize artifact",
			goerr.V("bucket", x.bucket),
			goerr.V("key", key),
		)
	}

	return &model.ArtifactRef{
		RunID:     runID,
		Name:      name,
		Key:       key,
		Size:      int64(len(raw)),
		SHA256:    hex.EncodeToString(digest[:]),
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (x *GCSStore) Get(ctx context.Context, ref *model.ArtifactRef) (io.ReadCloser, error) {
	rc, err := x.client.Bucket(x.bucket).Object(ref.Key).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get artifact",
			goerr.V("bucket", x.bucket),
			goerr.V("key", ref.Key),
		)
	}

	return rc, nil
}
