package artifact

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// S3Store keeps artifacts in an S3 bucket. Every object is written with
// SSE and a conditional put so that a key is never overwritten. The store
// never touches ACLs or presigning: objects stay private to the caller's
// credentials.
type S3Store struct {
	api    *s3.Client
	bucket string
}

var _ interfaces.ArtifactStore = (*S3Store)(nil)

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for S3-compatible test endpoints
	AccessKey string
	SecretKey string
}

func NewS3(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, goerr.Wrap(types.ErrInvalidOption, "bucket is empty")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithHTTPClient(&http.Client{Timeout: 30 * time.Second}),
	}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
			),
		)
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load AWS config")
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		api:    api,
		bucket: cfg.Bucket,
	}, nil
}

func (x *S3Store) Put(ctx context.Context, runID types.RunID, name types.ArtifactName, r io.Reader) (*model.ArtifactRef, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read artifact data")
	}

	digest := sha256.Sum256(raw)
	key := model.ArtifactKey(runID, name)

	_, err = x.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(x.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(raw),
		ContentLength:        aws.Int64(int64(len(raw))),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
		// Conditional write: the audit trail must never be replaced.
		IfNoneMatch: aws.String("*"),
		Metadata: map[string]string{
			"sha256": hex.EncodeToString(digest[:]),
		},
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) && apiErr.ErrorCode() == "PreconditionFailed" {
			return nil, goerr.Wrap(types.ErrArtifactConflict, "artifact key already exists",
				goerr.V("runID", runID),
				goerr.V("name", name),
			)
		}
		return nil, goerr.Wrap(err, "failed to put artifact",
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

func (x *S3Store) Get(ctx context.Context, ref *model.ArtifactRef) (io.ReadCloser, error) {
	out, err := x.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(x.bucket),
		Key:    aws.String(ref.Key),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get artifact",
			goerr.V("bucket", x.bucket),
			goerr.V("key", ref.Key),
		)
	}

	return out.Body, nil
}
