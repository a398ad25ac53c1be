package interfaces

//go:generate moq -out ../mock/infra.go -pkg mock . ArtifactStore SourceFetcher TextCompleter Publisher BigQuery

import (
	"context"
	"io"
	"net/url"

	"cloud.google.com/go/bigquery"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
)

// ArtifactStore persists pipeline blobs. Writes are write-once per
// (runID, name): a second Put with the same pair fails with
// types.ErrArtifactConflict and never overwrites.
type ArtifactStore interface {
	Put(ctx context.Context, runID types.RunID, name types.ArtifactName, r io.Reader) (*model.ArtifactRef, error)
	Get(ctx context.Context, ref *model.ArtifactRef) (io.ReadCloser, error)
}

type GetArchiveURLInput struct {
	Owner     string
	Repo      string
	CommitID  types.CommitID
	InstallID types.GitHubAppInstallID
}

// SourceFetcher resolves a download URL for the source archive of one
// revision.
type SourceFetcher interface {
	GetArchiveURL(ctx context.Context, input *GetArchiveURLInput) (*url.URL, error)
}

// TextCompleter is the AI analysis collaborator, a black-box
// text-completion service behind a request/response contract.
type TextCompleter interface {
	Complete(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error)
}

// Publisher delivers a notification over one transport. Delivery failure
// is reported to the caller but must not affect other publishers.
type Publisher interface {
	Name() string
	Publish(ctx context.Context, msg *model.Notification) error
}

type BigQuery interface {
	Insert(ctx context.Context, schema bigquery.Schema, data any) error

	GetMetadata(ctx context.Context) (*bigquery.TableMetadata, error)
	UpdateTable(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error
	CreateTable(ctx context.Context, md *bigquery.TableMetadata) error
}
