package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/mock"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/infra"
	"github.com/secmon-lab/complior/pkg/usecase"
)

func testRunRecord() *model.RunRecord {
	now := time.Date(2025, 4, 1, 12, 0, 0, 0, time.UTC)
	return &model.RunRecord{
		Run: model.Run{
			ID:       "run-1",
			Repo:     "secmon-lab/complior",
			Branch:   "main",
			CommitID: "f7c8851da7c7fcc46212fccfb6c9c4bda520f1ca",
			Status:   types.RunStatusFailed,
			Stage:    types.StageNotified,
		},
		Report: model.Report{
			RunID:     "run-1",
			Repo:      "secmon-lab/complior",
			Branch:    "main",
			Timestamp: now,
			Overall:   types.OverallFail,
			Findings: []model.Finding{
				{Control: "encryption-at-rest", Resource: "aws_s3_bucket.data", Status: types.FindingFail, Required: true},
			},
		},
		Timestamp: now.UnixMicro(),
	}
}

func TestCreateOrUpdateTable(t *testing.T) {
	ctx := context.Background()

	t.Run("missing table is created", func(t *testing.T) {
		mockBQ := &mock.BigQueryMock{}
		mockBQ.GetMetadataFunc = func(ctx context.Context) (*bigquery.TableMetadata, error) {
			return nil, nil
		}

		var created int
		mockBQ.CreateTableFunc = func(ctx context.Context, md *bigquery.TableMetadata) error {
			created++
			gt.A(t, md.Schema).Longer(0)
			return nil
		}

		schema := gt.R1(usecase.CreateOrUpdateTableForTest(ctx, mockBQ, testRunRecord())).NoError(t)
		gt.A(t, schema).Longer(0)
		gt.V(t, created).Equal(1)
	})

	t.Run("matching schema is left alone", func(t *testing.T) {
		record := testRunRecord()
		schema := gt.R1(bqs.Infer(record)).NoError(t)

		mockBQ := &mock.BigQueryMock{}
		mockBQ.GetMetadataFunc = func(ctx context.Context) (*bigquery.TableMetadata, error) {
			return &bigquery.TableMetadata{Schema: schema, ETag: "etag-1"}, nil
		}
		mockBQ.UpdateTableFunc = func(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error {
			t.Fatalf("UpdateTable should not be called for an up-to-date schema")
			return nil
		}

		_, err := usecase.CreateOrUpdateTableForTest(ctx, mockBQ, record)
		gt.NoError(t, err)
	})

	t.Run("outdated schema is merged and updated", func(t *testing.T) {
		old := bigquery.Schema{
			{Name: "Timestamp", Type: bigquery.IntegerFieldType},
		}

		mockBQ := &mock.BigQueryMock{}
		mockBQ.GetMetadataFunc = func(ctx context.Context) (*bigquery.TableMetadata, error) {
			return &bigquery.TableMetadata{Schema: old, ETag: "etag-1"}, nil
		}

		var updated int
		mockBQ.UpdateTableFunc = func(ctx context.Context, md bigquery.TableMetadataToUpdate, eTag string) error {
			updated++
			gt.V(t, eTag).Equal("etag-1")
			return nil
		}

		_, err := usecase.CreateOrUpdateTableForTest(ctx, mockBQ, testRunRecord())
		gt.NoError(t, err)
		gt.V(t, updated).Equal(1)
	})

	t.Run("metadata error propagates", func(t *testing.T) {
		mockBQ := &mock.BigQueryMock{}
		mockBQ.GetMetadataFunc = func(ctx context.Context) (*bigquery.TableMetadata, error) {
			return nil, errors.New("permission denied")
		}

		_, err := usecase.CreateOrUpdateTableForTest(ctx, mockBQ, testRunRecord())
		gt.Error(t, err)
	})
}

func TestScanLocalExportsToBigQuery(t *testing.T) {
	ctx := context.Background()

	mockBQ := &mock.BigQueryMock{}
	mockBQ.GetMetadataFunc = func(ctx context.Context) (*bigquery.TableMetadata, error) {
		return nil, nil
	}
	mockBQ.CreateTableFunc = func(ctx context.Context, md *bigquery.TableMetadata) error {
		return nil
	}

	var inserted *model.RunRecord
	mockBQ.InsertFunc = func(ctx context.Context, schema bigquery.Schema, data any) error {
		var ok bool
		inserted, ok = data.(*model.RunRecord)
		gt.True(t, ok)
		return nil
	}

	completer := &mock.TextCompleterMock{}
	completer.CompleteFunc = func(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error) {
		return &model.CompletionResponse{Text: "RESULT: PASS\nRATIONALE: ok"}, nil
	}

	uc := usecase.New(infra.New(
		infra.WithTextCompleter(completer),
		infra.WithBigQuery(mockBQ),
	))

	dir := t.TempDir()
	gt.NoError(t, writeFile(dir, "main.tf", violatingConfig))

	report := gt.R1(uc.ScanLocal(ctx, dir, "secmon-lab/complior", "main", defaultTestCommitID)).NoError(t)
	gt.V(t, report.Overall).Equal(types.OverallFail)

	gt.V(t, inserted).NotEqual((*model.RunRecord)(nil))
	gt.V(t, inserted.Report.Overall).Equal(types.OverallFail)
	gt.V(t, inserted.Run.Repo).Equal("secmon-lab/complior")
}

func TestBigQueryFailureIsNonFatal(t *testing.T) {
	ctx := context.Background()

	mockBQ := &mock.BigQueryMock{}
	mockBQ.GetMetadataFunc = func(ctx context.Context) (*bigquery.TableMetadata, error) {
		return nil, errors.New("bigquery is down")
	}

	completer := &mock.TextCompleterMock{}
	completer.CompleteFunc = func(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error) {
		return &model.CompletionResponse{Text: "RESULT: PASS\nRATIONALE: ok"}, nil
	}

	uc := usecase.New(infra.New(
		infra.WithTextCompleter(completer),
		infra.WithBigQuery(mockBQ),
	))

	dir := t.TempDir()
	gt.NoError(t, writeFile(dir, "main.tf", compliantConfig))

	report, err := uc.ScanLocal(ctx, dir, "secmon-lab/complior", "main", defaultTestCommitID)
	gt.NoError(t, err)
	gt.V(t, report.Overall).Equal(types.OverallPass)
}
