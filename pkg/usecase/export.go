package usecase

import (
	"context"

	"cloud.google.com/go/bigquery"
	"github.com/m-mizutani/bqs"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/utils/errutil"
)

// exportRun appends the run and its report to the analytics table. Export
// failure degrades observability only and never fails the run.
func (x *UseCase) exportRun(ctx context.Context, run *model.Run, report *model.Report) {
	if x.clients.BigQuery() == nil {
		return
	}

	record := &model.RunRecord{
		Run:       *run,
		Report:    *report,
		Timestamp: report.Timestamp.UnixMicro(),
	}

	schema, err := createOrUpdateTable(ctx, x.clients.BigQuery(), record)
	if err != nil {
		errutil.HandleError(ctx, "failed to prepare BigQuery table", err)
		return
	}

	if err := x.clients.BigQuery().Insert(ctx, schema, record); err != nil {
		errutil.HandleError(ctx, "failed to insert run record to BigQuery", err)
	}
}

func createOrUpdateTable(ctx context.Context, bq interfaces.BigQuery, record *model.RunRecord) (bigquery.Schema, error) {
	schema, err := bqs.Infer(record)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to infer run record schema")
	}

	metaData, err := bq.GetMetadata(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get BigQuery table metadata")
	}
	if metaData == nil {
		if err := bq.CreateTable(ctx, &bigquery.TableMetadata{
			Schema: schema,
		}); err != nil {
			return nil, goerr.Wrap(err, "failed to create BigQuery table")
		}

		return schema, nil
	}

	if bqs.Equal(metaData.Schema, schema) {
		return schema, nil
	}

	mergedSchema, err := bqs.Merge(metaData.Schema, schema)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to merge BigQuery schema")
	}
	if err := bq.UpdateTable(ctx, bigquery.TableMetadataToUpdate{
		Schema: mergedSchema,
	}, metaData.ETag); err != nil {
		return nil, goerr.Wrap(err, "failed to update BigQuery table")
	}

	return mergedSchema, nil
}
