package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/infra"
	"github.com/secmon-lab/complior/pkg/utils/errutil"
	"github.com/secmon-lab/complior/pkg/utils/logging"
	"github.com/secmon-lab/complior/pkg/utils/safe"
)

// executeRun drives one run through the pipeline: fetch the source archive,
// scan it, deliver notifications and finalize. Fatal stage errors mark the
// run failed; a failure notification is still attempted afterwards.
func (x *UseCase) executeRun(ctx context.Context, runID types.RunID) {
	logger := logging.From(ctx).With(slog.Any("runID", runID))
	ctx = logging.With(ctx, logger)

	run, err := x.clients.RunRepository().GetRun(ctx, runID)
	if err != nil {
		errutil.HandleError(ctx, "failed to load run for execution", err)
		return
	}
	if run.IsTerminal() {
		logger.Warn("run is already terminal, skipping execution")
		return
	}

	report, err := x.runStages(ctx, run)
	if err != nil {
		x.failRun(ctx, run, err)
		return
	}

	status := types.RunStatusSucceeded
	if report.Overall == types.OverallFail {
		status = types.RunStatusFailed
	}

	// Notification renders the terminal state, so decide it first.
	run.Status = status
	x.notifyRun(ctx, run, report)

	if err := x.clients.RunRepository().TransitStage(ctx, run.ID, types.StageNotified); err != nil {
		x.failRun(ctx, run, err)
		return
	}

	x.exportRun(ctx, run, report)

	if err := x.clients.RunRepository().Finalize(ctx, run.ID, status); err != nil {
		errutil.HandleError(ctx, "failed to finalize run", err)
		return
	}
	runsCompleted.WithLabelValues(string(status)).Inc()

	logger.Info("run finished",
		slog.Any("status", status),
		slog.Any("overall", report.Overall),
		slog.Bool("partial", report.Partial),
	)
}

// runStages executes the fetch and scan stages and returns the finalized
// report.
func (x *UseCase) runStages(ctx context.Context, run *model.Run) (*model.Report, error) {
	srcRef, err := x.fetchSource(ctx, run)
	if err != nil {
		return nil, goerr.Wrap(types.ErrSourceFetch, "failed to fetch source", goerr.V("cause", err.Error()))
	}
	if err := x.clients.RunRepository().TransitStage(ctx, run.ID, types.StageSourceFetched); err != nil {
		return nil, err
	}

	report, err := x.scanSource(ctx, run, srcRef)
	if err != nil {
		return nil, err
	}

	raw, err := json.Marshal(report)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal scan report")
	}
	if _, err := x.clients.ArtifactStore().Put(ctx, run.ID, model.ArtifactScanReport, bytes.NewReader(raw)); err != nil {
		return nil, err
	}
	if err := x.clients.RunRepository().TransitStage(ctx, run.ID, types.StageScanned); err != nil {
		return nil, err
	}

	return report, nil
}

// failRun marks the run failed and attempts a failure notification. Every
// terminal failure must be visible both in the status query and to the
// subscribers.
func (x *UseCase) failRun(ctx context.Context, run *model.Run, cause error) {
	errutil.HandleError(ctx, "run failed", cause)

	if err := x.clients.RunRepository().Finalize(ctx, run.ID, types.RunStatusFailed,
		fmt.Sprintf("run failed: %v", cause),
	); err != nil {
		errutil.HandleError(ctx, "failed to finalize failed run", err)
		return
	}
	runsCompleted.WithLabelValues(string(types.RunStatusFailed)).Inc()

	run.Status = types.RunStatusFailed
	x.notifyRun(ctx, run, nil)
}

// fetchSource downloads the source archive of the revision and stores it as
// the source artifact.
func (x *UseCase) fetchSource(ctx context.Context, run *model.Run) (*model.ArtifactRef, error) {
	owner, repoName, err := splitRepo(run.Repo)
	if err != nil {
		return nil, err
	}

	zipURL, err := x.clients.SourceFetcher().GetArchiveURL(ctx, &interfaces.GetArchiveURLInput{
		Owner:     owner,
		Repo:      repoName,
		CommitID:  run.CommitID,
		InstallID: run.InstallID,
	})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := downloadZipFile(ctx, x.clients.HTTPClient(), zipURL, &buf); err != nil {
		return nil, err
	}

	ref, err := x.clients.ArtifactStore().Put(ctx, run.ID, model.ArtifactSourceArchive, &buf)
	if err != nil {
		return nil, err
	}

	logging.From(ctx).Info("source archive stored",
		slog.String("key", ref.Key),
		slog.Int64("size", ref.Size),
	)

	return ref, nil
}

// scanSource extracts the stored archive into a temp directory and runs the
// scan stage on it.
func (x *UseCase) scanSource(ctx context.Context, run *model.Run, srcRef *model.ArtifactRef) (*model.Report, error) {
	rc, err := x.clients.ArtifactStore().Get(ctx, srcRef)
	if err != nil {
		return nil, err
	}
	defer safe.Close(rc)

	tmpZip, err := os.CreateTemp("", fmt.Sprintf("complior.%s.*.zip", run.ID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp file for source archive")
	}
	defer safe.Remove(tmpZip.Name())

	if _, err := io.Copy(tmpZip, rc); err != nil {
		return nil, goerr.Wrap(err, "failed to write source archive to temp file")
	}
	if err := tmpZip.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close temp file for source archive")
	}

	tmpDir, err := os.MkdirTemp("", fmt.Sprintf("complior.%s.*", run.ID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temp directory for source")
	}
	defer safe.RemoveAll(tmpDir)

	if err := extractZipFile(ctx, tmpZip.Name(), tmpDir); err != nil {
		return nil, err
	}

	return x.scanDirectory(ctx, run, tmpDir)
}

func splitRepo(repo string) (owner, name string, err error) {
	parts := strings.SplitN(repo, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", goerr.Wrap(types.ErrValidationFailed, "invalid repo full name", goerr.V("repo", repo))
	}
	return parts[0], parts[1], nil
}

func downloadZipFile(ctx context.Context, httpClient infra.HTTPClient, zipURL *url.URL, w io.Writer) error {
	zipReq, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL.String(), nil)
	if err != nil {
		return goerr.Wrap(err, "failed to create request for zip file", goerr.V("url", zipURL))
	}

	zipResp, err := httpClient.Do(zipReq)
	if err != nil {
		return goerr.Wrap(err, "failed to download zip file", goerr.V("url", zipURL))
	}
	defer safe.Close(zipResp.Body)

	if zipResp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(zipResp.Body)
		return goerr.Wrap(types.ErrInvalidWebhookData, "failed to download zip file",
			goerr.V("url", zipURL),
			goerr.V("code", zipResp.StatusCode),
			goerr.V("body", string(body)),
		)
	}

	if _, err = io.Copy(w, zipResp.Body); err != nil {
		return goerr.Wrap(err, "failed to write zip file", goerr.V("url", zipURL))
	}

	return nil
}

func extractZipFile(ctx context.Context, src, dst string) error {
	zipFile, err := zip.OpenReader(src)
	if err != nil {
		return goerr.Wrap(err, "failed to open zip file", goerr.V("file", src))
	}
	defer safe.Close(zipFile)

	for _, f := range zipFile.File {
		if err := extractZipEntry(ctx, f, dst); err != nil {
			return err
		}
	}

	return nil
}

func extractZipEntry(_ context.Context, f *zip.File, dst string) error {
	if f.FileInfo().IsDir() {
		return nil
	}

	target, err := stepDownDirectory(f.Name)
	if err != nil {
		return err
	}
	if target == "" {
		return nil
	}

	fpath := filepath.Join(dst, target)
	if !strings.HasPrefix(fpath, filepath.Clean(dst)+string(os.PathSeparator)) {
		return goerr.Wrap(types.ErrInvalidWebhookData, "illegal file path of zip", goerr.V("path", fpath))
	}

	if err := os.MkdirAll(filepath.Dir(fpath), os.ModePerm); err != nil {
		return goerr.Wrap(err, "failed to create directory", goerr.V("path", fpath))
	}

	// #nosec
	out, err := os.OpenFile(fpath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, f.Mode())
	if err != nil {
		return goerr.Wrap(err, "failed to open file", goerr.V("fpath", fpath))
	}
	defer safe.Close(out)

	rc, err := f.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open zip entry")
	}
	defer safe.Close(rc)

	// #nosec
	_, err = io.Copy(out, rc)
	if err != nil {
		return goerr.Wrap(err, "failed to copy file content")
	}

	return nil
}

// stepDownDirectory strips the archive's top-level directory (GitHub
// zipballs wrap everything in "<owner>-<repo>-<sha>/") and rejects path
// traversal.
func stepDownDirectory(fpath string) (string, error) {
	if fpath == "" {
		return "", nil
	}

	normalized := strings.ReplaceAll(fpath, "\\", "/")
	normalized = strings.TrimLeft(normalized, "/")
	if normalized == "" {
		return "", nil
	}

	parts := strings.Split(normalized, "/")
	if len(parts) <= 1 {
		return "", nil
	}
	parts = parts[1:]

	var safeParts []string
	for _, part := range parts {
		if part == "" || part == "." {
			continue
		}
		if part == ".." {
			return "", goerr.Wrap(types.ErrInvalidWebhookData, "illegal file path of zip", goerr.V("path", fpath))
		}
		safeParts = append(safeParts, part)
	}

	if len(safeParts) == 0 {
		return "", nil
	}

	return filepath.Join(safeParts...), nil
}
