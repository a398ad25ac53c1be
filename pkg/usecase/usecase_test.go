package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/domain/mock"
	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/infra"
	"github.com/secmon-lab/complior/pkg/infra/artifact"
	"github.com/secmon-lab/complior/pkg/infra/checkov"
	"github.com/secmon-lab/complior/pkg/repository/memory"
	"github.com/secmon-lab/complior/pkg/usecase"
)

const (
	defaultTestOwner    = "secmon-lab"
	defaultTestRepo     = "complior"
	defaultTestBranch   = "main"
	defaultTestCommitID = "f7c8851da7c7fcc46212fccfb6c9c4bda520f1ca"
)

const violatingConfig = `
resource "aws_s3_bucket" "data" {
  bucket = "company-data"
  acl    = "public-read"
}
`

const compliantConfig = `
resource "aws_s3_bucket" "data" {
  bucket = "company-data"
  acl    = "private"

  server_side_encryption_configuration {
    rule {
      apply_server_side_encryption_by_default {
        sse_algorithm = "aws:kms"
      }
    }
  }

  versioning {
    enabled = true
  }

  logging {
    target_bucket = "company-logs"
  }
}
`

type pipelineFixture struct {
	uc            *usecase.UseCase
	repo          interfaces.RunRepository
	store         *artifact.MemoryStore
	mockFetcher   *mock.SourceFetcherMock
	mockHTTP      *httpMock
	mockCompleter *mock.TextCompleterMock
	mockPublisher *mock.PublisherMock

	mu       sync.Mutex
	notices  []*model.Notification
	fetched  []types.CommitID
	zipByRev map[types.CommitID][]byte
}

func newPipelineFixture(t *testing.T, tfConfig string, options ...usecase.Option) *pipelineFixture {
	t.Helper()

	fx := &pipelineFixture{
		repo:          memory.New(),
		store:         artifact.NewMemory(),
		mockFetcher:   &mock.SourceFetcherMock{},
		mockHTTP:      &httpMock{},
		mockCompleter: &mock.TextCompleterMock{},
		mockPublisher: &mock.PublisherMock{},
		zipByRev:      map[types.CommitID][]byte{},
	}

	defaultZip := buildRepoArchive(t, map[string]string{"main.tf": tfConfig})

	fx.mockFetcher.GetArchiveURLFunc = func(ctx context.Context, input *interfaces.GetArchiveURLInput) (*url.URL, error) {
		fx.mu.Lock()
		fx.fetched = append(fx.fetched, input.CommitID)
		fx.mu.Unlock()
		return gt.R1(url.Parse("https://example.com/archive/" + string(input.CommitID) + ".zip")).NoError(t), nil
	}
	fx.mockHTTP.mockDo = func(req *http.Request) (*http.Response, error) {
		data := defaultZip
		fx.mu.Lock()
		for rev, zipData := range fx.zipByRev {
			if req.URL.Path == "/archive/"+string(rev)+".zip" {
				data = zipData
			}
		}
		fx.mu.Unlock()
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewReader(data)),
		}, nil
	}
	fx.mockCompleter.CompleteFunc = func(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error) {
		return &model.CompletionResponse{Text: "RESULT: PASS\nRATIONALE: no excessive permissions found"}, nil
	}
	fx.mockPublisher.NameFunc = func() string { return "mock" }
	fx.mockPublisher.PublishFunc = func(ctx context.Context, msg *model.Notification) error {
		fx.mu.Lock()
		fx.notices = append(fx.notices, msg)
		fx.mu.Unlock()
		return nil
	}

	clients := infra.New(
		infra.WithSourceFetcher(fx.mockFetcher),
		infra.WithHTTPClient(fx.mockHTTP),
		infra.WithArtifactStore(fx.store),
		infra.WithTextCompleter(fx.mockCompleter),
		infra.WithRunRepository(fx.repo),
		infra.WithPublisher(fx.mockPublisher),
	)
	fx.uc = usecase.New(clients, options...)

	return fx
}

// withRuleEngine rebuilds the use case with the external rule engine wired
// in. Must be called before submitting any run.
func (fx *pipelineFixture) withRuleEngine(t *testing.T, engine checkov.Client) {
	t.Helper()
	clients := infra.New(
		infra.WithSourceFetcher(fx.mockFetcher),
		infra.WithHTTPClient(fx.mockHTTP),
		infra.WithArtifactStore(fx.store),
		infra.WithTextCompleter(fx.mockCompleter),
		infra.WithRunRepository(fx.repo),
		infra.WithPublisher(fx.mockPublisher),
		infra.WithRuleEngine(engine),
	)
	fx.uc = usecase.New(clients)
}

func (fx *pipelineFixture) notifications() []*model.Notification {
	fx.mu.Lock()
	defer fx.mu.Unlock()
	return append([]*model.Notification{}, fx.notices...)
}

func (fx *pipelineFixture) loadReport(t *testing.T, runID types.RunID) *model.Report {
	t.Helper()

	rc := gt.R1(fx.store.Get(context.Background(), &model.ArtifactRef{
		Key: model.ArtifactKey(runID, model.ArtifactScanReport),
	})).NoError(t)
	defer rc.Close()

	var report model.Report
	gt.NoError(t, json.NewDecoder(rc).Decode(&report))
	return &report
}

func testEvent(commit types.CommitID) *model.SourceChangeEvent {
	return &model.SourceChangeEvent{
		Owner:     defaultTestOwner,
		RepoName:  defaultTestRepo,
		Branch:    defaultTestBranch,
		CommitID:  commit,
		InstallID: 12345,
	}
}

func buildRepoArchive(t *testing.T, files map[string]string) []byte {
	t.Helper()
	buf := &bytes.Buffer{}
	zw := zip.NewWriter(buf)
	for name, content := range files {
		// GitHub zipballs wrap everything in a top-level directory
		fw, err := zw.Create(defaultTestRepo + "-" + defaultTestBranch + "/" + name)
		gt.NoError(t, err)
		_, err = fw.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, zw.Close())
	return buf.Bytes()
}

type httpMock struct {
	mockDo func(req *http.Request) (*http.Response, error)
}

func (x *httpMock) Do(req *http.Request) (*http.Response, error) {
	return x.mockDo(req)
}

func TestSubmitViolatingRepo(t *testing.T) {
	fx := newPipelineFixture(t, violatingConfig)
	ctx := context.Background()

	runID := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	run := gt.R1(fx.uc.GetStatus(ctx, runID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusFailed)
	gt.V(t, run.Stage).Equal(types.StageNotified)

	report := fx.loadReport(t, runID)
	gt.V(t, report.Overall).Equal(types.OverallFail)

	var encFinding *model.Finding
	for i, f := range report.Findings {
		if f.Control == "encryption-at-rest" {
			encFinding = &report.Findings[i]
		}
	}
	gt.V(t, encFinding).NotEqual(nil)
	gt.V(t, encFinding.Status).Equal(types.FindingFail)
	gt.V(t, encFinding.Resource).Equal("aws_s3_bucket.data")

	notices := fx.notifications()
	gt.A(t, notices).Length(1)
	gt.S(t, notices[0].Subject).Contains("failed")
	gt.S(t, notices[0].Body).Contains("Deployment BLOCKED")
	gt.S(t, notices[0].Body).Contains("aws_s3_bucket.data")
}

func TestSubmitCompliantRepo(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	runID := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	run := gt.R1(fx.uc.GetStatus(ctx, runID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusSucceeded)
	gt.V(t, run.Stage).Equal(types.StageNotified)

	report := fx.loadReport(t, runID)
	gt.V(t, report.Overall).Equal(types.OverallPass)
	gt.False(t, report.Partial)

	notices := fx.notifications()
	gt.A(t, notices).Length(1)
	gt.S(t, notices[0].Subject).Contains("passed")
}

func TestSubmitValidation(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	ev := testEvent(defaultTestCommitID)
	ev.CommitID = "not-a-commit"

	_, err := fx.uc.Submit(ctx, ev)
	gt.Error(t, err)
}

func TestSubmitDeduplicatesSameRevision(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	first := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	second := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	gt.V(t, second).Equal(first)

	fx.mu.Lock()
	fetchCount := len(fx.fetched)
	fx.mu.Unlock()
	gt.V(t, fetchCount).Equal(1)
}

func TestRunsOnSameBranchAreSerializedFIFO(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	commits := []types.CommitID{
		"1111111111111111111111111111111111111111",
		"2222222222222222222222222222222222222222",
		"3333333333333333333333333333333333333333",
	}
	var runIDs []types.RunID
	for _, commit := range commits {
		id := gt.R1(fx.uc.Submit(ctx, testEvent(commit))).NoError(t)
		runIDs = append(runIDs, id)
	}
	fx.uc.Wait()

	fx.mu.Lock()
	fetched := append([]types.CommitID{}, fx.fetched...)
	fx.mu.Unlock()

	gt.A(t, fetched).Length(3)
	gt.V(t, fetched[0]).Equal(commits[0])
	gt.V(t, fetched[1]).Equal(commits[1])
	gt.V(t, fetched[2]).Equal(commits[2])

	for _, id := range runIDs {
		run := gt.R1(fx.uc.GetStatus(ctx, id)).NoError(t)
		gt.True(t, run.IsTerminal())
	}
}

func TestSourceFetchErrorFailsRun(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	fx.mockHTTP.mockDo = func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusNotFound,
			Body:       io.NopCloser(bytes.NewReader([]byte("not found"))),
		}, nil
	}

	runID := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	run := gt.R1(fx.uc.GetStatus(ctx, runID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusFailed)
	gt.V(t, run.Stage).Equal(types.StageFailed)
	gt.A(t, run.Annotations).Longer(0)

	// a failure notification is still delivered, without a report
	notices := fx.notifications()
	gt.A(t, notices).Length(1)
	gt.S(t, notices[0].Subject).Contains("failed")
}

func TestNotificationFailureIsNonFatal(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	fx.mockPublisher.PublishFunc = func(ctx context.Context, msg *model.Notification) error {
		return io.ErrUnexpectedEOF
	}

	runID := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	run := gt.R1(fx.uc.GetStatus(ctx, runID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusSucceeded)
	gt.V(t, run.Stage).Equal(types.StageNotified)

	gt.A(t, run.Annotations).Length(1)
	gt.S(t, run.Annotations[0]).Contains("notification delivery to mock failed")
}

func TestUnparsableAIResponseDowngrades(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	fx.mockCompleter.CompleteFunc = func(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error) {
		return &model.CompletionResponse{Text: "I believe the resource is probably acceptable."}, nil
	}

	runID := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	// the downgraded control never decides pass nor fail
	run := gt.R1(fx.uc.GetStatus(ctx, runID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusSucceeded)

	report := fx.loadReport(t, runID)
	gt.True(t, report.Partial)

	var reviewed *model.Finding
	for i, f := range report.Findings {
		if f.Control == "least-privilege" {
			reviewed = &report.Findings[i]
		}
	}
	gt.V(t, reviewed).NotEqual(nil)
	gt.V(t, reviewed.Status).Equal(types.FindingNeedsReview)

	gt.A(t, run.Annotations).Longer(0)
	gt.S(t, run.Annotations[0]).Contains("needs human review")
}

func TestAIAnalysisErrorDowngrades(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig, usecase.WithAIRetryLimit(0))
	ctx := context.Background()

	fx.mockCompleter.CompleteFunc = func(ctx context.Context, req *model.CompletionRequest) (*model.CompletionResponse, error) {
		return nil, io.ErrUnexpectedEOF
	}

	runID := gt.R1(fx.uc.Submit(ctx, testEvent(defaultTestCommitID))).NoError(t)
	fx.uc.Wait()

	run := gt.R1(fx.uc.GetStatus(ctx, runID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusSucceeded)

	report := fx.loadReport(t, runID)
	gt.True(t, report.Partial)

	var reviewed *model.Finding
	for i, f := range report.Findings {
		if f.Control == "least-privilege" {
			reviewed = &report.Findings[i]
		}
	}
	gt.V(t, reviewed).NotEqual(nil)
	gt.V(t, reviewed.Status).Equal(types.FindingNeedsReview)
	gt.S(t, reviewed.Rationale).Contains("analysis unavailable")
}

func TestRecoverStaleRuns(t *testing.T) {
	fx := newPipelineFixture(t, compliantConfig)
	ctx := context.Background()

	stale := model.NewRun(testEvent("1111111111111111111111111111111111111111"), mustNow())
	gt.NoError(t, fx.repo.CreateRun(ctx, stale))
	gt.NoError(t, fx.repo.TransitStage(ctx, stale.ID, types.StageSourceFetched))

	gt.NoError(t, fx.uc.RecoverStaleRuns(ctx))

	run := gt.R1(fx.repo.GetRun(ctx, stale.ID)).NoError(t)
	gt.V(t, run.Status).Equal(types.RunStatusFailed)
	gt.V(t, run.Stage).Equal(types.StageFailed)
	gt.A(t, run.Annotations).Length(1)
	gt.S(t, run.Annotations[0]).Contains("recovered after restart")
}

func TestScanLocal(t *testing.T) {
	fx := newPipelineFixture(t, violatingConfig)
	ctx := context.Background()

	dir := t.TempDir()
	gt.NoError(t, writeFile(dir, "main.tf", violatingConfig))

	report := gt.R1(fx.uc.ScanLocal(ctx, dir, defaultTestOwner+"/"+defaultTestRepo, defaultTestBranch, defaultTestCommitID)).NoError(t)
	gt.V(t, report.Overall).Equal(types.OverallFail)
	gt.A(t, report.FailedFindings()).Longer(0)
}
