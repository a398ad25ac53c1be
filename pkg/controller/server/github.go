package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/go-github/v53/github"
	"github.com/m-mizutani/goerr/v2"

	"github.com/secmon-lab/complior/pkg/domain/model"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

// validateGitHubAppEvent validates and parses a GitHub App webhook event.
// It returns the source change event if a scan is required, or nil if the
// event does not trigger one.
func validateGitHubAppEvent(r *http.Request, key types.GitHubAppSecret) (*model.SourceChangeEvent, error) {
	ctx := r.Context()
	payload, err := github.ValidatePayload(r, []byte(key))
	if err != nil {
		return nil, goerr.Wrap(err, "validating payload")
	}

	event, err := github.ParseWebHook(github.WebHookType(r), payload)
	if err != nil {
		return nil, goerr.Wrap(err, "parsing webhook")
	}

	logging.From(ctx).With(slog.Any("event", event)).Info("Received GitHub App event")

	return githubEventToSourceChange(event), nil
}

func refToBranch(v string) string {
	if ref := strings.SplitN(v, "/", 3); len(ref) == 3 && ref[0] == "refs" && ref[1] == "heads" {
		return ref[2]
	}
	return v
}

func githubEventToSourceChange(event interface{}) *model.SourceChangeEvent {
	switch ev := event.(type) {
	case *github.PushEvent:
		if ev.HeadCommit == nil || ev.HeadCommit.ID == nil {
			logging.Default().Warn("ignore push event without head commit", slog.Any("event", ev))
			return nil
		}

		return &model.SourceChangeEvent{
			Owner:     ev.GetRepo().GetOwner().GetLogin(),
			RepoName:  ev.GetRepo().GetName(),
			Branch:    types.BranchName(refToBranch(ev.GetRef())),
			CommitID:  types.CommitID(ev.GetHeadCommit().GetID()),
			InstallID: types.GitHubAppInstallID(ev.GetInstallation().GetID()),
		}

	case *github.InstallationEvent, *github.InstallationRepositoriesEvent, *github.PingEvent:
		return nil // ignore

	default:
		logging.Default().Warn("unsupported event", slog.Any("event", fmt.Sprintf("%T", event)))
		return nil
	}
}

// Test helpers - exported for testing
func RefToBranchForTest(v string) string {
	return refToBranch(v)
}

func GithubEventToSourceChangeForTest(event interface{}) *model.SourceChangeEvent {
	return githubEventToSourceChange(event)
}
