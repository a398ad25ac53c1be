package cli

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/complior/pkg/cli/config"
	"github.com/secmon-lab/complior/pkg/domain/types"
	"github.com/secmon-lab/complior/pkg/infra"
	"github.com/secmon-lab/complior/pkg/infra/checkov"
	"github.com/secmon-lab/complior/pkg/usecase"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

// scanTarget identifies the repo/branch/commit the local directory belongs
// to. Missing values are auto-detected from the git checkout.
type scanTarget struct {
	Repo     string
	Branch   string
	CommitID string
}

func scanCommand() *cli.Command {
	var (
		dir         string
		checkovPath string
		target      scanTarget

		bedrock  config.Bedrock
		policyC  config.Policy
		bigQuery config.BigQuery
	)

	return &cli.Command{
		Name:    "scan",
		Aliases: []string{"sc"},
		Usage:   "Scan a local directory and print the compliance report",
		Flags: slice.Flatten([]cli.Flag{
			&cli.StringFlag{
				Name:        "dir",
				Aliases:     []string{"d"},
				Usage:       "Path to directory to scan",
				Value:       ".",
				Destination: &dir,
			},
			&cli.StringFlag{
				Name:        "checkov-path",
				Usage:       "Path to checkov binary (external rule engine disabled when empty)",
				Sources:     cli.EnvVars("COMPLIOR_CHECKOV_PATH"),
				Destination: &checkovPath,
			},
			&cli.StringFlag{
				Name:        "repo",
				Usage:       "Repository full name, owner/name (auto-detect from git if not specified)",
				Sources:     cli.EnvVars("COMPLIOR_REPO"),
				Destination: &target.Repo,
			},
			&cli.StringFlag{
				Name:        "branch",
				Usage:       "Branch name (auto-detect from git if not specified)",
				Sources:     cli.EnvVars("COMPLIOR_BRANCH"),
				Destination: &target.Branch,
			},
			&cli.StringFlag{
				Name:        "commit-id",
				Usage:       "Commit ID (auto-detect from git if not specified)",
				Sources:     cli.EnvVars("COMPLIOR_COMMIT_ID"),
				Destination: &target.CommitID,
			},
		}, bedrock.Flags(), policyC.Flags(), bigQuery.Flags()),
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := autoDetectTarget(dir, &target); err != nil {
				return err
			}

			return runLocalScan(ctx, dir, checkovPath, target, &bedrock, &policyC, &bigQuery)
		},
	}
}

// autoDetectTarget fills missing target fields from the local git checkout.
func autoDetectTarget(dir string, target *scanTarget) error {
	if target.Repo != "" && target.Branch != "" && target.CommitID != "" {
		return nil
	}

	repo, err := git.PlainOpen(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to open git repository", goerr.V("dir", dir))
	}

	head, err := repo.Head()
	if err != nil {
		return goerr.Wrap(err, "failed to get HEAD")
	}

	if target.CommitID == "" {
		target.CommitID = head.Hash().String()
	}
	if target.Branch == "" && head.Name().IsBranch() {
		target.Branch = head.Name().Short()
	}

	if target.Repo == "" {
		remote, err := repo.Remote("origin")
		if err != nil {
			return goerr.Wrap(err, "failed to get remote origin")
		}
		if len(remote.Config().URLs) == 0 {
			return goerr.New("no remote URL found")
		}

		fullName, err := parseRemoteURL(remote.Config().URLs[0])
		if err != nil {
			return err
		}
		target.Repo = fullName
	}

	return nil
}

// parseRemoteURL extracts "owner/name" from a git remote URL, either SSH
// (git@github.com:owner/repo.git) or HTTPS (https://github.com/owner/repo.git).
func parseRemoteURL(url string) (string, error) {
	var path string

	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		path = strings.TrimPrefix(url, "git@github.com:")
	case strings.Contains(url, "github.com/"):
		parts := strings.SplitN(url, "github.com/", 2)
		path = parts[1]
	default:
		return "", goerr.New("unsupported git remote URL", goerr.V("url", url))
	}

	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", goerr.New("failed to parse owner/repo from git remote URL", goerr.V("url", url))
	}

	return parts[0] + "/" + parts[1], nil
}

func runLocalScan(ctx context.Context, dir, checkovPath string, target scanTarget, bedrock *config.Bedrock, policyC *config.Policy, bigQuery *config.BigQuery) error {
	logging.Default().Info("starting local scan",
		slog.String("dir", dir),
		slog.String("repo", target.Repo),
		slog.String("branch", target.Branch),
		slog.String("commit", target.CommitID),
		slog.Any("bedrock", bedrock),
		slog.Any("policy", policyC),
		slog.Any("bigquery", bigQuery),
	)

	catalog, err := policyC.Load()
	if err != nil {
		return err
	}

	completer, err := bedrock.NewClient(ctx)
	if err != nil {
		return err
	}

	infraOptions := []infra.Option{
		infra.WithTextCompleter(completer),
	}
	if checkovPath != "" {
		infraOptions = append(infraOptions, infra.WithRuleEngine(checkov.New(checkovPath)))
	}
	if bqClient, err := bigQuery.NewClient(ctx); err != nil {
		return err
	} else if bqClient != nil {
		infraOptions = append(infraOptions, infra.WithBigQuery(bqClient))
	}

	clients := infra.New(infraOptions...)

	ucOptions := append(bedrock.UseCaseOptions(), usecase.WithCatalog(catalog))
	uc := usecase.New(clients, ucOptions...)

	report, err := uc.ScanLocal(ctx, dir, target.Repo, types.BranchName(target.Branch), types.CommitID(target.CommitID))
	if err != nil {
		return goerr.Wrap(err, "failed to scan local directory")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return goerr.Wrap(err, "failed to encode report")
	}

	return nil
}
