package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gots/slice"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/complior/pkg/cli/config"
	"github.com/secmon-lab/complior/pkg/controller/server"
	"github.com/secmon-lab/complior/pkg/infra"
	"github.com/secmon-lab/complior/pkg/infra/checkov"
	"github.com/secmon-lab/complior/pkg/repository/memory"
	"github.com/secmon-lab/complior/pkg/usecase"
	"github.com/secmon-lab/complior/pkg/utils/logging"
)

func serveCommand() *cli.Command {
	var (
		addr        string
		checkovPath string
		workerLimit int64

		githubApp config.GitHubApp
		artifactC config.Artifact
		bedrock   config.Bedrock
		notifyC   config.Notify
		policyC   config.Policy
		bigQuery  config.BigQuery
		firestore config.Firestore
		sentry    config.Sentry
	)
	serveFlags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Binding address",
			Value:       "127.0.0.1:8000",
			Sources:     cli.EnvVars("COMPLIOR_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "checkov-path",
			Usage:       "Path to checkov binary (external rule engine disabled when empty)",
			Sources:     cli.EnvVars("COMPLIOR_CHECKOV_PATH"),
			Destination: &checkovPath,
		},
		&cli.Int64Flag{
			Name:        "worker-limit",
			Usage:       "Max branches scanned concurrently",
			Value:       4,
			Sources:     cli.EnvVars("COMPLIOR_WORKER_LIMIT"),
			Destination: &workerLimit,
		},
	}

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Server mode",
		Flags: slice.Flatten(
			serveFlags,
			githubApp.Flags(),
			artifactC.Flags(),
			bedrock.Flags(),
			notifyC.Flags(),
			policyC.Flags(),
			bigQuery.Flags(),
			firestore.Flags(),
			sentry.Flags(),
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			logging.Default().Info("starting serve",
				slog.Any("Addr", addr),
				slog.Any("CheckovPath", checkovPath),
				slog.Any("GitHubApp", githubApp),
				slog.Any("Artifact", artifactC),
				slog.Any("Bedrock", bedrock),
				slog.Any("Notify", notifyC),
				slog.Any("Policy", policyC),
				slog.Any("BigQuery", bigQuery),
				slog.Any("Firestore", firestore),
				slog.Any("Sentry", sentry),
			)

			if err := sentry.Configure(ctx); err != nil {
				return err
			}

			ghApp, err := githubApp.New()
			if err != nil {
				return err
			}

			store, err := artifactC.NewStore(ctx)
			if err != nil {
				return err
			}

			completer, err := bedrock.NewClient(ctx)
			if err != nil {
				return err
			}

			catalog, err := policyC.Load()
			if err != nil {
				return err
			}

			infraOptions := []infra.Option{
				infra.WithSourceFetcher(ghApp),
				infra.WithArtifactStore(store),
				infra.WithTextCompleter(completer),
			}

			if checkovPath != "" {
				infraOptions = append(infraOptions, infra.WithRuleEngine(checkov.New(checkovPath)))
			}

			if firestore.Enabled() {
				repo, err := firestore.NewRepository(ctx)
				if err != nil {
					return err
				}
				infraOptions = append(infraOptions, infra.WithRunRepository(repo))
			} else {
				logging.Default().Warn("firestore is not configured, using in-memory run repository")
				infraOptions = append(infraOptions, infra.WithRunRepository(memory.New()))
			}

			if bqClient, err := bigQuery.NewClient(ctx); err != nil {
				return err
			} else if bqClient != nil {
				infraOptions = append(infraOptions, infra.WithBigQuery(bqClient))
			}

			publishers, err := notifyC.NewPublishers(ctx)
			if err != nil {
				return err
			}
			for _, pub := range publishers {
				infraOptions = append(infraOptions, infra.WithPublisher(pub))
			}

			clients := infra.New(infraOptions...)

			ucOptions := append(bedrock.UseCaseOptions(),
				usecase.WithCatalog(catalog),
				usecase.WithWorkerLimit(int(workerLimit)),
			)
			uc := usecase.New(clients, ucOptions...)

			if err := uc.RecoverStaleRuns(ctx); err != nil {
				return err
			}

			s := server.New(uc, server.WithGitHubSecret(githubApp.Secret()))

			serverErr := make(chan error, 1)
			httpServer := &http.Server{
				Addr:    addr,
				Handler: s.Mux(),

				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       30 * time.Second,
				WriteTimeout:      30 * time.Second,
			}

			go func() {
				logging.Default().Info("starting http server", "addr", addr)
				if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
					serverErr <- goerr.Wrap(err, "failed to listen and serve")
				}
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-serverErr:
				return err

			case sig := <-quit:
				logging.Default().Info("shutting down server", "signal", sig)

				ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()

				if err := httpServer.Shutdown(ctx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server")
				}

				// Let dispatched runs finish before exiting.
				uc.Wait()
			}

			return nil
		},
	}
}
