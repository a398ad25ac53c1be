package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/complior/pkg/domain/interfaces"
	"github.com/secmon-lab/complior/pkg/infra/artifact"
)

// Artifact selects the artifact store backend. The backend keeps every
// object write-once and encrypted at rest; "memory" is for local runs and
// tests only.
type Artifact struct {
	backend string

	s3Bucket   string
	s3Region   string
	s3Endpoint string

	gcsBucket string
}

func (x *Artifact) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "artifact-backend",
			Usage:       "Artifact store backend [s3|gcs|memory]",
			Category:    "Artifact store",
			Sources:     cli.EnvVars("COMPLIOR_ARTIFACT_BACKEND"),
			Value:       "s3",
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "artifact-s3-bucket",
			Usage:       "S3 bucket for artifacts",
			Category:    "Artifact store",
			Sources:     cli.EnvVars("COMPLIOR_ARTIFACT_S3_BUCKET"),
			Destination: &x.s3Bucket,
		},
		&cli.StringFlag{
			Name:        "artifact-s3-region",
			Usage:       "S3 region",
			Category:    "Artifact store",
			Sources:     cli.EnvVars("COMPLIOR_ARTIFACT_S3_REGION"),
			Destination: &x.s3Region,
		},
		&cli.StringFlag{
			Name:        "artifact-s3-endpoint",
			Usage:       "S3-compatible endpoint (for testing)",
			Category:    "Artifact store",
			Sources:     cli.EnvVars("COMPLIOR_ARTIFACT_S3_ENDPOINT"),
			Destination: &x.s3Endpoint,
		},
		&cli.StringFlag{
			Name:        "artifact-gcs-bucket",
			Usage:       "GCS bucket for artifacts",
			Category:    "Artifact store",
			Sources:     cli.EnvVars("COMPLIOR_ARTIFACT_GCS_BUCKET"),
			Destination: &x.gcsBucket,
		},
	}
}

func (x *Artifact) NewStore(ctx context.Context) (interfaces.ArtifactStore, error) {
	switch x.backend {
	case "s3":
		return artifact.NewS3(ctx, artifact.S3Config{
			Bucket:   x.s3Bucket,
			Region:   x.s3Region,
			Endpoint: x.s3Endpoint,
		})
	case "gcs":
		return artifact.NewGCS(ctx, x.gcsBucket)
	case "memory":
		return artifact.NewMemory(), nil
	default:
		return nil, goerr.New("unknown artifact backend", goerr.V("backend", x.backend))
	}
}

func (x *Artifact) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", x.backend),
		slog.String("s3Bucket", x.s3Bucket),
		slog.String("s3Region", x.s3Region),
		slog.String("s3Endpoint", x.s3Endpoint),
		slog.String("gcsBucket", x.gcsBucket),
	)
}
