package config

import (
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/secmon-lab/complior/pkg/domain/model/policy"
)

// Policy configures the control catalog.
type Policy struct {
	catalogPath string
}

func (x *Policy) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "control-catalog",
			Usage:       "Path to the control catalog YAML (built-in catalog when omitted)",
			Category:    "Policy",
			Sources:     cli.EnvVars("COMPLIOR_CONTROL_CATALOG"),
			Destination: &x.catalogPath,
		},
	}
}

func (x *Policy) Load() (*policy.Catalog, error) {
	if x.catalogPath == "" {
		return policy.Default(), nil
	}
	return policy.LoadFile(x.catalogPath)
}

func (x *Policy) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("catalogPath", x.catalogPath),
	)
}
