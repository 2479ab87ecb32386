package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"github.com/verdicttrace/verdicttrace/pkg/service/es"
)

// Elasticsearch holds search-collaborator configuration
type Elasticsearch struct {
	Host            string
	APIKey          string
	ComplaintsIndex string
}

// Flags returns CLI flags for Elasticsearch configuration
func (e *Elasticsearch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "es-host",
			Usage:       "Elasticsearch base URL",
			Category:    "Elasticsearch",
			Sources:     cli.EnvVars("VERDICTTRACE_ES_HOST"),
			Destination: &e.Host,
		},
		&cli.StringFlag{
			Name:        "es-api-key",
			Usage:       "Elasticsearch API key",
			Category:    "Elasticsearch",
			Sources:     cli.EnvVars("VERDICTTRACE_ES_API_KEY"),
			Destination: &e.APIKey,
		},
		&cli.StringFlag{
			Name:        "es-complaints-index",
			Usage:       "Index holding the complaint corpus",
			Category:    "Elasticsearch",
			Value:       "complaints",
			Sources:     cli.EnvVars("VERDICTTRACE_ES_COMPLAINTS_INDEX"),
			Destination: &e.ComplaintsIndex,
		},
	}
}

// Configure creates the Elasticsearch client
func (e *Elasticsearch) Configure() (*es.Client, error) {
	if e.Host == "" {
		return nil, goerr.New("Elasticsearch host is required. Set VERDICTTRACE_ES_HOST")
	}
	return es.New(e.Host, e.APIKey, e.ComplaintsIndex), nil
}

// LogValue returns structured log value
func (e Elasticsearch) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("host", e.Host),
		slog.String("complaintsIndex", e.ComplaintsIndex),
		slog.Bool("hasAPIKey", e.APIKey != ""),
	)
}
