package cli

import (
	"context"

	"github.com/urfave/cli/v3"
	"github.com/verdicttrace/verdicttrace/pkg/cli/config"
	"github.com/verdicttrace/verdicttrace/pkg/domain/interfaces"
	"github.com/verdicttrace/verdicttrace/pkg/service/llm"
	"github.com/verdicttrace/verdicttrace/pkg/usecase"
)

// joinFlags combines multiple flag slices into one
func joinFlags(flags ...[]cli.Flag) []cli.Flag {
	var result []cli.Flag
	for _, f := range flags {
		result = append(result, f...)
	}
	return result
}

// buildUseCases wires the scan orchestrator and the case action operations
// from configuration. The returned repository must be closed by the caller.
func buildUseCases(ctx context.Context, firestoreCfg *config.Firestore, esCfg *config.Elasticsearch, geminiCfg *config.Gemini, notifyCfg *config.Notify) (*usecase.ScanUseCase, *usecase.ActionUseCase, interfaces.Repository, error) {
	repo, err := firestoreCfg.Configure(ctx)
	if err != nil {
		return nil, nil, nil, err
	}

	searchClient, err := esCfg.Configure()
	if err != nil {
		_ = repo.Close()
		return nil, nil, nil, err
	}

	emailClient, recipients, err := notifyCfg.Configure()
	if err != nil {
		_ = repo.Close()
		return nil, nil, nil, err
	}

	var narrative interfaces.NarrativeGenerator
	if llmClient := geminiCfg.ConfigureOptional(ctx); llmClient != nil {
		narrative = llm.NewNarrativeService(llmClient)
	}

	scanUC := usecase.NewScan(repo, searchClient, narrative, emailClient, recipients)
	actionUC := usecase.NewAction(repo, emailClient, recipients)
	return scanUC, actionUC, repo, nil
}
