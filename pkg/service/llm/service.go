package llm

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/verdicttrace/verdicttrace/pkg/domain/model"
)

// Error tags for categorization
var (
	ErrTagEmptyResponse   = goerr.NewTag("empty_response")
	ErrTagTemplateFailure = goerr.NewTag("template_failure")
)

const generateTimeout = 60 * time.Second

//go:embed templates/*.md
var templateFS embed.FS

// NarrativeService generates investigation-grade narrative summaries for
// detected clusters
type NarrativeService struct {
	llmClient gollem.LLMClient
}

// narrativeTemplateData contains data for the narrative prompt template
type narrativeTemplateData struct {
	ProductSKU      string
	FailureMode     string
	Count           int
	InjuryCount     int
	InjuryRatePct   string
	GeoSpread       int
	Regions         string
	Velocity        float64
	ConfidenceScore float64
	Tier            string
	Exemplars       []model.ComplaintExcerpt
}

// NewNarrativeService creates a new NarrativeService instance
func NewNarrativeService(llmClient gollem.LLMClient) *NarrativeService {
	return &NarrativeService{
		llmClient: llmClient,
	}
}

// Generate produces a narrative for the scored cluster from its metrics and
// exemplar excerpts. Callers degrade to Fallback when this fails.
func (s *NarrativeService) Generate(ctx context.Context, sc model.ScoredCluster, exemplars []model.ComplaintExcerpt) (string, error) {
	prompt, err := s.renderNarrativeTemplate(sc, exemplars)
	if err != nil {
		return "", goerr.Wrap(err, "failed to render narrative template",
			goerr.T(ErrTagTemplateFailure))
	}

	ctx, cancel := context.WithTimeout(ctx, generateTimeout)
	defer cancel()

	session, err := s.llmClient.NewSession(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create LLM session")
	}

	response, err := session.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate narrative")
	}

	if len(response.Texts) == 0 || response.Texts[0] == "" {
		return "", goerr.New("empty response from LLM",
			goerr.T(ErrTagEmptyResponse))
	}

	return strings.TrimSpace(response.Texts[0]), nil
}

// Fallback builds a deterministic templated narrative from cluster metrics,
// used when the LLM is unavailable or fails
func Fallback(sc model.ScoredCluster) string {
	return fmt.Sprintf(
		"Cluster detected for product %s with failure mode '%s'. "+
			"%d complaints found across %d regions (%s). "+
			"%d injury reports. Confidence score: %.3f.",
		sc.ProductSKU, sc.FailureMode,
		sc.Count, sc.GeoSpread(), strings.Join(sc.Regions, ", "),
		sc.InjuryCount, sc.ConfidenceScore,
	)
}

// renderNarrativeTemplate renders the embedded narrative prompt
func (s *NarrativeService) renderNarrativeTemplate(sc model.ScoredCluster, exemplars []model.ComplaintExcerpt) (string, error) {
	templateContent, err := templateFS.ReadFile("templates/narrative.md")
	if err != nil {
		return "", goerr.Wrap(err, "failed to read narrative template")
	}

	tmpl, err := template.New("narrative").Parse(string(templateContent))
	if err != nil {
		return "", goerr.Wrap(err, "failed to parse narrative template")
	}

	data := narrativeTemplateData{
		ProductSKU:      sc.ProductSKU,
		FailureMode:     sc.FailureMode,
		Count:           sc.Count,
		InjuryCount:     sc.InjuryCount,
		InjuryRatePct:   fmt.Sprintf("%.1f%%", sc.InjuryRate()*100),
		GeoSpread:       sc.GeoSpread(),
		Regions:         strings.Join(sc.Regions, ", "),
		Velocity:        sc.Velocity,
		ConfidenceScore: sc.ConfidenceScore,
		Tier:            sc.Tier.String(),
		Exemplars:       exemplars,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", goerr.Wrap(err, "failed to execute narrative template")
	}

	return buf.String(), nil
}
