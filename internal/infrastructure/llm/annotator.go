package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"MarketScanner/internal/domain"
	"MarketScanner/internal/ports"
)

const systemPrompt = `You are a market intelligence analyst. Given a news article, assess its market sentiment and extract the key points.

Output as JSON only, no other text:
{
  "sentiment": -1.0 to 1.0 (negative = bearish, positive = bullish),
  "summary": "concise summary of the article and its market implications, at most 200 words",
  "implications": "one sentence on what this means for the market",
  "keywords": ["up to 5 lowercase keywords"]
}`

// fallbackSummaryLimit caps how much of the description the default
// annotation carries.
const fallbackSummaryLimit = 200

const placeholderSummary = "No summary available."

// Annotator computes sentiment, summary and keywords for one article via a
// single completion call. It never fails: call errors and unparseable output
// both degrade to a deterministic default result.
type Annotator struct {
	completer ChatCompleter
	logger    *slog.Logger
}

var _ ports.Annotator = (*Annotator)(nil)

// NewAnnotator wires a chat completer.
func NewAnnotator(completer ChatCompleter, logger *slog.Logger) *Annotator {
	return &Annotator{completer: completer, logger: logger}
}

// Annotate builds the prompt from title and description, invokes the model
// once and parses the structured response. The returned result is always
// fully populated.
func (a *Annotator) Annotate(ctx context.Context, article domain.RawArticle) domain.AnnotationResult {
	userPrompt := fmt.Sprintf("Title: %s\nDescription: %s", article.Title, article.Description)

	content, err := a.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		a.warn("completion failed, using default annotation", "url", article.URL, "error", err)
		return defaultAnnotation(article)
	}

	parsed, err := parseAnnotation(content)
	if err != nil {
		a.warn("unparseable annotation, using default", "url", article.URL, "error", err)
		return defaultAnnotation(article)
	}

	return parsed
}

func parseAnnotation(content string) (domain.AnnotationResult, error) {
	var parsed struct {
		Sentiment    float64  `json:"sentiment"`
		Summary      string   `json:"summary"`
		Insights     string   `json:"insights"`
		Implications string   `json:"implications"`
		Keywords     []string `json:"keywords"`
	}

	cleaned := cleanJSONResponse(content)
	if err := json.Unmarshal([]byte(cleaned), &parsed); err != nil {
		return domain.AnnotationResult{}, fmt.Errorf("parse annotation: %w", err)
	}

	summary := strings.TrimSpace(parsed.Summary)
	if summary == "" {
		summary = strings.TrimSpace(parsed.Insights)
	}
	if summary == "" {
		return domain.AnnotationResult{}, fmt.Errorf("annotation response has no summary")
	}

	keywords := parsed.Keywords
	if keywords == nil {
		keywords = []string{}
	}

	return domain.AnnotationResult{
		SentimentScore: clampSentiment(parsed.Sentiment),
		Summary:        summary,
		Keywords:       keywords,
	}, nil
}

func defaultAnnotation(article domain.RawArticle) domain.AnnotationResult {
	summary := strings.TrimSpace(article.Description)
	if summary == "" {
		summary = placeholderSummary
	} else if runes := []rune(summary); len(runes) > fallbackSummaryLimit {
		summary = string(runes[:fallbackSummaryLimit])
	}

	return domain.AnnotationResult{
		SentimentScore: 0,
		Summary:        summary,
		Keywords:       []string{},
	}
}

func clampSentiment(score float64) float64 {
	if score > 1 {
		return 1
	}
	if score < -1 {
		return -1
	}
	return score
}

func (a *Annotator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
