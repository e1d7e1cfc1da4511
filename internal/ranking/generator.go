// internal/ranking/generator.go
package ranking

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	apperrors "portfolio-service/internal/errors"
	"portfolio-service/internal/model"
	"portfolio-service/internal/profile"
	"portfolio-service/internal/provider"
)

const (
	maxRankings = 10
	maxOthers   = 9

	// Score floor applied to the entry pinned as the current industry.
	currentIndustryFloor = 95
)

// Gatherer builds the profile snapshot fed into the prompt.
type Gatherer interface {
	Gather(ctx context.Context) (model.ProfileSnapshot, []profile.CategoryResult)
}

// Store is the subset of the persistence layer the generator uses.
type Store interface {
	ReplaceRankings(ctx context.Context, rankings []model.IndustryRanking) error
	GetRankingSettings(ctx context.Context) (model.RankingSettings, error)
	SaveRankingSettings(ctx context.Context, s model.RankingSettings) error
}

// Settings exposes the live process configuration the generator reads on
// every run. Reading per run rather than at construction means a
// credential added through a config reload works without a restart.
type Settings interface {
	RankingCredential() string
	RankingModel() string
	CurrentIndustryLabel() string
}

// Generator runs one ranking-generation cycle: aggregate the profile,
// ask the model for industry rankings, and replace the persisted set.
type Generator struct {
	gatherer     Gatherer
	store        Store
	settings     Settings
	newCompleter func(apiKey, model string) provider.Completer
	logger       *slog.Logger
	now          func() time.Time
}

// NewGenerator creates a new Generator backed by the OpenAI completer.
// The credential is resolved per run; a missing key fails Generate before
// any network call.
func NewGenerator(gatherer Gatherer, store Store, settings Settings, logger *slog.Logger) *Generator {
	return &Generator{
		gatherer: gatherer,
		store:    store,
		settings: settings,
		newCompleter: func(apiKey, model string) provider.Completer {
			return provider.NewOpenAICompleter(apiKey, model)
		},
		logger: logger,
		now:    time.Now,
	}
}

// rankingResponse is the expected JSON structure from the model.
type rankingResponse struct {
	CurrentIndustry string         `json:"current_industry"`
	Rankings        []rankingEntry `json:"rankings"`
}

type rankingEntry struct {
	Rank           int     `json:"rank"`
	IndustryName   string  `json:"industry_name"`
	RelevanceScore float64 `json:"relevance_score"`
	Reasoning      string  `json:"reasoning"`
	KeySkills      string  `json:"key_skills"`
}

// Generate runs one full generation cycle. On any failure the persisted
// ranking set is left untouched.
func (g *Generator) Generate(ctx context.Context) error {
	key := g.settings.RankingCredential()
	if key == "" {
		return &apperrors.ErrMissingCredential{Name: "OPENAI_API_KEY"}
	}
	completer := g.newCompleter(key, g.settings.RankingModel())

	snapshot, categories := g.gatherer.Gather(ctx)
	for _, c := range categories {
		if c.Err != nil {
			g.logger.Warn("Generating rankings with incomplete profile", "category", c.Category)
		}
	}

	prompt, err := BuildPrompt(snapshot)
	if err != nil {
		return fmt.Errorf("building prompt: %w", err)
	}

	raw, err := completer.Complete(ctx, systemMessage, prompt)
	if err != nil {
		g.logger.Error("Ranking completion failed", "error", err)
		return err
	}

	resp, err := parseResponse(raw)
	if err != nil {
		g.logger.Error("Ranking response unparseable", "error", err)
		return err
	}

	rankings := applyRankings(resp)
	if err := g.store.ReplaceRankings(ctx, rankings); err != nil {
		return fmt.Errorf("replacing rankings: %w", err)
	}

	if err := g.updateSettings(ctx, resp.CurrentIndustry); err != nil {
		return err
	}

	g.logger.Info("Industry rankings generated", "count", len(rankings), "current_industry", resp.CurrentIndustry)
	return nil
}

// updateSettings stamps the last-generated time and backfills the
// current-industry label only when it was previously blank. The
// operator-configured label takes precedence over the model's declared
// one for the seed; a stored label is never overwritten by either.
func (g *Generator) updateSettings(ctx context.Context, declared string) error {
	settings, err := g.store.GetRankingSettings(ctx)
	if err != nil {
		return err
	}
	now := g.now().UTC()
	settings.LastGeneratedAt = &now
	if settings.CurrentIndustry == "" {
		if label := g.settings.CurrentIndustryLabel(); label != "" {
			settings.CurrentIndustry = label
		} else if declared != "" {
			settings.CurrentIndustry = declared
		}
	}
	return g.store.SaveRankingSettings(ctx, settings)
}

// codeFenceRe matches markdown code fences around JSON, labeled or not.
var codeFenceRe = regexp.MustCompile("(?s)```(?:json)?\\s*\n?(.*?)\\s*```")

// parseResponse parses the model's JSON response, stripping markdown
// fences if present. An opening fence without a closing one is accepted
// too; models sometimes stop before emitting it.
func parseResponse(raw string) (*rankingResponse, error) {
	cleaned := strings.TrimSpace(raw)

	if matches := codeFenceRe.FindStringSubmatch(cleaned); len(matches) > 1 {
		cleaned = strings.TrimSpace(matches[1])
	} else if _, after, found := strings.Cut(cleaned, "```json"); found {
		cleaned = strings.TrimSpace(after)
	} else if _, after, found := strings.Cut(cleaned, "```"); found {
		cleaned = strings.TrimSpace(after)
	}

	var resp rankingResponse
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, fmt.Errorf("%w: %s", provider.ErrInvalidResponse, err)
	}
	return &resp, nil
}

// applyRankings turns the model's response into the rows to persist.
// The entry whose name case-insensitively equals the declared current
// industry is pinned to rank 1 with a score floor; every other entry
// keeps the model's list order and is renumbered from there. No
// re-sorting by score: the model's ordering is the business rule.
func applyRankings(resp *rankingResponse) []model.IndustryRanking {
	entries := resp.Rankings
	if len(entries) > maxRankings {
		entries = entries[:maxRankings]
	}

	var current *rankingEntry
	var others []rankingEntry
	for i := range entries {
		e := entries[i]
		if resp.CurrentIndustry != "" && strings.EqualFold(e.IndustryName, resp.CurrentIndustry) {
			current = &e
		} else {
			others = append(others, e)
		}
	}
	if len(others) > maxOthers {
		others = others[:maxOthers]
	}

	var rankings []model.IndustryRanking
	rank := 1
	if current != nil {
		score := current.RelevanceScore
		if score < currentIndustryFloor {
			score = currentIndustryFloor
		}
		rankings = append(rankings, model.IndustryRanking{
			IndustryName:      current.IndustryName,
			Rank:              1,
			RelevanceScore:    score,
			Reasoning:         current.Reasoning,
			KeySkills:         current.KeySkills,
			IsCurrentIndustry: true,
			IsActive:          true,
		})
		rank = 2
	}

	for _, e := range others {
		rankings = append(rankings, model.IndustryRanking{
			IndustryName:   e.IndustryName,
			Rank:           rank,
			RelevanceScore: e.RelevanceScore,
			Reasoning:      e.Reasoning,
			KeySkills:      e.KeySkills,
			IsActive:       true,
		})
		rank++
	}
	return rankings
}
