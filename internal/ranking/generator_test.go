// internal/ranking/generator_test.go
package ranking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "portfolio-service/internal/errors"
	"portfolio-service/internal/model"
	"portfolio-service/internal/profile"
	"portfolio-service/internal/provider"
)

const sampleResponse = `{
  "current_industry": "Higher Education",
  "rankings": [
    {"rank": 1, "industry_name": "Technology", "relevance_score": 92, "reasoning": "Strong engineering background.", "key_skills": "Go, Python, SQL"},
    {"rank": 2, "industry_name": "Higher Education", "relevance_score": 88, "reasoning": "Active academic researcher.", "key_skills": "Research, Teaching"},
    {"rank": 3, "industry_name": "Finance", "relevance_score": 70, "reasoning": "Quantitative skills.", "key_skills": "Statistics, Modelling"}
  ]
}`

// stubCompleter returns a canned response or error.
type stubCompleter struct {
	response string
	err      error
	calls    int
}

func (s *stubCompleter) Complete(ctx context.Context, system, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

// stubGatherer returns an empty snapshot.
type stubGatherer struct{}

func (stubGatherer) Gather(ctx context.Context) (model.ProfileSnapshot, []profile.CategoryResult) {
	return model.ProfileSnapshot{}, nil
}

// stubSettings is a mutable settings source, standing in for the live
// config object.
type stubSettings struct {
	key   string
	label string
}

func (s *stubSettings) RankingCredential() string    { return s.key }
func (s *stubSettings) RankingModel() string         { return "gpt-4o" }
func (s *stubSettings) CurrentIndustryLabel() string { return s.label }

// newTestGenerator wires a generator whose completer factory always hands
// back the given stub instead of a real API client.
func newTestGenerator(settings *stubSettings, store Store, completer *stubCompleter) *Generator {
	g := NewGenerator(stubGatherer{}, store, settings, testLogger())
	g.newCompleter = func(apiKey, model string) provider.Completer { return completer }
	return g
}

// MockRankingStore is a mock of the ranking.Store interface.
type MockRankingStore struct {
	mock.Mock
}

func (m *MockRankingStore) ReplaceRankings(ctx context.Context, rankings []model.IndustryRanking) error {
	args := m.Called(ctx, rankings)
	return args.Error(0)
}
func (m *MockRankingStore) GetRankingSettings(ctx context.Context) (model.RankingSettings, error) {
	args := m.Called(ctx)
	return args.Get(0).(model.RankingSettings), args.Error(1)
}
func (m *MockRankingStore) SaveRankingSettings(ctx context.Context, s model.RankingSettings) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestParseResponse(t *testing.T) {
	t.Run("plain JSON", func(t *testing.T) {
		resp, err := parseResponse(sampleResponse)
		require.NoError(t, err)
		assert.Equal(t, "Higher Education", resp.CurrentIndustry)
		assert.Len(t, resp.Rankings, 3)
	})

	t.Run("json-labeled fence decodes to the same object", func(t *testing.T) {
		fenced := "```json\n" + sampleResponse + "\n```"
		plain, err := parseResponse(sampleResponse)
		require.NoError(t, err)
		got, err := parseResponse(fenced)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("unlabeled fence decodes to the same object", func(t *testing.T) {
		fenced := "```\n" + sampleResponse + "\n```"
		plain, err := parseResponse(sampleResponse)
		require.NoError(t, err)
		got, err := parseResponse(fenced)
		require.NoError(t, err)
		assert.Equal(t, plain, got)
	})

	t.Run("fence with surrounding prose", func(t *testing.T) {
		wrapped := "Here are the rankings you asked for:\n```json\n" + sampleResponse + "\n```"
		got, err := parseResponse(wrapped)
		require.NoError(t, err)
		assert.Equal(t, "Higher Education", got.CurrentIndustry)
	})

	t.Run("opening fence without a closing one", func(t *testing.T) {
		plain, err := parseResponse(sampleResponse)
		require.NoError(t, err)

		for name, truncated := range map[string]string{
			"labeled":    "```json\n" + sampleResponse,
			"unlabeled":  "```\n" + sampleResponse,
			"with prose": "Here you go:\n```json\n" + sampleResponse,
		} {
			got, err := parseResponse(truncated)
			require.NoError(t, err, name)
			assert.Equal(t, plain, got, name)
		}
	})

	t.Run("malformed response is an explicit failure", func(t *testing.T) {
		_, err := parseResponse("I am unable to produce rankings today.")
		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrInvalidResponse)
	})
}

func TestApplyRankings(t *testing.T) {
	t.Run("current industry pinned to rank 1 with score floor", func(t *testing.T) {
		resp, err := parseResponse(sampleResponse)
		require.NoError(t, err)

		rankings := applyRankings(resp)

		require.Len(t, rankings, 3)
		assert.Equal(t, "Higher Education", rankings[0].IndustryName)
		assert.Equal(t, 1, rankings[0].Rank)
		assert.Equal(t, 95.0, rankings[0].RelevanceScore, "score raised to the floor")
		assert.True(t, rankings[0].IsCurrentIndustry)

		// The rest keep the model's list order, renumbered from 2.
		assert.Equal(t, "Technology", rankings[1].IndustryName)
		assert.Equal(t, 2, rankings[1].Rank)
		assert.Equal(t, 92.0, rankings[1].RelevanceScore)
		assert.Equal(t, "Finance", rankings[2].IndustryName)
		assert.Equal(t, 3, rankings[2].Rank)
	})

	t.Run("score above the floor is kept", func(t *testing.T) {
		resp := &rankingResponse{
			CurrentIndustry: "Technology",
			Rankings: []rankingEntry{
				{IndustryName: "Technology", RelevanceScore: 98},
			},
		}
		rankings := applyRankings(resp)
		require.Len(t, rankings, 1)
		assert.Equal(t, 98.0, rankings[0].RelevanceScore)
	})

	t.Run("match is case-insensitive", func(t *testing.T) {
		resp := &rankingResponse{
			CurrentIndustry: "higher education",
			Rankings: []rankingEntry{
				{IndustryName: "Technology", RelevanceScore: 90},
				{IndustryName: "HIGHER EDUCATION", RelevanceScore: 80},
			},
		}
		rankings := applyRankings(resp)
		require.Len(t, rankings, 2)
		assert.Equal(t, "HIGHER EDUCATION", rankings[0].IndustryName)
		assert.True(t, rankings[0].IsCurrentIndustry)
	})

	t.Run("no match leaves model order at ranks 1..n", func(t *testing.T) {
		resp := &rankingResponse{
			CurrentIndustry: "Aerospace",
			Rankings: []rankingEntry{
				{IndustryName: "Technology", RelevanceScore: 40},
				{IndustryName: "Finance", RelevanceScore: 90},
				{IndustryName: "Healthcare", RelevanceScore: 60},
			},
		}
		rankings := applyRankings(resp)

		require.Len(t, rankings, 3)
		for i, r := range rankings {
			assert.Equal(t, i+1, r.Rank)
			assert.False(t, r.IsCurrentIndustry, "nothing is forced to rank 1 by name")
		}
		// Model order preserved, no re-sort by score.
		assert.Equal(t, "Technology", rankings[0].IndustryName)
		assert.Equal(t, "Finance", rankings[1].IndustryName)
		assert.Equal(t, "Healthcare", rankings[2].IndustryName)
	})

	t.Run("caps at ten entries with a current match", func(t *testing.T) {
		resp := &rankingResponse{CurrentIndustry: "Ind0"}
		for i := 0; i < 15; i++ {
			resp.Rankings = append(resp.Rankings, rankingEntry{
				IndustryName:   fmt.Sprintf("Ind%d", i),
				RelevanceScore: float64(100 - i),
			})
		}
		rankings := applyRankings(resp)

		require.Len(t, rankings, 10)
		assert.Equal(t, "Ind0", rankings[0].IndustryName)
		for i, r := range rankings {
			assert.Equal(t, i+1, r.Rank, "ranks are contiguous from 1")
		}
		assert.Equal(t, "Ind9", rankings[9].IndustryName)
	})

	t.Run("caps at nine entries without a current match", func(t *testing.T) {
		resp := &rankingResponse{CurrentIndustry: "Nowhere"}
		for i := 0; i < 15; i++ {
			resp.Rankings = append(resp.Rankings, rankingEntry{IndustryName: fmt.Sprintf("Ind%d", i)})
		}
		rankings := applyRankings(resp)

		require.Len(t, rankings, 9)
		assert.Equal(t, 1, rankings[0].Rank)
		assert.Equal(t, 9, rankings[8].Rank)
	})

	t.Run("all rows are active", func(t *testing.T) {
		resp, err := parseResponse(sampleResponse)
		require.NoError(t, err)
		for _, r := range applyRankings(resp) {
			assert.True(t, r.IsActive)
		}
	})
}

func TestGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("missing credential fails before any call", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{response: sampleResponse}
		g := newTestGenerator(&stubSettings{}, mockStore, completer)

		err := g.Generate(ctx)

		var missing *apperrors.ErrMissingCredential
		require.ErrorAs(t, err, &missing)
		assert.Zero(t, completer.calls)
		mockStore.AssertNotCalled(t, "ReplaceRankings")
	})

	t.Run("credential added after startup is used on the next run", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{response: sampleResponse}
		settings := &stubSettings{}
		g := newTestGenerator(settings, mockStore, completer)

		var missing *apperrors.ErrMissingCredential
		require.ErrorAs(t, g.Generate(ctx), &missing)

		// The key appears via a config reload; no new generator is built.
		settings.key = "sk-test"
		mockStore.On("ReplaceRankings", ctx, mock.Anything).Return(nil).Once()
		mockStore.On("GetRankingSettings", ctx).Return(model.RankingSettings{}, nil).Once()
		mockStore.On("SaveRankingSettings", ctx, mock.Anything).Return(nil).Once()

		require.NoError(t, g.Generate(ctx))
		assert.Equal(t, 1, completer.calls)
		mockStore.AssertExpectations(t)
	})

	t.Run("malformed model output leaves rankings untouched", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{response: "not json at all"}
		g := newTestGenerator(&stubSettings{key: "sk-test"}, mockStore, completer)

		err := g.Generate(ctx)

		require.Error(t, err)
		assert.ErrorIs(t, err, provider.ErrInvalidResponse)
		mockStore.AssertNotCalled(t, "ReplaceRankings")
		mockStore.AssertNotCalled(t, "SaveRankingSettings")
	})

	t.Run("completion failure leaves rankings untouched", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{err: errors.New("network down")}
		g := newTestGenerator(&stubSettings{key: "sk-test"}, mockStore, completer)

		err := g.Generate(ctx)

		require.Error(t, err)
		mockStore.AssertNotCalled(t, "ReplaceRankings")
	})

	t.Run("successful run replaces rankings and stamps settings", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{response: "```json\n" + sampleResponse + "\n```"}
		g := newTestGenerator(&stubSettings{key: "sk-test"}, mockStore, completer)
		generatedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return generatedAt }

		mockStore.On("ReplaceRankings", ctx, mock.MatchedBy(func(rankings []model.IndustryRanking) bool {
			return len(rankings) == 3 && rankings[0].IndustryName == "Higher Education" && rankings[0].Rank == 1
		})).Return(nil).Once()
		mockStore.On("GetRankingSettings", ctx).Return(model.RankingSettings{}, nil).Once()
		mockStore.On("SaveRankingSettings", ctx, model.RankingSettings{
			CurrentIndustry: "Higher Education",
			LastGeneratedAt: &generatedAt,
		}).Return(nil).Once()

		err := g.Generate(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, completer.calls)
		mockStore.AssertExpectations(t)
	})

	t.Run("configured industry label seeds blank settings", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{response: sampleResponse}
		g := newTestGenerator(&stubSettings{key: "sk-test", label: "Academia"}, mockStore, completer)
		generatedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return generatedAt }

		mockStore.On("ReplaceRankings", ctx, mock.Anything).Return(nil).Once()
		mockStore.On("GetRankingSettings", ctx).Return(model.RankingSettings{}, nil).Once()
		mockStore.On("SaveRankingSettings", ctx, model.RankingSettings{
			CurrentIndustry: "Academia",
			LastGeneratedAt: &generatedAt,
		}).Return(nil).Once()

		require.NoError(t, g.Generate(ctx))
		mockStore.AssertExpectations(t)
	})

	t.Run("current industry setting is not overwritten once set", func(t *testing.T) {
		mockStore := new(MockRankingStore)
		completer := &stubCompleter{response: sampleResponse}
		g := newTestGenerator(&stubSettings{key: "sk-test", label: "Academia"}, mockStore, completer)
		generatedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		g.now = func() time.Time { return generatedAt }

		mockStore.On("ReplaceRankings", ctx, mock.Anything).Return(nil).Once()
		mockStore.On("GetRankingSettings", ctx).Return(model.RankingSettings{CurrentIndustry: "Technology"}, nil).Once()
		mockStore.On("SaveRankingSettings", ctx, model.RankingSettings{
			CurrentIndustry: "Technology",
			LastGeneratedAt: &generatedAt,
		}).Return(nil).Once()

		require.NoError(t, g.Generate(ctx))
		mockStore.AssertExpectations(t)
	})
}
