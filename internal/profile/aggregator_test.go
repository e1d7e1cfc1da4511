// internal/profile/aggregator_test.go
package profile

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-service/internal/model"
)

// fakeReader serves canned rows and honors the caller's limit the way
// the SQL store does.
type fakeReader struct {
	homePage   model.HomePage
	homeErr    error
	about      model.AboutSettings
	aboutErr   error
	education  []model.Education
	eduErr     error
	research   []model.Research
	skills     []model.Skill
	experience []model.Experience
	expErr     error
	posts      []model.BlogPost
	timeline   []model.TimelineEntry
}

func capped[T any](rows []T, limit int) []T {
	if len(rows) > limit {
		return rows[:limit]
	}
	return rows
}

func (f *fakeReader) GetHomePage(ctx context.Context) (model.HomePage, error) {
	return f.homePage, f.homeErr
}
func (f *fakeReader) GetAboutSettings(ctx context.Context) (model.AboutSettings, error) {
	return f.about, f.aboutErr
}
func (f *fakeReader) ListEducation(ctx context.Context, limit int) ([]model.Education, error) {
	return capped(f.education, limit), f.eduErr
}
func (f *fakeReader) ListResearch(ctx context.Context, limit int) ([]model.Research, error) {
	return capped(f.research, limit), nil
}
func (f *fakeReader) ListSkills(ctx context.Context, limit int) ([]model.Skill, error) {
	return capped(f.skills, limit), nil
}
func (f *fakeReader) ListExperience(ctx context.Context, limit int) ([]model.Experience, error) {
	return capped(f.experience, limit), f.expErr
}
func (f *fakeReader) ListPublishedPosts(ctx context.Context, limit int) ([]model.BlogPost, error) {
	return capped(f.posts, limit), nil
}
func (f *fakeReader) ListTimelineEntries(ctx context.Context, limit int) ([]model.TimelineEntry, error) {
	return capped(f.timeline, limit), nil
}

func newAggregator(r Reader) *Aggregator {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewAggregator(r, logger)
}

func TestAggregator_CapsAndTruncation(t *testing.T) {
	longDesc := strings.Repeat("x", 900)
	start := time.Date(2020, 1, 15, 0, 0, 0, 0, time.UTC)

	reader := &fakeReader{
		homePage: model.HomePage{
			HeroTitle:       "Jane Doe",
			HeroDescription: "Research Fellow at Example University",
			AboutSection:    strings.Repeat("a", 800),
		},
		about: model.AboutSettings{IntroBio: strings.Repeat("b", 700)},
	}
	for i := 0; i < 7; i++ {
		reader.experience = append(reader.experience, model.Experience{
			Title:       "Engineer",
			Company:     "Acme",
			Description: longDesc,
			StartDate:   &start,
		})
	}
	for i := 0; i < 40; i++ {
		reader.skills = append(reader.skills, model.Skill{Name: "Skill", Category: "OTHER", Proficiency: 50})
	}

	snapshot, results := newAggregator(reader).Gather(context.Background())

	// Spec'd scenario: zero education rows, seven experience rows.
	assert.Empty(t, snapshot.Education)
	assert.NotNil(t, snapshot.Education, "empty category stays an empty list, not null")
	require.Len(t, snapshot.Experience, 5, "experience capped at 5")
	for _, e := range snapshot.Experience {
		assert.LessOrEqual(t, len(e.Description), 300)
		assert.Equal(t, "Present", e.EndDate)
		assert.True(t, e.IsCurrent)
		assert.Equal(t, "2020-01-15", e.StartDate)
	}

	assert.Len(t, snapshot.Skills, 30, "skills capped at 30")
	assert.Len(t, snapshot.Homepage.AboutSection, 500)
	assert.Len(t, snapshot.About.Bio, 500)

	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestAggregator_CategoryFailureIsIsolated(t *testing.T) {
	reader := &fakeReader{
		homeErr: errors.New("relation does not exist"),
		eduErr:  errors.New("connection reset"),
		skills:  []model.Skill{{Name: "Go", Category: "PROGRAMMING", Proficiency: 90}},
	}

	snapshot, results := newAggregator(reader).Gather(context.Background())

	// Failed categories fall back to their defaults.
	assert.Zero(t, snapshot.Homepage)
	assert.Empty(t, snapshot.Education)

	// The rest are unaffected.
	require.Len(t, snapshot.Skills, 1)
	assert.Equal(t, "Go", snapshot.Skills[0].Name)

	// Failures stay observable per category.
	byName := map[string]CategoryResult{}
	for _, r := range results {
		byName[r.Category] = r
	}
	assert.Error(t, byName["homepage"].Err)
	assert.Error(t, byName["education"].Err)
	assert.NoError(t, byName["skills"].Err)
	assert.Equal(t, 1, byName["skills"].Count)
}

func TestAggregator_EmptyTablesAreNotFailures(t *testing.T) {
	snapshot, results := newAggregator(&fakeReader{}).Gather(context.Background())

	assert.Empty(t, snapshot.Research)
	assert.Empty(t, snapshot.BlogPosts)
	assert.Empty(t, snapshot.Timeline)
	for _, r := range results {
		assert.NoError(t, r.Err, "category %s", r.Category)
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abcd", 2))
	assert.Equal(t, "héł", truncate("héłlo", 3), "budget counts runes, not bytes")
}
