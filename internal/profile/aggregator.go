// internal/profile/aggregator.go
package profile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"portfolio-service/internal/model"
)

// Per-category caps and string budgets bounding the snapshot, and with
// it the size of the ranking prompt.
const (
	maxEducation  = 5
	maxResearch   = 10
	maxSkills     = 30
	maxExperience = 5
	maxBlogPosts  = 10
	maxTimeline   = 10

	heroBudget       = 500
	bioBudget        = 500
	educationBudget  = 200
	abstractBudget   = 200
	experienceBudget = 300
	excerptBudget    = 150
)

// Reader is the subset of the persistence layer the aggregator uses.
type Reader interface {
	GetHomePage(ctx context.Context) (model.HomePage, error)
	GetAboutSettings(ctx context.Context) (model.AboutSettings, error)
	ListEducation(ctx context.Context, limit int) ([]model.Education, error)
	ListResearch(ctx context.Context, limit int) ([]model.Research, error)
	ListSkills(ctx context.Context, limit int) ([]model.Skill, error)
	ListExperience(ctx context.Context, limit int) ([]model.Experience, error)
	ListPublishedPosts(ctx context.Context, limit int) ([]model.BlogPost, error)
	ListTimelineEntries(ctx context.Context, limit int) ([]model.TimelineEntry, error)
}

// CategoryResult records the outcome of reading one snapshot category.
// A failed category leaves its slot at the default empty value; the
// failure stays visible here instead of being swallowed.
type CategoryResult struct {
	Category string
	Count    int
	Err      error
}

// Aggregator flattens the profile tables into a single bounded snapshot.
type Aggregator struct {
	reader Reader
	logger *slog.Logger
}

// NewAggregator creates a new Aggregator instance.
func NewAggregator(reader Reader, logger *slog.Logger) *Aggregator {
	return &Aggregator{reader: reader, logger: logger}
}

// Gather builds a fresh snapshot. Pure read, never cached. A failure in
// one category is recorded and logged but never aborts the others.
func (a *Aggregator) Gather(ctx context.Context) (model.ProfileSnapshot, []CategoryResult) {
	snapshot := model.ProfileSnapshot{
		Education:  []model.EducationEntry{},
		Research:   []model.ResearchEntry{},
		Skills:     []model.SkillEntry{},
		Experience: []model.ExperienceEntry{},
		BlogPosts:  []model.BlogPostEntry{},
		Timeline:   []model.TimelineInfo{},
	}
	var results []CategoryResult

	record := func(category string, count int, err error) {
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			a.logger.Warn("Profile category read failed", "category", category, "error", err)
		} else {
			err = nil
		}
		results = append(results, CategoryResult{Category: category, Count: count, Err: err})
	}

	if home, err := a.reader.GetHomePage(ctx); err != nil {
		record("homepage", 0, err)
	} else {
		snapshot.Homepage = model.HomepageInfo{
			Title:        home.HeroTitle,
			Description:  home.HeroDescription,
			AboutSection: truncate(home.AboutSection, heroBudget),
		}
		record("homepage", 1, nil)
	}

	if about, err := a.reader.GetAboutSettings(ctx); err != nil {
		record("about", 0, err)
	} else {
		snapshot.About = model.AboutInfo{Bio: truncate(about.IntroBio, bioBudget)}
		record("about", 1, nil)
	}

	if rows, err := a.reader.ListEducation(ctx, maxEducation); err != nil {
		record("education", 0, err)
	} else {
		for _, e := range rows {
			snapshot.Education = append(snapshot.Education, model.EducationEntry{
				Degree:      e.Degree,
				Field:       e.Field,
				Institution: e.Institution,
				Location:    e.Location,
				Description: truncate(e.Description, educationBudget),
				StartDate:   formatDate(e.StartDate, ""),
				EndDate:     formatDate(e.EndDate, "Present"),
			})
		}
		record("education", len(rows), nil)
	}

	if rows, err := a.reader.ListResearch(ctx, maxResearch); err != nil {
		record("research", 0, err)
	} else {
		for _, r := range rows {
			snapshot.Research = append(snapshot.Research, model.ResearchEntry{
				Title:    r.Title,
				Type:     r.Type,
				Abstract: truncate(r.Abstract, abstractBudget),
			})
		}
		record("research", len(rows), nil)
	}

	if rows, err := a.reader.ListSkills(ctx, maxSkills); err != nil {
		record("skills", 0, err)
	} else {
		for _, s := range rows {
			snapshot.Skills = append(snapshot.Skills, model.SkillEntry{
				Name:        s.Name,
				Category:    s.Category,
				Proficiency: s.Proficiency,
			})
		}
		record("skills", len(rows), nil)
	}

	if rows, err := a.reader.ListExperience(ctx, maxExperience); err != nil {
		record("experience", 0, err)
	} else {
		for _, e := range rows {
			snapshot.Experience = append(snapshot.Experience, model.ExperienceEntry{
				Title:       e.Title,
				Company:     e.Company,
				Description: truncate(e.Description, experienceBudget),
				Location:    e.Location,
				StartDate:   formatDate(e.StartDate, ""),
				EndDate:     formatDate(e.EndDate, "Present"),
				IsCurrent:   e.EndDate == nil,
			})
		}
		record("experience", len(rows), nil)
	}

	if rows, err := a.reader.ListPublishedPosts(ctx, maxBlogPosts); err != nil {
		record("blog_posts", 0, err)
	} else {
		for _, p := range rows {
			snapshot.BlogPosts = append(snapshot.BlogPosts, model.BlogPostEntry{
				Title:   p.Title,
				Excerpt: truncate(p.Excerpt, excerptBudget),
			})
		}
		record("blog_posts", len(rows), nil)
	}

	if rows, err := a.reader.ListTimelineEntries(ctx, maxTimeline); err != nil {
		record("timeline", 0, err)
	} else {
		for _, t := range rows {
			snapshot.Timeline = append(snapshot.Timeline, model.TimelineInfo{
				Period: t.Period,
				Title:  t.Title,
				Year:   t.Year,
			})
		}
		record("timeline", len(rows), nil)
	}

	return snapshot, results
}

func truncate(s string, budget int) string {
	r := []rune(s)
	if len(r) <= budget {
		return s
	}
	return string(r[:budget])
}

func formatDate(t *time.Time, fallback string) string {
	if t == nil {
		return fallback
	}
	return t.Format("2006-01-02")
}
