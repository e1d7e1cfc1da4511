// internal/model/models.go
package model

import (
	"time"
)

// Repository is the local mirror of a GitHub repository.
// GithubID is the upstream identifier; it is unique and never changes,
// so all sync operations key on it rather than the local ID.
type Repository struct {
	ID              int64      `json:"id"`
	GithubID        int64      `json:"github_id"`
	Name            string     `json:"name"`
	FullName        string     `json:"full_name"`
	Description     *string    `json:"description"`
	URL             string     `json:"url"`
	Homepage        string     `json:"homepage"`
	StarsCount      int        `json:"stars_count"`
	ForksCount      int        `json:"forks_count"`
	WatchersCount   int        `json:"watchers_count"`
	OpenIssuesCount int        `json:"open_issues_count"`
	SizeKB          int        `json:"size_kb"`
	PrimaryLanguage *string    `json:"primary_language"`
	Topics          []string   `json:"topics"`
	IsFork          bool       `json:"is_fork"`
	IsPrivate       bool       `json:"is_private"`
	IsArchived      bool       `json:"is_archived"`
	RepoCreatedAt   *time.Time `json:"repo_created_at"`
	RepoUpdatedAt   *time.Time `json:"repo_updated_at"`
	RepoPushedAt    *time.Time `json:"repo_pushed_at"`

	// Local-only display settings; sync never touches them except LastSyncedAt.
	Featured          bool       `json:"featured"`
	DisplayOrder      int        `json:"display_order"`
	CustomDescription string     `json:"custom_description"`
	LastSyncedAt      *time.Time `json:"last_synced_at"`
}

// DisplayDescription prefers the locally curated description over the
// upstream one.
func (r *Repository) DisplayDescription() string {
	if r.CustomDescription != "" {
		return r.CustomDescription
	}
	if r.Description != nil && *r.Description != "" {
		return *r.Description
	}
	return "No description available"
}

// Language is one language's share of a repository's bytes. The full set
// for a repository is replaced on every sync.
type Language struct {
	ID           int64   `json:"id"`
	RepositoryID int64   `json:"repository_id"`
	Name         string  `json:"name"`
	BytesCount   int64   `json:"bytes_count"`
	Percentage   float64 `json:"percentage"`
}

// Commit is cached commit metadata for a repository.
type Commit struct {
	ID           int64     `json:"id"`
	RepositoryID int64     `json:"repository_id"`
	SHA          string    `json:"sha"`
	Message      string    `json:"message"`
	AuthorName   string    `json:"author_name"`
	AuthorEmail  string    `json:"author_email"`
	CommittedAt  time.Time `json:"committed_at"`
	URL          string    `json:"url"`
}

// IndustryRanking is one row of the AI-generated industry relevance set.
// Ranks are contiguous from 1 within the set written by a single
// generation run.
type IndustryRanking struct {
	ID                int64   `json:"id"`
	IndustryName      string  `json:"industry_name"`
	Rank              int     `json:"rank"`
	RelevanceScore    float64 `json:"relevance_score"`
	Reasoning         string  `json:"reasoning"`
	KeySkills         string  `json:"key_skills"`
	IsCurrentIndustry bool    `json:"is_current_industry"`
	IsActive          bool    `json:"is_active"`
}

// RankingSettings is the durable state of the ranking generator. The
// backing table holds exactly one row.
type RankingSettings struct {
	CurrentIndustry string     `json:"current_industry"`
	LastGeneratedAt *time.Time `json:"last_generated_at"`
}

// ProfileSnapshot is the aggregator's output: a fixed-shape, bounded view
// of the profile data fed into the ranking prompt. Built fresh on every
// generation request, never cached or persisted.
type ProfileSnapshot struct {
	Homepage   HomepageInfo      `json:"homepage"`
	About      AboutInfo         `json:"about"`
	Education  []EducationEntry  `json:"education"`
	Research   []ResearchEntry   `json:"research"`
	Skills     []SkillEntry      `json:"skills"`
	Experience []ExperienceEntry `json:"experience"`
	BlogPosts  []BlogPostEntry   `json:"blog_posts"`
	Timeline   []TimelineInfo    `json:"timeline"`
}

type HomepageInfo struct {
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
	AboutSection string `json:"about_section,omitempty"`
}

type AboutInfo struct {
	Bio string `json:"bio,omitempty"`
}

type EducationEntry struct {
	Degree      string `json:"degree"`
	Field       string `json:"field"`
	Institution string `json:"institution"`
	Location    string `json:"location,omitempty"`
	Description string `json:"description,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
}

type ResearchEntry struct {
	Title    string `json:"title"`
	Type     string `json:"type"`
	Abstract string `json:"abstract,omitempty"`
}

type SkillEntry struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency int    `json:"proficiency"`
}

type ExperienceEntry struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
	StartDate   string `json:"start_date,omitempty"`
	EndDate     string `json:"end_date,omitempty"`
	IsCurrent   bool   `json:"is_current"`
}

type BlogPostEntry struct {
	Title   string `json:"title"`
	Excerpt string `json:"excerpt,omitempty"`
}

type TimelineInfo struct {
	Period string `json:"period"`
	Title  string `json:"title"`
	Year   string `json:"year"`
}

// Profile source rows, read by the aggregator.

type Education struct {
	ID           int64
	Degree       string
	Field        string
	Institution  string
	Location     string
	Description  string
	StartDate    *time.Time
	EndDate      *time.Time
	DisplayOrder int
}

type Research struct {
	ID           int64
	Title        string
	Type         string
	Abstract     string
	Featured     bool
	DisplayOrder int
}

type Skill struct {
	ID           int64
	Name         string
	Category     string
	Proficiency  int
	DisplayOrder int
}

type Experience struct {
	ID           int64
	Title        string
	Company      string
	Location     string
	Description  string
	StartDate    *time.Time
	EndDate      *time.Time
	DisplayOrder int
}

type BlogPost struct {
	ID          int64
	Title       string
	Excerpt     string
	Status      string
	PublishedAt *time.Time
}

type TimelineEntry struct {
	ID           int64
	Period       string
	Title        string
	Year         string
	IsActive     bool
	DisplayOrder int
}

type HomePage struct {
	ID              int64
	HeroTitle       string
	HeroDescription string
	AboutSection    string
}

type AboutSettings struct {
	ID       int64
	IntroBio string
}
