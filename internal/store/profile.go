// internal/store/profile.go
package store

import (
	"context"
	"fmt"

	"portfolio-service/internal/model"
)

// Profile reads used by the aggregator. All lists honor a caller-supplied
// cap so the aggregator's per-category bounds are enforced in SQL.

// GetHomePage reads the home page content row. pgx.ErrNoRows when unset.
func (d *DB) GetHomePage(ctx context.Context) (model.HomePage, error) {
	var h model.HomePage
	err := d.pool.QueryRow(ctx,
		`SELECT id, hero_title, hero_description, about_section
		 FROM home_page ORDER BY id ASC LIMIT 1`,
	).Scan(&h.ID, &h.HeroTitle, &h.HeroDescription, &h.AboutSection)
	if err != nil {
		return model.HomePage{}, err
	}
	return h, nil
}

// GetAboutSettings reads the about page content row.
func (d *DB) GetAboutSettings(ctx context.Context) (model.AboutSettings, error) {
	var a model.AboutSettings
	err := d.pool.QueryRow(ctx,
		`SELECT id, intro_bio FROM about_settings ORDER BY id ASC LIMIT 1`,
	).Scan(&a.ID, &a.IntroBio)
	if err != nil {
		return model.AboutSettings{}, err
	}
	return a, nil
}

// ListEducation returns education rows in display order, capped at limit.
func (d *DB) ListEducation(ctx context.Context, limit int) ([]model.Education, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, degree, field, institution, location, description,
		        start_date, end_date, display_order
		 FROM education ORDER BY display_order ASC, start_date DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing education: %w", err)
	}
	defer rows.Close()

	var entries []model.Education
	for rows.Next() {
		var e model.Education
		if err := rows.Scan(&e.ID, &e.Degree, &e.Field, &e.Institution, &e.Location,
			&e.Description, &e.StartDate, &e.EndDate, &e.DisplayOrder); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListResearch returns research rows, featured first, capped at limit.
func (d *DB) ListResearch(ctx context.Context, limit int) ([]model.Research, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, title, research_type, abstract, featured, display_order
		 FROM research ORDER BY featured DESC, display_order ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing research: %w", err)
	}
	defer rows.Close()

	var entries []model.Research
	for rows.Next() {
		var r model.Research
		if err := rows.Scan(&r.ID, &r.Title, &r.Type, &r.Abstract, &r.Featured, &r.DisplayOrder); err != nil {
			return nil, err
		}
		entries = append(entries, r)
	}
	return entries, rows.Err()
}

// ListSkills returns skill rows in display order, capped at limit.
func (d *DB) ListSkills(ctx context.Context, limit int) ([]model.Skill, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, name, category, proficiency, display_order
		 FROM skills ORDER BY display_order ASC, name ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	defer rows.Close()

	var entries []model.Skill
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Proficiency, &s.DisplayOrder); err != nil {
			return nil, err
		}
		entries = append(entries, s)
	}
	return entries, rows.Err()
}

// ListExperience returns experience rows, most recent first, capped at limit.
func (d *DB) ListExperience(ctx context.Context, limit int) ([]model.Experience, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, title, company, location, description, start_date, end_date, display_order
		 FROM experience ORDER BY display_order ASC, start_date DESC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing experience: %w", err)
	}
	defer rows.Close()

	var entries []model.Experience
	for rows.Next() {
		var e model.Experience
		if err := rows.Scan(&e.ID, &e.Title, &e.Company, &e.Location, &e.Description,
			&e.StartDate, &e.EndDate, &e.DisplayOrder); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListPublishedPosts returns published blog posts, newest first, capped at limit.
func (d *DB) ListPublishedPosts(ctx context.Context, limit int) ([]model.BlogPost, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, title, excerpt, status, published_at
		 FROM blog_posts WHERE status = 'PUBLISHED'
		 ORDER BY published_at DESC NULLS LAST LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing blog posts: %w", err)
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		if err := rows.Scan(&p.ID, &p.Title, &p.Excerpt, &p.Status, &p.PublishedAt); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// ListTimelineEntries returns active timeline entries, capped at limit.
func (d *DB) ListTimelineEntries(ctx context.Context, limit int) ([]model.TimelineEntry, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, period, title, year, is_active, display_order
		 FROM timeline_entries WHERE is_active
		 ORDER BY display_order ASC LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing timeline entries: %w", err)
	}
	defer rows.Close()

	var entries []model.TimelineEntry
	for rows.Next() {
		var t model.TimelineEntry
		if err := rows.Scan(&t.ID, &t.Period, &t.Title, &t.Year, &t.IsActive, &t.DisplayOrder); err != nil {
			return nil, err
		}
		entries = append(entries, t)
	}
	return entries, rows.Err()
}
