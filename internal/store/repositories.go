// internal/store/repositories.go
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"portfolio-service/internal/model"
)

const repositoryColumns = `id, github_id, name, full_name, description, url, homepage,
	stars_count, forks_count, watchers_count, open_issues_count, size_kb,
	primary_language, topics, is_fork, is_private, is_archived,
	repo_created_at, repo_updated_at, repo_pushed_at,
	featured, display_order, custom_description, last_synced_at`

// GetRepositoryByGithubID retrieves a repository by its upstream id.
// Returns pgx.ErrNoRows when the repository has never been synced.
func (d *DB) GetRepositoryByGithubID(ctx context.Context, githubID int64) (model.Repository, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+repositoryColumns+` FROM repositories WHERE github_id = $1`,
		githubID,
	)
	return scanRepository(row)
}

// GetRepositoryByName retrieves a repository by its short name.
func (d *DB) GetRepositoryByName(ctx context.Context, name string) (model.Repository, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT `+repositoryColumns+` FROM repositories WHERE name = $1`,
		name,
	)
	return scanRepository(row)
}

// ListRepositories returns all synced repositories in display order:
// featured first, then display order, then stars descending.
func (d *DB) ListRepositories(ctx context.Context) ([]model.Repository, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT `+repositoryColumns+` FROM repositories
		 ORDER BY featured DESC, display_order ASC, stars_count DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing repositories: %w", err)
	}
	defer rows.Close()

	var repos []model.Repository
	for rows.Next() {
		repo, err := scanRepository(rows)
		if err != nil {
			return nil, err
		}
		repos = append(repos, repo)
	}
	return repos, rows.Err()
}

// CreateRepository inserts a new repository row and stamps last_synced_at.
func (d *DB) CreateRepository(ctx context.Context, repo model.Repository) (model.Repository, error) {
	row := d.pool.QueryRow(ctx,
		`INSERT INTO repositories (
			github_id, name, full_name, description, url, homepage,
			stars_count, forks_count, watchers_count, open_issues_count, size_kb,
			primary_language, topics, is_fork, is_private, is_archived,
			repo_created_at, repo_updated_at, repo_pushed_at, last_synced_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19, now())
		RETURNING `+repositoryColumns,
		repo.GithubID, repo.Name, repo.FullName, repo.Description, repo.URL, repo.Homepage,
		repo.StarsCount, repo.ForksCount, repo.WatchersCount, repo.OpenIssuesCount, repo.SizeKB,
		repo.PrimaryLanguage, repo.Topics, repo.IsFork, repo.IsPrivate, repo.IsArchived,
		repo.RepoCreatedAt, repo.RepoUpdatedAt, repo.RepoPushedAt,
	)
	return scanRepository(row)
}

// UpdateRepository refreshes the upstream-owned fields of an existing row
// and stamps last_synced_at. Local display settings (featured,
// display_order, custom_description) are left untouched.
func (d *DB) UpdateRepository(ctx context.Context, id int64, repo model.Repository) (model.Repository, error) {
	row := d.pool.QueryRow(ctx,
		`UPDATE repositories SET
			name = $2, full_name = $3, description = $4, url = $5, homepage = $6,
			stars_count = $7, forks_count = $8, watchers_count = $9,
			open_issues_count = $10, size_kb = $11, primary_language = $12,
			topics = $13, is_fork = $14, is_private = $15, is_archived = $16,
			repo_created_at = $17, repo_updated_at = $18, repo_pushed_at = $19,
			last_synced_at = now()
		WHERE id = $1
		RETURNING `+repositoryColumns,
		id,
		repo.Name, repo.FullName, repo.Description, repo.URL, repo.Homepage,
		repo.StarsCount, repo.ForksCount, repo.WatchersCount, repo.OpenIssuesCount, repo.SizeKB,
		repo.PrimaryLanguage, repo.Topics, repo.IsFork, repo.IsPrivate, repo.IsArchived,
		repo.RepoCreatedAt, repo.RepoUpdatedAt, repo.RepoPushedAt,
	)
	return scanRepository(row)
}

// DeleteRepository removes a repository and its child rows. Deletion is
// an explicit administrative action; sync never deletes.
func (d *DB) DeleteRepository(ctx context.Context, id int64) error {
	_, err := d.pool.Exec(ctx, `DELETE FROM repositories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting repository %d: %w", id, err)
	}
	return nil
}

// ReplaceLanguages swaps the full language set of a repository for the
// given rows inside one transaction, so a crash cannot leave the set
// half-written.
func (d *DB) ReplaceLanguages(ctx context.Context, repositoryID int64, langs []model.Language) error {
	return d.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM languages WHERE repository_id = $1`, repositoryID,
		); err != nil {
			return fmt.Errorf("clearing languages: %w", err)
		}

		for _, l := range langs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO languages (repository_id, name, bytes_count, percentage)
				 VALUES ($1, $2, $3, $4)`,
				repositoryID, l.Name, l.BytesCount, l.Percentage,
			); err != nil {
				return fmt.Errorf("inserting language %s: %w", l.Name, err)
			}
		}
		return nil
	})
}

// ListLanguages returns a repository's languages, largest share first.
func (d *DB) ListLanguages(ctx context.Context, repositoryID int64) ([]model.Language, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, repository_id, name, bytes_count, percentage
		 FROM languages WHERE repository_id = $1 ORDER BY bytes_count DESC`,
		repositoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}
	defer rows.Close()

	var langs []model.Language
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.RepositoryID, &l.Name, &l.BytesCount, &l.Percentage); err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

func scanRepository(row pgx.Row) (model.Repository, error) {
	var r model.Repository
	err := row.Scan(
		&r.ID, &r.GithubID, &r.Name, &r.FullName, &r.Description, &r.URL, &r.Homepage,
		&r.StarsCount, &r.ForksCount, &r.WatchersCount, &r.OpenIssuesCount, &r.SizeKB,
		&r.PrimaryLanguage, &r.Topics, &r.IsFork, &r.IsPrivate, &r.IsArchived,
		&r.RepoCreatedAt, &r.RepoUpdatedAt, &r.RepoPushedAt,
		&r.Featured, &r.DisplayOrder, &r.CustomDescription, &r.LastSyncedAt,
	)
	if err != nil {
		return model.Repository{}, err
	}
	return r, nil
}
