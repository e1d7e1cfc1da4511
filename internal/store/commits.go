// internal/store/commits.go
package store

import (
	"context"
	"fmt"

	"portfolio-service/internal/model"
)

// CreateCommits bulk-inserts cached commit metadata. Commits already
// present (by sha) are left as-is; commit history is immutable upstream.
func (d *DB) CreateCommits(ctx context.Context, repositoryID int64, commits []model.Commit) (int64, error) {
	var inserted int64
	for _, c := range commits {
		tag, err := d.pool.Exec(ctx,
			`INSERT INTO commits (repository_id, sha, message, author_name, author_email, committed_at, url)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)
			 ON CONFLICT (sha) DO NOTHING`,
			repositoryID, c.SHA, c.Message, c.AuthorName, c.AuthorEmail, c.CommittedAt, c.URL,
		)
		if err != nil {
			return inserted, fmt.Errorf("inserting commit %s: %w", c.SHA, err)
		}
		inserted += tag.RowsAffected()
	}
	return inserted, nil
}

// ListCommits returns a repository's cached commits, newest first.
func (d *DB) ListCommits(ctx context.Context, repositoryID int64) ([]model.Commit, error) {
	rows, err := d.pool.Query(ctx,
		`SELECT id, repository_id, sha, message, author_name, author_email, committed_at, url
		 FROM commits WHERE repository_id = $1 ORDER BY committed_at DESC`,
		repositoryID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing commits: %w", err)
	}
	defer rows.Close()

	var commits []model.Commit
	for rows.Next() {
		var c model.Commit
		if err := rows.Scan(&c.ID, &c.RepositoryID, &c.SHA, &c.Message,
			&c.AuthorName, &c.AuthorEmail, &c.CommittedAt, &c.URL); err != nil {
			return nil, err
		}
		commits = append(commits, c)
	}
	return commits, rows.Err()
}
