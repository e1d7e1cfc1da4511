// internal/syncer/syncer.go
package syncer

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"sort"

	"github.com/jackc/pgx/v5"

	"portfolio-service/internal/model"
)

// Fetcher is the subset of the GitHub client the syncer uses.
type Fetcher interface {
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	GetLanguages(ctx context.Context, name string) (map[string]int, error)
}

// Store is the subset of the persistence layer the syncer uses.
type Store interface {
	GetRepositoryByGithubID(ctx context.Context, githubID int64) (model.Repository, error)
	CreateRepository(ctx context.Context, repo model.Repository) (model.Repository, error)
	UpdateRepository(ctx context.Context, id int64, repo model.Repository) (model.Repository, error)
	ReplaceLanguages(ctx context.Context, repositoryID int64, langs []model.Language) error
}

// Syncer mirrors the configured account's repositories into the store.
// Repositories are synced strictly one at a time, each followed by its
// own language sub-fetch; a failure in one repository is logged and
// skipped without aborting the rest of the batch.
type Syncer struct {
	fetcher Fetcher
	store   Store
	logger  *slog.Logger
}

// NewSyncer creates a new Syncer instance.
func NewSyncer(fetcher Fetcher, store Store, logger *slog.Logger) *Syncer {
	return &Syncer{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
	}
}

// SyncAll fetches the account's repositories and upserts each into the
// store, returning the number synced successfully. Only the initial list
// fetch can fail the whole operation.
func (s *Syncer) SyncAll(ctx context.Context) (int, error) {
	repos, err := s.fetcher.ListRepositories(ctx)
	if err != nil {
		return 0, err
	}

	synced := 0
	for _, repo := range repos {
		if err := s.syncOne(ctx, repo); err != nil {
			s.logger.Error("Failed to sync repository", "repo", repo.Name, "error", err)
			continue
		}
		synced++
	}

	s.logger.Info("Repository sync finished", "synced", synced, "fetched", len(repos))
	return synced, nil
}

// syncOne upserts a single repository row and then replaces its language
// set. A language fetch failure degrades to keeping the previous set; it
// does not fail the repository.
func (s *Syncer) syncOne(ctx context.Context, repo model.Repository) error {
	logger := s.logger.With("repo", repo.Name, "github_id", repo.GithubID)

	dbRepo, err := s.upsertRepository(ctx, repo)
	if err != nil {
		return err
	}

	byteCounts, err := s.fetcher.GetLanguages(ctx, repo.Name)
	if err != nil {
		logger.Warn("Language fetch failed, keeping previous language set", "error", err)
		return nil
	}
	if len(byteCounts) == 0 {
		return nil
	}

	if err := s.store.ReplaceLanguages(ctx, dbRepo.ID, ComputeLanguages(byteCounts)); err != nil {
		return err
	}

	logger.Debug("Synced repository languages", "languages", len(byteCounts))
	return nil
}

// upsertRepository creates or updates a repository keyed by its upstream
// id, so syncing the same payload twice never produces a second row.
func (s *Syncer) upsertRepository(ctx context.Context, repo model.Repository) (model.Repository, error) {
	existing, err := s.store.GetRepositoryByGithubID(ctx, repo.GithubID)

	if errors.Is(err, pgx.ErrNoRows) {
		s.logger.Info("Repository not seen before, creating", "repo", repo.Name)
		return s.store.CreateRepository(ctx, repo)
	} else if err != nil {
		return model.Repository{}, err
	}

	return s.store.UpdateRepository(ctx, existing.ID, repo)
}

// ComputeLanguages turns a name to byte-count mapping into language rows
// with two-decimal percentages of the total. A zero total yields 0 for
// every row. Rows come back largest share first.
func ComputeLanguages(byteCounts map[string]int) []model.Language {
	var total int64
	for _, count := range byteCounts {
		total += int64(count)
	}

	langs := make([]model.Language, 0, len(byteCounts))
	for name, count := range byteCounts {
		pct := 0.0
		if total > 0 {
			pct = math.Round(float64(count)/float64(total)*100*100) / 100
		}
		langs = append(langs, model.Language{
			Name:       name,
			BytesCount: int64(count),
			Percentage: pct,
		})
	}

	sort.Slice(langs, func(i, j int) bool {
		if langs[i].BytesCount != langs[j].BytesCount {
			return langs[i].BytesCount > langs[j].BytesCount
		}
		return langs[i].Name < langs[j].Name
	})
	return langs
}
