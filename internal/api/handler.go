// internal/api/handler.go
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"

	apperrors "portfolio-service/internal/errors"
	"portfolio-service/internal/model"
)

// Store is the subset of the persistence layer the handlers read from.
type Store interface {
	ListRepositories(ctx context.Context) ([]model.Repository, error)
	GetRepositoryByName(ctx context.Context, name string) (model.Repository, error)
	ListLanguages(ctx context.Context, repositoryID int64) ([]model.Language, error)
	ListCommits(ctx context.Context, repositoryID int64) ([]model.Commit, error)
	CreateCommits(ctx context.Context, repositoryID int64, commits []model.Commit) (int64, error)
	ListRankings(ctx context.Context) ([]model.IndustryRanking, error)
	GetRankingSettings(ctx context.Context) (model.RankingSettings, error)
}

// Syncer triggers a full repository sync.
type Syncer interface {
	SyncAll(ctx context.Context) (int, error)
}

// Generator triggers one ranking-generation cycle.
type Generator interface {
	Generate(ctx context.Context) error
}

// CommitFetcher fetches recent commits for a repository.
type CommitFetcher interface {
	GetCommits(ctx context.Context, name string, limit int) ([]model.Commit, error)
}

// Reloader re-reads configuration from its sources.
type Reloader interface {
	Reload() error
}

// Handler is the container for API dependencies.
type Handler struct {
	db          Store
	syncer      Syncer
	generator   Generator
	commits     CommitFetcher
	config      Reloader
	commitLimit int
	logger      *slog.Logger
}

// NewRouter creates and configures a new chi router with all API routes.
func NewRouter(db Store, syncer Syncer, generator Generator, commits CommitFetcher, config Reloader, commitLimit int, logger *slog.Logger) http.Handler {
	h := &Handler{
		db:          db,
		syncer:      syncer,
		generator:   generator,
		commits:     commits,
		config:      config,
		commitLimit: commitLimit,
		logger:      logger,
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger) // Chi's default logger
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// API Routes
	r.Get("/health", h.healthCheck)
	r.Route("/v1", func(r chi.Router) {
		r.Get("/repos", h.listRepositories)
		r.Get("/repos/{name}", h.getRepository)
		r.Get("/repos/{name}/commits", h.getCommits)
		r.Get("/rankings", h.getRankings)

		r.Route("/admin", func(r chi.Router) {
			r.Post("/sync", h.triggerSync)
			r.Post("/rankings/generate", h.triggerGenerate)
			r.Post("/repos/{name}/commits/refresh", h.refreshCommits)
			r.Post("/config/reload", h.reloadConfig)
		})
	})

	return r
}

// healthCheck is a simple health endpoint.
func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// listRepositories returns all synced repositories in display order.
// GET /v1/repos
func (h *Handler) listRepositories(w http.ResponseWriter, r *http.Request) {
	repos, err := h.db.ListRepositories(r.Context())
	if err != nil {
		h.logger.Error("Failed to list repositories", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if repos == nil {
		repos = []model.Repository{}
	}
	respondWithJSON(w, http.StatusOK, repos)
}

// getRepository returns one repository with its language breakdown.
// GET /v1/repos/{name}
func (h *Handler) getRepository(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	langs, err := h.db.ListLanguages(r.Context(), repo.ID)
	if err != nil {
		h.logger.Error("Failed to list languages", "repo", repo.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if langs == nil {
		langs = []model.Language{}
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"repository":  repo,
		"description": repo.DisplayDescription(),
		"languages":   langs,
	})
}

// getCommits returns a repository's cached commits.
// GET /v1/repos/{name}/commits
func (h *Handler) getCommits(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	commits, err := h.db.ListCommits(r.Context(), repo.ID)
	if err != nil {
		h.logger.Error("Failed to list commits", "repo", repo.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if commits == nil {
		commits = []model.Commit{}
	}
	respondWithJSON(w, http.StatusOK, commits)
}

// getRankings returns the active industry ranking set plus the
// generation state.
// GET /v1/rankings
func (h *Handler) getRankings(w http.ResponseWriter, r *http.Request) {
	rankings, err := h.db.ListRankings(r.Context())
	if err != nil {
		h.logger.Error("Failed to list rankings", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if rankings == nil {
		rankings = []model.IndustryRanking{}
	}

	settings, err := h.db.GetRankingSettings(r.Context())
	if err != nil {
		h.logger.Error("Failed to read ranking settings", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"rankings":          rankings,
		"current_industry":  settings.CurrentIndustry,
		"last_generated_at": settings.LastGeneratedAt,
	})
}

// triggerSync runs a full repository sync and reports the count synced.
// POST /v1/admin/sync
func (h *Handler) triggerSync(w http.ResponseWriter, r *http.Request) {
	synced, err := h.syncer.SyncAll(r.Context())
	if err != nil {
		h.logger.Error("Repository sync failed", "error", err)
		respondWithError(w, http.StatusBadGateway, "Repository sync failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"synced": synced})
}

// triggerGenerate runs one ranking-generation cycle. A missing API key is
// reported before any network call is made.
// POST /v1/admin/rankings/generate
func (h *Handler) triggerGenerate(w http.ResponseWriter, r *http.Request) {
	err := h.generator.Generate(r.Context())
	if err != nil {
		var missing *apperrors.ErrMissingCredential
		if errors.As(err, &missing) {
			respondWithError(w, http.StatusBadRequest, missing.Error())
			return
		}
		h.logger.Error("Ranking generation failed", "error", err)
		respondWithError(w, http.StatusBadGateway, "Ranking generation failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "generated"})
}

// refreshCommits fetches and caches the most recent commits for one
// repository. This is a separate administrative action; the main sync
// path never touches commits.
// POST /v1/admin/repos/{name}/commits/refresh
func (h *Handler) refreshCommits(w http.ResponseWriter, r *http.Request) {
	repo, ok := h.lookupRepository(w, r)
	if !ok {
		return
	}

	commits, err := h.commits.GetCommits(r.Context(), repo.Name, h.commitLimit)
	if err != nil {
		h.logger.Error("Commit fetch failed", "repo", repo.Name, "error", err)
		respondWithError(w, http.StatusBadGateway, "Commit fetch failed")
		return
	}

	n, err := h.db.CreateCommits(r.Context(), repo.ID, commits)
	if err != nil {
		h.logger.Error("Failed to cache commits", "repo", repo.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]any{"fetched": len(commits), "cached": n})
}

// reloadConfig re-reads configuration from its sources.
// POST /v1/admin/config/reload
func (h *Handler) reloadConfig(w http.ResponseWriter, r *http.Request) {
	if err := h.config.Reload(); err != nil {
		h.logger.Error("Config reload failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Config reload failed")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "reloaded"})
}

func (h *Handler) lookupRepository(w http.ResponseWriter, r *http.Request) (model.Repository, bool) {
	name := chi.URLParam(r, "name")

	repo, err := h.db.GetRepositoryByName(r.Context(), name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondWithError(w, http.StatusNotFound, "Repository not found")
			return model.Repository{}, false
		}
		h.logger.Error("Failed to get repository", "error", err)
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return model.Repository{}, false
	}
	return repo, true
}
