package app

import (
	"context"
	"fmt"
	"time"

	"github.com/vidtube/backend/internal/auth"
	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/handlers"
	"github.com/vidtube/backend/internal/middleware"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/storage"
	"github.com/vidtube/backend/internal/views"
)

// buildDependencies wires together concrete implementations used by the HTTP handlers.
func buildDependencies(ctx context.Context, pool db.Pool, cfg config.Config) (handlers.Dependencies, error) {
	users := repositories.NewPostgresUserRepository(pool)
	videos := repositories.NewPostgresVideoRepository(pool)
	comments := repositories.NewPostgresCommentRepository(pool)
	tweets := repositories.NewPostgresTweetRepository(pool)
	likes := repositories.NewPostgresLikeRepository(pool)
	subscriptions := repositories.NewPostgresSubscriptionRepository(pool)
	playlists := repositories.NewPostgresPlaylistRepository(pool)
	sessionStore := repositories.NewPostgresSessionStore(pool)

	assetStore, err := storage.NewS3Storage(ctx, cfg.ObjectStore)
	if err != nil {
		return handlers.Dependencies{}, fmt.Errorf("configure object storage: %w", err)
	}

	composer := &views.Composer{
		Users:         users,
		Videos:        videos,
		Comments:      comments,
		Tweets:        tweets,
		Likes:         likes,
		Subscriptions: subscriptions,
		Playlists:     playlists,
		DefaultLimit:  cfg.DefaultPageLimit,
		MaxLimit:      cfg.MaxPageLimit,
	}

	toggler := &engagement.Toggler{
		Likes:         likes,
		Subscriptions: subscriptions,
		Targets:       repositories.NewPostgresTargetDirectory(pool),
	}

	return handlers.Dependencies{
		Users:     users,
		Videos:    videos,
		Comments:  comments,
		Tweets:    tweets,
		Playlists: playlists,
		Sessions:  auth.NewManager(cfg.AccessTokenTTL, cfg.RefreshTokenTTL, sessionStore),
		Composer:  composer,
		Toggler:   toggler,
		Storage:   assetStore,
		Limiter:   middleware.NewIPRateLimiter(10, time.Minute, 5, 10*time.Minute),
	}, nil
}
