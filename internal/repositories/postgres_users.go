package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// PostgresUserRepository provides PostgreSQL-backed persistence for users.
type PostgresUserRepository struct {
	pool db.Pool
}

// NewPostgresUserRepository constructs a user repository backed by PostgreSQL.
func NewPostgresUserRepository(pool db.Pool) *PostgresUserRepository {
	return &PostgresUserRepository{pool: pool}
}

const userColumns = `id, username, email, display_name, avatar_url, avatar_provider_id,
        cover_image_url, cover_image_provider_id, password_hash, created_at, updated_at`

// Create persists a new user record. Usernames are stored lowercased so the
// unique index doubles as the case-insensitive uniqueness rule.
func (r *PostgresUserRepository) Create(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO users (id, username, email, display_name, avatar_url, avatar_provider_id,
            cover_image_url, cover_image_provider_id, password_hash, created_at, updated_at)
        VALUES ($1, lower($2), $3, $4, $5, $6, $7, $8, $9, $10, $11)
    `, user.ID, user.Username, user.Email, user.DisplayName,
		user.Avatar.URL, user.Avatar.ProviderID,
		user.CoverImage.URL, user.CoverImage.ProviderID,
		user.Password, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// ByID fetches a user by identifier.
func (r *PostgresUserRepository) ByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

// ByUsername fetches a user by case-insensitive exact username match.
func (r *PostgresUserRepository) ByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = lower($1)`, username)
}

// ByEmail fetches a user by their email address.
func (r *PostgresUserRepository) ByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *PostgresUserRepository) findOne(ctx context.Context, query string, arg any) (models.User, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.User{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, query, arg)

	var user models.User
	if err := row.Scan(&user.ID, &user.Username, &user.Email, &user.DisplayName,
		&user.Avatar.URL, &user.Avatar.ProviderID,
		&user.CoverImage.URL, &user.CoverImage.ProviderID,
		&user.Password, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// Update modifies an existing user record.
func (r *PostgresUserRepository) Update(ctx context.Context, user models.User) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE users
        SET email = $2, display_name = $3, avatar_url = $4, avatar_provider_id = $5,
            cover_image_url = $6, cover_image_provider_id = $7, password_hash = $8, updated_at = $9
        WHERE id = $1
    `, user.ID, user.Email, user.DisplayName,
		user.Avatar.URL, user.Avatar.ProviderID,
		user.CoverImage.URL, user.CoverImage.ProviderID,
		user.Password, user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrConflict
		}
		return fmt.Errorf("update user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// AddWatchHistory appends a video to the user's watch history, as a no-op
// when the video is already present.
func (r *PostgresUserRepository) AddWatchHistory(ctx context.Context, userID, videoID string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO watch_history (user_id, video_id, added_at)
        VALUES ($1, $2, now())
        ON CONFLICT (user_id, video_id) DO NOTHING
    `, userID, videoID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrNotFound
		}
		return fmt.Errorf("insert watch history: %w", err)
	}

	return nil
}

// WatchHistory returns the user's watched videos, most recently added first,
// joined with a minimal owner projection.
func (r *PostgresUserRepository) WatchHistory(ctx context.Context, userID string) ([]views.VideoListItem, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration_seconds, v.views, v.created_at,
               u.id, u.username, u.display_name, u.avatar_url
        FROM watch_history wh
        JOIN videos v ON v.id = wh.video_id
        JOIN users u ON u.id = v.owner_id
        WHERE wh.user_id = $1
        ORDER BY wh.added_at DESC, v.id DESC
    `, userID)
	if err != nil {
		return nil, fmt.Errorf("query watch history: %w", err)
	}
	defer rows.Close()

	var items []views.VideoListItem
	for rows.Next() {
		var item views.VideoListItem
		if err := rows.Scan(&item.VideoID, &item.Title, &item.Description, &item.ThumbnailURL,
			&item.Duration, &item.Views, &item.CreatedAt,
			&item.Owner.UserID, &item.Owner.Username, &item.Owner.DisplayName, &item.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan watch history row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watch history: %w", err)
	}

	return items, nil
}

var _ UserRepository = (*PostgresUserRepository)(nil)
var _ views.UserStore = (*PostgresUserRepository)(nil)
