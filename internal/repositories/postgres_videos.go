package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// PostgresVideoRepository provides PostgreSQL-backed persistence for videos,
// including the composed listing and rollup queries used by the view engine.
type PostgresVideoRepository struct {
	pool db.Pool
}

// NewPostgresVideoRepository constructs a video repository backed by PostgreSQL.
func NewPostgresVideoRepository(pool db.Pool) *PostgresVideoRepository {
	return &PostgresVideoRepository{pool: pool}
}

const videoColumns = `id, owner_id, title, description, file_url, file_provider_id,
        thumbnail_url, thumbnail_provider_id, duration_seconds, views, published, created_at, updated_at`

// Create stores a new video record.
func (r *PostgresVideoRepository) Create(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	_, err = conn.Exec(ctx, `
        INSERT INTO videos (id, owner_id, title, description, file_url, file_provider_id,
            thumbnail_url, thumbnail_provider_id, duration_seconds, views, published, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
    `, video.ID, video.OwnerID, video.Title, video.Description,
		video.File.URL, video.File.ProviderID,
		video.Thumbnail.URL, video.Thumbnail.ProviderID,
		video.Duration, video.Views, video.Published, video.CreatedAt, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert video: %w", err)
	}

	return nil
}

// ByID fetches a video by identifier.
func (r *PostgresVideoRepository) ByID(ctx context.Context, id string) (models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return models.Video{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `SELECT `+videoColumns+` FROM videos WHERE id = $1`, id)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Video{}, ErrNotFound
		}
		return models.Video{}, fmt.Errorf("select video: %w", err)
	}

	return video, nil
}

// Update modifies a video's mutable fields.
func (r *PostgresVideoRepository) Update(ctx context.Context, video models.Video) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        UPDATE videos
        SET title = $2, description = $3, thumbnail_url = $4, thumbnail_provider_id = $5,
            published = $6, updated_at = $7
        WHERE id = $1
    `, video.ID, video.Title, video.Description,
		video.Thumbnail.URL, video.Thumbnail.ProviderID,
		video.Published, video.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a video together with its comments and every like targeting
// the video or one of those comments, in a single transaction. Playlist and
// watch-history references go away through their foreign keys.
func (r *PostgresVideoRepository) Delete(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin video delete: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes
        WHERE target_kind = 'comment'
          AND target_id IN (SELECT id FROM comments WHERE video_id = $1)
    `, id); err != nil {
		return fmt.Errorf("delete comment likes for video: %w", err)
	}

	if _, err := tx.Exec(ctx, `
        DELETE FROM likes WHERE target_kind = 'video' AND target_id = $1
    `, id); err != nil {
		return fmt.Errorf("delete video likes: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM comments WHERE video_id = $1`, id); err != nil {
		return fmt.Errorf("delete video comments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM videos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit video delete: %w", err)
	}

	return nil
}

// IncrementViews bumps the stored view counter by one.
func (r *PostgresVideoRepository) IncrementViews(ctx context.Context, id string) error {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `UPDATE videos SET views = views + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("increment video views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

var videoSortColumns = map[views.SortField]string{
	views.SortByViews:     "v.views",
	views.SortByCreatedAt: "v.created_at",
	views.SortByDuration:  "v.duration_seconds",
}

// ListPage returns one window of published videos matching the filter, plus
// the total size of the filtered set.
func (r *PostgresVideoRepository) ListPage(ctx context.Context, filter views.VideoFilter) ([]views.VideoListItem, int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	where := []string{"v.published"}
	args := []any{}

	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		where = append(where, fmt.Sprintf("(v.title ILIKE $%d OR v.description ILIKE $%d)", n, n))
	}
	if filter.OwnerID != "" {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("v.owner_id = $%d", len(args)))
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM videos v WHERE ` + whereClause
	if err := conn.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count videos: %w", err)
	}

	sortColumn, ok := videoSortColumns[filter.Sort]
	if !ok {
		sortColumn = "v.created_at"
	}
	direction := "DESC"
	if filter.Ascending {
		direction = "ASC"
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration_seconds, v.views, v.created_at,
               u.id, u.username, u.display_name, u.avatar_url
        FROM videos v
        JOIN users u ON u.id = v.owner_id
        WHERE %s
        ORDER BY %s %s, v.id DESC
        LIMIT $%d OFFSET $%d
    `, whereClause, sortColumn, direction, len(args)-1, len(args))

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("query videos: %w", err)
	}
	defer rows.Close()

	var items []views.VideoListItem
	for rows.Next() {
		var item views.VideoListItem
		if err := rows.Scan(&item.VideoID, &item.Title, &item.Description, &item.ThumbnailURL,
			&item.Duration, &item.Views, &item.CreatedAt,
			&item.Owner.UserID, &item.Owner.Username, &item.Owner.DisplayName, &item.Owner.AvatarURL); err != nil {
			return nil, 0, fmt.Errorf("scan video row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate videos: %w", err)
	}

	return items, total, nil
}

// LatestByOwner returns the owner's most recently created video, or nil when
// the owner has none.
func (r *PostgresVideoRepository) LatestByOwner(ctx context.Context, ownerID string) (*models.Video, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	row := conn.QueryRow(ctx, `
        SELECT `+videoColumns+`
        FROM videos
        WHERE owner_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT 1
    `, ownerID)

	video, err := scanVideo(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select latest video: %w", err)
	}

	return &video, nil
}

// OwnerStats aggregates counts across all of an owner's videos. The
// subscriber total is filled in by the caller.
func (r *PostgresVideoRepository) OwnerStats(ctx context.Context, ownerID string) (views.ChannelStats, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return views.ChannelStats{}, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var stats views.ChannelStats
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*), COALESCE(SUM(views), 0)
        FROM videos
        WHERE owner_id = $1
    `, ownerID).Scan(&stats.TotalVideos, &stats.TotalViews); err != nil {
		return views.ChannelStats{}, fmt.Errorf("aggregate video stats: %w", err)
	}

	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*)
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        WHERE l.target_kind = 'video' AND v.owner_id = $1
    `, ownerID).Scan(&stats.TotalLikes); err != nil {
		return views.ChannelStats{}, fmt.Errorf("aggregate video likes: %w", err)
	}

	return stats, nil
}

func scanVideo(row pgx.Row) (models.Video, error) {
	var video models.Video
	err := row.Scan(&video.ID, &video.OwnerID, &video.Title, &video.Description,
		&video.File.URL, &video.File.ProviderID,
		&video.Thumbnail.URL, &video.Thumbnail.ProviderID,
		&video.Duration, &video.Views, &video.Published, &video.CreatedAt, &video.UpdatedAt)
	return video, err
}

var _ VideoRepository = (*PostgresVideoRepository)(nil)
var _ views.VideoStore = (*PostgresVideoRepository)(nil)
