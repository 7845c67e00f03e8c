package repositories

import (
	"context"
	"fmt"

	"github.com/vidtube/backend/internal/db"
	"github.com/vidtube/backend/internal/engagement"
	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

// viewerParam converts an empty viewer id into a NULL query parameter so
// viewer-relative EXISTS checks come back false for anonymous reads.
func viewerParam(viewerID string) any {
	if viewerID == "" {
		return nil
	}
	return viewerID
}

// PostgresLikeRepository provides PostgreSQL-backed persistence for like
// edges. Uniqueness per (liked_by, target) is enforced by the table's unique
// constraint, which makes the conditional insert race-safe.
type PostgresLikeRepository struct {
	pool db.Pool
}

// NewPostgresLikeRepository constructs a like repository backed by PostgreSQL.
func NewPostgresLikeRepository(pool db.Pool) *PostgresLikeRepository {
	return &PostgresLikeRepository{pool: pool}
}

// Insert creates the like edge unless one already exists. It reports whether
// a new edge was written.
func (r *PostgresLikeRepository) Insert(ctx context.Context, like models.Like) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO likes (id, liked_by, target_kind, target_id, created_at)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (liked_by, target_kind, target_id) DO NOTHING
    `, like.ID, like.LikedBy, like.Target.Kind, like.Target.ID, like.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the actor's like edge on the target, reporting whether an
// edge was actually removed.
func (r *PostgresLikeRepository) Delete(ctx context.Context, actorID string, target models.LikeTarget) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM likes
        WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
    `, actorID, target.Kind, target.ID)
	if err != nil {
		return false, fmt.Errorf("delete like: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Count returns the number of likes on the target.
func (r *PostgresLikeRepository) Count(ctx context.Context, target models.LikeTarget) (int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int
	if err := conn.QueryRow(ctx, `
        SELECT COUNT(*) FROM likes WHERE target_kind = $1 AND target_id = $2
    `, target.Kind, target.ID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}

	return count, nil
}

// Exists reports whether the user has liked the target. An empty user id
// always reports false.
func (r *PostgresLikeRepository) Exists(ctx context.Context, userID string, target models.LikeTarget) (bool, error) {
	if userID == "" {
		return false, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM likes
            WHERE liked_by = $1 AND target_kind = $2 AND target_id = $3
        )
    `, userID, target.Kind, target.ID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check like: %w", err)
	}

	return exists, nil
}

// LikedVideos returns the videos the viewer has liked, newest like first,
// each joined with its owner.
func (r *PostgresLikeRepository) LikedVideos(ctx context.Context, viewerID string) ([]views.LikedVideoEntry, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, `
        SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration_seconds, v.views, v.created_at,
               l.created_at,
               u.id, u.username, u.display_name, u.avatar_url
        FROM likes l
        JOIN videos v ON v.id = l.target_id
        JOIN users u ON u.id = v.owner_id
        WHERE l.liked_by = $1 AND l.target_kind = 'video'
        ORDER BY l.created_at DESC, l.id DESC
    `, viewerID)
	if err != nil {
		return nil, fmt.Errorf("query liked videos: %w", err)
	}
	defer rows.Close()

	var items []views.LikedVideoEntry
	for rows.Next() {
		var item views.LikedVideoEntry
		if err := rows.Scan(&item.VideoID, &item.Title, &item.Description, &item.ThumbnailURL,
			&item.Duration, &item.Views, &item.CreatedAt, &item.LikedAt,
			&item.Owner.UserID, &item.Owner.Username, &item.Owner.DisplayName, &item.Owner.AvatarURL); err != nil {
			return nil, fmt.Errorf("scan liked video row: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate liked videos: %w", err)
	}

	return items, nil
}

// PostgresSubscriptionRepository provides PostgreSQL-backed persistence for
// subscription edges.
type PostgresSubscriptionRepository struct {
	pool db.Pool
}

// NewPostgresSubscriptionRepository constructs a subscription repository
// backed by PostgreSQL.
func NewPostgresSubscriptionRepository(pool db.Pool) *PostgresSubscriptionRepository {
	return &PostgresSubscriptionRepository{pool: pool}
}

// Insert creates the subscription edge unless one already exists, reporting
// whether a new edge was written.
func (r *PostgresSubscriptionRepository) Insert(ctx context.Context, subscription models.Subscription) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        INSERT INTO subscriptions (id, subscriber_id, channel_id, created_at)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (subscriber_id, channel_id) DO NOTHING
    `, subscription.ID, subscription.SubscriberID, subscription.ChannelID, subscription.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("insert subscription: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// Delete removes the subscriber's edge to the channel, reporting whether an
// edge was actually removed.
func (r *PostgresSubscriptionRepository) Delete(ctx context.Context, subscriberID, channelID string) (bool, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, `
        DELETE FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
    `, subscriberID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CountForChannel returns the channel's subscriber count.
func (r *PostgresSubscriptionRepository) CountForChannel(ctx context.Context, channelID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE channel_id = $1`, channelID)
}

// CountForSubscriber returns how many channels the user subscribes to.
func (r *PostgresSubscriptionRepository) CountForSubscriber(ctx context.Context, subscriberID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM subscriptions WHERE subscriber_id = $1`, subscriberID)
}

func (r *PostgresSubscriptionRepository) count(ctx context.Context, query, arg string) (int, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var count int
	if err := conn.QueryRow(ctx, query, arg).Scan(&count); err != nil {
		return 0, fmt.Errorf("count subscriptions: %w", err)
	}

	return count, nil
}

// Exists reports whether the subscriber has an edge to the channel. An empty
// subscriber id always reports false.
func (r *PostgresSubscriptionRepository) Exists(ctx context.Context, subscriberID, channelID string) (bool, error) {
	if subscriberID == "" {
		return false, nil
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return false, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, `
        SELECT EXISTS (
            SELECT 1 FROM subscriptions WHERE subscriber_id = $1 AND channel_id = $2
        )
    `, subscriberID, channelID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check subscription: %w", err)
	}

	return exists, nil
}

// ListForChannel returns the channel's subscription edges, newest first.
func (r *PostgresSubscriptionRepository) ListForChannel(ctx context.Context, channelID string) ([]models.Subscription, error) {
	return r.list(ctx, `
        SELECT id, subscriber_id, channel_id, created_at
        FROM subscriptions
        WHERE channel_id = $1
        ORDER BY created_at DESC, id DESC
    `, channelID)
}

// ListForSubscriber returns the user's subscription edges, newest first.
func (r *PostgresSubscriptionRepository) ListForSubscriber(ctx context.Context, subscriberID string) ([]models.Subscription, error) {
	return r.list(ctx, `
        SELECT id, subscriber_id, channel_id, created_at
        FROM subscriptions
        WHERE subscriber_id = $1
        ORDER BY created_at DESC, id DESC
    `, subscriberID)
}

func (r *PostgresSubscriptionRepository) list(ctx context.Context, query, arg string) ([]models.Subscription, error) {
	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("query subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []models.Subscription
	for rows.Next() {
		var sub models.Subscription
		if err := rows.Scan(&sub.ID, &sub.SubscriberID, &sub.ChannelID, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan subscription row: %w", err)
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate subscriptions: %w", err)
	}

	return subs, nil
}

// PostgresTargetDirectory resolves toggle targets against their entity tables.
type PostgresTargetDirectory struct {
	pool db.Pool
}

// NewPostgresTargetDirectory constructs a target directory backed by PostgreSQL.
func NewPostgresTargetDirectory(pool db.Pool) *PostgresTargetDirectory {
	return &PostgresTargetDirectory{pool: pool}
}

var likeTargetTables = map[models.LikeTargetKind]string{
	models.LikeTargetVideo:   "videos",
	models.LikeTargetComment: "comments",
	models.LikeTargetTweet:   "tweets",
}

// EnsureLikeTarget verifies the referenced entity exists, returning
// ErrNotFound when it does not.
func (d *PostgresTargetDirectory) EnsureLikeTarget(ctx context.Context, target models.LikeTarget) error {
	table, ok := likeTargetTables[target.Kind]
	if !ok {
		return fmt.Errorf("unsupported like target kind %q", target.Kind)
	}
	return d.ensure(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+` WHERE id = $1)`, target.ID)
}

// EnsureChannel verifies the channel user exists, returning ErrNotFound when
// it does not.
func (d *PostgresTargetDirectory) EnsureChannel(ctx context.Context, channelID string) error {
	return d.ensure(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, channelID)
}

func (d *PostgresTargetDirectory) ensure(ctx context.Context, query, id string) error {
	conn, err := d.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	var exists bool
	if err := conn.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return fmt.Errorf("check target: %w", err)
	}
	if !exists {
		return ErrNotFound
	}

	return nil
}

var _ LikeRepository = (*PostgresLikeRepository)(nil)
var _ engagement.LikeEdges = (*PostgresLikeRepository)(nil)
var _ views.LikeStore = (*PostgresLikeRepository)(nil)

var _ SubscriptionRepository = (*PostgresSubscriptionRepository)(nil)
var _ engagement.SubscriptionEdges = (*PostgresSubscriptionRepository)(nil)
var _ views.SubscriptionStore = (*PostgresSubscriptionRepository)(nil)

var _ engagement.TargetDirectory = (*PostgresTargetDirectory)(nil)
