// Package engagement maintains the Like and Subscription edges. Toggling is
// delete-or-create, never update-in-place, and leans on store-level
// uniqueness so two concurrent toggles from the same actor can never leave
// two edges behind.
package engagement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vidtube/backend/internal/models"
)

// ErrNoActor indicates a toggle was attempted without an authenticated actor.
var ErrNoActor = errors.New("actor id must be provided")

// ErrInvalidTarget indicates the toggle target reference is malformed.
var ErrInvalidTarget = errors.New("invalid toggle target")

// LikeEdges is the conditional write surface for like edges. Delete reports
// whether an edge was removed; Insert reports whether an edge was created,
// returning false when the uniqueness constraint already holds one.
type LikeEdges interface {
	Delete(ctx context.Context, actorID string, target models.LikeTarget) (bool, error)
	Insert(ctx context.Context, like models.Like) (bool, error)
}

// SubscriptionEdges is the conditional write surface for subscription edges.
type SubscriptionEdges interface {
	Delete(ctx context.Context, subscriberID, channelID string) (bool, error)
	Insert(ctx context.Context, subscription models.Subscription) (bool, error)
}

// TargetDirectory verifies toggle targets exist before an edge is written.
type TargetDirectory interface {
	EnsureLikeTarget(ctx context.Context, target models.LikeTarget) error
	EnsureChannel(ctx context.Context, channelID string) error
}

// Toggler flips like and subscription edges on behalf of an actor.
type Toggler struct {
	Likes         LikeEdges
	Subscriptions SubscriptionEdges
	Targets       TargetDirectory
	NowFunc       func() time.Time
}

// ToggleLike removes the actor's like on the target if present, otherwise
// creates it. The returned bool reports whether the edge exists after the
// call. Any authenticated user may like anything, including their own
// content.
func (t *Toggler) ToggleLike(ctx context.Context, actorID string, target models.LikeTarget) (bool, error) {
	if actorID == "" {
		return false, ErrNoActor
	}
	if !target.Kind.Valid() || target.ID == "" {
		return false, fmt.Errorf("%w: kind=%q id=%q", ErrInvalidTarget, target.Kind, target.ID)
	}

	if err := t.Targets.EnsureLikeTarget(ctx, target); err != nil {
		return false, fmt.Errorf("resolve %s %s: %w", target.Kind, target.ID, err)
	}

	removed, err := t.Likes.Delete(ctx, actorID, target)
	if err != nil {
		return false, fmt.Errorf("delete like edge: %w", err)
	}
	if removed {
		return false, nil
	}

	created, err := t.Likes.Insert(ctx, models.Like{
		ID:        uuid.NewString(),
		LikedBy:   actorID,
		Target:    target,
		CreatedAt: t.now(),
	})
	if err != nil {
		return false, fmt.Errorf("insert like edge: %w", err)
	}
	// A lost insert means a concurrent toggle created the edge first; either
	// way exactly one edge exists now.
	_ = created
	return true, nil
}

// ToggleSubscription removes the actor's subscription to the channel if
// present, otherwise creates it. Self-subscription is permitted.
func (t *Toggler) ToggleSubscription(ctx context.Context, actorID, channelID string) (bool, error) {
	if actorID == "" {
		return false, ErrNoActor
	}
	if channelID == "" {
		return false, fmt.Errorf("%w: empty channel id", ErrInvalidTarget)
	}

	if err := t.Targets.EnsureChannel(ctx, channelID); err != nil {
		return false, fmt.Errorf("resolve channel %s: %w", channelID, err)
	}

	removed, err := t.Subscriptions.Delete(ctx, actorID, channelID)
	if err != nil {
		return false, fmt.Errorf("delete subscription edge: %w", err)
	}
	if removed {
		return false, nil
	}

	created, err := t.Subscriptions.Insert(ctx, models.Subscription{
		ID:           uuid.NewString(),
		SubscriberID: actorID,
		ChannelID:    channelID,
		CreatedAt:    t.now(),
	})
	if err != nil {
		return false, fmt.Errorf("insert subscription edge: %w", err)
	}
	_ = created
	return true, nil
}

func (t *Toggler) now() time.Time {
	if t.NowFunc != nil {
		return t.NowFunc()
	}
	return time.Now().UTC()
}
