package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/repositories"
	"github.com/vidtube/backend/internal/views"
)

func TestLikeToggleVideo(t *testing.T) {
	toggler := &fakeToggler{likeResult: true}
	handler := LikeHandler{Toggler: toggler, Sessions: sessionsFor("u1")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/v1", nil)
	req.SetPathValue("id", "v1")
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if toggler.lastActor != "u1" {
		t.Fatalf("expected actor forwarded, got %q", toggler.lastActor)
	}
	want := models.LikeTarget{Kind: models.LikeTargetVideo, ID: "v1"}
	if toggler.lastTarget != want {
		t.Fatalf("unexpected target: %+v", toggler.lastTarget)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["liked"] {
		t.Fatal("expected liked true")
	}
}

func TestLikeToggleKinds(t *testing.T) {
	toggler := &fakeToggler{likeResult: true}
	handler := LikeHandler{Toggler: toggler, Sessions: sessionsFor("u1")}

	cases := []struct {
		call func(http.ResponseWriter, *http.Request)
		kind models.LikeTargetKind
	}{
		{handler.ToggleComment, models.LikeTargetComment},
		{handler.ToggleTweet, models.LikeTargetTweet},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/x/t1", nil)
		req.SetPathValue("id", "t1")
		req.Header.Set("Authorization", "Bearer access-u1")
		rec := httptest.NewRecorder()
		tc.call(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", tc.kind, rec.Code)
		}
		if toggler.lastTarget.Kind != tc.kind {
			t.Fatalf("expected %s target, got %s", tc.kind, toggler.lastTarget.Kind)
		}
	}
}

func TestLikeToggleRequiresAuth(t *testing.T) {
	handler := LikeHandler{Toggler: &fakeToggler{}, Sessions: &fakeSessions{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/v1", nil)
	req.SetPathValue("id", "v1")
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestLikeToggleRateLimited(t *testing.T) {
	handler := LikeHandler{Toggler: &fakeToggler{}, Sessions: sessionsFor("u1"), Limiter: denyLimiter{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/v1", nil)
	req.SetPathValue("id", "v1")
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestLikeToggleUnknownTarget(t *testing.T) {
	toggler := &fakeToggler{likeErr: repositories.ErrNotFound}
	handler := LikeHandler{Toggler: toggler, Sessions: sessionsFor("u1")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/likes/videos/ghost", nil)
	req.SetPathValue("id", "ghost")
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.ToggleVideo(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown target, got %d", rec.Code)
	}
}

func TestLikedVideos(t *testing.T) {
	composer := &stubComposer{liked: []views.LikedVideoEntry{{VideoID: "v1"}}}
	handler := LikeHandler{Composer: composer, Sessions: sessionsFor("u1")}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/likes/videos", nil)
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.LikedVideos(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entries []views.LikedVideoEntry
	if err := json.NewDecoder(rec.Body).Decode(&entries); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(entries) != 1 || entries[0].VideoID != "v1" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestSubscriptionToggle(t *testing.T) {
	toggler := &fakeToggler{subResult: true}
	handler := SubscriptionHandler{Toggler: toggler, Sessions: sessionsFor("u1")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel-1", nil)
	req.SetPathValue("channelId", "channel-1")
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if toggler.lastActor != "u1" || toggler.lastChannel != "channel-1" {
		t.Fatalf("unexpected toggle call: actor=%q channel=%q", toggler.lastActor, toggler.lastChannel)
	}

	var resp map[string]bool
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp["subscribed"] {
		t.Fatal("expected subscribed true")
	}
}

func TestSubscriptionToggleRateLimited(t *testing.T) {
	handler := SubscriptionHandler{Toggler: &fakeToggler{}, Sessions: sessionsFor("u1"), Limiter: denyLimiter{}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/channel-1", nil)
	req.SetPathValue("channelId", "channel-1")
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rec.Code)
	}
}

func TestSubscriptionToggleUnknownChannel(t *testing.T) {
	toggler := &fakeToggler{subErr: repositories.ErrNotFound}
	handler := SubscriptionHandler{Toggler: toggler, Sessions: sessionsFor("u1")}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/subscriptions/ghost", nil)
	req.SetPathValue("channelId", "ghost")
	req.Header.Set("Authorization", "Bearer access-u1")
	rec := httptest.NewRecorder()
	handler.Toggle(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestSubscribersIsPublic(t *testing.T) {
	composer := &stubComposer{subscribers: views.SubscriberList{TotalSubscribers: 2}}
	handler := SubscriptionHandler{Composer: composer}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/subscriptions/channel-1/subscribers", nil)
	req.SetPathValue("channelId", "channel-1")
	rec := httptest.NewRecorder()
	handler.Subscribers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without auth, got %d", rec.Code)
	}

	var list views.SubscriberList
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if list.TotalSubscribers != 2 {
		t.Fatalf("unexpected list: %+v", list)
	}
}

func TestSubscribedRequiresAuth(t *testing.T) {
	handler := SubscriptionHandler{Composer: &stubComposer{}, Sessions: &fakeSessions{}}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users/me/subscriptions", nil)
	rec := httptest.NewRecorder()
	handler.Subscribed(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
