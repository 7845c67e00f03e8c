package handlers

import (
	"context"
	"errors"
	"io"

	"github.com/vidtube/backend/internal/models"
	"github.com/vidtube/backend/internal/views"
)

type fakeUsers struct {
	byID      map[string]models.User
	created   []models.User
	createErr error
	updated   []models.User
	updateErr error
}

func (f *fakeUsers) Create(_ context.Context, user models.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUsers) ByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return models.User{}, errors.New("user not found")
	}
	return user, nil
}

func (f *fakeUsers) ByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range f.byID {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (f *fakeUsers) ByEmail(_ context.Context, email string) (models.User, error) {
	for _, user := range f.byID {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, errors.New("user not found")
}

func (f *fakeUsers) Update(_ context.Context, user models.User) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, user)
	if f.byID != nil {
		f.byID[user.ID] = user
	}
	return nil
}

// fakeSessions maps access tokens to user ids. Issue mints predictable tokens
// so tests can authenticate follow-up requests.
type fakeSessions struct {
	access     map[string]string
	issuedFor  []string
	issueErr   error
	refreshErr error
	revoked    []string
}

func (f *fakeSessions) Issue(_ context.Context, userID string) (models.SessionTokens, error) {
	if f.issueErr != nil {
		return models.SessionTokens{}, f.issueErr
	}
	f.issuedFor = append(f.issuedFor, userID)
	if f.access == nil {
		f.access = map[string]string{}
	}
	f.access["access-"+userID] = userID
	return models.SessionTokens{
		AccessToken:  "access-" + userID,
		RefreshToken: "refresh-" + userID,
	}, nil
}

func (f *fakeSessions) Refresh(_ context.Context, refreshToken string) (models.SessionTokens, error) {
	if f.refreshErr != nil {
		return models.SessionTokens{}, f.refreshErr
	}
	return models.SessionTokens{AccessToken: "rotated-access", RefreshToken: refreshToken}, nil
}

func (f *fakeSessions) Authenticate(_ context.Context, accessToken string) (string, error) {
	userID, ok := f.access[accessToken]
	if !ok {
		return "", errors.New("unknown access token")
	}
	return userID, nil
}

func (f *fakeSessions) Revoke(_ context.Context, refreshToken string) {
	f.revoked = append(f.revoked, refreshToken)
}

func sessionsFor(userID string) *fakeSessions {
	return &fakeSessions{access: map[string]string{"access-" + userID: userID}}
}

type fakeVideos struct {
	byID      map[string]models.Video
	created   []models.Video
	updated   []models.Video
	deleted   []string
	deleteErr error
}

func (f *fakeVideos) Create(_ context.Context, video models.Video) error {
	f.created = append(f.created, video)
	return nil
}

func (f *fakeVideos) ByID(_ context.Context, id string) (models.Video, error) {
	video, ok := f.byID[id]
	if !ok {
		return models.Video{}, errors.New("video not found")
	}
	return video, nil
}

func (f *fakeVideos) Update(_ context.Context, video models.Video) error {
	f.updated = append(f.updated, video)
	return nil
}

func (f *fakeVideos) Delete(_ context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeStorage struct {
	saved   []string
	deleted []string
	saveErr error
}

func (f *fakeStorage) Save(_ context.Context, name string, r io.Reader) (models.Asset, error) {
	if f.saveErr != nil {
		return models.Asset{}, f.saveErr
	}
	if _, err := io.Copy(io.Discard, r); err != nil {
		return models.Asset{}, err
	}
	f.saved = append(f.saved, name)
	return models.Asset{URL: "https://cdn.example.com/" + name, ProviderID: name}, nil
}

func (f *fakeStorage) Delete(_ context.Context, providerID string) error {
	f.deleted = append(f.deleted, providerID)
	return nil
}

type fakeToggler struct {
	likeResult bool
	likeErr    error
	lastActor  string
	lastTarget models.LikeTarget

	subResult   bool
	subErr      error
	lastChannel string
}

func (f *fakeToggler) ToggleLike(_ context.Context, actorID string, target models.LikeTarget) (bool, error) {
	f.lastActor = actorID
	f.lastTarget = target
	return f.likeResult, f.likeErr
}

func (f *fakeToggler) ToggleSubscription(_ context.Context, actorID, channelID string) (bool, error) {
	f.lastActor = actorID
	f.lastChannel = channelID
	return f.subResult, f.subErr
}

// stubComposer returns canned views and records the identities it was asked
// to compose for.
type stubComposer struct {
	profile     views.ChannelProfile
	detail      views.VideoDetail
	commentPage views.Page[views.CommentView]
	tweets      []views.TweetView
	playlist    views.PlaylistDetail
	summaries   []views.PlaylistSummary
	stats       views.ChannelStats
	subscribers views.SubscriberList
	channels    views.SubscribedChannelList
	liked       []views.LikedVideoEntry
	videoPage   views.Page[views.VideoListItem]
	history     views.Page[views.VideoListItem]
	err         error

	lastViewer string
	lastOpts   views.VideoListOptions
}

func (s *stubComposer) ChannelProfile(_ context.Context, _, viewerID string) (views.ChannelProfile, error) {
	s.lastViewer = viewerID
	return s.profile, s.err
}

func (s *stubComposer) VideoDetail(_ context.Context, _, viewerID string) (views.VideoDetail, error) {
	s.lastViewer = viewerID
	return s.detail, s.err
}

func (s *stubComposer) CommentFeed(_ context.Context, _, viewerID string, _, _ int) (views.Page[views.CommentView], error) {
	s.lastViewer = viewerID
	return s.commentPage, s.err
}

func (s *stubComposer) TweetFeed(_ context.Context, _, viewerID string) ([]views.TweetView, error) {
	s.lastViewer = viewerID
	return s.tweets, s.err
}

func (s *stubComposer) PlaylistDetail(context.Context, string) (views.PlaylistDetail, error) {
	return s.playlist, s.err
}

func (s *stubComposer) UserPlaylists(context.Context, string) ([]views.PlaylistSummary, error) {
	return s.summaries, s.err
}

func (s *stubComposer) ChannelDashboard(context.Context, string) (views.ChannelStats, error) {
	return s.stats, s.err
}

func (s *stubComposer) SubscriberList(context.Context, string) (views.SubscriberList, error) {
	return s.subscribers, s.err
}

func (s *stubComposer) SubscribedChannelList(context.Context, string) (views.SubscribedChannelList, error) {
	return s.channels, s.err
}

func (s *stubComposer) LikedVideos(context.Context, string) ([]views.LikedVideoEntry, error) {
	return s.liked, s.err
}

func (s *stubComposer) ListVideos(_ context.Context, opts views.VideoListOptions) (views.Page[views.VideoListItem], error) {
	s.lastOpts = opts
	return s.videoPage, s.err
}

func (s *stubComposer) WatchHistory(context.Context, string, int, int) (views.Page[views.VideoListItem], error) {
	return s.history, s.err
}

type denyLimiter struct{}

func (denyLimiter) Allow(string) bool { return false }
