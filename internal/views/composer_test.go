package views

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/vidtube/backend/internal/models"
)

var errStoreMiss = errors.New("not found")

type fakeUserStore struct {
	users        map[string]models.User
	history      []VideoListItem
	historyAdded chan string
}

func (f *fakeUserStore) ByID(_ context.Context, id string) (models.User, error) {
	user, ok := f.users[id]
	if !ok {
		return models.User{}, errStoreMiss
	}
	return user, nil
}

func (f *fakeUserStore) ByUsername(_ context.Context, username string) (models.User, error) {
	for _, user := range f.users {
		if user.Username == username {
			return user, nil
		}
	}
	return models.User{}, errStoreMiss
}

func (f *fakeUserStore) AddWatchHistory(_ context.Context, userID, videoID string) error {
	if f.historyAdded != nil {
		f.historyAdded <- userID + ":" + videoID
	}
	return nil
}

func (f *fakeUserStore) WatchHistory(context.Context, string) ([]VideoListItem, error) {
	return f.history, nil
}

type fakeVideoStore struct {
	videos      map[string]models.Video
	listItems   []VideoListItem
	listTotal   int
	lastFilter  VideoFilter
	stats       ChannelStats
	latest      *models.Video
	incremented chan string
}

func (f *fakeVideoStore) ByID(_ context.Context, id string) (models.Video, error) {
	video, ok := f.videos[id]
	if !ok {
		return models.Video{}, errStoreMiss
	}
	return video, nil
}

func (f *fakeVideoStore) IncrementViews(_ context.Context, id string) error {
	if f.incremented != nil {
		f.incremented <- id
	}
	return nil
}

func (f *fakeVideoStore) ListPage(_ context.Context, filter VideoFilter) ([]VideoListItem, int, error) {
	f.lastFilter = filter
	return f.listItems, f.listTotal, nil
}

func (f *fakeVideoStore) LatestByOwner(context.Context, string) (*models.Video, error) {
	return f.latest, nil
}

func (f *fakeVideoStore) OwnerStats(context.Context, string) (ChannelStats, error) {
	return f.stats, nil
}

type fakeCommentStore struct {
	items      []CommentView
	total      int
	lastOffset int
	lastLimit  int
	lastViewer string
}

func (f *fakeCommentStore) FeedPage(_ context.Context, _, viewerID string, offset, limit int) ([]CommentView, int, error) {
	f.lastViewer = viewerID
	f.lastOffset = offset
	f.lastLimit = limit
	return f.items, f.total, nil
}

type fakeTweetStore struct {
	tweets    []TweetView
	lastOwner string
}

func (f *fakeTweetStore) FeedForOwner(_ context.Context, ownerID, _ string) ([]TweetView, error) {
	f.lastOwner = ownerID
	return f.tweets, nil
}

type fakeLikeStore struct {
	count   int
	liked   map[string]bool
	entries []LikedVideoEntry
}

func (f *fakeLikeStore) Count(context.Context, models.LikeTarget) (int, error) {
	return f.count, nil
}

func (f *fakeLikeStore) Exists(_ context.Context, userID string, target models.LikeTarget) (bool, error) {
	return f.liked[userID+":"+target.ID], nil
}

func (f *fakeLikeStore) LikedVideos(context.Context, string) ([]LikedVideoEntry, error) {
	return f.entries, nil
}

type fakeSubscriptionStore struct {
	channelCounts    map[string]int
	subscriberCounts map[string]int
	edges            map[string]bool
	forChannel       []models.Subscription
	forSubscriber    []models.Subscription
}

func (f *fakeSubscriptionStore) CountForChannel(_ context.Context, channelID string) (int, error) {
	return f.channelCounts[channelID], nil
}

func (f *fakeSubscriptionStore) CountForSubscriber(_ context.Context, subscriberID string) (int, error) {
	return f.subscriberCounts[subscriberID], nil
}

func (f *fakeSubscriptionStore) Exists(_ context.Context, subscriberID, channelID string) (bool, error) {
	return f.edges[subscriberID+":"+channelID], nil
}

func (f *fakeSubscriptionStore) ListForChannel(context.Context, string) ([]models.Subscription, error) {
	return f.forChannel, nil
}

func (f *fakeSubscriptionStore) ListForSubscriber(context.Context, string) ([]models.Subscription, error) {
	return f.forSubscriber, nil
}

type fakePlaylistStore struct {
	playlists   map[string]models.Playlist
	byOwner     []models.Playlist
	videos      []PlaylistVideo
	rollupCount int
	rollupViews int64
}

func (f *fakePlaylistStore) ByID(_ context.Context, id string) (models.Playlist, error) {
	playlist, ok := f.playlists[id]
	if !ok {
		return models.Playlist{}, errStoreMiss
	}
	return playlist, nil
}

func (f *fakePlaylistStore) ListByOwner(context.Context, string) ([]models.Playlist, error) {
	return f.byOwner, nil
}

func (f *fakePlaylistStore) PublishedVideos(context.Context, string) ([]PlaylistVideo, error) {
	return f.videos, nil
}

func (f *fakePlaylistStore) PublishedRollup(context.Context, string) (int, int64, error) {
	return f.rollupCount, f.rollupViews, nil
}

func testUser(id, username string) models.User {
	return models.User{
		ID:          id,
		Username:    username,
		DisplayName: username,
		Avatar:      models.Asset{URL: "https://cdn.example.com/" + username + ".png"},
	}
}

func TestComposerChannelProfile(t *testing.T) {
	users := &fakeUserStore{users: map[string]models.User{
		"u1": testUser("u1", "alice"),
	}}
	subs := &fakeSubscriptionStore{
		channelCounts:    map[string]int{"u1": 3},
		subscriberCounts: map[string]int{"u1": 2},
		edges:            map[string]bool{"viewer:u1": true},
	}
	composer := &Composer{Users: users, Subscriptions: subs}

	profile, err := composer.ChannelProfile(context.Background(), "  ALICE ", "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.SubscriberCount != 3 || profile.SubscribedToCount != 2 {
		t.Fatalf("unexpected rollups: %+v", profile)
	}
	if !profile.IsSubscribed {
		t.Fatal("expected IsSubscribed for subscribed viewer")
	}

	profile, err = composer.ChannelProfile(context.Background(), "alice", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.IsSubscribed {
		t.Fatal("expected IsSubscribed false for anonymous viewer")
	}

	if _, err := composer.ChannelProfile(context.Background(), "nobody", "viewer"); !errors.Is(err, errStoreMiss) {
		t.Fatalf("expected store miss for unknown channel, got %v", err)
	}
}

func TestComposerVideoDetail(t *testing.T) {
	videos := &fakeVideoStore{
		videos: map[string]models.Video{
			"v1": {
				ID: "v1", OwnerID: "u1", Title: "First", Views: 9, Published: true,
				File: models.Asset{URL: "https://cdn.example.com/v1.mp4"},
			},
		},
		incremented: make(chan string, 1),
	}
	users := &fakeUserStore{
		users:        map[string]models.User{"u1": testUser("u1", "alice")},
		historyAdded: make(chan string, 1),
	}
	likes := &fakeLikeStore{count: 4, liked: map[string]bool{"viewer:v1": true}}
	subs := &fakeSubscriptionStore{
		channelCounts: map[string]int{"u1": 7},
		edges:         map[string]bool{"viewer:u1": true},
	}
	composer := &Composer{Users: users, Videos: videos, Likes: likes, Subscriptions: subs}

	detail, err := composer.VideoDetail(context.Background(), "v1", "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.LikeCount != 4 || !detail.IsLiked {
		t.Fatalf("unexpected like rollup: %+v", detail)
	}
	if detail.Owner.SubscriberCount != 7 || !detail.Owner.IsSubscribed {
		t.Fatalf("unexpected owner rollup: %+v", detail.Owner)
	}
	if detail.Views != 9 {
		t.Fatalf("expected stored view count in the response, got %d", detail.Views)
	}

	select {
	case id := <-videos.incremented:
		if id != "v1" {
			t.Fatalf("unexpected view increment target: %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("expected view counter increment")
	}
	select {
	case entry := <-users.historyAdded:
		if entry != "viewer:v1" {
			t.Fatalf("unexpected watch history entry: %s", entry)
		}
	case <-time.After(time.Second):
		t.Fatal("expected watch history append for signed-in viewer")
	}
}

func TestComposerVideoDetailAnonymous(t *testing.T) {
	videos := &fakeVideoStore{
		videos:      map[string]models.Video{"v1": {ID: "v1", OwnerID: "u1"}},
		incremented: make(chan string, 1),
	}
	users := &fakeUserStore{
		users:        map[string]models.User{"u1": testUser("u1", "alice")},
		historyAdded: make(chan string, 1),
	}
	likes := &fakeLikeStore{count: 4, liked: map[string]bool{"viewer:v1": true}}
	subs := &fakeSubscriptionStore{edges: map[string]bool{"viewer:u1": true}}
	composer := &Composer{Users: users, Videos: videos, Likes: likes, Subscriptions: subs}

	detail, err := composer.VideoDetail(context.Background(), "v1", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.IsLiked || detail.Owner.IsSubscribed {
		t.Fatalf("expected anonymous flags false, got %+v", detail)
	}

	// Anonymous views still count, but no watch history is written.
	select {
	case <-videos.incremented:
	case <-time.After(time.Second):
		t.Fatal("expected view counter increment for anonymous viewer")
	}
	select {
	case entry := <-users.historyAdded:
		t.Fatalf("unexpected watch history entry for anonymous viewer: %s", entry)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestComposerCommentFeed(t *testing.T) {
	videos := &fakeVideoStore{videos: map[string]models.Video{"v1": {ID: "v1"}}}
	comments := &fakeCommentStore{
		items: []CommentView{{CommentID: "c1"}, {CommentID: "c2"}},
		total: 12,
	}
	composer := &Composer{Videos: videos, Comments: comments, DefaultLimit: 10, MaxLimit: 50}

	page, err := composer.CommentFeed(context.Background(), "v1", "viewer", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comments.lastOffset != 2 || comments.lastLimit != 2 {
		t.Fatalf("unexpected window: offset=%d limit=%d", comments.lastOffset, comments.lastLimit)
	}
	if comments.lastViewer != "viewer" {
		t.Fatalf("expected viewer forwarded, got %q", comments.lastViewer)
	}
	if page.TotalItems != 12 || page.TotalPages != 6 || !page.HasNext {
		t.Fatalf("unexpected page: %+v", page)
	}

	// Limit falls back to the configured default when unset.
	if _, err := composer.CommentFeed(context.Background(), "v1", "", 1, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comments.lastLimit != 10 {
		t.Fatalf("expected default limit 10, got %d", comments.lastLimit)
	}

	// Limit is clamped to the configured maximum.
	if _, err := composer.CommentFeed(context.Background(), "v1", "", 1, 500); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if comments.lastLimit != 50 {
		t.Fatalf("expected clamped limit 50, got %d", comments.lastLimit)
	}

	if _, err := composer.CommentFeed(context.Background(), "missing", "", 1, 10); !errors.Is(err, errStoreMiss) {
		t.Fatalf("expected store miss for unknown video, got %v", err)
	}
}

func TestComposerTweetFeed(t *testing.T) {
	users := &fakeUserStore{users: map[string]models.User{"u1": testUser("u1", "alice")}}
	tweets := &fakeTweetStore{}
	composer := &Composer{Users: users, Tweets: tweets}

	feed, err := composer.TweetFeed(context.Background(), "Alice", "viewer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tweets.lastOwner != "u1" {
		t.Fatalf("expected feed resolved by owner id, got %q", tweets.lastOwner)
	}
	if feed == nil {
		t.Fatal("expected empty slice, not nil")
	}
}

func TestComposerPlaylistDetail(t *testing.T) {
	playlists := &fakePlaylistStore{
		playlists: map[string]models.Playlist{
			"p1": {ID: "p1", OwnerID: "u1", Name: "Favourites"},
		},
		videos: []PlaylistVideo{
			{VideoID: "v1", Views: 10},
			{VideoID: "v2", Views: 5},
		},
	}
	users := &fakeUserStore{users: map[string]models.User{"u1": testUser("u1", "alice")}}
	composer := &Composer{Users: users, Playlists: playlists}

	detail, err := composer.PlaylistDetail(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.TotalVideos != 2 || detail.TotalViews != 15 {
		t.Fatalf("unexpected rollup: %+v", detail)
	}
	if detail.Owner.Username != "alice" {
		t.Fatalf("unexpected owner: %+v", detail.Owner)
	}

	// A playlist with no published videos is a valid empty view.
	playlists.videos = nil
	detail, err = composer.PlaylistDetail(context.Background(), "p1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if detail.Videos == nil || detail.TotalVideos != 0 || detail.TotalViews != 0 {
		t.Fatalf("expected empty rollup, got %+v", detail)
	}
}

func TestComposerUserPlaylists(t *testing.T) {
	playlists := &fakePlaylistStore{
		byOwner:     []models.Playlist{{ID: "p1", Name: "Favourites"}},
		rollupCount: 3,
		rollupViews: 40,
	}
	composer := &Composer{Playlists: playlists}

	summaries, err := composer.UserPlaylists(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("expected one summary, got %d", len(summaries))
	}
	if summaries[0].TotalVideos != 3 || summaries[0].TotalViews != 40 {
		t.Fatalf("unexpected summary: %+v", summaries[0])
	}
}

func TestComposerChannelDashboard(t *testing.T) {
	videos := &fakeVideoStore{stats: ChannelStats{TotalVideos: 4, TotalViews: 100, TotalLikes: 9}}
	subs := &fakeSubscriptionStore{channelCounts: map[string]int{"u1": 6}}
	composer := &Composer{Videos: videos, Subscriptions: subs}

	stats, err := composer.ChannelDashboard(context.Background(), "u1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ChannelStats{TotalVideos: 4, TotalViews: 100, TotalLikes: 9, TotalSubscribers: 6}
	if stats != want {
		t.Fatalf("unexpected stats: got %+v want %+v", stats, want)
	}
}

func TestComposerSubscriberList(t *testing.T) {
	users := &fakeUserStore{users: map[string]models.User{
		"fan1": testUser("fan1", "fan-one"),
		"fan2": testUser("fan2", "fan-two"),
	}}
	subs := &fakeSubscriptionStore{
		forChannel: []models.Subscription{
			{SubscriberID: "fan1", ChannelID: "channel"},
			{SubscriberID: "fan2", ChannelID: "channel"},
		},
		channelCounts: map[string]int{"fan1": 5},
		edges:         map[string]bool{"channel:fan1": true},
	}
	composer := &Composer{Users: users, Subscriptions: subs}

	list, err := composer.SubscriberList(context.Background(), "channel")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.TotalSubscribers != 2 {
		t.Fatalf("expected 2 subscribers, got %d", list.TotalSubscribers)
	}
	if !list.Subscribers[0].IsSubscribedBack || list.Subscribers[0].SubscriberCount != 5 {
		t.Fatalf("unexpected first subscriber: %+v", list.Subscribers[0])
	}
	if list.Subscribers[1].IsSubscribedBack {
		t.Fatalf("expected no back-subscription for second subscriber: %+v", list.Subscribers[1])
	}
}

func TestComposerSubscribedChannelList(t *testing.T) {
	users := &fakeUserStore{users: map[string]models.User{"channel": testUser("channel", "creator")}}
	subs := &fakeSubscriptionStore{
		forSubscriber: []models.Subscription{{SubscriberID: "fan", ChannelID: "channel"}},
	}
	videos := &fakeVideoStore{}
	composer := &Composer{Users: users, Subscriptions: subs, Videos: videos}

	list, err := composer.SubscribedChannelList(context.Background(), "fan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.TotalSubscribedChannels != 1 {
		t.Fatalf("expected one channel, got %d", list.TotalSubscribedChannels)
	}
	if list.Channels[0].LatestVideo != nil {
		t.Fatalf("expected nil latest video for channel without uploads, got %+v", list.Channels[0].LatestVideo)
	}

	videos.latest = &models.Video{ID: "v1", Title: "Fresh", Views: 2}
	list, err = composer.SubscribedChannelList(context.Background(), "fan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Channels[0].LatestVideo == nil || list.Channels[0].LatestVideo.VideoID != "v1" {
		t.Fatalf("expected latest video attached, got %+v", list.Channels[0].LatestVideo)
	}
}

func TestComposerListVideos(t *testing.T) {
	videos := &fakeVideoStore{
		listItems: []VideoListItem{{VideoID: "v1"}},
		listTotal: 30,
	}
	composer := &Composer{Videos: videos, DefaultLimit: 10, MaxLimit: 50}

	page, err := composer.ListVideos(context.Background(), VideoListOptions{
		Query: "  cats  ", Page: 2, Limit: 5, Sort: SortByViews,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if videos.lastFilter.Query != "cats" {
		t.Fatalf("expected trimmed query, got %q", videos.lastFilter.Query)
	}
	if videos.lastFilter.Offset != 5 || videos.lastFilter.Limit != 5 {
		t.Fatalf("unexpected window: %+v", videos.lastFilter)
	}
	if page.TotalPages != 6 || !page.HasPrev {
		t.Fatalf("unexpected page: %+v", page)
	}

	if _, err := composer.ListVideos(context.Background(), VideoListOptions{}); err != nil {
		t.Fatalf("unexpected error with empty options: %v", err)
	}
	if videos.lastFilter.Sort != SortByCreatedAt {
		t.Fatalf("expected default sort, got %q", videos.lastFilter.Sort)
	}

	if _, err := composer.ListVideos(context.Background(), VideoListOptions{Sort: "bogus"}); err == nil {
		t.Fatal("expected error for unsupported sort field")
	}
}

func TestComposerWatchHistoryPagination(t *testing.T) {
	users := &fakeUserStore{history: []VideoListItem{
		{VideoID: "v3"}, {VideoID: "v2"}, {VideoID: "v1"},
	}}
	composer := &Composer{Users: users, DefaultLimit: 10, MaxLimit: 50}

	page, err := composer.WatchHistory(context.Background(), "u1", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 || page.Items[0].VideoID != "v1" {
		t.Fatalf("unexpected window: %+v", page.Items)
	}
	if page.TotalItems != 3 || page.TotalPages != 2 {
		t.Fatalf("unexpected totals: %+v", page)
	}
}
