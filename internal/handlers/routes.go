package handlers

import "net/http"

// Dependencies aggregates collaborators required by HTTP handlers.
type Dependencies struct {
	Users     UserStore
	Videos    VideoStore
	Comments  CommentStore
	Tweets    TweetStore
	Playlists PlaylistStore
	Sessions  SessionManager
	Composer  ViewComposer
	Toggler   EngagementToggler
	Storage   AssetStorage
	Limiter   RateLimiter
}

// RegisterRoutes wires HTTP handlers into the provided ServeMux.
func RegisterRoutes(mux *http.ServeMux, deps Dependencies) {
	health := HealthHandler{}
	auth := AuthHandler{Users: deps.Users, Sessions: deps.Sessions, Limiter: deps.Limiter}
	users := UserHandler{Users: deps.Users, Composer: deps.Composer, Sessions: deps.Sessions, Storage: deps.Storage}
	videos := VideoHandler{Videos: deps.Videos, Composer: deps.Composer, Sessions: deps.Sessions, Storage: deps.Storage}
	comments := CommentHandler{Comments: deps.Comments, Composer: deps.Composer, Sessions: deps.Sessions}
	tweets := TweetHandler{Tweets: deps.Tweets, Composer: deps.Composer, Sessions: deps.Sessions}
	likes := LikeHandler{Toggler: deps.Toggler, Composer: deps.Composer, Sessions: deps.Sessions, Limiter: deps.Limiter}
	subscriptions := SubscriptionHandler{Toggler: deps.Toggler, Composer: deps.Composer, Sessions: deps.Sessions, Limiter: deps.Limiter}
	playlists := PlaylistHandler{Playlists: deps.Playlists, Composer: deps.Composer, Sessions: deps.Sessions}
	dashboard := DashboardHandler{Composer: deps.Composer, Sessions: deps.Sessions}

	mux.HandleFunc("/healthz", health.Handle)

	mux.HandleFunc("/api/v1/auth/signup", auth.SignUp)
	mux.HandleFunc("/api/v1/auth/login", auth.Login)
	mux.HandleFunc("/api/v1/auth/refresh", auth.Refresh)
	mux.HandleFunc("/api/v1/auth/logout", auth.Logout)
	mux.HandleFunc("/api/v1/auth/change-password", auth.ChangePassword)

	mux.HandleFunc("/api/v1/users/me", users.Me)
	mux.HandleFunc("/api/v1/users/me/profile", users.UpdateProfile)
	mux.HandleFunc("/api/v1/users/me/avatar", users.ReplaceAvatar)
	mux.HandleFunc("/api/v1/users/me/cover", users.ReplaceCover)
	mux.HandleFunc("/api/v1/users/me/history", users.WatchHistory)
	mux.HandleFunc("/api/v1/users/me/subscriptions", subscriptions.Subscribed)
	mux.HandleFunc("/api/v1/users/{id}/playlists", playlists.ForUser)

	mux.HandleFunc("/api/v1/channels/{username}", users.Channel)
	mux.HandleFunc("/api/v1/channels/{username}/tweets", tweets.Feed)

	mux.HandleFunc("/api/v1/videos", videos.Publish)
	mux.HandleFunc("/api/v1/videos/list", videos.List)
	mux.HandleFunc("/api/v1/videos/{id}", videos.Detail)
	mux.HandleFunc("/api/v1/videos/{id}/edit", videos.Update)
	mux.HandleFunc("/api/v1/videos/{id}/delete", videos.Delete)
	mux.HandleFunc("/api/v1/videos/{id}/thumbnail", videos.ReplaceThumbnail)
	mux.HandleFunc("/api/v1/videos/{id}/toggle-publish", videos.TogglePublish)
	mux.HandleFunc("/api/v1/videos/{id}/comments", comments.Feed)
	mux.HandleFunc("/api/v1/videos/{id}/comments/new", comments.Create)

	mux.HandleFunc("/api/v1/comments/{id}", comments.Update)
	mux.HandleFunc("/api/v1/comments/{id}/delete", comments.Delete)

	mux.HandleFunc("/api/v1/tweets", tweets.Create)
	mux.HandleFunc("/api/v1/tweets/{id}", tweets.Update)
	mux.HandleFunc("/api/v1/tweets/{id}/delete", tweets.Delete)

	mux.HandleFunc("/api/v1/likes/videos", likes.LikedVideos)
	mux.HandleFunc("/api/v1/likes/videos/{id}", likes.ToggleVideo)
	mux.HandleFunc("/api/v1/likes/comments/{id}", likes.ToggleComment)
	mux.HandleFunc("/api/v1/likes/tweets/{id}", likes.ToggleTweet)

	mux.HandleFunc("/api/v1/subscriptions/{channelId}", subscriptions.Toggle)
	mux.HandleFunc("/api/v1/subscriptions/{channelId}/subscribers", subscriptions.Subscribers)

	mux.HandleFunc("/api/v1/playlists", playlists.Create)
	mux.HandleFunc("/api/v1/playlists/{id}", playlists.Detail)
	mux.HandleFunc("/api/v1/playlists/{id}/edit", playlists.Update)
	mux.HandleFunc("/api/v1/playlists/{id}/delete", playlists.Delete)
	mux.HandleFunc("/api/v1/playlists/{id}/videos/{videoId}", playlists.AddVideo)
	mux.HandleFunc("/api/v1/playlists/{id}/videos/{videoId}/remove", playlists.RemoveVideo)

	mux.HandleFunc("/api/v1/dashboard/stats", dashboard.Stats)
}
