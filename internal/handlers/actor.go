package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/vidtube/backend/internal/logging"
)

func bearerToken(r *http.Request) string {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

// requireActor resolves the request's bearer token to a user id. A missing or
// invalid session gets a 401 and a false result.
func requireActor(ctx context.Context, w http.ResponseWriter, r *http.Request, sessions SessionManager) (string, bool) {
	token := bearerToken(r)
	if token == "" {
		respondError(ctx, w, http.StatusUnauthorized, "authentication required")
		return "", false
	}

	actorID, err := sessions.Authenticate(ctx, token)
	if err != nil {
		logging.FromContext(ctx).Warn("bearer token rejected", "error", err)
		respondError(ctx, w, http.StatusUnauthorized, "invalid or expired session")
		return "", false
	}

	return actorID, true
}

// optionalActor resolves the bearer token when one is present. Requests
// without a usable session proceed as anonymous reads.
func optionalActor(ctx context.Context, r *http.Request, sessions SessionManager) string {
	token := bearerToken(r)
	if token == "" {
		return ""
	}

	actorID, err := sessions.Authenticate(ctx, token)
	if err != nil {
		return ""
	}
	return actorID
}
