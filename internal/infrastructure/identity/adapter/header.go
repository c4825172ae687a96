package adapter

import (
	"context"
	"net/http"
	"strings"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/port"
)

// DefaultUserHeader is the header the upstream auth proxy sets after it has
// verified the caller's credentials.
const DefaultUserHeader = "X-User-ID"

// HeaderResolver trusts a user id header injected by an authenticating
// reverse proxy in front of this service. It performs no verification of its
// own; deploy it only behind a proxy that strips the header from client
// traffic.
type HeaderResolver struct {
	Header string
}

// NewHeaderResolver constructs a HeaderResolver; empty header falls back to
// DefaultUserHeader.
func NewHeaderResolver(header string) *HeaderResolver {
	if header == "" {
		header = DefaultUserHeader
	}
	return &HeaderResolver{Header: header}
}

var _ port.Resolver = (*HeaderResolver)(nil)

func (h *HeaderResolver) Resolve(_ context.Context, r *http.Request) (port.Identity, error) {
	userID := strings.TrimSpace(r.Header.Get(h.Header))
	if userID == "" {
		return port.Identity{}, port.ErrUnresolved
	}
	return port.Identity{UserID: userID}, nil
}
