package port

import (
	"context"
	"errors"
	"net/http"
)

// ErrUnresolved signals that the request carried no resolvable identity.
var ErrUnresolved = errors.New("identity: could not resolve user")

// Identity is the stable user identity attached to a request or connection.
type Identity struct {
	UserID string
}

// Resolver maps an inbound request to a stable user identity. Credential
// issuance and verification live outside this service; adapters front
// whatever upstream (auth proxy, token service) actually vouches for the
// request. Return ErrUnresolved for anonymous/invalid requests.
type Resolver interface {
	Resolve(ctx context.Context, r *http.Request) (Identity, error)
}
