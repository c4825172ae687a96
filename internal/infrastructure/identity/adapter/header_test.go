package adapter

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thy-zed/zedsphere-chat-app/internal/infrastructure/identity/port"
)

func TestHeaderResolver(t *testing.T) {
	resolver := NewHeaderResolver("")

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set(DefaultUserHeader, "  alice  ")
	id, err := resolver.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", id.UserID)
}

func TestHeaderResolverRejectsAnonymous(t *testing.T) {
	resolver := NewHeaderResolver("")
	req := httptest.NewRequest("GET", "/", nil)
	_, err := resolver.Resolve(context.Background(), req)
	assert.ErrorIs(t, err, port.ErrUnresolved)
}

func TestHeaderResolverCustomHeader(t *testing.T) {
	resolver := NewHeaderResolver("X-Forwarded-User")
	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Forwarded-User", "bob")
	id, err := resolver.Resolve(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "bob", id.UserID)
}
