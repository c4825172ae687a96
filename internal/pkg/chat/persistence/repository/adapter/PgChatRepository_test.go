package adapter

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestConversationMissingClassification(t *testing.T) {
	assert.True(t, conversationMissing(pgx.ErrNoRows))
	assert.True(t, conversationMissing(fmt.Errorf("scan: %w", pgx.ErrNoRows)))

	// A non-uuid conversation id (e.g. "abc") fails the server-side ::uuid
	// cast with invalid_text_representation; that id cannot name any
	// conversation, so it is NotFound, not a storage failure.
	badID := &pgconn.PgError{Code: "22P02"}
	assert.True(t, conversationMissing(badID))
	assert.True(t, conversationMissing(fmt.Errorf("query: %w", badID)))

	assert.False(t, conversationMissing(nil))
	assert.False(t, conversationMissing(errors.New("connection reset")))
	assert.False(t, conversationMissing(&pgconn.PgError{Code: "40001"}))
}

func TestRetryableClassification(t *testing.T) {
	assert.True(t, retryable(&pgconn.PgError{Code: "40001"}))
	assert.True(t, retryable(fmt.Errorf("tx: %w", &pgconn.PgError{Code: "40P01"})))

	assert.False(t, retryable(nil))
	assert.False(t, retryable(pgx.ErrNoRows))
	assert.False(t, retryable(&pgconn.PgError{Code: "22P02"}))
}
