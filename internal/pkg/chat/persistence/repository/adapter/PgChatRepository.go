package adapter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	chat "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/application/domain"
	repository "github.com/thy-zed/zedsphere-chat-app/internal/pkg/chat/persistence/repository/port"
)

// PgChatRepository persists the chat domain in the chat.* Postgres schema.
//
// Concurrency notes:
//   - Dyad uniqueness is a UNIQUE constraint on (user_low, user_high);
//     GetOrCreateConversation inserts with ON CONFLICT DO NOTHING and
//     re-reads, so a racing loser observes the winner's row.
//   - AppendMessage takes a FOR UPDATE lock on the conversation row, which
//     serializes appends per conversation while leaving other conversations
//     uncontended.
type PgChatRepository struct {
	pool *pgxpool.Pool
}

func NewPgChatRepository(pool *pgxpool.Pool) *PgChatRepository {
	return &PgChatRepository{pool: pool}
}

var _ repository.ChatRepository = (*PgChatRepository)(nil)

// appendAttempts bounds the internal retry on serialization/deadlock errors.
const appendAttempts = 3

func (r *PgChatRepository) GetOrCreateConversation(ctx context.Context, userLow, userHigh string) (chat.Conversation, bool, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, false, errors.New("PgChatRepository: nil pool")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Conversation{}, false, err
	}
	defer tx.Rollback(ctx)

	var conv chat.Conversation
	created := true
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.conversation (user_low, user_high)
		VALUES ($1, $2)
		ON CONFLICT (user_low, user_high) DO NOTHING
		RETURNING id::text, user_low, user_high, latest_message_id::text, created_at, updated_at
	`, userLow, userHigh).Scan(&conv.ID, &conv.UserLow, &conv.UserHigh, &conv.LatestMessageID, &conv.CreatedAt, &conv.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// Lost the race (or the row already existed): read the survivor.
		created = false
		err = tx.QueryRow(ctx, `
			SELECT id::text, user_low, user_high, latest_message_id::text, created_at, updated_at
			FROM chat.conversation
			WHERE user_low = $1 AND user_high = $2
		`, userLow, userHigh).Scan(&conv.ID, &conv.UserLow, &conv.UserHigh, &conv.LatestMessageID, &conv.CreatedAt, &conv.UpdatedAt)
	}
	if err != nil {
		return chat.Conversation{}, false, err
	}

	if created {
		_, err = tx.Exec(ctx, `
			INSERT INTO chat.participant (conversation_id, user_id, unread_count)
			VALUES ($1::uuid, $2, 0), ($1::uuid, $3, 0)
			ON CONFLICT (conversation_id, user_id) DO NOTHING
		`, conv.ID, userLow, userHigh)
		if err != nil {
			return chat.Conversation{}, false, err
		}
	}

	if conv.Participants, err = loadParticipants(ctx, tx, conv.ID); err != nil {
		return chat.Conversation{}, false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return chat.Conversation{}, false, err
	}
	return conv, created, nil
}

func (r *PgChatRepository) GetConversation(ctx context.Context, conversationID string) (chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return chat.Conversation{}, errors.New("PgChatRepository: nil pool")
	}
	var conv chat.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id::text, user_low, user_high, latest_message_id::text, created_at, updated_at
		FROM chat.conversation
		WHERE id = $1::uuid
	`, conversationID).Scan(&conv.ID, &conv.UserLow, &conv.UserHigh, &conv.LatestMessageID, &conv.CreatedAt, &conv.UpdatedAt)
	if conversationMissing(err) {
		return chat.Conversation{}, chat.ErrConversationNotFound
	}
	if err != nil {
		return chat.Conversation{}, err
	}
	if conv.Participants, err = loadParticipants(ctx, r.pool, conv.ID); err != nil {
		return chat.Conversation{}, err
	}
	return conv, nil
}

func (r *PgChatRepository) ListConversationsByUser(ctx context.Context, userID string) ([]chat.Conversation, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	rows, err := r.pool.Query(ctx, `
		SELECT c.id::text, c.user_low, c.user_high, c.latest_message_id::text, c.created_at, c.updated_at
		FROM chat.conversation c
		JOIN chat.participant p ON p.conversation_id = c.id
		WHERE p.user_id = $1
		ORDER BY c.updated_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var convs []chat.Conversation
	for rows.Next() {
		var conv chat.Conversation
		if err := rows.Scan(&conv.ID, &conv.UserLow, &conv.UserHigh, &conv.LatestMessageID, &conv.CreatedAt, &conv.UpdatedAt); err != nil {
			return nil, err
		}
		convs = append(convs, conv)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]string, len(convs))
	for i := range convs {
		ids[i] = convs[i].ID
	}
	byConv, err := loadParticipantsBatch(ctx, r.pool, ids)
	if err != nil {
		return nil, err
	}
	for i := range convs {
		convs[i].Participants = byConv[convs[i].ID]
	}
	return convs, nil
}

func (r *PgChatRepository) ResetUnread(ctx context.Context, conversationID, userID string) error {
	if r == nil || r.pool == nil {
		return errors.New("PgChatRepository: nil pool")
	}
	ct, err := r.pool.Exec(ctx, `
		UPDATE chat.participant
		SET unread_count = 0
		WHERE conversation_id = $1::uuid AND user_id = $2
	`, conversationID, userID)
	if conversationMissing(err) {
		return chat.ErrConversationNotFound
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return chat.ErrConversationNotFound
	}
	return nil
}

func (r *PgChatRepository) AppendMessage(ctx context.Context, m chat.Message) (chat.Message, error) {
	if r == nil || r.pool == nil {
		return chat.Message{}, errors.New("PgChatRepository: nil pool")
	}

	var out chat.Message
	var err error
	for attempt := 0; attempt < appendAttempts; attempt++ {
		out, err = r.appendOnce(ctx, m)
		if !retryable(err) {
			return out, err
		}
	}
	return out, err
}

func (r *PgChatRepository) appendOnce(ctx context.Context, m chat.Message) (chat.Message, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return chat.Message{}, err
	}
	defer tx.Rollback(ctx)

	// Lock the conversation row: the append critical section for this
	// conversation (timestamp assignment, latest pointer, unread counters).
	var userLow, userHigh string
	err = tx.QueryRow(ctx, `
		SELECT user_low, user_high
		FROM chat.conversation
		WHERE id = $1::uuid
		FOR UPDATE
	`, m.ConversationID).Scan(&userLow, &userHigh)
	if conversationMissing(err) {
		return chat.Message{}, chat.ErrConversationNotFound
	}
	if err != nil {
		return chat.Message{}, err
	}
	if m.SenderID != userLow && m.SenderID != userHigh {
		return chat.Message{}, chat.ErrNotParticipant
	}

	var last *time.Time
	if err := tx.QueryRow(ctx, `
		SELECT MAX(created_at) FROM chat.message WHERE conversation_id = $1::uuid
	`, m.ConversationID).Scan(&last); err != nil {
		return chat.Message{}, err
	}
	createdAt := time.Now().UTC()
	if last != nil && !createdAt.After(*last) {
		createdAt = last.Add(time.Microsecond)
	}

	out := m
	out.CreatedAt = createdAt
	err = tx.QueryRow(ctx, `
		INSERT INTO chat.message (conversation_id, sender_id, content, created_at)
		VALUES ($1::uuid, $2, $3, $4)
		RETURNING id::text
	`, m.ConversationID, m.SenderID, m.Content, createdAt).Scan(&out.ID)
	if err != nil {
		return chat.Message{}, err
	}

	if _, err := tx.Exec(ctx, `
		UPDATE chat.conversation
		SET latest_message_id = $2::uuid, updated_at = $3
		WHERE id = $1::uuid
	`, m.ConversationID, out.ID, createdAt); err != nil {
		return chat.Message{}, err
	}

	// Relative update: no read-modify-write window against a concurrent reset.
	if _, err := tx.Exec(ctx, `
		UPDATE chat.participant
		SET unread_count = unread_count + 1
		WHERE conversation_id = $1::uuid AND user_id <> $2
	`, m.ConversationID, m.SenderID); err != nil {
		return chat.Message{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return chat.Message{}, err
	}
	return out, nil
}

func (r *PgChatRepository) GetMessagesByConversation(ctx context.Context, conversationID string, limit, offset int) ([]chat.Message, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var exists bool
	if err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM chat.conversation WHERE id = $1::uuid)
	`, conversationID).Scan(&exists); err != nil {
		if conversationMissing(err) {
			return nil, chat.ErrConversationNotFound
		}
		return nil, err
	}
	if !exists {
		return nil, chat.ErrConversationNotFound
	}

	if offset < 0 {
		offset = 0
	}
	q := `
		SELECT id::text, conversation_id::text, sender_id, content, created_at
		FROM chat.message
		WHERE conversation_id = $1::uuid
		ORDER BY created_at ASC, id ASC
		OFFSET $2`
	args := []any{conversationID, offset}
	if limit > 0 {
		q += ` LIMIT $3`
		args = append(args, limit)
	}
	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []chat.Message
	for rows.Next() {
		var msg chat.Message
		if err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderID, &msg.Content, &msg.CreatedAt); err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return msgs, nil
}

func (r *PgChatRepository) ListParticipantIDs(ctx context.Context, conversationID string) ([]string, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("PgChatRepository: nil pool")
	}
	var userLow, userHigh string
	err := r.pool.QueryRow(ctx, `
		SELECT user_low, user_high FROM chat.conversation WHERE id = $1::uuid
	`, conversationID).Scan(&userLow, &userHigh)
	if conversationMissing(err) {
		return nil, chat.ErrConversationNotFound
	}
	if err != nil {
		return nil, err
	}
	return []string{userLow, userHigh}, nil
}

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadParticipants(ctx context.Context, q querier, conversationID string) ([]chat.Participant, error) {
	rows, err := q.Query(ctx, `
		SELECT conversation_id::text, user_id, unread_count
		FROM chat.participant
		WHERE conversation_id = $1::uuid
		ORDER BY user_id
	`, conversationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var parts []chat.Participant
	for rows.Next() {
		var p chat.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.UnreadCount); err != nil {
			return nil, err
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// loadParticipantsBatch hydrates participants for many conversations in one
// round trip, keyed by conversation id.
func loadParticipantsBatch(ctx context.Context, q querier, conversationIDs []string) (map[string][]chat.Participant, error) {
	rows, err := q.Query(ctx, `
		SELECT conversation_id::text, user_id, unread_count
		FROM chat.participant
		WHERE conversation_id = ANY($1::text[]::uuid[])
		ORDER BY conversation_id, user_id
	`, conversationIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byConv := make(map[string][]chat.Participant, len(conversationIDs))
	for rows.Next() {
		var p chat.Participant
		if err := rows.Scan(&p.ConversationID, &p.UserID, &p.UnreadCount); err != nil {
			return nil, err
		}
		byConv[p.ConversationID] = append(byConv[p.ConversationID], p)
	}
	return byConv, rows.Err()
}

// retryable reports whether err is a transient concurrency failure worth a
// bounded in-process retry (serialization_failure, deadlock_detected).
func retryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}

// conversationMissing reports an error meaning the referenced conversation
// cannot exist: no row, or a caller-supplied id that is not a valid uuid
// literal (SQLSTATE 22P02 from the server-side ::uuid casts). Both map to
// ErrConversationNotFound rather than a storage failure.
func conversationMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
