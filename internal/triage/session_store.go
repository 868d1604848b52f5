package triage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/medikah/telehealth-intake/pkg/logging"
)

// DefaultSessionTTL is how long an idle session survives before the next
// contact starts a fresh welcome-stage state.
const DefaultSessionTTL = 90 * time.Minute

// ErrSessionNotFound reports an absent or expired session.
var ErrSessionNotFound = errors.New("triage: session not found")

// SessionStore persists per-session conversation state with TTL expiry.
// Implementations must treat expiry transparently: an expired id reads as
// absent.
type SessionStore interface {
	// Get returns the state for sessionID or ErrSessionNotFound.
	Get(ctx context.Context, sessionID string) (*ConversationState, error)
	// Create builds a fresh welcome-stage state. An empty sessionID gets a
	// generated one.
	Create(ctx context.Context, sessionID string) (*ConversationState, error)
	// Update persists the state and refreshes its TTL.
	Update(ctx context.Context, state *ConversationState) error
	// GetOrCreate returns the existing state or a fresh one for the id.
	GetOrCreate(ctx context.Context, sessionID string) (*ConversationState, error)
}

func newConversationState(sessionID string) *ConversationState {
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	now := time.Now().UTC()
	return &ConversationState{
		SessionID: sessionID,
		Stage:     StageWelcome,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RedisSessionStore keeps each session as a JSON blob under a namespaced key
// with a TTL refreshed on every write.
type RedisSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
	logger *logging.Logger
}

func NewRedisSessionStore(client *redis.Client, ttl time.Duration, logger *logging.Logger) *RedisSessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &RedisSessionStore{
		client: client,
		ttl:    ttl,
		tracer: otel.Tracer("triage.session_store"),
		logger: logger,
	}
}

func sessionKey(sessionID string) string {
	return "triage:session:" + sessionID
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*ConversationState, error) {
	ctx, span := s.tracer.Start(ctx, "session_store.get",
		trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("triage: get session: %w", err)
	}

	var state ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("triage: decode session: %w", err)
	}
	return &state, nil
}

func (s *RedisSessionStore) Create(ctx context.Context, sessionID string) (*ConversationState, error) {
	state := newConversationState(sessionID)
	if err := s.Update(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *RedisSessionStore) Update(ctx context.Context, state *ConversationState) error {
	ctx, span := s.tracer.Start(ctx, "session_store.update",
		trace.WithAttributes(
			attribute.String("session.id", state.SessionID),
			attribute.String("session.stage", string(state.Stage)),
		))
	defer span.End()

	raw, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("triage: encode session: %w", err)
	}
	if err := s.client.Set(ctx, sessionKey(state.SessionID), raw, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("triage: store session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) GetOrCreate(ctx context.Context, sessionID string) (*ConversationState, error) {
	if sessionID == "" {
		return s.Create(ctx, "")
	}
	state, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return s.Create(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// MemorySessionStore is the single-process fallback used when Redis is not
// configured. Expired entries are pruned lazily on access.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]memorySession
}

type memorySession struct {
	state     *ConversationState
	expiresAt time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[string]memorySession),
	}
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID string) (*ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.sessions, sessionID)
		return nil, ErrSessionNotFound
	}
	return entry.state.Clone(), nil
}

func (s *MemorySessionStore) Create(_ context.Context, sessionID string) (*ConversationState, error) {
	state := newConversationState(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.sessions[state.SessionID] = memorySession{
		state:     state.Clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
	return state, nil
}

func (s *MemorySessionStore) Update(_ context.Context, state *ConversationState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prune()
	s.sessions[state.SessionID] = memorySession{
		state:     state.Clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemorySessionStore) GetOrCreate(ctx context.Context, sessionID string) (*ConversationState, error) {
	if sessionID == "" {
		return s.Create(ctx, "")
	}
	state, err := s.Get(ctx, sessionID)
	if errors.Is(err, ErrSessionNotFound) {
		return s.Create(ctx, sessionID)
	}
	if err != nil {
		return nil, err
	}
	return state, nil
}

// prune drops expired entries. Caller holds the lock.
func (s *MemorySessionStore) prune() {
	now := time.Now()
	for id, entry := range s.sessions {
		if now.After(entry.expiresAt) {
			delete(s.sessions, id)
		}
	}
}
