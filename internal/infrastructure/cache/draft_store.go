package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sangkips/stockroom-api/internal/domain/pricing"
	domainRepo "github.com/sangkips/stockroom-api/internal/domain/repository"
)

func draftKey(storeID uuid.UUID, sessionID string) string {
	return buildKey("draft", storeID.String(), sessionID)
}

type redisDraftStore struct {
	client *Client
	ttl    time.Duration
}

// NewRedisDraftStore keeps drafts in redis; every save refreshes the TTL.
func NewRedisDraftStore(client *Client, ttl time.Duration) domainRepo.DraftRepository {
	return &redisDraftStore{client: client, ttl: ttl}
}

func (s *redisDraftStore) Get(ctx context.Context, storeID uuid.UUID, sessionID string) (*pricing.Draft, error) {
	raw, err := s.client.store.Get(ctx, draftKey(storeID, sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	var draft pricing.Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (s *redisDraftStore) Save(ctx context.Context, draft *pricing.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	return s.client.store.Set(ctx, draftKey(draft.StoreID, draft.SessionID), raw, s.ttl).Err()
}

func (s *redisDraftStore) Delete(ctx context.Context, storeID uuid.UUID, sessionID string) error {
	return s.client.store.Del(ctx, draftKey(storeID, sessionID)).Err()
}

type memoryEntry struct {
	raw       []byte
	expiresAt time.Time
}

type memoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[string]memoryEntry
}

// NewMemoryDraftStore keeps drafts in process memory. Drafts are stored
// encoded so callers never share a mutable copy.
func NewMemoryDraftStore(ttl time.Duration) domainRepo.DraftRepository {
	return newMemoryDraftStore(ttl, time.Now)
}

func newMemoryDraftStore(ttl time.Duration, now func() time.Time) *memoryDraftStore {
	return &memoryDraftStore{ttl: ttl, now: now, drafts: make(map[string]memoryEntry)}
}

func (s *memoryDraftStore) Get(_ context.Context, storeID uuid.UUID, sessionID string) (*pricing.Draft, error) {
	key := draftKey(storeID, sessionID)
	s.mu.Lock()
	entry, ok := s.drafts[key]
	if ok && s.expired(entry) {
		delete(s.drafts, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return nil, nil
	}
	var draft pricing.Draft
	if err := json.Unmarshal(entry.raw, &draft); err != nil {
		return nil, fmt.Errorf("decode draft: %w", err)
	}
	return &draft, nil
}

func (s *memoryDraftStore) Save(_ context.Context, draft *pricing.Draft) error {
	raw, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}
	entry := memoryEntry{raw: raw}
	if s.ttl > 0 {
		entry.expiresAt = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.drafts[draftKey(draft.StoreID, draft.SessionID)] = entry
	s.mu.Unlock()
	return nil
}

func (s *memoryDraftStore) Delete(_ context.Context, storeID uuid.UUID, sessionID string) error {
	s.mu.Lock()
	delete(s.drafts, draftKey(storeID, sessionID))
	s.mu.Unlock()
	return nil
}

func (s *memoryDraftStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && s.now().After(entry.expiresAt)
}
