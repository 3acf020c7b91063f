package cache

import (
	"alcyxob/coach-app/internal/domain"
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DraftTTL is how long a generated strategy can still be saved without
// resending it.
const DraftTTL = 24 * time.Hour

const draftKeyPrefix = "draft:strategy:"

// RedisDraftStore keeps strategy drafts as JSON values with a TTL.
type RedisDraftStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDraftStore(client *redis.Client, ttl time.Duration) *RedisDraftStore {
	if ttl <= 0 {
		ttl = DraftTTL
	}
	return &RedisDraftStore{client: client, ttl: ttl}
}

func (s *RedisDraftStore) SaveStrategyDraft(ctx context.Context, userID primitive.ObjectID, draft *domain.StrategyDraft) error {
	b, err := json.Marshal(draft)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, draftKeyPrefix+userID.Hex(), b, s.ttl).Err()
}

func (s *RedisDraftStore) GetStrategyDraft(ctx context.Context, userID primitive.ObjectID) (*domain.StrategyDraft, error) {
	b, err := s.client.Get(ctx, draftKeyPrefix+userID.Hex()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var draft domain.StrategyDraft
	if err := json.Unmarshal(b, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

type memoryDraft struct {
	draft   domain.StrategyDraft
	expires time.Time
}

// MemoryDraftStore is the in-process DraftStore.
type MemoryDraftStore struct {
	mu     sync.Mutex
	ttl    time.Duration
	now    func() time.Time
	drafts map[primitive.ObjectID]memoryDraft
}

func NewMemoryDraftStore(ttl time.Duration) *MemoryDraftStore {
	if ttl <= 0 {
		ttl = DraftTTL
	}
	return &MemoryDraftStore{ttl: ttl, now: time.Now, drafts: map[primitive.ObjectID]memoryDraft{}}
}

func (s *MemoryDraftStore) SaveStrategyDraft(_ context.Context, userID primitive.ObjectID, draft *domain.StrategyDraft) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drafts[userID] = memoryDraft{draft: *draft, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemoryDraftStore) GetStrategyDraft(_ context.Context, userID primitive.ObjectID) (*domain.StrategyDraft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[userID]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(d.expires) {
		delete(s.drafts, userID)
		return nil, nil
	}
	draft := d.draft
	return &draft, nil
}
