package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/thenoetrevino/groupboard/internal/replica"
	"github.com/thenoetrevino/groupboard/internal/types"
)

// RoomStore keeps room snapshots between sessions.
type RoomStore interface {
	// Load returns the saved snapshot, or nil when the room has none
	Load(ctx context.Context, id types.ProjectID) ([]replica.Op, error)

	// Save replaces the snapshot
	Save(ctx context.Context, id types.ProjectID, ops []replica.Op) error
}

// MemoryRoomStore keeps snapshots for the life of the process.
type MemoryRoomStore struct {
	mu    sync.Mutex
	rooms map[types.ProjectID][]byte
}

// NewMemoryRoomStore creates an empty store.
func NewMemoryRoomStore() *MemoryRoomStore {
	return &MemoryRoomStore{rooms: make(map[types.ProjectID][]byte)}
}

func (m *MemoryRoomStore) Load(_ context.Context, id types.ProjectID) ([]replica.Op, error) {
	m.mu.Lock()
	data, ok := m.rooms[id]
	m.mu.Unlock()
	if !ok {
		return nil, nil
	}
	return decodeSnapshot(data)
}

func (m *MemoryRoomStore) Save(_ context.Context, id types.ProjectID, ops []replica.Op) error {
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	m.mu.Lock()
	m.rooms[id] = data
	m.mu.Unlock()
	return nil
}

// RedisRoomStore keeps snapshots in Redis under room:<id>:snapshot.
type RedisRoomStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisRoomStore connects to redisURL. A zero ttl keeps snapshots forever.
func NewRedisRoomStore(redisURL string, ttl time.Duration) (*RedisRoomStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisRoomStore{client: client, ttl: ttl}, nil
}

// NewRedisRoomStoreWithClient creates a store from an existing Redis client
func NewRedisRoomStoreWithClient(client *redis.Client, ttl time.Duration) *RedisRoomStore {
	return &RedisRoomStore{client: client, ttl: ttl}
}

func roomKey(id types.ProjectID) string {
	return "room:" + string(id) + ":snapshot"
}

func (s *RedisRoomStore) Load(ctx context.Context, id types.ProjectID) ([]replica.Op, error) {
	data, err := s.client.Get(ctx, roomKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load room snapshot: %w", err)
	}
	return decodeSnapshot(data)
}

func (s *RedisRoomStore) Save(ctx context.Context, id types.ProjectID, ops []replica.Op) error {
	data, err := json.Marshal(ops)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := s.client.Set(ctx, roomKey(id), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("save room snapshot: %w", err)
	}
	return nil
}

// Ping checks the Redis connection
func (s *RedisRoomStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection
func (s *RedisRoomStore) Close() error {
	return s.client.Close()
}

func decodeSnapshot(data []byte) ([]replica.Op, error) {
	var ops []replica.Op
	if err := json.Unmarshal(data, &ops); err != nil {
		return nil, fmt.Errorf("decode room snapshot: %w", err)
	}
	return ops, nil
}
