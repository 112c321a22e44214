package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStackStore keeps stacks and entry logs in Redis so several API
// instances share undo state. Saves use WATCH/MULTI for the revision check.
type RedisStackStore struct {
	Client redis.UniversalClient
	Prefix string
}

// NewRedisStackStore constructs a RedisStackStore.
func NewRedisStackStore(client redis.UniversalClient) *RedisStackStore {
	return &RedisStackStore{Client: client, Prefix: "resume-agent:history"}
}

func (r *RedisStackStore) stackKey(userID string) string {
	return r.Prefix + ":stack:" + userID
}

func (r *RedisStackStore) entriesKey(userID string) string {
	return r.Prefix + ":entries:" + userID
}

// LoadStack implements StackStore.
func (r *RedisStackStore) LoadStack(ctx context.Context, userID string) (Stack, error) {
	return r.load(ctx, r.Client, userID)
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (r *RedisStackStore) load(ctx context.Context, c getter, userID string) (Stack, error) {
	raw, err := c.Get(ctx, r.stackKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Stack{UserID: userID}, nil
		}
		return Stack{}, err
	}
	var st Stack
	if err := json.Unmarshal(raw, &st); err != nil {
		return Stack{}, fmt.Errorf("decode stack: %w", err)
	}
	st.UserID = userID
	return st, nil
}

// SaveStack implements StackStore.
func (r *RedisStackStore) SaveStack(ctx context.Context, st Stack, expectedRevision int64) error {
	key := r.stackKey(st.UserID)
	err := r.Client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := r.load(ctx, tx, st.UserID)
		if err != nil {
			return err
		}
		if current.Revision != expectedRevision {
			return ErrConflict
		}
		next := st.clone()
		next.Revision = expectedRevision + 1
		payload, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode stack: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, payload, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrConflict
	}
	return err
}

// AppendEntry records e in the user's entry log.
func (r *RedisStackStore) AppendEntry(ctx context.Context, userID string, e Entry) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}
	return r.Client.RPush(ctx, r.entriesKey(userID), payload).Err()
}

// ListEntries returns the user's entry log, oldest first.
func (r *RedisStackStore) ListEntries(ctx context.Context, userID string) ([]Entry, error) {
	items, err := r.Client.LRange(ctx, r.entriesKey(userID), 0, -1).Result()
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(items))
	for _, item := range items {
		var e Entry
		if err := json.Unmarshal([]byte(item), &e); err != nil {
			return nil, fmt.Errorf("decode entry: %w", err)
		}
		out = append(out, e)
	}
	return out, nil
}
