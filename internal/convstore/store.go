package convstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"textflix/internal/conversation"
)

const keyPrefix = "textflix:conversation:"

// Store reads and writes per-number conversation transcripts.
type Store struct {
	client       *redis.Client
	historyLimit int
	ttl          time.Duration
}

// New builds a store over an existing Redis client. historyLimit caps the
// number of retained utterances per conversation; ttl expires idle
// conversations entirely.
func New(client *redis.Client, historyLimit int, ttl time.Duration) (*Store, error) {
	if client == nil {
		return nil, errors.New("convstore: redis client required")
	}
	if historyLimit <= 0 {
		return nil, errors.New("convstore: history limit must be positive")
	}
	return &Store{client: client, historyLimit: historyLimit, ttl: ttl}, nil
}

// Open dials Redis and verifies connectivity before returning a store.
func Open(ctx context.Context, addr, password string, db, historyLimit int, ttl time.Duration) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("convstore: ping redis: %w", err)
	}
	store, err := New(client, historyLimit, ttl)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the underlying Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}

// AppendUser records an inbound user message.
func (s *Store) AppendUser(ctx context.Context, number, text string) error {
	return s.append(ctx, number, "USER: "+sanitizeLine(text))
}

// AppendSystem records an outbound assistant reply.
func (s *Store) AppendSystem(ctx context.Context, number, text string) error {
	return s.append(ctx, number, "SYSTEM: "+sanitizeLine(text))
}

func (s *Store) append(ctx context.Context, number, line string) error {
	key, err := conversationKey(number)
	if err != nil {
		return err
	}
	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, key, line)
	pipe.LTrim(ctx, key, int64(-s.historyLimit), -1)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("convstore: append: %w", err)
	}
	return nil
}

// History returns the stored transcript for a number, oldest first. A number
// with no history yields an empty conversation.
func (s *Store) History(ctx context.Context, number string) (conversation.Conversation, error) {
	key, err := conversationKey(number)
	if err != nil {
		return conversation.Conversation{}, err
	}
	lines, err := s.client.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("convstore: read history: %w", err)
	}
	conv, err := conversation.ParseTranscript(lines)
	if err != nil {
		return conversation.Conversation{}, fmt.Errorf("convstore: corrupt history for %s: %w", number, err)
	}
	return conv, nil
}

// Clear removes the transcript for a number.
func (s *Store) Clear(ctx context.Context, number string) error {
	key, err := conversationKey(number)
	if err != nil {
		return err
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("convstore: clear: %w", err)
	}
	return nil
}

func conversationKey(number string) (string, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return "", errors.New("convstore: phone number required")
	}
	return keyPrefix + number, nil
}

// sanitizeLine flattens newlines so a multi-line SMS cannot forge extra
// transcript entries.
func sanitizeLine(text string) string {
	replacer := strings.NewReplacer("\r", " ", "\n", " ")
	return strings.TrimSpace(replacer.Replace(text))
}
