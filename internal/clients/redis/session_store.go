package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/sproutlingo-backend/internal/engine"
	"github.com/yungbote/sproutlingo-backend/internal/logger"
)

// SessionStore keeps the live SessionContext between requests. The context
// is a value owned by one caller at a time; the store is plain
// load/replace, no coordination.
type SessionStore interface {
	Save(ctx context.Context, sc engine.SessionContext) error
	Get(ctx context.Context, sessionID uuid.UUID) (*engine.SessionContext, error)
	Delete(ctx context.Context, sessionID uuid.UUID) error
	Close() error
}

type sessionStore struct {
	log *logger.Logger
	rdb *goredis.Client
	ttl time.Duration
}

func NewSessionStore(log *logger.Logger) (SessionStore, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return nil, fmt.Errorf("missing REDIS_ADDR")
	}

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &sessionStore{
		log: log.With("service", "RedisSessionStore"),
		rdb: rdb,
		ttl: 2 * time.Hour,
	}, nil
}

func sessionKey(sessionID uuid.UUID) string {
	return "session:" + sessionID.String()
}

func (s *sessionStore) Save(ctx context.Context, sc engine.SessionContext) error {
	if sc.SessionID == uuid.Nil {
		return fmt.Errorf("session id required")
	}
	payload, err := json.Marshal(sc)
	if err != nil {
		return fmt.Errorf("marshal session context: %w", err)
	}
	return s.rdb.Set(ctx, sessionKey(sc.SessionID), payload, s.ttl).Err()
}

func (s *sessionStore) Get(ctx context.Context, sessionID uuid.UUID) (*engine.SessionContext, error) {
	if sessionID == uuid.Nil {
		return nil, nil
	}
	raw, err := s.rdb.Get(ctx, sessionKey(sessionID)).Bytes()
	if err == goredis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var sc engine.SessionContext
	if err := json.Unmarshal(raw, &sc); err != nil {
		return nil, fmt.Errorf("unmarshal session context: %w", err)
	}
	return &sc, nil
}

func (s *sessionStore) Delete(ctx context.Context, sessionID uuid.UUID) error {
	if sessionID == uuid.Nil {
		return nil
	}
	return s.rdb.Del(ctx, sessionKey(sessionID)).Err()
}

func (s *sessionStore) Close() error {
	return s.rdb.Close()
}
