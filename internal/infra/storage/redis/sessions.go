package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	domainauth "staybook/internal/domain/auth"
	domainuser "staybook/internal/domain/user"
)

const defaultPrefix = "staybook"

type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient connects and pings so a misconfigured address fails at startup.
func NewClient(ctx context.Context, opts Options) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", opts.Addr, err)
	}
	return client, nil
}

// SessionStore keeps each session under its own key with a TTL matching the
// session expiry, plus a per-user set of tokens for logout-everywhere.
type SessionStore struct {
	client goredis.Cmdable
	prefix string
	now    func() time.Time
}

func NewSessionStore(client goredis.Cmdable, prefix string) *SessionStore {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &SessionStore{client: client, prefix: prefix, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	ttl := session.Remaining(s.now())
	if ttl <= 0 {
		return domainauth.ErrTTLInvalid
	}
	payload, err := encodeSession(session)
	if err != nil {
		return err
	}
	userKey := s.userKey(session.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.Token), payload, ttl)
		pipe.SAdd(ctx, userKey, string(session.Token))
		pipe.Expire(ctx, userKey, ttl)
		return nil
	})
	return err
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	payload, err := s.client.Get(ctx, s.sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, err
	}
	session, err := decodeSession(payload)
	if err != nil {
		return nil, err
	}
	if session.Expired(s.now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	session, err := s.Get(ctx, token)
	if errors.Is(err, domainauth.ErrSessionNotFound) {
		return s.client.Del(ctx, s.sessionKey(token)).Err()
	}
	if err != nil {
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(token))
		pipe.SRem(ctx, s.userKey(session.UserID), string(token))
		return nil
	})
	return err
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	userKey := s.userKey(userID)
	tokens, err := s.client.SMembers(ctx, userKey).Result()
	if err != nil {
		return err
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.sessionKey(domainauth.Token(token)))
	}
	keys = append(keys, userKey)
	return s.client.Del(ctx, keys...).Err()
}

func (s *SessionStore) sessionKey(token domainauth.Token) string {
	return s.prefix + ":session:" + string(token)
}

func (s *SessionStore) userKey(userID domainuser.ID) string {
	return s.prefix + ":user_sessions:" + string(userID)
}

type sessionPayload struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

func encodeSession(session *domainauth.Session) ([]byte, error) {
	roles := make([]string, 0, len(session.Roles))
	for _, role := range session.Roles {
		roles = append(roles, string(role))
	}
	return json.Marshal(sessionPayload{
		Token:     string(session.Token),
		UserID:    string(session.UserID),
		Roles:     roles,
		CreatedAt: session.CreatedAt.UTC(),
		ExpiresAt: session.ExpiresAt.UTC(),
	})
}

func decodeSession(data []byte) (*domainauth.Session, error) {
	var p sessionPayload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("redis: decode session: %w", err)
	}
	roles := make([]domainuser.Role, 0, len(p.Roles))
	for _, role := range p.Roles {
		roles = append(roles, domainuser.Role(role))
	}
	return &domainauth.Session{
		Token:     domainauth.Token(p.Token),
		UserID:    domainuser.ID(p.UserID),
		Roles:     roles,
		CreatedAt: p.CreatedAt.UTC(),
		ExpiresAt: p.ExpiresAt.UTC(),
	}, nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
