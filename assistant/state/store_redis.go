package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	defaultRedisKeyPrefix = "assistant:session:"
	defaultRedisTTL       = 24 * time.Hour
	maxRedisResponseBytes = 2 << 20
)

type RedisConfig struct {
	URL     string        `envconfig:"URL" split_words:"true" required:"true"`
	Token   string        `envconfig:"TOKEN" split_words:"true" required:"true"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// RedisStore persists the history and facts documents as two keys in an
// Upstash-style Redis REST endpoint. Alternative to FileStore for hosted
// deployments.
type RedisStore struct {
	baseURL    string
	token      string
	httpClient *http.Client
	keyPrefix  string
	ttl        time.Duration
}

type RedisOption func(*RedisStore)

func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if trimmed := strings.TrimSpace(prefix); trimmed != "" {
			s.keyPrefix = trimmed
		}
	}
}

func WithTTL(ttl time.Duration) RedisOption {
	return func(s *RedisStore) {
		s.ttl = ttl
	}
}

func WithHTTPClient(client *http.Client) RedisOption {
	return func(s *RedisStore) {
		if client != nil {
			s.httpClient = client
		}
	}
}

type redisRESTResponse struct {
	Result json.RawMessage `json:"result"`
	Error  string          `json:"error"`
}

func NewRedisStore(cfg RedisConfig, opts ...RedisOption) (*RedisStore, error) {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if baseURL == "" {
		return nil, errors.New("redis rest url is required")
	}
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("invalid redis rest url: %w", err)
	}
	token := strings.TrimSpace(cfg.Token)
	if token == "" {
		return nil, errors.New("redis rest token is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	s := &RedisStore{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: timeout},
		keyPrefix:  defaultRedisKeyPrefix,
		ttl:        defaultRedisTTL,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.ttl < 0 {
		return nil, errors.New("ttl must be >= 0")
	}
	return s, nil
}

func (s *RedisStore) historyKey() string { return s.keyPrefix + "history" }
func (s *RedisStore) factsKey() string   { return s.keyPrefix + "facts" }

func (s *RedisStore) Load(ctx context.Context) (*ConversationState, error) {
	st := NewConversationState()

	if raw, ok, err := s.getDocument(ctx, s.historyKey()); err != nil {
		return nil, err
	} else if ok {
		if err := json.Unmarshal(raw, &st.History); err != nil {
			log.Warn().Str("key", s.historyKey()).Err(err).Msg("history document corrupted, starting fresh")
			st.History = nil
		}
	}

	if raw, ok, err := s.getDocument(ctx, s.factsKey()); err != nil {
		return nil, err
	} else if ok {
		if err := json.Unmarshal(raw, &st.Facts); err != nil {
			log.Warn().Str("key", s.factsKey()).Err(err).Msg("facts document corrupted, starting fresh")
			st.Facts = make(map[string]string, 4)
		}
	}

	if st.Facts == nil {
		st.Facts = make(map[string]string, 4)
	}
	st.SeedTurnCounter()
	return st, nil
}

func (s *RedisStore) Save(ctx context.Context, st *ConversationState) error {
	if st == nil {
		return ErrNilConversationState
	}

	history, err := json.Marshal(st.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := s.setDocument(ctx, s.historyKey(), history); err != nil {
		return err
	}

	facts, err := json.Marshal(st.Facts)
	if err != nil {
		return fmt.Errorf("marshal facts: %w", err)
	}
	return s.setDocument(ctx, s.factsKey(), facts)
}

func (s *RedisStore) getDocument(ctx context.Context, key string) ([]byte, bool, error) {
	resp, err := s.exec(ctx, []any{"GET", key})
	if err != nil {
		return nil, false, err
	}

	result := bytes.TrimSpace(resp.Result)
	if len(result) == 0 || bytes.Equal(result, []byte("null")) {
		return nil, false, nil
	}

	var encoded string
	if err := json.Unmarshal(result, &encoded); err != nil {
		return nil, false, fmt.Errorf("decode document payload: %w", err)
	}
	return []byte(encoded), true, nil
}

func (s *RedisStore) setDocument(ctx context.Context, key string, payload []byte) error {
	cmd := []any{"SET", key, string(payload)}
	if s.ttl > 0 {
		cmd = append(cmd, "EX", ttlSeconds(s.ttl))
	}
	_, err := s.exec(ctx, cmd)
	return err
}

func (s *RedisStore) exec(ctx context.Context, command []any) (*redisRESTResponse, error) {
	body, err := json.Marshal(command)
	if err != nil {
		return nil, fmt.Errorf("marshal redis command: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build redis request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute redis request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRedisResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read redis response: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("redis http status=%d body=%s", resp.StatusCode, string(raw))
	}

	var parsed redisRESTResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("decode redis response: %w", err)
	}
	if parsed.Error != "" {
		return nil, errors.New(parsed.Error)
	}
	return &parsed, nil
}

func ttlSeconds(ttl time.Duration) int64 {
	seconds := ttl / time.Second
	if ttl%time.Second != 0 {
		seconds++
	}
	if seconds <= 0 {
		return 1
	}
	return int64(seconds)
}
