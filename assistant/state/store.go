package state

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
)

var ErrNilConversationState = errors.New("conversation state is nil")

const (
	defaultHistoryFile = "conversation_history.json"
	defaultFactsFile   = "facts.json"
	defaultMaxHistory  = 10
)

// Store persists the two durable documents of a session: the conversation
// history and the fact map. Contexts are session-scoped and never persisted.
type Store interface {
	Load(ctx context.Context) (*ConversationState, error)
	Save(ctx context.Context, st *ConversationState) error
}

type FileConfig struct {
	Dir        string `split_words:"true" default:"."`
	MaxHistory int    `envconfig:"MAX_HISTORY" split_words:"true" default:"10"`
}

// FileStore keeps both documents as JSON files. Writes are full-document
// overwrites and deliberately not atomic; the process is the only writer.
type FileStore struct {
	historyPath string
	factsPath   string
	maxHistory  int
}

type FileOption func(*FileStore)

func WithMaxHistory(n int) FileOption {
	return func(s *FileStore) {
		if n > 0 {
			s.maxHistory = n
		}
	}
}

func NewFileStore(cfg FileConfig, opts ...FileOption) (*FileStore, error) {
	dir := strings.TrimSpace(cfg.Dir)
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state directory: %w", err)
	}

	s := &FileStore{
		historyPath: filepath.Join(dir, defaultHistoryFile),
		factsPath:   filepath.Join(dir, defaultFactsFile),
		maxHistory:  defaultMaxHistory,
	}
	if cfg.MaxHistory > 0 {
		s.maxHistory = cfg.MaxHistory
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

// Load reads both documents. A missing or corrupt document resets to empty
// with a warning; load never fails the session.
func (s *FileStore) Load(ctx context.Context) (*ConversationState, error) {
	st := NewConversationState()

	if raw, err := os.ReadFile(s.historyPath); err == nil {
		if err := json.Unmarshal(raw, &st.History); err != nil {
			log.Warn().Str("path", s.historyPath).Err(err).Msg("history document corrupted, starting fresh")
			st.History = nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read history document: %w", err)
	}

	if raw, err := os.ReadFile(s.factsPath); err == nil {
		if err := json.Unmarshal(raw, &st.Facts); err != nil {
			log.Warn().Str("path", s.factsPath).Err(err).Msg("facts document corrupted, starting fresh")
			st.Facts = make(map[string]string, 4)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read facts document: %w", err)
	}

	if st.Facts == nil {
		st.Facts = make(map[string]string, 4)
	}
	st.SeedTurnCounter()
	return st, nil
}

// Save overwrites both documents, trimming history to the newest maxHistory
// messages first.
func (s *FileStore) Save(ctx context.Context, st *ConversationState) error {
	if st == nil {
		return ErrNilConversationState
	}

	if len(st.History) > s.maxHistory {
		st.History = append([]Message(nil), st.History[len(st.History)-s.maxHistory:]...)
	}

	history, err := json.MarshalIndent(st.History, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}
	if err := os.WriteFile(s.historyPath, history, 0o644); err != nil {
		return fmt.Errorf("write history document: %w", err)
	}

	facts, err := json.MarshalIndent(st.Facts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal facts: %w", err)
	}
	if err := os.WriteFile(s.factsPath, facts, 0o644); err != nil {
		return fmt.Errorf("write facts document: %w", err)
	}
	return nil
}
