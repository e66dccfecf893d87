package state

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRedisStoreSaveWritesBothDocuments(t *testing.T) {
	t.Parallel()

	var gotCommands [][]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if got := r.Header.Get("Authorization"); got != "Bearer token" {
			t.Errorf("Authorization = %q, want Bearer token", got)
		}
		var command []any
		if err := json.NewDecoder(r.Body).Decode(&command); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		gotCommands = append(gotCommands, command)
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisStore(
		RedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
		WithTTL(0),
	)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	st := NewConversationState()
	st.AppendTurn("hello", "hi there")
	st.SetFact(FactLocation, "Frankfurt")

	if err := store.Save(context.Background(), st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommands) != 2 {
		t.Fatalf("expected 2 commands, got %d", len(gotCommands))
	}
	if gotCommands[0][0] != "SET" || gotCommands[0][1] != "assistant:session:history" {
		t.Fatalf("unexpected history command: %#v", gotCommands[0])
	}
	if gotCommands[1][0] != "SET" || gotCommands[1][1] != "assistant:session:facts" {
		t.Fatalf("unexpected facts command: %#v", gotCommands[1])
	}
}

func TestRedisStoreSaveAppliesTTL(t *testing.T) {
	t.Parallel()

	var gotCommand []any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		if err := json.NewDecoder(r.Body).Decode(&gotCommand); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		fmt.Fprint(w, `{"result":"OK"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisStore(
		RedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	if err := store.Save(context.Background(), NewConversationState()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(gotCommand) != 5 || gotCommand[3] != "EX" {
		t.Fatalf("expected SET with EX, got %#v", gotCommand)
	}
}

func TestRedisStoreLoadRoundTrip(t *testing.T) {
	t.Parallel()

	history := []Message{
		{Role: RoleUser, Content: "What's the weather?"},
		{Role: RoleAssistant, Content: "Cloudy."},
	}
	historyDoc, err := json.Marshal(history)
	if err != nil {
		t.Fatalf("marshal history: %v", err)
	}
	factsDoc := []byte(`{"location":"Frankfurt"}`)

	documents := map[string][]byte{
		"assistant:session:history": historyDoc,
		"assistant:session:facts":   factsDoc,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var command []any
		if err := json.NewDecoder(r.Body).Decode(&command); err != nil {
			t.Fatalf("decode command: %v", err)
		}
		if len(command) != 2 || command[0] != "GET" {
			t.Fatalf("unexpected command: %#v", command)
		}
		doc, ok := documents[command[1].(string)]
		if !ok {
			fmt.Fprint(w, `{"result":null}`)
			return
		}
		encoded, err := json.Marshal(string(doc))
		if err != nil {
			t.Fatalf("encode document: %v", err)
		}
		fmt.Fprintf(w, `{"result":%s}`, encoded)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisStore(
		RedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	st, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(st.History) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(st.History))
	}
	if v, ok := st.Fact(FactLocation); !ok || v != "Frankfurt" {
		t.Fatalf("Fact(location) = (%q, %v), want (Frankfurt, true)", v, ok)
	}
	if st.TurnIndex() != 1 {
		t.Fatalf("TurnIndex() = %d, want 1", st.TurnIndex())
	}
}

func TestRedisStoreLoadMissingKeysStartFresh(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result":null}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisStore(
		RedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	st, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(st.History) != 0 || len(st.Facts) != 0 {
		t.Fatalf("expected empty state, got %+v", st)
	}
}

func TestRedisStoreErrorResponse(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"error":"WRONGPASS invalid token"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewRedisStore(
		RedisConfig{URL: server.URL, Token: "token"},
		WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewRedisStore() error = %v", err)
	}

	if _, err := store.Load(context.Background()); err == nil {
		t.Fatal("expected error from redis error response")
	}
}
