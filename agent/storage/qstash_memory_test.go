package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	contractx "github.com/tanpawarit/agent-coordination-engine/agent/contract"
	statex "github.com/tanpawarit/agent-coordination-engine/agent/state"
	qstashx "github.com/tanpawarit/agent-coordination-engine/pkg/qstash"
)

func newQStashClient(t *testing.T, url string) *qstashx.Client {
	t.Helper()
	client, err := qstashx.NewClient(qstashx.Config{URL: url, Token: "tok"})
	require.NoError(t, err)
	return client
}

func TestQStashMemoryStoreAppend(t *testing.T) {
	t.Parallel()

	var (
		path  string
		dedup string
		msg   memoryMessage
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		dedup = r.Header.Get("Upstash-Deduplication-Id")
		_ = json.NewDecoder(r.Body).Decode(&msg)
		fmt.Fprint(w, `{"messageId":"m1"}`)
	}))
	t.Cleanup(server.Close)

	client := newQStashClient(t, server.URL)
	store, err := NewQStashMemoryStore(client, "https://memory.internal/append")
	require.NoError(t, err)

	entry := contractx.MemoryEntry{SessionID: "sess-1", Task: "t", Agents: []string{"A"}, Pattern: statex.PatternSequential, PerformanceScore: 0.7, Timestamp: time.Now().UTC()}
	require.NoError(t, store.Append(context.Background(), "user-1", "coordination_42", entry, 0.8))

	require.Equal(t, "/v2/publish/https://memory.internal/append", path)
	require.Equal(t, "user-1:sess-1:coordination_42", dedup)
	require.Equal(t, "sess-1", msg.Value.SessionID)
	require.Equal(t, "user-1", msg.UserID)
	require.Equal(t, "coordination_42", msg.Key)
	require.InDelta(t, 0.8, msg.Importance, 1e-9)
	require.Equal(t, []string{"A"}, msg.Value.Agents)
}

func TestNewQStashMemoryStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewQStashMemoryStore(nil, "dest")
	require.Error(t, err)

	client := newQStashClient(t, "https://qstash.upstash.io")
	_, err = NewQStashMemoryStore(client, "")
	require.Error(t, err)
}

func TestQStashMemoryStoreSameMillisecondSessionsDoNotCollide(t *testing.T) {
	t.Parallel()

	var dedups []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		dedups = append(dedups, r.Header.Get("Upstash-Deduplication-Id"))
		fmt.Fprint(w, `{"messageId":"m"}`)
	}))
	t.Cleanup(server.Close)

	store, err := NewQStashMemoryStore(newQStashClient(t, server.URL), "dest")
	require.NoError(t, err)

	for _, id := range []string{"sess-a", "sess-b"} {
		entry := contractx.MemoryEntry{SessionID: id, Task: "t", Pattern: statex.PatternParallel}
		require.NoError(t, store.Append(context.Background(), "user-1", "coordination_42", entry, 0.8))
	}

	require.Len(t, dedups, 2)
	require.NotEqual(t, dedups[0], dedups[1])
	require.Equal(t, "user-1:coordination_42", dedupID("user-1", "coordination_42", ""))
}
