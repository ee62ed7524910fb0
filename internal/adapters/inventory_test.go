package adapters_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/irgordon/kari-preview/internal/adapters"
	"github.com/irgordon/kari-preview/internal/core/domain"
)

// ==============================================================================
// FileInventory
// ==============================================================================

func TestFileInventory(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "rules.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules:\n  - priority: 23590\n    host: pr-1.preview.example.com\n  - priority: 24090\n    host: pr-1.preview.example.com\n    path: /api/*\n"), 0o600))

		rules, err := adapters.NewFileInventory(path).ListRules(context.Background())
		require.NoError(t, err)
		require.Len(t, rules, 2)
		assert.Equal(t, "/api/*", rules[1].Path)
	})

	t.Run("json", func(t *testing.T) {
		path := filepath.Join(dir, "rules.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"rules":[{"priority":26433,"host":"pr-42.preview.example.com"}]}`), 0o600))

		rules, err := adapters.NewFileInventory(path).ListRules(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []domain.ListenerRule{{Priority: 26433, Host: "pr-42.preview.example.com"}}, rules)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := adapters.NewFileInventory(filepath.Join(dir, "nope.yaml")).ListRules(context.Background())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("rules: [priority: {"), 0o600))
		_, err := adapters.NewFileInventory(path).ListRules(context.Background())
		assert.Error(t, err)
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := adapters.NewFileInventory(filepath.Join(dir, "rules.json")).ListRules(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

// ==============================================================================
// HTTPInventory
// ==============================================================================

func TestHTTPInventory_ListRules(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"rules":[{"priority":23595,"host":"pr-460.preview.example.com"}]}`))
	}))
	defer srv.Close()

	inv := adapters.NewHTTPInventory(srv.URL, 5*time.Second, 0, nil)
	rules, err := inv.ListRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []domain.ListenerRule{{Priority: 23595, Host: "pr-460.preview.example.com"}}, rules)
}

func TestHTTPInventory_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"rules":[]}`))
	}))
	defer srv.Close()

	inv := adapters.NewHTTPInventory(srv.URL, 5*time.Second, 2, nil)
	rules, err := inv.ListRules(context.Background())
	require.NoError(t, err)
	assert.Empty(t, rules)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPInventory_Failures(t *testing.T) {
	t.Run("server error without retries", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		_, err := adapters.NewHTTPInventory(srv.URL, time.Second, 0, nil).ListRules(context.Background())
		assert.Error(t, err)
	})

	t.Run("not found", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		_, err := adapters.NewHTTPInventory(srv.URL, time.Second, 0, nil).ListRules(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "404")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"rules":`))
		}))
		defer srv.Close()

		_, err := adapters.NewHTTPInventory(srv.URL, time.Second, 0, nil).ListRules(context.Background())
		assert.Error(t, err)
	})
}
