package vcr

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/vcr/pkg/cassette"
	"github.com/getmockd/vcr/pkg/config"
	"github.com/getmockd/vcr/pkg/logging"
	"github.com/getmockd/vcr/pkg/persister"
	"github.com/getmockd/vcr/pkg/transport"
)

func newServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()
	var hits atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"path":"`+r.URL.Path+`","tenant":"`+r.Header.Get("X-Tenant")+`"}`)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newVCR(t *testing.T, mutate func(*config.Config), opts ...Option) *VCR {
	t.Helper()
	cfg := config.Default()
	cfg.CassetteDir = t.TempDir()
	if mutate != nil {
		mutate(cfg)
	}
	opts = append([]Option{WithLogger(logging.Nop())}, opts...)
	v, err := New(cfg, opts...)
	require.NoError(t, err)
	return v
}

func get(t *testing.T, client *http.Client, url string, header http.Header) string {
	t.Helper()
	req, err := http.NewRequest("GET", url, nil)
	require.NoError(t, err)
	for k, vs := range header {
		req.Header[k] = vs
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestUse_RecordsThenReplays(t *testing.T) {
	srv, hits := newServer(t)
	v := newVCR(t, nil)
	ctx := context.Background()

	for range 2 {
		err := v.Use(ctx, "users", func(c *cassette.Cassette, client *http.Client) error {
			assert.Equal(t, `{"path":"/users","tenant":""}`, get(t, client, srv.URL+"/users", nil))
			return nil
		})
		require.NoError(t, err)
	}

	assert.EqualValues(t, 1, hits.Load())
	assert.FileExists(t, filepath.Join(v.Config().CassetteDir, "users.yaml"))
}

func TestUse_SavesWhenFnFails(t *testing.T) {
	srv, _ := newServer(t)
	v := newVCR(t, nil)
	boom := errors.New("assertion failed downstream")

	err := v.Use(context.Background(), "failing", func(c *cassette.Cassette, client *http.Client) error {
		get(t, client, srv.URL+"/x", nil)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := v.Persister().Load(context.Background(), "failing")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUse_SavesWhenFnPanics(t *testing.T) {
	srv, _ := newServer(t)
	v := newVCR(t, nil)

	assert.Panics(t, func() {
		_ = v.Use(context.Background(), "panicking", func(c *cassette.Cassette, client *http.Client) error {
			get(t, client, srv.URL+"/x", nil)
			panic("boom")
		})
	})

	got, err := v.Persister().Load(context.Background(), "panicking")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestUse_JoinsSaveError(t *testing.T) {
	v := newVCR(t, func(cfg *config.Config) { cfg.RecordMode = "all" }, WithPersister(failingPersister{}))

	err := v.Use(context.Background(), "x", func(c *cassette.Cassette, _ *http.Client) error {
		return c.Record(mustRequest(t), &cassette.Response{StatusCode: 204})
	})
	assert.ErrorIs(t, err, errDiskFull)
}

func TestUse_ActivatesInterceptors(t *testing.T) {
	srv, hits := newServer(t)
	shared := &http.Client{}
	v := newVCR(t, nil, WithInterceptor(transport.NewClientInterceptor(shared)))

	err := v.Use(context.Background(), "shared", func(c *cassette.Cassette, _ *http.Client) error {
		_, ok := shared.Transport.(*transport.Transport)
		assert.True(t, ok, "shared client is routed through the cassette")
		get(t, shared, srv.URL+"/shared", nil)
		assert.Equal(t, 1, c.Len())
		return nil
	})
	require.NoError(t, err)
	assert.Nil(t, shared.Transport)
	assert.EqualValues(t, 1, hits.Load())
}

func TestNew_CustomMatchers(t *testing.T) {
	srv, hits := newServer(t)
	v := newVCR(t, func(cfg *config.Config) {
		cfg.RecordMode = "new_episodes"
		cfg.MatchOn = []string{"method", "path", "same_tenant"}
		cfg.CustomMatchers = map[string]string{
			"same_tenant": `a.Headers["X-Tenant"] == b.Headers["X-Tenant"]`,
		}
	})
	_, ok := v.Registry().Lookup("same_tenant")
	require.True(t, ok)

	ctx := context.Background()
	acme := http.Header{"X-Tenant": {"acme"}}
	globex := http.Header{"X-Tenant": {"globex"}}

	require.NoError(t, v.Use(ctx, "tenants", func(_ *cassette.Cassette, client *http.Client) error {
		get(t, client, srv.URL+"/t", acme)
		return nil
	}))
	require.NoError(t, v.Use(ctx, "tenants", func(_ *cassette.Cassette, client *http.Client) error {
		assert.Contains(t, get(t, client, srv.URL+"/t", acme), `"tenant":"acme"`)
		assert.Contains(t, get(t, client, srv.URL+"/t", globex), `"tenant":"globex"`)
		return nil
	}))
	assert.EqualValues(t, 2, hits.Load(), "acme replayed, globex recorded")
}

func TestCassetteOptions_FiltersFromConfig(t *testing.T) {
	srv, _ := newServer(t)
	v := newVCR(t, func(cfg *config.Config) {
		cfg.FilterHeaders = []string{"Authorization"}
		cfg.FilterQueryParameters = []string{"api_key"}
	})

	require.NoError(t, v.Use(context.Background(), "filtered", func(_ *cassette.Cassette, client *http.Client) error {
		get(t, client, srv.URL+"/q?api_key=secret&page=1", http.Header{"Authorization": {"Bearer token"}})
		return nil
	}))

	doc, err := persister.ReadFile(filepath.Join(v.Config().CassetteDir, "filtered.yaml"))
	require.NoError(t, err)
	require.Len(t, doc.Interactions, 1)
	rec := doc.Interactions[0].Request
	assert.NotContains(t, rec.URI, "api_key")
	assert.Contains(t, rec.URI, "page=1")
	assert.NotContains(t, rec.Headers, "Authorization")
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.RecordMode = "sometimes"
	_, err := New(cfg)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestUseT(t *testing.T) {
	srv, hits := newServer(t)
	v := newVCR(t, nil)

	t.Run("record", func(t *testing.T) {
		client := v.UseT(t, "")
		assert.Contains(t, get(t, client, srv.URL+"/ut", nil), `"path":"/ut"`)
	})
	t.Run("replay", func(t *testing.T) {
		client := v.UseT(t, "TestUseT/record")
		assert.Contains(t, get(t, client, srv.URL+"/ut", nil), `"path":"/ut"`)
	})

	assert.EqualValues(t, 1, hits.Load())
	assert.FileExists(t, filepath.Join(v.Config().CassetteDir, "TestUseT", "record.yaml"))
}

func TestCassetteNameForTest(t *testing.T) {
	assert.Equal(t, "TestX/case_one", CassetteNameForTest("TestX/case one"))
	assert.Equal(t, "TestX/a_b_", CassetteNameForTest(`TestX/a:b?`))
}
