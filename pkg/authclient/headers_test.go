package authclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Checker-Finance/session-client/pkg/session"
)

func newHeaderClient(t *testing.T, token string) *Client {
	t.Helper()
	store := session.NewMemoryStore("")
	if token != "" {
		require.NoError(t, store.Set(context.Background(), token))
	}
	return New(zap.NewNop(), "https://api.test", store)
}

func TestBuildAuthHeaders_EmptyStore(t *testing.T) {
	c := newHeaderClient(t, "")

	h := c.BuildAuthHeaders(context.Background(), map[string]string{"Content-Type": "application/json"})
	assert.Equal(t, map[string]string{"Content-Type": "application/json"}, h)
}

func TestBuildAuthHeaders_NilBase(t *testing.T) {
	assert.Empty(t, newHeaderClient(t, "").BuildAuthHeaders(context.Background(), nil))
	assert.Equal(t, map[string]string{"Authorization": "Bearer abc"},
		newHeaderClient(t, "abc").BuildAuthHeaders(context.Background(), nil))
}

func TestBuildAuthHeaders_Policy(t *testing.T) {
	tests := []struct {
		name  string
		token string
		base  map[string]string
		want  map[string]string
	}{
		{
			name:  "credential injected alongside caller headers",
			token: "abc123",
			base:  map[string]string{"Content-Type": "application/json", "X-Trace": "t1"},
			want:  map[string]string{"Content-Type": "application/json", "X-Trace": "t1", "Authorization": "Bearer abc123"},
		},
		{
			name:  "credential overrides caller Authorization",
			token: "abc123",
			base:  map[string]string{"Authorization": "Basic Zm9vOmJhcg=="},
			want:  map[string]string{"Authorization": "Bearer abc123"},
		},
		{
			name:  "override is case-insensitive",
			token: "abc123",
			base:  map[string]string{"authorization": "Bearer stale", "Accept": "*/*"},
			want:  map[string]string{"Accept": "*/*", "Authorization": "Bearer abc123"},
		},
		{
			name: "no credential drops caller Authorization",
			base: map[string]string{"Authorization": "Bearer stale", "Accept": "*/*"},
			want: map[string]string{"Accept": "*/*"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newHeaderClient(t, tt.token)
			assert.Equal(t, tt.want, c.BuildAuthHeaders(context.Background(), tt.base))
		})
	}
}

func TestBuildAuthHeaders_DoesNotMutateBase(t *testing.T) {
	c := newHeaderClient(t, "abc")
	base := map[string]string{"Authorization": "Basic x", "Accept": "*/*"}

	_ = c.BuildAuthHeaders(context.Background(), base)
	assert.Equal(t, map[string]string{"Authorization": "Basic x", "Accept": "*/*"}, base)
}

func TestBuildAuthHeaders_ReadsStoreEveryCall(t *testing.T) {
	ctx := context.Background()
	c := newHeaderClient(t, "first")

	assert.Equal(t, "Bearer first", c.BuildAuthHeaders(ctx, nil)["Authorization"])

	require.NoError(t, c.Store().Set(ctx, "second"))
	assert.Equal(t, "Bearer second", c.BuildAuthHeaders(ctx, nil)["Authorization"])

	c.Store().Clear(ctx) // cleared behind the client's back
	assert.NotContains(t, c.BuildAuthHeaders(ctx, nil), "Authorization")
}

func TestHeader_HTTPHeaderCollection(t *testing.T) {
	ctx := context.Background()
	base := http.Header{}
	base.Set("Content-Type", "application/json")
	base.Set("Authorization", "Basic x")

	h := newHeaderClient(t, "abc").Header(ctx, base)
	assert.Equal(t, "Bearer abc", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Content-Type"))
	assert.Equal(t, "Basic x", base.Get("Authorization"), "base is cloned")

	h = newHeaderClient(t, "").Header(ctx, nil)
	assert.Empty(t, h.Get("Authorization"))
	assert.NotNil(t, h)
}

func TestTransport_InjectsCredentialPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	ctx := context.Background()
	c := newHeaderClient(t, "")
	hc := &http.Client{Transport: NewTransport(c, srv.Client().Transport)}

	do := func() {
		req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL, nil)
		req.Header.Set("Authorization", "Basic caller")
		resp, err := hc.Do(req)
		require.NoError(t, err)
		_ = resp.Body.Close()
		assert.Equal(t, "Basic caller", req.Header.Get("Authorization"), "original request untouched")
	}

	do()
	require.NoError(t, c.Store().Set(ctx, "abc123"))
	do()
	c.Logout(ctx)
	do()

	assert.Equal(t, []string{"", "Bearer abc123", ""}, seen)
}
