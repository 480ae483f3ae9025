package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTemplateServer(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/templates/service.cs", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte("key={{API_KEY}}"))
	})
	r.Get("/templates/moved.cs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/templates/service.cs", http.StatusFound)
	})
	r.Get("/templates/broken.cs", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	r.Get("/templates/large.bin", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 64)))
	})
	r.Get("/templates/truncated.cs", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		_, _ = w.Write([]byte("partial"))
		if err := http.NewResponseController(w).Flush(); err != nil {
			return
		}
		conn, _, err := http.NewResponseController(w).Hijack()
		if err != nil {
			return
		}
		_ = conn.Close()
	})
	r.Get("/templates/slow.cs", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.CloseClientConnections()
		srv.Close()
	})
	return srv
}

// newFetcher builds a fetcher whose keep-alive connections are closed when
// the test ends
func newFetcher(t *testing.T, opts ...Option) *HTTPFetcher {
	t.Helper()
	f := NewHTTPFetcher(opts...)
	t.Cleanup(f.CloseIdleConnections)
	return f
}

func TestHTTPFetcher_Fetch_Success(t *testing.T) {
	srv := newTemplateServer(t)

	f := newFetcher(t, WithUserAgent("test-agent"))
	data, err := f.Fetch(context.Background(), srv.URL+"/templates/service.cs")
	require.NoError(t, err)
	assert.Equal(t, "key={{API_KEY}}", string(data))
}

func TestHTTPFetcher_Fetch_FollowsRedirects(t *testing.T) {
	srv := newTemplateServer(t)

	f := newFetcher(t, WithUserAgent("test-agent"))
	data, err := f.Fetch(context.Background(), srv.URL+"/templates/moved.cs")
	require.NoError(t, err)
	assert.Equal(t, "key={{API_KEY}}", string(data))
}

func TestHTTPFetcher_Fetch_HTTPStatus(t *testing.T) {
	srv := newTemplateServer(t)

	f := newFetcher(t)
	for _, p := range []string{"/templates/broken.cs", "/templates/missing.cs"} {
		url := srv.URL + p
		_, err := f.Fetch(context.Background(), url)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrNetwork))
		assert.True(t, errors.Is(err, ErrHTTPStatus))

		var netErr *NetworkError
		require.True(t, errors.As(err, &netErr))
		assert.Equal(t, url, netErr.URL)
		assert.Contains(t, err.Error(), url)
	}
}

func TestHTTPFetcher_Fetch_BodyTooLarge(t *testing.T) {
	srv := newTemplateServer(t)

	f := newFetcher(t, WithMaxBodySize(16))
	_, err := f.Fetch(context.Background(), srv.URL+"/templates/large.bin")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBodyTooLarge)

	f = newFetcher(t, WithMaxBodySize(64))
	data, err := f.Fetch(context.Background(), srv.URL+"/templates/large.bin")
	require.NoError(t, err)
	assert.Len(t, data, 64)
}

func TestHTTPFetcher_Fetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/gone.cs"
	srv.Close()

	f := newFetcher(t)
	_, err := f.Fetch(context.Background(), url)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.False(t, errors.Is(err, ErrHTTPStatus))
}

func TestHTTPFetcher_Fetch_MidStreamDisconnect(t *testing.T) {
	srv := newTemplateServer(t)

	f := newFetcher(t)
	_, err := f.Fetch(context.Background(), srv.URL+"/templates/truncated.cs")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.False(t, errors.Is(err, ErrHTTPStatus))

	var netErr *NetworkError
	require.ErrorAs(t, err, &netErr)
	assert.Equal(t, srv.URL+"/templates/truncated.cs", netErr.URL)
}

func TestHTTPFetcher_Fetch_InvalidURL(t *testing.T) {
	f := newFetcher(t)
	_, err := f.Fetch(context.Background(), "://bad")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestHTTPFetcher_Fetch_ContextCanceled(t *testing.T) {
	srv := newTemplateServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	f := newFetcher(t)
	_, err := f.Fetch(ctx, srv.URL+"/templates/slow.cs")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHTTPFetcher_Fetch_Timeout(t *testing.T) {
	srv := newTemplateServer(t)

	f := newFetcher(t, WithTimeout(50 * time.Millisecond))
	_, err := f.Fetch(context.Background(), srv.URL+"/templates/slow.cs")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
}

func TestHTTPFetcher_Options(t *testing.T) {
	client := &http.Client{}
	f := NewHTTPFetcher(WithHTTPClient(client), WithHTTPClient(nil), WithUserAgent(""), WithMaxBodySize(0))
	assert.Same(t, client, f.client)
	assert.Equal(t, DefaultUserAgent, f.userAgent)
	assert.Equal(t, DefaultMaxBodySize, f.maxBodySize)
}
