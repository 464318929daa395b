package vision

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeVisionAPI answers images:annotate requests with canned per-feature
// payloads and records the requests it saw.
type fakeVisionAPI struct {
	mu       sync.Mutex
	requests []imageRequest
	// failByReference makes requests using image.source fail with a
	// per-response error, as Cloud Vision does for unreachable URLs.
	failByReference bool
	status          int
}

func (f *fakeVisionAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != annotatePath {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req annotateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 1)

		f.mu.Lock()
		f.requests = append(f.requests, req.Requests[0])
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if f.status != 0 {
			w.WriteHeader(f.status)
			w.Write([]byte(`{"error":{"code":403,"message":"Requests from this API key are blocked.","status":"PERMISSION_DENIED"}}`))
			return
		}
		if f.failByReference && req.Requests[0].Image.Source != nil {
			w.Write([]byte(`{"responses":[{"error":{"code":7,"message":"We can not access the URL currently."}}]}`))
			return
		}

		switch req.Requests[0].Features[0].Type {
		case featureLabels:
			w.Write([]byte(`{"responses":[{"labelAnnotations":[
				{"description":"Sneakers","score":0.92},
				{"description":"Logo","score":0.95},
				{"description":"  ","score":0.5}]}]}`))
		case featureObjects:
			w.Write([]byte(`{"responses":[{"localizedObjectAnnotations":[{"name":"Shoe","score":0.88}]}]}`))
		case featureText:
			w.Write([]byte(`{"responses":[{}]}`))
		case featureColors:
			w.Write([]byte(`{"responses":[{"imagePropertiesAnnotation":{"dominantColors":{"colors":[
				{"color":{"red":255,"green":255,"blue":255},"score":0.1},
				{"color":{"red":26,"green":26,"blue":26},"score":0.7}]}}}]}`))
		default:
			t.Errorf("unexpected feature %s", req.Requests[0].Features[0].Type)
		}
	}
}

func (f *fakeVisionAPI) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

func newTestClient(t *testing.T, baseURL string) *Client {
	c, err := NewClient(ClientOpts{APIKey: "test-key", BaseURL: baseURL})
	require.NoError(t, err)
	return c
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(ClientOpts{})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Extract_InlineContent(t *testing.T) {
	api := &fakeVisionAPI{}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	signals, err := c.Extract(context.Background(), Image{Content: []byte("jpeg"), MIMEType: "image/jpeg"})
	require.NoError(t, err)

	assert.Equal(t, 4, api.requestCount())
	assert.Equal(t, []Term{{Term: "sneakers", Score: 0.92}, {Term: "logo", Score: 0.95}}, signals.Labels)
	assert.Equal(t, []Term{{Term: "shoe", Score: 0.88}}, signals.Objects)
	assert.Equal(t, "", signals.Text)
	assert.Equal(t, []string{"#1a1a1a", "#ffffff"}, signals.DominantColors)
	require.Len(t, signals.ColorSamples, 2)
	assert.Equal(t, ColorSample{R: 26, G: 26, B: 26, Score: 0.7}, signals.ColorSamples[0])
}

func TestClient_Extract_RetriesInlineWhenURLUnreachable(t *testing.T) {
	var imageHits atomic.Int32
	imageHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		imageHits.Add(1)
		w.Header().Set("Content-Type", "image/jpeg")
		w.Write([]byte{0xFF, 0xD8, 0xFF})
	}))
	defer imageHost.Close()

	api := &fakeVisionAPI{failByReference: true}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	signals, err := c.Extract(context.Background(), Image{URL: imageHost.URL + "/shoe.jpg"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), imageHits.Load())
	assert.NotEmpty(t, signals.Labels)

	// The retried round must carry inline content, never the URL again.
	api.mu.Lock()
	defer api.mu.Unlock()
	var inline int
	for _, r := range api.requests {
		if r.Image.Content != "" {
			inline++
			assert.Nil(t, r.Image.Source)
		}
	}
	assert.Equal(t, 4, inline)
}

func TestClient_Extract_NoSecondRetry(t *testing.T) {
	imageHost := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer imageHost.Close()

	api := &fakeVisionAPI{failByReference: true}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Extract(context.Background(), Image{URL: imageHost.URL + "/missing.jpg"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrImageUnreachable)
	assert.Contains(t, err.Error(), "inline retry download failed")
}

func TestClient_Extract_PermissionDeniedIsConfigurationError(t *testing.T) {
	api := &fakeVisionAPI{status: http.StatusForbidden}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Extract(context.Background(), Image{Content: []byte("jpeg")})
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestClient_Extract_ServerErrorIsTransport(t *testing.T) {
	api := &fakeVisionAPI{status: http.StatusServiceUnavailable}
	ts := httptest.NewServer(api.handler(t))
	defer ts.Close()

	c := newTestClient(t, ts.URL)
	_, err := c.Extract(context.Background(), Image{Content: []byte("jpeg")})
	assert.ErrorIs(t, err, ErrTransport)
	assert.False(t, errors.Is(err, ErrNotConfigured))
}

func TestClient_Extract_RequiresSource(t *testing.T) {
	c := newTestClient(t, "http://127.0.0.1:1")
	_, err := c.Extract(context.Background(), Image{})
	assert.Error(t, err)
}

type memoryStore struct {
	mu   sync.Mutex
	data map[string]*Signals
	sets int
}

func (m *memoryStore) GetSignals(_ context.Context, key string) (*Signals, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryStore) SetSignals(_ context.Context, key string, s *Signals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		m.data = make(map[string]*Signals)
	}
	m.data[key] = s
	m.sets++
	return nil
}

type countingExtractor struct {
	calls   int
	signals *Signals
}

func (c *countingExtractor) Extract(context.Context, Image) (*Signals, error) {
	c.calls++
	return c.signals, nil
}

func TestCachedExtractor(t *testing.T) {
	inner := &countingExtractor{signals: &Signals{Labels: []Term{{Term: "dress", Score: 0.9}}}}
	store := &memoryStore{}
	cached := NewCachedExtractor(inner, store)
	img := Image{URL: "https://example.com/dress.jpg"}

	first, err := cached.Extract(context.Background(), img)
	require.NoError(t, err)
	second, err := cached.Extract(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, store.sets)
	assert.Equal(t, first, second)
}

func TestCachedExtractor_SkipsEmptySignals(t *testing.T) {
	inner := &countingExtractor{signals: &Signals{}}
	store := &memoryStore{}
	cached := NewCachedExtractor(inner, store)

	_, err := cached.Extract(context.Background(), Image{Content: []byte("x")})
	require.NoError(t, err)
	assert.Equal(t, 0, store.sets)
}
