package viewer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roma2023/SketchAI/internal/cache"
	"github.com/roma2023/SketchAI/internal/models"
)

// --- Mocks ---

type stubConverter struct {
	convert func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error)
	calls   int
}

func (s *stubConverter) Convert(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
	s.calls++
	return s.convert(ctx, req)
}

// --- Tests ---

func TestViewer_ShowDisplaysResult(t *testing.T) {
	store := cache.NewImageCache(time.Minute)
	conv := &stubConverter{convert: func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
		return &models.GenerationResult{Data: []byte("image-" + req.Prompt), ContentType: "image/webp"}, nil
	}}
	v := New(conv, store, "/images/")

	assert.Empty(t, v.Current())

	handle, shown, err := v.Show(context.Background(), models.GenerationRequest{Prompt: "one"})
	require.NoError(t, err)
	assert.True(t, shown)
	assert.Equal(t, handle, v.Current())
	assert.Equal(t, 1, conv.calls)

	got, err := store.GetImage(strings.TrimPrefix(handle, "/images/"))
	require.NoError(t, err)
	assert.Equal(t, []byte("image-one"), got.Data)
	assert.Equal(t, "image/webp", got.ContentType)

	second, _, err := v.Show(context.Background(), models.GenerationRequest{Prompt: "two"})
	require.NoError(t, err)
	assert.NotEqual(t, handle, second)
	assert.Equal(t, 1, store.Len(), "the replaced image is released")

	v.Close()
	assert.Empty(t, v.Current())
	assert.Equal(t, 0, store.Len())
}

func TestViewer_FailureKeepsPreviousImage(t *testing.T) {
	store := cache.NewImageCache(time.Minute)
	fail := false
	conv := &stubConverter{convert: func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
		if fail {
			return nil, errors.New("proxy down")
		}
		return &models.GenerationResult{Data: []byte("ok")}, nil
	}}
	v := New(conv, store, "/images/")

	handle, _, err := v.Show(context.Background(), models.GenerationRequest{})
	require.NoError(t, err)

	fail = true
	_, shown, err := v.Show(context.Background(), models.GenerationRequest{})
	assert.Error(t, err)
	assert.False(t, shown)
	assert.Equal(t, handle, v.Current())
}

func TestViewer_StaleResponseIsDiscarded(t *testing.T) {
	store := cache.NewImageCache(time.Minute)
	release := make(chan struct{})
	started := make(chan struct{})
	conv := ConverterFunc(func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
		if req.Prompt == "slow" {
			close(started)
			<-release
		}
		return &models.GenerationResult{Data: []byte(req.Prompt)}, nil
	})
	v := New(conv, store, "/images/")

	type outcome struct {
		shown bool
		err   error
	}
	slow := make(chan outcome)
	go func() {
		_, shown, err := v.Show(context.Background(), models.GenerationRequest{Prompt: "slow"})
		slow <- outcome{shown, err}
	}()
	<-started

	fast, shown, err := v.Show(context.Background(), models.GenerationRequest{Prompt: "fast"})
	require.NoError(t, err)
	require.True(t, shown)

	close(release)
	res := <-slow
	require.NoError(t, res.err)
	assert.False(t, res.shown)

	assert.Equal(t, fast, v.Current())
	got, err := store.GetImage(strings.TrimPrefix(v.Current(), "/images/"))
	require.NoError(t, err)
	assert.Equal(t, []byte("fast"), got.Data)
	assert.Equal(t, 1, store.Len())
}

func TestViewer_OnDisplayAnnouncesOnlyCurrentImages(t *testing.T) {
	store := cache.NewImageCache(time.Minute)
	release := make(chan struct{})
	started := make(chan struct{})
	conv := ConverterFunc(func(ctx context.Context, req models.GenerationRequest) (*models.GenerationResult, error) {
		switch req.Prompt {
		case "slow":
			close(started)
			<-release
		case "fail":
			return nil, errors.New("proxy down")
		}
		return &models.GenerationResult{Data: []byte(req.Prompt)}, nil
	})
	v := New(conv, store, "/images/")

	var announced []string
	v.OnDisplay(func(url string) {
		// Still locked: the announced handle must be the one being displayed.
		assert.Equal(t, url, v.urlPrefix+v.current)
		announced = append(announced, url)
	})

	first, _, err := v.Show(context.Background(), models.GenerationRequest{Prompt: "first"})
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		v.Show(context.Background(), models.GenerationRequest{Prompt: "slow"})
	}()
	<-started

	fast, shown, err := v.Show(context.Background(), models.GenerationRequest{Prompt: "fast"})
	require.NoError(t, err)
	require.True(t, shown)
	close(release)
	<-done

	_, _, err = v.Show(context.Background(), models.GenerationRequest{Prompt: "fail"})
	require.Error(t, err)

	assert.Equal(t, []string{first, fast}, announced)
	assert.Equal(t, fast, v.Current())
}

func TestClient_Convert(t *testing.T) {
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "image/webp")
		w.Write([]byte{0xde, 0xad})
	}))
	defer server.Close()

	client := NewClient(server.URL, "webp", server.Client())
	result, err := client.Convert(context.Background(), models.GenerationRequest{
		ImageData:       "data:image/png;base64,AAAA",
		Prompt:          "a tree",
		ControlStrength: 0.95,
	})
	require.NoError(t, err)

	assert.Equal(t, []byte{0xde, 0xad}, result.Data)
	assert.Equal(t, "image/webp", result.ContentType)
	assert.Equal(t, "data:image/png;base64,AAAA", body["sketch"])
	assert.Equal(t, "a tree", body["prompt"])
	assert.Equal(t, 0.95, body["control_strength"])
	assert.Equal(t, "webp", body["output_format"])
}

func TestClient_ConvertReturnsErrorOnFailureStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Failed to convert sketch"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", nil)
	result, err := client.Convert(context.Background(), models.GenerationRequest{})
	assert.Error(t, err)
	assert.Nil(t, result)
}
