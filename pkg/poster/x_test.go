package poster

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/trendposter/pkg/domain"
)

func newTestPoster(apiURL, uploadURL string) *XPoster {
	p := NewXPoster(XParams{APIKey: "key", APISecret: "secret", AccessToken: "token", AccessSecret: "token-secret",
		APIHost: apiURL, UploadURL: uploadURL, Timeout: 5 * time.Second})
	p.pollDelay = func(int) time.Duration { return time.Millisecond }
	return p
}

func TestXPoster_Post(t *testing.T) {
	var gotText string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2/tweets", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "), "request is oauth1 signed")

		var req struct {
			Text  string `json:"text"`
			Media *struct {
				IDs []string `json:"media_ids"`
			} `json:"media"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotText = req.Text
		assert.Nil(t, req.Media)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"1789","text":"hello trends"}}`))
	}))
	defer api.Close()

	p := newTestPoster(api.URL, api.URL+"/upload")
	res, err := p.Post(context.Background(), "hello trends", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello trends", gotText)
	assert.Equal(t, &domain.PostResult{ID: "1789", Text: "hello trends", URL: "https://x.com/i/status/1789"}, res)
}

func TestXPoster_PostTooLong(t *testing.T) {
	var calls int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer api.Close()

	p := newTestPoster(api.URL, api.URL)
	_, err := p.Post(context.Background(), strings.Repeat("x", 281), nil)
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Zero(t, atomic.LoadInt32(&calls), "no network call for oversize text")
}

func TestXPoster_PostRejected(t *testing.T) {
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"title":"Forbidden","detail":"duplicate content","type":"about:blank","status":403}`))
	}))
	defer api.Close()

	p := newTestPoster(api.URL, api.URL)
	_, err := p.Post(context.Background(), "dup", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create post")
}

func TestXPoster_PostWithPhoto(t *testing.T) {
	dir := t.TempDir()
	photo := filepath.Join(dir, "cat.png")
	require.NoError(t, os.WriteFile(photo, []byte("\x89PNG\r\n\x1a\nfake"), 0o600))

	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Authorization"), "OAuth "))
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("media")
		require.NoError(t, err)
		defer f.Close()
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		assert.Equal(t, "cat.png", hdr.Filename)
		assert.Equal(t, "\x89PNG\r\n\x1a\nfake", string(data))
		_, _ = w.Write([]byte(`{"media_id":555,"media_id_string":"555"}`))
	}))
	defer upload.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text  string `json:"text"`
			Media struct {
				IDs []string `json:"media_ids"`
			} `json:"media"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []string{"555"}, req.Media.IDs)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"42","text":"with photo"}}`))
	}))
	defer api.Close()

	p := newTestPoster(api.URL, upload.URL)
	res, err := p.Post(context.Background(), "with photo", &domain.Media{Path: photo, Kind: domain.MediaPhoto})
	require.NoError(t, err)
	assert.Equal(t, "42", res.ID)
}

func TestXPoster_PostWithVideo(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mp4")
	require.NoError(t, os.WriteFile(video, []byte("fake video bytes"), 0o600))

	var mu sync.Mutex
	var commands []string
	var statusCalls int32
	upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			assert.Equal(t, "STATUS", r.URL.Query().Get("command"))
			if atomic.AddInt32(&statusCalls, 1) == 1 {
				_, _ = w.Write([]byte(`{"media_id_string":"777","processing_info":{"state":"in_progress","check_after_secs":1}}`))
				return
			}
			_, _ = w.Write([]byte(`{"media_id_string":"777","processing_info":{"state":"succeeded"}}`))
			return
		}

		if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
			require.NoError(t, r.ParseMultipartForm(1<<20))
		} else {
			require.NoError(t, r.ParseForm())
		}
		cmd := r.FormValue("command")
		mu.Lock()
		commands = append(commands, cmd)
		mu.Unlock()
		switch cmd {
		case "INIT":
			assert.Equal(t, "16", r.FormValue("total_bytes"))
			assert.Equal(t, "video/mp4", r.FormValue("media_type"))
			assert.Equal(t, "tweet_video", r.FormValue("media_category"))
			_, _ = w.Write([]byte(`{"media_id_string":"777"}`))
		case "APPEND":
			assert.Equal(t, "777", r.FormValue("media_id"))
			assert.Equal(t, "0", r.FormValue("segment_index"))
			w.WriteHeader(http.StatusNoContent)
		case "FINALIZE":
			_, _ = w.Write([]byte(`{"media_id_string":"777","processing_info":{"state":"pending","check_after_secs":1}}`))
		default:
			t.Errorf("unexpected command %q", cmd)
		}
	}))
	defer upload.Close()

	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":"99","text":""}}`))
	}))
	defer api.Close()

	p := newTestPoster(api.URL, upload.URL)
	res, err := p.Post(context.Background(), "", &domain.Media{Path: video, Kind: domain.MediaVideo})
	require.NoError(t, err)
	assert.Equal(t, "99", res.ID)
	mu.Lock()
	assert.Equal(t, []string{"INIT", "APPEND", "FINALIZE"}, commands)
	mu.Unlock()
	assert.Equal(t, int32(2), atomic.LoadInt32(&statusCalls))
}

func TestXPoster_PostMediaFailures(t *testing.T) {
	var apiCalls int32
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&apiCalls, 1)
	}))
	defer api.Close()

	t.Run("missing file", func(t *testing.T) {
		p := newTestPoster(api.URL, api.URL)
		_, err := p.Post(context.Background(), "txt", &domain.Media{Path: "/no/such/file.jpg", Kind: domain.MediaPhoto})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "read media")
	})

	t.Run("upload rejected", func(t *testing.T) {
		photo := filepath.Join(t.TempDir(), "a.jpg")
		require.NoError(t, os.WriteFile(photo, []byte("jpg"), 0o600))
		upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"errors":[{"message":"bad media"}]}`))
		}))
		defer upload.Close()

		p := newTestPoster(api.URL, upload.URL)
		_, err := p.Post(context.Background(), "txt", &domain.Media{Path: photo, Kind: domain.MediaPhoto})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad media")
	})

	t.Run("video processing failed", func(t *testing.T) {
		video := filepath.Join(t.TempDir(), "v.mp4")
		require.NoError(t, os.WriteFile(video, []byte("v"), 0o600))
		upload := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/") {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			_ = r.ParseForm()
			if r.FormValue("command") == "FINALIZE" {
				_, _ = w.Write([]byte(`{"media_id_string":"1","processing_info":{"state":"failed","error":{"message":"bad codec"}}}`))
				return
			}
			_, _ = w.Write([]byte(`{"media_id_string":"1"}`))
		}))
		defer upload.Close()

		p := newTestPoster(api.URL, upload.URL)
		_, err := p.Post(context.Background(), "", &domain.Media{Path: video, Kind: domain.MediaVideo})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "bad codec")
	})

	assert.Zero(t, atomic.LoadInt32(&apiCalls), "post is not created when media fails")
}

func TestXPoster_ValidateCredentials(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/2/users/me", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"id":"1","name":"Poster","username":"trendposter"}}`))
		}))
		defer api.Close()

		assert.True(t, newTestPoster(api.URL, api.URL).ValidateCredentials(context.Background()))
	})

	t.Run("unauthorized", func(t *testing.T) {
		api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"title":"Unauthorized","type":"about:blank","status":401,"detail":"Unauthorized"}`))
		}))
		defer api.Close()

		assert.False(t, newTestPoster(api.URL, api.URL).ValidateCredentials(context.Background()))
	})
}

func TestMediaType(t *testing.T) {
	assert.Equal(t, "video/mp4", mediaType("clip.MP4", nil))
	assert.Equal(t, "image/png", mediaType("noext", []byte("\x89PNG\r\n\x1a\n0000")))
}
