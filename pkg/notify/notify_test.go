package notify

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunc(t *testing.T) {
	var got string
	n := Func(func(_ context.Context, msg string) error {
		got = msg
		return nil
	})
	require.NoError(t, n.Notify(context.Background(), "hi"))
	assert.Equal(t, "hi", got)
}

func TestLog(t *testing.T) {
	assert.NoError(t, Log{}.Notify(context.Background(), "line1\nline2"))
}

func TestMulti(t *testing.T) {
	var calls []string
	ok := Func(func(_ context.Context, msg string) error {
		calls = append(calls, "ok:"+msg)
		return nil
	})
	bad := Func(func(_ context.Context, msg string) error {
		calls = append(calls, "bad:"+msg)
		return errors.New("boom")
	})

	t.Run("all called despite failure", func(t *testing.T) {
		calls = nil
		err := Multi{bad, nil, ok}.Notify(context.Background(), "m")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "boom")
		assert.Equal(t, []string{"bad:m", "ok:m"}, calls)
	})

	t.Run("no errors", func(t *testing.T) {
		calls = nil
		require.NoError(t, Multi{ok, ok}.Notify(context.Background(), "x"))
		assert.Len(t, calls, 2)
	})

	t.Run("empty", func(t *testing.T) {
		assert.NoError(t, Multi{}.Notify(context.Background(), "x"))
	})
}

const getMeResponse = `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"poster","username":"poster_bot"}}`

func TestTelegram_Notify(t *testing.T) {
	t.Run("sent", func(t *testing.T) {
		var getMeCalls, sendCalls int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/botsecret-token/getMe":
				atomic.AddInt32(&getMeCalls, 1)
				_, _ = w.Write([]byte(getMeResponse))
			case "/botsecret-token/sendMessage":
				atomic.AddInt32(&sendCalls, 1)
				require.NoError(t, r.ParseForm())
				assert.Equal(t, "12345", r.PostForm.Get("chat_id"))
				assert.Equal(t, "Posted!\nqueue: 2", r.PostForm.Get("text"))
				assert.Equal(t, "true", r.PostForm.Get("disable_web_page_preview"))
				_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":1,"date":0,"chat":{"id":12345,"type":"private"}}}`))
			default:
				t.Errorf("unexpected path %s", r.URL.Path)
			}
		}))
		defer srv.Close()

		tg := NewTelegram(TelegramParams{Token: "secret-token", ChatID: "12345", APIURL: srv.URL})
		assert.Equal(t, int32(0), atomic.LoadInt32(&getMeCalls), "no requests before the first message")
		require.NoError(t, tg.Notify(context.Background(), "Posted!\nqueue: 2"))
		require.NoError(t, tg.Notify(context.Background(), "Posted!\nqueue: 2"))
		assert.Equal(t, int32(1), atomic.LoadInt32(&getMeCalls), "bot initialized once")
		assert.Equal(t, int32(2), atomic.LoadInt32(&sendCalls))
	})

	t.Run("channel username", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/getMe") {
				_, _ = w.Write([]byte(getMeResponse))
				return
			}
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "@trends_channel", r.PostForm.Get("chat_id"))
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":2,"date":0,"chat":{"id":-100,"type":"channel"}}}`))
		}))
		defer srv.Close()

		tg := NewTelegram(TelegramParams{Token: "t", ChatID: "@trends_channel", APIURL: srv.URL})
		require.NoError(t, tg.Notify(context.Background(), "x"))
	})

	t.Run("rejected", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasSuffix(r.URL.Path, "/getMe") {
				_, _ = w.Write([]byte(getMeResponse))
				return
			}
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
		}))
		defer srv.Close()

		tg := NewTelegram(TelegramParams{Token: "t", ChatID: "1", APIURL: srv.URL})
		err := tg.Notify(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "chat not found")
	})

	t.Run("invalid token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":401,"description":"Unauthorized"}`))
		}))
		defer srv.Close()

		tg := NewTelegram(TelegramParams{Token: "t", ChatID: "1", APIURL: srv.URL})
		err := tg.Notify(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "init telegram bot")
	})

	t.Run("invalid chat id", func(t *testing.T) {
		tg := NewTelegram(TelegramParams{Token: "t", ChatID: "not-a-chat", APIURL: "http://127.0.0.1:1"})
		err := tg.Notify(context.Background(), "x")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid telegram chat id")
	})

	t.Run("network error hides token", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		u := srv.URL
		srv.Close()

		tg := NewTelegram(TelegramParams{Token: "very-secret", ChatID: "1", APIURL: u})
		err := tg.Notify(context.Background(), "x")
		require.Error(t, err)
		assert.NotContains(t, err.Error(), "very-secret")
	})
}
