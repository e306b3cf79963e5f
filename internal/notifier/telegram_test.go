package notifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu      sync.Mutex
	sent    []map[string]string
	status  int
	updates string
	onSend  func()
}

func (f *fakeBot) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/sendMessage"):
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			f.mu.Lock()
			f.sent = append(f.sent, payload)
			onSend := f.onSend
			f.mu.Unlock()
			if f.status != 0 {
				w.WriteHeader(f.status)
				return
			}
			_, _ = w.Write([]byte(`{"ok":true}`))
			if onSend != nil {
				onSend()
			}
		case strings.HasSuffix(r.URL.Path, "/getUpdates"):
			f.mu.Lock()
			body := f.updates
			f.updates = `{"ok":true,"result":[]}`
			f.mu.Unlock()
			_, _ = w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

func (f *fakeBot) messages() []map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]map[string]string(nil), f.sent...)
}

func newTestNotifier(t *testing.T, bot *fakeBot) *TelegramNotifier {
	srv := httptest.NewServer(bot.handler(t))
	t.Cleanup(srv.Close)
	n := NewTelegramNotifier("TOKEN", "42", "")
	n.APIBase = srv.URL
	return n
}

func TestSend(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(t, bot)

	require.NoError(t, n.Send(context.Background(), "<b>hi</b>"))
	msgs := bot.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0]["chat_id"])
	assert.Equal(t, "HTML", msgs[0]["parse_mode"])
	assert.Equal(t, "<b>hi</b>", msgs[0]["text"])
}

func TestSend_TruncatesLongText(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(t, bot)

	require.NoError(t, n.Send(context.Background(), strings.Repeat("x", 5000)))
	assert.Len(t, bot.messages()[0]["text"], telegramMaxText)
}

func TestSend_APIError(t *testing.T) {
	bot := &fakeBot{status: http.StatusBadRequest}
	n := newTestNotifier(t, bot)

	err := n.Send(context.Background(), "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestSendWithRetry_NoRetries(t *testing.T) {
	bot := &fakeBot{status: http.StatusInternalServerError}
	n := newTestNotifier(t, bot)

	err := n.SendWithRetry(context.Background(), "hi", 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "all 1 retries exhausted")
	assert.Len(t, bot.messages(), 1)
}

func TestSendWithRetry_ContextCancelled(t *testing.T) {
	bot := &fakeBot{status: http.StatusInternalServerError}
	n := newTestNotifier(t, bot)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	err := n.SendWithRetry(ctx, "hi", 3)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestStartPolling(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bot := &fakeBot{
		updates: `{"ok":true,"result":[
			{"update_id":7,"message":{"text":"/forecast msft","chat":{"id":99}}},
			{"update_id":8,"message":{"text":"  /forecast goog ","chat":{"id":42}}}
		]}`,
		onSend: cancel,
	}
	n := newTestNotifier(t, bot)

	var got []string
	done := make(chan struct{})
	go func() {
		n.StartPolling(ctx, func(_ context.Context, cmd string) string {
			got = append(got, cmd)
			return "reply to " + cmd
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("polling did not stop")
	}

	assert.Equal(t, []string{"/forecast goog"}, got)
	msgs := bot.messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "reply to /forecast goog", msgs[0]["text"])
}

func utf16Len(s string) int {
	return len(utf16.Encode([]rune(s)))
}

func TestTruncateMessage(t *testing.T) {
	long := strings.Repeat("a", 5000)

	tests := []struct {
		name   string
		text   string
		prefix string
		suffix string
	}{
		{"short text untouched", "<b>hi</b> &amp; bye", "<b>hi</b> &amp; bye", "bye"},
		{"emoji at the cut", strings.Repeat("a", 4092) + "📊📊📊", strings.Repeat("a", 4092), "a..."},
		{"cut inside entity", strings.Repeat("a", 4090) + "&amp;" + long, strings.Repeat("a", 4090), "a..."},
		{"cut inside tag", strings.Repeat("a", 4091) + "<b>x</b>" + long, strings.Repeat("a", 4091), "a..."},
		{"open tag closed", "<b>" + long + "</b>", "<b>aaa", "...</b>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncateMessage(tt.text, telegramMaxText)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf16Len(got), telegramMaxText+len("</b>"))
			assert.True(t, strings.HasPrefix(got, tt.prefix))
			assert.True(t, strings.HasSuffix(got, tt.suffix))
		})
	}
}

func TestSend_TruncatesOnRuneBoundary(t *testing.T) {
	bot := &fakeBot{}
	n := newTestNotifier(t, bot)

	require.NoError(t, n.Send(context.Background(), strings.Repeat("a", 4092)+"📊📊📊"))
	msgs := bot.messages()
	require.Len(t, msgs, 1)
	assert.True(t, utf8.ValidString(msgs[0]["text"]))
	assert.Equal(t, strings.Repeat("a", 4092)+"...", msgs[0]["text"])
}
