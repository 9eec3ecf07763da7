package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"questlog/internal/service"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHub_DeliversToUserConnections(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 42)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.Connections(42) == 1 }, time.Second, 10*time.Millisecond)

	hub.Notify(context.Background(), 7, service.Message{Type: service.MessageXPAwarded})
	hub.Notify(context.Background(), 42, service.Message{
		Type:    service.MessageXPAwarded,
		Payload: map[string]any{"awarded_xp": 20},
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, frame, err := conn.ReadMessage()
	require.NoError(t, err)

	var got service.Message
	require.NoError(t, json.Unmarshal(frame, &got))
	assert.Equal(t, service.MessageXPAwarded, got.Type)
	assert.EqualValues(t, 20, got.Payload["awarded_xp"])
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub := NewHub()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.Serve(w, r, 5)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return hub.Connections(5) == 1 }, time.Second, 10*time.Millisecond)

	conn.Close()

	assert.Eventually(t, func() bool { return hub.Connections(5) == 0 }, 2*time.Second, 10*time.Millisecond)
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func TestTelegramNotifier(t *testing.T) {
	bot := &mockSender{}
	sent := make(chan struct{}, 1)
	bot.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		m, ok := c.(tgbotapi.MessageConfig)
		return ok && m.ChatID == 42 && strings.Contains(m.Text, "7-day streak")
	})).Return(nil).Run(func(mock.Arguments) { sent <- struct{}{} })

	n := newTelegramNotifier(bot)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go n.Run(ctx)

	n.Notify(ctx, 42, service.Message{Type: service.MessageXPAwarded, Payload: map[string]any{"awarded_xp": 20}})
	n.Notify(ctx, 42, service.Message{
		Type:    service.MessageStreakMilestone,
		Payload: map[string]any{"current_streak": 7, "longest_streak": 9},
	})

	select {
	case <-sent:
	case <-time.After(2 * time.Second):
		t.Fatal("message was not sent")
	}
	bot.AssertNumberOfCalls(t, "Send", 1)
}

type recordingNotifier struct {
	got []string
}

func (r *recordingNotifier) Notify(_ context.Context, _ int64, msg service.Message) {
	r.got = append(r.got, msg.Type)
}

func TestFanout(t *testing.T) {
	a, b := &recordingNotifier{}, &recordingNotifier{}

	Fanout{a, nil, b}.Notify(context.Background(), 1, service.Message{Type: service.MessageGuildJoined})

	assert.Equal(t, []string{service.MessageGuildJoined}, a.got)
	assert.Equal(t, []string{service.MessageGuildJoined}, b.got)
}
