package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/schedulifyx-api/internal/dto"
)

type gaugeStub struct {
	last atomic.Int64
}

func (g *gaugeStub) SetRealtimeClients(n int) {
	g.last.Store(int64(n))
}

func startHub(t *testing.T, origins []string) (*Hub, *gaugeStub, string) {
	t.Helper()
	gauge := &gaugeStub{}
	hub := NewHub(nil, gauge, origins)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := httptest.NewServer(hub)
	t.Cleanup(server.Close)
	return hub, gauge, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestHubBroadcastsTimetableEvents(t *testing.T) {
	hub, gauge, url := startHub(t, nil)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	assert.Equal(t, int64(1), gauge.last.Load())

	hub.Publish(dto.TimetableEvent{Type: "timetable.generated", TimetableID: "tt-1", Score: 90, Conflicts: 1})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Type string             `json:"type"`
		Data dto.TimetableEvent `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "timetable.generated", msg.Type)
	assert.Equal(t, "tt-1", msg.Data.TimetableID)
	assert.Equal(t, 1, msg.Data.Conflicts)

	require.NoError(t, conn.Close())
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestHubRejectsUnknownOrigin(t *testing.T) {
	_, _, url := startHub(t, []string{"http://allowed.test"})

	header := http.Header{}
	header.Set("Origin", "http://evil.test")
	_, resp, err := websocket.DefaultDialer.Dial(url, header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestPublishWithoutRunnerDoesNotBlock(t *testing.T) {
	hub := NewHub(nil, nil, nil)
	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBuffer*2; i++ {
			hub.Publish(dto.TimetableEvent{Type: "timetable.generated"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked")
	}
}
