package monitoring

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPredictionFeedBroadcast(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := NewPredictionFeed(nil, []string{"*"})
	go feed.Run(ctx)

	server := httptest.NewServer(feed)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return feed.ClientCount() == 1 }, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, feed.PublishPrediction(PredictionMessage{
		ID: "p-1", Age: 30, HeightCm: 170, WeightKg: 70, FCVC: 2, ClassIndex: 1, Level: "Normal Weight",
	}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg Message
	require.NoError(t, json.Unmarshal(data, &msg))
	assert.Equal(t, PredictionEvent, msg.Type)
	assert.NotEmpty(t, msg.ID)

	var event PredictionMessage
	require.NoError(t, json.Unmarshal(msg.Data, &event))
	assert.Equal(t, "Normal Weight", event.Level)
	assert.Equal(t, 170.0, event.HeightCm)
}

func TestOriginChecker(t *testing.T) {
	check := originChecker([]string{"https://clinic.example"})

	req := httptest.NewRequest("GET", "/", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://clinic.example")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example")
	assert.False(t, check(req))
}
