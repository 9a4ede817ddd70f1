package api

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/gorilla/websocket"
	"github.com/learnable-ai/companion/internal/models"
	"github.com/learnable-ai/companion/internal/orchestrator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dialHub(t *testing.T, s *testServer) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(s.e)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) WSMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	for {
		var msg WSMessage
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestWebSocket_ConnectAndSnapshot(t *testing.T) {
	s := newTestServer(t, "k")
	conn := dialHub(t, s)

	var first WSMessage
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, MsgTypeConnected, first.Type)

	status := readUntil(t, conn, MsgTypeStatus)
	assert.Contains(t, string(status.Payload), `"state":"idle"`)
	settingsMsg := readUntil(t, conn, MsgTypeSettings)
	assert.Contains(t, string(settingsMsg.Payload), `"hasApiKey":true`)
}

func TestWebSocket_PingPong(t *testing.T) {
	s := newTestServer(t, "k")
	conn := dialHub(t, s)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: MsgTypePing}))
	readUntil(t, conn, MsgTypePong)

	require.NoError(t, conn.WriteJSON(WSMessage{Type: "shout"}))
	msg := readUntil(t, conn, MsgTypeError)
	assert.Contains(t, string(msg.Payload), "shout")
}

func TestWebSocket_BroadcastsResults(t *testing.T) {
	s := newTestServer(t, "k")
	conn := dialHub(t, s)
	readUntil(t, conn, MsgTypeSettings)

	require.Eventually(t, func() bool { return s.handlers.Hub.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	s.gw.EXPECT().Summarize(gomock.Any(), "t").Return(&models.SummaryResult{Success: true, Summary: "pushed"}, nil)
	require.NoError(t, s.proc.GenerateSummary(context.Background(), orchestrator.Request{Text: "t"}))

	msg := readUntil(t, conn, MsgTypeResults)
	assert.Contains(t, string(msg.Payload), "pushed")
}
