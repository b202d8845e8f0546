package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/livesession/go/internal/models"
	"github.com/mcdev12/livesession/go/internal/session"
	"github.com/mcdev12/livesession/go/internal/session/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTranslator struct{}

func (stubTranslator) Lookup(_, key string) string {
	if key == "qna.anonymous" {
		return "Anonymous"
	}
	return key
}

func (stubTranslator) Normalize(string) string { return "en" }

type testGateway struct {
	srv *httptest.Server
	app *session.App
	cm  *ConnectionManager
}

func newTestGateway(t *testing.T) *testGateway {
	t.Helper()

	bus := events.NewBus()
	app := session.NewApp(session.NewStore(), bus, clockwork.NewRealClock(), stubTranslator{}, nil)
	cm := NewConnectionManager(app, DefaultConnectionConfig())
	bus.Subscribe("gateway", cm.HandleEvent)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go cm.Start(ctx)

	mux := http.NewServeMux()
	NewWebSocketHandler(cm).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return &testGateway{srv: srv, app: app, cm: cm}
}

func (g *testGateway) createRoom(t *testing.T) *session.CreateSessionResult {
	t.Helper()
	res, err := g.app.CreateSession(context.Background(), "en")
	require.NoError(t, err)
	return res
}

func (g *testGateway) dial(t *testing.T, query string) (*websocket.Conn, *http.Response, error) {
	t.Helper()
	url := "ws" + strings.TrimPrefix(g.srv.URL, "http") + "/ws/room?" + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if conn != nil {
		t.Cleanup(func() { conn.Close() })
	}
	return conn, resp, err
}

func readEvent(t *testing.T, conn *websocket.Conn) *events.Event {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.Event
	require.NoError(t, conn.ReadJSON(&ev))
	return &ev
}

func readUntil(t *testing.T, conn *websocket.Conn, eventType events.EventType) *events.Event {
	t.Helper()
	for {
		ev := readEvent(t, conn)
		if ev.Type == eventType {
			return ev
		}
	}
}

func TestGateway_StateSyncOnConnect(t *testing.T) {
	g := newTestGateway(t)
	room := g.createRoom(t)

	conn, _, err := g.dial(t, "room="+strings.ToLower(room.RoomCode))
	require.NoError(t, err)

	ev := readEvent(t, conn)
	assert.Equal(t, events.EventTypeStateSync, ev.Type)
	assert.Equal(t, room.RoomCode, ev.RoomCode)

	var view session.View
	require.NoError(t, json.Unmarshal(ev.Data, &view))
	assert.Equal(t, models.RoleParticipant, view.Role)
	assert.Equal(t, room.RoomCode, view.RoomCode)
}

func TestGateway_RejectsBadRequests(t *testing.T) {
	g := newTestGateway(t)
	room := g.createRoom(t)

	tests := []struct {
		name   string
		query  string
		status int
	}{
		{name: "missing room", query: "", status: http.StatusBadRequest},
		{name: "malformed room", query: "room=ab", status: http.StatusBadRequest},
		{name: "unknown room", query: "room=ZZZZZ9", status: http.StatusNotFound},
		{name: "bad host key", query: "room=" + room.RoomCode + "&host_key=guess", status: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp, err := g.dial(t, tt.query)
			require.Error(t, err)
			require.NotNil(t, resp)
			assert.Equal(t, tt.status, resp.StatusCode)
		})
	}
}

func TestGateway_CommandsBroadcastToRoom(t *testing.T) {
	g := newTestGateway(t)
	room := g.createRoom(t)

	host, _, err := g.dial(t, "room="+room.RoomCode+"&host_key="+room.HostKey)
	require.NoError(t, err)
	participant, _, err := g.dial(t, "room="+room.RoomCode)
	require.NoError(t, err)

	sync := readEvent(t, host)
	var hostView session.View
	require.NoError(t, json.Unmarshal(sync.Data, &hostView))
	assert.Equal(t, models.RoleHost, hostView.Role)
	readUntil(t, participant, events.EventTypeStateSync)

	require.Eventually(t, func() bool {
		return g.cm.GetConnectionStats().RoomConnections[room.RoomCode] == 2
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, host.WriteJSON(map[string]any{
		"request_id": "r1",
		"command":    session.CmdAddAgendaItem,
		"payload":    map[string]any{"title": "Intro", "duration_minutes": 5},
	}))

	updated := readUntil(t, host, events.EventTypeAgendaUpdated)
	assert.Equal(t, room.RoomCode, updated.RoomCode)

	accepted := readUntil(t, host, events.EventTypeCommandAccepted)
	var ack CommandAcceptedPayload
	require.NoError(t, json.Unmarshal(accepted.Data, &ack))
	assert.Equal(t, "r1", ack.RequestID)
	assert.Equal(t, uint64(1), ack.Version)

	seen := readUntil(t, participant, events.EventTypeAgendaUpdated)
	assert.Equal(t, updated.ID, seen.ID)
}

func TestGateway_RejectionsGoToSender(t *testing.T) {
	g := newTestGateway(t)
	room := g.createRoom(t)

	conn, _, err := g.dial(t, "room="+room.RoomCode)
	require.NoError(t, err)
	readUntil(t, conn, events.EventTypeStateSync)

	tests := []struct {
		name    string
		message string
		code    string
	}{
		{name: "host only", message: `{"request_id":"a","command":"agenda.start"}`, code: "permission_denied"},
		{name: "unknown command", message: `{"request_id":"b","command":"agenda.explode"}`, code: "invalid_argument"},
		{name: "malformed", message: `{"command":`, code: "invalid_argument"},
		{name: "bad payload", message: `{"command":"wordcloud.submit","payload":{"text":""}}`, code: "invalid_argument"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.message)))
			ev := readUntil(t, conn, events.EventTypeCommandRejected)
			var payload events.CommandRejectedPayload
			require.NoError(t, json.Unmarshal(ev.Data, &payload))
			assert.Equal(t, tt.code, payload.Code)
			assert.NotEmpty(t, payload.Message)
		})
	}
}

func TestGateway_SyncCommand(t *testing.T) {
	g := newTestGateway(t)
	room := g.createRoom(t)

	conn, _, err := g.dial(t, "room="+room.RoomCode)
	require.NoError(t, err)
	readUntil(t, conn, events.EventTypeStateSync)

	_, err = g.app.Execute(context.Background(), room.RoomCode, session.Participant(), &session.SubmitWord{Text: "Hello"})
	require.NoError(t, err)
	readUntil(t, conn, events.EventTypeWordSubmitted)

	require.NoError(t, conn.WriteJSON(map[string]string{"command": SyncCommand}))
	ev := readUntil(t, conn, events.EventTypeStateSync)

	var view session.View
	require.NoError(t, json.Unmarshal(ev.Data, &view))
	assert.Equal(t, []models.WordCloudEntry{{Text: "hello", Count: 1}}, view.WordCloud)
}

func TestGateway_ConnectionStats(t *testing.T) {
	g := newTestGateway(t)
	room := g.createRoom(t)

	conn, _, err := g.dial(t, "room="+room.RoomCode)
	require.NoError(t, err)
	readUntil(t, conn, events.EventTypeStateSync)

	resp, err := http.Get(g.srv.URL + "/ws/stats")
	require.NoError(t, err)
	defer resp.Body.Close()

	var stats ConnectionStats
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&stats))
	assert.Equal(t, 1, stats.TotalConnections)
	assert.Equal(t, 1, stats.ActiveRooms)
	assert.Equal(t, 1, stats.RoomConnections[room.RoomCode])

	conn.Close()
	assert.Eventually(t, func() bool {
		return g.cm.GetConnectionStats().TotalConnections == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestOriginChecker(t *testing.T) {
	check := OriginChecker([]string{"https://app.example.com"})

	req := httptest.NewRequest(http.MethodGet, "/ws/room", nil)
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://app.example.com")
	assert.True(t, check(req))

	req.Header.Set("Origin", "https://evil.example.com")
	assert.False(t, check(req))

	assert.True(t, OriginChecker([]string{"*"})(req))
}
