package gateway

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rollcall-app/rollcall/internal/config"
	"github.com/rollcall-app/rollcall/internal/models"
	"github.com/rollcall-app/rollcall/internal/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T, snapshot SnapshotFunc) (*Hub, *httptest.Server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(snapshot, nil)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	filter := network.NewFilter(config.AdmissionConfig{
		Policy:   config.PolicySubnet,
		ServerIP: "10.0.0.3",
	}, nil)

	router := gin.New()
	router.GET("/ws", ServeWS(hub, filter, nil))

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return hub, srv
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readMessage(t *testing.T, conn *websocket.Conn) (string, json.RawMessage) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	require.NoError(t, err)
	var msg struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg.Type, msg.Data
}

func TestSnapshotOnConnect(t *testing.T) {
	records := []models.AttendanceRecord{
		{Name: "Ada", StudentID: "1001", Status: models.StatusPresent},
		{Name: "Grace", StudentID: "1002", Status: models.StatusLate},
	}
	sess := &models.Session{Name: "Lecture 1", IsActive: true}

	_, srv := startTestServer(t, func() (Snapshot, error) {
		return Snapshot{Records: records, SessionActive: true, Session: sess}, nil
	})

	conn := dial(t, srv)
	msgType, data := readMessage(t, conn)
	require.Equal(t, TypeInitialData, msgType)

	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))
	assert.True(t, snap.SessionActive)
	require.NotNil(t, snap.Session)
	assert.Equal(t, "Lecture 1", snap.Session.Name)
	require.Len(t, snap.Records, 2)
	assert.Equal(t, "1001", snap.Records[0].StudentID)
}

func TestSnapshotEmptyLedger(t *testing.T) {
	_, srv := startTestServer(t, func() (Snapshot, error) {
		return Snapshot{}, nil
	})

	conn := dial(t, srv)
	msgType, data := readMessage(t, conn)
	require.Equal(t, TypeInitialData, msgType)

	// Records marshals as [], not null, so the dashboard can iterate.
	assert.Contains(t, string(data), `"records":[]`)
}

func TestBroadcastReachesAllViewers(t *testing.T) {
	hub, srv := startTestServer(t, func() (Snapshot, error) {
		return Snapshot{}, nil
	})

	first := dial(t, srv)
	second := dial(t, srv)
	readMessage(t, first)
	readMessage(t, second)

	hub.NotifyAttendanceRecorded(&models.AttendanceRecord{Name: "Ada", StudentID: "1001"})

	for _, conn := range []*websocket.Conn{first, second} {
		msgType, data := readMessage(t, conn)
		assert.Equal(t, TypeAttendanceRecorded, msgType)
		var record models.AttendanceRecord
		require.NoError(t, json.Unmarshal(data, &record))
		assert.Equal(t, "1001", record.StudentID)
	}
}

func TestSessionToggleBroadcast(t *testing.T) {
	hub, srv := startTestServer(t, func() (Snapshot, error) {
		return Snapshot{}, nil
	})

	conn := dial(t, srv)
	readMessage(t, conn)

	hub.NotifySessionToggled(true, &models.Session{Name: "Lecture 1", IsActive: true})

	msgType, data := readMessage(t, conn)
	require.Equal(t, TypeSessionToggled, msgType)
	var event ToggleEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.True(t, event.Active)
	require.NotNil(t, event.Session)
	assert.Equal(t, "Lecture 1", event.Session.Name)
}

func TestRecordsClearedBroadcast(t *testing.T) {
	hub, srv := startTestServer(t, func() (Snapshot, error) {
		return Snapshot{}, nil
	})

	conn := dial(t, srv)
	readMessage(t, conn)

	hub.NotifyRecordsCleared()

	msgType, _ := readMessage(t, conn)
	assert.Equal(t, TypeRecordsCleared, msgType)
}

func TestDisconnectCleansUp(t *testing.T) {
	hub, srv := startTestServer(t, func() (Snapshot, error) {
		return Snapshot{}, nil
	})

	conn := dial(t, srv)
	readMessage(t, conn)

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 },
		time.Second, 10*time.Millisecond)

	conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 0 },
		time.Second, 10*time.Millisecond)
}

func TestEarlyDepartureBeatsRegistration(t *testing.T) {
	hub := NewHub(func() (Snapshot, error) { return Snapshot{}, nil }, nil)
	c := newClient(nil, "10.0.0.7")

	// Both hub channels are buffered, so the Run loop can pick up the
	// disconnect before the registration it belongs to.
	hub.removeClient(c)
	hub.addClient(c)

	assert.Equal(t, 0, hub.ClientCount())
	assert.Empty(t, hub.departed)

	// The late registration must close the client instead of keeping it.
	_, open := <-c.send
	assert.False(t, open)
}

func TestRepeatUnregisterLeavesNoResidue(t *testing.T) {
	hub := NewHub(func() (Snapshot, error) { return Snapshot{}, nil }, nil)
	c := newClient(nil, "10.0.0.7")

	hub.removeClient(c)
	hub.removeClient(c)
	hub.addClient(c)

	assert.Equal(t, 0, hub.ClientCount())
	assert.Empty(t, hub.departed)
}
