package monitor

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npotteig/rtreach-go/internal/geom"
	"github.com/npotteig/rtreach-go/internal/obstacle"
	"github.com/npotteig/rtreach-go/internal/reach"
)

func TestPublishReachesClient(t *testing.T) {
	hub := NewServer()
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	// registration is asynchronous with the dial returning
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, 1, hub.ClientCount())

	sent := Frame{Time: 1.5, State: []float64{1, 2, 0, 0}, Safe: true}
	hub.Publish(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got Frame
	require.NoError(t, conn.ReadJSON(&got))
	assert.Equal(t, sent.Time, got.Time)
	assert.Equal(t, sent.State, got.State)
	assert.True(t, got.Safe)
}

func TestPublishDropsDeadClients(t *testing.T) {
	hub := NewServer()
	defer hub.Close()

	srv := httptest.NewServer(hub)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	conn.Close()

	// the closed peer is evicted after at most a few publishes
	for i := 0; i < 10 && hub.ClientCount() > 0; i++ {
		hub.Publish(Frame{Time: float64(i)})
		time.Sleep(10 * time.Millisecond)
	}
	assert.Equal(t, 0, hub.ClientCount())
}

func TestProjections(t *testing.T) {
	tube := []reach.TimedRect{{Time: 0, Rect: geom.RectFromPoint([]float64{1, 2, 3, 4})}}
	proj := TubeProjection(tube)
	require.Len(t, proj, 1)
	assert.Equal(t, RectXY{XMin: 1, XMax: 1, YMin: 2, YMax: 2}, proj[0])

	field := obstacle.NewField([][2]float64{{2, 0}}, 0.5, 0.5, 0)
	obs := FieldProjection(field)
	require.Len(t, obs, 1)
	assert.InDelta(t, 1.75, obs[0].XMin, 1e-12)
	assert.Nil(t, FieldProjection(nil))
}
