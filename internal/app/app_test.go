package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Speshl/gorrc_rover/internal/buzzer"
	cmdfake "github.com/Speshl/gorrc_rover/internal/command/fake"
	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/models"
	sensorfake "github.com/Speshl/gorrc_rover/internal/sensor/fake"
	"github.com/Speshl/gorrc_rover/internal/vehicle/rover"
	"github.com/gorilla/websocket"
	"github.com/prometheus/procfs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRover(t *testing.T) *rover.Rover {
	t.Helper()
	adc := sensorfake.NewADC()
	adc.Set(config.DefaultADCChannel, 2.6)

	cfg := config.RoverConfig{
		MovementTick:        config.DefaultMovementTick,
		ControlTick:         config.DefaultControlTick,
		MoveDuration:        config.DefaultMoveDuration,
		ObstacleThresholdCm: config.DefaultObstacleThresholdCm,
		AlertDuration:       config.DefaultAlertDuration,
		BackDuration:        config.DefaultBackDuration,
		PivotDuration:       config.DefaultPivotDuration,
		BatteryWindow:       config.DefaultBatteryWindow,
		BatteryHysteresis:   config.DefaultBatteryHysteresis,
		ADCChannel:          config.DefaultADCChannel,
		BatteryScale:        config.DefaultBatteryScale,
	}
	alerter := buzzer.NewBuzzer(config.BuzzerConfig{}, &buzzer.FakePin{})
	r := rover.NewRover(cfg, cmdfake.NewCommand(), sensorfake.NewRanger(42), adc, alerter, nil)
	require.NoError(t, r.Init())
	return r
}

func healthyNetDev() (procfs.NetDev, error) {
	return procfs.NetDev{
		"wlan0": procfs.NetDevLine{
			Name:      "wlan0",
			RxPackets: 100,
			RxDropped: 2,
			TxPackets: 80,
			TxErrors:  1,
		},
	}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *SessionRegistry, *HealthReporter) {
	t.Helper()
	sessions := NewSessionRegistry()
	health := NewHealthReporter(config.HealthConfig{Interface: "wlan0"}, sessions)
	health.netDev = healthyNetDev

	server := httptest.NewServer(NewRouter(newTestRover(t), sessions, health, nil))
	t.Cleanup(server.Close)
	return server, sessions, health
}

func TestWebsocketSession(t *testing.T) {
	server, sessions, _ := newTestServer(t)

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/"
	ws, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	snapshot := models.Snapshot{}
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Equal(t, "Stopped", snapshot.Direction)
	assert.Equal(t, 42.0, snapshot.Ultrasonic)
	assert.Equal(t, "7.80V", snapshot.Voltage)
	assert.Equal(t, 1, sessions.Count())

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("87")))
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Equal(t, "Forward", snapshot.Direction)
	assert.Equal(t, 1.0, snapshot.Speed)
	assert.Equal(t, "Command received: 87", snapshot.Bluetooth)

	require.NoError(t, ws.WriteMessage(websocket.TextMessage, []byte("nonsense")))
	require.NoError(t, ws.ReadJSON(&snapshot))
	assert.Equal(t, "Stopped", snapshot.Direction)

	require.NoError(t, ws.Close())
	assert.Eventually(t, func() bool {
		return sessions.Count() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestStateRoute(t *testing.T) {
	server, _, _ := newTestServer(t)

	resp, err := http.Get(server.URL + "/state")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	body := map[string]any{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Stopped", body["direction"])
	for _, key := range []string{"speed", "distance", "ultrasonic", "bluetooth", "autonomous_mode", "turn_angle", "voltage", "battery"} {
		assert.Contains(t, body, key)
	}

	resp, err = http.Post(server.URL+"/state", "text/plain", strings.NewReader("87"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestHealthRoute(t *testing.T) {
	server, _, health := newTestServer(t)

	resp, err := http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	health.Check()
	resp, err = http.Get(server.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	status := models.Health{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&status))
	assert.True(t, status.Healthy)
	assert.Equal(t, uint64(100), status.RxPackets)
}

func TestHealthCheck(t *testing.T) {
	sessions := NewSessionRegistry()
	sessions.Open(TransportWebsocket, "127.0.0.1:5000")
	health := NewHealthReporter(config.HealthConfig{Interface: "wlan0"}, sessions)

	health.netDev = healthyNetDev
	status := health.Check()
	assert.True(t, status.Healthy)
	assert.Equal(t, 1, status.Sessions)
	assert.Equal(t, uint64(2), status.RxDropped)
	assert.Equal(t, uint64(1), status.TxErrors)
	assert.Empty(t, status.Error)

	health.cfg.Interface = "eth1"
	status = health.Check()
	assert.False(t, status.Healthy)
	assert.Contains(t, status.Error, "eth1")

	health.netDev = func() (procfs.NetDev, error) {
		return nil, errors.New("no proc")
	}
	status = health.Check()
	assert.False(t, status.Healthy)
	assert.Equal(t, "no proc", status.Error)
	assert.Equal(t, status, health.Last())
}

func TestSessionRegistry(t *testing.T) {
	sessions := NewSessionRegistry()

	first := sessions.Open(TransportWebsocket, "a")
	second := sessions.Open(TransportMQTT, "b")
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, sessions.Count())

	list := sessions.List()
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)

	sessions.Close(first.ID)
	sessions.Close(first.ID)
	assert.Equal(t, 1, sessions.Count())
	assert.Equal(t, TransportMQTT, sessions.List()[0].Transport)
}

func TestMQTTTopics(t *testing.T) {
	m := NewMQTTSession(config.MQTTConfig{TopicPrefix: "rover/"}, newTestRover(t), NewSessionRegistry())
	assert.Equal(t, "rover/command", m.CommandTopic())
	assert.Equal(t, "rover/state", m.StateTopic())

	m = NewMQTTSession(config.MQTTConfig{}, newTestRover(t), NewSessionRegistry())
	assert.Equal(t, "command", m.CommandTopic())
}

func TestMQTTPayloadDispatches(t *testing.T) {
	m := NewMQTTSession(config.MQTTConfig{TopicPrefix: "rover"}, newTestRover(t), NewSessionRegistry())

	reply, err := m.handlePayload([]byte("MOVE:Backward:1.5:0"))
	require.NoError(t, err)

	snapshot := models.Snapshot{}
	require.NoError(t, json.Unmarshal(reply, &snapshot))
	assert.Equal(t, "Backward", snapshot.Direction)
	assert.Equal(t, -1.0, snapshot.Speed)
}

func TestMirrorPublishFailsWithoutRedis(t *testing.T) {
	mirror := NewStateMirror(config.RedisConfig{
		Address: "127.0.0.1:1",
		Key:     config.DefaultRedisKey,
		TTL:     config.DefaultRedisTTL,
	}, newTestRover(t))
	defer mirror.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := mirror.Publish(ctx)
	assert.Error(t, err)
}

func TestEncodeDecode(t *testing.T) {
	encoded, err := encode(models.Ping{Source: PingSourceName, TimeStamp: 12})
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"rover","time_stamp":12}`, encoded)

	ping := models.Ping{}
	require.NoError(t, decode(encoded, &ping))
	assert.Equal(t, int64(12), ping.TimeStamp)

	assert.Error(t, decode("{", &ping))
}
