package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	snapshot models.Snapshot
}

func (s staticSource) Snapshot() models.Snapshot {
	return s.snapshot
}

type setCall struct {
	key        string
	value      interface{}
	expiration time.Duration
}

type recordingWriter struct {
	calls []setCall
	err   error
}

func (w *recordingWriter) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	w.calls = append(w.calls, setCall{key: key, value: value, expiration: expiration})
	return redis.NewStatusResult("OK", w.err)
}

func newTestMirror(source snapshotSource, writer stateWriter) *StateMirror {
	mirror := NewStateMirror(config.RedisConfig{
		Address: "127.0.0.1:1",
		Key:     config.DefaultRedisKey,
		TTL:     config.DefaultRedisTTL,
	}, source)
	mirror.writer = writer
	return mirror
}

func TestMirrorPublishWritesLatestSnapshot(t *testing.T) {
	writer := &recordingWriter{}
	source := staticSource{snapshot: models.Snapshot{
		Direction: "Forward",
		Speed:     1.0,
		Distance:  2.5,
		Bluetooth: "Command received: 87",
		Voltage:   "7.80V",
		Battery:   "70.0%",
	}}
	mirror := newTestMirror(source, writer)
	defer mirror.Close()

	require.NoError(t, mirror.Publish(context.Background()))
	require.NoError(t, mirror.Publish(context.Background()))

	require.Len(t, writer.calls, 2)
	call := writer.calls[1]
	assert.Equal(t, config.DefaultRedisKey, call.key)
	assert.Equal(t, config.DefaultRedisTTL, call.expiration)

	encoded, ok := call.value.(string)
	require.True(t, ok)
	stored := models.Snapshot{}
	require.NoError(t, decode(encoded, &stored))
	assert.Equal(t, source.snapshot, stored)
}

func TestMirrorPublishWrapsWriteError(t *testing.T) {
	writer := &recordingWriter{err: errors.New("connection refused")}
	mirror := newTestMirror(staticSource{}, writer)
	defer mirror.Close()

	err := mirror.Publish(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Len(t, writer.calls, 1)
}
