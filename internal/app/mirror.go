package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Speshl/gorrc_rover/internal/config"
	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

type snapshotSource interface {
	Snapshot() models.Snapshot
}

type stateWriter interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// StateMirror keeps the latest snapshot in redis under one key. It is not a
// history, every write replaces the last one and the ttl marks the rover
// offline when writes stop.
type StateMirror struct {
	cfg    config.RedisConfig
	client *redis.Client
	writer stateWriter
	source snapshotSource
}

func NewStateMirror(cfg config.RedisConfig, source snapshotSource) *StateMirror {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return &StateMirror{
		cfg:    cfg,
		client: client,
		writer: client,
		source: source,
	}
}

func (m *StateMirror) Start(ctx context.Context, interval time.Duration) error {
	defer m.Close()

	_, err := m.client.Ping(ctx).Result()
	if err != nil {
		log.Printf("redis at %s not reachable, will keep trying - %s", m.cfg.Address, err.Error())
	} else {
		log.Printf("mirroring state to redis key %s", m.cfg.Key)
	}

	if interval <= 0 {
		interval = config.DefaultControlTick
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	failing := false
	for {
		select {
		case <-ctx.Done():
			log.Println("state mirror stopped")
			return nil
		case <-ticker.C:
			err := m.Publish(ctx)
			if err != nil && !failing {
				log.Printf("failed mirroring state - %s", err.Error())
			} else if err == nil && failing {
				log.Println("state mirror recovered")
			}
			failing = err != nil
		}
	}
}

func (m *StateMirror) Publish(ctx context.Context) error {
	encoded, err := encode(m.source.Snapshot())
	if err != nil {
		return err
	}

	err = m.writer.Set(ctx, m.cfg.Key, encoded, m.cfg.TTL).Err()
	if err != nil {
		return fmt.Errorf("failed to save state to Redis: %w", err)
	}
	return nil
}

func (m *StateMirror) Close() error {
	return m.client.Close()
}
