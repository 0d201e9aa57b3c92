package app

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Speshl/gorrc_rover/internal/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	TransportWebsocket = "websocket"
	TransportSocketIO  = "socketio"
	TransportWebRTC    = "webrtc"
	TransportMQTT      = "mqtt"
)

// Dispatcher is what every transport talks to
type Dispatcher interface {
	Dispatch(ctx context.Context, command string) models.Snapshot
	Refresh(ctx context.Context) models.Snapshot
	Snapshot() models.Snapshot
}

type Session struct {
	ID        uuid.UUID
	Transport string
	Remote    string
	Opened    time.Time
}

func (s Session) Logger() *log.Entry {
	return log.WithFields(log.Fields{
		"session":   s.ID.String(),
		"transport": s.Transport,
	})
}

type SessionRegistry struct {
	lock     sync.Mutex
	sessions map[uuid.UUID]Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[uuid.UUID]Session),
	}
}

func (r *SessionRegistry) Open(transport string, remote string) Session {
	session := Session{
		ID:        uuid.New(),
		Transport: transport,
		Remote:    remote,
		Opened:    time.Now(),
	}

	r.lock.Lock()
	r.sessions[session.ID] = session
	r.lock.Unlock()

	session.Logger().Printf("session opened from %s", remote)
	return session
}

func (r *SessionRegistry) Close(id uuid.UUID) {
	r.lock.Lock()
	session, ok := r.sessions[id]
	delete(r.sessions, id)
	r.lock.Unlock()

	if ok {
		session.Logger().Printf("session closed after %s", time.Since(session.Opened).Round(time.Second))
	}
}

func (r *SessionRegistry) Count() int {
	r.lock.Lock()
	defer r.lock.Unlock()
	return len(r.sessions)
}

// List returns open sessions, oldest first
func (r *SessionRegistry) List() []Session {
	r.lock.Lock()
	sessions := make([]Session, 0, len(r.sessions))
	for _, session := range r.sessions {
		sessions = append(sessions, session)
	}
	r.lock.Unlock()

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].Opened.Before(sessions[j].Opened)
	})
	return sessions
}
