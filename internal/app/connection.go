package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Speshl/gorrc_rover/internal/models"
	socketio "github.com/googollee/go-socket.io"
	"github.com/pion/webrtc/v3"
	log "github.com/sirupsen/logrus"
)

// Connection is one browser peer driving over webrtc data channels. The
// signalling happens on its socket.io connection.
type Connection struct {
	Session        Session
	Socket         socketio.Conn
	PeerConnection *webrtc.PeerConnection
	Ctx            context.Context
	CtxCancel      context.CancelFunc

	dispatcher Dispatcher
	sessions   *SessionRegistry
	logger     *log.Entry

	lock       sync.Mutex
	PingOutput *webrtc.DataChannel
	PingInput  chan int64
	closed     bool
}

func NewConnection(ctx context.Context, socketConn socketio.Conn, dispatcher Dispatcher, sessions *SessionRegistry, stunServer string) (*Connection, error) {
	peerConnection, err := webrtc.NewPeerConnection(webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{
			{
				URLs: []string{stunServer},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error creating peer connection: %w", err)
	}

	session := sessions.Open(TransportWebRTC, socketConn.RemoteAddr().String())
	connCtx, cancel := context.WithCancel(ctx)
	conn := &Connection{
		Session:        session,
		Socket:         socketConn,
		PeerConnection: peerConnection,
		Ctx:            connCtx,
		CtxCancel:      cancel,
		dispatcher:     dispatcher,
		sessions:       sessions,
		logger:         session.Logger(),
		PingInput:      make(chan int64, 10),
	}
	return conn, nil
}

func (c *Connection) Disconnect() {
	c.lock.Lock()
	if c.closed {
		c.lock.Unlock()
		return
	}
	c.closed = true
	c.lock.Unlock()

	c.logger.Println("user disconnecting")
	c.CtxCancel()
	c.sessions.Close(c.Session.ID)
	err := c.PeerConnection.Close()
	if err != nil {
		c.logger.Printf("error closing peer connection - %s", err.Error())
	}
}

func (c *Connection) RegisterHandlers() {
	c.PeerConnection.OnICEConnectionStateChange(c.onICEConnectionStateChange)
	c.PeerConnection.OnConnectionStateChange(c.onConnectionStateChange)
	c.PeerConnection.OnICECandidate(c.onICECandidate)
	c.PeerConnection.OnDataChannel(c.onDataChannel)

	go c.pingLoop()
}

func (c *Connection) pingLoop() {
	pingTicker := time.NewTicker(1 * time.Second)
	defer pingTicker.Stop()
	lastPing := int64(0)
	for {
		select {
		case <-c.Ctx.Done():
			c.logger.Printf("stopping ping loop: %s", c.Ctx.Err().Error())
			return
		case <-pingTicker.C:
			c.lock.Lock()
			pingOutput := c.PingOutput
			c.lock.Unlock()
			if pingOutput == nil {
				continue
			}

			data, err := json.Marshal(models.Ping{
				TimeStamp: time.Now().UnixMilli(),
				Source:    PingSourceName,
			})
			if err != nil {
				c.logger.Printf("error: failed encoding ping - %s", err.Error())
				continue
			}
			err = pingOutput.Send(data)
			if err != nil {
				c.logger.Printf("error: failed sending ping - %s", err.Error())
			}
		case receivedPing := <-c.PingInput:
			if receivedPing != lastPing {
				c.logger.Debugf("ping: %d ms", receivedPing)
			}
			lastPing = receivedPing
		}
	}
}
