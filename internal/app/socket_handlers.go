package app

import (
	"github.com/Speshl/gorrc_rover/internal/models"
	socketio "github.com/googollee/go-socket.io"
	"github.com/pion/webrtc/v3"
	log "github.com/sirupsen/logrus"
)

const socketNamespace = "/"

func (a *App) newSocketServer() *socketio.Server {
	server := socketio.NewServer(nil)

	server.OnConnect(socketNamespace, a.onSocketConnect)
	server.OnEvent(socketNamespace, "command", a.onSocketCommand)
	server.OnEvent(socketNamespace, "offer", a.onOffer)
	server.OnEvent(socketNamespace, "candidate", a.onICECandidate)
	server.OnError(socketNamespace, a.onSocketError)
	server.OnDisconnect(socketNamespace, a.onSocketDisconnect)
	return server
}

func (a *App) onSocketConnect(socketConn socketio.Conn) error {
	session := a.sessions.Open(TransportSocketIO, socketConn.RemoteAddr().String())
	socketConn.SetContext(session)

	a.emitState(socketConn, a.rover.Refresh(a.ctx))
	return nil
}

func (a *App) onSocketCommand(socketConn socketio.Conn, msg string) {
	sessionLogger(socketConn).Debugf("received command: %s", msg)
	a.emitState(socketConn, a.rover.Dispatch(a.ctx, msg))
}

func (a *App) emitState(socketConn socketio.Conn, snapshot models.Snapshot) {
	encodedMsg, err := encode(snapshot)
	if err != nil {
		sessionLogger(socketConn).Printf("failed encoding state - %s", err.Error())
		return
	}
	socketConn.Emit("state", encodedMsg)
}

func (a *App) onSocketError(socketConn socketio.Conn, err error) {
	if socketConn == nil {
		log.Printf("socket.io error: %s", err)
		return
	}
	sessionLogger(socketConn).Printf("socket.io error: %s", err)
}

func (a *App) onSocketDisconnect(socketConn socketio.Conn, reason string) {
	a.dropConnection(socketConn.ID())
	if session, ok := socketConn.Context().(Session); ok {
		a.sessions.Close(session.ID)
	}
	log.Printf("socket %s disconnected: %s", socketConn.ID(), reason)
}

func sessionLogger(socketConn socketio.Conn) *log.Entry {
	if session, ok := socketConn.Context().(Session); ok {
		return session.Logger()
	}
	return log.WithField("socket", socketConn.ID())
}

func (a *App) onOffer(socketConn socketio.Conn, msg string) {
	logger := sessionLogger(socketConn)
	if !a.cfg.ServerCfg.WebRTCEnabled {
		logger.Println("ignoring offer, webrtc is disabled")
		return
	}

	offer := models.Offer{}
	err := decode(msg, &offer)
	if err != nil {
		logger.Printf("offer failed unmarshaling: %s - msg - %s", err.Error(), msg)
		return
	}

	newConnection, err := NewConnection(a.ctx, socketConn, a.rover, a.sessions, a.cfg.ServerCfg.StunServer)
	if err != nil {
		logger.Printf("failed creating connection on offer: %s", err.Error())
		return
	}
	newConnection.RegisterHandlers()

	// Set the received offer as the remote description
	err = newConnection.PeerConnection.SetRemoteDescription(offer.Offer)
	if err != nil {
		logger.Printf("failed to set remote description: %s", err)
		newConnection.Disconnect()
		return
	}

	answer, err := newConnection.PeerConnection.CreateAnswer(nil)
	if err != nil {
		logger.Printf("failed to create answer: %s", err)
		newConnection.Disconnect()
		return
	}

	// blocks until ICE gathering is complete, there is only one signalling round trip
	gatherComplete := webrtc.GatheringCompletePromise(newConnection.PeerConnection)

	err = newConnection.PeerConnection.SetLocalDescription(answer)
	if err != nil {
		logger.Printf("failed to set local description: %s", err)
		newConnection.Disconnect()
		return
	}
	<-gatherComplete

	a.storeConnection(socketConn.ID(), newConnection)

	encodedAnswer, err := encode(models.Answer{
		Answer:    newConnection.PeerConnection.LocalDescription(),
		SessionId: newConnection.Session.ID,
	})
	if err != nil {
		logger.Printf("failed encoding answer: %s", err.Error())
		return
	}
	logger.Printf("sending answer for client session %s", offer.SessionId)
	socketConn.Emit("answer", encodedAnswer)
}

func (a *App) onICECandidate(socketConn socketio.Conn, msg string) {
	logger := sessionLogger(socketConn)
	candidate := models.IceCandidate{}
	err := decode(msg, &candidate)
	if err != nil {
		logger.Printf("ice candidate failed unmarshaling: %s", msg)
		return
	}

	connection, ok := a.connection(socketConn.ID())
	if !ok {
		logger.Println("ice candidate for unknown connection")
		return
	}
	err = connection.PeerConnection.AddICECandidate(candidate.Candidate)
	if err != nil {
		logger.Printf("failed adding ice candidate: %s", err.Error())
	}
}

func (a *App) storeConnection(socketID string, conn *Connection) {
	a.connLock.Lock()
	previous, ok := a.userConns[socketID]
	a.userConns[socketID] = conn
	a.connLock.Unlock()

	if ok {
		previous.Disconnect()
	}
}

func (a *App) connection(socketID string) (*Connection, bool) {
	a.connLock.Lock()
	defer a.connLock.Unlock()
	conn, ok := a.userConns[socketID]
	return conn, ok
}

func (a *App) dropConnection(socketID string) {
	a.connLock.Lock()
	conn, ok := a.userConns[socketID]
	delete(a.userConns, socketID)
	a.connLock.Unlock()

	if ok {
		conn.Disconnect()
	}
}

func (a *App) dropAllConnections() {
	a.connLock.Lock()
	conns := a.userConns
	a.userConns = make(map[string]*Connection)
	a.connLock.Unlock()

	for _, conn := range conns {
		conn.Disconnect()
	}
}
