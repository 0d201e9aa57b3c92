package app

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

const websocketWriteWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// WebsocketHandler serves the browser and relay clients. Each text frame is
// one command and gets exactly one snapshot back.
type WebsocketHandler struct {
	dispatcher Dispatcher
	sessions   *SessionRegistry
}

func NewWebsocketHandler(dispatcher Dispatcher, sessions *SessionRegistry) *WebsocketHandler {
	return &WebsocketHandler{
		dispatcher: dispatcher,
		sessions:   sessions,
	}
}

func (h *WebsocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("failed upgrading websocket from %s - %s", r.RemoteAddr, err.Error())
		return
	}
	defer ws.Close()

	session := h.sessions.Open(TransportWebsocket, r.RemoteAddr)
	defer h.sessions.Close(session.ID)
	logger := session.Logger()
	ctx := r.Context()

	err = h.send(ws, h.dispatcher.Refresh(ctx))
	if err != nil {
		logger.Printf("failed sending initial state - %s", err.Error())
		return
	}

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Printf("client disconnected - %s", err.Error())
			}
			return
		}
		if msgType != websocket.TextMessage {
			logger.Printf("ignoring non text message type %d", msgType)
			continue
		}

		logger.Debugf("received command: %s", data)
		snapshot := h.dispatcher.Dispatch(ctx, string(data))

		err = h.send(ws, snapshot)
		if err != nil {
			logger.Printf("failed sending state - %s", err.Error())
			return
		}
	}
}

func (h *WebsocketHandler) send(ws *websocket.Conn, msg any) error {
	err := ws.SetWriteDeadline(time.Now().Add(websocketWriteWait))
	if err != nil {
		return err
	}
	return ws.WriteJSON(msg)
}
