package client

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bekalpaslan/cosmograph/internal/domain"
	"github.com/bekalpaslan/cosmograph/internal/events"
)

const writeWait = 10 * time.Second

// Subscriber delivers server push events over a WebSocket connection. One
// Subscribe call owns one connection; the engine resubscribes per session.
type Subscriber struct {
	wsURL string
}

// NewSubscriber creates a subscriber for the server at baseURL. The HTTP
// scheme is rewritten to its WebSocket counterpart.
func NewSubscriber(baseURL string) *Subscriber {
	wsURL := strings.Replace(baseURL, "http", "ws", 1) + "/ws"
	return &Subscriber{wsURL: wsURL}
}

type subscribeMessage struct {
	Action    string `json:"action"`
	SessionID string `json:"session_id"`
}

// Subscribe connects, announces the session, and delivers every parsed
// event to handler from a background goroutine. Events that fail to parse
// are logged and skipped. The returned function closes the connection;
// cancelling ctx does the same.
func (s *Subscriber) Subscribe(ctx context.Context, sessionID string, handler func(events.Event)) (func(), error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.wsURL, nil)
	if err != nil {
		return nil, domain.NewTransportError("dial "+s.wsURL, err)
	}

	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(subscribeMessage{Action: "subscribe", SessionID: sessionID}); err != nil {
		conn.Close()
		return nil, domain.NewTransportError("subscribe session "+sessionID, err)
	}

	var once sync.Once
	closeConn := func() {
		once.Do(func() {
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			conn.Close()
		})
	}

	go func() {
		<-ctx.Done()
		closeConn()
	}()

	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					log.Printf("Push connection closed unexpectedly: %v", err)
				}
				return
			}

			ev, err := events.Parse(data)
			if err != nil {
				log.Printf("Skipping push event: %v", err)
				continue
			}
			handler(ev)
		}
	}()

	return closeConn, nil
}
