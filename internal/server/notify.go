package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	notifyWriteWait  = 10 * time.Second
	notifyPongWait   = 60 * time.Second
	notifyPingEvery  = (notifyPongWait * 9) / 10
	notifyPendingCap = 64 // disconnect a client whose backlog grows past this
)

var notifyUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// notifier fans a reload/error event out to every connected /ws client.
// Sends are best-effort: a subscriber whose outbound queue backs up past
// notifyPendingCap is dropped rather than allowed to stall a broadcast.
type notifier struct {
	log *slog.Logger

	mu   sync.Mutex
	subs map[*notifySub]struct{}
}

type notifySub struct {
	id     string
	send   chan []byte
	done   chan struct{}
	closed bool // guarded by notifier.mu; unsubscribe and a backpressure drop both close done
}

func newNotifier(log *slog.Logger) *notifier {
	return &notifier{log: log, subs: map[*notifySub]struct{}{}}
}

func (n *notifier) subscribe() *notifySub {
	sub := &notifySub{id: uuid.NewString(), send: make(chan []byte, notifyPendingCap), done: make(chan struct{})}
	n.mu.Lock()
	n.subs[sub] = struct{}{}
	n.mu.Unlock()
	return sub
}

func (n *notifier) unsubscribe(sub *notifySub) {
	n.mu.Lock()
	defer n.mu.Unlock()
	delete(n.subs, sub)
	n.closeSubLocked(sub)
}

// closeSubLocked closes sub.done at most once; callers must hold n.mu.
func (n *notifier) closeSubLocked(sub *notifySub) {
	if sub.closed {
		return
	}
	sub.closed = true
	close(sub.done)
}

func (n *notifier) broadcastReload() {
	n.broadcast([]byte(`{"type":"reload"}`))
}

func (n *notifier) broadcastError(message string) {
	payload, err := json.Marshal(map[string]string{"type": "error", "message": message})
	if err != nil {
		return
	}
	n.broadcast(payload)
}

func (n *notifier) broadcast(payload []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for sub := range n.subs {
		select {
		case sub.send <- payload:
		default:
			// Queue is full: this subscriber is past the pending-message
			// threshold, drop it instead of blocking the rest.
			delete(n.subs, sub)
			n.closeSubLocked(sub)
			n.log.Debug("notify subscriber dropped: pending queue exceeded", "subscriber_id", sub.id, "cap", notifyPendingCap)
		}
	}
}

// handleNotify serves the build-notification channel: on connect, send
// nothing; thereafter relay broadcastReload/broadcastError frames until
// the client disconnects or falls behind.
func (s *Server) handleNotify(w http.ResponseWriter, r *http.Request) {
	conn, err := notifyUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("notify upgrade failed", "err", err)
		return
	}
	sub := s.notify.subscribe()
	defer s.notify.unsubscribe(sub)

	go notifyReadPump(conn)
	notifyWritePump(conn, sub)
}

// notifyReadPump drains and discards client frames (the channel is
// server-to-client only) and tracks liveness via pong deadlines; it exits
// when the connection closes, which the write pump then observes.
func notifyReadPump(conn *websocket.Conn) {
	defer conn.Close()
	conn.SetReadDeadline(time.Now().Add(notifyPongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(notifyPongWait))
		return nil
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func notifyWritePump(conn *websocket.Conn, sub *notifySub) {
	ticker := time.NewTicker(notifyPingEvery)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case msg := <-sub.send:
			conn.SetWriteDeadline(time.Now().Add(notifyWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(notifyWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-sub.done:
			return
		}
	}
}
