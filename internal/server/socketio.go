package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/schema"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
)

var sioQueryDecoder = schema.NewDecoder()

func init() {
	sioQueryDecoder.IgnoreUnknownKeys(true)
}

// sioRelayQuery decodes /sio-relay's query string via gorilla/schema,
// matching the pattern broady-tygor uses for its RPC query binding.
type sioRelayQuery struct {
	Target string `schema:"target"`
	EIO    string `schema:"EIO"`
}

// safeConn serializes writes to a *websocket.Conn, which gorilla/websocket
// requires when, as here, both relay directions may write to the same
// physical connection (forwarded frames on one side, ping/pong replies on
// the other).
type safeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *safeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

// Engine.IO v4 packet type prefixes (a single ASCII digit prepended to the
// packet payload).
const (
	eioOpen    = '0'
	eioClose   = '1'
	eioPing    = '2'
	eioPong    = '3'
	eioMessage = '4'
)

// Socket.IO v4 packet types, carried inside an Engine.IO message packet.
const (
	sioConnect      = '0'
	sioDisconnect   = '1'
	sioEvent        = '2'
	sioAck          = '3'
	sioConnectError = '4'
)

// socketioDrainWindow bounds how long a still-open relay leg may continue
// operating after its peer closes, before it is force-closed; a var (not
// a const) so tests can shrink it. Any write already in flight on the
// peer connection races the AfterFunc-scheduled close rather than being
// cut off synchronously.
var socketioDrainWindow = 2 * time.Second

var relayUpgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(*http.Request) bool { return true },
}

type engineOpenPayload struct {
	Sid          string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
}

// handleSocketioRelay serves the Socket.IO relay: GET
// /sio-relay?target=<url> upgrades the browser to WebSocket, dials
// target as an Engine.IO v4 websocket client, and bridges Socket.IO
// frames in both directions without reinterpreting event names. Engine.IO
// v2/v3 targets are rejected rather than downgraded.
func (s *Server) handleSocketioRelay(w http.ResponseWriter, r *http.Request) {
	var q sioRelayQuery
	if err := sioQueryDecoder.Decode(&q, r.URL.Query()); err != nil {
		http.Error(w, "malformed query parameters", http.StatusBadRequest)
		return
	}
	if q.Target == "" {
		http.Error(w, "missing target query parameter", http.StatusBadRequest)
		return
	}
	if q.EIO != "" && q.EIO != "4" {
		http.Error(w, fmt.Sprintf("unsupported Engine.IO protocol version %q: only v4 clients are relayed", q.EIO), http.StatusBadRequest)
		return
	}
	relayID := uuid.NewString()

	upstreamRaw, upstreamOpen, err := dialSocketioUpstream(q.Target)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to reach socket.io target: %v", err), http.StatusBadGateway)
		return
	}
	upstream := &safeConn{Conn: upstreamRaw}
	defer upstream.Close()

	clientRaw, err := relayUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Debug("sio-relay upgrade failed", "err", err)
		return
	}
	client := &safeConn{Conn: clientRaw}
	defer client.Close()

	localSid := upstreamOpen.Sid
	openPayload, err := json.Marshal(engineOpenPayload{
		Sid: localSid, Upgrades: []string{}, PingInterval: upstreamOpen.PingInterval, PingTimeout: upstreamOpen.PingTimeout,
	})
	if err != nil {
		return
	}
	if err := client.WriteMessage(websocket.TextMessage, []byte(string(eioOpen)+string(openPayload))); err != nil {
		return
	}

	if err := requireV4Handshake(client); err != nil {
		client.WriteMessage(websocket.TextMessage, []byte(string(eioMessage)+string(sioConnectError)+`{"message":"`+err.Error()+`"}`))
		return
	}
	client.WriteMessage(websocket.TextMessage, []byte(string(eioMessage)+string(sioConnect)+`{"sid":"`+localSid+`"}`))

	var closeOnce sync.Once
	done := make(chan struct{})
	closeDone := func() { closeOnce.Do(func() { close(done) }) }

	var drainWg sync.WaitGroup
	scheduleClose := func(conn *safeConn) {
		drainWg.Add(1)
		time.AfterFunc(socketioDrainWindow, func() {
			conn.Close()
			drainWg.Done()
		})
	}

	var g errgroup.Group
	g.Go(func() error {
		relaySocketioDirection(upstream, client, done, closeDone, func() { scheduleClose(client) })
		return nil
	})
	g.Go(func() error {
		relaySocketioDirection(client, upstream, done, closeDone, func() { scheduleClose(upstream) })
		return nil
	})
	g.Wait()
	drainWg.Wait()
	s.log.Debug("sio-relay closed", "relay_id", relayID, "target", q.Target)
}

// requireV4Handshake reads the browser's first post-open frame and
// rejects anything that isn't a v4 "40"-style connect packet. A v2 client
// sends a bare "1" (engine.io v2 has no leading open-ack requirement) or
// omits the Socket.IO packet-type digit entirely; either shape fails the
// sioConnect prefix check below rather than being silently bridged.
func requireV4Handshake(conn *safeConn) error {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	_, data, err := conn.ReadMessage()
	if err != nil {
		return fmt.Errorf("handshake read failed: %w", err)
	}
	if len(data) < 2 || data[0] != eioMessage || data[1] != sioConnect {
		return fmt.Errorf("expected a Socket.IO v4 connect packet, got %q", string(data))
	}
	return nil
}

// dialSocketioUpstream opens an Engine.IO v4 websocket connection to
// target's socket.io endpoint and completes the Socket.IO connect
// handshake, returning the upstream's open packet for sid/ping reuse.
func dialSocketioUpstream(target string) (*websocket.Conn, *engineOpenPayload, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, nil, err
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	case "ws", "wss":
	default:
		return nil, nil, fmt.Errorf("unsupported target scheme %q", u.Scheme)
	}
	if !strings.Contains(u.Path, "/socket.io/") {
		u.Path = strings.TrimRight(u.Path, "/") + "/socket.io/"
	}
	q := u.Query()
	q.Set("EIO", "4")
	q.Set("transport", "websocket")
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return nil, nil, err
	}

	_, data, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("no open packet from upstream: %w", err)
	}
	if len(data) == 0 || data[0] != eioOpen {
		conn.Close()
		return nil, nil, fmt.Errorf("upstream did not send an Engine.IO v4 open packet")
	}
	var open engineOpenPayload
	if err := json.Unmarshal(data[1:], &open); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("malformed open packet: %w", err)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte(string(eioMessage)+string(sioConnect))); err != nil {
		conn.Close()
		return nil, nil, err
	}
	_, ack, err := conn.ReadMessage()
	if err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("no connect ack from upstream: %w", err)
	}
	if len(ack) < 2 || ack[0] != eioMessage || ack[1] != sioConnect {
		conn.Close()
		return nil, nil, fmt.Errorf("upstream rejected the Socket.IO connect handshake")
	}

	return conn, &open, nil
}

// relaySocketioDirection copies frames from src to dst, re-encoding EVENT
// packet arguments through JSON to preserve argument fidelity while
// leaving namespace and event name untouched. Engine.IO ping/pong frames
// are answered locally rather than forwarded, since each leg keeps its
// own Engine.IO session with its own peer.
//
// When src closes (read error or an eioClose packet), dst is not closed
// synchronously: scheduleDstClose defers the actual close so any frame
// the peer direction is still writing to dst gets a drain window to land
// before the connection is torn down.
func relaySocketioDirection(src, dst *safeConn, done chan struct{}, closeDone func(), scheduleDstClose func()) {
	defer func() {
		closeDone()
		scheduleDstClose()
	}()
	for {
		msgType, data, err := src.ReadMessage()
		if err != nil {
			return
		}
		if len(data) == 0 {
			continue
		}
		switch data[0] {
		case eioPing:
			src.WriteMessage(websocket.TextMessage, []byte{eioPong})
			continue
		case eioPong:
			continue
		case eioClose:
			return
		case eioMessage:
			forwarded, ok := reencodeSocketioPacket(data)
			if !ok {
				forwarded = data
			}
			if err := dst.WriteMessage(msgType, forwarded); err != nil {
				return
			}
		default:
			if err := dst.WriteMessage(msgType, data); err != nil {
				return
			}
		}

		select {
		case <-done:
			return
		default:
		}
	}
}

// reencodeSocketioPacket decodes an EVENT packet's JSON argument array and
// re-marshals it, a faithful round-trip rather than a byte-for-byte
// passthrough. Non-EVENT packet types (CONNECT, DISCONNECT, ACK) pass
// through unchanged.
func reencodeSocketioPacket(data []byte) ([]byte, bool) {
	if len(data) < 2 || data[1] != sioEvent {
		return nil, false
	}
	rest := data[2:]
	namespace := ""
	if len(rest) > 0 && rest[0] == '/' {
		if comma := strings.IndexByte(string(rest), ','); comma >= 0 {
			namespace = string(rest[:comma])
			rest = rest[comma+1:]
		}
	}
	var args []any
	if err := json.Unmarshal(rest, &args); err != nil {
		return nil, false
	}
	reencoded, err := json.Marshal(args)
	if err != nil {
		return nil, false
	}
	var b strings.Builder
	b.WriteByte(eioMessage)
	b.WriteByte(sioEvent)
	if namespace != "" {
		b.WriteString(namespace)
		b.WriteByte(',')
	}
	b.Write(reencoded)
	return []byte(b.String()), true
}
