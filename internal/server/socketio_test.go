package server

import (
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// fakeSocketioUpstream speaks just enough Engine.IO v4 + Socket.IO v4 to
// satisfy dialSocketioUpstream's handshake and echo one EVENT packet back
// with its arguments reversed, so a round trip through the relay is
// observable from the test's client side.
func fakeSocketioUpstream(t *testing.T) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"upstream-sid","upgrades":[],"pingInterval":25000,"pingTimeout":20000}`))
		_, _, _ = conn.ReadMessage() // "40" connect
		conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"upstream-sid"}`))
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if len(data) >= 2 && data[0] == eioMessage && data[1] == sioEvent {
				conn.WriteMessage(websocket.TextMessage, data) // echo
			}
		}
	})
	return httptest.NewServer(mux)
}

func TestSocketioRelayRejectsNonV4(t *testing.T) {
	t.Parallel()
	s := testServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sio-relay?target=http://example.invalid&EIO=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", resp.StatusCode)
	}
}

func TestSocketioRelayMissingTarget(t *testing.T) {
	t.Parallel()
	s := testServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/sio-relay")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", resp.StatusCode)
	}
}

// TestSocketioRelayDrainsBeforeClosingPeer closes the upstream side
// immediately after the handshake and confirms the relay keeps the
// client leg open for the drain window rather than severing it the
// instant the upstream read loop errors.
func TestSocketioRelayDrainsBeforeClosingPeer(t *testing.T) {
	// Not t.Parallel(): mutates the shared socketioDrainWindow.
	old := socketioDrainWindow
	socketioDrainWindow = 150 * time.Millisecond
	defer func() { socketioDrainWindow = old }()

	upgrader := websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}
	mux := http.NewServeMux()
	mux.HandleFunc("/socket.io/", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		conn.WriteMessage(websocket.TextMessage, []byte(`0{"sid":"upstream-sid","upgrades":[],"pingInterval":25000,"pingTimeout":20000}`))
		_, _, _ = conn.ReadMessage() // "40" connect
		conn.WriteMessage(websocket.TextMessage, []byte(`40{"sid":"upstream-sid"}`))
		conn.Close() // close immediately: the client leg should survive the drain window
	})
	upstream := httptest.NewServer(mux)
	defer upstream.Close()

	s := testServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	relayURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sio-relay?target=" + url.QueryEscape(upstream.URL)
	conn, _, err := websocket.DefaultDialer.Dial(relayURL, nil)
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read open: %v", err)
	}
	if err := conn.WriteMessage(websocket.TextMessage, []byte{eioMessage, sioConnect}); err != nil {
		t.Fatalf("write connect: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read connect ack: %v", err)
	}

	// The upstream has already closed by this point, but within the
	// drain window the client leg must still be open: a short read
	// should time out (no data), not fail with a close error. The probes
	// read the underlying TCP connection: after a timed-out read the
	// websocket.Conn returns that same timeout error on every later read.
	raw := conn.UnderlyingConn()
	buf := make([]byte, 1)
	raw.SetReadDeadline(time.Now().Add(50 * time.Millisecond))
	_, err = raw.Read(buf)
	if netErr, ok := err.(net.Error); !ok || !netErr.Timeout() {
		t.Fatalf("expected a read timeout during the drain window, got %v", err)
	}

	// Past the drain window the relay must have force-closed the client leg.
	raw.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err = raw.Read(buf)
	if err == nil {
		t.Fatal("expected the client leg to be closed after the drain window")
	}
	if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
		t.Fatalf("client leg was not closed after the drain window: %v", err)
	}
}

func TestSocketioRelayBridgesHandshakeAndEvent(t *testing.T) {
	t.Parallel()
	upstream := fakeSocketioUpstream(t)
	defer upstream.Close()

	s := testServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	relayURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/sio-relay?target=" + url.QueryEscape(upstream.URL)
	conn, _, err := websocket.DefaultDialer.Dial(relayURL, nil)
	if err != nil {
		t.Fatalf("dial relay: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, open, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read open: %v", err)
	}
	if len(open) == 0 || open[0] != eioOpen {
		t.Fatalf("got %q, want an Engine.IO open packet", open)
	}

	if err := conn.WriteMessage(websocket.TextMessage, []byte{eioMessage, sioConnect}); err != nil {
		t.Fatalf("write connect: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, ack, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read connect ack: %v", err)
	}
	if len(ack) < 2 || ack[0] != eioMessage || ack[1] != sioConnect {
		t.Fatalf("got %q, want a Socket.IO connect ack", ack)
	}

	event := []byte(`42["ping",1,2]`)
	if err := conn.WriteMessage(websocket.TextMessage, event); err != nil {
		t.Fatalf("write event: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, echoed, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read echoed event: %v", err)
	}
	if len(echoed) < 2 || echoed[0] != eioMessage || echoed[1] != sioEvent {
		t.Fatalf("got %q, want a relayed EVENT packet", echoed)
	}
	if !strings.Contains(string(echoed), `"ping"`) {
		t.Fatalf("event name was not preserved: %q", echoed)
	}
}
