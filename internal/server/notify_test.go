package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func slogDiscard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dialNotify(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial /ws: %v", err)
	}
	return conn
}

func TestNotifyBroadcastsReloadAfterSwap(t *testing.T) {
	t.Parallel()
	s := testServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialNotify(t, srv)
	defer conn.Close()

	s.Swap(nil)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got["type"] != "reload" {
		t.Fatalf("got %#v", got)
	}
}

func TestNotifyBroadcastsErrorOnFailedRebuild(t *testing.T) {
	t.Parallel()
	s := testServer(t, nil)
	srv := httptest.NewServer(s.Handler())
	defer srv.Close()

	conn := dialNotify(t, srv)
	defer conn.Close()

	s.ReportBuildError("boom")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if got["type"] != "error" || got["message"] != "boom" {
		t.Fatalf("got %#v", got)
	}
}

func TestNotifierDropsSubscriberPastPendingCap(t *testing.T) {
	t.Parallel()
	n := newNotifier(slogDiscard())
	sub := n.subscribe()

	// No write pump is draining sub.send, so once the buffered channel
	// (capacity notifyPendingCap) fills, the next broadcast must drop it.
	for i := 0; i < notifyPendingCap+1; i++ {
		n.broadcastReload()
	}

	n.mu.Lock()
	_, stillSubscribed := n.subs[sub]
	n.mu.Unlock()
	if stillSubscribed {
		t.Fatal("subscriber should have been dropped past the pending cap")
	}
	select {
	case <-sub.done:
	default:
		t.Fatal("dropped subscriber's done channel was not closed")
	}
}
