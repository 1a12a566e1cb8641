package server

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/lox/roulette/internal/lobby"
	"github.com/lox/roulette/internal/protocol"
	"github.com/lox/roulette/internal/randutil"
)

func testLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.ErrorLevel})
}

// startTestServer serves a seeded server on an httptest listener and
// returns its websocket URL.
func startTestServer(t *testing.T) (*Server, string) {
	t.Helper()

	seed := int64(1)
	srv := NewServer(Options{
		Lobby: lobby.Config{RandSource: randutil.New(seed)},
		Seed:  &seed,
	}, testLogger())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Stop()
	})
	return srv, "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
}

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dialTestClient(t *testing.T, url string) *testClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("failed to dial %s: %v", url, err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

// hello authenticates the client and records its participant id.
func (c *testClient) hello(name string) {
	c.t.Helper()
	c.send(protocol.TypeHello, protocol.Hello{Name: name})
	var welcome protocol.Welcome
	c.decode(c.waitFor(protocol.TypeWelcome), &welcome)
	c.id = welcome.ParticipantID
}

func (c *testClient) send(typ protocol.MessageType, data any) {
	c.t.Helper()
	msg, err := protocol.NewMessage(typ, data)
	if err != nil {
		c.t.Fatalf("failed to build %s: %v", typ, err)
	}
	if err := c.conn.WriteJSON(msg); err != nil {
		c.t.Fatalf("failed to send %s: %v", typ, err)
	}
}

func (c *testClient) next() protocol.Message {
	c.t.Helper()
	_ = c.conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg protocol.Message
	if err := c.conn.ReadJSON(&msg); err != nil {
		c.t.Fatalf("failed to read message: %v", err)
	}
	return msg
}

// waitFor skips messages until one of the given type arrives.
func (c *testClient) waitFor(typ protocol.MessageType) protocol.Message {
	c.t.Helper()
	for i := 0; i < 500; i++ {
		msg := c.next()
		if msg.Type == typ {
			return msg
		}
	}
	c.t.Fatalf("no %s message received", typ)
	return protocol.Message{}
}

// waitForEvent skips messages until an engine event of the given type arrives.
func (c *testClient) waitForEvent(typ string) protocol.Event {
	c.t.Helper()
	for i := 0; i < 500; i++ {
		msg := c.waitFor(protocol.TypeEvent)
		var ev protocol.Event
		c.decode(msg, &ev)
		if string(ev.Type) == typ {
			return ev
		}
	}
	c.t.Fatalf("no %s event received", typ)
	return protocol.Event{}
}

func (c *testClient) errorCode() string {
	c.t.Helper()
	var e protocol.Error
	c.decode(c.waitFor(protocol.TypeError), &e)
	return e.Code
}

func (c *testClient) decode(msg protocol.Message, v any) {
	c.t.Helper()
	if err := msg.Decode(v); err != nil {
		c.t.Fatalf("failed to decode %s: %v", msg.Type, err)
	}
}
