package realtime_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
	"github.com/okian/mentorlink/internal/adapters/realtime"
	"github.com/okian/mentorlink/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func eventually(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}

func dial(srv *httptest.Server, user string) (*websocket.Conn, error) {
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/?user=" + user
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	return conn, err
}

func readMessage(conn *websocket.Conn) (realtime.Message, error) {
	var msg realtime.Message
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		return msg, err
	}
	err = json.Unmarshal(data, &msg)
	return msg, err
}

func TestHub(t *testing.T) {
	_ = logger.Init()

	Convey("Given a hub behind a test server", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		hub := realtime.NewHub()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_ = hub.Serve(w, r, r.URL.Query().Get("user"))
		}))
		defer srv.Close()

		alice, err := dial(srv, "alice")
		So(err, ShouldBeNil)
		defer alice.Close()
		So(eventually(func() bool { return hub.Connected("alice") }), ShouldBeTrue)

		Convey("When a message is published to a connected user", func() {
			msg, err := realtime.NewMessage(realtime.TypeReceiveMessage, map[string]string{"text": "hello"})
			So(err, ShouldBeNil)
			So(hub.Publish(ctx, "alice", msg), ShouldBeNil)

			Convey("Then the user receives it", func() {
				got, err := readMessage(alice)
				So(err, ShouldBeNil)
				So(got.Type, ShouldEqual, realtime.TypeReceiveMessage)
				So(string(got.Data), ShouldEqual, `{"text":"hello"}`)
			})
		})

		Convey("When a user has two connections", func() {
			second, err := dial(srv, "alice")
			So(err, ShouldBeNil)
			defer second.Close()
			So(eventually(func() bool { return hub.ClientCount() == 2 }), ShouldBeTrue)

			msg, _ := realtime.NewMessage(realtime.TypeMessageSent, nil)
			So(hub.Publish(ctx, "alice", msg), ShouldBeNil)

			Convey("Then both receive the message", func() {
				a, err := readMessage(alice)
				So(err, ShouldBeNil)
				b, err := readMessage(second)
				So(err, ShouldBeNil)
				So(a.Type, ShouldEqual, realtime.TypeMessageSent)
				So(b.Type, ShouldEqual, realtime.TypeMessageSent)
			})
		})

		Convey("When the client sends a ping", func() {
			So(alice.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)), ShouldBeNil)

			Convey("Then it gets a pong", func() {
				got, err := readMessage(alice)
				So(err, ShouldBeNil)
				So(got.Type, ShouldEqual, realtime.TypePong)
			})
		})

		Convey("When publishing without a recipient", func() {
			err := hub.Publish(ctx, "", realtime.Message{Type: realtime.TypePing})
			So(errors.Is(err, realtime.ErrNoRecipient), ShouldBeTrue)
		})

		Convey("When the client disconnects", func() {
			So(alice.Close(), ShouldBeNil)

			Convey("Then the hub forgets it", func() {
				So(eventually(func() bool { return hub.ClientCount() == 0 }), ShouldBeTrue)
				So(hub.Connected("alice"), ShouldBeFalse)
			})
		})

		Convey("When the hub stops", func() {
			runCtx, stop := context.WithCancel(ctx)
			done := make(chan error, 1)
			go func() { done <- hub.Run(runCtx) }()
			stop()

			Convey("Then clients are closed and publishing fails", func() {
				So(<-done, ShouldBeNil)
				So(hub.ClientCount(), ShouldEqual, 0)
				_, err := readMessage(alice)
				So(err, ShouldNotBeNil)
				So(errors.Is(hub.Publish(ctx, "alice", realtime.Message{Type: realtime.TypePing}), realtime.ErrHubStopped), ShouldBeTrue)
			})
		})
	})
}
