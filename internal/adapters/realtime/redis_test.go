package realtime

import (
	"context"
	"testing"
	"time"

	"github.com/goccy/go-json"
	goredis "github.com/redis/go-redis/v9"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/mentorlink/pkg/logger"
)

// fakeClient registers a client without a websocket connection.
func fakeClient(h *Hub, userID string) *Client {
	c := &Client{id: clientIDCounter.Add(1), userID: userID, hub: h, send: make(chan []byte, sendBuffer), logger: h.logger}
	h.register(c)
	return c
}

func unreachableBridge(h *Hub) *RedisBridge {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	return newRedisBridge(rdb, "test:", h)
}

func TestRedisBridgeFallback(t *testing.T) {
	_ = logger.Init()

	Convey("Given a bridge whose redis is unreachable", t, func() {
		ctx := context.Background()
		hub := NewHub()
		bridge := unreachableBridge(hub)
		defer bridge.Close()
		c := fakeClient(hub, "bob")

		Convey("When a message is published", func() {
			msg, _ := NewMessage(TypeReceiveMessage, map[string]string{"text": "hi"})
			err := bridge.Publish(ctx, "bob", msg)

			Convey("Then it is delivered locally", func() {
				So(err, ShouldBeNil)
				frame := <-c.send
				var got Message
				So(json.Unmarshal(frame, &got), ShouldBeNil)
				So(got.Type, ShouldEqual, TypeReceiveMessage)
			})
		})

		Convey("When failures keep happening", func() {
			for i := 0; i < breakerFailureThreshold; i++ {
				_ = bridge.Publish(ctx, "bob", Message{Type: TypePing})
				<-c.send
			}

			Convey("Then the breaker opens and delivery stays local", func() {
				So(bridge.BreakerState(), ShouldEqual, "open")
				So(bridge.Publish(ctx, "bob", Message{Type: TypePing}), ShouldBeNil)
				So(c.send, ShouldHaveLength, 1)
			})
		})

		Convey("When the subscription cannot be established", func() {
			runCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
			defer cancel()

			Convey("Then Run waits for cancellation instead of failing", func() {
				So(bridge.Run(runCtx), ShouldBeNil)
			})
		})
	})
}

func TestRedisBridgeRelay(t *testing.T) {
	_ = logger.Init()

	Convey("Given a bridge and a local client", t, func() {
		hub := NewHub()
		bridge := unreachableBridge(hub)
		defer bridge.Close()
		c := fakeClient(hub, "carol")

		Convey("When an envelope arrives from redis", func() {
			msg, _ := NewMessage(TypeRankUpdated, map[string]int{"rank": 4})
			payload, _ := json.Marshal(envelope{UserID: "carol", Message: msg})
			bridge.relay(context.Background(), "test:user:carol", string(payload))

			Convey("Then the client receives the inner message", func() {
				So(c.send, ShouldHaveLength, 1)
				var got Message
				So(json.Unmarshal(<-c.send, &got), ShouldBeNil)
				So(got.Type, ShouldEqual, TypeRankUpdated)
				So(string(got.Data), ShouldEqual, `{"rank":4}`)
			})
		})

		Convey("When the payload lacks a user id", func() {
			payload, _ := json.Marshal(envelope{Message: Message{Type: TypePing}})
			bridge.relay(context.Background(), "test:user:carol", string(payload))
			So(c.send, ShouldHaveLength, 1)
		})

		Convey("When the payload is garbage", func() {
			bridge.relay(context.Background(), "test:user:carol", "{")
			So(c.send, ShouldHaveLength, 0)
		})
	})
}
