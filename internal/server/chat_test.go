package server

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func newTestClient(hub *ChatHub, buffer int) *chatClient {
	return &chatClient{
		hub:    hub,
		send:   make(chan Parcel, buffer),
		userID: uuid.New(),
	}
}

func TestHubBroadcastsToAllClients(t *testing.T) {
	hub := NewChatHub()
	go hub.Run()
	defer hub.Stop()

	a := newTestClient(hub, clientSendBuffer)
	b := newTestClient(hub, clientSendBuffer)
	hub.register <- a
	hub.register <- b

	sent := Parcel{SenderID: a.userID, Body: "hello", SentAt: time.Now().UTC()}
	hub.broadcast <- sent

	for _, c := range []*chatClient{a, b} {
		select {
		case got := <-c.send:
			if got.Body != sent.Body || got.SenderID != sent.SenderID {
				t.Errorf("got parcel %+v, want %+v", got, sent)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for parcel")
		}
	}
}

func TestHubDropsSlowConsumer(t *testing.T) {
	hub := NewChatHub()
	go hub.Run()
	defer hub.Stop()

	slow := newTestClient(hub, 1)
	fast := newTestClient(hub, clientSendBuffer)
	hub.register <- slow
	hub.register <- fast

	// Two parcels overflow the slow client's single-slot buffer.
	hub.broadcast <- Parcel{Body: "one"}
	hub.broadcast <- Parcel{Body: "two"}

	// The fast client still receives both.
	for _, want := range []string{"one", "two"} {
		select {
		case got := <-fast.send:
			if got.Body != want {
				t.Errorf("fast client got %q, want %q", got.Body, want)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for parcel on fast client")
		}
	}

	// The slow client's channel was closed after the drop; drain the one
	// buffered parcel and observe the close.
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-slow.send:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("slow client channel was never closed")
		}
	}
}

func TestHubUnregisterClosesSendChannel(t *testing.T) {
	hub := NewChatHub()
	go hub.Run()
	defer hub.Stop()

	c := newTestClient(hub, clientSendBuffer)
	hub.register <- c
	hub.unregister <- c

	select {
	case _, ok := <-c.send:
		if ok {
			t.Error("expected closed channel after unregister")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for channel close")
	}
}

func TestHubStopIsIdempotent(t *testing.T) {
	hub := NewChatHub()
	go hub.Run()

	hub.Stop()
	hub.Stop() // must not panic
}
