package natsrelay

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-social/internal/registry"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/nats-io/nats-server/v2/server"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/require"
)

func runServer(t *testing.T) *server.Server {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: server.RANDOM_PORT, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatalf("nats server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns
}

func newInstance(t *testing.T, url string) (*Relay, *registry.Registry) {
	t.Helper()
	conn, err := Connect(context.Background(), url, 3, nil)
	require.NoError(t, err)
	local := registry.New()
	relay, err := New(conn, local, WithPrefix("test.groups"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = relay.Close() })
	return relay, local
}

func receive(t *testing.T, m *registry.Member) string {
	t.Helper()
	select {
	case frame := <-m.Outbound():
		return string(frame)
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame")
		return ""
	}
}

func TestRelayDeliversAcrossInstances(t *testing.T) {
	ns := runServer(t)
	relayA, localA := newInstance(t, ns.ClientURL())
	_, localB := newInstance(t, ns.ClientURL())

	onA := registry.NewMember("bob", 4)
	onB := registry.NewMember("bob", 4)
	localA.Join("bob", onA)
	localB.Join("bob", onB)
	other := registry.NewMember("carol", 4)
	localB.Join("carol", other)

	err := relayA.Broadcast(context.Background(), broadcaster.Event{Group: "bob", Payload: map[string]string{"type": "receive"}})
	require.NoError(t, err)

	require.JSONEq(t, `{"type":"receive"}`, receive(t, onA))
	require.JSONEq(t, `{"type":"receive"}`, receive(t, onB))
	require.Len(t, other.Outbound(), 0)

	// the publishing instance only sees its message once
	time.Sleep(50 * time.Millisecond)
	require.Len(t, onA.Outbound(), 0)
}

func TestRelaySubject(t *testing.T) {
	ns := runServer(t)
	relay, _ := newInstance(t, ns.ClientURL())
	require.Equal(t, "test.groups.bm90aWZpY2F0aW9ucw", relay.Subject(broadcaster.GlobalGroup))

	group, ok := relay.Group(relay.Subject("a..b"))
	require.True(t, ok)
	require.Equal(t, "a..b", group)

	_, ok = relay.Group("other.prefix.bm90aWZpY2F0aW9ucw")
	require.False(t, ok)
	_, ok = relay.Group("test.groups.!!")
	require.False(t, ok)
}

func TestRelayDeliversDottedGroupNames(t *testing.T) {
	ns := runServer(t)
	relayA, _ := newInstance(t, ns.ClientURL())
	_, localB := newInstance(t, ns.ClientURL())

	for _, name := range []string{"bob.smith", "bob.", ".bob", "a..b", "x y*>"} {
		member := registry.NewMember(name, 1)
		localB.Join(name, member)
		err := relayA.Broadcast(context.Background(), broadcaster.Event{Group: name, Payload: map[string]string{"type": "receive"}})
		require.NoError(t, err, name)
		require.JSONEq(t, `{"type":"receive"}`, receive(t, member), name)
		localB.Leave(name, member)
	}
}

func TestNewValidatesArguments(t *testing.T) {
	_, err := New(nil, registry.New())
	require.ErrorIs(t, err, ErrMissingConn)

	ns := runServer(t)
	conn, err := nats.Connect(ns.ClientURL())
	require.NoError(t, err)
	defer conn.Close()
	_, err = New(conn, nil)
	require.ErrorIs(t, err, ErrMissingLocal)
}
