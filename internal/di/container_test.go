package di

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-social/internal/registry"
	"github.com/goliatone/go-social/internal/users"
	"github.com/goliatone/go-social/pkg/config"
	"github.com/goliatone/go-social/pkg/interfaces/broadcaster"
	"github.com/nats-io/nats-server/v2/server"
)

func testConfig() config.Config {
	cfg := config.Defaults()
	cfg.Auth.Secret = "di-test-secret"
	return cfg
}

func TestNewDefaultsToMemory(t *testing.T) {
	c, err := New(Options{Config: testConfig()})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Storage.Users == nil || c.Storage.Transaction == nil {
		t.Fatalf("expected memory providers")
	}
	if c.Handler == nil || c.Sockets == nil || c.Auth == nil {
		t.Fatalf("expected transport wiring")
	}
	if c.Relay != nil {
		t.Fatalf("expected no relay without cluster config")
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	if _, err := New(Options{}); err == nil {
		t.Fatalf("expected defaults without a secret to fail validation")
	}
}

func TestExtraBroadcasterSeesEveryEvent(t *testing.T) {
	ctx := context.Background()
	capture := broadcaster.NewCapture()
	c, err := New(Options{Config: testConfig(), Broadcaster: capture})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	alice, err := c.Users.Register(ctx, users.RegisterInput{Username: "alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	member := registry.NewMember("watcher", 4)
	c.Registry.Join(broadcaster.GlobalGroup, member)

	if _, err := c.News.Post(ctx, *alice, "hello"); err != nil {
		t.Fatalf("post: %v", err)
	}
	if got := len(capture.ForGroup(broadcaster.GlobalGroup)); got != 1 {
		t.Fatalf("expected captured announce, got %d", got)
	}
	select {
	case <-member.Outbound():
	default:
		t.Fatalf("expected the registry to deliver too")
	}
}

func TestClusterRelayDeliversThroughNATS(t *testing.T) {
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: server.RANDOM_PORT, NoLog: true, NoSigs: true})
	if err != nil {
		t.Fatalf("nats server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(5 * time.Second) {
		t.Fatalf("nats server not ready")
	}
	defer ns.Shutdown()

	cfg := testConfig()
	cfg.Cluster.Enabled = true
	cfg.Cluster.NATSURL = ns.ClientURL()
	cfg.Cluster.SubjectPrefix = "di.test"

	first, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	defer first.Close(context.Background())
	second, err := New(Options{Config: cfg})
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	defer second.Close(context.Background())
	if first.Relay == nil || second.Relay == nil {
		t.Fatalf("expected relays")
	}

	member := registry.NewMember("remote", 4)
	second.Registry.Join(broadcaster.GlobalGroup, member)

	ctx := context.Background()
	alice, err := first.Users.Register(ctx, users.RegisterInput{Username: "alice"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := first.News.Post(ctx, *alice, "across"); err != nil {
		t.Fatalf("post: %v", err)
	}

	select {
	case <-member.Outbound():
	case <-time.After(2 * time.Second):
		t.Fatalf("expected the announce on the second instance")
	}
}
