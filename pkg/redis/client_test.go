package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/fieldstack/auth-service/internal/config"
)

func TestNewClient_Connects(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		RedisHost: mr.Host(),
		RedisPort: mr.Port(),
	}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	defer client.Close()

	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestNewClient_ConnectionFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port := mr.Host(), mr.Port()
	mr.Close()

	cfg := &config.Config{
		RedisHost: host,
		RedisPort: port,
	}

	if _, err := NewClient(cfg); err == nil {
		t.Error("NewClient() should fail when the server is unreachable")
	}
}
