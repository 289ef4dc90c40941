package leads

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, mr
}

func TestRedisDeduper_ClaimAndExpire(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	d := NewRedisDeduper(client)
	ctx := context.Background()

	state, err := d.Claim(ctx, "abc", time.Minute)
	if err != nil || state != ClaimAcquired {
		t.Fatalf("first Claim = %v, %v; want acquired", state, err)
	}
	state, err = d.Claim(ctx, "abc", time.Minute)
	if err != nil || state != ClaimPending {
		t.Fatalf("second Claim = %v, %v; want pending", state, err)
	}
	if got, _ := mr.Get(RedisKeyPrefix + "abc"); got != "pending" {
		t.Errorf("stored claim %q, want pending", got)
	}

	mr.FastForward(2 * time.Minute)
	state, err = d.Claim(ctx, "abc", time.Minute)
	if err != nil || state != ClaimAcquired {
		t.Fatalf("Claim after expiry = %v, %v; want acquired", state, err)
	}
}

func TestRedisDeduper_Complete(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	d := NewRedisDeduper(client)
	ctx := context.Background()
	_, _ = d.Claim(ctx, "k", time.Minute)
	if err := d.Complete(ctx, "k", time.Hour); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	state, err := d.Claim(ctx, "k", time.Minute)
	if err != nil || state != ClaimDone {
		t.Fatalf("Claim after Complete = %v, %v; want done", state, err)
	}
	if ttl := mr.TTL(RedisKeyPrefix + "k"); ttl != time.Hour {
		t.Errorf("TTL %v, want the completion window", ttl)
	}
}

func TestRedisDeduper_Release(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	d := NewRedisDeduper(client)
	ctx := context.Background()
	_, _ = d.Claim(ctx, "k", time.Hour)
	if err := d.Release(ctx, "k"); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if state, _ := d.Claim(ctx, "k", time.Hour); state != ClaimAcquired {
		t.Errorf("Claim after Release = %v, want acquired", state)
	}
}

func TestRedisDeduper_ErrorWhenDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	defer client.Close()
	mr.Close()

	if _, err := NewRedisDeduper(client).Claim(context.Background(), "k", time.Minute); err == nil {
		t.Error("Claim should fail when redis is unreachable")
	}
}

func TestMemoryDeduper(t *testing.T) {
	d := NewMemoryDeduper()
	ctx := context.Background()
	if state, _ := d.Claim(ctx, "k", 20*time.Millisecond); state != ClaimAcquired {
		t.Fatalf("first Claim = %v, want acquired", state)
	}
	if state, _ := d.Claim(ctx, "k", 20*time.Millisecond); state != ClaimPending {
		t.Fatalf("second Claim = %v, want pending", state)
	}
	time.Sleep(40 * time.Millisecond)
	if state, _ := d.Claim(ctx, "k", 20*time.Millisecond); state != ClaimAcquired {
		t.Errorf("Claim after expiry = %v, want acquired", state)
	}
	_ = d.Complete(ctx, "k", time.Minute)
	if state, _ := d.Claim(ctx, "k", time.Minute); state != ClaimDone {
		t.Errorf("Claim after Complete = %v, want done", state)
	}
	_ = d.Release(ctx, "k")
	if state, _ := d.Claim(ctx, "k", time.Minute); state != ClaimAcquired {
		t.Errorf("Claim after Release = %v, want acquired", state)
	}
}

func TestConnectRedis(t *testing.T) {
	_, mr := setupTestRedis(t)
	defer mr.Close()

	client, err := ConnectRedis(context.Background(), mr.Addr(), "", quietLogger())
	if err != nil {
		t.Fatalf("ConnectRedis: %v", err)
	}
	defer client.Close()
}
