//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/nitesh/newsmap/pkg/models"
)

func startRedis(t *testing.T) *RedisCache {
	t.Helper()
	ctx := context.Background()
	ctr, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Skipf("Skipping test: cannot start redis container: %v", err)
	}
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	endpoint, err := ctr.Endpoint(ctx, "")
	if err != nil {
		t.Fatalf("endpoint: %v", err)
	}
	c, err := NewRedisCache(ctx, endpoint, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisCache: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestRedisCacheRoundTrip(t *testing.T) {
	c := startRedis(t)
	ctx := context.Background()

	rec := &models.Record{Code: "abc", Metadata: models.Metadata{LocationName: "Paris", Category: models.CategorySports}}
	if err := c.SetRecord(ctx, rec); err != nil {
		t.Fatalf("SetRecord: %v", err)
	}
	got, ok, err := c.GetRecord(ctx, "abc")
	if err != nil || !ok {
		t.Fatalf("GetRecord: ok=%v err=%v", ok, err)
	}
	if got.Metadata != rec.Metadata {
		t.Errorf("Expected %+v, got %+v", rec.Metadata, got.Metadata)
	}

	_, gen, ok, err := c.GetList(ctx, models.CategorySports)
	if err != nil || ok {
		t.Fatalf("Expected initial list miss, got ok=%v err=%v", ok, err)
	}
	if err := c.SetList(ctx, gen, models.CategorySports, []*models.Record{rec}); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	if _, _, ok, _ := c.GetList(ctx, models.CategorySports); !ok {
		t.Fatal("Expected list hit before invalidation")
	}
	if err := c.InvalidateLists(ctx); err != nil {
		t.Fatalf("InvalidateLists: %v", err)
	}
	if _, _, ok, _ := c.GetList(ctx, models.CategorySports); ok {
		t.Error("Expected list miss after invalidation")
	}

	// A listing read before the insert is written under the retired
	// generation and stays unreachable.
	if err := c.SetList(ctx, gen, models.CategorySports, []*models.Record{rec}); err != nil {
		t.Fatalf("SetList: %v", err)
	}
	if _, _, ok, _ := c.GetList(ctx, models.CategorySports); ok {
		t.Error("Expected listing written under an old generation to stay hidden")
	}
}
