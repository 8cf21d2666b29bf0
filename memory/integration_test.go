//go:build integration

package memory

import (
	"context"
	"os"
	"testing"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mysqlmodule "github.com/testcontainers/testcontainers-go/modules/mysql"
	redismodule "github.com/testcontainers/testcontainers-go/modules/redis"
)

func init() {
	if os.Getenv("TESTCONTAINERS_RYUK_DISABLED") == "" {
		os.Setenv("TESTCONTAINERS_RYUK_DISABLED", "true")
	}
}

func setupRedis(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := redismodule.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Fatalf("failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	url, err := container.ConnectionString(ctx)
	if err != nil {
		t.Fatalf("failed to get redis uri: %v", err)
	}
	return url
}

func TestRedisMemory(t *testing.T) {
	ctx := context.Background()
	mem, err := NewRedisMemoryFromURL(ctx, setupRedis(t), RedisOptions{TTL: time.Hour, MaxMessages: 3})
	require.NoError(t, err)
	defer mem.Close()

	require.NoError(t, mem.SaveMessages(ctx, "c1", []openai.ChatCompletionMessage{user("a"), assistant("b")}))
	require.NoError(t, mem.SaveMessages(ctx, "c1", []openai.ChatCompletionMessage{user("c"), assistant("d")}))

	msgs, err := mem.LoadMessages(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, []openai.ChatCompletionMessage{assistant("b"), user("c"), assistant("d")}, msgs)

	ttl, err := mem.client.TTL(ctx, mem.key("c1")).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 59*time.Minute)

	count, err := mem.Count(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	require.NoError(t, mem.ClearMessages(ctx, "c1"))
	msgs, err = mem.LoadMessages(ctx, "c1")
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestMySQLMemory(t *testing.T) {
	ctx := context.Background()

	container, err := mysqlmodule.Run(ctx, "mysql:8.0.36",
		mysqlmodule.WithDatabase("llm"),
		mysqlmodule.WithUsername("llm"),
		mysqlmodule.WithPassword("llm"),
	)
	if err != nil {
		t.Fatalf("failed to start mysql container: %v", err)
	}
	t.Cleanup(func() {
		container.Terminate(ctx)
	})

	dsn, err := container.ConnectionString(ctx, "parseTime=true")
	require.NoError(t, err)

	mem, err := NewMySQLMemory(ctx, MySQLConfig{DSN: dsn, TTL: time.Hour})
	require.NoError(t, err)
	defer mem.Close()

	require.NoError(t, mem.SaveMessages(ctx, "", []openai.ChatCompletionMessage{user("hi"), assistant("hello")}))

	msgs, err := mem.LoadMessages(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []openai.ChatCompletionMessage{user("hi"), assistant("hello")}, msgs)

	// Jump past the expiry.
	mem.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	msgs, err = mem.LoadMessages(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, msgs)

	removed, err := mem.CleanupExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
}
