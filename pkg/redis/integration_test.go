package redis

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/go-connections/nat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type testLogger struct{}

func (testLogger) Error(string, error, ...map[string]interface{}) {}
func (testLogger) Info(string, error, ...map[string]interface{})  {}
func (testLogger) Warn(string, error, ...map[string]interface{})  {}

// TestRedisCounterOperations exercises the client through the FX module the
// application uses, covering the operations the view-counter buffer relies
// on: buffering with IncrBy, draining with Keys and GetDel, and batch reads
// with MGet.
func TestRedisCounterOperations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	var client *RedisClient
	app := fxtest.New(t,
		fx.Provide(
			func() Config { return Config{Host: host, Port: port} },
			func() Logger { return testLogger{} },
		),
		FXModule,
		fx.Populate(&client),
	)

	require.NoError(t, app.Start(ctx))
	defer app.Stop(ctx)

	require.NoError(t, client.Ping(ctx))

	t.Run("IncrByBuffersDeltas", func(t *testing.T) {
		value, err := client.IncrBy(ctx, "views:/evalite/a", 3)
		require.NoError(t, err)
		assert.Equal(t, int64(3), value)

		value, err = client.IncrBy(ctx, "views:/evalite/a", 4)
		require.NoError(t, err)
		assert.Equal(t, int64(7), value)

		stored, err := client.Get(ctx, "views:/evalite/a")
		require.NoError(t, err)
		assert.Equal(t, "7", stored)
	})

	t.Run("Incr", func(t *testing.T) {
		value, err := client.Incr(ctx, "views:/ragas/b")
		require.NoError(t, err)
		assert.Equal(t, int64(1), value)
	})

	t.Run("KeysMatchCounterPrefix", func(t *testing.T) {
		keys, err := client.Keys(ctx, "views:*")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"views:/evalite/a", "views:/ragas/b"}, keys)
	})

	t.Run("MGetLeavesMissingKeysNil", func(t *testing.T) {
		values, err := client.MGet(ctx, "views:/evalite/a", "views:/never/viewed")
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, "7", values[0])
		assert.Nil(t, values[1])
	})

	t.Run("GetDelDrainsAtomically", func(t *testing.T) {
		value, err := client.GetDel(ctx, "views:/evalite/a")
		require.NoError(t, err)
		assert.Equal(t, "7", value)

		_, err = client.Get(ctx, "views:/evalite/a")
		require.Error(t, err)
		assert.True(t, IsNilError(err), "drained counter must read as missing")

		_, err = client.GetDel(ctx, "views:/evalite/a")
		require.Error(t, err)
		assert.True(t, IsNilError(err), "draining a missing counter must be distinguishable")
	})

	t.Run("ExistsAndDelete", func(t *testing.T) {
		exists, err := client.Exists(ctx, "views:/ragas/b")
		require.NoError(t, err)
		assert.Equal(t, int64(1), exists)

		deleted, err := client.Delete(ctx, "views:/ragas/b")
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)

		exists, err = client.Exists(ctx, "views:/ragas/b")
		require.NoError(t, err)
		assert.Equal(t, int64(0), exists)
	})

	t.Run("ConcurrentIncrements", func(t *testing.T) {
		var wg sync.WaitGroup
		concurrency := 50

		for i := 0; i < concurrency; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := client.IncrBy(ctx, "views:/deepeval/c", 1)
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		value, err := client.Get(ctx, "views:/deepeval/c")
		require.NoError(t, err)
		assert.Equal(t, strconv.Itoa(concurrency), value)
	})
}

// TestRedisObservedOperations verifies every command notifies an attached
// observer with the redis component tag.
func TestRedisObservedOperations(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()

	host, port, containerInstance := initializeRedis(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	client, err := NewClient(Config{Host: host, Port: port}, testLogger{})
	require.NoError(t, err)
	defer client.Close()

	obs := &recordingObserver{}
	client.WithObserver(obs)

	_, err = client.IncrBy(ctx, "observed-counter", 2)
	require.NoError(t, err)
	_, err = client.Keys(ctx, "observed-*")
	require.NoError(t, err)
	_, err = client.GetDel(ctx, "observed-counter")
	require.NoError(t, err)

	operations := obs.names()
	assert.Equal(t, []string{"incrby", "keys", "getdel"}, operations)
	for _, op := range obs.snapshot() {
		assert.Equal(t, "redis", op.Component)
		assert.NoError(t, op.Error)
	}
}

// Helper functions

func initializeRedis(ctx context.Context, t *testing.T) (string, int, testcontainers.Container) {
	hostPort, err := getFreePort()
	require.NoError(t, err)

	containerInstance, err := createRedisContainer(ctx, hostPort)
	require.NoError(t, err)

	port, err := containerInstance.MappedPort(ctx, "6379")
	require.NoError(t, err)

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", net.JoinHostPort(host, port.Port()), 2*time.Second)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 30*time.Second, 500*time.Millisecond, "Redis port not ready")

	return host, port.Int(), containerInstance
}

func createRedisContainer(ctx context.Context, hostPort string) (testcontainers.Container, error) {
	portBindings := nat.PortMap{
		"6379/tcp": []nat.PortBinding{{HostPort: hostPort}},
	}

	req := testcontainers.ContainerRequest{
		Image: "redis:7-alpine",
		ExposedPorts: []string{
			"6379/tcp",
		},
		HostConfigModifier: func(cfg *container.HostConfig) {
			cfg.PortBindings = portBindings
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort("6379/tcp").WithStartupTimeout(30*time.Second),
			wait.ForLog("Ready to accept connections").WithStartupTimeout(30*time.Second),
		),
	}

	var containerInstance testcontainers.Container
	var lastErr error

	for attempt := 0; attempt < 3; attempt++ {
		containerInstance, lastErr = testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		if lastErr == nil {
			return containerInstance, nil
		}

		if strings.Contains(lastErr.Error(), "docker.sock") {
			time.Sleep(time.Duration(attempt+1) * time.Second)
			continue
		}

		break
	}

	return nil, fmt.Errorf("failed to start Redis container after 3 attempts: %w", lastErr)
}

func getFreePort() (string, error) {
	l, err := net.Listen("tcp", ":0")
	if err != nil {
		return "", err
	}
	defer l.Close()
	addr := l.Addr().(*net.TCPAddr)
	return strconv.Itoa(addr.Port), nil
}
