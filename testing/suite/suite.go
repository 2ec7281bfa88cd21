package suite

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
)

const (
	containerTTL = 120 // seconds before docker kills a container left behind
	startTimeout = 2 * time.Minute
)

const (
	redisPort  = "6379/tcp"
	redisImage = "redis"
	redisTag   = "alpine"
)

// Suite - a Redis container owned by one test, with a connected client.
type Suite struct {
	*testing.T

	Storage *redis.Client
	Host    string
	Port    string
}

// Addr - host:port of the container's Redis.
func (that *Suite) Addr() string {
	return net.JoinHostPort(that.Host, that.Port)
}

// New - starts a throwaway Redis for the test and removes it on cleanup.
// Skipped in -short mode since it needs a Docker daemon.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping redis integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	t.Cleanup(cancel)

	pool, err := dockertest.NewPool("")
	if err != nil {
		t.Fatalf("could not connect to docker: %v", err)
	}
	pool.MaxWait = startTimeout

	resource := runRedis(t, pool)

	host, port, err := net.SplitHostPort(resource.GetHostPort(redisPort))
	if err != nil {
		purge(t, pool, resource)
		t.Fatalf("could not parse redis address: %v", err)
	}

	st := &Suite{T: t, Host: host, Port: port}

	st.Storage, err = connect(ctx, pool, st.Addr())
	if err != nil {
		purge(t, pool, resource)
		t.Fatalf("could not connect to redis at %s: %v", st.Addr(), err)
	}

	t.Logf("redis container %s listening on %s", resource.Container.Name, st.Addr())

	t.Cleanup(func() {
		_ = st.Storage.Close()
		purge(t, pool, resource)
	})

	return ctx, st
}

func runRedis(t *testing.T, pool *dockertest.Pool) *dockertest.Resource {
	t.Helper()

	// persistence off, every container starts empty and stays that way on disk
	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: redisImage,
		Tag:        redisTag,
		Cmd:        []string{"redis-server", "--save", "", "--appendonly", "no"},
	}, func(hostConfig *docker.HostConfig) {
		hostConfig.AutoRemove = true
		hostConfig.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	if err != nil {
		t.Fatalf("could not start redis container: %v", err)
	}

	if err = resource.Expire(containerTTL); err != nil {
		t.Logf("could not set container expiry: %v", err)
	}

	return resource
}

// connect - waits with backoff until Redis in the container answers a ping.
func connect(ctx context.Context, pool *dockertest.Pool, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	if err := pool.Retry(func() error {
		return client.Ping(ctx).Err()
	}); err != nil {
		_ = client.Close()
		return nil, err
	}

	return client, nil
}

func purge(t *testing.T, pool *dockertest.Pool, resource *dockertest.Resource) {
	t.Helper()

	if err := pool.Purge(resource); err != nil {
		t.Errorf("could not purge redis container: %v", err)
	}
}
