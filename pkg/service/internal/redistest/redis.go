// Package redistest implements support code for testing with Redis.
package redistest

import (
	"os"
	"testing"
	"time"

	"github.com/go-redis/redis"
)

// RedisCredentials locates the Redis server that list-backed queue tests
// push messages to.
type RedisCredentials struct {
	Password string
	Addr     string
}

// GetCredentials gets the Redis credentials from environment variables.
//
// REDIS_IP holds the host:port of the server and REDIS_PASS its password.
// The server needs no preloaded data: tests push to lists named after
// themselves and delete them afterwards. Any database 0 that accepts
// RPUSH, LRANGE and DEL will do.
func GetCredentials() (rc RedisCredentials, ok bool) {
	p := os.Getenv("REDIS_PASS")
	a := os.Getenv("REDIS_IP")
	if len(a) > 0 {
		return RedisCredentials{
			Password: p,
			Addr:     a,
		}, true
	}
	return RedisCredentials{}, false
}

// Connect connects to Redis and returns the Client object.
//
// The test is skipped when no server is configured.
func Connect(t *testing.T) *redis.Client {
	creds, ok := GetCredentials()
	if !ok {
		t.Skip("Missing Redis credentials")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         creds.Addr,
		Password:     creds.Password,
		DB:           0,
		MaxRetries:   3,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	t.Cleanup(func() { _ = client.Close() })
	return client
}
