package queue

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-redis/redis"
	"github.com/pkg/errors"
	uuid "github.com/satori/go.uuid"
)

// Ensure RedisAdapter implements Queue.
var _ Queue = (*RedisAdapter)(nil)

// NewRedisAdapter creates a new RedisAdapter.
func NewRedisAdapter(c *redis.Client) *RedisAdapter {
	if c == nil {
		panic("nil queue client")
	}
	return &RedisAdapter{c: c}
}

// RedisAdapter for a Redis client to implement the Queue interface.
//
// Redis lists have no notion of attributes, so only the body is pushed.
type RedisAdapter struct {
	c *redis.Client
}

// ListName returns the name of the Redis list addressed by a
// redis://host:port/<list> endpoint.
func ListName(endpoint string) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", errors.Wrapf(err, "invalid Redis endpoint %q", endpoint)
	}
	name := strings.TrimPrefix(u.Path, "/")
	if name == "" {
		return "", errors.Errorf("missing list name in Redis endpoint %q", endpoint)
	}
	return name, nil
}

func md5Hex(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

// Send pushes the message body onto the end of the list named by the
// endpoint.
//
// A successful push is reported with a 200 status code.
func (r *RedisAdapter) Send(ctx context.Context, endpoint string, m Message) (Receipt, error) {
	list, err := ListName(endpoint)
	if err != nil {
		return Receipt{}, err
	}
	client := r.c.WithContext(ctx)
	if err := client.RPush(list, m.Body).Err(); err != nil {
		return Receipt{}, errors.Wrapf(err, "error pushing to Redis list %q", list)
	}
	return Receipt{
		MessageID:        uuid.Must(uuid.NewV4()).String(),
		MD5OfMessageBody: md5Hex(m.Body),
		ResponseMetadata: ResponseMetadata{
			RequestID:      uuid.Must(uuid.NewV4()).String(),
			HTTPStatusCode: http.StatusOK,
		},
	}, nil
}
