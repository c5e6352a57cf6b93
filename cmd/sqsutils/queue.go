package main

import (
	"context"
	"net/url"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/go-redis/redis"
	"github.com/pkg/errors"

	"github.com/rwool/sqs-utils/pkg/service/queue"
)

// region is the AWS region of the queues. Credentials and endpoint overrides
// come from the environment.
const region = "eu-west-2"

// queueOpener returns the queue serving an endpoint and a function releasing
// its resources.
type queueOpener func(ctx context.Context, endpoint string) (queue.Queue, func(), error)

func openQueue(ctx context.Context, endpoint string) (queue.Queue, func(), error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "invalid queue endpoint %q", endpoint)
	}

	switch u.Scheme {
	case "https", "http":
		c, err := getSQSClient(ctx)
		if err != nil {
			return nil, nil, err
		}
		return queue.NewSQSAdapter(c), func() {}, nil
	case "redis":
		c, err := getRedisClient(u)
		if err != nil {
			return nil, nil, err
		}
		return queue.NewRedisAdapter(c), func() { _ = c.Close() }, nil
	default:
		return nil, nil, errors.Errorf("unsupported queue endpoint scheme %q", u.Scheme)
	}
}

// getSQSClient returns a client making a single attempt per send.
func getSQSClient(ctx context.Context, optFns ...func(*config.LoadOptions) error) (*sqs.Client, error) {
	opts := append([]func(*config.LoadOptions) error{
		config.WithRegion(region),
		config.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
		config.WithRetryMaxAttempts(1),
	}, optFns...)
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load AWS configuration")
	}
	return sqs.NewFromConfig(cfg), nil
}

func getRedisClient(u *url.URL) (*redis.Client, error) {
	if u.Host == "" {
		return nil, errors.New("missing Redis address")
	}
	password, _ := u.User.Password()

	client := redis.NewClient(&redis.Options{
		Addr:         u.Host,
		Password:     password,
		DB:           0,
		MaxRetries:   0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := client.Ping().Err(); err != nil {
		_ = client.Close()
		return nil, errors.WithStack(err)
	}
	return client, nil
}
