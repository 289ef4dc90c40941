package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
)

// ConnectRedis dials Redis and pings it with exponential backoff.
func ConnectRedis(ctx context.Context, addr, password string, log logrus.FieldLogger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)
	err := backoff.Retry(func() error {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Warnf("redis connection failed: %v, retrying...", err)
			return err
		}
		return nil
	}, b)
	if err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect redis at %s: %w", addr, err)
	}
	log.Infof("connected to redis at %s", addr)
	return client, nil
}
