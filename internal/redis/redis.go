// Package redis wraps client construction with a bootstrap ping so an
// unreachable cache fails the process at startup instead of on the
// first login.
package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Client embeds the go-redis client.
type Client struct {
	*goredis.Client
}

// New connects and pings with a bounded timeout.
func New(addr, password string) (*Client, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Client{Client: client}, nil
}
