package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sharedcode/premortem"
)

// Client is a premortem.Cache backed by Redis.
type Client struct {
	conn    *Connection
	isOwner bool
}

var errNotOpen = fmt.Errorf("Redis connection is not open, 'can't create new client")

// NewClient returns a client over the singleton connection opened with OpenConnection.
func NewClient() *Client {
	return &Client{
		conn: connection,
	}
}

// NewConnectionClient opens a new, dedicated Redis connection and returns a client owning it.
// Call Close when done.
func NewConnectionClient(options Options) *Client {
	return &Client{
		conn:    openConnection(options),
		isOwner: true,
	}
}

// Close this client's connection, if the client owns it.
func (c *Client) Close() error {
	if !c.isOwner || c.conn == nil {
		return nil
	}
	err := closeConnection(c.conn)
	c.conn = nil
	return err
}

// keyNotFound will detect whether error signifies key not found by Redis.
func (c *Client) keyNotFound(err error) bool {
	return err == redis.Nil
}

// Ping tests connectivity for redis (PONG should be returned)
func (c *Client) Ping(ctx context.Context) error {
	if c.conn == nil {
		return errNotOpen
	}
	return c.conn.Client.Ping(ctx).Err()
}

// SetStruct marshals value and executes the redis Set command.
func (c *Client) SetStruct(ctx context.Context, key string, value any, expiration time.Duration) error {
	if c.conn == nil {
		return errNotOpen
	}
	// No caching if expiration < 0.
	if expiration < 0 {
		return nil
	}
	ba, err := premortem.DefaultMarshaler.Marshal(value)
	if err != nil {
		return err
	}
	return c.conn.Client.Set(ctx, key, ba, expiration).Err()
}

// GetStruct executes the redis Get command and unmarshals the value into target.
func (c *Client) GetStruct(ctx context.Context, key string, target any) (bool, error) {
	if c.conn == nil {
		return false, errNotOpen
	}
	if target == nil {
		return false, fmt.Errorf("target can't be nil")
	}
	ba, err := c.conn.Client.Get(ctx, key).Bytes()
	if err == nil {
		err = premortem.DefaultMarshaler.Unmarshal(ba, target)
	}

	// Convert key not found into returning false and nil err.
	r := err == nil
	if c.keyNotFound(err) {
		err = nil
	}
	return r, err
}

// Delete executes the redis Del command
func (c *Client) Delete(ctx context.Context, keys []string) (bool, error) {
	if c.conn == nil {
		return false, errNotOpen
	}
	n, err := c.conn.Client.Del(ctx, keys...).Result()
	if c.keyNotFound(err) {
		err = nil
	}
	return err == nil && n > 0, err
}
