package redis

import (
	"crypto/tls"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/sharedcode/premortem"
)

// Redis configurable options.
type Options struct {
	// Redis server(cluster) address.
	Address string
	// Password required when connecting to the Redis server.
	Password string
	// DB to connect to.
	DB int
	// TLS config.
	TLSConfig *tls.Config
}

// Connection contains Redis client connection object and the Options used to connect.
type Connection struct {
	Client  *redis.Client
	Options Options
}

// DefaultOptions.
func DefaultOptions() Options {
	return Options{
		Address:  "localhost:6379",
		Password: "", // no password set
		DB:       0,  // use default DB
	}
}

// OptionsFromConfig converts the cache section of premortem.yaml. A URL, when set,
// overrides Address, Password and DB.
func OptionsFromConfig(cfg premortem.RedisCacheConfig) (Options, error) {
	if cfg.URL != "" {
		o, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return Options{}, fmt.Errorf("invalid redis url: %w", err)
		}
		return Options{Address: o.Addr, Password: o.Password, DB: o.DB, TLSConfig: o.TLSConfig}, nil
	}
	o := DefaultOptions()
	if cfg.Address != "" {
		o.Address = cfg.Address
	}
	o.Password = cfg.Password
	o.DB = cfg.DB
	return o, nil
}

var connection *Connection
var mux sync.Mutex

// Returns true if connection instance is valid.
func IsConnectionInstantiated() bool {
	return connection != nil
}

// Creates a singleton connection and returns it for every call.
func OpenConnection(options Options) *Connection {
	if connection != nil {
		return connection
	}
	mux.Lock()
	defer mux.Unlock()

	if connection != nil {
		return connection
	}

	connection = openConnection(options)
	return connection
}

// Close the singleton connection if open.
func CloseConnection() error {
	if connection == nil {
		return nil
	}
	mux.Lock()
	defer mux.Unlock()
	if connection == nil {
		return nil
	}
	err := closeConnection(connection)
	connection = nil
	return err
}

func openConnection(options Options) *Connection {
	client := redis.NewClient(&redis.Options{
		TLSConfig: options.TLSConfig,
		Addr:      options.Address,
		Password:  options.Password,
		DB:        options.DB})

	return &Connection{
		Client:  client,
		Options: options,
	}
}

func closeConnection(c *Connection) error {
	if c == nil || c.Client == nil {
		return nil
	}
	err := c.Client.Close()
	c.Client = nil
	return err
}
