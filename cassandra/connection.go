package cassandra

import (
	"fmt"
	"sync"
	"time"

	"github.com/gocql/gocql"

	"github.com/sharedcode/premortem"
)

// Config contains configuration for connecting to a Cassandra cluster and the report keyspace.
type Config struct {
	// ClusterHosts lists contact points for the Cassandra cluster.
	ClusterHosts []string
	// Keyspace is the keyspace holding the reports table.
	Keyspace string
	// Consistency is the default consistency level for queries.
	Consistency gocql.Consistency
	// ConnectionTimeout is the session connection timeout.
	ConnectionTimeout time.Duration
	// Authenticator is used when the cluster requires authentication.
	Authenticator gocql.Authenticator
	// ReplicationClause defines the keyspace replication (e.g., SimpleStrategy).
	ReplicationClause string

	// ConsistencyBook allows overriding per-API consistency levels.
	ConsistencyBook ConsistencyBook
}

// ConsistencyBook enumerates per-API consistency levels used by this package.
type ConsistencyBook struct {
	ReportAdd  gocql.Consistency
	ReportGet  gocql.Consistency
	ReportList gocql.Consistency
}

// ConfigFrom converts the cassandra section of premortem.yaml.
func ConfigFrom(c premortem.CassandraConfig) Config {
	cfg := Config{
		ClusterHosts:      c.ClusterHosts,
		Keyspace:          c.Keyspace,
		ConnectionTimeout: c.ConnectionTimeout,
	}
	if c.Username != "" {
		cfg.Authenticator = gocql.PasswordAuthenticator{Username: c.Username, Password: c.Password}
	}
	return cfg
}

// Connection wraps a Cassandra session and its configuration.
type Connection struct {
	Session *gocql.Session
	Config
}

var connection *Connection
var mux sync.Mutex

// IsConnectionInstantiated reports whether a global Connection has been created.
func IsConnectionInstantiated() bool {
	return connection != nil
}

// OpenConnection returns the existing global Connection or opens a new one using the provided config.
// The keyspace and reports table are created when missing.
func OpenConnection(config Config) (*Connection, error) {
	if connection != nil {
		return connection, nil
	}
	mux.Lock()
	defer mux.Unlock()

	if connection != nil {
		return connection, nil
	}
	if config.Keyspace == "" {
		// default keyspace
		config.Keyspace = "premortem"
	}
	if config.Consistency == gocql.Any {
		// Defaults to LocalQuorum consistency. You should set it to an appropriate level.
		config.Consistency = gocql.LocalQuorum
	}
	cluster := gocql.NewCluster(config.ClusterHosts...)
	cluster.Consistency = config.Consistency
	if config.ReplicationClause == "" {
		// Specify an appropriate replication feature.
		config.ReplicationClause = "{'class':'SimpleStrategy', 'replication_factor':1}"
	}
	if config.ConnectionTimeout > 0 {
		cluster.ConnectTimeout = config.ConnectionTimeout
	}
	if config.Authenticator != nil {
		cluster.Authenticator = config.Authenticator
		// Clear the authenticator just to be safer, we don't need to keep it hanging around.
		config.Authenticator = nil
	}
	var c = Connection{
		Config: config,
	}
	s, err := cluster.CreateSession()
	if err != nil {
		return nil, err
	}

	if err := s.Query(fmt.Sprintf("CREATE KEYSPACE IF NOT EXISTS %s WITH REPLICATION = %s;", config.Keyspace, config.ReplicationClause)).Exec(); err != nil {
		s.Close()
		return nil, err
	}
	// Auto create the "reports" table if not yet.
	if err := s.Query(fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s.reports (id UUID PRIMARY KEY, created_at timestamp, title text, owner text, risk double, status text, scenarios int, vetoed int, doc blob);", config.Keyspace)).Exec(); err != nil {
		s.Close()
		return nil, err
	}

	c.Session = s
	connection = &c
	return connection, nil
}

// CloseConnection closes and clears the global connection, if it exists.
func CloseConnection() {
	if connection != nil {
		mux.Lock()
		defer mux.Unlock()
		if connection == nil {
			return
		}
		connection.Session.Close()
		connection = nil
	}
}
