package cassandra

import (
	"context"
	"testing"
	"time"

	"github.com/gocql/gocql"
	"github.com/stretchr/testify/assert"

	"github.com/sharedcode/premortem"
)

func TestConfigFrom(t *testing.T) {
	cfg := ConfigFrom(premortem.CassandraConfig{
		ClusterHosts:      []string{"10.0.0.1", "10.0.0.2"},
		Keyspace:          "reports_ks",
		ConnectionTimeout: 3 * time.Second,
		Username:          "u",
		Password:          "p",
	})
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.ClusterHosts)
	assert.Equal(t, "reports_ks", cfg.Keyspace)
	assert.Equal(t, 3*time.Second, cfg.ConnectionTimeout)
	assert.Equal(t, gocql.PasswordAuthenticator{Username: "u", Password: "p"}, cfg.Authenticator)

	assert.Nil(t, ConfigFrom(premortem.CassandraConfig{}).Authenticator)
}

func TestReportStoreWithoutConnection(t *testing.T) {
	if IsConnectionInstantiated() {
		t.Skip("a connection is open")
	}
	ctx := context.Background()
	rs := NewReportStore()

	assert.ErrorIs(t, rs.Put(ctx, premortem.Report{ID: premortem.NewID()}), errClosed)
	_, _, err := rs.Get(ctx, premortem.NewID())
	assert.ErrorIs(t, err, errClosed)
	_, err = rs.List(ctx)
	assert.ErrorIs(t, err, errClosed)
}
