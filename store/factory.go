package store

import (
	"context"
	"fmt"
	log "log/slog"

	"github.com/sharedcode/premortem"
	"github.com/sharedcode/premortem/aws_s3"
	"github.com/sharedcode/premortem/cassandra"
)

// New builds the report store selected by cfg.Store. Remote stores are fronted by
// cache when one is given.
func New(ctx context.Context, cfg premortem.Config, cache premortem.Cache) (premortem.ReportStore, error) {
	switch cfg.Store.Type {
	case premortem.InMemoryStore, "":
		return NewMemory(), nil
	case premortem.S3Store:
		if cfg.Store.S3 == nil {
			return nil, fmt.Errorf("store type s3 requires s3 settings")
		}
		client := aws_s3.Connect(*cfg.Store.S3)
		if err := aws_s3.EnsureBucket(ctx, client, cfg.Store.S3.Bucket, cfg.Store.S3.Region); err != nil {
			return nil, err
		}
		rs, err := aws_s3.NewReportStore(client, cfg.Store.S3.Bucket, cfg.Store.S3.Region)
		if err != nil {
			return nil, err
		}
		log.Info("report store using s3", "bucket", cfg.Store.S3.Bucket)
		return NewCached(rs, cache, cfg.Cache.TTL), nil
	case premortem.CassandraStore:
		if cfg.Store.Cassandra == nil {
			return nil, fmt.Errorf("store type cassandra requires cassandra settings")
		}
		if _, err := cassandra.OpenConnection(cassandra.ConfigFrom(*cfg.Store.Cassandra)); err != nil {
			return nil, fmt.Errorf("failed to connect to cassandra: %w", err)
		}
		log.Info("report store using cassandra", "hosts", cfg.Store.Cassandra.ClusterHosts)
		return NewCached(cassandra.NewReportStore(), cache, cfg.Cache.TTL), nil
	}
	return nil, fmt.Errorf("unknown store type %q", cfg.Store.Type)
}
