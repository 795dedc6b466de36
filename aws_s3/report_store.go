package aws_s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/sharedcode/premortem"
)

// API is the subset of *s3.Client used by the report store.
type API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

const reportPrefix = "reports/"

type reportStore struct {
	client API
	bucket string
	region string
}

// NewReportStore stores each report as one JSON object, reports/<id>.json, in bucket.
func NewReportStore(client API, bucket, region string) (premortem.ReportStore, error) {
	if client == nil {
		return nil, fmt.Errorf("s3Client parameter can't be nil")
	}
	if bucket == "" {
		return nil, fmt.Errorf("bucket can't be empty")
	}
	return &reportStore{client: client, bucket: bucket, region: region}, nil
}

// EnsureBucket creates the bucket when it does not exist yet.
func EnsureBucket(ctx context.Context, client API, bucket, region string) error {
	if _, err := client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)}); err == nil {
		return nil
	}
	in := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	// us-east-1 rejects an explicit location constraint.
	if region != "" && region != "us-east-1" {
		in.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(region),
		}
	}
	if _, err := client.CreateBucket(ctx, in); err != nil {
		return fmt.Errorf("couldn't create bucket %s in Region %s, details: %v", bucket, region, err)
	}
	return nil
}

func objectKey(id string) string {
	return reportPrefix + id + ".json"
}

func (rs *reportStore) Put(ctx context.Context, r premortem.Report) error {
	if !premortem.ValidID(r.ID) {
		return fmt.Errorf("report id %q is not a UUID", r.ID)
	}
	ba, err := premortem.DefaultMarshaler.Marshal(r)
	if err != nil {
		return err
	}
	return premortem.Retry(ctx, func(ctx context.Context) error {
		_, err := rs.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(rs.bucket),
			Key:         aws.String(objectKey(r.ID)),
			Body:        bytes.NewReader(ba),
			ContentType: aws.String("application/json"),
		})
		return err
	}, nil)
}

func (rs *reportStore) Get(ctx context.Context, id string) (premortem.Report, bool, error) {
	if !premortem.ValidID(id) {
		return premortem.Report{}, false, nil
	}
	return rs.get(ctx, objectKey(id))
}

func (rs *reportStore) get(ctx context.Context, key string) (premortem.Report, bool, error) {
	out, err := rs.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(rs.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var nsk *types.NoSuchKey
		if errors.As(err, &nsk) {
			return premortem.Report{}, false, nil
		}
		return premortem.Report{}, false, fmt.Errorf("failed to fetch %s from bucket %s, details: %w", key, rs.bucket, err)
	}
	defer out.Body.Close()
	ba, err := io.ReadAll(out.Body)
	if err != nil {
		return premortem.Report{}, false, err
	}
	var r premortem.Report
	if err := premortem.DefaultMarshaler.Unmarshal(ba, &r); err != nil {
		return premortem.Report{}, false, err
	}
	return r, true, nil
}

// List reads every report object, newest first.
func (rs *reportStore) List(ctx context.Context) ([]premortem.ReportSummary, error) {
	var r []premortem.ReportSummary
	p := s3.NewListObjectsV2Paginator(rs.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(rs.bucket),
		Prefix: aws.String(reportPrefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list bucket %s, details: %w", rs.bucket, err)
		}
		for _, o := range page.Contents {
			key := aws.ToString(o.Key)
			if !strings.HasSuffix(key, ".json") || !premortem.ValidID(strings.TrimSuffix(path.Base(key), ".json")) {
				continue
			}
			rep, ok, err := rs.get(ctx, key)
			if err != nil {
				return nil, err
			}
			if ok {
				r = append(r, rep.Summary())
			}
		}
	}
	premortem.SortNewestFirst(r)
	return r, nil
}
