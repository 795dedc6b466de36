package aws_s3

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sharedcode/premortem"
)

// Connect to an S3 compatible endpoint (AWS or minio, e.g. "http://127.0.0.1:9000").
// Path style addressing is used when a custom endpoint is set.
func Connect(config premortem.S3Config) *s3.Client {
	client := s3.NewFromConfig(aws.Config{Region: config.Region}, func(o *s3.Options) {
		if config.HostEndpointURL != "" {
			o.BaseEndpoint = aws.String(config.HostEndpointURL)
			o.UsePathStyle = true
		}
		if config.Username != "" {
			o.Credentials = credentials.NewStaticCredentialsProvider(config.Username, config.Password, "")
		}
	})
	return client
}
