package tickets

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// ArchiveService uploads ticket transcripts to S3-compatible object storage.
type ArchiveService struct {
	client   *s3.Client
	bucket   string
	region   string
	endpoint string
	root     string
}

func NewArchiveService(key, secret, region, bucket, endpoint, root string) (*ArchiveService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{URL: endpoint}, nil
	})

	cfg, err := awsconfig.LoadDefaultConfig(context.TODO(),
		awsconfig.WithEndpointResolverWithOptions(resolver),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(key, secret, "")),
		awsconfig.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load archive storage config: %w", err)
	}

	return &ArchiveService{
		client:   s3.NewFromConfig(cfg),
		bucket:   bucket,
		region:   region,
		endpoint: endpoint,
		root:     strings.Trim(root, "/"),
	}, nil
}

// Upload stores a rendered transcript and returns its public URL.
func (a *ArchiveService) Upload(ctx context.Context, guildID string, ticketID int64, transcript []byte) (string, error) {
	key := fmt.Sprintf("%s/%s/ticket-%d.txt", a.root, guildID, ticketID)

	_, err := a.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(transcript),
		ContentType: aws.String("text/plain; charset=utf-8"),
		ACL:         types.ObjectCannedACLPublicRead,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload transcript: %w", err)
	}

	base := strings.TrimSuffix(a.endpoint, "/")
	return fmt.Sprintf("%s/%s/%s", base, a.bucket, key), nil
}
