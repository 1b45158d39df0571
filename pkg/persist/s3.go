package persist

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"

	"github.com/corvus-crawler/corvus/pkg/fetch"
)

const (
	// putTimeout bounds a single PutObject call.
	putTimeout = 10 * time.Second
	// maxPutAttempts caps dispatch retries for transport failures.
	// Errors answered by the store itself are never retried here.
	maxPutAttempts = 5
)

// Credentials are explicit static AWS credentials. When left empty the
// SDK's default chain (env, shared config, instance role) is used.
type Credentials struct {
	AccessKeyID     string
	SecretAccessKey string
}

func (c Credentials) empty() bool {
	return c.AccessKeyID == "" || c.SecretAccessKey == ""
}

// S3Sink puts results to S3 buckets. Clients are built lazily per
// region and cached for the lifetime of the run.
type S3Sink struct {
	mu      sync.Mutex
	clients map[string]*s3.Client
	creds   Credentials
}

func NewS3Sink() *S3Sink {
	return &S3Sink{clients: make(map[string]*s3.Client)}
}

// NewS3SinkWithCredentials builds a sink bound to static credentials,
// bypassing the default chain.
func NewS3SinkWithCredentials(creds Credentials) *S3Sink {
	s := NewS3Sink()
	s.creds = creds
	return s
}

func (s *S3Sink) Store(ctx context.Context, m Method, res *fetch.Result) error {
	client, err := s.clientFor(ctx, m.Region)
	if err != nil {
		return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: err}
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(m.Bucket),
		Key:         aws.String(m.Key),
		Body:        bytes.NewReader(res.Body),
		ContentType: aws.String(res.ContentType.String()),
	}

	var lastErr error
	for attempt := 0; attempt < maxPutAttempts; attempt++ {
		err := s.put(ctx, client, input)
		if err == nil {
			return nil
		}
		lastErr = err

		// An APIError means the request reached the store and was
		// rejected; retrying will not change the answer.
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			break
		}
		if ctx.Err() != nil {
			break
		}
	}
	return &SinkError{Kind: m.Kind, Dest: m.Destination(), Err: lastErr}
}

func (s *S3Sink) put(ctx context.Context, client *s3.Client, input *s3.PutObjectInput) error {
	pctx, cancel := context.WithTimeout(ctx, putTimeout)
	defer cancel()

	if _, err := input.Body.(*bytes.Reader).Seek(0, 0); err != nil {
		return err
	}
	_, err := client.PutObject(pctx, input)
	return err
}

// clientFor returns the cached client for a region, building it from
// the default credential chain on first use. Dispatch-level retries are
// handled here, so the SDK's own retryer is reduced to a single try.
func (s *S3Sink) clientFor(ctx context.Context, region string) (*s3.Client, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c, ok := s.clients[region]; ok {
		return c, nil
	}

	opts := []func(*config.LoadOptions) error{
		config.WithRetryMaxAttempts(1),
	}
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}
	if !s.creds.empty() {
		static := credentials.NewStaticCredentialsProvider(s.creds.AccessKeyID, s.creds.SecretAccessKey, "")
		opts = append(opts, config.WithCredentialsProvider(static))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	c := s3.NewFromConfig(awsCfg)
	s.clients[region] = c
	return c, nil
}
