// Package s3service archives generated reports to S3.
package s3service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

// DefaultDownloadExpiryMinutes is how long an archived report link stays valid.
const DefaultDownloadExpiryMinutes = 7 * 24 * 60

// ErrEmptyObject is returned when a downloaded object has no content.
var ErrEmptyObject = errors.New("object is empty")

// ObjectAPI is the subset of the S3 client the service uses.
type ObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// PresignAPI is the subset of the S3 presign client the service uses.
type PresignAPI interface {
	PresignGetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error)
}

// Service handles S3 operations
type Service struct {
	client     ObjectAPI
	presigner  PresignAPI
	bucketName string
	now        func() time.Time
}

// PresignedURLResult contains the presigned URL details
type PresignedURLResult struct {
	URL       string    `json:"url"`
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// NewService creates a service for bucket using the default AWS credential chain.
func NewService(ctx context.Context, bucket string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	return NewServiceWithClients(client, s3.NewPresignClient(client), bucket), nil
}

// NewServiceWithClients creates a service around existing clients.
func NewServiceWithClients(client ObjectAPI, presigner PresignAPI, bucket string) *Service {
	return &Service{
		client:     client,
		presigner:  presigner,
		bucketName: bucket,
		now:        time.Now,
	}
}

// ReportKey is the object key prefix for a lead's report.
func ReportKey(leadID string, generatedAt time.Time) string {
	return fmt.Sprintf("reports/%s/%s", generatedAt.UTC().Format("2006/01/02"), leadID)
}

// ReportMarkdownKey is the key of the archived markdown report.
func ReportMarkdownKey(leadID string, generatedAt time.Time) string {
	return ReportKey(leadID, generatedAt) + "/report.md"
}

// BatchResultKey is where the results of a prospect-list batch are written.
func BatchResultKey(batchID string) string {
	return "batches/" + batchID + "/results.json"
}

// ArchiveReport stores the report as JSON and markdown and returns a
// presigned link to the markdown.
func (s *Service) ArchiveReport(ctx context.Context, leadID string, report *models.ReportData) (*PresignedURLResult, error) {
	if report == nil {
		return nil, fmt.Errorf("no report for lead %s", leadID)
	}
	generatedAt := report.GeneratedAt
	if generatedAt.IsZero() {
		generatedAt = s.now()
	}
	prefix := ReportKey(leadID, generatedAt)

	data, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}
	if err := s.UploadFile(ctx, prefix+"/report.json", data, "application/json"); err != nil {
		return nil, err
	}

	mdKey := ReportMarkdownKey(leadID, generatedAt)
	if err := s.UploadFile(ctx, mdKey, []byte(report.ReportContent), "text/markdown; charset=utf-8"); err != nil {
		return nil, err
	}

	return s.GeneratePresignedDownloadURL(ctx, mdKey, DefaultDownloadExpiryMinutes)
}

// GeneratePresignedDownloadURL creates a presigned URL for downloading files
func (s *Service) GeneratePresignedDownloadURL(ctx context.Context, key string, expiryMinutes int) (*PresignedURLResult, error) {
	if expiryMinutes <= 0 {
		expiryMinutes = 15
	}

	expiry := time.Duration(expiryMinutes) * time.Minute

	input := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	}

	presignedReq, err := s.presigner.PresignGetObject(ctx, input, func(opts *s3.PresignOptions) {
		opts.Expires = expiry
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned download URL: %w", err)
	}

	return &PresignedURLResult{
		URL:       presignedReq.URL,
		Key:       key,
		ExpiresAt: s.now().Add(expiry),
	}, nil
}

// UploadFile uploads a file to S3
func (s *Service) UploadFile(ctx context.Context, key string, data []byte, contentType string) error {
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	}

	_, err := s.client.PutObject(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to upload file to S3",
			zap.String("bucket", s.bucketName),
			zap.String("key", key),
			zap.Error(err),
		)
		return fmt.Errorf("failed to upload file: %w", err)
	}

	utils.GetLogger().Info("Uploaded file to S3",
		zap.String("bucket", s.bucketName),
		zap.String("key", key),
		zap.Int("size", len(data)),
	)

	return nil
}

// DownloadFile reads an object from the bucket.
func (s *Service) DownloadFile(ctx context.Context, key string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to download %s: %w", key, err)
	}
	defer output.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, output.Body); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if buf.Len() == 0 {
		return nil, fmt.Errorf("%s: %w", key, ErrEmptyObject)
	}
	return buf.Bytes(), nil
}

// Bucket returns the bucket the service writes to.
func (s *Service) Bucket() string {
	return s.bucketName
}
