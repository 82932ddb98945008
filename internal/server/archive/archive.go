// Package archive mirrors audit log entries to S3-compatible storage as
// write-once JSON objects.
package archive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/shopspring/decimal"

	sc "github.com/dmitrijs2005/trazo/internal/server/config"
	"github.com/dmitrijs2005/trazo/internal/server/models"
	"github.com/dmitrijs2005/trazo/internal/verification"
)

// Archiver stores a copy of an audit entry outside the database.
type Archiver interface {
	Archive(ctx context.Context, entry *models.AuditEntry) error
}

// Nop discards entries. It is used when archiving is disabled.
type Nop struct{}

func (Nop) Archive(context.Context, *models.AuditEntry) error { return nil }

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in, optFns...)
	}
)

// S3Archiver writes each entry once under audit/YYYY/MM/DD/<id>.json.
type S3Archiver struct {
	client *s3.Client
	bucket string
}

// NewS3Archiver builds a client for the configured endpoint using static
// credentials and path-style addressing.
func NewS3Archiver(ctx context.Context, cfg *sc.Config) (*S3Archiver, error) {
	if cfg.S3Bucket == "" {
		return nil, errors.New("archive bucket is not configured")
	}
	awsCfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(cfg.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3RootUser,
			cfg.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
		}
		o.UsePathStyle = true
	})
	return &S3Archiver{client: client, bucket: cfg.S3Bucket}, nil
}

// Key returns the object key for an entry.
func Key(e *models.AuditEntry) string {
	t := e.CreatedAt.UTC()
	return fmt.Sprintf("audit/%04d/%02d/%02d/%s.json", t.Year(), t.Month(), t.Day(), e.ID)
}

type record struct {
	ID              string                   `json:"id"`
	ClaimID         string                   `json:"claim_id,omitempty"`
	UserID          string                   `json:"user_id"`
	Action          models.AuditAction       `json:"action"`
	Approved        bool                     `json:"approved"`
	TrustScore      float64                  `json:"trust_score"`
	EffectiveAmount decimal.Decimal          `json:"effective_amount"`
	AuditRequired   bool                     `json:"audit_required"`
	Violations      []verification.Violation `json:"violations"`
	Snapshot        json.RawMessage          `json:"snapshot,omitempty"`
	CreatedAt       time.Time                `json:"created_at"`
}

// Encode renders the archived JSON document of an entry.
func Encode(e *models.AuditEntry) ([]byte, error) {
	violations := e.Violations
	if violations == nil {
		violations = []verification.Violation{}
	}
	return json.Marshal(record{
		ID:              e.ID,
		ClaimID:         e.ClaimID,
		UserID:          e.UserID,
		Action:          e.Action,
		Approved:        e.Approved,
		TrustScore:      e.TrustScore,
		EffectiveAmount: e.EffectiveAmount,
		AuditRequired:   e.AuditRequired,
		Violations:      violations,
		Snapshot:        e.Snapshot,
		CreatedAt:       e.CreatedAt.UTC(),
	})
}

// Archive uploads the entry. The upload is conditional on the key not
// existing, so an entry is never overwritten.
func (a *S3Archiver) Archive(ctx context.Context, e *models.AuditEntry) error {
	body, err := Encode(e)
	if err != nil {
		return fmt.Errorf("encode audit entry: %w", err)
	}
	key := Key(e)
	_, err = putObject(a.client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(a.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
		IfNoneMatch: aws.String("*"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}
