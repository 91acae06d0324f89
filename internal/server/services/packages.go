package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	sc "github.com/surveyfield/fieldsync/internal/server/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/surveyfield/fieldsync/internal/logging"
	"github.com/surveyfield/fieldsync/internal/server/models"
	"github.com/surveyfield/fieldsync/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

// PackageService lists downloadable survey packages and signs their
// time-bounded download locations.
type PackageService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
	logger      logging.Logger
}

// NewPackageService constructs a PackageService using repositories and server config.
func NewPackageService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config, logger logging.Logger) *PackageService {
	return &PackageService{
		db:          db,
		repomanager: m,
		config:      cfg,
		logger:      logger.With("module", "package_service"),
	}
}

func (s *PackageService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

func (s *PackageService) getPresignedGetURL(ctx context.Context, key string, validity time.Duration) (string, error) {
	presignClient, err := s.getPresignClient()
	if err != nil {
		return "", err
	}

	bucket := s.config.S3Bucket

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &bucket,
		Key:    &key,
	}, s3.WithPresignExpires(validity))
	if err != nil {
		return "", err
	}

	return req.URL, nil
}

// ListReady returns the project's ready packages newest first, each with a
// signed download URL when its artifact exists.
//
// Signing failures are isolated per package: the affected entry keeps a nil
// DownloadURL and the listing still returns every already-signed entry. A
// package without an artifact also carries a nil DownloadURL; packages can
// exist as metadata before their binary is uploaded.
func (s *PackageService) ListReady(ctx context.Context, projectID string) ([]*models.PackageSummary, error) {
	pkgs, err := s.repomanager.Packages(s.db).SelectReady(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("error selecting packages: %w", err)
	}

	summaries := make([]*models.PackageSummary, 0, len(pkgs))
	for _, p := range pkgs {
		summary := &models.PackageSummary{
			ID:        p.ID,
			Name:      p.Name,
			Version:   p.Version,
			Manifest:  p.Manifest,
			UpdatedAt: p.UpdatedAt,
		}
		if p.ArtifactKey != "" {
			url, err := s.getPresignedGetURL(ctx, p.ArtifactKey, s.config.ArtifactURLValidityDuration)
			if err != nil {
				s.logger.Warn(ctx, "failed to sign package download url",
					"package_id", p.ID, "error", err.Error())
			} else {
				summary.DownloadURL = &url
			}
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}
