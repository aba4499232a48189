// This file implements ExportService: CSV snapshots of the member list,
// uploaded to object storage and handed back as a presigned download URL.
package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/shepherdhq/memberd/internal/common"
	sc "github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/models"
	"github.com/shepherdhq/memberd/internal/server/repositories/repomanager"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return c.PutObject(ctx, in)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}
)

const (
	exportPageSize      = 500
	exportURLValidity   = 15 * time.Minute
	exportObjectMaxRows = 100000
)

type ExportService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	config      *sc.Config
}

func NewExportService(db *sql.DB, m repomanager.RepositoryManager, cfg *sc.Config) *ExportService {
	return &ExportService{db: db, repomanager: m, config: cfg}
}

func exportStorageKey() string {
	d := time.Now()
	return fmt.Sprintf("exports/%d/%02d/%02d/%v.csv", d.Year(), d.Month(), d.Day(), uuid.New())
}

func (s *ExportService) getS3Client() (*s3.Client, error) {
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
	return newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	}), nil
}

var exportHeader = []string{
	"id", "name", "email", "phone", "address", "gender", "zone_id", "cell_id",
	"status", "conversion_status", "sunday_attendance", "first_visit",
	"last_visit", "prayer_request", "interests", "education_level",
	"age_range", "created_at",
}

// renderCSV writes the members as CSV, header first.
func renderCSV(items []models.Member) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeader); err != nil {
		return nil, err
	}
	for i := range items {
		m := &items[i]
		email := ""
		if m.Email != nil {
			email = *m.Email
		}
		record := []string{
			m.ID, m.Name, email, m.Phone, m.Address, m.Gender, m.ZoneID, m.CellID,
			string(m.Status), string(m.ConversionStatus),
			strconv.Itoa(m.SundayAttendance),
			m.FirstVisit.Format(time.RFC3339),
			m.LastVisit.Format(time.RFC3339),
			m.PrayerRequest,
			strings.Join(m.Interests, ";"),
			m.EducationLevel, m.AgeRange,
			m.CreatedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// collectMembers pages through the filtered list until it has everything.
func (s *ExportService) collectMembers(ctx context.Context, filter models.MemberFilter) ([]models.Member, error) {
	repo := s.repomanager.Members(s.db)
	var all []models.Member
	filter.Limit = exportPageSize
	filter.Offset = 0
	for {
		items, total, err := repo.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		filter.Offset += len(items)
		if len(items) == 0 || filter.Offset >= total || len(all) >= exportObjectMaxRows {
			return all, nil
		}
	}
}

// ExportMembers snapshots the filtered member list to a CSV object in the
// configured bucket and returns a time-limited download URL.
func (s *ExportService) ExportMembers(ctx context.Context, filter models.MemberFilter) (string, error) {
	members, err := s.collectMembers(ctx, filter)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	body, err := renderCSV(members)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	client, err := s.getS3Client()
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	bucket := s.config.S3Bucket
	key := exportStorageKey()
	_, err = putObject(client, ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInternal, err)
	}

	req, err := presignGetObject(newS3PresignClient(client), ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(exportURLValidity))
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrInternal, err)
	}
	return req.URL, nil
}
