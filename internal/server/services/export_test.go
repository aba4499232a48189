package services

import (
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/shepherdhq/memberd/internal/common"
	sc "github.com/shepherdhq/memberd/internal/server/config"
	"github.com/shepherdhq/memberd/internal/server/models"
)

func TestRenderCSV(t *testing.T) {
	email := "a@example.com"
	items := []models.Member{{
		ID:               "m1",
		Name:             `John "JJ" Doe`,
		Email:            &email,
		Phone:            "+100",
		ZoneID:           "z1",
		CellID:           "c1",
		Status:           models.StatusFullMember,
		ConversionStatus: models.ConversionConverted,
		SundayAttendance: 4,
		FirstVisit:       time.Date(2026, 1, 4, 0, 0, 0, 0, time.UTC),
		LastVisit:        time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		Interests:        []string{"choir", "media"},
	}}

	body, err := renderCSV(items)
	if err != nil {
		t.Fatalf("renderCSV error: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(body))).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("want header + 1 row, got %d records", len(records))
	}
	if records[0][0] != "id" || len(records[0]) != len(exportHeader) {
		t.Fatalf("bad header: %v", records[0])
	}
	row := records[1]
	if row[1] != `John "JJ" Doe` {
		t.Fatalf("quoting broken: %q", row[1])
	}
	if row[14] != "choir;media" {
		t.Fatalf("interests column: %q", row[14])
	}
}

func TestCollectMembers_Pages(t *testing.T) {
	m := newDomainManager()
	svc := &ExportService{repomanager: m, config: &sc.Config{}}
	ctx := context.Background()

	for i := 0; i < 1203; i++ {
		m.members.Create(ctx, &models.Member{Name: "Member"})
	}

	all, err := svc.collectMembers(ctx, models.MemberFilter{})
	if err != nil {
		t.Fatalf("collectMembers error: %v", err)
	}
	if len(all) != 1203 {
		t.Fatalf("want 1203 members, got %d", len(all))
	}
}

func TestExportMembers(t *testing.T) {
	m := newDomainManager()
	svc := &ExportService{repomanager: m, config: &sc.Config{
		S3Bucket:       "exports",
		S3Region:       "us-east-1",
		S3RootUser:     "root",
		S3RootPassword: "secret",
		S3BaseEndpoint: "http://localhost:9000",
	}}
	ctx := context.Background()
	m.members.Create(ctx, &models.Member{Name: "John", Phone: "+100"})

	var putKey, putBucket string
	var putBody []byte

	origPut, origPresign := putObject, presignGetObject
	defer func() { putObject, presignGetObject = origPut, origPresign }()

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		putBucket = aws.ToString(in.Bucket)
		putKey = aws.ToString(in.Key)
		buf := make([]byte, 64*1024)
		n, _ := in.Body.Read(buf)
		putBody = buf[:n]
		return &s3.PutObjectOutput{}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "http://localhost:9000/exports/" + aws.ToString(in.Key)}, nil
	}

	url, err := svc.ExportMembers(ctx, models.MemberFilter{})
	if err != nil {
		t.Fatalf("ExportMembers error: %v", err)
	}
	if putBucket != "exports" || !strings.HasPrefix(putKey, "exports/") || !strings.HasSuffix(putKey, ".csv") {
		t.Fatalf("unexpected object location: %s/%s", putBucket, putKey)
	}
	if !strings.Contains(string(putBody), "John") {
		t.Fatal("uploaded CSV missing member row")
	}
	if !strings.Contains(url, putKey) {
		t.Fatalf("presigned URL %q does not reference %q", url, putKey)
	}
}

func TestExportMembers_UploadError(t *testing.T) {
	m := newDomainManager()
	svc := &ExportService{repomanager: m, config: &sc.Config{S3Bucket: "exports"}}

	origPut := putObject
	defer func() { putObject = origPut }()
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("boom")
	}

	_, err := svc.ExportMembers(context.Background(), models.MemberFilter{})
	if !errors.Is(err, common.ErrInternal) {
		t.Fatalf("want ErrInternal, got %v", err)
	}
}
