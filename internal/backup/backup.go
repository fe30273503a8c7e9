// Package backup renders the note collection as a downloadable export and
// optionally uploads it to S3.
package backup

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"lumina/internal/clients/file"
	"lumina/internal/services/notes"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"gopkg.in/yaml.v3"
)

// Format is an export encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var (
	// ErrUnknownFormat is returned for an export format other than json or yaml.
	ErrUnknownFormat = errors.New("unknown export format")
	// ErrS3Disabled is returned when no bucket or credentials are configured.
	ErrS3Disabled = errors.New("s3 export is not configured")
)

// ParseFormat accepts json (the default for an empty string), yaml and yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Ext is the file extension for f.
func (f Format) Ext() string {
	if f == FormatYAML {
		return "yaml"
	}
	return "json"
}

// ContentType is the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatYAML {
		return "application/yaml"
	}
	return "application/json"
}

// Filename names an export made at now, using the UTC date.
func Filename(now time.Time, f Format) string {
	return fmt.Sprintf("lumina-backup-%s.%s", now.UTC().Format(time.DateOnly), f.Ext())
}

// Encode renders list as an indented JSON or YAML array.
func Encode(list []notes.Note, f Format) ([]byte, error) {
	out := make([]notes.Note, len(list))
	for i, n := range list {
		out[i] = n.Clone()
	}

	switch f {
	case FormatJSON:
		raw, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
		return raw, nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("encode yaml: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// WriteFile encodes list into dst atomically.
func WriteFile(dst string, list []notes.Note, f Format) error {
	raw, err := Encode(list, f)
	if err != nil {
		return err
	}
	return file.WriteFileAtomic(dst, raw, 0o644)
}

// S3Config holds the upload target.
type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// Enabled reports whether uploads can be attempted.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKey != "" && c.SecretKey != ""
}

// s3Client is an interface for testability.
type s3Client interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Uploader puts exports into a bucket.
type Uploader struct {
	cfg    S3Config
	client s3Client
	now    func() time.Time
}

// NewUploader builds an uploader. A disabled config yields an uploader whose
// Upload always returns ErrS3Disabled.
func NewUploader(cfg S3Config) *Uploader {
	u := &Uploader{cfg: cfg, now: time.Now}
	if cfg.Enabled() {
		u.client = newS3Client(cfg)
	}
	return u
}

func newS3Client(cfg S3Config) *s3.Client {
	opts := s3.Options{
		Region:       cfg.Region,
		Credentials:  credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		UsePathStyle: true,
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}
	return s3.New(opts)
}

// Enabled reports whether Upload can succeed.
func (u *Uploader) Enabled() bool { return u.client != nil }

// Upload encodes list as JSON and stores it under <prefix>/<filename>,
// returning the object key.
func (u *Uploader) Upload(ctx context.Context, list []notes.Note) (string, error) {
	if u.client == nil {
		return "", ErrS3Disabled
	}

	raw, err := Encode(list, FormatJSON)
	if err != nil {
		return "", err
	}

	key := Filename(u.now(), FormatJSON)
	if u.cfg.Prefix != "" {
		key = path.Join(u.cfg.Prefix, key)
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(raw),
		ContentLength: aws.Int64(int64(len(raw))),
		ContentType:   aws.String(FormatJSON.ContentType()),
	})
	if err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	return key, nil
}
