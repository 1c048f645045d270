// Package storage publishes dashboard exports to S3-compatible object storage.
package storage

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"
)

// ObjectInfo represents metadata for a remote object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// ObjectStorage captures the S3-compatible operations the exporter needs.
type ObjectStorage interface {
	ListObjects(ctx context.Context, prefix string) ([]ObjectInfo, error)
	DownloadObject(ctx context.Context, key string, destPath string) error
	UploadObject(ctx context.Context, key string, data []byte) error
}

var slugReplacer = strings.NewReplacer(
	"Ç", "c", "Ğ", "g", "İ", "i", "I", "i", "Ö", "o", "Ş", "s", "Ü", "u",
	"ç", "c", "ğ", "g", "ı", "i", "ö", "o", "ş", "s", "ü", "u",
)

// Slug turns a region or project name into an ascii key segment.
func Slug(name string) string {
	s := strings.ToLower(slugReplacer.Replace(strings.TrimSpace(name)))
	var b strings.Builder
	dash := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// ExportKey builds the object key of a region workbook generated at t, e.g.
// exports/2025/01/marmara-20250102-150405.xlsx.
func ExportKey(prefix, region string, t time.Time) string {
	name := fmt.Sprintf("%s-%s.xlsx", Slug(region), t.Format("20060102-150405"))
	return path.Join(strings.Trim(prefix, "/"), t.Format("2006"), t.Format("01"), name)
}
