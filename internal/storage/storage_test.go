package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "marmara", Slug("MARMARA"))
	assert.Equal(t, "ic-anadolu", Slug("İÇ ANADOLU"))
	assert.Equal(t, "tumu", Slug("TÜMÜ"))
	assert.Equal(t, "kucukbay-izmir-ftl", Slug(" KÜÇÜKBAY İZMİR FTL "))
	assert.Equal(t, "", Slug("  "))
}

func TestExportKey(t *testing.T) {
	at := time.Date(2025, 1, 2, 15, 4, 5, 0, time.UTC)
	assert.Equal(t, "exports/2025/01/ege-20250102-150405.xlsx", ExportKey("/exports/", "EGE", at))
	assert.Equal(t, "2025/01/ege-20250102-150405.xlsx", ExportKey("", "EGE", at))
}

func TestNewMinioClientValidation(t *testing.T) {
	_, err := NewMinioClient(MinioConfig{AccessKey: "a", SecretKey: "b", Bucket: "c"})
	assert.Error(t, err)

	_, err = NewMinioClient(MinioConfig{Endpoint: "s3.local:9000", Bucket: "c"})
	assert.Error(t, err)

	_, err = NewMinioClient(MinioConfig{Endpoint: "s3.local:9000", AccessKey: "a", SecretKey: "b"})
	assert.Error(t, err)

	c, err := NewMinioClient(MinioConfig{Endpoint: "https://s3.local:9000/", AccessKey: "a", SecretKey: "b", Bucket: "exports"})
	require.NoError(t, err)
	assert.Equal(t, "exports", c.bucket)
	assert.Equal(t, "s3.local:9000", c.client.EndpointURL().Host)
	assert.Equal(t, "https", c.client.EndpointURL().Scheme)
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", contentType("a/b.XLSX"))
	assert.Equal(t, "application/json", contentType("snap.json"))
	assert.Equal(t, "application/octet-stream", contentType("blob"))
}
