package storage

import (
	"errors"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
)

func TestDatasetKey(t *testing.T) {
	assert.Equal(t, "datasets/run-1/crimes.csv", DatasetKey("run-1", "crimes.csv"))
	assert.Equal(t, "datasets/run-1/evil.csv", DatasetKey("run-1", "../../evil.csv"))
}

func TestObjectFilename(t *testing.T) {
	obj := &Object{Key: DatasetKey("run-1", "crimes 2021.xlsx")}
	assert.Equal(t, "crimes 2021.xlsx", obj.Filename())
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ContentType("csv"))
	assert.Equal(t, "application/vnd.ms-excel", ContentType("xls"))
	assert.Equal(t, "application/octet-stream", ContentType("pdf"))
}

func TestArchiveErrorMapsMissingObjects(t *testing.T) {
	for _, code := range []string{"NoSuchKey", "NoSuchBucket"} {
		err := archiveError("datasets/r/a.csv", minio.ErrorResponse{Code: code, StatusCode: 404})
		assert.ErrorIs(t, err, ErrNotFound, code)
	}

	err := archiveError("datasets/r/a.csv", minio.ErrorResponse{Code: "AccessDenied", StatusCode: 403})
	assert.NotErrorIs(t, err, ErrNotFound)

	err = archiveError("datasets/r/a.csv", errors.New("connection refused"))
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "connection refused")
}
