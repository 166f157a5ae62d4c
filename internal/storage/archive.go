package storage

import (
	"context"
	"errors"
	"fmt"
	"path"
)

// ErrNotFound is returned by Get for a key with no archived object.
var ErrNotFound = errors.New("archived dataset not found")

// Object is one archived dataset.
type Object struct {
	Key         string
	ContentType string
	Data        []byte
}

// Filename is the original upload name, recovered from the key.
func (o *Object) Filename() string { return path.Base(o.Key) }

// Archive keeps copies of submitted datasets, one object per run.
type Archive interface {
	Put(ctx context.Context, obj *Object) error
	Get(ctx context.Context, key string) (*Object, error)
	Remove(ctx context.Context, key string) error
}

var contentTypes = map[string]string{
	"csv":  "text/csv",
	"xls":  "application/vnd.ms-excel",
	"xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
}

// ContentType maps a dataset extension to its MIME type.
func ContentType(ext string) string {
	if ct, ok := contentTypes[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

// DatasetKey is the object key a run's dataset is archived under.
func DatasetKey(runID, filename string) string {
	return fmt.Sprintf("datasets/%s/%s", runID, path.Base(filename))
}
