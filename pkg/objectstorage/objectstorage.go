/*
 *     Copyright 2023 The Modelpipe Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

//go:generate mockgen -destination mocks/objectstorage_mock.go -source objectstorage.go -package mocks

package objectstorage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrObjectNotFound is returned when the requested object does not exist.
var ErrObjectNotFound = errors.New("object not found")

type ObjectMetadata struct {
	// Key is object key.
	Key string

	// ContentLength is Content-Length header.
	ContentLength int64

	// ContentType is Content-Type header.
	ContentType string

	// ETag is ETag header.
	ETag string

	// Digest is object digest.
	Digest string

	// LastModifiedTime is last modified time.
	LastModifiedTime time.Time
}

type BucketMetadata struct {
	// Name is bucket name.
	Name string

	// CreateAt is bucket create time.
	CreateAt time.Time
}

type ObjectStorage interface {
	// GetBucketMetadata returns metadata of bucket.
	GetBucketMetadata(ctx context.Context, bucketName string) (*BucketMetadata, error)

	// CreateBucket creates bucket of object storage.
	CreateBucket(ctx context.Context, bucketName string) error

	// GetObjectMetadata returns metadata of object, the bool is false when object does not exist.
	GetObjectMetadata(ctx context.Context, bucketName, objectKey string) (*ObjectMetadata, bool, error)

	// GetObject returns data of object, ErrObjectNotFound when object does not exist.
	GetObject(ctx context.Context, bucketName, objectKey string) (io.ReadCloser, error)

	// PutObject puts data of object, an existing object is overwritten.
	PutObject(ctx context.Context, bucketName, objectKey, digest string, reader io.ReadSeeker) error

	// DeleteObject deletes data of object.
	DeleteObject(ctx context.Context, bucketName, objectKey string) error

	// IsObjectExist returns whether the object exists.
	IsObjectExist(ctx context.Context, bucketName, objectKey string) (bool, error)
}

// Option is a functional option for object storage client.
type Option func(o *options)

type options struct {
	httpClient     *http.Client
	forcePathStyle bool
}

// WithHTTPClient set http client for object storage.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithS3ForcePathStyle set path style addressing for s3 compatible storage.
func WithS3ForcePathStyle(forcePathStyle bool) Option {
	return func(o *options) {
		o.forcePathStyle = forcePathStyle
	}
}

// New object storage interface.
func New(name, region, endpoint, accessKey, secretKey string, opts ...Option) (ObjectStorage, error) {
	o := &options{
		httpClient: &http.Client{Timeout: DefaultHTTPTimeout},
	}

	for _, opt := range opts {
		opt(o)
	}

	switch name {
	case ServiceNameS3:
		return newS3(region, endpoint, accessKey, secretKey, o)
	case ServiceNameOSS:
		return newOSS(region, endpoint, accessKey, secretKey, o)
	}

	return nil, fmt.Errorf("unknow service name %s", name)
}
