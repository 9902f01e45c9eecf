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

//go:generate mockgen -destination mocks/registry_mock.go -source registry.go -package mocks

package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/docker/go-units"

	logger "modelpipe.io/modelpipe/internal/pipelog"
	"modelpipe.io/modelpipe/internal/pipeerrors"
	"modelpipe.io/modelpipe/pipeline/metrics"
	"modelpipe.io/modelpipe/pipeline/models"
	"modelpipe.io/modelpipe/pkg/digest"
	"modelpipe.io/modelpipe/pkg/frame"
	"modelpipe.io/modelpipe/pkg/objectstorage"
)

// MetricStatus is the outcome of a production metric lookup.
type MetricStatus int

const (
	// Found means the production metric is readable and present.
	Found MetricStatus = iota

	// NotFound means no production metric exists.
	NotFound

	// TransientError means the production metric could not be read.
	TransientError
)

// String returns the lookup status name.
func (s MetricStatus) String() string {
	switch s {
	case Found:
		return "Found"
	case NotFound:
		return "NotFound"
	case TransientError:
		return "TransientError"
	}

	return "Unknown"
}

// MetricResult is the result of a production metric lookup.
type MetricResult struct {
	Status MetricStatus
	Value  float64
	Err    error
}

// Registry is the interface used for the production model registry.
type Registry interface {
	// Bucket returns the bucket of the registry.
	Bucket() string

	// EnsureBucket creates the bucket when it does not exist.
	EnsureBucket(ctx context.Context) error

	// Exists returns whether the remote key exists.
	Exists(ctx context.Context, key string) (bool, error)

	// GetF1Score returns the production f1 score, 0 when it can not be read.
	GetF1Score(ctx context.Context) float64

	// LookupF1Score returns the production f1 score with the lookup outcome.
	LookupF1Score(ctx context.Context) MetricResult

	// PutModel uploads the local model file as production model.
	PutModel(ctx context.Context, localPath string) error

	// PutMetrics uploads the local metric file as production metrics.
	PutMetrics(ctx context.Context, localPath string) error

	// LoadModel downloads and decodes the production model.
	LoadModel(ctx context.Context) (*models.Estimator, error)

	// Predict returns predictions of the production model, loaded once per registry.
	Predict(ctx context.Context, rows *frame.Frame) ([]string, error)
}

type registry struct {
	storage   objectstorage.ObjectStorage
	bucket    string
	modelKey  string
	metricKey string

	mu        sync.Mutex
	estimator *models.Estimator
}

// New returns a registry over the object storage.
func New(storage objectstorage.ObjectStorage, bucket, modelKey, metricKey string) Registry {
	return &registry{
		storage:   storage,
		bucket:    bucket,
		modelKey:  modelKey,
		metricKey: metricKey,
	}
}

// Bucket returns the bucket of the registry.
func (r *registry) Bucket() string {
	return r.bucket
}

// EnsureBucket creates the bucket when it does not exist.
func (r *registry) EnsureBucket(ctx context.Context) error {
	if _, err := r.storage.GetBucketMetadata(ctx, r.bucket); err == nil {
		return nil
	}

	if err := r.storage.CreateBucket(ctx, r.bucket); err != nil {
		return pipeerrors.New(pipeerrors.KindRegistry, "EnsureBucket", err)
	}

	logger.WithObject(r.bucket, "").Info("bucket created")
	return nil
}

// Exists returns whether the remote key exists.
func (r *registry) Exists(ctx context.Context, key string) (bool, error) {
	ok, err := r.storage.IsObjectExist(ctx, r.bucket, key)
	if err != nil {
		return false, pipeerrors.New(pipeerrors.KindRegistry, "Exists", err)
	}

	return ok, nil
}

// GetF1Score returns the production f1 score, any failure is logged and reported as 0.
func (r *registry) GetF1Score(ctx context.Context) float64 {
	result := r.LookupF1Score(ctx)
	if result.Status == TransientError {
		logger.WithObject(r.bucket, r.metricKey).Warnf("get f1 score failed: %s", result.Err.Error())
		return 0
	}

	return result.Value
}

// LookupF1Score reads the production metric file. A missing object or a missing
// f1_score field is NotFound, any other failure is TransientError.
func (r *registry) LookupF1Score(ctx context.Context) MetricResult {
	log := logger.WithObject(r.bucket, r.metricKey)

	body, err := r.storage.GetObject(ctx, r.bucket, r.metricKey)
	if err != nil {
		if errors.Is(err, objectstorage.ErrObjectNotFound) {
			log.Info("production metrics not found")
			return MetricResult{Status: NotFound}
		}

		metrics.LookupFailureCount.Inc()
		return MetricResult{Status: TransientError, Err: pipeerrors.New(pipeerrors.KindRegistry, "LookupF1Score", err)}
	}
	defer body.Close()

	var metric struct {
		F1 *float64 `json:"f1_score"`
	}
	if err := json.NewDecoder(body).Decode(&metric); err != nil {
		metrics.LookupFailureCount.Inc()
		return MetricResult{Status: TransientError, Err: pipeerrors.New(pipeerrors.KindRegistry, "LookupF1Score", fmt.Errorf("decode metrics: %w", err))}
	}

	if metric.F1 == nil {
		log.Warn("production metrics have no f1_score")
		return MetricResult{Status: NotFound}
	}

	log.Infof("production f1 score is %f", *metric.F1)
	return MetricResult{Status: Found, Value: *metric.F1}
}

// PutModel uploads the local model file as production model.
func (r *registry) PutModel(ctx context.Context, localPath string) error {
	if err := r.put(ctx, r.modelKey, localPath); err != nil {
		return pipeerrors.New(pipeerrors.KindRegistry, "PutModel", err)
	}

	return nil
}

// PutMetrics uploads the local metric file as production metrics.
func (r *registry) PutMetrics(ctx context.Context, localPath string) error {
	if err := r.put(ctx, r.metricKey, localPath); err != nil {
		return pipeerrors.New(pipeerrors.KindRegistry, "PutMetrics", err)
	}

	return nil
}

// put overwrites key with the file content, the sha256 digest is sent as object metadata.
func (r *registry) put(ctx context.Context, key, localPath string) error {
	log := logger.WithObject(r.bucket, key)
	metrics.UploadCount.WithLabelValues(key).Inc()

	d, err := digest.HashFile(localPath, digest.AlgorithmSHA256)
	if err != nil {
		metrics.UploadFailureCount.WithLabelValues(key).Inc()
		return err
	}

	f, err := os.Open(localPath)
	if err != nil {
		metrics.UploadFailureCount.WithLabelValues(key).Inc()
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		metrics.UploadFailureCount.WithLabelValues(key).Inc()
		return err
	}

	if err := r.storage.PutObject(ctx, r.bucket, key, d.String(), f); err != nil {
		metrics.UploadFailureCount.WithLabelValues(key).Inc()
		log.Errorf("upload %s failed: %s", localPath, err.Error())
		return err
	}

	log.Infof("uploaded %s (%s) with digest %s", localPath, units.HumanSize(float64(fi.Size())), d.String())
	return nil
}

// LoadModel downloads and decodes the production model.
func (r *registry) LoadModel(ctx context.Context) (*models.Estimator, error) {
	body, err := r.storage.GetObject(ctx, r.bucket, r.modelKey)
	if err != nil {
		if errors.Is(err, objectstorage.ErrObjectNotFound) {
			err = fmt.Errorf("%w: %s/%s", pipeerrors.ErrNotFound, r.bucket, r.modelKey)
		}

		return nil, pipeerrors.New(pipeerrors.KindRegistry, "LoadModel", err)
	}
	defer body.Close()

	estimator, err := decodeEstimator(body)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindRegistry, "LoadModel", err)
	}

	logger.WithObject(r.bucket, r.modelKey).Info("production model loaded")
	return estimator, nil
}

// Predict loads the production model on first use, a failed load is retried by the next call.
func (r *registry) Predict(ctx context.Context, rows *frame.Frame) ([]string, error) {
	estimator, err := r.loadOnce(ctx)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindRegistry, "Predict", fmt.Errorf("%w: %v", pipeerrors.ErrModelNotLoaded, err))
	}

	labels, err := estimator.Predict(rows)
	if err != nil {
		return nil, pipeerrors.New(pipeerrors.KindRegistry, "Predict", err)
	}

	return labels, nil
}

func (r *registry) loadOnce(ctx context.Context) (*models.Estimator, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.estimator != nil {
		return r.estimator, nil
	}

	estimator, err := r.LoadModel(ctx)
	if err != nil {
		return nil, err
	}

	r.estimator = estimator
	return estimator, nil
}

func decodeEstimator(r io.Reader) (*models.Estimator, error) {
	estimator := &models.Estimator{}
	if err := json.NewDecoder(r).Decode(estimator); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}

	if estimator.Transformer == nil || estimator.Classifier == nil {
		return nil, errors.New("decode model: incomplete estimator")
	}

	return estimator, nil
}
