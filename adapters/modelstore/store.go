// Package modelstore persists trained model bundles to a directory and
// serves them to assessment workers through an atomic in-memory pointer.
// Readers never observe a partially-written bundle: Save builds the new
// bundle completely, fsyncs it to disk under temporary names, renames each
// artifact into place, then swaps the pointer in one step.
package modelstore

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/VruddithShetty/TrialEquity/adapters/ml"
	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

const (
	classifierFile   = "classifier.json"
	outlierModelFile = "outlier_model.json"
	scalerFile       = "scaler.json"
	manifestFile     = "feature_names.json"
	metadataFile     = "metadata.json"
)

// metadata is the bundle bookkeeping persisted next to the model artifacts
type metadata struct {
	Accuracy  float64   `json:"accuracy"`
	Version   string    `json:"version"`
	TrainedAt time.Time `json:"trained_at"`
}

// FileStore is the directory-backed ModelStore implementation
type FileStore struct {
	dir     string
	current atomic.Pointer[ports.ModelBundle]
}

// NewFileStore creates a store rooted at dir, creating it if absent
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "failed to create model directory %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// Current returns the in-memory bundle, or nil when nothing is loaded.
// Safe for concurrent use; the returned bundle is immutable.
func (s *FileStore) Current() *ports.ModelBundle {
	return s.current.Load()
}

// Load reads the persisted artifacts, validates the manifest pairing, and
// swaps the result in as the current bundle.
//
// Load reads the artifacts as separate files and must not race a concurrent
// Save, or it may assemble a bundle from two generations. In-flight
// assessments are unaffected: they read through Current, which only ever
// swaps to a fully assembled bundle. Callers load at boot and after their
// own Save; a retrain-triggered reload must be serialized with the Save
// that produced it.
func (s *FileStore) Load(ctx context.Context) (*ports.ModelBundle, error) {
	if _, err := os.Stat(filepath.Join(s.dir, classifierFile)); os.IsNotExist(err) {
		return nil, errors.ModelNotTrained("no trained model artifacts in " + s.dir)
	}

	classifierRaw, err := os.ReadFile(filepath.Join(s.dir, classifierFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read classifier artifact")
	}
	classifier, err := ml.UnmarshalClassifier(classifierRaw)
	if err != nil {
		return nil, err
	}

	outlierRaw, err := os.ReadFile(filepath.Join(s.dir, outlierModelFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read outlier model artifact")
	}
	outlier, err := ml.UnmarshalOutlierModel(outlierRaw)
	if err != nil {
		return nil, err
	}

	scalerRaw, err := os.ReadFile(filepath.Join(s.dir, scalerFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read scaler artifact")
	}
	scaler, err := ml.UnmarshalScaler(scalerRaw)
	if err != nil {
		return nil, err
	}

	manifestRaw, err := os.ReadFile(filepath.Join(s.dir, manifestFile))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read feature-name manifest")
	}
	var featureNames []string
	if err := json.Unmarshal(manifestRaw, &featureNames); err != nil {
		return nil, errors.Wrap(err, "failed to parse feature-name manifest")
	}

	var meta metadata
	if metaRaw, err := os.ReadFile(filepath.Join(s.dir, metadataFile)); err == nil {
		if err := json.Unmarshal(metaRaw, &meta); err != nil {
			return nil, errors.Wrap(err, "failed to parse bundle metadata")
		}
	}

	bundle := &ports.ModelBundle{
		Classifier:   classifier,
		OutlierModel: outlier,
		Scaler:       scaler,
		FeatureNames: featureNames,
		Accuracy:     meta.Accuracy,
		Version:      meta.Version,
		TrainedAt:    meta.TrainedAt,
	}
	if err := validateBundle(bundle); err != nil {
		return nil, err
	}

	s.current.Store(bundle)
	return bundle, nil
}

// Save persists the bundle and makes it current. Each artifact is written to
// a temporary file and renamed into place; the pointer swap happens last, so
// in-flight assessments finish against the bundle they started with.
func (s *FileStore) Save(ctx context.Context, bundle *ports.ModelBundle) error {
	if err := validateBundle(bundle); err != nil {
		return err
	}

	classifierRaw, err := ml.MarshalClassifier(bundle.Classifier)
	if err != nil {
		return err
	}
	outlierRaw, err := ml.MarshalOutlierModel(bundle.OutlierModel)
	if err != nil {
		return err
	}
	scalerRaw, err := ml.MarshalScaler(bundle.Scaler)
	if err != nil {
		return err
	}
	manifestRaw, err := json.Marshal(bundle.FeatureNames)
	if err != nil {
		return errors.Wrap(err, "failed to serialize feature-name manifest")
	}
	metaRaw, err := json.Marshal(metadata{
		Accuracy:  bundle.Accuracy,
		Version:   bundle.Version,
		TrainedAt: bundle.TrainedAt,
	})
	if err != nil {
		return errors.Wrap(err, "failed to serialize bundle metadata")
	}

	artifacts := map[string][]byte{
		classifierFile:   classifierRaw,
		outlierModelFile: outlierRaw,
		scalerFile:       scalerRaw,
		manifestFile:     manifestRaw,
		metadataFile:     metaRaw,
	}
	for name, data := range artifacts {
		if err := writeFileAtomic(filepath.Join(s.dir, name), data); err != nil {
			return err
		}
	}

	s.current.Store(bundle)
	return nil
}

// validateBundle enforces the manifest pairing invariant: the feature-name
// list must match the width of every model in the bundle.
func validateBundle(bundle *ports.ModelBundle) error {
	if bundle == nil {
		return errors.InvalidInput("bundle cannot be nil")
	}
	width := len(bundle.FeatureNames)
	if width == 0 {
		return errors.InvalidInput("bundle feature-name manifest is empty")
	}
	if bundle.Scaler.Width() != width {
		return errors.FeatureShapeMismatch(width, bundle.Scaler.Width())
	}
	if bundle.Classifier.Width() != width {
		return errors.FeatureShapeMismatch(width, bundle.Classifier.Width())
	}
	if bundle.OutlierModel.Width() != width {
		return errors.FeatureShapeMismatch(width, bundle.OutlierModel.Width())
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create temp file for %s", path)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to write %s", path)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to sync %s", path)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to close %s", path)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return errors.Wrapf(err, "failed to replace %s", path)
	}
	return nil
}
