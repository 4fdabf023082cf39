package ml

import (
	"encoding/json"
	"fmt"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
	"github.com/VruddithShetty/TrialEquity/ports"
)

// Model kind tags recorded in serialized artifacts
const (
	kindLogisticRegression    = "logistic_regression"
	kindGradientBoostedStumps = "gradient_boosted_stumps"
	kindSoftVotingEnsemble    = "soft_voting_ensemble"
	kindIsolationForest       = "isolation_forest"
	kindStandardScaler        = "standard_scaler"
)

// envelope wraps a serialized model with its kind tag so artifacts stay
// self-describing on disk
type envelope struct {
	Kind string          `json:"kind"`
	Spec json.RawMessage `json:"spec"`
}

type ensembleSpec struct {
	Weights []float64         `json:"weights"`
	Members []json.RawMessage `json:"members"`
}

func seal(kind string, spec interface{}) ([]byte, error) {
	raw, err := json.Marshal(spec)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to serialize %s", kind)
	}
	return json.Marshal(envelope{Kind: kind, Spec: raw})
}

func open(data []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return env, errors.Wrap(err, "failed to parse model envelope")
	}
	return env, nil
}

// MarshalClassifier serializes any supported classifier into a tagged
// envelope
func MarshalClassifier(c ports.Classifier) ([]byte, error) {
	switch m := c.(type) {
	case *LogisticRegression:
		return seal(kindLogisticRegression, m)
	case *GradientBoostedStumps:
		return seal(kindGradientBoostedStumps, m)
	case *SoftVotingEnsemble:
		spec := ensembleSpec{Weights: m.Weights()}
		for _, member := range m.Members() {
			raw, err := MarshalClassifier(member)
			if err != nil {
				return nil, err
			}
			spec.Members = append(spec.Members, raw)
		}
		return seal(kindSoftVotingEnsemble, spec)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported classifier type %T", c))
	}
}

// UnmarshalClassifier restores a classifier from a tagged envelope
func UnmarshalClassifier(data []byte) (ports.Classifier, error) {
	env, err := open(data)
	if err != nil {
		return nil, err
	}
	switch env.Kind {
	case kindLogisticRegression:
		var m LogisticRegression
		if err := json.Unmarshal(env.Spec, &m); err != nil {
			return nil, errors.Wrap(err, "failed to parse logistic regression")
		}
		return &m, nil
	case kindGradientBoostedStumps:
		var m GradientBoostedStumps
		if err := json.Unmarshal(env.Spec, &m); err != nil {
			return nil, errors.Wrap(err, "failed to parse boosted stumps")
		}
		return &m, nil
	case kindSoftVotingEnsemble:
		var spec ensembleSpec
		if err := json.Unmarshal(env.Spec, &spec); err != nil {
			return nil, errors.Wrap(err, "failed to parse ensemble spec")
		}
		members := make([]ports.Classifier, 0, len(spec.Members))
		for _, raw := range spec.Members {
			member, err := UnmarshalClassifier(raw)
			if err != nil {
				return nil, err
			}
			members = append(members, member)
		}
		return NewSoftVotingEnsemble(members, spec.Weights)
	default:
		return nil, errors.InvalidInput(fmt.Sprintf("unknown classifier kind %q", env.Kind))
	}
}

// MarshalOutlierModel serializes a trained outlier model
func MarshalOutlierModel(m ports.OutlierModel) ([]byte, error) {
	forest, ok := m.(*IsolationForest)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported outlier model type %T", m))
	}
	return seal(kindIsolationForest, forest)
}

// UnmarshalOutlierModel restores an outlier model from a tagged envelope
func UnmarshalOutlierModel(data []byte) (ports.OutlierModel, error) {
	env, err := open(data)
	if err != nil {
		return nil, err
	}
	if env.Kind != kindIsolationForest {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown outlier model kind %q", env.Kind))
	}
	var forest IsolationForest
	if err := json.Unmarshal(env.Spec, &forest); err != nil {
		return nil, errors.Wrap(err, "failed to parse isolation forest")
	}
	return &forest, nil
}

// MarshalScaler serializes fitted scaler parameters
func MarshalScaler(s ports.Scaler) ([]byte, error) {
	scaler, ok := s.(*StandardScaler)
	if !ok {
		return nil, errors.InvalidInput(fmt.Sprintf("unsupported scaler type %T", s))
	}
	return seal(kindStandardScaler, scaler)
}

// UnmarshalScaler restores a scaler from a tagged envelope
func UnmarshalScaler(data []byte) (ports.Scaler, error) {
	env, err := open(data)
	if err != nil {
		return nil, err
	}
	if env.Kind != kindStandardScaler {
		return nil, errors.InvalidInput(fmt.Sprintf("unknown scaler kind %q", env.Kind))
	}
	var scaler StandardScaler
	if err := json.Unmarshal(env.Spec, &scaler); err != nil {
		return nil, errors.Wrap(err, "failed to parse scaler")
	}
	return &scaler, nil
}
