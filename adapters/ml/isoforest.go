package ml

import (
	"math"
	"math/rand"

	"github.com/montanaflynn/stats"

	"github.com/VruddithShetty/TrialEquity/internal/errors"
)

const (
	defaultTreeCount  = 100
	defaultSampleSize = 256
	eulerMascheroni   = 0.5772156649015329
)

// isoNode is one node of an isolation tree. Leaf nodes have Left == -1 and
// record the number of training samples that terminated there.
type isoNode struct {
	SplitFeature int     `json:"f"`
	SplitValue   float64 `json:"v"`
	Left         int     `json:"l"`
	Right        int     `json:"r"`
	Size         int     `json:"n"`
}

type isoTree struct {
	Nodes []isoNode `json:"nodes"`
}

// IsolationForest is an unsupervised anomaly detector over isolation trees.
// Score follows the decision-function convention: negative means anomalous,
// the binary call is score < 0 at the threshold fixed by the contamination
// prior during training.
type IsolationForest struct {
	Trees         []isoTree `json:"trees"`
	SampleSize    int       `json:"sample_size"`
	NumFeatures   int       `json:"num_features"`
	Offset        float64   `json:"offset"`
	Contamination float64   `json:"contamination"`
}

// FitIsolationForest trains a forest on scaled rows. Training randomness
// comes exclusively from rng, so a fixed seed reproduces the forest exactly.
func FitIsolationForest(rows [][]float64, contamination float64, rng *rand.Rand) (*IsolationForest, error) {
	// avgPathLength(1) is zero, so a single row cannot anchor path-length
	// normalization
	if len(rows) < 2 {
		return nil, errors.InsufficientData("isolation forest needs at least 2 training rows")
	}
	if contamination <= 0 || contamination >= 0.5 {
		return nil, errors.InvalidInput("contamination must be in (0,0.5)")
	}

	sampleSize := defaultSampleSize
	if sampleSize > len(rows) {
		sampleSize = len(rows)
	}
	heightLimit := int(math.Ceil(math.Log2(float64(sampleSize)))) + 1

	forest := &IsolationForest{
		Trees:         make([]isoTree, 0, defaultTreeCount),
		SampleSize:    sampleSize,
		NumFeatures:   len(rows[0]),
		Contamination: contamination,
	}

	for i := 0; i < defaultTreeCount; i++ {
		sample := subsample(rows, sampleSize, rng)
		tree := isoTree{}
		buildIsoTree(&tree, sample, 0, heightLimit, rng)
		forest.Trees = append(forest.Trees, tree)
	}

	// Threshold at the contamination quantile of training scores, matching
	// the decision-function convention.
	trainScores := make([]float64, len(rows))
	for i, row := range rows {
		trainScores[i] = forest.scoreSample(row)
	}
	offset, err := stats.Percentile(trainScores, contamination*100)
	if err != nil {
		return nil, errors.Wrap(err, "failed to derive contamination offset")
	}
	forest.Offset = offset

	return forest, nil
}

// subsample draws size rows without replacement
func subsample(rows [][]float64, size int, rng *rand.Rand) [][]float64 {
	idx := rng.Perm(len(rows))[:size]
	sample := make([][]float64, size)
	for i, j := range idx {
		sample[i] = rows[j]
	}
	return sample
}

// buildIsoTree appends nodes for data and returns the new subtree's root index
func buildIsoTree(tree *isoTree, data [][]float64, depth, heightLimit int, rng *rand.Rand) int {
	nodeIdx := len(tree.Nodes)
	tree.Nodes = append(tree.Nodes, isoNode{Left: -1, Right: -1, Size: len(data)})

	if depth >= heightLimit || len(data) <= 1 {
		return nodeIdx
	}

	feature, min, max, ok := pickSplitFeature(data, rng)
	if !ok {
		// every remaining feature is constant
		return nodeIdx
	}
	split := min + rng.Float64()*(max-min)

	var left, right [][]float64
	for _, row := range data {
		if row[feature] < split {
			left = append(left, row)
		} else {
			right = append(right, row)
		}
	}

	leftIdx := buildIsoTree(tree, left, depth+1, heightLimit, rng)
	rightIdx := buildIsoTree(tree, right, depth+1, heightLimit, rng)

	tree.Nodes[nodeIdx].SplitFeature = feature
	tree.Nodes[nodeIdx].SplitValue = split
	tree.Nodes[nodeIdx].Left = leftIdx
	tree.Nodes[nodeIdx].Right = rightIdx
	return nodeIdx
}

// pickSplitFeature chooses a random non-constant feature and its value range
func pickSplitFeature(data [][]float64, rng *rand.Rand) (feature int, min, max float64, ok bool) {
	width := len(data[0])
	for _, f := range rng.Perm(width) {
		lo, hi := data[0][f], data[0][f]
		for _, row := range data[1:] {
			if row[f] < lo {
				lo = row[f]
			}
			if row[f] > hi {
				hi = row[f]
			}
		}
		if hi > lo {
			return f, lo, hi, true
		}
	}
	return 0, 0, 0, false
}

// pathLength walks x down one tree, adding the average-path adjustment at
// the terminating node
func (t *isoTree) pathLength(x []float64) float64 {
	depth := 0.0
	idx := 0
	for {
		node := t.Nodes[idx]
		if node.Left == -1 {
			return depth + avgPathLength(node.Size)
		}
		if x[node.SplitFeature] < node.SplitValue {
			idx = node.Left
		} else {
			idx = node.Right
		}
		depth++
	}
}

// avgPathLength is the expected path length of an unsuccessful BST search in
// a tree of n nodes
func avgPathLength(n int) float64 {
	if n <= 1 {
		return 0
	}
	f := float64(n)
	return 2*(math.Log(f-1)+eulerMascheroni) - 2*(f-1)/f
}

// scoreSample returns the negated anomaly score in [-1, 0); higher (closer
// to zero) is more normal
func (f *IsolationForest) scoreSample(x []float64) float64 {
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].pathLength(x)
	}
	avg := sum / float64(len(f.Trees))
	anomaly := math.Pow(2, -avg/avgPathLength(f.SampleSize))
	return -anomaly
}

// Score returns the decision-function value for a scaled vector: the negated
// anomaly score shifted by the trained contamination offset. Negative values
// flag outliers.
func (f *IsolationForest) Score(scaled []float64) (float64, error) {
	if len(scaled) != f.NumFeatures {
		return 0, errors.FeatureShapeMismatch(f.NumFeatures, len(scaled))
	}
	return f.scoreSample(scaled) - f.Offset, nil
}

// Width returns the feature count the forest was trained on
func (f *IsolationForest) Width() int {
	return f.NumFeatures
}
