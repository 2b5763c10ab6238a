package model

import (
	"math"
	"sort"
)

// node is one node of a regression tree. Leaf nodes carry Value and have no
// children; internal nodes route on X[Feature] <= Threshold.
type node struct {
	Feature   int     `json:"f,omitempty"`
	Threshold float64 `json:"t,omitempty"`
	Value     float64 `json:"v,omitempty"`
	Left      *node   `json:"l,omitempty"`
	Right     *node   `json:"r,omitempty"`
}

func (n *node) leaf() bool { return n.Left == nil }

func (n *node) predict(x []float64) float64 {
	for !n.leaf() {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// buildTree grows a depth-limited regression tree on the rows selected by
// idx, minimizing squared error. Splits that would leave fewer than minLeaf
// rows on either side are not considered.
func buildTree(X [][]float64, y []float64, idx []int, depth, maxDepth, minLeaf int) *node {
	if depth >= maxDepth || len(idx) < 2*minLeaf {
		return &node{Value: mean(y, idx)}
	}

	feature, threshold, ok := bestSplit(X, y, idx, minLeaf)
	if !ok {
		return &node{Value: mean(y, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) == 0 || len(right) == 0 {
		return &node{Value: mean(y, idx)}
	}

	return &node{
		Feature:   feature,
		Threshold: threshold,
		Left:      buildTree(X, y, left, depth+1, maxDepth, minLeaf),
		Right:     buildTree(X, y, right, depth+1, maxDepth, minLeaf),
	}
}

// bestSplit scans every feature for the split with the largest reduction in
// sum of squared errors, using prefix sums over rows sorted by the feature.
func bestSplit(X [][]float64, y []float64, idx []int, minLeaf int) (feature int, threshold float64, ok bool) {
	n := len(idx)
	var total, totalSq float64
	for _, i := range idx {
		total += y[i]
		totalSq += y[i] * y[i]
	}
	parentSSE := totalSq - total*total/float64(n)

	bestGain := 1e-12
	sorted := make([]int, n)

	for f := range X[idx[0]] {
		copy(sorted, idx)
		sort.Slice(sorted, func(a, b int) bool { return X[sorted[a]][f] < X[sorted[b]][f] })

		var leftSum, leftSq float64
		for k := 0; k < n-1; k++ {
			i := sorted[k]
			leftSum += y[i]
			leftSq += y[i] * y[i]

			if k+1 < minLeaf || n-k-1 < minLeaf {
				continue
			}
			cur, next := X[i][f], X[sorted[k+1]][f]
			if cur == next {
				continue
			}

			nl, nr := float64(k+1), float64(n-k-1)
			rightSum, rightSq := total-leftSum, totalSq-leftSq
			sse := (leftSq - leftSum*leftSum/nl) + (rightSq - rightSum*rightSum/nr)
			if gain := parentSSE - sse; gain > bestGain {
				bestGain = gain
				feature = f
				threshold = (cur + next) / 2
				ok = true
			}
		}
	}
	return feature, threshold, ok
}

func mean(y []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var s float64
	for _, i := range idx {
		s += y[i]
	}
	v := s / float64(len(idx))
	if math.IsNaN(v) {
		return 0
	}
	return v
}
