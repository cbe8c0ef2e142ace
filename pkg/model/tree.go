package model

import (
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"
)

// ---------------------------
// Types & options
// ---------------------------

// TreeParams controls how a single regression tree is grown from gradient
// statistics.
type TreeParams struct {
	MaxDepth       int     // maximum depth (root depth = 0). 0 => no limit
	Lambda         float64 // L2 regularisation on leaf weights
	Gamma          float64 // minimum loss reduction required to split
	MinChildWeight float64 // minimum hessian sum in each child
	Eta            float64 // shrinkage applied to leaf weights
	Workers        int     // concurrent feature scans per node; 0 => GOMAXPROCS
}

// RegressionTree is a binary tree over numeric features whose leaves hold
// additive margin contributions.
type RegressionTree struct {
	Root *Node
}

// Node holds a node in the tree. Fields are exported for gob.
type Node struct {
	// internal node fields
	Leaf        bool
	Feature     int
	Threshold   float64 // x <= Threshold => left
	DefaultLeft bool    // branch taken when the feature is missing
	Left        *Node
	Right       *Node

	// leaf data
	Weight float64
	Cover  float64 // hessian sum of the training rows that reached the node
}

// gradPair is the first and second derivative of the loss for one row.
type gradPair struct {
	g, h float64
}

// A struct to hold the results of a single feature's best split search.
type splitResult struct {
	gain        float64
	feature     int
	threshold   float64
	defaultLeft bool
	leftIdx     []int
	rightIdx    []int
}

// pair is a named type for a value and its original index.
type pair struct {
	v float64
	i int
}

// growTree fits one tree to the gradient pairs of the rows in idx.
func growTree(X [][]float64, grads []gradPair, idx []int, p int, params TreeParams) (*RegressionTree, error) {
	workers := params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	b := &treeBuilder{X: X, grads: grads, p: p, params: params, workers: workers}
	root, err := b.buildNode(idx, 0)
	if err != nil {
		return nil, err
	}
	return &RegressionTree{Root: root}, nil
}

type treeBuilder struct {
	X       [][]float64
	grads   []gradPair
	p       int
	params  TreeParams
	workers int
}

func (b *treeBuilder) buildNode(idx []int, depth int) (*Node, error) {
	var G, H float64
	for _, ii := range idx {
		G += b.grads[ii].g
		H += b.grads[ii].h
	}
	node := &Node{Cover: H}

	makeLeaf := func() *Node {
		node.Leaf = true
		node.Weight = leafWeight(G, H, b.params.Lambda) * b.params.Eta
		return node
	}

	// make leaf if depth reached or too few samples
	if b.params.MaxDepth > 0 && depth >= b.params.MaxDepth {
		return makeLeaf(), nil
	}
	if len(idx) < 2 || H < 2*b.params.MinChildWeight {
		return makeLeaf(), nil
	}

	// Parallel search for the best split for each feature. Results land in
	// feature order so ties resolve the same way on every run.
	results := make([]splitResult, b.p)
	var g errgroup.Group
	g.SetLimit(b.workers)
	for f := 0; f < b.p; f++ {
		f := f
		g.Go(func() error {
			results[f] = b.findBestSplitForFeature(idx, f, G, H)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	best := splitResult{feature: -1}
	for _, r := range results {
		if r.feature >= 0 && r.gain > best.gain {
			best = r
		}
	}

	// Decide whether to split
	if best.feature == -1 || best.gain <= 0 {
		return makeLeaf(), nil
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.DefaultLeft = best.defaultLeft
	left, err := b.buildNode(best.leftIdx, depth+1)
	if err != nil {
		return nil, err
	}
	right, err := b.buildNode(best.rightIdx, depth+1)
	if err != nil {
		return nil, err
	}
	node.Left, node.Right = left, right
	return node, nil
}

// findBestSplitForFeature scans the sorted values of feature f and returns
// the threshold with the largest loss reduction. Missing values are tried on
// both sides and follow whichever side scores better.
func (b *treeBuilder) findBestSplitForFeature(idx []int, f int, G, H float64) splitResult {
	result := splitResult{feature: -1}

	// handle missing values: separate NaNs
	valid := make([]pair, 0, len(idx))
	nans := make([]int, 0)
	var gMiss, hMiss float64
	for _, ii := range idx {
		v := b.X[ii][f]
		if math.IsNaN(v) {
			nans = append(nans, ii)
			gMiss += b.grads[ii].g
			hMiss += b.grads[ii].h
			continue
		}
		valid = append(valid, pair{v, ii})
	}
	if len(valid) < 2 {
		return result
	}

	sort.Slice(valid, func(a, c int) bool { return valid[a].v < valid[c].v })

	lambda := b.params.Lambda
	parent := score(G, H, lambda)
	var gl, hl float64
	bestS := -1
	for s := 1; s < len(valid); s++ {
		gl += b.grads[valid[s-1].i].g
		hl += b.grads[valid[s-1].i].h
		// skip if same value
		if valid[s].v == valid[s-1].v {
			continue
		}

		// Try NaNs on left:
		if gain, ok := b.splitGain(gl+gMiss, hl+hMiss, G, H, parent); ok && gain > result.gain {
			result.gain, result.feature, result.defaultLeft = gain, f, true
			result.threshold = (valid[s-1].v + valid[s].v) / 2.0
			bestS = s
		}
		// Try NaNs on right:
		if gain, ok := b.splitGain(gl, hl, G, H, parent); ok && gain > result.gain {
			result.gain, result.feature, result.defaultLeft = gain, f, false
			result.threshold = (valid[s-1].v + valid[s].v) / 2.0
			bestS = s
		}
	}
	if bestS < 0 {
		return result
	}

	result.leftIdx = indicesFromPairs(valid[:bestS])
	result.rightIdx = indicesFromPairs(valid[bestS:])
	if result.defaultLeft {
		result.leftIdx = append(result.leftIdx, nans...)
	} else {
		result.rightIdx = append(result.rightIdx, nans...)
	}
	return result
}

// splitGain is the loss reduction of sending (gl, hl) left and the rest right.
func (b *treeBuilder) splitGain(gl, hl, G, H, parent float64) (float64, bool) {
	gr, hr := G-gl, H-hl
	if hl < b.params.MinChildWeight || hr < b.params.MinChildWeight {
		return 0, false
	}
	lambda := b.params.Lambda
	return 0.5*(score(gl, hl, lambda)+score(gr, hr, lambda)-parent) - b.params.Gamma, true
}

// ---------------------------
// Helpers used in buildNode
// ---------------------------

func score(g, h, lambda float64) float64 {
	if h+lambda == 0 {
		return 0
	}
	return g * g / (h + lambda)
}

func leafWeight(g, h, lambda float64) float64 {
	if h+lambda == 0 {
		return 0
	}
	return -g / (h + lambda)
}

func indicesFromPairs(pairs []pair) []int {
	out := make([]int, 0, len(pairs))
	for _, p := range pairs {
		out = append(out, p.i)
	}
	return out
}

// ---------------------------
// Prediction helper
// ---------------------------

// Predict returns the leaf weight reached by x. Features past the end of x
// are treated as missing.
func (t *RegressionTree) Predict(x []float64) float64 {
	node := t.Root
	if node == nil {
		return 0
	}
	for !node.Leaf {
		val := math.NaN()
		if node.Feature < len(x) {
			val = x[node.Feature]
		}
		switch {
		case math.IsNaN(val):
			if node.DefaultLeft {
				node = node.Left
			} else {
				node = node.Right
			}
		case val <= node.Threshold:
			node = node.Left
		default:
			node = node.Right
		}
	}
	return node.Weight
}

// Depth returns the number of edges on the longest root-to-leaf path.
func (t *RegressionTree) Depth() int {
	var walk func(n *Node) int
	walk = func(n *Node) int {
		if n == nil || n.Leaf {
			return 0
		}
		return 1 + max(walk(n.Left), walk(n.Right))
	}
	return walk(t.Root)
}

// Leaves counts the leaf nodes.
func (t *RegressionTree) Leaves() int {
	var walk func(n *Node) int
	walk = func(n *Node) int {
		if n == nil {
			return 0
		}
		if n.Leaf {
			return 1
		}
		return walk(n.Left) + walk(n.Right)
	}
	return walk(t.Root)
}
