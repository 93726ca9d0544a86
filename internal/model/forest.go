package model

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// ForestOptions controls random forest construction.
type ForestOptions struct {
	Trees           int
	MaxDepth        int // 0 grows each tree until its leaves are pure
	MinSamplesSplit int
	Seed            int64
}

// Forest is a bagged ensemble of CART classification trees split on Gini
// impurity. A fitted Forest is read-only and safe for concurrent use.
type Forest struct {
	trees    []tree
	classes  int
	features int
}

type tree struct {
	nodes []node
}

// node is either a split (leaf == false) or a leaf carrying class frequencies.
type node struct {
	leaf      bool
	feature   int
	threshold float64
	left      int
	right     int
	proba     []float64
}

// FitForest trains a forest on rows x with integer labels y in [0, classes).
// Every tree sees a bootstrap resample of the rows and considers
// floor(sqrt(features)) random features at each split.
func FitForest(x [][]float64, y []int, classes int, opts ForestOptions) (*Forest, error) {
	if len(x) == 0 {
		return nil, errors.New("fit forest: no samples")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("fit forest: %d rows but %d labels", len(x), len(y))
	}
	if classes < 1 {
		return nil, fmt.Errorf("fit forest: invalid class count %d", classes)
	}
	width := len(x[0])
	for i, row := range x {
		if len(row) != width {
			return nil, fmt.Errorf("fit forest: row %d has %d features, want %d", i, len(row), width)
		}
		if y[i] < 0 || y[i] >= classes {
			return nil, fmt.Errorf("fit forest: row %d label %d out of range", i, y[i])
		}
	}
	if opts.Trees < 1 {
		opts.Trees = 1
	}
	if opts.MinSamplesSplit < 2 {
		opts.MinSamplesSplit = 2
	}

	rng := rand.New(rand.NewSource(opts.Seed)) //nolint:gosec // reproducible training, not security
	f := &Forest{
		trees:    make([]tree, 0, opts.Trees),
		classes:  classes,
		features: width,
	}
	for t := 0; t < opts.Trees; t++ {
		b := &builder{
			x:       x,
			y:       y,
			classes: classes,
			tries:   featureTries(width),
			opts:    opts,
			rng:     rand.New(rand.NewSource(rng.Int63())), //nolint:gosec // see above
		}
		rows := make([]int, len(x))
		for i := range rows {
			rows[i] = b.rng.Intn(len(x))
		}
		b.grow(rows, 0)
		f.trees = append(f.trees, tree{nodes: b.nodes})
	}
	return f, nil
}

// Classes returns the number of classes the forest was fitted with.
func (f *Forest) Classes() int { return f.classes }

// PredictProba returns the mean leaf class frequencies across all trees.
func (f *Forest) PredictProba(row []float64) ([]float64, error) {
	if len(row) != f.features {
		return nil, fmt.Errorf("predict: got %d features, want %d", len(row), f.features)
	}
	out := make([]float64, f.classes)
	for _, t := range f.trees {
		leaf := t.leafFor(row)
		for c, p := range leaf.proba {
			out[c] += p
		}
	}
	n := float64(len(f.trees))
	for c := range out {
		out[c] /= n
	}
	return out, nil
}

func (t tree) leafFor(row []float64) node {
	i := 0
	for {
		n := t.nodes[i]
		if n.leaf {
			return n
		}
		if row[n.feature] <= n.threshold {
			i = n.left
		} else {
			i = n.right
		}
	}
}

func featureTries(width int) int {
	k := int(math.Sqrt(float64(width)))
	if k < 1 {
		k = 1
	}
	return k
}

type builder struct {
	x       [][]float64
	y       []int
	classes int
	tries   int
	opts    ForestOptions
	rng     *rand.Rand
	nodes   []node
}

// grow appends the subtree for rows and returns its root index.
func (b *builder) grow(rows []int, depth int) int {
	counts := b.counts(rows)
	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{})

	if b.pure(counts) || len(rows) < b.opts.MinSamplesSplit ||
		(b.opts.MaxDepth > 0 && depth >= b.opts.MaxDepth) {
		b.nodes[idx] = b.leaf(counts, len(rows))
		return idx
	}

	feature, threshold, ok := b.bestSplit(rows, counts)
	if !ok {
		b.nodes[idx] = b.leaf(counts, len(rows))
		return idx
	}

	var left, right []int
	for _, r := range rows {
		if b.x[r][feature] <= threshold {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}

	l := b.grow(left, depth+1)
	r := b.grow(right, depth+1)
	b.nodes[idx] = node{feature: feature, threshold: threshold, left: l, right: r}
	return idx
}

func (b *builder) counts(rows []int) []int {
	c := make([]int, b.classes)
	for _, r := range rows {
		c[b.y[r]]++
	}
	return c
}

func (b *builder) pure(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func (b *builder) leaf(counts []int, n int) node {
	proba := make([]float64, b.classes)
	for c, k := range counts {
		proba[c] = float64(k) / float64(n)
	}
	return node{leaf: true, proba: proba}
}

// bestSplit searches a random subset of features for the threshold with the
// lowest weighted Gini impurity. If the sampled features are all constant it
// keeps drawing from the remaining ones.
func (b *builder) bestSplit(rows []int, total []int) (int, float64, bool) {
	width := len(b.x[0])
	order := b.rng.Perm(width)

	bestFeature, bestThreshold := -1, 0.0
	bestImpurity := math.Inf(1)
	sorted := make([]int, len(rows))
	left := make([]int, b.classes)
	right := make([]int, b.classes)

	tried := 0
	for _, feature := range order {
		if tried >= b.tries && bestFeature >= 0 {
			break
		}
		copy(sorted, rows)
		sort.Slice(sorted, func(i, j int) bool {
			return b.x[sorted[i]][feature] < b.x[sorted[j]][feature]
		})
		if b.x[sorted[0]][feature] == b.x[sorted[len(sorted)-1]][feature] {
			continue
		}
		tried++

		for c := range left {
			left[c] = 0
			right[c] = total[c]
		}
		n := len(sorted)
		for i := 0; i < n-1; i++ {
			cls := b.y[sorted[i]]
			left[cls]++
			right[cls]--
			v, next := b.x[sorted[i]][feature], b.x[sorted[i+1]][feature]
			if v == next {
				continue
			}
			nl, nr := i+1, n-i-1
			impurity := (float64(nl)*gini(left, nl) + float64(nr)*gini(right, nr)) / float64(n)
			if impurity < bestImpurity {
				bestImpurity = impurity
				bestFeature = feature
				bestThreshold = (v + next) / 2
			}
		}
	}
	return bestFeature, bestThreshold, bestFeature >= 0
}

func gini(counts []int, n int) float64 {
	if n == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(n)
		sum += p * p
	}
	return 1 - sum
}
