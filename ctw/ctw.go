// Package ctw provides a Context Tree Weighting model for binary data.
// Its predictions are quantized into cumulative frequencies so that the model can drive the
// multi-symbol arithmetic coder in package ac/witten.
//
// Reference:
// F.M.J. Willems and Tj. J. Tjalkens, Complexity Reduction of the Context-Tree Weighting Algorithm: A Study for KPN Research, Technical University of Eindhoven, EIDMA Report RS.97.01.
package ctw

import (
	"log"
	"math"

	"github.com/fumin/arcd/ac"
)

// logaddexp performs log(exp(x) + exp(y))
func logaddexp(x, y float64) float64 {
	tmp := x - y
	if tmp > 0 {
		return x + math.Log1p(math.Exp(-tmp))
	} else if tmp <= 0 {
		return y + math.Log1p(math.Exp(tmp))
	} else {
		// Nans, or infinities of the same sign involved
		log.Printf("logaddexp %f %f", x, y)
		return x + y
	}
}

// treeNode represents a suffix in a Context Tree Weighting.
// It holds the log probability of the source sequence given the suffix represented by the node.
type treeNode struct {
	LogProb float64 // weighted log probability of suffix

	a    uint32  // number of zeros with suffix
	b    uint32  // number of ones with suffix
	lktp float64 // log probability of the Krichevsky-Trofimov (KT) Estimation, given our current number of zeros and ones.

	one  *treeNode // the sub-suffix that ends with one
	zero *treeNode // the sub-suffix that ends with zero
}

type snapshot struct {
	node  *treeNode
	state treeNode
}

// revert restores the counts and probabilities of the traversed nodes.
// Nodes created by the traversal stay in the tree, since the same path is likely to be visited again.
func revert(traversed []snapshot) {
	for _, ss := range traversed {
		node := ss.node
		node.lktp = ss.state.lktp
		node.a = ss.state.a
		node.b = ss.state.b
		node.LogProb = ss.state.LogProb
	}
}

// update updates the tree according to the rules of CTW.
// Root is the root of the context tree.
// Bits is the last few bits of the sequence, len(bits) should be the depth of the tree.
// Bit is the new bit following the sequence.
func update(root *treeNode, bits []int, bit int) []snapshot {
	if bit != 0 && bit != 1 {
		log.Fatalf("wrong bit %d", bit)
	}

	// Update the counts of zeros and ones of each node.
	traversed := make([]snapshot, 0, len(bits)+1)
	node := root
	traversed = append(traversed, snapshot{node: node, state: *node})
	krichevskyTrofimov(node, bit)

	for d := 0; d < len(bits); d++ {
		if bits[len(bits)-1-d] == 0 {
			if node.zero == nil {
				node.zero = &treeNode{}
			}
			node = node.zero
		} else {
			if node.one == nil {
				node.one = &treeNode{}
			}
			node = node.one
		}

		traversed = append(traversed, snapshot{node: node, state: *node})
		krichevskyTrofimov(node, bit)
	}

	// Update the actual node probabilities.
	for i := len(traversed) - 1; i >= 0; i-- {
		node := traversed[i].node

		if node.one != nil || node.zero != nil {
			var lp float64 = 0
			if node.one != nil {
				lp = node.one.LogProb
			}
			var rp float64 = 0
			if node.zero != nil {
				rp = node.zero.LogProb
			}
			w := 0.5
			node.LogProb = logaddexp(math.Log(w)+node.lktp, math.Log(1-w)+lp+rp)
		} else {
			node.LogProb = node.lktp
		}
	}

	return traversed
}

// krichevskyTrofimov updates the Krichevsky-Trofimov estimate of a node given a new observed bit.
func krichevskyTrofimov(node *treeNode, bit int) {
	a := float64(node.a)
	b := float64(node.b)
	if bit == 0 {
		node.lktp = node.lktp + math.Log(a+0.5) - math.Log(a+b+1)
		node.a += 1
	} else {
		node.lktp = node.lktp + math.Log(b+0.5) - math.Log(a+b+1)
		node.b += 1
	}
}

// A CTW is a Context Tree Weighting based probabilistic model for binary data.
type CTW struct {
	bits []int
	root *treeNode
}

// NewCTW returns a new CTW whose context tree's depth is len(bits).
// The prior context of the tree is given by bits.
func NewCTW(bits []int) *CTW {
	model := &CTW{
		bits: bits,
		root: &treeNode{},
	}
	return model
}

// Prob0 returns the probability that the next bit be zero.
func (model *CTW) Prob0() float64 {
	before := model.root.LogProb
	traversal := update(model.root, model.bits, 0)
	after := model.root.LogProb

	revert(traversal)

	return math.Exp(after - before)
}

// Observe updates the context tree, given that the sequence is followed by bit.
func (model *CTW) Observe(bit int) {
	update(model.root, model.bits, bit)
	if len(model.bits) == 0 {
		return
	}
	copy(model.bits, model.bits[1:])
	model.bits[len(model.bits)-1] = bit
}

// TotalBits is the precision of the quantized predictions.
// Coders must allow a frequency total of 1<<TotalBits.
const TotalBits = 12

const total = 1 << TotalBits

// A Model adapts a CTW to the frequency interface of the arithmetic coder.
// Bit 0 owns [0, split) and bit 1 owns [split, 1<<TotalBits), where split/(1<<TotalBits) approximates Prob0.
// Every coded bit is observed, so the encoder and the decoder must each use their own Model.
// The split points come from floating point arithmetic, so streams are only portable between
// platforms whose math package gives identical results for Log, Log1p and Exp.
type Model struct {
	ctw   *CTW
	split uint32
	fresh bool
}

// NewModel returns a Model with a context tree of the given depth and an all zero prior context.
func NewModel(depth int) *Model {
	return &Model{ctw: NewCTW(make([]int, depth))}
}

// Prob returns the interval of bit and observes it.
func (m *Model) Prob(bit int) ac.Prob {
	if bit != 0 && bit != 1 {
		return ac.Prob{}
	}
	split := m.quantize()
	m.observe(bit)
	if bit == 0 {
		return ac.Prob{Lower: 0, Upper: split, Total: total}
	}
	return ac.Prob{Lower: split, Upper: total, Total: total}
}

func (m *Model) Total() uint32 { return total }

// Find returns the bit whose interval holds scaled and observes it.
func (m *Model) Find(scaled uint32) (int, ac.Prob, bool) {
	if scaled >= total {
		return -1, ac.Prob{}, false
	}
	split := m.quantize()
	if scaled < split {
		m.observe(0)
		return 0, ac.Prob{Lower: 0, Upper: split, Total: total}, true
	}
	m.observe(1)
	return 1, ac.Prob{Lower: split, Upper: total, Total: total}, true
}

// quantize maps Prob0 to a split point that leaves both bits at least one unit.
func (m *Model) quantize() uint32 {
	if m.fresh {
		return m.split
	}
	f := math.Floor(m.ctw.Prob0()*total + 0.5)
	switch {
	case !(f >= 1):
		f = 1
	case f > total-1:
		f = total - 1
	}
	m.split = uint32(f)
	m.fresh = true
	return m.split
}

func (m *Model) observe(bit int) {
	m.ctw.Observe(bit)
	m.fresh = false
}
