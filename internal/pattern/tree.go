package pattern

import "fmt"

// Node is one node of a decision tree: either a branch gated by a pattern
// list, or a leaf holding a PDF index.
type Node struct {
	// Patterns gates the branch; if any pattern matches the label, Yes is
	// taken, otherwise No. Ignored (and must be empty) on a leaf.
	Patterns []Pattern
	Yes      int
	No       int

	// Leaf is true when this node terminates the walk with PDFIndex.
	Leaf     bool
	PDFIndex int
}

// Tree is a single-state decision tree. State identifies the HSMM state
// this tree serves (>=2). Gate optionally restricts which labels this tree
// is eligible for; an empty Gate matches every label (used for the
// fallback tree at index 0 of a state's tree list).
type Tree struct {
	State int
	Gate  []Pattern
	Nodes []Node
}

// MatchesGate reports whether the tree's gating patterns accept label. A
// tree with no gating patterns matches every label.
func (t Tree) MatchesGate(label string) bool {
	if len(t.Gate) == 0 {
		return true
	}

	return MatchAny(t.Gate, label)
}

// Search walks the tree from node 0 to a leaf, returning its PDF index. It
// returns an error if the walk does not terminate (malformed tree) or if a
// node index is out of range — both are model-construction errors, not
// expected at the hot synthesis path once a voice has been validated.
func (t Tree) Search(label string) (int, error) {
	const maxSteps = 1 << 20 // generous bound; a well-formed tree never approaches it

	idx := 0

	for steps := 0; steps < maxSteps; steps++ {
		if idx < 0 || idx >= len(t.Nodes) {
			return 0, fmt.Errorf("pattern: tree node index %d out of range [0,%d)", idx, len(t.Nodes))
		}

		node := t.Nodes[idx]
		if node.Leaf {
			return node.PDFIndex, nil
		}

		if MatchAny(node.Patterns, label) {
			idx = node.Yes
		} else {
			idx = node.No
		}
	}

	return 0, fmt.Errorf("pattern: tree search for state %d did not terminate", t.State)
}

// SearchLeaf finds, among trees, the first whose State matches stateIdx and
// whose gate accepts label, falling back to the first tree with that state
// if none match, then walks it to a PDF index.
func SearchLeaf(trees []Tree, stateIdx int, label string) (treeIndex, pdfIndex int, err error) {
	fallback := -1
	chosen := -1

	for i, t := range trees {
		if t.State != stateIdx {
			continue
		}

		if fallback == -1 {
			fallback = i
		}

		if t.MatchesGate(label) {
			chosen = i
			break
		}
	}

	if chosen == -1 {
		chosen = fallback
	}

	if chosen == -1 {
		return 0, 0, fmt.Errorf("pattern: no tree found for state %d", stateIdx)
	}

	pdfIndex, err = trees[chosen].Search(label)
	if err != nil {
		return 0, 0, err
	}

	return chosen, pdfIndex, nil
}
