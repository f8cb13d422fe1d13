package rope

import "strings"

// Tree shape constants.
const (
	// maxLeafBytes is the largest text fragment kept in one leaf.
	maxLeafBytes = 2048

	// minLeafBytes is the merge threshold: adjacent leaves smaller than
	// this are joined during concat.
	minLeafBytes = 256

	// maxChildren is the fanout of internal nodes built by the bulk
	// loader and the rebalancer.
	maxChildren = 8

	// rebalanceSlack is how far the tree height may exceed the ideal
	// height before a full rebuild is triggered.
	rebalanceSlack = 8
)

// summary holds the aggregated metrics of a subtree.
type summary struct {
	bytes    ByteOffset
	newlines int
}

func (s summary) add(other summary) summary {
	return summary{bytes: s.bytes + other.bytes, newlines: s.newlines + other.newlines}
}

func summarize(s string) summary {
	return summary{bytes: ByteOffset(len(s)), newlines: strings.Count(s, "\n")}
}

// node is a rope tree node. Leaves hold text; internal nodes hold children.
// Nodes are never mutated after construction.
type node struct {
	summary  summary
	height   int
	leaf     string
	children []*node
}

func (n *node) isLeaf() bool {
	return len(n.children) == 0
}

func newLeaf(s string) *node {
	return &node{summary: summarize(s), height: 0, leaf: s}
}

func newInternal(children []*node) *node {
	if len(children) == 1 {
		return children[0]
	}
	n := &node{height: children[0].height + 1, children: children}
	for _, c := range children {
		n.summary = n.summary.add(c.summary)
	}
	return n
}

// buildLeaves bulk-loads a balanced tree from s.
func buildLeaves(s string) *node {
	var leaves []*node
	for len(s) > 0 {
		end := maxLeafBytes
		if end >= len(s) {
			end = len(s)
		} else {
			// Never split a multi-byte rune across leaves.
			for end > 0 && s[end]&0xC0 == 0x80 {
				end--
			}
			if end == 0 {
				end = maxLeafBytes
			}
		}
		leaves = append(leaves, newLeaf(s[:end]))
		s = s[end:]
	}
	return buildFromNodes(leaves)
}

// buildFromNodes builds a tree bottom-up from same-height nodes.
func buildFromNodes(nodes []*node) *node {
	if len(nodes) == 0 {
		return nil
	}
	for len(nodes) > 1 {
		var parents []*node
		for i := 0; i < len(nodes); i += maxChildren {
			end := i + maxChildren
			if end > len(nodes) {
				end = len(nodes)
			}
			group := make([]*node, end-i)
			copy(group, nodes[i:end])
			parents = append(parents, newInternal(group))
		}
		nodes = parents
	}
	return nodes[0]
}

// concat joins two subtrees with a two-child parent, merging small adjacent
// leaves so repeated single-character inserts don't degenerate the tree.
func concat(a, b *node) *node {
	if a.isLeaf() && b.isLeaf() && int(a.summary.bytes+b.summary.bytes) <= minLeafBytes {
		return newLeaf(a.leaf + b.leaf)
	}
	return newInternal([]*node{a, b})
}

// rebalanced rebuilds the tree when concat chains have made it much taller
// than a bulk-loaded tree of the same size would be.
func rebalanced(n *node) *node {
	if n == nil {
		return nil
	}
	// Estimate the ideal height from the byte size; exact leaf counts would
	// cost a full traversal per edit.
	ideal := 0
	for size := int(n.summary.bytes)/minLeafBytes + 1; size > 1; size = (size + maxChildren - 1) / maxChildren {
		ideal++
	}
	if n.height <= ideal+rebalanceSlack {
		return n
	}
	var leaves []*node
	collectLeaves(n, &leaves)
	// Merge adjacent fragments back up to full leaves while rebuilding.
	var sb strings.Builder
	merged := make([]*node, 0, len(leaves))
	for _, l := range leaves {
		if sb.Len()+len(l.leaf) > maxLeafBytes && sb.Len() > 0 {
			merged = append(merged, newLeaf(sb.String()))
			sb.Reset()
		}
		sb.WriteString(l.leaf)
	}
	if sb.Len() > 0 {
		merged = append(merged, newLeaf(sb.String()))
	}
	return buildFromNodes(merged)
}

func collectLeaves(n *node, out *[]*node) {
	if n.isLeaf() {
		*out = append(*out, n)
		return
	}
	for _, c := range n.children {
		collectLeaves(c, out)
	}
}

// split divides the subtree at offset; offset is known to be inside (0, len).
func (n *node) split(offset ByteOffset) (*node, *node) {
	if n.isLeaf() {
		return newLeaf(n.leaf[:offset]), newLeaf(n.leaf[offset:])
	}
	var left, right *node
	for i, c := range n.children {
		switch {
		case offset >= c.summary.bytes:
			offset -= c.summary.bytes
			if left == nil {
				left = c
			} else {
				left = concat(left, c)
			}
			// offset == 0 means the cut falls exactly between children;
			// everything after belongs to the right side.
			if offset == 0 {
				for _, rest := range n.children[i+1:] {
					if right == nil {
						right = rest
					} else {
						right = concat(right, rest)
					}
				}
				return left, right
			}
		default:
			cl, cr := c.split(offset)
			if left == nil {
				left = cl
			} else {
				left = concat(left, cl)
			}
			right = cr
			for _, rest := range n.children[i+1:] {
				right = concat(right, rest)
			}
			return left, right
		}
	}
	return left, right
}

// offsetAfterNewline returns the offset just past the count-th newline.
func (n *node) offsetAfterNewline(count int) ByteOffset {
	if n.isLeaf() {
		off := ByteOffset(0)
		s := n.leaf
		for count > 0 {
			idx := strings.IndexByte(s, '\n')
			if idx < 0 {
				return n.summary.bytes
			}
			off += ByteOffset(idx + 1)
			s = s[idx+1:]
			count--
		}
		return off
	}
	off := ByteOffset(0)
	for _, c := range n.children {
		if count <= c.summary.newlines {
			return off + c.offsetAfterNewline(count)
		}
		count -= c.summary.newlines
		off += c.summary.bytes
	}
	return off
}

// newlinesBefore counts newlines in [0, offset).
func (n *node) newlinesBefore(offset ByteOffset) int {
	if n.isLeaf() {
		if offset >= n.summary.bytes {
			return n.summary.newlines
		}
		return strings.Count(n.leaf[:offset], "\n")
	}
	count := 0
	for _, c := range n.children {
		if offset < c.summary.bytes {
			return count + c.newlinesBefore(offset)
		}
		count += c.summary.newlines
		offset -= c.summary.bytes
	}
	return count
}

func (n *node) appendTo(sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(n.leaf)
		return
	}
	for _, c := range n.children {
		c.appendTo(sb)
	}
}

// slice writes [start, end) of the subtree to sb; bounds are pre-clamped.
func (n *node) slice(start, end ByteOffset, sb *strings.Builder) {
	if n.isLeaf() {
		sb.WriteString(n.leaf[start:end])
		return
	}
	off := ByteOffset(0)
	for _, c := range n.children {
		next := off + c.summary.bytes
		if end <= off {
			return
		}
		if start < next {
			cs := start - off
			if cs < 0 {
				cs = 0
			}
			ce := end - off
			if ce > c.summary.bytes {
				ce = c.summary.bytes
			}
			c.slice(cs, ce, sb)
		}
		off = next
	}
}
