package swarm

import (
	"github.com/TheBitDrifter/mask"
)

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

// queryNode combines a set of attributes, folded into one mask when the
// node is built, with nested nodes.
type queryNode struct {
	op       Operation
	attrs    mask.Mask
	children []QueryNode
}

type query struct {
	root QueryNode
}

func newQuery() Query {
	return &query{}
}

func (n *queryNode) Evaluate(schema *Schema) bool {
	have := schema.Mask()
	switch n.op {
	case OpAnd:
		if !have.ContainsAll(n.attrs) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(schema) {
				return false
			}
		}
		return true
	case OpOr:
		if have.ContainsAny(n.attrs) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(schema) {
				return true
			}
		}
		return false
	case OpNot:
		if !have.ContainsNone(n.attrs) {
			return false
		}
		for _, child := range n.children {
			if child.Evaluate(schema) {
				return false
			}
		}
		return true
	}
	return false
}

func (q *query) And(items ...interface{}) QueryNode {
	return q.node(OpAnd, items)
}

func (q *query) Or(items ...interface{}) QueryNode {
	return q.node(OpOr, items)
}

func (q *query) Not(items ...interface{}) QueryNode {
	return q.node(OpNot, items)
}

// node builds an op node from attributes, attribute slices and nested
// nodes. The first node built becomes the query's root.
func (q *query) node(op Operation, items []interface{}) QueryNode {
	n := &queryNode{op: op}
	for _, item := range items {
		switch v := item.(type) {
		case AttributeType:
			n.attrs.Mark(v.Bit())
		case []AttributeType:
			for _, attr := range v {
				n.attrs.Mark(attr.Bit())
			}
		case QueryNode:
			n.children = append(n.children, v)
		}
	}
	if q.root == nil {
		q.root = n
	}
	return n
}

// Evaluate tests the query's root node.
func (q *query) Evaluate(schema *Schema) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(schema)
}
