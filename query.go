package snowflake

import (
	"fmt"

	"github.com/TheBitDrifter/mask"
)

// maxQueryComponents bounds the distinct components a single query can name; each one
// takes a bit of the evaluation mask.
const maxQueryComponents = 32

type Operation int

const (
	OpAnd Operation = iota
	OpOr
	OpNot
)

type compositeNode struct {
	op         Operation
	children   []QueryNode
	components []Component
	bits       []uint32
	mask       mask.Mask
}

type query struct {
	root QueryNode
	bits map[componentKey]uint32
}

func newQuery() Query {
	return &query{bits: make(map[componentKey]uint32)}
}

func (q *query) newCompositeNode(op Operation, components []Component, children []QueryNode) *compositeNode {
	node := &compositeNode{
		op:         op,
		children:   children,
		components: components,
		bits:       make([]uint32, len(components)),
	}
	for i, comp := range components {
		bit := q.bitFor(comp.componentKey())
		node.bits[i] = bit
		node.mask.Mark(bit)
	}
	return node
}

// bitFor gives each distinct component of the query its own mask bit.
func (q *query) bitFor(key componentKey) uint32 {
	if bit, ok := q.bits[key]; ok {
		return bit
	}
	if len(q.bits) >= maxQueryComponents {
		panic(fmt.Sprintf("query names more than %d components", maxQueryComponents))
	}
	bit := uint32(len(q.bits))
	q.bits[key] = bit
	return bit
}

// Evaluate builds the entity's mask from pool membership at evaluation time
func (n *compositeNode) Evaluate(e Entity, m *EntityManager) bool {
	var entityMask mask.Mask
	for i, comp := range n.components {
		if pool := m.lookup(comp.componentKey()); pool != nil && pool.Contains(e) {
			entityMask.Mark(n.bits[i])
		}
	}

	switch n.op {
	case OpAnd:
		if !entityMask.ContainsAll(n.mask) {
			return false
		}
		for _, child := range n.children {
			if !child.Evaluate(e, m) {
				return false
			}
		}
		return true

	case OpOr:
		if entityMask.ContainsAny(n.mask) {
			return true
		}
		for _, child := range n.children {
			if child.Evaluate(e, m) {
				return true
			}
		}
		return false

	case OpNot:
		if len(n.children) == 0 {
			return entityMask.ContainsNone(n.mask)
		}
		for _, child := range n.children {
			if child.Evaluate(e, m) {
				return false
			}
		}
		return !entityMask.ContainsAny(n.mask)
	}
	return false
}

func (q *query) And(items ...any) QueryNode {
	components, children := q.processItems(items...)
	node := q.newCompositeNode(OpAnd, components, children)
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Or(items ...any) QueryNode {
	components, children := q.processItems(items...)
	node := q.newCompositeNode(OpOr, components, children)
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) Not(items ...any) QueryNode {
	components, children := q.processItems(items...)
	node := q.newCompositeNode(OpNot, components, children)
	if q.root == nil {
		q.root = node
	}
	return node
}

func (q *query) processItems(items ...any) ([]Component, []QueryNode) {
	components := make([]Component, 0)
	children := make([]QueryNode, 0)

	for _, item := range items {
		switch v := item.(type) {
		case Component:
			components = append(components, v)
		case []Component:
			components = append(components, v...)
		case QueryNode:
			children = append(children, v)
		}
	}

	return components, children
}

func (q *query) Evaluate(e Entity, m *EntityManager) bool {
	if q.root == nil {
		return false
	}
	return q.root.Evaluate(e, m)
}

// andRoot returns the root node when it is an And over at least one component. Every
// match must then own each of those components, so any of their pools bounds the scan.
func andRoot(node QueryNode) (*compositeNode, bool) {
	if q, ok := node.(*query); ok {
		node = q.root
	}
	composite, ok := node.(*compositeNode)
	if !ok || composite.op != OpAnd || len(composite.components) == 0 {
		return nil, false
	}
	return composite, true
}
