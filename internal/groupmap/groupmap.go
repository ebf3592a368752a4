// Package groupmap implements the bidirectional group/entity overlay,
// ported from graphrecord/group_mapping.rs.
package groupmap

import (
	"github.com/ritamzico/propgraph/internal/errs"
	"github.com/ritamzico/propgraph/internal/graphstore"
	"github.com/ritamzico/propgraph/internal/value"
)

type Group = value.AttributeKey

type GroupMapping struct {
	nodesInGroup map[Group]map[graphstore.NodeIndex]struct{}
	edgesInGroup map[Group]map[graphstore.EdgeIndex]struct{}
	groupsOfNode map[graphstore.NodeIndex]map[Group]struct{}
	groupsOfEdge map[graphstore.EdgeIndex]map[Group]struct{}
}

func New() *GroupMapping {
	return &GroupMapping{
		nodesInGroup: make(map[Group]map[graphstore.NodeIndex]struct{}),
		edgesInGroup: make(map[Group]map[graphstore.EdgeIndex]struct{}),
		groupsOfNode: make(map[graphstore.NodeIndex]map[Group]struct{}),
		groupsOfEdge: make(map[graphstore.EdgeIndex]map[Group]struct{}),
	}
}

func (m *GroupMapping) AddGroup(group Group, nodes []graphstore.NodeIndex, edges []graphstore.EdgeIndex) error {
	if m.ContainsGroup(group) {
		return errs.Key("group %v already exists", group)
	}

	m.nodesInGroup[group] = make(map[graphstore.NodeIndex]struct{})
	m.edgesInGroup[group] = make(map[graphstore.EdgeIndex]struct{})

	for _, n := range nodes {
		m.addNodeToGroupUnchecked(group, n)
	}
	for _, e := range edges {
		m.addEdgeToGroupUnchecked(group, e)
	}

	return nil
}

func (m *GroupMapping) RemoveGroup(group Group) error {
	if !m.ContainsGroup(group) {
		return errs.Key("group %v does not exist", group)
	}

	for n := range m.nodesInGroup[group] {
		delete(m.groupsOfNode[n], group)
	}
	for e := range m.edgesInGroup[group] {
		delete(m.groupsOfEdge[e], group)
	}

	delete(m.nodesInGroup, group)
	delete(m.edgesInGroup, group)

	return nil
}

func (m *GroupMapping) AddNodeToGroup(group Group, node graphstore.NodeIndex) error {
	if !m.ContainsGroup(group) {
		return errs.Key("group %v does not exist", group)
	}
	m.addNodeToGroupUnchecked(group, node)
	return nil
}

func (m *GroupMapping) addNodeToGroupUnchecked(group Group, node graphstore.NodeIndex) {
	m.nodesInGroup[group][node] = struct{}{}
	if m.groupsOfNode[node] == nil {
		m.groupsOfNode[node] = make(map[Group]struct{})
	}
	m.groupsOfNode[node][group] = struct{}{}
}

func (m *GroupMapping) AddEdgeToGroup(group Group, edge graphstore.EdgeIndex) error {
	if !m.ContainsGroup(group) {
		return errs.Key("group %v does not exist", group)
	}
	m.addEdgeToGroupUnchecked(group, edge)
	return nil
}

func (m *GroupMapping) addEdgeToGroupUnchecked(group Group, edge graphstore.EdgeIndex) {
	m.edgesInGroup[group][edge] = struct{}{}
	if m.groupsOfEdge[edge] == nil {
		m.groupsOfEdge[edge] = make(map[Group]struct{})
	}
	m.groupsOfEdge[edge][group] = struct{}{}
}

func (m *GroupMapping) RemoveNodeFromGroup(group Group, node graphstore.NodeIndex) error {
	if !m.ContainsGroup(group) {
		return errs.Key("group %v does not exist", group)
	}
	delete(m.nodesInGroup[group], node)
	delete(m.groupsOfNode[node], group)
	return nil
}

func (m *GroupMapping) RemoveEdgeFromGroup(group Group, edge graphstore.EdgeIndex) error {
	if !m.ContainsGroup(group) {
		return errs.Key("group %v does not exist", group)
	}
	delete(m.edgesInGroup[group], edge)
	delete(m.groupsOfEdge[edge], group)
	return nil
}

// RemoveNode cascades a node deletion out of every group it belongs to.
func (m *GroupMapping) RemoveNode(node graphstore.NodeIndex) {
	for group := range m.groupsOfNode[node] {
		delete(m.nodesInGroup[group], node)
	}
	delete(m.groupsOfNode, node)
}

// RemoveEdge cascades an edge deletion out of every group it belongs to.
func (m *GroupMapping) RemoveEdge(edge graphstore.EdgeIndex) {
	for group := range m.groupsOfEdge[edge] {
		delete(m.edgesInGroup[group], edge)
	}
	delete(m.groupsOfEdge, edge)
}

func (m *GroupMapping) Groups() []Group {
	groups := make([]Group, 0, len(m.nodesInGroup))
	for g := range m.nodesInGroup {
		groups = append(groups, g)
	}
	return groups
}

func (m *GroupMapping) NodesInGroup(group Group) []graphstore.NodeIndex {
	nodes := make([]graphstore.NodeIndex, 0, len(m.nodesInGroup[group]))
	for n := range m.nodesInGroup[group] {
		nodes = append(nodes, n)
	}
	return nodes
}

func (m *GroupMapping) EdgesInGroup(group Group) []graphstore.EdgeIndex {
	edges := make([]graphstore.EdgeIndex, 0, len(m.edgesInGroup[group]))
	for e := range m.edgesInGroup[group] {
		edges = append(edges, e)
	}
	return edges
}

func (m *GroupMapping) GroupsOfNode(node graphstore.NodeIndex) []Group {
	groups := make([]Group, 0, len(m.groupsOfNode[node]))
	for g := range m.groupsOfNode[node] {
		groups = append(groups, g)
	}
	return groups
}

func (m *GroupMapping) GroupsOfEdge(edge graphstore.EdgeIndex) []Group {
	groups := make([]Group, 0, len(m.groupsOfEdge[edge]))
	for g := range m.groupsOfEdge[edge] {
		groups = append(groups, g)
	}
	return groups
}

func (m *GroupMapping) NodeInGroup(node graphstore.NodeIndex, group Group) bool {
	_, ok := m.nodesInGroup[group][node]
	return ok
}

func (m *GroupMapping) EdgeInGroup(edge graphstore.EdgeIndex, group Group) bool {
	_, ok := m.edgesInGroup[group][edge]
	return ok
}

func (m *GroupMapping) GroupCount() int {
	return len(m.nodesInGroup)
}

func (m *GroupMapping) ContainsGroup(group Group) bool {
	_, ok := m.nodesInGroup[group]
	return ok
}

func (m *GroupMapping) Clear() {
	m.nodesInGroup = make(map[Group]map[graphstore.NodeIndex]struct{})
	m.edgesInGroup = make(map[Group]map[graphstore.EdgeIndex]struct{})
	m.groupsOfNode = make(map[graphstore.NodeIndex]map[Group]struct{})
	m.groupsOfEdge = make(map[graphstore.EdgeIndex]map[Group]struct{})
}

// Clone performs a deep copy, matching the container's own Clone style.
func (m *GroupMapping) Clone() *GroupMapping {
	clone := New()
	for g, nodes := range m.nodesInGroup {
		clone.nodesInGroup[g] = make(map[graphstore.NodeIndex]struct{}, len(nodes))
		for n := range nodes {
			clone.nodesInGroup[g][n] = struct{}{}
		}
	}
	for g, edges := range m.edgesInGroup {
		clone.edgesInGroup[g] = make(map[graphstore.EdgeIndex]struct{}, len(edges))
		for e := range edges {
			clone.edgesInGroup[g][e] = struct{}{}
		}
	}
	for n, groups := range m.groupsOfNode {
		clone.groupsOfNode[n] = make(map[Group]struct{}, len(groups))
		for g := range groups {
			clone.groupsOfNode[n][g] = struct{}{}
		}
	}
	for e, groups := range m.groupsOfEdge {
		clone.groupsOfEdge[e] = make(map[Group]struct{}, len(groups))
		for g := range groups {
			clone.groupsOfEdge[e][g] = struct{}{}
		}
	}
	return clone
}
