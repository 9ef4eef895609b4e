package model

import "sort"

// ProjectNode is one project folder in the build tree. Builds attached to a
// node are the configurations whose path terminates at that node.
type ProjectNode struct {
	Name        string
	Subprojects map[string]*ProjectNode
	Builds      []TreeBuild
}

// TreeBuild is a build record placed in the tree, with its selection flag.
type TreeBuild struct {
	BuildRecord
	Selected bool
}

// NewProjectNode returns an empty node with the given name.
func NewProjectNode(name string) *ProjectNode {
	return &ProjectNode{
		Name:        name,
		Subprojects: make(map[string]*ProjectNode),
	}
}

// Child returns the named subproject, creating it if absent.
func (n *ProjectNode) Child(name string) *ProjectNode {
	child, ok := n.Subprojects[name]
	if !ok {
		child = NewProjectNode(name)
		n.Subprojects[name] = child
	}
	return child
}

// BuildCount returns the number of builds at this node and below.
func (n *ProjectNode) BuildCount() int {
	if n == nil {
		return 0
	}
	count := len(n.Builds)
	for _, sub := range n.Subprojects {
		count += sub.BuildCount()
	}
	return count
}

// Walk calls fn for every build at this node and below. Subprojects are
// visited in name order.
func (n *ProjectNode) Walk(fn func(b *TreeBuild)) {
	if n == nil {
		return
	}
	for i := range n.Builds {
		fn(&n.Builds[i])
	}
	for _, name := range n.SubprojectNames() {
		n.Subprojects[name].Walk(fn)
	}
}

// SubprojectNames returns the names of the direct subprojects, sorted.
func (n *ProjectNode) SubprojectNames() []string {
	names := make([]string, 0, len(n.Subprojects))
	for name := range n.Subprojects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Forest maps top-level project names to their trees.
type Forest map[string]*ProjectNode

// TotalBuilds returns the number of builds across the forest.
func (f Forest) TotalBuilds() int {
	total := 0
	for _, node := range f {
		total += node.BuildCount()
	}
	return total
}

// Names returns the top-level project names, sorted.
func (f Forest) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Walk calls fn for every build in the forest in deterministic order.
func (f Forest) Walk(fn func(b *TreeBuild)) {
	for _, name := range f.Names() {
		f[name].Walk(fn)
	}
}
