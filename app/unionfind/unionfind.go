package unionfind

import (
	"errors"
	"fmt"
)

var ErrIndexOutOfRange = errors.New("index out of range")

// UnionFind is a weighted quick-union with path halving over the dense
// universe 0..Len()-1. It is not safe for concurrent use.
type UnionFind struct {
	parent []int
	size   []int
}

func New(n int) *UnionFind {
	uf := &UnionFind{
		parent: make([]int, 0, n),
		size:   make([]int, 0, n),
	}
	for i := 0; i < n; i++ {
		uf.AddComponent()
	}
	return uf
}

// AddComponent appends a singleton and returns its index.
func (uf *UnionFind) AddComponent() int {
	index := len(uf.parent)
	uf.parent = append(uf.parent, index)
	uf.size = append(uf.size, 1)
	return index
}

func (uf *UnionFind) Len() int {
	return len(uf.parent)
}

func (uf *UnionFind) Find(index int) (int, error) {
	if err := uf.validate(index); err != nil {
		return 0, err
	}

	root := index
	for root != uf.parent[root] {
		uf.parent[root] = uf.parent[uf.parent[root]]
		root = uf.parent[root]
	}
	return root, nil
}

// Union merges the components of i and j, hanging the smaller tree under the larger one.
func (uf *UnionFind) Union(i, j int) error {
	p1, err := uf.Find(i)
	if err != nil {
		return err
	}
	p2, err := uf.Find(j)
	if err != nil {
		return err
	}
	if p1 == p2 {
		return nil
	}

	if uf.size[p1] > uf.size[p2] {
		uf.parent[p2] = p1
		uf.size[p1] += uf.size[p2]
	} else {
		uf.parent[p1] = p2
		uf.size[p2] += uf.size[p1]
	}
	return nil
}

func (uf *UnionFind) Connected(i, j int) (bool, error) {
	p1, err := uf.Find(i)
	if err != nil {
		return false, err
	}
	p2, err := uf.Find(j)
	if err != nil {
		return false, err
	}
	return p1 == p2, nil
}

// Size returns the number of elements in the component of index.
func (uf *UnionFind) Size(index int) (int, error) {
	root, err := uf.Find(index)
	if err != nil {
		return 0, err
	}
	return uf.size[root], nil
}

// Components returns the number of disjoint sets.
func (uf *UnionFind) Components() int {
	count := 0
	for i, p := range uf.parent {
		if i == p {
			count++
		}
	}
	return count
}

func (uf *UnionFind) validate(index int) error {
	if index < 0 || index >= len(uf.parent) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, index, len(uf.parent))
	}
	return nil
}
