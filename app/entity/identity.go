package entity

import (
	"sort"
	"strings"
)

type StringSet map[string]struct{}

func NewStringSet(values ...string) StringSet {
	s := make(StringSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

func (s StringSet) Add(v string) {
	s[v] = struct{}{}
}

func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

func (s StringSet) Len() int {
	return len(s)
}

func (s StringSet) Sorted() []string {
	values := make([]string, 0, len(s))
	for v := range s {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Identity is a merged group of names and emails believed to belong to one person.
// ID is the union-find root the group was materialized from.
type Identity struct {
	ID     int
	Names  StringSet
	Emails StringSet
}

func NewIdentity(id int) *Identity {
	return &Identity{ID: id, Names: make(StringSet), Emails: make(StringSet)}
}

// Size is the number of distinct names plus emails.
func (i *Identity) Size() int {
	return i.Names.Len() + i.Emails.Len()
}

// Contains reports whether v is one of the identity's names or emails.
func (i *Identity) Contains(v string) bool {
	return i.Names.Has(v) || i.Emails.Has(v)
}

// String renders "name1|name2||email1|email2" with both halves sorted.
func (i *Identity) String() string {
	return strings.Join(i.Names.Sorted(), "|") + "||" + strings.Join(i.Emails.Sorted(), "|")
}

// Identities is an arena of identities keyed by root id.
type Identities struct {
	byRoot map[int]*Identity
}

func NewIdentities() *Identities {
	return &Identities{byRoot: make(map[int]*Identity)}
}

// GetOrInsert returns the identity stored under root, creating an empty one on first use.
func (s *Identities) GetOrInsert(root int) *Identity {
	if identity, ok := s.byRoot[root]; ok {
		return identity
	}
	identity := NewIdentity(root)
	s.byRoot[root] = identity
	return identity
}

func (s *Identities) Get(root int) (*Identity, bool) {
	identity, ok := s.byRoot[root]
	return identity, ok
}

func (s *Identities) Len() int {
	return len(s.byRoot)
}

// All returns the identities in ascending id order.
func (s *Identities) All() []*Identity {
	roots := make([]int, 0, len(s.byRoot))
	for root := range s.byRoot {
		roots = append(roots, root)
	}
	sort.Ints(roots)

	result := make([]*Identity, 0, len(roots))
	for _, root := range roots {
		result = append(result, s.byRoot[root])
	}
	return result
}

// Lines returns the String form of every identity, sorted.
func (s *Identities) Lines() []string {
	lines := make([]string, 0, len(s.byRoot))
	for _, identity := range s.byRoot {
		lines = append(lines, identity.String())
	}
	sort.Strings(lines)
	return lines
}
