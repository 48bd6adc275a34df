package service

import (
	"fmt"

	"github.com/vibast-solutions/ms-go-idmatch/app/classifier"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/unionfind"

	"github.com/sirupsen/logrus"
)

type MatchOptions struct {
	// MergeByName enables the name pass. It merges every non-popular name group
	// and is off by default because shared names produce far more false merges than emails.
	MergeByName bool
}

type IdentityMatcher struct {
	opts MatchOptions
}

func NewIdentityMatcher(opts MatchOptions) *IdentityMatcher {
	return &IdentityMatcher{opts: opts}
}

// people is the universe of accepted raw persons and their union-find.
type people struct {
	index   map[entity.RawPerson]int
	persons []entity.RawPerson
	uf      *unionfind.UnionFind
}

func newPeople(raws []entity.RawPerson, names, emails classifier.Classifier) *people {
	p := &people{
		index: make(map[entity.RawPerson]int),
		uf:    unionfind.New(0),
	}
	for _, raw := range raws {
		if names.IsIgnored(raw.Name) || emails.IsIgnored(raw.Email) {
			continue
		}
		if _, seen := p.index[raw]; seen {
			continue
		}
		p.index[raw] = p.uf.AddComponent()
		p.persons = append(p.persons, raw)
	}
	return p
}

// reverseIndex groups person indices by key, preserving first-seen order of keys.
func (p *people) reverseIndex(key func(entity.RawPerson) string) ([]string, map[string][]int) {
	var keys []string
	groups := make(map[string][]int)
	for i, person := range p.persons {
		k := key(person)
		if _, ok := groups[k]; !ok {
			keys = append(keys, k)
		}
		groups[k] = append(groups[k], i)
	}
	return keys, groups
}

// mergeGroups unions every member of each non-popular group with the group's first member.
func (p *people) mergeGroups(key func(entity.RawPerson) string, isPopular func(string) bool) (merged, skipped int, err error) {
	keys, groups := p.reverseIndex(key)
	for _, k := range keys {
		group := groups[k]
		if isPopular(k) {
			skipped++
			continue
		}
		anchor := group[0]
		for _, index := range group[1:] {
			if err = p.uf.Union(anchor, index); err != nil {
				return merged, skipped, fmt.Errorf("merge %q: %w", k, err)
			}
		}
		merged++
	}
	return merged, skipped, nil
}

// Match groups raw persons into identities by exact, non-popular shared emails
// (and names when enabled). Ignored names or emails drop the raw person.
func (m *IdentityMatcher) Match(raws []entity.RawPerson, names, emails classifier.Classifier) (*entity.Identities, error) {
	p := newPeople(raws, names, emails)
	logrus.WithFields(logrus.Fields{
		"raw":      len(raws),
		"accepted": len(p.persons),
	}).Debug("Built person universe")

	merged, skipped, err := p.mergeGroups(func(r entity.RawPerson) string { return r.Email }, emails.IsPopular)
	if err != nil {
		return nil, err
	}
	logrus.WithFields(logrus.Fields{
		"groups":     merged,
		"popular":    skipped,
		"components": p.uf.Components(),
	}).Debug("Grouped people by email")

	if m.opts.MergeByName {
		merged, skipped, err = p.mergeGroups(func(r entity.RawPerson) string { return r.Name }, names.IsPopular)
		if err != nil {
			return nil, err
		}
		logrus.WithFields(logrus.Fields{
			"groups":     merged,
			"popular":    skipped,
			"components": p.uf.Components(),
		}).Debug("Grouped people by name")
	}

	identities := entity.NewIdentities()
	for i, person := range p.persons {
		root, err := p.uf.Find(i)
		if err != nil {
			return nil, err
		}
		identity := identities.GetOrInsert(root)
		identity.Names.Add(person.Name)
		identity.Emails.Add(person.Email)
	}

	return identities, nil
}
