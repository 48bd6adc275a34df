package classifier

import (
	"github.com/vibast-solutions/ms-go-idmatch/app/blacklist"
	"github.com/vibast-solutions/ms-go-idmatch/app/cooccurrence"
)

// Classifier tells the matcher which identifiers to drop entirely and which
// to keep but never merge on.
type Classifier interface {
	IsIgnored(value string) bool
	IsPopular(value string) bool
}

type names struct {
	filter *blacklist.Filter
}

// Names classifies names against the static tables.
func Names(filter *blacklist.Filter) Classifier {
	return names{filter: filter}
}

func (c names) IsIgnored(value string) bool {
	return c.filter.IsIgnoredName(value)
}

func (c names) IsPopular(value string) bool {
	return c.filter.IsPopularName(value)
}

type emails struct {
	filter *blacklist.Filter
}

// Emails classifies emails against the static tables.
func Emails(filter *blacklist.Filter) Classifier {
	return emails{filter: filter}
}

func (c emails) IsIgnored(value string) bool {
	return c.filter.IsIgnoredEmail(value)
}

func (c emails) IsPopular(value string) bool {
	return c.filter.IsPopularEmail(value)
}

type withPopular struct {
	base    Classifier
	popular cooccurrence.PopularSet
}

// WithPopular keeps base's ignore decisions and replaces popularity with
// membership in a set computed by cooccurrence.Detector.
func WithPopular(base Classifier, popular cooccurrence.PopularSet) Classifier {
	if base == nil {
		base = Never()
	}
	return withPopular{base: base, popular: popular}
}

func (c withPopular) IsIgnored(value string) bool {
	return c.base.IsIgnored(value)
}

func (c withPopular) IsPopular(value string) bool {
	return c.popular.Contains(value)
}

type withoutPopular struct {
	base Classifier
}

// WithoutPopular keeps base's ignore decisions and never reports popularity.
func WithoutPopular(base Classifier) Classifier {
	if base == nil {
		base = Never()
	}
	return withoutPopular{base: base}
}

func (c withoutPopular) IsIgnored(value string) bool {
	return c.base.IsIgnored(value)
}

func (withoutPopular) IsPopular(string) bool {
	return false
}

type never struct{}

func Never() Classifier {
	return never{}
}

func (never) IsIgnored(string) bool {
	return false
}

func (never) IsPopular(string) bool {
	return false
}
