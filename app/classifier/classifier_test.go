package classifier_test

import (
	"testing"

	"github.com/vibast-solutions/ms-go-idmatch/app/blacklist"
	"github.com/vibast-solutions/ms-go-idmatch/app/classifier"
	"github.com/vibast-solutions/ms-go-idmatch/app/cooccurrence"
)

func newFilter(t *testing.T) *blacklist.Filter {
	t.Helper()

	tables, err := blacklist.NewTables(map[blacklist.Table][]string{
		blacklist.TableDomains:       {"example.com"},
		blacklist.TableNames:         {"root"},
		blacklist.TablePopularNames:  {"david"},
		blacklist.TablePopularEmails: {"info@company.com"},
	})
	if err != nil {
		t.Fatalf("failed to build tables: %v", err)
	}
	return blacklist.NewFilter(tables, blacklist.Policy{RequireAlphabeticName: true})
}

func TestStaticClassifiers(t *testing.T) {
	f := newFilter(t)
	names := classifier.Names(f)
	emails := classifier.Emails(f)

	if !names.IsIgnored("root") || names.IsIgnored("alice") {
		t.Fatalf("unexpected name ignore decisions")
	}
	if !names.IsPopular("david") || names.IsPopular("alice") {
		t.Fatalf("unexpected name popularity decisions")
	}
	if !emails.IsIgnored("x@example.com") || emails.IsIgnored("a@x.com") {
		t.Fatalf("unexpected email ignore decisions")
	}
	if !emails.IsPopular("info@company.com") || emails.IsPopular("a@x.com") {
		t.Fatalf("unexpected email popularity decisions")
	}
}

func TestWithPopular(t *testing.T) {
	f := newFilter(t)
	c := classifier.WithPopular(classifier.Emails(f), cooccurrence.PopularSet{"a@x.com": {}})

	if !c.IsPopular("a@x.com") {
		t.Fatalf("expected a@x.com to be popular")
	}
	if c.IsPopular("info@company.com") {
		t.Fatalf("expected static popular table to be replaced")
	}
	if !c.IsIgnored("x@example.com") {
		t.Fatalf("expected ignore decisions to come from the base classifier")
	}

	bare := classifier.WithPopular(nil, cooccurrence.PopularSet{})
	if bare.IsIgnored("anything") || bare.IsPopular("anything") {
		t.Fatalf("expected nil base to ignore nothing")
	}
}

func TestWithoutPopular(t *testing.T) {
	f := newFilter(t)
	c := classifier.WithoutPopular(classifier.Names(f))

	if c.IsPopular("david") {
		t.Fatalf("expected popularity to be disabled")
	}
	if !c.IsIgnored("root") {
		t.Fatalf("expected ignore decisions to come from the base classifier")
	}
}

func TestNever(t *testing.T) {
	c := classifier.Never()
	if c.IsIgnored("root") || c.IsPopular("david") {
		t.Fatalf("never classifier must return false")
	}
}
