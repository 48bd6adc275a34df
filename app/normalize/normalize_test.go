package normalize_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in    string
		lower bool
		want  string
	}{
		{in: "  Jiří   Novák ", lower: true, want: "jiri novak"},
		{in: "José\tGarcía", lower: false, want: "Jose Garcia"},
		{in: "Ångström\n\nLab", lower: true, want: "angstrom lab"},
		{in: "ALICE@X.COM", lower: true, want: "alice@x.com"},
		{in: "ALICE@X.COM", lower: false, want: "ALICE@X.COM"},
		{in: "", lower: true, want: ""},
		{in: "   ", lower: true, want: ""},
	}

	for _, tc := range cases {
		if got := normalize.Normalize(tc.in, tc.lower); got != tc.want {
			t.Fatalf("Normalize(%q, %v): expected %q, got %q", tc.in, tc.lower, tc.want, got)
		}
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"Crème Brûlée",
		"  Zoë  Saldaña ",
		"école",
		"ÇA VA",
		"İstanbul",
		"Ｆｕｌｌ　Ｗｉｄｔｈ",
		"名前 テスト",
		"a@b@c.com",
		"ẞ straße",
	}

	for _, in := range inputs {
		for _, lower := range []bool{true, false} {
			once := normalize.Normalize(in, lower)
			twice := normalize.Normalize(once, lower)
			if once != twice {
				t.Fatalf("Normalize not idempotent for %q (lower=%v): %q != %q", in, lower, once, twice)
			}
		}
	}
}

func TestNormalizerRecord(t *testing.T) {
	n := normalize.Normalizer{LowerNames: false, LowerEmails: true}
	got := n.Record(entity.Record{
		Name:       " Renée  Smith ",
		Email:      "Renee@Example.ORG ",
		ExternalID: " 42 ",
		Repository: "Org/Repo",
	})

	if got.Name != "Renee Smith" {
		t.Fatalf("unexpected name %q", got.Name)
	}
	if got.Email != "renee@example.org" {
		t.Fatalf("unexpected email %q", got.Email)
	}
	if got.ExternalID != "42" {
		t.Fatalf("unexpected external id %q", got.ExternalID)
	}
	if got.Repository != "org/repo" {
		t.Fatalf("unexpected repository %q", got.Repository)
	}
}

func TestNormalizerRecordsKeepsOrder(t *testing.T) {
	records := make([]entity.Record, 5000)
	for i := range records {
		records[i] = entity.Record{Name: fmt.Sprintf("  Person %d ", i), Email: fmt.Sprintf("P%d@X.COM", i)}
	}

	n := normalize.Normalizer{LowerNames: true, LowerEmails: true}
	out, err := n.Records(context.Background(), records, 4)
	if err != nil {
		t.Fatalf("normalize records failed: %v", err)
	}
	if len(out) != len(records) {
		t.Fatalf("expected %d records, got %d", len(records), len(out))
	}
	for i, r := range out {
		if r.Name != fmt.Sprintf("person %d", i) || r.Email != fmt.Sprintf("p%d@x.com", i) {
			t.Fatalf("record %d out of order: %+v", i, r)
		}
	}
}

func TestNormalizerRecordsCancelled(t *testing.T) {
	records := make([]entity.Record, 10)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n := normalize.Normalizer{}
	if _, err := n.Records(ctx, records, 2); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}
