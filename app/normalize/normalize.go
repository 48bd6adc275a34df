package normalize

import (
	"context"
	"strings"
	"unicode"

	"github.com/vibast-solutions/ms-go-idmatch/app/entity"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const minChunkSize = 1024

// Normalize canonicalizes an identifier: optional lower-casing, diacritics removal,
// whitespace collapsing and trimming. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string, lower bool) string {
	if lower {
		s = strings.ToLower(s)
	}
	return strings.Join(strings.Fields(StripAccents(s)), " ")
}

// StripAccents decomposes s, drops the nonspacing marks and recomposes it.
func StripAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return result
}

type Normalizer struct {
	LowerNames  bool
	LowerEmails bool
}

func (n Normalizer) Name(s string) string {
	return Normalize(s, n.LowerNames)
}

func (n Normalizer) Email(s string) string {
	return Normalize(s, n.LowerEmails)
}

// Record returns a copy of r with name, email and repository normalized.
// The external id is kept verbatim.
func (n Normalizer) Record(r entity.Record) entity.Record {
	return entity.Record{
		Name:       n.Name(r.Name),
		Email:      n.Email(r.Email),
		ExternalID: strings.TrimSpace(r.ExternalID),
		Repository: Normalize(r.Repository, true),
	}
}

// Records normalizes the batch in parallel chunks. The result keeps the input order.
func (n Normalizer) Records(ctx context.Context, records []entity.Record, workers int) ([]entity.Record, error) {
	out := make([]entity.Record, len(records))
	if len(records) == 0 {
		return out, nil
	}
	if workers < 1 {
		workers = 1
	}

	chunk := (len(records) + workers - 1) / workers
	if chunk < minChunkSize {
		chunk = minChunkSize
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for start := 0; start < len(records); start += chunk {
		end := start + chunk
		if end > len(records) {
			end = len(records)
		}
		start := start
		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%minChunkSize == 0 {
					if err := gCtx.Err(); err != nil {
						return err
					}
				}
				out[i] = n.Record(records[i])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
