package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/vibast-solutions/ms-go-idmatch/app/blacklist"
	"github.com/vibast-solutions/ms-go-idmatch/app/classifier"
	"github.com/vibast-solutions/ms-go-idmatch/app/cooccurrence"
	"github.com/vibast-solutions/ms-go-idmatch/app/dto"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type PipelineOptions struct {
	Normalizer     normalize.Normalizer
	NameThreshold  int
	EmailThreshold int
	Comparison     cooccurrence.Comparison
	// UsePrecalculatedPopular takes popular names and emails from the static
	// tables instead of detecting them from the input.
	UsePrecalculatedPopular bool
	// RewritePopularNames replaces a popular name with "(name, repository)" so
	// that it only stays shared within one repository.
	RewritePopularNames bool
	MergeByName         bool
	Workers             int
}

type Pipeline struct {
	filter  *blacklist.Filter
	opts    PipelineOptions
	matcher *IdentityMatcher
}

func NewPipeline(filter *blacklist.Filter, opts PipelineOptions) *Pipeline {
	if opts.Comparison == "" {
		opts.Comparison = cooccurrence.GreaterOrEqual
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{
		filter:  filter,
		opts:    opts,
		matcher: NewIdentityMatcher(MatchOptions{MergeByName: opts.MergeByName}),
	}
}

func (p *Pipeline) Run(ctx context.Context, records []entity.Record) (*dto.MatchResult, error) {
	start := time.Now()
	runID := uuid.NewString()
	log := logrus.WithField("run_id", runID)

	normalized, err := p.opts.Normalizer.Records(ctx, records, p.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("normalize records: %w", err)
	}
	log.WithField("records", len(normalized)).Info("Input is ready")

	nameBase := classifier.Names(p.filter)
	emailBase := classifier.Emails(p.filter)

	names, emails, err := p.popularClassifiers(normalized, nameBase, emailBase)
	if err != nil {
		return nil, err
	}
	popularNames := countPopular(normalized, nameField, names)
	popularEmails := countPopular(normalized, emailField, emails)
	log.WithFields(logrus.Fields{
		"popular_names":  popularNames,
		"popular_emails": popularEmails,
	}).Info("Detected popular identifiers")

	if p.opts.RewritePopularNames {
		rewritten := rewritePopularNames(normalized, names)
		log.WithField("rewritten", rewritten).Debug("Rewrote popular names")
	}

	matchNames := classifier.WithoutPopular(nameBase)
	if p.opts.MergeByName {
		popular, err := p.fit(p.opts.NameThreshold, nameBase, emailBase, fieldValues(normalized, nameField), fieldValues(normalized, emailField))
		if err != nil {
			return nil, fmt.Errorf("detect popular names after rewrite: %w", err)
		}
		matchNames = classifier.WithPopular(nameBase, popular)
	}

	raws := make([]entity.RawPerson, len(normalized))
	for i, r := range normalized {
		raws[i] = r.RawPerson()
	}

	if err = ctx.Err(); err != nil {
		return nil, err
	}
	identities, err := p.matcher.Match(raws, matchNames, emails)
	if err != nil {
		return nil, fmt.Errorf("match identities: %w", err)
	}
	log.WithField("identities", identities.Len()).Info("Matched identities")

	result := &dto.MatchResult{
		RunID:         runID,
		Identities:    identities,
		Records:       len(records),
		PopularNames:  popularNames,
		PopularEmails: popularEmails,
	}

	truth := BuildGroundTruth(normalized, nameBase, emailBase)
	if len(truth) > 0 {
		report := Evaluate(identities, truth)
		result.Report = &report
		log.WithFields(logrus.Fields{
			"precision":          report.Precision,
			"recall":             report.Recall,
			"f1":                 report.F1,
			"weighted_precision": report.WeightedPrecision,
			"weighted_recall":    report.WeightedRecall,
			"weighted_f1":        report.WeightedF1,
		}).Info("Evaluated identities")
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// Popularity reports distinct-counterpart counts of every name and email in records.
func (p *Pipeline) Popularity(ctx context.Context, records []entity.Record) (*dto.PopularityResult, error) {
	normalized, err := p.opts.Normalizer.Records(ctx, records, p.opts.Workers)
	if err != nil {
		return nil, fmt.Errorf("normalize records: %w", err)
	}

	nameBase := classifier.Names(p.filter)
	emailBase := classifier.Emails(p.filter)
	names := fieldValues(normalized, nameField)
	emails := fieldValues(normalized, emailField)

	nameCounts, err := p.keyCounts(p.opts.NameThreshold, nameBase, emailBase, names, emails)
	if err != nil {
		return nil, err
	}
	emailCounts, err := p.keyCounts(p.opts.EmailThreshold, emailBase, nameBase, emails, names)
	if err != nil {
		return nil, err
	}

	return &dto.PopularityResult{Names: nameCounts, Emails: emailCounts}, nil
}

func (p *Pipeline) popularClassifiers(records []entity.Record, nameBase, emailBase classifier.Classifier) (classifier.Classifier, classifier.Classifier, error) {
	if p.opts.UsePrecalculatedPopular {
		return nameBase, emailBase, nil
	}

	names := fieldValues(records, nameField)
	emails := fieldValues(records, emailField)

	popularNames, err := p.fit(p.opts.NameThreshold, nameBase, emailBase, names, emails)
	if err != nil {
		return nil, nil, fmt.Errorf("detect popular names: %w", err)
	}
	popularEmails, err := p.fit(p.opts.EmailThreshold, emailBase, nameBase, emails, names)
	if err != nil {
		return nil, nil, fmt.Errorf("detect popular emails: %w", err)
	}

	return classifier.WithPopular(nameBase, popularNames), classifier.WithPopular(emailBase, popularEmails), nil
}

func (p *Pipeline) fit(threshold int, ignoreKey, ignoreValue classifier.Classifier, keys, values []string) (cooccurrence.PopularSet, error) {
	detector, err := cooccurrence.NewDetector(threshold, p.opts.Comparison, ignoreKey, ignoreValue)
	if err != nil {
		return nil, err
	}
	return detector.Fit(keys, values)
}

func (p *Pipeline) keyCounts(threshold int, ignoreKey, ignoreValue classifier.Classifier, keys, values []string) ([]dto.KeyCount, error) {
	detector, err := cooccurrence.NewDetector(threshold, p.opts.Comparison, ignoreKey, ignoreValue)
	if err != nil {
		return nil, err
	}
	counts, err := detector.Cardinalities(keys, values)
	if err != nil {
		return nil, err
	}

	result := make([]dto.KeyCount, 0, len(counts))
	for key, count := range counts {
		result = append(result, dto.KeyCount{
			Key:     key,
			Count:   count,
			Popular: p.opts.Comparison.Compare(count, threshold),
		})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	return result, nil
}

func nameField(r entity.Record) string  { return r.Name }
func emailField(r entity.Record) string { return r.Email }

func fieldValues(records []entity.Record, field func(entity.Record) string) []string {
	values := make([]string, len(records))
	for i, r := range records {
		values[i] = field(r)
	}
	return values
}

func countPopular(records []entity.Record, field func(entity.Record) string, c classifier.Classifier) int {
	seen := make(map[string]struct{})
	for _, r := range records {
		v := field(r)
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
	}

	count := 0
	for v := range seen {
		if c.IsPopular(v) {
			count++
		}
	}
	return count
}

func rewritePopularNames(records []entity.Record, names classifier.Classifier) int {
	rewritten := 0
	for i := range records {
		r := &records[i]
		if r.Repository == "" || !names.IsPopular(r.Name) {
			continue
		}
		r.Name = fmt.Sprintf("(%s, %s)", r.Name, r.Repository)
		rewritten++
	}
	return rewritten
}
