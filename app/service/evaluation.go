package service

import (
	"sort"

	"github.com/vibast-solutions/ms-go-idmatch/app/classifier"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
)

// GroundTruth maps an external identity id to the names and emails known to belong to it.
type GroundTruth map[string]entity.StringSet

// BuildGroundTruth collects names and emails per external id from normalized records.
// Records without an external id or with an ignored name or email are skipped.
func BuildGroundTruth(records []entity.Record, names, emails classifier.Classifier) GroundTruth {
	truth := make(GroundTruth)
	for _, r := range records {
		if r.ExternalID == "" || names.IsIgnored(r.Name) || emails.IsIgnored(r.Email) {
			continue
		}
		set, ok := truth[r.ExternalID]
		if !ok {
			set = make(entity.StringSet)
			truth[r.ExternalID] = set
		}
		set.Add(r.Name)
		set.Add(r.Email)
	}
	return truth
}

type pairScore struct {
	precision float64
	recall    float64
	f1        float64
	weight    float64
}

// Evaluate scores every (external id, touched identity) pair and averages the
// scores, plainly and weighted by the touched identity size.
func Evaluate(identities *entity.Identities, truth GroundTruth) entity.Report {
	// A value kept apart (popular or name pass off) can be owned by several identities.
	owners := make(map[string][]int)
	for _, identity := range identities.All() {
		for name := range identity.Names {
			owners[name] = append(owners[name], identity.ID)
		}
		for email := range identity.Emails {
			owners[email] = append(owners[email], identity.ID)
		}
	}

	ids := make([]string, 0, len(truth))
	for id := range truth {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var scores []pairScore
	for _, id := range ids {
		expected := truth[id]
		if expected.Len() == 0 {
			continue
		}

		touched := make(map[int]struct{})
		for value := range expected {
			for _, root := range owners[value] {
				touched[root] = struct{}{}
			}
		}

		for root := range touched {
			identity, _ := identities.Get(root)
			scores = append(scores, scorePair(expected, identity))
		}
	}

	return aggregate(scores)
}

func scorePair(expected entity.StringSet, identity *entity.Identity) pairScore {
	intersection := 0
	for value := range expected {
		if identity.Contains(value) {
			intersection++
		}
	}

	size := identity.Size()
	s := pairScore{
		recall:    float64(intersection) / float64(expected.Len()),
		precision: float64(intersection) / float64(size),
		weight:    float64(size),
	}
	if s.precision+s.recall > 0 {
		s.f1 = 2 * s.precision * s.recall / (s.precision + s.recall)
	}
	return s
}

func aggregate(scores []pairScore) entity.Report {
	report := entity.Report{Samples: len(scores)}
	if len(scores) == 0 {
		return report
	}

	var totalWeight float64
	for _, s := range scores {
		report.Precision += s.precision
		report.Recall += s.recall
		report.F1 += s.f1
		report.WeightedPrecision += s.precision * s.weight
		report.WeightedRecall += s.recall * s.weight
		report.WeightedF1 += s.f1 * s.weight
		totalWeight += s.weight
	}

	n := float64(len(scores))
	report.Precision /= n
	report.Recall /= n
	report.F1 /= n
	report.WeightedPrecision /= totalWeight
	report.WeightedRecall /= totalWeight
	report.WeightedF1 /= totalWeight
	return report
}
