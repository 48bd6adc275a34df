package service_test

import (
	"context"
	"testing"

	"github.com/vibast-solutions/ms-go-idmatch/app/cooccurrence"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/normalize"
	"github.com/vibast-solutions/ms-go-idmatch/app/service"
)

func scenarioRecords() []entity.Record {
	return []entity.Record{
		{Name: "Alice", Email: "A@X.com", ExternalID: "1", Repository: "org/one"},
		{Name: "Alice  W", Email: "a@x.com", ExternalID: "1", Repository: "org/one"},
		{Name: "Bob", Email: "b@y.com", ExternalID: "2", Repository: "org/two"},
	}
}

func defaultPipelineOptions() service.PipelineOptions {
	return service.PipelineOptions{
		Normalizer:     normalize.Normalizer{LowerNames: true, LowerEmails: true},
		NameThreshold:  5,
		EmailThreshold: 28,
		Comparison:     cooccurrence.GreaterOrEqual,
		Workers:        2,
	}
}

func assertLines(t *testing.T, identities *entity.Identities, want ...string) {
	t.Helper()
	got := identities.Lines()
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestPipelineRun_EndToEnd(t *testing.T) {
	p := service.NewPipeline(newTestFilter(t), defaultPipelineOptions())

	result, err := p.Run(context.Background(), scenarioRecords())
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.RunID == "" {
		t.Fatalf("expected a run id")
	}
	if result.Records != 3 {
		t.Fatalf("expected 3 records, got %d", result.Records)
	}
	assertLines(t, result.Identities, "alice|alice w||a@x.com", "bob||b@y.com")

	if result.Report == nil {
		t.Fatalf("expected an evaluation report")
	}
	assertClose(t, "f1", 1, result.Report.F1)
	assertClose(t, "weighted_f1", 1, result.Report.WeightedF1)
}

func TestPipelineRun_DetectsPopularEmail(t *testing.T) {
	opts := defaultPipelineOptions()
	opts.EmailThreshold = 2
	p := service.NewPipeline(newTestFilter(t), opts)

	records := append(scenarioRecords(), entity.Record{Name: "Carol", Email: "a@x.com", ExternalID: "3"})
	result, err := p.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.PopularEmails != 1 {
		t.Fatalf("expected 1 popular email, got %d", result.PopularEmails)
	}
	assertLines(t, result.Identities,
		"alice w||a@x.com",
		"alice||a@x.com",
		"bob||b@y.com",
		"carol||a@x.com",
	)
}

func TestPipelineRun_PrecalculatedPopularNamesAreRewritten(t *testing.T) {
	opts := defaultPipelineOptions()
	opts.UsePrecalculatedPopular = true
	opts.RewritePopularNames = true
	opts.MergeByName = true
	p := service.NewPipeline(newTestFilter(t), opts)

	records := []entity.Record{
		{Name: "David", Email: "d1@x.com", Repository: "Org/One"},
		{Name: "David", Email: "d2@x.com", Repository: "org/one"},
		{Name: "David", Email: "d3@x.com", Repository: "org/two"},
	}
	result, err := p.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if result.PopularNames != 1 {
		t.Fatalf("expected 1 popular name, got %d", result.PopularNames)
	}
	if result.Report != nil {
		t.Fatalf("expected no report without external ids")
	}
	assertLines(t, result.Identities,
		"(david, org/one)||d1@x.com|d2@x.com",
		"(david, org/two)||d3@x.com",
	)
}

func TestPipelineRun_Cancelled(t *testing.T) {
	p := service.NewPipeline(newTestFilter(t), defaultPipelineOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Run(ctx, scenarioRecords()); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestPipelinePopularity(t *testing.T) {
	opts := defaultPipelineOptions()
	opts.EmailThreshold = 2
	p := service.NewPipeline(newTestFilter(t), opts)

	records := append(scenarioRecords(), entity.Record{Name: "Carol", Email: "a@x.com"})
	result, err := p.Popularity(context.Background(), records)
	if err != nil {
		t.Fatalf("popularity failed: %v", err)
	}

	if len(result.Emails) != 2 {
		t.Fatalf("expected 2 emails, got %+v", result.Emails)
	}
	top := result.Emails[0]
	if top.Key != "a@x.com" || top.Count != 3 || !top.Popular {
		t.Fatalf("unexpected top email %+v", top)
	}
	if result.Emails[1].Popular {
		t.Fatalf("expected b@y.com not to be popular")
	}
	for _, name := range result.Names {
		if name.Popular {
			t.Fatalf("expected no popular names, got %+v", name)
		}
	}
}
