package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/vibast-solutions/ms-go-idmatch/app/dto"
	"github.com/vibast-solutions/ms-go-idmatch/app/entity"
	"github.com/vibast-solutions/ms-go-idmatch/app/repository"
	"github.com/vibast-solutions/ms-go-idmatch/config"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	matchInput   string
	matchCache   string
	matchOutput  string
	matchReport  string
	matchPersist bool
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Merge commit signatures into identities",
	Long: `Read (name, email) signatures from a csv file or gitbase, merge them into identities
and write one "names||emails" line per identity. Records carrying an external id are
used as ground truth for a precision/recall report.`,
	Args: cobra.NoArgs,
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchInput, "input", "i", "", "csv file with name,email[,repo,external_id] columns, - for stdin")
	matchCmd.Flags().StringVar(&matchCache, "cache", "", "csv cache of the gitbase query")
	matchCmd.Flags().StringVarP(&matchOutput, "output", "o", "-", "identities output file, - for stdout")
	matchCmd.Flags().StringVar(&matchReport, "report", "", "write a JSON run report to this file, - for stdout")
	matchCmd.Flags().BoolVar(&matchPersist, "persist", false, "store the run in the DATABASE_DSN database")
	rootCmd.AddCommand(matchCmd)
}

type runReport struct {
	RunID         string         `json:"run_id"`
	Records       int            `json:"records"`
	Identities    int            `json:"identities"`
	PopularNames  int            `json:"popular_names"`
	PopularEmails int            `json:"popular_emails"`
	Elapsed       string         `json:"elapsed"`
	Evaluation    *entity.Report `json:"evaluation,omitempty"`
}

func runMatch(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := configureLogging(cfg); err != nil {
		return err
	}
	ctx := cmd.Context()

	records, err := loadRecords(ctx, cfg, matchInput, matchCache)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.Run(ctx, records)
	if err != nil {
		return err
	}

	if err := writeFile(matchOutput, func(w io.Writer) error {
		return repository.WriteIdentities(w, result.Identities)
	}); err != nil {
		return fmt.Errorf("write identities: %w", err)
	}

	if matchReport != "" {
		if err := writeFile(matchReport, func(w io.Writer) error {
			return writeRunReport(w, result)
		}); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	}

	if matchPersist {
		db, runs, err := openRunStore(ctx, cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := runs.Save(ctx, newRun(result)); err != nil {
			return fmt.Errorf("store run: %w", err)
		}
		logrus.WithField("run_id", result.RunID).Info("Stored run")
	}

	if matchOutput != "-" {
		fmt.Println(renderSummary(result))
	}
	return nil
}

func newRun(result *dto.MatchResult) *entity.Run {
	return &entity.Run{
		ID:         result.RunID,
		Records:    result.Records,
		Report:     result.Report,
		Identities: result.Identities,
		CreatedAt:  time.Now(),
	}
}

func writeRunReport(w io.Writer, result *dto.MatchResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(runReport{
		RunID:         result.RunID,
		Records:       result.Records,
		Identities:    result.Identities.Len(),
		PopularNames:  result.PopularNames,
		PopularEmails: result.PopularEmails,
		Elapsed:       result.Elapsed.String(),
		Evaluation:    result.Report,
	})
}

func renderSummary(result *dto.MatchResult) string {
	rows := [][]string{
		{"run id", result.RunID},
		{"records", strconv.Itoa(result.Records)},
		{"identities", strconv.Itoa(result.Identities.Len())},
		{"popular names", strconv.Itoa(result.PopularNames)},
		{"popular emails", strconv.Itoa(result.PopularEmails)},
		{"elapsed", result.Elapsed.Round(time.Millisecond).String()},
	}
	if r := result.Report; r != nil {
		rows = append(rows,
			[]string{"precision", formatScore(r.Precision)},
			[]string{"recall", formatScore(r.Recall)},
			[]string{"f1", formatScore(r.F1)},
			[]string{"weighted precision", formatScore(r.WeightedPrecision)},
			[]string{"weighted recall", formatScore(r.WeightedRecall)},
			[]string{"weighted f1", formatScore(r.WeightedF1)},
			[]string{"samples", strconv.Itoa(r.Samples)},
		)
	}
	return renderTable([]string{"metric", "value"}, rows, 1)
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
