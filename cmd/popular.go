package cmd

import (
	"fmt"
	"strconv"

	"github.com/vibast-solutions/ms-go-idmatch/app/dto"
	"github.com/vibast-solutions/ms-go-idmatch/config"

	"github.com/spf13/cobra"
)

var (
	popularInput string
	popularCache string
	popularLimit int
	popularAll   bool
)

var popularCmd = &cobra.Command{
	Use:   "popular",
	Short: "List names and emails shared by too many counterparts",
	Long: `Count the distinct emails of every name and the distinct names of every email and
mark those reaching NAME_THRESHOLD / EMAIL_THRESHOLD as popular.`,
	Args: cobra.NoArgs,
	RunE: runPopular,
}

func init() {
	popularCmd.Flags().StringVarP(&popularInput, "input", "i", "", "csv file with name,email columns, - for stdin")
	popularCmd.Flags().StringVar(&popularCache, "cache", "", "csv cache of the gitbase query")
	popularCmd.Flags().IntVarP(&popularLimit, "limit", "n", 20, "maximum rows per table, 0 for all")
	popularCmd.Flags().BoolVar(&popularAll, "all", false, "include keys below the threshold")
	rootCmd.AddCommand(popularCmd)
}

func runPopular(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := configureLogging(cfg); err != nil {
		return err
	}
	ctx := cmd.Context()

	records, err := loadRecords(ctx, cfg, popularInput, popularCache)
	if err != nil {
		return err
	}
	pipeline, err := newPipeline(cfg)
	if err != nil {
		return err
	}

	result, err := pipeline.Popularity(ctx, records)
	if err != nil {
		return err
	}

	fmt.Printf("Names (threshold %s %d)\n", cfg.Matching.Comparison, cfg.Matching.NameThreshold)
	fmt.Println(renderKeyCounts("name", "emails", result.Names, popularLimit, popularAll))
	fmt.Printf("Emails (threshold %s %d)\n", cfg.Matching.Comparison, cfg.Matching.EmailThreshold)
	fmt.Println(renderKeyCounts("email", "names", result.Emails, popularLimit, popularAll))
	return nil
}

func renderKeyCounts(keyHeader, countHeader string, counts []dto.KeyCount, limit int, all bool) string {
	rows := make([][]string, 0)
	for _, c := range counts {
		if !all && !c.Popular {
			continue
		}
		if limit > 0 && len(rows) == limit {
			break
		}
		popular := ""
		if c.Popular {
			popular = "yes"
		}
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count), popular})
	}
	return renderTable([]string{keyHeader, countHeader, "popular"}, rows, 1)
}
