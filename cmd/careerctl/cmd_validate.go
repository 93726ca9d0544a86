package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/couchcryptid/career-scoring-engine/internal/domain"
	"github.com/couchcryptid/career-scoring-engine/internal/engine"
	"github.com/couchcryptid/career-scoring-engine/internal/model"
	"github.com/spf13/cobra"
)

var validateFlags struct {
	minTop1 float64
	minTop3 float64
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Train the model and report agreement with the seed corpus careers",
	Long: "Train the model from MODEL_* settings and predict every reference\n" +
		"individual. Synthetic labels come from the rule scorer's own top-3, so\n" +
		"this measures self-consistency, not accuracy against outside data.",
	RunE: runValidate,
}

func init() {
	f := validateCmd.Flags()
	f.Float64Var(&validateFlags.minTop1, "min-top1", 0, "fail below this top-1 hit rate")
	f.Float64Var(&validateFlags.minTop3, "min-top3", 0, "fail below this top-3 hit rate")
}

// corpusReport is the outcome of predicting every reference individual.
type corpusReport struct {
	Rows []corpusRow
	Top1 int
	Top3 int
}

type corpusRow struct {
	Name      string
	Career    domain.Career
	Predicted []domain.Career
	Top1      bool
	Top3      bool
}

func (r corpusReport) rate(hits int) float64 {
	if len(r.Rows) == 0 {
		return 0
	}
	return float64(hits) / float64(len(r.Rows))
}

func runValidate(cmd *cobra.Command, _ []string) error {
	cfg, logger, metrics, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	corpus, err := model.SeedCorpus()
	if err != nil {
		return err
	}

	eng := engine.FromConfig(cfg, nil, metrics, logger)
	if err := eng.CheckReadiness(cmd.Context()); err != nil {
		return fmt.Errorf("model not trained: %w", err)
	}

	report := evaluate(cmd.Context(), eng, corpus)
	printReport(cmd.OutOrStdout(), report)

	if report.rate(report.Top1) < validateFlags.minTop1 {
		return fmt.Errorf("top-1 agreement %.2f below %.2f", report.rate(report.Top1), validateFlags.minTop1)
	}
	if report.rate(report.Top3) < validateFlags.minTop3 {
		return fmt.Errorf("top-3 agreement %.2f below %.2f", report.rate(report.Top3), validateFlags.minTop3)
	}
	return nil
}

func evaluate(ctx context.Context, eng *engine.Engine, corpus []model.Individual) corpusReport {
	var report corpusReport
	for _, ind := range corpus {
		p := eng.PredictFeatures(ctx, ind.FeatureSet())

		row := corpusRow{Name: ind.Name, Career: ind.Career}
		for i, rec := range p.Top {
			row.Predicted = append(row.Predicted, rec.Career)
			if rec.Career == ind.Career {
				row.Top3 = true
				row.Top1 = row.Top1 || i == 0
			}
		}
		if row.Top1 {
			report.Top1++
		}
		if row.Top3 {
			report.Top3++
		}
		report.Rows = append(report.Rows, row)
	}
	return report
}

func printReport(w io.Writer, r corpusReport) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tCAREER\tTOP-3\tHIT")
	for _, row := range r.Rows {
		hit := "-"
		switch {
		case row.Top1:
			hit = "top-1"
		case row.Top3:
			hit = "top-3"
		}
		fmt.Fprintf(tw, "%s\t%s\t%v\t%s\n", row.Name, row.Career, row.Predicted, hit)
	}
	_ = tw.Flush()

	fmt.Fprintf(w, "\ntop-1 agreement: %d/%d (%.2f)\n", r.Top1, len(r.Rows), r.rate(r.Top1))
	fmt.Fprintf(w, "top-3 agreement: %d/%d (%.2f)\n", r.Top3, len(r.Rows), r.rate(r.Top3))
}
