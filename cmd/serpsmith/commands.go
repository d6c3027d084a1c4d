package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amosWeiskopf/serpsmith/internal/models"
	"github.com/amosWeiskopf/serpsmith/pkg/analyzer"
	"github.com/amosWeiskopf/serpsmith/pkg/content"
	"github.com/amosWeiskopf/serpsmith/pkg/ctr"
	"github.com/amosWeiskopf/serpsmith/pkg/difficulty"
	"github.com/amosWeiskopf/serpsmith/pkg/extractor"
	"github.com/amosWeiskopf/serpsmith/pkg/ingest"
	"github.com/amosWeiskopf/serpsmith/pkg/normalizer"
	"github.com/amosWeiskopf/serpsmith/pkg/reporter"
)

func (a *app) analyzer() *analyzer.Analyzer {
	return analyzer.NewWithConfig(&analyzer.Config{
		Model:     a.cfg.Engine,
		Workers:   a.cfg.Analysis.Workers,
		Threshold: a.cfg.Analysis.Threshold,
		Logger:    a.log,
	})
}

func (a *app) normalizeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "normalize FILE...",
		Short: "Group performance rows by query or page",
		Long: `Reads one or more performance exports and prints one aggregate per
entity. Aggregates from several files are merged with weighted averages.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			batches := make([][]models.AggregateMetric, 0, len(args))
			for _, path := range args {
				rows, err := readRows(cmd, path)
				if err != nil {
					return err
				}
				agg, err := normalizer.GroupByEntity(rows)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				a.log.Debug().Str("file", path).Int("rows", len(rows)).Int("entities", len(agg)).Msg("normalized")
				batches = append(batches, agg)
			}
			return printJSON(cmd.OutOrStdout(), normalizer.Merge(batches...))
		},
	}
}

func (a *app) difficultyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "difficulty KEYWORD",
		Short: "Score how hard a keyword is to rank for",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := models.KeywordDifficultyInput{Keyword: args[0]}
			input.SearchVolume, _ = cmd.Flags().GetInt64("volume")
			input.CPC, _ = cmd.Flags().GetFloat64("cpc")
			input.Competition, _ = cmd.Flags().GetFloat64("competition")

			bench, err := benchmarkFromFlags(cmd)
			if err != nil {
				return err
			}

			result := difficulty.New(a.cfg.Engine.Difficulty).Calculate(input, bench)
			quality := content.New(a.cfg.Engine.Content).Analyze(result.Difficulty)
			return printJSON(cmd.OutOrStdout(), struct {
				Keyword string `json:"keyword"`
				models.DifficultyResult
				Content models.ContentQuality `json:"content"`
			}{input.Keyword, result, quality})
		},
	}

	cmd.Flags().Int64("volume", 0, "Monthly search volume")
	cmd.Flags().Float64("cpc", 0, "Cost per click")
	cmd.Flags().Float64("competition", 0, "Paid competition index (0-1)")
	cmd.Flags().String("benchmark", "", "Benchmark file (JSON or YAML)")
	cmd.Flags().Float64("authority", 0, "Average domain authority of ranking pages")
	cmd.Flags().Int64("backlinks", 0, "Average backlinks of ranking pages")
	cmd.Flags().Int64("content-length", 0, "Average word count of ranking pages")
	cmd.Flags().Int64("pages", 10, "Number of ranking pages considered")
	return cmd
}

func benchmarkFromFlags(cmd *cobra.Command) (models.Benchmark, error) {
	if path, _ := cmd.Flags().GetString("benchmark"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return models.Benchmark{}, fmt.Errorf("failed to open benchmark: %w", err)
		}
		defer f.Close()
		return ingest.DecodeBenchmark(f, ingest.FormatFromPath(path))
	}

	var b models.Benchmark
	b.AvgDomainAuthority, _ = cmd.Flags().GetFloat64("authority")
	b.AvgBacklinks, _ = cmd.Flags().GetInt64("backlinks")
	b.AvgContentLength, _ = cmd.Flags().GetInt64("content-length")
	b.TopRankingPages, _ = cmd.Flags().GetInt64("pages")
	return b, nil
}

func (a *app) ctrCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ctr",
		Short: "Predict click-through rate and clicks at a position",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var input models.CtrInput
			input.CurrentPosition, _ = cmd.Flags().GetFloat64("position")
			input.SearchVolume, _ = cmd.Flags().GetInt64("volume")
			input.HasRichSnippet, _ = cmd.Flags().GetBool("rich-snippet")
			input.HasSitelinks, _ = cmd.Flags().GetBool("sitelinks")
			input.SerpFeatures, _ = cmd.Flags().GetStringSlice("feature")

			return printJSON(cmd.OutOrStdout(), ctr.New(a.cfg.Engine.CTR).Analyze(input))
		},
	}

	cmd.Flags().Float64("position", 1, "SERP position")
	cmd.Flags().Int64("volume", 0, "Monthly search volume")
	cmd.Flags().Bool("rich-snippet", false, "Result has a rich snippet")
	cmd.Flags().Bool("sitelinks", false, "Result has sitelinks")
	cmd.Flags().StringSlice("feature", nil, "Competing SERP feature (repeatable)")
	return cmd
}

func (a *app) anomaliesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "anomalies",
		Short: "Compare two periods and list regressions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			current, previous, err := readPeriods(cmd)
			if err != nil {
				return err
			}
			threshold := a.cfg.Analysis.Threshold
			if cmd.Flags().Changed("threshold") {
				threshold, _ = cmd.Flags().GetFloat64("threshold")
			}

			alerts, err := a.analyzer().ComparePeriods(current, previous, threshold)
			if err != nil {
				return fmt.Errorf("comparison failed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), alerts)
		},
	}

	cmd.Flags().String("current", "", "Current period export")
	cmd.Flags().String("previous", "", "Previous period export")
	cmd.Flags().Float64("threshold", 0, "Relative drop that raises an alert (defaults to analysis.threshold)")
	_ = cmd.MarkFlagRequired("current")
	_ = cmd.MarkFlagRequired("previous")
	return cmd
}

func (a *app) gapsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gaps CANDIDATES",
		Short: "Score and rank content gaps against a competitor",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			candidates, err := readCandidates(args[0])
			if err != nil {
				return err
			}
			gaps, err := a.analyzer().AnalyzeGaps(cmd.Context(), candidates)
			if err != nil {
				return fmt.Errorf("gap analysis failed: %w", err)
			}
			return printJSON(cmd.OutOrStdout(), gaps)
		},
	}
}

func (a *app) benchmarkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "benchmark HTML_FILE...",
		Short: "Build a benchmark from saved competitor pages",
		Long: `Extracts the main text of each saved competitor page and averages the
content length. Authority and backlink averages come from your link index.
With --own the topic coverage of your page is compared against the competitors.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			authority, _ := cmd.Flags().GetFloat64("authority")
			backlinks, _ := cmd.Flags().GetInt64("backlinks")
			ownPath, _ := cmd.Flags().GetString("own")
			topics, _ := cmd.Flags().GetInt("topics")

			ex := extractor.New()
			pages := make([]*extractor.Page, 0, len(args))
			for _, path := range args {
				data, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read page: %w", err)
				}
				page, err := ex.Analyze("", string(data))
				if err != nil {
					a.log.Warn().Err(err).Str("file", path).Msg("page skipped")
					continue
				}
				pages = append(pages, page)
			}

			out := struct {
				Benchmark models.Benchmark  `json:"benchmark"`
				Domains   []string          `json:"domains,omitempty"`
				Pages     []*extractor.Page `json:"pages"`
				Coverage  *content.Coverage `json:"coverage,omitempty"`
			}{
				Benchmark: extractor.BuildBenchmark(pages, authority, backlinks),
				Domains:   extractor.Domains(pages),
				Pages:     pages,
			}

			if ownPath != "" {
				data, err := os.ReadFile(ownPath)
				if err != nil {
					return fmt.Errorf("failed to read own page: %w", err)
				}
				own, err := ex.Analyze("", string(data))
				if err != nil {
					return fmt.Errorf("%s: %w", ownPath, err)
				}
				cov := content.TopicCoverage(own.Text, extractor.Texts(pages), topics)
				out.Coverage = &cov
			}
			return printJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().Float64("authority", 0, "Average domain authority of ranking pages")
	cmd.Flags().Int64("backlinks", 0, "Average backlinks of ranking pages")
	cmd.Flags().String("own", "", "Your page, for topic coverage")
	cmd.Flags().Int("topics", 20, "Number of competitor topics to compare")
	return cmd
}

func (a *app) reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report SITE",
		Short: "Generate a gap and anomaly report for a site",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := analyzer.Input{Site: args[0]}
			if path, _ := cmd.Flags().GetString("candidates"); path != "" {
				candidates, err := readCandidates(path)
				if err != nil {
					return err
				}
				in.Candidates = candidates
			}
			if cmd.Flags().Changed("current") || cmd.Flags().Changed("previous") {
				current, previous, err := readPeriods(cmd)
				if err != nil {
					return err
				}
				in.Current, in.Previous = current, previous
			}

			report, err := a.analyzer().Analyze(cmd.Context(), in)
			if err != nil {
				return err
			}

			format := a.cfg.Report.Format
			if cmd.Flags().Changed("format") {
				format, _ = cmd.Flags().GetString("format")
			}
			rendered, err := reporter.New().GenerateReport(report, reporter.Format(format))
			if err != nil {
				return fmt.Errorf("report generation failed: %w", err)
			}

			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), rendered)
				return err
			}
			if err := os.WriteFile(output, []byte(rendered), 0o644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			a.log.Info().Str("path", output).Msg("report saved")
			return nil
		},
	}

	cmd.Flags().String("candidates", "", "Gap candidates file (JSON or YAML)")
	cmd.Flags().String("current", "", "Current period export")
	cmd.Flags().String("previous", "", "Previous period export")
	cmd.Flags().String("format", "markdown", "Report format (json, html, markdown)")
	cmd.Flags().String("output", "", "Output file for report")
	return cmd
}

func readRows(cmd *cobra.Command, path string) ([]models.PerformanceRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open rows: %w", err)
	}
	defer f.Close()

	format := ingest.FormatFromPath(path)
	if forced, _ := cmd.Flags().GetString("input-format"); forced != "" {
		format = ingest.Format(forced)
	}
	rows, err := ingest.DecodeRows(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rows, nil
}

func readPeriods(cmd *cobra.Command) (current, previous []models.PerformanceRow, err error) {
	currentPath, _ := cmd.Flags().GetString("current")
	previousPath, _ := cmd.Flags().GetString("previous")
	if currentPath == "" || previousPath == "" {
		return nil, nil, fmt.Errorf("both --current and --previous are required")
	}
	if current, err = readRows(cmd, currentPath); err != nil {
		return nil, nil, err
	}
	if previous, err = readRows(cmd, previousPath); err != nil {
		return nil, nil, err
	}
	return current, previous, nil
}

func readCandidates(path string) ([]models.GapCandidate, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open candidates: %w", err)
	}
	defer f.Close()

	candidates, err := ingest.DecodeCandidates(f, ingest.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return candidates, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
