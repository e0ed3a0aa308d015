package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/matzehuels/treecontrast/pkg/pipeline"
)

// computeCommand creates the compute command.
func (c *CLI) computeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := pipeline.Options{}

	cmd := &cobra.Command{
		Use:   "compute [tree.json] [traits.json]",
		Short: "Compute independent contrasts from a tree and a trait vector",
		Long: `Compute Felsenstein's independent contrasts from a tree document and a
trait document.

The tree must be strictly bifurcating unless --resolve-polytomies is given,
and every tip must have exactly one trait value unless --reconcile is given,
in which case tips and traits without a counterpart are dropped (and
reported).

Contrasts are standardized by default; use --raw for unstandardized
differences. Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.TreePath = args[0]
			opts.TraitPath = args[1]
			return c.runCompute(cmd.Context(), opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the full result as JSON to this file")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Raw, "raw", false, "report raw contrasts instead of standardized")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVar(&opts.Reconcile, "reconcile", false, "prune tree and traits to their shared tip set")
	cmd.Flags().BoolVar(&opts.ResolvePolytomies, "resolve-polytomies", false, "resolve multifurcations with zero-length branches")

	return cmd
}

// runCompute executes the pipeline and prints or writes the result.
func (c *CLI) runCompute(ctx context.Context, opts pipeline.Options, output string, noCache bool) error {
	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing contrasts...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Computation failed")
		return err
	}
	spinner.Stop()

	printSuccess("Computed %d contrasts", result.Stats.ContrastCount)
	printStats(result.Stats.TipCount, result.Stats.ContrastCount, result.CacheInfo.ComputeHit)

	if !result.Input.Reconciliation.Empty() {
		rep := result.Input.Reconciliation
		if len(rep.DroppedTips) > 0 {
			printWarning("Dropped %d tips without trait values: %v", len(rep.DroppedTips), rep.DroppedTips)
		}
		if len(rep.DroppedTraits) > 0 {
			printWarning("Dropped %d trait values without tips: %v", len(rep.DroppedTraits), rep.DroppedTraits)
		}
	}
	if result.Input.SyntheticNodes > 0 {
		printDetail("Resolved polytomies with %d synthetic nodes", result.Input.SyntheticNodes)
	}

	printNewline()
	printContrastTable(result)
	printNewline()
	printSummary(result)

	if output != "" {
		if err := writeResultFile(result, output); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		printNewline()
		printFile(output)
	} else {
		printNewline()
		printNextStep("Write the full result", "treecontrast compute "+opts.TreePath+" "+opts.TraitPath+" -o contrasts.json")
	}

	return nil
}

// printContrastTable prints one row per internal node.
func printContrastTable(result *pipeline.Result) {
	standardized := result.Contrasts.Standardized

	header := fmt.Sprintf("  %-6s %14s %14s", "NODE", "CONTRAST", "VARIANCE")
	if standardized {
		header += fmt.Sprintf(" %14s", "STANDARDIZED")
	}
	fmt.Println(styleHeader.Render(header))

	for _, contrast := range result.Contrasts.Sorted() {
		row := fmt.Sprintf("  %-6s %14s %14s",
			"n"+strconv.Itoa(int(contrast.Node)),
			StyleNumber.Render(formatValue(contrast.Value)),
			StyleValue.Render(formatValue(contrast.Variance)))
		if standardized && contrast.Standardized != nil {
			row += fmt.Sprintf(" %14s", StyleNumber.Render(formatValue(*contrast.Standardized)))
		}
		fmt.Println(row)
	}
}

// printSummary prints descriptive statistics of the standardized contrasts.
func printSummary(result *pipeline.Result) {
	s := result.Summary
	printKeyValue("mean", formatValue(s.Mean))
	printKeyValue("std dev", formatValue(s.StdDev))
	printKeyValue("min", formatValue(s.Min))
	printKeyValue("max", formatValue(s.Max))
}

// resultDocument is the JSON written by --output.
type resultDocument struct {
	Contrasts      any `json:"contrasts"`
	Ancestral      any `json:"ancestral"`
	Summary        any `json:"summary"`
	Reconciliation any `json:"reconciliation,omitempty"`
}

func writeResultFile(result *pipeline.Result, path string) error {
	doc := resultDocument{
		Contrasts: result.Contrasts.Sorted(),
		Ancestral: result.Contrasts.Ancestral,
		Summary:   result.Summary,
	}
	if !result.Input.Reconciliation.Empty() {
		doc.Reconciliation = result.Input.Reconciliation
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0644)
}
