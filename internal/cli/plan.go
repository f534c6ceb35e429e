package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgplan/internal/checksum"
	"github.com/vvka-141/pgplan/internal/files/scanner"
	"github.com/vvka-141/pgplan/internal/services"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

var planCmd = &cobra.Command{
	Use:   "plan <source_path>",
	Short: "Compute and print the deployment order",
	Long: `Plan scans the corpus, extracts @@name@@ dependency markers and prints
the order in which derived objects would be deployed. No database
connection is opened.

Examples:
  pgplan plan ./corpus
  pgplan plan ./corpus --format json`,
	Args: RequireSourcePath,
	RunE: runPlan,
}

var planFormat string

func init() {
	rootCmd.AddCommand(planCmd)

	planCmd.Flags().StringVar(&planFormat, "format", "text",
		"Output format: text|json")
	_ = planCmd.RegisterFlagCompletionFunc("format",
		func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
		})
}

// planOutput is the JSON document printed by --format json.
type planOutput struct {
	Objects    []planObject    `json:"objects"`
	Migrations []planMigration `json:"migrations"`
}

type planObject struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	Path     string `json:"path"`
}

type planMigration struct {
	Sequence   int    `json:"sequence"`
	Name       string `json:"name"`
	HasReverse bool   `json:"has_reverse"`
	Checksum   string `json:"checksum"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	if planFormat != "text" && planFormat != "json" {
		return fmt.Errorf("unknown format %q (expected text or json)", planFormat)
	}

	sourcePath := args[0]
	sc := scanner.NewScanner(checksum.New())

	corpus, err := sc.ScanCorpus(sourcePath)
	if err != nil {
		return err
	}
	steps, err := sc.ScanMigrations(sourcePath)
	if err != nil {
		return err
	}

	result, err := services.NewPlanService().PlanCorpus(corpus)
	if err != nil {
		return err
	}

	return printPlan(cmd.OutOrStdout(), result, steps, planFormat)
}

func printPlan(out io.Writer, result *services.PlanResult, steps []pgplan.MigrationStep, format string) error {
	if format == "json" {
		doc := planOutput{Objects: []planObject{}, Migrations: []planMigration{}}
		for i, name := range result.Plan {
			doc.Objects = append(doc.Objects, planObject{
				Position: i + 1,
				Name:     string(name),
				Path:     result.Sources[name].Path,
			})
		}
		for _, step := range steps {
			doc.Migrations = append(doc.Migrations, planMigration{
				Sequence:   step.Sequence,
				Name:       step.Name,
				HasReverse: step.HasReverse(),
				Checksum:   step.Checksum,
			})
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	if len(steps) > 0 {
		fmt.Fprintf(out, "Migrations (%d):\n", len(steps))
		for _, step := range steps {
			marker := " "
			if step.HasReverse() {
				marker = "↩"
			}
			fmt.Fprintf(out, "  %04d_%s %s\n", step.Sequence, step.Name, marker)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "Deployment order (%d objects):\n", len(result.Plan))
	for i, name := range result.Plan {
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
	}
	return nil
}
