package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vvka-141/pgplan/internal/scaffold"
)

var initCmd = &cobra.Command{
	Use:   "init <target_path>",
	Short: "Initialize a new pgplan corpus",
	Long: `Init creates the corpus skeleton in the specified directory:
tables/, views/, migrations/, a pgplan.yaml and example sources with
@@name@@ dependency markers.

Target directory must be empty or non-existent.

Examples:
  pgplan init .                  # Initialize in current directory
  pgplan init ./myproject        # Initialize in ./myproject`,
	Args: cobra.MinimumNArgs(0),
	RunE: runInit,
}

var (
	initTemplate string
	initList     bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVarP(&initTemplate, "template", "t", scaffold.DefaultTemplate,
		"Template to use")
	_ = initCmd.RegisterFlagCompletionFunc("template", completeTemplateNames)
	initCmd.Flags().BoolVar(&initList, "list", false, "List available templates")
}

func runInit(cmd *cobra.Command, args []string) error {
	if initList {
		templates, err := scaffold.ListTemplates()
		if err != nil {
			return fmt.Errorf("failed to list templates: %w", err)
		}
		for _, t := range templates {
			fmt.Fprintln(cmd.OutOrStdout(), t)
		}
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("target path required\n\nUsage: pgplan init <target_path> [flags]\n\nExamples:\n  pgplan init .           # Current directory\n  pgplan init ./myproject # Subdirectory")
	}
	targetPath := args[0]

	projectName := filepath.Base(targetPath)
	if projectName == "." || projectName == ".." {
		if cwd, err := os.Getwd(); err == nil {
			projectName = filepath.Base(cwd)
		} else {
			projectName = "project"
		}
	}

	scaffolder := scaffold.NewScaffolder(newLogger(getVerboseFlag(cmd)))
	if err := scaffolder.CreateProject(projectName, initTemplate, targetPath); err != nil {
		return fmt.Errorf("failed to create project: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\n✓ Corpus initialized using template %q\n\n", initTemplate)
	if tree, err := scaffold.BuildFileTree(targetPath); err == nil {
		fmt.Fprintln(os.Stderr, "Created structure:")
		fmt.Fprint(os.Stderr, tree)
	}

	fmt.Fprintln(os.Stderr, "\nNext steps:")
	if targetPath != "." {
		fmt.Fprintf(os.Stderr, "  cd %s\n", targetPath)
	}
	fmt.Fprintln(os.Stderr, "  pgplan plan .")
	fmt.Fprintln(os.Stderr, "  pgplan deploy . --database mydb")

	return nil
}
