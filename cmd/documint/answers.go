// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/documint/internal/answers"
	"github.com/pdiddy/documint/internal/questions"
	"github.com/pdiddy/documint/pkg/types"
)

var answersCmd = &cobra.Command{
	Use:   "answers",
	Short: "Manage stored questionnaire answers (import, export, preload, list)",
	Long: `Answers manages the local SQLite answers database. Answer files are
YAML documents with a project name, optional context values for the
skeleton, and answers keyed by question ID.`,
}

// --- import subcommand ---

var answersImportCmd = &cobra.Command{
	Use:   "import FILE...",
	Short: "Store answer files in the answers database",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := answers.Open(viper.GetString("data_dir"))
		if err != nil {
			return err
		}
		defer store.Close()

		summary, err := store.Import(cmd.Context(), args, os.Stdout)
		if err != nil {
			return err
		}
		if summary.Failed > 0 {
			return fmt.Errorf("%d of %d file(s) failed to import", summary.Failed, summary.Total())
		}
		return nil
	},
}

// --- export subcommand ---

var answersExportCmd = &cobra.Command{
	Use:   "export PROJECT",
	Short: "Write a stored project's answers to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := answers.Open(viper.GetString("data_dir"))
		if err != nil {
			return err
		}
		defer store.Close()

		f, err := store.LoadFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = fileSlug(f.Project) + ".yaml"
		}
		if err := answers.WriteYAML(out, f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "exported %s (%d answers) to %s\n", f.Project, len(f.Answers), out)
		return nil
	},
}

// --- preload subcommand ---

var answersPreloadCmd = &cobra.Command{
	Use:   "preload",
	Short: "Create an answer file from a question bank",
	Long: `Preload writes an answer file for a question bank. By default every
answer is the question's example answer; with --empty every answer is
blank, ready to be filled in. --save also stores the answers.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		questionsPath, _ := cmd.Flags().GetString("questions")
		project, _ := cmd.Flags().GetString("project")
		if questionsPath == "" || strings.TrimSpace(project) == "" {
			return fmt.Errorf("--questions and --project are required")
		}

		report, err := questions.ParseFile(questionsPath)
		if err != nil {
			return err
		}

		f := answers.Template(project, report.Questions)
		if empty, _ := cmd.Flags().GetBool("empty"); !empty {
			f.Answers = answers.Preload(report.Questions)
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = fileSlug(project) + ".yaml"
		}
		if err := answers.WriteYAML(out, f); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "wrote %s (%d answers)\n", out, len(f.Answers))

		if save, _ := cmd.Flags().GetBool("save"); save {
			store, err := answers.Open(viper.GetString("data_dir"))
			if err != nil {
				return err
			}
			defer store.Close()
			if err := store.SaveFile(cmd.Context(), f); err != nil {
				return err
			}
			fmt.Fprintf(os.Stdout, "saved %s\n", project)
		}
		return nil
	},
}

// --- list subcommand ---

var answersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := answers.Open(viper.GetString("data_dir"))
		if err != nil {
			return err
		}
		defer store.Close()

		projects, err := store.Projects(cmd.Context())
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			fmt.Println("No projects stored.")
			return nil
		}

		fmt.Fprintf(os.Stdout, "%-40s  %-7s  %s\n", "Project", "Answers", "Updated")
		fmt.Fprintln(os.Stdout, strings.Repeat("-", 72))
		for _, p := range projects {
			fmt.Fprintf(os.Stdout, "%-40s  %-7d  %s\n", p.Name, p.Answers, p.UpdatedAt.Format("2006-01-02 15:04"))
		}
		fmt.Fprintf(os.Stdout, "\n%d projects\n", len(projects))
		return nil
	},
}

// --- delete subcommand ---

var answersDeleteCmd = &cobra.Command{
	Use:   "delete PROJECT",
	Short: "Remove a project and its answers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := answers.Open(viper.GetString("data_dir"))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Delete(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "deleted %s\n", args[0])
		return nil
	},
}

// --- check subcommand ---

var answersCheckCmd = &cobra.Command{
	Use:   "check FILE",
	Short: "Report required questions an answer file leaves blank",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		questionsPath, _ := cmd.Flags().GetString("questions")
		if questionsPath == "" {
			return fmt.Errorf("--questions is required")
		}
		report, err := questions.ParseFile(questionsPath)
		if err != nil {
			return err
		}
		f, err := answers.ReadYAML(args[0])
		if err != nil {
			return err
		}

		missing := answers.MissingRequired(report.Questions, f.Answers)
		for _, q := range missing {
			fmt.Fprintf(os.Stdout, "%-4d  %s\n", q.ID, strings.Join(strings.Fields(q.Text), " "))
		}
		if len(missing) > 0 {
			return fmt.Errorf("%d required question(s) unanswered", len(missing))
		}
		fmt.Fprintf(os.Stdout, "all %d required questions answered\n", countRequired(report.Questions))
		return nil
	},
}

func countRequired(qs []types.Question) int {
	n := 0
	for _, q := range qs {
		if q.Required {
			n++
		}
	}
	return n
}

func init() {
	answersExportCmd.Flags().String("output", "", "output file (default: <project>.yaml)")

	answersPreloadCmd.Flags().String("questions", "", "path to the annotated question bank")
	answersPreloadCmd.Flags().String("project", "", "project name")
	answersPreloadCmd.Flags().String("output", "", "output file (default: <project>.yaml)")
	answersPreloadCmd.Flags().Bool("empty", false, "leave every answer blank")
	answersPreloadCmd.Flags().Bool("save", false, "also store the answers in the database")

	answersCheckCmd.Flags().String("questions", "", "path to the annotated question bank")

	answersCmd.AddCommand(answersImportCmd)
	answersCmd.AddCommand(answersExportCmd)
	answersCmd.AddCommand(answersPreloadCmd)
	answersCmd.AddCommand(answersListCmd)
	answersCmd.AddCommand(answersDeleteCmd)
	answersCmd.AddCommand(answersCheckCmd)

	rootCmd.AddCommand(answersCmd)
}
