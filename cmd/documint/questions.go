// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/documint/internal/questions"
)

var questionsCmd = &cobra.Command{
	Use:   "questions FILE",
	Short: "Parse a question bank and list its questions",
	Long: `Questions parses an annotated question bank and lists every question
with its required flag. Malformed fragments are skipped and counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuestions,
}

func init() {
	questionsCmd.Flags().Bool("json", false, "output questions as JSON")

	rootCmd.AddCommand(questionsCmd)
}

func runQuestions(cmd *cobra.Command, args []string) error {
	report, err := questions.ParseFile(args[0])
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report.Questions)
	}
	printQuestions(os.Stdout, report)
	return nil
}

func printQuestions(w io.Writer, report questions.Report) {
	fmt.Fprintf(w, "%-4s  %-3s  %s\n", "ID", "Req", "Question")
	fmt.Fprintln(w, strings.Repeat("-", 80))

	required := 0
	for _, q := range report.Questions {
		req := ""
		if q.Required {
			req = "*"
			required++
		}
		text := strings.Join(strings.Fields(q.Text), " ")
		if len(text) > 70 {
			text = text[:67] + "..."
		}
		fmt.Fprintf(w, "%-4d  %-3s  %s\n", q.ID, req, text)
	}

	fmt.Fprintf(w, "\n%d questions (%d required), %d dropped\n", len(report.Questions), required, report.Dropped)
}
