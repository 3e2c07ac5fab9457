package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"xlcheck/domain/answer"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// SheetSummary counts what the key grades on one sheet
type SheetSummary struct {
	Sheet    string `json:"sheet"`
	Cells    int    `json:"cells"`
	Patterns int    `json:"patterns"`
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "keycheck <answer-key>",
		Short: "Check an answer key for malformed lines and invalid patterns",
		Long: `Parse an answer key, compile every pattern, and print how many cells and
patterns each sheet declares.

Example: keycheck answers.txt --json`,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			summaries, err := lint(args[0])
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(summaries)
			}
			return printTable(stdout, summaries)
		},
	}

	cmd.SetOut(stdout)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON")

	return cmd
}

// lint loads the key at path and validates every pattern in it
func lint(path string) ([]SheetSummary, error) {
	key, err := answer.Load(path)
	if err != nil {
		return nil, err
	}
	if err := key.Validate(); err != nil {
		return nil, err
	}

	summaries := []SheetSummary{}
	for sheet := range key.Sheets() {
		s := SheetSummary{Sheet: sheet}
		for cell := range key.Cells(sheet) {
			s.Cells++
			s.Patterns += len(key.Patterns(sheet, cell))
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func printTable(w io.Writer, summaries []SheetSummary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SHEET\tCELLS\tPATTERNS")
	var cells, patterns int
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%d\t%d\n", s.Sheet, s.Cells, s.Patterns)
		cells += s.Cells
		patterns += s.Patterns
	}
	fmt.Fprintf(tw, "total\t%d\t%d\n", cells, patterns)
	return tw.Flush()
}
