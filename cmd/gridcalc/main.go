// Package main provides the CLI entry point for gridcalc.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/javajack/gridcalc"
	"github.com/spf13/cobra"
)

var (
	outputPath string
	asJSON     bool
	pretty     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "gridcalc [script]",
		Short: "Evaluate a reactive grid of formulas",
		Long: `gridcalc applies a script of cell writes (one "REF = content" per line,
"#" starts a comment) to an empty grid and prints every occupied cell
with its evaluated value.`,
		Args: cobra.ExactArgs(1),
		RunE: run,
	}

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file path (default: stdout)")
	rootCmd.Flags().BoolVar(&asJSON, "json", false, "Emit JSON instead of text")
	rootCmd.Flags().BoolVar(&pretty, "pretty", false, "Pretty-print JSON output")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// cellReport is one occupied cell in the output.
type cellReport struct {
	Ref     string `json:"ref"`
	Content any    `json:"content"`
	Value   any    `json:"value,omitempty"`
	Error   string `json:"error,omitempty"`
}

func run(cmd *cobra.Command, args []string) error {
	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	g := gridcalc.NewGrid()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ref, raw, err := parseAssignment(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", lineNo, err)
		}
		g.WriteCell(ref, raw)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read script: %w", err)
	}

	reports := collectReports(g)

	var out []byte
	if asJSON {
		if pretty {
			out, err = json.MarshalIndent(reports, "", "  ")
		} else {
			out, err = json.Marshal(reports)
		}
		if err != nil {
			return fmt.Errorf("serialize output: %w", err)
		}
		out = append(out, '\n')
	} else {
		var b strings.Builder
		for _, r := range reports {
			if r.Error != "" {
				fmt.Fprintf(&b, "%s\t%v\t!%s\n", r.Ref, r.Content, r.Error)
				continue
			}
			fmt.Fprintf(&b, "%s\t%v\t%v\n", r.Ref, r.Content, r.Value)
		}
		out = []byte(b.String())
	}

	if outputPath != "" {
		if err := os.WriteFile(outputPath, out, 0644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	_, err = os.Stdout.Write(out)
	return err
}

// parseAssignment splits a script line "B2 = =A1+1" into its coordinate
// and raw content. The first "=" is the separator; everything after it,
// trimmed, is the content.
func parseAssignment(line string) (gridcalc.Ref, string, error) {
	idx := strings.Index(line, "=")
	if idx < 0 {
		return gridcalc.Ref{}, "", fmt.Errorf("expected \"REF = content\", got %q", line)
	}
	ref, err := gridcalc.ParseRef(strings.TrimSpace(line[:idx]))
	if err != nil {
		return gridcalc.Ref{}, "", err
	}
	return ref, strings.TrimSpace(line[idx+1:]), nil
}

// collectReports walks the occupied extent in row-major order.
func collectReports(g *gridcalc.Grid) []cellReport {
	maxRow, maxCol := g.OccupiedExtent()
	var reports []cellReport
	for row := 1; row <= maxRow; row++ {
		for col := 1; col <= maxCol; col++ {
			ref := gridcalc.NewRef(row, col)
			view, ok := g.ReadCell(ref)
			if !ok || view.Content == nil {
				continue
			}
			r := cellReport{Ref: ref.Name(), Content: view.Content}
			if view.Invalid {
				r.Error = view.ErrorMessage
			} else {
				r.Value = view.Value
			}
			reports = append(reports, r)
		}
	}
	return reports
}
