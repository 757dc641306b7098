package main

import (
	"fmt"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

var (
	classifyFallback     bool
	classifyFallbackMode string
	classifyLabel        string
)

var classifyCmd = &cobra.Command{
	Use:   "classify SIC [SIC...]",
	Short: "Print the industry of each SIC code",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		applyTableFlags()
		applyClassifyFlags(cmd)
		if err := cfg.Validate("classify"); err != nil {
			return err
		}

		codes := make([]int, len(args))
		for i, a := range args {
			n, err := strconv.Atoi(a)
			if err != nil {
				return eris.Errorf("classify: %q is not a SIC code", a)
			}
			codes[i] = n
		}

		tbl, err := loadTable(cfg.Table)
		if err != nil {
			return err
		}
		clf, err := cfg.Classify.Classifier(tbl)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, sic := range codes {
			res := clf.Classify(sic)
			if _, err := fmt.Fprintf(out, "%d\t%s\n", sic, res.Industry); err != nil {
				return eris.Wrap(err, "classify: write")
			}
		}
		return nil
	},
}

func applyClassifyFlags(cmd *cobra.Command) {
	if cmd.Flags().Changed("fallback") {
		cfg.Classify.Fallback = classifyFallback
	}
	if classifyFallbackMode != "" {
		cfg.Classify.FallbackMode = classifyFallbackMode
	}
	if classifyLabel != "" {
		cfg.Classify.FallbackLabel = classifyLabel
	}
}

func addClassifyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&classifyFallback, "fallback", false, "label codes outside every range with the fallback label")
	cmd.Flags().StringVar(&classifyFallbackMode, "fallback-mode", "", "early (first non-matching range) or after-scan")
	cmd.Flags().StringVar(&classifyLabel, "label", "", "fallback label (default Other)")
}

func init() {
	addTableFlags(classifyCmd)
	addClassifyFlags(classifyCmd)
	rootCmd.AddCommand(classifyCmd)
}
