package main

import (
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ffindustry/internal/assign"
	"github.com/sells-group/ffindustry/internal/store"
)

var (
	assignInput          string
	assignOutput         string
	assignSICColumn      string
	assignIndustryColumn string
	assignSheet          string
	assignDB             string
	assignDriver         string
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Label every firm in a CSV or XLSX file with its industry",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		applyTableFlags()
		applyClassifyFlags(cmd)
		applyAssignFlags()
		if err := cfg.Validate("assign"); err != nil {
			return err
		}

		tbl, err := loadTable(cfg.Table)
		if err != nil {
			return err
		}
		clf, err := cfg.Classify.Classifier(tbl)
		if err != nil {
			return err
		}

		opts := assign.Options{
			Input:          assignInput,
			Sheet:          cfg.Assign.Sheet,
			SICColumn:      cfg.Assign.SICColumn,
			IndustryColumn: cfg.Assign.IndustryColumn,
			BatchSize:      cfg.Assign.BatchSize,
			Classifier:     clf,
		}

		var (
			st      store.Store
			tableID string
		)
		if cfg.Store.DatabaseURL != "" {
			if err := cfg.Validate("store"); err != nil {
				return err
			}
			st, err = store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck

			tableID, err = st.SaveTable(ctx, filepath.Base(cfg.Table.Path), tbl)
			if err != nil {
				return err
			}
			opts.Sink = store.AssignmentSink{Store: st, TableID: tableID}
		}

		out, closeOut, err := openOutput(cmd, assignOutput)
		if err != nil {
			return err
		}
		stats, err := assign.Run(ctx, opts, out)
		if cerr := closeOut(); err == nil && cerr != nil {
			err = eris.Wrap(cerr, "close output")
		}
		if err != nil {
			return err
		}

		fields := []zap.Field{
			zap.String("input", assignInput),
			zap.Int("rows", stats.Rows),
			zap.Int("matched", stats.Matched),
			zap.Int("fallback", stats.Fallback),
			zap.Int("unmatched", stats.Unmatched),
			zap.Int("invalid_sic", stats.InvalidSIC),
			zap.Int("bad_dates", stats.BadDates),
		}
		if st != nil {
			fields = append(fields, zap.String("table_id", tableID))
		}
		zap.L().Info("assign complete", fields...)
		return nil
	},
}

func applyAssignFlags() {
	if assignSICColumn != "" {
		cfg.Assign.SICColumn = assignSICColumn
	}
	if assignIndustryColumn != "" {
		cfg.Assign.IndustryColumn = assignIndustryColumn
	}
	if assignSheet != "" {
		cfg.Assign.Sheet = assignSheet
	}
	if assignDB != "" {
		cfg.Store.DatabaseURL = assignDB
	}
	if assignDriver != "" {
		cfg.Store.Driver = assignDriver
	}
}

func init() {
	addTableFlags(assignCmd)
	addClassifyFlags(assignCmd)
	assignCmd.Flags().StringVarP(&assignInput, "input", "i", "", "firm file, .csv or .xlsx (required)")
	assignCmd.Flags().StringVarP(&assignOutput, "output", "o", "", "output CSV path (default stdout)")
	assignCmd.Flags().StringVar(&assignSICColumn, "sic-column", "", "name of the SIC column (overrides assign.sic_column)")
	assignCmd.Flags().StringVar(&assignIndustryColumn, "industry-column", "", "name of the appended column (overrides assign.industry_column)")
	assignCmd.Flags().StringVar(&assignSheet, "sheet", "", "xlsx worksheet name (default first sheet)")
	assignCmd.Flags().StringVar(&assignDB, "db", "", "also record assignments in this database (overrides store.database_url)")
	assignCmd.Flags().StringVar(&assignDriver, "driver", "", "database driver: sqlite or postgres (overrides store.driver)")
	_ = assignCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(assignCmd)
}
