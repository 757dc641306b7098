package main

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ffindustry/internal/config"
	"github.com/sells-group/ffindustry/internal/industry"
)

var (
	tableFile     string
	tableEncoding string
	tableFormat   string
	tableOutput   string
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Parse an industry definition file and print it",
	RunE: func(cmd *cobra.Command, _ []string) error {
		applyTableFlags()
		if err := cfg.Validate("table"); err != nil {
			return err
		}
		format, err := industry.ParseFormat(tableFormat)
		if err != nil {
			return err
		}

		tbl, err := loadTable(cfg.Table)
		if err != nil {
			return err
		}

		out, closeOut, err := openOutput(cmd, tableOutput)
		if err != nil {
			return err
		}
		if err := industry.Write(out, tbl, format); err != nil {
			closeOut() //nolint:errcheck
			return eris.Wrap(err, "write table")
		}
		if err := closeOut(); err != nil {
			return err
		}

		zap.L().Info("table written",
			zap.String("file", cfg.Table.Path),
			zap.Int("industries", tbl.Len()),
			zap.Int("ranges", tbl.RangeCount()),
			zap.String("format", string(format)),
		)
		return nil
	},
}

// addTableFlags registers --file and --encoding on commands that read a
// definition file.
func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&tableFile, "file", "f", "", "industry definition file (overrides table.path)")
	cmd.Flags().StringVar(&tableEncoding, "encoding", "", "text encoding of the definition file (overrides table.encoding)")
}

func applyTableFlags() {
	if tableFile != "" {
		cfg.Table.Path = tableFile
	}
	if tableEncoding != "" {
		cfg.Table.Encoding = tableEncoding
	}
}

// loadTable reads a Siccodes text file, or a table previously exported as
// CSV when the path ends in .csv.
func loadTable(tc config.TableConfig) (*industry.Table, error) {
	if strings.EqualFold(filepath.Ext(tc.Path), ".csv") {
		f, err := os.Open(tc.Path)
		if err != nil {
			return nil, eris.Wrapf(industry.ErrIO, "open %s: %v", tc.Path, err)
		}
		defer f.Close() //nolint:errcheck
		tbl, err := industry.ReadCSV(f)
		if err != nil {
			return nil, eris.Wrapf(err, "read %s", tc.Path)
		}
		return tbl, nil
	}
	return industry.ParseFile(tc.Path, tc.Encoding)
}

// openOutput returns the command's stdout for "" or "-", otherwise a new
// file at path.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" || path == "-" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "create %s", path)
	}
	return f, f.Close, nil
}

func init() {
	addTableFlags(tableCmd)
	tableCmd.Flags().StringVar(&tableFormat, "format", "csv", "output format: csv, yaml or json")
	tableCmd.Flags().StringVarP(&tableOutput, "output", "o", "", "output path (default stdout)")
	rootCmd.AddCommand(tableCmd)
}
