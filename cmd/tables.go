package main

import (
	"fmt"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/ffindustry/internal/industry"
	"github.com/sells-group/ffindustry/internal/store"
)

var (
	tablesID     string
	tablesFormat string
)

var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "List tables recorded by assign --db, or print one by id",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		applyAssignFlags()
		if err := cfg.Validate("store"); err != nil {
			return err
		}
		st, err := store.Open(ctx, cfg.Store.Driver, cfg.Store.DatabaseURL, cfg.Store.MaxConns)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		out := cmd.OutOrStdout()
		if tablesID != "" {
			format, err := industry.ParseFormat(tablesFormat)
			if err != nil {
				return err
			}
			tbl, err := st.LoadTable(ctx, tablesID)
			if err != nil {
				return err
			}
			return eris.Wrap(industry.Write(out, tbl, format), "tables: write")
		}

		infos, err := st.ListTables(ctx)
		if err != nil {
			return err
		}
		for _, ti := range infos {
			counts, err := st.CountAssignments(ctx, ti.ID)
			if err != nil {
				return err
			}
			total := 0
			for _, n := range counts {
				total += n
			}
			if _, err := fmt.Fprintf(out, "%s\t%s\t%d\t%d\t%d\t%s\n",
				ti.ID, ti.Name, ti.Industries, ti.Ranges, total, ti.CreatedAt.Format(time.RFC3339)); err != nil {
				return eris.Wrap(err, "tables: write")
			}
		}
		return nil
	},
}

func init() {
	tablesCmd.Flags().StringVar(&tablesID, "id", "", "print the table with this id instead of listing")
	tablesCmd.Flags().StringVar(&tablesFormat, "format", "csv", "output format for --id: csv, yaml or json")
	tablesCmd.Flags().StringVar(&assignDB, "db", "", "database URL or path (overrides store.database_url)")
	tablesCmd.Flags().StringVar(&assignDriver, "driver", "", "database driver: sqlite or postgres (overrides store.driver)")
	rootCmd.AddCommand(tablesCmd)
}
