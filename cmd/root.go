package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/ffindustry/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "ffindustry",
	Short: "Fama-French industry classification from SIC codes",
	Long:  "Parses Fama-French Siccodes definition files, maps SIC codes to industries, labels firm files, and downloads definitions from the Ken French data library.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return eris.Wrap(err, "load config")
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return eris.Wrap(err, "init logger")
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
