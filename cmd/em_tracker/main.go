package main

import (
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/relabs-tech/em_tracker/internal/app"
	"github.com/relabs-tech/em_tracker/internal/config"
)

var (
	flagFormat   string
	flagOutput   string
	flagConfig   string
	flagMock     bool
	flagInterval int
)

var rootCmd = &cobra.Command{
	Use:   "em_tracker",
	Short: "stream real-time EM tracker pose data",
	Long: `em_tracker polls the TrakStar electromagnetic motion tracker and streams
per-sensor pose records (position, orientation, quality) to stdout or a
file, as CSV or JSON Lines.`,
	Example: `  em_tracker                          # stream CSV to stdout
  em_tracker --output data.csv        # save CSV to a file
  em_tracker --format json            # stream JSON Lines
  em_tracker -f json -o data.jsonl    # save JSON Lines`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitGlobal(flagConfig); err != nil {
			return err
		}
		return app.RunStream(app.StreamOptions{
			Format:   flagFormat,
			Output:   flagOutput,
			Mock:     flagMock,
			Interval: time.Duration(flagInterval) * time.Millisecond,
		})
	},
}

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "probe the tracker and report attached sensors",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.InitGlobal(flagConfig); err != nil {
			return err
		}
		return app.RunProbe(flagMock)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "path to configuration file")
	rootCmd.PersistentFlags().BoolVar(&flagMock, "mock", false, "use the mock tracker source")
	rootCmd.Flags().StringVarP(&flagFormat, "format", "f", "csv", "output format: csv or json")
	rootCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "output file to save data (default: stdout)")
	rootCmd.Flags().IntVar(&flagInterval, "interval", 0, "poll interval in milliseconds (default: from config)")

	rootCmd.AddCommand(probeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}
