package cmd

import (
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/mish-shell/mish/core/config"
	"github.com/mish-shell/mish/core/shell"
)

var (
	cfgPath string
	oneShot string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mish",
	Short: "A small line-oriented command interpreter.",
	Long: `mish reads one line at a time and turns it into OS processes:
pipelines with |, redirection with < and >, background execution with &,
and a bounded history re-runnable with !N.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		fs := afero.NewOsFs()
		cfg, err := config.Load(fs, cfgPath)
		if err != nil {
			return err
		}

		logger := zap.NewNop()
		if verbose {
			zcfg := zap.NewProductionConfig()
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
			logger, err = zcfg.Build()
			if err != nil {
				return err
			}
			defer logger.Sync()
		}

		sh := shell.New(cfg, shell.Options{
			Stdin:    os.Stdin,
			Stdout:   os.Stdout,
			Stderr:   os.Stderr,
			FS:       fs,
			Logger:   logger,
			Terminal: term.IsTerminal(int(os.Stdin.Fd())),
		})

		if oneShot != "" {
			if status := sh.Interpret(oneShot); status != 0 {
				os.Exit(status)
			}
			return nil
		}

		status, err := sh.Run()
		if err != nil {
			return err
		}
		if status != 0 {
			os.Exit(status)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func init() {
	rootCmd.Flags().StringVar(&cfgPath, "config", "", "path to config.yaml (defaults to built-in settings)")
	rootCmd.Flags().StringVarP(&oneShot, "command", "c", "", "run a single line and exit")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "enable debug logging")
}
