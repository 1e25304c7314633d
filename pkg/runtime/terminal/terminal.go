package terminal

import (
	"io"
	"os"

	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/ops-atlas/pkg/runtime/terminal/export"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// CLI represents the command-line interface
type CLI struct {
	reporter *export.Reporter
	rootCmd  *cobra.Command

	profile string
	verbose bool
}

// Options contain configuration for the CLI
type Options struct {
	Output io.Writer
}

// NewCLI creates a new CLI instance
func NewCLI(opts Options) *CLI {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	cli := &CLI{
		reporter: export.NewReporter(opts.Output),
	}

	cli.rootCmd = cli.newRootCmd()
	return cli
}

func (cli *CLI) Execute() error {
	return cli.rootCmd.Execute()
}

func (cli *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "opsatlas",
		Short:         "Operational toolkit for Azure subscriptions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level := zerolog.InfoLevel
			if cli.verbose {
				level = zerolog.DebugLevel
			}
			logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
			cmd.SetContext(logger.WithContext(cmd.Context()))
		},
	}

	cmd.PersistentFlags().StringVar(&cli.profile, "profile", "", "Azure config profile to use (default is the [default] section)")
	cmd.PersistentFlags().BoolVarP(&cli.verbose, "verbose", "v", false, "Enable debug logging")

	cmd.AddCommand(commands.NewInventoryCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewMetricsCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewLoginsCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewAlertsCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewDeletionsCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewPolicyCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewUsersCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewNotifyCmd())
	cmd.AddCommand(commands.NewCostsCmd(&cli.profile, cli.reporter))
	cmd.AddCommand(commands.NewServeCmd(&cli.profile))

	return cmd
}
