package cli

import (
	"github.com/spf13/cobra"
	configx "github.com/tanpawarit/agent-coordination-engine/pkg/config"
	logx "github.com/tanpawarit/agent-coordination-engine/pkg/logger"
)

var (
	envFile string
	debug   bool
	pretty  bool
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "coordinator",
		Short: "Multi-agent coordination engine",
		Long:  "Selects specialized agents and drives them through sequential, parallel or hierarchical coordination.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configx.SetEnvFile(envFile)

			logCfg, err := configx.New[logx.Config]("LOG")
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("debug") {
				logCfg.Debug = debug
			}
			if cmd.Flags().Changed("pretty") {
				logCfg.PrettyFormat = pretty
			}
			logx.Init(*logCfg)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&envFile, "env", "", "path to .env file (default ./.env when present)")
	cmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	cmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human readable console logs")

	cmd.AddCommand(newCoordinateCmd())
	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAgentsCmd())
	cmd.AddCommand(newSessionsCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	return newRootCmd().Execute()
}
