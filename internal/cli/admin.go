package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	storagex "github.com/tanpawarit/agent-coordination-engine/agent/storage"
)

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Manage the agent registry",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered agents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			agents, err := storagex.NewAgentRegistry(db).List(cmd.Context())
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tSPECIALIZATION\tACTIVE")
			for _, a := range agents {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%t\n", a.ID, a.Name, a.Specialization, a.Active)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Insert or update agents from a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			agents, err := storagex.LoadAgentsFile(args[0])
			if err != nil {
				return err
			}

			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			if err := storagex.NewAgentRegistry(db).Upsert(cmd.Context(), agents...); err != nil {
				return err
			}
			log.Info().Int("count", len(agents)).Str("file", args[0]).Msg("agents seeded")
			return nil
		},
	})

	return cmd
}

func newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect coordination sessions",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show <session-id>",
		Short: "Print a stored session as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appCfg, err := loadAppConfig()
			if err != nil {
				return err
			}
			db, err := openStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close()

			store, err := buildSessionStore(appCfg.SessionBackend, db)
			if err != nil {
				return err
			}
			sess, err := store.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), sess)
		},
	})

	return cmd
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the registry, session and memory tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			storeCfg, err := loadStoreConfig()
			if err != nil {
				return err
			}
			db, err := storagex.Open(cmd.Context(), *storeCfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := db.Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info().Str("driver", storeCfg.Driver).Msg("schema migrated")
			return nil
		},
	}
}
