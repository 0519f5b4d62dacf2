package main

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fjacquet/meili_admin/internal/utils"
	"github.com/fjacquet/meili_admin/meili"
)

// newAPIClient loads and validates the configuration file and builds a
// Meilisearch client from it.
func newAPIClient() (*meili.Client, error) {
	cfg, err := validateConfig(configFile)
	if err != nil {
		return nil, err
	}

	if debug {
		log.SetLevel(log.DebugLevel)
		log.Debugf("Meilisearch instance: %s (API key: %s)", cfg.GetMeiliBaseURL(), cfg.MaskAPIKey())
	}

	clientCfg, err := cfg.ClientConfig()
	if err != nil {
		return nil, err
	}

	return meili.NewClient(clientCfg), nil
}

// printJSON renders an entity as indented JSON on stdout.
func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// newIndexCmd builds the index lifecycle subcommands.
func newIndexCmd() *cobra.Command {
	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Manage indexes on the Meilisearch instance",
	}

	indexCmd.AddCommand(
		newIndexListCmd(),
		newIndexGetCmd(),
		newIndexCreateCmd(),
		newIndexUpdateCmd(),
		newIndexDeleteCmd(),
		newIndexEnsureCmd(),
	)

	return indexCmd
}

func newIndexListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			indexes, err := client.ListIndexes(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(indexes)
		},
	}
}

func newIndexGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <uid>",
		Short: "Get a single index by uid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			index, err := client.GetIndex(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(index)
		},
	}
}

func newIndexCreateCmd() *cobra.Command {
	var primaryKey string

	cmd := &cobra.Command{
		Use:   "create <uid>",
		Short: "Create an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			index, err := client.CreateIndex(cmd.Context(), args[0], primaryKey)
			if err != nil {
				return err
			}
			return printJSON(index)
		},
	}

	cmd.Flags().StringVarP(&primaryKey, "primary-key", "p", "", "Primary key of the documents in the index")
	return cmd
}

func newIndexUpdateCmd() *cobra.Command {
	var primaryKey string

	cmd := &cobra.Command{
		Use:   "update <uid>",
		Short: "Update the primary key of an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			index, err := client.UpdateIndex(cmd.Context(), args[0], primaryKey)
			if err != nil {
				return err
			}
			return printJSON(index)
		},
	}

	cmd.Flags().StringVarP(&primaryKey, "primary-key", "p", "", "New primary key for the index")
	_ = cmd.MarkFlagRequired("primary-key")
	return cmd
}

func newIndexDeleteCmd() *cobra.Command {
	var ifExists bool

	cmd := &cobra.Command{
		Use:   "delete <uid>",
		Short: "Delete an index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if ifExists {
				deleted, err := client.DeleteIndexIfExists(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				if deleted {
					fmt.Printf("Index %s deleted\n", args[0])
				} else {
					fmt.Printf("Index %s does not exist\n", args[0])
				}
				return nil
			}

			if err := client.DeleteIndex(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Index %s deleted\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&ifExists, "if-exists", false, "Do not fail when the index does not exist")
	return cmd
}

func newIndexEnsureCmd() *cobra.Command {
	var primaryKey string

	cmd := &cobra.Command{
		Use:   "ensure <uid>",
		Short: "Get an index, creating it when it does not exist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			index, err := client.GetOrCreateIndex(cmd.Context(), args[0], primaryKey)
			if err != nil {
				return err
			}
			return printJSON(index)
		},
	}

	cmd.Flags().StringVarP(&primaryKey, "primary-key", "p", "", "Primary key used when the index has to be created")
	return cmd
}

// newDumpCmd builds the dump subcommands.
func newDumpCmd() *cobra.Command {
	dumpCmd := &cobra.Command{
		Use:   "dump",
		Short: "Trigger and inspect dumps of the Meilisearch instance",
	}

	dumpCmd.AddCommand(newDumpCreateCmd(), newDumpStatusCmd())
	return dumpCmd
}

func newDumpCreateCmd() *cobra.Command {
	var wait bool
	var pollInterval string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Trigger the creation of a dump",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			dump, err := client.CreateDump(cmd.Context())
			if err != nil {
				return err
			}

			if !wait {
				return printJSON(dump)
			}

			// Poll until the dump job reaches a terminal state
			for !dump.Status.Finished() {
				log.Debugf("Dump %s status: %s", dump.UID, dump.Status)
				utils.Pause(pollInterval)

				dump, err = client.GetDumpStatus(cmd.Context(), dump.UID)
				if err != nil {
					return err
				}
			}

			if dump.Status == meili.DumpStatusFailed {
				return fmt.Errorf("dump %s failed", dump.UID)
			}
			return printJSON(dump)
		},
	}

	cmd.Flags().BoolVarP(&wait, "wait", "w", false, "Wait for the dump job to finish")
	cmd.Flags().StringVar(&pollInterval, "poll-interval", "1s", "Interval between dump status polls")
	return cmd
}

func newDumpStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <uid>",
		Short: "Get the status of a dump job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			dump, err := client.GetDumpStatus(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printJSON(dump)
		},
	}
}

// newHealthCmd builds the health subcommand.
func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the Meilisearch instance is healthy",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			if err := client.Health(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("OK")
			return nil
		},
	}
}

// newVersionCmd builds the version subcommand reporting the instance build.
func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the Meilisearch instance version",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}
			defer client.Close()

			version, err := client.Version(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(version)
		},
	}
}
