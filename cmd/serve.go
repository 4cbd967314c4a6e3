package cmd

import (
	"context"
	"fmt"

	"whiteknight/bootstrap"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// newServeCmd creates the 'serve' subcommand
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the investigation API",
		Long:  "Run the case, signal, threat and recommendation API until interrupted.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			app, err := bootstrap.NewApp(ctx)
			if err != nil {
				return fmt.Errorf("failed to initialize application: %w", err)
			}

			if err := app.Start(ctx); err != nil {
				app.Shutdown()
				return fmt.Errorf("failed to start application: %w", err)
			}

			app.WaitForShutdown()
			app.Shutdown()
			return nil
		},
	}

	cmd.Flags().Int("port", 0, "API port (overrides api.port)")
	cmd.Flags().String("backend", "", "Storage backend: memory or sqlite (overrides storage.backend)")
	_ = viper.BindPFlag("api.port", cmd.Flags().Lookup("port"))
	_ = viper.BindPFlag("storage.backend", cmd.Flags().Lookup("backend"))

	return cmd
}

// newStatusPageCmd creates the 'statuspage' subcommand
func newStatusPageCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "statuspage",
		Short: "Run the static status page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.NewStatusPageApp()
			if err != nil {
				return err
			}

			app.Start()
			app.WaitForShutdown()
			app.Shutdown()
			return nil
		},
	}

	cmd.Flags().Int("port", 0, "Status page port (overrides status_page.port)")
	_ = viper.BindPFlag("status_page.port", cmd.Flags().Lookup("port"))

	return cmd
}
