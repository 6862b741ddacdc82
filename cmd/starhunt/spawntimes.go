package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/cuemby/starhunt/pkg/config"
	"github.com/cuemby/starhunt/pkg/metadata"
	"github.com/spf13/cobra"
)

var spawnTimesCmd = &cobra.Command{
	Use:   "spawn-times",
	Short: "Fetch and print the reference spawn-time sheet",
	Long: `Fetch the spawn-time and dashboard sheets once, the same way the relay
does, and print the parsed result. Useful for checking a sheet URL before
pointing a relay at it.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		spawnURL, _ := cmd.Flags().GetString("url")
		dashboardURL, _ := cmd.Flags().GetString("dashboard-url")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()

		load := metadata.SpawnTimeLoader(metadata.NewFetcher(spawnURL).WithTimeout(timeout))
		spawnTimes, err := load(ctx)
		if err != nil {
			return fmt.Errorf("failed to load spawn times: %w", err)
		}

		loadDashboard := metadata.DashboardLoader(metadata.NewFetcher(dashboardURL).WithTimeout(timeout))
		dashboard, err := loadDashboard(ctx)
		if err != nil {
			return fmt.Errorf("failed to load dashboard: %w", err)
		}

		if asJSON {
			return json.NewEncoder(os.Stdout).Encode(map[string]any{
				"spawnTimes": spawnTimes,
				"dashboard":  dashboard,
			})
		}

		fmt.Printf("Spawn times (%d worlds):\n", len(spawnTimes))
		printSpawnTimes(spawnTimes)
		fmt.Println()
		fmt.Println("Dashboard:")
		printDashboard(dashboard)
		return nil
	},
}

func init() {
	spawnTimesCmd.Flags().String("url", config.DefaultSpawnTimesURL, "Spawn-time sheet CSV export URL")
	spawnTimesCmd.Flags().String("dashboard-url", config.DefaultDashboardURL, "Dashboard sheet CSV export URL")
	spawnTimesCmd.Flags().Duration("timeout", 10*time.Second, "Request timeout")
	spawnTimesCmd.Flags().Bool("json", false, "Print as JSON")

	rootCmd.AddCommand(spawnTimesCmd)
}
