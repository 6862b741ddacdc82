package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuemby/starhunt/pkg/client"
	"github.com/cuemby/starhunt/pkg/protocol"
	"github.com/cuemby/starhunt/pkg/types"
	"github.com/spf13/cobra"
)

const defaultServer = "ws://localhost:8080"

func init() {
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(watchCmd)

	for _, cmd := range []*cobra.Command{reportCmd, removeCmd, watchCmd, applyCmd} {
		cmd.Flags().String("server", defaultServer, "Relay WebSocket URL")
	}

	reportCmd.Flags().Int("world", 0, "World number (required)")
	reportCmd.Flags().Int("x", 0, "X coordinate")
	reportCmd.Flags().Int("y", 0, "Y coordinate")
	reportCmd.Flags().Int("tier", 0, "Star tier")
	reportCmd.Flags().String("health", "", `Health percentage, or "?" when unknown`)
	reportCmd.Flags().String("miners", "", `Miner count, or "?" when unknown`)
	reportCmd.Flags().Bool("inactive", false, "Report the star as inactive")
	reportCmd.Flags().Bool("backup", false, "Report the star as a backup spawn")
	_ = reportCmd.MarkFlagRequired("world")

	removeCmd.Flags().Int("world", 0, "World number (required)")
	removeCmd.Flags().Int("x", 0, "X coordinate")
	removeCmd.Flags().Int("y", 0, "Y coordinate")
	_ = removeCmd.MarkFlagRequired("world")

	watchCmd.Flags().Bool("json", false, "Print raw message data as JSON")
}

// connect dials the relay named by --server and consumes the initial
// snapshot.
func connect(cmd *cobra.Command) (*client.Client, *client.Message, error) {
	server, _ := cmd.Flags().GetString("server")

	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	c, err := client.Dial(ctx, server)
	if err != nil {
		return nil, nil, err
	}

	snapshot, err := c.ReceiveType(protocol.StarSync, 10*time.Second)
	if err != nil {
		_ = c.Close()
		return nil, nil, fmt.Errorf("failed to receive snapshot: %w", err)
	}
	return c, snapshot, nil
}

func identityFromFlags(cmd *cobra.Command) types.Identity {
	world, _ := cmd.Flags().GetInt("world")
	x, _ := cmd.Flags().GetInt("x")
	y, _ := cmd.Flags().GetInt("y")
	return types.Identity{World: world, Location: types.Location{X: x, Y: y}}
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report a star sighting",
	Long: `Report a star sighting to the relay and print the resolved record.

Examples:
  # A fresh tier 6 star
  starhunt report --world 302 --x 3210 --y 3400 --tier 6 --health 100

  # Health unreadable, 4 miners
  starhunt report --world 302 --x 3210 --y 3400 --tier 5 --health ? --miners 4`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id := identityFromFlags(cmd)
		tier, _ := cmd.Flags().GetInt("tier")
		healthText, _ := cmd.Flags().GetString("health")
		minersText, _ := cmd.Flags().GetString("miners")
		inactive, _ := cmd.Flags().GetBool("inactive")
		backup, _ := cmd.Flags().GetBool("backup")

		health, err := types.ParseValue(healthText)
		if err != nil {
			return fmt.Errorf("invalid --health: %w", err)
		}
		miners, err := types.ParseValue(minersText)
		if err != nil {
			return fmt.Errorf("invalid --miners: %w", err)
		}

		active := !inactive
		report := types.Report{
			World:     id.World,
			Location:  id.Location,
			Tier:      tier,
			Health:    health,
			Miners:    miners,
			Active:    &active,
			Backup:    &backup,
			Timestamp: types.At(time.Now()),
		}
		if err := report.Validate(); err != nil {
			return err
		}

		c, _, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.SendReports(report); err != nil {
			return err
		}

		// An unchanged report produces no broadcast
		msg, err := c.ReceiveType(protocol.StarUpdate, 3*time.Second)
		if err != nil {
			fmt.Println("Report sent (no change)")
			return nil
		}
		for _, star := range msg.Stars {
			if star.Identity() == id {
				fmt.Println("✓ Star updated")
				printStars([]types.Star{star})
			}
		}
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove",
	Short: "Report that a star has despawned",
	RunE: func(cmd *cobra.Command, args []string) error {
		id := identityFromFlags(cmd)
		if id.World <= 0 {
			return fmt.Errorf("%w: got %d", types.ErrInvalidWorld, id.World)
		}

		c, _, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		if err := c.Remove(id); err != nil {
			return err
		}
		fmt.Printf("✓ Removal sent: %s\n", id)
		return nil
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print relay messages as they arrive",
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		c, snapshot, err := connect(cmd)
		if err != nil {
			return err
		}
		defer c.Close()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			_ = c.Close()
		}()

		msg := snapshot
		for {
			if err := printMessage(msg, asJSON); err != nil {
				return err
			}
			msg, err = c.Receive(0)
			if err != nil {
				// Closed by the signal handler or the relay
				return nil
			}
		}
	},
}

func printMessage(msg *client.Message, asJSON bool) error {
	if asJSON {
		out := map[string]any{"type": msg.Type}
		switch {
		case msg.Stars != nil:
			out["data"] = msg.Stars
		case msg.SpawnTimes != nil:
			out["data"] = msg.SpawnTimes
		case msg.Dashboard != nil:
			out["data"] = msg.Dashboard
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	fmt.Printf("[%s] %s\n", time.Now().Format("15:04:05"), msg.Type)
	switch msg.Type {
	case protocol.StarSync, protocol.StarUpdate:
		printStars(msg.Stars)
	case protocol.SpawnTimes:
		printSpawnTimes(msg.SpawnTimes)
	case protocol.Dashboard:
		if msg.Dashboard != nil {
			printDashboard(*msg.Dashboard)
		}
	}
	return nil
}

func printStars(stars []types.Star) {
	if len(stars) == 0 {
		fmt.Println("  (no stars)")
		return
	}
	fmt.Printf("  %-6s %-12s %-4s %-6s %-6s %-7s %s\n", "WORLD", "LOCATION", "TIER", "HEALTH", "MINERS", "STATE", "FOUND")
	for _, star := range stars {
		state := "active"
		if !star.Active {
			state = "gone"
		}
		if star.Backup {
			state += "*"
		}
		fmt.Printf("  %-6d %-12s %-4d %-6s %-6s %-7s %s\n",
			star.World,
			fmt.Sprintf("%d,%d", star.Location.X, star.Location.Y),
			star.Tier,
			star.Health,
			star.Miners,
			state,
			star.FirstFound.Local().Format("15:04:05"),
		)
	}
}

func printSpawnTimes(spawnTimes []types.SpawnTime) {
	for _, st := range spawnTimes {
		fmt.Printf("  %-6s %s\n", st.World, st.AverageSpawnInterval)
	}
}

func printDashboard(d types.Dashboard) {
	fmt.Printf("  Wave ends in:       %s\n", d.WaveEndsIn)
	fmt.Printf("  Wave began:         %s\n", d.TimeSinceWaveBegan)
	fmt.Printf("  Start scouting in:  %s\n", d.StartScoutingIn)
	fmt.Printf("  Spawn phase:        %s\n", d.SpawnPhaseStatus)
}
