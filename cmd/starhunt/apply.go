package main

import (
	"fmt"
	"os"
	"time"

	"github.com/cuemby/starhunt/pkg/client"
	"github.com/cuemby/starhunt/pkg/protocol"
	"github.com/cuemby/starhunt/pkg/types"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Submit a batch of reports from a file",
	Long: `Submit star reports and removals from a YAML file.

All reports are sent in a single STAR_UPDATE, so observers receive one
broadcast for the whole batch.

Examples:
  # Seed a test relay
  starhunt apply -f stars.yaml --server ws://localhost:8080

File format:
  reports:
    - world: 302
      location: {x: 3210, y: 3400}
      tier: 6
      health: 100
      miners: "?"
  removals:
    - world: 5
      location: {x: 10, y: 20}`,
	RunE: runApply,
}

func init() {
	applyCmd.Flags().StringP("file", "f", "", "YAML file to apply (required)")
	_ = applyCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(applyCmd)
}

// Batch is the file format read by apply
type Batch struct {
	Reports  []types.Report `yaml:"reports"`
	Removals []Removal      `yaml:"removals"`
}

// Removal names a star to remove
type Removal struct {
	World    int            `yaml:"world"`
	Location types.Location `yaml:"location"`
}

func loadBatch(filename string) (*Batch, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, report := range batch.Reports {
		if err := report.Validate(); err != nil {
			return nil, fmt.Errorf("report %d: %w", i, err)
		}
	}
	for i, removal := range batch.Removals {
		if removal.World <= 0 {
			return nil, fmt.Errorf("removal %d: %w: got %d", i, types.ErrInvalidWorld, removal.World)
		}
	}
	if len(batch.Reports) == 0 && len(batch.Removals) == 0 {
		return nil, fmt.Errorf("%s contains no reports or removals", filename)
	}
	return &batch, nil
}

func runApply(cmd *cobra.Command, args []string) error {
	filename, _ := cmd.Flags().GetString("file")

	batch, err := loadBatch(filename)
	if err != nil {
		return err
	}

	c, _, err := connect(cmd)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}
	defer c.Close()

	if len(batch.Reports) > 0 {
		if err := applyReports(c, batch.Reports); err != nil {
			return err
		}
	}

	for _, removal := range batch.Removals {
		id := types.Identity{World: removal.World, Location: removal.Location}
		if err := c.Remove(id); err != nil {
			return fmt.Errorf("failed to remove %s: %w", id, err)
		}
		fmt.Printf("✓ Removal sent: %s\n", id)
	}
	return nil
}

func applyReports(c *client.Client, reports []types.Report) error {
	now := time.Now()
	for i := range reports {
		if reports[i].Timestamp.IsZero() {
			reports[i].Timestamp = types.At(now)
		}
	}

	fmt.Printf("Submitting %d reports...\n", len(reports))
	if err := c.Send(protocol.StarUpdate, reports); err != nil {
		return fmt.Errorf("failed to submit reports: %w", err)
	}

	msg, err := c.ReceiveType(protocol.StarUpdate, 3*time.Second)
	if err != nil {
		fmt.Println("✓ Reports sent (no changes)")
		return nil
	}
	fmt.Printf("✓ %d stars updated\n", len(msg.Stars))
	printStars(msg.Stars)
	return nil
}
