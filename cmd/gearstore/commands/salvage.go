package commands

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaptinlin/jsonrepair"
	"github.com/spf13/cobra"
)

var salvageCmd = &cobra.Command{
	Use:   "salvage <file>",
	Short: "Repair a corrupt record file in place",
	Long: `Attempt to repair a record file that no longer parses as JSON.

The store treats unreadable records as absent, so a truncated or
corrupted file silently loses its data. salvage tries to recover a
valid JSON object from whatever bytes remain and rewrites the file.
The original is kept next to it with a .bak suffix.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err == nil {
			fmt.Printf("%s parses cleanly, nothing to do\n", path)
			return nil
		}

		fixed, err := jsonrepair.JSONRepair(string(data))
		if err != nil {
			return fmt.Errorf("unrecoverable: %w", err)
		}
		if err := json.Unmarshal([]byte(fixed), &doc); err != nil {
			return fmt.Errorf("repair produced invalid JSON: %w", err)
		}

		if err := os.WriteFile(path+".bak", data, 0o644); err != nil {
			return fmt.Errorf("keep backup: %w", err)
		}
		if err := os.WriteFile(path, []byte(fixed), 0o644); err != nil {
			return err
		}
		fmt.Printf("Repaired %s (backup in %s.bak)\n", path, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(salvageCmd)
}
