package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/gearstore/pkg/docstore"
)

var setCmd = &cobra.Command{
	Use:   "set <key> [file]",
	Short: "Store a record from a JSON file or stdin",
	Long: `Store a record from a JSON file, or from stdin when no file is given.

The input must be a JSON object.

Examples:
  gearstore set device-profile profile.json
  echo '{"volume": 7}' | gearstore set audio-settings`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error
		if len(args) == 2 {
			data, err = os.ReadFile(args[1])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return err
		}

		var doc docstore.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("input is not a JSON object: %w", err)
		}

		store, err := openStore()
		if err != nil {
			return err
		}
		if err := store.Set(cmd.Context(), args[0], doc); err != nil {
			return err
		}
		fmt.Printf("Stored %q (%d bytes)\n", args[0], len(data))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setCmd)
}
