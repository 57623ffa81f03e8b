package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "Print a stored record as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		doc, ok, err := store.Get(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("record %q not found", args[0])
		}
		expr, _ := cmd.Flags().GetString("jq")
		return printJSON(os.Stdout, map[string]any(doc), expr)
	},
}

func init() {
	getCmd.Flags().String("jq", "", "jq expression applied to the record")
	rootCmd.AddCommand(getCmd)
}
