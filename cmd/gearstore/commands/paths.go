package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/haivivi/gearstore/pkg/appdir"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Show resolved storage directories",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := GetConfig()
		if err != nil {
			return err
		}
		resolver, err := newResolver()
		if err != nil {
			return err
		}
		root, err := resolver.Root()
		if err != nil {
			return err
		}

		fmt.Printf("%s %s\n", ui.Label.Render("root:"), root)
		fmt.Printf("%s %s\n", ui.Label.Render("config:"), cfg.Path())
		if r, ok := resolver.(*appdir.Resolver); ok {
			for _, dir := range r.LegacyDirs() {
				status := "absent"
				if _, err := os.Stat(dir); err == nil {
					status = "present"
				}
				fmt.Printf("%s %s (%s)\n", ui.Label.Render("legacy:"), dir, status)
			}
		}

		if migrate, _ := cmd.Flags().GetBool("migrate"); migrate {
			if err := resolver.Migrate(); err != nil {
				return err
			}
			fmt.Println("Migration complete")
		}
		return nil
	},
}

func init() {
	pathsCmd.Flags().Bool("migrate", false, "move legacy records into the current root now")
	rootCmd.AddCommand(pathsCmd)
}
