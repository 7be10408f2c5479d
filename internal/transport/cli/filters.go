package cli

import (
	"github.com/spf13/cobra"
)

var filtersCmd = &cobra.Command{
	Use:   "filters",
	Short: "List the filters in the config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, svc, err := localEngine(cmd)
		if err != nil {
			return err
		}
		filters, err := svc.Filters(ctx)
		if err != nil {
			return err
		}
		if len(filters) == 0 {
			cmd.Println("No filters configured.")
			return nil
		}
		for _, f := range filters {
			spec := f.Spec()
			cmd.Printf("%s\t%s\n", spec.Name, spec.Description)
			if spec.HiddenComplex != "" {
				cmd.Printf("  hidden:    %s\n", spec.HiddenComplex)
			}
			if spec.SpoileredComplex != "" {
				cmd.Printf("  spoilered: %s\n", spec.SpoileredComplex)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filtersCmd)
}
