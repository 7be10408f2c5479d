package cli

import (
	"github.com/spf13/cobra"
)

var (
	classifyInteractions string
	classifyJSON         bool
)

var classifyCmd = &cobra.Command{
	Use:   "classify FILTER [FILE...]",
	Short: "Apply a configured filter to images",
	Long: `Applies the named filter from the config file to images read from FILEs
or stdin. Prints each image id with its visibility: visible, spoilered or hidden.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().StringVarP(&classifyInteractions, "interactions", "i", "",
		"JSON file with the user's interactions")
	classifyCmd.Flags().BoolVar(&classifyJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, svc, err := localEngine(cmd)
	if err != nil {
		return err
	}

	images, err := readImageSources(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}
	snap, err := readSnapshot(classifyInteractions)
	if err != nil {
		return err
	}

	verdicts, err := svc.Classify(ctx, args[0], images, snap)
	if err != nil {
		return err
	}

	if classifyJSON {
		type verdictJSON struct {
			ImageID    int64  `json:"image_id"`
			Visibility string `json:"visibility"`
		}
		out := make([]verdictJSON, len(verdicts))
		for i, v := range verdicts {
			out[i] = verdictJSON{ImageID: v.ImageID, Visibility: string(v.Visibility)}
		}
		return outputJSON(cmd, out)
	}
	for _, v := range verdicts {
		cmd.Printf("%d\t%s\n", v.ImageID, v.Visibility)
	}
	return nil
}
