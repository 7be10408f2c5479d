package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/booruq/internal/logger"
	matchuc "github.com/kailas-cloud/booruq/internal/usecase/match"
)

var (
	matchInteractions string
	matchJSON         bool
	matchAll          bool
)

var matchCmd = &cobra.Command{
	Use:   "match QUERY [FILE...]",
	Short: "Match images against a query",
	Long: `Evaluates QUERY against images read from FILEs, or stdin when none are given.
Input is a JSON array of images, an {"images": [...]} page or a single image.
Prints the ids of matching images, one per line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runMatch,
}

func init() {
	matchCmd.Flags().StringVarP(&matchInteractions, "interactions", "i", "",
		"JSON file with the user's interactions (enables my:faves, my:upvotes, my:downvotes)")
	matchCmd.Flags().BoolVar(&matchJSON, "json", false, "output every result as JSON")
	matchCmd.Flags().BoolVarP(&matchAll, "all", "a", false, "print every image with its outcome")
	rootCmd.AddCommand(matchCmd)
}

func runMatch(cmd *cobra.Command, args []string) error {
	ctx, svc, err := localEngine(cmd)
	if err != nil {
		return err
	}

	images, err := readImageSources(cmd.InOrStdin(), args[1:])
	if err != nil {
		return err
	}
	snap, err := readSnapshot(matchInteractions)
	if err != nil {
		return err
	}

	outcomes, err := svc.Match(ctx, args[0], images, snap)
	if err != nil {
		printQueryError(cmd, args[0], err)
		return err
	}

	switch {
	case matchJSON:
		return outputJSON(cmd, outcomesToJSON(outcomes))
	case matchAll:
		for _, o := range outcomes {
			cmd.Printf("%d\t%t\n", o.ImageID, o.Matched)
		}
	default:
		for _, o := range outcomes {
			if o.Matched {
				cmd.Println(o.ImageID)
			}
		}
	}
	return nil
}

type outcomeJSON struct {
	ImageID int64 `json:"image_id"`
	Matched bool  `json:"matched"`
}

func outcomesToJSON(outcomes []matchuc.Outcome) []outcomeJSON {
	out := make([]outcomeJSON, len(outcomes))
	for i, o := range outcomes {
		out[i] = outcomeJSON{ImageID: o.ImageID, Matched: o.Matched}
	}
	return out
}

func outputJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// localEngine loads config and builds an in-memory engine with a stderr logger.
func localEngine(cmd *cobra.Command) (context.Context, *matchuc.Service, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := logpkg.NewLogger("cli", logLevel)
	if err != nil {
		return nil, nil, err
	}
	svc, _, err := newEngine(cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Engine ready", zap.Int("filters", len(cfg.Filters)))
	return logpkg.ContextWithLogger(cmd.Context(), logger), svc, nil
}
