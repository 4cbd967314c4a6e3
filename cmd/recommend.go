package cmd

import (
	"fmt"
	"io"
	"strings"

	"whiteknight/core"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// planOutput is the --json form of a mitigation plan
type planOutput struct {
	SignalType  core.SignalType  `json:"signal_type"`
	ThreatLevel core.ThreatLevel `json:"threat_level"`
	core.MitigationPlan
}

// newRecommendCmd creates the 'recommend' subcommand
func newRecommendCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "recommend <signal_type> <threat_level>",
		Short: "Print the mitigation plan for a signal type and threat level",
		Long: `Print the static mitigation plan the API would attach to a recommendation.

Known signal types: ble, cell, wifi, cell_tower.
Known threat levels: critical, high, medium, low.
Any other combination falls back to a single logging command.`,
		Example: "  whiteknight recommend ble critical\n  whiteknight recommend wifi high --json",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			signalType := core.SignalType(strings.ToLower(args[0]))
			level := core.ThreatLevel(strings.ToLower(args[1]))
			plan := core.Recommend(signalType, level)

			if outputJSON {
				return outputAsJSON(cmd.OutOrStdout(), planOutput{
					SignalType:     signalType,
					ThreatLevel:    level,
					MitigationPlan: plan,
				})
			}

			renderPlan(cmd.OutOrStdout(), signalType, level, plan)
			return nil
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "Output in JSON format")

	return cmd
}

// renderPlan displays a mitigation plan
func renderPlan(w io.Writer, signalType core.SignalType, level core.ThreatLevel, plan core.MitigationPlan) {
	headerColor.Fprintf(w, "MITIGATION PLAN: %s / %s\n", strings.ToUpper(string(signalType)), strings.ToUpper(string(level)))
	fmt.Fprintln(w, strings.Repeat("=", 60))

	levelColor(level).Fprintf(w, "Action:   %s\n", plan.Action)
	fmt.Fprintf(w, "Analysis: %s\n", plan.Analysis)
	fmt.Fprintln(w)

	infoColor.Fprintln(w, "Commands:")
	for i, command := range plan.Commands {
		fmt.Fprintf(w, "  %d. %s\n", i+1, command)
	}

	if len(plan.Commands) == 1 && plan.Commands[0] == core.DefaultMitigationCommand {
		fmt.Fprintln(w)
		warningColor.Fprintln(w, "No table entry for this combination; falling back to logging only")
	}
	fmt.Fprintln(w, strings.Repeat("=", 60))
}

func levelColor(level core.ThreatLevel) *color.Color {
	switch level {
	case core.ThreatLevelCritical:
		return errorColor
	case core.ThreatLevelHigh, core.ThreatLevelMedium:
		return warningColor
	case core.ThreatLevelLow:
		return successColor
	default:
		return infoColor
	}
}
