package ui

import (
	"fmt"

	"github.com/evalboard/evalboard/internal/grid"
)

// renderConfirm renders the delete confirmation prompt. Deletion
// cascades to every record hanging off the experiments, so the prompt
// spells that out before asking.
func renderConfirm(selection *grid.Selection, phase grid.DeletePhase, noColor bool) string {
	switch phase {
	case grid.DeleteConfirming:
		n := selection.Count()
		noun := "experiments"
		if n == 1 {
			noun = "experiment"
		}
		line := fmt.Sprintf(
			"Delete %d %s? All traces, annotations, and runs attached to them will be deleted as well. This cannot be undone. [y/n]",
			n, noun)
		return stylizeBold(line, noColor, colorWarning)
	case grid.DeleteInFlight:
		return stylize("Deleting...", noColor, colorMuted)
	default:
		return ""
	}
}
