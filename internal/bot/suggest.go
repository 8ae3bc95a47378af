package bot

import (
	"math"
	"strings"

	"github.com/agnivade/levenshtein"
)

// commands lists every slash command the bot understands.
var commands = []string{
	"start", "wallet", "export", "balance", "help",
	"add", "send", "swap", "cancel",
}

// maxSuggestDistance is the maximum Levenshtein distance at which a
// mistyped command still earns a suggestion.
const maxSuggestDistance = 3

// suggestCommand builds the unknown-command reply, suggesting the
// closest known command when the input is a near miss.
func suggestCommand(input string) string {
	input = strings.ToLower(input)

	minDist := math.MaxInt
	var closest string
	for _, cmd := range commands {
		dist := levenshtein.ComputeDistance(input, cmd)
		if dist < minDist {
			minDist = dist
			closest = cmd
		}
	}

	if minDist <= maxSuggestDistance {
		return "Unknown command. Did you mean /" + closest + "?"
	}
	return "Unknown command. See /help for the available commands."
}
