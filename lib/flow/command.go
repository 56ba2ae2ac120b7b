package flow

import (
	"cmp"

	"github.com/artie-labs/snowflow/lib/config/constants"
)

// ResolveCommand returns the command that applies to a node.
// The node's own command wins, otherwise the nearest ancestor's resolved command is used and [constants.Write] if there is none.
// An empty command means it was not set.
func ResolveCommand(own, inherited constants.Command) constants.Command {
	return cmp.Or(own, inherited, constants.Write)
}

// ResolveCommandChain resolves a command from an ancestor chain ordered root-most first, ending with the node itself.
// A skip anywhere in the chain skips the whole subtree below it, regardless of what descendants declare.
func ResolveCommandChain(chain ...constants.Command) constants.Command {
	var resolved constants.Command
	for _, command := range chain {
		resolved = ResolveCommand(command, resolved)
		if resolved == constants.Skip {
			return constants.Skip
		}
	}

	return ResolveCommand("", resolved)
}
