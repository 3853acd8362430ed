package cli

import (
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/typegraph/pkg/connect"
	"github.com/matzehuels/typegraph/pkg/pipeline"
)

// modelExts are the file extensions offered for model arguments.
var modelExts = []string{"json", "yaml", "yml", "toml"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	var noDesc bool

	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for typegraph.

Model arguments complete to .json, .yaml, .yml and .toml files; --format
completes comma-separated output formats and --strategy the drawing
strategies.

  $ source <(typegraph completion bash)
  $ typegraph completion zsh > "${fpath[1]}/_typegraph"
  $ typegraph completion fish > ~/.config/fish/completions/typegraph.fish
  PS> typegraph completion powershell | Out-String | Invoke-Expression`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		// Completion scripts must not depend on a readable config file.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		Args:              cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(stdout, !noDesc)
			case "zsh":
				if noDesc {
					return root.GenZshCompletionNoDesc(stdout)
				}
				return root.GenZshCompletion(stdout)
			case "fish":
				return root.GenFishCompletion(stdout, !noDesc)
			case "powershell":
				if noDesc {
					return root.GenPowerShellCompletion(stdout)
				}
				return root.GenPowerShellCompletionWithDesc(stdout)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&noDesc, "no-descriptions", false, "omit completion descriptions")
	return cmd
}

// modelArg completes the single model file argument of a command.
func modelArg(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return modelExts, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated format list,
// skipping formats already given.
func completeFormats(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	head, last := "", toComplete
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		head, last = toComplete[:i+1], toComplete[i+1:]
	}
	given := make(map[string]bool)
	for _, f := range strings.Split(head, ",") {
		given[strings.TrimSpace(f)] = true
	}

	var out []string
	for _, f := range slices.Sorted(maps.Keys(pipeline.ValidFormats)) {
		if !given[f] && strings.HasPrefix(f, last) {
			out = append(out, head+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}

var completeStrategy = cobra.FixedCompletions(
	[]string{string(connect.Detailed), string(connect.Light)},
	cobra.ShellCompDirectiveNoFileComp,
)
