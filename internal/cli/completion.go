package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

// completionShell describes how to generate and where to install the
// completion script for one shell.
type completionShell struct {
	gen func(w io.Writer) error
	// load is the one-liner that sources the script in a running session.
	load string
	// installDir is relative to the home directory; empty means --install
	// is not supported.
	installDir []string
	installAs  string
	// after is printed once the script has been installed, with {path}
	// and {dir} expanded.
	after []string
}

var completionShells = map[string]completionShell{
	"bash": {
		gen:        func(w io.Writer) error { return rootCmd.GenBashCompletionV2(w, true) },
		load:       `eval "$(tm completion bash)"`,
		installDir: []string{".local", "share", "bash-completion", "completions"},
		installAs:  "tm",
		after:      []string{"Restart your shell or run: source {path}"},
	},
	"zsh": {
		gen:        func(w io.Writer) error { return rootCmd.GenZshCompletion(w) },
		load:       `eval "$(tm completion zsh)"`,
		installDir: []string{".local", "share", "zsh", "site-functions"},
		installAs:  "_tm",
		after: []string{
			"Ensure this directory is in your fpath. Add to ~/.zshrc if needed:",
			"  fpath=({dir} $fpath)",
			"  autoload -Uz compinit && compinit",
		},
	},
	"fish": {
		gen:        func(w io.Writer) error { return rootCmd.GenFishCompletion(w, true) },
		load:       "tm completion fish | source",
		installDir: []string{".config", "fish", "completions"},
		installAs:  "tm.fish",
		after:      []string{"Completions will be available in new fish sessions automatically."},
	},
	"powershell": {
		gen:  func(w io.Writer) error { return rootCmd.GenPowerShellCompletionWithDesc(w) },
		load: "tm completion powershell | Out-String | Invoke-Expression",
	},
}

func completionShellNames() []string {
	names := make([]string, 0, len(completionShells))
	for name := range completionShells {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var completionInstall bool

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Set up shell completions for tm",
	Long: `Set up shell tab-completions for tm commands, flags, and task references.

Supported shells: bash, fish, powershell, zsh

Quick install (writes the script under your home directory):

  tm completion bash --install
  tm completion zsh --install
  tm completion fish --install

Or print the completion script to stdout:

  eval "$(tm completion bash)"`,
	ValidArgs: completionShellNames(),
	Args:      cobra.MaximumNArgs(1),
	RunE:      runCompletion,
}

func init() {
	completionCmd.Flags().BoolVar(&completionInstall, "install", false,
		"Install completions under your home directory")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionCmd)
}

func runCompletion(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	shell, ok := completionShells[args[0]]
	if !ok {
		return fmt.Errorf("unsupported shell %q (supported: %s)",
			args[0], strings.Join(completionShellNames(), ", "))
	}

	if completionInstall {
		return installCompletion(cmd, args[0], shell)
	}

	// Hints go to stderr so `eval "$(tm completion bash)"` only sees the script.
	hint := cmd.ErrOrStderr()
	_, _ = fmt.Fprintf(hint, "# To load completions in your current session:\n#   %s\n", shell.load)
	if shell.installDir != nil {
		_, _ = fmt.Fprintf(hint, "# To install permanently:\n#   tm completion %s --install\n", args[0])
	}
	return shell.gen(cmd.OutOrStdout())
}

func installCompletion(cmd *cobra.Command, name string, shell completionShell) error {
	if shell.installDir == nil {
		return fmt.Errorf("automatic install is not supported for %s; run 'tm completion %s' and add the output to your profile", name, name)
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("detecting home directory: %w", err)
	}
	dir := filepath.Join(append([]string{home}, shell.installDir...)...)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating completion directory: %w", err)
	}
	target := filepath.Join(dir, shell.installAs)

	if err := writeCompletionFile(target, shell.gen); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "%s completions installed to %s\n", name, target)
	r := strings.NewReplacer("{path}", target, "{dir}", dir)
	for _, line := range shell.after {
		_, _ = fmt.Fprintln(out, r.Replace(line))
	}
	return nil
}

// writeCompletionFile creates target and writes the script into it,
// reporting close errors as well as write errors.
func writeCompletionFile(target string, gen func(io.Writer) error) error {
	f, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("creating completion file %s: %w", target, err)
	}

	writeErr := gen(f)
	closeErr := f.Close()

	if writeErr != nil {
		return writeErr
	}
	if closeErr != nil {
		return fmt.Errorf("closing completion file %s: %w", target, closeErr)
	}
	return nil
}
