package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/workers"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

// isInteractive reports whether a human can answer the confirmation prompt.
var isInteractive = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

type options struct {
	apply   bool
	yes     bool
	workers int
	verbose bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "fixext <dir>",
		Short: "Fix image file extensions that do not match their content",
		Long: `fixext walks a gallery directory, sniffs every file's real image format
and reports files whose extension is wrong (for example a PNG saved as
.jpg, or a Canon raw file saved as .tif).

Without --apply nothing is changed. With --apply the files are renamed
after confirmation; --yes skips the prompt. An existing file is never
overwritten.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(cmd.Context(), args[0], opts, cmd.InOrStdin(), cmd.OutOrStdout())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), red("Error: "+err.Error()))
			}
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.apply, "apply", false, "rename the files instead of only reporting them")
	cmd.Flags().BoolVarP(&opts.yes, "yes", "y", false, "do not ask for confirmation")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", workers.ForIO(16), "number of files sniffed in parallel")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log every file examined")

	return cmd
}

func run(ctx context.Context, root string, opts options, in io.Reader, out io.Writer) error {
	if opts.verbose {
		logging.SetLevel(logging.LevelDebug)
	} else {
		logging.SetLevel(logging.LevelWarn)
	}
	defer logging.Flush(logFlushTimeout)

	plan, err := scan(ctx, root, opts.workers)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Scanned %d files: %d to rename, %d skipped\n",
		plan.Scanned, len(plan.Renames), plan.Skipped)
	for _, r := range plan.Renames {
		fmt.Fprintf(out, "  %s -> %s\n", r.From, green(r.To))
	}

	if len(plan.Renames) == 0 {
		return nil
	}
	if !opts.apply {
		fmt.Fprintln(out, yellow("Dry run, re-run with --apply to rename."))
		return nil
	}

	if !opts.yes {
		if !isInteractive() {
			return fmt.Errorf("refusing to rename %d files without --yes on a non-interactive terminal", len(plan.Renames))
		}
		if !confirm(in, out, fmt.Sprintf("Rename %d files?", len(plan.Renames))) {
			fmt.Fprintln(out, "Aborted.")
			return nil
		}
	}

	result := applyRenames(plan.Renames)
	for _, c := range result.Conflicts {
		fmt.Fprintf(out, "  %s %s: %s already exists\n", yellow("skipped"), c.From, c.To)
	}
	for _, f := range result.Failed {
		fmt.Fprintf(out, "  %s %s: %v\n", red("failed"), f.Rename.From, f.Err)
	}
	fmt.Fprintf(out, "%s %d renamed, %d conflicts, %d failed\n",
		bold("Done:"), result.Renamed, len(result.Conflicts), len(result.Failed))

	if len(result.Failed) > 0 {
		return fmt.Errorf("%d renames failed", len(result.Failed))
	}
	return nil
}

func confirm(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}
