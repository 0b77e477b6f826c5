package cmd

import (
	"context"
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/engine"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/util"
	"github.com/spf13/cobra"
)

// withState opens the persisted state for the duration of fn and exits on error.
func withState(cmd *cobra.Command, fn func(ctx context.Context, s *engine.State) error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	s, err := engine.OpenState(ctx, engine.StoreOptions())
	handleErr(err)

	err = fn(ctx, s)
	if closeErr := s.Close(); closeErr != nil {
		log.Warnf("close state: %v", closeErr)
	}
	handleErr(err)
}

func confirm(message string) bool {
	prompt := survey.Confirm{
		Message: message,
		Default: false,
	}

	var response bool
	handleErr(survey.AskOne(&prompt, &response))
	return response
}

func success(format string, args ...any) {
	fmt.Printf("%s %s\n", style.Fg(color.Green)(icon.Get(icon.Success)), fmt.Sprintf(format, args...))
}

func newTable(cmd *cobra.Command) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.SetAllowedRowLength(util.TerminalWidth(120))
	return t
}
