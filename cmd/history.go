package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/engine"
	"github.com/reel-player/reel/history"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(historyCmd)
}

var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"hist"},
	Short:   "Inspect the watch history",
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyListCmd.Flags().IntP("limit", "n", 0, "Show at most this many records")
}

var historyListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List watched items, most recent first",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			entries := s.History.All()
			if len(entries) == 0 {
				cmd.Println(style.Faint("Nothing watched yet"))
				return nil
			}

			if limit := lo.Must(cmd.Flags().GetInt("limit")); limit > 0 && limit < len(entries) {
				entries = entries[:limit]
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"#", "Name", "Progress", "Position", "Watched"})
			for i, entry := range entries {
				t.AppendRow(table.Row{
					i + 1,
					entry.Ref.Name(),
					progressLabel(entry.Record),
					fmt.Sprintf("%s / %s", clock(entry.Record.Position), clock(entry.Record.Duration)),
					style.Faint(humanize.Time(entry.Record.Watched())),
				})
			}
			t.AppendFooter(table.Row{"", util.Quantify(s.History.Len(), "record", "records")})
			t.Render()
			return nil
		})
	},
}

const progressWidth = 12

func progressLabel(r history.Record) string {
	if r.Completed {
		return style.ProgressBar(progressWidth, 100) + " " + style.Fg(color.Green)(icon.Get(icon.Watched))
	}
	return style.ProgressBar(progressWidth, r.Progress()) + " " + r.String()
}

// clock formats seconds as H:MM:SS, or M:SS below an hour.
func clock(seconds float64) string {
	total := int(max(0, seconds))
	h, m, s := total/3600, total/60%60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// historyRef resolves a history list position or a file path to a reference.
func historyRef(s *engine.State, arg string) (media.Ref, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		entries := s.History.All()
		if n < 1 || n > len(entries) {
			return "", fmt.Errorf("position %d is out of range, history has %s", n, util.Quantify(len(entries), "record", "records"))
		}
		return entries[n-1].Ref, nil
	}

	if strings.Contains(arg, "://") {
		return media.Ref(arg), nil
	}

	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	return media.ToRef(abs), nil
}

func init() {
	historyCmd.AddCommand(historyRemoveCmd)
}

var historyRemoveCmd = &cobra.Command{
	Use:     "remove <position|path>",
	Aliases: []string{"rm"},
	Short:   "Forget the progress of one item",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			ref, err := historyRef(s, args[0])
			if err != nil {
				return err
			}
			if !s.History.Remove(ref) {
				return fmt.Errorf("no history for %s", ref.Name())
			}
			success("forgot %s", ref.Name())
			return nil
		})
	},
}

func init() {
	historyCmd.AddCommand(historyClearCmd)
	historyClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every record",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			n := s.History.Len()
			if n == 0 {
				return nil
			}
			if !lo.Must(cmd.Flags().GetBool("yes")) && !confirm(fmt.Sprintf("Forget %s?", util.Quantify(n, "record", "records"))) {
				return nil
			}
			s.History.Clear()
			success("history cleared")
			return nil
		})
	},
}
