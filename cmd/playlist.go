package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/engine"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(playlistCmd)
}

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Inspect and edit the saved playlist",
}

// position parses a 1-based playlist position into an index.
func position(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid position %q, positions start at 1", arg)
	}
	return n - 1, nil
}

// onOff parses an optional on/off argument. Without one the current value is flipped.
func onOff(args []string, current bool) (bool, error) {
	if len(args) == 0 {
		return !current, nil
	}
	switch args[0] {
	case "on", "true", "1":
		return true, nil
	case "off", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("expected on or off, got %q", args[0])
	}
}

func init() {
	playlistCmd.AddCommand(playlistListCmd)
	playlistListCmd.Flags().BoolP("json", "j", false, "Print the playlist state as JSON")
}

var playlistListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the playlist entries with their watch progress",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			state := s.Playlist.State()

			if lo.Must(cmd.Flags().GetBool("json")) {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(state)
			}

			if len(state.Items) == 0 {
				cmd.Println(style.Faint("The playlist is empty"))
				return nil
			}

			t := newTable(cmd)
			t.AppendHeader(table.Row{"", "#", "Name", "Progress", "Location"})

			for i, ref := range state.Items {
				marker := ""
				if i == state.Cursor {
					marker = icon.Get(icon.Cursor)
				}

				progress := style.Faint("new")
				if r, ok := s.History.Get(ref); ok {
					progress = progressLabel(r)
				}

				t.AppendRow(table.Row{marker, i + 1, ref.Name(), progress, style.Faint(ref.Path())})
			}

			t.AppendFooter(table.Row{"", "", util.Quantify(len(state.Items), "item", "items"),
				fmt.Sprintf("loop %s", onOffLabel(state.Looping)),
				fmt.Sprintf("shuffle %s", onOffLabel(state.Shuffling)),
			})
			t.Render()
			return nil
		})
	},
}

func onOffLabel(b bool) string {
	return lo.Ternary(b, "on", "off")
}

func init() {
	playlistCmd.AddCommand(playlistAddCmd)
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <files or directories...>",
	Short: "Append video files to the playlist",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			added, err := s.AddPaths(args...)
			if err != nil {
				printRejected(err)
			}
			success("added %s", util.Quantify(added, "item", "items"))
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistRemoveCmd)
}

var playlistRemoveCmd = &cobra.Command{
	Use:     "remove <position>",
	Aliases: []string{"rm"},
	Short:   "Remove the entry at a position",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := position(args[0])
		handleErr(err)

		withState(cmd, func(_ context.Context, s *engine.State) error {
			ref, ok := s.Playlist.At(index)
			if err := s.Playlist.Remove(index); err != nil {
				return err
			}
			if ok {
				success("removed %s", ref.Name())
			}
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistClearCmd)
	playlistClearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

var playlistClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every entry",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			n := s.Playlist.Len()
			if n == 0 {
				return nil
			}
			if !lo.Must(cmd.Flags().GetBool("yes")) && !confirm(fmt.Sprintf("Remove all %s?", util.Quantify(n, "entry", "entries"))) {
				return nil
			}
			s.Playlist.Clear()
			success("playlist cleared")
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistClearWatchedCmd)
}

var playlistClearWatchedCmd = &cobra.Command{
	Use:   "clear-watched",
	Short: "Remove the entries that were watched to the end",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			success("removed %s", util.Quantify(s.ClearWatched(), "watched item", "watched items"))
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistSelectCmd)
}

var playlistSelectCmd = &cobra.Command{
	Use:   "select <position>",
	Short: "Select the entry the next run starts with",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		index, err := position(args[0])
		handleErr(err)

		withState(cmd, func(_ context.Context, s *engine.State) error {
			if err := s.Playlist.SelectAt(index); err != nil {
				return err
			}
			ref, _ := s.Playlist.Current()
			success("selected %s", ref.Name())
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistMoveCmd)
}

var playlistMoveCmd = &cobra.Command{
	Use:     "move <from> <to>",
	Aliases: []string{"mv"},
	Short:   "Move an entry to another position",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		from, err := position(args[0])
		handleErr(err)
		to, err := position(args[1])
		handleErr(err)

		withState(cmd, func(_ context.Context, s *engine.State) error {
			if err := s.Playlist.Move(from, to); err != nil {
				return err
			}
			success("moved %s to %s", args[0], args[1])
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistLoopCmd, playlistShuffleCmd)
}

var playlistLoopCmd = &cobra.Command{
	Use:       "loop [on|off]",
	Short:     "Turn playlist looping on or off, or toggle it",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			looping, err := onOff(args, s.Playlist.Looping())
			if err != nil {
				return err
			}
			s.Playlist.SetLooping(looping)
			success("%s loop %s", icon.Get(icon.Loop), onOffLabel(looping))
			return nil
		})
	},
}

var playlistShuffleCmd = &cobra.Command{
	Use:       "shuffle [on|off]",
	Short:     "Turn shuffle on or off, or toggle it",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"on", "off"},
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			shuffling, err := onOff(args, s.Playlist.Shuffling())
			if err != nil {
				return err
			}
			s.Playlist.SetShuffling(shuffling)
			success("%s shuffle %s", icon.Get(icon.Shuffle), onOffLabel(shuffling))
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistFindCmd)
	playlistFindCmd.Flags().BoolP("select", "s", false, "Select the best match")
}

var playlistFindCmd = &cobra.Command{
	Use:   "find <query>",
	Short: "Fuzzy search the playlist by name",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			matches := s.Playlist.Find(args[0])
			if len(matches) == 0 {
				cmd.Println(style.Faint("No matches"))
				return nil
			}

			for _, m := range matches {
				cmd.Printf("%s %s\n", style.Fg(color.Yellow)(strconv.Itoa(m.Index+1)), m.Ref.Name())
			}

			if lo.Must(cmd.Flags().GetBool("select")) {
				if err := s.Playlist.SelectAt(matches[0].Index); err != nil {
					return err
				}
				success("selected %s", matches[0].Ref.Name())
			}
			return nil
		})
	},
}

func init() {
	playlistCmd.AddCommand(playlistExportCmd, playlistImportCmd)
}

var playlistExportCmd = &cobra.Command{
	Use:   "export <file.m3u>",
	Short: "Write the playlist as an M3U file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			if err := s.Playlist.ExportFile(args[0]); err != nil {
				return err
			}
			success("exported %s to %s", util.Quantify(s.Playlist.Len(), "item", "items"), args[0])
			return nil
		})
	},
}

var playlistImportCmd = &cobra.Command{
	Use:   "import <file.m3u>",
	Short: "Append the entries of an M3U file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		withState(cmd, func(_ context.Context, s *engine.State) error {
			added, err := s.Playlist.ImportFile(args[0])
			if err != nil {
				return err
			}
			success("imported %s", util.Quantify(added, "item", "items"))
			return nil
		})
	},
}
