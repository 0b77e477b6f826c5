package cmd

import (
	"fmt"
	"os"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/subtitle"
	"github.com/reel-player/reel/util"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(subtitleCmd)
}

var subtitleCmd = &cobra.Command{
	Use:     "subtitle",
	Aliases: []string{"sub"},
	Short:   "Inspect SubRip subtitle files",
}

func init() {
	subtitleCmd.AddCommand(subtitleCuesCmd)
	subtitleCuesCmd.Flags().String("at", "", "Only print the cue shown at this time, e.g. 00:01:02,500")
}

var subtitleCuesCmd = &cobra.Command{
	Use:   "cues <file.srt>",
	Short: "Print the cues of a subtitle file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cues, err := subtitle.Load(args[0])
		handleErr(err)

		if at := lo.Must(cmd.Flags().GetString("at")); at != "" {
			t, err := subtitle.ParseTimestamp(at)
			handleErr(err)

			cue := subtitle.ActiveCue(cues, t)
			if cue == nil {
				cmd.Println(style.Faint("No cue at " + at))
				return
			}
			cues = []*subtitle.Cue{cue}
		}

		width := util.TerminalWidth(80) - 2
		for _, cue := range cues {
			cmd.Println(style.Fg(color.Yellow)(fmt.Sprintf("%s --> %s",
				subtitle.FormatTimestamp(cue.Start),
				subtitle.FormatTimestamp(cue.End),
			)))
			cmd.Println(indent.String(wordwrap.String(cue.Text, width), 2))
		}

		cmd.Println(style.Faint(util.Quantify(len(cues), "cue", "cues")))
	},
}

func init() {
	subtitleCmd.AddCommand(subtitleNormalizeCmd)
}

var subtitleNormalizeCmd = &cobra.Command{
	Use:   "normalize <in.srt> <out.srt>",
	Short: "Rewrite a subtitle file keeping only well-formed cues",
	Long:  "Rewrite a subtitle file keeping only well-formed cues, numbered and ordered as they appear.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		cues, err := subtitle.Load(args[0])
		handleErr(err)

		file, err := filesystem.API().OpenFile(args[1], os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.ModePerm)
		handleErr(err)

		err = subtitle.Write(file, cues)
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
		handleErr(err)

		success("wrote %s to %s", util.Quantify(len(cues), "cue", "cues"), args[1])
	},
}
