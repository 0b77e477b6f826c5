package cmd

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/util"
	"github.com/reel-player/reel/where"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
)

// clearTarget defines a filesystem resource eligible for cleanup.
type clearTarget struct {
	name     string
	argLong  string
	argShort mo.Option[string]
	location func() string
	confirm  bool
}

// clearTargets registry of all application artifacts that can be selectively cleared.
var clearTargets = []clearTarget{
	{"cache directory", "cache", mo.Some("c"), where.Cache, false},
	{"temp directory", "temp", mo.Some("t"), where.Temp, false},
	{"logs", "logs", mo.Some("l"), where.Logs, false},
	{"persisted state", "state", mo.Some("s"), where.Store, true},
}

func init() {
	rootCmd.AddCommand(clearCmd)

	for _, target := range clearTargets {
		help := fmt.Sprintf("clear %s", target.name)
		if target.argShort.IsPresent() {
			clearCmd.Flags().BoolP(target.argLong, target.argShort.MustGet(), false, help)
		} else {
			clearCmd.Flags().Bool(target.argLong, false, help)
		}
	}
	clearCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// clearCmd removes cached and persisted application artifacts.
var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear cached and persisted application artifacts",
	Long: "Clear cached and persisted application artifacts.\n" +
		"Clearing the state removes the playlist, preferences and watch history of the file, sqlite and badger backends.",
	Run: func(cmd *cobra.Command, args []string) {
		var anyCleared bool
		yes := lo.Must(cmd.Flags().GetBool("yes"))

		for _, target := range clearTargets {
			if !lo.Must(cmd.Flags().GetBool(target.argLong)) {
				continue
			}
			anyCleared = true

			location := target.location()
			size, _ := util.DirSize(location)

			if target.confirm && !yes && !confirm(fmt.Sprintf("Remove the %s (%s)?", target.name, humanize.Bytes(uint64(size)))) {
				continue
			}

			e := util.PrintErasable(fmt.Sprintf("%s Clearing %s...", icon.Get(icon.Progress), target.name))
			err := util.Delete(location)
			e()
			handleErr(err)

			fmt.Printf("%s %s cleared, %s freed\n", icon.Get(icon.Success), util.Capitalize(target.name), humanize.Bytes(uint64(size)))
		}

		if !anyCleared {
			handleErr(cmd.Help())
		}
	},
}
