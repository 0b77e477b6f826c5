// Package cmd implements the command-line interface for reel.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/icon"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/version"
	cc "github.com/ivanpirog/coloredcobra"
	"github.com/samber/lo"
	"github.com/samber/mo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print the application version")

	rootCmd.PersistentFlags().StringP("icons", "I", "", "Set the visual icon variant (e.g., nerd, emoji, squares)")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("icons", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return icon.AvailableVariants(), cobra.ShellCompDirectiveDefault
	}))
	lo.Must0(viper.BindPFlag(key.IconsVariant, rootCmd.PersistentFlags().Lookup("icons")))

	rootCmd.PersistentFlags().String("store", "", "Persistence backend for playlist, preferences and history")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("store", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return kv.Backends(), cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(viper.BindPFlag(key.StoreBackend, rootCmd.PersistentFlags().Lookup("store")))

	rootCmd.Flags().BoolP("continue", "c", false, "Resume the saved playlist at its selected entry, appending any given files")
	rootCmd.Flags().StringP("subtitles", "s", "", "SubRip file to show with the first item")
	rootCmd.Flags().Bool("loop", false, "Loop the playlist")
	rootCmd.Flags().Bool("shuffle", false, "Shuffle the playlist")
	rootCmd.Flags().Float64("from", 0, "Start the first item at this many seconds")
	rootCmd.Flags().Bool("no-resume", false, "Ignore recorded watch positions")

	lo.Must0(rootCmd.RegisterFlagCompletionFunc("subtitles", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{constant.SubtitleExtension}, cobra.ShellCompDirectiveFilterFileExt
	}))

	helpFunc := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		helpFunc(cmd, args)
		version.Notify()
	})
}

// rootCmd plays the given files, or the saved playlist with --continue.
var rootCmd = &cobra.Command{
	Use:   constant.Reel + " [files or directories...]",
	Short: "Play local videos through mpv with playlists, resume and A/B loops",
	Long: constant.AsciiArtLogo + "\n" +
		style.New().Italic(true).Foreground(color.HiRed).Render("    - Play local videos through mpv with playlists, resume and A/B loops"),
	Example: strings.Join([]string{
		"  reel ~/Videos/lectures",
		"  reel -s talk.en.srt talk.mp4 --from 90",
		"  reel -c --shuffle",
	}, "\n"),
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if cmd.Flags().Changed("version") {
			versionCmd.Run(versionCmd, args)
			return
		}

		resume := lo.Must(cmd.Flags().GetBool("continue"))
		if len(args) == 0 && !resume {
			handleErr(cmd.Help())
			return
		}

		CheckDependencies(viper.GetString(key.Player))

		options := playOptions{
			paths:     args,
			resume:    resume,
			subtitles: lo.Must(cmd.Flags().GetString("subtitles")),
			from:      lo.Must(cmd.Flags().GetFloat64("from")),
			loop:      changedBool(cmd, "loop"),
			shuffle:   changedBool(cmd, "shuffle"),
		}
		if lo.Must(cmd.Flags().GetBool("no-resume")) {
			viper.Set(key.PlayerResume, false)
		}

		handleErr(play(cmd.Context(), options))
	},
}

func changedBool(cmd *cobra.Command, name string) mo.Option[bool] {
	if !cmd.Flags().Changed(name) {
		return mo.None[bool]()
	}
	return mo.Some(lo.Must(cmd.Flags().GetBool(name)))
}

// Execute initializes child command routing and processes the CLI entry point.
func Execute() {
	if viper.GetBool(key.CliColored) {
		cc.Init(&cc.Config{
			RootCmd:       rootCmd,
			Headings:      cc.HiCyan + cc.Bold + cc.Underline,
			Commands:      cc.HiYellow + cc.Bold,
			Example:       cc.Italic,
			ExecName:      cc.Bold,
			Flags:         cc.Bold,
			FlagsDataType: cc.Italic + cc.HiBlue,
		})
	}

	rootCmd.SetOut(os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Println(err)
		stop()
		os.Exit(1)
	}
}

func handleErr(err error) {
	if err != nil {
		log.Error(err)
		_, _ = fmt.Fprintf(os.Stderr, "%s %s\n", icon.Get(icon.Fail), strings.Trim(err.Error(), " \n"))
		os.Exit(1)
	}
}
