package cmd

import (
	"os"

	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/config"
	"github.com/reel-player/reel/style"
	"github.com/reel-player/reel/where"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

func init() {
	rootCmd.AddCommand(envCmd)
	envCmd.Flags().BoolP("set-only", "s", false, "Only show variables that are set")
	envCmd.Flags().BoolP("unset-only", "u", false, "Only show variables that are unset")
	envCmd.MarkFlagsMutuallyExclusive("set-only", "unset-only")
}

// envVariables lists every environment variable reel reads, sorted.
func envVariables() []string {
	envs := lo.Map(config.EnvExposed, func(k string, _ int) string {
		field := config.Default[k]
		return field.Env()
	})
	envs = append(envs, where.EnvConfigPath)
	slices.Sort(envs)
	return envs
}

var envCmd = &cobra.Command{
	Use:   "env",
	Short: "List the environment variables reel reads",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		setOnly := lo.Must(cmd.Flags().GetBool("set-only"))
		unsetOnly := lo.Must(cmd.Flags().GetBool("unset-only"))

		for _, env := range envVariables() {
			value, present := os.LookupEnv(env)
			if (setOnly && !present) || (unsetOnly && present) {
				continue
			}

			cmd.Print(style.Bold(style.Fg(color.Purple)(env)), "=")
			cmd.Println(lo.Ternary(present, style.Fg(color.Green)(value), style.Fg(color.Red)("unset")))
		}
	},
}
