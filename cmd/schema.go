package cmd

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/reel-player/reel/history"
	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/playlist"
	"github.com/reel-player/reel/session"
	"github.com/reel-player/reel/subtitle"
	"github.com/spf13/cobra"
)

// schemaTargets are the documents reel persists or prints, by name.
var schemaTargets = map[string]func() any{
	"history":     func() any { return map[media.Ref]history.Record{} },
	"playlist":    func() any { return &playlist.State{} },
	"preferences": func() any { return &session.Values{} },
	"cues":        func() any { return []*subtitle.Cue{} },
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:       "schema <history|playlist|preferences|cues>",
	Short:     "Generate JSON schemas for the stored documents",
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"history", "playlist", "preferences", "cues"},
	Run: func(cmd *cobra.Command, args []string) {
		target, ok := schemaTargets[args[0]]
		if !ok {
			handleErr(&unknownSchemaError{name: args[0]})
		}

		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			name := t.Name()
			switch strings.ToLower(name) {
			case "state", "values", "record":
				return filepath.Base(t.PkgPath()) + "." + name
			}

			return name
		}

		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(reflector.Reflect(target())))
	},
}

type unknownSchemaError struct {
	name string
}

func (e *unknownSchemaError) Error() string {
	return "unknown schema " + e.name + ", expected one of history, playlist, preferences or cues"
}
