package config

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/reel-player/reel/color"
	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/style"
	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Field is a configuration key with its default value and help text.
type Field struct {
	Key         string
	Value       any
	Description string
}

var fields = []Field{
	{key.IconsVariant, "plain", "Icons variant.\nAvailable options are: emoji, kaomoji, plain, squares, nerd (nerd-font required)"},
	{key.LogsWrite, false, "Write logs"},
	{key.LogsLevel, "info", "Available options are: (from less to most verbose)\npanic, fatal, error, warn, info, debug, trace"},
	{key.LogsJson, false, "Use json format for logs"},
	{key.CliColored, true, "Enable colored CLI output"},
	{key.CliVersionCheck, true, "Check for a newer release at most every two days"},
	{key.Player, constant.MPV, "Media player binary. It must expose mpv's JSON IPC"},
	{key.PlayerSnapshotInterval, 5, "Seconds of playback between two watch position snapshots"},
	{key.PlayerResume, true, "Resume unfinished items from their last recorded position"},
	{key.PlayerSeekSmall, 5, "Seconds skipped by a small seek step"},
	{key.PlayerSeekLarge, 10, "Seconds skipped by a large seek step"},
	{key.StoreBackend, "file", "Persistence backend for playlist, preferences and watch history.\nAvailable options are: file, memory, sqlite, badger, redis"},
	{key.StoreRedisAddr, "localhost:6379", "Redis address used when store.backend is redis"},
	{key.StoreRedisDB, 0, "Redis database number used when store.backend is redis"},
	{key.SubtitleWatch, true, "Reload the subtitle file when it changes on disk"},
	{key.NotifyEnable, false, "Show a desktop notification when an item starts or the playlist ends"},
}

// Default indexes every field by key.
var Default = lo.SliceToMap(fields, func(f Field) (string, Field) {
	return f.Key, f
})

// EnvExposed lists the keys bound to REEL_ environment variables.
var EnvExposed = lo.Map(fields, func(f Field, _ int) string {
	return f.Key
})

// Env is the environment variable overriding the field.
func (f *Field) Env() string {
	return strings.ToUpper(constant.Reel + "_" + EnvKeyReplacer.Replace(f.Key))
}

// Type names the Go type of the default value.
func (f *Field) Type() string {
	return fmt.Sprintf("%T", f.Value)
}

// Pretty renders the field for `config info`.
func (f *Field) Pretty() string {
	var b strings.Builder
	lo.Must0(prettyTemplate.Execute(&b, f))
	return b.String()
}

func (f *Field) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key         string `json:"key"`
		Value       any    `json:"value"`
		Default     any    `json:"default"`
		Description string `json:"description"`
		Type        string `json:"type"`
		Env         string `json:"env"`
	}{
		Key:         f.Key,
		Value:       viper.Get(f.Key),
		Default:     f.Value,
		Description: f.Description,
		Type:        f.Type(),
		Env:         f.Env(),
	})
}

func highlight(v any) string {
	switch value := v.(type) {
	case bool:
		return style.Fg(lo.Ternary(value, color.Green, color.Red))(fmt.Sprint(value))
	case string:
		return style.Fg(color.Yellow)(value)
	default:
		return fmt.Sprint(value)
	}
}

var prettyTemplate = lo.Must(template.New("pretty").Funcs(template.FuncMap{
	"faint":  style.Faint,
	"purple": style.Fg(color.Purple),
	"blue":   style.Fg(color.Blue),
	"value":  viper.Get,
	"hl":     highlight,
}).Parse(`{{ faint .Description }}
{{ blue "Key:" }}     {{ purple .Key }}
{{ blue "Env:" }}     {{ .Env }}
{{ blue "Value:" }}   {{ hl (value .Key) }}
{{ blue "Default:" }} {{ hl .Value }}
{{ blue "Type:" }}    {{ .Type }}`))
