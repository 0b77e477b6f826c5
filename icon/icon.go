// Package icon renders the symbols printed by the CLI in the variant chosen by icons.variant.
//
// Icons can be displayed as emoji, nerd-font glyphs, plain ASCII, kaomoji,
// or Unicode squares depending on user preference.
package icon

import (
	"github.com/reel-player/reel/key"
	"github.com/spf13/viper"
)

// Visual Variant Constants - these define the supported aesthetic styles for icon rendering.
const (
	emoji   = "emoji"
	nerd    = "nerd"
	plain   = "plain"
	kaomoji = "kaomoji"
	squares = "squares"
)

// AvailableVariants returns a slice of all registered icon style identifiers.
func AvailableVariants() []string {
	return []string{emoji, nerd, plain, kaomoji, squares}
}

// Icon identifies a symbol in the registry.
type Icon int

const (
	Fail Icon = iota
	Success
	Progress
	Question
	Play
	Pause
	Stop
	Loop
	Shuffle
	Subtitle
	Camera
	Cursor
	Watched
)

// iconDef encapsulates the visual representations of a single UI symbol across all supported variants.
type iconDef struct {
	emoji   string
	nerd    string
	plain   string
	kaomoji string
	squares string
}

var icons = map[Icon]*iconDef{
	Fail:     {emoji: "💀", nerd: "", plain: "X", kaomoji: "(×﹏×)", squares: "🟥"},
	Success:  {emoji: "🎉", nerd: "", plain: "+", kaomoji: "(ᵔᵕᵔ)", squares: "🟩"},
	Progress: {emoji: "👾", nerd: "", plain: "~", kaomoji: "(・_・)", squares: "🟪"},
	Question: {emoji: "🤨", nerd: "", plain: "?", kaomoji: "(・・?)", squares: "🟦"},
	Play:     {emoji: "▶️", nerd: "", plain: ">", kaomoji: "(•̀ᴗ•́)و", squares: "🟩"},
	Pause:    {emoji: "⏸️", nerd: "", plain: "||", kaomoji: "(－_－) zzZ", squares: "🟨"},
	Stop:     {emoji: "⏹️", nerd: "", plain: "[]", kaomoji: "(￣^￣)", squares: "🟥"},
	Loop:     {emoji: "🔁", nerd: "", plain: "@", kaomoji: "(づ｡◕‿‿◕｡)づ", squares: "🟧"},
	Shuffle:  {emoji: "🔀", nerd: "", plain: "%", kaomoji: "(ﾉ◕ヮ◕)ﾉ", squares: "🟫"},
	Subtitle: {emoji: "💬", nerd: "", plain: "\"", kaomoji: "(・∀・)", squares: "⬜"},
	Camera:   {emoji: "📸", nerd: "", plain: "*", kaomoji: "(⌐■_■)", squares: "⬛"},
	Cursor:   {emoji: "👉", nerd: "", plain: ">", kaomoji: "(☞ﾟヮﾟ)☞", squares: "🟦"},
	Watched:  {emoji: "✅", nerd: "", plain: "v", kaomoji: "(ᵔᴥᵔ)", squares: "🟩"},
}

// Get retrieves the visual representation for the receiver Def based on the global icons variant configuration.
func (d *iconDef) Get() string {
	switch viper.GetString(key.IconsVariant) {
	case emoji:
		return d.emoji
	case nerd:
		return d.nerd
	case plain:
		return d.plain
	case kaomoji:
		return d.kaomoji
	case squares:
		return d.squares
	default:
		return ""
	}
}

// Get returns the rendered string for a specified Icon identifier from the global registry.
func Get(i Icon) string {
	d, ok := icons[i]
	if !ok {
		return ""
	}
	return d.Get()
}
