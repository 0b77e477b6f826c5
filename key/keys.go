// Package key defines the canonical set of configuration identifiers used for centralized settings management.
package key

// DefinedFieldsCount represents the total cardinality of the application configuration schema.
const DefinedFieldsCount = 16

// Iconography - these keys manage the visual rendering of UI symbols.
const (
	IconsVariant = "icons.variant"
)

// Media Playback - these keys configure the external player and the session controller.
const (
	Player                 = "player.default"
	PlayerSnapshotInterval = "player.snapshot_interval"
	PlayerResume           = "player.resume"
	PlayerSeekSmall        = "player.seek_small"
	PlayerSeekLarge        = "player.seek_large"
)

// Persistence - these keys select and configure the key-value backend.
const (
	StoreBackend   = "store.backend"
	StoreRedisAddr = "store.redis.addr"
	StoreRedisDB   = "store.redis.db"
)

// Subtitles.
const (
	SubtitleWatch = "subtitle.watch"
)

// Desktop notifications.
const (
	NotifyEnable = "notify.enable"
)

// Logging Infrastructure - these keys manage the application's internal diagnostics and auditing system.
const (
	LogsWrite = "logs.write"
	LogsLevel = "logs.level"
	LogsJson  = "logs.json"
)

// CLI Execution Environment - these flags and settings govern the non-interactive application behavior.
const (
	CliColored      = "cli.colored"
	CliVersionCheck = "cli.version_check"
)
