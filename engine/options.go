package engine

import (
	"time"

	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/player"
	"github.com/reel-player/reel/where"
	"github.com/spf13/viper"
)

// DefaultOverlayDuration is how long a subtitle cue stays on screen when the player draws it.
const DefaultOverlayDuration = 10 * time.Second

// Options configures an Engine.
type Options struct {
	Store kv.Options

	// Media is the primitive to drive. When nil an mpv process is started from Player.
	Media  player.Media
	Player string

	SnapshotInterval time.Duration
	Resume           bool
	WatchSubtitles   bool
	// SiblingSubtitles loads "<stem>.srt" next to a local item when it exists.
	SiblingSubtitles bool
	OverlayDuration  time.Duration

	// StayOpen keeps Run going after the playlist stopped, until the player exits.
	StayOpen bool
}

// StoreOptions reads the persistence settings from the configuration.
func StoreOptions() kv.Options {
	opts := kv.Options{
		Backend: viper.GetString(key.StoreBackend),
		Redis: kv.RedisConfig{
			Addr: viper.GetString(key.StoreRedisAddr),
			DB:   viper.GetInt(key.StoreRedisDB),
		},
	}

	switch opts.Backend {
	case kv.BackendMemory, kv.BackendRedis:
	default:
		opts.Dir = where.Store()
	}
	return opts
}

// FromConfig builds Options from the configuration.
func FromConfig() Options {
	return Options{
		Store:            StoreOptions(),
		Player:           viper.GetString(key.Player),
		SnapshotInterval: time.Duration(viper.GetInt(key.PlayerSnapshotInterval)) * time.Second,
		Resume:           viper.GetBool(key.PlayerResume),
		WatchSubtitles:   viper.GetBool(key.SubtitleWatch),
		SiblingSubtitles: true,
		OverlayDuration:  DefaultOverlayDuration,
	}
}
