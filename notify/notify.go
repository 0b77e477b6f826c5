// Package notify shows desktop notifications for playback milestones when notify.enable is set.
package notify

import (
	"fmt"

	"github.com/gen2brain/beeep"
	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/key"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/util"
	"github.com/spf13/viper"
)

func init() {
	beeep.AppName = constant.Reel
}

var send = func(title, message string) error {
	return beeep.Notify(title, message, "")
}

func post(title, message string) {
	if !viper.GetBool(key.NotifyEnable) {
		return
	}
	if err := send(title, message); err != nil {
		log.Warnf("desktop notification: %v", err)
	}
}

// NowPlaying announces the item that just started.
func NowPlaying(ref media.Ref, index, total int) {
	post("Now playing", fmt.Sprintf("%s (%d/%d)", ref.Name(), index+1, total))
}

// Finished announces that the playlist stopped after its last item.
func Finished(total int) {
	post("Playlist finished", util.Quantify(total, "item", "items")+" played")
}

// Failed announces a playback error.
func Failed(ref media.Ref, reason string) {
	post("Playback failed", fmt.Sprintf("%s: %s", ref.Name(), reason))
}
