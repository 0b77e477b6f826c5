// Package main is the entry point for the reel player.
package main

import (
	"github.com/reel-player/reel/cmd"
	"github.com/reel-player/reel/config"
	"github.com/reel-player/reel/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	go log.CollectGarbage()

	cmd.Execute()
}
