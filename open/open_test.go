package open

import (
	"testing"

	"github.com/reel-player/reel/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func TestCommand(t *testing.T) {
	Convey("command", t, func() {
		Convey("Should pick the platform handler", func() {
			cmd, ok := command(constant.Linux, "/tmp/reel")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"xdg-open", "/tmp/reel"})

			cmd, ok = command(constant.Darwin, "/tmp/reel")
			So(ok, ShouldBeTrue)
			So(cmd.Args, ShouldResemble, []string{"open", "/tmp/reel"})
		})

		Convey("Should refuse unknown platforms", func() {
			_, ok := command("plan9", "/tmp/reel")
			So(ok, ShouldBeFalse)
		})
	})
}
