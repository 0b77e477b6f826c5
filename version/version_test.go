package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		Convey("Should order by major, minor and patch", func() {
			for _, c := range []struct {
				a, b string
				want int
			}{
				{"1.0.0", "0.9.9", 1},
				{"0.3.0", "0.3.1", -1},
				{"v0.3.0", "0.3.0", 0},
				{"2.0.0", "10.0.0", -1},
				{"1.2.3-rc.1", "1.2.3", 0},
			} {
				got, err := Compare(c.a, c.b)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, c.want)
			}
		})

		Convey("Should reject malformed versions", func() {
			for _, bad := range []string{"latest", "1.2", "1.x.0", "1.2.3.4"} {
				_, err := Compare(bad, "0.3.0")
				So(err, ShouldNotBeNil)
			}
		})
	})

	Convey("ReleaseURL should point at the tag", t, func() {
		So(ReleaseURL("1.2.3"), ShouldEqual, "https://github.com/reel-player/reel/releases/tag/v1.2.3")
	})
}
