package subtitle

import (
	"bytes"
	"testing"

	"github.com/reel-player/reel/filesystem"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	filesystem.SetMemMapFs()
}

const sample = `1
00:00:01,000 --> 00:00:03,000
Hello world!

2
00:00:04,000
Missing timing

3
00:00:05.500 --> 00:00:07.250
Dot separator
spans two lines

4
00:00:09,000 --> 00:00:08,000
Inverted

5
00:00:aa,000 --> 00:00:12,000
Garbage

6
00:00:12,000 --> 00:00:13,000 X1:100 X2:200
Positioned
`

func TestParse(t *testing.T) {
	Convey("Given SubRip input", t, func() {
		Convey("A well-formed block next to a malformed one should yield exactly one cue", func() {
			cues := Parse("1\n00:00:01,000 --> 00:00:03,000\nHello world!\n\n2\nno timing here")
			So(cues, ShouldHaveLength, 1)
			So(*cues[0], ShouldResemble, Cue{ID: "1", Start: 1, End: 3, Text: "Hello world!"})
		})

		Convey("Bad blocks should be skipped without aborting the rest", func() {
			cues := Parse(sample)
			So(cues, ShouldHaveLength, 3)
			So(cues[0].ID, ShouldEqual, "1")
			So(cues[1].ID, ShouldEqual, "3")
			So(cues[1].Start, ShouldAlmostEqual, 5.5)
			So(cues[1].End, ShouldAlmostEqual, 7.25)
			So(cues[1].Text, ShouldEqual, "Dot separator\nspans two lines")
			So(cues[2].ID, ShouldEqual, "6")
			So(cues[2].End, ShouldEqual, 13)

			for _, c := range cues {
				So(c.Start, ShouldBeLessThan, c.End)
			}
		})

		Convey("CRLF line endings should be accepted", func() {
			cues := Parse("1\r\n00:00:01,000 --> 00:00:02,000\r\nHi\r\n\r\n2\r\n00:00:03,000 --> 00:00:04,000\r\nThere\r\n")
			So(cues, ShouldHaveLength, 2)
			So(cues[1].Text, ShouldEqual, "There")
		})

		Convey("Blank lines containing whitespace should separate blocks", func() {
			cues := Parse("1\n00:00:01,000 --> 00:00:02,000\nA\n  \t\n2\n00:00:03,000 --> 00:00:04,000\nB")
			So(cues, ShouldHaveLength, 2)
		})

		Convey("Empty or garbage input should yield no cues", func() {
			So(Parse(""), ShouldBeEmpty)
			So(Parse("   \n\n  "), ShouldBeEmpty)
			So(Parse("not a subtitle file at all"), ShouldBeEmpty)
		})
	})
}

func TestActiveCue(t *testing.T) {
	Convey("Given two cues with a gap", t, func() {
		cues := []*Cue{
			{ID: "1", Start: 1, End: 3, Text: "first"},
			{ID: "2", Start: 5, End: 6, Text: "second"},
			{ID: "3", Start: 5.5, End: 8, Text: "overlap"},
		}

		Convey("Boundaries should be inclusive", func() {
			So(ActiveCue(cues, 1).ID, ShouldEqual, "1")
			So(ActiveCue(cues, 3).ID, ShouldEqual, "1")
		})

		Convey("Gaps should resolve to nothing", func() {
			So(ActiveCue(cues, 4), ShouldBeNil)
			So(ActiveCue(cues, 0.5), ShouldBeNil)
			So(ActiveCue(nil, 2), ShouldBeNil)
		})

		Convey("Overlaps should resolve to the first cue in sequence order", func() {
			So(ActiveCue(cues, 5.75).ID, ShouldEqual, "2")
			So(ActiveCue(cues, 7).ID, ShouldEqual, "3")
		})

		Convey("Resolution should not depend on the previous time", func() {
			So(ActiveCue(cues, 7).ID, ShouldEqual, "3")
			So(ActiveCue(cues, 2).ID, ShouldEqual, "1")
		})
	})
}

func TestTimestamp(t *testing.T) {
	Convey("Timestamps", t, func() {
		Convey("Should format zero padded fields", func() {
			So(FormatTimestamp(3661.123), ShouldEqual, "01:01:01,123")
			So(FormatTimestamp(1.5), ShouldEqual, "00:00:01,500")
			So(FormatTimestamp(0), ShouldEqual, "00:00:00,000")
			So(FormatTimestamp(-4), ShouldEqual, "00:00:00,000")
		})

		Convey("Should round trip integer millisecond values", func() {
			for _, s := range []string{"00:00:00,000", "01:01:01,123", "12:34:56,789", "99:59:59,999"} {
				v, err := ParseTimestamp(s)
				So(err, ShouldBeNil)
				So(FormatTimestamp(v), ShouldEqual, s)
			}
		})

		Convey("Should accept a dot separator and missing milliseconds", func() {
			v, err := ParseTimestamp("00:01:02.250")
			So(err, ShouldBeNil)
			So(v, ShouldAlmostEqual, 62.25)

			v, err = ParseTimestamp("00:00:07")
			So(err, ShouldBeNil)
			So(v, ShouldEqual, 7)
		})

		Convey("Should reject non-numeric components", func() {
			for _, s := range []string{"", "aa:00:01,000", "00:01,000", "00:00:01,x"} {
				_, err := ParseTimestamp(s)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestWriteAndLoad(t *testing.T) {
	Convey("Given parsed cues", t, func() {
		cues := Parse(sample)

		Convey("Write should produce input that parses back to the same cues", func() {
			var buf bytes.Buffer
			So(Write(&buf, cues), ShouldBeNil)
			So(Parse(buf.String()), ShouldResemble, cues)
		})

		Convey("Write should number cues without an ID", func() {
			var buf bytes.Buffer
			So(Write(&buf, []*Cue{{Start: 1, End: 2, Text: "a"}}), ShouldBeNil)
			So(buf.String(), ShouldEqual, "1\n00:00:01,000 --> 00:00:02,000\na\n")
		})

		Convey("Load should read through the filesystem", func() {
			So(filesystem.API().WriteFile("/subs/movie.srt", []byte(sample), 0644), ShouldBeNil)
			loaded, err := Load("/subs/movie.srt")
			So(err, ShouldBeNil)
			So(loaded, ShouldResemble, cues)
		})

		Convey("Load should fail for missing or non-subtitle files", func() {
			_, err := Load("/subs/absent.srt")
			So(err, ShouldNotBeNil)

			_, err = Load("/subs/movie.txt")
			So(err, ShouldNotBeNil)
		})
	})
}
