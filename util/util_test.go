package util

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/vlcremote/vlcremote/filesystem"
)

func init() {
	filesystem.SetMemMapFs()
}

func TestQuantify(t *testing.T) {
	Convey("Quantify", t, func() {
		So(Quantify(1, "item", "items"), ShouldEqual, "1 item")
		So(Quantify(2, "item", "items"), ShouldEqual, "2 items")
	})
}

func TestCapitalize(t *testing.T) {
	Convey("Capitalize", t, func() {
		So(Capitalize("hello"), ShouldEqual, "Hello")
		So(Capitalize(""), ShouldEqual, "")
	})
}

func TestMaxMin(t *testing.T) {
	Convey("Max/Min", t, func() {
		So(Max(1, 5, 2), ShouldEqual, 5)
		So(Min(1, 5, 2), ShouldEqual, 1)
		So(Max[int](), ShouldEqual, 0)
	})
}

func TestFormatSeconds(t *testing.T) {
	Convey("FormatSeconds", t, func() {
		So(FormatSeconds(0), ShouldEqual, "0:00")
		So(FormatSeconds(62.9), ShouldEqual, "1:02")
		So(FormatSeconds(3725), ShouldEqual, "1:02:05")
		So(FormatSeconds(-3), ShouldEqual, "0:00")
	})
}

func TestTimeline(t *testing.T) {
	Convey("Timeline", t, func() {
		Convey("Fills in proportion", func() {
			So(Timeline(30, 120, 8), ShouldEqual, "━━──────")
		})

		Convey("Is empty while the duration is unknown", func() {
			So(Timeline(30, 0, 4), ShouldEqual, "────")
		})

		Convey("Never overflows", func() {
			So(Timeline(500, 120, 4), ShouldEqual, "━━━━")
			So(Timeline(-5, 120, 4), ShouldEqual, "────")
			So(Timeline(1, 2, 0), ShouldEqual, "")
		})
	})
}

func TestDelete(t *testing.T) {
	Convey("Delete", t, func() {
		fs := filesystem.API()
		So(fs.MkdirAll("/a/b", 0o755), ShouldBeNil)
		So(fs.WriteFile("/a/b/c", []byte("x"), 0o644), ShouldBeNil)

		So(Delete("/a/b/c"), ShouldBeNil)
		exists, _ := fs.Exists("/a/b/c")
		So(exists, ShouldBeFalse)

		So(Delete("/a"), ShouldBeNil)
		exists, _ = fs.Exists("/a")
		So(exists, ShouldBeFalse)

		So(Delete("/missing"), ShouldNotBeNil)
	})
}

func TestClearCommand(t *testing.T) {
	Convey("clearCommand", t, func() {
		So(clearCommand("linux"), ShouldResemble, []string{"tput", "clear"})
		So(clearCommand("darwin"), ShouldResemble, []string{"tput", "clear"})
		So(clearCommand("windows"), ShouldResemble, []string{"cmd", "/c", "cls"})
		So(clearCommand("plan9"), ShouldBeEmpty)
	})
}
