package version

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCompare(t *testing.T) {
	Convey("Compare", t, func() {
		Convey("Orders by major, minor then patch", func() {
			for _, c := range []struct {
				a, b string
				want int
			}{
				{"1.0.0", "0.9.9", 1},
				{"0.3.0", "0.3.1", -1},
				{"v0.3.0", "0.3.0", 0},
				{"0.10.0", "0.9.0", 1},
				{"v1.2.3-rc1", "1.2.3", 0},
			} {
				got, err := Compare(c.a, c.b)
				So(err, ShouldBeNil)
				So(got, ShouldEqual, c.want)
			}
		})

		Convey("Rejects malformed versions", func() {
			_, err := Compare("latest", "0.3.0")
			So(err, ShouldNotBeNil)

			_, err = Compare("0.3", "0.3.0")
			So(err, ShouldNotBeNil)
		})
	})

	Convey("ReleaseURL points at the tag", t, func() {
		So(ReleaseURL("1.2.3"), ShouldEndWith, "/releases/tag/v1.2.3")
	})
}
