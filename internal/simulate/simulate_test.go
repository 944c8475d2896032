package simulate

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestApplyDefaults(t *testing.T) {
	Convey("Given an empty config", t, func() {
		cfg := &Config{}

		Convey("When defaults are applied", func() {
			applyDefaults(cfg)

			Convey("Then every field is usable", func() {
				So(cfg.BaseURL, ShouldEqual, "http://localhost:9090")
				So(cfg.ContestID, ShouldEqual, "sim-contest")
				So(cfg.CategoryID, ShouldEqual, "street-open")
				So(cfg.Skaters, ShouldEqual, defaultSkaters)
				So(cfg.Judges, ShouldEqual, defaultJudges)
				So(cfg.Timeout, ShouldEqual, defaultTimeout)
				So(cfg.Seed, ShouldNotEqual, 0)
			})
		})
	})

	Convey("Given a populated config", t, func() {
		cfg := &Config{
			BaseURL: "http://example.test:9000",
			Skaters: 16,
			Judges:  5,
			Timeout: time.Second,
			Seed:    42,
		}

		Convey("When defaults are applied", func() {
			applyDefaults(cfg)

			Convey("Then the explicit values survive", func() {
				So(cfg.BaseURL, ShouldEqual, "http://example.test:9000")
				So(cfg.Skaters, ShouldEqual, 16)
				So(cfg.Judges, ShouldEqual, 5)
				So(cfg.Timeout, ShouldEqual, time.Second)
				So(cfg.Seed, ShouldEqual, 42)
			})
		})
	})
}

func TestVerifyStandings(t *testing.T) {
	Convey("Given ordered standings", t, func() {
		rows := []rankingPayload{
			{Position: 1, SkaterID: "skater-01", BestScore: 9.5},
			{Position: 2, SkaterID: "skater-02", BestScore: 8.0},
			{Position: 3, SkaterID: "skater-03", BestScore: 8.0},
		}

		Convey("Then verification passes, ties included", func() {
			So(verifyStandings(rows), ShouldBeNil)
		})
	})

	Convey("Given a gap in positions", t, func() {
		rows := []rankingPayload{
			{Position: 1, SkaterID: "skater-01", BestScore: 9.5},
			{Position: 3, SkaterID: "skater-02", BestScore: 8.0},
		}

		Convey("Then verification fails", func() {
			So(verifyStandings(rows), ShouldNotBeNil)
		})
	})

	Convey("Given a lower rank with a higher best score", t, func() {
		rows := []rankingPayload{
			{Position: 1, SkaterID: "skater-01", BestScore: 7.0},
			{Position: 2, SkaterID: "skater-02", BestScore: 9.0},
		}

		Convey("Then verification fails", func() {
			So(verifyStandings(rows), ShouldNotBeNil)
		})
	})
}
