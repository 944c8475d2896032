package heatbuild_test

import (
	"fmt"
	"testing"

	heatbuild "github.com/skatium/heatline/internal/domain/heatbuild"
	model "github.com/skatium/heatline/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func pool(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("skater-%02d", i+1)
	}
	return out
}

func TestBuildThreshold(t *testing.T) {
	Convey("Given a threshold of eight skaters", t, func() {
		settings := heatbuild.Settings{AutoHeatThreshold: 8}

		Convey("When seven have registered", func() {
			heats, err := heatbuild.Build(pool(7), settings)

			Convey("Then no heats are built", func() {
				So(err, ShouldBeNil)
				So(heats, ShouldBeEmpty)
			})
		})

		Convey("When the eighth registers", func() {
			heats, err := heatbuild.Build(pool(8), settings)

			Convey("Then one heat holds all eight in pool order", func() {
				So(err, ShouldBeNil)
				So(heats, ShouldHaveLength, 1)
				So(heats[0], ShouldResemble, pool(8))
			})
		})
	})
}

func TestBuildSequentialPartition(t *testing.T) {
	Convey("Given ten skaters and a four-per-heat cap", t, func() {
		settings := heatbuild.Settings{
			AutoHeatThreshold:      8,
			MaxParticipantsPerHeat: 4,
			Policy:                 heatbuild.SeedSequential,
		}

		heats, err := heatbuild.Build(pool(10), settings)
		So(err, ShouldBeNil)

		Convey("Then heats fill in order with the remainder last", func() {
			So(heats, ShouldHaveLength, 3)
			So(heats[0], ShouldResemble, pool(10)[0:4])
			So(heats[1], ShouldResemble, pool(10)[4:8])
			So(heats[2], ShouldResemble, pool(10)[8:10])
		})

		Convey("And building again from the same pool is identical", func() {
			again, err := heatbuild.Build(pool(10), settings)
			So(err, ShouldBeNil)
			So(again, ShouldResemble, heats)
		})
	})
}

func TestBuildSnakeSeeding(t *testing.T) {
	Convey("Given six seeded skaters dealt across three heats", t, func() {
		settings := heatbuild.Settings{
			AutoHeatThreshold:      4,
			MaxParticipantsPerHeat: 2,
			Policy:                 heatbuild.SeedSnake,
		}

		heats, err := heatbuild.Build(pool(6), settings)
		So(err, ShouldBeNil)

		Convey("Then top seeds land in different heats", func() {
			So(heats, ShouldHaveLength, 3)
			So(heats[0], ShouldResemble, []string{"skater-01", "skater-06"})
			So(heats[1], ShouldResemble, []string{"skater-02", "skater-05"})
			So(heats[2], ShouldResemble, []string{"skater-03", "skater-04"})
		})
	})
}

func TestBuildEdgeCases(t *testing.T) {
	Convey("Given degenerate inputs", t, func() {
		Convey("An empty pool builds nothing", func() {
			heats, err := heatbuild.Build(nil, heatbuild.Settings{AutoHeatThreshold: 1})
			So(err, ShouldBeNil)
			So(heats, ShouldBeEmpty)
		})

		Convey("A zero threshold never triggers", func() {
			heats, err := heatbuild.Build(pool(5), heatbuild.Settings{})
			So(err, ShouldBeNil)
			So(heats, ShouldBeEmpty)
		})

		Convey("An unknown policy is rejected", func() {
			_, err := heatbuild.Build(pool(6), heatbuild.Settings{
				AutoHeatThreshold:      2,
				MaxParticipantsPerHeat: 2,
				Policy:                 heatbuild.SeedingPolicy("shuffle"),
			})
			So(err, ShouldEqual, heatbuild.ErrUnknownPolicy)
		})

		Convey("A cap at or above the pool size yields one heat", func() {
			heats, err := heatbuild.Build(pool(6), heatbuild.Settings{
				AutoHeatThreshold:      4,
				MaxParticipantsPerHeat: 6,
				Policy:                 heatbuild.SeedSnake,
			})
			So(err, ShouldBeNil)
			So(heats, ShouldHaveLength, 1)
			So(heats[0], ShouldResemble, pool(6))
		})
	})
}

func TestNewHeat(t *testing.T) {
	Convey("Given a partition and phase settings", t, func() {
		cfg := model.PhaseSettings{
			Phase:         model.PhaseQualifier,
			RunsPerSkater: 2,
			TimePerRun:    60,
		}

		h := heatbuild.NewHeat("contest-1", "cat-1", model.PhaseQualifier, 3, pool(4), cfg, model.RunSingle, 0)

		Convey("Then the record is pending at the rotation start", func() {
			So(h.ContestID, ShouldEqual, "contest-1")
			So(h.HeatNumber, ShouldEqual, 3)
			So(h.Status, ShouldEqual, model.HeatPending)
			So(h.CurrentSkaterIdx, ShouldEqual, 0)
			So(h.CurrentRun, ShouldEqual, 1)
			So(h.RunsPerSkater, ShouldEqual, 2)
			So(h.TimePerRun, ShouldEqual, 60)
			So(h.Participants, ShouldResemble, pool(4))
		})
	})
}
