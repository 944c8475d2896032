package model_test

import (
	"testing"

	model "github.com/skatium/heatline/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestPhaseProgression(t *testing.T) {
	convey.Convey("Given the phase sequence", t, func() {
		convey.Convey("When asking for the next phase", func() {
			next, ok := model.PhaseQualifier.Next()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(next, convey.ShouldEqual, model.PhaseSemi)

			next, ok = model.PhaseSemi.Next()
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(next, convey.ShouldEqual, model.PhaseFinal)
		})

		convey.Convey("When asking past the final phase", func() {
			_, ok := model.PhaseFinal.Next()
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("When asking for the next of an unknown phase", func() {
			_, ok := model.Phase("warmup").Next()
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then validity matches the known set", func() {
			convey.So(model.PhaseQualifier.Valid(), convey.ShouldBeTrue)
			convey.So(model.PhaseSemi.Valid(), convey.ShouldBeTrue)
			convey.So(model.PhaseFinal.Valid(), convey.ShouldBeTrue)
			convey.So(model.Phase("warmup").Valid(), convey.ShouldBeFalse)
		})
	})
}

func TestScoringSystemValid(t *testing.T) {
	convey.Convey("Given scoring system values", t, func() {
		convey.So(model.ScoreByBest.Valid(), convey.ShouldBeTrue)
		convey.So(model.ScoreByAverage.Valid(), convey.ShouldBeTrue)
		convey.So(model.ScoreByTotal.Valid(), convey.ShouldBeTrue)
		convey.So(model.ScoringSystem("median").Valid(), convey.ShouldBeFalse)
	})
}

func TestHeatGroupSize(t *testing.T) {
	convey.Convey("Given heats of both run types", t, func() {
		participants := []string{"a", "b", "c", "d", "e"}

		convey.Convey("A single-run heat always has a group of one", func() {
			h := model.Heat{RunType: model.RunSingle, SkatersPerJam: 3, Participants: participants}
			convey.So(h.GroupSize(), convey.ShouldEqual, 1)
		})

		convey.Convey("A jam heat uses its configured group size", func() {
			h := model.Heat{RunType: model.RunJam, SkatersPerJam: 3, Participants: participants}
			convey.So(h.GroupSize(), convey.ShouldEqual, 3)
		})

		convey.Convey("A jam group never exceeds the field", func() {
			h := model.Heat{RunType: model.RunJam, SkatersPerJam: 8, Participants: participants}
			convey.So(h.GroupSize(), convey.ShouldEqual, 5)
		})

		convey.Convey("A jam with group size one behaves like single-run", func() {
			h := model.Heat{RunType: model.RunJam, SkatersPerJam: 1, Participants: participants}
			convey.So(h.GroupSize(), convey.ShouldEqual, 1)
		})
	})
}

func TestScoreKey(t *testing.T) {
	convey.Convey("Given two scores for the same run", t, func() {
		a := model.Score{HeatID: "h1", SkaterID: "s1", JudgeID: "j1", RunNumber: 2, Value: 7.5}
		b := model.Score{HeatID: "h1", SkaterID: "s1", JudgeID: "j1", RunNumber: 2, Value: 9.0}

		convey.Convey("Then their keys collide regardless of value", func() {
			convey.So(a.Key(), convey.ShouldResemble, b.Key())
		})

		convey.Convey("And a different run yields a distinct key", func() {
			c := model.Score{HeatID: "h1", SkaterID: "s1", JudgeID: "j1", RunNumber: 3}
			convey.So(a.Key(), convey.ShouldNotResemble, c.Key())
		})
	})
}
