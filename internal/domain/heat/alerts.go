package heat

// Alert is a run-timer cue for the commentator booth. Alerts are a
// presentation concern: a UI-side ticking loop calls AlertAt once per second
// with the remaining time, the state machine itself never watches the clock.
type Alert string

const (
	AlertNone    Alert = ""
	AlertHalfway Alert = "halfway"
	AlertTwenty  Alert = "20seconds"
	AlertTen     Alert = "10seconds"
)

// Fire points, in seconds remaining. The 20s and 10s cues fire one tick
// early so the announcement lands on the round number.
const (
	twentySecondMark = 21
	tenSecondMark    = 11
)

// AlertAt returns the cue for a countdown tick, given the remaining seconds
// and the configured run duration.
func AlertAt(remaining, timePerRun int) Alert {
	if remaining <= 0 || remaining >= timePerRun {
		return AlertNone
	}
	switch remaining {
	case timePerRun / 2:
		return AlertHalfway
	case twentySecondMark:
		return AlertTwenty
	case tenSecondMark:
		return AlertTen
	}
	return AlertNone
}
