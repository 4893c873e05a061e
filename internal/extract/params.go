package extract

// Params collects the tuned scoring constants used by the extractors.
// The defaults were calibrated against the bundled course decks; treat them
// as configuration, not as load-bearing truths.
type Params struct {
	// Year candidate window and bounds.
	MinYear        int
	MaxYear        int
	NoiseYearFrom  int // start years at or above this are schedule noise
	WindowLeft     int // context chars inspected before a candidate
	WindowRight    int // context chars inspected after a candidate

	// Year candidate scoring.
	HintBonus       int // descriptive context word nearby
	CenturyBonus    int // explicit "century" mention
	CircaBonus      int // "c."/"ca." prefix on the match
	CraftBonus      int // craft/medium word nearby
	SchedulePenalty int // implied end year lands in the schedule band
	ScheduleBandTo  int // upper bound of the schedule band
	LifespanPenalty int // span wide enough to be a lifespan
	LifespanSpan    int
	WideSpanPenalty int
	WideSpan        int

	// Author validation.
	AuthorContextWindow int // chars after a name in which a craft hint must appear
	AuthorMinWords      int
	AuthorMaxWords      int

	// Title shaping.
	TitleMaxLen int
}

// DefaultParams returns the tuned defaults.
func DefaultParams() Params {
	return Params{
		MinYear:             1400,
		MaxYear:             2029,
		NoiseYearFrom:       2025,
		WindowLeft:          35,
		WindowRight:         80,
		HintBonus:           4,
		CenturyBonus:        3,
		CircaBonus:          2,
		CraftBonus:          2,
		SchedulePenalty:     -6,
		ScheduleBandTo:      2035,
		LifespanPenalty:     -5,
		LifespanSpan:        70,
		WideSpanPenalty:     -2,
		WideSpan:            40,
		AuthorContextWindow: 120,
		AuthorMinWords:      2,
		AuthorMaxWords:      5,
		TitleMaxLen:         120,
	}
}
