package domain

// Statutory and validation thresholds recognized by the core. These are
// compile-time constants, not runtime configuration — changing any of them
// is a new core version, per the Kieswet itself.
const (
	// LargeCouncilThreshold is the seat count at and above which a council
	// is "large": the highest-averages-only residual rule and
	// the 25% (vs. 50%) preferential-vote threshold both switch on it.
	LargeCouncilThreshold = 19

	// RemainderThresholdPercent is the percentage of the quota a list's
	// votes must reach to be eligible for the largest-remainder round of
	// residual seat assignment.
	RemainderThresholdPercent = 75

	// PreferenceThresholdPercentLarge is the percentage of the quota a
	// candidate's personal votes must reach to be preferentially elected,
	// for councils at or above LargeCouncilThreshold.
	PreferenceThresholdPercentLarge = 25

	// PreferenceThresholdPercentSmall is the same threshold for smaller
	// councils.
	PreferenceThresholdPercentSmall = 50

	// SmallDifferenceWarningPercent and SmallDifferenceWarningAbsolute
	// together gate W203: a voters/votes discrepancy triggers a warning
	// once it reaches either bound.
	SmallDifferenceWarningPercent  = 2
	SmallDifferenceWarningAbsolute = 15

	// BlankInvalidWarningPercent gates W201/W202: blank or invalid votes
	// exceeding this percentage of the total cast trigger a warning.
	BlankInvalidWarningPercent = 3
)
