package domain

// Display severities derived by the classifier.
const (
	SeverityDanger  = "DANGER"
	SeverityInfo    = "INFO"
	SeverityWarning = "WARNING"
	SeverityAlert   = "ALERT"
	SeverityPlain   = "PLAIN"
)

// Verdict is the display-facing result of classification.
type Verdict struct {
	Severity string `json:"severity"`
	Title    string `json:"title"`
	Class    string `json:"class"` // severity color class, persisted as bg_color
}

var verdicts = map[string]Verdict{
	SeverityDanger:  {Severity: SeverityDanger, Title: "ВЕЛИКА НЕБЕЗПЕКА", Class: "red-700"},
	SeverityInfo:    {Severity: SeverityInfo, Title: "ІНФОРМАЦІЯ", Class: "green-700"},
	SeverityWarning: {Severity: SeverityWarning, Title: "УВАГА", Class: "amber-700"},
	SeverityAlert:   {Severity: SeverityAlert, Title: "НЕБЕЗПЕКА", Class: "orange-700"},
	SeverityPlain:   {Severity: SeverityPlain, Title: "ПОВІДОМЛЕННЯ", Class: "blue-grey-700"},
}

// Classify maps a payload level, the payload's region names, and the user's
// home region to a display verdict.
//
// Rules, evaluated in order:
//  1. CRITICAL is DANGER regardless of region.
//  2. A set home region that resolves from the payload's regions upgrades any
//     non-LOW level to DANGER.
//  3. Otherwise the level maps directly; unrecognized levels fall through to
//     PLAIN.
//
// Pure function: no I/O, no state beyond the fixed region tables.
func Classify(level string, regions []string, userRegion RegionCode) Verdict {
	if level == LevelCritical {
		return verdicts[SeverityDanger]
	}

	if userRegion != "" && level != LevelLow && regionMatch(regions, userRegion) {
		return verdicts[SeverityDanger]
	}

	switch level {
	case LevelLow:
		return verdicts[SeverityInfo]
	case LevelMedium:
		return verdicts[SeverityWarning]
	case LevelHigh:
		return verdicts[SeverityAlert]
	default:
		return verdicts[SeverityPlain]
	}
}

func regionMatch(regions []string, userRegion RegionCode) bool {
	for _, code := range ResolveMany(regions) {
		if code == userRegion {
			return true
		}
	}
	return false
}
