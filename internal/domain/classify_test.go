package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	odesa := []string{"Одеська область"}

	cases := []struct {
		name       string
		level      string
		regions    []string
		userRegion RegionCode
		severity   string
		title      string
	}{
		{
			name:     "critical is danger without any user region",
			level:    LevelCritical,
			regions:  odesa,
			severity: SeverityDanger,
			title:    "ВЕЛИКА НЕБЕЗПЕКА",
		},
		{
			name:       "critical is danger even outside the home region",
			level:      LevelCritical,
			regions:    []string{"Львівська область"},
			userRegion: "UA-51",
			severity:   SeverityDanger,
		},
		{
			name:       "medium in home region is danger",
			level:      LevelMedium,
			regions:    odesa,
			userRegion: "UA-51",
			severity:   SeverityDanger,
		},
		{
			name:       "home region match via city alias",
			level:      LevelHigh,
			regions:    []string{"Одеса"},
			userRegion: "UA-51",
			severity:   SeverityDanger,
		},
		{
			name:       "low in home region stays info",
			level:      LevelLow,
			regions:    odesa,
			userRegion: "UA-51",
			severity:   SeverityInfo,
		},
		{
			name:       "medium outside home region is warning",
			level:      LevelMedium,
			regions:    []string{"Львівська область"},
			userRegion: "UA-51",
			severity:   SeverityWarning,
		},
		{
			name:     "medium without user region is warning",
			level:    LevelMedium,
			severity: SeverityWarning,
			title:    "УВАГА",
		},
		{
			name:     "low maps to info",
			level:    LevelLow,
			severity: SeverityInfo,
			title:    "ІНФОРМАЦІЯ",
		},
		{
			name:     "high maps to alert",
			level:    LevelHigh,
			severity: SeverityAlert,
			title:    "НЕБЕЗПЕКА",
		},
		{
			name:     "unrecognized level maps to plain",
			level:    "EXTREME",
			severity: SeverityPlain,
			title:    "ПОВІДОМЛЕННЯ",
		},
		{
			name:     "empty level maps to plain",
			level:    "",
			severity: SeverityPlain,
		},
		{
			name:       "unrecognized level in home region is danger",
			level:      "EXTREME",
			regions:    odesa,
			userRegion: "UA-51",
			severity:   SeverityDanger,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			verdict := Classify(tc.level, tc.regions, tc.userRegion)
			assert.Equal(t, tc.severity, verdict.Severity)
			if tc.title != "" {
				assert.Equal(t, tc.title, verdict.Title)
			}
			assert.NotEmpty(t, verdict.Title)
			assert.NotEmpty(t, verdict.Class)
		})
	}
}

// Classification is total: any level and region-match combination yields
// exactly one of the five severities.
func TestClassify_Totality(t *testing.T) {
	levels := []string{LevelLow, LevelMedium, LevelHigh, LevelCritical, "", "anything"}
	regionSets := [][]string{nil, {"Одеська область"}, {"не регіон"}}
	userRegions := []RegionCode{"", "UA-51"}

	known := map[string]bool{
		SeverityDanger:  true,
		SeverityInfo:    true,
		SeverityWarning: true,
		SeverityAlert:   true,
		SeverityPlain:   true,
	}

	for _, level := range levels {
		for _, regions := range regionSets {
			for _, user := range userRegions {
				verdict := Classify(level, regions, user)
				assert.True(t, known[verdict.Severity],
					"level=%q regions=%v user=%q produced %q", level, regions, user, verdict.Severity)
			}
		}
	}
}
