package progress

import "github.com/prepdeck/backend/internal/models"

// XPPerLevel is the experience span of every level.
const XPPerLevel = 100

// Level maps cumulative experience to a level number. Callers guarantee
// non-negative experience.
func Level(xp int64) int {
	return int(xp/XPPerLevel) + 1
}

// ProgressWithinLevel returns the level plus fractional progress toward the
// next one.
func ProgressWithinLevel(xp int64) models.LevelProgressInfo {
	lvl := Level(xp)
	into := xp - int64(lvl-1)*XPPerLevel

	percent := float64(into) / XPPerLevel * 100
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	return models.LevelProgressInfo{
		Level:            lvl,
		XPIntoLevel:      into,
		XPNeededForLevel: XPPerLevel,
		Percent:          percent,
	}
}
