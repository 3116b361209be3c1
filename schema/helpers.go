package schema

// ClampWeek bounds a game week to MaxDisplayWeek. Applying it twice is a no-op.
func ClampWeek(week int) int {
	if week > MaxDisplayWeek {
		return MaxDisplayWeek
	}
	return week
}

// WeekLabel maps a game week to its human label.
func WeekLabel(week int) string {
	switch week {
	case 18:
		return "Wild Card"
	case 19:
		return "Divisional Round"
	case 20:
		return "Conference Championship"
	case 21:
		return "Super Bowl"
	default:
		return "Regular Season"
	}
}

// IsPlayoffWeek reports whether week is past the regular season.
func IsPlayoffWeek(week int) bool {
	return week > RegularSeasonWeeks
}
