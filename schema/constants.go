package schema

// Custom string types for type safety.
type (
	// OutputMode represents the format of the output.
	OutputMode string

	// DatabaseBackend represents the database backend for caching.
	DatabaseBackend string

	// Side represents whether the subject's team played at home or away.
	Side string

	// Outcome represents the result of a game from the subject's perspective.
	Outcome string
)

// All output modes supported.
const (
	CSVOut     OutputMode = "csv"
	TextOut    OutputMode = "text" // default
	JSONOut    OutputMode = "json"
	ParquetOut OutputMode = "parquet"
	PNGOut     OutputMode = "png"
	SVGOut     OutputMode = "svg"
	HTMLOut    OutputMode = "html"
)

// All cache backends supported.
const (
	SQLiteBackend     DatabaseBackend = "sqlite" // default
	MySQLBackend      DatabaseBackend = "mysql"
	PostgreSQLBackend DatabaseBackend = "postgresql"
	RedisBackend      DatabaseBackend = "redis"
	NoneBackend       DatabaseBackend = "none"
)

// Sides of a scheduled game.
const (
	HomeSide Side = "home"
	AwaySide Side = "away"
)

// Game outcomes. OutcomeUnknown is emitted when the side or margin cannot be resolved.
const (
	OutcomeWon     Outcome = "Won"
	OutcomeLost    Outcome = "Lost"
	OutcomeTie     Outcome = "Tie"
	OutcomeUnknown Outcome = "Unknown"
)

// Football calendar constants.
const (
	FirstQBRSeason     = 2006 // first season the provider publishes Total QBR
	RegularSeasonWeeks = 17   // last regular-season game week
	MaxDisplayWeek     = 21   // Super Bowl after postseason mapping
	PostseasonRounds   = 5    // provider postseason weeks, Pro Bowl included
	ProBowlRound       = 4    // provider postseason week that carries no QBR
	MaxTeamCodeLength  = 3    // longer codes are multi-team labels like "DEN/KC"
)

// Provider season types.
const (
	RegularSeasonType = 2
	PostseasonType    = 3
)

// Chart layout constants.
const (
	XAxisLowerBound   = -1.4
	PercentileLabelX  = -0.7
	XAxisPadding      = 0.4
	RecentGamesWindow = 30
	DefaultMinPlays   = 20
	MetricMin         = 0.0
	MetricMax         = 100.0
)

// PercentileLevels are the reference cuts drawn on every chart.
var PercentileLevels = []int{10, 25, 50, 75, 90, 98}

// ValidOutputModes lists all valid output modes.
var ValidOutputModes = map[OutputMode]struct{}{
	CSVOut:     {},
	TextOut:    {},
	JSONOut:    {},
	ParquetOut: {},
	PNGOut:     {},
	SVGOut:     {},
	HTMLOut:    {},
}

// ValidDatabaseBackends lists all valid database backends.
var ValidDatabaseBackends = map[DatabaseBackend]struct{}{
	SQLiteBackend:     {},
	MySQLBackend:      {},
	PostgreSQLBackend: {},
	RedisBackend:      {},
	NoneBackend:       {},
}
