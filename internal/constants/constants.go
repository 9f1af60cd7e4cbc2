package constants

const (
	AppName           = "easydiary"
	Version           = "v2.0.0"
	DefaultConfigDir  = "~/.config/easydiary"
	DefaultDBPath     = "~/.config/easydiary/easydiary.db"
	DefaultConfigFile = "~/.config/easydiary/config.yaml"
	SettingsFileName  = "settings.yaml"

	// DateFormat is the natural key format of a diary day (YYYY-MM-DD)
	DateFormat = "2006-01-02"
	// MonthFormat is used by the calendar filter (YYYY-MM)
	MonthFormat = "2006-01"

	// Mood levels in the normalized layout
	MinMood     = 0
	MaxMood     = 4
	DefaultMood = 2

	// Legacy flat layout used 1-10, with 5 assumed when the column is unreadable
	LegacyDefaultMood = 5

	// PlanSeparator joins tomorrow-plan lines into a single column
	PlanSeparator = "\n"

	DefaultWorkers = 4

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "easydiary-"
	BackupFileSuffix = ".db"
)

// DefaultCategory describes a category seeded on store creation.
type DefaultCategory struct {
	Name        string
	HasText     bool
	HasDuration bool
	HasMedia    bool
}

// DefaultCategories are inserted in this order, so they receive ids 1, 2, 3.
// The legacy migration refers to those ids by value; reordering this list
// requires updating migration.LegacyLifeID and friends.
var DefaultCategories = []DefaultCategory{
	{Name: "Life", HasText: true},
	{Name: "Study", HasText: true, HasDuration: true},
	{Name: "Misc", HasText: true},
}
