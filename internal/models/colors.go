package models

// Graph highlight colors used for provenance-specific rendering
// overrides (written into the custom_color property).
const (
	ColorDefault    = "#94a3b8"
	ColorConflict   = "#f43f5e"
	ColorVerified   = "#10b981"
	ColorEntity     = "#06b6d4"
	ColorEvent      = "#f59e0b"
	ColorSelected   = "#e879f9"
	ColorSuggestion = "#facc15"
)

// FileColors is the fixed visualization palette assigned to evidence
// files in upload order, cycling when exhausted.
var FileColors = []string{
	"#22d3ee", // cyan
	"#a78bfa", // violet
	"#fbbf24", // amber
	"#34d399", // emerald
	"#f472b6", // pink
}
