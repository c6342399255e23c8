package model

// Summary is the aggregated document written by the summary builder
type Summary struct {
	GeneratedAt    string `json:"generated_at"`
	TotalRows      int    `json:"total_rows"`
	UniquePlayers  int    `json:"unique_players"`
	LatestByPlayer []Row  `json:"latest_by_player"`
	Counts         Counts `json:"counts"`
}

// Counts maps each tabulated column to answer -> occurrences over the
// latest row of every player.
type Counts struct {
	Q2Time   map[string]int `json:"Q2_time"`
	Q3Time   map[string]int `json:"Q3_time"`
	Q4Day    map[string]int `json:"Q4_day"`
	Language map[string]int `json:"language"`
}

// CountColumns lists the tabulated columns in output order.
var CountColumns = []string{ColQ2Time, ColQ3Time, ColQ4Day, ColLanguage}
