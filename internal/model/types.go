package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunRecord is the stored summary of one run: its inputs, derived encoding
// and the best solution it reached. Populations are never stored.
type RunRecord struct {
	VersionedRecord
	ID                   string  `json:"id"`
	Name                 string  `json:"name,omitempty"`
	CreatedAtUTC         string  `json:"created_at_utc"`
	PopulationSize       int     `json:"population_size"`
	Left                 float64 `json:"left"`
	Right                float64 `json:"right"`
	A                    float64 `json:"a"`
	B                    float64 `json:"b"`
	C                    float64 `json:"c"`
	Precision            int     `json:"precision"`
	Length               int     `json:"length"`
	CrossoverProbability float64 `json:"crossover_probability"`
	MutationProbability  float64 `json:"mutation_probability"`
	Steps                int     `json:"steps"`
	Seed                 int64   `json:"seed"`
	EliteIdentity        string  `json:"elite_identity"`
	SearchMode           string  `json:"search_mode"`
	Generations          int     `json:"generations"`
	Status               string  `json:"status"`
	Error                string  `json:"error,omitempty"`
	FinalX               float64 `json:"final_x"`
	FinalMax             float64 `json:"final_max"`
	FinalAvg             float64 `json:"final_avg"`
}

// GenerationSummary is one "X | MAX | AVG" line of a run plus the spread
// of the population's fitness.
type GenerationSummary struct {
	Generation int     `json:"generation"`
	Elite      string  `json:"elite"`
	X          float64 `json:"x"`
	Max        float64 `json:"max"`
	Avg        float64 `json:"avg"`
	Min        float64 `json:"min"`
	StdDev     float64 `json:"std_dev"`
}
