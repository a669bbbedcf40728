package stats

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"genetics/internal/model"
)

type SeriesPoint struct {
	Generation int     `json:"generation"`
	Value      float64 `json:"value"`
}

// HistorySummary condenses a run's MAX column.
type HistorySummary struct {
	Generations int     `json:"generations"`
	InitialMax  float64 `json:"initial_max"`
	FinalMax    float64 `json:"final_max"`
	BestMax     float64 `json:"best_max"`
	MaxMean     float64 `json:"max_mean"`
	MaxStd      float64 `json:"max_std"`
	FinalAvg    float64 `json:"final_avg"`
	Improvement float64 `json:"improvement"`
	// Regressions counts generations whose MAX fell below the previous one;
	// with a preserved elite it stays zero.
	Regressions int `json:"regressions"`
}

func SummarizeHistory(history []model.GenerationSummary) HistorySummary {
	if len(history) == 0 {
		return HistorySummary{}
	}
	best := MaxColumn(history)
	summary := HistorySummary{
		Generations: len(history),
		InitialMax:  best[0],
		FinalMax:    best[len(best)-1],
		BestMax:     floats.Max(best),
		FinalAvg:    history[len(history)-1].Avg,
	}
	summary.Improvement = summary.FinalMax - summary.InitialMax
	if len(best) > 1 {
		summary.MaxMean, summary.MaxStd = stat.MeanStdDev(best, nil)
	} else {
		summary.MaxMean = best[0]
	}
	for i := 1; i < len(best); i++ {
		if best[i] < best[i-1] {
			summary.Regressions++
		}
	}
	return summary
}

func MaxColumn(history []model.GenerationSummary) []float64 {
	out := make([]float64, len(history))
	for i, s := range history {
		out[i] = s.Max
	}
	return out
}

func AvgColumn(history []model.GenerationSummary) []float64 {
	out := make([]float64, len(history))
	for i, s := range history {
		out[i] = s.Avg
	}
	return out
}

// Series pairs values with 1-based generation numbers.
func Series(values []float64) []SeriesPoint {
	points := make([]SeriesPoint, len(values))
	for i, v := range values {
		points[i] = SeriesPoint{Generation: i + 1, Value: v}
	}
	return points
}

// AverageSeries averages several runs generation by generation. Runs of
// different length contribute only to the generations they reached.
func AverageSeries(lists [][]float64) []SeriesPoint {
	points := make([]SeriesPoint, 0, 64)
	for gen := 0; ; gen++ {
		values := make([]float64, 0, len(lists))
		for _, list := range lists {
			if gen < len(list) {
				values = append(values, list[gen])
			}
		}
		if len(values) == 0 {
			break
		}
		points = append(points, SeriesPoint{Generation: gen + 1, Value: stat.Mean(values, nil)})
	}
	return points
}
