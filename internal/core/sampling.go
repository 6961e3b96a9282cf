package core

// Point is a raw GPS coordinate handed to the analysis core. The ingestion
// layer is responsible for bounds validation before handoff.
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Stage targets and caps for the point subsampling shared by every analysis
// stage. The stride formula is uniform; only target and cap differ per stage.
const (
	TurnSampleTarget = 100

	WeatherSampleTarget = 10
	WeatherCallCap      = 10

	CoverageSampleTarget = 20
	CoverageCallCap      = 20

	FacilitySampleTarget = 10
	FacilitySearchCap    = 5

	TrafficSampleTarget = 10
)

// Sampled pairs a selected point with its index in the original sequence.
type Sampled struct {
	Point       Point
	SourceIndex int
}

// Sample selects a deterministic subsequence of points using a fixed stride
// step = max(1, len(points)/target). Index 0 is always included and original
// order is preserved. target <= 0 falls back to stride 1 (all points).
func Sample(points []Point, target int) []Sampled {
	if len(points) == 0 {
		return nil
	}

	step := 1
	if target > 0 && len(points)/target > 1 {
		step = len(points) / target
	}

	out := make([]Sampled, 0, len(points)/step+1)
	for i := 0; i < len(points); i += step {
		out = append(out, Sampled{Point: points[i], SourceIndex: i})
	}
	return out
}

// SampleWithCap applies Sample and then truncates to at most cap points,
// bounding the number of external calls a stage may issue.
func SampleWithCap(points []Point, target, cap int) []Sampled {
	sampled := Sample(points, target)
	if cap > 0 && len(sampled) > cap {
		sampled = sampled[:cap]
	}
	return sampled
}
