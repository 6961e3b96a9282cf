package core

import (
	"math"
	"sort"
)

// MaxReportedTurns bounds storage and rendering cost: only the most severe
// turns are kept per analysis run.
const MaxReportedTurns = 50

// MinReportedAngle is the lowest turn angle considered significant. Smaller
// deviations are not reported as turn events at all.
const MinReportedAngle = 45.0

// TurnEvent is one significant direction change at a route vertex.
type TurnEvent struct {
	Location         Point   `json:"location"`
	Angle            float64 `json:"angle"`
	Classification   string  `json:"classification"`
	DangerLevel      string  `json:"danger_level"`
	RecommendedSpeed int     `json:"recommended_speed"`
	SourceIndex      int     `json:"source_index"`
}

// turnClass is one rung of the classification ladder. The ladder is ordered
// most severe first and evaluated top-down, first match wins.
type turnClass struct {
	MinAngle         float64
	Classification   string
	DangerLevel      string
	RecommendedSpeed int
}

var turnLadder = []turnClass{
	{90, "EXTREME BLIND SPOT", "CRITICAL", 15},
	{80, "HIGH-RISK BLIND SPOT", "EXTREME", 20},
	{70, "BLIND SPOT", "HIGH", 25},
	{60, "HIGH-ANGLE TURN", "MEDIUM", 30},
	{45, "SHARP TURN", "LOW", 40},
}

// Bearing computes the initial great-circle compass bearing from p1 to p2 in
// degrees [0, 360). Spherical model; the result depends only on the
// coordinates in radians, not on the Earth radius.
func Bearing(p1, p2 Point) float64 {
	lat1 := p1.Latitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	dlon := (p2.Longitude - p1.Longitude) * math.Pi / 180

	y := math.Sin(dlon) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dlon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(bearing+360, 360)
}

// TurnAngle computes the absolute deviation between the bearings p1->p2 and
// p2->p3, reflected into [0, 180].
func TurnAngle(p1, p2, p3 Point) float64 {
	angle := math.Abs(Bearing(p2, p3) - Bearing(p1, p2))
	if angle > 180 {
		angle = 360 - angle
	}
	return angle
}

// ClassifyTurn maps an angle onto the classification ladder. Angles below
// MinReportedAngle return ok=false and are not reported.
func ClassifyTurn(angle float64) (classification, dangerLevel string, recommendedSpeed int, ok bool) {
	for _, c := range turnLadder {
		if angle >= c.MinAngle {
			return c.Classification, c.DangerLevel, c.RecommendedSpeed, true
		}
	}
	return "", "", 0, false
}

// DetectSharpTurns walks the sampled point sequence with a sliding window of
// three consecutive points in a single left-to-right pass, keeps the turns at
// or above MinReportedAngle, sorts them by angle descending and truncates to
// MaxReportedTurns. Fewer than three points yields an empty result. A
// malformed point (NaN/Inf coordinate) skips that triple, never the stage.
func DetectSharpTurns(sampled []Sampled) []TurnEvent {
	if len(sampled) < 3 {
		return nil
	}

	turns := make([]TurnEvent, 0)
	for i := 1; i < len(sampled)-1; i++ {
		p1, p2, p3 := sampled[i-1].Point, sampled[i].Point, sampled[i+1].Point
		if !finitePoint(p1) || !finitePoint(p2) || !finitePoint(p3) {
			continue
		}

		angle := TurnAngle(p1, p2, p3)
		classification, dangerLevel, speed, ok := ClassifyTurn(angle)
		if !ok {
			continue
		}

		turns = append(turns, TurnEvent{
			Location:         p2,
			Angle:            math.Round(angle*100) / 100,
			Classification:   classification,
			DangerLevel:      dangerLevel,
			RecommendedSpeed: speed,
			SourceIndex:      sampled[i].SourceIndex,
		})
	}

	// The only intentional reordering in the pipeline.
	sort.SliceStable(turns, func(i, j int) bool {
		return turns[i].Angle > turns[j].Angle
	})

	if len(turns) > MaxReportedTurns {
		turns = turns[:MaxReportedTurns]
	}
	return turns
}

func finitePoint(p Point) bool {
	return !math.IsNaN(p.Latitude) && !math.IsInf(p.Latitude, 0) &&
		!math.IsNaN(p.Longitude) && !math.IsInf(p.Longitude, 0)
}
