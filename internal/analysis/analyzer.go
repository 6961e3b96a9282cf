// Package analysis orchestrates a full route safety run: geometry scan,
// external signal collection, facility discovery and risk aggregation, then
// persists the derived records in one transaction.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"route_sentinel/internal/clients/coverage"
	"route_sentinel/internal/clients/openweather"
	"route_sentinel/internal/clients/osm"
	"route_sentinel/internal/clients/places"
	"route_sentinel/internal/clients/traffic"
	"route_sentinel/internal/config"
	"route_sentinel/internal/core"
	"route_sentinel/internal/models"
)

// facilityCategories searched along every analyzed route.
var facilityCategories = []string{
	"hospital", "police", "fire_station", "gas_station", "school", "restaurant",
}

const (
	perCallTimeout   = 15 * time.Second
	providerMinDelay = 100 * time.Millisecond

	facilitySearchRadius     = 5000 // meters
	maxFacilitiesPerCategory = 10
)

// Analyzer runs the analysis pipeline against the configured providers. A
// provider without credentials is skipped, never an error: the stages that
// can run still produce a complete assessment.
type Analyzer struct {
	db       *gorm.DB
	weather  *openweather.Client
	places   *places.Client
	traffic  *traffic.Client
	osm      *osm.Client
	coverage *coverage.Estimator

	mu       sync.Mutex
	lastCall map[string]time.Time
	minDelay time.Duration
}

// New builds an analyzer wired to the providers configured via environment.
func New(db *gorm.DB) *Analyzer {
	googleKey := config.GetEnv("GOOGLE_MAPS_API_KEY", "")
	return &Analyzer{
		db:       db,
		weather:  openweather.NewClient(config.GetEnv("OPENWEATHER_API_KEY", "")),
		places:   places.NewClient(googleKey),
		traffic:  traffic.NewClient(googleKey),
		osm:      osm.NewClient(config.GetEnv("OVERPASS_ENDPOINT", "https://overpass-api.de/api/interpreter"), 25*time.Second),
		coverage: coverage.NewEstimator(),
		lastCall: make(map[string]time.Time),
		minDelay: providerMinDelay,
	}
}

// Result is the in-memory outcome of one analysis run, already persisted by
// the time Analyze returns it.
type Result struct {
	Turns      []core.TurnEvent      `json:"sharp_turns"`
	Signals    []models.SignalSample `json:"signals"`
	Facilities []core.FacilityRecord `json:"facilities"`
	Assessment core.RiskAssessment   `json:"risk_assessment"`
	DeadZones  int                   `json:"dead_zones"`
	PoorZones  int                   `json:"poor_coverage_zones"`
}

// ValidatePoints rejects tracks that cannot be analyzed: fewer than two
// points, or any coordinate outside WGS84 bounds.
func ValidatePoints(points []core.Point) error {
	if len(points) < 2 {
		return fmt.Errorf("route requires at least 2 points, got %d", len(points))
	}
	for i, p := range points {
		if math.IsNaN(p.Latitude) || math.IsNaN(p.Longitude) ||
			p.Latitude < -90 || p.Latitude > 90 ||
			p.Longitude < -180 || p.Longitude > 180 {
			return fmt.Errorf("point %d out of bounds: (%f, %f)", i, p.Latitude, p.Longitude)
		}
	}
	return nil
}

// Analyze runs the full pipeline for a route and persists every derived
// record, replacing whatever a previous run stored. Provider failures
// degrade the run (logged, stage skipped); only validation and storage
// errors fail it.
func (a *Analyzer) Analyze(ctx context.Context, route *models.Route, points []core.Point) (*Result, error) {
	if err := ValidatePoints(points); err != nil {
		return nil, err
	}

	log := logrus.WithField("route_id", route.RouteID)
	log.WithField("total_points", len(points)).Info("starting route analysis")

	turns := core.DetectSharpTurns(core.Sample(points, core.TurnSampleTarget))
	log.WithField("sharp_turns", len(turns)).Info("geometry scan complete")

	networkSignals, deadZones, poorZones := a.collectCoverage(route.RouteID, points)
	weatherSignals := a.collectWeather(ctx, route.RouteID, points)
	trafficSignals := a.collectTraffic(ctx, route.RouteID, points)
	facilities := a.collectFacilities(ctx, route.RouteID, points)

	assessment := core.ComputeRiskAssessment(turns, deadZones, poorZones)
	log.WithFields(logrus.Fields{
		"risk_points":       assessment.RiskPoints,
		"traditional_score": assessment.TraditionalScore,
		"risk_level":        assessment.RiskLevel,
	}).Info("risk assessment computed")

	signals := make([]models.SignalSample, 0, len(networkSignals)+len(weatherSignals)+len(trafficSignals))
	signals = append(signals, networkSignals...)
	signals = append(signals, weatherSignals...)
	signals = append(signals, trafficSignals...)

	result := &Result{
		Turns:      turns,
		Signals:    signals,
		Facilities: facilities,
		Assessment: assessment,
		DeadZones:  deadZones,
		PoorZones:  poorZones,
	}

	if err := a.persist(route, points, result); err != nil {
		log.WithError(err).Error("failed to persist analysis result")
		return nil, err
	}

	log.Info("route analysis persisted")
	return result, nil
}

// collectCoverage estimates network coverage at sampled points. It is fully
// offline, so it never fails and needs no tracking.
func (a *Analyzer) collectCoverage(routeRef string, points []core.Point) (signals []models.SignalSample, deadZones, poorZones int) {
	sampled := core.SampleWithCap(points, core.CoverageSampleTarget, core.CoverageCallCap)
	for _, s := range sampled {
		reading := a.coverage.Estimate(s.Point.Latitude, s.Point.Longitude)

		severity := "low"
		switch {
		case reading.IsDeadZone:
			severity = "high"
			deadZones++
		case reading.IsPoorCoverage:
			severity = "moderate"
			poorZones++
		}

		meta, _ := json.Marshal(reading)
		signals = append(signals, models.SignalSample{
			RouteRef:  routeRef,
			Kind:      models.SignalKindNetwork,
			Latitude:  s.Point.Latitude,
			Longitude: s.Point.Longitude,
			Severity:  severity,
			Metadata:  string(meta),
		})
	}
	return signals, deadZones, poorZones
}

// collectWeather samples current conditions along the route. Failed calls are
// logged and skipped so one bad point never loses the stage.
func (a *Analyzer) collectWeather(ctx context.Context, routeRef string, points []core.Point) []models.SignalSample {
	if !a.weather.Configured() {
		logrus.Info("weather provider not configured, skipping stage")
		return nil
	}

	sampled := core.SampleWithCap(points, core.WeatherSampleTarget, core.WeatherCallCap)
	signals := make([]models.SignalSample, 0, len(sampled))
	for _, s := range sampled {
		a.throttle("openweather")

		callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
		start := time.Now()
		obs, err := a.weather.GetCurrent(callCtx, s.Point.Latitude, s.Point.Longitude)
		cancel()
		a.track(routeRef, "openweather", "/data/2.5/weather", start, err)
		if err != nil {
			logrus.WithError(err).Warn("weather lookup failed, skipping point")
			continue
		}

		meta, _ := json.Marshal(obs)
		signals = append(signals, models.SignalSample{
			RouteRef:  routeRef,
			Kind:      models.SignalKindWeather,
			Latitude:  s.Point.Latitude,
			Longitude: s.Point.Longitude,
			Severity:  openweather.Severity(obs.Main),
			Metadata:  string(meta),
		})
	}
	return signals
}

// collectTraffic queries live congestion between consecutive sampled points.
func (a *Analyzer) collectTraffic(ctx context.Context, routeRef string, points []core.Point) []models.SignalSample {
	if !a.traffic.Configured() {
		logrus.Info("traffic provider not configured, skipping stage")
		return nil
	}

	sampled := core.Sample(points, core.TrafficSampleTarget)
	signals := make([]models.SignalSample, 0)
	for i := 1; i < len(sampled); i++ {
		from, to := sampled[i-1].Point, sampled[i].Point
		a.throttle("google_traffic")

		callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
		start := time.Now()
		segment, err := a.traffic.GetSegment(callCtx, from.Latitude, from.Longitude, to.Latitude, to.Longitude)
		cancel()
		a.track(routeRef, "google_traffic", "/maps/api/directions/json", start, err)
		if err != nil {
			logrus.WithError(err).Warn("traffic lookup failed, skipping segment")
			continue
		}

		severity := "low"
		switch segment.CongestionLevel {
		case "HEAVY":
			severity = "high"
		case "MODERATE":
			severity = "moderate"
		}

		meta, _ := json.Marshal(segment)
		signals = append(signals, models.SignalSample{
			RouteRef:  routeRef,
			Kind:      models.SignalKindEnvironmental,
			Latitude:  to.Latitude,
			Longitude: to.Longitude,
			Severity:  severity,
			Metadata:  string(meta),
		})
	}
	return signals
}

// collectFacilities searches both providers around sampled points, merges the
// overlapping batches by external ID, enriches the survivors with detail
// lookups and caps each category.
func (a *Analyzer) collectFacilities(ctx context.Context, routeRef string, points []core.Point) []core.FacilityRecord {
	searchPoints := core.SampleWithCap(points, core.FacilitySampleTarget, core.FacilitySearchCap)
	if len(searchPoints) == 0 {
		return nil
	}

	batches := make([][]core.FacilityRecord, 0)
	for _, category := range facilityCategories {
		for _, sp := range searchPoints {
			if a.places.Configured() {
				batch := a.searchPlaces(ctx, routeRef, category, sp.Point)
				if len(batch) > 0 {
					batches = append(batches, batch)
				}
			}
			if amenity, ok := osm.AmenityFor(category); ok {
				batch := a.searchOverpass(ctx, routeRef, category, amenity, sp.Point)
				if len(batch) > 0 {
					batches = append(batches, batch)
				}
			}
		}
	}

	merged := core.MergeFacilities(batches...)
	merged = core.CapPerCategory(merged, maxFacilitiesPerCategory)

	// Detail lookups only for the records that survived the cap.
	if a.places.Configured() {
		for i, rec := range merged {
			if rec.Source != "google_places" {
				continue
			}
			a.throttle("google_places")

			callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
			start := time.Now()
			details, err := a.places.GetDetails(callCtx, rec.ExternalID)
			cancel()
			a.track(routeRef, "google_places", "/maps/api/place/details/json", start, err)
			if err != nil {
				logrus.WithError(err).Warn("place details lookup failed, keeping base record")
				continue
			}

			schedule := make([]core.SchedulePeriod, 0, len(details.Periods))
			for _, p := range details.Periods {
				schedule = append(schedule, core.SchedulePeriod{Open: p.Open, Close: p.Close})
			}
			merged[i] = core.EnrichFacility(rec, details.Phone, details.Website, schedule)
		}
	}

	logrus.WithFields(logrus.Fields{
		"route_id":   routeRef,
		"facilities": len(merged),
	}).Info("facility discovery complete")
	return merged
}

func (a *Analyzer) searchPlaces(ctx context.Context, routeRef, category string, p core.Point) []core.FacilityRecord {
	a.throttle("google_places")

	callCtx, cancel := context.WithTimeout(ctx, perCallTimeout)
	start := time.Now()
	results, err := a.places.NearbySearch(callCtx, p.Latitude, p.Longitude, facilitySearchRadius, category)
	cancel()
	a.track(routeRef, "google_places", "/maps/api/place/nearbysearch/json", start, err)
	if err != nil {
		logrus.WithError(err).WithField("category", category).Warn("places search failed, skipping point")
		return nil
	}

	records := make([]core.FacilityRecord, 0, len(results))
	for _, r := range results {
		records = append(records, core.FacilityRecord{
			ExternalID: r.PlaceID,
			Name:       r.Name,
			Category:   category,
			Latitude:   r.Latitude,
			Longitude:  r.Longitude,
			Address:    r.Vicinity,
			Rating:     r.Rating,
			Source:     "google_places",
		})
	}
	return records
}

func (a *Analyzer) searchOverpass(ctx context.Context, routeRef, category, amenity string, p core.Point) []core.FacilityRecord {
	a.throttle("overpass")

	start := time.Now()
	amenities, err := a.osm.FindAmenities(ctx, p.Latitude, p.Longitude, facilitySearchRadius, amenity)
	a.track(routeRef, "overpass", "/api/interpreter", start, err)
	if err != nil {
		logrus.WithError(err).WithField("amenity", amenity).Warn("overpass search failed, skipping point")
		return nil
	}

	records := make([]core.FacilityRecord, 0, len(amenities))
	for _, am := range amenities {
		records = append(records, core.FacilityRecord{
			ExternalID: am.ExternalID,
			Name:       am.Name,
			Category:   category,
			Latitude:   am.Latitude,
			Longitude:  am.Longitude,
			Phone:      am.Phone,
			Website:    am.Website,
			Is24x7:     am.OpeningHours == "24/7",
			Source:     "overpass",
		})
	}
	return records
}

// persist replaces every derived record for the route in one transaction and
// flips the route status to analyzed.
func (a *Analyzer) persist(route *models.Route, points []core.Point, result *Result) error {
	return a.db.Transaction(func(tx *gorm.DB) error {
		derived := []interface{}{
			&models.RoutePoint{}, &models.SharpTurn{}, &models.SignalSample{},
			&models.Facility{}, &models.RiskAssessment{},
		}
		for _, model := range derived {
			if err := tx.Where("route_ref = ?", route.RouteID).Delete(model).Error; err != nil {
				return fmt.Errorf("failed to clear previous records: %w", err)
			}
		}

		routePoints := make([]models.RoutePoint, 0, len(points))
		for i, p := range points {
			routePoints = append(routePoints, models.RoutePoint{
				RouteRef:  route.RouteID,
				Seq:       i,
				Latitude:  p.Latitude,
				Longitude: p.Longitude,
			})
		}
		if err := tx.CreateInBatches(routePoints, 500).Error; err != nil {
			return fmt.Errorf("failed to store route points: %w", err)
		}

		if len(result.Turns) > 0 {
			turns := make([]models.SharpTurn, 0, len(result.Turns))
			for _, t := range result.Turns {
				turns = append(turns, models.SharpTurn{
					RouteRef:         route.RouteID,
					Latitude:         t.Location.Latitude,
					Longitude:        t.Location.Longitude,
					Angle:            t.Angle,
					Classification:   t.Classification,
					DangerLevel:      t.DangerLevel,
					RecommendedSpeed: t.RecommendedSpeed,
					PointIndex:       t.SourceIndex,
				})
			}
			if err := tx.Create(&turns).Error; err != nil {
				return fmt.Errorf("failed to store sharp turns: %w", err)
			}
		}

		if len(result.Signals) > 0 {
			if err := tx.CreateInBatches(result.Signals, 200).Error; err != nil {
				return fmt.Errorf("failed to store signals: %w", err)
			}
		}

		if len(result.Facilities) > 0 {
			facilities := make([]models.Facility, 0, len(result.Facilities))
			for _, f := range result.Facilities {
				facilities = append(facilities, models.Facility{
					RouteRef:   route.RouteID,
					ExternalID: f.ExternalID,
					Name:       f.Name,
					Category:   f.Category,
					Latitude:   f.Latitude,
					Longitude:  f.Longitude,
					Address:    f.Address,
					Phone:      f.Phone,
					Website:    f.Website,
					Rating:     f.Rating,
					Is24x7:     f.Is24x7,
					Source:     f.Source,
					OrderSeen:  f.OrderSeen,
				})
			}
			if err := tx.Create(&facilities).Error; err != nil {
				return fmt.Errorf("failed to store facilities: %w", err)
			}
		}

		breakdown, err := json.Marshal(result.Assessment.Breakdown)
		if err != nil {
			return fmt.Errorf("failed to encode scoring breakdown: %w", err)
		}
		assessment := models.RiskAssessment{
			RouteRef:           route.RouteID,
			TotalPenaltyPoints: result.Assessment.TotalPenaltyPoints,
			RiskPoints:         result.Assessment.RiskPoints,
			TraditionalScore:   result.Assessment.TraditionalScore,
			RiskLevel:          result.Assessment.RiskLevel,
			RiskCategory:       result.Assessment.RiskCategory,
			ColorIndicator:     result.Assessment.ColorIndicator,
			Breakdown:          string(breakdown),
		}
		if err := tx.Create(&assessment).Error; err != nil {
			return fmt.Errorf("failed to store risk assessment: %w", err)
		}

		route.TotalPoints = len(points)
		route.Status = "analyzed"
		if err := tx.Save(route).Error; err != nil {
			return fmt.Errorf("failed to update route: %w", err)
		}
		return nil
	})
}

// throttle enforces the minimum delay between calls to one provider.
func (a *Analyzer) throttle(provider string) {
	a.mu.Lock()
	last, seen := a.lastCall[provider]
	wait := time.Duration(0)
	if seen {
		if elapsed := time.Since(last); elapsed < a.minDelay {
			wait = a.minDelay - elapsed
		}
	}
	a.lastCall[provider] = time.Now().Add(wait)
	a.mu.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}
}

// track records one outbound provider call for quota auditing. Logging
// failures must never fail the analysis, so errors are only warned about.
func (a *Analyzer) track(routeRef, provider, endpoint string, start time.Time, callErr error) {
	entry := models.APICallLog{
		RouteRef:     routeRef,
		Provider:     provider,
		Endpoint:     endpoint,
		ResponseTime: time.Since(start).Seconds(),
		Success:      callErr == nil,
	}
	if callErr != nil {
		entry.ErrorMessage = callErr.Error()
	} else {
		entry.StatusCode = 200
	}
	if err := a.db.Create(&entry).Error; err != nil {
		logrus.WithError(err).Warn("failed to record API call")
	}
}
