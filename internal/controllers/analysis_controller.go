package controllers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-kml/v2"

	"route_sentinel/internal/config"
	"route_sentinel/internal/core"
	"route_sentinel/internal/geoindex"
	"route_sentinel/internal/models"
)

// GetRouteOverview returns the stored risk assessment with its scoring
// breakdown plus per-kind record statistics for one route.
func GetRouteOverview(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	var assessment models.RiskAssessment
	if err := config.DB.Where("route_ref = ?", route.RouteID).First(&assessment).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Route has no risk assessment"})
		return
	}

	var breakdown []core.BreakdownItem
	if err := json.Unmarshal([]byte(assessment.Breakdown), &breakdown); err != nil {
		logrus.WithError(err).Error("GetRouteOverview: corrupt scoring breakdown")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Corrupt scoring breakdown"})
		return
	}

	var turnCount, facilityCount, apiCallCount int64
	config.DB.Model(&models.SharpTurn{}).Where("route_ref = ?", route.RouteID).Count(&turnCount)
	config.DB.Model(&models.Facility{}).Where("route_ref = ?", route.RouteID).Count(&facilityCount)
	config.DB.Model(&models.APICallLog{}).Where("route_ref = ?", route.RouteID).Count(&apiCallCount)

	signalCounts := gin.H{}
	for _, kind := range []string{models.SignalKindNetwork, models.SignalKindWeather, models.SignalKindEnvironmental} {
		var n int64
		config.DB.Model(&models.SignalSample{}).
			Where("route_ref = ? AND kind = ?", route.RouteID, kind).Count(&n)
		signalCounts[kind] = n
	}

	c.JSON(http.StatusOK, gin.H{
		"route": toRouteResponse(*route),
		"risk_assessment": gin.H{
			"total_penalty_points": assessment.TotalPenaltyPoints,
			"risk_points":          assessment.RiskPoints,
			"traditional_score":    assessment.TraditionalScore,
			"risk_level":           assessment.RiskLevel,
			"risk_category":        assessment.RiskCategory,
			"color_indicator":      assessment.ColorIndicator,
			"scoring_breakdown":    breakdown,
		},
		"statistics": gin.H{
			"total_points": route.TotalPoints,
			"sharp_turns":  turnCount,
			"signals":      signalCounts,
			"facilities":   facilityCount,
			"api_calls":    apiCallCount,
		},
	})
}

// GetRouteTurns returns the stored turn events, most severe first, with
// per-danger-level counts.
func GetRouteTurns(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	var turns []models.SharpTurn
	if err := config.DB.Where("route_ref = ?", route.RouteID).
		Order("angle DESC").Find(&turns).Error; err != nil {
		logrus.WithError(err).Error("GetRouteTurns: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	byDanger := map[string]int{}
	for _, t := range turns {
		byDanger[t.DangerLevel]++
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id":        route.RouteID,
		"sharp_turns":     turns,
		"count":           len(turns),
		"by_danger_level": byDanger,
	})
}

// GetRouteSignals returns signal samples for a route, optionally filtered by
// kind (network, weather, environmental).
func GetRouteSignals(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	query := config.DB.Where("route_ref = ?", route.RouteID)
	if kind := c.Query("kind"); kind != "" {
		switch kind {
		case models.SignalKindNetwork, models.SignalKindWeather, models.SignalKindEnvironmental:
			query = query.Where("kind = ?", kind)
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown signal kind: " + kind})
			return
		}
	}

	var signals []models.SignalSample
	if err := query.Find(&signals).Error; err != nil {
		logrus.WithError(err).Error("GetRouteSignals: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id": route.RouteID,
		"signals":  signals,
		"count":    len(signals),
	})
}

// GetRouteFacilities returns the merged facility set for a route, optionally
// filtered by category.
func GetRouteFacilities(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	query := config.DB.Where("route_ref = ?", route.RouteID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var facilities []models.Facility
	if err := query.Order("order_seen ASC").Find(&facilities).Error; err != nil {
		logrus.WithError(err).Error("GetRouteFacilities: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	alwaysOpen := 0
	for _, f := range facilities {
		if f.Is24x7 {
			alwaysOpen++
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"route_id":   route.RouteID,
		"facilities": facilities,
		"count":      len(facilities),
		"open_24x7":  alwaysOpen,
	})
}

// GetNearestFacilities answers "what is closest to this point" using an
// R-Tree built over the route's facilities.
func GetNearestFacilities(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lng, errLng := strconv.ParseFloat(c.Query("lng"), 64)
	if errLat != nil || errLng != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lng query parameters are required"})
		return
	}
	limit := 5
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 50 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 50"})
			return
		}
		limit = parsed
	}

	query := config.DB.Where("route_ref = ?", route.RouteID)
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var facilities []models.Facility
	if err := query.Find(&facilities).Error; err != nil {
		logrus.WithError(err).Error("GetNearestFacilities: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	nearest := geoindex.New(facilities).Nearest(lat, lng, limit)
	c.JSON(http.StatusOK, gin.H{
		"route_id": route.RouteID,
		"origin":   gin.H{"lat": lat, "lng": lng},
		"nearest":  nearest,
		"count":    len(nearest),
	})
}

// ExportRouteKML renders the route track, its sharp turns and facilities as a
// KML document for map viewers.
func ExportRouteKML(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	var points []models.RoutePoint
	if err := config.DB.Where("route_ref = ?", route.RouteID).
		Order("seq ASC").Find(&points).Error; err != nil {
		logrus.WithError(err).Error("ExportRouteKML: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var turns []models.SharpTurn
	config.DB.Where("route_ref = ?", route.RouteID).Order("angle DESC").Find(&turns)
	var facilities []models.Facility
	config.DB.Where("route_ref = ?", route.RouteID).Find(&facilities)

	coords := make([]kml.Coordinate, 0, len(points))
	for _, p := range points {
		coords = append(coords, kml.Coordinate{Lon: p.Longitude, Lat: p.Latitude})
	}

	children := []kml.Element{
		kml.Name(route.Name),
		kml.Description(route.Description),
		kml.Placemark(
			kml.Name("Track"),
			kml.LineString(kml.Coordinates(coords...)),
		),
	}
	for i, t := range turns {
		children = append(children, kml.Placemark(
			kml.Name(fmt.Sprintf("Turn %d: %s", i+1, t.Classification)),
			kml.Description(fmt.Sprintf("%.2f°, danger %s, max %d km/h", t.Angle, t.DangerLevel, t.RecommendedSpeed)),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: t.Longitude, Lat: t.Latitude})),
		))
	}
	for _, f := range facilities {
		children = append(children, kml.Placemark(
			kml.Name(f.Name),
			kml.Description(f.Category),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: f.Longitude, Lat: f.Latitude})),
		))
	}

	doc := kml.KML(kml.Document(children...))

	c.Header("Content-Type", "application/vnd.google-earth.kml+xml")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", route.RouteID+".kml"))
	c.Status(http.StatusOK)
	if err := doc.WriteIndent(c.Writer, "", "  "); err != nil {
		logrus.WithError(err).Error("ExportRouteKML: failed to write document")
	}
}

// HealthCheck reports service and database health.
func HealthCheck(c *gin.Context) {
	database := "up"
	if sqlDB, err := config.DB.DB(); err != nil || sqlDB.Ping() != nil {
		database = "down"
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": database})
}
