package controllers

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/twpayne/go-polyline"
	"gorm.io/gorm"

	"route_sentinel/internal/analysis"
	"route_sentinel/internal/config"
	"route_sentinel/internal/core"
	"route_sentinel/internal/models"

	"github.com/twpayne/go-geom"
	gjson "github.com/twpayne/go-geom/encoding/geojson"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// routeAnalyzer is injected once at startup; handlers share it.
var routeAnalyzer *analysis.Analyzer

// SetAnalyzer wires the analysis pipeline into the HTTP handlers.
func SetAnalyzer(a *analysis.Analyzer) {
	routeAnalyzer = a
}

// RouteResponse mirrors models.Route with Geometry rendered as GeoJSON.
type RouteResponse struct {
	RouteID     string    `json:"route_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	FromAddress string    `json:"from_address"`
	ToAddress   string    `json:"to_address"`
	Distance    string    `json:"distance"`
	Duration    string    `json:"duration"`
	TotalPoints int       `json:"total_points"`
	Status      string    `json:"status"`
	Geometry    string    `json:"geometry,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toRouteResponse(route models.Route) RouteResponse {
	jsonGeom, _ := convertWKBToGeoJSON(route.Geometry)
	return RouteResponse{
		RouteID:     route.RouteID,
		Name:        route.Name,
		Description: route.Description,
		FromAddress: route.FromAddress,
		ToAddress:   route.ToAddress,
		Distance:    route.Distance,
		Duration:    route.Duration,
		TotalPoints: route.TotalPoints,
		Status:      route.Status,
		Geometry:    jsonGeom,
		CreatedAt:   route.CreatedAt,
		UpdatedAt:   route.UpdatedAt,
	}
}

// pointsToWKB encodes the track as a WKB LINESTRING (SRID 4326).
func pointsToWKB(points []core.Point) ([]byte, error) {
	coords := make([]geom.Coord, len(points))
	for i, p := range points {
		coords[i] = geom.Coord{p.Longitude, p.Latitude}
	}
	ls := geom.NewLineString(geom.XY)
	if _, err := ls.SetCoords(coords); err != nil {
		return nil, err
	}
	ls.SetSRID(4326)
	return wkb.Marshal(ls, binary.LittleEndian)
}

// convertWKBToGeoJSON converts WKB bytes into a GeoJSON string
func convertWKBToGeoJSON(wkbBytes []byte) (string, error) {
	if len(wkbBytes) == 0 {
		return "", nil
	}
	g, err := wkb.Unmarshal(wkbBytes)
	if err != nil {
		return "", err
	}
	b, err := gjson.Marshal(g)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// trackLengthKm sums the great-circle length of the track.
func trackLengthKm(points []core.Point) float64 {
	total := 0.0
	for i := 1; i < len(points); i++ {
		total += haversineKm(points[i-1], points[i])
	}
	return total
}

func haversineKm(p1, p2 core.Point) float64 {
	const earthRadius = 6371.0
	rlat1 := p1.Latitude * math.Pi / 180
	rlat2 := p2.Latitude * math.Pi / 180
	dlat := (p2.Latitude - p1.Latitude) * math.Pi / 180
	dlon := (p2.Longitude - p1.Longitude) * math.Pi / 180

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(rlat1)*math.Cos(rlat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}

// CreateRoute ingests a GPS track (a point array or an encoded polyline),
// stores it and runs the full analysis pipeline before responding.
func CreateRoute(c *gin.Context) {
	var input struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		FromAddress string `json:"from_address"`
		ToAddress   string `json:"to_address"`
		Points      []struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"points"`
		EncodedPolyline string `json:"encoded_polyline"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		logrus.WithError(err).Warn("CreateRoute: invalid input payload")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var points []core.Point
	switch {
	case len(input.Points) > 0:
		points = make([]core.Point, 0, len(input.Points))
		for _, p := range input.Points {
			points = append(points, core.Point{Latitude: p.Lat, Longitude: p.Lng})
		}
	case input.EncodedPolyline != "":
		coords, _, err := polyline.DecodeCoords([]byte(input.EncodedPolyline))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid encoded polyline: " + err.Error()})
			return
		}
		points = make([]core.Point, 0, len(coords))
		for _, coord := range coords {
			points = append(points, core.Point{Latitude: coord[0], Longitude: coord[1]})
		}
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Either points or encoded_polyline is required"})
		return
	}

	if err := analysis.ValidatePoints(points); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	wkbGeom, err := pointsToWKB(points)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid geometry: " + err.Error()})
		return
	}

	lengthKm := trackLengthKm(points)
	route := models.Route{
		RouteID:     uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		FromAddress: input.FromAddress,
		ToAddress:   input.ToAddress,
		Distance:    fmt.Sprintf("%.1f km", lengthKm),
		Duration:    fmt.Sprintf("%.0f mins", lengthKm/40*60),
		TotalPoints: len(points),
		Status:      "pending",
		Geometry:    wkbGeom,
	}
	if err := config.DB.Create(&route).Error; err != nil {
		logrus.WithError(err).Error("CreateRoute: failed to store route")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Create route failed: " + err.Error()})
		return
	}

	result, err := routeAnalyzer.Analyze(c.Request.Context(), &route, points)
	if err != nil {
		route.Status = "failed"
		config.DB.Save(&route)
		logrus.WithError(err).Error("CreateRoute: analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Analysis failed: " + err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"route":           toRouteResponse(route),
		"risk_assessment": result.Assessment,
		"sharp_turns":     len(result.Turns),
		"signals":         len(result.Signals),
		"facilities":      len(result.Facilities),
	})
}

// ListRoutes returns all stored routes, newest first.
func ListRoutes(c *gin.Context) {
	var routes []models.Route
	if err := config.DB.Order("created_at DESC").Find(&routes).Error; err != nil {
		logrus.WithError(err).Error("ListRoutes: database error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	routeResponses := make([]RouteResponse, 0, len(routes))
	for _, r := range routes {
		routeResponses = append(routeResponses, toRouteResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"routes": routeResponses, "count": len(routeResponses)})
}

// findRoute loads a route by its public identifier, writing the error
// response itself when the lookup fails.
func findRoute(c *gin.Context) (*models.Route, bool) {
	var route models.Route
	if err := config.DB.Where("route_id = ?", c.Param("id")).First(&route).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
		} else {
			logrus.WithError(err).Error("findRoute: database error")
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return nil, false
	}
	return &route, true
}

// GetRoute returns a single route with its GeoJSON geometry.
func GetRoute(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"route": toRouteResponse(*route)})
}

// DeleteRoute removes a route and every derived record.
func DeleteRoute(c *gin.Context) {
	route, ok := findRoute(c)
	if !ok {
		return
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		derived := []interface{}{
			&models.RoutePoint{}, &models.SharpTurn{}, &models.SignalSample{},
			&models.Facility{}, &models.RiskAssessment{}, &models.APICallLog{},
		}
		for _, model := range derived {
			if err := tx.Where("route_ref = ?", route.RouteID).Delete(model).Error; err != nil {
				return err
			}
		}
		return tx.Delete(route).Error
	})
	if err != nil {
		logrus.WithError(err).Error("DeleteRoute: transaction failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete route: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Route deleted successfully"})
}
