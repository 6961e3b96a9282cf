// routecli analyzes GPS tracks from the command line. The analyze command is
// fully offline: geometry and coverage stages only, no providers and no
// database.
package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"route_sentinel/internal/analysis"
	"route_sentinel/internal/clients/coverage"
	"route_sentinel/internal/config"
	"route_sentinel/internal/controllers"
	"route_sentinel/internal/core"
	"route_sentinel/internal/logger"
	"route_sentinel/internal/middleware"
	"route_sentinel/internal/routes"
)

var csvPath string

var rootCmd = &cobra.Command{
	Use:   "routecli",
	Short: "Route safety analysis toolkit",
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a CSV track (lat,lng per line) offline",
	RunE: func(cmd *cobra.Command, args []string) error {
		points, skipped, err := readTrack(csvPath)
		if err != nil {
			return err
		}
		if skipped > 0 {
			logrus.WithField("skipped", skipped).Warn("malformed rows dropped")
		}
		if err := analysis.ValidatePoints(points); err != nil {
			return err
		}

		turns := core.DetectSharpTurns(core.Sample(points, core.TurnSampleTarget))

		estimator := coverage.NewEstimator()
		var deadZones, poorZones int
		for _, s := range core.SampleWithCap(points, core.CoverageSampleTarget, core.CoverageCallCap) {
			reading := estimator.Estimate(s.Point.Latitude, s.Point.Longitude)
			if reading.IsDeadZone {
				deadZones++
			} else if reading.IsPoorCoverage {
				poorZones++
			}
		}

		assessment := core.ComputeRiskAssessment(turns, deadZones, poorZones)
		printAssessment(cmd.OutOrStdout(), len(points), turns, assessment)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Run: func(cmd *cobra.Command, args []string) {
		logger.Setup()
		config.InitDB()
		controllers.SetAnalyzer(analysis.New(config.GetDB()))

		handler := middleware.EnableCORS(routes.SetupRouter())
		port := config.GetEnv("PORT", "8080")
		log.Printf("server running at :%s", port)
		log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
	},
}

// readTrack parses a lat,lng CSV file. Malformed rows are counted and
// skipped rather than failing the whole file.
func readTrack(path string) (points []core.Point, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to open track: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			skipped++
			continue
		}
		if len(record) < 2 {
			skipped++
			continue
		}
		lat, errLat := strconv.ParseFloat(record[0], 64)
		lng, errLng := strconv.ParseFloat(record[1], 64)
		if errLat != nil || errLng != nil {
			skipped++
			continue
		}
		points = append(points, core.Point{Latitude: lat, Longitude: lng})
	}
	return points, skipped, nil
}

func printAssessment(w io.Writer, totalPoints int, turns []core.TurnEvent, a core.RiskAssessment) {
	fmt.Fprintf(w, "Points analyzed:    %d\n", totalPoints)
	fmt.Fprintf(w, "Sharp turns:        %d\n", len(turns))
	fmt.Fprintf(w, "Risk points:        %d\n", a.RiskPoints)
	fmt.Fprintf(w, "Safety score:       %d/100\n", a.TraditionalScore)
	fmt.Fprintf(w, "Risk level:         %s (%s, %s)\n", a.RiskLevel, a.RiskCategory, a.ColorIndicator)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-32s %6s %8s %8s %8s\n", "HAZARD", "COUNT", "PENALTY", "TOTAL", "SHARE")
	for _, row := range a.Breakdown {
		fmt.Fprintf(w, "%-32s %6d %8d %8d %7.1f%%\n",
			row.HazardType, row.Count, row.PenaltyPerItem, row.TotalPenalty, row.PercentOfTotal)
	}
	if len(turns) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Most severe turn:   %.2f° (%s) at point %d, max %d km/h\n",
			turns[0].Angle, turns[0].Classification, turns[0].SourceIndex, turns[0].RecommendedSpeed)
	}
}

func main() {
	analyzeCmd.Flags().StringVar(&csvPath, "csv", "", "path to a lat,lng CSV track")
	if err := analyzeCmd.MarkFlagRequired("csv"); err != nil {
		log.Fatal(err)
	}
	rootCmd.AddCommand(analyzeCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
