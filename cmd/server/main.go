package main

import (
	"log"
	"net/http"

	"route_sentinel/internal/analysis"
	"route_sentinel/internal/config"
	"route_sentinel/internal/controllers"
	"route_sentinel/internal/logger"
	"route_sentinel/internal/middleware"
	"route_sentinel/internal/routes"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database
	config.InitDB()

	// Wire the analysis pipeline into the handlers
	controllers.SetAnalyzer(analysis.New(config.GetDB()))

	// Setup Gin router
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	port := config.GetEnv("PORT", "8080")
	log.Printf("server running at :%s", port)
	log.Fatal(http.ListenAndServe("0.0.0.0:"+port, handler))
}
