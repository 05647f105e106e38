// Package api provides the REST API server for chart2ssc
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/james-see/chart2ssc/pkg/converter"
	"github.com/james-see/chart2ssc/pkg/converter/profiles"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Chart2SSC API
// @version 1.0
// @description API for converting .chart rhythm-game files to StepMania .ssc stepcharts
// @host localhost:8080
// @BasePath /api/v1

// maxUploadSize bounds uploaded chart files
const maxUploadSize = 8 << 20

// maxGridRows bounds the rows of any rendered grid, about 5400 measures
const maxGridRows = 1 << 20

// RequestIDHeader carries the per-request id
const RequestIDHeader = "X-Request-ID"

// StartServer starts the API server on the specified port
func StartServer(port int) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: Handler(),
	}
	return srv.ListenAndServe()
}

// Handler returns the API routes wrapped with CORS handling
func Handler() http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{RequestIDHeader, "Content-Disposition"},
	})
	return c.Handler(NewRouter())
}

// NewRouter builds the gin engine with all routes
func NewRouter() *gin.Engine {
	r := gin.Default()
	r.Use(requestID())

	// Health check
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.POST("/convert/chart2ssc", handleChartToSSC)
		v1.POST("/convert/chart2midi", handleChartToMIDI)
		v1.POST("/inspect", handleInspect)
		v1.GET("/formats", listFormats)
		v1.GET("/profiles", listProfiles)
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "chart2ssc",
	})
}

// listFormats godoc
// @Summary List supported formats
// @Description Returns a list of supported file formats
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]string
// @Router /api/v1/formats [get]
func listFormats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"formats":     []string{"chart", "ssc", "midi"},
		"conversions": converter.GetSupportedConversions(),
	})
}

// listProfiles godoc
// @Summary List target profiles
// @Description Returns the built-in stepchart profiles
// @Tags info
// @Produce json
// @Success 200 {object} map[string][]profiles.Info
// @Router /api/v1/profiles [get]
func listProfiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"profiles": profiles.Available(),
	})
}

// handleChartToSSC godoc
// @Summary Convert .chart to .ssc
// @Description Upload a .chart file and receive a .ssc stepchart
// @Tags convert
// @Accept multipart/form-data
// @Produce text/plain
// @Param file formData file true ".chart file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/chart2ssc [post]
func handleChartToSSC(c *gin.Context) {
	handleConversion(c, converter.FormatSSC)
}

// handleChartToMIDI godoc
// @Summary Convert .chart to MIDI
// @Description Upload a .chart file and receive a MIDI file with the tempo map and one track per difficulty
// @Tags convert
// @Accept multipart/form-data
// @Produce application/octet-stream
// @Param file formData file true ".chart file to convert"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/convert/chart2midi [post]
func handleChartToMIDI(c *gin.Context) {
	handleConversion(c, converter.FormatMIDI)
}

// handleInspect godoc
// @Summary Inspect a .chart
// @Description Upload a .chart file and receive its metadata and per-difficulty statistics
// @Tags info
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true ".chart file to inspect"
// @Success 200 {object} converter.Summary
// @Failure 400 {object} map[string]string
// @Failure 422 {object} map[string]string
// @Router /api/v1/inspect [post]
func handleInspect(c *gin.Context) {
	data, _, ok := readUpload(c)
	if !ok {
		return
	}
	summary, err := converter.Inspect(data)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, summary)
}

func readUpload(c *gin.Context) ([]byte, string, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return nil, "", false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return nil, "", false
	}
	return data, header.Filename, true
}

func handleConversion(c *gin.Context, toFormat converter.Format) {
	data, filename, ok := readUpload(c)
	if !ok {
		return
	}

	// YAML profile paths are a CLI feature; the API serves built-in profiles only
	id := c.DefaultQuery("profile", profiles.PumpSingleProfileName)
	if !profiles.IsBuiltin(id) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown profile"})
		return
	}
	profile, err := profiles.Get(id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	conv := converter.New(profile)
	conv.SetMaxRows(maxGridRows)

	var result []byte
	var outputExt, contentType string
	switch toFormat {
	case converter.FormatSSC:
		result, err = conv.ChartToSSC(data)
		outputExt, contentType = ".ssc", "text/plain; charset=utf-8"
	case converter.FormatMIDI:
		result, err = conv.ChartToMIDI(data)
		outputExt, contentType = ".mid", "audio/midi"
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Unsupported conversion"})
		return
	}

	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	outputName := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if outputName == "" || outputName == "." {
		outputName = "converted"
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", outputName+outputExt))
	c.Data(http.StatusOK, contentType, result)
}

// statusFor maps conversion errors to HTTP status codes
func statusFor(err error) int {
	var pe *converter.ParsingError
	if errors.As(err, &pe) || errors.Is(err, converter.ErrEmptyDifficulty) || errors.Is(err, converter.ErrGridTooLarge) {
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}
