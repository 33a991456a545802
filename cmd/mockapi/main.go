// Command mockapi is an in-memory stand-in for the inspection backend.
// It serves the annotation endpoints the desktop client talks to, seeds
// a synthetic thermal frame with a few machine-generated detections, and
// exposes Prometheus metrics for request accounting.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"thermo-inspect/internal/annotation"
	"thermo-inspect/internal/logging"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "mockapi_requests_total",
		Help: "Requests handled, by method, route and status.",
	},
	[]string{"method", "route", "status"},
)

// store keeps annotations and their audit trails in memory.
type store struct {
	mu      sync.RWMutex
	nextID  int
	records map[string]*annotation.Annotation
	history map[string][]annotation.AuditEntry
}

func newStore() *store {
	return &store{
		nextID:  1,
		records: make(map[string]*annotation.Annotation),
		history: make(map[string][]annotation.AuditEntry),
	}
}

func (s *store) add(a annotation.Annotation, actor, action, comment string) annotation.Annotation {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.ID = "ann-" + strconv.Itoa(s.nextID)
	s.nextID++
	a.IsActive = true
	a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	s.records[a.ID] = &a
	s.appendHistory(a.ID, actor, action, comment)
	return a
}

func (s *store) appendHistory(id, actor, action, comment string) {
	s.history[id] = append(s.history[id], annotation.AuditEntry{
		ID:           fmt.Sprintf("%s-h%d", id, len(s.history[id])+1),
		AnnotationID: id,
		Action:       action,
		Comment:      comment,
		Actor:        actor,
		Timestamp:    time.Now().UTC(),
	})
}

func (s *store) list(inspectionID string) []annotation.Annotation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]annotation.Annotation, 0, len(s.records))
	for _, a := range s.records {
		if a.InspectionID == inspectionID {
			out = append(out, *a)
		}
	}
	return out
}

func (s *store) get(id string) (*annotation.Annotation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.records[id]
	return a, ok
}

func main() {
	addr := flag.String("addr", ":8085", "listen address")
	level := flag.String("log-level", "info", "log level")
	flag.Parse()

	log := logging.New(*level, false)
	prometheus.MustRegister(requestCount)

	db := newStore()
	seed(db)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), metricsMiddleware(), authMiddleware())

	v1 := router.Group("/api/v1")
	{
		v1.GET("/inspections/:id/annotations", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"annotations": db.list(c.Param("id"))})
		})

		v1.POST("/inspections/:id/annotations", func(c *gin.Context) {
			var req struct {
				BboxX           float64 `json:"bboxX"`
				BboxY           float64 `json:"bboxY"`
				BboxWidth       float64 `json:"bboxWidth"`
				BboxHeight      float64 `json:"bboxHeight"`
				FaultType       string  `json:"faultType"`
				FaultConfidence float64 `json:"faultConfidence"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if err := annotation.ValidateFaultType(req.FaultType); err != nil {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
				return
			}
			if req.BboxWidth <= 0 || req.BboxHeight <= 0 {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "box must have positive extent"})
				return
			}
			created := db.add(annotation.Annotation{
				InspectionID:    c.Param("id"),
				BboxX:           req.BboxX,
				BboxY:           req.BboxY,
				BboxWidth:       req.BboxWidth,
				BboxHeight:      req.BboxHeight,
				FaultType:       req.FaultType,
				FaultConfidence: req.FaultConfidence,
				Source:          annotation.SourceUser,
				CreatedBy:       actor(c),
			}, actor(c), "created", "")
			c.JSON(http.StatusCreated, created)
		})

		v1.PUT("/annotations/:id", func(c *gin.Context) {
			a, ok := db.get(c.Param("id"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "annotation not found"})
				return
			}
			var req struct {
				BboxX      float64 `json:"bboxX"`
				BboxY      float64 `json:"bboxY"`
				BboxWidth  float64 `json:"bboxWidth"`
				BboxHeight float64 `json:"bboxHeight"`
				FaultType  string  `json:"faultType"`
				Comment    string  `json:"comment"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if req.FaultType != "" {
				if err := annotation.ValidateFaultType(req.FaultType); err != nil {
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
					return
				}
				if strings.TrimSpace(req.Comment) == "" {
					c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "classification change requires a comment"})
					return
				}
			}

			db.mu.Lock()
			a.BboxX, a.BboxY = req.BboxX, req.BboxY
			a.BboxWidth, a.BboxHeight = req.BboxWidth, req.BboxHeight
			action := "moved"
			if req.FaultType != "" && req.FaultType != a.FaultType {
				a.FaultType = req.FaultType
				a.Source = annotation.SourceUser
				action = "reclassified"
			}
			a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			updated := *a
			db.appendHistory(a.ID, actor(c), action, req.Comment)
			db.mu.Unlock()

			c.JSON(http.StatusOK, updated)
		})

		v1.DELETE("/annotations/:id", func(c *gin.Context) {
			a, ok := db.get(c.Param("id"))
			if !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "annotation not found"})
				return
			}
			var req struct {
				Comment string `json:"comment"`
			}
			if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Comment) == "" {
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "deletion requires a comment"})
				return
			}

			db.mu.Lock()
			a.IsActive = false
			a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
			db.appendHistory(a.ID, actor(c), "deleted", req.Comment)
			db.mu.Unlock()

			c.Status(http.StatusNoContent)
		})

		v1.GET("/annotations/:id/history", func(c *gin.Context) {
			if _, ok := db.get(c.Param("id")); !ok {
				c.JSON(http.StatusNotFound, gin.H{"error": "annotation not found"})
				return
			}
			db.mu.RLock()
			entries := append([]annotation.AuditEntry(nil), db.history[c.Param("id")]...)
			db.mu.RUnlock()
			c.JSON(http.StatusOK, gin.H{"history": entries})
		})

		v1.GET("/inspections/:id/image", func(c *gin.Context) {
			c.Data(http.StatusOK, "image/png", syntheticFrame())
		})
	}

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	log.Info("mock backend listening", "addr", *addr)
	if err := router.Run(*addr); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// actor pulls a synthetic user name out of the bearer token so audit
// entries look plausible.
func actor(c *gin.Context) string {
	token := strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
	if token == "" {
		return "unknown"
	}
	if len(token) > 8 {
		token = token[:8]
	}
	return "user-" + token
}

func authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" || c.Request.URL.Path == "/healthz" {
			c.Next()
			return
		}
		if !strings.HasPrefix(c.GetHeader("Authorization"), "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		c.Next()
	}
}

func metricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestCount.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
	}
}

// seed loads a couple of machine detections for the demo inspection.
func seed(db *store) {
	db.mu.Lock()
	defer db.mu.Unlock()

	seeds := []annotation.Annotation{
		{
			InspectionID: "demo", BboxX: 210, BboxY: 140, BboxWidth: 90, BboxHeight: 70,
			FaultType: annotation.FaultLooseJoint, FaultConfidence: 0.87,
			Source: annotation.SourceAI,
		},
		{
			InspectionID: "demo", BboxX: 430, BboxY: 300, BboxWidth: 60, BboxHeight: 48,
			FaultType: annotation.FaultPointOverload, FaultConfidence: 0.64,
			Source: annotation.SourceAI,
		},
	}
	for _, a := range seeds {
		a.ID = "ann-" + strconv.Itoa(db.nextID)
		db.nextID++
		a.IsActive = true
		a.CreatedBy = "detector"
		a.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
		rec := a
		db.records[rec.ID] = &rec
		db.history[rec.ID] = []annotation.AuditEntry{{
			ID:           rec.ID + "-h1",
			AnnotationID: rec.ID,
			Action:       "detected",
			Actor:        "detector",
			Timestamp:    time.Now().UTC(),
		}}
	}
}

// syntheticFrame renders a fake thermal image: cool gradient background
// with two hot blobs matching the seeded detections.
func syntheticFrame() []byte {
	const w, h = 640, 480
	img := image.NewRGBA(image.Rect(0, 0, w, h))

	blob := func(cx, cy, radius float64) func(x, y int) float64 {
		return func(x, y int) float64 {
			dx, dy := float64(x)-cx, float64(y)-cy
			d := math.Sqrt(dx*dx + dy*dy)
			if d > radius {
				return 0
			}
			return 1 - d/radius
		}
	}
	hot1 := blob(255, 175, 70)
	hot2 := blob(460, 324, 50)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			base := 0.15 + 0.2*float64(y)/h
			heat := base + hot1(x, y) + hot2(x, y)
			if heat > 1 {
				heat = 1
			}
			img.Set(x, y, heatColor(heat))
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// heatColor maps normalized intensity onto a black-red-yellow-white ramp.
func heatColor(v float64) color.RGBA {
	switch {
	case v < 0.33:
		return color.RGBA{R: uint8(v * 3 * 255), A: 255}
	case v < 0.66:
		return color.RGBA{R: 255, G: uint8((v - 0.33) * 3 * 255), A: 255}
	default:
		g := (v - 0.66) * 3
		if g > 1 {
			g = 1
		}
		return color.RGBA{R: 255, G: 255, B: uint8(g * 255), A: 255}
	}
}
