package main

import (
	"errors"
	"flag"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"go.uber.org/zap"

	"lazylearn/internal/config"
	"lazylearn/internal/models"
	"lazylearn/internal/store"
	"lazylearn/pkg/utils"
)

var (
	logger   *zap.Logger
	bundle   *models.Bundle
	auditLog *store.Store
)

func main() {
	logger = utils.Logger()
	defer logger.Sync()

	cfgPath := flag.String("config", "", "Optional YAML config path")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	bundle, err = models.LoadBundle(cfg.Model.Path)
	if err != nil {
		logger.Warn("No model bundle loaded, predictions disabled",
			zap.String("path", cfg.Model.Path), zap.Error(err))
		bundle = nil
	} else {
		logger.Info("Model bundle loaded",
			zap.String("path", cfg.Model.Path),
			zap.Int("k", bundle.Model.K),
			zap.Bool("standardized", bundle.Scaler != nil))
	}

	auditLog, err = store.Open(cfg.Store.Path)
	if err != nil {
		logger.Warn("Prediction audit log disabled", zap.Error(err))
		auditLog = nil
	} else {
		defer auditLog.Close()
	}

	registerValidators()

	r := gin.Default()

	r.Static("/static", "cmd/api/static")
	r.GET("/healthz", handleHealth)
	r.GET("/dashboard/data", dashboardData)

	api := r.Group("/")
	api.Use(apiKeyMiddleware(cfg.Server.APIKey))
	api.POST("/predict", handlePredict)
	api.POST("/batch", handleBatch)

	r.Run(":" + cfg.Server.Port)
}

// registerValidators adds the finite rule: features must be real numbers,
// never NaN or infinities, which would poison every distance.
func registerValidators() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("finite", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	})
}

func apiKeyMiddleware(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if key == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-Key") != key {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

type predictReq struct {
	Features []float64 `json:"features" binding:"required,min=1,dive,finite"`
}

func handleHealth(c *gin.Context) {
	status := gin.H{"status": "ok", "model_loaded": bundle != nil}
	if bundle != nil {
		status["model"] = bundle.Model.Name()
		status["k"] = bundle.Model.K
	}
	c.JSON(http.StatusOK, status)
}

func handlePredict(c *gin.Context) {
	var req predictReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if bundle == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}

	x := req.Features
	if bundle.Scaler != nil {
		x = bundle.Scaler.TransformOne(x)
	}
	label, err := bundle.Model.PredictOne(x)
	if err != nil {
		respondPredictError(c, err)
		return
	}
	logPrediction(req.Features, label)
	c.JSON(http.StatusOK, gin.H{"label": label, "model": bundle.Model.Name(), "k": bundle.Model.K})
}

func handleBatch(c *gin.Context) {
	var items []predictReq
	if err := c.ShouldBindJSON(&items); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}
	if bundle == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no model loaded"})
		return
	}

	X := make([][]float64, len(items))
	for i, it := range items {
		X[i] = it.Features
		if bundle.Scaler != nil {
			X[i] = bundle.Scaler.TransformOne(it.Features)
		}
	}
	labels, err := bundle.Model.Predict(X)
	if err != nil {
		respondPredictError(c, err)
		return
	}

	out := make([]gin.H, len(items))
	for i := range items {
		logPrediction(items[i].Features, labels[i])
		out[i] = gin.H{"label": labels[i]}
	}
	c.JSON(http.StatusOK, gin.H{"items": out, "model": bundle.Model.Name()})
}

func respondPredictError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrNotFitted):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "model is not trained"})
	case errors.Is(err, models.ErrNoNeighbors):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no neighbours available to vote"})
	default:
		logger.Error("Prediction failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "prediction failed"})
	}
}

// logPrediction appends to the audit log; serving never fails because the
// log does.
func logPrediction(features []float64, label string) {
	if auditLog == nil {
		return
	}
	rec := store.Record{
		CreatedAt: time.Now(),
		Features:  features,
		Label:     label,
		Model:     bundle.Model.Name(),
	}
	if err := auditLog.Log(rec); err != nil {
		logger.Warn("Failed to record prediction", zap.Error(err))
	}
}

func dashboardData(c *gin.Context) {
	if auditLog == nil {
		c.JSON(http.StatusOK, gin.H{"items": []store.Record{}})
		return
	}
	recent, err := auditLog.Recent(200)
	if err != nil {
		logger.Warn("Failed to read audit log", zap.Error(err))
		c.JSON(http.StatusOK, gin.H{"items": []store.Record{}})
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": recent})
}
