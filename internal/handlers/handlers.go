package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/example/ecolife/internal/aggregate"
	"github.com/example/ecolife/internal/auth"
	"github.com/example/ecolife/internal/classifier"
	"github.com/example/ecolife/internal/usecase"
)

// AccountService is the account flow consumed by the handlers.
type AccountService interface {
	Register(ctx context.Context, username, email, password string) (*usecase.AuthResult, error)
	Login(ctx context.Context, username, password string) (*usecase.AuthResult, error)
}

// ScanService is the scan flow consumed by the handlers.
type ScanService interface {
	ClassifyWaste(ctx context.Context, userID uint, imageB64, mode string, lat, lng *float64) (interface{}, error)
	AnalyzeProduct(ctx context.Context, userID uint, imageB64 string) (*usecase.ProductResponse, error)
	ScanBarcode(ctx context.Context, userID uint, imageB64 string) (*usecase.BarcodeResponse, error)
	Profile(ctx context.Context, userID uint) (*aggregate.ProfileSnapshot, error)
	Impact(ctx context.Context, userID uint) (*aggregate.ImpactSnapshot, error)
}

type credentialsBody struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type imageBody struct {
	Image     string   `json:"image"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// RegisterRoutes wires the HTTP handlers to the Gin router.
func RegisterRoutes(router *gin.Engine, accounts AccountService, scans ScanService, authMiddleware gin.HandlerFunc) {
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "EcoLife API",
			"status":  "operational",
		})
	})

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	router.POST("/auth/register", func(c *gin.Context) {
		var body credentialsBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := accounts.Register(c.Request.Context(), body.Username, body.Email, body.Password)
		if err != nil {
			writeAccountError(c, err)
			return
		}
		c.JSON(http.StatusCreated, result)
	})

	router.POST("/auth/login", func(c *gin.Context) {
		var body credentialsBody
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}

		result, err := accounts.Login(c.Request.Context(), body.Username, body.Password)
		if err != nil {
			writeAccountError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	authed := router.Group("/", authMiddleware)

	authed.POST("/classify-waste/simple", classifyHandler(scans, "simple"))
	authed.POST("/classify-waste/advanced", classifyHandler(scans, "advanced"))

	authed.POST("/analyze-product", func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var body imageBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Image == "" || body.Image == "demo" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Please provide a product image"})
			return
		}

		result, err := scans.AnalyzeProduct(c.Request.Context(), userID, body.Image)
		if err != nil {
			writeScanError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	authed.POST("/scan-barcode", func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var body imageBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Image == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No image provided"})
			return
		}

		result, err := scans.ScanBarcode(c.Request.Context(), userID, body.Image)
		if err != nil {
			writeScanError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	})

	authed.GET("/profile", func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		snap, err := scans.Profile(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "profile not found"})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	authed.GET("/impact", func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		snap, err := scans.Impact(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute impact"})
			return
		}
		c.JSON(http.StatusOK, snap)
	})

	authed.GET("/waste-categories", func(c *gin.Context) {
		c.JSON(http.StatusOK, classifier.Categories())
	})
}

func classifyHandler(scans ScanService, mode string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var body imageBody
		if err := c.ShouldBindJSON(&body); err != nil || body.Image == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
			return
		}

		result, err := scans.ClassifyWaste(c.Request.Context(), userID, body.Image, mode, body.Latitude, body.Longitude)
		if err != nil {
			writeScanError(c, err)
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func requireUser(c *gin.Context) (uint, bool) {
	identity, ok := auth.IdentityFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Token is missing"})
		return 0, false
	}
	id, err := strconv.ParseUint(identity.UserID, 10, 64)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid subject"})
		return 0, false
	}
	return uint(id), true
}

func writeAccountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, usecase.ErrMissingFields), errors.Is(err, usecase.ErrUsernameTaken):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, usecase.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func writeScanError(c *gin.Context, err error) {
	if errors.Is(err, usecase.ErrInvalidImage) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid image data"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}
