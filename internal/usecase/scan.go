package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/ecolife/internal/aggregate"
	"github.com/example/ecolife/internal/classifier"
	"github.com/example/ecolife/internal/impactcalc"
	"github.com/example/ecolife/internal/logging"
	"github.com/example/ecolife/internal/repository"
)

// ErrInvalidImage reports an image payload that could not be decoded.
var ErrInvalidImage = errors.New("invalid image data")

const impactCacheTTL = 5 * time.Minute

// ScanRepository defines the persistence operations the scan flow needs.
type ScanRepository interface {
	FindByID(ctx context.Context, id uint) (*repository.User, error)
	AddScan(ctx context.Context, record *repository.ScanRecord, co2Delta float64) error
	WasteBreakdown(ctx context.Context, userID uint) ([]repository.WasteCount, error)
	ScanHistory(ctx context.Context, userID uint) ([]repository.ScanRecord, error)
	Achievements(ctx context.Context, userID uint) ([]repository.Achievement, error)
}

// SimpleWasteResponse is the /classify-waste/simple success body.
type SimpleWasteResponse struct {
	WasteType  string   `json:"waste_type"`
	Confidence float64  `json:"confidence"`
	Tips       []string `json:"tips"`
	Mode       string   `json:"mode"`
}

// AdvancedWasteResponse is the /classify-waste/advanced success body.
type AdvancedWasteResponse struct {
	WasteType             string   `json:"waste_type"`
	CategoryName          string   `json:"category_name"`
	Confidence            float64  `json:"confidence"`
	Subcategories         []string `json:"subcategories"`
	DisposalInstructions  string   `json:"disposal_instructions"`
	RecyclingCode         string   `json:"recycling_code"`
	Tips                  []string `json:"tips"`
	ContaminationWarnings []string `json:"contamination_warnings"`
	Mode                  string   `json:"mode"`
}

// ProductDetailsResponse carries catalog data for a recognized barcode.
type ProductDetailsResponse struct {
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	Categories string `json:"categories"`
	Nutriscore string `json:"nutriscore"`
	Ecoscore   string `json:"ecoscore"`
	Packaging  string `json:"packaging"`
	Labels     string `json:"labels"`
}

// PackagingAnalysisResponse summarizes recognized packaging materials.
type PackagingAnalysisResponse struct {
	Materials      []string `json:"materials"`
	PackagingScore float64  `json:"packaging_score"`
}

// ProductResponse is the /analyze-product success body. It carries no mode
// tag; clients recognize it by sustainability_score plus analysis_method.
type ProductResponse struct {
	SustainabilityScore float64                    `json:"sustainability_score"`
	Confidence          float64                    `json:"confidence"`
	BarcodeDetected     bool                       `json:"barcode_detected"`
	FoundKeywords       []string                   `json:"found_keywords"`
	ExtractedText       string                     `json:"extracted_text"`
	Recommendations     []string                   `json:"recommendations"`
	AnalysisMethod      string                     `json:"analysis_method"`
	ProductDetails      *ProductDetailsResponse    `json:"product_details,omitempty"`
	PackagingAnalysis   *PackagingAnalysisResponse `json:"packaging_analysis,omitempty"`
}

// BarcodeResponse is the /scan-barcode success body.
type BarcodeResponse struct {
	BarcodeDetected bool   `json:"barcode_detected"`
	Message         string `json:"message,omitempty"`
	Barcode         string `json:"barcode,omitempty"`
	BarcodeType     string `json:"barcode_type,omitempty"`
	ProductFound    bool   `json:"product_found"`
}

// ScanUseCase orchestrates classification, persistence, and caching for
// authenticated scans.
type ScanUseCase struct {
	repo           ScanRepository
	cache          Cache
	classifier     classifier.Client
	logger         *zap.Logger
	retryAttempts  int
	initialBackoff time.Duration
	maxBackoff     time.Duration
}

// NewScanUseCase constructs a new scan use case.
func NewScanUseCase(repo ScanRepository, cache Cache, cls classifier.Client, logger *zap.Logger) *ScanUseCase {
	return &ScanUseCase{
		repo:           repo,
		cache:          cache,
		classifier:     cls,
		logger:         logger.Named("scan_usecase"),
		retryAttempts:  3,
		initialBackoff: 50 * time.Millisecond,
		maxBackoff:     time.Second,
	}
}

// ClassifyWaste classifies one image, records the scan, and returns the
// wire body for the requested mode.
func (uc *ScanUseCase) ClassifyWaste(ctx context.Context, userID uint, imageB64, mode string, lat, lng *float64) (interface{}, error) {
	image, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil || len(image) == 0 {
		return nil, ErrInvalidImage
	}

	requestID := uuid.NewString()
	opLogger := logging.WithOperation(uc.logger, "usecase.classify_waste", requestID)

	result, err := uc.classifier.ClassifyWaste(ctx, image, mode)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.classify_waste", requestID, err)
		opLogger.Error("classification failed", zap.Error(wrapped))
		return nil, wrapped
	}

	co2 := impactcalc.SingleItem(result.WasteType, result.Confidence).CO2SavedKg
	record := &repository.ScanRecord{
		RequestID:  requestID,
		UserID:     userID,
		WasteType:  result.WasteType,
		Confidence: result.Confidence,
		Latitude:   lat,
		Longitude:  lng,
		CreatedAt:  time.Now().UTC(),
	}
	if err := uc.repo.AddScan(ctx, record, co2); err != nil {
		wrapped := logging.NewOperationError("usecase.save_scan", requestID, err)
		opLogger.Error("failed to persist scan", zap.Error(wrapped))
		return nil, wrapped
	}

	// The cached impact snapshot is stale once a new scan lands.
	if err := uc.cache.Del(ctx, impactCacheKey(userID)); err != nil {
		opLogger.Warn("failed to invalidate impact cache", zap.Error(err))
	}

	if mode == "advanced" {
		return &AdvancedWasteResponse{
			WasteType:             result.WasteType,
			CategoryName:          result.CategoryName,
			Confidence:            result.Confidence,
			Subcategories:         emptyIfNil(result.Subcategories),
			DisposalInstructions:  result.DisposalInstructions,
			RecyclingCode:         result.RecyclingCode,
			Tips:                  emptyIfNil(result.Tips),
			ContaminationWarnings: emptyIfNil(result.ContaminationWarnings),
			Mode:                  "advanced",
		}, nil
	}
	return &SimpleWasteResponse{
		WasteType:  result.WasteType,
		Confidence: result.Confidence,
		Tips:       emptyIfNil(result.Tips),
		Mode:       "simple",
	}, nil
}

// AnalyzeProduct runs the sustainability analysis for one product image.
// Product scans are not recorded in the waste history.
func (uc *ScanUseCase) AnalyzeProduct(ctx context.Context, userID uint, imageB64 string) (*ProductResponse, error) {
	image, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil || len(image) == 0 {
		return nil, ErrInvalidImage
	}

	requestID := uuid.NewString()
	analysis, err := uc.classifier.AnalyzeProduct(ctx, image)
	if err != nil {
		wrapped := logging.NewOperationError("usecase.analyze_product", requestID, err)
		logging.WithOperation(uc.logger, "usecase.analyze_product", requestID).
			Error("product analysis failed", zap.Error(wrapped))
		return nil, wrapped
	}

	resp := &ProductResponse{
		SustainabilityScore: analysis.SustainabilityScore,
		Confidence:          analysis.Confidence,
		BarcodeDetected:     analysis.BarcodeDetected,
		FoundKeywords:       emptyIfNil(analysis.FoundKeywords),
		ExtractedText:       analysis.ExtractedText,
		Recommendations:     emptyIfNil(analysis.Recommendations),
		AnalysisMethod:      analysis.AnalysisMethod,
	}
	if analysis.BarcodeDetected && analysis.ProductName != "" {
		resp.ProductDetails = &ProductDetailsResponse{
			Name:  analysis.ProductName,
			Brand: analysis.ProductBrand,
		}
		if len(analysis.PackagingMaterials) > 0 {
			resp.PackagingAnalysis = &PackagingAnalysisResponse{
				Materials:      analysis.PackagingMaterials,
				PackagingScore: analysis.PackagingScore,
			}
		}
	}
	return resp, nil
}

// ScanBarcode runs the dedicated barcode scan.
func (uc *ScanUseCase) ScanBarcode(ctx context.Context, userID uint, imageB64 string) (*BarcodeResponse, error) {
	image, err := base64.StdEncoding.DecodeString(imageB64)
	if err != nil || len(image) == 0 {
		return nil, ErrInvalidImage
	}

	scan, err := uc.classifier.ScanBarcode(ctx, image)
	if err != nil {
		return nil, logging.NewOperationError("usecase.scan_barcode", "", err)
	}
	return &BarcodeResponse{
		BarcodeDetected: scan.Detected,
		Message:         scan.Message,
		Barcode:         scan.Barcode,
		BarcodeType:     scan.BarcodeType,
		ProductFound:    scan.ProductFound,
	}, nil
}

// Profile assembles the profile snapshot for one user.
func (uc *ScanUseCase) Profile(ctx context.Context, userID uint) (*aggregate.ProfileSnapshot, error) {
	user, err := uc.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	breakdown, err := uc.repo.WasteBreakdown(ctx, userID)
	if err != nil {
		return nil, err
	}
	achievements, err := uc.repo.Achievements(ctx, userID)
	if err != nil {
		return nil, err
	}

	snap := &aggregate.ProfileSnapshot{
		Username:       user.Username,
		Email:          user.Email,
		TotalScans:     user.TotalScans,
		RecyclingScore: user.RecyclingScore,
		CO2Saved:       user.CO2Saved,
		MemberSince:    user.CreatedAt.UTC().Format(time.RFC3339),
		Location:       user.Location,
		WasteBreakdown: make([]aggregate.WasteBreakdownItem, 0, len(breakdown)),
		Achievements:   make([]aggregate.AchievementItem, 0, len(achievements)),
	}
	for _, item := range breakdown {
		snap.WasteBreakdown = append(snap.WasteBreakdown, aggregate.WasteBreakdownItem{
			Type:  item.WasteType,
			Count: item.Count,
		})
	}
	for _, a := range achievements {
		snap.Achievements = append(snap.Achievements, aggregate.AchievementItem{
			Type:     a.Kind,
			EarnedAt: a.EarnedAt.UTC().Format(time.RFC3339),
		})
	}
	return snap, nil
}

// Impact computes the impact snapshot for one user, served through the
// cache when a fresh copy exists.
func (uc *ScanUseCase) Impact(ctx context.Context, userID uint) (*aggregate.ImpactSnapshot, error) {
	cacheKey := impactCacheKey(userID)
	if cached, err := uc.cache.Get(ctx, cacheKey); err == nil {
		var snap aggregate.ImpactSnapshot
		if err := json.Unmarshal([]byte(cached), &snap); err == nil {
			return &snap, nil
		}
		uc.logger.Warn("failed to decode cached impact snapshot", zap.Uint("user_id", userID))
	} else if !errors.Is(err, redis.Nil) {
		uc.logger.Warn("failed to read impact cache", zap.Error(err))
	}

	history, err := uc.repo.ScanHistory(ctx, userID)
	if err != nil {
		return nil, err
	}

	scans := make([]impactcalc.Scan, 0, len(history))
	for _, record := range history {
		scans = append(scans, impactcalc.Scan{
			WasteType:  record.WasteType,
			Confidence: record.Confidence,
		})
	}
	snap := impactcalc.Cumulative(scans)

	if serialized, err := json.Marshal(&snap); err == nil {
		if err := uc.withCacheRetry(ctx, "cache.set.impact", func() error {
			return uc.cache.Set(ctx, cacheKey, string(serialized), impactCacheTTL)
		}); err != nil {
			uc.logger.Warn("failed to cache impact snapshot", zap.Error(err))
		}
	}
	return &snap, nil
}

func impactCacheKey(userID uint) string {
	return fmt.Sprintf("impact:%d", userID)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// withCacheRetry retries transient cache failures with doubling backoff.
func (uc *ScanUseCase) withCacheRetry(ctx context.Context, operation string, fn func() error) error {
	backoff := uc.initialBackoff
	opLogger := uc.logger.With(zap.String("operation", operation))
	var err error
	for attempt := 0; attempt < uc.retryAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return logging.NewOperationError(operation, "", ctx.Err())
			case <-time.After(backoff):
			}
			if next := backoff * 2; next <= uc.maxBackoff {
				backoff = next
			}
		}

		err = fn()
		if err == nil {
			if attempt > 0 {
				opLogger.Info("cache operation succeeded after retry", zap.Int("attempt", attempt+1))
			}
			return nil
		}

		if !isTransientError(err) || attempt == uc.retryAttempts-1 {
			return logging.NewOperationError(operation, "", err)
		}
		opLogger.Warn("transient cache error", zap.Error(err), zap.Int("attempt", attempt+1))
	}
	return logging.NewOperationError(operation, "", err)
}

func isTransientError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var temporary interface{ Temporary() bool }
	if errors.As(err, &temporary) && temporary.Temporary() {
		return true
	}

	return false
}
