package classifier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/ecolife/internal/logging"
)

// HTTPClient talks to the external classifier service over HTTP/JSON.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// NewHTTPClient returns a ready-to-use client for the classifier service.
func NewHTTPClient(addr string, logger *zap.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(addr, "/"),
		http:    &http.Client{Timeout: 25 * time.Second},
		logger:  logger.Named("classifier"),
	}
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}, out interface{}) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return logging.NewOperationError("classifier.encode", "", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return logging.NewOperationError("classifier.request", "", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		wrapped := logging.NewOperationError("classifier.call", "", err)
		c.logger.Error("classifier call failed", zap.Error(wrapped), zap.String("path", path))
		return wrapped
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return logging.NewOperationError("classifier.read", "", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("classifier returned status %d", resp.StatusCode)
		return logging.NewOperationError("classifier.call", "", err)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return logging.NewOperationError("classifier.decode", "", err)
	}
	return nil
}

// ClassifyWaste delegates waste classification to the service.
func (c *HTTPClient) ClassifyWaste(ctx context.Context, image []byte, mode string) (*WasteClassification, error) {
	payload := map[string]string{
		"image": base64.StdEncoding.EncodeToString(image),
		"mode":  mode,
	}
	var resp struct {
		WasteType             string   `json:"waste_type"`
		CategoryName          string   `json:"category_name"`
		Confidence            float64  `json:"confidence"`
		Subcategories         []string `json:"subcategories"`
		DisposalInstructions  string   `json:"disposal_instructions"`
		RecyclingCode         string   `json:"recycling_code"`
		Tips                  []string `json:"tips"`
		ContaminationWarnings []string `json:"contamination_warnings"`
	}
	if err := c.post(ctx, "/classify", payload, &resp); err != nil {
		return nil, err
	}
	return &WasteClassification{
		WasteType:             resp.WasteType,
		CategoryName:          resp.CategoryName,
		Confidence:            resp.Confidence,
		Subcategories:         resp.Subcategories,
		DisposalInstructions:  resp.DisposalInstructions,
		RecyclingCode:         resp.RecyclingCode,
		Tips:                  resp.Tips,
		ContaminationWarnings: resp.ContaminationWarnings,
	}, nil
}

// AnalyzeProduct delegates product analysis to the service.
func (c *HTTPClient) AnalyzeProduct(ctx context.Context, image []byte) (*ProductAnalysis, error) {
	payload := map[string]string{"image": base64.StdEncoding.EncodeToString(image)}
	var resp struct {
		SustainabilityScore float64  `json:"sustainability_score"`
		Confidence          float64  `json:"confidence"`
		BarcodeDetected     bool     `json:"barcode_detected"`
		FoundKeywords       []string `json:"found_keywords"`
		ExtractedText       string   `json:"extracted_text"`
		Recommendations     []string `json:"recommendations"`
		AnalysisMethod      string   `json:"analysis_method"`
		PackagingMaterials  []string `json:"packaging_materials"`
		PackagingScore      float64  `json:"packaging_score"`
		ProductName         string   `json:"product_name"`
		ProductBrand        string   `json:"product_brand"`
	}
	if err := c.post(ctx, "/analyze-product", payload, &resp); err != nil {
		return nil, err
	}
	return &ProductAnalysis{
		SustainabilityScore: resp.SustainabilityScore,
		Confidence:          resp.Confidence,
		BarcodeDetected:     resp.BarcodeDetected,
		FoundKeywords:       resp.FoundKeywords,
		ExtractedText:       resp.ExtractedText,
		Recommendations:     resp.Recommendations,
		AnalysisMethod:      resp.AnalysisMethod,
		PackagingMaterials:  resp.PackagingMaterials,
		PackagingScore:      resp.PackagingScore,
		ProductName:         resp.ProductName,
		ProductBrand:        resp.ProductBrand,
	}, nil
}

// ScanBarcode delegates barcode decoding to the service.
func (c *HTTPClient) ScanBarcode(ctx context.Context, image []byte) (*BarcodeScan, error) {
	payload := map[string]string{"image": base64.StdEncoding.EncodeToString(image)}
	var resp struct {
		BarcodeDetected bool   `json:"barcode_detected"`
		Message         string `json:"message"`
		Barcode         string `json:"barcode"`
		BarcodeType     string `json:"barcode_type"`
		ProductFound    bool   `json:"product_found"`
	}
	if err := c.post(ctx, "/scan-barcode", payload, &resp); err != nil {
		return nil, err
	}
	return &BarcodeScan{
		Detected:     resp.BarcodeDetected,
		Message:      resp.Message,
		Barcode:      resp.Barcode,
		BarcodeType:  resp.BarcodeType,
		ProductFound: resp.ProductFound,
	}, nil
}
