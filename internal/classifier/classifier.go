// Package classifier is the boundary to the machine-learning service. The
// models themselves are a black box: production deployments point at an
// external classifier service, while the deterministic heuristic keeps
// development and tests self-contained.
package classifier

import "context"

// WasteClassification is the outcome of classifying one image. Simple-mode
// results populate only WasteType, Confidence, and Tips.
type WasteClassification struct {
	WasteType             string
	CategoryName          string
	Confidence            float64
	Subcategories         []string
	DisposalInstructions  string
	RecyclingCode         string
	Tips                  []string
	ContaminationWarnings []string
}

// ProductAnalysis is the outcome of a product sustainability analysis.
type ProductAnalysis struct {
	SustainabilityScore float64
	Confidence          float64
	BarcodeDetected     bool
	FoundKeywords       []string
	ExtractedText       string
	Recommendations     []string
	AnalysisMethod      string
	PackagingMaterials  []string
	PackagingScore      float64
	ProductName         string
	ProductBrand        string
}

// BarcodeScan is the outcome of a dedicated barcode scan.
type BarcodeScan struct {
	Detected     bool
	Message      string
	Barcode      string
	BarcodeType  string
	ProductFound bool
}

// Client exposes the subset of classifier functionality used by the scan
// flow.
type Client interface {
	ClassifyWaste(ctx context.Context, image []byte, mode string) (*WasteClassification, error)
	AnalyzeProduct(ctx context.Context, image []byte) (*ProductAnalysis, error)
	ScanBarcode(ctx context.Context, image []byte) (*BarcodeScan, error)
}
