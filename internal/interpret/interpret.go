// Package interpret classifies successful analysis responses into their
// result variants. The waste variants are explicitly tagged by the server
// through a "mode" field; product responses carry no tag and are recognized
// structurally by the presence of both sustainability_score and
// analysis_method. The checks run in a fixed order so the discrimination
// stays in one auditable place.
package interpret

import (
	"encoding/json"
	"errors"
)

// ErrUnrecognizedShape reports a success body that matches none of the
// known result variants.
var ErrUnrecognizedShape = errors.New("unrecognized response shape")

// Kind identifies a result variant.
type Kind string

const (
	KindSimpleWaste   Kind = "simple_waste"
	KindAdvancedWaste Kind = "advanced_waste"
	KindProduct       Kind = "product"
)

// Result is one of SimpleWaste, AdvancedWaste, or Product.
type Result interface {
	Kind() Kind
}

// SimpleWaste is the simple classification response.
type SimpleWaste struct {
	WasteType  string   `json:"waste_type"`
	Confidence float64  `json:"confidence"`
	Tips       []string `json:"tips"`
}

// Kind implements Result.
func (SimpleWaste) Kind() Kind { return KindSimpleWaste }

// AdvancedWaste is the advanced classification response.
type AdvancedWaste struct {
	WasteType             string   `json:"waste_type"`
	CategoryName          string   `json:"category_name"`
	Confidence            float64  `json:"confidence"`
	Subcategories         []string `json:"subcategories"`
	DisposalInstructions  string   `json:"disposal_instructions"`
	RecyclingCode         string   `json:"recycling_code"`
	Tips                  []string `json:"tips"`
	ContaminationWarnings []string `json:"contamination_warnings"`
}

// Kind implements Result.
func (AdvancedWaste) Kind() Kind { return KindAdvancedWaste }

// ProductDetails carries catalog data resolved from a barcode lookup.
type ProductDetails struct {
	Name       string `json:"name"`
	Brand      string `json:"brand"`
	Categories string `json:"categories"`
	Nutriscore string `json:"nutriscore"`
	Ecoscore   string `json:"ecoscore"`
	Packaging  string `json:"packaging"`
	Labels     string `json:"labels"`
}

// PackagingAnalysis summarizes the packaging materials recognized on the
// product.
type PackagingAnalysis struct {
	Materials      []string `json:"materials"`
	PackagingScore float64  `json:"packaging_score"`
}

// Product is the sustainability analysis response.
type Product struct {
	SustainabilityScore float64            `json:"sustainability_score"`
	Confidence          float64            `json:"confidence"`
	BarcodeDetected     bool               `json:"barcode_detected"`
	FoundKeywords       []string           `json:"found_keywords"`
	ExtractedText       string             `json:"extracted_text"`
	Recommendations     []string           `json:"recommendations"`
	AnalysisMethod      string             `json:"analysis_method"`
	ProductDetails      *ProductDetails    `json:"product_details,omitempty"`
	PackagingAnalysis   *PackagingAnalysis `json:"packaging_analysis,omitempty"`
}

// Kind implements Result.
func (Product) Kind() Kind { return KindProduct }

// Interpret decides which variant a success body represents and decodes it.
// The decision order matters: an explicit mode tag wins, the structural
// product check runs only for untagged bodies, and anything else is
// unrecognized.
func Interpret(body []byte) (Result, error) {
	var probe struct {
		Mode                string   `json:"mode"`
		SustainabilityScore *float64 `json:"sustainability_score"`
		AnalysisMethod      *string  `json:"analysis_method"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, ErrUnrecognizedShape
	}

	switch {
	case probe.Mode == "advanced":
		var r AdvancedWaste
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, ErrUnrecognizedShape
		}
		return r, nil
	case probe.Mode == "simple":
		var r SimpleWaste
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, ErrUnrecognizedShape
		}
		return r, nil
	case probe.SustainabilityScore != nil && probe.AnalysisMethod != nil:
		var r Product
		if err := json.Unmarshal(body, &r); err != nil {
			return nil, ErrUnrecognizedShape
		}
		return r, nil
	default:
		return nil, ErrUnrecognizedShape
	}
}
