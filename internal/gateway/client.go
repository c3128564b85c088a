// Package gateway dispatches analysis requests to the remote EcoLife
// service. It resolves the endpoint from the requested kind and mode,
// attaches the bearer credential, and classifies every outcome into a
// typed result or a typed failure.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/ecolife/internal/aggregate"
	"github.com/example/ecolife/internal/imagesource"
	"github.com/example/ecolife/internal/interpret"
	"github.com/example/ecolife/internal/session"
)

// AnalysisKind selects between waste classification and product analysis.
type AnalysisKind string

const (
	KindWaste   AnalysisKind = "waste"
	KindProduct AnalysisKind = "product"
)

// Mode is the user-selected classification granularity.
type Mode string

const (
	ModeSimple   Mode = "simple"
	ModeAdvanced Mode = "advanced"
)

// Location is an optional scan position recorded with waste
// classifications.
type Location struct {
	Latitude  float64
	Longitude float64
}

// AnalyzeRequest describes one analysis dispatch. The asset is consumed by
// exactly one call.
type AnalyzeRequest struct {
	Kind     AnalysisKind
	Mode     Mode
	Asset    imagesource.Asset
	Location *Location
}

// Client is the analysis gateway. All methods return *Failure as the error
// value on any failure path.
type Client struct {
	baseURL string
	http    *http.Client
	store   session.Store
	logger  *zap.Logger
}

// New builds a gateway against baseURL. The transport carries a bounded
// timeout so a hang surfaces as a network failure instead of an unbounded
// wait.
func New(baseURL string, store session.Store, logger *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		store:   store,
		logger:  logger.Named("gateway"),
	}
}

// flexibleID tolerates the server serializing user_id as either a JSON
// number or a string.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	var asString string
	if err := json.Unmarshal(data, &asString); err == nil {
		*f = flexibleID(asString)
		return nil
	}
	var asNumber json.Number
	if err := json.Unmarshal(data, &asNumber); err != nil {
		return err
	}
	*f = flexibleID(asNumber.String())
	return nil
}

type authResponse struct {
	Token    string     `json:"token"`
	UserID   flexibleID `json:"user_id"`
	Username string     `json:"username"`
}

// Register creates an account and persists the issued session.
func (c *Client) Register(ctx context.Context, username, email, password string) (session.Session, error) {
	body := map[string]string{"username": username, "email": email, "password": password}
	return c.authenticate(ctx, "/auth/register", body)
}

// Login authenticates and persists the issued session.
func (c *Client) Login(ctx context.Context, username, password string) (session.Session, error) {
	body := map[string]string{"username": username, "password": password}
	return c.authenticate(ctx, "/auth/login", body)
}

func (c *Client) authenticate(ctx context.Context, path string, body map[string]string) (session.Session, error) {
	respBody, failure := c.do(ctx, http.MethodPost, path, body, "")
	if failure != nil {
		return session.Session{}, failure
	}

	var resp authResponse
	if err := json.Unmarshal(respBody, &resp); err != nil || resp.Token == "" {
		return session.Session{}, serverRejected("unrecognized response shape")
	}

	sess := session.Session{
		Token:    resp.Token,
		UserID:   string(resp.UserID),
		Username: resp.Username,
	}
	// Persistence is best-effort: a failed save surfaces later as an
	// authentication failure on the next gated call.
	if err := c.store.Save(sess); err != nil {
		c.logger.Warn("failed to persist session", zap.Error(err))
	}
	return sess, nil
}

// Logout clears the persisted session.
func (c *Client) Logout() error {
	return c.store.Clear()
}

// CurrentUser reports the persisted identity, if any.
func (c *Client) CurrentUser() (session.Session, bool) {
	return c.store.Get()
}

// Analyze dispatches one image to the endpoint resolved from the request's
// kind and mode and interprets the response. With no saved session it
// returns an auth failure without touching the network.
func (c *Client) Analyze(ctx context.Context, req AnalyzeRequest) (interpret.Result, error) {
	sess, ok := c.store.Get()
	if !ok {
		return nil, authRequired()
	}

	path := c.resolvePath(req)
	payload := map[string]interface{}{"image": req.Asset.EncodedPayload}
	if req.Kind == KindWaste && req.Location != nil {
		payload["latitude"] = req.Location.Latitude
		payload["longitude"] = req.Location.Longitude
	}

	body, failure := c.do(ctx, http.MethodPost, path, payload, sess.Token)
	if failure != nil {
		return nil, failure
	}

	result, err := interpret.Interpret(body)
	if err != nil {
		if errors.Is(err, interpret.ErrUnrecognizedShape) {
			c.logger.Warn("unrecognized success body", zap.String("path", path))
		}
		return nil, serverRejected("unrecognized response shape")
	}
	return result, nil
}

func (c *Client) resolvePath(req AnalyzeRequest) string {
	if req.Kind == KindProduct {
		// The product endpoint is mode-agnostic.
		return "/analyze-product"
	}
	if req.Mode == ModeAdvanced {
		return "/classify-waste/advanced"
	}
	return "/classify-waste/simple"
}

// Profile fetches the current profile snapshot.
func (c *Client) Profile(ctx context.Context) (*aggregate.ProfileSnapshot, error) {
	var snap aggregate.ProfileSnapshot
	if err := c.getAuthed(ctx, "/profile", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Impact fetches the current impact snapshot.
func (c *Client) Impact(ctx context.Context) (*aggregate.ImpactSnapshot, error) {
	var snap aggregate.ImpactSnapshot
	if err := c.getAuthed(ctx, "/impact", &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// WasteCategory is one entry of the server's category catalog.
type WasteCategory struct {
	Name                  string   `json:"name"`
	Subcategories         []string `json:"subcategories"`
	DisposalInstructions  string   `json:"disposal_instructions"`
	RecyclingCode         string   `json:"recycling_code"`
	ContaminationWarnings []string `json:"contamination_warnings"`
}

// WasteCategories fetches the advanced classification catalog.
func (c *Client) WasteCategories(ctx context.Context) (map[string]WasteCategory, error) {
	var categories map[string]WasteCategory
	if err := c.getAuthed(ctx, "/waste-categories", &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// BarcodeResult is the dedicated barcode scan response.
type BarcodeResult struct {
	BarcodeDetected bool                      `json:"barcode_detected"`
	Message         string                    `json:"message,omitempty"`
	Barcode         string                    `json:"barcode,omitempty"`
	BarcodeType     string                    `json:"barcode_type,omitempty"`
	ProductFound    bool                      `json:"product_found"`
	ProductDetails  *interpret.ProductDetails `json:"product_details,omitempty"`
}

// ScanBarcode submits one image to the dedicated barcode endpoint.
func (c *Client) ScanBarcode(ctx context.Context, asset imagesource.Asset) (*BarcodeResult, error) {
	sess, ok := c.store.Get()
	if !ok {
		return nil, authRequired()
	}

	body, failure := c.do(ctx, http.MethodPost, "/scan-barcode",
		map[string]interface{}{"image": asset.EncodedPayload}, sess.Token)
	if failure != nil {
		return nil, failure
	}

	var result BarcodeResult
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, serverRejected("unrecognized response shape")
	}
	return &result, nil
}

func (c *Client) getAuthed(ctx context.Context, path string, out interface{}) error {
	sess, ok := c.store.Get()
	if !ok {
		return authRequired()
	}

	body, failure := c.do(ctx, http.MethodGet, path, nil, sess.Token)
	if failure != nil {
		return failure
	}
	if err := json.Unmarshal(body, out); err != nil {
		return serverRejected("unrecognized response shape")
	}
	return nil
}

// do sends one JSON request and returns the success body. Transport
// failures map to network failures, non-2xx statuses to server rejections
// with the server's error message when one can be parsed.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, token string) ([]byte, *Failure) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, serverRejected(err.Error())
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, networkError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("path", path), zap.Error(err))
		return nil, networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var errBody struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errBody) != nil || errBody.Error == "" {
			return nil, serverRejected("request rejected")
		}
		c.logger.Debug("server rejected request",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("error", errBody.Error))
		return nil, serverRejected(errBody.Error)
	}

	return respBody, nil
}
