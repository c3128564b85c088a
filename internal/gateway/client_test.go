package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/example/ecolife/internal/imagesource"
	"github.com/example/ecolife/internal/interpret"
	"github.com/example/ecolife/internal/session"
)

func newTestClient(t *testing.T, baseURL string, sess *session.Session) *Client {
	t.Helper()
	store := session.NewMemoryStore()
	if sess != nil {
		if err := store.Save(*sess); err != nil {
			t.Fatalf("failed to seed session: %v", err)
		}
	}
	return New(baseURL, store, zap.NewNop())
}

func TestAnalyzeWithoutSessionNeverTouchesNetwork(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.Analyze(context.Background(), AnalyzeRequest{
		Kind:  KindWaste,
		Mode:  ModeSimple,
		Asset: imagesource.Asset{EncodedPayload: "abc123"},
	})

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureAuthRequired {
		t.Fatalf("expected auth failure, got %s", failure.Kind)
	}
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatal("gateway issued a network call without a session")
	}
}

func TestAnalyzeAdvancedWasteDispatch(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"mode": "advanced",
			"waste_type": "recyclable_plastic",
			"category_name": "Recyclable Plastic",
			"confidence": 0.92,
			"subcategories": ["PET"],
			"disposal_instructions": "Rinse and recycle",
			"recycling_code": "1",
			"tips": [],
			"contamination_warnings": []
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok", UserID: "1", Username: "eco"})

	result, err := client.Analyze(context.Background(), AnalyzeRequest{
		Kind:  KindWaste,
		Mode:  ModeAdvanced,
		Asset: imagesource.Asset{EncodedPayload: "abc123"},
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if gotPath != "/classify-waste/advanced" {
		t.Fatalf("unexpected path: %q", gotPath)
	}
	if gotAuth != "Bearer tok" {
		t.Fatalf("unexpected authorization header: %q", gotAuth)
	}
	if gotBody["image"] != "abc123" {
		t.Fatalf("unexpected image payload: %v", gotBody["image"])
	}
	if _, present := gotBody["latitude"]; present {
		t.Fatal("latitude sent without a location")
	}

	advanced, ok := result.(interpret.AdvancedWaste)
	if !ok {
		t.Fatalf("expected AdvancedWaste, got %T", result)
	}
	if advanced.Confidence != 0.92 {
		t.Fatalf("unexpected confidence: %v", advanced.Confidence)
	}
}

func TestAnalyzeResolvesEndpoints(t *testing.T) {
	cases := []struct {
		kind AnalysisKind
		mode Mode
		want string
	}{
		{KindWaste, ModeSimple, "/classify-waste/simple"},
		{KindWaste, ModeAdvanced, "/classify-waste/advanced"},
		{KindProduct, ModeSimple, "/analyze-product"},
		{KindProduct, ModeAdvanced, "/analyze-product"},
	}
	client := &Client{}
	for _, tc := range cases {
		got := client.resolvePath(AnalyzeRequest{Kind: tc.kind, Mode: tc.mode})
		if got != tc.want {
			t.Fatalf("kind=%s mode=%s: expected %s, got %s", tc.kind, tc.mode, tc.want, got)
		}
	}
}

func TestAnalyzeSendsLocationForWaste(t *testing.T) {
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&gotBody) //nolint:errcheck
		w.Write([]byte(`{"mode": "simple", "waste_type": "recyclable", "confidence": 0.8, "tips": []}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	_, err := client.Analyze(context.Background(), AnalyzeRequest{
		Kind:     KindWaste,
		Mode:     ModeSimple,
		Asset:    imagesource.Asset{EncodedPayload: "abc123"},
		Location: &Location{Latitude: -6.2, Longitude: 106.8},
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if gotBody["latitude"] != -6.2 || gotBody["longitude"] != 106.8 {
		t.Fatalf("location not forwarded: %v", gotBody)
	}
}

func TestAnalyzeServerRejection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "image is required"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Kind: KindWaste, Mode: ModeSimple})

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureServerRejected {
		t.Fatalf("expected server rejection, got %s", failure.Kind)
	}
	if failure.Message != "image is required" {
		t.Fatalf("server message not surfaced: %q", failure.Message)
	}
}

func TestAnalyzeUnparsableErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`<html>502 Bad Gateway</html>`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Kind: KindWaste, Mode: ModeSimple})

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureServerRejected || failure.Message != "request rejected" {
		t.Fatalf("expected generic rejection, got %s: %q", failure.Kind, failure.Message)
	}
}

func TestAnalyzeUnrecognizedSuccessBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message": "ok"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Kind: KindWaste, Mode: ModeSimple})

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureServerRejected {
		t.Fatalf("expected server rejection, got %s", failure.Kind)
	}
	if failure.Message != "unrecognized response shape" {
		t.Fatalf("unexpected message: %q", failure.Message)
	}
}

func TestAnalyzeNetworkFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // no listener behind the URL anymore

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	_, err := client.Analyze(context.Background(), AnalyzeRequest{Kind: KindWaste, Mode: ModeSimple})

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureNetwork {
		t.Fatalf("expected network failure, got %s", failure.Kind)
	}
}

func TestLoginPersistsSession(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"token": "issued-token", "user_id": 42, "username": "eco"}`))
	}))
	defer server.Close()

	store := session.NewMemoryStore()
	client := New(server.URL, store, zap.NewNop())

	sess, err := client.Login(context.Background(), "eco", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.Token != "issued-token" || sess.UserID != "42" || sess.Username != "eco" {
		t.Fatalf("unexpected session: %+v", sess)
	}

	stored, ok := store.Get()
	if !ok {
		t.Fatal("session was not persisted")
	}
	if stored != sess {
		t.Fatalf("persisted session mismatch: %+v", stored)
	}
}

func TestLoginAcceptsStringUserID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token": "issued-token", "user_id": "77", "username": "eco"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	sess, err := client.Login(context.Background(), "eco", "secret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if sess.UserID != "77" {
		t.Fatalf("unexpected user id: %q", sess.UserID)
	}
}

func TestRegisterRejectionSurfacesMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": "username already exists"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, nil)

	_, err := client.Register(context.Background(), "eco", "eco@example.com", "secret")

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureServerRejected || failure.Message != "username already exists" {
		t.Fatalf("unexpected failure: %s %q", failure.Kind, failure.Message)
	}
}

func TestLogoutClearsSession(t *testing.T) {
	store := session.NewMemoryStore()
	store.Save(session.Session{Token: "tok"}) //nolint:errcheck

	client := New("http://unused", store, zap.NewNop())
	if err := client.Logout(); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok := store.Get(); ok {
		t.Fatal("session survived logout")
	}
}

func TestProfileRequiresSession(t *testing.T) {
	client := newTestClient(t, "http://unused", nil)

	_, err := client.Profile(context.Background())

	var failure *Failure
	if !errors.As(err, &failure) {
		t.Fatalf("expected *Failure, got %v", err)
	}
	if failure.Kind != FailureAuthRequired {
		t.Fatalf("expected auth failure, got %s", failure.Kind)
	}
}

func TestImpactDecodesSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/impact" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{
			"total_co2_saved_kg": 5.4,
			"total_water_saved_liters": 120,
			"total_energy_saved_kwh": 33.1,
			"total_items_recycled": 12,
			"waste_breakdown": {"recyclable_plastic": 8, "paper_cardboard": 4},
			"equivalents": {"cars_off_road_days": 1.17, "trees_planted": 0.26, "smartphones_charged": 2758, "miles_not_driven": 13.14},
			"environmental_rank": {"level": "Green Guardian", "icon": "♻️", "next_level": 20}
		}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	snap, err := client.Impact(context.Background())
	if err != nil {
		t.Fatalf("impact failed: %v", err)
	}
	if snap.TotalCO2SavedKg != 5.4 || snap.TotalItemsRecycled != 12 {
		t.Fatalf("unexpected totals: %+v", snap)
	}
	if snap.WasteBreakdown["recyclable_plastic"] != 8 {
		t.Fatalf("unexpected breakdown: %v", snap.WasteBreakdown)
	}
	if snap.EnvironmentalRank.NextLevel == nil || *snap.EnvironmentalRank.NextLevel != 20 {
		t.Fatalf("unexpected rank: %+v", snap.EnvironmentalRank)
	}
}

func TestScanBarcodeDecodesResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/scan-barcode" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		w.Write([]byte(`{"barcode_detected": false, "message": "No barcode detected. Try adjusting camera angle or lighting.", "product_found": false}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL, &session.Session{Token: "tok"})

	result, err := client.ScanBarcode(context.Background(), imagesource.Asset{EncodedPayload: "abc123"})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if result.BarcodeDetected {
		t.Fatal("expected no barcode")
	}
	if result.Message == "" {
		t.Fatal("expected guidance message")
	}
}
