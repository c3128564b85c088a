// Command ecolife is the terminal client for the EcoLife analysis service:
// it acquires an image from the camera or from disk, sends it for waste
// classification or product analysis, and renders the returned figures.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/example/ecolife/internal/aggregate"
	"github.com/example/ecolife/internal/config"
	"github.com/example/ecolife/internal/gateway"
	"github.com/example/ecolife/internal/imagesource"
	"github.com/example/ecolife/internal/interpret"
	"github.com/example/ecolife/internal/logging"
	"github.com/example/ecolife/internal/session"
)

const usage = `usage: ecolife <command> [flags]

commands:
  register    create an account
  login       log in and store the session
  logout      clear the stored session
  whoami      show the stored identity
  scan        classify a waste image (-mode simple|advanced)
  product     analyze a product image
  barcode     scan a product barcode
  profile     show profile statistics
  impact      show environmental impact
  categories  list waste categories
`

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		return 2
	}

	logger, err := logging.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck

	cfg := config.LoadClient()
	store := openSessionStore(cfg, logger)
	client := gateway.New(cfg.APIBase, store, logger)
	ctx := context.Background()

	switch args[0] {
	case "register":
		return cmdRegister(ctx, client, args[1:])
	case "login":
		return cmdLogin(ctx, client, args[1:])
	case "logout":
		if err := client.Logout(); err != nil {
			return fail(err)
		}
		fmt.Println("Logged out.")
		return 0
	case "whoami":
		sess, ok := client.CurrentUser()
		if !ok {
			fmt.Println("Not logged in.")
			return 1
		}
		fmt.Printf("%s (user %s)\n", sess.Username, sess.UserID)
		return 0
	case "scan":
		return cmdAnalyze(ctx, client, cfg, gateway.KindWaste, args[1:])
	case "product":
		return cmdAnalyze(ctx, client, cfg, gateway.KindProduct, args[1:])
	case "barcode":
		return cmdBarcode(ctx, client, cfg, args[1:])
	case "profile":
		return cmdProfile(ctx, client)
	case "impact":
		return cmdImpact(ctx, client)
	case "categories":
		return cmdCategories(ctx, client)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n%s", args[0], usage)
		return 2
	}
}

func openSessionStore(cfg *config.Client, logger *zap.Logger) session.Store {
	store, err := session.NewSQLiteStore(cfg.SessionPath)
	if err != nil {
		logger.Warn("session persistence unavailable", zap.Error(err))
		return session.NewMemoryStore()
	}
	return store
}

func cmdRegister(ctx context.Context, client *gateway.Client, args []string) int {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	fs.Parse(args) //nolint:errcheck

	sess, err := client.Register(ctx, *username, *email, *password)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Welcome, %s!\n", sess.Username)
	return 0
}

func cmdLogin(ctx context.Context, client *gateway.Client, args []string) int {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	username := fs.String("username", "", "account username")
	password := fs.String("password", "", "account password")
	fs.Parse(args) //nolint:errcheck

	sess, err := client.Login(ctx, *username, *password)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("Logged in as %s.\n", sess.Username)
	return 0
}

func cmdAnalyze(ctx context.Context, client *gateway.Client, cfg *config.Client, kind gateway.AnalysisKind, args []string) int {
	name := "scan"
	if kind == gateway.KindProduct {
		name = "product"
	}
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	mode := fs.String("mode", "advanced", "classification mode: simple or advanced")
	file := fs.String("file", "", "image file to analyze (gallery pick)")
	camera := fs.Bool("camera", false, "capture from the camera instead")
	lat := fs.Float64("lat", 0, "scan latitude")
	lng := fs.Float64("lng", 0, "scan longitude")
	fs.Parse(args) //nolint:errcheck

	asset, code := acquire(ctx, cfg, *file, *camera)
	if code >= 0 {
		return code
	}

	req := gateway.AnalyzeRequest{
		Kind:  kind,
		Mode:  gateway.Mode(*mode),
		Asset: asset,
	}
	if visited(fs, "lat") && visited(fs, "lng") {
		req.Location = &gateway.Location{Latitude: *lat, Longitude: *lng}
	}

	result, err := client.Analyze(ctx, req)
	if err != nil {
		return fail(err)
	}
	renderResult(result)
	return 0
}

func cmdBarcode(ctx context.Context, client *gateway.Client, cfg *config.Client, args []string) int {
	fs := flag.NewFlagSet("barcode", flag.ExitOnError)
	file := fs.String("file", "", "image file to scan")
	camera := fs.Bool("camera", false, "capture from the camera instead")
	fs.Parse(args) //nolint:errcheck

	asset, code := acquire(ctx, cfg, *file, *camera)
	if code >= 0 {
		return code
	}

	result, err := client.ScanBarcode(ctx, asset)
	if err != nil {
		return fail(err)
	}

	if !result.BarcodeDetected {
		fmt.Println(result.Message)
		return 0
	}
	fmt.Printf("Barcode: %s (%s)\n", result.Barcode, result.BarcodeType)
	if result.ProductDetails != nil {
		fmt.Printf("Product: %s by %s\n", result.ProductDetails.Name, result.ProductDetails.Brand)
	}
	return 0
}

// acquire resolves the image source from the flags and handles every
// non-acquired outcome. The second return is -1 when an asset was acquired,
// otherwise the exit code to return.
func acquire(ctx context.Context, cfg *config.Client, file string, camera bool) (imagesource.Asset, int) {
	var source imagesource.Source
	if camera {
		source = imagesource.CameraSource{Device: cfg.CameraDevice, Command: cfg.CaptureCommand}
	} else {
		source = imagesource.LibrarySource{Path: file}
	}

	acq := source.Acquire(ctx)
	switch acq.Status {
	case imagesource.StatusAcquired:
		return acq.Asset, -1
	case imagesource.StatusPermissionDenied:
		fmt.Fprintln(os.Stderr, "Camera permission denied.")
		return imagesource.Asset{}, 1
	case imagesource.StatusCancelled:
		fmt.Fprintln(os.Stderr, "No image selected.")
		return imagesource.Asset{}, 1
	default:
		fmt.Fprintln(os.Stderr, "Image error:", acq.Detail)
		return imagesource.Asset{}, 1
	}
}

func renderResult(result interpret.Result) {
	switch r := result.(type) {
	case interpret.SimpleWaste:
		fmt.Printf("Waste type: %s (%.0f%% confident)\n", r.WasteType, r.Confidence*100)
		for _, tip := range r.Tips {
			fmt.Println("  tip:", tip)
		}
	case interpret.AdvancedWaste:
		fmt.Printf("%s / %s (%.0f%% confident)\n", r.CategoryName, r.WasteType, r.Confidence*100)
		if len(r.Subcategories) > 0 {
			fmt.Println("Subcategories:", r.Subcategories)
		}
		fmt.Println("Disposal:", r.DisposalInstructions)
		if r.RecyclingCode != "" {
			fmt.Println("Recycling code:", r.RecyclingCode)
		}
		for _, warning := range r.ContaminationWarnings {
			fmt.Println("  warning:", warning)
		}
		for _, tip := range r.Tips {
			fmt.Println("  tip:", tip)
		}
	case interpret.Product:
		fmt.Printf("Sustainability score: %.1f/10 (%s analysis)\n", r.SustainabilityScore, r.AnalysisMethod)
		if r.ProductDetails != nil {
			fmt.Printf("Product: %s by %s\n", r.ProductDetails.Name, r.ProductDetails.Brand)
		}
		if r.PackagingAnalysis != nil {
			fmt.Printf("Packaging: %v (score %.1f)\n", r.PackagingAnalysis.Materials, r.PackagingAnalysis.PackagingScore)
		}
		for _, rec := range r.Recommendations {
			fmt.Println("  -", rec)
		}
	}
}

func cmdProfile(ctx context.Context, client *gateway.Client) int {
	snap, err := client.Profile(ctx)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("%s <%s>\n", snap.Username, snap.Email)
	fmt.Printf("Total scans: %d  Eco score: %d%%  CO2 saved: %s\n",
		snap.TotalScans, snap.RecyclingScore, aggregate.FormatKg(snap.CO2Saved))
	for _, item := range snap.WasteBreakdown {
		share := aggregate.WasteSharePercent(item.Count, snap.TotalScans)
		fmt.Printf("  %-20s %3d scans (%.1f%%)\n", item.Type, item.Count, share)
	}
	for _, a := range snap.Achievements {
		fmt.Printf("  achievement: %s (%s)\n", a.Type, a.EarnedAt)
	}
	return 0
}

func cmdImpact(ctx context.Context, client *gateway.Client) int {
	snap, err := client.Impact(ctx)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("Total %s CO2 saved across %d items\n",
		aggregate.FormatKg(snap.TotalCO2SavedKg), snap.TotalItemsRecycled)

	eq := snap.Equivalents.Format()
	fmt.Println("Equivalent to:")
	fmt.Printf("  %s trees planted\n", eq.TreesPlanted)
	fmt.Printf("  %s car-free days\n", eq.CarsOffRoadDays)
	fmt.Printf("  %s phone charges\n", eq.SmartphonesCharged)
	fmt.Printf("  %s miles not driven\n", eq.MilesNotDriven)

	rank := snap.EnvironmentalRank
	fmt.Printf("Rank: %s %s\n", rank.Icon, rank.Level)
	if ratio := aggregate.RankProgressRatio(snap.TotalCO2SavedKg, rank.NextLevel); ratio != nil {
		fmt.Printf("Progress to next rank: %.0f%%\n", *ratio*100)
	}
	return 0
}

func cmdCategories(ctx context.Context, client *gateway.Client) int {
	categories, err := client.WasteCategories(ctx)
	if err != nil {
		return fail(err)
	}
	for wasteType, category := range categories {
		fmt.Printf("%s: %s (code %s)\n", wasteType, category.Name, category.RecyclingCode)
	}
	return 0
}

func visited(fs *flag.FlagSet, name string) bool {
	seen := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			seen = true
		}
	})
	return seen
}

func fail(err error) int {
	fmt.Fprintln(os.Stderr, "error:", err)
	return 1
}
