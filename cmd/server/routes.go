package main

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/shapeflow/shapeflow/backend-go/internal/asset"
	"github.com/shapeflow/shapeflow/backend-go/internal/auth"
	"github.com/shapeflow/shapeflow/backend-go/internal/catalog"
	"github.com/shapeflow/shapeflow/backend-go/internal/collab"
	"github.com/shapeflow/shapeflow/backend-go/internal/export"
	mw "github.com/shapeflow/shapeflow/backend-go/internal/middleware"
	"github.com/shapeflow/shapeflow/backend-go/internal/progress"
)

type routes struct {
	auth     *auth.Service
	progress *progress.Service
	collab   *collab.Handler
	catalog  *catalog.Catalog
	assets   *asset.Handler
	origins  []string
	limit    int
}

// newRouter builds the HTTP surface. CORS wraps the router rather than being
// router middleware: mux only runs middleware for a matched route and method,
// so preflights would otherwise end in 404 or 405.
func newRouter(rt routes) http.Handler {
	authHandler := auth.NewHandler(rt.auth)
	progressHandler := progress.NewHandler(rt.progress, rt.limit)
	catalogHandler := catalog.NewHandler(rt.catalog)
	exportHandler := export.NewHandler(rt.catalog)

	r := mux.NewRouter()

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST")
	r.HandleFunc("/auth/guest", authHandler.Guest).Methods("POST")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	r.PathPrefix("/assets/").Handler(rt.assets.Serve()).Methods("GET")

	r.HandleFunc("/export/puzzles/{level:[0-9]+}.svg", exportHandler.ExportPuzzle).Methods("GET")
	r.HandleFunc("/export/puzzles/{level:[0-9]+}/pieces/{pieceId}.svg", exportHandler.ExportPiece).Methods("GET")

	// Public API routes; the profile answers anonymously
	public := r.PathPrefix("/api").Subrouter()
	public.Use(rt.auth.OptionalAuth)
	public.HandleFunc("/user-profile", progressHandler.UserProfile).Methods("GET")
	public.HandleFunc("/leaderboard", progressHandler.Leaderboard).Methods("GET")
	public.HandleFunc("/levels", catalogHandler.ListLevels).Methods("GET")
	public.HandleFunc("/levels/{level}", catalogHandler.GetLevel).Methods("GET")
	public.HandleFunc("/puzzles/{level}", catalogHandler.GetPuzzle).Methods("GET")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(rt.auth.AuthMiddleware)
	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/save-progress", progressHandler.SaveProgress).Methods("POST")
	api.HandleFunc("/load-progress", progressHandler.LoadProgress).Methods("GET")
	api.HandleFunc("/update-leaderboard", progressHandler.UpdateLeaderboard).Methods("POST")
	api.HandleFunc("/share-achievement", progressHandler.ShareAchievement).Methods("POST")
	api.HandleFunc("/achievements", progressHandler.Achievements).Methods("GET")
	api.HandleFunc("/avatar", rt.assets.UploadAvatar).Methods("POST")
	api.HandleFunc("/runs", rt.collab.CreateRun).Methods("POST")

	// WebSocket endpoint
	r.HandleFunc("/ws/runs/{runId}", rt.collab.ServeWS)

	return mw.Recovery(mw.Logger(mw.CORS(rt.origins)(r)))
}
