package http

import (
	"net/http"
	"time"

	"bloom/internal/auth"
	"bloom/internal/config"
	"bloom/internal/http/handler"
	mw "bloom/internal/http/middleware"
	"bloom/internal/media"
	"bloom/internal/profile"
	"bloom/internal/storage"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the routes are built from.
type Deps struct {
	DB      *gorm.DB
	JWT     *auth.JWT
	Files   *storage.Disk
	Cleanup media.CleanupQueue
	Log     *zap.Logger
	Now     func() time.Time
}

func NewRouter(cfg config.Config, d Deps) http.Handler {
	if d.Now == nil {
		d.Now = time.Now
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.RequestLogger(d.Log))
	r.Use(chimw.Recoverer)

	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(mw.CORS(cfg.CORSAllowedOrigins, cfg.CORSAllowCredentials))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	authSvc := &auth.Service{DB: d.DB, JWT: d.JWT}
	profileSvc := &profile.Service{DB: d.DB}
	mediaSvc := &media.Service{DB: d.DB, Cache: media.NewListCache(cfg.MediaCacheSize, cfg.MediaCacheTTL)}
	intake := media.NewIntake(mediaSvc, d.Files, d.Cleanup, d.Log.Named("intake"), cfg.MaxUploadBytes)
	intake.Now = func() time.Time { return d.Now().UTC() }

	ah := &handler.AuthHandler{Svc: authSvc, Log: d.Log}
	ph := &handler.ProfileHandler{Svc: profileSvc, Log: d.Log, Now: d.Now}
	pregnancy := &handler.PregnancyHandler{Profiles: profileSvc, GrowthBasis: cfg.GrowthBasis, Log: d.Log, Now: d.Now}
	mediaRead := &handler.MediaReadHandler{Svc: mediaSvc, Log: d.Log}
	upload := &handler.UploadHandler{Intake: intake, MaxBytes: intake.MaxBytes, Log: d.Log}
	files := &handler.FileHandler{Media: mediaSvc, Files: d.Files, Log: d.Log}

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", ah.Register)
		r.Post("/auth/login", ah.Login)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAuth(d.JWT))

			r.Post("/logout", ah.Logout)
			r.Get("/user", ph.Me)
			r.Post("/profile", ph.UpdateProfile)
			r.Get("/baby-info", ph.BabyInfo)
			r.Post("/baby-info", ph.SaveBabyInfo)

			r.Get("/pregnancy", pregnancy.Current)
			r.Get("/milestones", pregnancy.Milestones)
			r.Get("/development/{month}", pregnancy.Development)

			r.Route("/media", func(r chi.Router) {
				r.Get("/", mediaRead.List)
				r.Post("/", upload.Create)
				r.Get("/recent", mediaRead.Recent)
				r.Get("/month/{month}", mediaRead.ByMonth)
				r.Get("/month/{month}/emotion/{emotion}", mediaRead.ByMonthAndEmotion)
				r.Get("/emotion/{emotion}", mediaRead.ByEmotion)
				r.Get("/{id}", mediaRead.Get)
			})
		})
	})

	r.With(auth.RequireAuth(d.JWT)).Get(d.Files.URLPrefix+"/{name}", files.Serve)

	return r
}
