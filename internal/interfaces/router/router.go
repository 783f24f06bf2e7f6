package router

import (
	"context"
	"net/http"

	authsvc "wedding-invitation/internal/application/auth"
	backupsvc "wedding-invitation/internal/application/backup"
	checkinsvc "wedding-invitation/internal/application/checkin"
	"wedding-invitation/internal/application/emails"
	guestsvc "wedding-invitation/internal/application/guests"
	invsvc "wedding-invitation/internal/application/invitations"
	"wedding-invitation/internal/application/notify"
	respsvc "wedding-invitation/internal/application/responses"
	settingssvc "wedding-invitation/internal/application/settings"
	statssvc "wedding-invitation/internal/application/stats"
	usersvc "wedding-invitation/internal/application/user"
	"wedding-invitation/internal/config"
	"wedding-invitation/internal/infrastructure/database"
	authhandler "wedding-invitation/internal/interfaces/handlers/auth"
	backuphandler "wedding-invitation/internal/interfaces/handlers/backup"
	checkinhandler "wedding-invitation/internal/interfaces/handlers/checkin"
	guesthandler "wedding-invitation/internal/interfaces/handlers/guests"
	healthhandler "wedding-invitation/internal/interfaces/handlers/health"
	invhandler "wedding-invitation/internal/interfaces/handlers/invitations"
	resphandler "wedding-invitation/internal/interfaces/handlers/responses"
	settingshandler "wedding-invitation/internal/interfaces/handlers/settings"
	userhandler "wedding-invitation/internal/interfaces/handlers/user"
	"wedding-invitation/internal/middleware"
	"wedding-invitation/internal/pkg/constants"
	"wedding-invitation/internal/pkg/ratelimit"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type gormDBPinger struct {
	db *gorm.DB
}

func (g *gormDBPinger) Ping() error {
	if g == nil || g.db == nil {
		return nil
	}
	sqlDB, err := g.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// Deps are the long-lived resources behind the app. Callers close them on shutdown.
type Deps struct {
	DB       *gorm.DB
	Rdb      *redis.Client
	Notifier *notify.Dispatcher
}

// Close waits for in-flight notifications and releases connections.
func (d *Deps) Close() {
	if d == nil {
		return
	}
	d.Notifier.Wait()
	if d.Rdb != nil {
		_ = d.Rdb.Close()
	}
	if d.DB != nil {
		if sqlDB, err := d.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
}

// CreateApp opens the database and Redis from cfg and builds the app.
func CreateApp(cfg *config.Config) (*fiber.App, *Deps, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if cfg.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, nil, err
		}
	}
	rdb, err := database.OpenRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable; sessions and health counters disabled")
		rdb = nil
	}
	deps := &Deps{DB: db, Rdb: rdb, Notifier: NewNotifier(cfg)}
	return NewApp(cfg, deps), deps, nil
}

// NewNotifier builds the RSVP/wish dispatcher; unconfigured channels are skipped.
func NewNotifier(cfg *config.Config) *notify.Dispatcher {
	return notify.NewDispatcher(notify.DefaultTimeout,
		&notify.Telegram{Token: cfg.TelegramBotToken, ChatID: cfg.TelegramChatID},
		emails.NewSendGridClient(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName, cfg.NotifyEmail),
	)
}

func newLimiter(cfg *config.Config, rdb *redis.Client, prefix string) ratelimit.Limiter {
	if cfg.RateLimitBackend == "redis" && rdb != nil {
		return &ratelimit.Redis{Rdb: rdb, Max: cfg.RateLimitMax, Window: cfg.RateLimitWindow, Prefix: prefix}
	}
	return ratelimit.NewMemory(cfg.RateLimitMax, cfg.RateLimitWindow, cfg.RateLimitCapacity)
}

// NewApp registers middleware and every route on a fresh Fiber app.
func NewApp(cfg *config.Config, deps *Deps) *fiber.App {
	db, rdb := deps.DB, deps.Rdb

	app := fiber.New(fiber.Config{
		DisableStartupMessage:   true,
		ErrorHandler:            middleware.ErrorHandler,
		EnableTrustedProxyCheck: true,
	})

	app.Use(middleware.Tracing())
	app.Use(middleware.RouteLogger())
	app.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: []string{cfg.SiteURL},
		AllowedSuffix:  cfg.FrontendURLEndsWith,
		DevPassword:    cfg.DevPassword,
	}))
	app.Use(middleware.HealthMarker(rdb))

	sessionCfg := middleware.SessionConfig{
		Secret:            cfg.SessionSecret,
		AllowCrossSiteDev: cfg.AllowCrossSiteDev,
		IsProduction:      cfg.IsProduction(),
	}
	app.Use(middleware.Session(sessionCfg, rdb))

	hh := &healthhandler.Handlers{
		Rdb:            rdb,
		DB:             &gormDBPinger{db: db},
		HealthAdminKey: cfg.HealthAdminKey,
		SiteURL:        cfg.SiteURL,
	}
	app.Get("/", hh.Dashboard)
	app.Get("/reset", hh.Reset)
	app.Get("/health/json", hh.JSON)
	app.Get("/health/errors", hh.Errors)

	settings := &settingssvc.Service{DB: db}
	guests := &guestsvc.Service{DB: db}
	stats := &statssvc.Service{DB: db}
	responses := &respsvc.Service{DB: db, Limiter: newLimiter(cfg, rdb, "ratelimit:submit:"), Notifier: deps.Notifier}
	checkin := &checkinsvc.Service{DB: db, Guests: guests, QueryParam: cfg.InviteQueryParam}
	invitations := &invsvc.Service{SiteURL: cfg.SiteURL, QueryParam: cfg.InviteQueryParam, Settings: settings}
	backups := &backupsvc.Service{DB: db, Dir: cfg.BackupDir}

	var mailer emails.Sender
	if cfg.SendGridAPIKey != "" {
		mailer = emails.NewSendGridClient(cfg.SendGridAPIKey, cfg.MailFrom, cfg.MailFromName, cfg.NotifyEmail)
	}
	users := &usersvc.Service{DB: db, Rdb: rdb, Mailer: mailer, SiteURL: cfg.SiteURL}

	gh := &guesthandler.Handlers{Service: guests, Stats: stats}
	rh := &resphandler.Handlers{Service: responses}
	ch := &checkinhandler.Handlers{Service: checkin}
	sh := &settingshandler.Handlers{Service: settings}
	ih := &invhandler.Handlers{Service: invitations, Guests: guests}
	bh := &backuphandler.Handlers{Service: backups}
	uh := &userhandler.Handlers{Service: users}
	ah := &authhandler.Handlers{Service: &authsvc.Service{DB: db}, Users: users, Rdb: rdb, Config: sessionCfg}

	authLimit := middleware.RateLimit(newLimiter(cfg, rdb, "ratelimit:auth:"), "Too many attempts. Please try again later.")

	api := app.Group("/api/v1")

	// Public
	api.Get("/guest/:slug", gh.GetBySlug)
	api.Post("/rsvp", rh.SubmitRSVP)
	api.Get("/rsvp", rh.ListRSVPs)
	api.Post("/wishes", rh.SubmitWish)
	api.Get("/wishes", rh.ListWishes)
	api.Get("/settings", sh.Get)

	ag := api.Group("/auth")
	ag.Post("/login", authLimit, ah.Login)
	ag.Get("/me", ah.Me)
	ag.Delete("/logout", ah.Logout)
	ag.Post("/forgot-password", authLimit, ah.ForgotPassword)
	ag.Post("/reset-password", authLimit, ah.ResetPassword)

	view := middleware.RequireCapability(constants.View)
	edit := middleware.RequireCapability(constants.Edit)
	del := middleware.RequireCapability(constants.Delete)
	manage := middleware.RequireCapability(constants.ManageUsers)

	admin := api.Group("/admin", middleware.RequireAuth())

	admin.Get("/guests/stats", view, gh.GetStats)
	admin.Get("/guests", view, gh.List)
	admin.Post("/guests", edit, gh.Create)
	admin.Get("/guests/:id", view, gh.Get)
	admin.Put("/guests/:id", edit, gh.Update)
	admin.Delete("/guests/:id", del, gh.Delete)
	admin.Post("/guests/:id/check-in", edit, gh.CheckIn)
	admin.Post("/guests/:id/mark-sent", edit, gh.MarkSent)
	admin.Get("/guests/:id/qr.png", view, ih.QRCode)
	admin.Get("/guests/:id/invitation.pdf", view, ih.Card)
	admin.Get("/invitations/batch.pdf", view, ih.Batch)

	admin.Post("/check-in/scan", edit, ch.Scan)
	admin.Post("/check-in/manual", edit, ch.Manual)
	admin.Get("/check-in/stats", view, ch.Stats)

	admin.Put("/rsvp/:id", edit, rh.UpdateRSVP)
	admin.Delete("/rsvp/:id", del, rh.DeleteRSVP)
	admin.Delete("/rsvp", del, rh.DeleteRSVPs)
	admin.Put("/wishes/:id", edit, rh.UpdateWish)
	admin.Delete("/wishes/:id", del, rh.DeleteWish)
	admin.Delete("/wishes", del, rh.DeleteWishes)

	admin.Post("/settings", edit, sh.Update)

	admin.Post("/backup", edit, bh.Backup)
	admin.Post("/restore", del, bh.Restore)
	admin.Get("/backup/download", view, bh.Download)
	admin.Get("/backup/history", view, bh.History)

	admin.Get("/users", manage, uh.ListUsers)
	admin.Post("/users", manage, uh.CreateUser)
	admin.Put("/users/:id", manage, uh.UpdateUser)
	admin.Delete("/users/:id", manage, uh.DeleteUser)

	return app
}

// Handler adapts the app for net/http servers.
func Handler(app *fiber.App) http.Handler {
	return adaptor.FiberApp(app)
}
