package main

import (
	"fmt"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/linkedin"

	"puzzleclash/internal/config"
	"puzzleclash/internal/database"
	"puzzleclash/internal/handlers"
	"puzzleclash/internal/repository"
	"puzzleclash/internal/security"
	"puzzleclash/internal/service"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Load templates
	templates, err := loadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}

	log.Println("Templates loaded successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	invitationRepo := repository.NewInvitationRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}

	authService := service.NewAuthService(userRepo, cfg.SessionDuration)
	groupService := service.NewGroupService(groupRepo)
	invitationService := service.NewInvitationService(invitationRepo, groupService, userRepo, emailService)
	scoreService := service.NewScoreService(scoreRepo, groupService, userRepo, cfg.BulkPointsStrict, cfg.TrendWindowDays)

	oauthProviders := map[string]handlers.OAuthProvider{
		"linkedin": {
			Name:  "linkedin",
			Label: "LinkedIn",
			Config: &oauth2.Config{
				ClientID:     cfg.LinkedInClientID,
				ClientSecret: cfg.LinkedInClientSecret,
				Endpoint:     linkedin.Endpoint,
				Scopes:       []string{"openid", "profile", "email"},
			},
			UserInfoURL: "https://api.linkedin.com/v2/userinfo",
			JWKSURL:     "https://www.linkedin.com/oauth/openid/jwks",
			Issuer:      "https://www.linkedin.com/oauth",
		},
	}

	// Initialize handlers
	csrf := security.NewCSRFGenerator(cfg.SessionSecret)
	middleware := handlers.NewMiddleware(authService, csrf)
	authHandler := handlers.NewAuthHandler(authService, templates, oauthProviders, cfg.OAuthRedirectBaseURL)
	dashboardHandler := handlers.NewDashboardHandler(groupService, invitationService, scoreService, authService, middleware, templates)
	groupHandler := handlers.NewGroupHandler(groupService, scoreService, invitationService, middleware, templates)
	scoreHandler := handlers.NewScoreHandler(scoreService)

	// Setup routes
	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))

	// Public routes
	mux.HandleFunc("GET /", authHandler.Home)
	mux.HandleFunc("GET /login", authHandler.ShowLogin)
	mux.HandleFunc("POST /login", middleware.RateLimit(authHandler.Login))
	mux.HandleFunc("GET /register", authHandler.ShowRegister)
	mux.HandleFunc("POST /register", middleware.RateLimit(authHandler.Register))
	mux.HandleFunc("POST /logout", authHandler.Logout)
	mux.HandleFunc("GET /auth/{provider}/start", authHandler.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", authHandler.OAuthCallback)
	mux.HandleFunc("GET /leaderboard", dashboardHandler.GlobalLeaderboard)

	// Dashboard and account routes
	mux.HandleFunc("GET /dashboard", middleware.RequireAuth(dashboardHandler.Dashboard))
	mux.HandleFunc("POST /groups/create", middleware.RequireAuth(middleware.CSRFProtect(dashboardHandler.CreateGroup)))
	mux.HandleFunc("POST /invitations/{id}/accept", middleware.RequireAuth(middleware.CSRFProtect(dashboardHandler.AcceptInvitation)))
	mux.HandleFunc("POST /invitations/{id}/decline", middleware.RequireAuth(middleware.CSRFProtect(dashboardHandler.DeclineInvitation)))
	mux.HandleFunc("POST /settings/visibility", middleware.RequireAuth(middleware.CSRFProtect(dashboardHandler.UpdateVisibility)))

	// Group routes
	mux.HandleFunc("GET /groups/{id}", middleware.RequireAuth(groupHandler.ShowGroup))
	mux.HandleFunc("GET /groups/{id}/trend", middleware.RequireAuth(groupHandler.Trend))
	mux.HandleFunc("POST /groups/{id}/invite", middleware.RequireAuth(middleware.CSRFProtect(groupHandler.Invite)))
	mux.HandleFunc("POST /groups/{id}/scores", middleware.RequireAuth(middleware.CSRFProtect(scoreHandler.AddScore)))
	mux.HandleFunc("POST /groups/{id}/scores/bulk", middleware.RequireAuth(middleware.CSRFProtect(scoreHandler.AddBulkScores)))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start background session cleanup
	go cleanupExpiredSessions(authService)

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
}

// loadTemplates loads all template files
func loadTemplates(templatesPath string) (*template.Template, error) {
	baseTemplate := filepath.Join(templatesPath, "base.tmpl")

	patterns := []string{
		filepath.Join(templatesPath, "auth/*.tmpl"),
		filepath.Join(templatesPath, "app/*.tmpl"),
	}

	var files []string
	files = append(files, baseTemplate)

	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to glob pattern %s: %w", pattern, err)
		}
		files = append(files, matches...)
	}

	// Define template functions
	funcMap := template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDay": func(t time.Time) string {
			return t.Format("Mon Jan 2")
		},
		"add": func(a, b int) int {
			return a + b
		},
		"lower": strings.ToLower,
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefInt": func(n *int) int {
			if n == nil {
				return 0
			}
			return *n
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFiles(files...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	return tmpl, nil
}

// cleanupExpiredSessions periodically removes expired sessions
func cleanupExpiredSessions(authService *service.AuthService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		if err := authService.CleanupExpiredSessions(); err != nil {
			log.Printf("Error cleaning up expired sessions: %v", err)
		} else {
			log.Println("Expired sessions cleaned up")
		}
	}
}
