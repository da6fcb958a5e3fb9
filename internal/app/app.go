package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"

	_ "absensi/docs"
	"absensi/internal/config"
	"absensi/internal/db"
	"absensi/internal/faceimage"
	"absensi/internal/faceverify"
	"absensi/internal/handlers"
	"absensi/internal/middleware"
	"absensi/internal/realtime"
	"absensi/internal/repositories"
	"absensi/internal/routes"
	"absensi/internal/services"
)

func Run() {
	cfg := config.MustLoad()

	loc, err := cfg.Location()
	if err != nil {
		log.Fatal("Ошибка часового пояса: ", err)
	}

	// === DB ===
	conn, err := db.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal("Ошибка подключения к БД: ", err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			log.Printf("Ошибка закрытия БД: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatal("Ошибка миграции: ", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(conn)
	attendanceRepo := repositories.NewAttendanceRepository(conn)
	leaveRepo := repositories.NewLeaveRepository(conn)
	settingsRepo := repositories.NewSettingsRepository(conn)

	// === Collaborators ===
	var emailService services.EmailService
	if cfg.Email.SMTPHost != "" {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	} else {
		log.Printf("[app] SMTP не настроен, письма отключены")
	}

	telegram, err := services.NewTelegramService(cfg.Telegram.BotToken, cfg.Telegram.AdminChatID)
	if err != nil {
		// бот не обязателен
		log.Printf("[app] telegram disabled: %v", err)
		telegram, _ = services.NewTelegramService("", 0)
	}

	var verifier faceverify.Verifier
	switch cfg.FaceVerifier.Mode {
	case "http":
		verifier = faceverify.NewHTTPVerifier(
			cfg.FaceVerifier.URL,
			cfg.FaceVerifier.APIKey,
			cfg.FaceVerifier.Threshold,
			cfg.FaceVerifier.Timeout,
		)
	default:
		verifier = faceverify.NewSimulated(time.Now().UnixNano())
	}

	images := faceimage.Normalizer{
		MaxBytes:  cfg.Attendance.MaxFaceImageBytes,
		MaxEdge:   cfg.Attendance.FaceImageMaxEdge,
		MaxPixels: cfg.Attendance.FaceImageMaxPx,
	}
	hub := realtime.NewAttendanceHub()

	// === Services ===
	settingsService := services.NewSettingsService(settingsRepo, userRepo)
	authService := services.NewAuthService(userRepo, emailService, settingsService, services.AuthConfig{
		JWTKey:        []byte(cfg.Auth.JWTSecret),
		AccessTTL:     cfg.Auth.AccessTTL,
		RefreshTTL:    cfg.Auth.RefreshTTL,
		AdminRegToken: cfg.Auth.AdminRegisterCode,
	})
	userService := services.NewUserService(userRepo, authService, emailService, settingsService)
	attendanceService := services.NewAttendanceService(
		attendanceRepo,
		settingsService,
		verifier,
		images,
		hub,
		loc,
		cfg.FaceVerifier.Timeout,
	)
	leaveService := services.NewLeaveService(leaveRepo, userRepo, telegram, emailService, loc)

	if err := userService.EnsureAdmin(ctx, cfg.Auth.BootstrapEmail, cfg.Auth.BootstrapPassword); err != nil {
		log.Fatal("Ошибка создания администратора: ", err)
	}

	// === Handlers ===
	handlers.RegisterValidators()
	h := routes.Handlers{
		Auth:       handlers.NewAuthHandler(authService),
		User:       handlers.NewUserHandler(userService),
		Attendance: handlers.NewAttendanceHandler(attendanceService, hub),
		Leave:      handlers.NewLeaveHandler(leaveService),
		Settings:   handlers.NewSettingsHandler(settingsService),
		Health:     handlers.NewHealthHandler(conn),
	}

	// === Gin ===
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLog())
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	// base64 раздувает картинку на треть, плюс остальные поля запроса
	router.Use(middleware.BodyLimit(int64(cfg.Attendance.MaxFaceImageBytes)*4/3 + 64<<10))

	routes.SetupRoutes(router, []byte(cfg.Auth.JWTSecret), h)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Сервер запущен на %s", listenAddr)
	if err := router.Run(listenAddr); err != nil {
		log.Fatal("Ошибка запуска сервера: ", err)
	}
}
