package main

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"
	twilio "github.com/twilio/twilio-go"

	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/app"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/config"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/controllers"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/gateways"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/repositories"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/services"
	"github.com/thecodearcher/twilio-verify-phone-number-verification/internal/utils"
)

func main() {
	utils.InitLogger(config.AppName)
	cfg := config.LoadConfig()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Repositories
	//----------------------------------------------------------------------
	var (
		verificationRepo repositories.VerificationRepository
		userRepo         repositories.UserRepository
		rateLimitRepo    repositories.RateLimitRepository
	)
	if cfg.StoreBackend == "postgres" {
		verificationRepo = repositories.NewVerificationRepository(application.DB)
		userRepo = repositories.NewUserRepository(application.DB)
		rateLimitRepo = repositories.NewRateLimitRepository(application.DB)
	} else {
		verificationRepo = repositories.NewMemoryVerificationRepository()
		userRepo = repositories.NewMemoryUserRepository()
		rateLimitRepo = repositories.NewMemoryRateLimitRepository()
	}

	//----------------------------------------------------------------------
	// Delivery gateways
	//----------------------------------------------------------------------
	var gateway gateways.DeliveryGateway
	var twilioClient *twilio.RestClient
	if cfg.DeliveryDryRun {
		dev := gateways.NewDevGateway()
		gateway = gateways.NewChannelRouter(dev, dev, dev)
	} else {
		twilioGateway := gateways.NewTwilioGateway(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromPhone)
		sendgridGateway := gateways.NewSendGridGateway(cfg.SendGridAPIKey, cfg.SendGridFrom, cfg.AppName)
		gateway = gateways.NewChannelRouter(twilioGateway, twilioGateway, sendgridGateway)

		if cfg.ValidatePhoneWithTwilio {
			twilioClient = twilio.NewRestClientWithParams(twilio.ClientParams{
				Username: cfg.TwilioAccountSID,
				Password: cfg.TwilioAuthToken,
			})
		}
	}

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	rateLimiterService := services.NewRateLimiterService(rateLimitRepo, cfg)
	verificationService := services.NewVerificationService(
		verificationRepo,
		gateway,
		rateLimiterService,
		cfg,
		twilioClient,
	)
	userService := services.NewUserService(userRepo)
	cleanupService := services.NewCleanupService(verificationRepo, rateLimitRepo)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	verificationController := controllers.NewVerificationController(verificationService, userService)
	userController := controllers.NewUserController(userService, verificationService)
	healthController := controllers.NewHealthController(application)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	router.HandleFunc("/health", healthController.HealthCheckHandler).Methods("GET")

	verifyRouter := router.PathPrefix("/verify").Subrouter()
	v1Router := verifyRouter.PathPrefix("/v1").Subrouter()

	v1Router.HandleFunc("/register", userController.Register).Methods("POST")
	v1Router.HandleFunc("/request_code", verificationController.RequestCode).Methods("POST")
	v1Router.HandleFunc("/verify_code", verificationController.VerifyCode).Methods("POST")

	//----------------------------------------------------------------------
	// Periodic cleanup of expired records via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc("*/15 * * * *", func() {
		if e := cleanupService.Cleanup(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled verification cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule verification cleanup job")
	}
	c.Start()

	co := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AppUrl},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
	if err := http.ListenAndServe(":"+cfg.AppPort, co.Handler(router)); err != nil {
		utils.Logger.Fatal("Failed to start server:", err)
	}
}
