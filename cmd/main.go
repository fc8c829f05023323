package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	cron "github.com/robfig/cron/v3"
	"github.com/rs/cors"

	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/agreementpdf"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/app"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/config"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/constants"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/controllers"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/facility"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/middleware"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/routes"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/services"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/utils/dcarbon"
	"github.com/gloriousnetworker/DCarbon-project-sub003/internal/wizard"
)

func main() {
	utils.InitLogger(config.ResolveAppName())
	cfg := config.LoadConfig()
	defer cfg.Close()

	application, err := app.NewApp(cfg)
	if err != nil {
		utils.Logger.Fatal("Failed to initialize application:", err)
	}
	defer application.Close()

	//----------------------------------------------------------------------
	// Remote API + integrations
	//----------------------------------------------------------------------
	api, err := dcarbon.NewClient(cfg.DCarbonAPIBaseURL, nil)
	if err != nil {
		utils.Logger.Fatal("Failed to create DCarbon API client:", err)
	}

	var phones utils.PhoneVerifier
	if cfg.LDFlag_ValidatePhoneWithTwilio {
		phones = utils.NewTwilioPhoneVerifier(cfg.TwilioAccountSID, cfg.TwilioAuthToken)
	}

	creator := facility.NewCreator(api, cfg.FacilityPayloadShape)

	//----------------------------------------------------------------------
	// Services
	//----------------------------------------------------------------------
	// The wizard's facility step checks the same session form as the
	// facility endpoints.
	facilityService := services.NewFacilityService(api, creator)
	engine := wizard.NewEngine(api, creator, facilityService, phones)

	// The signature widget only saves snapshots, so it gets a session
	// service without forgetters over the same store.
	snapshotWriter := services.NewSessionService(application.Sessions, api, cfg.SessionSecret, cfg.SessionTTL)
	signatureService := services.NewSignatureService(api, snapshotWriter)
	sessionService := services.NewSessionService(
		application.Sessions,
		api,
		cfg.SessionSecret,
		cfg.SessionTTL,
		signatureService,
		facilityService,
	)

	agreementService := services.NewAgreementService(api, agreementpdf.NewGenerator(nil))
	notificationService := services.NewNotificationService(cfg, nil)
	registrationService := services.NewRegistrationService(engine, sessionService, agreementService, notificationService)
	utilityService := services.NewUtilityService(api, sessionService, func() services.PollPolicy {
		return services.PollPolicy{
			Interval: cfg.UtilityAuthPollInterval,
			Attempts: cfg.LDFlag_UtilityAuthPollAttempts,
		}
	})
	dashboardService := services.NewDashboardService(api)

	//----------------------------------------------------------------------
	// Controllers
	//----------------------------------------------------------------------
	healthController := controllers.NewHealthController(application)
	sessionController := controllers.NewSessionController(sessionService)
	registrationController := controllers.NewRegistrationController(registrationService)
	signatureController := controllers.NewSignatureController(signatureService)
	agreementController := controllers.NewAgreementController(agreementService)
	facilityController := controllers.NewFacilityController(facilityService)
	utilityController := controllers.NewUtilityController(utilityService)
	dashboardController := controllers.NewDashboardController(dashboardService)

	//----------------------------------------------------------------------
	// Router & Endpoints
	//----------------------------------------------------------------------
	router := mux.NewRouter()

	// Public
	router.HandleFunc(routes.Health, healthController.HealthCheckHandler).Methods("GET")
	router.HandleFunc(routes.SessionLogin, sessionController.LoginHandler).Methods("POST")
	router.HandleFunc(routes.RegistrationStart, registrationController.StartHandler).Methods("GET")

	// Any live session, anonymous registrations included
	withSession := router.NewRoute().Subrouter()
	withSession.Use(middleware.SessionMiddleware(application.Sessions, cfg.SessionSecret))
	withSession.HandleFunc(routes.SessionLogout, sessionController.LogoutHandler).Methods("POST")
	withSession.HandleFunc(routes.RegistrationFinancialAgreement, registrationController.FinancialAgreementHandler).Methods("POST")
	withSession.HandleFunc(routes.RegistrationFlow, registrationController.ViewHandler).Methods("GET")
	withSession.HandleFunc(routes.RegistrationAdvance, registrationController.AdvanceHandler).Methods("POST")
	withSession.HandleFunc(routes.RegistrationBack, registrationController.BackHandler).Methods("POST")

	// Logged-in users only
	loggedIn := router.NewRoute().Subrouter()
	loggedIn.Use(middleware.SessionMiddleware(application.Sessions, cfg.SessionSecret), middleware.RequireLogin)

	loggedIn.HandleFunc(routes.Signature, signatureController.SubmitHandler).Methods("POST")
	loggedIn.HandleFunc(routes.SignatureProgress, signatureController.ProgressHandler).Methods("GET")

	loggedIn.HandleFunc(routes.Agreement, agreementController.GetHandler).Methods("GET")
	loggedIn.HandleFunc(routes.AgreementAccept, agreementController.AcceptHandler).Methods("POST")
	loggedIn.HandleFunc(routes.AgreementPDF, agreementController.PDFHandler).Methods("GET")

	// form routes before {id}
	loggedIn.HandleFunc(routes.FacilityForm, facilityController.OpenFormHandler).Methods("POST")
	loggedIn.HandleFunc(routes.FacilityFormAccount, facilityController.SelectAccountHandler).Methods("PUT")
	loggedIn.HandleFunc(routes.FacilityFormMeter, facilityController.SelectMeterHandler).Methods("PUT")
	loggedIn.HandleFunc(routes.FacilityFormAddress, facilityController.ConfirmAddressHandler).Methods("PUT")
	loggedIn.HandleFunc(routes.Facilities, facilityController.ListHandler).Methods("GET")
	loggedIn.HandleFunc(routes.Facilities, facilityController.CreateHandler).Methods("POST")
	loggedIn.HandleFunc(routes.FacilityByID, facilityController.GetHandler).Methods("GET")
	loggedIn.HandleFunc(routes.FacilityByID, facilityController.UpdateHandler).Methods("PATCH")

	loggedIn.HandleFunc(routes.UtilityAuthorize, utilityController.AuthorizeHandler).Methods("POST")
	loggedIn.HandleFunc(routes.UtilityAuthorizeWait, utilityController.WaitHandler).Methods("POST")

	loggedIn.HandleFunc(routes.Dashboard, dashboardController.DashboardHandler).Methods("GET")
	loggedIn.HandleFunc(routes.Stats, dashboardController.StatsHandler).Methods("GET")

	//----------------------------------------------------------------------
	// Expired session sweep via cron
	//----------------------------------------------------------------------
	c := cron.New()
	_, schErr := c.AddFunc(constants.SessionSweepSpec, func() {
		if e := sessionService.CleanupExpired(context.Background()); e != nil {
			utils.Logger.WithError(e).Error("Scheduled session cleanup failed")
		}
	})
	if schErr != nil {
		utils.Logger.WithError(schErr).Fatal("Failed to schedule session cleanup job")
	}
	c.Start()
	defer c.Stop()

	allowedOrigins := []string{cfg.AppUrl}
	if !cfg.LDFlag_CORSHighSecurity {
		allowedOrigins = append(allowedOrigins, constants.CORSLowSecurityAllowedOriginLocalhost)
	}

	co := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: co.Handler(router),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		utils.Logger.Infof("Starting %s on port: %s", cfg.AppName, cfg.AppPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Logger.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	utils.Logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Logger.WithError(err).Warn("HTTP server shutdown failed")
	}
}
