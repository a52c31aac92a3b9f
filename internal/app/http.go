package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"github.com/procurax/meetings/internal/config"
	v1 "github.com/procurax/meetings/internal/delivery/http/v1"
	"github.com/procurax/meetings/internal/scheduling"
	"github.com/procurax/meetings/internal/services"
	"github.com/procurax/meetings/internal/storage/postgres"
)

func MustListenAndServeHTTP() {
	cfg := config.Global()
	if cfg.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	httpCfg := cfg.HTTP

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	registerRoutes(router)

	server := &http.Server{
		Addr:    net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler: router,
	}

	go func() {
		globalLogger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			globalLogger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			panic(err)
		}
	}()

	// Wait for the interrupt signal to gracefully
	// shut down the server with a timeout of 5 seconds.
	quit := make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	// kill -9 is syscall.SIGKILL but can't be caught, so don't need to add it
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	globalLogger.Info().
		Msg("shutting down http server")

	ctx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(ctx)
	if err != nil {
		globalLogger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		panic(err)
	}
	globalLogger.Info().Msg("shut down http server")
}

func registerRoutes(router gin.IRouter) {
	jwtCfg := config.Global().JWT

	meetingStore := postgres.NewMeetingStore(globalLogger, globalPostgresPool)
	scheduler := scheduling.NewScheduler(globalLogger, meetingStore)

	authService := services.NewAuthService(
		globalLogger,
		globalPostgresPool,
		jwtCfg.Issuer,
		[]byte(jwtCfg.SigningKey),
		jwtCfg.TokenTTL,
	)
	meetingService := services.NewMeetingService(globalLogger, meetingStore, scheduler)

	v1Handler := v1.New(globalLogger, authService, meetingService)
	router = router.Group("/api/v1")

	authRouter := router.Group("/auth")
	authRouter.POST("/register", v1Handler.HandleRegister)
	authRouter.POST("/login", v1Handler.HandleLogin)

	meetingsRouter := router.Group("/meetings", v1Handler.HandleAuthMiddleware)
	meetingsRouter.POST("", v1Handler.HandleCreateMeeting)
	meetingsRouter.GET("", v1Handler.HandleGetMeetings)
	meetingsRouter.GET("/:id", v1Handler.HandleGetMeeting)
	meetingsRouter.PUT("/:id", v1Handler.HandleUpdateMeeting)
	meetingsRouter.PATCH("/:id/done", v1Handler.HandleMarkMeetingDone)
	meetingsRouter.DELETE("/:id", v1Handler.HandleDeleteMeeting)
}
