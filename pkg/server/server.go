// Package server contains the HTTP server exposing the drinks API.
package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"

	"github.com/baristalabs/barista/pkg/auth"
	"github.com/baristalabs/barista/pkg/config"
	"github.com/baristalabs/barista/pkg/drinks"
	"github.com/baristalabs/barista/pkg/metrics"
	"github.com/baristalabs/barista/pkg/utils"
)

// Permissions guarding the drinks API operations
const (
	PermissionGetDrinksDetail = "get:drinks-detail"
	PermissionPostDrinks      = "post:drinks"
	PermissionPatchDrinks     = "patch:drinks"
	PermissionDeleteDrinks    = "delete:drinks"
)

// Server is the server based on Gin
type Server struct {
	appRouter *gin.Engine
	log       *utils.AppLogger
	store     drinks.Store
	verifier  *auth.Verifier
	metrics   metrics.BaristaMetrics

	// Servers
	appSrv     *http.Server
	metricsSrv *http.Server
	running    atomic.Bool

	// Listeners for the app and metrics servers
	// These can be used for testing without having to start an actual TCP listener
	appListener     net.Listener
	metricsListener net.Listener
}

// NewServer creates a new Server object and initializes it
func NewServer(log *utils.AppLogger, store drinks.Store, verifier *auth.Verifier) (*Server, error) {
	s := &Server{
		log:      log,
		store:    store,
		verifier: verifier,
	}

	// Init the Prometheus metrics
	s.metrics.Init()

	// Init the app server
	err := s.initAppServer()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Server) initAppServer() error {
	// Create the Gin router and add various middlewares
	s.appRouter = gin.New()
	s.appRouter.Use(gin.Recovery())
	s.appRouter.Use(s.RequestIdMiddleware)
	s.appRouter.Use(s.log.LoggerMiddleware)

	// CORS configuration
	corsConfig := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodHead,
		},
		AllowHeaders: []string{
			"Authorization",
			"Origin",
			"Content-Length",
			"Content-Type",
		},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}

	// Check if we are restricting the origins for CORS
	originsStr := viper.GetString(config.KeyOrigins)
	if originsStr == "" {
		// Default is the origin of the SPA's callback URL
		originsStr = callbackOrigin(viper.GetString(config.KeyAuth0CallbackURL))
	}
	if originsStr == "*" {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowAllOrigins = false
		corsConfig.AllowOrigins = strings.Split(originsStr, ",")
	}
	s.appRouter.Use(cors.New(corsConfig))

	// Add routes
	// Start with the healthz route
	s.appRouter.GET("/healthz", s.RouteHealthz)

	// Drinks routes
	s.appRouter.GET("/drinks", s.RouteDrinksList)
	s.appRouter.GET("/drinks-detail",
		s.RequirePermission(PermissionGetDrinksDetail),
		s.RouteDrinksDetail,
	)
	s.appRouter.POST("/drinks",
		s.RequirePermission(PermissionPostDrinks),
		s.RouteDrinksCreate,
	)
	s.appRouter.PATCH("/drinks/:id",
		s.RequirePermission(PermissionPatchDrinks),
		s.RouteDrinksUpdate,
	)
	s.appRouter.DELETE("/drinks/:id",
		s.RequirePermission(PermissionDeleteDrinks),
		s.RouteDrinksDelete,
	)

	return nil
}

// Extracts the origin from the callback URL, e.g. "http://localhost:8100/tabs/user" -> "http://localhost:8100"
func callbackOrigin(callbackURL string) string {
	u, err := url.Parse(callbackURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return callbackURL
	}
	return u.Scheme + "://" + u.Host
}

// Run the web server
// Note this function is blocking, and will return only when the servers are shut down via context cancellation.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return errors.New("server is already running")
	}
	defer s.running.Store(false)

	// App server
	err := s.startAppServer()
	if err != nil {
		return err
	}
	//nolint:errcheck
	defer s.stopAppServer()

	// Metrics server
	if viper.GetBool(config.KeyEnableMetrics) {
		err = s.startMetricsServer()
		if err != nil {
			return err
		}
		//nolint:errcheck
		defer s.stopMetricsServer()
	}

	// Block until the context is canceled
	<-ctx.Done()

	// Servers are stopped with deferred calls
	return nil
}

func (s *Server) startAppServer() error {
	bindAddr := viper.GetString(config.KeyBind)
	if bindAddr == "" {
		bindAddr = "0.0.0.0"
	}
	bindPort := viper.GetInt(config.KeyPort)
	if bindPort < 1 {
		bindPort = 8080
	}

	// Load the TLS configuration if we have PEM values in the config
	tlsConfig, err := s.loadTLSConfig()
	if err != nil {
		return err
	}

	// Create the HTTP(S) server
	s.appSrv = &http.Server{
		Addr:              net.JoinHostPort(bindAddr, strconv.Itoa(bindPort)),
		Handler:           s.appRouter,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
		TLSConfig:         tlsConfig,
	}

	// Create the listener if we don't have one already
	if s.appListener == nil {
		s.appListener, err = net.Listen("tcp", s.appSrv.Addr)
		if err != nil {
			return fmt.Errorf("failed to create TCP listener: %w", err)
		}
	}

	// Start the server in a background goroutine
	go func() {
		defer s.appListener.Close()

		s.log.Raw().Info().
			Str("bind", bindAddr).
			Int("port", bindPort).
			Bool("tls", tlsConfig != nil).
			Msg("App server started")
		// Next call blocks until the server is shut down
		var srvErr error
		if tlsConfig != nil {
			srvErr = s.appSrv.ServeTLS(s.appListener, "", "")
		} else {
			srvErr = s.appSrv.Serve(s.appListener)
		}
		if srvErr != http.ErrServerClosed {
			s.log.Raw().Fatal().Msgf("Error starting app server: %v", srvErr)
		}
	}()

	return nil
}

func (s *Server) stopAppServer() error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	err := s.appSrv.Shutdown(shutdownCtx)
	shutdownCancel()
	if err != nil {
		// Log the error only (could be context canceled)
		s.log.Raw().Warn().
			AnErr("error", err).
			Msg("App server shutdown error")
		return err
	}
	return nil
}

func (s *Server) startMetricsServer() error {
	bindAddr := viper.GetString(config.KeyMetricsBind)
	if bindAddr == "" {
		bindAddr = "0.0.0.0"
	}
	bindPort := viper.GetInt(config.KeyMetricsPort)
	if bindPort < 1 {
		bindPort = 2112
	}

	// Handler
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	mux.Handle("/metrics", s.metrics.HTTPHandler())

	// Create the HTTP server
	s.metricsSrv = &http.Server{
		Addr:              net.JoinHostPort(bindAddr, strconv.Itoa(bindPort)),
		Handler:           mux,
		MaxHeaderBytes:    1 << 20,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Create the listener if we don't have one already
	if s.metricsListener == nil {
		var err error
		s.metricsListener, err = net.Listen("tcp", s.metricsSrv.Addr)
		if err != nil {
			return fmt.Errorf("failed to create TCP listener: %w", err)
		}
	}

	// Start the server in a background goroutine
	go func() {
		defer s.metricsListener.Close()

		s.log.Raw().Info().
			Str("bind", bindAddr).
			Int("port", bindPort).
			Msg("Metrics server started")
		// Next call blocks until the server is shut down
		err := s.metricsSrv.Serve(s.metricsListener)
		if err != http.ErrServerClosed {
			s.log.Raw().Fatal().Msgf("Error starting metrics server: %v", err)
		}
	}()

	return nil
}

func (s *Server) stopMetricsServer() error {
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	err := s.metricsSrv.Shutdown(shutdownCtx)
	shutdownCancel()
	if err != nil {
		// Log the error only (could be context canceled)
		s.log.Raw().Warn().
			AnErr("error", err).
			Msg("Metrics server shutdown error")
		return err
	}
	return nil
}

// Loads the TLS configuration from PEM values in the config, if present
func (s *Server) loadTLSConfig() (*tls.Config, error) {
	tlsCert := viper.GetString(config.KeyTLSCertPEM)
	tlsKey := viper.GetString(config.KeyTLSKeyPEM)
	if tlsCert == "" && tlsKey == "" {
		return nil, nil
	}
	if tlsCert == "" || tlsKey == "" {
		return nil, errors.New("both tlsCertPEM and tlsKeyPEM must be set to enable TLS")
	}

	cert, err := tls.X509KeyPair([]byte(tlsCert), []byte(tlsKey))
	if err != nil {
		return nil, fmt.Errorf("failed to parse TLS certificate or key: %w", err)
	}

	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}, nil
}
