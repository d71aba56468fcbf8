package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/codingconcepts/env"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"golang.org/x/sync/errgroup"

	"github.com/SmarabSJJ/ufo-seat-service/internal/admin"
	"github.com/SmarabSJJ/ufo-seat-service/internal/authflow"
	"github.com/SmarabSJJ/ufo-seat-service/internal/backendsession"
	"github.com/SmarabSJJ/ufo-seat-service/internal/cookies"
	"github.com/SmarabSJJ/ufo-seat-service/internal/gate"
	"github.com/SmarabSJJ/ufo-seat-service/internal/health"
	"github.com/SmarabSJJ/ufo-seat-service/internal/linkedin"
	"github.com/SmarabSJJ/ufo-seat-service/internal/observability"
	"github.com/SmarabSJJ/ufo-seat-service/internal/seattoken"
)

type Config struct {
	BindAddr   string `env:"BIND_ADDR"`
	ListenPort uint16 `env:"LISTEN_PORT" default:"5000"`

	SeatTokenSecret string `env:"SEAT_TOKEN_SECRET" required:"true"`

	LinkedinClientId     string `env:"LINKEDIN_CLIENT_ID"`
	LinkedinClientSecret string `env:"LINKEDIN_CLIENT_SECRET"`
	LinkedinRedirectUri  string `env:"LINKEDIN_REDIRECT_URI" default:"http://127.0.0.1:5000/auth/linkedin/callback"`

	FrontendUrl string `env:"FRONTEND_URL" default:"http://127.0.0.1:3000"`
	BackendUrl  string `env:"BACKEND_URL" default:"http://127.0.0.1:5001"`

	SecureCookies bool `env:"SECURE_COOKIES"`
}

func main() {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Fatalf("error loading .env file: %v", err)
	}
	config := Config{}
	if err := env.Set(&config); err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	ctx, close := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGTERM)
	defer close()

	logger := observability.NewLogger()

	// The codec secret is read once at startup and injected here; nothing
	// else in the process ever touches the environment for it
	codec := seattoken.NewCodec(config.SeatTokenSecret)
	provider := linkedin.NewClient(config.LinkedinClientId, config.LinkedinClientSecret, config.LinkedinRedirectUri)
	providerConfigured := config.LinkedinClientId != "" && config.LinkedinClientSecret != ""
	backend := backendsession.NewClient(config.BackendUrl)
	jar := cookies.Jar{Secure: config.SecureCookies}
	landingUrl := fmt.Sprintf("%s/Home", config.FrontendUrl)

	r := mux.NewRouter()
	r.Use(observability.RequestLogging(logger))
	r.Path("/").Methods("GET").Handler(health.NewServer(providerConfigured))
	r.Path("/metrics").Methods("GET").Handler(promhttp.Handler())

	flow := authflow.NewFlow(codec, provider)
	authflow.NewServer(flow, provider, jar, landingUrl, providerConfigured).RegisterRoutes(r)
	gate.NewServer(codec, backend, jar, landingUrl).RegisterRoutes(r)
	admin.NewServer(codec).RegisterRoutes(r)

	// The frontend calls these endpoints with credentials, so CORS has to
	// allow its origin explicitly
	withCors := cors.New(cors.Options{
		AllowedOrigins:   []string{config.FrontendUrl},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowCredentials: true,
	}).Handler(r)

	addr := fmt.Sprintf("%s:%d", config.BindAddr, config.ListenPort)
	server := &http.Server{Addr: addr, Handler: withCors}

	fmt.Printf("Listening on %s...\n", addr)
	var wg errgroup.Group
	wg.Go(server.ListenAndServe)

	select {
	case <-ctx.Done():
		fmt.Printf("Received signal; closing server...\n")
		server.Shutdown(context.Background())
	}

	err = wg.Wait()
	if err == http.ErrServerClosed {
		fmt.Printf("Server closed.\n")
	} else {
		log.Fatalf("error running server: %v", err)
	}
}
