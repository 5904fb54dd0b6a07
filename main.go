package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	orchestratorx "github.com/bloomcart/commerce-agent/agent/agents/orchestrator"
	catalogx "github.com/bloomcart/commerce-agent/agent/catalog"
	classifierx "github.com/bloomcart/commerce-agent/agent/classifier"
	contractx "github.com/bloomcart/commerce-agent/agent/contract"
	checkoutx "github.com/bloomcart/commerce-agent/pkg/checkoutapi"
	configx "github.com/bloomcart/commerce-agent/pkg/config"
	logx "github.com/bloomcart/commerce-agent/pkg/logger"
	serverx "github.com/bloomcart/commerce-agent/server"
)

type AppConfig struct {
	ListenAddr      string        `envconfig:"LISTEN_ADDR" split_words:"true" default:":8080"`
	Currency        string        `envconfig:"CURRENCY" split_words:"true" default:"usd"`
	CatalogDSN      string        `envconfig:"CATALOG_DSN" split_words:"true"`
	RateLimitRPS    float64       `envconfig:"RATE_LIMIT_RPS" split_words:"true" default:"10"`
	RateLimitBurst  int           `envconfig:"RATE_LIMIT_BURST" split_words:"true" default:"20"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" split_words:"true" default:"10s"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("APP")

	classifierCfg := configx.MustNew[classifierx.Config]("CLASSIFIER")
	intentClassifier, err := classifierx.New(*classifierCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("init classifier")
	}

	checkoutCfg := configx.MustNew[checkoutx.Config]("CHECKOUT")
	checkoutClient := checkoutx.MustNew(*checkoutCfg)

	catalogStore, closeCatalog, err := newCatalogStore(appCfg.CatalogDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("init catalog store")
	}
	defer closeCatalog()

	agent, err := orchestratorx.New(catalogStore, intentClassifier, checkoutClient, orchestratorx.Config{
		Currency: appCfg.Currency,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init orchestrator")
	}

	router := serverx.NewRouter(agent, log.Logger, serverx.RouterConfig{
		RateLimitRPS:   appCfg.RateLimitRPS,
		RateLimitBurst: appCfg.RateLimitBurst,
	})

	srv := &http.Server{
		Addr:              appCfg.ListenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info().Str("addr", appCfg.ListenAddr).Msg("agent listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), appCfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown")
	}
}

// newCatalogStore picks Postgres when a DSN is configured, otherwise the
// seeded in-memory demo catalog.
func newCatalogStore(dsn string) (contractx.CatalogStore, func(), error) {
	if dsn == "" {
		log.Warn().Msg("no catalog dsn configured, using in-memory demo catalog")
		return catalogx.NewMemoryStore(catalogx.DemoProducts()...), func() {}, nil
	}

	store, err := catalogx.NewPostgresStore(dsn)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { _ = store.Close() }, nil
}
