package main

import (
	"fmt"
	"net/http"

	"github.com/fee-less/feeless-wallet/handler/bridge"
	"github.com/fee-less/feeless-wallet/handler/hc"
	"github.com/fee-less/feeless-wallet/handler/wallet"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/wire"
	"github.com/rs/cors"
	"github.com/spf13/viper"
)

var serverSet = wire.NewSet(
	provideBridgeConfig,
	bridge.New,
	wallet.New,
	provideServer,
)

func provideBridgeConfig(v *viper.Viper) bridge.Config {
	v.SetDefault("bridge.poll_timeout", "25s")

	return bridge.Config{
		PollTimeout: v.GetDuration("bridge.poll_timeout"),
	}
}

func provideServer(bridgeHandler *bridge.Server, walletHandler *wallet.Server) *http.Server {
	m := chi.NewMux()
	m.Use(middleware.RealIP)
	m.Use(middleware.Logger)
	m.Use(middleware.Recoverer)
	m.Use(cors.AllowAll().Handler)

	m.Mount("/bridge", bridgeHandler.Handler())
	m.Mount("/wallet", walletHandler.Handler())
	m.Mount("/hc", hc.Handler(version))

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", opt.port),
		Handler: m,
	}
}
