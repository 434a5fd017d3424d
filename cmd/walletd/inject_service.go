package main

import (
	"context"
	"log/slog"

	"github.com/fee-less/feeless-wallet/core"
	"github.com/fee-less/feeless-wallet/service/approval"
	"github.com/fee-less/feeless-wallet/service/relay"
	"github.com/fee-less/feeless-wallet/service/session"
	"github.com/google/wire"
	"github.com/spf13/viper"
)

var serviceSet = wire.NewSet(
	provideSession,
	provideRelayConfig,
	relay.New,
	provideApprovalConfig,
	approval.New,
	wire.Bind(new(core.ApprovalSurface), new(*approval.Approver)),
)

func provideSession(creds core.CredentialStore, logger *slog.Logger) (core.Session, error) {
	s := session.New(creds, logger)
	if err := s.Restore(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

func provideRelayConfig(v *viper.Viper) relay.Config {
	v.SetDefault("relay.respond_timeout", "12s")

	return relay.Config{
		RespondTimeout: v.GetDuration("relay.respond_timeout"),
	}
}

func provideApprovalConfig(v *viper.Viper) approval.Config {
	v.SetDefault("approval.countdown_ticks", 10)
	v.SetDefault("approval.tick_interval", "1s")

	return approval.Config{
		CountdownTicks: v.GetInt("approval.countdown_ticks"),
		TickInterval:   v.GetDuration("approval.tick_interval"),
	}
}
