package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/ridoystarlord/custompost/categories"
	"github.com/ridoystarlord/custompost/config"
	"github.com/ridoystarlord/custompost/database"
	"github.com/ridoystarlord/custompost/forms"
	"github.com/ridoystarlord/custompost/introspect"
	"github.com/ridoystarlord/custompost/logger"
	"github.com/ridoystarlord/custompost/provisioner"
)

// app holds what most commands need: config, a logger and a connection.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	exec    database.Executor
	catalog *introspect.Catalog
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	return cfg, log, nil
}

func openApp(ctx context.Context) (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	exec, err := database.GetExecutor(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return &app{
		cfg:     cfg,
		log:     log,
		exec:    exec,
		catalog: introspect.NewCatalog(exec, cfg.Provisioning.Prefix),
	}, nil
}

func (a *app) provisioner() *provisioner.Provisioner {
	return provisioner.New(a.exec, a.catalog, categories.NewStore(a.exec),
		provisioner.ParsePolicy(a.cfg.Provisioning.Strict), a.log)
}

func (a *app) forms() *forms.Inferencer {
	return forms.NewInferencer(a.catalog)
}

func (a *app) close() {
	database.CloseShared()
}
