package bootstrap

import (
	"github.com/painfulChen/offercome-sub000/config"
	"github.com/painfulChen/offercome-sub000/pkg/logging"
)

type App struct {
	Cfg            *config.Config
	Infrastructure *Infrastructure
	Repositories   *Repositories
	Services       *Services
	Handlers       *Handlers
}

func NewApp(cfg *config.Config) (*App, error) {
	app := &App{Cfg: cfg}

	infra, err := NewInfrastructure(cfg)
	if err != nil {
		logging.Logger.Error("fail NewInfrastructure", "error", err)
		return nil, err
	}
	app.Infrastructure = infra

	// repos
	repos := NewRepositories(infra.DB)
	app.Repositories = repos

	// services
	services := NewServices(cfg, repos, infra)
	app.Services = services
	services.Start()

	app.Handlers = NewHandlers(cfg, services, repos, infra)

	return app, nil
}

// Shutdown drains the sync queue before closing infrastructure.
func (a *App) Shutdown() error {
	if a == nil {
		return nil
	}
	if a.Services != nil {
		a.Services.Stop()
	}
	if a.Infrastructure != nil {
		if err := a.Infrastructure.Shutdown(); err != nil {
			return err
		}
	}
	return nil
}
