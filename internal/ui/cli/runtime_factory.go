package cli

import (
	"fmt"

	coreapp "envinfer/internal/core/app"
	"envinfer/internal/core/config"
	"envinfer/internal/core/ports"
	"envinfer/internal/shared/observability"
)

type analysisFactory interface {
	New(cfg *config.Config) (ports.AnalysisService, observability.HealthReporter, error)
}

type coreAnalysisFactory struct{}

func (coreAnalysisFactory) New(cfg *config.Config) (ports.AnalysisService, observability.HealthReporter, error) {
	app, err := coreapp.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return app.AnalysisService(), coreapp.NewHealthService(app), nil
}

func initializeAnalysis(cfg *config.Config, factory analysisFactory) (ports.AnalysisService, observability.HealthReporter, error) {
	if factory == nil {
		return nil, nil, fmt.Errorf("analysis factory is required")
	}
	return factory.New(cfg)
}
