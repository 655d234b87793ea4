package app

import (
	"context"
	"fmt"
	"time"

	"envinfer/internal/shared/observability"
)

// HealthService reports component readiness for the /health endpoint.
type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app.Parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else {
		status.Components["parser"] = "ok"
	}

	if s.app.Project == nil {
		status.Status = "degraded"
		status.Components["project"] = "missing"
	} else {
		scripts, notebooks, failed := s.app.Project.Counts()
		status.Components["project"] = fmt.Sprintf("ok (%d scripts, %d notebooks, %d failed)", scripts, notebooks, failed)
	}

	if s.app.CurrentSpec() == nil {
		status.Components["analysis"] = "pending"
	} else {
		status.Components["analysis"] = "ok"
	}

	if s.app.registry == nil {
		status.Status = "degraded"
		status.Components["registry"] = "missing"
	} else {
		status.Components["registry"] = "ok"
	}

	return status
}
