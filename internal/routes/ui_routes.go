package routes

import (
	"github.com/go-chi/chi/v5"

	"infinite-experiment/skyboard/internal/api"
	"infinite-experiment/skyboard/internal/dashboard"
	"infinite-experiment/skyboard/skyboard/ui"
)

// RegisterUIRoutes registers all UI-related routes and returns the workspace teardown
func RegisterUIRoutes(r chi.Router, deps *api.Dependencies) func() {
	services := deps.Services

	store := ui.NewWorkspaceStore(
		deps.Config.WorkspaceTTL,
		services.API,
		services.Charts,
		func(sessionID string) dashboard.Notifier {
			return services.Flash.ForSession(sessionID)
		},
		deps.Metrics,
		deps.Location,
	)

	ui.NewUIHandler(store, services.Flash, services.Charts).Routes(r)
	return store.Close
}
