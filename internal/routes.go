package internal

import (
	"net/http"
	"timeclock/internal/controllers"
	"timeclock/internal/providers"
)

func InitRoutes(clockController *controllers.ClockController, rosterController *controllers.RosterController, snapshotController *controllers.SnapshotController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/clock/session", http.HandlerFunc(clockController.MintSession))
	routers.Post("/clock/verify", http.HandlerFunc(clockController.Verify))
	routers.Post("/clock/pin", http.HandlerFunc(clockController.SubmitPin))
	routers.Post("/clock/photo", http.HandlerFunc(clockController.SubmitPhoto))
	routers.Post("/clock/cancel", http.HandlerFunc(clockController.Cancel))

	routers.Get("/employees", http.HandlerFunc(rosterController.ListEmployees))
	routers.Post("/employees", http.HandlerFunc(rosterController.AddEmployee))

	routers.Get("/shifts", http.HandlerFunc(rosterController.ListShifts))
	routers.Post("/shifts", http.HandlerFunc(rosterController.CreateShift))
	routers.Post("/shifts/update", http.HandlerFunc(rosterController.UpdateShift))
	routers.Post("/shifts/delete", http.HandlerFunc(rosterController.DeleteShift))
	routers.Post("/shifts/validate", http.HandlerFunc(rosterController.ValidateShift))
	routers.Get("/shifts/active", http.HandlerFunc(rosterController.ActiveShift))

	routers.Get("/snapshot", http.HandlerFunc(snapshotController.Export))
	routers.Post("/snapshot", http.HandlerFunc(snapshotController.Import))

	return routers
}
