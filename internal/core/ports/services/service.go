package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used by the handlers and the CLI commands.
type ServiceContainer struct {
	Currency     CurrencySvcFacade
	RateUpdater  RateUpdaterSvc
	Conversion   ConversionSvc
	Integrity    IntegritySvc
	Status       StatusSvc
	UserSettings UserSettingsSvc
}
