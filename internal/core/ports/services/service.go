package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	Statement  StatementSvcFacade
	Allocation AllocationSvcFacade
	CashBook   CashBookSvcFacade
	Transit    TransitSvcFacade
	Closing    ClosingSvcFacade
	Claim      ClaimSvcFacade
	Payment    PaymentSvcFacade
}
