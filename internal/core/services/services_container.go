package services

import (
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	portssvc "github.com/drkbluescience/verein-finanz/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	// The allocation engine comes first since matching and payment entry
	// both hand payments to it.
	container.Allocation = NewAllocationService(repos.ClaimRepo, repos.PaymentRepo)

	container.Statement = NewStatementService(
		repos.BankTransactionRepo,
		repos.MemberRepo,
		repos.PaymentRepo,
		repos.ClaimRepo,
		container.Allocation,
	)
	container.CashBook = NewCashBookService(repos.CashBookRepo, repos.ChartAccountRepo, repos.ClosingRepo)
	container.Transit = NewTransitService(repos.TransitRepo, repos.ChartAccountRepo)
	container.Closing = NewClosingService(repos.ClosingRepo, repos.CashBookRepo)
	container.Claim = NewClaimService(repos.ClaimRepo, repos.PaymentRepo, repos.MemberRepo)
	container.Payment = NewPaymentService(repos.PaymentRepo, repos.MemberRepo, container.Allocation)

	return container
}

// Compile-time interface checks
var (
	_ portssvc.AllocationSvcFacade = (*AllocationService)(nil)
	_ portssvc.StatementSvcFacade  = (*StatementService)(nil)
	_ portssvc.CashBookSvcFacade   = (*CashBookService)(nil)
	_ portssvc.TransitSvcFacade    = (*TransitService)(nil)
	_ portssvc.ClosingSvcFacade    = (*ClosingService)(nil)
	_ portssvc.ClaimSvcFacade      = (*ClaimService)(nil)
	_ portssvc.PaymentSvcFacade    = (*PaymentService)(nil)
)
