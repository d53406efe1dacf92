package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	ClaimRepo           ClaimRepositoryFacade
	PaymentRepo         PaymentRepositoryFacade
	BankTransactionRepo BankTransactionRepositoryFacade
	CashBookRepo        CashBookRepositoryFacade
	ChartAccountRepo    ChartAccountReader
	TransitRepo         TransitRepositoryFacade
	ClosingRepo         ClosingRepositoryFacade
	MemberRepo          MemberRepositoryFacade
}
