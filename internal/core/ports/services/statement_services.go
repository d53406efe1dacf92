package services

import (
	"context"

	"github.com/drkbluescience/verein-finanz/internal/dto"
)

// StatementIngestSvc defines statement batch ingestion operations
type StatementIngestSvc interface {
	// ProcessStatement ingests a normalized statement batch for one bank
	// account, matching rows to members and allocating matched payments.
	// Row-level failures are isolated; the batch result aggregates them.
	ProcessStatement(ctx context.Context, vereinID string, req dto.BankUploadRequest, userID string) (*dto.BankUploadResponse, error)
}

// StatementResolveSvc defines manual resolution operations
type StatementResolveSvc interface {
	// ManualMatch resolves an unmatched bank transaction to a member and
	// allocates the resulting payment, exactly like an automatic match.
	ManualMatch(ctx context.Context, req dto.ManualMatchRequest, userID string) (*dto.ManualMatchResponse, error)

	// ListUnmatched retrieves bank transactions awaiting manual resolution.
	ListUnmatched(ctx context.Context, vereinID string, params dto.ListUnmatchedParams) (*dto.ListUnmatchedResponse, error)
}

// StatementSvcFacade combines all statement-matcher service interfaces
type StatementSvcFacade interface {
	StatementIngestSvc
	StatementResolveSvc
}
