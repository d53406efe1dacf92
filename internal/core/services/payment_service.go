package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/drkbluescience/verein-finanz/internal/apperrors"
	"github.com/drkbluescience/verein-finanz/internal/core/domain"
	portsrepo "github.com/drkbluescience/verein-finanz/internal/core/ports/repositories"
	portssvc "github.com/drkbluescience/verein-finanz/internal/core/ports/services"
	"github.com/drkbluescience/verein-finanz/internal/dto"
	"github.com/drkbluescience/verein-finanz/internal/middleware"
)

// PaymentService records manually entered payments (cash desk, card reader)
// and hands every new payment to the allocation engine.
type PaymentService struct {
	paymentRepo   portsrepo.PaymentRepositoryFacade
	memberRepo    portsrepo.MemberRepositoryFacade
	allocationSvc portssvc.AllocationSvcFacade
}

func NewPaymentService(
	paymentRepo portsrepo.PaymentRepositoryFacade,
	memberRepo portsrepo.MemberRepositoryFacade,
	allocationSvc portssvc.AllocationSvcFacade,
) *PaymentService {
	return &PaymentService{
		paymentRepo:   paymentRepo,
		memberRepo:    memberRepo,
		allocationSvc: allocationSvc,
	}
}

var validMethods = map[domain.PaymentMethod]struct{}{
	domain.MethodCash:     {},
	domain.MethodTransfer: {},
	domain.MethodDebit:    {},
	domain.MethodCard:     {},
}

// CreatePayment records a payment and allocates it to the member's claims.
func (s *PaymentService) CreatePayment(ctx context.Context, vereinID string, req dto.CreatePaymentRequest, userID string) (*dto.PaymentResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: payment amount must be positive", apperrors.ErrValidation)
	}
	method := domain.PaymentMethod(req.Method)
	if _, ok := validMethods[method]; !ok {
		return nil, fmt.Errorf("%w: unknown payment method %q", apperrors.ErrValidation, req.Method)
	}
	member, err := s.memberRepo.FindMemberByID(ctx, req.MemberID)
	if err != nil {
		return nil, err
	}
	if member.VereinID != vereinID {
		return nil, fmt.Errorf("%w: member %s does not belong to this association", apperrors.ErrValidation, req.MemberID)
	}

	var explicit []dto.ExplicitAllocation
	if len(req.ClaimIDs) > 0 {
		if len(req.AllocationAmounts) != len(req.ClaimIDs) {
			return nil, fmt.Errorf("%w: allocationAmounts must be parallel to claimIDs", apperrors.ErrValidation)
		}
		for i, claimID := range req.ClaimIDs {
			explicit = append(explicit, dto.ExplicitAllocation{ClaimID: claimID, Amount: req.AllocationAmounts[i]})
		}
	}

	now := time.Now()
	payment := domain.Payment{
		PaymentID:     uuid.NewString(),
		VereinID:      vereinID,
		MemberID:      req.MemberID,
		Amount:        req.Amount,
		CurrencyCode:  req.CurrencyCode,
		PaymentDate:   req.PaymentDate,
		Method:        method,
		BankAccountID: req.BankAccountID,
		Reference:     req.Reference,
		Note:          req.Note,
		Status:        domain.PaymentActive,
		AuditFields:   domain.NewAuditFields(userID, now),
	}
	if err := s.paymentRepo.SavePayment(ctx, payment); err != nil {
		logger.Error("Failed to save payment", slog.String("error", err.Error()), slog.String("member_id", req.MemberID))
		return nil, err
	}

	allocations, err := s.allocationSvc.Allocate(ctx, payment, explicit, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("Payment recorded",
		slog.String("payment_id", payment.PaymentID),
		slog.String("member_id", payment.MemberID),
		slog.String("amount", payment.Amount.StringFixed(2)),
		slog.Int("allocation_count", len(allocations)),
	)
	resp := dto.ToPaymentResponse(&payment)
	resp.Allocations = dto.ToAllocationResponses(allocations)
	return &resp, nil
}

// CancelPayment reverses a payment (Storno): its allocations are removed,
// the claims they closed reopen, and the payment is flagged STORNIERT. The
// payment row itself stays, so the cash trail remains complete.
func (s *PaymentService) CancelPayment(ctx context.Context, paymentID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return err
	}
	if payment.Status == domain.PaymentReversed {
		return fmt.Errorf("%w: payment %s is already reversed", apperrors.ErrConflict, paymentID)
	}

	if err := s.allocationSvc.ReverseAllocations(ctx, paymentID, userID); err != nil {
		return err
	}
	if err := s.paymentRepo.UpdatePaymentStatus(ctx, paymentID, domain.PaymentReversed, userID, time.Now()); err != nil {
		logger.Error("Failed to flag payment as reversed", slog.String("error", err.Error()), slog.String("payment_id", paymentID))
		return err
	}

	logger.Info("Payment reversed", slog.String("payment_id", paymentID), slog.String("member_id", payment.MemberID))
	return nil
}

// GetPayment retrieves one payment with its allocation rows.
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*dto.PaymentResponse, error) {
	payment, err := s.paymentRepo.FindPaymentByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	allocations, err := s.paymentRepo.FindAllocationsByPaymentID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	resp := dto.ToPaymentResponse(payment)
	resp.Allocations = dto.ToAllocationResponses(allocations)
	return &resp, nil
}

// ListByMember retrieves a member's payments, newest first.
func (s *PaymentService) ListByMember(ctx context.Context, vereinID string, memberID string) ([]dto.PaymentResponse, error) {
	payments, err := s.paymentRepo.FindPaymentsByMember(ctx, vereinID, memberID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.PaymentResponse, len(payments))
	for i := range payments {
		responses[i] = dto.ToPaymentResponse(&payments[i])
	}
	return responses, nil
}
