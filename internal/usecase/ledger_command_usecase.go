package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iho/ledger-es/internal/domain"
	"github.com/iho/ledger-es/internal/eventsourcing"
)

const tracerName = "github.com/iho/ledger-es/internal/usecase"

// LedgerCommandUseCase handles the ledger commands.
type LedgerCommandUseCase struct {
	client   EventClient
	idGen    IDGenerator
	logger   zerolog.Logger
	recorder CommandRecorder
	tracer   trace.Tracer
	timeout  time.Duration
}

// CommandOption configures a LedgerCommandUseCase.
type CommandOption func(*LedgerCommandUseCase)

// WithCommandRecorder records the outcome of every command.
func WithCommandRecorder(r CommandRecorder) CommandOption {
	return func(uc *LedgerCommandUseCase) {
		uc.recorder = r
	}
}

// WithCommandTimeout bounds each command. Zero disables the bound.
func WithCommandTimeout(d time.Duration) CommandOption {
	return func(uc *LedgerCommandUseCase) {
		uc.timeout = d
	}
}

// NewLedgerCommandUseCase creates a new LedgerCommandUseCase.
func NewLedgerCommandUseCase(client EventClient, idGen IDGenerator, logger zerolog.Logger, opts ...CommandOption) *LedgerCommandUseCase {
	uc := &LedgerCommandUseCase{
		client:  client,
		idGen:   idGen,
		logger:  logger.With().Str("component", "ledger_commands").Logger(),
		tracer:  otel.Tracer(tracerName),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// OpenLedgerInput represents input for opening a ledger.
type OpenLedgerInput struct {
	LedgerID   string
	LedgerName string
}

// JournalInput represents input for a receipt or a payment.
type JournalInput struct {
	LedgerID    string
	Description string
	Amount      decimal.Decimal
}

// CloseLedgerInput represents input for closing a ledger.
type CloseLedgerInput struct {
	LedgerID string
}

// OpenLedger opens a new ledger.
func (uc *LedgerCommandUseCase) OpenLedger(ctx context.Context, input OpenLedgerInput) (*domain.LedgerOpened, error) {
	err := errors.Join(
		domain.ValidateLedgerID(input.LedgerID),
		domain.ValidateLedgerName(input.LedgerName),
	)
	return execute(ctx, uc, "open_ledger", input.LedgerID, err, &domain.LedgerOpened{
		LedgerID:   input.LedgerID,
		LedgerName: input.LedgerName,
	})
}

// JournalReceipt credits an open ledger.
func (uc *LedgerCommandUseCase) JournalReceipt(ctx context.Context, input JournalInput) (*domain.ReceiptJournalled, error) {
	err := validateJournal(input)
	return execute(ctx, uc, "journal_receipt", input.LedgerID, err, &domain.ReceiptJournalled{
		LedgerID:    input.LedgerID,
		Description: input.Description,
		Amount:      input.Amount,
	})
}

// JournalPayment debits an open ledger with enough balance.
func (uc *LedgerCommandUseCase) JournalPayment(ctx context.Context, input JournalInput) (*domain.PaymentJournalled, error) {
	err := validateJournal(input)
	return execute(ctx, uc, "journal_payment", input.LedgerID, err, &domain.PaymentJournalled{
		LedgerID:    input.LedgerID,
		Description: input.Description,
		Amount:      input.Amount,
	})
}

// CloseLedger closes an open ledger with a zero balance.
func (uc *LedgerCommandUseCase) CloseLedger(ctx context.Context, input CloseLedgerInput) (*domain.LedgerClosed, error) {
	err := domain.ValidateLedgerID(input.LedgerID)
	return execute(ctx, uc, "close_ledger", input.LedgerID, err, &domain.LedgerClosed{
		LedgerID: input.LedgerID,
	})
}

func validateJournal(input JournalInput) error {
	return errors.Join(
		domain.ValidateLedgerID(input.LedgerID),
		domain.ValidateDescription(input.Description),
		domain.ValidateAmount(input.Amount),
	)
}

// execute runs one command: replay the ledger, apply the candidate event to
// check the transition, then append it guarded by the version read.
func execute[E domain.LedgerEvent](ctx context.Context, uc *LedgerCommandUseCase, command, ledgerID string, invalid error, event E) (E, error) {
	var zero E
	start := time.Now()

	ctx, span := uc.tracer.Start(ctx, "ledger."+command, trace.WithAttributes(
		attribute.String("ledger.id", ledgerID),
	))
	defer span.End()

	err := invalid
	if err == nil {
		err = uc.appendEvent(ctx, ledgerID, event)
	}

	outcome := classify(err)
	if uc.recorder != nil {
		uc.recorder.ObserveCommand(command, outcome, time.Since(start))
	}

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		uc.logFailure(command, ledgerID, outcome, err)
		return zero, err
	}

	return event, nil
}

func (uc *LedgerCommandUseCase) appendEvent(ctx context.Context, ledgerID string, event domain.LedgerEvent) error {
	if uc.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.timeout)
		defer cancel()
	}

	stream := uc.client.StreamNameFor(domain.LedgerKind, ledgerID)

	ledger, version, err := eventsourcing.Replay[domain.Ledger](ctx, uc.client, stream)
	if err != nil && !errors.Is(err, eventsourcing.ErrStreamNotFound) {
		return err
	}

	event.Meta().EventID = uc.idGen.Generate()
	if err := ledger.Apply(event); err != nil {
		return err
	}

	_, err = uc.client.Append(ctx, stream, ledger, version, event)
	return err
}

func classify(err error) string {
	var (
		validation *domain.ValidationError
		transition *eventsourcing.InvalidStateTransitionError
		conflict   *eventsourcing.ConcurrencyError
	)
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &validation), errors.As(err, &transition):
		return OutcomeInvalid
	case errors.As(err, &conflict):
		return OutcomeConflict
	default:
		return OutcomeError
	}
}

func (uc *LedgerCommandUseCase) logFailure(command, ledgerID, outcome string, err error) {
	event := uc.logger.Warn()
	if outcome == OutcomeError {
		event = uc.logger.Error()
	}
	event.Err(err).
		Str("command", command).
		Str("ledger_id", ledgerID).
		Str("outcome", outcome).
		Msg("command failed")
}
