package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ridenow-service/internal/domain/entity"
	"ridenow-service/internal/domain/repository"
	"ridenow-service/pkg/logger"
	"ridenow-service/pkg/metrics"
	"ridenow-service/pkg/utils"

	"github.com/avast/retry-go/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// RideOrchestratorConfig tunes the ride creation saga
type RideOrchestratorConfig struct {
	Currency    string
	CallTimeout time.Duration
	// ReserveDriver marks the selected driver unavailable before the ride is
	// persisted and releases it again if the saga fails afterwards.
	ReserveDriver        bool
	CompensationAttempts int
	CompensationDelay    time.Duration
}

// CreateRideRequest is the input of CreateRide
type CreateRideRequest struct {
	PassengerName string `json:"passenger_name"`
	FromZone      string `json:"from_zone"`
	ToZone        string `json:"to_zone"`
}

func (r CreateRideRequest) normalized() CreateRideRequest {
	return CreateRideRequest{
		PassengerName: strings.TrimSpace(r.PassengerName),
		FromZone:      utils.NormalizeZone(r.FromZone),
		ToZone:        utils.NormalizeZone(r.ToZone),
	}
}

// Validate checks a normalized request
func (r CreateRideRequest) Validate() error {
	zoneRule := validation.By(func(value interface{}) error {
		if zone, _ := value.(string); !utils.IsValidZone(zone) {
			return errors.New("must be an alphanumeric zone code")
		}
		return nil
	})
	return validation.ValidateStruct(&r,
		validation.Field(&r.PassengerName, validation.Required),
		validation.Field(&r.FromZone, validation.Required, zoneRule),
		validation.Field(&r.ToZone, validation.Required, zoneRule),
	)
}

// RideOrchestrator drives the driver directory, pricing and payment
// collaborators and the ride store through the ride creation saga.
type RideOrchestrator struct {
	rides    repository.RideRepository
	events   repository.RideEventRepository
	drivers  repository.DriverDirectoryRepository
	pricing  repository.PricingRepository
	payments repository.PaymentRepository
	metrics  *metrics.Metrics
	logger   logger.Logger
	cfg      RideOrchestratorConfig
}

// NewRideOrchestrator creates a new ride orchestrator
func NewRideOrchestrator(
	rides repository.RideRepository,
	events repository.RideEventRepository,
	drivers repository.DriverDirectoryRepository,
	pricing repository.PricingRepository,
	payments repository.PaymentRepository,
	metrics *metrics.Metrics,
	logger logger.Logger,
	cfg RideOrchestratorConfig,
) *RideOrchestrator {
	if events == nil {
		events = nopEventRepository{}
	}
	if cfg.Currency == "" {
		cfg.Currency = utils.DEFAULT_CURRENCY
	}
	if cfg.CompensationAttempts < 1 {
		cfg.CompensationAttempts = 1
	}
	return &RideOrchestrator{
		rides:    rides,
		events:   events,
		drivers:  drivers,
		pricing:  pricing,
		payments: payments,
		metrics:  metrics,
		logger:   logger,
		cfg:      cfg,
	}
}

// CreateRide runs the saga: resolve driver, resolve price, persist the
// provisional ride, authorize payment. Nothing is persisted before both the
// driver and the price are known. Once the ride is persisted the saga runs to
// a terminal status even if ctx is cancelled.
func (o *RideOrchestrator) CreateRide(ctx context.Context, req CreateRideRequest) (ride *entity.Ride, err error) {
	started := time.Now()
	o.metrics.RideRequested()

	saga := o.newSaga()
	saga.holdEvents = true
	defer func() {
		saga.finish(ctx, err, started)
	}()

	req = req.normalized()
	if err := req.Validate(); err != nil {
		return nil, &OrchestrationError{Kind: KindInvalidRequest, Err: err}
	}
	saga.log.Info("Creating ride", "fromZone", req.FromZone, "toZone", req.ToZone)

	driver, err := saga.resolveDriver(ctx, req.FromZone)
	if err != nil {
		return nil, err
	}

	price, err := saga.resolvePrice(ctx, req.FromZone, req.ToZone)
	if err != nil {
		return nil, err
	}

	// no side effect below may be abandoned by the caller
	sagaCtx := context.WithoutCancel(ctx)

	if o.cfg.ReserveDriver {
		if err := saga.reserveDriver(sagaCtx, driver.ID); err != nil {
			return nil, err
		}
	}

	created, err := saga.persistRide(sagaCtx, req, driver.ID, price.Amount)
	if err != nil {
		saga.compensate(sagaCtx)
		return nil, err
	}

	return saga.authorizePayment(sagaCtx, created)
}

// GetRide reads a ride from the store
func (o *RideOrchestrator) GetRide(ctx context.Context, id int64) (*entity.Ride, error) {
	ride, err := o.rides.Get(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &OrchestrationError{Kind: KindNotFound, Collaborator: utils.CollaboratorRideStore, RideID: id, Err: err}
		}
		return nil, &OrchestrationError{Kind: KindPersistenceFailure, Collaborator: utils.CollaboratorRideStore, RideID: id, Err: err}
	}
	return ride, nil
}

// ListRideEvents returns the saga journal of an existing ride
func (o *RideOrchestrator) ListRideEvents(ctx context.Context, id int64) ([]*entity.RideEvent, error) {
	if _, err := o.GetRide(ctx, id); err != nil {
		return nil, err
	}

	events, err := o.events.FindByRideID(ctx, id)
	if err != nil {
		return nil, &OrchestrationError{Kind: KindPersistenceFailure, Collaborator: utils.CollaboratorRideJournal, RideID: id, Err: err}
	}
	return events, nil
}

// CaptureRidePayment captures the authorized payment of a ride. The ride
// itself is not changed; the capture status lives in the payment ledger.
func (o *RideOrchestrator) CaptureRidePayment(ctx context.Context, id int64) (*entity.PaymentResult, error) {
	ride, err := o.GetRide(ctx, id)
	if err != nil {
		return nil, err
	}

	saga := o.newSaga()
	saga.rideID = ride.ID
	saga.log = saga.log.With("rideId", ride.ID)

	if ride.Status != entity.RidePaymentAuthorized || ride.PaymentID == nil {
		return nil, &OrchestrationError{
			Kind:   KindStateConflict,
			RideID: ride.ID,
			Err:    fmt.Errorf("%w: ride is %s, payment can only be captured after authorization", entity.ErrStateConflict, ride.Status),
		}
	}

	callCtx, cancel := o.callContext(ctx)
	defer cancel()

	result, err := o.payments.Capture(callCtx, *ride.PaymentID)
	if err != nil {
		saga.record(ctx, entity.StepCapturePayment, entity.OutcomeFailed, utils.CollaboratorPayment, err.Error())
		saga.log.Warn("Payment capture failed", "paymentId", *ride.PaymentID, "error", err)

		oe := &OrchestrationError{Kind: KindUpstreamUnavailable, Collaborator: utils.CollaboratorPayment, RideID: ride.ID, Err: err}
		switch {
		case errors.Is(err, entity.ErrStateConflict):
			oe.Kind = KindStateConflict
		case errors.Is(err, entity.ErrNotFound):
			oe.Kind = KindNotFound
		default:
			o.metrics.CollaboratorError(utils.CollaboratorPayment)
		}
		return nil, oe
	}

	saga.record(ctx, entity.StepCapturePayment, entity.OutcomeSucceeded, utils.CollaboratorPayment,
		fmt.Sprintf("payment %d %s", result.PaymentID, result.Status))
	saga.log.Info("Payment captured", "paymentId", result.PaymentID)
	return result, nil
}

func (o *RideOrchestrator) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.cfg.CallTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, o.cfg.CallTimeout)
}

func (o *RideOrchestrator) newSaga() *rideSaga {
	id := uuid.NewString()
	return &rideSaga{
		o:   o,
		id:  id,
		log: o.logger.With("sagaId", id),
	}
}

// rideSaga carries the state of one CreateRide run
type rideSaga struct {
	o              *RideOrchestrator
	id             string
	log            logger.Logger
	rideID         int64
	reservedDriver *int64
	holdEvents     bool
	pending        []*entity.RideEvent
}

func (s *rideSaga) resolveDriver(ctx context.Context, zone string) (*entity.Driver, error) {
	callCtx, cancel := s.o.callContext(ctx)
	defer cancel()

	drivers, err := s.o.drivers.ListAvailable(callCtx, zone)
	if err != nil {
		return nil, s.upstreamFailure(ctx, entity.StepResolveDriver, utils.CollaboratorDriverDirectory, err)
	}

	if len(drivers) == 0 {
		s.record(ctx, entity.StepResolveDriver, entity.OutcomeFailed, utils.CollaboratorDriverDirectory, "no available driver in zone "+zone)
		s.log.Info("No available driver", "zone", zone)
		return nil, &OrchestrationError{
			Kind:         KindNoAvailableDriver,
			Collaborator: utils.CollaboratorDriverDirectory,
			Err:          fmt.Errorf("no available driver in zone %s", zone),
		}
	}

	// first candidate in the directory's own order
	driver := drivers[0]
	if driver.ID <= 0 {
		return nil, s.upstreamFailure(ctx, entity.StepResolveDriver, utils.CollaboratorDriverDirectory,
			fmt.Errorf("%w: driver without id", entity.ErrUnexpectedResponse))
	}

	s.record(ctx, entity.StepResolveDriver, entity.OutcomeSucceeded, utils.CollaboratorDriverDirectory, fmt.Sprintf("driver %d", driver.ID))
	s.log.Info("Driver selected", "driverId", driver.ID, "candidates", len(drivers))
	return &driver, nil
}

func (s *rideSaga) resolvePrice(ctx context.Context, fromZone, toZone string) (*entity.Price, error) {
	callCtx, cancel := s.o.callContext(ctx)
	defer cancel()

	price, err := s.o.pricing.GetPrice(callCtx, fromZone, toZone)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			s.record(ctx, entity.StepResolvePrice, entity.OutcomeFailed, utils.CollaboratorPricing, err.Error())
			s.log.Info("No price for route", "fromZone", fromZone, "toZone", toZone)
			return nil, &OrchestrationError{Kind: KindNoPriceForRoute, Collaborator: utils.CollaboratorPricing, Err: err}
		}
		return nil, s.upstreamFailure(ctx, entity.StepResolvePrice, utils.CollaboratorPricing, err)
	}

	if price.Amount < 0 {
		return nil, s.upstreamFailure(ctx, entity.StepResolvePrice, utils.CollaboratorPricing,
			fmt.Errorf("%w: negative amount %v", entity.ErrUnexpectedResponse, price.Amount))
	}

	s.record(ctx, entity.StepResolvePrice, entity.OutcomeSucceeded, utils.CollaboratorPricing, fmt.Sprintf("%.2f", price.Amount))
	s.log.Info("Price resolved", "amount", price.Amount)
	return price, nil
}

func (s *rideSaga) reserveDriver(ctx context.Context, driverID int64) error {
	callCtx, cancel := s.o.callContext(ctx)
	defer cancel()

	if _, err := s.o.drivers.SetAvailability(callCtx, driverID, false); err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			s.record(ctx, entity.StepReserveDriver, entity.OutcomeFailed, utils.CollaboratorDriverDirectory, err.Error())
			return &OrchestrationError{Kind: KindNoAvailableDriver, Collaborator: utils.CollaboratorDriverDirectory, Err: err}
		}
		return s.upstreamFailure(ctx, entity.StepReserveDriver, utils.CollaboratorDriverDirectory, err)
	}

	s.reservedDriver = &driverID
	s.record(ctx, entity.StepReserveDriver, entity.OutcomeSucceeded, utils.CollaboratorDriverDirectory, fmt.Sprintf("driver %d", driverID))
	s.log.Info("Driver reserved", "driverId", driverID)
	return nil
}

func (s *rideSaga) persistRide(ctx context.Context, req CreateRideRequest, driverID int64, amount float64) (*entity.Ride, error) {
	provisional, err := entity.NewAssignedRide(req.PassengerName, req.FromZone, req.ToZone, driverID, amount)
	if err != nil {
		return nil, &OrchestrationError{Kind: KindUpstreamUnavailable, Collaborator: utils.CollaboratorPricing, Err: err}
	}

	callCtx, cancel := s.o.callContext(ctx)
	defer cancel()

	created, err := s.o.rides.Create(callCtx, provisional)
	if err != nil {
		s.record(ctx, entity.StepPersistRide, entity.OutcomeFailed, utils.CollaboratorRideStore, err.Error())
		s.log.Error("Failed to persist provisional ride", "driverId", driverID, "error", err)
		return nil, &OrchestrationError{Kind: KindPersistenceFailure, Collaborator: utils.CollaboratorRideStore, Err: err}
	}

	s.rideID = created.ID
	s.log = s.log.With("rideId", created.ID)
	s.flush(ctx)
	s.record(ctx, entity.StepPersistRide, entity.OutcomeSucceeded, utils.CollaboratorRideStore, string(created.Status))
	s.log.Info("Provisional ride persisted", "driverId", driverID, "amount", amount)
	return created, nil
}

func (s *rideSaga) authorizePayment(ctx context.Context, ride *entity.Ride) (*entity.Ride, error) {
	callCtx, cancel := s.o.callContext(ctx)
	result, err := s.o.payments.Authorize(callCtx, ride.ID, *ride.Amount, s.o.cfg.Currency)
	cancel()

	if err != nil {
		s.o.metrics.CollaboratorError(utils.CollaboratorPayment)
		s.record(ctx, entity.StepAuthorizePayment, entity.OutcomeFailed, utils.CollaboratorPayment, err.Error())
		s.log.Warn("Payment authorization failed", "error", err)
		return nil, s.failRide(ctx, ride.ID, err)
	}

	callCtx, cancel = s.o.callContext(ctx)
	defer cancel()

	updated, err := s.o.rides.Update(callCtx, ride.ID, func(r *entity.Ride) error {
		return r.AttachPayment(result.PaymentID)
	})
	if err != nil {
		// the hold exists in the ledger but the ride does not reference it
		s.record(ctx, entity.StepPersistRide, entity.OutcomeFailed, utils.CollaboratorRideStore,
			fmt.Sprintf("payment %d authorized but not attached: %v", result.PaymentID, err))
		s.log.Error("Failed to attach authorized payment to ride", "paymentId", result.PaymentID, "error", err)
		return nil, &OrchestrationError{Kind: KindPersistenceFailure, Collaborator: utils.CollaboratorRideStore, RideID: ride.ID, Err: err}
	}

	s.record(ctx, entity.StepAuthorizePayment, entity.OutcomeSucceeded, utils.CollaboratorPayment, fmt.Sprintf("payment %d", result.PaymentID))
	s.log.Info("Ride payment authorized", "paymentId", result.PaymentID)
	return updated, nil
}

// failRide durably marks the ride FAILED, then releases the driver if this
// saga reserved it. The driver is only released once FAILED is stored.
func (s *rideSaga) failRide(ctx context.Context, rideID int64, cause error) error {
	reason := fmt.Sprintf("payment authorization failed: %v", cause)

	callCtx, cancel := s.o.callContext(ctx)
	defer cancel()

	_, err := s.o.rides.Update(callCtx, rideID, func(r *entity.Ride) error {
		return r.MarkFailed(reason)
	})
	if err != nil {
		s.record(ctx, entity.StepMarkFailed, entity.OutcomeFailed, utils.CollaboratorRideStore, err.Error())
		// the stored ride still holds this driver, so it stays reserved
		s.log.Error("Failed to mark ride as FAILED, keeping driver reserved", "driverId", s.reservedDriver, "error", err)
		return &OrchestrationError{
			Kind:         KindPersistenceFailure,
			Collaborator: utils.CollaboratorRideStore,
			RideID:       rideID,
			Err:          fmt.Errorf("%v; recording failure: %w", cause, err),
		}
	}

	s.record(ctx, entity.StepMarkFailed, entity.OutcomeSucceeded, utils.CollaboratorRideStore, reason)
	s.log.Info("Ride marked as FAILED")
	s.compensate(ctx)

	return &OrchestrationError{Kind: KindPaymentAuthorizationFailed, Collaborator: utils.CollaboratorPayment, RideID: rideID, Err: cause}
}

// compensate releases a driver reserved by this saga. Best effort: the
// outcome is logged and journaled but never changes the saga result.
func (s *rideSaga) compensate(ctx context.Context) {
	if s.reservedDriver == nil {
		return
	}
	driverID := *s.reservedDriver

	err := retry.Do(
		func() error {
			callCtx, cancel := s.o.callContext(ctx)
			defer cancel()
			_, err := s.o.drivers.SetAvailability(callCtx, driverID, true)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(uint(s.o.cfg.CompensationAttempts)),
		retry.Delay(s.o.cfg.CompensationDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, entity.ErrNotFound)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.log.Warn("Retrying driver release", "driverId", driverID, "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		s.o.metrics.Compensation("failed")
		s.record(ctx, entity.StepReleaseDriver, entity.OutcomeFailed, utils.CollaboratorDriverDirectory, err.Error())
		s.log.Error("Failed to release reserved driver", "driverId", driverID, "error", err)
		return
	}

	s.reservedDriver = nil
	s.o.metrics.Compensation("released")
	s.record(ctx, entity.StepReleaseDriver, entity.OutcomeSucceeded, utils.CollaboratorDriverDirectory, fmt.Sprintf("driver %d", driverID))
	s.log.Info("Reserved driver released", "driverId", driverID)
}

func (s *rideSaga) upstreamFailure(ctx context.Context, step, collaborator string, err error) error {
	s.o.metrics.CollaboratorError(collaborator)
	s.record(ctx, step, entity.OutcomeFailed, collaborator, err.Error())
	s.log.Warn("Collaborator call failed", "step", step, "collaborator", collaborator, "error", err)
	return &OrchestrationError{Kind: KindUpstreamUnavailable, Collaborator: collaborator, RideID: s.rideID, Err: err}
}

// record appends to the saga journal. Steps taken before the ride exists are
// held back and written once it is persisted, or when the saga ends without
// one. Journal failures never fail the saga.
func (s *rideSaga) record(ctx context.Context, step, outcome, collaborator, detail string) {
	event := &entity.RideEvent{
		RideID:       s.rideID,
		SagaID:       s.id,
		Step:         step,
		Outcome:      outcome,
		Collaborator: collaborator,
		Detail:       detail,
		OccurredAt:   time.Now().UTC(),
	}
	if s.rideID == 0 && s.holdEvents {
		s.pending = append(s.pending, event)
		return
	}
	s.append(ctx, event)
}

func (s *rideSaga) flush(ctx context.Context) {
	for _, event := range s.pending {
		event.RideID = s.rideID
		s.append(ctx, event)
	}
	s.pending = nil
}

func (s *rideSaga) append(ctx context.Context, event *entity.RideEvent) {
	callCtx, cancel := s.o.callContext(context.WithoutCancel(ctx))
	defer cancel()

	if err := s.o.events.Append(callCtx, event); err != nil {
		s.log.Warn("Failed to journal saga step", "step", event.Step, "error", err)
	}
}

func (s *rideSaga) finish(ctx context.Context, err error, started time.Time) {
	s.flush(ctx)

	outcome := "authorized"
	if kind, ok := KindOf(err); ok {
		outcome = string(kind)
	} else if err != nil {
		outcome = "error"
	}
	s.o.metrics.ObserveSaga(outcome, started)
	s.log.Info("Saga finished", "outcome", outcome, "duration", time.Since(started).String())
}

type nopEventRepository struct{}

func (nopEventRepository) Append(context.Context, *entity.RideEvent) error { return nil }

func (nopEventRepository) FindByRideID(context.Context, int64) ([]*entity.RideEvent, error) {
	return nil, nil
}
