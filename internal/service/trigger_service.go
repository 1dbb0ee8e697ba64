// Package service implements trigger registration and the notify dispatch
// flow between the HTTP handlers and the registry.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/shaharia-lab/notifier/internal/channel"
	"github.com/shaharia-lab/notifier/internal/eventbus"
	"github.com/shaharia-lab/notifier/internal/metrics"
	"github.com/shaharia-lab/notifier/internal/storage"
	"github.com/shaharia-lab/notifier/internal/trigger"
)

const tracerName = "github.com/shaharia-lab/notifier/internal/service"

// Registry is the subset of registry.Registry the service uses.
type Registry interface {
	Register(ctx context.Context, def *trigger.Definition) error
	Lookup(name string) (*trigger.Definition, channel.Adapter, bool)
	List() []*trigger.Definition
	Len() int
}

// TriggerService defines the trigger use cases exposed over HTTP.
type TriggerService interface {
	// Register validates reg and adds the resulting trigger. Errors carry
	// their HTTP status through trigger.StatusCode.
	Register(ctx context.Context, reg *trigger.Registration) (*trigger.Definition, error)

	// Notify dispatches payload through the named trigger's channel. It never
	// fails: every outcome is a Result.
	Notify(ctx context.Context, name string, payload map[string]any) Result

	// List returns all triggers in registration order.
	List(ctx context.Context) []*trigger.Definition

	// Get returns the named trigger or a *trigger.NotFoundError.
	Get(ctx context.Context, name string) (*trigger.Definition, error)

	// Deliveries returns the most recent delivery log entries.
	Deliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error)
}

// Options tune the dispatch flow.
type Options struct {
	// ValidatePayload checks notify payloads against the trigger structure.
	ValidatePayload bool
	// DispatchTimeout bounds each adapter call. Zero means no bound.
	DispatchTimeout time.Duration
	// Tracer records a span per dispatch. Defaults to the global provider.
	Tracer trace.Tracer
}

type triggerService struct {
	registry   Registry
	deliveries storage.DeliveryStore
	publisher  EventPublisher
	metrics    *metrics.Metrics
	opts       Options
	logger     *slog.Logger
}

// NewTriggerService returns a TriggerService. deliveries, publisher and m
// may be nil.
func NewTriggerService(
	registry Registry,
	deliveries storage.DeliveryStore,
	publisher EventPublisher,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) TriggerService {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(tracerName)
	}
	m.SetTriggers(registry.Len())
	return &triggerService{
		registry:   registry,
		deliveries: deliveries,
		publisher:  publisher,
		metrics:    m,
		opts:       opts,
		logger:     logger,
	}
}

func (s *triggerService) Register(ctx context.Context, reg *trigger.Registration) (*trigger.Definition, error) {
	def, err := trigger.NewDefinition(reg)
	if err == nil {
		err = s.registry.Register(ctx, def)
	}
	if err != nil {
		s.metrics.RecordRegistration(trigger.StatusCode(err))
		s.logger.Info("trigger registration rejected", "error", err)
		return nil, err
	}

	s.metrics.RecordRegistration(http.StatusCreated)
	s.metrics.SetTriggers(s.registry.Len())
	s.publisher.Publish(eventbus.TypeTriggerRegistered, map[string]string{
		eventbus.KeyTrigger: def.Name,
		eventbus.KeyService: def.Service,
	})
	s.logger.Info("trigger registered", "trigger", def.Name, "service", def.Service)
	return def.Clone(), nil
}

func (s *triggerService) Notify(ctx context.Context, name string, payload map[string]any) (res Result) {
	start := time.Now()
	def, adapter, ok := s.registry.Lookup(name)
	service := ""
	if ok {
		service = def.Service
	}
	defer func() { s.recordNotify(name, service, res, time.Since(start)) }()

	if !ok {
		return resultOf(&trigger.NotFoundError{Name: name})
	}
	if len(payload) == 0 {
		return resultOf(&trigger.PayloadError{Message: "Invalid payload"})
	}
	if s.opts.ValidatePayload {
		if err := trigger.CheckPayload(def.Structure, payload); err != nil {
			return resultOf(err)
		}
	}
	if adapter == nil {
		return resultOf(&trigger.AdapterContractError{Name: name})
	}

	msg, err := s.dispatch(ctx, name, adapter, channel.Payload(payload))
	if err != nil {
		return resultOf(err)
	}
	return Result{Status: http.StatusOK, Message: msg}
}

// dispatch runs the adapter, turning a panic into a generic server error.
func (s *triggerService) dispatch(ctx context.Context, name string, adapter channel.Adapter, payload channel.Payload) (msg string, err error) {
	if s.opts.DispatchTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.DispatchTimeout)
		defer cancel()
	}
	ctx, span := s.opts.Tracer.Start(ctx, "channel.dispatch", trace.WithAttributes(
		attribute.String("notifier.trigger", name),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, trigger.Message(err))
		}
		span.End()
	}()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("channel adapter panicked", "trigger", name, "panic", fmt.Sprint(r))
			msg, err = "", trigger.ErrServer
		}
	}()
	return adapter.Trigger(ctx, payload)
}

func (s *triggerService) recordNotify(name, service string, res Result, d time.Duration) {
	s.metrics.RecordNotification(service, res.Status, d)

	level := slog.LevelInfo
	if !res.OK() {
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, "trigger notified",
		"trigger", name,
		"service", service,
		"status", res.Status,
		"message", res.Message,
		"duration_ms", d.Milliseconds(),
	)

	s.publisher.Publish(eventbus.TypeTriggerNotified, map[string]string{
		eventbus.KeyTrigger:    name,
		eventbus.KeyService:    service,
		eventbus.KeyStatus:     strconv.Itoa(res.Status),
		eventbus.KeyMessage:    res.Message,
		eventbus.KeyDurationMS: strconv.FormatInt(d.Milliseconds(), 10),
	})
}

func (s *triggerService) List(_ context.Context) []*trigger.Definition {
	return s.registry.List()
}

func (s *triggerService) Get(_ context.Context, name string) (*trigger.Definition, error) {
	def, _, ok := s.registry.Lookup(name)
	if !ok {
		return nil, &trigger.NotFoundError{Name: name}
	}
	return def, nil
}

func (s *triggerService) Deliveries(ctx context.Context, limit int) ([]storage.DeliveryLogEntry, error) {
	if s.deliveries == nil {
		return []storage.DeliveryLogEntry{}, nil
	}
	entries, err := s.deliveries.ListDeliveries(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing deliveries: %w", err)
	}
	return entries, nil
}
