// Package core wires the acquisition-modeling packages into one service:
// the setup library, validation rules, beam computations, the export
// archive and the observability hooks around all of them.
package core

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"ctcore/internal/blob"
	"ctcore/internal/infra/persistence/memory"
	"ctcore/pkg/beam"
	"ctcore/pkg/model"
	"ctcore/pkg/record"
	"ctcore/pkg/rig"
)

// Service exposes the higher-level setup operations.
type Service struct {
	store   SetupStore
	archive blob.Store
	engine  *RulesEngine
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
	clock   func() time.Time
	bins    int
}

// Option configures a service.
type Option func(*Service)

// WithLogger routes service logs to l.
func WithLogger(l Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock overrides the service time source, mainly for tests.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithMetricsRecorder routes per-operation observations to m.
func WithMetricsRecorder(m MetricsRecorder) Option {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithTracer wraps every operation in a span from t.
func WithTracer(t Tracer) Option {
	return func(s *Service) {
		if t != nil {
			s.tracer = t
		}
	}
}

// WithArchive attaches an artifact archive for setup and spectrum exports.
func WithArchive(a blob.Store) Option {
	return func(s *Service) {
		if a != nil {
			s.archive = a
		}
	}
}

// WithRulesEngine replaces the built-in validation rule set.
func WithRulesEngine(e *RulesEngine) Option {
	return func(s *Service) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithSpectrumBins sets the spectrum resolution of derived computations.
func WithSpectrumBins(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.bins = n
		}
	}
}

// NewService constructs a service over the given setup store. The startup
// registration pass runs here, before any record can reach the registry.
func NewService(store SetupStore, opts ...Option) *Service {
	EnsureBuiltins()
	s := &Service{
		store:   store,
		engine:  NewDefaultRulesEngine(),
		logger:  noopLogger{},
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		clock:   time.Now,
		bins:    beam.DefaultSpectrumBins,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over an ephemeral in-memory library.
func NewInMemoryService(opts ...Option) *Service {
	return NewService(memory.NewStore(), opts...)
}

// Store returns the underlying setup store.
func (s *Service) Store() SetupStore { return s.store }

// instrument wraps one operation with tracing, metrics and logging.
func (s *Service) instrument(ctx context.Context, operation string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, operation)
	started := s.clock()
	err := fn(ctx)
	duration := s.clock().Sub(started)
	span.End(err)
	s.metrics.Observe(ctx, operation, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", operation, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", operation, "duration", duration)
	}
	return err
}

// SaveSetup validates and stores the system under its own name. Validation
// errors do not block the save; they are logged so that a partially
// configured setup can still be persisted and repaired later.
func (s *Service) SaveSetup(ctx context.Context, system *rig.System) (Report, error) {
	var report Report
	err := s.instrument(ctx, "save_setup", func(ctx context.Context) error {
		if system == nil {
			return fmt.Errorf("core: nil system")
		}
		if system.Name() == "" {
			return fmt.Errorf("core: system has no name")
		}
		report = s.engine.Evaluate(system)
		for _, issue := range report.Issues {
			s.logger.Warn("setup validation finding",
				"setup", system.Name(), "rule", issue.Rule, "severity", string(issue.Severity), "finding", issue.Message)
		}
		return s.store.SaveSetup(ctx, system.Name(), system.ToRecord())
	})
	return report, err
}

// LoadSetup reconstructs a stored system. Components with unregistered tags
// degrade to generic placeholders; the decode report says how much survived.
func (s *Service) LoadSetup(ctx context.Context, name string) (*rig.System, rig.DecodeReport, error) {
	var (
		system *rig.System
		report rig.DecodeReport
	)
	err := s.instrument(ctx, "load_setup", func(ctx context.Context) error {
		rec, err := s.store.LoadSetup(ctx, name)
		if err != nil {
			return err
		}
		system, report, err = rig.SystemFromRecord(rec)
		if err != nil {
			return err
		}
		if report.Degraded() {
			s.logger.Warn("setup decoded with degradation",
				"setup", name, "exact", report.Exact, "fallback", report.Fallback, "skipped", report.Skipped)
		}
		return nil
	})
	if err != nil {
		return nil, rig.DecodeReport{}, err
	}
	return system, report, nil
}

// ListSetups returns the stored setup names in ascending order.
func (s *Service) ListSetups(ctx context.Context) ([]string, error) {
	var names []string
	err := s.instrument(ctx, "list_setups", func(ctx context.Context) error {
		var err error
		names, err = s.store.ListSetups(ctx)
		return err
	})
	return names, err
}

// DeleteSetup removes a stored setup.
func (s *Service) DeleteSetup(ctx context.Context, name string) error {
	return s.instrument(ctx, "delete_setup", func(ctx context.Context) error {
		return s.store.DeleteSetup(ctx, name)
	})
}

// ValidateSetup runs the rule set over the system without persisting it.
func (s *Service) ValidateSetup(system *rig.System) Report {
	if system == nil {
		return Report{Issues: []Issue{{Rule: "completeness", Severity: SeverityError, Message: "no setup"}}}
	}
	return s.engine.Evaluate(system)
}

// BeamQuantities bundles the derived radiation quantities of one setup.
type BeamQuantities struct {
	Spectrum            model.Spectrum
	PhotonFlux          float64
	QuantumEfficiency   float64
	DetectiveMeanEnergy float64
}

// ComputeBeam runs the radiation pipeline over a stored setup.
func (s *Service) ComputeBeam(ctx context.Context, name string) (BeamQuantities, error) {
	var out BeamQuantities
	err := s.instrument(ctx, "compute_beam", func(ctx context.Context) error {
		system, _, err := s.LoadSetup(ctx, name)
		if err != nil {
			return err
		}
		p := beam.New(system, beam.WithLogger(s.logger), beam.WithSpectrumBins(s.bins))
		if out.Spectrum, err = p.FinalSpectrum(s.bins); err != nil {
			return err
		}
		if out.PhotonFlux, err = p.FinalPhotonFlux(); err != nil {
			return err
		}
		if out.QuantumEfficiency, err = p.DetectiveQuantumEfficiency(); err != nil {
			return err
		}
		if out.DetectiveMeanEnergy, err = p.DetectiveMeanEnergy(); err != nil {
			return err
		}
		return nil
	})
	return out, err
}

// ExportSetup writes the serialized setup record to the archive under
// exports/<name>/setup-<timestamp>.json and returns the artifact info.
func (s *Service) ExportSetup(ctx context.Context, name string) (blob.Info, error) {
	var info blob.Info
	err := s.instrument(ctx, "export_setup", func(ctx context.Context) error {
		if s.archive == nil {
			return fmt.Errorf("core: no archive configured")
		}
		rec, err := s.store.LoadSetup(ctx, name)
		if err != nil {
			return err
		}
		payload, err := record.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode setup %q: %w", name, err)
		}
		key := fmt.Sprintf("exports/%s/setup-%s.json", name, s.clock().UTC().Format("20060102T150405Z"))
		info, err = s.archive.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"setup": name, "kind": "setup"},
		})
		return err
	})
	return info, err
}

// ExportSpectrum computes the final spectrum of a stored setup and writes it
// to the archive as a JSON bin series.
func (s *Service) ExportSpectrum(ctx context.Context, name string) (blob.Info, error) {
	var info blob.Info
	err := s.instrument(ctx, "export_spectrum", func(ctx context.Context) error {
		if s.archive == nil {
			return fmt.Errorf("core: no archive configured")
		}
		quantities, err := s.ComputeBeam(ctx, name)
		if err != nil {
			return err
		}
		doc := record.New().
			Set("setup", name).
			Set("bin width", quantities.Spectrum.BinWidth()).
			Set("photon flux", quantities.PhotonFlux)
		bins := make([]any, quantities.Spectrum.Len())
		for i, b := range quantities.Spectrum.Bins() {
			bins[i] = []any{b.Energy, b.Intensity}
		}
		doc.Set("bins", bins)
		payload, err := record.Marshal(doc)
		if err != nil {
			return fmt.Errorf("encode spectrum for %q: %w", name, err)
		}
		key := fmt.Sprintf("exports/%s/spectrum-%s.json", name, s.clock().UTC().Format("20060102T150405Z"))
		info, err = s.archive.Put(ctx, key, bytes.NewReader(payload), blob.PutOptions{
			ContentType: "application/json",
			Metadata:    map[string]string{"setup": name, "kind": "spectrum"},
		})
		return err
	})
	return info, err
}
