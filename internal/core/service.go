package core

import (
	"context"
	"fmt"
	"time"

	"archivecore/pkg/domain"
	"archivecore/pkg/schema"
)

// PermissionError is returned when the acting principal lacks a capability
// an operation requires.
type PermissionError struct {
	Username   string
	Capability domain.Capability
}

func (e PermissionError) Error() string {
	return fmt.Sprintf("principal %s lacks capability %s", e.Username, e.Capability)
}

// Service exposes the transactional record operations. Every call takes the
// request scope; reads are filtered through the visibility engine and writes
// ride inside one storage transaction.
type Service struct {
	store   PersistentStore
	schemas *schema.Registry
	logger  Logger
	metrics MetricsRecorder
	mode    schema.Severity
	now     func() time.Time
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithLogger attaches a structured logger.
func WithLogger(l Logger) ServiceOption {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics attaches a metrics recorder.
func WithMetrics(m MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if m != nil {
			s.metrics = m
		}
	}
}

// WithSeverity sets the validation mode applied to submitted representations.
func WithSeverity(mode schema.Severity) ServiceOption {
	return func(s *Service) { s.mode = mode }
}

// WithClock overrides the time source used for operation timing.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs a service over the supplied store and schema registry.
func NewService(store PersistentStore, schemas *schema.Registry, opts ...ServiceOption) *Service {
	s := &Service{
		store:   store,
		schemas: schemas,
		logger:  noopLogger{},
		metrics: noopMetrics{},
		mode:    schema.Strict,
		now:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying storage implementation.
func (s *Service) Store() PersistentStore { return s.store }

// Schemas returns the schema registry backing validation.
func (s *Service) Schemas() *schema.Registry { return s.schemas }

func (s *Service) observe(ctx context.Context, op string, start time.Time, err error, kv ...any) {
	elapsed := s.now().Sub(start)
	s.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		s.logger.Warn(op+" failed", append(kv, "error", err.Error())...)
		return
	}
	s.logger.Info(op, kv...)
}

// CreateRepository persists a new repository. Requires the repository
// management capability.
func (s *Service) CreateRepository(ctx context.Context, scope Scope, repo Repository) (created Repository, err error) {
	start := s.now()
	defer func() { s.observe(ctx, "create_repository", start, err, "code", repo.Code) }()

	if !scope.Principal.Can(domain.CapabilityManageRepository) {
		return Repository{}, PermissionError{Username: scope.Principal.Username, Capability: domain.CapabilityManageRepository}
	}
	_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateRepository(repo)
		return txErr
	})
	if err != nil {
		return Repository{}, err
	}
	return created, nil
}

// Repositories lists all repositories.
func (s *Service) Repositories(_ context.Context) []Repository {
	return s.store.ListRepositories()
}

// CreateRecord validates the submitted representation against the type's
// schema and persists a new record in the scope repository. The returned
// result carries any validation warnings.
func (s *Service) CreateRecord(ctx context.Context, scope Scope, typeName string, rep Representation) (out Representation, res schema.Result, err error) {
	start := s.now()
	defer func() { s.observe(ctx, "create_record", start, err, "type", typeName, "repository", scope.RepositoryID) }()

	def, ok := s.schemas.Lookup(typeName)
	if !ok {
		return nil, schema.Result{}, fmt.Errorf("unknown record type %q", typeName)
	}
	recordType := domain.RecordType(typeName)
	if _, ok := domain.DefinitionFor(recordType); !ok {
		return nil, schema.Result{}, fmt.Errorf("record type %q is not persistable", typeName)
	}

	attrs, res, err := schema.FromRepresentation(def, rep, s.mode)
	if err != nil {
		return nil, res, err
	}
	plain, names, linkedRecords, linkedAgents := splitAttributes(attrs)

	var created Record
	_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		created, txErr = tx.CreateRecord(scope.RepositoryID, Record{
			Type:          recordType,
			Attributes:    plain,
			Names:         names,
			LinkedRecords: linkedRecords,
			LinkedAgents:  linkedAgents,
		})
		return txErr
	})
	if err != nil {
		return nil, res, err
	}
	return toRepresentation(created), res, nil
}

// UpdateRecord validates the submitted representation and applies it to the
// addressed record under the optimistic lock carried in lock_version. A
// missing or stale lock_version fails with ConflictError; the record is
// replaced wholesale by the cleaned submission.
func (s *Service) UpdateRecord(ctx context.Context, scope Scope, uri RecordURI, rep Representation) (out Representation, res schema.Result, err error) {
	start := s.now()
	defer func() { s.observe(ctx, "update_record", start, err, "uri", uri.String()) }()

	if uri.RepositoryID != scope.RepositoryID {
		return nil, schema.Result{}, domain.CrossRepositoryError{URI: uri, Scope: scope.RepositoryID}
	}
	def, ok := s.schemas.Lookup(string(uri.Type))
	if !ok {
		return nil, schema.Result{}, fmt.Errorf("unknown record type %q", uri.Type)
	}

	attrs, res, err := schema.FromRepresentation(def, rep, s.mode)
	if err != nil {
		return nil, res, err
	}
	plain, names, linkedRecords, linkedAgents := splitAttributes(attrs)
	expected := lockVersionOf(rep)

	var updated Record
	_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		updated, txErr = tx.UpdateRecord(uri, expected, func(r *Record) error {
			r.Attributes = plain
			r.Names = names
			r.LinkedRecords = linkedRecords
			r.LinkedAgents = linkedAgents
			return nil
		})
		return txErr
	})
	if err != nil {
		return nil, res, err
	}
	return toRepresentation(updated), res, nil
}

// GetRecord fetches one record within the scope repository. Records the
// principal may not see read as not found.
func (s *Service) GetRecord(ctx context.Context, scope Scope, uri RecordURI) (out Representation, err error) {
	start := s.now()
	defer func() { s.observe(ctx, "get_record", start, err, "uri", uri.String()) }()

	err = s.store.View(ctx, func(v TransactionView) error {
		rec, viewErr := v.FindRecord(scope.RepositoryID, uri)
		if viewErr != nil {
			return viewErr
		}
		if !domain.Visible(rec, scope.Principal, v.Resolver(scope.RepositoryID)) {
			return domain.NotFoundError{URI: uri}
		}
		out = toRepresentation(rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ListRecords lists the scope repository's records of the named type,
// narrowed by any supplied filters and filtered through the visibility
// engine.
func (s *Service) ListRecords(ctx context.Context, scope Scope, typeName string, filters ...domain.ListFilter) (out []Representation, err error) {
	start := s.now()
	defer func() {
		s.observe(ctx, "list_records", start, err, "type", typeName, "repository", scope.RepositoryID)
	}()

	recordType := domain.RecordType(typeName)
	if _, ok := domain.DefinitionFor(recordType); !ok {
		return nil, fmt.Errorf("unknown record type %q", typeName)
	}
	err = s.store.View(ctx, func(v TransactionView) error {
		resolve := v.Resolver(scope.RepositoryID)
		for _, rec := range v.ListRecords(scope.RepositoryID, recordType, filters...) {
			if !domain.Visible(rec, scope.Principal, resolve) {
				continue
			}
			out = append(out, toRepresentation(rec))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SuppressRecord sets the record's suppression flag. Requires the repository
// management capability. Dependent events are never touched; their
// visibility is derived at read time.
func (s *Service) SuppressRecord(ctx context.Context, scope Scope, uri RecordURI, suppressed bool) (out Representation, err error) {
	start := s.now()
	defer func() { s.observe(ctx, "suppress_record", start, err, "uri", uri.String(), "suppressed", suppressed) }()

	if !scope.Principal.Can(domain.CapabilityManageRepository) {
		return nil, PermissionError{Username: scope.Principal.Username, Capability: domain.CapabilityManageRepository}
	}
	if uri.RepositoryID != scope.RepositoryID {
		return nil, domain.CrossRepositoryError{URI: uri, Scope: scope.RepositoryID}
	}

	var rec Record
	_, err = s.store.RunInTransaction(ctx, func(tx Transaction) error {
		var txErr error
		rec, txErr = tx.SetSuppressed(uri, suppressed)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return toRepresentation(rec), nil
}
