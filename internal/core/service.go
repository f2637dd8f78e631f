package core

import (
	"context"
	"fmt"
	"time"
)

// DefaultImportTimeout bounds a single spreadsheet import.
var DefaultImportTimeout = 5 * time.Minute

// ServiceConfig holds the tunables of a Service. Zero values select defaults.
type ServiceConfig struct {
	ImportTimeout       time.Duration
	MaxConcurrentImport int
	MaxImportWait       time.Duration
	ColumnMappings      []ColumnMapping
}

// Service provides enrollment and import operations over a Store.
type Service struct {
	store         Store
	limiter       *ImportLimiter
	mappings      []ColumnMapping
	importTimeout time.Duration
}

// NewService creates a new Service backed by store.
func NewService(store Store, cfg ServiceConfig) *Service {
	mappings := cfg.ColumnMappings
	if len(mappings) == 0 {
		mappings = DefaultColumnMappings()
	}
	timeout := cfg.ImportTimeout
	if timeout <= 0 {
		timeout = DefaultImportTimeout
	}
	return &Service{
		store:         store,
		limiter:       NewImportLimiter(cfg.MaxConcurrentImport, cfg.MaxImportWait),
		mappings:      mappings,
		importTimeout: timeout,
	}
}

// ImportLimiter returns the limiter guarding concurrent imports.
func (s *Service) ImportLimiter() *ImportLimiter {
	return s.limiter
}

// CreateSession stores a new session.
func (s *Service) CreateSession(ctx context.Context, req SessionRequest) (SessionView, error) {
	if req.Name == "" {
		return SessionView{}, Invalid("le nom de la session est obligatoire")
	}
	start, end := DateOnly(req.StartDate), DateOnly(req.EndDate)
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return SessionView{}, Invalid("la date de fin précède la date de début")
	}

	saved, err := s.store.SaveSession(ctx, Session{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		Location:    req.Location,
		DirectorID:  req.DirectorID,
	})
	if err != nil {
		return SessionView{}, fmt.Errorf("save session: %w", err)
	}
	return toSessionView(saved), nil
}

// GetSession returns one session.
func (s *Service) GetSession(ctx context.Context, id int64) (SessionView, error) {
	sess, err := s.store.GetSession(ctx, id)
	if err != nil {
		return SessionView{}, fmt.Errorf("get session: %w", err)
	}
	if sess == nil {
		return SessionView{}, sessionNotFound(id)
	}
	return toSessionView(*sess), nil
}

// ListSessions returns every session ordered by start date.
func (s *Service) ListSessions(ctx context.Context) ([]SessionView, error) {
	sessions, err := s.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	views := make([]SessionView, 0, len(sessions))
	for _, sess := range sessions {
		views = append(views, toSessionView(sess))
	}
	return views, nil
}

// DeleteSession removes a session, its memberships and any child left without one.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	return s.store.WithTx(ctx, func(tx Tx) error {
		sess, err := tx.GetSession(ctx, id)
		if err != nil {
			return fmt.Errorf("get session: %w", err)
		}
		if sess == nil {
			return sessionNotFound(id)
		}
		if err := clearSession(ctx, tx, id); err != nil {
			return err
		}
		if err := tx.DeleteSession(ctx, id); err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		return nil
	})
}
