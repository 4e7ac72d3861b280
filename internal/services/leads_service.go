package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"leadsync/internal/apiclient"
	"leadsync/internal/models"
	"leadsync/internal/repositories"
)

var (
	ErrLeadNotFound  = errors.New("lead not found")
	ErrInvalidStatus = errors.New("invalid lead status")
)

// LoadState is the tri-state of the lead list
type LoadState string

const (
	LeadsLoading LoadState = "loading"
	LeadsError   LoadState = "error"
	LeadsLoaded  LoadState = "loaded"
)

// LeadsState is a snapshot of the store's load status
type LeadsState struct {
	State     LoadState  `json:"state"`
	Error     string     `json:"error,omitempty"`
	Count     int        `json:"count"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
}

// LeadsService holds one session's lead collection
type LeadsService interface {
	// Fetch reloads the collection. Failures land in State and a toast,
	// never in a returned error.
	Fetch(ctx context.Context) LeadsState
	UpdateStatus(ctx context.Context, id, status string) (*models.Lead, error)

	Leads() []models.Lead
	Lead(id string) (models.Lead, bool)
	Stats() models.LeadStats
	State() LeadsState

	// Reset empties the store and drops any fetch still in flight
	Reset()
}

// LeadsOptions identifies whose leads a store holds
type LeadsOptions struct {
	SessionID  string
	CustomerID string
	ActorID    string
}

type leadsService struct {
	backend  LeadsBackend
	notifier NotificationService
	audit    repositories.LeadAuditRepository
	logger   *zap.Logger
	opts     LeadsOptions
	now      func() time.Time

	mu         sync.RWMutex
	leads      []models.Lead
	state      LoadState
	errMsg     string
	fetchedAt  *time.Time
	generation uint64
}

// NewLeadsService creates an empty store in the loading state. audit may be
// nil when no database is configured.
func NewLeadsService(
	backend LeadsBackend,
	notifier NotificationService,
	audit repositories.LeadAuditRepository,
	logger *zap.Logger,
	opts LeadsOptions,
) LeadsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &leadsService{
		backend:  backend,
		notifier: notifier,
		audit:    audit,
		logger:   logger.With(zap.String("session_id", opts.SessionID)),
		opts:     opts,
		now:      time.Now,
		leads:    []models.Lead{},
		state:    LeadsLoading,
	}
}

func (s *leadsService) Fetch(ctx context.Context) LeadsState {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	if s.fetchedAt == nil {
		s.state = LeadsLoading
	}
	s.mu.Unlock()

	payload, err := s.backend.FetchLeads(ctx)
	var leads []models.Lead
	if err == nil {
		leads, err = s.leadsFrom(payload)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A newer fetch, an update or a reset has happened since this one began
	if gen != s.generation {
		s.logger.Debug("discarding stale lead response", zap.Uint64("generation", gen), zap.Uint64("latest", s.generation))
		return s.snapshotLocked()
	}

	if err != nil {
		if apiclient.IsCanceled(err) {
			return s.snapshotLocked()
		}
		msg := apiclient.UserMessage(err)
		s.state = LeadsError
		s.errMsg = msg
		s.logger.Warn("lead fetch failed", zap.Error(err))
		if s.notifier != nil {
			s.notifier.Error(s.opts.SessionID, "Failed to load leads: "+msg)
		}
		return s.snapshotLocked()
	}

	fetchedAt := s.now().UTC()
	s.leads = leads
	s.state = LeadsLoaded
	s.errMsg = ""
	s.fetchedAt = &fetchedAt
	s.logger.Debug("leads loaded", zap.Int("count", len(leads)))
	return s.snapshotLocked()
}

// leadsFrom extracts the lead records from whichever envelope came back
func (s *leadsService) leadsFrom(payload apiclient.Payload) ([]models.Lead, error) {
	var records json.RawMessage
	switch p := payload.(type) {
	case apiclient.WrappedUser:
		var user struct {
			Leads json.RawMessage `json:"leads"`
		}
		if err := json.Unmarshal(p.User, &user); err != nil {
			return nil, &apiclient.Error{Kind: apiclient.KindMalformed, Message: apiclient.MsgNotResponding, Err: err}
		}
		records = user.Leads
	case apiclient.WrappedLeads:
		records = p.Leads
	case apiclient.ArrayPayload:
		records = p.Leads
	case apiclient.Ack:
		records, _ = p.Field("data")
	case apiclient.Failure:
		return nil, p.Err()
	default:
		return nil, fmt.Errorf("unexpected payload %T", payload)
	}

	leads, err := models.DecodeLeads(records, s.now())
	if err != nil {
		return nil, &apiclient.Error{Kind: apiclient.KindMalformed, Message: apiclient.MsgNotResponding, Err: err}
	}
	return leads, nil
}

func (s *leadsService) UpdateStatus(ctx context.Context, id, status string) (*models.Lead, error) {
	newStatus, err := models.ParseLeadStatus(status)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	current, ok := s.Lead(id)
	if !ok {
		return nil, ErrLeadNotFound
	}

	if err := s.backend.UpdateLead(ctx, id, newStatus); err != nil {
		if !apiclient.IsCanceled(err) && s.notifier != nil {
			s.notifier.Error(s.opts.SessionID, "Failed to update lead: "+apiclient.UserMessage(err))
		}
		return nil, err
	}

	s.mu.Lock()
	var updated *models.Lead
	for i := range s.leads {
		if s.leads[i].ID == id {
			s.leads[i].Status = newStatus
			lead := s.leads[i]
			updated = &lead
			break
		}
	}
	// Responses to fetches issued before the update predate it
	s.generation++
	s.mu.Unlock()

	if updated == nil {
		// Removed by a concurrent reload; the backend still applied it
		current.Status = newStatus
		updated = &current
	}

	if s.notifier != nil {
		s.notifier.Success(s.opts.SessionID, fmt.Sprintf("Lead status updated to %s", newStatus))
	}
	s.recordChange(ctx, current, newStatus)
	return updated, nil
}

func (s *leadsService) recordChange(ctx context.Context, before models.Lead, newStatus models.LeadStatus) {
	if s.audit == nil {
		return
	}
	change := &models.LeadStatusChange{
		CustomerID: s.opts.CustomerID,
		LeadID:     before.ID,
		LeadEmail:  before.Email,
		OldStatus:  before.Status,
		NewStatus:  newStatus,
		ChangedBy:  s.opts.ActorID,
	}
	if err := s.audit.Create(ctx, change); err != nil {
		s.logger.Error("failed to record lead status change", zap.String("lead_id", before.ID), zap.Error(err))
	}
}

func (s *leadsService) Leads() []models.Lead {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Lead, len(s.leads))
	copy(out, s.leads)
	return out
}

func (s *leadsService) Lead(id string) (models.Lead, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, lead := range s.leads {
		if lead.ID == id {
			return lead, true
		}
	}
	return models.Lead{}, false
}

func (s *leadsService) Stats() models.LeadStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return models.ComputeLeadStats(s.leads)
}

func (s *leadsService) State() LeadsState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *leadsService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.leads = []models.Lead{}
	s.state = LeadsLoading
	s.errMsg = ""
	s.fetchedAt = nil
}

func (s *leadsService) snapshotLocked() LeadsState {
	state := LeadsState{
		State: s.state,
		Error: s.errMsg,
		Count: len(s.leads),
	}
	if s.fetchedAt != nil {
		at := *s.fetchedAt
		state.FetchedAt = &at
	}
	return state
}
