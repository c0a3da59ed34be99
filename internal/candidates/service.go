package candidates

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/talenttrack/talenttrack/internal/audit"
	"github.com/talenttrack/talenttrack/internal/docstore"
	"github.com/talenttrack/talenttrack/internal/identity"
	"github.com/talenttrack/talenttrack/internal/platform/httpx"
	"github.com/talenttrack/talenttrack/internal/rbac"
)

// Service owns the candidate lifecycle. Every write runs through field
// permission enforcement and leaves a change log entry.
type Service struct {
	repo     *Repository
	redactor *rbac.Redactor
	recorder *audit.Recorder
	history  *audit.History
	logger   *slog.Logger
}

func NewService(repo *Repository, redactor *rbac.Redactor, recorder *audit.Recorder, history *audit.History, logger *slog.Logger) *Service {
	return &Service{repo: repo, redactor: redactor, recorder: recorder, history: history, logger: logger}
}

func (s *Service) List(ctx context.Context, tenantID string) ([]Candidate, error) {
	docs, err := s.repo.All(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	out := make([]Candidate, 0, len(docs))
	for _, doc := range docs {
		c, err := decode(doc)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (Candidate, error) {
	doc, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return Candidate{}, err
	}
	return decode(doc)
}

func (s *Service) Create(ctx context.Context, tenantID string, actor identity.Actor, candidate Candidate) (Candidate, error) {
	assignIDs(&candidate)
	doc, err := docstore.Marshal(candidate)
	if err != nil {
		return Candidate{}, err
	}
	if err := s.repo.Insert(ctx, tenantID, candidate.ID, doc); err != nil {
		return Candidate{}, err
	}
	if err := s.recorder.RecordCreate(ctx, tenantID, candidate.ID, actor.Username, doc); err != nil {
		return Candidate{}, err
	}
	return candidate, nil
}

func (s *Service) Update(ctx context.Context, tenantID string, actor identity.Actor, candidate Candidate) (Candidate, error) {
	if candidate.ID == "" {
		return Candidate{}, fmt.Errorf("candidates: update without id: %w", httpx.ErrValidation)
	}
	oldDoc, err := s.repo.Get(ctx, tenantID, candidate.ID)
	if err != nil {
		return Candidate{}, err
	}
	assignIDs(&candidate)
	newDoc, err := docstore.Marshal(candidate)
	if err != nil {
		return Candidate{}, err
	}
	if s.redactor != nil && !actor.IsSystem() {
		newDoc, err = s.redactor.Apply(ctx, actor.Username, ClassName, newDoc, oldDoc)
		if err != nil {
			return Candidate{}, err
		}
	}
	if err := s.repo.Replace(ctx, tenantID, candidate.ID, newDoc); err != nil {
		return Candidate{}, err
	}
	if err := s.recorder.RecordUpdate(ctx, tenantID, candidate.ID, actor.Username, newDoc, oldDoc); err != nil {
		return Candidate{}, err
	}
	return decode(newDoc)
}

func (s *Service) Delete(ctx context.Context, tenantID string, actor identity.Actor, id string) error {
	oldDoc, err := s.repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, tenantID, id); err != nil {
		return err
	}
	return s.recorder.RecordDelete(ctx, tenantID, id, actor.Username, oldDoc)
}

// History returns the flattened change rows for one candidate.
func (s *Service) History(ctx context.Context, tenantID, id string, from, to time.Time) ([]audit.ChangeRow, error) {
	return s.history.ForEntity(ctx, tenantID, id, from, to)
}

func decode(doc docstore.Document) (Candidate, error) {
	var c Candidate
	if err := docstore.Unmarshal(doc, &c); err != nil {
		return Candidate{}, fmt.Errorf("candidates: decode: %w", err)
	}
	return c, nil
}

// assignIDs fills in missing identifiers on the candidate and its nested
// skills and tracks.
func assignIDs(c *Candidate) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	for i := range c.Skills {
		if c.Skills[i].ID == "" {
			c.Skills[i].ID = uuid.NewString()
		}
	}
	for i := range c.Tracks {
		if c.Tracks[i].ID == "" {
			c.Tracks[i].ID = uuid.NewString()
		}
	}
}
