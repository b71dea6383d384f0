package submissions

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/preview"
)

var ErrArchiveDisabled = errors.New("submission archive disabled")

// Confirmer sends the submitter a receipt once delivery succeeded.
type Confirmer interface {
	SendConfirmation(ctx context.Context, payload intake.Payload) (string, error)
}

type Deps struct {
	Deliverer intake.Deliverer
	Route     intake.Route
	Previews  *preview.Registry
	Repo      Repository
	Confirmer Confirmer
	Provider  string
	Location  *time.Location
	Log       *slog.Logger

	// MaxSessions and MaxAttachments bound in-memory state; zero means
	// unbounded.
	MaxSessions    int
	MaxAttachments int
}

type Service struct {
	sessions  *Sessions
	next      intake.Deliverer
	repo      Repository
	confirmer Confirmer
	provider  string
	location  *time.Location
	log       *slog.Logger
	wg        sync.WaitGroup
}

func NewService(d Deps) *Service {
	s := &Service{
		next:      d.Deliverer,
		repo:      d.Repo,
		confirmer: d.Confirmer,
		provider:  d.Provider,
		location:  d.Location,
		log:       d.Log,
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.log == nil {
		s.log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	previews := d.Previews
	if previews == nil {
		previews = preview.NewRegistry()
	}
	// Forms deliver through the service so the archive and receipt see
	// exactly the payload that went out.
	s.sessions = NewSessions(d.Route, s, previews)
	s.sessions.SetLimits(d.MaxSessions, d.MaxAttachments)
	return s
}

func (s *Service) Sessions() *Sessions {
	return s.sessions
}

func (s *Service) Deliver(ctx context.Context, route intake.Route, payload intake.Payload) error {
	if s.next == nil {
		return intake.ErrNoDeliverer
	}
	if err := s.next.Deliver(ctx, route, payload); err != nil {
		return err
	}
	s.afterDelivery(payload)
	return nil
}

func (s *Service) afterDelivery(payload intake.Payload) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), 8*time.Second)
		defer cancel()

		if s.repo != nil {
			record := s.newRecord(payload)
			if err := s.repo.Create(ctx, record); err != nil {
				s.log.Warn("intake archive: write failed",
					slog.String("company_name", payload.CompanyName),
					slog.String("error", err.Error()),
				)
			}
		}

		if s.confirmer != nil && strings.TrimSpace(payload.Email) != "" {
			if _, err := s.confirmer.SendConfirmation(ctx, payload); err != nil {
				s.log.Warn("intake: confirmation email failed",
					slog.String("email", payload.Email),
					slog.String("error", err.Error()),
				)
			}
		}
	}()
}

// Wait blocks until background archive and receipt work has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

func (s *Service) newRecord(p intake.Payload) Record {
	return Record{
		ID:             primitive.NewObjectID().Hex(),
		CompanyName:    strings.TrimSpace(p.CompanyName),
		CompanySlug:    companySlug(p.CompanyName),
		ContactName:    strings.TrimSpace(p.ContactName),
		Email:          strings.ToLower(strings.TrimSpace(p.Email)),
		WebsiteGoal:    strings.TrimSpace(p.WebsiteGoal),
		Features:       p.Features,
		Timeline:       p.Timeline,
		Budget:         p.Budget,
		PrimaryColor:   p.PrimaryColor,
		SecondaryColor: p.SecondaryColor,
		ImageCount:     p.ImageCount,
		Provider:       s.provider,
		CreatedAt:      time.Now().In(s.location),
	}
}

// Submit runs a session form through the coordinator.
func (s *Service) Submit(ctx context.Context, id string) (intake.Status, error) {
	form, err := s.sessions.Get(id)
	if err != nil {
		return intake.Status{}, err
	}
	return form.Submit(ctx)
}

// CreateOneShot fills a throwaway form from req and submits it.
func (s *Service) CreateOneShot(ctx context.Context, req CreateRequest) (intake.Status, error) {
	form := s.sessions.NewForm()
	defer form.Close()

	if err := Apply(form, req); err != nil {
		return intake.Status{}, err
	}
	return form.Submit(ctx)
}

// Apply copies a complete request onto a form through its validated setters.
func Apply(form *intake.Form, req CreateRequest) error {
	values := map[string]string{
		intake.FieldCompanyName:     req.CompanyName,
		intake.FieldContactName:     req.ContactName,
		intake.FieldEmail:           req.Email,
		intake.FieldPhone:           req.Phone,
		intake.FieldWebsiteGoal:     req.WebsiteGoal,
		intake.FieldTargetAudience:  req.TargetAudience,
		intake.FieldTimeline:        req.Timeline,
		intake.FieldBudget:          req.Budget,
		intake.FieldExistingWebsite: req.ExistingWebsite,
		intake.FieldCompetitors:     req.Competitors,
		intake.FieldAdditionalInfo:  req.AdditionalInfo,
	}
	for name, value := range values {
		if err := form.SetField(name, strings.TrimSpace(value)); err != nil {
			return err
		}
	}
	seen := make(map[string]struct{}, len(req.Features))
	for _, feature := range req.Features {
		if _, dup := seen[feature]; dup {
			continue
		}
		seen[feature] = struct{}{}
		if err := form.ToggleFeature(feature); err != nil {
			return err
		}
	}
	if req.PrimaryColor != "" {
		if err := form.SetColor(intake.ColorPrimary, req.PrimaryColor); err != nil {
			return err
		}
	}
	if req.SecondaryColor != "" {
		if err := form.SetColor(intake.ColorSecondary, req.SecondaryColor); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ListAdmin(ctx context.Context, filter ListFilter, limit, offset int64) ([]Record, int64, error) {
	if s.repo == nil {
		return nil, 0, ErrArchiveDisabled
	}
	filter.Email = strings.ToLower(strings.TrimSpace(filter.Email))
	filter.Company = companySlug(filter.Company)

	items, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
