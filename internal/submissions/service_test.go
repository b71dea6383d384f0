package submissions

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/preview"
)

type fakeRepo struct {
	mu      sync.Mutex
	records []Record
	err     error
}

func (r *fakeRepo) Create(ctx context.Context, record Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.records = append(r.records, record)
	return nil
}

func (r *fakeRepo) List(ctx context.Context, filter ListFilter, limit, offset int64) ([]Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Record, 0)
	for _, rec := range r.records {
		if filter.Email != "" && rec.Email != filter.Email {
			continue
		}
		if filter.Company != "" && rec.CompanySlug != filter.Company {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *fakeRepo) Count(ctx context.Context, filter ListFilter) (int64, error) {
	items, _ := r.List(ctx, filter, 0, 0)
	return int64(len(items)), nil
}

type fakeConfirmer struct {
	mu   sync.Mutex
	sent []string
}

func (c *fakeConfirmer) SendConfirmation(ctx context.Context, payload intake.Payload) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, payload.Email)
	return "msg-1", nil
}

type recordingDeliverer struct {
	mu       sync.Mutex
	payloads []intake.Payload
	err      error
}

func (d *recordingDeliverer) Deliver(ctx context.Context, route intake.Route, payload intake.Payload) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.payloads = append(d.payloads, payload)
	return nil
}

func validRequest() CreateRequest {
	return CreateRequest{
		CompanyName: "Acme",
		ContactName: "Jo",
		Email:       "Jo@Acme.io",
		WebsiteGoal: "Sell widgets",
		Features:    []string{"Blog", "Contact Form", "Blog"},
		Timeline:    "asap",
	}
}

func TestCreateOneShotArchivesAndConfirms(t *testing.T) {
	deliverer := &recordingDeliverer{}
	repo := &fakeRepo{}
	confirmer := &fakeConfirmer{}
	svc := NewService(Deps{Deliverer: deliverer, Repo: repo, Confirmer: confirmer, Provider: "log"})

	status, err := svc.CreateOneShot(context.Background(), validRequest())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !status.Succeeded() {
		t.Fatalf("expected success, got %+v", status)
	}
	svc.Wait()

	if len(deliverer.payloads) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(deliverer.payloads))
	}
	got := deliverer.payloads[0]
	if got.FeatureList() != "Blog, Contact Form" {
		t.Fatalf("expected catalog-ordered features without duplicates, got %q", got.FeatureList())
	}
	if got.PrimaryColor != intake.DefaultPrimaryColor {
		t.Fatalf("expected default primary color, got %q", got.PrimaryColor)
	}
	if len(repo.records) != 1 || repo.records[0].Email != "jo@acme.io" {
		t.Fatalf("expected lower-cased archived record, got %+v", repo.records)
	}
	if repo.records[0].Provider != "log" {
		t.Fatalf("expected provider recorded, got %q", repo.records[0].Provider)
	}
	if len(confirmer.sent) != 1 || confirmer.sent[0] != "Jo@Acme.io" {
		t.Fatalf("expected one confirmation, got %v", confirmer.sent)
	}
	if svc.Sessions().Len() != 0 {
		t.Fatalf("expected one-shot form not to be registered")
	}
}

func TestDeliveryFailureSkipsArchive(t *testing.T) {
	deliverer := &recordingDeliverer{err: errors.New("smtp down")}
	repo := &fakeRepo{}
	svc := NewService(Deps{Deliverer: deliverer, Repo: repo})

	status, err := svc.CreateOneShot(context.Background(), validRequest())
	if !errors.Is(err, intake.ErrDeliveryFailure) {
		t.Fatalf("expected delivery failure, got %v", err)
	}
	if !status.Failed() || status.Message != intake.FailureMessage {
		t.Fatalf("expected failure status, got %+v", status)
	}
	svc.Wait()
	if len(repo.records) != 0 {
		t.Fatalf("expected no archive record, got %d", len(repo.records))
	}
}

func TestArchiveErrorDoesNotFailSubmit(t *testing.T) {
	svc := NewService(Deps{
		Deliverer: &recordingDeliverer{},
		Repo:      &fakeRepo{err: errors.New("mongo down")},
	})
	status, err := svc.CreateOneShot(context.Background(), validRequest())
	svc.Wait()
	if err != nil || !status.Succeeded() {
		t.Fatalf("expected success despite archive error, got %+v err=%v", status, err)
	}
}

func TestServiceWithoutDeliverer(t *testing.T) {
	svc := NewService(Deps{})
	_, err := svc.CreateOneShot(context.Background(), validRequest())
	if !errors.Is(err, intake.ErrNoDeliverer) {
		t.Fatalf("expected ErrNoDeliverer, got %v", err)
	}
}

func TestSubmitSession(t *testing.T) {
	deliverer := &recordingDeliverer{}
	svc := NewService(Deps{Deliverer: deliverer, Route: intake.Route{ServiceID: "svc"}})

	if _, err := svc.Submit(context.Background(), "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	id, form, _ := svc.Sessions().Create()
	if err := Apply(form, validRequest()); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if _, err := svc.Submit(context.Background(), id); err != nil {
		t.Fatalf("expected submit ok, got %v", err)
	}
	svc.Wait()
	if v, _ := form.Field(intake.FieldCompanyName); v != "" {
		t.Fatalf("expected form reset after success, got %q", v)
	}
}

func TestListAdmin(t *testing.T) {
	svc := NewService(Deps{})
	if _, _, err := svc.ListAdmin(context.Background(), ListFilter{}, 10, 0); !errors.Is(err, ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}

	repo := &fakeRepo{records: []Record{{Email: "a@x.io"}, {Email: "b@x.io"}}}
	svc = NewService(Deps{Repo: repo})
	items, total, err := svc.ListAdmin(context.Background(), ListFilter{Email: " A@X.io "}, 10, 0)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].Email != "a@x.io" {
		t.Fatalf("expected filtered result, got %+v total=%d", items, total)
	}
}

func TestListAdminByCompany(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(Deps{Deliverer: &recordingDeliverer{}, Repo: repo})
	req := validRequest()
	req.CompanyName = "Acme & Sons, Ltd."
	if _, err := svc.CreateOneShot(context.Background(), req); err != nil {
		t.Fatalf("create: %v", err)
	}
	svc.Wait()

	if repo.records[0].CompanySlug != "acme-and-sons-ltd" {
		t.Fatalf("unexpected slug %q", repo.records[0].CompanySlug)
	}
	items, total, err := svc.ListAdmin(context.Background(), ListFilter{Company: "ACME and sons ltd"}, 10, 0)
	if err != nil || total != 1 || len(items) != 1 {
		t.Fatalf("expected company match, got %+v total=%d err=%v", items, total, err)
	}
}

func TestCompanySlug(t *testing.T) {
	cases := map[string]string{
		"Acme":               "acme",
		"  O'Brien  Bakery ": "obrien-bakery",
		"R&D / Labs":         "r-and-d-labs",
		"---":                "",
	}
	for in, want := range cases {
		if got := companySlug(in); got != want {
			t.Fatalf("companySlug(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestSessionsSweep(t *testing.T) {
	previews := preview.NewRegistry()
	sessions := NewSessions(intake.Route{}, &recordingDeliverer{}, previews)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	staleID, stale, _ := sessions.Create()
	if err := stale.AddAttachments(intake.File{Name: "a.png", Data: []byte("x")}); err != nil {
		t.Fatalf("add: %v", err)
	}
	now = now.Add(20 * time.Minute)
	freshID, _, _ := sessions.Create()

	if n := sessions.Sweep(10 * time.Minute); n != 1 {
		t.Fatalf("expected 1 swept session, got %d", n)
	}
	if _, err := sessions.Get(staleID); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected stale session gone, got %v", err)
	}
	if _, err := sessions.Get(freshID); err != nil {
		t.Fatalf("expected fresh session kept, got %v", err)
	}
	if previews.Live() != 0 {
		t.Fatalf("expected preview handles released, got %d", previews.Live())
	}
}

func TestSessionsSweepKeepsInFlight(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	blocking := intake.DelivererFunc(func(ctx context.Context, route intake.Route, payload intake.Payload) error {
		close(started)
		<-release
		return nil
	})
	sessions := NewSessions(intake.Route{}, blocking, preview.NewRegistry())
	now := time.Now()
	sessions.now = func() time.Time { return now }

	id, form, _ := sessions.Create()
	done := make(chan struct{})
	go func() {
		_, _ = form.Submit(context.Background())
		close(done)
	}()
	<-started

	now = now.Add(time.Hour)
	if n := sessions.Sweep(time.Minute); n != 0 {
		t.Fatalf("expected in-flight session kept, got %d swept", n)
	}
	close(release)
	<-done
	if _, err := sessions.Get(id); err != nil {
		t.Fatalf("expected session still present, got %v", err)
	}
}

func TestSessionsDeleteAndCloseAll(t *testing.T) {
	previews := preview.NewRegistry()
	sessions := NewSessions(intake.Route{}, nil, previews)
	id, form, _ := sessions.Create()
	_ = form.AddAttachments(intake.File{Name: "a.png", Data: []byte("x")})
	_, other, _ := sessions.Create()
	_ = other.AddAttachments(intake.File{Name: "b.png", Data: []byte("y")})

	if err := sessions.Delete(id); err != nil {
		t.Fatalf("expected delete ok, got %v", err)
	}
	if err := sessions.Delete(id); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound on second delete, got %v", err)
	}
	if previews.Live() != 1 {
		t.Fatalf("expected 1 live preview, got %d", previews.Live())
	}
	sessions.CloseAll()
	if sessions.Len() != 0 || previews.Live() != 0 {
		t.Fatalf("expected everything closed, got sessions=%d previews=%d", sessions.Len(), previews.Live())
	}
}
