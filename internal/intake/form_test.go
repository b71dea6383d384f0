package intake

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/hhsystems1/Intakeform/internal/preview"
)

var testRoute = Route{ServiceID: "service_x", TemplateID: "template_y", PublicKey: "pk"}

func fillRequired(t *testing.T, f *Form) {
	t.Helper()
	for name, value := range map[string]string{
		FieldCompanyName: "Acme",
		FieldContactName: "Jo",
		FieldEmail:       "jo@acme.com",
		FieldWebsiteGoal: "sell widgets",
	} {
		if err := f.SetField(name, value); err != nil {
			t.Fatalf("SetField(%s) error: %v", name, err)
		}
	}
}

func TestSubmitSuccessResetsEverything(t *testing.T) {
	reg := preview.NewRegistry()
	var got Payload
	var gotRoute Route
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		got, gotRoute = p, route
		return nil
	}), reg)

	fillRequired(t, f)
	_ = f.ToggleFeature("Blog")
	_ = f.SetColor(ColorPrimary, "#000000")
	_ = f.AddAttachments(image("ref.png"))

	status, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit error: %v", err)
	}
	if !status.Succeeded() || status.Message != SuccessMessage {
		t.Fatalf("expected success, got %+v", status)
	}
	if f.Status() != status {
		t.Fatalf("expected stored status %+v, got %+v", status, f.Status())
	}
	if gotRoute != testRoute {
		t.Fatalf("expected route %+v, got %+v", testRoute, gotRoute)
	}
	if got.CompanyName != "Acme" || got.ImageCount != 1 || got.PrimaryColor != "#000000" {
		t.Fatalf("unexpected payload: %+v", got)
	}

	view := f.View()
	for name, value := range view.Fields {
		if value != "" {
			t.Fatalf("expected %s reset, got %q", name, value)
		}
	}
	if len(view.Features) != 0 || len(view.Attachments) != 0 {
		t.Fatalf("expected features and attachments cleared, got %+v", view)
	}
	if view.Colors.Primary != DefaultPrimaryColor {
		t.Fatalf("expected default primary color, got %s", view.Colors.Primary)
	}
	if reg.Live() != 0 {
		t.Fatalf("expected preview handles released, got %d", reg.Live())
	}
}

func TestSubmitFailureKeepsInput(t *testing.T) {
	reg := preview.NewRegistry()
	transportErr := errors.New("dial tcp: connection refused")
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		return transportErr
	}), reg)

	fillRequired(t, f)
	_ = f.AddAttachments(image("ref.png"))

	status, err := f.Submit(context.Background())
	if !errors.Is(err, ErrDeliveryFailure) {
		t.Fatalf("expected ErrDeliveryFailure, got %v", err)
	}
	if !errors.Is(err, transportErr) {
		t.Fatalf("expected wrapped transport error, got %v", err)
	}
	var de *DeliveryError
	if !errors.As(err, &de) {
		t.Fatalf("expected *DeliveryError, got %T", err)
	}
	if !status.Failed() || status.Message != FailureMessage {
		t.Fatalf("expected failure status, got %+v", status)
	}
	if v, _ := f.Field(FieldCompanyName); v != "Acme" {
		t.Fatalf("expected Acme to survive, got %q", v)
	}
	if f.AttachmentCount() != 1 || reg.Live() != 1 {
		t.Fatalf("expected attachment kept, got %d/%d", f.AttachmentCount(), reg.Live())
	}
}

func TestSubmitRetryAfterFailure(t *testing.T) {
	var calls int32
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			return errors.New("provider rejected")
		}
		if p.CompanyName != "Acme" {
			return errors.New("lost input")
		}
		return nil
	}), preview.NewRegistry())
	fillRequired(t, f)

	if _, err := f.Submit(context.Background()); err == nil {
		t.Fatalf("expected first submit to fail")
	}
	status, err := f.Submit(context.Background())
	if err != nil {
		t.Fatalf("retry error: %v", err)
	}
	if !status.Succeeded() {
		t.Fatalf("expected success on retry, got %+v", status)
	}
}

func TestSubmitRejectsWhileInFlight(t *testing.T) {
	var calls int32
	entered := make(chan struct{})
	release := make(chan struct{})
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		atomic.AddInt32(&calls, 1)
		close(entered)
		<-release
		return nil
	}), preview.NewRegistry())
	fillRequired(t, f)

	done := make(chan error, 1)
	go func() {
		_, err := f.Submit(context.Background())
		done <- err
	}()
	<-entered

	if st := f.Status(); st.State != StateInFlight {
		t.Fatalf("expected in flight, got %v", st.State)
	}
	if _, err := f.Submit(context.Background()); !errors.Is(err, ErrAlreadyInFlight) {
		t.Fatalf("expected ErrAlreadyInFlight, got %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("first submit error: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("expected 1 delivery call, got %d", n)
	}
}

func TestSubmitLeavesInFlightOnPanic(t *testing.T) {
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		panic("provider sdk blew up")
	}), preview.NewRegistry())
	fillRequired(t, f)

	func() {
		defer func() { _ = recover() }()
		_, _ = f.Submit(context.Background())
	}()

	if st := f.Status(); !st.Failed() {
		t.Fatalf("expected failure after panic, got %+v", st)
	}
	if v, _ := f.Field(FieldCompanyName); v != "Acme" {
		t.Fatalf("expected input kept, got %q", v)
	}
}

func TestSubmitWithoutDeliverer(t *testing.T) {
	f := NewForm(testRoute, nil, preview.NewRegistry())
	_, err := f.Submit(context.Background())
	if !errors.Is(err, ErrNoDeliverer) || !errors.Is(err, ErrDeliveryFailure) {
		t.Fatalf("expected ErrNoDeliverer delivery failure, got %v", err)
	}
}

func TestEditAfterResolveReturnsToIdle(t *testing.T) {
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		return errors.New("nope")
	}), preview.NewRegistry())
	_, _ = f.Submit(context.Background())
	if f.Status().State != StateResolved {
		t.Fatalf("expected resolved, got %v", f.Status().State)
	}

	if err := f.SetField("nope", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if f.Status().State != StateResolved {
		t.Fatalf("expected failed edit to keep status, got %v", f.Status().State)
	}

	_ = f.TogglePicker(ColorPrimary)
	if f.Status().State != StateIdle {
		t.Fatalf("expected idle after edit, got %v", f.Status().State)
	}
}

func TestResetAndClose(t *testing.T) {
	reg := preview.NewRegistry()
	f := NewForm(testRoute, nil, reg)
	fillRequired(t, f)
	_ = f.AddAttachments(image("a.png"), image("b.png"))

	f.Reset()
	if f.AttachmentCount() != 0 || reg.Live() != 0 {
		t.Fatalf("expected reset to release handles, got %d", reg.Live())
	}
	if v, _ := f.Field(FieldEmail); v != "" {
		t.Fatalf("expected email cleared, got %q", v)
	}

	_ = f.AddAttachments(image("c.png"))
	f.Close()
	if reg.Live() != 0 {
		t.Fatalf("expected close to release handles, got %d", reg.Live())
	}
	if err := f.AddAttachments(image("d.png")); !errors.Is(err, ErrStoreClosed) {
		t.Fatalf("expected ErrStoreClosed, got %v", err)
	}
}

func TestTemplateParams(t *testing.T) {
	f := NewForm(testRoute, nil, preview.NewRegistry())
	fillRequired(t, f)
	_ = f.ToggleFeature("Live Chat")
	_ = f.ToggleFeature("Blog")
	_ = f.AddAttachments(image("a.png"), image("b.png"))

	params := f.Payload().TemplateParams()
	if params["features"] != "Blog, Live Chat" {
		t.Fatalf("unexpected features param: %v", params["features"])
	}
	if params["image_count"] != 2 {
		t.Fatalf("expected image_count 2, got %v", params["image_count"])
	}
	if params["secondary_color"] != DefaultSecondaryColor {
		t.Fatalf("unexpected secondary color: %v", params["secondary_color"])
	}
	if _, ok := params["image_names"]; ok {
		t.Fatalf("attachment names must not be sent as template params")
	}
	if len(params) != 15 {
		t.Fatalf("expected 15 params, got %d", len(params))
	}
}

func TestEditsDuringFlightMissPayloadAndAreWipedOnSuccess(t *testing.T) {
	reg := preview.NewRegistry()
	started := make(chan struct{})
	release := make(chan struct{})
	var got Payload
	f := NewForm(testRoute, DelivererFunc(func(ctx context.Context, route Route, p Payload) error {
		close(started)
		<-release
		got = p
		return nil
	}), reg)
	fillRequired(t, f)
	_ = f.ToggleFeature("Blog")

	type result struct {
		status Status
		err    error
	}
	done := make(chan result, 1)
	go func() {
		s, err := f.Submit(context.Background())
		done <- result{s, err}
	}()
	<-started

	if err := f.SetField(FieldCompanyName, "Changed"); err != nil {
		t.Fatalf("SetField during flight: %v", err)
	}
	if err := f.ToggleFeature("E-commerce"); err != nil {
		t.Fatalf("ToggleFeature during flight: %v", err)
	}
	if err := f.AddAttachments(image("late.png")); err != nil {
		t.Fatalf("AddAttachments during flight: %v", err)
	}
	if v, _ := f.Field(FieldCompanyName); v != "Changed" {
		t.Fatalf("expected live state edited, got %q", v)
	}
	if f.Status().State != StateInFlight {
		t.Fatalf("expected edits to leave state in flight, got %v", f.Status().State)
	}

	close(release)
	res := <-done
	if res.err != nil || !res.status.Succeeded() {
		t.Fatalf("expected success, got %+v err=%v", res.status, res.err)
	}
	if got.CompanyName != "Acme" || got.FeatureList() != "Blog" || got.ImageCount != 0 {
		t.Fatalf("expected pre-flight snapshot, got company=%q features=%q images=%d", got.CompanyName, got.FeatureList(), got.ImageCount)
	}

	view := f.View()
	if view.Fields[FieldCompanyName] != "" || len(view.Features) != 0 || len(view.Attachments) != 0 {
		t.Fatalf("expected in-flight edits wiped by reset, got %+v", view)
	}
	if reg.Live() != 0 {
		t.Fatalf("expected late preview handle released, got %d", reg.Live())
	}
}

func TestAttachmentLimit(t *testing.T) {
	reg := preview.NewRegistry()
	f := NewForm(testRoute, nil, reg)
	f.SetAttachmentLimit(2)

	if err := f.AddAttachments(image("a.png")); err != nil {
		t.Fatalf("expected first add ok, got %v", err)
	}
	if err := f.AddAttachments(image("b.png"), image("c.png")); !errors.Is(err, ErrTooManyAttachments) {
		t.Fatalf("expected ErrTooManyAttachments, got %v", err)
	}
	if f.AttachmentCount() != 1 || reg.Live() != 1 {
		t.Fatalf("expected rejected batch to stage nothing, got count=%d live=%d", f.AttachmentCount(), reg.Live())
	}
	if err := f.AddAttachments(image("b.png")); err != nil {
		t.Fatalf("expected add up to the limit ok, got %v", err)
	}

	if err := f.RemoveAttachment(0); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := f.AddAttachments(image("d.png")); err != nil {
		t.Fatalf("expected room after remove, got %v", err)
	}

	f.SetAttachmentLimit(0)
	if err := f.AddAttachments(image("e.png"), image("f.png")); err != nil {
		t.Fatalf("expected no cap after clearing the limit, got %v", err)
	}
}
