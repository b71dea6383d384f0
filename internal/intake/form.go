package intake

import (
	"context"
	"sync"

	"github.com/hhsystems1/Intakeform/internal/preview"
)

// Form is one intake form instance: field state, colors, staged attachments,
// and the submission status. All methods are safe for concurrent use; the
// lock is never held across the delivery call.
type Form struct {
	mu          sync.Mutex
	fields      *Fields
	colors      *Colors
	attachments *AttachmentStore
	status      Status
	route       Route
	deliverer   Deliverer
	// maxAttachments caps staged attachments; zero means no cap.
	maxAttachments int
}

func NewForm(route Route, deliverer Deliverer, previews *preview.Registry) *Form {
	return &Form{
		fields:      NewFields(),
		colors:      NewColors(),
		attachments: NewAttachmentStore(previews),
		status:      idle(),
		route:       route,
		deliverer:   deliverer,
	}
}

// edited drops a resolved status back to idle once the user touches the form.
func (f *Form) edited() {
	if f.status.State == StateResolved {
		f.status = idle()
	}
}

func (f *Form) SetField(name, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fields.SetField(name, value); err != nil {
		return err
	}
	f.edited()
	return nil
}

func (f *Form) Field(name string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Field(name)
}

func (f *Form) ToggleFeature(feature string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.fields.ToggleFeature(feature); err != nil {
		return err
	}
	f.edited()
	return nil
}

func (f *Form) Features() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.Features()
}

func (f *Form) MissingRequired() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fields.MissingRequired()
}

func (f *Form) SetColor(which ColorTarget, hex string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.colors.SetColor(which, hex); err != nil {
		return err
	}
	f.edited()
	return nil
}

func (f *Form) TogglePicker(which ColorTarget) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.colors.TogglePicker(which); err != nil {
		return err
	}
	f.edited()
	return nil
}

// SetAttachmentLimit caps how many attachments the form will stage.
// Zero or less removes the cap.
func (f *Form) SetAttachmentLimit(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.maxAttachments = max(n, 0)
}

func (f *Form) AddAttachments(files ...File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.maxAttachments > 0 && f.attachments.Len()+len(files) > f.maxAttachments {
		return ErrTooManyAttachments
	}
	if err := f.attachments.Add(files...); err != nil {
		return err
	}
	f.edited()
	return nil
}

func (f *Form) RemoveAttachment(index int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.attachments.Remove(index); err != nil {
		return err
	}
	f.edited()
	return nil
}

func (f *Form) AttachmentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attachments.Len()
}

func (f *Form) Status() Status {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status
}

// Payload builds what Submit would deliver right now.
func (f *Form) Payload() Payload {
	f.mu.Lock()
	defer f.mu.Unlock()
	return buildPayload(f.fields.Snapshot(), f.colors.Snapshot(), f.attachments.Names())
}

// Submit delivers a snapshot of the form. On success every component is
// reset; on failure the input is left untouched so the user can retry.
func (f *Form) Submit(ctx context.Context) (Status, error) {
	f.mu.Lock()
	if f.status.State == StateInFlight {
		current := f.status
		f.mu.Unlock()
		return current, ErrAlreadyInFlight
	}
	f.status = inFlight()
	payload := buildPayload(f.fields.Snapshot(), f.colors.Snapshot(), f.attachments.Names())
	deliverer, route := f.deliverer, f.route
	f.mu.Unlock()

	// Leaving InFlight happens here whatever the deliverer does, panics included.
	outcome := resolved(OutcomeFailure, FailureMessage)
	defer func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.status = outcome
		if outcome.Succeeded() {
			f.resetLocked()
		}
	}()

	if deliverer == nil {
		return outcome, &DeliveryError{Err: ErrNoDeliverer}
	}
	if err := deliverer.Deliver(ctx, route, payload); err != nil {
		return outcome, &DeliveryError{Err: err}
	}
	outcome = resolved(OutcomeSuccess, SuccessMessage)
	return outcome, nil
}

func (f *Form) resetLocked() {
	f.fields.Reset()
	f.colors.Reset()
	f.attachments.Clear()
}

// Reset clears every component and returns the form to Idle. It does not
// interrupt a submission in flight; that one still resolves on its own.
func (f *Form) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resetLocked()
	if f.status.State != StateInFlight {
		f.status = idle()
	}
}

// Close tears the form down and releases every preview handle.
func (f *Form) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.attachments.Close()
}

type View struct {
	Fields      map[string]string `json:"fields"`
	Features    []string          `json:"features"`
	Colors      ColorsSnapshot    `json:"colors"`
	Attachments []AttachmentInfo  `json:"attachments"`
	Status      Status            `json:"status"`
}

func (f *Form) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.fields.Snapshot()
	return View{
		Fields:      snap.Values,
		Features:    snap.Features,
		Colors:      f.colors.Snapshot(),
		Attachments: f.attachments.Attachments(),
		Status:      f.status,
	}
}
