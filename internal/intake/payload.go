package intake

import (
	"context"
	"strings"
)

// Route carries the provider routing identifiers. It is configuration, not
// form data.
type Route struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
}

// Payload is the flat snapshot handed to the delivery call. Attachments only
// contribute their count (and names, which providers may use for display).
type Payload struct {
	CompanyName     string
	ContactName     string
	Email           string
	Phone           string
	WebsiteGoal     string
	TargetAudience  string
	Features        []string
	Timeline        string
	Budget          string
	ExistingWebsite string
	Competitors     string
	AdditionalInfo  string
	PrimaryColor    string
	SecondaryColor  string
	ImageCount      int
	ImageNames      []string
}

type Deliverer interface {
	Deliver(ctx context.Context, route Route, payload Payload) error
}

type DelivererFunc func(ctx context.Context, route Route, payload Payload) error

func (f DelivererFunc) Deliver(ctx context.Context, route Route, payload Payload) error {
	return f(ctx, route, payload)
}

func (p Payload) FeatureList() string {
	return strings.Join(p.Features, ", ")
}

// TemplateParams renders the payload with the provider's snake_case keys.
func (p Payload) TemplateParams() map[string]interface{} {
	return map[string]interface{}{
		"company_name":     p.CompanyName,
		"contact_name":     p.ContactName,
		"email":            p.Email,
		"phone":            p.Phone,
		"website_goal":     p.WebsiteGoal,
		"target_audience":  p.TargetAudience,
		"features":         p.FeatureList(),
		"timeline":         p.Timeline,
		"budget":           p.Budget,
		"existing_website": p.ExistingWebsite,
		"competitors":      p.Competitors,
		"additional_info":  p.AdditionalInfo,
		"primary_color":    p.PrimaryColor,
		"secondary_color":  p.SecondaryColor,
		"image_count":      p.ImageCount,
	}
}

func buildPayload(fields FieldsSnapshot, colors ColorsSnapshot, imageNames []string) Payload {
	v := fields.Values
	return Payload{
		CompanyName:     v[FieldCompanyName],
		ContactName:     v[FieldContactName],
		Email:           v[FieldEmail],
		Phone:           v[FieldPhone],
		WebsiteGoal:     v[FieldWebsiteGoal],
		TargetAudience:  v[FieldTargetAudience],
		Features:        fields.Features,
		Timeline:        v[FieldTimeline],
		Budget:          v[FieldBudget],
		ExistingWebsite: v[FieldExistingWebsite],
		Competitors:     v[FieldCompetitors],
		AdditionalInfo:  v[FieldAdditionalInfo],
		PrimaryColor:    colors.Primary,
		SecondaryColor:  colors.Secondary,
		ImageCount:      len(imageNames),
		ImageNames:      imageNames,
	}
}
