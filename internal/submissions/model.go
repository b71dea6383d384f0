package submissions

import "time"

// Record is what the archive keeps about a delivered intake. Form state and
// attachment bytes are never stored.
type Record struct {
	ID             string    `bson:"_id,omitempty" json:"id"`
	CompanyName    string    `bson:"company_name" json:"company_name"`
	CompanySlug    string    `bson:"company_slug" json:"company_slug"`
	ContactName    string    `bson:"contact_name" json:"contact_name"`
	Email          string    `bson:"email" json:"email"`
	WebsiteGoal    string    `bson:"website_goal" json:"website_goal"`
	Features       []string  `bson:"features" json:"features"`
	Timeline       string    `bson:"timeline,omitempty" json:"timeline,omitempty"`
	Budget         string    `bson:"budget,omitempty" json:"budget,omitempty"`
	PrimaryColor   string    `bson:"primary_color" json:"primary_color"`
	SecondaryColor string    `bson:"secondary_color" json:"secondary_color"`
	ImageCount     int       `bson:"image_count" json:"image_count"`
	Provider       string    `bson:"provider" json:"provider"`
	CreatedAt      time.Time `bson:"created_at" json:"created_at"`
}

// CreateRequest is the one-shot intake body: every field of the form in a
// single call.
type CreateRequest struct {
	CompanyName     string   `json:"companyName" validate:"required"`
	ContactName     string   `json:"contactName" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone" validate:"omitempty,phone"`
	WebsiteGoal     string   `json:"websiteGoal" validate:"required"`
	TargetAudience  string   `json:"targetAudience"`
	Features        []string `json:"features" validate:"omitempty,dive,feature"`
	Timeline        string   `json:"timeline" validate:"omitempty,oneof=asap 1-2-months 3-6-months flexible"`
	Budget          string   `json:"budget" validate:"omitempty,oneof=500 1k-2k 25k-45k 5k-plus not-sure"`
	ExistingWebsite string   `json:"existingWebsite" validate:"omitempty,url"`
	Competitors     string   `json:"competitors"`
	AdditionalInfo  string   `json:"additionalInfo"`
	PrimaryColor    string   `json:"primaryColor" validate:"omitempty,colorhex"`
	SecondaryColor  string   `json:"secondaryColor" validate:"omitempty,colorhex"`
}

type FieldUpdateRequest struct {
	Value *string `json:"value" validate:"required"`
}

type FeatureToggleRequest struct {
	Feature string `json:"feature" validate:"required"`
}

type ColorUpdateRequest struct {
	Hex string `json:"hex" validate:"required"`
}

type ListFilter struct {
	Email   string
	Company string
}
