package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/submissions"
)

// intakeFile is the YAML shape accepted by `intakectl submit`.
type intakeFile struct {
	CompanyName     string   `yaml:"company_name"`
	ContactName     string   `yaml:"contact_name"`
	Email           string   `yaml:"email"`
	Phone           string   `yaml:"phone,omitempty"`
	WebsiteGoal     string   `yaml:"website_goal"`
	TargetAudience  string   `yaml:"target_audience,omitempty"`
	Features        []string `yaml:"features,omitempty"`
	Timeline        string   `yaml:"timeline,omitempty"`
	Budget          string   `yaml:"budget,omitempty"`
	ExistingWebsite string   `yaml:"existing_website,omitempty"`
	Competitors     string   `yaml:"competitors,omitempty"`
	AdditionalInfo  string   `yaml:"additional_info,omitempty"`
	Colors          struct {
		Primary   string `yaml:"primary,omitempty"`
		Secondary string `yaml:"secondary,omitempty"`
	} `yaml:"colors,omitempty"`
	Images []string `yaml:"images,omitempty"` // paths relative to the YAML file
}

func loadIntakeFile(path string) (*intakeFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var f intakeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	base := filepath.Dir(path)
	for i, img := range f.Images {
		if !filepath.IsAbs(img) {
			f.Images[i] = filepath.Join(base, img)
		}
	}
	return &f, nil
}

func (f *intakeFile) request() submissions.CreateRequest {
	return submissions.CreateRequest{
		CompanyName:     f.CompanyName,
		ContactName:     f.ContactName,
		Email:           f.Email,
		Phone:           f.Phone,
		WebsiteGoal:     f.WebsiteGoal,
		TargetAudience:  f.TargetAudience,
		Features:        f.Features,
		Timeline:        f.Timeline,
		Budget:          f.Budget,
		ExistingWebsite: f.ExistingWebsite,
		Competitors:     f.Competitors,
		AdditionalInfo:  f.AdditionalInfo,
		PrimaryColor:    f.Colors.Primary,
		SecondaryColor:  f.Colors.Secondary,
	}
}

func (f *intakeFile) files() ([]intake.File, error) {
	files := make([]intake.File, 0, len(f.Images))
	for _, path := range f.Images {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		files = append(files, intake.File{
			Name:        filepath.Base(path),
			ContentType: http.DetectContentType(data),
			Data:        data,
		})
	}
	return files, nil
}
