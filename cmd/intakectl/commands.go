package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hhsystems1/Intakeform/internal/auth"
	"github.com/hhsystems1/Intakeform/internal/config"
	"github.com/hhsystems1/Intakeform/internal/httpx"
	"github.com/hhsystems1/Intakeform/internal/intake"
	"github.com/hhsystems1/Intakeform/internal/notifications"
	"github.com/hhsystems1/Intakeform/internal/preview"
	"github.com/hhsystems1/Intakeform/internal/submissions"
	"github.com/hhsystems1/Intakeform/internal/validation"
)

var (
	intakePath   string
	dryRun       bool
	catalogJSON  bool
	plainKey     string
	tokenSubject string
)

func init() {
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(hashKeyCmd)
	rootCmd.AddCommand(adminTokenCmd)

	submitCmd.Flags().StringVarP(&intakePath, "file", "f", "", "Intake YAML file")
	submitCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Print the template parameters instead of delivering")
	_ = submitCmd.MarkFlagRequired("file")

	catalogCmd.Flags().BoolVar(&catalogJSON, "json", false, "Print the catalog as JSON")

	hashKeyCmd.Flags().StringVar(&plainKey, "key", "", "Key to hash (a random one is generated when empty)")

	adminTokenCmd.Flags().StringVar(&tokenSubject, "subject", "intakectl", "Token subject")
}

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an intake form described in a YAML file",
	Long: `Fill an intake form from a YAML file and deliver it through the
provider selected by DELIVERY_PROVIDER.

Image paths in the file are resolved relative to the file itself.`,
	Example: `  # Deliver an intake
  intakectl submit -f intake.yaml

  # Show what would be sent
  intakectl submit -f intake.yaml --dry-run`,
	RunE: runSubmit,
}

func runSubmit(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFrom(envFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	file, err := loadIntakeFile(intakePath)
	if err != nil {
		return err
	}

	req := file.request()
	val := validation.New()
	if err := val.Struct(req); err != nil {
		details := httpx.ValidationDetails(val.ValidationErrors(err))
		if len(details) == 0 {
			return err
		}
		keys := make([]string, 0, len(details))
		for k := range details {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", k, details[k])
		}
		return errors.New("intake file is invalid")
	}

	images, err := file.files()
	if err != nil {
		return err
	}

	route := intake.Route{
		ServiceID:  cfg.EmailJSServiceID,
		TemplateID: cfg.EmailJSTemplateID,
		PublicKey:  cfg.EmailJSPublicKey,
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cliLogLevel(cfg.DeliveryProvider)}))

	if dryRun {
		form := intake.NewForm(route, nil, preview.NewRegistry())
		defer form.Close()
		if err := fill(form, req, images); err != nil {
			return err
		}
		payload := form.Payload()
		out, err := json.MarshalIndent(map[string]interface{}{
			"route":           route,
			"template_params": payload.TemplateParams(),
			"images":          payload.ImageNames,
		}, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	deliverer, err := notifications.FromConfig(cfg, logger)
	if err != nil {
		return err
	}
	var confirmer submissions.Confirmer
	if brevo, ok := deliverer.(*notifications.BrevoClient); ok {
		confirmer = brevo
	}
	service := submissions.NewService(submissions.Deps{
		Deliverer: deliverer,
		Route:     route,
		Confirmer: confirmer,
		Provider:  cfg.DeliveryProvider,
		Location:  cfg.Timezone,
		Log:       logger,
	})
	defer service.Wait()

	form := service.Sessions().NewForm()
	defer form.Close()
	if err := fill(form, req, images); err != nil {
		return err
	}

	fmt.Printf("Submitting intake for %s (%d image(s))...\n", req.CompanyName, len(images))
	status, err := form.Submit(context.Background())
	if err != nil {
		fmt.Println(status.Message)
		return fmt.Errorf("submit failed: %w", err)
	}
	fmt.Println(status.Message)
	return nil
}

func fill(form *intake.Form, req submissions.CreateRequest, images []intake.File) error {
	if err := submissions.Apply(form, req); err != nil {
		return err
	}
	if len(images) == 0 {
		return nil
	}
	return form.AddAttachments(images...)
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the features, timelines and budgets the form accepts",
	RunE: func(cmd *cobra.Command, args []string) error {
		if catalogJSON {
			out, err := json.MarshalIndent(map[string]interface{}{
				"fields":   intake.FieldNames,
				"required": intake.RequiredFields,
				"features": intake.FeatureCatalog,
				"timeline": intake.TimelineOptions,
				"budget":   intake.BudgetOptions,
			}, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Println("Features:")
		for _, f := range intake.FeatureCatalog {
			fmt.Printf("  - %s\n", f)
		}
		fmt.Printf("\nTimeline: %s\n", strings.Join(intake.TimelineOptions, ", "))
		fmt.Printf("Budget:   %s\n", strings.Join(intake.BudgetOptions, ", "))
		fmt.Printf("Colors:   %s / %s (defaults)\n", intake.DefaultPrimaryColor, intake.DefaultSecondaryColor)
		return nil
	},
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key",
	Short: "Hash an admin API key for ADMIN_API_KEY_HASH",
	RunE: func(cmd *cobra.Command, args []string) error {
		key := plainKey
		if key == "" {
			generated, err := auth.GenerateAPIKey()
			if err != nil {
				return err
			}
			key = generated
			fmt.Printf("key:  %s\n", key)
		}
		hash, err := auth.HashAPIKey(key)
		if err != nil {
			return err
		}
		fmt.Printf("hash: %s\n", hash)
		return nil
	},
}

var adminTokenCmd = &cobra.Command{
	Use:   "admin-token",
	Short: "Issue an admin bearer token signed with JWT_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadFrom(envFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if cfg.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		manager := &auth.Manager{
			Secret:    []byte(cfg.JWTSecret),
			AccessTTL: time.Duration(cfg.AccessTTLMinutes) * time.Minute,
			Issuer:    "intakeform",
		}
		token, err := manager.NewAccessToken(auth.RoleAdmin, tokenSubject)
		if err != nil {
			return err
		}
		fmt.Println(token)
		return nil
	},
}

// cliLogLevel keeps the CLI quiet except when the provider only logs, in
// which case the log line is the delivery.
func cliLogLevel(provider string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case notifications.ProviderLog, "":
		return slog.LevelInfo
	default:
		return slog.LevelWarn
	}
}
