package notifications

import (
	"context"
	"log/slog"

	"github.com/hhsystems1/Intakeform/internal/intake"
)

// LogOnly accepts every submission and only logs it. Used when no provider
// is configured.
type LogOnly struct {
	Log *slog.Logger
}

func (l LogOnly) Deliver(ctx context.Context, route intake.Route, payload intake.Payload) error {
	if l.Log == nil {
		return nil
	}
	l.Log.InfoContext(ctx, "intake delivery skipped (log only)",
		slog.String("company_name", payload.CompanyName),
		slog.String("email", payload.Email),
		slog.String("features", payload.FeatureList()),
		slog.String("primary_color", payload.PrimaryColor),
		slog.String("secondary_color", payload.SecondaryColor),
		slog.Int("image_count", payload.ImageCount),
		slog.Any("images", payload.ImageNames),
	)
	return nil
}
