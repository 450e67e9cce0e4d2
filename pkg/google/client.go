package google

import (
	"context"
	"fmt"

	"github.com/harrisonrobin/baronboard/pkg/auth"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Services bundles the Google APIs the tool uses.
type Services struct {
	Drive    *drive.Service
	Sheets   *sheets.Service
	Calendar *calendar.Service
}

// NewServices authenticates with the cached OAuth token (running the
// browser flow when there is none) and creates the API services.
func NewServices(ctx context.Context) (*Services, error) {
	client, err := auth.GetClient(ctx, auth.Scopes)
	if err != nil {
		return nil, err
	}
	return NewServicesWithOptions(ctx, option.WithHTTPClient(client))
}

// NewServicesWithOptions creates the services with explicit client options.
func NewServicesWithOptions(ctx context.Context, opts ...option.ClientOption) (*Services, error) {
	d, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Drive client: %w", err)
	}
	s, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets client: %w", err)
	}
	c, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Calendar client: %w", err)
	}
	return &Services{Drive: d, Sheets: s, Calendar: c}, nil
}
