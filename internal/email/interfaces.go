package email

import (
	"context"
)

// Mailer delivers a single HTML email and returns the provider message id
type Mailer interface {
	SendEmail(ctx context.Context, from, to, subject, htmlContent string) (string, error)
}
