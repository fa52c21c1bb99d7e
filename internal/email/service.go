package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"time"

	"crm-server/internal/observability"
	"crm-server/internal/store"
)

var (
	ErrSendingEmail = errors.New("error sending email")
	ErrNoRecipient  = errors.New("no report recipient configured")
)

// EmailService sends operator notifications about campaigns
type EmailService struct {
	mailer        Mailer
	logger        *observability.Logger
	defaultSender string
	reportTo      string
	templates     map[string]*template.Template
	location      *time.Location
}

// TemplateData represents the data that can be used in templates
type TemplateData struct {
	CampaignName    string
	CampaignID      string
	TotalRecipients int
	SentCount       int
	FailedCount     int
	StartedAt       string
	CompletedAt     string
}

var templateSources = map[string]string{
	"campaign_completed": `
	<html>
		<body>
			<h1>Campaign finished: {{.CampaignName}}</h1>
			<p>All recipients of campaign <code>{{.CampaignID}}</code> have been processed.</p>
			<table>
				<tr><td>Recipients</td><td><strong>{{.TotalRecipients}}</strong></td></tr>
				<tr><td>Sent</td><td><strong>{{.SentCount}}</strong></td></tr>
				<tr><td>Failed or skipped</td><td><strong>{{.FailedCount}}</strong></td></tr>
				{{if .StartedAt}}<tr><td>Started</td><td>{{.StartedAt}}</td></tr>{{end}}
				{{if .CompletedAt}}<tr><td>Completed</td><td>{{.CompletedAt}}</td></tr>{{end}}
			</table>
			<p>Failed recipients can be retried by duplicating the campaign.</p>
		</body>
	</html>
	`,
}

// New creates a new EmailService. loc formats timestamps in reports.
func New(mailer Mailer, defaultSender, reportTo string, loc *time.Location, logger *observability.Logger) (*EmailService, error) {
	templates := make(map[string]*template.Template, len(templateSources))
	for name, src := range templateSources {
		tmpl, err := template.New(name).Parse(src)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = tmpl
	}
	if loc == nil {
		loc = time.UTC
	}

	return &EmailService{
		mailer:        mailer,
		logger:        logger,
		defaultSender: defaultSender,
		reportTo:      reportTo,
		templates:     templates,
		location:      loc,
	}, nil
}

// renderTemplate renders a template with the provided data
func (s *EmailService) renderTemplate(templateName string, data TemplateData) (string, error) {
	tmpl, ok := s.templates[templateName]
	if !ok {
		return "", fmt.Errorf("template %s not found", templateName)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

// CampaignCompleted emails the campaign's final counters to the report recipient
func (s *EmailService) CampaignCompleted(ctx context.Context, campaign store.Campaign) error {
	if s.reportTo == "" {
		return ErrNoRecipient
	}

	ctx = observability.WithFields(ctx,
		observability.Field{Key: "campaign_id", Value: campaign.ID.String()},
		observability.Field{Key: "email_template", Value: "campaign_completed"},
	)

	data := TemplateData{
		CampaignName:    campaign.Name,
		CampaignID:      campaign.ID.String(),
		TotalRecipients: campaign.TotalRecipients,
		SentCount:       campaign.SentCount,
		FailedCount:     campaign.FailedCount,
		StartedAt:       s.formatTime(campaign.StartedAt),
		CompletedAt:     s.formatTime(campaign.CompletedAt),
	}

	html, err := s.renderTemplate("campaign_completed", data)
	if err != nil {
		s.logger.Error(ctx, "failed to render campaign report", err)
		return err
	}

	subject := fmt.Sprintf("Campaign \"%s\" completed: %d sent, %d failed", campaign.Name, campaign.SentCount, campaign.FailedCount)
	if _, err := s.mailer.SendEmail(ctx, s.defaultSender, s.reportTo, subject, html); err != nil {
		return fmt.Errorf("%w: %w", ErrSendingEmail, err)
	}

	s.logger.Info(ctx, "campaign report sent")
	return nil
}

func (s *EmailService) formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.In(s.location).Format("2006-01-02 15:04 MST")
}
