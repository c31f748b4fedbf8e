// Package ses emails generated reports to buyers via AWS SES.
package ses

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"homebuyer-lead-engine/internal/models"
	"homebuyer-lead-engine/internal/utils"
)

// SendAPI is the subset of the SES client the service uses.
type SendAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// Service handles SES email operations
type Service struct {
	client    SendAPI
	fromEmail string
}

// EmailParams represents parameters for sending an email
type EmailParams struct {
	To        string
	Subject   string
	HTMLBody  string
	TextBody  string
	ReplyTo   string
	CC        []string
	BCC       []string
	ConfigSet string
}

// SendEmailResult contains the result of sending an email
type SendEmailResult struct {
	MessageID string
	SentAt    time.Time
}

// ReportEmail is the data rendered into the report email.
type ReportEmail struct {
	Name      string
	Email     string
	Locale    models.Locale
	Report    *models.ReportData
	ReportURL string
}

// NewService creates a service sending from fromEmail.
func NewService(ctx context.Context, fromEmail string) (*Service, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewServiceWithClient(ses.NewFromConfig(cfg), fromEmail), nil
}

// NewServiceWithClient creates a service around an existing client.
func NewServiceWithClient(client SendAPI, fromEmail string) *Service {
	return &Service{client: client, fromEmail: fromEmail}
}

// SendEmail sends a basic email
func (s *Service) SendEmail(ctx context.Context, params EmailParams) (*SendEmailResult, error) {
	input := &ses.SendEmailInput{
		Source: aws.String(s.fromEmail),
		Destination: &types.Destination{
			ToAddresses: []string{params.To},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data:    aws.String(params.Subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &types.Body{},
		},
	}

	if params.HTMLBody != "" {
		input.Message.Body.Html = &types.Content{
			Data:    aws.String(params.HTMLBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if params.TextBody != "" {
		input.Message.Body.Text = &types.Content{
			Data:    aws.String(params.TextBody),
			Charset: aws.String("UTF-8"),
		}
	}

	if len(params.CC) > 0 {
		input.Destination.CcAddresses = params.CC
	}
	if len(params.BCC) > 0 {
		input.Destination.BccAddresses = params.BCC
	}
	if params.ReplyTo != "" {
		input.ReplyToAddresses = []string{params.ReplyTo}
	}
	if params.ConfigSet != "" {
		input.ConfigurationSetName = aws.String(params.ConfigSet)
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		utils.GetLogger().Error("Failed to send email",
			zap.String("to", params.To),
			zap.String("subject", params.Subject),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to send email: %w", err)
	}

	messageID := aws.ToString(result.MessageId)
	utils.GetLogger().Info("Email sent successfully",
		zap.String("to", params.To),
		zap.String("subject", params.Subject),
		zap.String("messageId", messageID),
	)

	return &SendEmailResult{
		MessageID: messageID,
		SentAt:    time.Now(),
	}, nil
}

// SendReport emails the buyer their report.
func (s *Service) SendReport(ctx context.Context, params ReportEmail) (*SendEmailResult, error) {
	if params.Report == nil {
		return nil, fmt.Errorf("no report to send to %s", params.Email)
	}

	htmlBody, err := RenderReportHTML(params)
	if err != nil {
		return nil, fmt.Errorf("failed to render email template: %w", err)
	}

	return s.SendEmail(ctx, EmailParams{
		To:       params.Email,
		Subject:  Subject(params.Locale, params.Name),
		HTMLBody: htmlBody,
		TextBody: RenderReportText(params),
	})
}

// Subject is the localized email subject line.
func Subject(locale models.Locale, name string) string {
	first := strings.Fields(name)
	greeting := ""
	if len(first) > 0 {
		greeting = first[0] + ", "
	}
	if locale == models.LocaleSpanish {
		return greeting + "tu informe personalizado de compra de vivienda"
	}
	return greeting + "your personalized home buying report"
}

var emailLabels = map[models.Locale]struct {
	Greeting string
	Intro    string
	Download string
	Footer   string
}{
	models.LocaleEnglish: {
		Greeting: "Hi",
		Intro:    "Here is the home buying report you requested.",
		Download: "Download your report",
		Footer:   "Estimates only. This is not a loan approval or commitment to lend.",
	},
	models.LocaleSpanish: {
		Greeting: "Hola",
		Intro:    "Aquí está el informe de compra de vivienda que solicitaste.",
		Download: "Descarga tu informe",
		Footer:   "Solo estimaciones. Esto no es una aprobación ni un compromiso de préstamo.",
	},
}

const reportTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <style>
        body { font-family: 'Segoe UI', Tahoma, Geneva, Verdana, sans-serif; line-height: 1.6; color: #333; max-width: 640px; margin: 0 auto; padding: 20px; }
        .content { background: #f9f9f9; padding: 30px; border-radius: 10px; }
        .cta-button { display: inline-block; background: #1f6feb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 8px; font-weight: bold; }
        .footer { text-align: center; margin-top: 30px; color: #999; font-size: 12px; }
    </style>
</head>
<body>
    <p>{{.Labels.Greeting}} {{.Name}},</p>
    <p>{{.Labels.Intro}}</p>
    <div class="content">
{{.Body}}
    </div>
    {{if .ReportURL}}
    <p style="text-align: center;"><a href="{{.ReportURL}}" class="cta-button">{{.Labels.Download}}</a></p>
    {{end}}
    <div class="footer">
        <p>{{.Labels.Footer}}</p>
    </div>
</body>
</html>`

var reportHTML = template.Must(template.New("report_email").Parse(reportTemplate))

// RenderReportHTML converts the report markdown to HTML and wraps it in the
// email layout. Raw HTML in the markdown is dropped by goldmark.
func RenderReportHTML(params ReportEmail) (string, error) {
	var body bytes.Buffer
	if params.Report != nil {
		if err := goldmark.Convert([]byte(params.Report.ReportContent), &body); err != nil {
			return "", fmt.Errorf("failed to render markdown: %w", err)
		}
	}

	locale := params.Locale
	if locale != models.LocaleSpanish {
		locale = models.LocaleEnglish
	}

	var buf bytes.Buffer
	err := reportHTML.Execute(&buf, map[string]interface{}{
		"Lang":      string(locale),
		"Name":      params.Name,
		"Labels":    emailLabels[locale],
		"Body":      template.HTML(body.String()),
		"ReportURL": params.ReportURL,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}

// RenderReportText renders the plain text version.
func RenderReportText(params ReportEmail) string {
	locale := params.Locale
	if locale != models.LocaleSpanish {
		locale = models.LocaleEnglish
	}
	labels := emailLabels[locale]

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "%s %s,\n\n%s\n\n", labels.Greeting, params.Name, labels.Intro)
	if params.Report != nil {
		buf.WriteString(params.Report.ReportContent)
		buf.WriteString("\n\n")
	}
	if params.ReportURL != "" {
		fmt.Fprintf(&buf, "%s: %s\n\n", labels.Download, params.ReportURL)
	}
	buf.WriteString(labels.Footer)
	buf.WriteString("\n")
	return buf.String()
}
