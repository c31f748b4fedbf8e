package leads

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"homebuyer-lead-engine/internal/metrics"
	"homebuyer-lead-engine/internal/models"
	s3service "homebuyer-lead-engine/internal/services/s3"
	"homebuyer-lead-engine/internal/services/ses"
	"homebuyer-lead-engine/internal/utils"
)

const source = "homebuyer-wizard"

// Repository persists leads.
type Repository interface {
	Create(ctx context.Context, lead *models.Lead) error
	MarkSubmission(ctx context.Context, lead *models.Lead) error
}

// Archiver stores a report and returns a shareable link.
type Archiver interface {
	ArchiveReport(ctx context.Context, leadID string, report *models.ReportData) (*s3service.PresignedURLResult, error)
}

// Mailer emails the report to the buyer.
type Mailer interface {
	SendReport(ctx context.Context, params ses.ReportEmail) (*ses.SendEmailResult, error)
}

// Publisher announces the submission outcome.
type Publisher interface {
	PublishLead(ctx context.Context, lead *models.Lead) error
}

// Dependencies are the optional collaborators of Service. Nil members are skipped.
type Dependencies struct {
	Repository Repository
	Archiver   Archiver
	Mailer     Mailer
	Publisher  Publisher
	Now        func() time.Time
}

// Service validates, stores and submits leads.
type Service struct {
	submitter *Submitter
	deps      Dependencies
}

// NewService creates a lead service.
func NewService(submitter *Submitter, deps Dependencies) *Service {
	if submitter == nil {
		submitter = NewSubmitter()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Service{submitter: submitter, deps: deps}
}

// Submit runs the submission flow. Only invalid contact details return an
// error; channel failures are reported in the result and side effect
// failures are logged.
func (s *Service) Submit(ctx context.Context, lead *models.Lead) (*SubmissionResult, error) {
	if lead == nil {
		return nil, errors.New("lead is required")
	}
	if err := models.ValidateContact(&lead.Contact); err != nil {
		return nil, err
	}

	logger := utils.GetLogger()
	now := s.deps.Now().UTC()

	if lead.ID == "" {
		lead.ID = uuid.New().String()
	}
	if lead.Locale == "" {
		lead.Locale = models.LocaleEnglish
	}
	if lead.LeadType == "" && lead.Report != nil && lead.Report.LeadProfile != nil {
		lead.LeadType = lead.Report.LeadProfile.LeadType
	}
	lead.Status = models.LeadStatusPending
	lead.CreatedAt = now
	lead.UpdatedAt = now

	persisted := false
	if s.deps.Repository != nil {
		if err := s.deps.Repository.Create(ctx, lead); err != nil {
			s.sideEffectFailed("persist", lead, err)
		} else {
			persisted = true
		}
	}

	if s.deps.Archiver != nil && lead.Report != nil {
		link, err := s.deps.Archiver.ArchiveReport(ctx, lead.ID, lead.Report)
		if err != nil {
			s.sideEffectFailed("archive", lead, err)
		} else {
			lead.ReportURL = link.URL
		}
	}

	result := s.submitter.Submit(ctx, &Payload{
		LeadID:      lead.ID,
		Contact:     lead.Contact,
		Locale:      lead.Locale,
		LeadType:    lead.LeadType,
		Answers:     &lead.Answers,
		Report:      lead.Report,
		ReportURL:   lead.ReportURL,
		Source:      source,
		SubmittedAt: now.Format(time.RFC3339),
	})

	lead.UpdatedAt = s.deps.Now().UTC()
	if result.Success {
		lead.Status = models.LeadStatusSubmitted
		lead.Channel = result.Channel
		lead.ExternalID = result.ExternalID
		lead.SubmissionError = ""
	} else {
		lead.Status = models.LeadStatusFailed
		lead.SubmissionError = joinErrors(result.Errors)
	}

	if persisted {
		if err := s.deps.Repository.MarkSubmission(ctx, lead); err != nil {
			s.sideEffectFailed("persist", lead, err)
		}
	}

	if s.deps.Mailer != nil && lead.Report != nil {
		_, err := s.deps.Mailer.SendReport(ctx, ses.ReportEmail{
			Name:      lead.Contact.Name,
			Email:     lead.Contact.Email,
			Locale:    lead.Locale,
			Report:    lead.Report,
			ReportURL: lead.ReportURL,
		})
		if err != nil {
			s.sideEffectFailed("email", lead, err)
		}
	}

	if s.deps.Publisher != nil {
		if err := s.deps.Publisher.PublishLead(ctx, lead); err != nil {
			s.sideEffectFailed("publish", lead, err)
		}
	}

	logger.Info("Lead processed",
		utils.String("leadID", lead.ID),
		utils.String("status", string(lead.Status)),
		utils.String("channel", lead.Channel),
		utils.String("leadType", string(lead.LeadType)))

	return &result, nil
}

func (s *Service) sideEffectFailed(effect string, lead *models.Lead, err error) {
	metrics.SideEffectFailures.WithLabelValues(effect).Inc()
	utils.GetLogger().Error("Lead side effect failed",
		utils.String("effect", effect),
		utils.String("leadID", lead.ID),
		utils.Error(err))
}

func joinErrors(errs map[string]string) string {
	names := make([]string, 0, len(errs))
	for name := range errs {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, name+": "+errs[name])
	}
	return strings.Join(parts, "; ")
}
