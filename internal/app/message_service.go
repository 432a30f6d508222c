package app

import (
	"context"
	"strings"

	"farmlink/internal/common"
	"farmlink/internal/domain/analytics"
	"farmlink/internal/domain/application"
	"farmlink/internal/domain/job"
	"farmlink/internal/domain/message"
)

const maxMessageBodyLength = 2000

// MessageService runs the per-application thread between the job's farmer
// and the applicant. Nobody else can read or write it.
type MessageService struct {
	messages     message.Repository
	applications application.Repository
	jobs         job.Repository
	analytics    analytics.Repository
}

func NewMessageService(messages message.Repository, applications application.Repository, jobs job.Repository, analytics analytics.Repository) *MessageService {
	return &MessageService{messages: messages, applications: applications, jobs: jobs, analytics: analytics}
}

func (s *MessageService) Send(ctx context.Context, applicationID, senderID common.UUID, body string) (*message.Message, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, common.NewValidationError("invalid message", map[string]string{"body": "body is required"})
	}
	if len(body) > maxMessageBodyLength {
		return nil, common.NewValidationError("invalid message", map[string]string{"body": "body is too long"})
	}
	if err := s.requireParticipant(ctx, applicationID, senderID); err != nil {
		return nil, err
	}
	created, err := s.messages.Create(ctx, message.Message{
		ApplicationID: applicationID,
		SenderID:      senderID,
		Body:          body,
	})
	if err != nil {
		return nil, err
	}
	_ = s.analytics.Create(ctx, analytics.Event{Name: "message.sent", UserID: &senderID, Payload: analyticsPayload(ctx, map[string]string{"application_id": applicationID.String()})})
	return created, nil
}

func (s *MessageService) List(ctx context.Context, applicationID, requesterID common.UUID, limit, offset int) ([]message.Message, error) {
	if err := s.requireParticipant(ctx, applicationID, requesterID); err != nil {
		return nil, err
	}
	return s.messages.ListByApplication(ctx, applicationID, limit, offset)
}

func (s *MessageService) requireParticipant(ctx context.Context, applicationID, userID common.UUID) error {
	item, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		return err
	}
	if item.WorkerID == userID {
		return nil
	}
	posting, err := s.jobs.GetByID(ctx, item.JobID)
	if err != nil {
		return err
	}
	if posting.OwnerID != userID {
		return common.NewError(common.CodeForbidden, "only the farmer and the applicant can use this thread", nil)
	}
	return nil
}
