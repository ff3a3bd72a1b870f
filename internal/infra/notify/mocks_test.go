package notify

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/uniedit/invite-server/internal/model"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendProjectInvitation(ctx context.Context, job *model.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *mockNotifier) SendSignupInvitation(ctx context.Context, job *model.NotificationJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

type mockMetrics struct {
	mock.Mock
}

func (m *mockMetrics) RecordInvitationCreated(kind model.TargetKind, notified bool) {
	m.Called(kind, notified)
}

func (m *mockMetrics) RecordValidationFailure(reason string) {
	m.Called(reason)
}

func (m *mockMetrics) RecordInvitationAccepted(kind model.TargetKind) {
	m.Called(kind)
}

func (m *mockMetrics) RecordNotification(kind model.NotificationKind, status string) {
	m.Called(kind, status)
}
