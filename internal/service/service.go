package service

import (
	"context"

	"github.com/souqly/backend/internal/cache"
	"github.com/souqly/backend/internal/config"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/repository"
	"github.com/souqly/backend/internal/storage"
	"github.com/souqly/backend/pkg/otp"
	"github.com/souqly/backend/pkg/sms"

	"github.com/google/uuid"
)

type Services struct {
	Documents     Documents
	Verifications Verifications
	Reviews       Reviews
	Phone         Phone
}

// EventPublisher hands a verification event to the delivery queue. Delivery
// downstream is at-least-once; consumers deduplicate by event id.
type EventPublisher interface {
	Enqueue(ctx context.Context, event task.VerificationEvent) error
}

type Deps struct {
	Config       *config.Config
	Repos        *repository.Repositories
	BlobStore    storage.Store
	StatusCache  cache.StatusCache
	PhoneCodes   cache.PhoneCodes
	Events       EventPublisher
	OtpGenerator otp.Generator
	SMSSender    sms.Sender
}

func NewServices(deps Deps) *Services {
	return &Services{
		Documents: newDocumentService(
			deps.Repos.UserDocuments,
			deps.Repos.VerificationRequests,
			deps.BlobStore,
		),
		Verifications: newVerificationService(
			deps.Repos.Users,
			deps.Repos.UserDocuments,
			deps.Repos.VerificationRequests,
			deps.Repos,
			deps.StatusCache,
			deps.Events,
		),
		Reviews: newReviewService(
			deps.Repos.Users,
			deps.Repos.UserDocuments,
			deps.Repos.VerificationRequests,
			deps.Repos,
			deps.BlobStore,
			deps.StatusCache,
			deps.Events,
		),
		Phone: newPhoneService(
			deps.Repos.Users,
			deps.PhoneCodes,
			deps.OtpGenerator,
			deps.SMSSender,
			deps.StatusCache,
			deps.Config.Phone,
		),
	}
}

type Documents interface {
	Stage(ctx context.Context, userID uuid.UUID, input StageDocumentInput) (*domain.UserDocument, error)
	Remove(ctx context.Context, userID uuid.UUID, kind domain.DocumentKind) error
	List(ctx context.Context, userID uuid.UUID) ([]domain.UserDocument, error)
}

type Verifications interface {
	Submit(ctx context.Context, userID uuid.UUID) (*domain.VerificationRequest, error)
	ResetForResubmission(ctx context.Context, userID uuid.UUID) error
	Status(ctx context.Context, userID uuid.UUID) (*StatusResult, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input ProfileInput) error
}

type Reviews interface {
	Approve(ctx context.Context, requestID, reviewerID uuid.UUID, notes string) error
	Reject(ctx context.Context, requestID, reviewerID uuid.UUID, notes string) error
	List(ctx context.Context, status *domain.RequestStatus, page, limit int) ([]domain.VerificationRequest, int64, error)
	GetOneByID(ctx context.Context, requestID uuid.UUID) (*domain.VerificationRequest, error)
	DocumentContent(ctx context.Context, requestID uuid.UUID, kind domain.DocumentKind) ([]byte, string, error)
}

type Phone interface {
	RequestCode(ctx context.Context, userID uuid.UUID, phoneNumber string) error
	ConfirmCode(ctx context.Context, userID uuid.UUID, code string) error
}
