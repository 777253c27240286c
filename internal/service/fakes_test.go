package service

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/queue/task"
	"github.com/souqly/backend/internal/repository"
)

// The fakes mirror the MySQL-backed repositories closely enough to exercise
// the service invariants: the unique (user_id, active) key on requests and
// the compare-and-swap finalize both surface the same sentinel errors here
// as the real store does.

type fakeUsers struct {
	mu    sync.Mutex
	users map[uuid.UUID]*domain.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: make(map[uuid.UUID]*domain.User)}
}

func (f *fakeUsers) add(u *domain.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[u.ID] = u
}

func (f *fakeUsers) Create(_ context.Context, user *domain.User) error {
	f.add(user)
	return nil
}

func (f *fakeUsers) GetOneByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUsers) UpdateVerificationProfile(_ context.Context, userID uuid.UUID, location string, business *domain.BusinessProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Location = sql.NullString{String: location, Valid: location != ""}
	if business != nil {
		user.BusinessName = sql.NullString{String: business.Name, Valid: business.Name != ""}
		user.BusinessDescription = sql.NullString{String: business.Description, Valid: business.Description != ""}
		user.BusinessLicenseNo = sql.NullString{String: business.LicenseNo, Valid: business.LicenseNo != ""}
	}
	return nil
}

func (f *fakeUsers) UpdatePhoneNumber(_ context.Context, userID uuid.UUID, phoneNumber string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.PhoneNumber = sql.NullString{String: phoneNumber, Valid: true}
	user.PhoneVerified = false
	user.PhoneVerifiedAt = nil
	return nil
}

func (f *fakeUsers) SetPhoneVerified(_ context.Context, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.PhoneVerified = true
	user.PhoneVerifiedAt = &at
	return nil
}

func (f *fakeUsers) SetVerifiedWithTx(_ context.Context, _ *sqlx.Tx, userID uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[userID]
	if !ok {
		return domain.ErrNotFound
	}
	user.Verified = true
	user.VerifiedAt = &at
	return nil
}

type fakeDocuments struct {
	mu   sync.Mutex
	docs map[uuid.UUID]map[domain.DocumentKind]domain.UserDocument
}

func newFakeDocuments() *fakeDocuments {
	return &fakeDocuments{docs: make(map[uuid.UUID]map[domain.DocumentKind]domain.UserDocument)}
}

func (f *fakeDocuments) Upsert(_ context.Context, document *domain.UserDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.docs[document.UserID] == nil {
		f.docs[document.UserID] = make(map[domain.DocumentKind]domain.UserDocument)
	}
	f.docs[document.UserID][document.Kind] = *document
	return nil
}

func (f *fakeDocuments) GetByUserID(_ context.Context, userID uuid.UUID) ([]domain.UserDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.UserDocument
	for _, doc := range f.docs[userID] {
		out = append(out, doc)
	}
	return out, nil
}

func (f *fakeDocuments) GetOneByUserAndKind(_ context.Context, userID uuid.UUID, kind domain.DocumentKind) (*domain.UserDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[userID][kind]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

func (f *fakeDocuments) DeleteByUserAndKind(_ context.Context, userID uuid.UUID, kind domain.DocumentKind) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.docs[userID][kind]; !ok {
		return domain.ErrNotFound
	}
	delete(f.docs[userID], kind)
	return nil
}

func (f *fakeDocuments) DeleteByUserID(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, userID)
	return nil
}

func (f *fakeDocuments) UpdateStatusByUserID(ctx context.Context, userID uuid.UUID, from, to domain.DocumentStatus) error {
	return f.UpdateStatusByUserIDWithTx(ctx, nil, userID, from, to)
}

func (f *fakeDocuments) UpdateStatusByUserIDWithTx(_ context.Context, _ *sqlx.Tx, userID uuid.UUID, from, to domain.DocumentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for kind, doc := range f.docs[userID] {
		if doc.Status == from {
			doc.Status = to
			f.docs[userID][kind] = doc
		}
	}
	return nil
}

type fakeRequests struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*domain.VerificationRequest
}

func newFakeRequests() *fakeRequests {
	return &fakeRequests{requests: make(map[uuid.UUID]*domain.VerificationRequest)}
}

func (f *fakeRequests) CreateWithTx(_ context.Context, _ *sqlx.Tx, request *domain.VerificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.requests {
		if existing.UserID == request.UserID && existing.Status == domain.RequestStatusUnderReview {
			return fmt.Errorf("insert verification request: %w", domain.ErrDuplicateEntry)
		}
	}
	active := true
	request.Active = &active
	clone := *request
	f.requests[request.ID] = &clone
	return nil
}

func (f *fakeRequests) GetOneByID(_ context.Context, id uuid.UUID) (*domain.VerificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *request
	return &clone, nil
}

func (f *fakeRequests) GetActiveByUserID(_ context.Context, userID uuid.UUID) (*domain.VerificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, request := range f.requests {
		if request.UserID == userID && request.Status == domain.RequestStatusUnderReview {
			clone := *request
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeRequests) GetLatestByUserID(_ context.Context, userID uuid.UUID) (*domain.VerificationRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var latest *domain.VerificationRequest
	for _, request := range f.requests {
		if request.UserID != userID {
			continue
		}
		if latest == nil || request.SubmittedAt.After(latest.SubmittedAt) {
			latest = request
		}
	}
	if latest == nil {
		return nil, domain.ErrNotFound
	}
	clone := *latest
	return &clone, nil
}

func (f *fakeRequests) List(_ context.Context, status *domain.RequestStatus, page, limit int) ([]domain.VerificationRequest, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.VerificationRequest
	for _, request := range f.requests {
		if status != nil && request.Status != *status {
			continue
		}
		out = append(out, *request)
	}
	total := int64(len(out))
	start := (page - 1) * limit
	if start >= len(out) {
		return nil, total, nil
	}
	end := start + limit
	if end > len(out) {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (f *fakeRequests) FinalizeWithTx(_ context.Context, _ *sqlx.Tx, finalize repository.FinalizeRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	request, ok := f.requests[finalize.ID]
	if !ok || request.Status != domain.RequestStatusUnderReview {
		return fmt.Errorf("finalize verification request: %w", domain.ErrNoRowsAffected)
	}
	request.Status = finalize.Status
	request.Active = nil
	reviewedAt := finalize.ReviewedAt
	request.ReviewedAt = &reviewedAt
	reviewedBy := finalize.ReviewedBy
	request.ReviewedBy = &reviewedBy
	request.ReviewNotes = sql.NullString{String: finalize.ReviewNotes, Valid: finalize.ReviewNotes != ""}
	if finalize.DocumentsSnapshot != nil {
		request.DocumentsSnapshot = finalize.DocumentsSnapshot
	}
	return nil
}

func finalizeRejected(id uuid.UUID) repository.FinalizeRequest {
	return repository.FinalizeRequest{
		ID:          id,
		Status:      domain.RequestStatusRejected,
		ReviewedAt:  time.Now(),
		ReviewedBy:  uuid.New(),
		ReviewNotes: "blurry photo",
	}
}

type fakeTransactor struct{}

func (fakeTransactor) InTx(_ context.Context, fn func(tx *sqlx.Tx) error) error {
	return fn(nil)
}

type fakeStatusCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID][]byte
}

func newFakeStatusCache() *fakeStatusCache {
	return &fakeStatusCache{entries: make(map[uuid.UUID][]byte)}
}

func (f *fakeStatusCache) Get(_ context.Context, userID uuid.UUID) ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	payload, ok := f.entries[userID]
	return payload, ok
}

func (f *fakeStatusCache) Set(_ context.Context, userID uuid.UUID, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[userID] = payload
}

func (f *fakeStatusCache) Invalidate(_ context.Context, userID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, userID)
}

type fakePhoneCodes struct {
	mu    sync.Mutex
	codes map[uuid.UUID]string
}

func newFakePhoneCodes() *fakePhoneCodes {
	return &fakePhoneCodes{codes: make(map[uuid.UUID]string)}
}

func (f *fakePhoneCodes) Set(_ context.Context, userID uuid.UUID, code string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.codes[userID] = code
	return nil
}

func (f *fakePhoneCodes) Get(_ context.Context, userID uuid.UUID) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.codes[userID]
	if !ok {
		return "", domain.ErrNotFound
	}
	return code, nil
}

func (f *fakePhoneCodes) Delete(_ context.Context, userID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.codes, userID)
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []task.VerificationEvent
}

func (f *fakePublisher) Enqueue(_ context.Context, event task.VerificationEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) byType(eventType task.EventType) []task.VerificationEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []task.VerificationEvent
	for _, event := range f.events {
		if event.Type == eventType {
			out = append(out, event)
		}
	}
	return out
}

type fakeSMSSender struct {
	mu       sync.Mutex
	messages []string
}

func (f *fakeSMSSender) Send(_ context.Context, _ string, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
	return nil
}

type fakeOTPGenerator struct {
	code string
}

func (f fakeOTPGenerator) RandomCode(int) string {
	return f.code
}
