package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/queue/task"
)

type testEnv struct {
	users    *fakeUsers
	docs     *fakeDocuments
	requests *fakeRequests
	cache    *fakeStatusCache
	events   *fakePublisher

	verifications *verificationService
}

func newTestEnv() *testEnv {
	env := &testEnv{
		users:    newFakeUsers(),
		docs:     newFakeDocuments(),
		requests: newFakeRequests(),
		cache:    newFakeStatusCache(),
		events:   &fakePublisher{},
	}
	env.verifications = newVerificationService(
		env.users, env.docs, env.requests, fakeTransactor{}, env.cache, env.events,
	)
	return env
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func (env *testEnv) addEligibleIndividual() *domain.User {
	user := &domain.User{
		ID:            uuid.New(),
		AccountType:   domain.AccountTypeIndividual,
		PhoneVerified: true,
		PhoneNumber:   nullStr("+971501234567"),
		Email:         nullStr("seller@example.com"),
		Location:      nullStr("Dubai"),
	}
	env.users.add(user)
	_ = env.docs.Upsert(context.Background(), &domain.UserDocument{
		ID:         uuid.New(),
		UserID:     user.ID,
		Kind:       domain.DocumentKindIDCard,
		Status:     domain.DocumentStatusUploaded,
		StorageKey: "documents/" + user.ID.String() + "/id_card/test",
		Name:       "id.png",
		MimeType:   "image/png",
	})
	return user
}

func TestSubmit_CreatesRequestWithSnapshot(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()

	request, err := env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.RequestStatusUnderReview, request.Status)
	assert.True(t, request.PhoneVerifiedAtSubmission)
	assert.Nil(t, request.BusinessSnapshot)

	snapshot, ok := request.DocumentsSnapshot[domain.DocumentKindIDCard]
	require.True(t, ok)
	assert.Equal(t, domain.DocumentStatusUnderReview, snapshot.Status)
	assert.Equal(t, "id.png", snapshot.Name)

	docs, err := env.docs.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, domain.DocumentStatusUnderReview, docs[0].Status)

	events := env.events.byType(task.EventSubmitted)
	require.Len(t, events, 1)
	assert.Equal(t, user.ID, events[0].UserID)
	assert.NotEqual(t, uuid.Nil, events[0].EventID)
}

func TestSubmit_BusinessCarriesBusinessSnapshot(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()
	user.AccountType = domain.AccountTypeBusiness
	user.BusinessName = nullStr("Acme Trading LLC")
	user.BusinessDescription = nullStr("Electronics reseller")
	user.BusinessLicenseNo = nullStr("DED-12345")
	_ = env.docs.Upsert(context.Background(), &domain.UserDocument{
		ID:     uuid.New(),
		UserID: user.ID,
		Kind:   domain.DocumentKindBusinessLicense,
		Status: domain.DocumentStatusUploaded,
		Name:   "license.pdf",
	})

	request, err := env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	require.NotNil(t, request.BusinessSnapshot)
	assert.Equal(t, "Acme Trading LLC", request.BusinessSnapshot.Name)
	assert.Len(t, request.DocumentsSnapshot, 2)
}

func TestSubmit_IncompleteProfile(t *testing.T) {
	env := newTestEnv()
	user := &domain.User{ID: uuid.New(), AccountType: domain.AccountTypeIndividual}
	env.users.add(user)

	_, err := env.verifications.Submit(context.Background(), user.ID)

	var incomplete *IncompleteProfileError
	require.ErrorAs(t, err, &incomplete)
	assert.Equal(t, []domain.MissingReason{
		domain.MissingPhoneNotVerified,
		domain.MissingIDCard,
		domain.MissingLocation,
	}, incomplete.Missing)
	assert.Empty(t, env.events.byType(task.EventSubmitted))
}

func TestSubmit_UnknownUser(t *testing.T) {
	env := newTestEnv()

	_, err := env.verifications.Submit(context.Background(), uuid.New())

	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestSubmit_AlreadyVerified(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()
	user.Verified = true

	_, err := env.verifications.Submit(context.Background(), user.ID)

	assert.ErrorIs(t, err, ErrAlreadyVerified)
}

func TestSubmit_SecondSubmitWhileUnderReview(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()

	_, err := env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = env.verifications.Submit(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	events := env.events.byType(task.EventSubmitted)
	assert.Len(t, events, 1)
}

func TestSubmit_ConcurrentSubmitsYieldOneRequest(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()

	const attempts = 16
	results := make(chan error, attempts)

	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.verifications.Submit(context.Background(), user.ID)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var succeeded, rejected int
	for err := range results {
		switch {
		case err == nil:
			succeeded++
		case assert.ErrorIs(t, err, ErrAlreadySubmitted):
			rejected++
		}
	}

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Len(t, env.events.byType(task.EventSubmitted), 1)
}

func TestResetForResubmission_RequiresRejection(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()

	err := env.verifications.ResetForResubmission(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrPrecondition)

	_, err = env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	err = env.verifications.ResetForResubmission(context.Background(), user.ID)
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestResetForResubmission_ClearsDocuments(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()

	request, err := env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	require.NoError(t, env.requests.FinalizeWithTx(context.Background(), nil, finalizeRejected(request.ID)))
	require.NoError(t, env.docs.UpdateStatusByUserID(context.Background(), user.ID,
		domain.DocumentStatusUnderReview, domain.DocumentStatusRejected))

	err = env.verifications.ResetForResubmission(context.Background(), user.ID)
	require.NoError(t, err)

	docs, err := env.docs.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, docs)

	// The rejected request itself stays for audit.
	latest, err := env.requests.GetLatestByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RequestStatusRejected, latest.Status)

	assert.Len(t, env.events.byType(task.EventReset), 1)
}

func TestStatus_Progression(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	user := &domain.User{ID: uuid.New(), AccountType: domain.AccountTypeIndividual}
	env.users.add(user)

	result, err := env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNotStarted, result.Status)
	assert.Equal(t, []domain.MissingReason{
		domain.MissingPhoneNotVerified,
		domain.MissingIDCard,
		domain.MissingLocation,
	}, result.Missing)

	user.PhoneVerified = true
	user.Location = nullStr("Dubai")
	_ = env.docs.Upsert(ctx, &domain.UserDocument{
		ID: uuid.New(), UserID: user.ID,
		Kind: domain.DocumentKindIDCard, Status: domain.DocumentStatusUploaded,
	})
	env.cache.Invalidate(ctx, user.ID)

	result, err = env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDocumentsPending, result.Status)
	assert.Empty(t, result.Missing)

	_, err = env.verifications.Submit(ctx, user.ID)
	require.NoError(t, err)

	result, err = env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, result.Status)
	assert.NotNil(t, result.SubmittedAt)
}

func TestStatus_ServedFromCacheUntilInvalidated(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.addEligibleIndividual()

	first, err := env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDocumentsPending, first.Status)

	// Mutate behind the cache: a stale read is expected until invalidation.
	user.Verified = true

	cached, err := env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDocumentsPending, cached.Status)

	env.cache.Invalidate(ctx, user.ID)

	fresh, err := env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusVerified, fresh.Status)
}

func TestStatus_RejectedCarriesNotes(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.addEligibleIndividual()

	request, err := env.verifications.Submit(ctx, user.ID)
	require.NoError(t, err)

	require.NoError(t, env.requests.FinalizeWithTx(ctx, nil, finalizeRejected(request.ID)))
	require.NoError(t, env.docs.UpdateStatusByUserID(ctx, user.ID,
		domain.DocumentStatusUnderReview, domain.DocumentStatusRejected))
	env.cache.Invalidate(ctx, user.ID)

	result, err := env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, result.Status)
	assert.Equal(t, "blurry photo", result.ReviewNotes)
	assert.NotNil(t, result.ReviewedAt)
}

func TestUpdateProfile_BusinessFieldsRejectedForIndividuals(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()

	err := env.verifications.UpdateProfile(context.Background(), user.ID, ProfileInput{
		Location: "Dubai",
		Business: &domain.BusinessProfile{Name: "Acme"},
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "business", validationErr.Field)
}

func TestUpdateProfile_InvalidatesCachedStatus(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	user := env.addEligibleIndividual()

	_, err := env.verifications.Status(ctx, user.ID)
	require.NoError(t, err)
	_, cached := env.cache.Get(ctx, user.ID)
	require.True(t, cached)

	require.NoError(t, env.verifications.UpdateProfile(ctx, user.ID, ProfileInput{Location: "Abu Dhabi"}))

	_, cached = env.cache.Get(ctx, user.ID)
	assert.False(t, cached)
}
