package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/souqly/backend/internal/domain"
	"github.com/souqly/backend/internal/storage"
)

func newDocumentEnv() (*testEnv, *documentService, *storage.MemoryStore) {
	env := newTestEnv()
	blobs := storage.NewMemoryStore()
	docs := newDocumentService(env.docs, env.requests, blobs)
	return env, docs, blobs
}

func stageInput() StageDocumentInput {
	return StageDocumentInput{
		Kind:     domain.DocumentKindIDCard,
		Name:     "id.png",
		MimeType: "image/png",
		Data:     []byte("fake image bytes"),
	}
}

func TestStage_StoresBlobAndRecord(t *testing.T) {
	env, docs, blobs := newDocumentEnv()
	user := env.addEligibleIndividual()
	require.NoError(t, env.docs.DeleteByUserID(context.Background(), user.ID))

	document, err := docs.Stage(context.Background(), user.ID, stageInput())
	require.NoError(t, err)

	assert.Equal(t, domain.DocumentStatusUploaded, document.Status)
	assert.Equal(t, int64(16), document.SizeBytes)
	assert.Equal(t, 1, blobs.Len())

	data, mimeType, err := blobs.Get(context.Background(), document.StorageKey)
	require.NoError(t, err)
	assert.Equal(t, []byte("fake image bytes"), data)
	assert.Equal(t, "image/png", mimeType)
}

func TestStage_ReplacesExistingKind(t *testing.T) {
	env, docs, _ := newDocumentEnv()
	user := env.addEligibleIndividual()

	document, err := docs.Stage(context.Background(), user.ID, stageInput())
	require.NoError(t, err)

	stored, err := env.docs.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, document.ID, stored[0].ID)
}

func TestStage_Validation(t *testing.T) {
	env, docs, blobs := newDocumentEnv()
	user := env.addEligibleIndividual()

	cases := []struct {
		name  string
		input StageDocumentInput
	}{
		{"empty file", StageDocumentInput{Kind: domain.DocumentKindIDCard, Name: "id.png", MimeType: "image/png"}},
		{"oversized file", StageDocumentInput{
			Kind: domain.DocumentKindIDCard, Name: "id.png", MimeType: "image/png",
			Data: make([]byte, MaxDocumentSizeBytes+1),
		}},
		{"executable", StageDocumentInput{
			Kind: domain.DocumentKindIDCard, Name: "id.exe", MimeType: "application/octet-stream",
			Data: []byte("MZ"),
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := docs.Stage(context.Background(), user.ID, tc.input)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}

	assert.Equal(t, 0, blobs.Len())
}

func TestStage_BlockedWhileUnderReview(t *testing.T) {
	env, docs, _ := newDocumentEnv()
	user := env.addEligibleIndividual()

	_, err := env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	_, err = docs.Stage(context.Background(), user.ID, stageInput())
	assert.ErrorIs(t, err, ErrPrecondition)
}

func TestStage_RejectedDocumentRequiresReset(t *testing.T) {
	env, docs, _ := newDocumentEnv()
	ctx := context.Background()
	user := env.addEligibleIndividual()

	require.NoError(t, env.docs.Upsert(ctx, &domain.UserDocument{
		ID:     uuid.New(),
		UserID: user.ID,
		Kind:   domain.DocumentKindIDCard,
		Status: domain.DocumentStatusRejected,
		Name:   "id.png",
	}))

	_, err := docs.Stage(ctx, user.ID, stageInput())
	assert.ErrorIs(t, err, ErrPrecondition)

	// The reset clears the record; staging works again afterwards.
	require.NoError(t, env.docs.DeleteByUserID(ctx, user.ID))
	_, err = docs.Stage(ctx, user.ID, stageInput())
	assert.NoError(t, err)
}

func TestStage_VerifiedDocumentIsImmutable(t *testing.T) {
	env, docs, _ := newDocumentEnv()
	ctx := context.Background()
	user := env.addEligibleIndividual()

	require.NoError(t, env.docs.Upsert(ctx, &domain.UserDocument{
		ID:     uuid.New(),
		UserID: user.ID,
		Kind:   domain.DocumentKindIDCard,
		Status: domain.DocumentStatusVerified,
		Name:   "id.png",
	}))

	_, err := docs.Stage(ctx, user.ID, stageInput())
	assert.ErrorIs(t, err, ErrPrecondition)

	stored, err := env.docs.GetOneByUserAndKind(ctx, user.ID, domain.DocumentKindIDCard)
	require.NoError(t, err)
	assert.Equal(t, domain.DocumentStatusVerified, stored.Status)
}

func TestStage_StorageFailureLeavesNoRecord(t *testing.T) {
	env := newTestEnv()
	user := env.addEligibleIndividual()
	require.NoError(t, env.docs.DeleteByUserID(context.Background(), user.ID))

	docs := newDocumentService(env.docs, env.requests, failingStore{})

	_, err := docs.Stage(context.Background(), user.ID, stageInput())

	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "put", storageErr.Op)

	stored, err := env.docs.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRemove_OnlyUploadedDocuments(t *testing.T) {
	env, docs, _ := newDocumentEnv()
	user := env.addEligibleIndividual()

	err := docs.Remove(context.Background(), user.ID, domain.DocumentKindBusinessLicense)
	assert.ErrorIs(t, err, ErrDocumentNotFound)

	require.NoError(t, docs.Remove(context.Background(), user.ID, domain.DocumentKindIDCard))

	stored, err := env.docs.GetByUserID(context.Background(), user.ID)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestRemove_BlockedWhileUnderReview(t *testing.T) {
	env, docs, _ := newDocumentEnv()
	user := env.addEligibleIndividual()

	_, err := env.verifications.Submit(context.Background(), user.ID)
	require.NoError(t, err)

	err = docs.Remove(context.Background(), user.ID, domain.DocumentKindIDCard)
	assert.ErrorIs(t, err, ErrPrecondition)
}

type failingStore struct{}

func (failingStore) Put(context.Context, string, []byte, string) error {
	return errors.New("bucket unavailable")
}

func (failingStore) Get(context.Context, string) ([]byte, string, error) {
	return nil, "", errors.New("bucket unavailable")
}
