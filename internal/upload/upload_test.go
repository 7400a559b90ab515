package upload

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"cinelume/internal/apperr"
	"cinelume/internal/logger"
	"cinelume/internal/models"
	"cinelume/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signature() models.UploadSignature {
	return models.UploadSignature{
		Signature: "signed-by-backend",
		Timestamp: 1700000000,
		APIKey:    testutil.UploadAPIKey,
		CloudName: testutil.UploadCloudName,
		Folder:    "avatars",
	}
}

func TestImageUpload(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := NewClient(backend.UploadURL(), 0, logger.Discard())

	res, err := client.Image(context.Background(), signature(), "/tmp/me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	_, err = uuid.Parse(res.PublicID)
	assert.NoError(t, err)
	assert.Equal(t, "https://res.example.test/"+testutil.UploadCloudName+"/image/upload/"+res.PublicID, res.SecureURL)
	assert.Equal(t, int64(len("png-bytes")), res.Bytes)
}

func TestImageUploadBadSignature(t *testing.T) {
	backend := testutil.NewBackend(t)
	client := NewClient(backend.UploadURL(), 0, logger.Discard())

	sig := signature()
	sig.Signature = "forged"
	_, err := client.Image(context.Background(), sig, "me.png", strings.NewReader("png-bytes"))
	require.Error(t, err)
	assert.Equal(t, apperr.KindRequest, apperr.KindOf(err))
	assert.Equal(t, http.StatusUnauthorized, apperr.StatusOf(err))
}

func TestImageUploadRejectsEmptyFile(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 0, logger.Discard())

	_, err := client.Image(context.Background(), signature(), "me.png", strings.NewReader(""))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = client.Image(context.Background(), models.UploadSignature{}, "me.png", strings.NewReader("x"))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}
