package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	cryptoDomain "github.com/allisson/sealedrecords/internal/crypto/domain"
	"github.com/allisson/sealedrecords/internal/httputil"
	recordsDomain "github.com/allisson/sealedrecords/internal/records/domain"
	"github.com/allisson/sealedrecords/internal/records/http/dto"
	"github.com/allisson/sealedrecords/internal/records/usecase/mocks"
)

// setupTestRouter mounts a handler backed by a mocked use case on a fresh router.
func setupTestRouter(t *testing.T) (*gin.Engine, *mocks.MockRecordUseCase) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	mockUseCase := &mocks.MockRecordUseCase{}
	t.Cleanup(func() { mockUseCase.AssertExpectations(t) })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewRecordHandler(mockUseCase, logger)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/v1"))

	return router, mockUseCase
}

func doRequest(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var bodyReader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(b)
	default:
		bodyBytes, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req := httptest.NewRequest(method, path, bodyReader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func sampleRecord(id string) *cryptoDomain.SecureRecord {
	return &cryptoDomain.SecureRecord{
		ID:                id,
		PartyID:           "party-a",
		CreatedAt:         time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		PayloadNonce:      strings.Repeat("01", cryptoDomain.NonceSize),
		PayloadCiphertext: "c0ffee",
		PayloadTag:        strings.Repeat("02", cryptoDomain.TagSize),
		DekWrapNonce:      strings.Repeat("03", cryptoDomain.NonceSize),
		WrappedDek:        strings.Repeat("04", cryptoDomain.KeySize),
		DekWrapTag:        strings.Repeat("05", cryptoDomain.TagSize),
		Alg:               cryptoDomain.AESGCM,
		MkVersion:         2,
	}
}

func TestRecordHandler_EncryptHandler(t *testing.T) {
	t.Run("Success_ValidRequest", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		payload := json.RawMessage(`{"amount":10}`)
		record := sampleRecord("rec-1")

		mockUseCase.On("Encrypt", mock.Anything, "rec-1", "party-a", payload).
			Return(record, nil).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/encrypt", dto.SealRequest{
			ID:      "rec-1",
			PartyID: "party-a",
			Payload: payload,
		})

		assert.Equal(t, http.StatusOK, w.Code)
		var response cryptoDomain.SecureRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, *record, response)
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, "/v1/encrypt", `{"partyId":`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "bad_request", decodeError(t, w).Error)
	})

	t.Run("Error_MissingPartyID", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, "/v1/encrypt", `{"payload":{"a":1}}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "validation_error", resp.Error)
		assert.Contains(t, resp.Message, "partyId")
	})

	t.Run("Error_MissingPayload", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, "/v1/encrypt", `{"partyId":"party-a"}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "payload")
	})

	t.Run("Error_NoKeysConfigured", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Encrypt", mock.Anything, "", "party-a", mock.Anything).
			Return(nil, cryptoDomain.ErrNoKeysConfigured).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/encrypt", `{"partyId":"party-a","payload":1}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "internal", decodeError(t, w).Code)
	})
}

func TestRecordHandler_DecryptHandler(t *testing.T) {
	t.Run("Success_ValidRecord", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		record := sampleRecord("rec-1")
		mockUseCase.On("Decrypt", mock.Anything, mock.MatchedBy(func(r *cryptoDomain.SecureRecord) bool {
			return r.ID == record.ID && r.WrappedDek == record.WrappedDek && r.MkVersion == record.MkVersion
		})).
			Return(&cryptoDomain.DecryptedRecord{
				ID:      "rec-1",
				PartyID: "party-a",
				Payload: map[string]any{"amount": json.Number("10")},
			}, nil).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/decrypt", record)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"rec-1","partyId":"party-a","payload":{"amount":10}}`, w.Body.String())
	})

	t.Run("Error_InvalidJSON", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, "/v1/decrypt", `not json`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_AuthenticationFailed", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Decrypt", mock.Anything, mock.Anything).
			Return(nil, cryptoDomain.ErrAuthenticationFailed).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/decrypt", sampleRecord("rec-1"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "authentication_failed", decodeError(t, w).Code)
	})

	t.Run("Error_LengthMismatch", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Decrypt", mock.Anything, mock.Anything).
			Return(nil, &cryptoDomain.LengthMismatchError{Field: "payloadTag", Expected: 16, Actual: 15}).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/decrypt", sampleRecord("rec-1"))

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "length_mismatch", resp.Code)
		assert.Contains(t, resp.Message, "payloadTag")
	})

	t.Run("Error_CorruptPayload", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Decrypt", mock.Anything, mock.Anything).
			Return(nil, cryptoDomain.ErrCorruptPayload).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/decrypt", sampleRecord("rec-1"))

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "corrupt_payload", decodeError(t, w).Code)
	})
}

func TestRecordHandler_CreateHandler(t *testing.T) {
	t.Run("Success_Created", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		record := sampleRecord("generated-id")
		mockUseCase.On("Create", mock.Anything, "", "party-a", json.RawMessage(`["x","y"]`)).
			Return(record, nil).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/records", `{"partyId":"party-a","payload":["x","y"]}`)

		assert.Equal(t, http.StatusCreated, w.Code)
		var response cryptoDomain.SecureRecord
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "generated-id", response.ID)
		assert.Equal(t, uint(2), response.MkVersion)
	})

	t.Run("Error_AlreadyExists", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Create", mock.Anything, "rec-1", "party-a", mock.Anything).
			Return(nil, recordsDomain.ErrRecordAlreadyExists).
			Once()

		w := doRequest(router, http.MethodPost, "/v1/records", `{"id":"rec-1","partyId":"party-a","payload":{}}`)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("Error_InvalidID", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodPost, "/v1/records", `{"id":"a/b","partyId":"party-a","payload":{}}`)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})
}

func TestRecordHandler_ListHandler(t *testing.T) {
	t.Run("Success_DefaultPagination", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("List", mock.Anything, recordsDomain.ListFilter{Offset: 0, Limit: httputil.DefaultLimit}).
			Return([]*cryptoDomain.SecureRecord{sampleRecord("rec-1"), sampleRecord("rec-2")}, nil).
			Once()

		w := doRequest(router, http.MethodGet, "/v1/records", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		var response dto.ListRecordsResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Data, 2)
		assert.Equal(t, "rec-1", response.Data[0].ID)
	})

	t.Run("Success_FilterByParty", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("List", mock.Anything, recordsDomain.ListFilter{PartyID: "party-b", Offset: 10, Limit: 5}).
			Return([]*cryptoDomain.SecureRecord{}, nil).
			Once()

		w := doRequest(router, http.MethodGet, "/v1/records?partyId=party-b&offset=10&limit=5", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("Error_InvalidLimit", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodGet, "/v1/records?limit=1000", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Error_InvalidPartyID", func(t *testing.T) {
		router, _ := setupTestRouter(t)

		w := doRequest(router, http.MethodGet, "/v1/records?partyId=has%20space", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Contains(t, decodeError(t, w).Message, "partyId")
	})
}

func TestRecordHandler_GetHandler(t *testing.T) {
	t.Run("Success_Decrypted", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Get", mock.Anything, "rec-1").
			Return(&cryptoDomain.DecryptedRecord{ID: "rec-1", PartyID: "party-a", Payload: "hello"}, nil).
			Once()

		w := doRequest(router, http.MethodGet, "/v1/records/rec-1", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"id":"rec-1","partyId":"party-a","payload":"hello"}`, w.Body.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Get", mock.Anything, "missing").
			Return(nil, recordsDomain.ErrRecordNotFound).
			Once()

		w := doRequest(router, http.MethodGet, "/v1/records/missing", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("Error_RetiredKeyVersion", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Get", mock.Anything, "rec-1").
			Return(nil, &cryptoDomain.UnknownKeyVersionError{Requested: 1, Available: []uint{2}}).
			Once()

		w := doRequest(router, http.MethodGet, "/v1/records/rec-1", nil)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, "unknown_key_version", decodeError(t, w).Code)
	})
}

func TestRecordHandler_GetSealedHandler(t *testing.T) {
	router, mockUseCase := setupTestRouter(t)

	record := sampleRecord("rec-1")
	mockUseCase.On("GetSealed", mock.Anything, "rec-1").Return(record, nil).Once()

	w := doRequest(router, http.MethodGet, "/v1/records/rec-1/sealed", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var response cryptoDomain.SecureRecord
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, *record, response)
}

func TestRecordHandler_DeleteHandler(t *testing.T) {
	t.Run("Success_NoContent", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Delete", mock.Anything, "rec-1").Return(nil).Once()

		w := doRequest(router, http.MethodDelete, "/v1/records/rec-1", nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		router, mockUseCase := setupTestRouter(t)

		mockUseCase.On("Delete", mock.Anything, "rec-1").Return(recordsDomain.ErrRecordNotFound).Once()

		w := doRequest(router, http.MethodDelete, "/v1/records/rec-1", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
