package responses

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/remitkit/remitroute/pkg/errors"
	"github.com/remitkit/remitroute/pkg/types"
)

func TestWriteSuccess(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteSuccess(rec, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var envelope types.SuccessEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	data, ok := envelope.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "world", data["hello"])
}

func TestWriteErrorTypedCode(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeOrderLocked, "order is locked by another user")
	WriteError(context.Background(), nil, rec, err)

	assert.Equal(t, http.StatusLocked, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ORDER_LOCKED", envelope.Error.Code)
	assert.Equal(t, "order is locked by another user", envelope.Error.Message)
}

func TestWriteErrorUntypedBecomesInternal(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(context.Background(), nil, rec, assert.AnError)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "INTERNAL_ERROR", envelope.Error.Code)
	assert.Equal(t, "internal server error", envelope.Error.Message)
}

func TestWriteErrorDetailsOnlyWhenAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	err := pkgerrors.New(pkgerrors.CodeVendorComm, "gateway unreachable").
		WithDetails(map[string]any{"http_status": 502})
	WriteError(context.Background(), nil, rec, err)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var envelope types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error.Details)

	rec = httptest.NewRecorder()
	err = pkgerrors.New(pkgerrors.CodeOrderLocked, "locked").
		WithDetails(map[string]any{"assigned_user_id": "abc"})
	WriteError(context.Background(), nil, rec, err)

	var suppressed types.ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &suppressed))
	assert.Nil(t, suppressed.Error.Details)
}
