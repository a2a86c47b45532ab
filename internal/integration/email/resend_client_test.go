package email

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamshare/backend/internal/application/adapter"
	domainerror "github.com/streamshare/backend/internal/domain/error"
)

func TestResendClient(t *testing.T) {
	var received map[string]any
	var authHeader string
	status := http.StatusOK
	reply := `{"id":"re_123"}`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/emails", r.URL.Path)
		authHeader = r.Header.Get("Authorization")
		received = nil
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	client := NewResendClient("re_test_key", "StreamShare", "mutual@streamshare.test")
	require.NoError(t, client.SetBaseURL(srv.URL))

	input := adapter.SendEmailInput{
		To:      "asha@example.com",
		Subject: "Share Standard and pay Rs. 166.33 a month",
		HTML:    "<p>hi</p>",
		Text:    "hi",
	}

	t.Run("sends through the configured endpoint", func(t *testing.T) {
		result, err := client.Send(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, "re_123", result.ResendID)
		assert.Equal(t, "Bearer re_test_key", authHeader)
		assert.Equal(t, "StreamShare <mutual@streamshare.test>", received["from"])
		assert.Equal(t, []any{"asha@example.com"}, received["to"])
		assert.Equal(t, input.Subject, received["subject"])
	})

	t.Run("validation rejection is permanent", func(t *testing.T) {
		status = http.StatusUnprocessableEntity
		reply = `{"statusCode":422,"name":"validation_error","message":"Invalid to field"}`

		_, err := client.Send(context.Background(), input)
		require.Error(t, err)

		var emailErr *domainerror.EmailError
		require.ErrorAs(t, err, &emailErr)
		assert.Equal(t, domainerror.ErrCodePermanentEmailFailure, emailErr.Code)
		assert.ErrorIs(t, err, domainerror.ErrPermanentEmailFailure)
		assert.NotErrorIs(t, err, domainerror.ErrTemporaryEmailFailure)
		assert.True(t, emailErr.Permanent())
	})

	t.Run("server error is retried", func(t *testing.T) {
		status = http.StatusInternalServerError
		reply = `{"statusCode":500,"name":"internal_server_error","message":"Something went wrong"}`

		_, err := client.Send(context.Background(), input)
		require.Error(t, err)

		var emailErr *domainerror.EmailError
		require.ErrorAs(t, err, &emailErr)
		assert.Equal(t, domainerror.ErrCodeTemporaryEmailFailure, emailErr.Code)
		assert.ErrorIs(t, err, domainerror.ErrTemporaryEmailFailure)
		assert.False(t, emailErr.Permanent())
	})
}

func TestResendClientSetBaseURL(t *testing.T) {
	client := NewResendClient("key", "StreamShare", "mutual@streamshare.test")
	assert.Error(t, client.SetBaseURL("not a url"))
	assert.NoError(t, client.SetBaseURL("http://127.0.0.1:8025"))
	assert.Equal(t, "http://127.0.0.1:8025/", client.client.BaseURL.String())
}
