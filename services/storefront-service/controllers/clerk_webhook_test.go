package controllers

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testClerkSecret = "whsec_MfKQ9r8GKYqrTwjUPD8ILPZIo2LaLaSw"

type syncCall struct {
	clerkID string
	email   string
	name    string
}

type fakeSync struct {
	calls []syncCall
	err   error
}

func (f *fakeSync) SyncUser(_ context.Context, clerkID, email, name string) error {
	f.calls = append(f.calls, syncCall{clerkID: clerkID, email: email, name: name})
	return f.err
}

// signClerkPayload produces the svix v1 signature over "{id}.{timestamp}.{payload}".
func signClerkPayload(t *testing.T, msgID, timestamp string, payload []byte) string {
	t.Helper()
	key, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(testClerkSecret, "whsec_"))
	assert.NoError(t, err)

	mac := hmac.New(sha256.New, key)
	fmt.Fprintf(mac, "%s.%s.%s", msgID, timestamp, payload)
	return "v1," + base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func newClerkRouter(t *testing.T, secret string, sync *fakeSync) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cc, err := NewClerkWebhookController(secret, sync, zap.NewNop())
	assert.NoError(t, err)

	r := gin.New()
	r.POST("/webhooks/clerk", cc.HandleClerkWebhook)
	return r
}

func postClerkWebhook(r *gin.Engine, payload []byte, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/clerk", bytes.NewReader(payload))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func signedHeaders(t *testing.T, payload []byte) map[string]string {
	t.Helper()
	msgID := "msg_2NZIrc8dXjQ0Adqp"
	ts := fmt.Sprintf("%d", time.Now().Unix())
	return map[string]string{
		"svix-id":        msgID,
		"svix-timestamp": ts,
		"svix-signature": signClerkPayload(t, msgID, ts, payload),
	}
}

func userEventPayload(eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"type": %q,
		"data": {
			"id": "user_2NZIrc",
			"first_name": "Thomas",
			"last_name": "Anderson",
			"email_addresses": [{"email_address": "neo@matrix.io"}]
		}
	}`, eventType))
}

func TestClerkWebhook_UserCreatedSyncsUser(t *testing.T) {
	sync := &fakeSync{}
	r := newClerkRouter(t, testClerkSecret, sync)

	payload := userEventPayload("user.created")
	w := postClerkWebhook(r, payload, signedHeaders(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	if assert.Len(t, sync.calls, 1) {
		assert.Equal(t, "user_2NZIrc", sync.calls[0].clerkID)
		assert.Equal(t, "neo@matrix.io", sync.calls[0].email)
		assert.Equal(t, "Thomas Anderson", sync.calls[0].name)
	}
}

func TestClerkWebhook_UserUpdatedSyncsUser(t *testing.T) {
	sync := &fakeSync{}
	r := newClerkRouter(t, testClerkSecret, sync)

	payload := userEventPayload("user.updated")
	w := postClerkWebhook(r, payload, signedHeaders(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, sync.calls, 1)
}

func TestClerkWebhook_MissingHeaders(t *testing.T) {
	sync := &fakeSync{}
	r := newClerkRouter(t, testClerkSecret, sync)

	payload := userEventPayload("user.created")
	headers := signedHeaders(t, payload)
	delete(headers, "svix-signature")

	w := postClerkWebhook(r, payload, headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sync.calls)
}

func TestClerkWebhook_TamperedPayloadRejected(t *testing.T) {
	sync := &fakeSync{}
	r := newClerkRouter(t, testClerkSecret, sync)

	payload := userEventPayload("user.created")
	headers := signedHeaders(t, payload)
	tampered := bytes.Replace(payload, []byte("neo@matrix.io"), []byte("smith@matrix.io"), 1)

	w := postClerkWebhook(r, tampered, headers)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sync.calls)
}

func TestClerkWebhook_UnrecognizedEventAcknowledged(t *testing.T) {
	sync := &fakeSync{}
	r := newClerkRouter(t, testClerkSecret, sync)

	payload := []byte(`{"type": "session.created", "data": {"id": "sess_1"}}`)
	w := postClerkWebhook(r, payload, signedHeaders(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, sync.calls)
}

func TestClerkWebhook_SyncFailureStillAcknowledged(t *testing.T) {
	sync := &fakeSync{err: assert.AnError}
	r := newClerkRouter(t, testClerkSecret, sync)

	payload := userEventPayload("user.created")
	w := postClerkWebhook(r, payload, signedHeaders(t, payload))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestClerkWebhook_MissingSecretConfig(t *testing.T) {
	sync := &fakeSync{}
	r := newClerkRouter(t, "", sync)

	payload := userEventPayload("user.created")
	w := postClerkWebhook(r, payload, signedHeaders(t, payload))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, sync.calls)
}
