package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(config.BuilderConfig{BackendURL: srv.URL, RequestTimeoutSeconds: 5, RetryCount: 2})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestCreateQuestion(t *testing.T) {
	var got map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/assignments/a1/questions", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeJSON(w, http.StatusCreated, envelopeOf(map[string]any{"id": "q1", "assignmentId": "a1", "type": "essay", "content": "hi", "order": 0}))
	}).WithToken("tok")

	q := model.DraftQuestion{LocalID: "local-1", Type: model.QuestionEssay, Content: "hi",
		Options: []model.Option{{ID: "o1", Text: "dormant"}}}
	dto, err := c.CreateQuestion(t.Context(), "a1", PayloadFromDraft(q))
	require.NoError(t, err)
	assert.Equal(t, "q1", dto.ID)

	assert.Equal(t, "essay", got["type"])
	assert.Equal(t, "hi", got["content"])
	assert.EqualValues(t, 0, got["order"])
	assert.NotContains(t, got, "localId")
	assert.NotContains(t, got, "options", "essay questions do not send dormant options")
}

func TestUpdateQuestionPartialBody(t *testing.T) {
	var raw string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/questions/q1", r.URL.Path)
		b, _ := io.ReadAll(r.Body)
		raw = string(b)
		writeJSON(w, http.StatusOK, envelopeOf(map[string]any{"id": "q1", "content": "new"}))
	})

	content := "new"
	_, err := c.UpdateQuestion(t.Context(), "q1", QuestionPayload{Content: &content})
	require.NoError(t, err)
	assert.JSONEq(t, `{"content":"new"}`, raw)
}

func TestReorderQuestions(t *testing.T) {
	var body model.ReorderRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/assignments/a1/questions/reorder", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		writeJSON(w, http.StatusOK, envelopeOf(nil))
	})

	err := c.ReorderQuestions(t.Context(), "a1", []model.QuestionOrder{{ID: "q2", Order: 0}, {ID: "q1", Order: 1}})
	require.NoError(t, err)
	assert.Equal(t, []model.QuestionOrder{{ID: "q2", Order: 0}, {ID: "q1", Order: 1}}, body.Questions)
}

func TestUploadMedia(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		b, _ := io.ReadAll(f)
		assert.Equal(t, "cat.png", hdr.Filename)
		assert.Equal(t, "pixels", string(b))
		assert.Equal(t, "image", r.FormValue("type"))
		writeJSON(w, http.StatusCreated, envelopeOf(map[string]any{"id": "m1", "type": "image", "url": "http://cdn/m1", "filename": "cat.png"}))
	})

	m, err := c.UploadMedia(t.Context(), model.MediaImage, "cat.png", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.Equal(t, model.MediaAttachment{ID: "m1", Type: model.MediaImage, URL: "http://cdn/m1", Filename: "cat.png"}, *m)
}

func TestRejectedWithFieldErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, util.ErrorBody{
			Code:    util.CodeValidation,
			Message: "Question content is required",
			Errors:  []util.FieldError{{Field: "content", Message: "Question content is required"}},
		})
	})

	_, err := c.CreateQuestion(t.Context(), "a1", QuestionPayload{})
	require.Error(t, err)
	assert.True(t, IsRejected(err))
	assert.False(t, IsRetryable(err))
	assert.False(t, IsNetwork(err))

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, util.CodeValidation, apiErr.Code)
	assert.Equal(t, []util.FieldError{{Field: "content", Message: "Question content is required"}}, apiErr.FieldErrors())
}

func TestServerFault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>boom</html>"))
	})

	err := c.DeleteQuestion(t.Context(), "q1")
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.False(t, IsNetwork(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestUndecodable4xxIsServerFault(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte("nope"))
	})

	err := c.DeleteMedia(t.Context(), "m1")
	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, KindServer, apiErr.Kind)
	assert.Equal(t, util.CodeBackendError, apiErr.Code)
}

func TestNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(config.BuilderConfig{BackendURL: url, RequestTimeoutSeconds: 1})
	_, err := c.ListQuestions(t.Context(), "a1")
	require.Error(t, err)
	assert.True(t, IsNetwork(err))
	assert.True(t, IsRetryable(err))
	assert.Equal(t, 0, StatusOf(err))
}

func TestRetriesOnlyReads(t *testing.T) {
	var gets, posts atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			if gets.Add(1) < 2 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			writeJSON(w, http.StatusOK, envelopeOf([]map[string]any{{"id": "q1", "order": 0}}))
			return
		}
		posts.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	list, err := c.ListQuestions(t.Context(), "a1")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.EqualValues(t, 2, gets.Load())

	_, err = c.CreateQuestion(t.Context(), "a1", QuestionPayload{})
	require.Error(t, err)
	assert.EqualValues(t, 1, posts.Load())
}

func TestGetMedia(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/media/m1", r.URL.Path)
		writeJSON(w, http.StatusOK, envelopeOf(map[string]any{"id": "m1", "url": "http://signed", "expiresAt": "2026-01-01T00:00:00Z"}))
	})

	m, err := c.GetMedia(t.Context(), "m1")
	require.NoError(t, err)
	assert.Equal(t, "http://signed", m.URL)
}

// envelopeOf 用接口的成功响应结构包装 data
func envelopeOf(data any) util.Response {
	return util.Response{Code: 200, Message: "success", Data: data}
}

func TestContextToken(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer from-ctx", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	}).WithToken("static")

	require.NoError(t, c.DeleteQuestion(ContextWithToken(t.Context(), "from-ctx"), "q1"))
}

func TestThrottledIsRetryable(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "3")
		writeJSON(w, http.StatusTooManyRequests, util.ErrorBody{Code: util.CodeRateLimited, Message: "Too many requests"})
	})

	err := c.DeleteQuestion(t.Context(), "q1")
	require.Error(t, err)
	assert.True(t, IsThrottled(err))
	assert.True(t, IsRetryable(err))
	assert.False(t, IsRejected(err))
	assert.EqualValues(t, 1, calls.Load(), "writes are not retried")

	apiErr, ok := asAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.Status)
	assert.Equal(t, util.CodeRateLimited, apiErr.Code)
	assert.Equal(t, 3*time.Second, apiErr.RetryAfter)
}
