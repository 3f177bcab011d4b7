// Package client 题目与媒体接口的 HTTP 客户端
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"baitapvui_backend/internal/config"
	"baitapvui_backend/internal/model"
	"baitapvui_backend/internal/util"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("baitapvui/client")

// QuestionPayload 创建请求体；省略 nil 字段后作为更新请求体
type QuestionPayload struct {
	Type     *model.QuestionType `json:"type,omitempty"`
	Content  *string             `json:"content,omitempty"`
	Order    *int                `json:"order,omitempty"`
	Options  []model.Option      `json:"options,omitempty"`
	MediaIDs []string            `json:"mediaIds,omitempty"`
}

// PayloadFromDraft 由草稿题目构造完整请求体，本地 ID 不发送
func PayloadFromDraft(q model.DraftQuestion) QuestionPayload {
	t, content, order := q.Type, q.Content, q.Order
	p := QuestionPayload{Type: &t, Content: &content, Order: &order, MediaIDs: q.MediaIDs()}
	if q.Type == model.QuestionMultipleChoice {
		p.Options = q.Options
	}
	return p
}

type Client struct {
	http  *resty.Client
	token string
}

func New(cfg config.BuilderConfig) *Client {
	timeout := cfg.RequestTimeout()
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BackendURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(200 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		AddRetryCondition(func(resp *resty.Response, err error) bool {
			// 写请求不自动重试
			if resp == nil || resp.Request == nil || resp.Request.Method != http.MethodGet {
				return false
			}
			return err != nil || resp.StatusCode() == http.StatusTooManyRequests ||
				resp.StatusCode() >= http.StatusInternalServerError
		})
	return &Client{http: r}
}

// WithToken 返回携带调用者令牌的副本
func (c *Client) WithToken(token string) *Client {
	return &Client{http: c.http, token: token}
}

type tokenKey struct{}

// ContextWithToken 把令牌放入 ctx，客户端共享而调用者按请求变化时使用
func ContextWithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

func (c *Client) request(ctx context.Context) *resty.Request {
	req := c.http.R().SetContext(ctx)
	token := c.token
	if t, ok := ctx.Value(tokenKey{}).(string); ok && t != "" {
		token = t
	}
	if token != "" {
		req.SetAuthToken(token)
	}
	return req
}

type envelope struct {
	Data json.RawMessage `json:"data"`
}

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Errors  []util.FieldError `json:"errors"`
}

// do 发送请求，把成功响应的 data 字段解码到 out
func (c *Client) do(ctx context.Context, op string, send func(*resty.Request) (*resty.Response, error), req *resty.Request, out any) (err error) {
	ctx, span := tracer.Start(ctx, "client."+op, trace.WithSpanKind(trace.SpanKindClient))
	req.SetContext(ctx)
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	resp, err := send(req)
	if err != nil {
		return &APIError{Kind: KindNetwork, Code: util.CodeBackendUnreachable, Message: err.Error(), Err: err}
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))

	if resp.IsError() {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode(), Code: util.CodeBackendError,
			Message: "undecodable response body", Err: err}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &APIError{Kind: KindServer, Status: resp.StatusCode(), Code: util.CodeBackendError,
			Message: "unexpected response data", Err: err}
	}
	return nil
}

func decodeError(resp *resty.Response) error {
	status := resp.StatusCode()
	var body errorBody
	if status == http.StatusTooManyRequests {
		_ = json.Unmarshal(resp.Body(), &body)
		apiErr := &APIError{Kind: KindThrottled, Status: status, Code: body.Code, Message: body.Message}
		if apiErr.Code == "" {
			apiErr.Code = util.CodeRateLimited
		}
		if secs, err := strconv.Atoi(resp.Header().Get("Retry-After")); err == nil && secs > 0 {
			apiErr.RetryAfter = time.Duration(secs) * time.Second
		}
		return apiErr
	}
	if err := json.Unmarshal(resp.Body(), &body); err == nil && body.Code != "" && status < http.StatusInternalServerError {
		return &APIError{Kind: KindRejected, Status: status, Code: body.Code, Message: body.Message, Fields: body.Errors}
	}

	apiErr := &APIError{Kind: KindServer, Status: status, Code: body.Code, Message: body.Message}
	if apiErr.Code == "" {
		apiErr.Code = util.CodeBackendError
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

func (c *Client) CreateQuestion(ctx context.Context, assignmentID string, p QuestionPayload) (*model.QuestionDTO, error) {
	var out model.QuestionDTO
	req := c.request(ctx).SetPathParam("assignmentId", assignmentID).SetBody(p)
	err := c.do(ctx, "CreateQuestion", func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/assignments/{assignmentId}/questions")
	}, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListQuestions(ctx context.Context, assignmentID string) ([]model.QuestionDTO, error) {
	out := []model.QuestionDTO{}
	req := c.request(ctx).SetPathParam("assignmentId", assignmentID)
	err := c.do(ctx, "ListQuestions", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/assignments/{assignmentId}/questions")
	}, req, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) UpdateQuestion(ctx context.Context, id string, p QuestionPayload) (*model.QuestionDTO, error) {
	var out model.QuestionDTO
	req := c.request(ctx).SetPathParam("id", id).SetBody(p)
	err := c.do(ctx, "UpdateQuestion", func(r *resty.Request) (*resty.Response, error) {
		return r.Put("/questions/{id}")
	}, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteQuestion(ctx context.Context, id string) error {
	req := c.request(ctx).SetPathParam("id", id)
	return c.do(ctx, "DeleteQuestion", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/questions/{id}")
	}, req, nil)
}

func (c *Client) ReorderQuestions(ctx context.Context, assignmentID string, orders []model.QuestionOrder) error {
	req := c.request(ctx).
		SetPathParam("assignmentId", assignmentID).
		SetBody(model.ReorderRequest{Questions: orders})
	return c.do(ctx, "ReorderQuestions", func(r *resty.Request) (*resty.Response, error) {
		return r.Put("/assignments/{assignmentId}/questions/reorder")
	}, req, nil)
}

// UploadMedia 以 multipart 字段 file 上传文件
func (c *Client) UploadMedia(ctx context.Context, mediaType model.MediaType, filename string, r io.Reader) (*model.MediaAttachment, error) {
	var out model.MediaAttachment
	req := c.request(ctx).SetFileReader("file", filename, r)
	if mediaType != "" {
		req.SetFormData(map[string]string{"type": string(mediaType)})
	}
	err := c.do(ctx, "UploadMedia", func(r *resty.Request) (*resty.Response, error) {
		return r.Post("/media/upload")
	}, req, &out)
	if err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, &APIError{Kind: KindServer, Code: util.CodeBackendError, Message: fmt.Sprintf("upload of %s returned no media id", filename)}
	}
	return &out, nil
}

func (c *Client) GetMedia(ctx context.Context, id string) (*model.PresignedMedia, error) {
	var out model.PresignedMedia
	req := c.request(ctx).SetPathParam("id", id)
	err := c.do(ctx, "GetMedia", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/media/{id}")
	}, req, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMedia(ctx context.Context, id string) error {
	req := c.request(ctx).SetPathParam("id", id)
	return c.do(ctx, "DeleteMedia", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/media/{id}")
	}, req, nil)
}
