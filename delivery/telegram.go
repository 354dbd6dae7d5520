package delivery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"sort"
	"strconv"
	"strings"

	"github.com/ByLCY/inkpost/layout"
)

// DefaultTelegramAPI 是 Bot API 的默认地址。
const DefaultTelegramAPI = "https://api.telegram.org"

const maxResponseBytes = 1 << 20

// Telegram 通过 Bot API 的 sendDocument 投递文件。
type Telegram struct {
	BaseURL string
	Client  *http.Client
}

var _ Sink = (*Telegram)(nil)

// NewTelegram 创建投递器，baseURL 为空时使用官方地址。
func NewTelegram(baseURL string, client *http.Client) *Telegram {
	if baseURL == "" {
		baseURL = DefaultTelegramAPI
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Telegram{BaseURL: strings.TrimRight(baseURL, "/"), Client: client}
}

// APIError 是 Bot API 返回 ok=false 时的错误。
type APIError struct {
	StatusCode  int
	ErrorCode   int
	Description string
}

func (e *APIError) Error() string {
	if e.Description == "" {
		return fmt.Sprintf("telegram api error (status %d)", e.StatusCode)
	}
	return e.Description
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
	ErrorCode   int             `json:"error_code"`
}

// SendDocument 以 multipart/form-data 调用 {base}/bot{token}/sendDocument。
func (t *Telegram) SendDocument(ctx context.Context, doc Document) (Result, error) {
	if doc.BotToken == "" || doc.ChatID == "" {
		return Result{}, t.fail(fmt.Errorf("chat id and bot token are required"))
	}
	body, contentType, err := encodeForm(doc)
	if err != nil {
		return Result{}, t.fail(err)
	}

	endpoint := t.BaseURL + "/bot" + doc.BotToken + "/sendDocument"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return Result{}, t.fail(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := t.Client.Do(req)
	if err != nil {
		// url.Error 会带上包含 token 的地址，这里只保留底层原因。
		return Result{}, t.fail(fmt.Errorf("send request: %w", unwrapURLError(err)))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return Result{}, t.fail(fmt.Errorf("read response: %w", err))
	}
	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return Result{}, t.fail(fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err))
	}
	if !parsed.OK {
		return Result{}, t.fail(&APIError{StatusCode: resp.StatusCode, ErrorCode: parsed.ErrorCode, Description: parsed.Description})
	}

	var res Result
	if len(parsed.Result) > 0 {
		if err := json.Unmarshal(parsed.Result, &res); err != nil {
			return Result{}, t.fail(fmt.Errorf("decode result: %w", err))
		}
	}
	if res.Document.FileName == "" {
		res.Document.FileName = doc.FileName
	}
	if res.Document.MimeType == "" {
		res.Document.MimeType = doc.MimeType
	}
	if res.Document.FileSize == 0 {
		res.Document.FileSize = int64(len(doc.Data))
	}
	return res, nil
}

func (t *Telegram) fail(err error) error {
	return &layout.CollaboratorError{Collaborator: layout.CollaboratorDelivery, Op: "sendDocument", Err: err}
}

func unwrapURLError(err error) error {
	type unwrapper interface{ Unwrap() error }
	if u, ok := err.(unwrapper); ok && u.Unwrap() != nil {
		return u.Unwrap()
	}
	return err
}

func encodeForm(doc Document) (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"chat_id", doc.ChatID},
		{"caption", doc.Caption},
		{"parse_mode", doc.ParseMode},
		{"disable_notification", strconv.FormatBool(doc.DisableNotification)},
		{"protect_content", strconv.FormatBool(doc.ProtectContent)},
	}
	keys := make([]string, 0, len(doc.Options))
	for k := range doc.Options {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := formValue(doc.Options[k])
		if err != nil {
			return nil, "", fmt.Errorf("encode %s: %w", k, err)
		}
		fields = append(fields, [2]string{k, v})
	}
	for _, f := range fields {
		if f[1] == "" && f[0] != "caption" {
			continue
		}
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}

	mimeType := doc.MimeType
	if mimeType == "" {
		mimeType = "application/pdf"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="document"; filename=%q`, doc.FileName))
	header.Set("Content-Type", mimeType)
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(doc.Data); err != nil {
		return nil, "", err
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}

// formValue 把标量转成字符串，对象与数组编码为 JSON。
func formValue(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case bool:
		return strconv.FormatBool(val), nil
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(val), nil
	case int64:
		return strconv.FormatInt(val, 10), nil
	case json.Number:
		return val.String(), nil
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
}
