package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/metrics"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

// NetworkErrorMessage is reported when the service could not be reached at all.
const NetworkErrorMessage = "Network Error"

// Analyzer is the remote crime analysis service.
type Analyzer interface {
	FetchStates(ctx context.Context) ([]string, error)
	Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.RawAnalysis, error)
}

// RequestError is a failed call to the analysis service. Message is suitable
// for display; StatusCode is zero for transport failures.
type RequestError struct {
	Op         string
	StatusCode int
	Message    string
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *RequestError) Unwrap() error { return e.Err }

type crimeAnalysisClient struct {
	baseURL string
	logger  *utils.Logger
	client  *http.Client
}

func NewCrimeAnalysisClient(baseURL string, timeout time.Duration, logger *utils.Logger) Analyzer {
	return NewCrimeAnalysisClientWithHTTP(baseURL, &http.Client{Timeout: timeout}, logger)
}

func NewCrimeAnalysisClientWithHTTP(baseURL string, client *http.Client, logger *utils.Logger) Analyzer {
	return &crimeAnalysisClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
		client:  client,
	}
}

func (c *crimeAnalysisClient) FetchStates(ctx context.Context) ([]string, error) {
	const op = "fetch states"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/states", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := c.do(op, req)
	if err != nil {
		return nil, err
	}

	states := gjson.GetBytes(body, "states")
	if !states.IsArray() {
		return nil, &RequestError{Op: op, Message: "response has no states list"}
	}

	var out []string
	states.ForEach(func(_, value gjson.Result) bool {
		out = append(out, value.String())
		return true
	})

	return out, nil
}

func (c *crimeAnalysisClient) Analyze(ctx context.Context, r *models.AnalyzeRequest) (*models.RawAnalysis, error) {
	const op = "crime analysis"

	payload, contentType, err := encodeMultipart(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/crime-analysis", payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(op, req)
	if err != nil {
		return nil, err
	}

	result, err := DecodeAnalysis(body)
	if err != nil {
		c.logger.Error("Malformed analysis response", "error", err, "body", truncate(body, 512))
		return nil, &RequestError{Op: op, Message: "malformed response from analysis service", Err: err}
	}

	return result, nil
}

// do sends req and returns the body of a 2xx response.
func (c *crimeAnalysisClient) do(op string, req *http.Request) (body []byte, err error) {
	start := time.Now()
	defer func() {
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(op, result).Inc()
		metrics.UpstreamDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("Analysis service unreachable", "op", op, "url", req.URL.String(), "error", err)
		return nil, &RequestError{Op: op, Message: NetworkErrorMessage, Err: err}
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RequestError{Op: op, Message: NetworkErrorMessage, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Analysis service error", "op", op, "status", resp.StatusCode, "body", truncate(body, 512))
		return nil, &RequestError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    ErrorMessage(resp.StatusCode, body),
		}
	}

	return body, nil
}

func encodeMultipart(r *models.AnalyzeRequest) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", r.Filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(r.File); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("state", r.State); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("year", r.Year); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &buf, w.FormDataContentType(), nil
}

// ErrorMessage picks the text shown for a non-2xx response: the body's
// "message" field, then its "error" field, then the bare status.
func ErrorMessage(status int, body []byte) string {
	if gjson.ValidBytes(body) {
		for _, field := range []string{"message", "error", "detail"} {
			v := gjson.GetBytes(body, field)
			if v.Type == gjson.String && v.String() != "" {
				return v.String()
			}
		}
	}
	return fmt.Sprintf("Request failed with status code %d", status)
}

// DecodeAnalysis reads a crime-analysis response body. Mapping entries keep
// the order the service wrote them in.
func DecodeAnalysis(body []byte) (*models.RawAnalysis, error) {
	if !gjson.ValidBytes(body) {
		return nil, errors.New("response is not valid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return nil, errors.New("response is not a JSON object")
	}

	pie, err := decodeMapping(root.Get("pie_data"), "pie_data")
	if err != nil {
		return nil, err
	}
	bar, err := decodeMapping(root.Get("bar_data"), "bar_data")
	if err != nil {
		return nil, err
	}

	return &models.RawAnalysis{
		PieData:           pie,
		BarData:           bar,
		HighestCountCrime: root.Get("highest_count_crime").String(),
	}, nil
}

func decodeMapping(v gjson.Result, field string) ([]models.Entry, error) {
	if !v.Exists() || v.Type == gjson.Null {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, fmt.Errorf("%s is not an object", field)
	}

	var entries []models.Entry
	var err error
	v.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Number {
			err = fmt.Errorf("%s[%q] is not a number", field, key.String())
			return false
		}
		entries = append(entries, models.Entry{Label: key.String(), Value: value.Float()})
		return true
	})

	return entries, err
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

// AsRequestError unwraps err into a *RequestError.
func AsRequestError(err error) (*RequestError, bool) {
	var reqErr *RequestError
	ok := errors.As(err, &reqErr)
	return reqErr, ok
}
