package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Fallback reasons reported by the gateway.
const (
	ReasonDisabled    = "disabled"
	ReasonUnreachable = "unreachable"
	ReasonStatus      = "bad_status"
	ReasonMalformed   = "malformed"
	ReasonIncomplete  = "incomplete"
)

// ErrDisabled is returned when no predictor endpoint is configured.
var ErrDisabled = errors.New("classifier disabled")

// Prediction is the category and priority suggested by the predictor.
type Prediction struct {
	Category string
	Priority int
}

// Predictor suggests a classification for an incident description.
type Predictor interface {
	Predict(ctx context.Context, description string) (Prediction, error)
}

// PredictError carries the fallback reason of a failed prediction.
type PredictError struct {
	Reason string
	Err    error
}

func (e *PredictError) Error() string {
	return fmt.Sprintf("predict (%s): %v", e.Reason, e.Err)
}

func (e *PredictError) Unwrap() error {
	return e.Err
}

type predictRequest struct {
	Description string `json:"description"`
}

type predictFields struct {
	Category *string  `json:"category"`
	Priority *float64 `json:"priority"`
}

// predictResponse accepts the flat shape and the shape nested under "prediction".
type predictResponse struct {
	predictFields
	Prediction *predictFields `json:"prediction"`
}

// Client calls the remote predictor over HTTP.
type Client struct {
	baseURL string
	timeout time.Duration
}

// NewClient builds a predictor client. An empty baseURL disables it.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{baseURL: baseURL, timeout: timeout}
}

// Predict posts the description to {baseURL}/predict.
func (c *Client) Predict(ctx context.Context, description string) (Prediction, error) {
	if c == nil || c.baseURL == "" {
		return Prediction{}, &PredictError{Reason: ReasonDisabled, Err: ErrDisabled}
	}
	if err := ctx.Err(); err != nil {
		return Prediction{}, &PredictError{Reason: ReasonUnreachable, Err: err}
	}

	agent := fiber.Post(c.baseURL + "/predict").
		JSON(predictRequest{Description: description})
	if c.timeout > 0 {
		agent = agent.Timeout(c.timeout)
	}

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return Prediction{}, &PredictError{Reason: ReasonUnreachable, Err: errors.Join(errs...)}
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return Prediction{}, &PredictError{Reason: ReasonStatus, Err: fmt.Errorf("unexpected status %d", code)}
	}

	return decodePrediction(body)
}

func decodePrediction(body []byte) (Prediction, error) {
	var resp predictResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Prediction{}, &PredictError{Reason: ReasonMalformed, Err: err}
	}

	fields := resp.predictFields
	if resp.Prediction != nil {
		fields = *resp.Prediction
	}
	if fields.Category == nil || *fields.Category == "" || fields.Priority == nil {
		return Prediction{}, &PredictError{Reason: ReasonIncomplete, Err: errors.New("category or priority missing")}
	}

	priority := *fields.Priority
	if priority < math.MinInt32 || priority > math.MaxInt32 {
		return Prediction{}, &PredictError{Reason: ReasonMalformed, Err: fmt.Errorf("priority %g out of range", priority)}
	}

	return Prediction{Category: *fields.Category, Priority: int(priority)}, nil
}
