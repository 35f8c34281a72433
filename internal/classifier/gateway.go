package classifier

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/spec-kit/incident-service/internal/domain"
	"github.com/spec-kit/incident-service/internal/observability"
)

// Gateway applies predictor output to incidents and falls back to defaults
// when the predictor cannot answer.
type Gateway struct {
	predictor Predictor
	logger    *zap.Logger
	metrics   *observability.Metrics
}

// NewGateway wires the gateway.
func NewGateway(predictor Predictor, logger *zap.Logger, metrics *observability.Metrics) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{predictor: predictor, logger: logger, metrics: metrics}
}

// Classify sets category and priority on the incident. It never fails.
func (g *Gateway) Classify(ctx context.Context, incident *domain.Incident) {
	if incident == nil {
		return
	}

	var (
		prediction Prediction
		err        error
	)
	if g.predictor == nil {
		err = &PredictError{Reason: ReasonDisabled, Err: ErrDisabled}
	} else {
		prediction, err = g.predictor.Predict(ctx, incident.Description)
	}

	if err != nil {
		reason := ReasonUnreachable
		var predictErr *PredictError
		if errors.As(err, &predictErr) {
			reason = predictErr.Reason
		}
		g.logger.Warn("incident classification failed; applying defaults",
			zap.String("reason", reason),
			zap.Error(err),
		)
		g.metrics.RecordClassifierFallback(reason)
		applyDefaults(incident)
		return
	}

	incident.Category = domain.ParseCategory(prediction.Category)
	incident.Priority = prediction.Priority
}

func applyDefaults(incident *domain.Incident) {
	if incident.Category == "" {
		incident.Category = domain.CategoryGeneral
	}
	if incident.Priority == 0 {
		incident.Priority = domain.DefaultPriority
	}
}
