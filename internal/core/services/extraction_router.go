package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/custodia-labs/provena/internal/core/domain"
	"github.com/custodia-labs/provena/internal/core/ports/driven"
	"github.com/custodia-labs/provena/internal/core/ports/driving"
	"github.com/custodia-labs/provena/internal/logger"
)

// Ensure ExtractionRouter implements the interface.
var _ driving.ExtractionRouter = (*ExtractionRouter)(nil)

// ExtractionRouter tries extraction strategies in priority order with fallback.
type ExtractionRouter struct {
	strategies []driven.Extractor
}

// NewExtractionRouter creates a router. Strategies are tried in the order given.
func NewExtractionRouter(strategies ...driven.Extractor) *ExtractionRouter {
	return &ExtractionRouter{strategies: strategies}
}

// Extract runs eligible strategies until one succeeds.
//
// A strategy failing with domain.ErrContentTooSmall is skipped silently.
// Any other failure is remembered and the next strategy is tried. When no
// strategy succeeds the error wraps domain.ErrUnsupportedInput and, if one
// was seen, the first non-size failure.
func (r *ExtractionRouter) Extract(ctx context.Context, rawURL string) (*domain.NormalizedContent, error) {
	logger.Section("Extraction")
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty url", domain.ErrUnsupportedInput)
	}

	var (
		specific  error
		attempted int
		tooSmall  int
	)

	for _, s := range r.strategies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !s.IsEligible(rawURL) {
			logger.Debug("Strategy %s: not eligible", s.Name())
			continue
		}

		attempted++
		logger.Debug("Strategy %s: extracting %s", s.Name(), rawURL)
		content, err := s.Extract(ctx, rawURL)
		if err == nil {
			logger.Info("Strategy %s: extracted %d characters", s.Name(), len(content.PlainText))
			return content, nil
		}

		switch {
		case errors.Is(err, domain.ErrContentTooSmall):
			tooSmall++
			logger.Debug("Strategy %s: %v", s.Name(), err)
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			logger.Warn("Strategy %s failed: %v", s.Name(), err)
			if specific == nil {
				specific = fmt.Errorf("%s: %w", s.Name(), err)
			}
		}

		if ex, ok := s.(driven.ExclusiveExtractor); ok && ex.Exclusive() {
			logger.Debug("Strategy %s is exclusive, stopping", s.Name())
			break
		}
	}

	switch {
	case specific != nil:
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrUnsupportedInput, rawURL, specific)
	case attempted == 0:
		return nil, fmt.Errorf("%w: no strategy accepts %s", domain.ErrUnsupportedInput, rawURL)
	default:
		return nil, fmt.Errorf("%w: %s: %d strategies returned too little text",
			domain.ErrUnsupportedInput, rawURL, tooSmall)
	}
}

// Strategies returns the strategy names in priority order.
func (r *ExtractionRouter) Strategies() []string {
	names := make([]string, len(r.strategies))
	for i, s := range r.strategies {
		names[i] = s.Name()
	}
	return names
}
