package market

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

var errNotQuoted = errors.New("crop not quoted")

// HTTPSource fetches quotes from GET {baseURL}/prices/{crop}. Calls go through
// a circuit breaker so a failing provider is skipped quickly.
type HTTPSource struct {
	baseURL string
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
}

func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	s := &HTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "market-api",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, errNotQuoted)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
		},
	})
	return s
}

type quoteResponse struct {
	Price        float64 `json:"price"`
	Unit         string  `json:"unit"`
	UnitWeightLb float64 `json:"unit_weight_lb"`
}

func (s *HTTPSource) Quote(ctx context.Context, crop string) (Quote, bool, error) {
	if err := ctx.Err(); err != nil {
		return Quote{}, false, err
	}

	res, err := s.breaker.Execute(func() (interface{}, error) {
		return s.fetch(crop)
	})
	if errors.Is(err, errNotQuoted) {
		return Quote{}, false, nil
	}
	if err != nil {
		return Quote{}, false, fmt.Errorf("market api: %w", err)
	}

	body := res.(quoteResponse)
	return Quote{
		Crop:         crop,
		Price:        body.Price,
		Unit:         body.Unit,
		UnitWeightLb: body.UnitWeightLb,
		Source:       "api",
	}, true, nil
}

func (s *HTTPSource) fetch(crop string) (quoteResponse, error) {
	agent := fiber.Get(s.baseURL + "/prices/" + url.PathEscape(crop))
	agent.Timeout(s.timeout)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return quoteResponse{}, errors.Join(errs...)
	}

	switch {
	case code == fiber.StatusNotFound:
		return quoteResponse{}, errNotQuoted
	case code != fiber.StatusOK:
		return quoteResponse{}, fmt.Errorf("unexpected status %d", code)
	}

	var resp quoteResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return quoteResponse{}, fmt.Errorf("decode quote: %w", err)
	}
	if resp.Price <= 0 {
		return quoteResponse{}, fmt.Errorf("invalid price %v for %s", resp.Price, crop)
	}
	return resp, nil
}
