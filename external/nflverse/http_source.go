package nflverse

import (
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/gridiron-stats/internal/domain/ingest"
	"github.com/riskibarqy/gridiron-stats/internal/domain/rawdata"
	"github.com/riskibarqy/gridiron-stats/internal/platform/logging"
	"github.com/riskibarqy/gridiron-stats/internal/platform/resilience"
	"github.com/riskibarqy/gridiron-stats/internal/usecase"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL = "https://github.com/nflverse/nflverse-data/releases/download"
	seasonToken    = "{season}"
)

var errProviderTransient = crerr.New("nflverse transient failure")

// DefaultPaths are release asset paths per kind, relative to the base URL.
var DefaultPaths = map[ingest.Kind]string{
	ingest.KindTeam:   "/teams/teams_colors_logos.csv",
	ingest.KindGame:   "/schedules/games.csv",
	ingest.KindPlayer: "/players/players.csv",
	ingest.KindPlay:   "/pbp/play_by_play_" + seasonToken + ".csv.gz",
}

type HTTPSourceConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	// Paths overrides DefaultPaths per kind. A path containing {season} is
	// fetched once per requested season.
	Paths          map[ingest.Kind]string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// HTTPSource fetches release assets over HTTP.
type HTTPSource struct {
	httpClient *http.Client
	baseURL    string
	paths      map[ingest.Kind]string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[rawdata.Batch]
}

func NewHTTPSource(cfg HTTPSourceConfig) *HTTPSource {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 60 * time.Second
	}
	base := httpClient.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	httpClient.Transport = otelhttp.NewTransport(base,
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return "nflverse " + r.Method + " " + r.URL.Path
		}),
	)

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	paths := make(map[ingest.Kind]string, len(DefaultPaths))
	for kind, path := range DefaultPaths {
		paths[kind] = path
	}
	for kind, path := range cfg.Paths {
		if strings.TrimSpace(path) != "" {
			paths[kind] = path
		}
	}

	logger = logger.Named("nflverse")
	breaker := resilience.NewCircuitBreaker("nflverse", cfg.CircuitBreaker)
	breaker.OnStateChange(func(name string, from, to resilience.CircuitState) {
		logger.Warn("circuit breaker state changed", "breaker", name, "from", from, "to", to)
	})

	return &HTTPSource{
		httpClient: httpClient,
		baseURL:    baseURL,
		paths:      paths,
		logger:     logger,
		breaker:    breaker,
	}
}

func (s *HTTPSource) Fetch(ctx context.Context, kind ingest.Kind, seasons []int) (rawdata.Batch, error) {
	path, ok := s.paths[kind]
	if !ok {
		return rawdata.Batch{}, fetchError(fmt.Errorf("no release path for %s", kind), "fetch %s", kind)
	}

	var (
		keep  func(rawdata.Row) bool
		scope string
	)
	if seasonScoped(kind) {
		keep = seasonFilter(seasons)
		scope = fmt.Sprint(seasons)
	}

	if !strings.Contains(path, seasonToken) {
		batch, err := s.fetchAsset(ctx, s.baseURL+path, scope, keep)
		if err != nil {
			return rawdata.Batch{}, fetchError(err, "fetch %s", kind)
		}
		s.logger.InfoContext(ctx, "provider batch fetched", "kind", kind, "rows", len(batch.Rows), "source", batch.Source)
		return batch, nil
	}

	if len(seasons) == 0 {
		return rawdata.Batch{}, fetchError(fmt.Errorf("%s release is per season and no season was requested", kind), "fetch %s", kind)
	}

	batches := make([]rawdata.Batch, 0, len(seasons))
	for _, season := range seasons {
		url := s.baseURL + strings.ReplaceAll(path, seasonToken, strconv.Itoa(season))
		batch, err := s.fetchAsset(ctx, url, scope, keep)
		if err != nil {
			return rawdata.Batch{}, fetchError(err, "fetch %s season %d", kind, season)
		}
		batches = append(batches, batch)
	}

	batch := mergeBatches(s.baseURL+path, batches)
	s.logger.InfoContext(ctx, "provider batch fetched", "kind", kind, "rows", len(batch.Rows), "seasons", seasons)
	return batch, nil
}

func (s *HTTPSource) fetchAsset(ctx context.Context, url, scope string, keep func(rawdata.Row) bool) (rawdata.Batch, error) {
	// Concurrent fetches of the same asset and season scope share one
	// download. Callers only read the batch.
	batch, shared, err := s.flight.Do(ctx, url+"|"+scope, func(ctx context.Context) (rawdata.Batch, error) {
		var batch rawdata.Batch
		err := s.breaker.Execute(func() error {
			var reqErr error
			batch, reqErr = s.download(ctx, url, keep)
			return reqErr
		}, isTransient)
		return batch, err
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		s.logger.WarnContext(ctx, "nflverse circuit breaker rejected request", "state", s.breaker.State(), "url", url)
		return rawdata.Batch{}, fmt.Errorf("%w: nflverse releases are temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	if err != nil {
		return rawdata.Batch{}, err
	}
	if shared {
		s.logger.DebugContext(ctx, "reused in-flight provider download", "url", url)
	}
	return batch, nil
}

func isTransient(err error) bool {
	return crerr.Is(err, errProviderTransient)
}

func (s *HTTPSource) download(ctx context.Context, url string, keep func(rawdata.Row) bool) (rawdata.Batch, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return rawdata.Batch{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("accept", "text/csv, application/gzip, */*")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return rawdata.Batch{}, crerr.Mark(fmt.Errorf("send request: %w", err), errProviderTransient)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		statusErr := fmt.Errorf("provider status=%d url=%s body=%s", resp.StatusCode, url, strings.TrimSpace(string(body)))
		if isRetryableStatus(resp.StatusCode) {
			return rawdata.Batch{}, crerr.Mark(statusErr, errProviderTransient)
		}
		return rawdata.Batch{}, statusErr
	}

	var body io.Reader = resp.Body
	if strings.HasSuffix(req.URL.Path, ".gz") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return rawdata.Batch{}, fmt.Errorf("open gzip body: %w", err)
		}
		defer gz.Close()
		body = gz
	}

	batch, err := decodeCSV(body, url, keep)
	if err != nil {
		return rawdata.Batch{}, err
	}
	return batch, nil
}

func isRetryableStatus(status int) bool {
	return status == http.StatusTooManyRequests || status >= http.StatusInternalServerError
}
