package yahoo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/newthinker/gems/internal/collector"
	"github.com/newthinker/gems/internal/core"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the Yahoo Finance query host
	DefaultBaseURL = "https://query1.finance.yahoo.com"

	// DefaultTimeout bounds a single HTTP round trip
	DefaultTimeout = 15 * time.Second

	// DefaultRateLimit is requests per second across all endpoints
	DefaultRateLimit = 2.0

	// DefaultCookieURL hands out the session cookie the crumb is bound to
	DefaultCookieURL = "https://fc.yahoo.com"

	crumbPath = "/v1/test/getcrumb"

	defaultUserAgent = "Mozilla/5.0 (compatible; gems/1.0)"

	fundamentalModules = "price,summaryDetail,defaultKeyStatistics,financialData"
)

// validSymbol matches symbols like NIO, BRK-B, 0700.HK, ^GSPC
var validSymbol = regexp.MustCompile(`^[A-Za-z0-9^=\-]{1,12}(\.[A-Za-z]{1,4})?$`)

// validateSymbol checks if a symbol has valid format
func validateSymbol(symbol string) error {
	if symbol == "" {
		return fmt.Errorf("symbol cannot be empty")
	}
	if len(symbol) > 20 {
		return fmt.Errorf("symbol too long: %s", symbol)
	}
	if !validSymbol.MatchString(symbol) {
		return fmt.Errorf("invalid symbol format: %s", symbol)
	}
	return nil
}

// Yahoo implements the Yahoo Finance collector
type Yahoo struct {
	baseURL   string
	cookieURL string
	userAgent string
	client    *http.Client
	ownClient bool
	limiter   *rate.Limiter
	logger    *zap.Logger

	crumbMu sync.Mutex
	crumb   string
}

// Option configures the Yahoo collector.
type Option func(*Yahoo)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) Option {
	return func(y *Yahoo) {
		y.baseURL = strings.TrimSuffix(baseURL, "/")
	}
}

// WithCookieURL sets where the session cookie for the crumb handshake is
// fetched. An empty URL turns the handshake off.
func WithCookieURL(cookieURL string) Option {
	return func(y *Yahoo) {
		y.cookieURL = cookieURL
	}
}

// WithHTTPClient sets a custom HTTP client. Later options that change the
// client work on a copy, so the caller's client is never modified.
func WithHTTPClient(client *http.Client) Option {
	return func(y *Yahoo) {
		if client != nil {
			y.client = client
			y.ownClient = false
		}
	}
}

// WithTimeout sets the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(y *Yahoo) {
		if d > 0 {
			y.ownedClient().Timeout = d
		}
	}
}

// WithProxy routes requests through an HTTP proxy. Invalid URLs are ignored.
func WithProxy(proxyURL string) Option {
	return func(y *Yahoo) {
		if proxyURL == "" {
			return
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			y.logger.Warn("ignoring invalid proxy url", zap.String("proxy", proxyURL), zap.Error(err))
			return
		}
		y.ownedClient().Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}
}

// WithRateLimit sets requests per second. Zero or negative disables pacing.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(y *Yahoo) {
		if requestsPerSecond <= 0 {
			y.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		y.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(y *Yahoo) {
		if ua != "" {
			y.userAgent = ua
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger *zap.Logger) Option {
	return func(y *Yahoo) {
		if logger != nil {
			y.logger = logger
		}
	}
}

// New creates a new Yahoo collector
func New(opts ...Option) *Yahoo {
	y := &Yahoo{
		baseURL:   DefaultBaseURL,
		cookieURL: DefaultCookieURL,
		userAgent: defaultUserAgent,
		client: &http.Client{
			Timeout: DefaultTimeout,
		},
		ownClient: true,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		logger:    zap.NewNop(),
	}

	for _, opt := range opts {
		opt(y)
	}

	// the crumb is only accepted alongside the cookie it was issued with
	if y.cookieURL != "" && y.client.Jar == nil {
		if jar, err := cookiejar.New(nil); err == nil {
			y.ownedClient().Jar = jar
		}
	}

	return y
}

// ownedClient returns a client that is safe to modify, copying a
// caller-supplied one first.
func (y *Yahoo) ownedClient() *http.Client {
	if !y.ownClient {
		c := *y.client
		y.client = &c
		y.ownClient = true
	}
	return y.client
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// toYahooSymbol converts internal symbol format to Yahoo format
func (y *Yahoo) toYahooSymbol(symbol string) string {
	// Shanghai stocks: 600519.SH -> 600519.SS
	if strings.HasSuffix(symbol, ".SH") {
		return strings.TrimSuffix(symbol, ".SH") + ".SS"
	}
	return symbol
}

// FetchHistory fetches the daily close series for a trailing period
func (y *Yahoo) FetchHistory(ctx context.Context, ticker core.Ticker, period, interval string) (core.PriceSeries, error) {
	series := core.PriceSeries{Ticker: ticker, Interval: interval}

	if err := validateSymbol(ticker); err != nil {
		return series, err
	}
	if !collector.ValidPeriod(period) {
		return series, fmt.Errorf("unsupported period: %s", period)
	}
	if !collector.ValidInterval(interval) {
		return series, fmt.Errorf("unsupported interval: %s", interval)
	}

	params := url.Values{}
	params.Set("range", period)
	params.Set("interval", interval)
	params.Set("includePrePost", "false")

	var result chartResponse
	path := "/v8/finance/chart/" + url.PathEscape(y.toYahooSymbol(ticker))
	if err := y.get(ctx, path, params, &result); err != nil {
		return series, fmt.Errorf("fetching history: %w", err)
	}

	if result.Chart.Error != nil {
		return series, fmt.Errorf("yahoo error: %s", result.Chart.Error.Description)
	}

	if len(result.Chart.Result) == 0 {
		return series, nil
	}

	series.Points = collector.CleanSeries(extractCloses(result.Chart.Result[0]))
	y.logger.Debug("history fetched",
		zap.String("ticker", ticker),
		zap.Int("bars", len(result.Chart.Result[0].Timestamp)),
		zap.Int("points", len(series.Points)),
	)
	return series, nil
}

// extractCloses pairs timestamps with the first close column. Bars whose
// close is missing are dropped.
func extractCloses(r chartResult) []core.PricePoint {
	if len(r.Indicators.Quote) == 0 {
		return nil
	}
	closes := r.Indicators.Quote[0].Close

	points := make([]core.PricePoint, 0, len(r.Timestamp))
	for i, ts := range r.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue // Skip missing data
		}
		points = append(points, core.PricePoint{
			Time:  time.Unix(ts, 0).UTC(),
			Close: *closes[i],
		})
	}
	return points
}

// FetchFundamentals fetches market cap, volume, earnings growth and analyst
// coverage. Fields Yahoo omits stay zero.
func (y *Yahoo) FetchFundamentals(ctx context.Context, ticker core.Ticker) (core.Fundamentals, error) {
	var f core.Fundamentals

	if err := validateSymbol(ticker); err != nil {
		return f, err
	}

	params := url.Values{}
	params.Set("modules", fundamentalModules)

	crumb, err := y.sessionCrumb(ctx)
	if err != nil {
		y.logger.Debug("crumb handshake failed", zap.String("ticker", ticker), zap.Error(err))
	}
	if crumb != "" {
		params.Set("crumb", crumb)
	}

	var result quoteSummaryResponse
	path := "/v10/finance/quoteSummary/" + url.PathEscape(y.toYahooSymbol(ticker))
	if err := y.get(ctx, path, params, &result); err != nil {
		var se *statusError
		if crumb != "" && errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			y.resetCrumb(crumb)
		}
		return f, fmt.Errorf("fetching fundamentals: %w", err)
	}

	if result.QuoteSummary.Error != nil {
		return f, fmt.Errorf("yahoo error: %s", result.QuoteSummary.Error.Description)
	}
	if len(result.QuoteSummary.Result) == 0 {
		return f, fmt.Errorf("no fundamentals for symbol: %s", ticker)
	}

	r := result.QuoteSummary.Result[0]
	f.MarketCap = r.Price.MarketCap.value()
	if f.MarketCap == 0 {
		f.MarketCap = r.SummaryDetail.MarketCap.value()
	}
	f.AverageVolume = r.SummaryDetail.AverageVolume.value()
	f.EarningsQuarterlyGrowth = r.DefaultKeyStatistics.EarningsQuarterlyGrowth.value()
	f.AnalystCount = int(r.FinancialData.NumberOfAnalystOpinions.value())

	return f, nil
}

// sessionCrumb returns the cached crumb, running the cookie and crumb
// handshake on first use. An empty crumb with a nil error means the
// handshake is turned off.
func (y *Yahoo) sessionCrumb(ctx context.Context) (string, error) {
	if y.cookieURL == "" {
		return "", nil
	}

	y.crumbMu.Lock()
	defer y.crumbMu.Unlock()
	if y.crumb != "" {
		return y.crumb, nil
	}

	// the cookie host answers 404 but still sets the session cookie
	if _, _, err := y.fetchRaw(ctx, y.cookieURL); err != nil {
		return "", fmt.Errorf("fetching session cookie: %w", err)
	}

	code, body, err := y.fetchRaw(ctx, y.baseURL+crumbPath)
	if err != nil {
		return "", fmt.Errorf("fetching crumb: %w", err)
	}
	crumb := strings.TrimSpace(string(body))
	if code != http.StatusOK {
		return "", &statusError{Code: code, Body: crumb}
	}
	if crumb == "" || strings.ContainsAny(crumb, "<{ ") {
		return "", fmt.Errorf("unexpected crumb body: %.40q", crumb)
	}

	y.crumb = crumb
	y.logger.Debug("crumb acquired")
	return crumb, nil
}

// resetCrumb drops a crumb the server rejected so the next call shakes
// hands again.
func (y *Yahoo) resetCrumb(rejected string) {
	y.crumbMu.Lock()
	defer y.crumbMu.Unlock()
	if y.crumb == rejected {
		y.crumb = ""
	}
}

// fetchRaw performs a paced GET and returns the status with a bounded body.
func (y *Yahoo) fetchRaw(ctx context.Context, rawURL string) (int, []byte, error) {
	if err := y.limiter.Wait(ctx); err != nil {
		return 0, nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", y.userAgent)

	resp, err := y.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1024))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("reading body: %w", err)
	}
	return resp.StatusCode, body, nil
}

// statusError is a non-200 answer from Yahoo.
type statusError struct {
	Code int
	Body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status: %d: %s", e.Code, e.Body)
}

// get performs a paced GET request and decodes the JSON body.
func (y *Yahoo) get(ctx context.Context, path string, params url.Values, out any) error {
	if err := y.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := fmt.Sprintf("%s%s?%s", y.baseURL, path, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", y.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := y.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Yahoo reports unknown symbols as 404 with a JSON error body
		if resp.StatusCode == http.StatusNotFound {
			return core.WrapError(core.ErrNoData, fmt.Errorf("status 404 for %s", path))
		}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &statusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Yahoo API response types
type apiError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *apiError     `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta       chartMeta  `json:"meta"`
	Timestamp  []int64    `json:"timestamp"`
	Indicators indicators `json:"indicators"`
}

type chartMeta struct {
	Symbol             string  `json:"symbol"`
	Currency           string  `json:"currency"`
	RegularMarketPrice float64 `json:"regularMarketPrice"`
}

type indicators struct {
	Quote []quoteIndicator `json:"quote"`
}

type quoteIndicator struct {
	Close []*float64 `json:"close"`
}

type quoteSummaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummaryResult `json:"result"`
		Error  *apiError            `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummaryResult struct {
	Price struct {
		MarketCap rawValue `json:"marketCap"`
	} `json:"price"`
	SummaryDetail struct {
		MarketCap     rawValue `json:"marketCap"`
		AverageVolume rawValue `json:"averageVolume"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		EarningsQuarterlyGrowth rawValue `json:"earningsQuarterlyGrowth"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		NumberOfAnalystOpinions rawValue `json:"numberOfAnalystOpinions"`
	} `json:"financialData"`
}

// rawValue is Yahoo's {"raw": 123, "fmt": "123"} wrapper. Missing
// fields decode as an empty object or are absent entirely.
type rawValue struct {
	Raw *float64 `json:"raw"`
}

func (v rawValue) value() float64 {
	if v.Raw == nil {
		return 0
	}
	return *v.Raw
}
