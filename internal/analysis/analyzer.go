package analysis

import (
	"fmt"
	"strings"
	"time"

	"weblynx/internal/locale"
	parsers "weblynx/internal/parser"
	"weblynx/internal/parser/urlparser"
	"weblynx/internal/parser/useragent"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/pterm/pterm"
)

// Analysis is the decomposition of one access-log event.
type Analysis struct {
	SourceName string
	Timestamp  time.Time
	ClientIP   string
	Method     string
	StatusCode int

	UserAgent string
	// nil when the User-Agent was not recognized
	Agent   *useragent.Result
	Summary useragent.Summary

	RequestURL string
	Request    *urlparser.Result

	Referer     string
	RefererPage *urlparser.Result
}

// Analyzer runs the User-Agent classifier and the URL decomposer over
// access events. User-Agent decompositions are memoized since a handful of
// clients produce most of the traffic.
type Analyzer struct {
	classifier *useragent.Classifier
	urls       *urlparser.Parser
	cache      *ristretto.Cache[string, *useragent.Result]
	logger     *pterm.Logger
}

// NewAnalyzer creates an analyzer. cacheSize is the number of User-Agent
// results kept; 0 disables caching.
func NewAnalyzer(lookup locale.Lookup, cacheSize int64, logger *pterm.Logger) (*Analyzer, error) {
	urls := urlparser.NewParser(lookup, logger)
	a := &Analyzer{
		classifier: useragent.NewClassifier(urls.ParseLink, logger),
		urls:       urls,
		logger:     logger,
	}

	if cacheSize > 0 {
		cache, err := ristretto.NewCache(&ristretto.Config[string, *useragent.Result]{
			NumCounters: cacheSize * 10,
			MaxCost:     cacheSize,
			BufferItems: 64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create user agent cache: %w", err)
		}
		a.cache = cache
	}

	logger.Debug("Analyzer ready", logger.Args("ua_cache_size", cacheSize))
	return a, nil
}

// Close releases the cache.
func (a *Analyzer) Close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// UserAgent validates and classifies a single User-Agent string.
func (a *Analyzer) UserAgent(value string) (*useragent.Result, error) {
	if err := validate(value, useragent.MaxInputLength); err != nil {
		return nil, err
	}

	result := a.classify(value)
	if result == nil {
		return nil, ErrUnrecognized
	}
	return result, nil
}

// URL validates and decomposes a single URL. An unrecognized URL yields an
// empty result, not an error.
func (a *Analyzer) URL(value string) (*urlparser.Result, error) {
	if err := validate(value, urlparser.MaxInputLength); err != nil {
		return nil, err
	}
	return a.urls.Parse(value), nil
}

// Analyze decomposes every field of an access event. Oversized fields are
// truncated by the decomposers rather than rejected.
func (a *Analyzer) Analyze(event parsers.Event) *Analysis {
	result := &Analysis{
		SourceName: event.GetSourceName(),
		Timestamp:  event.GetTimestamp(),
		ClientIP:   event.GetClientIP(),
		Method:     event.GetMethod(),
		StatusCode: event.GetStatusCode(),
		UserAgent:  event.GetUserAgent(),
		RequestURL: event.GetRequestURL(),
		Referer:    event.GetReferer(),
	}

	if strings.TrimSpace(result.UserAgent) != "" {
		result.Agent = a.classify(result.UserAgent)
	}
	result.Summary = useragent.Summarize(result.Agent)

	if result.RequestURL != "" {
		result.Request = a.urls.Parse(result.RequestURL)
	}
	if result.Referer != "" && result.Referer != "-" {
		result.RefererPage = a.urls.Parse(result.Referer)
	}

	return result
}

func (a *Analyzer) classify(value string) *useragent.Result {
	if a.cache == nil {
		return a.classifier.Parse(value)
	}

	if cached, ok := a.cache.Get(value); ok {
		return cached
	}

	result := a.classifier.Parse(value)
	a.cache.Set(value, result, 1)
	return result
}

func validate(value string, maxLen int) error {
	if strings.TrimSpace(value) == "" {
		return ErrEmptyInput
	}
	if len(value) > maxLen {
		return fmt.Errorf("%w: %d > %d bytes", ErrInputTooLong, len(value), maxLen)
	}
	return nil
}
