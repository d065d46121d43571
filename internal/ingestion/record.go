package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"time"

	"weblynx/internal/analysis"
	"weblynx/internal/database/models"
	"weblynx/internal/parser/urlparser"
)

// NewRecord converts an analysis into its stored form. Timestamps are stored in UTC.
func NewRecord(a *analysis.Analysis) *models.RequestRecord {
	timestamp := a.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	record := &models.RequestRecord{
		SourceName: a.SourceName,
		Timestamp:  timestamp.UTC(),
		ClientIP:   a.ClientIP,
		Method:     a.Method,
		StatusCode: a.StatusCode,
		UserAgent:  a.UserAgent,
		RequestURL: a.RequestURL,
		Referer:    a.Referer,

		UAFamily:       a.Summary.Family,
		Browser:        a.Summary.Browser,
		BrowserVersion: a.Summary.BrowserVersion,
		OS:             a.Summary.OS,
		Device:         a.Summary.Device,
		IsBot:          a.Summary.IsBot,
		BotName:        a.Summary.BotName,
	}

	if a.Agent != nil {
		record.UAComponents = encodeComponents(a.Agent.FlatComponents())
	}

	if a.Request != nil && !a.Request.IsEmpty() {
		applyRequestURL(record, a.Request)
		record.URLComponents = encodeComponents(a.Request.FlatComponents())
	}

	if a.RefererPage != nil && !a.RefererPage.IsEmpty() {
		if a.RefererPage.Domain != nil {
			record.RefererDomain = a.RefererPage.Domain.Host()
		}
		record.RefererComponents = encodeComponents(a.RefererPage.FlatComponents())
	}

	record.RequestHash = requestHash(record)
	return record
}

func applyRequestURL(record *models.RequestRecord, u *urlparser.Result) {
	if u.Domain != nil {
		record.Domain = u.Domain.Host()
	}
	if u.Protocol != nil {
		record.Protocol = *u.Protocol
	}
	if u.Port != nil {
		record.Port = *u.Port
	}
	if u.Subdirectories != nil && u.Subdirectories.Language != nil {
		record.Language = *u.Subdirectories.Language
	}
	record.TargetType = u.TargetType
}

// encodeComponents renders a flattened projection as a JSON object. Keys are
// emitted sorted, so equal projections encode identically.
func encodeComponents(flat map[string]any) string {
	data, err := json.Marshal(flat)
	if err != nil {
		return ""
	}
	return string(data)
}

// requestHash identifies a request across re-reads of the same log lines.
func requestHash(r *models.RequestRecord) string {
	h := sha256.New()
	for _, part := range []string{
		r.SourceName,
		r.Timestamp.Format(time.RFC3339Nano),
		r.ClientIP,
		r.Method,
		r.RequestURL,
		r.UserAgent,
		strconv.Itoa(r.StatusCode),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
