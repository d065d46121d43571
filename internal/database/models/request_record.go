// MIT License
//
// Copyright (c) 2026 Kolin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.
//
package models

import (
	"time"
)

// RequestRecord is one analyzed access-log request. Headline fields are
// stored as columns for filtering and aggregation; the complete flattened
// decompositions are kept as JSON documents.
type RequestRecord struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	SourceName  string    `gorm:"not null"`
	Timestamp   time.Time `gorm:"not null"`
	RequestHash string    `gorm:"uniqueIndex:idx_request_hash;size:64"` // SHA256 hash for deduplication

	// Request
	ClientIP   string `gorm:"not null"`
	Method     string
	StatusCode int
	UserAgent  string
	RequestURL string
	Referer    string

	// User-Agent decomposition
	UAFamily       string
	Browser        string
	BrowserVersion string
	OS             string
	Device         string
	IsBot          bool
	BotName        string

	// Request URL decomposition
	Domain     string
	Protocol   string
	Port       int
	TargetType string
	Language   string

	RefererDomain string

	// GeoIP enrichment
	GeoCountry string
	GeoCity    string
	ASN        int
	ASNOrg     string

	// Flattened projections, JSON objects keyed by dotted paths
	UAComponents      string `gorm:"type:text"`
	URLComponents     string `gorm:"type:text"`
	RefererComponents string `gorm:"type:text"`

	CreatedAt time.Time `gorm:"autoCreateTime"`

	// Foreign key
	LogSource LogSource `gorm:"foreignKey:SourceName;references:Name" json:"-"`
}

func (RequestRecord) TableName() string {
	return "request_records"
}
