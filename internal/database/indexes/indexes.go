package indexes

import (
	"strings"

	"github.com/pterm/pterm"
	"gorm.io/gorm"
)

// Definition represents an index name and its creation SQL.
type Definition struct {
	Name string
	SQL  string
}

// expectedDefinitions is the single source of truth for performance indexes.
var expectedDefinitions = []Definition{
	// deduplication
	{Name: "idx_request_hash", SQL: `CREATE UNIQUE INDEX IF NOT EXISTS idx_request_hash ON request_records(request_hash)`},

	// listings
	{Name: "idx_time_source", SQL: `CREATE INDEX IF NOT EXISTS idx_time_source ON request_records(timestamp DESC, source_name)`},
	{Name: "idx_time_domain", SQL: `CREATE INDEX IF NOT EXISTS idx_time_domain ON request_records(timestamp DESC, domain)`},

	// aggregations
	{Name: "idx_family_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_family_agg ON request_records(ua_family, timestamp)`},
	{Name: "idx_bot_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_bot_agg ON request_records(bot_name, timestamp) WHERE is_bot`},
	{Name: "idx_browser_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_browser_agg ON request_records(browser, timestamp) WHERE browser != ''`},
	{Name: "idx_os_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_os_agg ON request_records(os, timestamp) WHERE os != ''`},
	{Name: "idx_target_type_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_target_type_agg ON request_records(target_type, timestamp)`},
	{Name: "idx_language_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_language_agg ON request_records(language, timestamp) WHERE language != ''`},
	{Name: "idx_referer_domain_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_referer_domain_agg ON request_records(referer_domain, timestamp) WHERE referer_domain != ''`},
	{Name: "idx_geo_agg", SQL: `CREATE INDEX IF NOT EXISTS idx_geo_agg ON request_records(geo_country, timestamp) WHERE geo_country != ''`},

	// retention
	{Name: "idx_cleanup", SQL: `CREATE INDEX IF NOT EXISTS idx_cleanup ON request_records(timestamp)`},
}

// legacyIndexes are index names from earlier schemas, dropped when reconciling.
var legacyIndexes = []string{
	"idx_timestamp",
	"idx_source_name",
	"idx_ua_family",
	"idx_is_bot",
}

// Ensure reconciles expected indexes against SQLite, dropping obsolete ones and creating missing ones.
func Ensure(db *gorm.DB, logger *pterm.Logger) (created int, dropped int, err error) {
	existingIndexes, err := fetchExistingIndexes(db)
	if err != nil {
		return 0, 0, err
	}

	existingSet := make(map[string]struct{}, len(existingIndexes))
	for _, name := range existingIndexes {
		existingSet[name] = struct{}{}
	}

	expectedSet := make(map[string]Definition, len(expectedDefinitions))
	for _, def := range expectedDefinitions {
		expectedSet[def.Name] = def
	}

	var unexpected []string
	for name := range existingSet {
		if _, ok := expectedSet[name]; !ok {
			unexpected = append(unexpected, name)
		}
	}

	var missing []Definition
	for _, def := range expectedDefinitions {
		if _, ok := existingSet[def.Name]; !ok {
			missing = append(missing, def)
		}
	}

	hasMismatch := len(unexpected) > 0 || len(missing) > 0
	if hasMismatch {
		namesToDrop := uniqueNames(append(legacyIndexes, unexpected...))
		for _, name := range namesToDrop {
			if err := db.Exec("DROP INDEX IF EXISTS " + name).Error; err != nil {
				logger.Warn("Failed to drop index", logger.Args("index", name, "error", err))
				continue
			}
			dropped++
		}
	}

	for _, def := range expectedDefinitions {
		if err := db.Exec(def.SQL).Error; err != nil {
			logger.Warn("Failed to create index", logger.Args("index", def.Name, "error", err))
			return created, dropped, err
		}
		if _, ok := existingSet[def.Name]; !ok {
			created++
		}
	}

	return created, dropped, nil
}

func fetchExistingIndexes(db *gorm.DB) ([]string, error) {
	var names []string
	rows, err := db.Raw(`SELECT name FROM sqlite_master WHERE type='index' AND tbl_name='request_records' AND name NOT LIKE 'sqlite_%'`).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		name = strings.TrimSpace(name)
		if name != "" {
			names = append(names, name)
		}
	}
	return names, nil
}

func uniqueNames(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	result := make([]string, 0, len(names))
	for _, name := range names {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	return result
}
