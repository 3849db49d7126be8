package service

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ndewijer/portfolio-tracker/internal/database"
	"github.com/ndewijer/portfolio-tracker/internal/model"
	"github.com/ndewijer/portfolio-tracker/internal/version"
)

// SystemService handles system-related operations
type SystemService struct {
	db             *sql.DB
	refreshEnabled bool
}

// NewSystemService creates a new SystemService
func NewSystemService(db *sql.DB, refreshEnabled bool) *SystemService {
	return &SystemService{
		db:             db,
		refreshEnabled: refreshEnabled,
	}
}

// CheckHealth checks the health of the system
func (s *SystemService) CheckHealth() error {
	return database.HealthCheck(s.db)
}

// CheckVersion reports the build version, the applied schema version and which
// optional features are switched on.
func (s *SystemService) CheckVersion() (model.VersionInfo, error) {
	dbVersion, err := database.SchemaVersion(s.db)
	if err != nil {
		return model.VersionInfo{}, fmt.Errorf("failed to read schema version: %w", err)
	}

	return model.VersionInfo{
		AppVersion: version.Version,
		DbVersion:  strconv.FormatInt(dbVersion, 10),
		Features: map[string]bool{
			"scheduled_refresh": s.refreshEnabled,
		},
	}, nil
}
