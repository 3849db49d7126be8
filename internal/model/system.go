package model

// VersionInfo contains version information for the application and its schema.
type VersionInfo struct {
	AppVersion string `json:"app_version"`
	DbVersion  string `json:"db_version"`
	// Features lists optional subsystems and whether they are enabled.
	Features map[string]bool `json:"features"`
}
