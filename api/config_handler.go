package api

import (
	"net/http"

	"github.com/seenimoa/ineqstat/internal/config"
)

// ConfigResponse is the JSON envelope returned by GET /api/v1/config.
type ConfigResponse struct {
	Report  config.ReportConfig  `json:"report"`
	API     config.APIConfig     `json:"api"`
	Logging config.LoggingConfig `json:"logging"`
}

// handleGetConfig returns the running configuration. It is read-only:
// the study inputs are compiled in and nothing here is persisted.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	if s.cfg == nil {
		writeError(w, http.StatusServiceUnavailable, "no configuration loaded")
		return
	}
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: ConfigResponse{
			Report:  s.cfg.Report,
			API:     s.cfg.API,
			Logging: s.cfg.Logging,
		},
	})
}
