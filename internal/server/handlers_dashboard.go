package server

import (
	"net/http"

	"github.com/jonathan/jdstudio/internal/dashboard"
)

// DashboardResponse represents the response for /admin/dashboard
type DashboardResponse struct {
	*dashboard.Snapshot
	SelectionRatio float64 `json:"selection_ratio"`
	Growth         []int   `json:"growth"`
	ActiveReveals  int     `json:"active_reveals"`
}

// handleDashboard returns the admin overview figures
func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	active, err := s.activeReveals()
	if err != nil {
		s.failure(w, err)
		return
	}

	snap := dashboard.Default()
	s.jsonResponse(w, http.StatusOK, DashboardResponse{
		Snapshot:       snap,
		SelectionRatio: snap.SelectionRatio(),
		Growth:         snap.GrowthSeries(),
		ActiveReveals:  active,
	})
}
