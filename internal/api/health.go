package api

import (
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// handleHealth reports process-level liveness stats. Metric failures are
// not errors; the endpoint reports what it can read.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":              "ok",
		"uptimeSeconds":       int64(time.Since(s.started).Seconds()),
		"goroutines":          runtime.NumGoroutine(),
		"connectedDashboards": s.hub.ClientCount(),
		"storedEvents":        s.log.Len(),
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil {
			resp["rssBytes"] = mem.RSS
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			resp["cpuPercent"] = cpu
		}
	}

	respondJSON(w, http.StatusOK, resp)
}
