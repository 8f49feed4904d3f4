package handlers

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync"

	"github.com/fulmenhq/gofulmen/crucible"
)

// BuildInfo is injected from main at start-up.
type BuildInfo struct {
	Name      string
	Version   string
	Commit    string
	BuildDate string
}

var (
	buildMu   sync.RWMutex
	buildInfo = BuildInfo{Name: "promptdeck", Version: "dev", Commit: "unknown", BuildDate: "unknown"}
)

// SetBuildInfo replaces the reported build metadata. Empty fields keep
// their previous value.
func SetBuildInfo(info BuildInfo) {
	buildMu.Lock()
	defer buildMu.Unlock()
	if info.Name != "" {
		buildInfo.Name = info.Name
	}
	if info.Version != "" {
		buildInfo.Version = info.Version
	}
	if info.Commit != "" {
		buildInfo.Commit = info.Commit
	}
	if info.BuildDate != "" {
		buildInfo.BuildDate = info.BuildDate
	}
}

// CurrentBuildInfo returns the reported build metadata.
func CurrentBuildInfo() BuildInfo {
	buildMu.RLock()
	defer buildMu.RUnlock()
	return buildInfo
}

// VersionResponse represents the version information response
type VersionResponse struct {
	App          AppInfo     `json:"app"`
	Dependencies DepInfo     `json:"dependencies"`
	Runtime      RuntimeInfo `json:"runtime"`
}

// AppInfo contains application version details
type AppInfo struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	Commit    string `json:"git_commit"`
	BuildDate string `json:"build_date"`
	GoVersion string `json:"go_version"`
}

// DepInfo contains dependency version information
type DepInfo struct {
	Gofulmen string `json:"gofulmen"`
	Crucible string `json:"crucible"`
}

// RuntimeInfo contains runtime environment information
type RuntimeInfo struct {
	Platform      string `json:"platform"`
	NumCPU        int    `json:"num_cpu"`
	NumGoroutines int    `json:"num_goroutines"`
}

// VersionHandler handles version information requests
func VersionHandler(w http.ResponseWriter, _ *http.Request) {
	info := CurrentBuildInfo()
	deps := crucible.GetVersion()

	response := VersionResponse{
		App: AppInfo{
			Name:      info.Name,
			Version:   info.Version,
			Commit:    info.Commit,
			BuildDate: info.BuildDate,
			GoVersion: runtime.Version(),
		},
		Dependencies: DepInfo{Gofulmen: deps.Gofulmen, Crucible: deps.Crucible},
		Runtime: RuntimeInfo{
			Platform:      runtime.GOOS + "/" + runtime.GOARCH,
			NumCPU:        runtime.NumCPU(),
			NumGoroutines: runtime.NumGoroutine(),
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}
