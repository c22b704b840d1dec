package startup

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"strings"
	"time"

	"photo-gallery/internal/logging"
	"photo-gallery/internal/memory"

	"github.com/gorilla/mux"
)

// Build-time variables (injected via -ldflags)
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// BuildInfo contains version and build information
type BuildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"buildTime"`
	GoVersion string `json:"goVersion"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
}

// GetBuildInfo returns the current build information
func GetBuildInfo() BuildInfo {
	return BuildInfo{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: GoVersion,
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
	}
}

// RouteInfo contains information about a registered route
type RouteInfo struct {
	Method string
	Path   string
	Name   string
}

const rule = "------------------------------------------------------------"

// section starts a titled block of startup output.
func section(title string) {
	logging.Info("")
	logging.Info(rule)
	logging.Info("%s", title)
	logging.Info(rule)
}

// LogMemoryConfig logs the memory ceiling and the share of it that a single
// decode may use.
func LogMemoryConfig(result memory.ConfigResult, budget memory.Budget, monitor memory.MonitorConfig) {
	section("MEMORY")
	if result.Configured {
		logging.Info("  GOMEMLIMIT:      %s (source: %s)", memory.FormatBytes(result.GoMemLimit), result.Source)
	} else {
		logging.Info("  GOMEMLIMIT:      not set")
	}
	logging.Info("  Ceiling:         %s", memory.FormatBytes(budget.Ceiling()))
	logging.Info("  Decode budget:   %s (%.0f%% of ceiling)", memory.FormatBytes(budget.Limit()), memory.BudgetFraction*100)
	if budget.Ceiling() > 0 {
		logging.Info("  Heap watermarks: refuse at %.0f%%, resume below %.0f%%",
			monitor.CriticalWaterMark*100, monitor.HighWaterMark*100)
	}
}

// LogThumbnailInit logs the registered resize backends in priority order.
func LogThumbnailInit(backends []string, vipsErr error, writable bool) {
	section("THUMBNAIL GENERATOR")
	if vipsErr != nil {
		logging.Warn("  libvips unavailable: %v", vipsErr)
		logging.Warn("  HEIC, HEIF and AVIF sources cannot be thumbnailed")
	}
	for i, name := range backends {
		logging.Info("  %d. %s", i+1, name)
	}
	if !writable {
		logging.Warn("  Thumbnail directory not writable, placeholders will be served")
	}
}

// GetRoutes lists every method/path pair registered on router, sorted by
// path then method. Routes without a method restriction are reported as "*".
func GetRoutes(router *mux.Router) ([]RouteInfo, error) {
	var routes []RouteInfo

	err := router.Walk(func(route *mux.Route, _ *mux.Router, _ []*mux.Route) error {
		tmpl, err := route.GetPathTemplate()
		if err != nil {
			// Subrouter prefixes without a handler of their own
			return nil
		}
		if route.GetHandler() == nil {
			return nil
		}

		methods, err := route.GetMethods()
		if err != nil {
			methods = []string{"*"}
		}
		for _, method := range methods {
			routes = append(routes, RouteInfo{Method: method, Path: tmpl, Name: route.GetName()})
		}
		return nil
	})

	sort.SliceStable(routes, func(i, j int) bool {
		if routes[i].Path != routes[j].Path {
			return routes[i].Path < routes[j].Path
		}
		return routes[i].Method < routes[j].Method
	})
	return routes, err
}

// groupRoutes buckets routes by getRouteGroup and returns the sorted group
// names alongside.
func groupRoutes(routes []RouteInfo) (map[string][]RouteInfo, []string) {
	groups := make(map[string][]RouteInfo)
	for _, route := range routes {
		group := getRouteGroup(route.Path)
		if group == "" {
			group = "root"
		}
		groups[group] = append(groups[group], route)
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return groups, names
}

// LogHTTPRoutes logs the access-log settings and, at debug level, every
// registered route grouped by prefix.
func LogHTTPRoutes(router *mux.Router, logStaticFiles, logHealthChecks bool) {
	section("HTTP SERVER SETUP")

	if logging.IsDebugEnabled() {
		routes, err := GetRoutes(router)
		if err != nil {
			logging.Warn("error walking routes: %v", err)
		}
		logging.Debug("  Registered routes (%d total):", len(routes))

		groups, names := groupRoutes(routes)
		for _, name := range names {
			logging.Debug("  [%s]", name)
			for _, route := range groups[name] {
				logging.Debug("    %-6s %s", route.Method, route.Path)
			}
		}
	}

	logging.Info("  Access log:      W3C extended format")
	logging.Info("    Static files:  %s", onOff(logStaticFiles, "LOG_STATIC_FILES=true"))
	logging.Info("    Health checks: %s", onOff(logHealthChecks, "LOG_HEALTH_CHECKS=true"))
}

func onOff(enabled bool, hint string) string {
	if enabled {
		return "ON"
	}
	return "OFF (set " + hint + " to enable)"
}

// getRouteGroup returns the first path segment, or "api/<name>" for API
// routes.
func getRouteGroup(path string) string {
	first, rest, _ := strings.Cut(strings.TrimPrefix(path, "/"), "/")
	if first == "api" && rest != "" {
		name, _, _ := strings.Cut(rest, "/")
		return "api/" + name
	}
	return first
}

// ServerConfig holds configuration for the server startup log
type ServerConfig struct {
	Port            string
	MetricsPort     string
	MetricsEnabled  bool
	StartupDuration time.Duration
}

// LogServerStarted logs the listening addresses.
func LogServerStarted(config ServerConfig) {
	section("SERVER STARTED")
	logging.Info("  Startup time:    %v", config.StartupDuration)
	logging.Info("  Application:     http://0.0.0.0:%s", config.Port)
	if config.MetricsEnabled {
		logging.Info("  Metrics:         http://0.0.0.0:%s/metrics", config.MetricsPort)
	} else {
		logging.Info("  Metrics:         DISABLED")
	}
	logging.Info("  Press Ctrl+C to stop the server")
	logging.Info(rule)
}

// LogShutdownInitiated logs shutdown start
func LogShutdownInitiated(signal string) {
	section(fmt.Sprintf("SHUTDOWN INITIATED (received %s)", signal))
}

// LogShutdownStep logs a shutdown step
func LogShutdownStep(step string) {
	logging.Debug("  %s...", step)
}

// LogShutdownStepComplete logs a completed shutdown step
func LogShutdownStepComplete(step string) {
	logging.Info("  [OK] %s", step)
}

// LogShutdownComplete logs shutdown completion
func LogShutdownComplete() {
	logging.Info("  [OK] Shutdown complete")
}

// LogFatal logs a fatal error and exits
func LogFatal(format string, args ...interface{}) {
	logging.Fatal(format, args...)
}

func printBanner() {
	banner := `
------------------------------------------------------------
    ____  __          __           ______      ____
   / __ \/ /_  ____  / /_____     / ____/___ _/ / /__  _______  __
  / /_/ / __ \/ __ \/ __/ __ \   / / __/ __ '/ / / _ \/ ___/ / / /
 / ____/ / / / /_/ / /_/ /_/ /  / /_/ / /_/ / / /  __/ /  / /_/ /
/_/   /_/ /_/\____/\__/\____/   \____/\__,_/_/_/\___/_/   \__, /
                                                         /____/
------------------------------------------------------------`
	fmt.Println(banner)
	logging.Info("  Version:    %s", Version)
	logging.Info("  Commit:     %s", Commit)
	logging.Info("  Build Time: %s", BuildTime)
	logging.Info("  Started:    %s", time.Now().Format(time.RFC1123))
	logging.Info("")
}

func logSystemInfo() {
	section("SYSTEM INFORMATION")
	logging.Info("  Go version:      %s", runtime.Version())
	logging.Info("  OS/Arch:         %s/%s", runtime.GOOS, runtime.GOARCH)
	logging.Info("  CPUs available:  %d", runtime.NumCPU())
	logging.Info("  GOMAXPROCS:      %d", runtime.GOMAXPROCS(0))

	if runtime.GOMAXPROCS(0) < runtime.NumCPU() {
		logging.Info("  (Container CPU limit detected)")
	}

	if logging.IsDebugEnabled() {
		logging.Debug("  Goroutines:      %d", runtime.NumGoroutine())

		if wd, err := os.Getwd(); err == nil {
			logging.Debug("  Working dir:     %s", wd)
		}

		if hostname, err := os.Hostname(); err == nil {
			logging.Debug("  Hostname:        %s", hostname)
		}
	}
}

func ensureDirectory(path, name string) error {
	logging.Debug("  Checking %s directory: %s", name, path)

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logging.Debug("    Directory does not exist, creating...")
		if err := os.MkdirAll(path, 0o755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
		logging.Debug("    [OK] Created directory: %s", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s exists but is not a directory", path)
	}

	if logging.IsDebugEnabled() {
		logging.Debug("    [OK] Directory exists (%d categories)", countCategories(path))
	}
	return nil
}

// countCategories counts the visible subdirectories of a gallery root.
func countCategories(root string) int {
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0
	}
	n := 0
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			n++
		}
	}
	return n
}
