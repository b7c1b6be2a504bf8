package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pterm/pterm"
	"github.com/tosih/enginelog/pkg/config"
	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/presets"
	"github.com/tosih/enginelog/pkg/reader"
	"github.com/tosih/enginelog/pkg/workspace"
)

//go:embed templates/*
var templates embed.FS

// Server is the browser front end: a file picker, the parameter list and
// the plot tabs, all backed by one live dataset
type Server struct {
	cfg        config.Config
	logDir     string
	logFiles   []string
	router     *mux.Router
	httpServer *http.Server
	store      *presets.Store
	workspace  *workspace.Workspace

	mu      sync.RWMutex
	dataset *models.LogDataset
}

// NewServer scans cfg.LogPath for logs. If LogPath names a file it is
// loaded straight away. store may be nil, which disables presets.
func NewServer(cfg config.Config, store *presets.Store) *Server {
	// If LogPath is a directory, list it
	// If it's a file, list its directory and load it
	logDir := cfg.LogPath
	var initial string
	fileInfo, err := os.Stat(cfg.LogPath)
	if err == nil && !fileInfo.IsDir() {
		logDir = filepath.Dir(cfg.LogPath)
		initial = cfg.LogPath
	}
	if logDir == "" {
		logDir = "."
	}

	logFiles, err := findLogFiles(logDir)
	if err != nil {
		pterm.Warning.Printf("Error scanning for log files: %v\n", err)
		logFiles = []string{}
		if initial != "" {
			logFiles = append(logFiles, initial)
		}
	}

	if len(logFiles) == 0 {
		pterm.Warning.Println("No .csv files found in directory")
	} else {
		pterm.Info.Printf("Found %d log file(s) in %s\n", len(logFiles), logDir)
	}

	s := &Server{
		cfg:       cfg,
		logDir:    logDir,
		logFiles:  logFiles,
		router:    mux.NewRouter(),
		store:     store,
		workspace: workspace.New(),
	}

	if initial != "" {
		if _, err := s.load(initial); err != nil {
			pterm.Warning.Printf("Could not load %s: %v\n", initial, err)
		}
	}

	s.setupRoutes()
	return s
}

func findLogFiles(dir string) ([]string, error) {
	var logFiles []string

	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	for _, file := range files {
		if !file.IsDir() && strings.HasSuffix(strings.ToLower(file.Name()), ".csv") {
			logFiles = append(logFiles, filepath.Join(dir, file.Name()))
		}
	}
	sort.Strings(logFiles)

	return logFiles, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	r := s.router

	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.HandleFunc("/", s.handleIndex).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/files", s.handleFileList).Methods("GET")
	api.HandleFunc("/load", s.handleLoad).Methods("POST")
	api.HandleFunc("/dataset", s.handleDataset).Methods("GET")
	api.HandleFunc("/categories", s.handleCategories).Methods("GET")
	api.HandleFunc("/parameters", s.handleParameters).Methods("GET")

	api.HandleFunc("/tabs", s.handleListTabs).Methods("GET")
	api.HandleFunc("/tabs", s.handleAddTab).Methods("POST")
	api.HandleFunc("/tabs/{id}", s.handleCloseTab).Methods("DELETE")
	api.HandleFunc("/tabs/{id}/plot", s.handlePlot).Methods("POST")
	api.HandleFunc("/tabs/{id}/xy", s.handleXY).Methods("POST")
	api.HandleFunc("/tabs/{id}/clear", s.handleClearTab).Methods("POST")

	api.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	api.HandleFunc("/presets", s.handleSavePreset).Methods("POST")
	api.HandleFunc("/presets/{name}", s.handleDeletePreset).Methods("DELETE")

	// png first: {id} would otherwise swallow the extension
	r.HandleFunc("/plot/{id}.png", s.handlePlotPNG).Methods("GET")
	r.HandleFunc("/plot/{id}", s.handlePlotHTML).Methods("GET")
}

// Start listens until Stop is called
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)

	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgCyan)).
		WithTextStyle(pterm.NewStyle(pterm.FgBlack)).
		Println("Engine Log Viewer Started")

	pterm.Info.Printf("Serving %s at %s\n", s.logDir, s.URL())
	pterm.Info.Println("Press Ctrl+C to stop the server")
	pterm.Println()

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop shuts the server down, waiting for in-flight requests
func (s *Server) Stop(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// URL is the address the viewer is reachable at
func (s *Server) URL() string {
	return fmt.Sprintf("http://localhost:%d", s.cfg.Port)
}

// load parses path and makes it the live dataset
func (s *Server) load(path string) (*models.LogDataset, error) {
	ds, err := reader.Parse(path)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.dataset = ds
	s.mu.Unlock()

	pterm.Debug.Printf("Loaded %s: %d rows, %d columns\n", path, ds.Len(), len(ds.Columns()))
	return ds, nil
}

func (s *Server) current() *models.LogDataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// resolveLogFile maps a name or path from the client onto a scanned file
func (s *Server) resolveLogFile(name string) (string, bool) {
	for _, f := range s.logFiles {
		if f == name || filepath.Base(f) == name {
			return f, true
		}
	}
	return "", false
}
