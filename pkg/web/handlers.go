package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/pterm/pterm"
	"github.com/tosih/enginelog/pkg/chart"
	"github.com/tosih/enginelog/pkg/export"
	"github.com/tosih/enginelog/pkg/models"
	"github.com/tosih/enginelog/pkg/plotspec"
	"github.com/tosih/enginelog/pkg/presets"
	"github.com/tosih/enginelog/pkg/units"
	"github.com/tosih/enginelog/pkg/workspace"
)

// ParameterInfo describes one column of the loaded log
type ParameterInfo struct {
	Key     string `json:"key"`
	Name    string `json:"name"`
	Unit    string `json:"unit"`
	Numeric bool   `json:"numeric"`
	Time    bool   `json:"time"`
}

// DatasetResponse summarises the live dataset
type DatasetResponse struct {
	Source      string          `json:"source"`
	Filename    string          `json:"filename"`
	Metadata    string          `json:"metadata"`
	Rows        int             `json:"rows"`
	Parameters  []ParameterInfo `json:"parameters"`
	DefaultX    string          `json:"defaultX"`
	XCandidates []string        `json:"xCandidates"`
}

type plotRequest struct {
	Columns     []string `json:"columns"`
	X           string   `json:"x"`
	Temperature string   `json:"temperature"`
	Replace     bool     `json:"replace"`
	Preset      string   `json:"preset"`
}

type xyRequest struct {
	X string `json:"x"`
	Y string `json:"y"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		pterm.Error.Printf("Error encoding response: %v\n", err)
	}
}

// respondError sends a JSON error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondErr picks the status from the error kind
func respondErr(w http.ResponseWriter, err error) {
	var selErr *models.SelectionError
	var fmtErr *models.FormatError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &selErr), errors.As(err, &fmtErr), errors.Is(err, workspace.ErrLastTab),
		errors.Is(err, presets.ErrNameRequired), errors.Is(err, presets.ErrNoColumns):
		status = http.StatusBadRequest
	case errors.Is(err, workspace.ErrTabNotFound), errors.Is(err, presets.ErrNotFound), errors.Is(err, os.ErrNotExist):
		status = http.StatusNotFound
	case errors.Is(err, workspace.ErrXAxisChanged):
		status = http.StatusConflict
	}
	respondError(w, status, err.Error())
}

func (s *Server) requireDataset(w http.ResponseWriter) (*models.LogDataset, bool) {
	ds := s.current()
	if ds == nil {
		respondError(w, http.StatusBadRequest, "no log file loaded")
		return nil, false
	}
	return ds, true
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	content, err := templates.ReadFile("templates/index.html")
	if err != nil {
		http.Error(w, "Template not found", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(content)
}

func (s *Server) handleFileList(w http.ResponseWriter, r *http.Request) {
	fileList := make([]map[string]string, len(s.logFiles))
	for i, fullPath := range s.logFiles {
		fileList[i] = map[string]string{
			"path": fullPath,
			"name": filepath.Base(fullPath),
		}
	}

	respondJSON(w, http.StatusOK, fileList)
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request) {
	var req struct {
		File string `json:"file"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	path, ok := s.resolveLogFile(req.File)
	if !ok {
		respondError(w, http.StatusNotFound, "unknown log file: "+req.File)
		return
	}

	ds, err := s.load(path)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, datasetResponse(ds))
}

func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, datasetResponse(ds))
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	ds := s.current()

	out := make([]map[string]interface{}, 0, len(models.Categories))
	for _, c := range models.Categories {
		entry := map[string]interface{}{"name": c.Name}
		if ds != nil {
			cols, _ := models.FilterByCategory(ds, c.Name)
			entry["count"] = len(cols)
		}
		out = append(out, entry)
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleParameters(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	cols := ds.Columns()
	if category := r.URL.Query().Get("category"); category != "" {
		filtered, err := models.FilterByCategory(ds, category)
		if err != nil {
			respondErr(w, err)
			return
		}
		cols = filtered
	}
	if q := r.URL.Query().Get("q"); q != "" {
		matched := make(map[string]bool)
		for _, c := range models.FilterBySearch(ds, q) {
			matched[c] = true
		}
		var kept []string
		for _, c := range cols {
			if matched[c] {
				kept = append(kept, c)
			}
		}
		cols = kept
	}

	respondJSON(w, http.StatusOK, parameterInfos(ds, cols))
}

func (s *Server) handleListTabs(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.workspace.Tabs())
}

func (s *Server) handleAddTab(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusCreated, s.workspace.AddTab())
}

func (s *Server) handleCloseTab(w http.ResponseWriter, r *http.Request) {
	if err := s.workspace.CloseTab(mux.Vars(r)["id"]); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, s.workspace.Tabs())
}

func (s *Server) handleClearTab(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := s.workspace.Clear(id); err != nil {
		respondErr(w, err)
		return
	}
	tab, _ := s.workspace.Tab(id)
	respondJSON(w, http.StatusOK, tab)
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	var req plotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	temp := s.cfg.Temperature
	if req.Preset != "" {
		if s.store == nil {
			respondError(w, http.StatusNotFound, "presets are not available")
			return
		}
		p, err := s.store.Get(req.Preset)
		if err != nil {
			respondErr(w, err)
			return
		}
		req.Columns = p.Columns
		if req.X == "" {
			req.X = p.XColumn
		}
		temp = p.Temperature
	}
	if req.Temperature != "" {
		t, err := models.ParseTemperatureUnit(req.Temperature)
		if err != nil {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		temp = t
	}
	for i, c := range req.Columns {
		req.Columns[i] = plotspec.ResolveColumn(ds, c)
	}
	if req.X == "" {
		req.X = ds.DefaultXColumn()
	}
	req.X = plotspec.ResolveColumn(ds, req.X)

	spec, err := plotspec.BuildPlotSpec(ds, req.Columns, req.X, temp)
	if err != nil {
		respondErr(w, err)
		return
	}

	tab, err := s.workspace.Plot(mux.Vars(r)["id"], spec, req.Replace)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tab)
}

func (s *Server) handleXY(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.requireDataset(w)
	if !ok {
		return
	}

	var req xyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	x := plotspec.ResolveColumn(ds, req.X)
	y := plotspec.ResolveColumn(ds, req.Y)
	spec, err := plotspec.BuildXYSpec(ds, x, y)
	if err != nil {
		respondErr(w, err)
		return
	}

	tab, err := s.workspace.Plot(mux.Vars(r)["id"], spec, true)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, tab)
}

func (s *Server) tabSpec(w http.ResponseWriter, r *http.Request) (*models.PlotSpec, bool) {
	tab, err := s.workspace.Tab(mux.Vars(r)["id"])
	if err != nil {
		respondErr(w, err)
		return nil, false
	}
	if tab.Spec == nil {
		respondError(w, http.StatusNotFound, "tab has no plot")
		return nil, false
	}
	return tab.Spec, true
}

func (s *Server) handlePlotHTML(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.tabSpec(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chart.WriteHTML(w, spec, chart.DefaultOptions); err != nil {
		pterm.Error.Printf("Error rendering plot: %v\n", err)
	}
}

func (s *Server) handlePlotPNG(w http.ResponseWriter, r *http.Request) {
	spec, ok := s.tabSpec(w, r)
	if !ok {
		return
	}

	width, height := export.FigureSize(spec)
	w.Header().Set("Content-Type", "image/png")
	if err := export.WriteFigure(w, spec, "png", width, height); err != nil {
		pterm.Error.Printf("Error rendering figure: %v\n", err)
	}
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondJSON(w, http.StatusOK, []*presets.Preset{})
		return
	}

	list, err := s.store.List()
	if err != nil {
		respondErr(w, err)
		return
	}
	if list == nil {
		list = []*presets.Preset{}
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleSavePreset(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "presets are not available")
		return
	}

	var p presets.Preset
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	saved, err := s.store.Save(&p)
	if err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		respondError(w, http.StatusNotFound, "presets are not available")
		return
	}

	if err := s.store.Delete(mux.Vars(r)["name"]); err != nil {
		respondErr(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func datasetResponse(ds *models.LogDataset) DatasetResponse {
	return DatasetResponse{
		Source:      ds.Source(),
		Filename:    filepath.Base(ds.Source()),
		Metadata:    ds.Metadata(),
		Rows:        ds.Len(),
		Parameters:  parameterInfos(ds, ds.Columns()),
		DefaultX:    ds.DefaultXColumn(),
		XCandidates: plotspec.XCandidates(ds),
	}
}

func parameterInfos(ds *models.LogDataset, cols []string) []ParameterInfo {
	out := make([]ParameterInfo, 0, len(cols))
	for _, c := range cols {
		name := ds.DisplayName(c)
		out = append(out, ParameterInfo{
			Key:     c,
			Name:    name,
			Unit:    units.ExtractUnit(name),
			Numeric: ds.IsNumeric(c),
			Time:    ds.IsTime(c),
		})
	}
	return out
}
