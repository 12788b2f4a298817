// Package server exposes the projection engine over an HTTP JSON API. A
// client uploads a plan document and receives the computed schedule, summary
// statistics, and quality-control results for every scenario in it.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"lifecare-forecast/internal/config"
	"lifecare-forecast/internal/engine"
	"lifecare-forecast/pkg/constants"
	"lifecare-forecast/pkg/validation"
)

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
}

type projectionOptions struct {
	Sensitivity bool
}

// NewHandler constructs the HTTP handler that serves the projection API.
func NewHandler(logger *zap.Logger, maxUploadSize int64, version string) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	h := &handler{logger: logger, maxUploadSize: maxUploadSize, version: trimmedVersion}

	mux := http.NewServeMux()

	// Projection API endpoint (file upload)
	mux.HandleFunc("/api/projection", h.handleProjection)

	// Projection API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/projection", h.handleProjectionEditor)

	// Plan serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handlePlanExport)

	// Version endpoint for client metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	return mux
}

type projectionResponse struct {
	Evaluee     string                 `json:"evaluee"`
	Scenarios   []scenarioPayload      `json:"scenarios"`
	Comparison  *comparisonPayload     `json:"comparison,omitempty"`
	Sensitivity *sensitivityPayload    `json:"sensitivity,omitempty"`
	Warnings    []string               `json:"warnings,omitempty"`
	Duration    string                 `json:"duration"`
	Config      map[string]interface{} `json:"config,omitempty"`
	ConfigYAML  string                 `json:"configYaml,omitempty"`
}

type scenarioPayload struct {
	Name       string            `json:"name"`
	Baseline   bool              `json:"baseline"`
	Columns    []string          `json:"columns"`
	Rows       []scheduleRow     `json:"rows"`
	Summary    summaryPayload    `json:"summary"`
	Validation validationPayload `json:"validation"`
}

type scheduleRow struct {
	Year         int       `json:"year"`
	Age          float64   `json:"age"`
	Costs        []float64 `json:"costs"`
	NominalTotal float64   `json:"nominalTotal"`
	PresentValue *float64  `json:"presentValue,omitempty"`
}

type summaryPayload struct {
	TotalNominal      float64           `json:"totalNominal"`
	TotalPresentValue float64           `json:"totalPresentValue"`
	AverageAnnual     float64           `json:"averageAnnual"`
	ProjectionPeriod  string            `json:"projectionPeriod"`
	DiscountRate      float64           `json:"discountRate"`
	Categories        []categoryPayload `json:"categories"`
}

type categoryPayload struct {
	Name         string  `json:"name"`
	Nominal      float64 `json:"nominal"`
	PresentValue float64 `json:"presentValue"`
}

type validationPayload struct {
	Passed      bool             `json:"passed"`
	Discrepancy float64          `json:"discrepancy"`
	ByItemTotal float64          `json:"byItemTotal"`
	ByYearTotal float64          `json:"byYearTotal"`
	Trend       string           `json:"trend"`
	Findings    []findingPayload `json:"findings,omitempty"`
}

type findingPayload struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type comparisonPayload struct {
	Baseline  string            `json:"baseline"`
	Scenarios []variancePayload `json:"scenarios"`
}

type variancePayload struct {
	Name              string  `json:"name"`
	Baseline          bool    `json:"baseline"`
	TotalNominal      float64 `json:"totalNominal"`
	TotalPresentValue float64 `json:"totalPresentValue"`
	NominalDelta      float64 `json:"nominalDelta"`
	NominalPct        float64 `json:"nominalPct"`
	PresentValueDelta float64 `json:"presentValueDelta"`
	PresentValuePct   float64 `json:"presentValuePct"`
}

type sensitivityPayload struct {
	Scenario     string                     `json:"scenario"`
	DiscountRate []sensitivityResultPayload `json:"discountRate"`
	Horizon      []sensitivityResultPayload `json:"horizon"`
}

type sensitivityResultPayload struct {
	Label                string  `json:"label"`
	TotalNominal         float64 `json:"totalNominal"`
	TotalPresentValue    float64 `json:"totalPresentValue"`
	NominalDeltaPct      float64 `json:"nominalDeltaPct"`
	PresentValueDeltaPct float64 `json:"presentValueDeltaPct"`
}

func (h *handler) handleProjection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize))
			return
		}
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err))
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "missing plan document")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleProjection"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read plan document: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading plan document, %v", err))
		return
	}

	h.runProjection(w, configBytes, configMap, start, "server.handleProjection", projectionOptions{})
}

func (h *handler) handleVersion(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"version": h.version,
	})
}

func (h *handler) handleProjectionEditor(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode plan: %v", err), "server.handleProjectionEditor")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	if rawConfig, ok := payload["config"]; ok {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid config payload: expected object", "server.handleProjectionEditor")
			return
		}
		configPayload = cfgMap
	}

	options := projectionOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			h.respondErrorWithOp(w, http.StatusBadRequest, "invalid options payload: expected object", "server.handleProjectionEditor")
			return
		}
		if sensitivityVal, ok := optsMap["sensitivity"]; ok {
			options.Sensitivity = coerceBool(sensitivityVal)
		}
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode plan: %v", err), "server.handleProjectionEditor")
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse plan: %v", err), "server.handleProjectionEditor")
		return
	}

	h.runProjection(w, configBytes, configMap, start, "server.handleProjectionEditor", options)
}

func (h *handler) handlePlanExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode plan: %v", err), "server.handlePlanExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedPlanYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode plan: %v", err), "server.handlePlanExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedPlanYAML keeps exported documents readable: the plan sections
// come out in their conventional order instead of alphabetically.
func marshalOrderedPlanYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"evaluee", "settings", "categories", "scenarios", "activeScenario"} {
		if value, ok := payload[key]; ok {
			items = append(items, orderedItem{key: key, value: value})
			seen[key] = struct{}{}
		}
	}

	remainingKeys := make([]string, 0, len(payload))
	for key := range payload {
		if _, already := seen[key]; already {
			continue
		}
		remainingKeys = append(remainingKeys, key)
	}
	sort.Strings(remainingKeys)
	for _, key := range remainingKeys {
		items = append(items, orderedItem{key: key, value: payload[key]})
	}

	ordered := orderedPlan{items: items}
	return yaml.Marshal(ordered)
}

type orderedPlan struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedPlan) MarshalYAML() (interface{}, error) {
	mapNode := &yaml.Node{
		Kind: yaml.MappingNode,
		Tag:  "!!map",
	}

	for _, item := range o.items {
		keyNode := &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!str",
			Value: item.key,
		}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(item.value); err != nil {
			return nil, err
		}
		mapNode.Content = append(mapNode.Content, keyNode, valueNode)
	}

	return mapNode, nil
}

func (h *handler) runProjection(w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts projectionOptions) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	p, warnings, err := cfg.BuildPlan()
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	warnings = append(warnings, validation.ValidatePlan(p)...)

	e := engine.NewEngine(h.logger)

	scenarios := make([]scenarioPayload, 0, len(p.Scenarios))
	for _, scenario := range p.Scenarios {
		scenarios = append(scenarios, buildScenarioPayload(
			e.BuildSchedule(scenario, p.Evaluee),
			e.Summarize(scenario, p.Evaluee),
			e.Validate(scenario, p.Evaluee),
			scenario.Baseline,
		))
	}

	response := projectionResponse{
		Evaluee:    p.Evaluee.Name,
		Scenarios:  scenarios,
		Warnings:   warnings,
		Config:     configMap,
		ConfigYAML: string(configBytes),
	}

	if len(p.Scenarios) > 1 {
		comparison, err := e.Compare(p)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to compare scenarios: %v", err), op)
			return
		}
		response.Comparison = buildComparisonPayload(comparison)
	}

	if opts.Sensitivity {
		if active := p.CurrentScenario(); active != nil {
			report := e.Sensitivity(*active, p.Evaluee, engine.DefaultSensitivityOptions())
			response.Sensitivity = buildSensitivityPayload(report)
		}
	}

	elapsed := time.Since(start)
	response.Duration = elapsed.String()

	h.logger.Info("projection computed",
		zap.String("op", op),
		zap.String("evaluee", p.Evaluee.Name),
		zap.Int("scenarios", len(response.Scenarios)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
}

func buildScenarioPayload(schedule engine.Schedule, summary engine.Summary, report engine.ValidationReport, baseline bool) scenarioPayload {
	columns := make([]string, 0, len(schedule.Columns))
	for _, column := range schedule.Columns {
		columns = append(columns, column.Label)
	}

	rows := make([]scheduleRow, 0, len(schedule.Rows))
	for _, row := range schedule.Rows {
		payload := scheduleRow{
			Year:         row.Year,
			Age:          row.Age,
			Costs:        row.Costs,
			NominalTotal: row.NominalTotal,
		}
		if schedule.HasPresentValue {
			pv := row.PresentValue
			payload.PresentValue = &pv
		}
		rows = append(rows, payload)
	}

	categories := make([]categoryPayload, 0, len(summary.Categories))
	for _, category := range summary.Categories {
		categories = append(categories, categoryPayload{
			Name:         category.Name,
			Nominal:      category.Nominal,
			PresentValue: category.PresentValue,
		})
	}

	findings := make([]findingPayload, 0, len(report.Findings))
	for _, finding := range report.Findings {
		findings = append(findings, findingPayload{Severity: finding.Severity, Message: finding.Message})
	}

	return scenarioPayload{
		Name:     schedule.Scenario,
		Baseline: baseline,
		Columns:  columns,
		Rows:     rows,
		Summary: summaryPayload{
			TotalNominal:      summary.TotalNominal,
			TotalPresentValue: summary.TotalPresentValue,
			AverageAnnual:     summary.AverageAnnual,
			ProjectionPeriod:  summary.ProjectionPeriod,
			DiscountRate:      summary.DiscountRate,
			Categories:        categories,
		},
		Validation: validationPayload{
			Passed:      report.Passed,
			Discrepancy: report.Discrepancy,
			ByItemTotal: report.ByItemTotal,
			ByYearTotal: report.ByYearTotal,
			Trend:       report.Trend,
			Findings:    findings,
		},
	}
}

func buildComparisonPayload(comparison engine.Comparison) *comparisonPayload {
	payload := &comparisonPayload{Baseline: comparison.Baseline}
	for _, variance := range comparison.Scenarios {
		payload.Scenarios = append(payload.Scenarios, variancePayload{
			Name:              variance.Name,
			Baseline:          variance.Baseline,
			TotalNominal:      variance.Summary.TotalNominal,
			TotalPresentValue: variance.Summary.TotalPresentValue,
			NominalDelta:      variance.NominalDelta,
			NominalPct:        variance.NominalPct,
			PresentValueDelta: variance.PresentValueDelta,
			PresentValuePct:   variance.PresentValuePct,
		})
	}
	return payload
}

func buildSensitivityPayload(report engine.SensitivityReport) *sensitivityPayload {
	payload := &sensitivityPayload{Scenario: report.Scenario}
	for _, result := range report.DiscountRate {
		payload.DiscountRate = append(payload.DiscountRate, sensitivityResultPayload(result))
	}
	for _, result := range report.Horizon {
		payload.Horizon = append(payload.Horizon, sensitivityResultPayload(result))
	}
	return payload
}

func decodeYAMLToMap(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return make(map[string]interface{}), nil
	}

	var result map[string]interface{}
	if err := yaml.Unmarshal(trimmed, &result); err != nil {
		return nil, err
	}
	if result == nil {
		result = make(map[string]interface{})
	}
	return result, nil
}

func (h *handler) respondError(w http.ResponseWriter, status int, msg string) {
	h.respondErrorWithOp(w, status, msg, "server.handleProjection")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("projection request failed",
		zap.String("op", op),
		zap.Int("status", status),
		zap.String("error", msg),
	)

	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.Error("failed to write JSON response", zap.Error(err))
	}
}

func coerceBool(value interface{}) bool {
	switch v := value.(type) {
	case bool:
		return v
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return false
		}
		if parsed, err := strconv.ParseBool(trimmed); err == nil {
			return parsed
		}
	case float64:
		return v != 0
	case int:
		return v != 0
	case int64:
		return v != 0
	case json.Number:
		if parsed, err := strconv.ParseFloat(v.String(), 64); err == nil {
			return parsed != 0
		}
	}
	return false
}
