package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/iwvelando/sba-spread/internal/config"
	"github.com/iwvelando/sba-spread/internal/deal"
	"github.com/iwvelando/sba-spread/internal/store"
	"github.com/iwvelando/sba-spread/pkg/constants"
	"github.com/iwvelando/sba-spread/pkg/dscr"
	"github.com/iwvelando/sba-spread/pkg/narrative"
	"github.com/iwvelando/sba-spread/pkg/output"
	"github.com/iwvelando/sba-spread/pkg/spread"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

//go:embed static/*
var staticFiles embed.FS

// Options configures NewHandler.
type Options struct {
	MaxUploadSize int64
	Version       string
	// Deals is the working deal edited through /api/deal. A fresh empty
	// store is used when nil.
	Deals *deal.Store
	// Saver reports autosave status; nil means the working deal is not
	// persisted.
	Saver *store.Saver
	// Clock fixes the analysis date; time.Now when nil.
	Clock func() time.Time
}

type handler struct {
	logger        *zap.Logger
	maxUploadSize int64
	version       string
	deals         *deal.Store
	saver         *store.Saver
	analyzer      *dscr.Analyzer
	clock         func() time.Time
}

// spreadOptions are per-request DSCR toggles. A nil field leaves the deal's
// own setting in place.
type spreadOptions struct {
	IncludeRentAddback *bool
	IncludeScheduleE   *bool
	IncludeAffiliates  *bool
}

func (o spreadOptions) apply(d *spread.DealOptions) {
	if o.IncludeRentAddback != nil {
		d.IncludeRentAddback = *o.IncludeRentAddback
	}
	if o.IncludeScheduleE != nil {
		d.IncludeScheduleE = *o.IncludeScheduleE
	}
	if o.IncludeAffiliates != nil {
		d.IncludeAffiliates = *o.IncludeAffiliates
	}
}

// NewHandler constructs the HTTP handler that serves the web UI and spread API.
func NewHandler(logger *zap.Logger, opts Options) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	maxUploadSize := opts.MaxUploadSize
	if maxUploadSize <= 0 {
		maxUploadSize = constants.DefaultMaxUploadSizeBytes
	}

	trimmedVersion := strings.TrimSpace(opts.Version)
	if trimmedVersion == "" {
		trimmedVersion = "dev"
	}

	deals := opts.Deals
	if deals == nil {
		deals = deal.NewStore(logger, spread.Deal{})
	}

	analyzer := dscr.NewAnalyzer(logger)
	if opts.Clock != nil {
		analyzer = analyzer.WithClock(opts.Clock)
	}

	h := &handler{
		logger:        logger,
		maxUploadSize: maxUploadSize,
		version:       trimmedVersion,
		deals:         deals,
		saver:         opts.Saver,
		analyzer:      analyzer,
		clock:         opts.Clock,
	}

	mux := http.NewServeMux()

	// Spread API endpoint (file upload)
	mux.HandleFunc("/api/spread", h.handleSpread)

	// Spread API endpoint for editor-driven updates
	mux.HandleFunc("/api/editor/spread", h.handleSpreadEditor)

	// Config serialization endpoint for editor downloads
	mux.HandleFunc("/api/editor/export", h.handleConfigExport)

	// Prompt text for the credit memo writer
	mux.HandleFunc("/api/narrative", h.handleNarrative)

	// Version endpoint for UI metadata
	mux.HandleFunc("/api/version", h.handleVersion)

	// Working deal
	h.registerDealRoutes(mux)

	// Static assets (web UI)
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(fmt.Sprintf("failed to prepare embedded static files: %v", err))
	}
	fileServer := http.FileServer(http.FS(sub))
	mux.Handle("/", fileServer)

	return mux
}

type spreadResponse struct {
	Analysis   dscr.Analysis          `json:"analysis"`
	CSV        string                 `json:"csv"`
	Warnings   []string               `json:"warnings,omitempty"`
	Duration   string                 `json:"duration"`
	Config     map[string]interface{} `json:"config,omitempty"`
	ConfigYAML string                 `json:"configYaml,omitempty"`
}

func (h *handler) handleSpread(w http.ResponseWriter, r *http.Request) {
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
		h.respondError(w, http.StatusBadRequest, "missing deal file")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleSpread"),
				zap.Error(closeErr),
			)
		}
	}()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		h.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to read deal file: %v", err))
		return
	}

	configBytes := buf.Bytes()
	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, fmt.Sprintf("error reading deal data, %v", err))
		return
	}

	h.runSpread(r.Context(), w, configBytes, configMap, start, "server.handleSpread", formOptions(r))
}

// formOptions reads DSCR toggles sent as multipart fields next to the file.
// Checkboxes submit "on".
func formOptions(r *http.Request) spreadOptions {
	field := func(key string) *bool {
		if r.MultipartForm == nil {
			return nil
		}
		values, ok := r.MultipartForm.Value[key]
		if !ok || len(values) == 0 {
			return nil
		}
		v := strings.EqualFold(values[0], "on") || coerceBool(values[0])
		return &v
	}
	return spreadOptions{
		IncludeRentAddback: field("includeRentAddback"),
		IncludeScheduleE:   field("includeScheduleE"),
		IncludeAffiliates:  field("includeAffiliates"),
	}
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

// editorPayload splits an editor request into its config object and options.
// A body without a "config" key is treated as the config itself.
func editorPayload(r io.Reader) (map[string]interface{}, spreadOptions, bool, error) {
	var payload map[string]interface{}
	dec := json.NewDecoder(r)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, spreadOptions{}, false, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	configPayload := payload
	rawConfig, hasConfig := payload["config"]
	if hasConfig {
		cfgMap, ok := rawConfig.(map[string]interface{})
		if !ok {
			return nil, spreadOptions{}, false, errors.New("invalid config payload: expected object")
		}
		configPayload = cfgMap
	}

	options := spreadOptions{}
	if rawOptions, ok := payload["options"]; ok {
		optsMap, ok := rawOptions.(map[string]interface{})
		if !ok {
			return nil, spreadOptions{}, false, errors.New("invalid options payload: expected object")
		}
		options.IncludeRentAddback = optionalBool(optsMap, "includeRentAddback")
		options.IncludeScheduleE = optionalBool(optsMap, "includeScheduleE")
		options.IncludeAffiliates = optionalBool(optsMap, "includeAffiliates")
		if !hasConfig {
			delete(configPayload, "options")
		}
	}
	return configPayload, options, hasConfig, nil
}

func optionalBool(m map[string]interface{}, key string) *bool {
	raw, ok := m[key]
	if !ok {
		return nil
	}
	v := coerceBool(raw)
	return &v
}

func (h *handler) handleSpreadEditor(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleSpreadEditor"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()

	configPayload, options, _, err := editorPayload(r.Body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	configBytes, err := yaml.Marshal(configPayload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), op)
		return
	}

	configMap, err := decodeYAMLToMap(configBytes)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse configuration: %v", err), op)
		return
	}

	h.runSpread(r.Context(), w, configBytes, configMap, start, op, options)
}

func (h *handler) handleNarrative(w http.ResponseWriter, r *http.Request) {
	const op = "server.handleNarrative"
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	configPayload, options, hasConfig, err := editorPayload(r.Body)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}

	// Without an explicit config the working deal is described.
	d := h.deals.Snapshot()
	if hasConfig {
		cfg, err := loadEditorConfig(configPayload)
		if err != nil {
			h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
			return
		}
		d = cfg.Deal
	}
	options.apply(&d.Options)

	analysis, err := h.analyzer.Analyze(r.Context(), d)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to analyze deal: %v", err), op)
		return
	}

	prompt, err := narrative.Build(analysis)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to build narrative: %v", err), op)
		return
	}
	h.writeJSON(w, http.StatusOK, prompt)
}

func loadEditorConfig(payload map[string]interface{}) (*config.Configuration, error) {
	configBytes, err := yaml.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode configuration: %w", err)
	}
	return config.LoadConfigurationFromReader(bytes.NewReader(configBytes), "yaml")
}

func (h *handler) handleConfigExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}

	var payload map[string]interface{}
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to decode configuration: %v", err), "server.handleConfigExport")
		return
	}
	if payload == nil {
		payload = make(map[string]interface{})
	}

	yamlBytes, err := marshalOrderedConfigYAML(payload)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to encode configuration: %v", err), "server.handleConfigExport")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"configYaml": string(yamlBytes),
	})
}

// marshalOrderedConfigYAML writes logging, output and deal first, followed by
// any other keys in sorted order.
func marshalOrderedConfigYAML(payload map[string]interface{}) ([]byte, error) {
	items := make([]orderedItem, 0, len(payload))
	seen := make(map[string]struct{})

	for _, key := range []string{"logging", "output", "deal"} {
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

	ordered := orderedConfig{items: items}
	return yaml.Marshal(ordered)
}

type orderedConfig struct {
	items []orderedItem
}

type orderedItem struct {
	key   string
	value interface{}
}

func (o orderedConfig) MarshalYAML() (interface{}, error) {
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

func (h *handler) runSpread(ctx context.Context, w http.ResponseWriter, configBytes []byte, configMap map[string]interface{}, start time.Time, op string, opts spreadOptions) {
	cfg, err := config.LoadConfigurationFromReader(bytes.NewReader(configBytes), "yaml")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), op)
		return
	}
	opts.apply(&cfg.Deal.Options)

	warnings := cfg.ValidateConfiguration()
	h.respondAnalysis(ctx, w, cfg.Deal, warnings, configMap, string(configBytes), start, op)
}

func (h *handler) respondAnalysis(ctx context.Context, w http.ResponseWriter, d spread.Deal, warnings []string, configMap map[string]interface{}, configYAML string, start time.Time, op string) {
	analysis, err := h.analyzer.Analyze(ctx, d)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to analyze deal: %v", err), op)
		return
	}

	csvText, err := output.CsvString(analysis)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to render CSV: %v", err), op)
		return
	}

	elapsed := time.Since(start)

	response := spreadResponse{
		Analysis:   analysis,
		CSV:        csvText,
		Warnings:   warnings,
		Duration:   elapsed.String(),
		Config:     configMap,
		ConfigYAML: configYAML,
	}

	h.logger.Info("spread computed",
		zap.String("op", op),
		zap.String("deal", d.Name),
		zap.Int("periods", len(analysis.Metrics)),
		zap.Int("warnings", len(warnings)),
		zap.Duration("duration", elapsed),
	)

	h.writeJSON(w, http.StatusOK, response)
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
	h.respondErrorWithOp(w, status, msg, "server.handleSpread")
}

func (h *handler) respondErrorWithOp(w http.ResponseWriter, status int, msg string, op string) {
	h.logger.Error("spread request failed",
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
