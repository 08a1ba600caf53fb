// Package web は計算機能をJSON APIとして公開する
package web

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yayuyokano/meal-calculate/internal/application/calculator"
	"github.com/yayuyokano/meal-calculate/internal/domain/apperr"
	"github.com/yayuyokano/meal-calculate/internal/domain/cafeteria"
	"github.com/yayuyokano/meal-calculate/internal/domain/menu"
	"github.com/yayuyokano/meal-calculate/pkg/health"
)

// maxRequestBytes はリクエストボディの上限
const maxRequestBytes = 64 << 10

// Calculator は計算ユースケースのインターフェース
type Calculator interface {
	Calculate(ctx context.Context, req calculator.Request) (calculator.Response, error)
}

// Handler はHTTP APIハンドラー
type Handler struct {
	calc        Calculator
	directory   atomic.Pointer[cafeteria.Directory]
	checker     *health.Checker
	validate    *validator.Validate
	defaultURL  string
	useRenderer bool
	router      http.Handler
}

// NewHandler は新しいHandlerを作成
// useRenderer は use_playwright 未指定時の既定値
func NewHandler(calc Calculator, dir *cafeteria.Directory, checker *health.Checker, defaultURL string, useRenderer bool) *Handler {
	if checker == nil {
		checker = health.NewChecker()
	}

	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	h := &Handler{
		calc:        calc,
		checker:     checker,
		validate:    v,
		defaultURL:  defaultURL,
		useRenderer: useRenderer,
	}
	if dir == nil {
		dir = cafeteria.NewDirectory(nil, "")
	}
	h.directory.Store(dir)
	h.router = h.routes()
	return h
}

// SetDirectory は食堂一覧を差し替える（定期更新用）
func (h *Handler) SetDirectory(dir *cafeteria.Directory) {
	if dir != nil {
		h.directory.Store(dir)
	}
}

// Directory は現在の食堂一覧を返す
func (h *Handler) Directory() *cafeteria.Directory {
	return h.directory.Load()
}

// Router はルーティング済みのhttp.Handlerを返す
func (h *Handler) Router() http.Handler {
	return h.router
}

func (h *Handler) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger)
	r.Use(prometheusMetrics)

	r.Get("/health", h.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/cafeterias", h.handleCafeterias)
		r.Post("/calculate", h.handleCalculate)
	})

	return r
}

// ServeHTTP はHTTPリクエストを処理
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// calculateRequest は POST /api/calculate のリクエスト
type calculateRequest struct {
	Budget        *int   `json:"budget" validate:"required,gte=0"`
	Cafeteria     string `json:"cafeteria" validate:"omitempty,max=32"`
	URL           string `json:"url" validate:"omitempty,url"`
	LimitPrimary  bool   `json:"limit_primary"`
	UsePlaywright *bool  `json:"use_playwright"`
}

// calculateResponse は POST /api/calculate のレスポンス
type calculateResponse struct {
	Total         int         `json:"total"`
	Items         []menu.Item `json:"items"`
	MenuItems     []menu.Item `json:"menu_items"`
	Budget        int         `json:"budget"`
	URL           string      `json:"url"`
	CafeteriaID   string      `json:"cafeteria_id,omitempty"`
	CafeteriaName string      `json:"cafeteria_name,omitempty"`
	LimitPrimary  bool        `json:"limit_primary"`
	UsePlaywright bool        `json:"use_playwright"`
	RunID         string      `json:"run_id"`
}

type cafeteriaPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// handleHealth はヘルスチェック
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.checker.Run()

	status := http.StatusOK
	label := "ok"
	if !report.OK {
		status = http.StatusServiceUnavailable
		label = "degraded"
	}

	respondJSON(w, status, map[string]interface{}{
		"status": label,
		"checks": report.Checks,
	})
}

// handleCafeterias は食堂一覧を返す
func (h *Handler) handleCafeterias(w http.ResponseWriter, r *http.Request) {
	dir := h.Directory()
	all := dir.All()

	payload := make([]cafeteriaPayload, 0, len(all))
	for _, c := range all {
		payload = append(payload, cafeteriaPayload{ID: c.ID, Name: c.Name, URL: dir.URL(c.ID)})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"cafeterias": payload,
	})
}

// handleCalculate はメニューを取得して組み合わせを計算する
func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req calculateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	if err := dec.Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error": "リクエストのJSONを解釈できません。",
			"kind":  apperr.KindInvalidArgument,
		})
		return
	}

	if fieldErrors := h.validateRequest(&req); len(fieldErrors) > 0 {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":        "入力内容を確認してください。",
			"field_errors": fieldErrors,
		})
		return
	}

	dir := h.Directory()
	url := h.defaultURL
	var cafeteriaID, cafeteriaName string
	switch {
	case req.URL != "":
		url = req.URL
	case req.Cafeteria != "":
		cafeteriaID = req.Cafeteria
		cafeteriaName = dir.Name(cafeteriaID)
		url = dir.URL(cafeteriaID)
	}

	useRenderer := h.useRenderer
	if req.UsePlaywright != nil {
		useRenderer = *req.UsePlaywright
	}

	resp, err := h.calc.Calculate(r.Context(), calculator.Request{
		Budget:       *req.Budget,
		URL:          url,
		LimitPrimary: req.LimitPrimary,
		UseRenderer:  useRenderer,
	})
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, calculateResponse{
		Total:         resp.Total,
		Items:         resp.Items,
		MenuItems:     resp.MenuItems,
		Budget:        resp.Budget,
		URL:           resp.URL,
		CafeteriaID:   cafeteriaID,
		CafeteriaName: cafeteriaName,
		LimitPrimary:  resp.LimitPrimary,
		UsePlaywright: resp.UseRenderer,
		RunID:         resp.RunID,
	})
}

// validateRequest はフィールドごとのエラーメッセージを返す
func (h *Handler) validateRequest(req *calculateRequest) map[string][]string {
	fieldErrors := make(map[string][]string)

	if err := h.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			fieldErrors["_"] = []string{err.Error()}
			return fieldErrors
		}
		for _, fe := range verrs {
			fieldErrors[fe.Field()] = append(fieldErrors[fe.Field()], fieldMessage(fe))
		}
	}

	if req.URL == "" && req.Cafeteria != "" && !h.Directory().Contains(req.Cafeteria) {
		fieldErrors["cafeteria"] = append(fieldErrors["cafeteria"], "選択肢にない食堂です。")
	}

	return fieldErrors
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "このフィールドは必須です。"
	case "gte":
		return "0以上の整数を入力してください。"
	case "url":
		return "有効なURLを入力してください。"
	default:
		return "値が不正です: " + fe.Tag()
	}
}
