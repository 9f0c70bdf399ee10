package server

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdoc/internal/metrics"
	"github.com/goliatone/go-formdoc/pkg/lint"
	"github.com/goliatone/go-formdoc/pkg/model"
	"github.com/goliatone/go-formdoc/pkg/render"
	"github.com/goliatone/go-formdoc/pkg/schema"
	"github.com/goliatone/go-formdoc/pkg/storage"
	"github.com/goliatone/go-formdoc/pkg/values"
	"github.com/goliatone/go-formdoc/pkg/visibility"
)

// DefaultRenderer is used by /api/render when no renderer is requested.
const DefaultRenderer = "json"

// stateResponse is returned by /api/state and the websocket "state" message.
type stateResponse struct {
	State   visibility.State `json:"state"`
	Visible []string         `json:"visible"`
}

func newStateResponse(form model.Form, vals model.Values) stateResponse {
	visible := visibility.VisibleFields(form, vals)
	names := make([]string, 0, len(visible))
	for _, field := range visible {
		names = append(names, field.Name)
	}
	return stateResponse{State: visibility.DeriveState(form, vals), Visible: names}
}

func (s *Server) getConfig(w http.ResponseWriter, _ *http.Request) {
	data, err := s.manager.Export()
	if err != nil {
		s.internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(append(data, '\n'))
}

func (s *Server) putConfig(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", err.Error())
		return
	}
	cfg, err := s.manager.Import(r.Context(), data)
	if err != nil {
		metrics.ConfigChanges.WithLabelValues("import", "rejected").Inc()
		if errors.Is(err, storage.ErrInvalidFormat) {
			writeError(w, http.StatusBadRequest, "INVALID_FORMAT", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	metrics.ConfigChanges.WithLabelValues("import", "ok").Inc()
	s.sessions.broadcastConfig(r.Context(), cfg)
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) deleteConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.manager.Reset(r.Context())
	if err != nil {
		metrics.ConfigChanges.WithLabelValues("reset", "failed").Inc()
		s.internalError(w, err)
		return
	}
	metrics.ConfigChanges.WithLabelValues("reset", "ok").Inc()
	s.sessions.broadcastConfig(r.Context(), cfg)
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) getNormalized(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Current())
}

func (s *Server) postState(w http.ResponseWriter, r *http.Request) {
	_, vals, err := decodeValuesRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VALUES", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newStateResponse(s.manager.Current().Form, vals))
}

func (s *Server) postRender(w http.ResponseWriter, r *http.Request) {
	req, vals, err := decodeValuesRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VALUES", err.Error())
		return
	}
	name := r.URL.Query().Get("renderer")
	if name == "" {
		name = DefaultRenderer
	}
	renderer, err := s.registry.Get(name)
	if err != nil {
		writeError(w, http.StatusNotFound, "UNKNOWN_RENDERER", err.Error())
		return
	}
	if render.IsInteractive(renderer) {
		writeError(w, http.StatusBadRequest, "UNSUPPORTED_RENDERER", "renderer "+name+" is interactive only")
		return
	}

	out, err := renderer.Render(r.Context(), s.manager.Current(), render.RenderOptions{
		Values:   vals,
		Template: req.Template,
		Action:   FormPath,
		Theme:    s.theme,
	})
	if err != nil {
		if errors.Is(err, render.ErrTemplateNotFound) {
			writeError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	metrics.DocumentsRendered.WithLabelValues("api").Inc()
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (s *Server) postValidate(w http.ResponseWriter, r *http.Request) {
	_, vals, err := decodeValuesRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_VALUES", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, schema.Validate(s.manager.Current().Form, vals))
}

func (s *Server) getSchema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, schema.ValuesSchema(s.manager.Current().Form))
}

func (s *Server) getLint(w http.ResponseWriter, _ *http.Request) {
	report := lint.Check(s.manager.Current())
	if report.Issues == nil {
		report.Issues = []lint.Issue{}
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getForm(w http.ResponseWriter, r *http.Request) {
	fields, meta := render.SplitSubmission(r.URL.Query())
	s.renderForm(w, r, http.StatusOK, render.RenderOptions{
		Values:       values.FromForm(fields),
		Template:     meta[render.TemplateFieldName],
		HiddenFields: meta,
	}, "form")
}

// postForm accepts a browser form post, validates required fields and
// re-renders the form with errors or the document preview.
func (s *Server) postForm(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_FORM", err.Error())
		return
	}
	fields, meta := render.SplitSubmission(r.PostForm)
	vals := values.FromForm(fields)
	result := schema.Validate(s.manager.Current().Form, vals)

	status := http.StatusOK
	if !result.Valid {
		status = http.StatusUnprocessableEntity
	}
	s.renderForm(w, r, status, render.RenderOptions{
		Values:       vals,
		Errors:       render.ErrorsFromResult(result),
		Template:     meta[render.TemplateFieldName],
		HiddenFields: meta,
	}, "form")
}

func (s *Server) renderForm(w http.ResponseWriter, r *http.Request, status int, opts render.RenderOptions, source string) {
	renderer, err := s.registry.Get("html")
	if err != nil {
		s.internalError(w, err)
		return
	}
	opts.Action = FormPath
	opts.Theme = s.theme

	out, err := renderer.Render(r.Context(), s.manager.Current(), opts)
	if err != nil {
		if errors.Is(err, render.ErrTemplateNotFound) {
			writeError(w, http.StatusNotFound, "TEMPLATE_NOT_FOUND", err.Error())
			return
		}
		s.internalError(w, err)
		return
	}
	metrics.DocumentsRendered.WithLabelValues(source).Inc()
	w.Header().Set("Content-Type", renderer.ContentType())
	w.WriteHeader(status)
	_, _ = w.Write(out)
}

func (s *Server) internalError(w http.ResponseWriter, err error) {
	s.logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
