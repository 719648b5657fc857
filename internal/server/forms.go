package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/goliatone/go-stepform/pkg/engine"
	"github.com/goliatone/go-stepform/pkg/gate"
	"github.com/goliatone/go-stepform/pkg/model"
	"github.com/goliatone/go-stepform/pkg/render"
)

// Flash texts for outcomes the gate does not report itself.
const (
	MsgPaymentUnavailable = "Online payment is not available here, register from the terminal client instead"
	MsgSubmitUnavailable  = "Submissions are disabled on this server"
	MsgGroupLimit         = "No more entries can be added"
	MsgGroupMinimum       = "This entry cannot be removed"
)

type formSummary struct {
	Slug        string `json:"slug"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Steps       int    `json:"steps"`
	Mode        string `json:"mode"`
	Amount      string `json:"amount,omitempty"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listForms(w http.ResponseWriter, _ *http.Request) {
	defs := s.catalog.List()
	forms := make([]formSummary, 0, len(defs))
	for _, def := range defs {
		forms = append(forms, formSummary{
			Slug:        def.Slug,
			Title:       def.Title,
			Description: def.Description,
			Steps:       len(def.Steps),
			Mode:        string(def.Submission.Mode),
			Amount:      def.Submission.Amount,
		})
	}
	writeJSON(w, http.StatusOK, forms)
}

func (s *Server) definition(w http.ResponseWriter, r *http.Request) (*model.Definition, bool) {
	slug := chi.URLParam(r, "slug")
	def, ok := s.catalog.Get(slug)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "unknown form: "+slug)
		return nil, false
	}
	return def, true
}

// newSession starts a session for def and loads remote option lists. A
// failed options load keeps the static options.
func (s *Server) newSession(ctx context.Context, def *model.Definition, flashes *flashNotifier, values map[string]any) (*engine.Session, error) {
	opts := []engine.Option{engine.WithNotifier(flashes)}
	if values != nil {
		opts = append(opts, engine.WithValues(values))
	}
	if s.uploader != nil {
		opts = append(opts, engine.WithUploader(s.uploader))
	}
	if s.options != nil {
		opts = append(opts, engine.WithOptionsLoader(s.options))
	}
	session, err := engine.New(def, opts...)
	if err != nil {
		return nil, err
	}
	if s.options != nil {
		if err := session.LoadOptions(ctx); err != nil {
			log.Printf("load options for %s: %v", def.Slug, err)
		}
	}
	return session, nil
}

func (s *Server) showForm(w http.ResponseWriter, r *http.Request) {
	def, ok := s.definition(w, r)
	if !ok {
		return
	}
	flashes := &flashNotifier{}
	session, err := s.newSession(r.Context(), def, flashes, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SESSION", err.Error())
		return
	}
	s.renderPage(w, r, session, flashes.items, http.StatusOK)
}

func (s *Server) showView(w http.ResponseWriter, r *http.Request) {
	def, ok := s.definition(w, r)
	if !ok {
		return
	}
	session, err := s.newSession(r.Context(), def, &flashNotifier{}, nil)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SESSION", err.Error())
		return
	}
	view, err := render.NewView(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "VIEW", err.Error())
		return
	}
	renderer := render.JSONRenderer{}
	out, err := renderer.Render(r.Context(), view, render.RenderOptions{Locale: r.URL.Query().Get("locale")})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "RENDER", err.Error())
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	_, _ = w.Write(out)
}

func (s *Server) postForm(w http.ResponseWriter, r *http.Request) {
	def, ok := s.definition(w, r)
	if !ok {
		return
	}
	if err := s.parseForm(r); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_FORM", err.Error())
		return
	}

	values, err := decodeValues(r.PostForm.Get(render.ValuesInput))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_VALUES", err.Error())
		return
	}
	ctx := r.Context()
	flashes := &flashNotifier{}
	session, err := s.newSession(ctx, def, flashes, values)
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_VALUES", err.Error())
		return
	}

	posted := 1
	if raw := strings.TrimSpace(r.PostForm.Get(render.StepInput)); raw != "" {
		if posted, err = strconv.Atoi(raw); err != nil || posted < 1 {
			writeError(w, http.StatusBadRequest, "BAD_STEP", "invalid step: "+raw)
			return
		}
	}
	reached, err := session.SeekStep(ctx, posted)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "SESSION", err.Error())
		return
	}
	if reached != posted {
		// An earlier step no longer validates; show it with its errors.
		s.renderPage(w, r, session, flashes.items, http.StatusUnprocessableEntity)
		return
	}

	if err := s.applyPost(ctx, session, r); err != nil {
		writeError(w, http.StatusInternalServerError, "SESSION", err.Error())
		return
	}

	action, target := render.ParseAction(r.PostForm.Get(render.ActionInput))
	status := http.StatusOK
	switch action {
	case render.ActionNext:
		advanced, err := session.Advance(ctx)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "SESSION", err.Error())
			return
		}
		if !advanced {
			status = http.StatusUnprocessableEntity
		}
	case render.ActionBack:
		session.Retreat()
	case render.ActionAdd:
		if _, err := session.Append(target); err != nil {
			flashes.Error(groupMessage(err))
		}
	case render.ActionRemove:
		group, index, err := splitMember(target)
		if err == nil {
			err = session.Remove(group, index)
		}
		if err != nil {
			flashes.Error(groupMessage(err))
		}
	case render.ActionSubmit:
		session, status = s.submit(ctx, def, session, flashes)
		if session == nil {
			writeError(w, http.StatusInternalServerError, "SESSION", "could not restart form")
			return
		}
	default:
		writeError(w, http.StatusBadRequest, "BAD_ACTION", "unknown action: "+action)
		return
	}

	s.renderPage(w, r, session, flashes.items, status)
}

// submit runs the gate. On success it returns a fresh session so the form
// starts over; otherwise the posted session is kept for a retry.
func (s *Server) submit(ctx context.Context, def *model.Definition, session *engine.Session, flashes *flashNotifier) (*engine.Session, int) {
	if !session.IsFinal() {
		return session, http.StatusConflict
	}
	if s.submitter == nil {
		flashes.Error(MsgSubmitUnavailable)
		return session, http.StatusServiceUnavailable
	}

	g := gate.New(s.submitter, gate.WithNotifier(flashes))
	_, err := g.Trigger(ctx, session)
	switch {
	case err == nil:
		fresh, err := s.newSession(ctx, def, flashes, nil)
		if err != nil {
			log.Printf("restart %s: %v", def.Slug, err)
			return nil, http.StatusInternalServerError
		}
		return fresh, http.StatusOK
	case errors.Is(err, gate.ErrNoPayments):
		flashes.Error(MsgPaymentUnavailable)
		return session, http.StatusPaymentRequired
	case errors.Is(err, gate.ErrInvalid):
		return session, http.StatusUnprocessableEntity
	default:
		log.Printf("submit %s: %v", def.Slug, err)
		return session, http.StatusBadGateway
	}
}

func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, session *engine.Session, flashes []render.Flash, status int) {
	view, err := render.NewView(session)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "VIEW", err.Error())
		return
	}
	values, err := json.Marshal(session.Values())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "VALUES", err.Error())
		return
	}

	out, err := s.renderer.Render(r.Context(), view, render.RenderOptions{
		Action:    r.URL.Path,
		Hidden:    render.MergeHiddenFields(nil, render.Hidden(render.ValuesInput, string(values))),
		Flash:     flashes,
		GateState: gate.StateIdle,
		Locale:    r.URL.Query().Get("locale"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "RENDER", err.Error())
		return
	}
	w.Header().Set("Content-Type", s.renderer.ContentType())
	w.WriteHeader(status)
	if _, err := w.Write(out); err != nil {
		log.Printf("write response: %v", err)
	}
}

func decodeValues(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var values map[string]any
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("decode %s: %w", render.ValuesInput, err)
	}
	return values, nil
}

// splitMember parses "group.index" into its parts.
func splitMember(target string) (string, int, error) {
	cut := strings.LastIndex(target, ".")
	if cut <= 0 {
		return "", 0, fmt.Errorf("%w: %q", engine.ErrIndexOutOfRange, target)
	}
	index, err := strconv.Atoi(target[cut+1:])
	if err != nil {
		return "", 0, fmt.Errorf("%w: %q", engine.ErrIndexOutOfRange, target)
	}
	return target[:cut], index, nil
}

func groupMessage(err error) string {
	switch {
	case errors.Is(err, engine.ErrMaxMembers):
		return MsgGroupLimit
	case errors.Is(err, engine.ErrMinMembers):
		return MsgGroupMinimum
	default:
		return err.Error()
	}
}

// flashNotifier collects engine and gate notices as page flashes.
type flashNotifier struct {
	items []render.Flash
}

func (f *flashNotifier) Success(message string) {
	f.items = render.MergeFlash(f.items, render.Flash{Kind: render.FlashSuccess, Message: message})
}

func (f *flashNotifier) Error(message string) {
	f.items = render.MergeFlash(f.items, render.Flash{Kind: render.FlashError, Message: message})
}
