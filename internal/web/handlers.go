package web

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"dhcpconsole/internal/controller"
	"dhcpconsole/internal/reconcile"
	"dhcpconsole/internal/tags"
	"dhcpconsole/pkg/models"
	"dhcpconsole/pkg/utils"
)

// response is the envelope every API reply uses
type response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// StatusReport describes the refresh state of the console
type StatusReport struct {
	Active      bool                                             `json:"active"`
	LastUpdated *time.Time                                       `json:"lastUpdated,omitempty"`
	Resources   map[controller.Resource]controller.ResourceState `json:"resources"`
	Clients     int                                              `json:"clients"`
}

// ApplyRequest is the body of a tag assignment
type ApplyRequest struct {
	Tag  string `json:"tag"`
	Name string `json:"name"`
}

// VisibilityRequest is the body of a visibility change
type VisibilityRequest struct {
	Visible bool `json:"visible"`
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func writeData(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, response{Success: true, Data: data})
}

func writeMessage(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, response{Success: true, Data: data, Message: message})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, response{Success: false, Error: message})
}

// writeFailure maps an operation error to its status code
func writeFailure(w http.ResponseWriter, err error) {
	writeError(w, statusFor(err), utils.Message(err, models.DefaultRequestError))
}

func statusFor(err error) int {
	var verr *models.ValidationError
	var rerr *models.RequestError
	var perr *models.PartialRefreshError

	switch {
	case errors.As(err, &verr), errors.Is(err, models.ErrNotConfirmed):
		return http.StatusBadRequest
	case errors.As(err, &rerr), errors.As(err, &perr):
		return http.StatusBadGateway
	case utils.IsAny(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON or form-encoded body into v. Form bodies are read
// through fromForm.
func decode(r *http.Request, v any, fromForm func(get func(string) string)) error {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return json.NewDecoder(r.Body).Decode(v)
	}
	if err := r.ParseForm(); err != nil {
		return err
	}
	fromForm(r.PostForm.Get)
	return nil
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.ctrl.View())
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	kind := models.SourceKind(query.Get("type"))
	if kind != "" && !kind.Valid() {
		writeError(w, http.StatusBadRequest, "Invalid device type "+strconv.Quote(string(kind)))
		return
	}

	writeData(w, reconcile.Filter(s.ctrl.View().Devices, query.Get("search"), kind))
}

func (s *Server) handleTags(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.ctrl.View().Tags)
}

func (s *Server) handleLeases(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.ctrl.View().Leases)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeData(w, s.ctrl.View().Stats)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	report := StatusReport{
		Active:    s.ctrl.Active(),
		Resources: s.ctrl.States(),
	}
	if t := s.ctrl.LastUpdated(); !t.IsZero() {
		report.LastUpdated = &t
	}
	if s.hub != nil {
		report.Clients = s.hub.ClientCount()
	}
	writeData(w, report)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if s.center == nil {
		writeData(w, []models.Notification{})
		return
	}
	writeData(w, s.center.Recent())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.LoadAll(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Data refreshed", s.ctrl.View())
}

func (s *Server) handleRefreshDevices(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.LoadDevices(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, s.ctrl.View().Devices)
}

func (s *Server) handleDiscover(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.Discover(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Device discovery completed", s.ctrl.View().Devices)
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	if err := s.ctrl.LoadOverview(r.Context()); err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, s.ctrl.View())
}

func (s *Server) handleCreateTag(w http.ResponseWriter, r *http.Request) {
	var in tags.Input
	err := decode(r, &in, func(get func(string) string) {
		in = tags.Input{
			Name:        get("name"),
			Gateway:     get("gateway"),
			DNS:         get("dns"),
			Description: get("description"),
		}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	tag, err := s.ctrl.CreateTag(r.Context(), in)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeMessage(w, http.StatusCreated, "Tag "+strconv.Quote(tag.Name)+" created successfully", tag)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))

	if err := s.ctrl.DeleteTag(r.Context(), name, controller.Answer(confirmed)); err != nil {
		writeFailure(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tag "+strconv.Quote(name)+" deleted successfully", nil)
}

func (s *Server) handleApplyTag(w http.ResponseWriter, r *http.Request) {
	mac := mux.Vars(r)["mac"]

	var req ApplyRequest
	err := decode(r, &req, func(get func(string) string) {
		req = ApplyRequest{Tag: get("tag"), Name: get("name")}
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ctrl.ApplyTag(r.Context(), mac, req.Tag, req.Name); err != nil {
		writeFailure(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Tag "+strconv.Quote(req.Tag)+" applied to device successfully", nil)
}

func (s *Server) handleVisibility(w http.ResponseWriter, r *http.Request) {
	var req VisibilityRequest
	err := decode(r, &req, func(get func(string) string) {
		req.Visible, _ = strconv.ParseBool(get("visible"))
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := s.ctrl.SetActive(r.Context(), req.Visible); err != nil {
		writeFailure(w, err)
		return
	}
	writeData(w, VisibilityRequest{Visible: s.ctrl.Active()})
}
