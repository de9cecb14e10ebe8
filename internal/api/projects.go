package api

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sadopc/routinr/internal/project"
	"github.com/sadopc/routinr/internal/store"
)

const defaultHistoryLimit = 5

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	opts := project.ListOptions{
		Page:   page,
		Limit:  limit,
		Search: q.Get("search"),
		Tags:   project.ParseTags(q.Get("tags")),
	}

	res, err := s.store.ListProjects(userFrom(r).ID, opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Projects fetched", res)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var in project.Input
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := project.ValidateCreate(in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.store.CreateProject(userFrom(r).ID, in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Project created", p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	var in project.Input
	if err := decode(r, &in); err != nil {
		s.fail(w, r, err)
		return
	}
	in, err := project.ValidatePatch(in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	p, err := s.store.UpdateProject(userFrom(r).ID, mux.Vars(r)["id"], in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Project updated", p)
}

func (s *Server) handleArchiveProject(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ArchiveProject(userFrom(r).ID, mux.Vars(r)["id"]); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Project archived", nil)
}

func (s *Server) handleStartTracking(w http.ResponseWriter, r *http.Request) {
	e, err := s.store.StartEntry(userFrom(r).ID, mux.Vars(r)["id"])
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, "Tracking started", e)
}

func (s *Server) handleStopTracking(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := decode(r, &body); err != nil {
		s.fail(w, r, err)
		return
	}
	title, err := project.ValidateTitle(body.Title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	e, err := s.store.StopEntry(userFrom(r).ID, mux.Vars(r)["id"], title)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "Tracking stopped", e)
}

func (s *Server) handleProjectHistory(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = defaultHistoryLimit
	}

	entries, err := s.store.ListEntries(userFrom(r).ID, store.EntryFilter{ProjectID: id, Limit: limit})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	total, err := s.store.TotalTracked(id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, "History fetched", project.History{Entries: entries, TotalSeconds: total})
}
