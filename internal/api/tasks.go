package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"treetodo/pkg/task"
)

const maxBodyBytes = 1 << 20

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.DefaultFilter()
	f.Priority = q.Get("priority")
	if v, err := strconv.ParseBool(q.Get("includeCompleted")); err == nil {
		f.IncludeCompleted = v
	}
	tasks, err := s.tasks.ListRoots(r.Context(), f)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.Get(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, t)
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var in task.CreateInput
	if !decodeBody(w, r, &in) {
		return
	}
	if err := in.Validate(); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if in.ParentID != nil {
		ok, err := s.tasks.Exists(r.Context(), *in.ParentID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		if !ok {
			writeError(w, http.StatusBadRequest, "Parent task not found")
			return
		}
	}
	t, err := s.tasks.Create(r.Context(), in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/tasks/"+strconv.FormatInt(t.ID, 10))
	writeOK(w, http.StatusCreated, t)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in task.UpdateInput
	if !decodeBody(w, r, &in) {
		return
	}
	t, err := s.tasks.Update(r.Context(), id, in)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, t)
}

func (s *Server) handleTaskToggle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	t, err := s.tasks.Toggle(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeOK(w, http.StatusOK, t)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	exists, err := s.tasks.Exists(r.Context(), id)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	if !exists {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	if err := s.tasks.Delete(r.Context(), id); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return 0, false
	}
	return id, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}
