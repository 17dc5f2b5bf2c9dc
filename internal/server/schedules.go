package server

import (
	"errors"
	"net/http"
	"sort"
	"time"

	"github.com/google/uuid"

	"menuboard/internal/engine"
	"menuboard/internal/model"
	"menuboard/internal/store"
)

type createScheduleRequest struct {
	PresetID    uuid.UUID `json:"preset_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	Recurrence  string    `json:"recurrence"`
}

type updateScheduleRequest struct {
	PresetID    *uuid.UUID `json:"preset_id"`
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
	Recurrence  *string    `json:"recurrence"`
}

type validateScheduleRequest struct {
	// ID is set when validating an edit of an existing schedule, so the
	// schedule does not conflict with itself.
	ID        *uuid.UUID `json:"id"`
	StartTime time.Time  `json:"start_time"`
	EndTime   time.Time  `json:"end_time"`
}

type validateScheduleResponse struct {
	Valid        bool       `json:"valid"`
	ConflictID   *uuid.UUID `json:"conflict_id,omitempty"`
	ConflictName string     `json:"conflict_name,omitempty"`
	Message      string     `json:"message,omitempty"`
}

func (s *Server) handleListSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.store.MenuSchedules.List()
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, schedules)
}

// handleUpcomingSchedules returns Pending schedules whose start time is
// still in the future, soonest first. The display board uses this for its
// "coming up" panel.
func (s *Server) handleUpcomingSchedules(w http.ResponseWriter, r *http.Request) {
	schedules, err := s.store.MenuSchedules.List()
	if err != nil {
		s.storeError(w, err)
		return
	}

	now := time.Now().UTC()
	upcoming := make([]model.MenuSchedule, 0)
	for _, sched := range schedules {
		if sched.Status == model.StatusPending && sched.StartTime.After(now) {
			upcoming = append(upcoming, sched)
		}
	}
	sort.Slice(upcoming, func(i, j int) bool {
		return upcoming[i].StartTime.Before(upcoming[j].StartTime)
	})
	s.writeJSON(w, http.StatusOK, upcoming)
}

func (s *Server) handleGetSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	sched, err := s.store.MenuSchedules.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	recurrence, err := model.ParseRecurrence(req.Recurrence)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !req.EndTime.After(req.StartTime) {
		s.writeError(w, http.StatusBadRequest, "end time must be after start time")
		return
	}
	if !s.checkPresetExists(w, req.PresetID) {
		return
	}

	now := time.Now().UTC()
	sched := model.MenuSchedule{
		ID:          uuid.New(),
		PresetID:    req.PresetID,
		Name:        req.Name,
		Description: req.Description,
		StartTime:   req.StartTime.UTC(),
		EndTime:     req.EndTime.UTC(),
		Recurrence:  recurrence,
		// New schedules always enter as Pending; the engine is the only
		// writer of the other statuses.
		Status:    model.StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.MenuSchedules.Insert(sched); err != nil {
		s.storeError(w, err)
		return
	}
	if sess, ok := sessionFrom(r.Context()); ok {
		s.log.Info("schedule created", "schedule", sched.ID, "name", sched.Name, "by", sess.Username)
	}
	s.writeJSON(w, http.StatusCreated, sched)
}

// handleUpdateSchedule edits a schedule and re-arms it: whatever state the
// engine had driven it to, an edited schedule goes back to Pending with
// its error cleared, and the next tick re-evaluates it.
func (s *Server) handleUpdateSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	var req updateScheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	sched, err := s.store.MenuSchedules.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			s.writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		sched.Name = *req.Name
	}
	if req.Description != nil {
		sched.Description = *req.Description
	}
	if req.Recurrence != nil {
		recurrence, err := model.ParseRecurrence(*req.Recurrence)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		sched.Recurrence = recurrence
	}
	if req.StartTime != nil {
		sched.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		sched.EndTime = req.EndTime.UTC()
	}
	if !sched.EndTime.After(sched.StartTime) {
		s.writeError(w, http.StatusBadRequest, "end time must be after start time")
		return
	}
	if req.PresetID != nil {
		if !s.checkPresetExists(w, *req.PresetID) {
			return
		}
		sched.PresetID = *req.PresetID
	}

	sched.Status = model.StatusPending
	sched.ErrorMessage = ""
	sched.UpdatedAt = time.Now().UTC()

	if err := s.store.MenuSchedules.Update(id, sched); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sched)
}

func (s *Server) handleDeleteSchedule(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	if err := s.store.MenuSchedules.Delete(id); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleValidateSchedule is a dry run of the engine's conflict check for a
// proposed time window. Nothing is persisted.
func (s *Server) handleValidateSchedule(w http.ResponseWriter, r *http.Request) {
	var req validateScheduleRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if !req.EndTime.After(req.StartTime) {
		s.writeError(w, http.StatusBadRequest, "end time must be after start time")
		return
	}

	schedules, err := s.store.MenuSchedules.List()
	if err != nil {
		s.storeError(w, err)
		return
	}

	probe := model.MenuSchedule{
		StartTime: req.StartTime.UTC(),
		EndTime:   req.EndTime.UTC(),
	}
	if req.ID != nil {
		probe.ID = *req.ID
	}

	conflict, found := engine.FindConflict(probe, time.Now().UTC(), schedules)
	if !found {
		s.writeJSON(w, http.StatusOK, validateScheduleResponse{Valid: true})
		return
	}
	s.writeJSON(w, http.StatusOK, validateScheduleResponse{
		Valid:        false,
		ConflictID:   &conflict.ID,
		ConflictName: conflict.Name,
		Message:      "time window overlaps an active or upcoming schedule",
	})
}

func (s *Server) checkPresetExists(w http.ResponseWriter, id uuid.UUID) bool {
	if _, err := s.store.MenuPresets.Get(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.writeError(w, http.StatusBadRequest, "preset "+id.String()+" does not exist")
		} else {
			s.storeError(w, err)
		}
		return false
	}
	return true
}
