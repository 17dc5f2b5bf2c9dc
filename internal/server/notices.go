package server

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"menuboard/internal/model"
)

type createNoticeRequest struct {
	Title    string `json:"title"`
	Content  string `json:"content"`
	IsActive bool   `json:"is_active"`
}

type updateNoticeRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	IsActive *bool   `json:"is_active"`
}

func (s *Server) handleListNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := s.store.Notices.List()
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, notices)
}

func (s *Server) handleCreateNotice(w http.ResponseWriter, r *http.Request) {
	var req createNoticeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Title == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	now := time.Now().UTC()
	notice := model.Notice{
		ID:        uuid.New(),
		Title:     req.Title,
		Content:   req.Content,
		IsActive:  req.IsActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Notices.Insert(notice); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, notice)
}

func (s *Server) handleUpdateNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	var req updateNoticeRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	notice, err := s.store.Notices.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if req.Title != nil {
		if *req.Title == "" {
			s.writeError(w, http.StatusBadRequest, "title cannot be empty")
			return
		}
		notice.Title = *req.Title
	}
	if req.Content != nil {
		notice.Content = *req.Content
	}
	if req.IsActive != nil {
		notice.IsActive = *req.IsActive
	}
	notice.UpdatedAt = time.Now().UTC()

	if err := s.store.Notices.Update(id, notice); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, notice)
}

func (s *Server) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	if err := s.store.Notices.Delete(id); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
