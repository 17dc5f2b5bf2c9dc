package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"menuboard/internal/model"
	"menuboard/internal/store"
)

type createPresetRequest struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	MenuItemIDs []uuid.UUID `json:"menu_item_ids"`
}

type updatePresetRequest struct {
	Name        *string      `json:"name"`
	Description *string      `json:"description"`
	MenuItemIDs *[]uuid.UUID `json:"menu_item_ids"`
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.store.MenuPresets.List()
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, presets)
}

func (s *Server) handleGetPreset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	preset, err := s.store.MenuPresets.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, preset)
}

func (s *Server) handleCreatePreset(w http.ResponseWriter, r *http.Request) {
	var req createPresetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.MenuItemIDs == nil {
		req.MenuItemIDs = []uuid.UUID{}
	}
	if !s.checkPresetItems(w, req.MenuItemIDs) {
		return
	}

	now := time.Now().UTC()
	preset := model.MenuPreset{
		ID:          uuid.New(),
		Name:        req.Name,
		Description: req.Description,
		MenuItemIDs: req.MenuItemIDs,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.MenuPresets.Insert(preset); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, preset)
}

func (s *Server) handleUpdatePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	var req updatePresetRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	preset, err := s.store.MenuPresets.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			s.writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		preset.Name = *req.Name
	}
	if req.Description != nil {
		preset.Description = *req.Description
	}
	if req.MenuItemIDs != nil {
		ids := *req.MenuItemIDs
		if ids == nil {
			ids = []uuid.UUID{}
		}
		if !s.checkPresetItems(w, ids) {
			return
		}
		preset.MenuItemIDs = ids
	}
	preset.UpdatedAt = time.Now().UTC()

	if err := s.store.MenuPresets.Update(id, preset); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, preset)
}

func (s *Server) handleDeletePreset(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	if err := s.store.MenuPresets.Delete(id); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// checkPresetItems verifies every referenced menu item exists. Writing the
// error response itself keeps the two preset handlers symmetric.
func (s *Server) checkPresetItems(w http.ResponseWriter, ids []uuid.UUID) bool {
	for _, itemID := range ids {
		if _, err := s.store.MenuItems.Get(itemID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				s.writeError(w, http.StatusBadRequest, fmt.Sprintf("menu item %s does not exist", itemID))
			} else {
				s.storeError(w, err)
			}
			return false
		}
	}
	return true
}
