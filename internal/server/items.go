package server

import (
	"net/http"

	"github.com/google/uuid"

	"menuboard/internal/model"
)

type createMenuItemRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Allergens   []string `json:"allergens"`
	IsAvailable bool     `json:"is_available"`
}

// updateMenuItemRequest uses pointer fields so absent keys leave the
// stored value alone. This is what lets the admin UI toggle availability
// without resending the whole item.
type updateMenuItemRequest struct {
	Name        *string   `json:"name"`
	Category    *string   `json:"category"`
	Description *string   `json:"description"`
	Allergens   *[]string `json:"allergens"`
	IsAvailable *bool     `json:"is_available"`
}

func (s *Server) handleListMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.MenuItems.List()
	if err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}

func (s *Server) handleCreateMenuItem(w http.ResponseWriter, r *http.Request) {
	var req createMenuItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if req.Name == "" {
		s.writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	category, err := model.ParseCategory(req.Category)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Allergens == nil {
		req.Allergens = []string{}
	}

	item := model.MenuItem{
		ID:          uuid.New(),
		Name:        req.Name,
		Category:    category,
		Description: req.Description,
		Allergens:   req.Allergens,
		IsAvailable: req.IsAvailable,
	}
	if err := s.store.MenuItems.Insert(item); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, item)
}

func (s *Server) handleUpdateMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	var req updateMenuItemRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}

	item, err := s.store.MenuItems.Get(id)
	if err != nil {
		s.storeError(w, err)
		return
	}

	if req.Name != nil {
		if *req.Name == "" {
			s.writeError(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		item.Name = *req.Name
	}
	if req.Category != nil {
		category, err := model.ParseCategory(*req.Category)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		item.Category = category
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Allergens != nil {
		item.Allergens = *req.Allergens
		if item.Allergens == nil {
			item.Allergens = []string{}
		}
	}
	if req.IsAvailable != nil {
		item.IsAvailable = *req.IsAvailable
	}

	if err := s.store.MenuItems.Update(id, item); err != nil {
		s.storeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleDeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	id, ok := s.urlID(w, r)
	if !ok {
		return
	}
	if err := s.store.MenuItems.Delete(id); err != nil {
		s.storeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
