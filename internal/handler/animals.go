package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/suggest"
)

const dateLayout = "2006-01-02"

func (h *Handler) GetAllAnimals(w http.ResponseWriter, r *http.Request) {
	animals, err := h.repository.GetAllAnimals()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched the animal list.", animals)
}

func (h *Handler) GetAnimal(w http.ResponseWriter, r *http.Request) {
	animal := r.Context().Value(AnimalCtx).(*domain.Animal)
	h.successResponse(w, r, "Fetched the animal.", animal)
}

func (h *Handler) CreateAnimal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name" validate:"required"`
		Species     string `json:"species" validate:"required"`
		Breed       string `json:"breed"`
		Sex         string `json:"sex" validate:"required,oneof=male female unknown"`
		BirthDate   string `json:"birthDate" validate:"required,datetime=2006-01-02"`
		IntakeDate  string `json:"intakeDate" validate:"required,datetime=2006-01-02"`
		Description string `json:"description"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	birthDate, _ := time.Parse(dateLayout, req.BirthDate)
	intakeDate, _ := time.Parse(dateLayout, req.IntakeDate)

	animal := &domain.Animal{
		Name:        req.Name,
		Species:     req.Species,
		Breed:       req.Breed,
		Sex:         req.Sex,
		BirthDate:   birthDate,
		IntakeDate:  intakeDate,
		Description: req.Description,
	}

	if err := h.repository.CreateAnimal(animal); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.createdResponse(w, r, "Animal created.", animal)
}

func (h *Handler) UpdateAnimal(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        *string `json:"name"`
		Breed       *string `json:"breed"`
		Description *string `json:"description"`
		Adopted     *bool   `json:"adopted"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	animal := r.Context().Value(AnimalCtx).(*domain.Animal)

	if req.Name != nil {
		animal.Name = *req.Name
	}
	if req.Breed != nil {
		animal.Breed = *req.Breed
	}
	if req.Description != nil {
		animal.Description = *req.Description
	}
	if req.Adopted != nil {
		animal.Adopted = *req.Adopted
	}

	if err := h.repository.UpdateAnimal(animal); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Failed to update the animal, please try again.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Animal updated.", animal)
}

func (h *Handler) DeleteAnimal(w http.ResponseWriter, r *http.Request) {
	animal := r.Context().Value(AnimalCtx).(*domain.Animal)

	if err := h.repository.DeleteAnimal(animal.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Animal deleted.", nil)
}

func (h *Handler) GetAnimalSuggestions(w http.ResponseWriter, r *http.Request) {
	animals, err := h.repository.GetAllAnimals()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	walkStats, err := h.repository.GetAnimalWalkStats()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	stats := make(map[int64]suggest.Stats, len(walkStats))
	for animalID, ws := range walkStats {
		stats[animalID] = suggest.Stats{
			ActiveReservations: int(ws.ActiveReservations),
			LastCompletedWalk:  ws.LastCompletedWalk,
		}
	}

	suggestions := suggest.Rank(animals, stats, suggest.DefaultParameters(), time.Now())

	h.successResponse(w, r, "Fetched walk suggestions.", suggestions)
}
