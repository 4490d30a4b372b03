package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/pawsitive-dev/shelter-manager/backend/internal/domain"
	"github.com/pawsitive-dev/shelter-manager/backend/internal/utils"
)

func (h *Handler) GetAnimalExaminations(w http.ResponseWriter, r *http.Request) {
	animal := r.Context().Value(AnimalCtx).(*domain.Animal)

	exams, err := h.repository.GetMedicalExaminationsByAnimalID(animal.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched the examination history.", exams)
}

func (h *Handler) CreateExamination(w http.ResponseWriter, r *http.Request) {
	animal := r.Context().Value(AnimalCtx).(*domain.Animal)
	myInfo := r.Context().Value(MyInfoCtx).(*domain.User)

	var req struct {
		ExaminedAt string `json:"examinedAt" validate:"required,datetime=2006-01-02"`
		Diagnosis  string `json:"diagnosis" validate:"required"`
		Notes      string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	examinedAt, _ := time.Parse(dateLayout, req.ExaminedAt)

	exam := &domain.MedicalExamination{
		AnimalID:   animal.ID,
		VetID:      myInfo.ID,
		ExaminedAt: examinedAt,
		Diagnosis:  req.Diagnosis,
		Notes:      req.Notes,
	}

	if err := h.repository.CreateMedicalExamination(exam); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.createdResponse(w, r, "Examination recorded.", exam)
}

func (h *Handler) UpdateExamination(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Diagnosis *string `json:"diagnosis"`
		Notes     *string `json:"notes"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	exam := r.Context().Value(ExaminationCtx).(*domain.MedicalExamination)

	if req.Diagnosis != nil {
		exam.Diagnosis = *req.Diagnosis
	}
	if req.Notes != nil {
		exam.Notes = *req.Notes
	}

	if err := h.repository.UpdateMedicalExamination(exam); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Failed to update the examination, please try again.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Examination updated.", exam)
}

func (h *Handler) DeleteExamination(w http.ResponseWriter, r *http.Request) {
	exam := r.Context().Value(ExaminationCtx).(*domain.MedicalExamination)

	if err := h.repository.DeleteMedicalExamination(exam.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Examination deleted.", nil)
}

func (h *Handler) GetAnimalMedications(w http.ResponseWriter, r *http.Request) {
	animal := r.Context().Value(AnimalCtx).(*domain.Animal)

	schedules, err := h.repository.GetMedicationSchedulesByAnimalID(animal.ID)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Fetched the medication schedules.", schedules)
}

func (h *Handler) CreateMedication(w http.ResponseWriter, r *http.Request) {
	animal := r.Context().Value(AnimalCtx).(*domain.Animal)

	var req struct {
		Name         string `json:"name" validate:"required"`
		Dosage       string `json:"dosage" validate:"required"`
		Instructions string `json:"instructions"`
		StartDate    string `json:"startDate" validate:"required,datetime=2006-01-02"`
		EndDate      string `json:"endDate" validate:"required,datetime=2006-01-02"`
		TimesPerDay  int32  `json:"timesPerDay" validate:"required,min=1,max=24"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	startDate, _ := time.Parse(dateLayout, req.StartDate)
	endDate, _ := time.Parse(dateLayout, req.EndDate)

	ms := &domain.MedicationSchedule{
		AnimalID:     animal.ID,
		Name:         req.Name,
		Dosage:       req.Dosage,
		Instructions: req.Instructions,
		StartDate:    startDate,
		EndDate:      endDate,
		TimesPerDay:  req.TimesPerDay,
	}

	if err := utils.ValidateMedicationSchedule(ms); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.CreateMedicationSchedule(ms); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.createdResponse(w, r, "Medication schedule created.", ms)
}

func (h *Handler) UpdateMedication(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Dosage       *string `json:"dosage"`
		Instructions *string `json:"instructions"`
		EndDate      *string `json:"endDate" validate:"omitempty,datetime=2006-01-02"`
		TimesPerDay  *int32  `json:"timesPerDay" validate:"omitempty,min=1,max=24"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	ms := r.Context().Value(MedicationCtx).(*domain.MedicationSchedule)

	if req.Dosage != nil {
		ms.Dosage = *req.Dosage
	}
	if req.Instructions != nil {
		ms.Instructions = *req.Instructions
	}
	if req.EndDate != nil {
		endDate, _ := time.Parse(dateLayout, *req.EndDate)
		ms.EndDate = endDate
	}
	if req.TimesPerDay != nil {
		ms.TimesPerDay = *req.TimesPerDay
	}

	if err := utils.ValidateMedicationSchedule(ms); err != nil {
		h.errorResponse(w, r, err.Error())
		return
	}

	if err := h.repository.UpdateMedicationSchedule(ms); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			h.errorResponse(w, r, "Failed to update the medication schedule, please try again.")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "Medication schedule updated.", ms)
}

func (h *Handler) DeleteMedication(w http.ResponseWriter, r *http.Request) {
	ms := r.Context().Value(MedicationCtx).(*domain.MedicationSchedule)

	if err := h.repository.DeleteMedicationSchedule(ms.ID); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "Medication schedule deleted.", nil)
}
