package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sandeepkv93/product-catalog-service/internal/http/response"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
	"github.com/sandeepkv93/product-catalog-service/internal/service"
)

type CategoryHandler struct {
	svc service.CategoryService
}

func NewCategoryHandler(svc service.CategoryService) *CategoryHandler {
	return &CategoryHandler{svc: svc}
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	payload, err := h.svc.ListPayload(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list categories", nil)
		return
	}
	writeCachedList(w, r, payload, h.svc.ListTTL())
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBodyDecodeError(w, r, err)
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateCategoryInput{Title: body.Title})
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", ve.Fields)
			return
		}
		if isConflictError(err) {
			response.Error(w, r, http.StatusConflict, "CONFLICT", "category already exists", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create category", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.category.create",
		TargetType: "category",
		TargetID:   strconv.FormatUint(uint64(created.ID), 10),
		Action:     "create",
		Outcome:    "success",
		Reason:     "category_created",
	}, "title", created.Title)
	response.JSON(w, r, http.StatusCreated, created)
}
