package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/sandeepkv93/product-catalog-service/internal/http/response"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
	"github.com/sandeepkv93/product-catalog-service/internal/service"
)

type ProductTypeHandler struct {
	svc service.ProductTypeService
}

func NewProductTypeHandler(svc service.ProductTypeService) *ProductTypeHandler {
	return &ProductTypeHandler{svc: svc}
}

func (h *ProductTypeHandler) List(w http.ResponseWriter, r *http.Request) {
	payload, err := h.svc.ListPayload(r.Context())
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list product types", nil)
		return
	}
	writeCachedList(w, r, payload, h.svc.ListTTL())
}

func (h *ProductTypeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		Category    jsonUint `json:"category"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBodyDecodeError(w, r, err)
		return
	}
	if body.Category.invalid {
		ve := service.NewValidationError()
		ve.Add("category", msgValidInteger)
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", ve.Fields)
		return
	}

	created, err := h.svc.Create(r.Context(), service.CreateProductTypeInput{
		Title:       body.Title,
		Description: body.Description,
		CategoryID:  body.Category.value,
	})
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", ve.Fields)
			return
		}
		if isConflictError(err) {
			response.Error(w, r, http.StatusConflict, "CONFLICT", "product type already exists", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create product type", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.type.create",
		TargetType: "product_type",
		TargetID:   strconv.FormatUint(uint64(created.ID), 10),
		Action:     "create",
		Outcome:    "success",
		Reason:     "product_type_created",
	}, "title", created.Title, "category_id", created.Category)
	response.JSON(w, r, http.StatusCreated, created)
}
