package handler

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/sandeepkv93/product-catalog-service/internal/http/response"
	"github.com/sandeepkv93/product-catalog-service/internal/observability"
	"github.com/sandeepkv93/product-catalog-service/internal/service"
)

// multipartMemoryLimit caps the in-memory portion of a multipart parse; larger
// file parts spill to temp files.
const multipartMemoryLimit = 10 << 20

type ProductHandler struct {
	svc service.ProductService
}

func NewProductHandler(svc service.ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	query, err := parseProductListQuery(r)
	if err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", err.Error(), nil)
		return
	}
	observability.RecordListPageSize(r.Context(), "product-list", query.PageSize)

	payload, err := h.svc.ListPayload(r.Context(), query)
	if err != nil {
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to list products", nil)
		return
	}
	writeCachedList(w, r, payload, h.svc.ListTTL())
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	var (
		input    service.CreateProductInput
		shapeErr *service.ValidationError
		ok       bool
	)
	if mediaType == "multipart/form-data" {
		var cleanup func()
		input, cleanup, shapeErr, ok = decodeProductMultipart(w, r)
		if !ok {
			return
		}
		defer cleanup()
	} else {
		input, shapeErr, ok = decodeProductJSON(w, r)
		if !ok {
			return
		}
	}
	if shapeErr.HasErrors() {
		response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", shapeErr.Fields)
		return
	}

	created, err := h.svc.Create(r.Context(), input)
	if err != nil {
		if ve, isValidation := service.AsValidationError(err); isValidation {
			response.Error(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "validation failed", ve.Fields)
			return
		}
		if errors.Is(err, service.ErrStorageDisabled) {
			response.Error(w, r, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "image storage is not available", nil)
			return
		}
		if isConflictError(err) {
			response.Error(w, r, http.StatusConflict, "CONFLICT", "product already exists", nil)
			return
		}
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "failed to create product", nil)
		return
	}

	observability.EmitAudit(r, observability.AuditInput{
		EventName:  "catalog.product.create",
		TargetType: "product",
		TargetID:   created.UUID,
		Action:     "create",
		Outcome:    "success",
		Reason:     "product_created",
	}, "title", created.Title, "images", len(created.Images))
	response.JSON(w, r, http.StatusCreated, created)
}

func decodeProductJSON(w http.ResponseWriter, r *http.Request) (service.CreateProductInput, *service.ValidationError, bool) {
	var body struct {
		Title        string     `json:"title"`
		Description  string     `json:"description"`
		Price        jsonString `json:"price"`
		Category     jsonUint   `json:"category"`
		TypesProduct jsonUint   `json:"types_product"`
		IsActive     jsonBool   `json:"is_active"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeBodyDecodeError(w, r, err)
		return service.CreateProductInput{}, nil, false
	}

	shapeErr := service.NewValidationError()
	if body.Price.invalid {
		shapeErr.Add("price", msgValidNumber)
	}
	if body.Category.invalid {
		shapeErr.Add("category", msgValidInteger)
	}
	if body.TypesProduct.invalid {
		shapeErr.Add("types_product", msgValidInteger)
	}
	if body.IsActive.invalid {
		shapeErr.Add("is_active", msgValidBoolean)
	}

	return service.CreateProductInput{
		Title:         body.Title,
		Description:   body.Description,
		Price:         body.Price.value,
		CategoryID:    body.Category.value,
		ProductTypeID: body.TypesProduct.value,
		IsActive:      body.IsActive.value,
	}, shapeErr, true
}

func decodeProductMultipart(w http.ResponseWriter, r *http.Request) (service.CreateProductInput, func(), *service.ValidationError, bool) {
	noop := func() {}
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		writeBodyDecodeError(w, r, err)
		return service.CreateProductInput{}, noop, nil, false
	}

	shapeErr := service.NewValidationError()
	input := service.CreateProductInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Price:       r.FormValue("price"),
	}
	input.CategoryID = formUint(r, "category", shapeErr)
	input.ProductTypeID = formUint(r, "types_product", shapeErr)
	if raw := strings.TrimSpace(r.FormValue("is_active")); raw != "" {
		parsed, err := strconv.ParseBool(strings.ToLower(raw))
		if err != nil {
			shapeErr.Add("is_active", msgValidBoolean)
		} else {
			input.IsActive = parsed
		}
	}

	var opened []io.Closer
	cleanup := func() {
		for _, f := range opened {
			_ = f.Close()
		}
	}
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["images"] {
			file, err := header.Open()
			if err != nil {
				cleanup()
				response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "unreadable image part", nil)
				return service.CreateProductInput{}, noop, nil, false
			}
			opened = append(opened, file)
			input.Images = append(input.Images, service.ImageUpload{
				Filename: header.Filename,
				Size:     header.Size,
				Reader:   file,
			})
		}
	}
	return input, cleanup, shapeErr, true
}

func formUint(r *http.Request, field string, ve *service.ValidationError) uint {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		ve.Add(field, msgValidInteger)
		return 0
	}
	return uint(v)
}

// writeBodyDecodeError distinguishes an oversized body, which the body-limit
// middleware surfaces as MaxBytesError mid-read, from a malformed one.
func writeBodyDecodeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		response.Error(w, r, http.StatusRequestEntityTooLarge, "BAD_REQUEST", "request body too large", nil)
		return
	}
	response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "invalid payload", nil)
}
