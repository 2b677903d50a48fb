package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/product-catalog-service/internal/http/response"
	"github.com/sandeepkv93/product-catalog-service/internal/repository"
	"github.com/sandeepkv93/product-catalog-service/internal/service"
)

func parsePageRequest(r *http.Request) (repository.PageRequest, error) {
	page := repository.DefaultPage
	pageSize := repository.DefaultPageSize
	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page must be a positive integer")
		}
		page = v
	}
	if raw := strings.TrimSpace(r.URL.Query().Get("page_size")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			return repository.PageRequest{}, errors.New("page_size must be a positive integer")
		}
		if v > repository.MaxPageSize {
			return repository.PageRequest{}, fmt.Errorf("page_size must be <= %d", repository.MaxPageSize)
		}
		pageSize = v
	}
	return repository.PageRequest{Page: page, PageSize: pageSize}, nil
}

func parseProductListQuery(r *http.Request) (repository.ProductListQuery, error) {
	pageReq, err := parsePageRequest(r)
	if err != nil {
		return repository.ProductListQuery{}, err
	}
	query := repository.ProductListQuery{PageRequest: pageReq}
	if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil || v < 1 {
			return repository.ProductListQuery{}, errors.New("category must be a positive integer")
		}
		query.CategoryID = uint(v)
	}
	return query, nil
}

func isConflictError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// writeCachedList serves a pre-serialized list payload with conditional-request
// support. The ETag is derived from the payload bytes so every instance serving
// the same cached snapshot emits the same validator.
func writeCachedList(w http.ResponseWriter, r *http.Request, payload service.ListPayload, ttl time.Duration) {
	etag := listETag(payload.Data)
	w.Header().Set("ETag", etag)
	if ttl > 0 {
		w.Header().Set("Cache-Control", fmt.Sprintf("public, max-age=%d", int(ttl.Seconds())))
	}
	if payload.FromCache {
		w.Header().Set("X-Cache", "HIT")
		w.Header().Set("Age", strconv.Itoa(int(payload.Age.Seconds())))
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	response.JSON(w, r, http.StatusOK, json.RawMessage(payload.Data))
}

func listETag(data []byte) string {
	sum := sha256.Sum256(data)
	return `"` + hex.EncodeToString(sum[:]) + `"`
}

func etagMatches(header, etag string) bool {
	if header == "" {
		return false
	}
	for _, candidate := range strings.Split(header, ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "*" {
			return true
		}
		if strings.TrimPrefix(candidate, "W/") == etag {
			return true
		}
	}
	return false
}
