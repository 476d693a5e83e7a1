package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tidekv/engine/internal/api/validation"
	"github.com/tidekv/engine/internal/logger"
	"github.com/tidekv/engine/internal/storage"
	"github.com/tidekv/engine/internal/storage/kv"
)

// Response bodies of the key routes
const (
	MsgQueuedForAddition = "Key queued for addition"
	MsgQueuedForRemoval  = "Key queued for removal"
	MsgKeyNotFound       = "Key not found"
)

// KVOptions configures the key handlers
type KVOptions struct {
	// MaxValueSize bounds the request body in bytes (0 = validation.MaxValueSize)
	MaxValueSize int
	// Schema validates inserted values (nil = accept any JSON)
	Schema *validation.ValueSchema
}

// KVHandlers provides HTTP handlers for KV store operations
type KVHandlers struct {
	store        storage.KVStore
	schema       *validation.ValueSchema
	maxValueSize int
	log          zerolog.Logger
}

// NewKVHandlers creates new KV handlers
func NewKVHandlers(store storage.KVStore, opts KVOptions) *KVHandlers {
	maxValueSize := opts.MaxValueSize
	if maxValueSize <= 0 {
		maxValueSize = validation.MaxValueSize
	}
	return &KVHandlers{
		store:        store,
		schema:       opts.Schema,
		maxValueSize: maxValueSize,
		log:          logger.WithComponent("http.kv"),
	}
}

// Get handles GET /{key}. The stored data is returned as a JSON string.
func (h *KVHandlers) Get(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := validation.ValidateKey(key); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	data, ok := h.store.Get(r.Context(), key)
	if !ok {
		writeText(w, http.StatusNotFound, MsgKeyNotFound)
		return
	}

	body, err := json.Marshal(data)
	if err != nil {
		h.log.Error().Err(err).Str("key", key).Msg("Failed to encode value")
		writeText(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Insert handles POST /{key} and POST /{key}/{ttl}, ttl in milliseconds
func (h *KVHandlers) Insert(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := validation.ValidateKey(key); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	var ttl *int64
	if raw := r.PathValue("ttl"); raw != "" {
		parsed, err := validation.ParseTTL(raw)
		if err != nil {
			writeText(w, http.StatusBadRequest, err.Error())
			return
		}
		ttl = &parsed
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, int64(h.maxValueSize)))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeText(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("value exceeds maximum size (%d bytes)", tooLarge.Limit))
			return
		}
		writeText(w, http.StatusBadRequest, "failed to read request body: "+err.Error())
		return
	}

	doc, canonical, err := validation.DecodeValue(body)
	if err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.schema.Validate(doc); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Insert(r.Context(), key, canonical, ttl); err != nil {
		h.writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, MsgQueuedForAddition)
}

// Delete handles DELETE /{key}
func (h *KVHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	if err := validation.ValidateKey(key); err != nil {
		writeText(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Delete(r.Context(), key); err != nil {
		h.writeError(w, err)
		return
	}

	writeText(w, http.StatusOK, MsgQueuedForRemoval)
}

// writeError maps store errors to status codes
func (h *KVHandlers) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, kv.ErrAlreadyPresent):
		writeText(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, kv.ErrNotFound):
		writeText(w, http.StatusNotFound, err.Error())
	default:
		h.log.Error().Err(err).Msg("Store operation failed")
		writeText(w, http.StatusInternalServerError, err.Error())
	}
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	io.WriteString(w, msg)
}
