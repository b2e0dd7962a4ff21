package api

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"image"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ooovooo/qrcard/card"
	"github.com/ooovooo/qrcard/notify"
	"github.com/ooovooo/qrcard/skins"
	"github.com/ooovooo/qrcard/store"
)

// Webhook delivery schedule for generated cards.
const (
	webhookAttempts = 3
	webhookBackoff  = 2 * time.Second
)

type createCardRequest struct {
	Payload string `json:"payload"`
	Skin    string `json:"skin"`
	Preview bool   `json:"preview"`
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Payload == "" || req.Skin == "" {
		writeError(w, http.StatusBadRequest, "payload and skin are required")
		return
	}

	skin, status, err := s.loadSkin(req.Skin)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	data, err := s.generator(req.Preview).RenderPNG(req.Payload, skin)
	if err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}

	id := uuid.NewString()
	outputPath := filepath.Join(s.CardsDir, id+".png")
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store card: "+err.Error())
		return
	}

	sum := sha256.Sum256(data)
	size := s.Generator.Options().Size
	rec := &store.CardRecord{
		ID:         id,
		Payload:    req.Payload,
		Skin:       req.Skin,
		OutputPath: outputPath,
		Preview:    req.Preview,
		Width:      size,
		Height:     size,
		Checksum:   hex.EncodeToString(sum[:]),
		CreatedAt:  time.Now().Unix(),
	}
	if err := s.Store.SaveCard(rec); err != nil {
		os.Remove(outputPath)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Log.Info("card generated", "id", id, "skin", req.Skin, "preview", req.Preview)
	s.notify(r.Context(), rec)

	writeJSON(w, http.StatusCreated, rec)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	payload := r.URL.Query().Get("payload")
	skinID := r.URL.Query().Get("skin")
	if payload == "" || skinID == "" {
		writeError(w, http.StatusBadRequest, "payload and skin query parameters are required")
		return
	}

	skin, status, err := s.loadSkin(skinID)
	if err != nil {
		writeError(w, status, err.Error())
		return
	}

	data, err := s.generator(true).RenderPNG(payload, skin)
	if err != nil {
		writeError(w, renderStatus(err), err.Error())
		return
	}
	writePNG(w, data)
}

func (s *Server) handleListCards(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	cards, err := s.Store.ListCards(limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if cards == nil {
		cards = []store.CardRecord{}
	}

	writeJSON(w, http.StatusOK, cards)
}

func (s *Server) handleGetCard(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleGetCardImage(w http.ResponseWriter, r *http.Request) {
	rec, ok := s.lookupCard(w, r)
	if !ok {
		return
	}
	data, err := os.ReadFile(rec.OutputPath)
	if err != nil {
		if os.IsNotExist(err) {
			writeError(w, http.StatusNotFound, "card image no longer exists")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writePNG(w, data)
}

// --- helpers ----------------------------------------------------------------

func (s *Server) generator(preview bool) *card.Generator {
	if preview {
		return s.Generator.WithWatermark(s.Watermark)
	}
	return s.Generator
}

// loadSkin resolves a skin ID and decodes it, returning the HTTP status to
// use on failure.
func (s *Server) loadSkin(id string) (image.Image, int, error) {
	path, err := s.Skins.Path(id)
	switch {
	case errors.Is(err, skins.ErrInvalidID):
		return nil, http.StatusBadRequest, err
	case errors.Is(err, skins.ErrNotFound):
		return nil, http.StatusNotFound, err
	case err != nil:
		return nil, http.StatusInternalServerError, err
	}

	skin, err := card.LoadSkin(path)
	if err != nil {
		return nil, http.StatusNotFound, err
	}
	return skin, http.StatusOK, nil
}

func (s *Server) lookupCard(w http.ResponseWriter, r *http.Request) (*store.CardRecord, bool) {
	id := chi.URLParam(r, "id")
	if _, err := uuid.Parse(id); err != nil {
		writeError(w, http.StatusBadRequest, "invalid card id")
		return nil, false
	}

	rec, err := s.Store.GetCard(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, err.Error())
			return nil, false
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return nil, false
	}
	return rec, true
}

// notify delivers the card webhook in the background.
func (s *Server) notify(ctx context.Context, rec *store.CardRecord) {
	if s.Webhook == nil || !s.Webhook.Enabled() {
		return
	}
	event := &notify.CardEvent{
		Event:     notify.EventCardGenerated,
		ID:        rec.ID,
		Payload:   rec.Payload,
		Skin:      rec.Skin,
		Preview:   rec.Preview,
		Checksum:  rec.Checksum,
		Timestamp: rec.CreatedAt,
	}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := s.Webhook.SendWithRetry(ctx, event, webhookAttempts, webhookBackoff); err != nil {
			s.Log.Warn("card webhook failed", "id", rec.ID, "error", err)
		}
	}()
}

func renderStatus(err error) int {
	if errors.Is(err, card.ErrEmptyPayload) || errors.Is(err, card.ErrPayloadTooLarge) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func queryInt(r *http.Request, key string, defaultVal int) int {
	v := r.URL.Query().Get(key)
	if v == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return defaultVal
	}
	return n
}
