package api

import (
	"errors"
	"net/http"

	"github.com/ooovooo/qrcard/card"
	"github.com/ooovooo/qrcard/skins"
)

// maxSkinUpload bounds the multipart body of a skin upload.
const maxSkinUpload = 20 << 20

func (s *Server) handleListSkins(w http.ResponseWriter, r *http.Request) {
	list, err := s.Skins.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleUploadSkin(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSkinUpload)
	if err := r.ParseMultipartForm(maxSkinUpload); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form: "+err.Error())
		return
	}

	id := r.FormValue("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "image is required")
		return
	}
	defer file.Close()

	skin, err := s.Skins.Save(id, file)
	switch {
	case errors.Is(err, skins.ErrInvalidID):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, card.ErrMissingSkin):
		writeError(w, http.StatusUnprocessableEntity, "image is not a decodable picture")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.Log.Info("skin saved", "id", skin.ID, "bytes", skin.Size)
	writeJSON(w, http.StatusCreated, skin)
}
