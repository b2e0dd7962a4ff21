// Package skins manages the directory of skin images that cards are drawn
// under. A skin is addressed by its ID, the file name without extension.
package skins

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/ooovooo/qrcard/card"
)

var (
	// ErrNotFound is returned when no skin with the given ID exists.
	ErrNotFound = errors.New("skin not found")
	// ErrInvalidID is returned for IDs outside [A-Za-z0-9_-].
	ErrInvalidID = errors.New("invalid skin id")
)

var validID = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// extensions in lookup order.
var extensions = []string{".png", ".webp", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff"}

// Skin describes one skin file.
type Skin struct {
	ID       string    `json:"id"`
	File     string    `json:"file"`
	Size     int64     `json:"size"`
	Modified time.Time `json:"modified"`
}

// Library is a directory of skin images.
type Library struct {
	dir string
}

// NewLibrary returns a Library rooted at dir. The directory is not required
// to exist until a skin is saved.
func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

// Dir returns the library directory.
func (l *Library) Dir() string { return l.dir }

// List returns all skins sorted by ID. A missing directory yields an empty
// list. When two files share an ID, the one earlier in the lookup order wins.
func (l *Library) List() ([]Skin, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Skin{}, nil
		}
		return nil, fmt.Errorf("read skins dir: %w", err)
	}

	byID := make(map[string]Skin)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		rank := extRank(ext)
		if rank < 0 {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !validID.MatchString(id) {
			continue
		}
		if prev, ok := byID[id]; ok && extRank(strings.ToLower(filepath.Ext(prev.File))) <= rank {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat skin %s: %w", e.Name(), err)
		}
		byID[id] = Skin{ID: id, File: e.Name(), Size: info.Size(), Modified: info.ModTime()}
	}

	skins := make([]Skin, 0, len(byID))
	for _, s := range byID {
		skins = append(skins, s)
	}
	sort.Slice(skins, func(i, j int) bool { return skins[i].ID < skins[j].ID })
	return skins, nil
}

// Path resolves id to the path of its image file.
func (l *Library) Path(id string) (string, error) {
	if !validID.MatchString(id) {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	for _, ext := range extensions {
		p := filepath.Join(l.dir, id+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrNotFound, id)
}

// Save decodes the image read from r and stores it as <id>.png, replacing
// any previous skin with that ID. Undecodable input matches
// card.ErrMissingSkin.
func (l *Library) Save(id string, r io.Reader) (Skin, error) {
	if !validID.MatchString(id) {
		return Skin{}, fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	img, err := card.DecodeSkin(r)
	if err != nil {
		return Skin{}, err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return Skin{}, fmt.Errorf("create skins dir: %w", err)
	}

	// Other formats with the same ID would shadow or be shadowed by the
	// new file, so drop them.
	for _, ext := range extensions[1:] {
		if err := os.Remove(filepath.Join(l.dir, id+ext)); err != nil && !os.IsNotExist(err) {
			return Skin{}, fmt.Errorf("remove old skin: %w", err)
		}
	}

	name := id + ".png"
	path := filepath.Join(l.dir, name)
	if err := imaging.Save(img, path); err != nil {
		return Skin{}, fmt.Errorf("save skin: %w", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return Skin{}, fmt.Errorf("stat skin: %w", err)
	}
	return Skin{ID: id, File: name, Size: info.Size(), Modified: info.ModTime()}, nil
}

func extRank(ext string) int {
	for i, e := range extensions {
		if e == ext {
			return i
		}
	}
	return -1
}
