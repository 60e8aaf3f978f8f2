package testupstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

type storedImage struct {
	contentType string
	data        []byte
}

// FakeTinify imitates the shrink and output endpoints of the compression API.
type FakeTinify struct {
	secrets map[string]bool

	lock        sync.Mutex
	images      map[string]storedImage
	nextID      int
	shrinkCalls int
	transforms  []map[string]json.RawMessage
}

func NewFakeTinify(secrets ...string) *FakeTinify {
	allowed := map[string]bool{}
	for _, secret := range secrets {
		allowed[secret] = true
	}

	return &FakeTinify{
		secrets: allowed,
		images:  map[string]storedImage{},
	}
}

func (f *FakeTinify) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	user, secret, ok := r.BasicAuth()
	authorized := ok && user == "api" && f.secrets[secret]

	switch {
	case r.URL.Path == "/shrink" && r.Method == http.MethodPost:
		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized", "message": "Credentials are invalid."})
			return
		}
		f.shrink(w, r)
	case strings.HasPrefix(r.URL.Path, "/output/") && r.Method == http.MethodGet:
		f.download(w, strings.TrimPrefix(r.URL.Path, "/output/"))
	case strings.HasPrefix(r.URL.Path, "/output/") && r.Method == http.MethodPost:
		if !authorized {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized", "message": "Credentials are invalid."})
			return
		}
		f.transform(w, r, strings.TrimPrefix(r.URL.Path, "/output/"))
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeTinify) shrink(w http.ResponseWriter, r *http.Request) {
	data, _ := io.ReadAll(r.Body)
	if len(data) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "InputMissing", "message": "Input file is empty."})
		return
	}

	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		writeJSON(w, http.StatusUnsupportedMediaType, map[string]string{"error": "Unsupported", "message": "File type is not supported."})
		return
	}

	compressed := data[:(len(data)+1)/2]

	f.lock.Lock()
	f.shrinkCalls++
	f.nextID++
	id := fmt.Sprintf("out%d", f.nextID)
	f.images[id] = storedImage{contentType, compressed}
	f.lock.Unlock()

	location := "http://" + r.Host + "/output/" + id
	w.Header().Set("Location", location)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"input":  map[string]interface{}{"size": len(data), "type": contentType},
		"output": map[string]interface{}{"size": len(compressed), "type": contentType, "url": location},
	})
}

func (f *FakeTinify) download(w http.ResponseWriter, id string) {
	image, ok := f.image(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "NotFound", "message": "Output not found."})
		return
	}

	w.Header().Set("Content-Type", image.contentType)
	w.Write(image.data)
}

func (f *FakeTinify) transform(w http.ResponseWriter, r *http.Request, id string) {
	image, ok := f.image(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "NotFound", "message": "Output not found."})
		return
	}

	var body map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "BadRequest", "message": "Body is not JSON."})
		return
	}

	f.lock.Lock()
	f.transforms = append(f.transforms, body)
	f.lock.Unlock()

	contentType := image.contentType
	width, height := 0, 0

	if raw, ok := body["resize"]; ok {
		var resize struct {
			Width  int `json:"width"`
			Height int `json:"height"`
		}
		json.Unmarshal(raw, &resize)
		width, height = resize.Width, resize.Height
	}

	if raw, ok := body["convert"]; ok {
		var convert struct {
			Type string `json:"type"`
		}
		json.Unmarshal(raw, &convert)
		if !strings.HasPrefix(convert.Type, "image/") {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "BadRequest", "message": "Unsupported conversion."})
			return
		}
		contentType = convert.Type
	}

	w.Header().Set("Content-Type", contentType)
	if width > 0 {
		w.Header().Set("Image-Width", strconv.Itoa(width))
	}
	if height > 0 {
		w.Header().Set("Image-Height", strconv.Itoa(height))
	}
	w.Header().Set("Content-Length", strconv.Itoa(len(image.data)))
	w.Write(image.data)
}

func (f *FakeTinify) ShrinkCalls() int {
	f.lock.Lock()
	defer f.lock.Unlock()

	return f.shrinkCalls
}

// Transforms returns the decoded bodies of every transform call so far.
func (f *FakeTinify) Transforms() []map[string]json.RawMessage {
	f.lock.Lock()
	defer f.lock.Unlock()

	return append([]map[string]json.RawMessage(nil), f.transforms...)
}

func (f *FakeTinify) image(id string) (storedImage, bool) {
	f.lock.Lock()
	defer f.lock.Unlock()

	image, ok := f.images[id]
	return image, ok
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}
