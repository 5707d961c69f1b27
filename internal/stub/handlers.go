package stub

import (
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/csrf"

	"github.com/kozaktomas/faceauth/internal/authclient"
)

// Form names, matching the built-in client definitions.
const (
	FormSignup   = "signup"
	FormLogin    = "login"
	FormFaceScan = "face scan"
)

// maxUploadSize bounds a single multipart submission.
const maxUploadSize = 32 << 20

//go:embed pages/*.html
var pagesFS embed.FS

var pages = template.Must(template.ParseFS(pagesFS, "pages/*.html"))

// pageTemplates maps form names to their page template.
var pageTemplates = map[string]string{
	FormSignup:   "signup.html",
	FormLogin:    "login.html",
	FormFaceScan: "face_scan.html",
}

// Submission is one recorded form post.
type Submission struct {
	Form      string              `json:"form"`
	RequestID string              `json:"request_id,omitempty"`
	AJAX      bool                `json:"ajax"`
	Fields    map[string][]string `json:"fields"`
	Files     map[string][]string `json:"files,omitempty"` // field name -> file names
	At        time.Time           `json:"at"`
}

// journal keeps the submissions the stub received.
type journal struct {
	mu          sync.Mutex
	submissions []Submission
}

func (j *journal) add(s Submission) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.submissions = append(j.submissions, s)
}

func (j *journal) list() []Submission {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]Submission(nil), j.submissions...)
}

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondRejected sends a failed Submission Result.
func respondRejected(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, authclient.Rejected(message))
}

// page serves the HTML page holding the form.
func (s *Server) page(formName string) http.HandlerFunc {
	name := pageTemplates[formName]
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		data := struct{ CSRFToken string }{CSRFToken: csrf.Token(r)}
		if err := pages.ExecuteTemplate(w, name, data); err != nil {
			log.Printf("stub: could not render %s: %v", name, err)
		}
	}
}

// submit answers a form post from the scenario.
func (s *Server) submit(formName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxUploadSize); err != nil {
			respondRejected(w, http.StatusBadRequest, "failed to parse multipart form")
			return
		}

		sub := Submission{
			Form:      formName,
			RequestID: r.Header.Get(authclient.RequestIDHeader),
			AJAX:      r.Header.Get("X-Requested-With") == "XMLHttpRequest",
			Fields:    r.MultipartForm.Value,
			At:        time.Now(),
		}
		if len(r.MultipartForm.File) > 0 {
			sub.Files = make(map[string][]string, len(r.MultipartForm.File))
			for field, headers := range r.MultipartForm.File {
				for _, h := range headers {
					sub.Files[field] = append(sub.Files[field], h.Filename)
				}
			}
		}
		s.journal.add(sub)

		log.Printf("stub: %s submission %s (%s)", formName,
			sanitizeForLog(sub.RequestID), chiMiddleware.GetReqID(r.Context()))

		fields := make(map[string]string, len(sub.Fields))
		for k, v := range sub.Fields {
			if len(v) > 0 {
				fields[k] = v[0]
			}
		}
		for k, names := range sub.Files {
			if len(names) > 0 {
				fields[k] = names[0]
			}
		}

		rule := s.scenario.Answer(formName, fields)
		if rule.Delay > 0 {
			select {
			case <-time.After(rule.Delay):
			case <-r.Context().Done():
				return
			}
		}

		if rule.Body != "" {
			w.WriteHeader(rule.Status)
			w.Write([]byte(rule.Body))
			return
		}
		respondJSON(w, rule.Status, rule.Result)
	}
}

// submissions lists what the stub received.
func (s *Server) submissions(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.journal.list())
}

// healthCheck handles the health check endpoint.
func healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
