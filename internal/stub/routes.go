package stub

import "net/http"

func (s *Server) setupRoutes() {
	s.router.Get("/health", healthCheck)
	s.router.Get("/_stub/submissions", s.submissions)

	for path, formName := range map[string]string{
		"/signup":    FormSignup,
		"/login":     FormLogin,
		"/face_scan": FormFaceScan,
	} {
		s.router.Get(path, s.page(formName))
		s.router.Post(path, s.submit(formName))
	}

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/signup", http.StatusFound)
	})
}
