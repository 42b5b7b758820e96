// Package apitest provides an in-memory portfolio API for tests.
package apitest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
)

// Token is the access token handed out by /auth/login.
const Token = "test-token"

// Server mimics the portfolio REST API over three collections.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	data     map[string]map[string]json.RawMessage // resource -> id -> document
	nextID   int
	requests []string
	failures map[string]failure

	// Echo controls whether create/update return the stored document.
	Echo bool
}

type failure struct {
	status  int
	message string
}

// New starts a server. It is closed when the test ends.
func New(t interface{ Cleanup(func()) }) *Server {
	s := &Server{
		data: map[string]map[string]json.RawMessage{
			"blog": {}, "project": {}, "skills": {},
		},
		failures: make(map[string]failure),
		Echo:     true,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", s.login)
	mux.HandleFunc("POST /resume/upload", s.upload)
	mux.HandleFunc("POST /{res}/create", s.create)
	mux.HandleFunc("GET /{res}", s.list)
	mux.HandleFunc("GET /{res}/{id}", s.get)
	mux.HandleFunc("PATCH /{res}/{id}", s.update)
	mux.HandleFunc("DELETE /{res}/{id}", s.remove)

	s.Server = httptest.NewServer(s.record(mux))
	t.Cleanup(s.Close)
	return s
}

// Seed stores v under id in res.
func (s *Server) Seed(res, id string, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	s.data[res][id] = withID(b, id)
	s.mu.Unlock()
}

// FailNext makes the next request whose "METHOD /path" starts with prefix fail.
func (s *Server) FailNext(prefix string, status int, message string) {
	s.mu.Lock()
	s.failures[prefix] = failure{status: status, message: message}
	s.mu.Unlock()
}

// Requests returns every "METHOD /path" received, in order.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Count returns how many documents res holds.
func (s *Server) Count(res string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data[res])
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		line := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.requests = append(s.requests, line)
		var fail *failure
		for prefix, f := range s.failures {
			if strings.HasPrefix(line, prefix) {
				f := f
				fail = &f
				delete(s.failures, prefix)
				break
			}
		}
		s.mu.Unlock()

		if fail != nil {
			reply(w, fail.status, false, fail.message, nil)
			return
		}
		if r.URL.Path != "/auth/login" && r.Method != http.MethodGet &&
			r.Header.Get("Authorization") != "Bearer "+Token {
			reply(w, http.StatusUnauthorized, false, "Unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) collection(w http.ResponseWriter, r *http.Request) (string, bool) {
	res := r.PathValue("res")
	if _, ok := s.data[res]; !ok {
		reply(w, http.StatusNotFound, false, "Route not found", nil)
		return "", false
	}
	return res, true
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	_ = json.NewDecoder(r.Body).Decode(&creds)
	if creds.Password != "secret" {
		reply(w, http.StatusUnauthorized, false, "Invalid credentials", nil)
		return
	}
	reply(w, http.StatusOK, true, "", map[string]string{"accessToken": Token})
}

func (s *Server) upload(w http.ResponseWriter, r *http.Request) {
	f, hdr, err := r.FormFile("file")
	if err != nil {
		reply(w, http.StatusBadRequest, false, "No file uploaded", nil)
		return
	}
	defer f.Close()
	_, _ = io.Copy(io.Discard, f)
	reply(w, http.StatusOK, true, "", map[string]string{
		"url":      "https://cdn.example.com/" + hdr.Filename,
		"filename": hdr.Filename,
	})
}

func (s *Server) create(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collection(w, r)
	if !ok {
		return
	}
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.nextID++
	id := fmt.Sprintf("%s%d", res[:1], s.nextID)
	doc := withID(body, id)
	s.data[res][id] = doc
	s.mu.Unlock()

	if s.Echo {
		reply(w, http.StatusCreated, true, "created", doc)
		return
	}
	reply(w, http.StatusCreated, true, "created", nil)
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	ids := make([]string, 0, len(s.data[res]))
	for id := range s.data[res] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	docs := make([]json.RawMessage, 0, len(ids))
	for _, id := range ids {
		docs = append(docs, s.data[res][id])
	}
	s.mu.Unlock()
	reply(w, http.StatusOK, true, "", docs)
}

func (s *Server) get(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collection(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	doc, found := s.data[res][r.PathValue("id")]
	s.mu.Unlock()
	if !found {
		reply(w, http.StatusNotFound, false, "Not found", nil)
		return
	}
	reply(w, http.StatusOK, true, "", doc)
}

func (s *Server) update(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	_, found := s.data[res][id]
	doc := withID(body, id)
	if found {
		s.data[res][id] = doc
	}
	s.mu.Unlock()

	if !found {
		reply(w, http.StatusNotFound, false, "Not found", nil)
		return
	}
	if s.Echo {
		reply(w, http.StatusOK, true, "", doc)
		return
	}
	reply(w, http.StatusOK, true, "", nil)
}

func (s *Server) remove(w http.ResponseWriter, r *http.Request) {
	res, ok := s.collection(w, r)
	if !ok {
		return
	}
	id := r.PathValue("id")
	s.mu.Lock()
	_, found := s.data[res][id]
	delete(s.data[res], id)
	s.mu.Unlock()
	if !found {
		reply(w, http.StatusNotFound, false, "Not found", nil)
		return
	}
	reply(w, http.StatusOK, true, "deleted", nil)
}

func withID(doc []byte, id string) json.RawMessage {
	m := map[string]any{}
	_ = json.Unmarshal(doc, &m)
	m["_id"] = id
	b, _ := json.Marshal(m)
	return b
}

func reply(w http.ResponseWriter, status int, success bool, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success": success,
		"message": message,
		"data":    data,
	})
}
