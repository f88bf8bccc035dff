// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package backendtest provides an in-memory fake of the content REST API for
// tests of the packages that sit on top of the backend client.
package backendtest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/taibuivan/scholar/internal/backend"
	"github.com/taibuivan/scholar/pkg/slug"
)

// Default credentials accepted by the fake login endpoint.
const (
	AdminEmail    = "admin@example.org"
	AdminPassword = "correct horse"
	AdminToken    = "test-admin-token"
)

// Document is one stored record.
type Document = map[string]any

// Server is a fake content API backed by in-memory collections.
type Server struct {
	*httptest.Server

	mu          sync.Mutex
	collections map[string][]Document
	calls       map[string]int
	failures    map[string]failure
	nextID      int

	// Token is the only bearer token accepted on mutating calls.
	Token string
	// IssuedToken is what a successful login returns; defaults to Token.
	IssuedToken string
	// Feedback records every feedback submission.
	Feedback []map[string]string
	// Uploads records the filenames of uploaded images.
	Uploads []string
}

type failure struct {
	status  int
	message string
	times   int
}

// New starts a fake API with every collection empty. It is closed with t.Cleanup.
func New(t testing.TB) *Server {
	t.Helper()

	server := &Server{
		collections: map[string][]Document{},
		calls:       map[string]int{},
		failures:    map[string]failure{},
		Token:       AdminToken,
	}
	for _, path := range []string{
		backend.PathBanners, backend.PathBooks, backend.PathBlogs, backend.PathCourses,
		backend.PathTalksArticles, backend.PathTeam,
		backend.PathYearwisePublications, backend.PathSubjectwisePublications,
	} {
		server.collections[path] = []Document{}
	}

	server.Server = httptest.NewServer(http.HandlerFunc(server.serve))
	t.Cleanup(server.Close)
	return server
}

// Seed appends documents to a collection, assigning ids where missing.
func (server *Server) Seed(path string, documents ...Document) {
	server.mu.Lock()
	defer server.mu.Unlock()

	for _, document := range documents {
		server.collections[path] = append(server.collections[path], server.prepare(path, document))
	}
}

// Docs returns a copy of a collection.
func (server *Server) Docs(path string) []Document {
	server.mu.Lock()
	defer server.mu.Unlock()
	return append([]Document{}, server.collections[path]...)
}

// Calls returns how many requests matched method and exact path.
func (server *Server) Calls(method, path string) int {
	server.mu.Lock()
	defer server.mu.Unlock()
	return server.calls[method+" "+path]
}

// FailWith makes the next `times` requests on method and path answer status with message.
func (server *Server) FailWith(method, path string, status int, message string, times int) {
	server.mu.Lock()
	defer server.mu.Unlock()
	server.failures[method+" "+path] = failure{status: status, message: message, times: times}
}

// Client returns a backend client pointed at this server.
func (server *Server) Client() *backend.Client {
	return backend.New(backend.Config{BaseURL: server.URL, RetryCount: 2})
}

func (server *Server) prepare(path string, document Document) Document {
	copied := Document{}
	for key, value := range document {
		copied[key] = value
	}
	if _, ok := copied["_id"]; !ok {
		server.nextID++
		copied["_id"] = strconv.Itoa(server.nextID)
	}
	if path == backend.PathBooks || path == backend.PathBlogs {
		title, _ := copied["title"].(string)
		existing, _ := copied["slug"].(string)
		copied["slug"] = slug.Or(existing, title)
	}
	return copied
}

func (server *Server) serve(writer http.ResponseWriter, request *http.Request) {
	server.mu.Lock()
	defer server.mu.Unlock()

	key := request.Method + " " + request.URL.Path
	server.calls[key]++

	// 1. Injected failures
	if injected, ok := server.failures[key]; ok && injected.times > 0 {
		injected.times--
		server.failures[key] = injected
		writeJSON(writer, injected.status, map[string]string{"message": injected.message})
		return
	}

	// 2. Authentication endpoints
	switch request.URL.Path {
	case backend.PathLogin:
		server.login(writer, request)
		return
	case backend.PathFeedback:
		var payload map[string]string
		_ = json.NewDecoder(request.Body).Decode(&payload)
		server.Feedback = append(server.Feedback, payload)
		// The legacy endpoint leaked a token here; clients must ignore it.
		writeJSON(writer, http.StatusOK, map[string]string{"message": "Feedback sent", "token": "leaked"})
		return
	}

	// 3. Everything else that mutates requires the bearer token
	if request.Method != http.MethodGet && request.Header.Get("Authorization") != "Bearer "+server.Token {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		return
	}

	if request.URL.Path == backend.PathUpload {
		server.upload(writer, request)
		return
	}

	// 4. Collections
	collection, id := server.route(request.URL.Path)
	if collection == "" {
		writeJSON(writer, http.StatusNotFound, map[string]string{"message": "Not found"})
		return
	}

	switch {
	case id == "" && request.Method == http.MethodGet:
		writeJSON(writer, http.StatusOK, server.collections[collection])

	case id == "" && request.Method == http.MethodPost:
		var document Document
		if err := json.NewDecoder(request.Body).Decode(&document); err != nil {
			writeJSON(writer, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
			return
		}
		delete(document, "_id")
		created := server.prepare(collection, document)
		server.collections[collection] = append(server.collections[collection], created)
		writeJSON(writer, http.StatusCreated, created)

	case id != "" && request.Method == http.MethodGet:
		if index := server.find(collection, id); index >= 0 {
			writeJSON(writer, http.StatusOK, server.collections[collection][index])
			return
		}
		writeJSON(writer, http.StatusNotFound, map[string]string{"message": "Not found"})

	case id != "" && request.Method == http.MethodPut:
		index := server.find(collection, id)
		if index < 0 {
			writeJSON(writer, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		var document Document
		if err := json.NewDecoder(request.Body).Decode(&document); err != nil {
			writeJSON(writer, http.StatusBadRequest, map[string]string{"message": "Invalid JSON"})
			return
		}
		document["_id"] = server.collections[collection][index]["_id"]
		server.collections[collection][index] = document
		writeJSON(writer, http.StatusOK, document)

	case id != "" && request.Method == http.MethodDelete:
		index := server.find(collection, id)
		if index < 0 {
			writeJSON(writer, http.StatusNotFound, map[string]string{"message": "Not found"})
			return
		}
		documents := server.collections[collection]
		server.collections[collection] = append(documents[:index:index], documents[index+1:]...)
		writeJSON(writer, http.StatusOK, map[string]string{"message": "Deleted"})

	default:
		writeJSON(writer, http.StatusMethodNotAllowed, map[string]string{"message": "Method not allowed"})
	}
}

func (server *Server) login(writer http.ResponseWriter, request *http.Request) {
	var payload map[string]string
	_ = json.NewDecoder(request.Body).Decode(&payload)
	if payload["email"] != AdminEmail || payload["password"] != AdminPassword {
		writeJSON(writer, http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
		return
	}
	token := server.IssuedToken
	if token == "" {
		token = server.Token
	}
	writeJSON(writer, http.StatusOK, map[string]string{"token": token})
}

func (server *Server) upload(writer http.ResponseWriter, request *http.Request) {
	file, header, err := request.FormFile(backend.UploadField)
	if err != nil {
		writeJSON(writer, http.StatusBadRequest, map[string]string{"message": "No image uploaded"})
		return
	}
	defer file.Close()

	server.Uploads = append(server.Uploads, header.Filename)
	writeJSON(writer, http.StatusOK, map[string]string{"imageUrl": fmt.Sprintf("/uploads/%s", header.Filename)})
}

// route splits a path into its collection and trailing id or slug.
func (server *Server) route(path string) (string, string) {
	best := ""
	for collection := range server.collections {
		if (path == collection || strings.HasPrefix(path, collection+"/")) && len(collection) > len(best) {
			best = collection
		}
	}
	if best == "" {
		return "", ""
	}
	return best, strings.Trim(strings.TrimPrefix(path, best), "/")
}

// find locates a document by _id or slug.
func (server *Server) find(collection, key string) int {
	for index, document := range server.collections[collection] {
		if fmt.Sprint(document["_id"]) == key || document["slug"] == key {
			return index
		}
	}
	return -1
}

func writeJSON(writer http.ResponseWriter, status int, payload any) {
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(status)
	_ = json.NewEncoder(writer).Encode(payload)
}
