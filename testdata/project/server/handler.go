package server

import (
	"fmt"
	"net/http"
)

const (
	DefaultPort    = 8080
	DefaultTimeout = 30
)

var globalConfig = Config{Port: DefaultPort}

// Config holds listener settings.
type Config struct {
	Port    int
	Timeout int
	secret  string
}

type Handler struct {
	config *Config
}

// NewHandler creates a handler for config.
func NewHandler(config *Config) *Handler {
	return &Handler{config: config}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintf(w, "Hello, World!")
}

func logRequest(r *http.Request) {
	fmt.Println(r.URL.Path)
}
