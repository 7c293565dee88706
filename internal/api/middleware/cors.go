package middleware

import (
	"github.com/go-chi/cors"
)

// CORS allows any origin, method and header
var CORS = cors.Handler(cors.Options{
	AllowedOrigins:   []string{"*"},
	AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
	AllowedHeaders:   []string{"*"},
	ExposedHeaders:   []string{"X-Request-Id"},
	AllowCredentials: false,
	MaxAge:           300,
})
