// Package respond writes JSON responses for the API handlers.
//
// Error bodies have the shape {"message": "..."}; the admin client reads
// that field to show failures.
package respond

import (
	"encoding/json"
	"net/http"
)

// Message is the body for errors and simple acknowledgements.
type Message struct {
	Message string `json:"message"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// OK writes v with 200.
func OK(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusOK, v)
}

// Created writes v with 201.
func Created(w http.ResponseWriter, v interface{}) {
	JSON(w, http.StatusCreated, v)
}

// Error writes {"message": msg} with status.
func Error(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, Message{Message: msg})
}

func BadRequest(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadRequest, msg)
}

func Unauthorized(w http.ResponseWriter, msg string) {
	Error(w, http.StatusUnauthorized, msg)
}

func NotFound(w http.ResponseWriter, msg string) {
	Error(w, http.StatusNotFound, msg)
}

func Conflict(w http.ResponseWriter, msg string) {
	Error(w, http.StatusConflict, msg)
}

func TooManyRequests(w http.ResponseWriter, msg string) {
	Error(w, http.StatusTooManyRequests, msg)
}

// BadGateway reports a failure in an upstream collaborator such as image storage.
func BadGateway(w http.ResponseWriter, msg string) {
	Error(w, http.StatusBadGateway, msg)
}

func InternalError(w http.ResponseWriter, msg string) {
	Error(w, http.StatusInternalServerError, msg)
}
