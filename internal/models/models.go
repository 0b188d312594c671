// Package models holds the domain records of the video catalog together with
// the request and response shapes of its HTTP API.
package models

import (
	"errors"
	"time"
)

// User is a registered catalog user.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Video describes an uploaded video. Thumbnail and Duration are optional.
type Video struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	URL        string    `json:"url"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	Duration   *int      `json:"duration,omitempty"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
	UserID     string    `json:"userId"`
}

// VideoPatch lists the video fields a partial update may overwrite.
// A nil field is left untouched.
type VideoPatch struct {
	Title *string
}

// CreateUserRequest is the body of POST /users.
// Pointers distinguish a missing field from an empty one.
type CreateUserRequest struct {
	Name  *string `json:"name" validate:"required"`
	Email *string `json:"email" validate:"required,email"`
}

// UploadVideoRequest is the body of POST /videos/upload.
type UploadVideoRequest struct {
	Title  *string `json:"title" validate:"required,min=1,max=100"`
	UserID *string `json:"userId" validate:"required,uuid"`
}

type UploadVideoResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	UploadURL string `json:"uploadUrl,omitempty"`
}

// UpdateVideoRequest is the body of PATCH /videos/{id}.
type UpdateVideoRequest struct {
	Title *string `json:"title" validate:"omitnil,min=1,max=100"`
}

// ListVideosQuery is the coerced query string of GET /videos.
type ListVideosQuery struct {
	Limit  int    `json:"limit" validate:"min=1,max=100"`
	Offset int    `json:"offset" validate:"min=0"`
	UserID string `json:"userId" validate:"omitempty,uuid"`
}

// VideoPage is one page of the (optionally filtered) video list.
// Total counts the filtered list before slicing.
type VideoPage struct {
	Videos []Video `json:"videos"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

type InternalStatsResponse struct {
	Users  int64 `json:"users"`
	Videos int64 `json:"videos"`
}

const (
	DefaultVideosLimit = 10
	MaxVideosLimit     = 100
	MaxTitleLength     = 100

	VideoMimeType = "video/mp4"
)

// ErrNotFound is the root of every "record is missing" error.
var ErrNotFound = errors.New("not found")
