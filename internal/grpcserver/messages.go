package grpcserver

import "github.com/patric-chuzhbe/videocatalog/internal/models"

// Empty is the request of the methods that take no arguments.
type Empty struct{}

type ListUsersResponse struct {
	Users []models.User `json:"users"`
}

type CreateUserResponse struct {
	User models.User `json:"user"`
}

type VideoIDRequest struct {
	ID string `json:"id"`
}

// UpdateVideoRequest carries the video id next to the fields of the HTTP PATCH body.
type UpdateVideoRequest struct {
	ID    string  `json:"id"`
	Title *string `json:"title,omitempty"`
}
