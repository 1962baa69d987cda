package api

import (
	"strings"
	"time"
)

// ValidateProduct checks a product body for validity. It returns an
// *APIError describing the first validation failure, or nil if valid.
func ValidateProduct(p *Product) *APIError {
	if strings.TrimSpace(p.Name) == "" {
		return NewInvalidRequestError("name", "name is required")
	}
	if p.Created != "" {
		if _, err := time.Parse(CreatedLayout, p.Created); err != nil {
			return NewInvalidRequestError("created", "created must be a YYYY-MM-DD date")
		}
	}
	for _, img := range p.Images {
		if strings.TrimSpace(img) == "" {
			return NewInvalidRequestError("images", "images must not contain empty entries")
		}
	}
	return nil
}

// ValidateCredentials checks a signup or login body.
func ValidateCredentials(req *CredentialsRequest) *APIError {
	if req.Username == "" {
		return NewInvalidRequestError("username", "username is required")
	}
	if req.Password == "" {
		return NewInvalidRequestError("password", "password is required")
	}
	return nil
}

// ValidateUpdateCredentials checks a credential update body.
func ValidateUpdateCredentials(req *UpdateCredentialsRequest) *APIError {
	switch {
	case req.CurrentUsername == "":
		return NewInvalidRequestError("currentUsername", "currentUsername is required")
	case req.CurrentPassword == "":
		return NewInvalidRequestError("currentPassword", "currentPassword is required")
	case req.NewUsername == "":
		return NewInvalidRequestError("newUsername", "newUsername is required")
	case req.NewPassword == "":
		return NewInvalidRequestError("newPassword", "newPassword is required")
	}
	return nil
}
