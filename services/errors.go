package services

import (
	"fmt"
	"net/http"
)

// Error codes returned in the "code" field of API error responses.
const (
	CodeFolderNotFound          = "MEDIA_FOLDER_NOT_FOUND_EXCEPTION"
	CodeConfigurationNotFound   = "MEDIA_FOLDER_CONFIGURATION_NOT_FOUND_EXCEPTION"
	CodeInvalidID               = "MEDIA_FOLDER_INVALID_ID"
	CodeInvalidName             = "MEDIA_FOLDER_INVALID_NAME"
	CodeInvalidThumbnailQuality = "MEDIA_FOLDER_CONFIGURATION_INVALID_QUALITY"
	CodeDuplicateID             = "MEDIA_FOLDER_DUPLICATE_ID"
	CodeInvalidMove             = "MEDIA_FOLDER_INVALID_MOVE"
)

// Error is a domain failure that maps onto one HTTP status and error code.
type Error struct {
	Code    string
	Status  int
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches any *Error with the same code, so errors.Is(err, ErrFolderNotFound)
// holds for every FolderNotFound(id).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrFolderNotFound        = &Error{Code: CodeFolderNotFound, Status: http.StatusNotFound, Message: "media folder not found"}
	ErrConfigurationNotFound = &Error{Code: CodeConfigurationNotFound, Status: http.StatusNotFound, Message: "media folder configuration not found"}
	ErrInvalidID             = &Error{Code: CodeInvalidID, Status: http.StatusBadRequest, Message: "invalid id"}
	ErrInvalidName           = &Error{Code: CodeInvalidName, Status: http.StatusBadRequest, Message: "invalid folder name"}
	ErrInvalidQuality        = &Error{Code: CodeInvalidThumbnailQuality, Status: http.StatusBadRequest, Message: "invalid thumbnail quality"}
	ErrDuplicateID           = &Error{Code: CodeDuplicateID, Status: http.StatusConflict, Message: "id already in use"}
	ErrInvalidMove           = &Error{Code: CodeInvalidMove, Status: http.StatusBadRequest, Message: "invalid move"}
)

func FolderNotFound(id string) *Error {
	return &Error{
		Code:    CodeFolderNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Could not find media folder with id %q", id),
	}
}

func ConfigurationNotFound(id string) *Error {
	return &Error{
		Code:    CodeConfigurationNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("Could not find media folder configuration with id %q", id),
	}
}

func InvalidID(id string) *Error {
	return &Error{
		Code:    CodeInvalidID,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("%q is not a valid id, expected 32 lowercase hex characters", id),
	}
}

func InvalidName(cause error) *Error {
	return &Error{Code: CodeInvalidName, Status: http.StatusBadRequest, Message: "invalid folder name", Cause: cause}
}

func InvalidQuality(cause error) *Error {
	return &Error{Code: CodeInvalidThumbnailQuality, Status: http.StatusBadRequest, Message: "invalid thumbnail quality", Cause: cause}
}

func DuplicateID(id string) *Error {
	return &Error{
		Code:    CodeDuplicateID,
		Status:  http.StatusConflict,
		Message: fmt.Sprintf("id %q is already in use", id),
	}
}

func InvalidMove(folderID, targetID string) *Error {
	return &Error{
		Code:    CodeInvalidMove,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf("cannot move media folder %q into itself or its descendant %q", folderID, targetID),
	}
}
