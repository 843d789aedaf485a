package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"store-admin-service/internal/backend"
	"store-admin-service/internal/media"
	"store-admin-service/pkg/response"
)

const (
	imagesField     = "images"
	maxImagesPerReq = 10
)

type fileReadErrorKind string

const (
	fileReadErrMissing     fileReadErrorKind = "missing"
	fileReadErrReadFailed  fileReadErrorKind = "read_failed"
	fileReadErrTooLarge    fileReadErrorKind = "too_large"
	fileReadErrInvalidType fileReadErrorKind = "invalid_type"
	fileReadErrTooMany     fileReadErrorKind = "too_many"
)

type fileReadError struct {
	Kind    fileReadErrorKind
	Message string
	Err     error
}

func (e *fileReadError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func readFileBytes(header *multipart.FileHeader, maxBytes int64) ([]byte, *fileReadError) {
	file, err := header.Open()
	if err != nil {
		return nil, &fileReadError{Kind: fileReadErrReadFailed, Message: "Failed to read file", Err: err}
	}
	defer file.Close()

	maxSizeMB := maxBytes / (1024 * 1024)
	if maxSizeMB <= 0 {
		maxSizeMB = 1
	}
	data, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		return nil, &fileReadError{Kind: fileReadErrReadFailed, Message: "Failed to read file", Err: err}
	}
	if int64(len(data)) > maxBytes {
		return nil, &fileReadError{Kind: fileReadErrTooLarge, Message: fmt.Sprintf("File size must be less than %dMB.", maxSizeMB)}
	}
	return data, nil
}

// readImages reads every file under the images field, normalizes it and
// returns the parts to forward upstream.
func (h *Handler) readImages(r *http.Request) ([]backend.File, *fileReadError) {
	maxBytes := h.Config.MaxFileSizeBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	if err := r.ParseMultipartForm(maxBytes * maxImagesPerReq); err != nil {
		return nil, &fileReadError{Kind: fileReadErrMissing, Message: "Images are required", Err: err}
	}
	var headers []*multipart.FileHeader
	if r.MultipartForm != nil {
		headers = r.MultipartForm.File[imagesField]
	}
	if len(headers) == 0 {
		return nil, &fileReadError{Kind: fileReadErrMissing, Message: "Images are required"}
	}
	if len(headers) > maxImagesPerReq {
		return nil, &fileReadError{Kind: fileReadErrTooMany, Message: fmt.Sprintf("At most %d images per upload.", maxImagesPerReq)}
	}

	opts := media.Options{MaxSide: h.Config.ImageMaxSide, Quality: h.Config.ImageQuality}
	files := make([]backend.File, 0, len(headers))
	for _, header := range headers {
		data, ferr := readFileBytes(header, maxBytes)
		if ferr != nil {
			return nil, ferr
		}
		img, err := media.Normalize(header.Filename, header.Header.Get("Content-Type"), data, opts)
		if err != nil {
			msg := "Invalid file type. Please upload an image file."
			if !errors.Is(err, media.ErrUnsupportedType) {
				msg = "Could not process image " + header.Filename
			}
			return nil, &fileReadError{Kind: fileReadErrInvalidType, Message: msg, Err: err}
		}
		files = append(files, backend.File{
			Field:       imagesField,
			Filename:    img.Filename,
			ContentType: img.ContentType,
			Data:        img.Data,
		})
	}
	return files, nil
}

func writeFileError(w http.ResponseWriter, ferr *fileReadError) {
	switch ferr.Kind {
	case fileReadErrMissing:
		response.Error(w, http.StatusBadRequest, "FILE_REQUIRED", ferr.Message)
	case fileReadErrTooLarge:
		response.Error(w, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", ferr.Message)
	case fileReadErrInvalidType:
		response.Error(w, http.StatusBadRequest, "INVALID_FILE_TYPE", ferr.Message)
	case fileReadErrTooMany:
		response.Error(w, http.StatusBadRequest, "TOO_MANY_FILES", ferr.Message)
	default:
		response.Error(w, http.StatusBadRequest, "FILE_READ_FAILED", ferr.Message)
	}
}
