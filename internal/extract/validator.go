package extract

import (
	"path/filepath"
	"strings"

	pkgerrors "github.com/ilkeraydogduPofuduk/kolajBot-sub001/pkg/errors"
)

// Validator rejects files before they enter the pipeline. Validation failures
// are reported per file and never retried.
type Validator struct {
	maxFileSize int64
	allowedExts map[string]struct{}
}

func NewValidator(maxFileSize int64, allowedExtensions []string) *Validator {
	exts := make(map[string]struct{}, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		exts[strings.ToLower(ext)] = struct{}{}
	}
	return &Validator{maxFileSize: maxFileSize, allowedExts: exts}
}

func (v *Validator) Validate(filename string, size int64) error {
	if size > v.maxFileSize {
		return pkgerrors.ValidationError{
			Field:   "size",
			Value:   size,
			Message: pkgerrors.ErrFileTooLarge.Error(),
		}
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := v.allowedExts[ext]; !ok {
		return pkgerrors.ValidationError{
			Field:   "filename",
			Value:   filename,
			Message: pkgerrors.ErrDisallowedFileType.Error(),
		}
	}
	return nil
}
