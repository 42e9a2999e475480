// Package apperror holds the categorized errors returned at collaborator
// boundaries (storage, import, export, configuration).
package apperror

import (
	stderrors "errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	CodeStorageRead       = "STORAGE_READ_FAILED"
	CodeStorageWrite      = "STORAGE_WRITE_FAILED"
	CodeImportInvalid     = "IMPORT_INVALID"
	CodeExportUnsupported = "EXPORT_FORMAT_UNSUPPORTED"
	CodeConfigInvalid     = "CONFIG_INVALID"
)

var (
	ErrStorageRead = goerrors.New("storage read failed", goerrors.CategoryExternal).
			WithTextCode(CodeStorageRead)
	ErrStorageWrite = goerrors.New("storage write failed", goerrors.CategoryExternal).
			WithTextCode(CodeStorageWrite)
	ErrImportInvalid = goerrors.New("import rejected", goerrors.CategoryValidation).
				WithTextCode(CodeImportInvalid)
	ErrExportUnsupported = goerrors.New("export format not supported", goerrors.CategoryBadInput).
				WithTextCode(CodeExportUnsupported)
	ErrConfigInvalid = goerrors.New("invalid configuration", goerrors.CategoryBadInput).
				WithTextCode(CodeConfigInvalid)
)

// From clones base with message, source and metadata applied. Empty values
// keep the base defaults.
func From(base *goerrors.Error, message string, source error, metadata map[string]any) *goerrors.Error {
	err := base.Clone()
	if text := strings.TrimSpace(message); text != "" {
		err.Message = text
	}
	if source != nil {
		err.Source = source
	}
	if len(metadata) > 0 {
		err = err.WithMetadata(metadata)
	}
	return err
}

// Code returns the text code of the first categorized error in err's chain.
func Code(err error) string {
	var ge *goerrors.Error
	if stderrors.As(err, &ge) {
		return ge.TextCode
	}
	return ""
}

// HasCode reports whether err carries code.
func HasCode(err error, code string) bool {
	return err != nil && Code(err) == code
}

// Metadata returns the metadata of the first categorized error in err's chain.
func Metadata(err error) map[string]any {
	var ge *goerrors.Error
	if stderrors.As(err, &ge) {
		return ge.Metadata
	}
	return nil
}
