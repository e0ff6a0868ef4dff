// Package extract turns supported document files into plain text.
package extract

import (
	"path/filepath"
	"strings"

	"github.com/intigra/ragapi/internal/domain/apperrors"
	"github.com/intigra/ragapi/internal/domain/commonModels"
	"github.com/intigra/ragapi/pkg/logger_i"
)

var logger = logger_i.NewLogger("Extraction")

// DetectDocType maps a file extension to its document type. ERR means the
// file is not ingestible.
func DetectDocType(path string) commonModels.DocType {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".pdf":
		return commonModels.PDF
	case ".docx":
		return commonModels.DOCX
	case ".txt":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// Text extracts the full plain text of one file. PDF pages are joined with
// blank lines so paragraph-aware splitting still sees page boundaries.
func Text(path string) (string, error) {
	switch DetectDocType(path) {
	case commonModels.PDF:
		pages, err := extractPDF(path)
		if err != nil {
			return "", err
		}
		return strings.Join(pages, "\n\n"), nil
	case commonModels.DOCX, commonModels.TXT:
		return extractDocxTxt(path)
	default:
		return "", apperrors.Validation("unsupported file type: %s", filepath.Ext(path))
	}
}
