package actions

import (
	"fmt"
	"io"

	"github.com/gobuffalo/buffalo"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/domain"
	"github.com/crashdoc/crashdoc-api/models"
)

// fileFieldName is the multipart field name for the file upload.
const fileFieldName = "file"

// swagger:operation POST /upload/file Files UploadFile
//
// UploadFile
//
// upload a document or damage photo and get back its storage URL
//
// ---
// consumes:
//   - multipart/form-data
// parameters:
//   - name: file
//     in: formData
//     type: file
//     required: true
//     description: file to upload, must be gif, jpeg, png or webp
// responses:
//   '200':
//     description: the stored file
//     schema:
//       "$ref": "#/definitions/FileUploadOutput"
func uploadFile(c buffalo.Context) error {
	f, err := c.File(fileFieldName)
	if err != nil {
		err = fmt.Errorf("error getting uploaded file from context: %w", err)
		return reportError(c, api.NewAppError(err, api.ErrorReceivingFile, api.CategoryInternal))
	}

	if f.Size > int64(domain.MaxFileSize) {
		err = fmt.Errorf("file upload size (%v) greater than max (%v)", f.Size, domain.MaxFileSize)
		return reportError(c, api.NewAppError(err, api.ErrorStoreFileTooLarge, api.CategoryUser))
	}

	content, err := io.ReadAll(f)
	if err != nil {
		err = fmt.Errorf("error reading uploaded file: %w", err)
		return reportError(c, api.NewAppError(err, api.ErrorUnableToReadFile, api.CategoryInternal))
	}

	principalID, _, err := currentPrincipalID(c)
	if err != nil {
		return reportError(c, err)
	}

	newExtra(c, "filename", f.Filename)
	newExtra(c, "fileSize", f.Size)

	fileObject := models.File{
		Name:        f.Filename,
		Content:     content,
		CreatedByID: principalID,
	}
	if err := fileObject.Store(models.Tx(c)); err != nil {
		return reportError(c, err)
	}

	apiFile := fileObject.ConvertToAPI(models.Tx(c))
	return renderOk(c, api.FileUploadOutput{File: apiFile, SecureURL: apiFile.URL})
}
