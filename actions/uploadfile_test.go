package actions

import (
	"bytes"
	"net/http"

	"github.com/gobuffalo/httptest"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/models"
	"github.com/crashdoc/crashdoc-api/storage"
)

func (as *ActionSuite) Test_uploadFile() {
	as.NoError(storage.CreateS3Bucket())

	f := models.CreateUserFixtures(as.DB, 1)
	user := f.Users[0]

	upload := httptest.File{
		ParamName: fileFieldName,
		FileName:  "damage_front.gif",
		Reader:    bytes.NewReader([]byte("GIF87a")),
	}

	req := as.HTML("/upload/file")
	req.Headers["Authorization"] = "Bearer " + user.Email
	res, err := req.MultiPartPost(struct{}{}, upload)
	as.NoError(err)

	as.Equal(http.StatusOK, res.Code, "body: %s", res.Body.String())

	var out api.FileUploadOutput
	as.NoError(as.decodeBody(res.Body.Bytes(), &out))
	as.NotEmpty(out.ID)
	as.Equal("image/gif", out.ContentType)
	as.NotEmpty(out.URL)
	as.Equal(out.URL, out.SecureURL)

	var file models.File
	as.NoError(file.Find(as.DB, out.ID))
	as.Equal(user.ID, file.CreatedByID)
}

func (as *ActionSuite) Test_uploadFile_BadContentType() {
	as.NoError(storage.CreateS3Bucket())

	f := models.CreateUserFixtures(as.DB, 1)
	user := f.Users[0]

	upload := httptest.File{
		ParamName: fileFieldName,
		FileName:  "nasty.html",
		Reader:    bytes.NewReader([]byte("<html><script>alert(1)</script></html>")),
	}

	req := as.HTML("/upload/file")
	req.Headers["Authorization"] = "Bearer " + user.Email
	res, err := req.MultiPartPost(struct{}{}, upload)
	as.NoError(err)

	as.Equal(http.StatusBadRequest, res.Code, "body: %s", res.Body.String())
	as.Contains(res.Body.String(), string(api.ErrorStoreFileBadContentType))
}
