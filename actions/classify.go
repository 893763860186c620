package actions

import (
	"github.com/gobuffalo/buffalo"

	"github.com/crashdoc/crashdoc-api/api"
	"github.com/crashdoc/crashdoc-api/classifier"
)

// damageClassifier is shared across requests so its result cache and call
// throttle apply process-wide.
var damageClassifier *classifier.Classifier

func getClassifier() *classifier.Classifier {
	if damageClassifier == nil {
		damageClassifier = classifier.NewFromEnv()
	}
	return damageClassifier
}

// swagger:operation POST /upload Classification UploadClassify
//
// UploadClassify
//
// grade a set of damage photo URLs into a severity bucket
//
// ---
// parameters:
//   - name: classification input
//     in: body
//     required: true
//     schema:
//       "$ref": "#/definitions/ClassificationInput"
// responses:
//   '200':
//     description: the damage assessment
//     schema:
//       "$ref": "#/definitions/ClassificationOutput"
func uploadClassify(c buffalo.Context) error {
	var input api.ClassificationInput
	if err := c.Bind(&input); err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorInvalidRequestBody, api.CategoryUser))
	}

	newExtra(c, "imageCount", len(input.ImageURLs))

	out, err := getClassifier().Classify(c, input.ImageURLs)
	if err != nil {
		return reportError(c, api.NewAppError(err, api.ErrorClassificationFailed, api.CategoryInternal))
	}

	return renderOk(c, out)
}
