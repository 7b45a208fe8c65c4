package threemf

import (
	"archive/zip"
	"fmt"

	"github.com/philipparndt/bambu3mf/internal/models"
)

const (
	// Application is the producer string Bambu Studio expects
	Application = "BambuStudio-02.05.00.66"

	identityMatrix = "1 0 0 0 0 1 0 0 0 0 1 0 0 0 0 1"
)

// WriteModelSettings writes the Bambu Studio model_settings.config file for
// a single object on a single plate
func WriteModelSettings(outZip *zip.Writer, objectID, objectName string) error {
	if err := writeXMLPart(outZip, ModelSettingsPath, NewModelSettings(objectID, objectName)); err != nil {
		return fmt.Errorf("error writing model settings: %w", err)
	}
	return nil
}

// NewModelSettings builds the model settings document. Object and part are
// both named after the source STL.
func NewModelSettings(objectID, objectName string) *models.ModelSettings {
	stlName := objectName + ".stl"

	return &models.ModelSettings{
		Objects: []models.SettingsObject{
			{
				ID: objectID,
				Metadata: []models.SettingsMetadata{
					{Key: "name", Value: stlName},
					{Key: "extruder", Value: "1"},
				},
				Parts: []models.Part{
					{
						ID:      "1",
						Subtype: "normal_part",
						Metadata: []models.SettingsMetadata{
							{Key: "name", Value: stlName},
							{Key: "matrix", Value: identityMatrix},
						},
					},
				},
			},
		},
		Plate: models.Plate{
			Metadata: []models.SettingsMetadata{
				{Key: "plater_id", Value: "1"},
				{Key: "plater_name", Value: ""},
				{Key: "locked", Value: "false"},
			},
			ModelInstances: []models.ModelInstance{
				{
					Metadata: []models.SettingsMetadata{
						{Key: "object_id", Value: objectID},
						{Key: "instance_id", Value: "0"},
						{Key: "identify_id", Value: "1"},
					},
				},
			},
		},
	}
}

// AddBambuMetadata adds Bambu Studio specific namespaces and metadata to a model
func AddBambuMetadata(model *models.Model, title string) {
	model.XmlnsBambuStudio = models.NamespaceBambu
	model.XmlnsP = models.NamespaceProduction
	model.RequiredExtensions = "p"

	model.Metadata = append([]models.Metadata{
		{Name: "Application", Value: Application},
		{Name: "BambuStudio:3mfVersion", Value: "1"},
		{Name: "Title", Value: title},
	}, model.Metadata...)
}
