package support

import (
	"fmt"
	"image"
	"image/color"
	"os"

	"github.com/cucumber/godog"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/MeKo-Tech/nutrilabel/internal/nutrition"
	"github.com/MeKo-Tech/nutrilabel/internal/testutil"
	"github.com/MeKo-Tech/nutrilabel/internal/utils"
)

// saveFixture writes img as <name>.png and registers it for {name}.
func (testCtx *TestContext) saveFixture(name string, img image.Image) error {
	data, err := utils.EncodePNG(img)
	if err != nil {
		return err
	}
	path := testCtx.TempPath(name + ".png")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write fixture %s: %w", name, err)
	}
	testCtx.Images[name] = path
	return nil
}

func (testCtx *TestContext) aLabelPhoto(name string) error {
	return testCtx.saveFixture(name, testutil.LabelImage())
}

func (testCtx *TestContext) aRotatedLabelPhoto(name string, degrees float64) error {
	cfg := testutil.DefaultLabelConfig()
	cfg.Rotation = degrees
	return testCtx.saveFixture(name, testutil.GenerateLabelImage(cfg))
}

func (testCtx *TestContext) aBlankPhoto(name string) error {
	return testCtx.saveFixture(name, testutil.BlankImage(320, 240, color.White))
}

func (testCtx *TestContext) aPDFContaining(name, imageName string) error {
	img, ok := testCtx.Images[imageName]
	if !ok {
		return fmt.Errorf("unknown fixture %q", imageName)
	}
	path := testCtx.TempPath(name + ".pdf")
	if err := api.ImportImagesFile([]string{img}, path, nil, nil); err != nil {
		return fmt.Errorf("build pdf: %w", err)
	}
	testCtx.Images[name] = path
	return nil
}

func (testCtx *TestContext) theNutrientShouldBe(key, want string) error {
	return jsonFieldEquals(testCtx.LastOutput, "nutrition."+key, want)
}

func (testCtx *TestContext) theROISourceShouldBe(want string) error {
	return jsonFieldEquals(testCtx.LastOutput, "provenance.roi_source", want)
}

func (testCtx *TestContext) allNutrientsShouldBeResolved() error {
	for _, f := range nutrition.Fields() {
		if err := testCtx.theNutrientShouldNotBe(f.Key(), nutrition.UnresolvedText); err != nil {
			return err
		}
	}
	return nil
}

func (testCtx *TestContext) theNutrientShouldNotBe(key, unwanted string) error {
	doc, err := extractJSON(testCtx.LastOutput)
	if err != nil {
		return err
	}
	val, err := lookupJSON(doc, "nutrition."+key)
	if err != nil {
		return err
	}
	if fmt.Sprint(val) == unwanted {
		return fmt.Errorf("nutrient %s is %q", key, unwanted)
	}
	return nil
}

// RegisterLabelSteps registers fixture and nutrient steps.
func (testCtx *TestContext) RegisterLabelSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a nutrition label photo "([^"]*)"$`, testCtx.aLabelPhoto)
	sc.Step(`^a nutrition label photo "([^"]*)" rotated by (-?\d+(?:\.\d+)?) degrees$`, testCtx.aRotatedLabelPhoto)
	sc.Step(`^a blank photo "([^"]*)"$`, testCtx.aBlankPhoto)
	sc.Step(`^a PDF "([^"]*)" containing the photo "([^"]*)"$`, testCtx.aPDFContaining)
	sc.Step(`^the nutrient "([^"]*)" should be "([^"]*)"$`, testCtx.theNutrientShouldBe)
	sc.Step(`^the nutrient "([^"]*)" should be unresolved$`, func(key string) error {
		return testCtx.theNutrientShouldBe(key, nutrition.UnresolvedText)
	})
	sc.Step(`^the ROI source should be "([^"]*)"$`, testCtx.theROISourceShouldBe)
	sc.Step(`^all nutrients should be resolved$`, testCtx.allNutrientsShouldBeResolved)
}
