package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/raine/product-attributes/internal/catalog"
	"github.com/raine/product-attributes/internal/classify"
	"github.com/raine/product-attributes/internal/llm"
	"github.com/raine/product-attributes/internal/vision"
)

type mockExtractor struct{ mock.Mock }

func (m *mockExtractor) Extract(ctx context.Context, img vision.Image) (*vision.Signals, error) {
	args := m.Called(ctx, img)
	s, _ := args.Get(0).(*vision.Signals)
	return s, args.Error(1)
}

type mockGenerator struct{ mock.Mock }

func (m *mockGenerator) Generate(ctx context.Context, img vision.Image, hints llm.Hints) (*llm.Result, error) {
	args := m.Called(ctx, img, hints)
	r, _ := args.Get(0).(*llm.Result)
	return r, args.Error(1)
}

type mockFetcher struct{ mock.Mock }

func (m *mockFetcher) Fetch(ctx context.Context, url string) (vision.Image, error) {
	args := m.Called(ctx, url)
	return args.Get(0).(vision.Image), args.Error(1)
}

var (
	photo      = vision.Image{Content: []byte{0xFF, 0xD8, 0xFF}, MIMEType: "image/jpeg"}
	categories = []catalog.Category{
		{ID: 1, Name: "shoes", Slug: "shoes"},
		{ID: 2, Name: "clothes", Slug: "clothes"},
	}
	clogsDescription = "Chunky clogs with a contoured footbed, a buckled strap and a sculpted wooden sole."
)

func sneakerSignals() *vision.Signals {
	return &vision.Signals{
		Labels:         []vision.Term{{Term: "sneaker", Score: 0.92}, {Term: "logo", Score: 0.95}},
		Objects:        []vision.Term{{Term: "Shoe", Score: 0.88}},
		Text:           "",
		DominantColors: []string{"#1a1a1a"},
	}
}

func strPtr(s string) *string { return &s }

func TestAnalyze_RuleBasedOnly(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(sneakerSignals(), nil)

	p := New(Options{Extractor: extractor})
	result, err := p.Analyze(context.Background(), photo, categories)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.Name, "Black"), result.Name)
	assert.Equal(t, "Black Shoe", result.Name)
	require.NotNil(t, result.SuggestedCategory)
	assert.Equal(t, "shoes", result.SuggestedCategory.Name)
	assert.Equal(t, int64(1), result.SuggestedCategory.ID)
	require.NotNil(t, result.Color)
	assert.Equal(t, "Black", *result.Color)
	assert.Nil(t, result.Gender)
	assert.Nil(t, result.Brand)
	assert.Nil(t, result.Material)
	assert.Equal(t, []string{"#1a1a1a"}, result.Colors)
	assert.Equal(t, []string{"Sneaker"}, result.Features)
	assert.Empty(t, result.Alternatives)

	assert.Equal(t, 0.75, result.Confidence.Name)
	assert.Equal(t, 0.7, result.Confidence.Description)
	assert.InDelta(t, 0.78, result.Confidence.Category, 1e-9)
	assert.InDelta(t, (0.75+0.78+0.7)/3, result.Confidence.Overall, 1e-9)

	extractor.AssertExpectations(t)
}

func TestAnalyze_NormalizesCategories(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(sneakerSignals(), nil)

	raw := []catalog.Category{
		{ID: 1, Slug: "Shoes"},
		{ID: 2, Slug: "clothes"},
	}
	result, err := New(Options{Extractor: extractor}).Analyze(context.Background(), photo, raw)
	require.NoError(t, err)

	require.NotNil(t, result.SuggestedCategory)
	assert.Equal(t, int64(1), result.SuggestedCategory.ID)
	assert.Equal(t, "shoes", result.SuggestedCategory.Name)
	assert.InDelta(t, 0.78, result.SuggestedCategory.Confidence, 1e-9)
	assert.Equal(t, "Shoes", raw[0].Slug, "caller's list is left untouched")
}

func TestClassifySignals_MatchesClassifiers(t *testing.T) {
	s := sneakerSignals()
	s.Text = "MENS RUNNING\nACME"

	a := classifySignals(s, categories)
	assert.Equal(t, classify.IdentifyMainItem(s), a.mainItem)
	assert.Equal(t, classify.MatchCategory(s, categories), a.category)
	assert.Equal(t, classify.ClassifyStyle(s), a.style)
	assert.Equal(t, classify.ClassifyMaterial(s), a.material)
	assert.Equal(t, classify.ClassifyGender(s), a.gender)
	assert.Equal(t, classify.ExtractBrand(s), a.brand)
}

func TestAnalyze_GenerativeNameWins(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(sneakerSignals(), nil)
	generator := &mockGenerator{}
	generator.On("Generate", mock.Anything, photo, mock.MatchedBy(func(h llm.Hints) bool {
		return h.MainItem == "shoe" && len(h.Colors) == 1 && h.Colors[0] == "Black"
	})).Return(&llm.Result{Candidate: llm.Candidate{
		Name:        strPtr("Toga Virilis Strap-Detail Clogs"),
		Description: strPtr(clogsDescription),
	}}, nil)

	p := New(Options{Extractor: extractor, Generator: generator})
	result, err := p.Analyze(context.Background(), photo, categories)
	require.NoError(t, err)

	assert.Equal(t, "Toga Virilis Strap-Detail Clogs", result.Name)
	assert.Equal(t, clogsDescription, result.Description)
	assert.Equal(t, GenerativeConfidence, result.Confidence.Name)
	assert.Equal(t, GenerativeConfidence, result.Confidence.Description)
	require.NotNil(t, result.Brand)
	assert.Equal(t, "Toga Virilis", *result.Brand)
	require.NotNil(t, result.Color)
	assert.Equal(t, "Black", *result.Color)

	generator.AssertExpectations(t)
}

func TestAnalyze_NameDerivedColorAndOCRBrand(t *testing.T) {
	signals := sneakerSignals()
	signals.Text = "ACME"
	signals.DominantColors = []string{"#ffffff"}

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(signals, nil)
	generator := &mockGenerator{}
	generator.On("Generate", mock.Anything, photo, mock.Anything).Return(&llm.Result{Candidate: llm.Candidate{
		Name: strPtr("Black Leather Boots"),
	}}, nil)

	result, err := New(Options{Extractor: extractor, Generator: generator}).Analyze(context.Background(), photo, categories)
	require.NoError(t, err)

	require.NotNil(t, result.Color)
	assert.Equal(t, "Black", *result.Color)
	require.NotNil(t, result.Brand)
	assert.Equal(t, "ACME", *result.Brand)
	// description was not generated and falls back to the rules
	assert.Equal(t, 0.7, result.Confidence.Description)
	assert.Equal(t, GenerativeConfidence, result.Confidence.Name)
}

func TestAnalyze_GeneratorFailureDegrades(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(sneakerSignals(), nil)
	generator := &mockGenerator{}
	generator.On("Generate", mock.Anything, photo, mock.Anything).Return(nil, errors.New("503 unavailable"))

	result, err := New(Options{Extractor: extractor, Generator: generator}).Analyze(context.Background(), photo, categories)
	require.NoError(t, err)
	assert.Equal(t, "Black Shoe", result.Name)
	assert.Equal(t, 0.75, result.Confidence.Name)
	generator.AssertNumberOfCalls(t, "Generate", 1)
}

func TestAnalyze_DownloadsURLForGenerativeStage(t *testing.T) {
	img := vision.Image{URL: "https://cdn.example.com/clogs.jpg"}
	downloaded := vision.Image{URL: img.URL, Content: []byte{1, 2, 3}, MIMEType: "image/jpeg"}

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, img).Return(sneakerSignals(), nil)
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, img.URL).Return(downloaded, nil)
	generator := &mockGenerator{}
	generator.On("Generate", mock.Anything, downloaded, mock.Anything).Return(&llm.Result{Candidate: llm.Candidate{
		Name: strPtr("Toga Virilis Strap-Detail Clogs"),
	}}, nil)

	result, err := New(Options{Extractor: extractor, Generator: generator, Fetcher: fetcher}).Analyze(context.Background(), img, categories)
	require.NoError(t, err)
	assert.Equal(t, "Toga Virilis Strap-Detail Clogs", result.Name)
	fetcher.AssertExpectations(t)
	generator.AssertExpectations(t)
}

func TestAnalyze_DownloadFailureSkipsGenerativeStage(t *testing.T) {
	img := vision.Image{URL: "https://cdn.example.com/gone.jpg"}

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, img).Return(sneakerSignals(), nil)
	fetcher := &mockFetcher{}
	fetcher.On("Fetch", mock.Anything, img.URL).Return(vision.Image{}, errors.New("404"))
	generator := &mockGenerator{}

	result, err := New(Options{Extractor: extractor, Generator: generator, Fetcher: fetcher}).Analyze(context.Background(), img, categories)
	require.NoError(t, err)
	assert.Equal(t, "Black Shoe", result.Name)
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_VisionNotConfigured(t *testing.T) {
	_, err := New(Options{}).Analyze(context.Background(), photo, categories)
	assert.ErrorIs(t, err, ErrVisionNotConfigured)

	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(nil, fmt.Errorf("labels: %w", vision.ErrNotConfigured))

	_, err = New(Options{Extractor: extractor}).Analyze(context.Background(), photo, categories)
	assert.ErrorIs(t, err, ErrVisionNotConfigured)
	assert.ErrorIs(t, err, vision.ErrNotConfigured)
}

func TestAnalyze_VisionTransportFailureAborts(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(nil, fmt.Errorf("objects: %w", vision.ErrTransport))
	generator := &mockGenerator{}

	_, err := New(Options{Extractor: extractor, Generator: generator}).Analyze(context.Background(), photo, categories)
	require.Error(t, err)
	assert.ErrorIs(t, err, vision.ErrTransport)
	assert.False(t, errors.Is(err, ErrVisionNotConfigured))
	generator.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestAnalyze_InvalidImage(t *testing.T) {
	extractor := &mockExtractor{}
	_, err := New(Options{Extractor: extractor}).Analyze(context.Background(), vision.Image{}, categories)
	assert.Error(t, err)
	extractor.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestAnalyze_EmptySignalsStillComplete(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(&vision.Signals{}, nil)

	result, err := New(Options{Extractor: extractor}).Analyze(context.Background(), photo, categories)
	require.NoError(t, err)

	assert.Equal(t, "Product", result.Name)
	assert.NotEmpty(t, result.Description)
	assert.Nil(t, result.SuggestedCategory)
	assert.NotNil(t, result.Alternatives)
	assert.NotNil(t, result.Features)
	assert.NotNil(t, result.Colors)
	assert.Nil(t, result.Color)
	assert.Nil(t, result.Style)
	assert.Zero(t, result.Confidence.Category)
	assert.InDelta(t, (0.4+0+0.6)/3, result.Confidence.Overall, 1e-9)
}

func TestAnalysisResult_JSONShape(t *testing.T) {
	extractor := &mockExtractor{}
	extractor.On("Extract", mock.Anything, photo).Return(sneakerSignals(), nil)

	result, err := New(Options{Extractor: extractor}).Analyze(context.Background(), photo, categories)
	require.NoError(t, err)

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	for _, key := range []string{
		"name", "description", "suggestedCategory", "alternatives", "features", "colors",
		"style", "material", "brand", "color", "gender", "confidence",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Nil(t, decoded["gender"])
	assert.Equal(t, []any{}, decoded["alternatives"])
	assert.Equal(t, "shoes", decoded["suggestedCategory"].(map[string]any)["name"])
	assert.Contains(t, decoded["confidence"], "overall")
}
