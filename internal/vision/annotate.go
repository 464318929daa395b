package vision

// Wire types for the Cloud Vision images:annotate REST endpoint. Only the
// fields consumed by normalizeResponses are modeled.

type annotateRequest struct {
	Requests []imageRequest `json:"requests"`
}

type imageRequest struct {
	Image    requestImage     `json:"image"`
	Features []featureRequest `json:"features"`
}

type requestImage struct {
	Content string       `json:"content,omitempty"`
	Source  *imageSource `json:"source,omitempty"`
}

type imageSource struct {
	ImageURI    string `json:"imageUri,omitempty"`
	GCSImageURI string `json:"gcsImageUri,omitempty"`
}

type featureRequest struct {
	Type       string `json:"type"`
	MaxResults int    `json:"maxResults,omitempty"`
}

type annotateResponse struct {
	Responses []imageResponse `json:"responses"`
}

type imageResponse struct {
	LabelAnnotations           []entityAnnotation   `json:"labelAnnotations"`
	LocalizedObjectAnnotations []objectAnnotation   `json:"localizedObjectAnnotations"`
	TextAnnotations            []entityAnnotation   `json:"textAnnotations"`
	FullTextAnnotation         *fullTextAnnotation  `json:"fullTextAnnotation"`
	ImagePropertiesAnnotation  *imagePropertiesAnno `json:"imagePropertiesAnnotation"`
	Error                      *statusBody          `json:"error"`
}

type entityAnnotation struct {
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

type objectAnnotation struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

type fullTextAnnotation struct {
	Text string `json:"text"`
}

type imagePropertiesAnno struct {
	DominantColors struct {
		Colors []colorInfo `json:"colors"`
	} `json:"dominantColors"`
}

type colorInfo struct {
	Color struct {
		Red   float64 `json:"red"`
		Green float64 `json:"green"`
		Blue  float64 `json:"blue"`
	} `json:"color"`
	Score         float64 `json:"score"`
	PixelFraction float64 `json:"pixelFraction"`
}

type statusBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

type apiErrorBody struct {
	Error statusBody `json:"error"`
}
