package mlsvc

// Detection is the typed classification contract callers rely on
// the zero value is never returned; failures produce Fallback
type Detection struct {
	IsCode        bool    `json:"isCode"`
	Language      string  `json:"language"`
	CorrectedText string  `json:"correctedText"`
	Confidence    float64 `json:"confidence"`

	// Fallback marks a detection synthesized after a classifier failure
	Fallback bool `json:"-"`

	// Err carries the failure behind a fallback, for logging only
	Err error `json:"-"`
}

// Fallback builds the safe non-code detection for text
// used whenever the classifier cannot be consulted or trusted
func Fallback(text string, cause error) Detection {
	return Detection{
		IsCode:        false,
		Language:      "other",
		CorrectedText: text,
		Confidence:    0,
		Fallback:      true,
		Err:           cause,
	}
}

// Correction is one corrected snippet from a batch call
type Correction struct {
	Index         int     `json:"index"`
	CorrectedCode string  `json:"correctedCode"`
	Confidence    float64 `json:"confidence"`
}

// BatchResult is the outcome of BatchCorrect
// Err is a marker, not a thrown failure: an empty Corrections with Err
// set means the batch was skipped or the service misbehaved
type BatchResult struct {
	Corrections []Correction
	Err         error
}

// wire shapes with pointer fields so missing keys are detectable

type detectRequest struct {
	Text string `json:"text"`
}

type detectResponse struct {
	IsCode        *bool    `json:"isCode"`
	Language      *string  `json:"language"`
	CorrectedText *string  `json:"correctedText"`
	Confidence    *float64 `json:"confidence"`
}

type batchRequest struct {
	Snippets []string `json:"snippets"`
}

type batchResponse struct {
	Corrections []Correction `json:"corrections"`
}
