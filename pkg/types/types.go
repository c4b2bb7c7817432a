package types

// GenerateOptions controls a single caption generation call.
// Backends apply the fields they support; NumBeams and EarlyStopping are
// only honored by backends that implement beam search.
type GenerateOptions struct {
	MaxTokens     int     `json:"max_tokens"`
	NumBeams      int     `json:"num_beams"`
	EarlyStopping bool    `json:"early_stopping"`
	Sample        bool    `json:"sample"`
	Temperature   float64 `json:"temperature"`
}

// EffectiveTemperature returns the temperature a backend should send.
// Without sampling decoding is greedy, which every backend expresses as 0.
func (o GenerateOptions) EffectiveTemperature() float64 {
	if !o.Sample {
		return 0
	}
	return o.Temperature
}

// Description is the JSON body returned for a described image
type Description struct {
	English string `json:"english"`
	Arabic  string `json:"arabic"`
	Success bool   `json:"success"`
}

// ModelImage is an encoded image ready to be sent to a backend
type ModelImage struct {
	Data     string // base64
	MIMEType string
}

// MediaType returns MIMEType, or image/jpeg when it is unset
func (m ModelImage) MediaType() string {
	if m.MIMEType == "" {
		return "image/jpeg"
	}
	return m.MIMEType
}

// ImageInfo contains basic image metadata
type ImageInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}
