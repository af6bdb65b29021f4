package transcription

// Request holds the parameters of one model run.
type Request struct {
	// AudioPath is the canonical PCM file handed to the model.
	AudioPath string `json:"audio_path"`
	// OutputPath is where the markdown transcript is written.
	OutputPath string `json:"output_path"`
	// SourceName is the name of the file the operator chose, shown in the report.
	SourceName string `json:"source_name,omitempty"`
	// Model is the model size, e.g. "medium".
	Model string `json:"model"`
	// Language is a language code; "auto" leaves detection to the model.
	Language    string `json:"language,omitempty"`
	Device      string `json:"device,omitempty"`
	ComputeType string `json:"compute_type,omitempty"`
}

// AutoLanguage asks the model to detect the language.
const AutoLanguage = "auto"

// LanguageHint returns the language to pass to the model, empty for detection.
func (r Request) LanguageHint() string {
	if r.Language == AutoLanguage {
		return ""
	}
	return r.Language
}

// Response describes a finished model run.
type Response struct {
	// TranscriptPath is the written markdown file.
	TranscriptPath string `json:"transcript_path"`
	// Interpreter is the program that ran the model, when run locally.
	Interpreter string `json:"interpreter,omitempty"`
	// Text is the full transcription text, when the backend returns it.
	Text     string    `json:"text,omitempty"`
	Segments []Segment `json:"segments,omitempty"`
	// Duration is the audio duration in seconds.
	Duration float64 `json:"duration,omitempty"`
	// Language is the detected or specified language.
	Language string `json:"language,omitempty"`
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
