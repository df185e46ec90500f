package oracle

// Recommendation is the structured output of a generation call: the mood
// analysis or playlist concept plus the candidate song list the resolver
// works from. Immutable once returned.
type Recommendation struct {
	Emotion      string
	PlaylistName string
	Description  string
	Themes       []string
	Genres       []string
	EnergyLevel  int
	Language     string
	Songs        []string // conventionally "Artist - Song Title"
}

// moodPayload is the JSON shape requested from the model for mood analysis.
type moodPayload struct {
	Emotion          string   `json:"emotion"`
	Themes           []string `json:"themes"`
	Genres           []string `json:"genres"`
	EnergyLevel      int      `json:"energy_level"`
	MoodDescription  string   `json:"mood_description"`
	Language         string   `json:"language_preference"`
	RecommendedSongs []string `json:"recommended_songs"`
}

// conceptPayload is the JSON shape requested for custom playlist concepts.
type conceptPayload struct {
	PlaylistName     string   `json:"playlist_name"`
	Description      string   `json:"description"`
	Genres           []string `json:"genres"`
	Themes           []string `json:"themes"`
	EnergyLevel      int      `json:"energy_level"`
	Language         string   `json:"language_preference"`
	RecommendedSongs []string `json:"recommended_songs"`
}

// Groq is OpenAI-compatible; these mirror the chat completions wire format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}
