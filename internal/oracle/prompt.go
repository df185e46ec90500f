package oracle

import "fmt"

// languageContext biases the model toward region-specific music when the
// requested language is not English.
func languageContext(language string) string {
	if language == "" || language == "English" {
		return ""
	}
	return fmt.Sprintf(" Focus on %s music and popular artists from that region.", language)
}

func moodPrompt(text, language string) string {
	return fmt.Sprintf(`Analyze this mood: '%s'%s

Return ONLY valid JSON with these keys:
- "emotion": primary emotion (e.g., "melancholic", "energetic", "peaceful")
- "themes": array of 2-3 themes (e.g., ["nostalgia", "chill"])
- "genres": array of 4-6 SPECIFIC music genres (e.g., ["indie rock", "acoustic folk", "lo-fi hip hop"])
- "energy_level": number 1-10
- "mood_description": brief description
- "language_preference": "%s"
- "recommended_songs": array of 20-25 specific song recommendations with format "Artist - Song Title"

IMPORTANT: Recommend actual, real songs by popular artists that match the mood. Use well-known songs that are likely to be on Spotify.

Example:
{"emotion": "melancholic", "themes": ["nostalgia", "introspective"], "genres": ["indie folk", "acoustic pop", "singer-songwriter", "alternative rock"], "energy_level": 4, "mood_description": "Reflective and nostalgic", "language_preference": "English", "recommended_songs": ["Bon Iver - Skinny Love", "Iron & Wine - Boy with a Coin", "The National - I Need My Girl", "Phoebe Bridgers - Motion Sickness", "Fleet Foxes - White Winter Hymnal"]}`,
		text, languageContext(language), language)
}

func conceptPrompt(userPrompt string, numSongs int, language string) string {
	return fmt.Sprintf(`Generate a playlist for: '%s'
Language: %s
Songs needed: %d%s

Return ONLY valid JSON:
{
    "playlist_name": "Creative name",
    "description": "Detailed description",
    "genres": ["specific genre1", "specific genre2", "specific genre3"],
    "themes": ["theme1", "theme2"],
    "energy_level": 5,
    "recommended_songs": ["Artist - Song Title", "Artist2 - Song Title2", ...],
    "language_preference": "%s"
}

IMPORTANT: Recommend exactly %d real, specific songs with format "Artist - Song Title". Use popular, well-known songs that match the playlist theme and are likely to be on Spotify.`,
		userPrompt, language, numSongs, languageContext(language), language, numSongs)
}
