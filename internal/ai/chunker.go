package ai

// SplitChunks slices text into contiguous chunks of at most maxChunkSize
// characters, no overlap. The chunks concatenate back to the original text.
// Sizes are counted in runes so multi-byte text never splits mid-character.
func SplitChunks(text string, maxChunkSize int) []string {
	if maxChunkSize <= 0 {
		return []string{text}
	}
	runes := []rune(text)
	if len(runes) <= maxChunkSize {
		return []string{text}
	}
	chunks := make([]string, 0, (len(runes)+maxChunkSize-1)/maxChunkSize)
	for start := 0; start < len(runes); start += maxChunkSize {
		end := start + maxChunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
