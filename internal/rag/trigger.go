package rag

import "strings"

// Trigger decides whether a chat turn should pull documentary context.
// It is a static substring heuristic over two configured lists: known
// entity names and possessive firm phrases. False positives and negatives
// are accepted.
type Trigger struct {
	entities []string
	phrases  []string
}

func NewTrigger(entityNames, possessivePhrases []string) *Trigger {
	return &Trigger{
		entities: lowerAll(entityNames),
		phrases:  lowerAll(possessivePhrases),
	}
}

// ShouldRetrieve returns true when force is set, or when the lower-cased
// message contains any configured entity name or possessive phrase.
func (t *Trigger) ShouldRetrieve(message string, force bool) bool {
	if force {
		return true
	}
	lowered := strings.ToLower(message)
	for _, entity := range t.entities {
		if strings.Contains(lowered, entity) {
			return true
		}
	}
	for _, phrase := range t.phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
