package entity

// VocabItem is a single vocabulary entry of a study list. The catalog owns
// these rows; the scheduling engine treats them as read-only.
type VocabItem struct {
	ID              int64               `json:"id"`
	ListID          int64               `json:"list_id"`
	Term            string              `json:"term"`
	Definitions     map[Language]string `json:"definitions"`
	PartOfSpeech    string              `json:"part_of_speech,omitempty"`
	SampleSentences []string            `json:"sample_sentences,omitempty"`
}

// DefinitionIn returns the definition for the requested language, falling back
// to English and then to any available entry.
func (v VocabItem) DefinitionIn(lang Language) string {
	if text, ok := v.Definitions[lang]; ok {
		return text
	}
	if text, ok := v.Definitions[LanguageEnglish]; ok {
		return text
	}
	for _, text := range v.Definitions {
		return text
	}
	return ""
}

// SharesPartOfSpeech reports whether two items carry the same normalized
// part-of-speech tag.
func (v VocabItem) SharesPartOfSpeech(other VocabItem) bool {
	return NormalizePOSTag(v.PartOfSpeech) == NormalizePOSTag(other.PartOfSpeech)
}
