package speech

import "strings"

// Voices maps normalized language tags to voice identifiers.
type Voices struct {
	byLang map[string]string
	def    string
}

func NewVoices(byLang map[string]string, def string) *Voices {
	m := make(map[string]string, len(byLang))
	for k, v := range byLang {
		m[k] = v
	}
	return &Voices{byLang: m, def: def}
}

// Choose never fails: exact tag, then primary subtag, then the default voice.
func (v *Voices) Choose(lang string) string {
	if lang == "" {
		return v.def
	}
	if id, ok := v.byLang[lang]; ok {
		return id
	}
	if primary, _, found := strings.Cut(lang, "-"); found {
		if id, ok := v.byLang[primary]; ok {
			return id
		}
	}
	return v.def
}

func (v *Voices) Default() string {
	return v.def
}
