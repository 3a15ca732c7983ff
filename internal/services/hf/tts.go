package hf

import "strings"

// ttsModels maps two-letter language codes to the MMS single-language
// text-to-speech checkpoints.
var ttsModels = map[string]string{
	"en": "facebook/mms-tts-eng",
	"es": "facebook/mms-tts-spa",
	"fr": "facebook/mms-tts-fra",
	"de": "facebook/mms-tts-deu",
	"it": "facebook/mms-tts-ita",
	"pt": "facebook/mms-tts-por",
}

// defaultTTSModel serves languages without a dedicated checkpoint.
const defaultTTSModel = "facebook/mms-tts-eng"

// TTSModel returns the speech model for a language code, falling back to
// the English checkpoint for unknown codes.
func TTSModel(language string) string {
	if model, ok := ttsModels[strings.ToLower(strings.TrimSpace(language))]; ok {
		return model
	}
	return defaultTTSModel
}
