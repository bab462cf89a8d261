package translate

import "strings"

// phrases holds fixed translations for a handful of common phrases.
// Keys are lowercase phrases; inner keys are language names.
var phrases = map[string]map[string]string{
	"hello": {
		"Chinese":    "你好",
		"Spanish":    "Hola",
		"French":     "Bonjour",
		"German":     "Hallo",
		"Italian":    "Ciao",
		"Portuguese": "Olá",
		"Japanese":   "こんにちは",
		"Korean":     "안녕하세요",
		"Russian":    "Привет",
		"Arabic":     "مرحبا",
	},
	"hello world": {
		"Chinese":    "你好世界",
		"Spanish":    "Hola mundo",
		"French":     "Bonjour le monde",
		"German":     "Hallo Welt",
		"Italian":    "Ciao mondo",
		"Portuguese": "Olá mundo",
		"Japanese":   "こんにちは世界",
		"Korean":     "안녕하세요 세계",
		"Russian":    "Привет мир",
		"Arabic":     "مرحبا بالعالم",
	},
	"thank you": {
		"Chinese":    "谢谢",
		"Spanish":    "Gracias",
		"French":     "Merci",
		"German":     "Danke",
		"Italian":    "Grazie",
		"Portuguese": "Obrigado",
		"Japanese":   "ありがとう",
		"Korean":     "감사합니다",
		"Russian":    "Спасибо",
		"Arabic":     "شكرا",
	},
	"good morning": {
		"Chinese":    "早上好",
		"Spanish":    "Buenos días",
		"French":     "Bonjour",
		"German":     "Guten Morgen",
		"Italian":    "Buongiorno",
		"Portuguese": "Bom dia",
		"Japanese":   "おはよう",
		"Korean":     "좋은 아침",
		"Russian":    "Доброе утро",
		"Arabic":     "صباح الخير",
	},
	"yes": {
		"Chinese":    "是",
		"Spanish":    "Sí",
		"French":     "Oui",
		"German":     "Ja",
		"Italian":    "Sì",
		"Portuguese": "Sim",
		"Japanese":   "はい",
		"Korean":     "네",
		"Russian":    "Да",
		"Arabic":     "نعم",
	},
	"no": {
		"Chinese":    "不",
		"Spanish":    "No",
		"French":     "Non",
		"German":     "Nein",
		"Italian":    "No",
		"Portuguese": "Não",
		"Japanese":   "いいえ",
		"Korean":     "아니요",
		"Russian":    "Нет",
		"Arabic":     "لا",
	},
}

// Lookup returns the fixed translation of text into the named language.
// Only a whole-phrase match (after trimming and lowercasing) is a hit. The
// language name is matched case-insensitively.
func Lookup(text, languageName string) (string, bool) {
	langs, ok := phrases[strings.ToLower(strings.TrimSpace(text))]
	if !ok {
		return "", false
	}
	languageName = strings.TrimSpace(languageName)
	if translated, ok := langs[languageName]; ok {
		return translated, true
	}
	for name, translated := range langs {
		if strings.EqualFold(name, languageName) {
			return translated, true
		}
	}
	return "", false
}
