package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "min"); placeholders are written as {key}.
type Translator interface {
	Message(code string, data map[string]string) string
}

var catalog = map[string]map[string]string{
	"en": {
		"invalid_type":       "invalid type",
		"required":           "required property missing",
		"unknown_key":        "unknown key",
		"no_match":           "value matches none of the candidates",
		"parse_error":        "parse error",
		"array_min_length":   "array has fewer than {min} items",
		"array_max_length":   "array has more than {max} items",
		"array_exact_length": "array must have exactly {exact} items",
		"regex":              "does not match pattern {pattern}",
		"in":                 "value is not one of the allowed values",
		"private_in":         "value is not allowed",
		"min_length":         "shorter than {min}",
		"max_length":         "longer than {max}",
		"exact_length":       "length must be {exact}",
		"contains":           "does not contain {needle}",
		"equals":             "must equal {expected}",
		"min_value":          "less than {min}",
		"max_value":          "greater than {max}",
		"starts_with":        "must start with {affix}",
		"ends_with":          "must end with {affix}",
		"upper_case":         "must be upper case",
		"lower_case":         "must be lower case",
		"alpha":              "must contain letters only",
		"alphanumeric":       "must contain letters and digits only",
		"numeric":            "must contain digits only",
		"before":             "must be before {bound}",
		"after":              "must be after {bound}",
		"min_byte_size":      "smaller than {min} bytes",
		"max_byte_size":      "larger than {max} bytes",
		"mime_type":          "mime type not allowed",
		"mime_sub_type":      "mime sub type not allowed",
		"assert":             "assertion failed: {expr}",
	},
	"ja": {
		"invalid_type":     "型が不正です",
		"required":         "必須プロパティが不足しています",
		"unknown_key":      "未知のキーです",
		"no_match":         "いずれの候補にも一致しません",
		"parse_error":      "解析エラー",
		"array_min_length": "要素数が少なすぎます",
		"array_max_length": "要素数が多すぎます",
		"min_length":       "短すぎます",
		"max_length":       "長すぎます",
		"in":               "許可されていない値です",
		"private_in":       "許可されていない値です",
		"min_value":        "小さすぎます",
		"max_value":        "大きすぎます",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := catalog[t.lang][code]
	if !ok {
		msg, ok = catalog["en"][code]
	}
	if !ok {
		return code
	}
	if strings.IndexByte(msg, '{') < 0 {
		return msg
	}
	return render(msg, data)
}

// render substitutes {key} placeholders; placeholders without data are
// dropped together with the separator in front of them.
func render(tmpl string, data map[string]string) string {
	b := &strings.Builder{}
	for {
		i := strings.IndexByte(tmpl, '{')
		j := strings.IndexByte(tmpl, '}')
		if i < 0 || j < i {
			b.WriteString(tmpl)
			break
		}
		if v, ok := data[tmpl[i+1:j]]; ok {
			b.WriteString(tmpl[:i])
			b.WriteString(v)
		} else {
			b.WriteString(strings.TrimRight(tmpl[:i], " ,:"))
		}
		tmpl = tmpl[j+1:]
	}
	return b.String()
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	SetTranslator(dictTranslator{lang: lang})
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
