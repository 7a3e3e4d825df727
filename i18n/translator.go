package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected", "got", "key" or "name").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator. Templates use
// {name} placeholders filled from data.
type dictTranslator struct{ lang string }

var dict = map[string]map[string]string{
	"en": {
		"invalid_type":   "invalid type: expected {expected}, got {got}",
		"required":       "required property missing",
		"unknown_key":    "unknown key {key}",
		"too_small":      "value must be at least {min}",
		"too_big":        "value must be at most {max}",
		"too_short":      "too short",
		"too_long":       "too long",
		"invalid_enum":   "value must be one of {values}",
		"pattern":        "value does not match {pattern}",
		"invalid_format": "invalid format",
		"check_failed":   "check failed",
		"unresolved_ref": "unresolved struct reference {name}",
		"duplicate_key":  "duplicate key",
		"parse_error":    "parse error",
		"truncated":      "truncated",
		"custom":         "invalid value",
	},
	"ja": {
		"invalid_type":   "型が不正です: {expected} が必要ですが {got} でした",
		"required":       "必須プロパティが不足しています",
		"unknown_key":    "未知のキーです: {key}",
		"too_small":      "{min} 以上である必要があります",
		"too_big":        "{max} 以下である必要があります",
		"too_short":      "短すぎます",
		"too_long":       "長すぎます",
		"invalid_enum":   "{values} のいずれかである必要があります",
		"pattern":        "{pattern} に一致しません",
		"invalid_format": "形式が不正です",
		"check_failed":   "検査に失敗しました",
		"unresolved_ref": "構造体の参照を解決できません: {name}",
		"duplicate_key":  "キーが重複しています",
		"parse_error":    "解析エラー",
		"truncated":      "打ち切られました",
		"custom":         "値が不正です",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dict[t.lang][code]
	if !ok {
		return code
	}
	return fill(tmpl, data)
}

// fill substitutes {key} placeholders. Placeholders without data become "?".
func fill(tmpl string, data map[string]string) string {
	if !strings.Contains(tmpl, "{") {
		return tmpl
	}
	var b strings.Builder
	for {
		i := strings.IndexByte(tmpl, '{')
		if i < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		j := strings.IndexByte(tmpl[i:], '}')
		if j < 0 {
			b.WriteString(tmpl)
			return b.String()
		}
		b.WriteString(tmpl[:i])
		if v, ok := data[tmpl[i+1:i+j]]; ok {
			b.WriteString(v)
		} else {
			b.WriteByte('?')
		}
		tmpl = tmpl[i+j+1:]
	}
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
