package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTranslator_DefaultAndJapanese(t *testing.T) {
	// default is en
	assert.Equal(t, "required property missing", T("required", nil))
	assert.Equal(t, "invalid type: expected int, got string", T("invalid_type", map[string]string{"expected": "int", "got": "string"}))

	SetLanguage("ja")
	defer SetLanguage("en")
	assert.Equal(t, "未知のキーです: x", T("unknown_key", map[string]string{"key": "x"}))
}

func TestTranslator_UnknownCodeAndMissingData(t *testing.T) {
	assert.Equal(t, "no_such_code", T("no_such_code", nil))
	assert.Equal(t, "unknown key ?", T("unknown_key", nil))
}

type upper struct{}

func (upper) Message(code string, _ map[string]string) string { return "X:" + code }

func TestSetTranslator(t *testing.T) {
	SetTranslator(upper{})
	defer SetTranslator(nil)
	assert.Equal(t, "X:required", T("required", nil))
}
