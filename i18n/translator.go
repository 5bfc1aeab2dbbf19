package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "ge" or "expected"). Placeholders are written as {name}.
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"missing":                 "Field required",
		"model_error":             "Input should be a valid mapping",
		"value_error":             "Value error, {error}",
		"extra_forbidden":         "Extra inputs are not permitted",
		"parse_error":             "Invalid input document: {error}",
		"string_type":             "Input should be a valid string",
		"int_type":                "Input should be a valid integer",
		"int_parsing":             "Input should be a valid integer, unable to parse string as an integer",
		"int_from_float":          "Input should be a valid integer, got a number with a fractional part",
		"float_type":              "Input should be a valid number",
		"float_parsing":           "Input should be a valid number, unable to parse string as a number",
		"bool_type":               "Input should be a valid boolean",
		"bool_parsing":            "Input should be a valid boolean, unable to interpret input",
		"enum":                    "Input should be {expected}",
		"greater_than_equal":      "Input should be greater than or equal to {ge}",
		"greater_than":            "Input should be greater than {gt}",
		"less_than_equal":         "Input should be less than or equal to {le}",
		"less_than":               "Input should be less than {lt}",
		"string_too_short":        "String should have at least {min_length} characters",
		"string_too_long":         "String should have at most {max_length} characters",
		"string_pattern_mismatch": "String should match pattern '{pattern}'",
	},
	"ja": {
		"missing":                 "必須フィールドです",
		"model_error":             "マッピングである必要があります",
		"value_error":             "値エラー: {error}",
		"extra_forbidden":         "未定義のキーは許可されていません",
		"parse_error":             "入力ドキュメントが不正です: {error}",
		"string_type":             "文字列である必要があります",
		"int_type":                "整数である必要があります",
		"int_parsing":             "整数として解釈できません",
		"int_from_float":          "小数部を持つ数値は整数にできません",
		"float_type":              "数値である必要があります",
		"float_parsing":           "数値として解釈できません",
		"bool_type":               "真偽値である必要があります",
		"bool_parsing":            "真偽値として解釈できません",
		"enum":                    "{expected} のいずれかである必要があります",
		"greater_than_equal":      "{ge} 以上である必要があります",
		"greater_than":            "{gt} より大きい必要があります",
		"less_than_equal":         "{le} 以下である必要があります",
		"less_than":               "{lt} 未満である必要があります",
		"string_too_short":        "{min_length} 文字以上である必要があります",
		"string_too_long":         "{max_length} 文字以下である必要があります",
		"string_pattern_mismatch": "パターン '{pattern}' に一致する必要があります",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	tmpl, ok := dict[code]
	if !ok {
		return code
	}
	return expand(tmpl, data)
}

func expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
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
