package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "name" or "index").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "unknown_type":
			msg = "未知の型です"
		case "unknown_variant":
			msg = "未知のバリアントです"
		case "path_fault":
			msg = "パスを解決できません"
		case "index_fault":
			msg = "インデックスが範囲外です"
		case "parse_error":
			msg = "解析エラー"
		case "invalid_type":
			msg = "型が不正です"
		case "invalid_value":
			msg = "値が不正です"
		case "invalid_schema":
			msg = "スキーマが不正です"
		case "duplicate_key":
			msg = "キーが重複しています"
		case "truncated":
			msg = "打ち切られました"
		case "unknown_tree":
			msg = "未知のツリーです"
		case "tree_exists":
			msg = "ツリーは既に存在します"
		}
	default: // "en"
		switch code {
		case "unknown_type":
			msg = "unknown type"
		case "unknown_variant":
			msg = "unknown variant"
		case "path_fault":
			msg = "path does not resolve"
		case "index_fault":
			msg = "index out of range"
		case "parse_error":
			msg = "parse error"
		case "invalid_type":
			msg = "invalid type"
		case "invalid_value":
			msg = "invalid value"
		case "invalid_schema":
			msg = "invalid schema"
		case "duplicate_key":
			msg = "duplicate key"
		case "truncated":
			msg = "truncated"
		case "unknown_tree":
			msg = "unknown tree"
		case "tree_exists":
			msg = "tree already exists"
		}
	}
	if msg == "" {
		return code
	}
	if name := data["name"]; name != "" {
		msg += ": " + name
	}
	return msg
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// Languages lists the built-in dictionary languages.
func Languages() []string { return []string{"en", "ja"} }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	lang = strings.ToLower(lang)
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
