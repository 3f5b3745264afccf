package services

import (
	"encoding/json"
	"strings"
)

// ExtractJSON はモデルの自由形式の応答から、最初に現れる妥当なJSONオブジェクトを取り出します。
// モデルは純粋なJSONを返すとは限らないため、前後の文章やコードフェンスは無視し、
// 波括弧の対応が取れた {...} 部分文字列を先頭から順に検証します。
func ExtractJSON(text string) (json.RawMessage, error) {
	for start := strings.IndexByte(text, '{'); start >= 0; {
		if end := matchBrace(text, start); end > start {
			candidate := text[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, newError(KindParse, nil, "Failed to parse AI response")
}

// matchBrace は text[start] の '{' に対応する '}' の位置を返します。
// 文字列リテラル内の括弧とエスケープは数えません。対応が無ければ -1。
func matchBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}
