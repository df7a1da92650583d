// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package callercontext

import (
	"strings"
	"time"
)

// weekdayKanji is indexed by [time.Weekday], Sunday first.
var weekdayKanji = [7]string{"日", "月", "火", "水", "木", "金", "土"}

// FormatDate renders t as a zero-padded Japanese calendar date, for example
// 2025年08月21日.
func FormatDate(t time.Time) string {
	return t.Format("2006年01月02日")
}

// FormatTime renders the time of day of t in Japanese, for example 15時04分.
func FormatTime(t time.Time) string {
	return t.Format("15時04分")
}

// WeekdayKanji returns the single-kanji weekday of t.
func WeekdayKanji(t time.Time) string {
	return weekdayKanji[t.Weekday()]
}

var languageNames = map[string]string{
	"ja":    "日本語",
	"en":    "English",
	"en-us": "English (US)",
	"en-gb": "English (UK)",
	"zh":    "中文",
	"zh-cn": "中文 (简体)",
	"zh-tw": "中文 (繁體)",
	"ko":    "한국어",
	"es":    "Español",
	"fr":    "Français",
	"de":    "Deutsch",
	"it":    "Italiano",
	"pt":    "Português",
	"ru":    "Русский",
}

// LanguageName resolves a language code to its display name. Unknown codes
// come back unchanged so the reasoning layer still sees what was requested.
func LanguageName(code string) string {
	if name, ok := languageNames[strings.ToLower(code)]; ok {
		return name
	}
	return code
}
