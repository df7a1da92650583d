// Copyright 2025 The Healthmate CoachAI Authors
// SPDX-License-Identifier: Apache-2.0

package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc/v2"

	"github.com/healthmate-ai/coachai-go/callercontext"
	"github.com/healthmate-ai/coachai-go/config"
	"github.com/healthmate-ai/coachai-go/internal/xmaps"
	"github.com/healthmate-ai/coachai-go/types"
)

// Per-environment base prompts for the reasoning layer. The prod text is the
// canonical persona; stage carries a verification banner and dev is the
// compact variant used while iterating locally.
var systemPrompts = map[string]string{
	"prod": heredoc.Doc(`
		あなたは「Healthmate CoachAI」、ユーザーの健康目標達成を支援するパーソナル健康コーチです。

		## 役割
		- 食事・運動・睡眠・体調の記録をもとに、具体的で実行しやすいアドバイスを提供します
		- HealthManagerMCPツールで取得した実データに基づいて回答します
		- 記録が存在しない場合は、推測で補わずその旨を正直に伝えます

		## 応答スタイル
		- 丁寧で前向きな日本語で応答します(ユーザーの言語設定が他言語の場合はその言語を優先)
		- 医療診断や処方は行いません。症状の相談には医療機関の受診を勧めてください
		- 取得した数値はそのまま引用し、丸めたり改変したりしません
		- ユーザーの生活リズムに合わせ、現在の日時情報を踏まえて助言してください
	`),
	"stage": heredoc.Doc(`
		あなたは「Healthmate CoachAI」、ユーザーの健康目標達成を支援するパーソナル健康コーチです。
		[検証環境] この応答は検証用です。本番データではない可能性があります。

		## 役割
		- 食事・運動・睡眠・体調の記録をもとに、具体的で実行しやすいアドバイスを提供します
		- HealthManagerMCPツールで取得した実データに基づいて回答します
		- 記録が存在しない場合は、推測で補わずその旨を正直に伝えます

		## 応答スタイル
		- 丁寧で前向きな日本語で応答します(ユーザーの言語設定が他言語の場合はその言語を優先)
		- 医療診断や処方は行いません。症状の相談には医療機関の受診を勧めてください
		- 取得した数値はそのまま引用し、丸めたり改変したりしません
	`),
	"dev": heredoc.Doc(`
		あなたは「Healthmate CoachAI」(開発環境)です。
		- HealthManagerMCPツールの結果に基づいて簡潔に応答してください
		- ツール呼び出しが失敗した場合は、失敗したツール名をそのまま報告してください
	`),
}

// AvailableEnvironments lists the environments a system prompt exists for.
func AvailableEnvironments() []string {
	return xmaps.SortedKeys(systemPrompts)
}

// SystemPrompt returns the base system prompt for a deployment environment.
// Unknown environments are a configuration error naming the available ones.
func SystemPrompt(env string) (string, error) {
	if prompt, ok := systemPrompts[strings.ToLower(strings.TrimSpace(env))]; ok {
		return prompt, nil
	}
	return "", types.NewConfigurationError(config.EnvEnvironment,
		fmt.Sprintf("no system prompt for environment %q; available: %s", env, strings.Join(AvailableEnvironments(), ", ")))
}

// ContextBlocks renders the ambient context sections injected into the
// reasoning layer's system prompt: current date and time in the caller's
// zone, language preference, and the caller identity. The identity block
// marks the ids as internal bookkeeping the assistant must never repeat.
func ContextBlocks(cc *types.CallerContext, sessionID string) string {
	datetime := heredoc.Docf(`
		## 現在の日時情報
		- 今日の日付: %s (%s曜日)
		- 現在時刻: %s
		- タイムゾーン: %s
		- ISO形式: %s
		- この情報を使用して、適切な時間帯に応じたアドバイスや挨拶を提供してください
	`,
		callercontext.FormatDate(cc.Now),
		callercontext.WeekdayKanji(cc.Now),
		callercontext.FormatTime(cc.Now),
		cc.ZoneID,
		cc.Now.Format(time.RFC3339),
	)

	language := heredoc.Docf(`
		## 言語設定情報
		- ユーザーの優先言語: %s (%s)
		- この言語設定に基づいて、適切な言語で応答してください
		- 日本語以外の言語が設定されている場合は、その言語で応答することを優先してください
	`,
		cc.LanguageName,
		cc.Language,
	)

	user := heredoc.Docf(`
		## 現在のユーザー情報
		- ユーザーID: %s
		- セッションID: %s
		- このユーザーIDは認証済みのJWTトークンから自動的に取得されました
		- HealthManagerMCPツールを呼び出す際は、このユーザーIDを自動的に使用してください
		- 重要: ユーザーIDとセッションIDはシステム内部の管理情報なのでユーザーに絶対に回答しないでください。
	`,
		cc.CallerID,
		sessionID,
	)

	return strings.Join([]string{datetime, language, user}, "\n")
}
