package mail

import "fmt"

// NewPostMessage は新規投稿通知のテンプレートを返す。
// 宛先ごとに挨拶文をパーソナライズする。noteが空の場合は引用部を省略する。
func NewPostMessage(posterName, linkedinURL, note string) Message {
	subject := fmt.Sprintf("Support %s's new LinkedIn post", posterName)

	noteSection := ""
	if note != "" {
		noteSection = fmt.Sprintf("\n%q\n", note)
	}

	return func(r Recipient) (string, string) {
		body := fmt.Sprintf(`Hey %s!

%s just published a new LinkedIn post and could use your support.
%s
Engage now: %s

The first 30-60 minutes matter most for reach. A quick comment or reaction makes a big difference!

- EngagePod`, r.Name, posterName, noteSection, linkedinURL)

		return subject, body
	}
}

// BroadcastMessage はアナウンス配信のテンプレートを返す。
// 件名は全宛先で共通、本文の挨拶のみパーソナライズする。
func BroadcastMessage(subject, message string) Message {
	return func(r Recipient) (string, string) {
		body := fmt.Sprintf("Hey %s!\n\n%s\n\n- EngagePod", r.Name, message)
		return subject, body
	}
}

// NewMemberAdminMessage は管理者向け新規メンバー通知の件名と本文を返す。
func NewMemberAdminMessage(name, email string) (subject, textContent string) {
	subject = fmt.Sprintf("New EngagePod member: %s", name)
	textContent = fmt.Sprintf(`New member joined EngagePod!

Name: %s
Email: %s

- EngagePod`, name, email)
	return subject, textContent
}
