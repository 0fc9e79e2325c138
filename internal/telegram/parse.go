package telegram

import "strings"

// Chat grammar:
//
//	Subject: <text>          create a post for <text>
//	Adjust:<postID>: <note>  regenerate <postID> with <note>
//	approve:<postID>         inline button callback
//	adjust:<postID>          inline button callback
//	cancel:<postID>          inline button callback

// ParseSubject extracts the subject from a "Subject: ..." message. The
// prefix match is case-insensitive; the subject itself is trimmed.
func ParseSubject(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len("subject:") {
		return "", false
	}
	if !strings.EqualFold(trimmed[:len("subject:")], "subject:") {
		return "", false
	}
	subject := strings.TrimSpace(trimmed[len("subject:"):])
	if subject == "" {
		return "", false
	}
	return subject, true
}

// ParseAdjustment extracts the post ID and note from an
// "Adjust:<postID>: <note>" message.
func ParseAdjustment(text string) (postID, note string, ok bool) {
	trimmed := strings.TrimSpace(text)
	if len(trimmed) < len("adjust:") {
		return "", "", false
	}
	if !strings.EqualFold(trimmed[:len("adjust:")], "adjust:") {
		return "", "", false
	}

	rest := trimmed[len("adjust:"):]
	sep := strings.Index(rest, ":")
	if sep < 0 {
		return "", "", false
	}

	postID = strings.TrimSpace(rest[:sep])
	note = strings.TrimSpace(rest[sep+1:])
	if postID == "" || note == "" {
		return "", "", false
	}
	return postID, note, true
}

// ParseCallback splits inline-button callback data of the form
// "<action>:<postID>".
func ParseCallback(data string) (action, postID string, ok bool) {
	sep := strings.Index(data, ":")
	if sep <= 0 || sep == len(data)-1 {
		return "", "", false
	}
	return data[:sep], data[sep+1:], true
}
