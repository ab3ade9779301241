package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Dephilia/rpoaurk/internal/application"
	"github.com/Dephilia/rpoaurk/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const ruleWidth = 40

type userField struct {
	key   string
	label string
}

var userFields = []userField{
	{key: "display_name", label: "Display name"},
	{key: "is_channel", label: "Is channel"},
	{key: "nick_name", label: "Nick name"},
	{key: "has_profile_image", label: "Has Prof Img"},
	{key: "location", label: "Location"},
	{key: "date_of_birth", label: "Birth"},
	{key: "relationship", label: "Relationship"},
	{key: "avatar", label: "Avatar"},
	{key: "full_name", label: "Full name"},
	{key: "gender", label: "Gender"},
	{key: "recruited", label: "Recruited"},
	{key: "id", label: "Id"},
	{key: "karma", label: "Karma"},
}

// RenderUser renders a user object or a getOwnProfile payload.
func RenderUser(raw json.RawMessage) (string, error) {
	user, err := decodeUser(raw)
	if err != nil {
		return "", err
	}

	return run(func(s styles) string { return renderUser(user, s) })
}

func RenderEvent(event domain.CometEvent) (string, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(event.Data, &items); err != nil {
		items = []json.RawMessage{event.Data}
	}

	return run(func(s styles) string { return renderEvent(event.Offset, items, s) })
}

func RenderStatus(status application.Status) (string, error) {
	return run(func(s styles) string { return renderStatus(status, s) })
}

func decodeUser(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var payload map[string]json.RawMessage
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: user payload: %w", domain.ErrDecode, err)
	}

	if nested, ok := payload["user_info"]; ok {
		var user map[string]json.RawMessage
		if err := json.Unmarshal(nested, &user); err != nil {
			return nil, fmt.Errorf("%w: user_info: %w", domain.ErrDecode, err)
		}
		return user, nil
	}

	return payload, nil
}

func renderUser(user map[string]json.RawMessage, s styles) string {
	rule := s.rule.Render(strings.Repeat("=", ruleWidth))
	lines := []string{rule}

	for _, field := range userFields {
		label := s.label.Render(fmt.Sprintf("%-14s", field.label+":"))
		value := s.empty.Render("n/a")
		if raw, ok := user[field.key]; ok {
			value = s.value.Render(scalarText(raw))
		}
		lines = append(lines, label+value)
	}

	lines = append(lines, rule)
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderEvent(offset int64, items []json.RawMessage, s styles) string {
	lines := make([]string, 0, len(items))
	prefix := s.offset.Render(fmt.Sprintf("#%d", offset))

	for _, item := range items {
		kind, text := describeItem(item)
		lines = append(lines, lipgloss.JoinHorizontal(
			lipgloss.Top,
			prefix,
			" ",
			s.kind.Render(kind),
			" ",
			s.value.Render(text),
		))
	}

	if len(lines) == 0 {
		return prefix + " " + s.empty.Render("(empty)")
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderStatus(status application.Status, s styles) string {
	stage := s.warning.Render(status.Stage.String())
	if status.Stage == domain.StageAuthorized {
		stage = s.good.Render(status.Stage.String())
	}

	consumer := status.ConsumerKey
	if consumer == "" {
		consumer = "not configured"
	}
	if status.FromEnv {
		consumer += " (env)"
	}

	authorizedAt := "never"
	if !status.AuthorizedAt.IsZero() {
		authorizedAt = status.AuthorizedAt.Format(time.RFC3339)
	}

	return lipgloss.JoinVertical(
		lipgloss.Left,
		s.title.Render("Plurk authorization"),
		s.label.Render("consumer:   ")+s.value.Render(consumer),
		s.label.Render("stage:      ")+stage,
		s.label.Render("authorized: ")+s.value.Render(authorizedAt),
		s.label.Render("keys file:  ")+s.meta.Render(status.KeysPath),
	)
}

func describeItem(item json.RawMessage) (string, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(item, &fields); err != nil {
		return "data", compact(item)
	}

	kind := "data"
	if raw, ok := fields["type"]; ok {
		kind = scalarText(raw)
	}

	for _, path := range [][]string{{"content_raw"}, {"response", "content_raw"}, {"content"}} {
		if text, ok := lookupText(fields, path); ok {
			return kind, text
		}
	}

	return kind, compact(item)
}

func lookupText(fields map[string]json.RawMessage, path []string) (string, bool) {
	raw, ok := fields[path[0]]
	if !ok {
		return "", false
	}
	if len(path) == 1 {
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", false
		}
		return text, true
	}

	var nested map[string]json.RawMessage
	if err := json.Unmarshal(raw, &nested); err != nil {
		return "", false
	}
	return lookupText(nested, path[1:])
}

func scalarText(raw json.RawMessage) string {
	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	return compact(raw)
}

func compact(raw json.RawMessage) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
