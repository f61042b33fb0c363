// Package format renders notification payloads into Telegram HTML messages.
//
// Every user-supplied field is escaped before interpolation so untrusted
// content can never alter markup structure. Every optional section is
// independently omittable: a payload carrying only the required fields still
// produces a valid minimal message.
package format

import (
	"fmt"
	"html"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/wishfox/notifier/internal/domain"
)

// locale bundles the label table and number formatting for one language.
type locale struct {
	updatesFrom   string
	defaultOwner  string
	listLabel     string
	wishLabel     string
	defaultTitle  string
	descLabel     string
	priorityLabel string
	statusLabel   string
	priceLabel    string
	tagsLabel     string
	linkLabel     string
	deepLinkLabel string
	priorities    map[string]string
	statuses      map[string]string
	groupSep      string
	decimalSep    string
}

var locales = map[string]locale{
	"ru": {
		updatesFrom:   "Обновления от",
		defaultOwner:  "Обновления от Wishfox",
		listLabel:     "Список",
		wishLabel:     "Желание",
		defaultTitle:  "Желание",
		descLabel:     "Описание",
		priorityLabel: "Приоритет",
		statusLabel:   "Статус",
		priceLabel:    "Цена",
		tagsLabel:     "Теги",
		linkLabel:     "Ссылка",
		deepLinkLabel: "Открыть мини-приложение",
		priorities: map[string]string{
			"low":    "Низкий",
			"medium": "Средний",
			"high":   "Высокий",
		},
		statuses: map[string]string{
			"planned": "Запланировано",
			"ordered": "Заказано",
			"gifted":  "Подарено",
		},
		groupSep:   " ",
		decimalSep: ",",
	},
	"en": {
		updatesFrom:   "Updates from",
		defaultOwner:  "Updates from Wishfox",
		listLabel:     "List",
		wishLabel:     "Wish",
		defaultTitle:  "Wish",
		descLabel:     "Description",
		priorityLabel: "Priority",
		statusLabel:   "Status",
		priceLabel:    "Price",
		tagsLabel:     "Tags",
		linkLabel:     "Link",
		deepLinkLabel: "Open the mini app",
		priorities: map[string]string{
			"low":    "Low",
			"medium": "Medium",
			"high":   "High",
		},
		statuses: map[string]string{
			"planned": "Planned",
			"ordered": "Ordered",
			"gifted":  "Gifted",
		},
		groupSep:   ",",
		decimalSep: ".",
	},
}

// DefaultLocale is used when the recipient's locale has no label table.
const DefaultLocale = "ru"

// Render produces the Telegram HTML message body for a notification payload.
func Render(p domain.Payload, loc string) string {
	l, ok := locales[strings.ToLower(loc)]
	if !ok {
		l = locales[DefaultLocale]
	}

	var lines []string

	if p.Owner.DisplayName != "" {
		lines = append(lines, fmt.Sprintf("%s <b>%s</b>", l.updatesFrom, html.EscapeString(p.Owner.DisplayName)))
	} else {
		lines = append(lines, l.defaultOwner)
	}

	if p.Wishlist.Title != "" {
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.listLabel, html.EscapeString(p.Wishlist.Title)))
	}

	title := p.Title
	if title == "" {
		title = l.defaultTitle
	}
	lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.wishLabel, html.EscapeString(title)))

	if p.Description != nil && *p.Description != "" {
		desc := strings.ReplaceAll(html.EscapeString(*p.Description), "\n", "<br/>")
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.descLabel, desc))
	}

	if label := localize(l.priorities, p.Priority); label != "" {
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.priorityLabel, html.EscapeString(label)))
	}

	if label := localize(l.statuses, p.Status); label != "" {
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.statusLabel, html.EscapeString(label)))
	}

	if p.Price != nil && *p.Price != "" {
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.priceLabel, html.EscapeString(formatPrice(*p.Price, l))))
	}

	if tags := sanitizeTags(p.Tags); len(tags) > 0 {
		lines = append(lines, fmt.Sprintf("<b>%s:</b> %s", l.tagsLabel, strings.Join(tags, ", ")))
	}

	if p.URL != nil && *p.URL != "" {
		u := html.EscapeString(*p.URL)
		lines = append(lines, fmt.Sprintf(`<b>%s:</b> <a href="%s">%s</a>`, l.linkLabel, u, u))
	}

	if p.DeepLink != nil && *p.DeepLink != "" {
		u := html.EscapeString(*p.DeepLink)
		lines = append(lines, fmt.Sprintf(`<b>%s:</b> <a href="%s">%s</a>`, l.deepLinkLabel, u, u))
	}

	return strings.Join(lines, "\n")
}

// localize maps an enumerated value through the label table.
// Unknown values pass through verbatim; absent values yield the empty string
// so the caller omits the line entirely.
func localize(table map[string]string, value string) string {
	if value == "" {
		return ""
	}
	if label, ok := table[strings.ToLower(value)]; ok {
		return label
	}
	return value
}

// formatPrice quantizes a decimal price string to 2 places and groups the
// integer digits for readability. Malformed values degrade to literal
// pass-through rather than failing the whole message.
func formatPrice(value string, l locale) string {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return value
	}

	fixed := d.StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, fracPart, _ := strings.Cut(fixed, ".")

	var groups []string
	for len(intPart) > 3 {
		groups = append([]string{intPart[len(intPart)-3:]}, groups...)
		intPart = intPart[:len(intPart)-3]
	}
	groups = append([]string{intPart}, groups...)

	out := strings.Join(groups, l.groupSep) + l.decimalSep + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

// sanitizeTags trims, drops empty entries, escapes, and hash-prefixes tags.
func sanitizeTags(raw []string) []string {
	var tags []string
	for _, tag := range raw {
		cleaned := strings.TrimSpace(tag)
		if cleaned == "" {
			continue
		}
		tags = append(tags, "#"+html.EscapeString(cleaned))
	}
	return tags
}
