// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package roster

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/eventchat/churchtools"
)

// Locale selects the weekday abbreviations used in group names and
// status messages.
type Locale string

const (
	// LocaleEnglish uses "Mon".."Sun", the C locale abbreviations.
	LocaleEnglish Locale = "en"
	// LocaleGerman uses "Mo".."So".
	LocaleGerman Locale = "de"
)

var weekdays = map[Locale][7]string{
	LocaleEnglish: {"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"},
	LocaleGerman:  {"So", "Mo", "Di", "Mi", "Do", "Fr", "Sa"},
}

// ParseLocale validates a locale name. The empty string selects English.
func ParseLocale(name string) (Locale, error) {
	if name == "" {
		return LocaleEnglish, nil
	}
	locale := Locale(name)
	if _, ok := weekdays[locale]; !ok {
		return "", fmt.Errorf("roster: unsupported locale %q (want %q or %q)", name, LocaleEnglish, LocaleGerman)
	}
	return locale, nil
}

// Weekday returns the abbreviated weekday of t. Unknown locales fall back
// to English.
func (l Locale) Weekday(t time.Time) string {
	names, ok := weekdays[l]
	if !ok {
		names = weekdays[LocaleEnglish]
	}
	return names[t.Weekday()]
}

// FormatMinute renders t as "Wkd dd.mm (HH:MM)".
func (l Locale) FormatMinute(t time.Time) string {
	return l.Weekday(t) + t.Format(" 02.01 (15:04)")
}

// FormatSecond renders t as "Wkd dd.mm (HH:MM:SS)".
func (l Locale) FormatSecond(t time.Time) string {
	return l.Weekday(t) + t.Format(" 02.01 (15:04:05)")
}

// GroupName returns the chat group title prefix of event:
// "_Wkd dd.mm (HH:MM) - <event name>", with the start time converted to
// location. Operators may append to a generated title; lookups therefore
// match it as a prefix.
func GroupName(event *churchtools.Event, location *time.Location, locale Locale) string {
	if location == nil {
		location = time.Local
	}
	return "_" + locale.FormatMinute(event.StartDate.In(location)) + " - " + event.Name
}
