// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package eventsync

import "github.com/bureau-foundation/eventchat/lib/roster"

// Wording holds the texts posted into chat groups and the description of
// created groups. Opening and Closing are fmt formats taking the
// timestamp.
type Wording struct {
	Opening   string
	FirstFill string
	Update    string
	Closing   string

	// Bullet starts every person line.
	Bullet string
	// Excluded and Missing are appended to the names of people in
	// excluded services and people unknown to the chat app.
	Excluded string
	Missing  string

	GroupDescription string
}

// EnglishWording is the default wording.
var EnglishWording = Wording{
	Opening:   "AUTOMATED message %s\n",
	FirstFill: "Initial fill of the group with services",
	Update:    "Update of the group with current services",
	Closing:   "END OF AUTOMATED message at %s",
	Bullet:    "\n• ",
	Excluded:  " - (omitted from group)",
	Missing:   " - MISSING - (unknown email)",
	GroupDescription: "Automatically created group for discussing the event named in the title." +
		" Everyone serving at it in ChurchTools is added about two weeks ahead" +
		" (except the greeting and offering services)." +
		" Missing or changed people are added on later runs." +
		" ATTENTION: the group is deleted a few days after the event!",
}

// GermanWording matches the texts of existing German deployments.
var GermanWording = Wording{
	Opening:   "AUTOMATISCHE Nachricht %s\n",
	FirstFill: "Erstbefüllung der Gruppe mit Diensten",
	Update:    "Aktualisierung der Gruppe mit aktuellen Diensten",
	Closing:   "ENDE AUTOMATISCHE Nachricht um %s",
	Bullet:    "\n• ",
	Excluded:  " - (für Gruppe ausgelassen)",
	Missing:   " - FEHLT - (Mailadresse unbekannt)",
	GroupDescription: "Automatisch erstellte Gruppe für die Diskussion zur im Titel angegeben Veranstaltung" +
		" Alle in ChurchTools beteiligten Personen werden mit ca. 2 Wochen Vorlauf hinzugefügt" +
		" (Ausnahme - Die Dienste Begrüßung/Opfer werden nicht automatisch hinzugefügt)" +
		" Fehlende/ Aktualisierte Personen werden sporadisch mit neuen Wochen aktualisiert" +
		" - ACHTUNG - Wenige Tage nach Veranstaltung wird die Gruppe wieder gelöscht!",
}

// WordingFor returns the preset for locale, English for anything but
// German.
func WordingFor(locale roster.Locale) Wording {
	if locale == roster.LocaleGerman {
		return GermanWording
	}
	return EnglishWording
}
