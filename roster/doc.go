// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package roster imports the member registry from spreadsheet rows.

Rows arrive as JSON objects whose headers follow whatever the society's
spreadsheet used. Headers are lower-cased, stripped of accents and have
spaces and hyphens replaced by underscores before the aliases are matched:

	secret   id_card, carnet, carne, cedula
	number   member_number, numero_miembro, numero_de_miembro, numero
	name     name, nombre
	fee      fee_status, estado, cuota

The fee column counts as paid for "paid", "pagado", "al dia", "si", "yes",
"1" and "true" (accents and case ignored); anything else is pending.

Importing is an upsert keyed by member number. Re-importing a roster
refreshes names, fee status and secrets but never touches whether a member
has already voted.
*/
package roster
