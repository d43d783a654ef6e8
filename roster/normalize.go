// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package roster

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/danielhkuo/ballotbox/models"
)

// Header aliases, already in normalized form. The first alias with a
// non-empty value wins.
var (
	secretKeys = []string{"id_card", "carnet", "carne", "cedula"}
	numberKeys = []string{"member_number", "numero_miembro", "numero_de_miembro", "numero"}
	nameKeys   = []string{"name", "nombre"}
	feeKeys    = []string{"fee_status", "estado", "cuota"}
)

var paidWords = map[string]bool{
	"paid":   true,
	"pagado": true,
	"al dia": true,
	"si":     true,
	"yes":    true,
	"1":      true,
	"true":   true,
}

// foldAccents lower-cases s and strips combining marks ("Número" → "numero").
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

// NormalizeKey turns a spreadsheet header into its canonical form:
// "Número de Miembro" → "numero_de_miembro".
func NormalizeKey(key string) string {
	k := foldAccents(key)
	k = strings.Map(func(r rune) rune {
		if r == ' ' || r == '-' {
			return '_'
		}
		return r
	}, k)
	return k
}

// ClassifyFeeStatus maps the free-form fee column onto paid or pending.
func ClassifyFeeStatus(raw string) string {
	v := strings.Join(strings.Fields(foldAccents(raw)), " ")
	if paidWords[v] {
		return models.FeePaid
	}
	return models.FeePending
}

// FormatValue renders a cell as text. Numbers lose any exponent or trailing
// decimals, so 1001 stays "1001".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		if f, err := x.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64)
		}
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

// Row is one roster line after header and value normalisation.
type Row struct {
	MemberNumber string
	Name         string
	Secret       string
	FeeStatus    string
}

// Complete reports whether the row carries everything a member needs.
func (r Row) Complete() bool {
	return r.MemberNumber != "" && r.Name != "" && r.Secret != ""
}

// ParseRow normalises the headers of raw and resolves the aliases.
func ParseRow(raw map[string]any) Row {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	cells := make(map[string]string, len(raw))
	for _, k := range keys {
		nk := NormalizeKey(k)
		if cells[nk] != "" {
			continue
		}
		cells[nk] = FormatValue(raw[k])
	}

	pick := func(aliases []string) string {
		for _, a := range aliases {
			if v := cells[a]; v != "" {
				return v
			}
		}
		return ""
	}

	return Row{
		MemberNumber: pick(numberKeys),
		Name:         pick(nameKeys),
		Secret:       pick(secretKeys),
		FeeStatus:    ClassifyFeeStatus(pick(feeKeys)),
	}
}
