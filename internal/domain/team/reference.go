package team

import (
	"regexp"
	"strings"
)

// Alignment is the conference and division a franchise plays in.
type Alignment struct {
	Conference Conference
	Division   Division
}

var reference = map[string]Alignment{
	"BAL": {ConferenceAFC, DivisionNorth},
	"CIN": {ConferenceAFC, DivisionNorth},
	"CLE": {ConferenceAFC, DivisionNorth},
	"PIT": {ConferenceAFC, DivisionNorth},
	"HOU": {ConferenceAFC, DivisionSouth},
	"IND": {ConferenceAFC, DivisionSouth},
	"JAX": {ConferenceAFC, DivisionSouth},
	"TEN": {ConferenceAFC, DivisionSouth},
	"BUF": {ConferenceAFC, DivisionEast},
	"MIA": {ConferenceAFC, DivisionEast},
	"NE":  {ConferenceAFC, DivisionEast},
	"NYJ": {ConferenceAFC, DivisionEast},
	"DEN": {ConferenceAFC, DivisionWest},
	"KC":  {ConferenceAFC, DivisionWest},
	"LV":  {ConferenceAFC, DivisionWest},
	"LAC": {ConferenceAFC, DivisionWest},
	"CHI": {ConferenceNFC, DivisionNorth},
	"DET": {ConferenceNFC, DivisionNorth},
	"GB":  {ConferenceNFC, DivisionNorth},
	"MIN": {ConferenceNFC, DivisionNorth},
	"ATL": {ConferenceNFC, DivisionSouth},
	"CAR": {ConferenceNFC, DivisionSouth},
	"NO":  {ConferenceNFC, DivisionSouth},
	"TB":  {ConferenceNFC, DivisionSouth},
	"DAL": {ConferenceNFC, DivisionEast},
	"NYG": {ConferenceNFC, DivisionEast},
	"PHI": {ConferenceNFC, DivisionEast},
	"WAS": {ConferenceNFC, DivisionEast},
	"ARI": {ConferenceNFC, DivisionWest},
	"LAR": {ConferenceNFC, DivisionWest},
	"SF":  {ConferenceNFC, DivisionWest},
	"SEA": {ConferenceNFC, DivisionWest},
}

// Relocated franchises keep their history under the current abbreviation.
var legacyAbbr = map[string]string{
	"LA":  "LAR",
	"OAK": "LV",
	"SD":  "LAC",
	"STL": "LAR",
}

var abbrPattern = regexp.MustCompile(`^[A-Z]{2,3}$`)

// Lookup returns the static alignment for a current abbreviation.
func Lookup(abbr string) (Alignment, bool) {
	a, ok := reference[abbr]
	return a, ok
}

// Abbreviations lists the reference franchises.
func Abbreviations() []string {
	out := make([]string, 0, len(reference))
	for abbr := range reference {
		out = append(out, abbr)
	}
	return out
}

// Canonical upper-cases raw, maps legacy abbreviations and reports whether
// the result is a usable team reference.
func Canonical(raw string) (string, bool) {
	abbr := strings.ToUpper(strings.TrimSpace(raw))
	switch abbr {
	case "", "UNK", "NA":
		return "", false
	}
	if current, ok := legacyAbbr[abbr]; ok {
		abbr = current
	}
	if !abbrPattern.MatchString(abbr) {
		return "", false
	}
	return abbr, true
}

func ParseConference(raw string) (Conference, bool) {
	switch Conference(strings.ToUpper(strings.TrimSpace(raw))) {
	case ConferenceAFC:
		return ConferenceAFC, true
	case ConferenceNFC:
		return ConferenceNFC, true
	}
	return "", false
}

func ParseDivision(raw string) (Division, bool) {
	value := strings.TrimSpace(raw)
	// Provider rows sometimes carry the full label, e.g. "NFC West".
	if idx := strings.LastIndex(value, " "); idx >= 0 {
		value = value[idx+1:]
	}
	switch strings.ToLower(value) {
	case "north":
		return DivisionNorth, true
	case "south":
		return DivisionSouth, true
	case "east":
		return DivisionEast, true
	case "west":
		return DivisionWest, true
	}
	return "", false
}
