// Package parser holds the free-text parsers applied to contract
// records: lifecycle status from an end date, currency extraction from
// package descriptions and coarse plan classification.
package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/blackrocketlancamentos-commits/NOCAGESTOR/pkg/utils"
)

// Status is a contract lifecycle status label.
type Status string

const (
	StatusExpired     Status = "Vencido"
	StatusDueImminent Status = "Vence Hoje/Amanhã"
	StatusDueSoon     Status = "A Vencer"
	StatusActive      Status = "Ativo"
)

// ContractStatus derives the lifecycle status from an end date relative
// to the given reference time. Day counting is anchored to the start of
// the reference day in its own timezone. Returns ok=false when the end
// date is absent or unparsable, in which case the caller renders no
// status at all.
func ContractStatus(endDate string, ref time.Time) (Status, bool) {
	if endDate == "" {
		return "", false
	}
	end, err := time.ParseInLocation(utils.DateLayout, endDate, ref.Location())
	if err != nil {
		return "", false
	}

	today := utils.StartOfDay(ref)
	diffDays := int(math.Ceil(end.Sub(today).Hours() / 24))

	switch {
	case diffDays < 0:
		return StatusExpired, true
	case diffDays < 2:
		return StatusDueImminent, true
	case diffDays <= 7:
		return StatusDueSoon, true
	default:
		return StatusActive, true
	}
}

var currencyPattern = regexp.MustCompile(`R\$\s*([\d.,]+)`)

// PackageValue extracts the first R$ amount from a free-text package
// description. Brazilian formatting uses `.` for thousands and `,` for
// decimals; a value without a comma is taken as already machine-parsable.
// Missing pattern or parse failure yields 0.
func PackageValue(packageInfo string) float64 {
	match := currencyPattern.FindStringSubmatch(packageInfo)
	if match == nil {
		return 0
	}

	numberStr := strings.TrimSpace(match[1])
	cleaned := numberStr
	if strings.Contains(numberStr, ",") {
		cleaned = strings.ReplaceAll(numberStr, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return value
}

// PackageType classifies a package description into a coarse plan label.
// Known keywords win; short descriptions without a colon pass through
// verbatim; everything else is a custom plan.
func PackageType(packageInfo string) string {
	if packageInfo == "" {
		return "N/A"
	}
	lower := strings.ToLower(packageInfo)
	switch {
	case strings.Contains(lower, "permuta"):
		return "Permuta"
	case strings.Contains(lower, "premium"):
		return "Premium"
	case strings.Contains(lower, "básico"):
		return "Básico"
	}
	if utf8.RuneCountInString(packageInfo) < 25 && !strings.Contains(packageInfo, ":") {
		return packageInfo
	}
	return "Personalizado"
}
