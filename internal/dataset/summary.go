package dataset

import (
	"cmp"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
)

// FundCoverage describes how much history the dataset holds for one fund.
type FundCoverage struct {
	Fund string
	Rows int

	// FirstDate and LastDate are the valuation date tokens of the first
	// and last row of the fund, in dataset order.
	FirstDate string
	LastDate  string

	// LastPrice is the last parsable value of the first price column.
	LastPrice decimal.Decimal
	HasPrice  bool

	// BadPrices counts non-empty price tokens that are not numbers.
	BadPrices int
}

// Summarize returns the coverage of every fund, sorted by fund name.
// It returns a *SchemaDriftError when the fund column is missing.
func Summarize(ds *Dataset, schema Schema) ([]FundCoverage, error) {
	fundIdx := ds.Index(schema.Fund)
	if fundIdx < 0 {
		return nil, &SchemaDriftError{Missing: []string{schema.Fund}}
	}
	dateIdx := ds.Index(schema.ValuationDate)
	priceIdx := make([]int, 0, len(schema.Prices))
	for _, p := range schema.Prices {
		if i := ds.Index(p); i >= 0 {
			priceIdx = append(priceIdx, i)
		}
	}

	notations := make([]Notation, len(priceIdx))
	for n, i := range priceIdx {
		notations[n] = columnNotation(ds, i)
	}

	byFund := make(map[string]*FundCoverage)
	for _, row := range ds.Rows {
		name := row[fundIdx]
		if name == "" {
			continue
		}

		cov, ok := byFund[name]
		if !ok {
			cov = &FundCoverage{Fund: name}
			byFund[name] = cov
		}
		cov.Rows++

		if dateIdx >= 0 && row[dateIdx] != "" {
			if cov.FirstDate == "" {
				cov.FirstDate = row[dateIdx]
			}
			cov.LastDate = row[dateIdx]
		}

		for n, i := range priceIdx {
			token := row[i]
			if token == "" {
				continue
			}
			price, err := ParsePriceAs(token, notations[n])
			if err != nil {
				cov.BadPrices++
				continue
			}
			if n == 0 {
				cov.LastPrice = price
				cov.HasPrice = true
			}
		}
	}

	result := make([]FundCoverage, 0, len(byFund))
	for _, cov := range byFund {
		result = append(result, *cov)
	}
	slices.SortFunc(result, func(a, b FundCoverage) int {
		return cmp.Compare(a.Fund, b.Fund)
	})

	return result, nil
}

// Notation is the decimal separator convention of price tokens.
type Notation int

const (
	// NotationAuto decides per token. A token that fits both conventions,
	// such as "1,234" or "1.234", is read in NotationDecimalPoint.
	NotationAuto Notation = iota
	// NotationDecimalComma reads "1.234,56".
	NotationDecimalComma
	// NotationDecimalPoint reads "1,234.56".
	NotationDecimalPoint
)

// ParsePrice parses a price token in either "1,234.56" or "1.234,56"
// notation. See NotationAuto for tokens that fit both.
func ParsePrice(token string) (decimal.Decimal, error) {
	return ParsePriceAs(token, NotationAuto)
}

// ParsePriceAs parses a price token in notation n.
func ParsePriceAs(token string, n Notation) (decimal.Decimal, error) {
	s := strings.ReplaceAll(strings.TrimSpace(token), " ", "")

	if n == NotationAuto {
		n = notationOf(s)
	}
	if n == NotationDecimalComma {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}

	return decimal.NewFromString(s)
}

// columnNotation returns the notation of the first token in column i
// that fits only one convention.
func columnNotation(ds *Dataset, i int) Notation {
	for _, row := range ds.Rows {
		token := strings.ReplaceAll(strings.TrimSpace(row[i]), " ", "")
		if n := notationOf(token); n != NotationAuto {
			return n
		}
	}
	return NotationAuto
}

// notationOf returns the only notation s can be read in, or NotationAuto
// when it fits both.
func notationOf(s string) Notation {
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot < 0 && comma < 0:
		return NotationAuto
	case comma > dot:
		if strings.Count(s, ",") > 1 {
			return NotationDecimalPoint
		}
		if dot < 0 && isThousandsGroup(s, comma) {
			return NotationAuto
		}
		return NotationDecimalComma
	default:
		if strings.Count(s, ".") > 1 {
			return NotationDecimalComma
		}
		if comma < 0 && isThousandsGroup(s, dot) {
			return NotationAuto
		}
		return NotationDecimalPoint
	}
}

// isThousandsGroup reports whether the separator at sep splits s into one
// to three leading digits and exactly three trailing digits.
func isThousandsGroup(s string, sep int) bool {
	head := strings.TrimPrefix(s[:sep], "-")
	tail := s[sep+1:]
	return len(head) >= 1 && len(head) <= 3 && len(tail) == 3 &&
		isDigits(head) && isDigits(tail)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
