package shared

import (
	"math"
	"meetflow/shared/dto"
	"strings"
	"unicode/utf8"
)

const cacheKeySeparator = ":"

func CalculateTotalPage(total, limit int) (res int) {
	if total == 0 || limit <= 0 {
		res = 1
	} else {
		res = int(math.Ceil(float64(total) / float64(limit)))
	}

	return res
}

func FilterByID(id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Filters: []any{
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterByTenant scopes an equality lookup to a single tenant.
func FilterByTenant(tenantID, fieldTenant, id, fieldID, table string) dto.FilterGroup {
	return dto.FilterGroup{
		Operator: dto.FilterGroupOperatorAnd,
		Filters: []any{
			dto.Filter{
				Field:    fieldTenant,
				Value:    tenantID,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
			dto.Filter{
				Field:    fieldID,
				Value:    id,
				Operator: dto.FilterOperatorEq,
				Table:    table,
			},
		},
	}
}

// FilterByFields builds an AND group of equality filters in the given field order.
func FilterByFields(table string, fields []string, values ...any) dto.FilterGroup {
	group := dto.FilterGroup{Operator: dto.FilterGroupOperatorAnd}

	for idx, field := range fields {
		if idx >= len(values) {
			break
		}

		group.Filters = append(group.Filters, dto.Filter{
			Field:    field,
			Value:    values[idx],
			Operator: dto.FilterOperatorEq,
			Table:    table,
		})
	}

	return group
}

// BuildCacheKey joins a prefix and its parts into a namespaced cache key.
func BuildCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), cacheKeySeparator)
}

// TruncateText makes text safe for a postgres TEXT column and cuts it to at most
// limit bytes without splitting a rune.
func TruncateText(text string, limit int) string {
	text = strings.ReplaceAll(strings.ToValidUTF8(text, "\uFFFD"), "\x00", "")
	if len(text) <= limit {
		return text
	}

	cut := limit
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}

	return text[:cut]
}
