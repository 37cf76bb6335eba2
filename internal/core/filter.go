// Package core provides filtering, sorting, and lookup over toast records.
package core

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/jmylchreest/toastd/internal/model"
)

// FilterOp represents a comparison operator.
type FilterOp string

const (
	FilterOpEqual     FilterOp = "="  // Exact match
	FilterOpNotEqual  FilterOp = "!=" // Not equal
	FilterOpContains  FilterOp = "~"  // Contains substring
	FilterOpRegex     FilterOp = "~=" // Regex match
	FilterOpGreater   FilterOp = ">"  // Greater than
	FilterOpLess      FilterOp = "<"  // Less than
	FilterOpGreaterEq FilterOp = ">=" // Greater than or equal
	FilterOpLessEq    FilterOp = "<=" // Less than or equal
)

// FilterCondition represents a single filter condition.
type FilterCondition struct {
	Field    string   // heading, body, icon, position, closable, permanent, created, left
	Operator FilterOp // Comparison operator
	Value    string   // Value to compare against

	// Cached parsed values
	regex    *regexp.Regexp
	boolVal  bool
	duration time.Duration
	now      time.Time
}

// FilterExpr represents a compound filter expression.
// Multiple conditions are ANDed together.
type FilterExpr struct {
	Conditions []FilterCondition
}

// FilterOptions specifies criteria for filtering records.
type FilterOptions struct {
	Since     time.Duration   // Keep records created after now-since (0=all)
	Position  *model.Position // nil=any
	Icon      *model.Icon     // nil=any
	Permanent *bool           // nil=any
	Limit     int             // Maximum results (0=unlimited)
	Now       time.Time       // Zero means time.Now()
}

// Filter filters records based on the provided options.
func Filter(records []model.Record, opts FilterOptions) []model.Record {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	result := make([]model.Record, 0, len(records))

	for _, r := range records {
		if opts.Since > 0 && r.CreatedAt.Before(now.Add(-opts.Since)) {
			continue
		}
		if opts.Position != nil && r.Content.Position != *opts.Position {
			continue
		}
		if opts.Icon != nil && r.Content.Icon != *opts.Icon {
			continue
		}
		if opts.Permanent != nil && r.Permanent() != *opts.Permanent {
			continue
		}
		result = append(result, r)
	}

	if opts.Limit > 0 && len(result) > opts.Limit {
		result = result[:opts.Limit]
	}
	return result
}

// ParseDuration parses a duration string with extended formats.
// Supports: 90s, 5m, 1h, 7d, 1w, 0 (no limit)
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)

	if s == "0" || s == "" {
		return 0, nil
	}

	// Handle day suffix (7d -> 168h)
	if daysStr, found := strings.CutSuffix(s, "d"); found {
		days, err := strconv.Atoi(daysStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(days) * 24 * time.Hour, nil
	}

	// Handle week suffix (1w -> 168h)
	if weeksStr, found := strings.CutSuffix(s, "w"); found {
		weeks, err := strconv.Atoi(weeksStr)
		if err != nil {
			return 0, fmt.Errorf("invalid duration: %s", s)
		}
		return time.Duration(weeks) * 7 * 24 * time.Hour, nil
	}

	return time.ParseDuration(s)
}

// ParseFilter parses a filter expression string into a FilterExpr.
// Format: "field=value,field2~value2,field3>value3"
// Multiple conditions are comma-separated and ANDed together.
//
// Supported fields: heading, body, icon, position, closable, permanent, created, left
// Supported operators: = (equal), != (not equal), ~ (contains), ~= (regex), >, <, >=, <=
//
// Examples:
//   - "icon=error" - error toasts
//   - "heading~deploy" - heading contains "deploy"
//   - "position=top-right,permanent=false" - expiring toasts in the top right
//   - "body~=(?i)failed" - body matches regex
//   - "created>30s" - popped in the last 30 seconds
//   - "left<2s" - expiring within 2 seconds
func ParseFilter(expr string) (*FilterExpr, error) {
	return parseFilterAt(expr, time.Now())
}

func parseFilterAt(expr string, now time.Time) (*FilterExpr, error) {
	if expr == "" {
		return &FilterExpr{}, nil
	}

	filter := &FilterExpr{
		Conditions: make([]FilterCondition, 0),
	}

	for part := range strings.SplitSeq(expr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		cond, err := parseCondition(part, now)
		if err != nil {
			return nil, err
		}
		filter.Conditions = append(filter.Conditions, cond)
	}

	return filter, nil
}

// parseCondition parses a single condition like "icon=error" or "body~disk".
func parseCondition(s string, now time.Time) (FilterCondition, error) {
	// Longest operators first
	operators := []FilterOp{
		FilterOpNotEqual,
		FilterOpGreaterEq,
		FilterOpLessEq,
		FilterOpRegex,
		FilterOpEqual,
		FilterOpContains,
		FilterOpGreater,
		FilterOpLess,
	}

	for _, op := range operators {
		idx := strings.Index(s, string(op))
		if idx > 0 {
			cond := FilterCondition{
				Field:    strings.ToLower(strings.TrimSpace(s[:idx])),
				Operator: op,
				Value:    strings.TrimSpace(s[idx+len(op):]),
				now:      now,
			}
			if err := cond.init(); err != nil {
				return FilterCondition{}, err
			}
			return cond, nil
		}
	}

	return FilterCondition{}, fmt.Errorf("invalid filter condition: %s (missing operator)", s)
}

// init normalizes the field and pre-parses the value.
func (c *FilterCondition) init() error {
	switch c.Field {
	case "heading", "title", "summary":
		c.Field = "heading"
	case "body", "message":
		c.Field = "body"
	case "icon":
		icon, err := model.ParseIcon(c.Value)
		if err != nil {
			return err
		}
		c.Value = icon.String()
	case "position", "pos", "corner":
		c.Field = "position"
		p, err := model.ParsePosition(c.Value)
		if err != nil {
			return err
		}
		c.Value = p.String()
	case "closable":
		c.boolVal = parseBool(c.Value)
	case "permanent", "sticky":
		c.Field = "permanent"
		c.boolVal = parseBool(c.Value)
	case "created", "age":
		c.Field = "created"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid created value: %w", err)
		}
		c.duration = dur
	case "left", "ttl":
		c.Field = "left"
		dur, err := ParseDuration(c.Value)
		if err != nil {
			return fmt.Errorf("invalid left value: %w", err)
		}
		c.duration = dur
	default:
		return fmt.Errorf("unknown filter field: %s", c.Field)
	}

	if c.Operator == FilterOpRegex {
		re, err := regexp.Compile(c.Value)
		if err != nil {
			return fmt.Errorf("invalid regex: %w", err)
		}
		c.regex = re
	}

	return nil
}

// parseBool parses various boolean representations.
func parseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "y", "t":
		return true
	default:
		return false
	}
}

// Match tests if a record matches the filter expression.
func (f *FilterExpr) Match(r model.Record) bool {
	for _, cond := range f.Conditions {
		if !cond.Match(r) {
			return false
		}
	}
	return true
}

// Match tests if a record matches this single condition.
func (c *FilterCondition) Match(r model.Record) bool {
	switch c.Field {
	case "heading":
		return c.matchString(r.Content.Heading)
	case "body":
		return c.matchString(r.Content.Body)
	case "icon":
		return c.matchString(r.Content.Icon.String())
	case "position":
		return c.matchString(r.Content.Position.String())
	case "closable":
		return c.matchBool(r.Content.Closable)
	case "permanent":
		return c.matchBool(r.Permanent())
	case "created":
		return c.matchTime(r.CreatedAt, c.now.Add(-c.duration))
	case "left":
		// Permanent records have no time left to compare
		if r.Permanent() {
			return false
		}
		return c.matchDuration(r.TimeLeft(c.now))
	default:
		return false
	}
}

func (c *FilterCondition) matchString(fieldValue string) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.Value
	case FilterOpNotEqual:
		return fieldValue != c.Value
	case FilterOpContains:
		return strings.Contains(strings.ToLower(fieldValue), strings.ToLower(c.Value))
	case FilterOpRegex:
		return c.regex != nil && c.regex.MatchString(fieldValue)
	default:
		return false
	}
}

func (c *FilterCondition) matchBool(fieldValue bool) bool {
	switch c.Operator {
	case FilterOpEqual:
		return fieldValue == c.boolVal
	case FilterOpNotEqual:
		return fieldValue != c.boolVal
	default:
		return false
	}
}

// matchTime compares against a cutoff: created>5m means newer than five minutes.
func (c *FilterCondition) matchTime(fieldValue, cutoff time.Time) bool {
	switch c.Operator {
	case FilterOpGreater:
		return fieldValue.After(cutoff)
	case FilterOpLess:
		return fieldValue.Before(cutoff)
	case FilterOpGreaterEq:
		return !fieldValue.Before(cutoff)
	case FilterOpLessEq:
		return !fieldValue.After(cutoff)
	default:
		return false
	}
}

func (c *FilterCondition) matchDuration(d time.Duration) bool {
	switch c.Operator {
	case FilterOpEqual:
		return d == c.duration
	case FilterOpNotEqual:
		return d != c.duration
	case FilterOpGreater:
		return d > c.duration
	case FilterOpLess:
		return d < c.duration
	case FilterOpGreaterEq:
		return d >= c.duration
	case FilterOpLessEq:
		return d <= c.duration
	default:
		return false
	}
}

// FilterWithExpr filters records using a filter expression.
func FilterWithExpr(records []model.Record, expr *FilterExpr) []model.Record {
	if expr == nil || len(expr.Conditions) == 0 {
		return records
	}

	result := make([]model.Record, 0, len(records))
	for _, r := range records {
		if expr.Match(r) {
			result = append(result, r)
		}
	}
	return result
}
