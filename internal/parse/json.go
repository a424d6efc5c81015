package parse

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"perspectives/internal/util/jsonutil"

	t "perspectives/internal/types"
)

var (
	stanceKeys   = []string{"stance", "position"}
	criteriaKeys = []string{"criteria", "key criteria", "key_criteria"}
	reasonKeys   = []string{"reason", "reasoning"}
)

// parseJSON handles replies shaped like the stored artifacts:
// {"1": {"Stance": …, "Criteria": […], "Reason": …}, …}.
func parseJSON(raw string, method t.Method) (Result, error) {
	obj, err := jsonutil.ExtractObject(raw)
	if err != nil {
		return Result{}, &MalformedError{Detail: "no JSON object in reply"}
	}
	var entries map[string]any
	if err := jsonutil.UnmarshalFlex(obj, &entries); err != nil {
		return Result{}, &MalformedError{Detail: fmt.Sprintf("decode JSON: %v", err)}
	}

	byIndex := make(map[int]map[string]any, len(entries))
	for k, v := range entries {
		n, err := strconv.Atoi(strings.TrimSpace(k))
		entry, ok := v.(map[string]any)
		if err != nil || n < 1 || !ok {
			continue
		}
		byIndex[n] = entry
	}

	found := 0
	for found < len(byIndex) {
		if _, ok := byIndex[found+1]; !ok {
			break
		}
		found++
	}
	if found < t.PerspectivesPerSet {
		return Result{}, &MalformedError{Detail: fmt.Sprintf("found %d of %d numbered perspectives", found, t.PerspectivesPerSet)}
	}

	set := make(t.PerspectiveSet, 0, t.PerspectivesPerSet)
	for i := 1; i <= t.PerspectivesPerSet; i++ {
		entry := byIndex[i]
		f := fields{
			stance: []string{stringField(entry, stanceKeys)},
			reason: []string{stringField(entry, reasonKeys)},
		}
		if v, ok := lookup(entry, criteriaKeys); ok {
			switch x := v.(type) {
			case string:
				f.criteria = strings.Split(x, "\n")
			case []any:
				f.items = criteriaItems(x)
			}
		}
		p, err := f.perspective(i, method)
		if err != nil {
			return Result{}, err
		}
		set = append(set, p)
	}
	return Result{Set: set, Extra: found - t.PerspectivesPerSet}, nil
}

// lookup returns the value of the first key in keys that entry carries.
// Keys are matched case-insensitively; when several spellings of one key are
// present the lexically smallest wins.
func lookup(entry map[string]any, keys []string) (any, bool) {
	for _, want := range keys {
		var hits []string
		for k := range entry {
			if strings.ToLower(strings.TrimSpace(k)) == want {
				hits = append(hits, k)
			}
		}
		if len(hits) > 0 {
			sort.Strings(hits)
			return entry[hits[0]], true
		}
	}
	return nil, false
}

func stringField(entry map[string]any, keys []string) string {
	v, ok := lookup(entry, keys)
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func criteriaItems(list []any) []string {
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			continue
		}
		if s = cleanValue(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
