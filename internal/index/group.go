package index

import (
	"sort"
	"strings"

	"quill/internal/domain/content"
)

// ByTag groups items under each tag they list. Items without tags appear in
// no bucket. Each bucket is date sorted.
func ByTag(items []content.Item) map[string][]content.Item {
	out := make(map[string][]content.Item)
	for _, it := range items {
		for _, tag := range it.Tags {
			tag = content.NormalizeTag(tag)
			if tag == "" {
				continue
			}
			out[tag] = append(out[tag], it)
		}
	}
	for _, bucket := range out {
		SortByDate(bucket)
	}
	return out
}

// ByCategory groups items by category. Membership is case-insensitive; the key
// keeps the casing of the item that opened the bucket.
func ByCategory(items []content.Item) map[string][]content.Item {
	out := make(map[string][]content.Item)
	keys := make(map[string]string)
	for _, it := range items {
		cat := categoryOf(it)
		folded := strings.ToLower(cat)
		key, ok := keys[folded]
		if !ok {
			key = cat
			keys[folded] = key
		}
		out[key] = append(out[key], it)
	}
	for _, bucket := range out {
		SortByDate(bucket)
	}
	return out
}

// ItemsForTag returns the date-sorted items carrying tag.
func ItemsForTag(items []content.Item, tag string) []content.Item {
	tag = content.NormalizeTag(tag)
	if tag == "" {
		return nil
	}
	var out []content.Item
	for _, it := range items {
		for _, t := range it.Tags {
			if t == tag {
				out = append(out, it)
				break
			}
		}
	}
	SortByDate(out)
	return out
}

// ItemsForCategory returns the date-sorted items whose category matches cat,
// ignoring case.
func ItemsForCategory(items []content.Item, cat string) []content.Item {
	cat = strings.TrimSpace(cat)
	if cat == "" {
		return nil
	}
	var out []content.Item
	for _, it := range items {
		if strings.EqualFold(categoryOf(it), cat) {
			out = append(out, it)
		}
	}
	SortByDate(out)
	return out
}

type Stat struct {
	Name  string
	Count int
}

func TagStats(items []content.Item) []Stat {
	return stats(ByTag(items))
}

func CategoryStats(items []content.Item) []Stat {
	return stats(ByCategory(items))
}

// 按数量降序，数量相同按名字排序
func stats(groups map[string][]content.Item) []Stat {
	out := make([]Stat, 0, len(groups))
	for name, bucket := range groups {
		out = append(out, Stat{Name: name, Count: len(bucket)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Name < out[j].Name
		}
		return out[i].Count > out[j].Count
	})
	return out
}

func categoryOf(it content.Item) string {
	if c := strings.TrimSpace(it.Category); c != "" {
		return c
	}
	return content.DefaultCategory
}
