package model

import "sort"

// TechKey 技术标识：大类 + 具体名称（例如 Power plant / Hydro）
type TechKey struct {
	Category string `json:"category"`
	Specific string `json:"specific"`
}

// Less 按 (Category, Specific) 字典序比较
func (k TechKey) Less(other TechKey) bool {
	if k.Category != other.Category {
		return k.Category < other.Category
	}
	return k.Specific < other.Specific
}

// String 返回 "Category/Specific" 形式
func (k TechKey) String() string {
	return k.Category + "/" + k.Specific
}

// TechMeta 技术元数据（不随年份变化）
type TechMeta struct {
	Description    string `json:"description"`
	MaterialUnit   string `json:"materialUnit"`
	ProductionUnit string `json:"productionUnit"`
}

// TechMetaTable 技术 -> 元数据
type TechMetaTable map[TechKey]TechMeta

// Copy 深拷贝
func (t TechMetaTable) Copy() TechMetaTable {
	out := make(TechMetaTable, len(t))
	for k, v := range t {
		out[k] = v
	}
	return out
}

// SortedTechKeys 返回排序后的技术键列表
func SortedTechKeys[V any](m map[TechKey]V) []TechKey {
	keys := make([]TechKey, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// SortedStrings 返回排序后的字符串键列表
func SortedStrings[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// SortedYears 返回排序后的年份键列表
func SortedYears[V any](m map[int]V) []int {
	years := make([]int, 0, len(m))
	for y := range m {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}
