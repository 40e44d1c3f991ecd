package model

// Node 层级树节点（World -> Continent -> Country ...）
//
// 结构不变式：叶子节点持有 targets 且没有子节点；内部节点持有非空 children
// 且没有 targets。两类节点只能通过 NewLeafNode / NewInternalNode 构造，
// 不变式在构造时校验。
type Node struct {
	Name string

	// Intensities 基准强度表（“年份 0”，插值时映射到首个目标年份）
	Intensities Intensities
	// IntensitiesYearly 年度覆盖强度表，键集合必须是基准表键集合的子集
	IntensitiesYearly map[int]Intensities

	// Indicators 基准指标表
	Indicators Indicators
	// IndicatorsYearly 年度覆盖指标表
	IndicatorsYearly map[int]Indicators

	// TechMeta 技术元数据（从强度文件的元数据列拆出）
	TechMeta TechMetaTable

	targets  Targets
	children map[string]*Node
}

// IsLeaf 是否为叶子节点
func (n *Node) IsLeaf() bool {
	return n.targets != nil
}

// Targets 叶子节点的目标表；内部节点返回 nil
func (n *Node) Targets() Targets {
	return n.targets
}

// Children 内部节点的子节点；叶子节点返回 nil
func (n *Node) Children() map[string]*Node {
	return n.children
}

// NodeData 节点的数据部分，叶子与内部节点共用
type NodeData struct {
	Intensities       Intensities
	IntensitiesYearly map[int]Intensities
	Indicators        Indicators
	IndicatorsYearly  map[int]Indicators
	TechMeta          TechMetaTable
}

// NewLeafNode 构造叶子节点
// 除结构不变式外，校验年度覆盖文件键集合为基准表键集合的子集
func NewLeafNode(name string, data NodeData, targets Targets) (*Node, error) {
	if targets == nil {
		return nil, NewIssue(StructuralError, name, "叶子节点必须提供 targets")
	}
	n := newNode(name, data)
	n.targets = targets
	if err := n.validateOverrides(); err != nil {
		return nil, err
	}
	return n, nil
}

// NewInternalNode 构造内部节点
func NewInternalNode(name string, data NodeData, children map[string]*Node) (*Node, error) {
	if len(children) == 0 {
		return nil, NewIssue(StructuralError, name, "内部节点必须至少有一个子节点")
	}
	n := newNode(name, data)
	n.children = children
	if err := n.validateOverrides(); err != nil {
		return nil, err
	}
	return n, nil
}

func newNode(name string, data NodeData) *Node {
	n := &Node{
		Name:              name,
		Intensities:       data.Intensities,
		IntensitiesYearly: data.IntensitiesYearly,
		Indicators:        data.Indicators,
		IndicatorsYearly:  data.IndicatorsYearly,
		TechMeta:          data.TechMeta,
	}
	if n.Intensities == nil {
		n.Intensities = Intensities{}
	}
	if n.IntensitiesYearly == nil {
		n.IntensitiesYearly = map[int]Intensities{}
	}
	if n.Indicators == nil {
		n.Indicators = Indicators{}
	}
	if n.IndicatorsYearly == nil {
		n.IndicatorsYearly = map[int]Indicators{}
	}
	if n.TechMeta == nil {
		n.TechMeta = TechMetaTable{}
	}
	return n
}

// validateOverrides 校验年度覆盖文件不引入新的技术/资源键
func (n *Node) validateOverrides() error {
	for _, year := range SortedYears(n.IntensitiesYearly) {
		for tech := range n.IntensitiesYearly[year] {
			if _, ok := n.Intensities[tech]; !ok {
				return NewIssue(OverrideViolation, n.Name,
					"年度强度文件 (%d) 引入了基准表中不存在的技术 %s", year, tech)
			}
		}
	}
	for _, year := range SortedYears(n.IndicatorsYearly) {
		for res := range n.IndicatorsYearly[year] {
			if _, ok := n.Indicators[res]; !ok {
				return NewIssue(OverrideViolation, n.Name,
					"年度指标文件 (%d) 引入了基准表中不存在的资源 %s", year, res)
			}
		}
	}
	return nil
}

// Walk 前序遍历整棵树
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, name := range SortedStrings(n.children) {
		n.children[name].Walk(fn)
	}
}

// LeafCount 叶子数量
func (n *Node) LeafCount() int {
	count := 0
	n.Walk(func(node *Node) {
		if node.IsLeaf() {
			count++
		}
	})
	return count
}
