package model

// ProcessableInput 单一年份的稠密计算输入，不再含年份维度
//
// 不变式：Targets 的技术键是 Intensities 技术键的子集；
// Indicators 的资源键与 Intensities 的资源列完全一致
type ProcessableInput struct {
	// Intensities 技术 -> 资源 -> 值
	Intensities Intensities
	// Targets 技术 -> 当年产量目标
	Targets map[TechKey]float64
	// Indicators 资源 -> 指标 -> 值
	Indicators Indicators
}

// Copy 深拷贝
func (in *ProcessableInput) Copy() *ProcessableInput {
	targets := make(map[TechKey]float64, len(in.Targets))
	for tech, v := range in.Targets {
		targets[tech] = v
	}
	return &ProcessableInput{
		Intensities: in.Intensities.Copy(),
		Targets:     targets,
		Indicators:  in.Indicators.Copy(),
	}
}
