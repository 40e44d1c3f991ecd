package interpolator

import (
	"errors"
	"sort"

	"github.com/dreamingspires/mat-dp-pipeline/internal/model"
)

var errBeforeFirstSample = errors.New("年份在首个已知样本之前")

// sample 单个已知样本点
type sample struct {
	year  int
	value float64
}

// collectSeries 从按年份分组的表中取出一条序列的已知样本，按年份升序排列
// 基准年（年份 0）重映射到 firstYear；firstYear 已有显式样本时显式值优先
func collectSeries[T any](byYear map[int]T, firstYear int, get func(T) (float64, bool)) []sample {
	var baseline *sample
	samples := make([]sample, 0, len(byYear))
	for year, table := range byYear {
		v, ok := get(table)
		if !ok {
			continue
		}
		if year == model.BaselineYear {
			baseline = &sample{year: firstYear, value: v}
			continue
		}
		samples = append(samples, sample{year: year, value: v})
	}
	if baseline != nil {
		explicit := false
		for _, s := range samples {
			if s.year == baseline.year {
				explicit = true
				break
			}
		}
		if !explicit {
			samples = append(samples, *baseline)
		}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i].year < samples[j].year })
	return samples
}

// valueAt 在已知样本序列上取某一年的值
//   - 命中已知样本：返回原值（不允许漂移）
//   - 位于两个样本之间：线性插值
//   - 晚于末个样本：沿用末值
//   - 早于首个样本：无定义，报错
func valueAt(samples []sample, year int) (float64, error) {
	if len(samples) == 0 {
		return 0, errors.New("该序列没有任何已知样本")
	}
	if year < samples[0].year {
		return 0, errBeforeFirstSample
	}
	last := samples[len(samples)-1]
	if year >= last.year {
		return last.value, nil
	}
	// 定位右侧第一个年份 >= year 的样本
	idx := sort.Search(len(samples), func(i int) bool { return samples[i].year >= year })
	right := samples[idx]
	if right.year == year {
		return right.value, nil
	}
	left := samples[idx-1]
	span := float64(right.year - left.year)
	frac := float64(year-left.year) / span
	return left.value + (right.value-left.value)*frac, nil
}
