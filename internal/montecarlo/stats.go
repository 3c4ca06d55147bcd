package montecarlo

import "sort"

// =============================================================================
// Aggregation Statistics - 순수 계산
// =============================================================================

// histogramBins 수익률 분포 히스토그램 구간 수
const histogramBins = 20

// percentileAt 정렬된 배열에서 nearest-rank 백분위수 선택
// ⭐ SSOT: 인덱스 = floor(p * (n-1) / 100) — 선형 보간 아님
// 빈 배열이면 0 반환
func percentileAt(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0.0
	}
	idx := p * (len(sorted) - 1) / 100
	return sorted[idx]
}

// computePercentiles pooled 수익률의 5/25/50/75/95 백분위수 계산
// values는 내부에서 정렬됨 (호출자 소유 복사본을 넘길 것)
func computePercentiles(values []float64, result *Analysis) {
	if len(values) == 0 {
		result.Percentile5 = 0
		result.Percentile25 = 0
		result.Percentile50 = 0
		result.Percentile75 = 0
		result.Percentile95 = 0
		return
	}

	sort.Float64s(values)

	result.Percentile5 = percentileAt(values, 5)
	result.Percentile25 = percentileAt(values, 25)
	result.Percentile50 = percentileAt(values, 50)
	result.Percentile75 = percentileAt(values, 75)
	result.Percentile95 = percentileAt(values, 95)
}

// buildHistogram pooled 수익률의 20구간 히스토그램 구성
// 구간 폭이 0이면 (모든 값 동일) 카운트 없이 min==max만 기록
func buildHistogram(returns []float64, result *Analysis) {
	result.ReturnDistribution = make([]int, histogramBins)

	if len(returns) == 0 {
		return
	}

	min, max := returns[0], returns[0]
	for _, r := range returns {
		if r < min {
			min = r
		}
		if r > max {
			max = r
		}
	}
	result.DistributionMin = min
	result.DistributionMax = max

	binWidth := (max - min) / float64(histogramBins)
	if binWidth <= 0 {
		return
	}

	for _, r := range returns {
		bin := int((r - min) / binWidth)
		// 최대값은 마지막 구간에 포함
		if bin == histogramBins {
			bin = histogramBins - 1
		}
		if bin >= 0 && bin < histogramBins {
			result.ReturnDistribution[bin]++
		}
	}
}

// ComputePValue 관측값 이상인 시뮬레이션 비율 계산
// 부등호는 >= (동률을 "as extreme or more extreme"으로 집계)
// 빈 모집단이면 1.0 반환
func ComputePValue(observed float64, simulated []float64) float64 {
	if len(simulated) == 0 {
		return 1.0
	}

	count := 0
	for _, v := range simulated {
		if v >= observed {
			count++
		}
	}

	return float64(count) / float64(len(simulated))
}

// Mean 산술 평균 (빈 배열이면 0)
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
