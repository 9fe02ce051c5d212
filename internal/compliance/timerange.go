package compliance

import (
	"regexp"
	"strconv"
	"strings"
)

var timeRangePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})-(\d{1,2}):(\d{2})$`)

// Interval 一天之内的工作区间，Start 和 End 都是距离零点的分钟数，End 不包含在内
type Interval struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

func (iv Interval) Minutes() int {
	return iv.End - iv.Start
}

func (iv Interval) Hours() float64 {
	return float64(iv.Minutes()) / 60
}

// ParseTimeRange 解析 "8:00-16:00" 或 "08:00-16:00" 形式的时间段
//
// 格式不匹配时返回 false，调用方应当把它当作"没有班次数据"而不是错误。
// 小时和分钟不做范围校验（例如 "25:00" 会原样换算成分钟），严格校验请使用 utils.ValidateTimeRange。
// 结束时间不晚于开始时间的跨夜班次同样返回 false。
func ParseTimeRange(s string) (Interval, bool) {
	m := timeRangePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Interval{}, false
	}

	iv := Interval{
		Start: toMinutes(m[1], m[2]),
		End:   toMinutes(m[3], m[4]),
	}
	if iv.End <= iv.Start {
		return Interval{}, false
	}

	return iv, true
}

func toMinutes(hour, minute string) int {
	// 正则已经保证了都是数字
	h, _ := strconv.Atoi(hour)
	m, _ := strconv.Atoi(minute)
	return h*60 + m
}
