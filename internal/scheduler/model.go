package scheduler

import "github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"

// Gene: 表示对某个 (date, slot) 的排班决策
type Gene struct {
	date         string
	slot         int
	timeRange    string
	employeeIDs  []int64 // 如果为空，则表示这个 (date, slot) 没有安排任何人
	requiredNum  int32
	workDuration float64
}

// Chromosome: 整个月的排班表，基因按照 (date, slot) 的顺序排列，同一天的基因总是相邻的
type Chromosome struct {
	genes   []*Gene
	fitness float64
}

// 遗传算法参数
type Parameters struct {
	PopulationSize int32   // 种群大小
	MaxGenerations int32   // 最大迭代次数
	CrossoverRate  float64 // 交叉概率
	MutationRate   float64 // 变异概率
	EliteCount     int32   // 精英数量
	FairnessWeight float64 // 公平性权重
	Seed           int64   // 随机数种子，为 0 时使用当前时间
}

// Result 自动排班的结果，不会写入数据库，需要排班员确认后再批量保存
type Result struct {
	Shifts    []ShiftProposal           `json:"shifts"`
	Conflicts *compliance.ConflictState `json:"conflicts"`
	Fitness   float64                   `json:"fitness"`
}

type ShiftProposal struct {
	EmployeeID int64  `json:"employeeID"`
	Date       string `json:"date"`
	TimeRange  string `json:"timeRange"`
}
