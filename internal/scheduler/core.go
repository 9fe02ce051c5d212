package scheduler

import (
	"math"
	"slices"
)

// 每条合规冲突的惩罚，需要远大于公平性惩罚
const violationPenalty = 100.0

// randomInitChromosome 随机初始化一个染色体
func (s *Scheduler) randomInitChromosome() *Chromosome {
	genes := make([]*Gene, 0, len(s.dates)*len(s.slots))

	for _, date := range s.dates {
		// 同一天已经被安排的员工
		busy := make(map[int64]bool)

		for i, slot := range s.slots {
			candidatesIDs := s.candidates(busy, nil)

			// 打乱候选顺序后取前 n 个
			s.rng.Shuffle(len(candidatesIDs), func(a, b int) {
				candidatesIDs[a], candidatesIDs[b] = candidatesIDs[b], candidatesIDs[a]
			})
			chosenNum := min(int(slot.RequiredNumber), len(candidatesIDs))
			chosenIDs := slices.Clone(candidatesIDs[:chosenNum])

			for _, id := range chosenIDs {
				busy[id] = true
			}

			genes = append(genes, &Gene{
				date:         date,
				slot:         i,
				timeRange:    slot.TimeRange,
				employeeIDs:  chosenIDs,
				requiredNum:  slot.RequiredNumber,
				workDuration: s.durations[i],
			})
		}
	}

	return &Chromosome{
		genes: genes,
	}
}

/**
 * 计算染色体的适应度
 * fitness = - violationPenalty * violations - notWorkPenalty - FairnessWeight * fairnessPenalty
 * 其中:
 * 		1. violations 为合规校验发现的冲突数量（超过 12 小时、休息不足 11 小时、每周没有 35 小时休息）
 * 		2. notWorkPenalty 为整月没有被安排的员工数量
 * 		3. fairnessPenalty 为公平性惩罚，即每个员工工作时长的方差
 */
func (s *Scheduler) calcFitness(ch *Chromosome) {
	state := s.detector.Evaluate(s.toShifts(ch), s.employees, s.month)

	// 计算每个员工的工作时长
	workHours := make(map[int64]float64, len(s.employees))
	for _, e := range s.employees {
		workHours[e.ID] = 0
	}
	for _, gene := range ch.genes {
		for _, id := range gene.employeeIDs {
			workHours[id] += gene.workDuration
		}
	}

	// 按员工顺序累加，保证同一个种子得到相同的结果
	notWorkPenalty := 0.0
	avg := 0.0
	for _, e := range s.employees {
		if workHours[e.ID] == 0 {
			notWorkPenalty += 1
		}
		avg += workHours[e.ID]
	}
	avg /= float64(len(s.employees))

	// 计算 fairnessPenalty（即方差）
	variance := 0.0
	for _, e := range s.employees {
		variance += math.Pow(workHours[e.ID]-avg, 2)
	}
	variance /= float64(len(s.employees))

	ch.fitness = -violationPenalty*float64(state.Count()) - notWorkPenalty - s.parameters.FairnessWeight*variance
}

// 使用轮盘赌来进行选择，适应度都是非正数，所以先平移到正数区间
func (s *Scheduler) selectByRoulette(pop []*Chromosome) *Chromosome {
	minFit := pop[0].fitness
	for _, ch := range pop {
		minFit = min(minFit, ch.fitness)
	}

	const epsilon = 1e-6
	sumFit := 0.0
	for _, ch := range pop {
		sumFit += ch.fitness - minFit + epsilon
	}
	pick := s.rng.Float64() * sumFit
	partial := 0.0

	for _, ch := range pop {
		partial += ch.fitness - minFit + epsilon
		if partial >= pick {
			return ch
		}
	}

	// 理论上不会运行到这个地方
	return pop[len(pop)-1]
}

// 单点交叉，交叉点只落在两天之间，保证同一天的安排来自同一个父本
func (s *Scheduler) singlePointCrossover(ch1 *Chromosome, ch2 *Chromosome) {
	if len(ch1.genes) != len(ch2.genes) || len(s.dates) < 2 {
		return
	}

	point := (s.rng.Intn(len(s.dates)-1) + 1) * len(s.slots)

	// 交换两个染色体在 point 位置之后的基因
	for i := point; i < len(ch1.genes); i++ {
		ch1.genes[i], ch2.genes[i] = ch2.genes[i], ch1.genes[i]
	}
}

// 变异
// 每个被安排的员工都有一定概率被替换成当天空闲的其他员工
func (s *Scheduler) mutate(ch *Chromosome) {
	for i, gene := range ch.genes {
		for j := range gene.employeeIDs {
			if s.rng.Float64() > s.parameters.MutationRate {
				continue
			}

			candidatesIDs := s.candidates(s.busyOnDay(ch, i), gene.employeeIDs)
			if len(candidatesIDs) > 0 {
				gene.employeeIDs[j] = candidatesIDs[s.rng.Intn(len(candidatesIDs))]
			}
		}
	}
}
