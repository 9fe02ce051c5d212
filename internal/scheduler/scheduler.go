package scheduler

import (
	"errors"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/compliance"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"
)

type Scheduler struct {
	parameters *Parameters
	detector   *compliance.Detector
	employees  []domain.Employee // 只包含在职员工
	slots      []domain.RosterSlot
	durations  []float64 // 每个时间段的工作时长
	month      time.Time
	dates      []string
	rng        *rand.Rand
}

func New(parameters *Parameters, detector *compliance.Detector, employees []*domain.Employee, slots []domain.RosterSlot, month time.Time) (*Scheduler, error) {
	if err := utils.ValidateRosterSlots(slots); err != nil {
		return nil, err
	}
	if parameters.PopulationSize < 2 {
		return nil, errors.New("种群大小至少为 2")
	}
	if parameters.EliteCount < 0 || parameters.EliteCount > parameters.PopulationSize {
		return nil, errors.New("精英数量必须在 0 到种群大小之间")
	}

	seed := parameters.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	s := &Scheduler{
		parameters: parameters,
		detector:   detector,
		employees:  make([]domain.Employee, 0, len(employees)),
		slots:      slots,
		durations:  make([]float64, len(slots)),
		month:      time.Date(month.Year(), month.Month(), 1, 0, 0, 0, 0, time.UTC),
		rng:        rand.New(rand.NewSource(seed)),
	}

	for _, e := range employees {
		if e.IsActive {
			s.employees = append(s.employees, *e)
		}
	}
	if len(s.employees) == 0 {
		return nil, errors.New("该地点没有在职员工")
	}

	for i, slot := range slots {
		// 时间段已经通过了严格校验
		iv, _ := compliance.ParseTimeRange(slot.TimeRange)
		s.durations[i] = iv.Hours()
	}

	for day := 0; day < compliance.DaysInMonth(s.month); day++ {
		s.dates = append(s.dates, s.month.AddDate(0, 0, day).Format(time.DateOnly))
	}

	return s, nil
}

func (s *Scheduler) Schedule() (*Result, error) {
	size := int(s.parameters.PopulationSize)

	// 生成初始种群
	pop := make([]*Chromosome, size)
	for i := 0; i < size; i++ {
		pop[i] = s.randomInitChromosome()
		s.calcFitness(pop[i])
	}

	// 迭代
	bestChromosomeEver := &Chromosome{
		genes:   nil,
		fitness: -math.MaxFloat64,
	}

	for gen := 0; gen < int(s.parameters.MaxGenerations); gen++ {
		// 找到本代最佳样本
		genBestIndex := 0
		for i := 1; i < size; i++ {
			if pop[i].fitness > pop[genBestIndex].fitness {
				genBestIndex = i
			}
		}

		if pop[genBestIndex].fitness > bestChromosomeEver.fitness {
			// 这里需要使用深拷贝，防止后续繁殖的过程中导致指向的基因被修改
			bestChromosomeEver = cloneChromosome(pop[genBestIndex])
		}

		// 繁殖
		newPop := make([]*Chromosome, 0, size)

		// 保留精英
		sort.SliceStable(pop, func(i, j int) bool {
			return pop[i].fitness > pop[j].fitness
		})
		for _, elite := range pop[:int(s.parameters.EliteCount)] {
			newPop = append(newPop, cloneChromosome(elite))
		}

		// 在剩余的染色体中进行交叉和变异，父本先复制一份，避免改到精英
		for len(newPop) < size {
			p1 := cloneChromosome(s.selectByRoulette(pop))
			p2 := cloneChromosome(s.selectByRoulette(pop))

			if s.rng.Float64() < s.parameters.CrossoverRate {
				s.singlePointCrossover(p1, p2)
			}

			s.mutate(p1)
			s.mutate(p2)

			newPop = append(newPop, p1)

			if len(newPop) < size {
				newPop = append(newPop, p2)
			}
		}

		for i := 0; i < size; i++ {
			pop[i] = newPop[i]
			s.calcFitness(pop[i])
		}
	}

	// 最后一代也要参与比较
	for _, ch := range pop {
		if ch.fitness > bestChromosomeEver.fitness {
			bestChromosomeEver = cloneChromosome(ch)
		}
	}

	// 返回结果
	shifts := s.toShifts(bestChromosomeEver)
	if err := utils.ValidateNoDoubleBooking(shifts); err != nil {
		return nil, err
	}

	result := &Result{
		Shifts:    make([]ShiftProposal, 0, len(shifts)),
		Conflicts: s.detector.Evaluate(shifts, s.employees, s.month),
		Fitness:   bestChromosomeEver.fitness,
	}
	for _, shift := range shifts {
		result.Shifts = append(result.Shifts, ShiftProposal{
			EmployeeID: shift.EmployeeID,
			Date:       shift.Date,
			TimeRange:  shift.TimeRange,
		})
	}

	return result, nil
}
