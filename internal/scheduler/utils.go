package scheduler

import (
	"slices"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/domain"
)

// candidates 返回既不在 busy 中也不在 exclude 中的员工
func (s *Scheduler) candidates(busy map[int64]bool, exclude []int64) []int64 {
	ids := make([]int64, 0, len(s.employees))
	for _, e := range s.employees {
		if busy[e.ID] || slices.Contains(exclude, e.ID) {
			continue
		}
		ids = append(ids, e.ID)
	}
	return ids
}

// busyOnDay 返回第 index 个基因所在那一天中，其他时间段已经安排的员工
func (s *Scheduler) busyOnDay(ch *Chromosome, index int) map[int64]bool {
	busy := make(map[int64]bool)
	dayStart := index / len(s.slots) * len(s.slots)
	for i := dayStart; i < dayStart+len(s.slots); i++ {
		if i == index {
			continue
		}
		for _, id := range ch.genes[i].employeeIDs {
			busy[id] = true
		}
	}
	return busy
}

func cloneChromosome(ch *Chromosome) *Chromosome {
	genes := make([]*Gene, len(ch.genes))
	for i, gene := range ch.genes {
		g := *gene
		g.employeeIDs = slices.Clone(gene.employeeIDs)
		genes[i] = &g
	}
	return &Chromosome{
		genes:   genes,
		fitness: ch.fitness,
	}
}

func (s *Scheduler) toShifts(ch *Chromosome) []domain.Shift {
	shifts := make([]domain.Shift, 0, len(ch.genes))
	for _, gene := range ch.genes {
		for _, id := range gene.employeeIDs {
			shifts = append(shifts, domain.Shift{
				EmployeeID: id,
				Date:       gene.date,
				TimeRange:  gene.timeRange,
			})
		}
	}
	return shifts
}
