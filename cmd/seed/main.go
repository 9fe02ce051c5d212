package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/repository"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/seed"
	"github.com/sysu-ecnc-dev/shift-planner/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var (
		op          int
		n           int
		locationID  int64
		month       string
		file        string
		emailDomain string
		probability float64
	)

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机排班员, 2: 插入随机地点, 3: 插入随机员工, 4: 插入随机月度班次, 5: 从 CSV 导入班次)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Int64Var(&locationID, "location-id", 0, "员工和班次所属的地点 ID")
	flag.StringVar(&month, "month", "", "随机班次所在的月份，格式为 YYYY-MM")
	flag.StringVar(&file, "file", "", "要导入的 CSV 文件路径")
	flag.StringVar(&emailDomain, "email-domain", "example.com", "随机数据使用的邮箱域名")
	flag.Float64Var(&probability, "p", 0.7, "随机班次中每个员工每天上班的概率")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", "error", err)
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	// 需要地点的操作先检查地点是否存在
	if op >= 3 {
		if locationID <= 0 {
			slog.Error("请输入合法的地点 ID")
			return
		}
		if _, err := repo.GetLocationByID(locationID); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("指定的地点不存在", "location_id", locationID)
			default:
				slog.Error("无法获取地点", "error", err)
			}
			return
		}
	}

	switch op {
	case 0:
		slog.Error("未指定操作")
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的排班员数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			user, err := utils.GenerateRandomPlanner(cfg.Seed.User.Password, emailDomain)
			if err != nil {
				slog.Error("无法生成随机排班员", "error", err)
				continue
			}
			if err := repo.CreateUser(user); err != nil {
				slog.Error("无法插入排班员", "error", err)
				continue
			}
			cnt++
		}

		slog.Info("插入排班员成功", "count", cnt)
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的地点数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			if err := repo.CreateLocation(utils.GenerateRandomLocation(emailDomain)); err != nil {
				slog.Error("无法插入地点", "error", err)
				continue
			}
			cnt++
		}

		slog.Info("插入地点成功", "count", cnt)
	case 3:
		if n <= 0 {
			slog.Error("请输入合法的员工数量")
			return
		}

		existing, err := repo.GetEmployeesByLocation(locationID)
		if err != nil {
			slog.Error("无法获取员工列表", "error", err)
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			employee := utils.GenerateRandomEmployee(locationID, len(existing)+i+1, emailDomain)
			if err := repo.CreateEmployee(employee); err != nil {
				slog.Error("无法插入员工", "error", err)
				continue
			}
			cnt++
		}

		slog.Info("插入员工成功", "count", cnt)
	case 4:
		m, err := utils.ValidateMonth(month)
		if err != nil {
			slog.Error("月份不合法", "error", err)
			return
		}

		employees, err := repo.GetEmployeesByLocation(locationID)
		if err != nil {
			slog.Error("无法获取员工列表", "error", err)
			return
		}
		if len(employees) == 0 {
			slog.Error("该地点没有员工，请先插入员工")
			return
		}

		shifts := utils.GenerateRandomMonthShifts(employees, m, probability)
		if err := repo.CreateShifts(shifts); err != nil {
			slog.Error("无法插入班次", "error", err)
			return
		}

		slog.Info("插入班次成功", "count", len(shifts))
	case 5:
		if file == "" {
			slog.Error("请指定要导入的 CSV 文件")
			return
		}
		seed.ImportShifts(repo, locationID, file)
	default:
		slog.Error("不支持的操作", "op", op)
	}
}
